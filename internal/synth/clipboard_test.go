package synth

import "testing"

func TestPasteSubgraph_FreshIdentitiesAndOffsetPositions(t *testing.T) {
	cfg := AudioConfig{SampleRate: 48000, BufferSize: 16, Channels: 1}
	ws := NewWorkspace(cfg)
	osc := newOscillatorModule(cfg)
	mix := newMixerModule(cfg)
	ws.AddModule(osc, Position{X: 10, Y: 10})
	ws.AddModule(mix, Position{X: 20, Y: 20})
	_ = ws.Connect(mix.ID(), 0, osc.ID(), 0)

	data, err := encodeModules(ws, []Module{osc, mix})
	if err != nil {
		t.Fatalf("encodeModules: %v", err)
	}

	pasted, err := pasteSubgraph(ws, data, 5, 5)
	if err != nil {
		t.Fatalf("pasteSubgraph: %v", err)
	}
	if len(pasted) != 2 {
		t.Fatalf("expected 2 pasted modules, got %d", len(pasted))
	}

	origIDs := map[string]bool{osc.ID(): true, mix.ID(): true}
	for _, m := range pasted {
		if origIDs[m.ID()] {
			t.Fatalf("pasted module %s reused an original id", m.ID())
		}
		pos := ws.Position(m.ID())
		origPos := Position{X: 10, Y: 10}
		if m.CatalogName() == mixerCatalogName {
			origPos = Position{X: 20, Y: 20}
		}
		if pos.X != origPos.X+5 || pos.Y != origPos.Y+5 {
			t.Fatalf("pasted module %s: position %v, want offset by (5,5) from %v", m.ID(), pos, origPos)
		}
	}

	if len(ws.Modules()) != 4 {
		t.Fatalf("expected 4 modules in workspace after paste, got %d", len(ws.Modules()))
	}

	var pastedMix Module
	for _, m := range pasted {
		if m.CatalogName() == mixerCatalogName {
			pastedMix = m
		}
	}
	if pastedMix == nil {
		t.Fatal("expected a pasted mixer module")
	}
	src, _, connected := pastedMix.GetInput(0)
	if !connected {
		t.Fatal("pasted mixer's input 0 should reconnect to the pasted oscillator")
	}
	if src.ID() == osc.ID() {
		t.Fatal("pasted connection must point at the pasted oscillator, not the original")
	}
}

func TestPasteSubgraph_RejectsDataWithoutPatchMagic(t *testing.T) {
	cfg := AudioConfig{SampleRate: 48000, BufferSize: 16, Channels: 1}
	ws := NewWorkspace(cfg)
	_, err := pasteSubgraph(ws, []byte("not a patch"), 0, 0)
	if err == nil {
		t.Fatal("expected an error for non-patch clipboard contents")
	}
}
