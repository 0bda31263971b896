package synth

import "testing"

func TestScript_DefaultExprSumsInputs(t *testing.T) {
	cfg := AudioConfig{SampleRate: 48000, BufferSize: 1, Channels: 1}
	m := newScriptModule(cfg).(*ScriptModule)

	a := NewAudioBufferSize(1)
	a.WithWrite(func(d []float32) { d[0] = 0.2 })
	b := NewAudioBufferSize(1)
	b.WithWrite(func(d []float32) { d[0] = 0.3 })
	m.inputs[0] = inputSlot{src: &directBufferModule{buf: a}, wired: true}
	m.inputs[1] = inputSlot{src: &directBufferModule{buf: b}, wired: true}

	m.Calc()

	out, _ := m.GetOutput(0)
	out.WithRead(func(data []float32, ok bool) {
		want := float32(0.5)
		if data[0] < want-1e-5 || data[0] > want+1e-5 {
			t.Fatalf("got %v, want ~%v", data[0], want)
		}
	})
}

func TestScript_OutputClampedToUnitRange(t *testing.T) {
	cfg := AudioConfig{SampleRate: 48000, BufferSize: 1, Channels: 1}
	m := newScriptModule(cfg).(*ScriptModule)
	m.SetExpr("return a * 100")

	a := NewAudioBufferSize(1)
	a.WithWrite(func(d []float32) { d[0] = 1 })
	m.inputs[0] = inputSlot{src: &directBufferModule{buf: a}, wired: true}

	m.Calc()

	out, _ := m.GetOutput(0)
	out.WithRead(func(data []float32, ok bool) {
		if data[0] != 1 {
			t.Fatalf("expected clamp to 1, got %v", data[0])
		}
	})
}

func TestScript_BadExprLeavesPreviousCompiledFunctionInPlace(t *testing.T) {
	// recompile() only replaces fn on success, so a bad edit can't knock
	// out a previously-working script mid-session.
	cfg := AudioConfig{SampleRate: 48000, BufferSize: 1, Channels: 1}
	m := newScriptModule(cfg).(*ScriptModule)
	m.SetExpr("return a - b")
	m.SetExpr("this is not valid lua (((")
	if m.compileErr == nil {
		t.Fatal("expected compileErr to be set after a bad SetExpr")
	}

	a := NewAudioBufferSize(1)
	a.WithWrite(func(d []float32) { d[0] = 0.7 })
	b := NewAudioBufferSize(1)
	b.WithWrite(func(d []float32) { d[0] = 0.2 })
	m.inputs[0] = inputSlot{src: &directBufferModule{buf: a}, wired: true}
	m.inputs[1] = inputSlot{src: &directBufferModule{buf: b}, wired: true}

	m.Calc()

	out, _ := m.GetOutput(0)
	out.WithRead(func(data []float32, ok bool) {
		want := float32(0.5) // still running "return a - b", the last good compile
		if data[0] < want-1e-5 || data[0] > want+1e-5 {
			t.Fatalf("got %v, want ~%v (previous compiled expr should still run)", data[0], want)
		}
	})
}

func TestScript_NeverCompiledProducesSilence(t *testing.T) {
	cfg := AudioConfig{SampleRate: 48000, BufferSize: 4, Channels: 1}
	m := newScriptModule(cfg).(*ScriptModule)
	m.fn = nil // simulate a patch loaded with an expr that never compiled

	m.Calc()

	out, _ := m.GetOutput(0)
	out.WithRead(func(data []float32, ok bool) {
		for i, v := range data {
			if v != 0 {
				t.Fatalf("sample %d: expected silence with no compiled function, got %v", i, v)
			}
		}
	})
}
