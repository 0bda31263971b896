package synth

import "testing"

func planIndex(plan []Module, m Module) int {
	for i, x := range plan {
		if x == m {
			return i
		}
	}
	return -1
}

func TestPlan_TopologicalSoundness(t *testing.T) {
	cfg := AudioConfig{SampleRate: 48000, BufferSize: 64, Channels: 2}
	osc := newOscillatorModule(cfg)
	adsr := newADSRModule(cfg)
	vca := newVCAModule(cfg)
	out := newOutputModule(cfg)

	must(t, vca.SetInput(0, osc, 0))
	must(t, vca.SetInput(1, adsr, 0))
	must(t, out.SetInput(0, vca, 0))
	must(t, out.SetInput(1, vca, 0))

	modules := []Module{osc, adsr, vca, out}
	plan := Plan(modules)

	if len(plan) != len(modules) {
		t.Fatalf("expected every module to appear exactly once, got %d of %d", len(plan), len(modules))
	}
	if planIndex(plan, osc) >= planIndex(plan, vca) {
		t.Fatal("osc must be scheduled before vca")
	}
	if planIndex(plan, adsr) >= planIndex(plan, vca) {
		t.Fatal("adsr must be scheduled before vca")
	}
	if planIndex(plan, vca) >= planIndex(plan, out) {
		t.Fatal("vca must be scheduled before out")
	}
}

func TestPlan_CycleToleranceSelfLoop(t *testing.T) {
	cfg := AudioConfig{SampleRate: 48000, BufferSize: 64, Channels: 2}
	mixer := newMixerModule(cfg)
	must(t, mixer.SetInput(0, mixer, 0))

	modules := []Module{mixer}
	plan := Plan(modules)
	if len(plan) != 1 || plan[0] != mixer {
		t.Fatalf("expected mixer to appear exactly once in the plan, got %v", plan)
	}

	for i := 0; i < 10; i++ {
		mixer.Calc()
	}
}

func TestPlan_CycleToleranceLongerCycle(t *testing.T) {
	cfg := AudioConfig{SampleRate: 48000, BufferSize: 64, Channels: 2}
	a := newMixerModule(cfg)
	b := newMixerModule(cfg)
	must(t, a.SetInput(0, b, 0))
	must(t, b.SetInput(0, a, 0))

	modules := []Module{a, b}
	plan := Plan(modules)
	if len(plan) != 2 {
		t.Fatalf("expected both modules scheduled exactly once, got %d", len(plan))
	}
	for i := 0; i < 10; i++ {
		for _, m := range plan {
			m.Calc()
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
