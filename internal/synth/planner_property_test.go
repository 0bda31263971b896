package synth

import (
	"testing"

	"pgregory.net/rapid"
)

// TestPlan_RandomGraphsScheduleEveryModuleOnce is the pack's
// property-based counterpart to TestPlan_TopologicalSoundness: instead of
// one hand-built chain, rapid generates random wiring (including cycles)
// over a fixed pool of mixer modules and checks that every module appears
// in the plan exactly once and that running the plan never panics. Edge
// ordering is checked by the hand-built cases in planner_test.go.
func TestPlan_RandomGraphsScheduleEveryModuleOnce(t *testing.T) {
	cfg := AudioConfig{SampleRate: 48000, BufferSize: 32, Channels: 1}

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "n")
		modules := make([]Module, n)
		for i := range modules {
			modules[i] = newMixerModule(cfg)
		}

		// Wire each module's 4 input ports to a random subset of the other
		// modules (including itself, to exercise self-loops), leaving some
		// unwired to mirror a realistic sparse patch.
		for i, m := range modules {
			mm := m.(*MixerModule)
			for port := uint8(0); port < 4; port++ {
				if !rapid.Bool().Draw(rt, "wire") {
					continue
				}
				srcIdx := rapid.IntRange(0, n-1).Draw(rt, "src")
				_ = mm.SetInput(port, modules[srcIdx], 0)
			}
			_ = i
		}

		plan := Plan(modules)
		if len(plan) != len(modules) {
			rt.Fatalf("plan dropped or duplicated modules: got %d, want %d", len(plan), len(modules))
		}
		seen := make(map[Module]bool, len(plan))
		for _, m := range plan {
			if seen[m] {
				rt.Fatalf("module scheduled twice: %v", m.ID())
			}
			seen[m] = true
		}

		// Plan must never panic when executed, even with cycles present.
		for _, m := range plan {
			m.Calc()
		}
	})
}
