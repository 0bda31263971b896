package synth

import "testing"

// The formula in the rising-edge definition is: is_transition(x) := (x >
// 0) ∧ ¬last_above, then last_above := (x > 0). Applying it by hand to
// 0.0, 0.1, 0.1, 0.0, 0.5 against a detector primed last_above=true
// yields false, true, false, false, true — the second sample is the one
// that actually crosses from at-or-below-zero to above-zero, so it is
// the one that transitions, not the fifth-sample-only reading a
// surface description of the same example might suggest.
func TestTransitionDetector_RisingEdgeFormula(t *testing.T) {
	det := NewTransitionDetector()
	in := []float32{0.0, 0.1, 0.1, 0.0, 0.5}
	want := []bool{false, true, false, false, true}

	for i, x := range in {
		got := det.IsTransition(x)
		if got != want[i] {
			t.Fatalf("sample %d (x=%v): got %v, want %v", i, x, got, want[i])
		}
	}
}

func TestTransitionDetector_PrimedAboveSuppressesInitialZero(t *testing.T) {
	det := NewTransitionDetector()
	if det.IsTransition(0) {
		t.Fatal("first sample at/below zero must never read as a transition")
	}
}

func TestTransitionDetector_SustainedHighDoesNotRetrigger(t *testing.T) {
	det := NewTransitionDetector()
	det.IsTransition(0) // bring wasAbove to false first
	if !det.IsTransition(1) {
		t.Fatal("rise from a below-zero sample must transition")
	}
	for i := 0; i < 5; i++ {
		if det.IsTransition(1) {
			t.Fatalf("sustained high must not retrigger at iteration %d", i)
		}
	}
}
