// transition.go - rising-edge detector shared by oscillator sync and
// sequencer step/sync inputs

package synth

// TransitionDetector reports a rising edge: the sample just crossed from
// at-or-below zero to strictly above zero. It starts primed "above" so
// the very first sample of a patch never reads as a spurious transition.
type TransitionDetector struct {
	wasAbove bool
}

// NewTransitionDetector returns a detector primed so the first sample
// never reports a transition.
func NewTransitionDetector() TransitionDetector {
	return TransitionDetector{wasAbove: true}
}

// IsTransition feeds one sample and reports whether it is a rising edge.
func (t *TransitionDetector) IsTransition(x float32) bool {
	above := x > 0
	transitioned := above && !t.wasAbove
	t.wasAbove = above
	return transitioned
}
