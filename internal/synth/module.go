// module.go - the synth module contract shared by every catalog entry

package synth

import (
	"fmt"

	"github.com/google/uuid"
)

// AudioConfig describes the audio thread's operating point. Every module
// reshapes its internal buffers when this changes.
type AudioConfig struct {
	SampleRate int
	BufferSize int
	Channels   int
}

// Validate rejects configurations no module could usefully calc() under.
func (c AudioConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("synthrack: sample rate must be positive, got %d", c.SampleRate)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("synthrack: buffer size must be positive, got %d", c.BufferSize)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("synthrack: channel count must be positive, got %d", c.Channels)
	}
	return nil
}

// UISurface is a pure renderer handed to Module.UI. It never drives audio;
// modules read from it (layout, input state) and draw into it. A module
// must not mutate its own synthesis state from inside UI beyond recording
// user intent (e.g. a slider drag) for calc() to act on next block.
type UISurface interface {
	// Label draws a short static label at the given position.
	Label(x, y float32, text string)
	// Knob draws/handles a rotary control bound to *value, returning the
	// (possibly updated) value and whether the user changed it this frame.
	Knob(x, y, w, h float32, label string, value float32, min, max float32) (float32, bool)
	// Button draws a clickable button, returning true on the frame it's clicked.
	Button(x, y, w, h float32, label string) bool
	// Cell draws one sequencer-style grid cell and returns true if clicked.
	Cell(x, y, size float32, filled bool) bool
}

// ModuleRecord is the tagged-variant encoding of a module's persistent
// state, used by the patch codec. Ephemeral state (running phase,
// envelope position, UI dirty flags, decoded sample data) is never
// written here.
type ModuleRecord struct {
	Tag    string
	ID     string
	Fields map[string]any
}

// Module is the contract every catalog entry implements. Concrete
// implementations are goroutine-safe: Calc, UI, and the accessors below
// may be called concurrently from the audio thread and the control/UI
// thread, and each implementation guards its own mutable state.
type Module interface {
	// ID is a process-lifetime-stable identity, not reused even if the
	// module is deleted and another of the same catalog entry is added.
	ID() string
	// CatalogName is the registered catalog key this module was built from.
	CatalogName() string

	NumInputs() uint8
	NumOutputs() uint8

	// InputLabel/OutputLabel name a port for UI and patch-file purposes.
	InputLabel(i uint8) string
	OutputLabel(i uint8) string

	// GetInput reports what currently feeds input port i, if anything.
	GetInput(i uint8) (src Module, srcPort uint8, connected bool)
	// SetInput wires input port i to read from src's output srcPort.
	SetInput(i uint8, src Module, srcPort uint8) error
	// DisconnectInput clears input port i back to silence.
	DisconnectInput(i uint8) error
	// DisconnectAllInputs clears every input port; used before deletion.
	DisconnectAllInputs()

	// ResolveInput returns the buffer currently backing input port i, or
	// an empty AudioBuffer if unconnected. Calc() uses this to read.
	ResolveInput(i uint8) AudioBuffer
	// GetOutput returns the buffer backing output port i.
	GetOutput(i uint8) (AudioBuffer, error)

	// Calc advances the module by one audio block. It must not allocate,
	// perform I/O, or block on anything but its own short-held lock.
	Calc()

	// SetAudioConfig reshapes internal buffers for a new block size /
	// sample rate / channel count. Buffer identity between two calls with
	// the same config is preserved (see AudioBuffer.Resize).
	SetAudioConfig(cfg AudioConfig)

	// UI draws this module's panel. Pure: must not touch synthesis state
	// beyond queuing control-thread-visible intent for Calc to pick up.
	UI(surface UISurface)
	// UIDirty reports whether the module's visual state changed since the
	// last call and resets the flag. Monotonic within a block: true means
	// "repaint", never "repaint twice".
	UIDirty() bool

	// Encode produces this module's persistent-state record for the patch
	// codec. Ephemeral runtime state is omitted.
	Encode() (ModuleRecord, error)
}

// newModuleID returns a fresh stable identity for a module instance.
func newModuleID() string {
	return uuid.NewString()
}

// inputSlot is the embeddable bookkeeping for one input port: what it is
// wired to, if anything.
type inputSlot struct {
	src     Module
	srcPort uint8
	wired   bool
}

func (s *inputSlot) disconnect() {
	s.src = nil
	s.srcPort = 0
	s.wired = false
}

// resolve reads the connected source's output buffer, or returns an empty
// buffer if this slot is unwired.
func (s *inputSlot) resolve() AudioBuffer {
	if !s.wired || s.src == nil {
		return AudioBuffer{}
	}
	buf, err := s.src.GetOutput(s.srcPort)
	if err != nil {
		return AudioBuffer{}
	}
	return buf
}
