// workspace.go - the editable module graph: membership, wiring,
// positions, and the derived execution plan

package synth

import (
	"fmt"
	"sync"
)

// Position is a module's location on the patching canvas. Purely
// cosmetic; never affects Calc order.
type Position struct {
	X, Y float32
}

// Workspace owns the set of modules in a patch, their wiring, their
// canvas positions, and the derived plan. The audio thread only ever
// takes Workspace.Plan() (a read lock, a slice copy) and Workspace.Output();
// every mutation (add/delete/connect/reconfigure) happens on the control
// thread and recomputes the plan before releasing the write lock, so the
// audio thread never observes a half-edited graph.
type Workspace struct {
	mu sync.RWMutex

	modules   []Module
	byID      map[string]Module
	positions map[string]Position
	plan      []Module
	output    Module
	config    AudioConfig
	loadGen   uint64
}

// NewWorkspace returns an empty workspace at the given audio config.
func NewWorkspace(cfg AudioConfig) *Workspace {
	return &Workspace{
		byID:      make(map[string]Module),
		positions: make(map[string]Position),
		config:    cfg,
	}
}

// AddModule inserts m at the end of the insertion order and reshapes it
// to the workspace's current audio config.
func (w *Workspace) AddModule(m Module, pos Position) {
	w.mu.Lock()
	defer w.mu.Unlock()

	m.SetAudioConfig(w.config)
	w.modules = append(w.modules, m)
	w.byID[m.ID()] = m
	w.positions[m.ID()] = pos
	w.loadGen++
	w.replanLocked()
}

// DeleteModule removes a module, disconnecting it from the graph first
// (both its own inputs and any downstream module that fed from it).
func (w *Workspace) DeleteModule(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	victim, ok := w.byID[id]
	if !ok {
		return fmt.Errorf("synthrack: no module with id %q", id)
	}

	victim.DisconnectAllInputs()
	for _, m := range w.modules {
		if m.ID() == id {
			continue
		}
		for i := uint8(0); i < m.NumInputs(); i++ {
			src, _, connected := m.GetInput(i)
			if connected && src != nil && src.ID() == id {
				_ = m.DisconnectInput(i)
			}
		}
	}

	next := w.modules[:0:0]
	for _, m := range w.modules {
		if m.ID() != id {
			next = append(next, m)
		}
	}
	w.modules = next
	delete(w.byID, id)
	delete(w.positions, id)
	if w.output != nil && w.output.ID() == id {
		w.output = nil
	}
	w.loadGen++
	w.replanLocked()
	return nil
}

// Connect wires sink's input port to read from src's output port.
func (w *Workspace) Connect(sinkID string, sinkPort uint8, srcID string, srcPort uint8) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	sink, ok := w.byID[sinkID]
	if !ok {
		return fmt.Errorf("synthrack: no module with id %q", sinkID)
	}
	src, ok := w.byID[srcID]
	if !ok {
		return fmt.Errorf("synthrack: no module with id %q", srcID)
	}
	if err := sink.SetInput(sinkPort, src, srcPort); err != nil {
		return err
	}
	w.loadGen++
	w.replanLocked()
	return nil
}

// Disconnect clears one input port back to silence.
func (w *Workspace) Disconnect(sinkID string, sinkPort uint8) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	sink, ok := w.byID[sinkID]
	if !ok {
		return fmt.Errorf("synthrack: no module with id %q", sinkID)
	}
	if err := sink.DisconnectInput(sinkPort); err != nil {
		return err
	}
	w.loadGen++
	w.replanLocked()
	return nil
}

// SetOutput designates the terminal module the audio runtime reads from.
func (w *Workspace) SetOutput(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	m, ok := w.byID[id]
	if !ok {
		return fmt.Errorf("synthrack: no module with id %q", id)
	}
	w.output = m
	return nil
}

// SetAudioConfig reshapes every module's buffers and recomputes the plan.
func (w *Workspace) SetAudioConfig(cfg AudioConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.config = cfg
	for _, m := range w.modules {
		m.SetAudioConfig(cfg)
	}
	w.loadGen++
	w.replanLocked()
	return nil
}

// MovePosition records a module's canvas position.
func (w *Workspace) MovePosition(id string, pos Position) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.byID[id]; ok {
		w.positions[id] = pos
	}
}

func (w *Workspace) replanLocked() {
	w.plan = Plan(w.modules)
}

// Plan returns the current execution order. Safe to call from the audio
// thread: it only takes a read lock and returns the cached slice (the
// slice itself is replaced wholesale on every edit, never mutated
// in-place, so the caller's copy of the header is always consistent).
func (w *Workspace) Plan() []Module {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.plan
}

// Output returns the current terminal module, or nil if none is set.
func (w *Workspace) Output() Module {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.output
}

// Config returns the workspace's current audio config.
func (w *Workspace) Config() AudioConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Modules returns a snapshot of the module slice in insertion order.
func (w *Workspace) Modules() []Module {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Module, len(w.modules))
	copy(out, w.modules)
	return out
}

// Module looks up a module by id.
func (w *Workspace) Module(id string) (Module, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	m, ok := w.byID[id]
	return m, ok
}

// Position returns a module's recorded canvas position.
func (w *Workspace) Position(id string) Position {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.positions[id]
}

// LoadGeneration is a monotonically increasing counter bumped on every
// structural edit (add/delete/connect/disconnect/reconfigure). UI layers
// poll it cheaply to know whether to re-read the graph.
func (w *Workspace) LoadGeneration() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loadGen
}

// UIDirty reports whether any module in the plan wants a repaint, and
// resets each module's flag in the process (mirrors the per-module
// monotonic hint up to whole-graph granularity).
func (w *Workspace) UIDirty() bool {
	w.mu.RLock()
	plan := w.plan
	w.mu.RUnlock()

	dirty := false
	for _, m := range plan {
		if m.UIDirty() {
			dirty = true
		}
	}
	return dirty
}
