// audiobuffer.go - shared, reference-counted audio sample buffers

package synth

import (
	"sort"
	"sync"
	"unsafe"
)

// ControlVoltage is a single synthesis sample. Audio signals live in
// [-1, 1]; CV signals use 1.0 per octave; gates are "on" above zero.
type ControlVoltage = float32

// bufferState is the storage an AudioBuffer handle points at. Several
// AudioBuffer values (vended to different downstream modules) can share
// one bufferState; resizing swaps in a new state rather than mutating the
// slice length in place, so handles already vended keep reading the old
// storage until they refresh via GetOutput (see module contract, §4.2).
type bufferState struct {
	mu   sync.RWMutex
	data []float32
}

// AudioBuffer is either empty (no allocation, reads as silence) or a
// shared mutable fixed-length sequence of ControlVoltage. It is cheap to
// copy: copies share the same underlying storage.
type AudioBuffer struct {
	state *bufferState
}

// NewAudioBuffer returns an empty buffer (size 0 / unconnected signal).
func NewAudioBuffer() AudioBuffer {
	return AudioBuffer{}
}

// NewAudioBufferSize returns a zero-initialized buffer of the given size.
func NewAudioBufferSize(size int) AudioBuffer {
	return AudioBuffer{state: &bufferState{data: make([]float32, size)}}
}

// IsEmpty reports whether the buffer has no backing storage.
func (b AudioBuffer) IsEmpty() bool {
	return b.state == nil
}

// Len returns the buffer length, or 0 for an empty buffer.
func (b AudioBuffer) Len() int {
	if b.state == nil {
		return 0
	}
	b.state.mu.RLock()
	defer b.state.mu.RUnlock()
	return len(b.state.data)
}

// Resize reallocates the backing storage only if the length differs.
// Callers that already hold a copy of this AudioBuffer value keep
// pointing at the (now orphaned) old storage; fresh handles must be
// re-fetched via the module's GetOutput.
func (b *AudioBuffer) Resize(size int) {
	if b.state != nil {
		b.state.mu.Lock()
		same := len(b.state.data) == size
		b.state.mu.Unlock()
		if same {
			return
		}
	}
	b.state = &bufferState{data: make([]float32, size)}
}

// Clone produces an independent buffer with copied contents.
func (b AudioBuffer) Clone() AudioBuffer {
	if b.state == nil {
		return AudioBuffer{}
	}
	b.state.mu.RLock()
	defer b.state.mu.RUnlock()
	cp := make([]float32, len(b.state.data))
	copy(cp, b.state.data)
	return AudioBuffer{state: &bufferState{data: cp}}
}

// WithRead acquires a read view. ok is false for an empty buffer, in
// which case data is nil and callers must treat the signal as silence.
func (b AudioBuffer) WithRead(fn func(data []float32, ok bool)) {
	if b.state == nil {
		fn(nil, false)
		return
	}
	b.state.mu.RLock()
	defer b.state.mu.RUnlock()
	fn(b.state.data, true)
}

// WithWrite acquires an exclusive write view. Calling this on an empty
// buffer is a programmer error (modules always own their output storage).
func (b AudioBuffer) WithWrite(fn func(data []float32)) {
	if b.state == nil {
		panic("synthrack: WithWrite on an empty AudioBuffer")
	}
	b.state.mu.Lock()
	defer b.state.mu.Unlock()
	fn(b.state.data)
}

// sortedStates returns the distinct, non-nil buffer states among bufs,
// ordered by address. Locking in a fixed order across every call site
// means a multi-buffer acquire can never deadlock against another.
func sortedStates(bufs []AudioBuffer) []*bufferState {
	seen := make(map[*bufferState]bool, len(bufs))
	states := make([]*bufferState, 0, len(bufs))
	for _, b := range bufs {
		if b.state == nil || seen[b.state] {
			continue
		}
		seen[b.state] = true
		states = append(states, b.state)
	}
	sort.Slice(states, func(i, j int) bool {
		return uintptr(unsafe.Pointer(states[i])) < uintptr(unsafe.Pointer(states[j]))
	})
	return states
}

// WithReadMany acquires read views on several buffers at once, in the
// order passed. Within the audio thread no caller ever contends for these
// locks (the plan orders writers before readers); this only exists to
// make that invariant explicit and to fail safe (block rather than race)
// if it is ever violated.
func WithReadMany(bufs []AudioBuffer, fn func(views [][]float32)) {
	for _, st := range sortedStates(bufs) {
		st.mu.RLock()
		defer st.mu.RUnlock()
	}
	views := make([][]float32, len(bufs))
	for i, b := range bufs {
		if b.state != nil {
			views[i] = b.state.data
		}
	}
	fn(views)
}

// WithWriteMany acquires exclusive write views on several buffers at once.
func WithWriteMany(bufs []AudioBuffer, fn func(views [][]float32)) {
	for _, st := range sortedStates(bufs) {
		st.mu.Lock()
		defer st.mu.Unlock()
	}
	views := make([][]float32, len(bufs))
	for i, b := range bufs {
		if b.state != nil {
			views[i] = b.state.data
		}
	}
	fn(views)
}

// SnapshotInputs copies the current contents of ins into scratch (sized
// and ordered to match ins, owned and reused by the caller across calls
// so Calc never allocates) and records which ports were connected. An
// unconnected port's scratch slice is zeroed rather than left with its
// previous block's contents, so callers that don't special-case
// connected[i] still read correct silence. The read lock on ins is held
// only for the copy itself and is fully released before this call
// returns, so a module can safely follow this with a WithWriteMany on
// its own outputs even when one of ins aliases one of those outputs — a
// self-loop patch, which would deadlock if the write lock were instead
// acquired from inside the read callback.
func SnapshotInputs(ins []AudioBuffer, scratch [][]float32, connected []bool) {
	WithReadMany(ins, func(views [][]float32) {
		for i, v := range views {
			if v == nil {
				connected[i] = false
				for j := range scratch[i] {
					scratch[i][j] = 0
				}
				continue
			}
			connected[i] = true
			copy(scratch[i], v)
		}
	})
}
