// runtime.go - drives the workspace plan at block boundaries and stages
// terminal output into an interleaved device buffer

package synth

import "sync"

// Runtime pulls audio out of a Workspace one interleaved sample at a
// time, recomputing the whole plan once per block boundary. A tiny
// amount of state (a sample cursor into the current block) lets
// FillFloat32 satisfy any device buffer size the backend asks for.
type Runtime struct {
	ws *Workspace

	mu      sync.Mutex
	cursor  int
	staging [][]float32 // one slice per channel, length == BufferSize

	onDirty func()
}

// NewRuntime returns a Runtime over ws. onDirty, if non-nil, is invoked
// once per block in which any module reported UIDirty.
func NewRuntime(ws *Workspace, onDirty func()) *Runtime {
	return &Runtime{ws: ws, onDirty: onDirty}
}

func (r *Runtime) ensureStaging(cfg AudioConfig) {
	if len(r.staging) == cfg.Channels && len(r.staging) > 0 && len(r.staging[0]) == cfg.BufferSize {
		return
	}
	r.staging = make([][]float32, cfg.Channels)
	for c := range r.staging {
		r.staging[c] = make([]float32, cfg.BufferSize)
	}
	r.cursor = 0
}

// advanceBlock runs the plan once and copies the terminal module's output
// channels into the staging buffers.
func (r *Runtime) advanceBlock(cfg AudioConfig) {
	plan := r.ws.Plan()
	for _, m := range plan {
		m.Calc()
	}

	output := r.ws.Output()
	if output != nil {
		for c := 0; c < cfg.Channels && c < int(output.NumOutputs()); c++ {
			buf, err := output.GetOutput(uint8(c))
			if err != nil || buf.IsEmpty() {
				for i := range r.staging[c] {
					r.staging[c][i] = 0
				}
				continue
			}
			buf.WithRead(func(data []float32, ok bool) {
				if !ok {
					for i := range r.staging[c] {
						r.staging[c][i] = 0
					}
					return
				}
				n := copy(r.staging[c], data)
				for i := n; i < len(r.staging[c]); i++ {
					r.staging[c][i] = 0
				}
			})
		}
	} else {
		for c := range r.staging {
			for i := range r.staging[c] {
				r.staging[c][i] = 0
			}
		}
	}

	if r.onDirty != nil && r.ws.UIDirty() {
		r.onDirty()
	}
}

// FillFloat32 fills out with interleaved float32 samples (len(out) must
// be a multiple of the channel count), advancing the plan at every block
// boundary.
func (r *Runtime) FillFloat32(out []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg := r.ws.Config()
	if cfg.Channels == 0 || cfg.BufferSize == 0 {
		for i := range out {
			out[i] = 0
		}
		return
	}
	r.ensureStaging(cfg)

	channels := cfg.Channels
	for i := 0; i < len(out); i += channels {
		if r.cursor == 0 {
			r.advanceBlock(cfg)
		}
		for c := 0; c < channels && i+c < len(out); c++ {
			out[i+c] = r.staging[c][r.cursor]
		}
		r.cursor++
		if r.cursor >= cfg.BufferSize {
			r.cursor = 0
		}
	}
}
