// modules_oscillator.go - PolyBLEP-antialiased oscillator with hard sync

package synth

import "math"

const oscillatorCatalogName = "Oscillator"

// polyBLEP approximates a band-limited step near a discontinuity. t is
// the phase position, dt the phase increment per sample.
func polyBLEP(t, dt float64) float64 {
	if dt == 0 {
		return 0
	}
	if t < dt {
		u := t / dt
		return u + u - u*u - 1
	}
	if t > 1-dt {
		u := (t - 1) / dt
		return u*u + 2*u + 1
	}
	return 0
}

// OscillatorModule shares one phase accumulator across sine/square/saw
// outputs. Input 0 is pitch CV (1 V/oct), input 1 is hard sync.
type OscillatorModule struct {
	moduleBase

	SampleRate int
	Val        float64 // coarse+semitone+fine, summed by the host UI
	Antialias  bool

	pos    float64
	sync   TransitionDetector

	ins       [2]AudioBuffer
	scratch   [2][]float32
	connected [2]bool
}

func newOscillatorModule(cfg AudioConfig) Module {
	m := &OscillatorModule{
		moduleBase: newModuleBase(oscillatorCatalogName, 2, 3,
			[]string{"pitch cv", "sync"},
			[]string{"sine", "square", "saw"}),
		SampleRate: cfg.SampleRate,
		Antialias:  true,
		sync:       NewTransitionDetector(),
	}
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
	return m
}

func (m *OscillatorModule) resizeScratch(size int) {
	for i := range m.scratch {
		m.scratch[i] = make([]float32, size)
	}
}

func (m *OscillatorModule) SetAudioConfig(cfg AudioConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SampleRate = cfg.SampleRate
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
}

func (m *OscillatorModule) Calc() {
	m.ins[0] = m.ResolveInput(0)
	m.ins[1] = m.ResolveInput(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	sampleRate := float64(m.SampleRate)
	if sampleRate <= 0 {
		sampleRate = 1
	}

	SnapshotInputs(m.ins[:], m.scratch[:], m.connected[:])
	pitch, sync := m.scratch[0], m.scratch[1]
	syncConnected := m.connected[1]

	WithWriteMany(m.outputs, func(outs [][]float32) {
		sine, square, saw := outs[0], outs[1], outs[2]
		for i := range sine {
			cv := float64(pitch[i])
			if syncConnected && m.sync.IsTransition(sync[i]) {
				m.pos = 0
			}

			freqHz := 440 * math.Pow(2, cv+m.Val)
			delta := freqHz / sampleRate

			sine[i] = float32(math.Sin(2 * math.Pi * m.pos))

			naiveSquare := -1.0
			if m.pos < 0.5 {
				naiveSquare = 1.0
			}
			if m.Antialias {
				naiveSquare -= polyBLEP(m.pos, delta) - polyBLEP(math.Mod(m.pos+0.5, 1), delta)
			}
			square[i] = float32(naiveSquare)

			naiveSaw := 2*m.pos - 1
			if m.Antialias {
				naiveSaw -= polyBLEP(m.pos, delta)
			}
			saw[i] = float32(naiveSaw)

			m.pos = math.Mod(m.pos+delta, 1)
			if m.pos < 0 {
				m.pos += 1
			}
		}
	})
}

func (m *OscillatorModule) UI(surface UISurface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	surface.Label(0, 0, oscillatorCatalogName)
	if v, changed := surface.Knob(0, 16, 80, 16, "pitch", float32(m.Val), -4, 4); changed {
		m.Val = float64(v)
		m.dirty = true
	}
	if surface.Button(0, 36, 60, 16, "antialias") {
		m.Antialias = !m.Antialias
		m.dirty = true
	}
}

func (m *OscillatorModule) Encode() (ModuleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ModuleRecord{
		Tag: oscillatorCatalogName,
		ID:  m.id,
		Fields: map[string]any{
			"val":       m.Val,
			"antialias": m.Antialias,
		},
	}, nil
}

func decodeOscillator(rec ModuleRecord, cfg AudioConfig) Module {
	m := newOscillatorModule(cfg).(*OscillatorModule)
	m.id = rec.ID
	if v, ok := rec.Fields["val"].(float64); ok {
		m.Val = v
	}
	if v, ok := rec.Fields["antialias"].(bool); ok {
		m.Antialias = v
	}
	return m
}
