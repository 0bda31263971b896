// modules_filter.go - Stilson/Smith Moog ladder filter

package synth

const filterCatalogName = "Moog Filter"

// FilterModule is a four-pole resonant ladder filter with lowpass,
// highpass, and bandpass taps, matching the classic Stilson/Smith
// discretization of the Moog ladder.
type FilterModule struct {
	moduleBase

	BaseFreq   float64 // [0, 0.9]
	ExpAmount  float64
	ResBase    float64 // [0, 1]

	b                [5]float64
	f, p, q          float64
	lastFreq, lastRes float64
	latched          bool

	ins       [3]AudioBuffer
	scratch   [3][]float32
	connected [3]bool
}

func newFilterModule(cfg AudioConfig) Module {
	m := &FilterModule{
		moduleBase: newModuleBase(filterCatalogName, 3, 3,
			[]string{"in", "freq cv", "res cv"},
			[]string{"lowpass", "highpass", "bandpass"}),
		BaseFreq:  0.3,
		ExpAmount: 0.5,
		ResBase:   0,
	}
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
	return m
}

func (m *FilterModule) resizeScratch(size int) {
	for i := range m.scratch {
		m.scratch[i] = make([]float32, size)
	}
}

func (m *FilterModule) SetAudioConfig(cfg AudioConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
}

func clamp64(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func (m *FilterModule) Calc() {
	m.ins[0] = m.ResolveInput(0)
	m.ins[1] = m.ResolveInput(1)
	m.ins[2] = m.ResolveInput(2)

	m.mu.Lock()
	defer m.mu.Unlock()

	SnapshotInputs(m.ins[:], m.scratch[:], m.connected[:])
	in, freqCVs, resCVs := m.scratch[0], m.scratch[1], m.scratch[2]

	WithWriteMany(m.outputs, func(outs [][]float32) {
		lp, hp, bp := outs[0], outs[1], outs[2]
		for i := range lp {
			x := float64(in[i])
			freqCV := float64(freqCVs[i])
			resCV := float64(resCVs[i])

			frequency := clamp64(m.BaseFreq+freqCV*m.ExpAmount, 0, 0.9)
			res := clamp64(m.ResBase+resCV, 0, 1)

			if !m.latched || frequency != m.lastFreq || res != m.lastRes {
				q := 1 - frequency
				p := frequency + 0.8*frequency*q
				f := 2*p - 1
				q = res * (1 + 0.5*q*(1-q+5.6*q*q))
				m.p, m.f, m.q = p, f, q
				m.lastFreq, m.lastRes = frequency, res
				m.latched = true
			}

			old := m.b
			xPrime := x - m.q*old[4]

			b1 := (xPrime+old[0])*m.p - old[1]*m.f
			b2 := (b1+old[1])*m.p - old[2]*m.f
			b3 := (b2+old[2])*m.p - old[3]*m.f
			b4 := (b3+old[3])*m.p - old[4]*m.f
			b4 -= b4 * b4 * b4 * 0.166667

			m.b[0] = xPrime
			m.b[1] = clamp64(b1, -1, 1)
			m.b[2] = clamp64(b2, -1, 1)
			m.b[3] = clamp64(b3, -1, 1)
			m.b[4] = clamp64(b4, -1, 1)

			lp[i] = float32(m.b[4])
			hp[i] = float32(xPrime - m.b[4])
			bp[i] = float32(3 * (m.b[3] - m.b[4]))
		}
	})
}

func (m *FilterModule) UI(surface UISurface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	surface.Label(0, 0, filterCatalogName)
	if v, changed := surface.Knob(0, 16, 60, 16, "freq", float32(m.BaseFreq), 0, 0.9); changed {
		m.BaseFreq = float64(v)
	}
	if v, changed := surface.Knob(60, 16, 60, 16, "res", float32(m.ResBase), 0, 1); changed {
		m.ResBase = float64(v)
	}
}

func (m *FilterModule) Encode() (ModuleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ModuleRecord{
		Tag: filterCatalogName,
		ID:  m.id,
		Fields: map[string]any{
			"base_freq":  m.BaseFreq,
			"exp_amount": m.ExpAmount,
			"res_base":   m.ResBase,
		},
	}, nil
}

func decodeFilter(rec ModuleRecord, cfg AudioConfig) Module {
	m := newFilterModule(cfg).(*FilterModule)
	m.id = rec.ID
	if v, ok := rec.Fields["base_freq"].(float64); ok {
		m.BaseFreq = v
	}
	if v, ok := rec.Fields["exp_amount"].(float64); ok {
		m.ExpAmount = v
	}
	if v, ok := rec.Fields["res_base"].(float64); ok {
		m.ResBase = v
	}
	return m
}
