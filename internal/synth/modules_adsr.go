// modules_adsr.go - linear ADSR envelope generator

package synth

const adsrCatalogName = "ADSR"

type adsrStage uint8

const (
	adsrNone adsrStage = iota
	adsrAttack
	adsrDecay
	adsrSustain
	adsrRelease
)

// ADSRModule tracks a single envelope driven by a gate input, with
// re-trigger semantics that resume from the currently running value
// rather than clicking back to zero.
type ADSRModule struct {
	moduleBase

	SampleRate         int
	ASec, DSec, RSec   float64
	SVal               float64

	stage    adsrStage
	phase    float64
	fromAVal float64
	value    float64
	lastAbove bool

	ins       [1]AudioBuffer
	scratch   [1][]float32
	connected [1]bool
}

func newADSRModule(cfg AudioConfig) Module {
	m := &ADSRModule{
		moduleBase: newModuleBase(adsrCatalogName, 1, 1, []string{"gate"}, []string{"envelope"}),
		SampleRate: cfg.SampleRate,
		ASec:       0.01,
		DSec:       0.1,
		RSec:       0.2,
		SVal:       0.7,
		lastAbove:  true,
	}
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
	return m
}

func (m *ADSRModule) resizeScratch(size int) {
	for i := range m.scratch {
		m.scratch[i] = make([]float32, size)
	}
}

func (m *ADSRModule) SetAudioConfig(cfg AudioConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SampleRate = cfg.SampleRate
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
}

func clampMinDuration(sec float64) float64 {
	if sec <= 0 {
		return 1e-4
	}
	return sec
}

func (m *ADSRModule) Calc() {
	m.ins[0] = m.ResolveInput(0)

	m.mu.Lock()
	defer m.mu.Unlock()

	sr := float64(m.SampleRate)
	if sr <= 0 {
		sr = 1
	}

	SnapshotInputs(m.ins[:], m.scratch[:], m.connected[:])
	gate := m.scratch[0]

	WithWriteMany(m.outputs, func(outs [][]float32) {
		out := outs[0]
		for i := range out {
			g := gate[i]
			above := g > 0
			rising := above && !m.lastAbove
			falling := !above && m.lastAbove
			m.lastAbove = above

			if rising || (m.stage == adsrNone && above) {
				m.fromAVal = m.value
				m.stage = adsrAttack
				m.phase = 0
				m.markDirty()
			}

			switch m.stage {
			case adsrNone:
				m.value = 0
			case adsrAttack:
				m.value = m.fromAVal + (1-m.fromAVal)*m.phase
				m.phase += 1 / (sr * clampMinDuration(m.ASec))
				if m.phase >= 1 {
					m.stage = adsrDecay
					m.phase = 0
					m.markDirty()
				}
			case adsrDecay:
				m.value = 1 + (m.SVal-1)*m.phase
				m.phase += 1 / (sr * clampMinDuration(m.DSec))
				if m.phase >= 1 {
					m.stage = adsrSustain
					m.phase = 0
					m.markDirty()
				}
			case adsrSustain:
				m.value = m.SVal
				if falling {
					m.stage = adsrRelease
					m.phase = 0
					m.markDirty()
				}
			case adsrRelease:
				m.value = m.SVal * (1 - m.phase)
				m.phase += 1 / (sr * clampMinDuration(m.RSec))
				if m.phase >= 1 {
					m.stage = adsrNone
					m.phase = 0
					m.value = 0
					m.markDirty()
				}
			}

			out[i] = float32(m.value)
		}
	})
}

func (m *ADSRModule) UI(surface UISurface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	surface.Label(0, 0, adsrCatalogName)
	if v, changed := surface.Knob(0, 16, 60, 16, "attack", float32(m.ASec), 0, 5); changed {
		m.ASec = float64(v)
	}
	if v, changed := surface.Knob(60, 16, 60, 16, "decay", float32(m.DSec), 0, 5); changed {
		m.DSec = float64(v)
	}
	if v, changed := surface.Knob(120, 16, 60, 16, "sustain", float32(m.SVal), 0, 1); changed {
		m.SVal = float64(v)
	}
	if v, changed := surface.Knob(180, 16, 60, 16, "release", float32(m.RSec), 0, 5); changed {
		m.RSec = float64(v)
	}
}

func (m *ADSRModule) Encode() (ModuleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ModuleRecord{
		Tag: adsrCatalogName,
		ID:  m.id,
		Fields: map[string]any{
			"a_sec": m.ASec,
			"d_sec": m.DSec,
			"r_sec": m.RSec,
			"s_val": m.SVal,
		},
	}, nil
}

func decodeADSR(rec ModuleRecord, cfg AudioConfig) Module {
	m := newADSRModule(cfg).(*ADSRModule)
	m.id = rec.ID
	if v, ok := rec.Fields["a_sec"].(float64); ok {
		m.ASec = v
	}
	if v, ok := rec.Fields["d_sec"].(float64); ok {
		m.DSec = v
	}
	if v, ok := rec.Fields["r_sec"].(float64); ok {
		m.RSec = v
	}
	if v, ok := rec.Fields["s_val"].(float64); ok {
		m.SVal = v
	}
	return m
}
