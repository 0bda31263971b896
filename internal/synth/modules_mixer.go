// modules_mixer.go - four-input weighted-sum mixer

package synth

const mixerCatalogName = "Mono Mixer"

// MixerModule sums up to four inputs, each scaled by its own gain.
type MixerModule struct {
	moduleBase

	Gain [4]float64 // each in [0, 2]

	ins       [4]AudioBuffer
	scratch   [4][]float32
	connected [4]bool
}

func newMixerModule(cfg AudioConfig) Module {
	m := &MixerModule{
		moduleBase: newModuleBase(mixerCatalogName, 4, 1,
			[]string{"in 1", "in 2", "in 3", "in 4"}, []string{"out"}),
		Gain: [4]float64{1, 1, 1, 1},
	}
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
	return m
}

func (m *MixerModule) resizeScratch(size int) {
	for i := range m.scratch {
		m.scratch[i] = make([]float32, size)
	}
}

func (m *MixerModule) SetAudioConfig(cfg AudioConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
}

func (m *MixerModule) Calc() {
	for i := range m.ins {
		m.ins[i] = m.ResolveInput(uint8(i))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	SnapshotInputs(m.ins[:], m.scratch[:], m.connected[:])

	gain := m.Gain
	scratch := m.scratch
	connected := m.connected
	WithWriteMany(m.outputs, func(outs [][]float32) {
		out := outs[0]
		for i := range out {
			var sum float64
			for k := range scratch {
				if connected[k] {
					sum += gain[k] * float64(scratch[k][i])
				}
			}
			out[i] = float32(sum)
		}
	})
}

func (m *MixerModule) UI(surface UISurface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	surface.Label(0, 0, mixerCatalogName)
	for i := 0; i < 4; i++ {
		if v, changed := surface.Knob(float32(i)*40, 16, 36, 16, "gain", float32(m.Gain[i]), 0, 2); changed {
			m.Gain[i] = float64(v)
		}
	}
}

func (m *MixerModule) Encode() (ModuleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ModuleRecord{
		Tag: mixerCatalogName,
		ID:  m.id,
		Fields: map[string]any{
			"gain": []float64{m.Gain[0], m.Gain[1], m.Gain[2], m.Gain[3]},
		},
	}, nil
}

func decodeMixer(rec ModuleRecord, cfg AudioConfig) Module {
	m := newMixerModule(cfg).(*MixerModule)
	m.id = rec.ID
	if gs, ok := rec.Fields["gain"].([]float64); ok {
		for i := 0; i < len(gs) && i < 4; i++ {
			m.Gain[i] = gs[i]
		}
	}
	return m
}
