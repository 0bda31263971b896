// modules_noise.go - uniform white noise source

package synth

import "math/rand"

const noiseCatalogName = "Noise"

// NoiseModule has no inputs and one output of samples uniform in [-1, 1].
type NoiseModule struct {
	moduleBase
}

func newNoiseModule(cfg AudioConfig) Module {
	m := &NoiseModule{
		moduleBase: newModuleBase(noiseCatalogName, 0, 1, nil, []string{"out"}),
	}
	m.resizeOutputs(cfg.BufferSize)
	return m
}

func (m *NoiseModule) SetAudioConfig(cfg AudioConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resizeOutputs(cfg.BufferSize)
}

func (m *NoiseModule) Calc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs[0].WithWrite(func(data []float32) {
		for i := range data {
			data[i] = rand.Float32()*2 - 1
		}
	})
}

func (m *NoiseModule) UI(surface UISurface) {
	surface.Label(0, 0, noiseCatalogName)
}

func (m *NoiseModule) Encode() (ModuleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ModuleRecord{Tag: noiseCatalogName, ID: m.id, Fields: map[string]any{}}, nil
}

func decodeNoise(rec ModuleRecord, cfg AudioConfig) Module {
	m := newNoiseModule(cfg).(*NoiseModule)
	m.id = rec.ID
	return m
}
