// modules_output.go - terminal N-channel passthrough module

package synth

const outputCatalogName = "Output"

// OutputModule is the terminal module the audio runtime reads from: one
// input port per device channel, copied straight through (or zero-filled
// when unconnected).
type OutputModule struct {
	moduleBase

	ins       []AudioBuffer
	scratch   [][]float32
	connected []bool
}

func newOutputModule(cfg AudioConfig) Module {
	channels := cfg.Channels
	if channels <= 0 {
		channels = 2
	}
	inLabels := make([]string, channels)
	for i := range inLabels {
		inLabels[i] = "in"
	}
	m := &OutputModule{
		moduleBase: newModuleBase(outputCatalogName, channels, channels, inLabels, nil),
	}
	m.resizeChannels(channels)
	m.resizeOutputs(cfg.BufferSize)
	m.resizeScratch(cfg.BufferSize)
	return m
}

func (m *OutputModule) resizeChannels(channels int) {
	m.ins = make([]AudioBuffer, channels)
	m.scratch = make([][]float32, channels)
	m.connected = make([]bool, channels)
}

func (m *OutputModule) resizeScratch(size int) {
	for i := range m.scratch {
		m.scratch[i] = make([]float32, size)
	}
}

func (m *OutputModule) SetAudioConfig(cfg AudioConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	channels := cfg.Channels
	if channels <= 0 {
		channels = 2
	}
	if len(m.inputs) != channels {
		m.inputs = make([]inputSlot, channels)
		m.outputs = make([]AudioBuffer, channels)
		m.resizeChannels(channels)
	}
	m.resizeOutputs(cfg.BufferSize)
	m.resizeScratch(cfg.BufferSize)
}

func (m *OutputModule) Calc() {
	for i := range m.ins {
		m.ins[i] = m.ResolveInput(uint8(i))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	SnapshotInputs(m.ins, m.scratch, m.connected)

	scratch := m.scratch
	connected := m.connected
	WithWriteMany(m.outputs, func(outs [][]float32) {
		for c, out := range outs {
			if !connected[c] {
				for i := range out {
					out[i] = 0
				}
				continue
			}
			copy(out, scratch[c])
		}
	})
}

func (m *OutputModule) UI(surface UISurface) {
	surface.Label(0, 0, outputCatalogName)
}

func (m *OutputModule) Encode() (ModuleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ModuleRecord{Tag: outputCatalogName, ID: m.id, Fields: map[string]any{"channels": len(m.outputs)}}, nil
}

func decodeOutput(rec ModuleRecord, cfg AudioConfig) Module {
	m := newOutputModule(cfg).(*OutputModule)
	m.id = rec.ID
	return m
}
