// modules_sampleplayer.go - one-shot WAV sample playback with CV pitch

package synth

import (
	"math"
	"sync"
)

const samplePlayerCatalogName = "Sample player"

// waveBox is the mutex-guarded handoff point between the background
// loader goroutine and the audio thread. The audio thread only ever
// TryLocks it: a load in progress is not a stall, it's silence for one
// block.
type waveBox struct {
	mu         sync.Mutex
	samples    []float32
	sampleRate int
	fresh      bool
}

// SamplePlayerModule plays a loaded WAV sample from the start on every
// gate rising edge, pitched by a CV input.
type SamplePlayerModule struct {
	moduleBase

	SampleRate int
	Path       string

	wave *waveBox

	pos     float64
	playing bool
	gateDet TransitionDetector

	ins       [2]AudioBuffer
	scratch   [2][]float32
	connected [2]bool
}

func newSamplePlayerModule(cfg AudioConfig) Module {
	m := &SamplePlayerModule{
		moduleBase: newModuleBase(samplePlayerCatalogName, 2, 1, []string{"gate", "pitch cv"}, []string{"out"}),
		SampleRate: cfg.SampleRate,
		wave:       &waveBox{},
		gateDet:    NewTransitionDetector(),
	}
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
	return m
}

func (m *SamplePlayerModule) resizeScratch(size int) {
	for i := range m.scratch {
		m.scratch[i] = make([]float32, size)
	}
}

func (m *SamplePlayerModule) SetAudioConfig(cfg AudioConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SampleRate = cfg.SampleRate
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
}

// Load launches an async decode of path. The audio thread adopts the
// result at the start of whichever future calc wins the waveBox TryLock.
func (m *SamplePlayerModule) Load(path string) {
	m.mu.Lock()
	m.Path = path
	m.mu.Unlock()
	loadSampleAsync(path, m.wave)
}

// loadTestSamples installs decoded samples directly, bypassing the
// background loader; used by tests that construct a buffer in memory.
func (m *SamplePlayerModule) loadTestSamples(samples []float32, sampleRate int) {
	m.wave.mu.Lock()
	m.wave.samples = samples
	m.wave.sampleRate = sampleRate
	m.wave.fresh = true
	m.wave.mu.Unlock()
}

func (m *SamplePlayerModule) Calc() {
	m.ins[0] = m.ResolveInput(0)
	m.ins[1] = m.ResolveInput(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	deviceSR := float64(m.SampleRate)
	if deviceSR <= 0 {
		deviceSR = 1
	}

	locked := m.wave.mu.TryLock()
	if !locked {
		SnapshotInputs(m.ins[:1], m.scratch[:1], m.connected[:1])
		gate := m.scratch[0]
		WithWriteMany(m.outputs, func(outs [][]float32) {
			out := outs[0]
			for i := range out {
				m.gateDet.IsTransition(gate[i])
				out[i] = 0
			}
		})
		return
	}

	if m.wave.fresh {
		m.pos = 0
		m.playing = false
		m.wave.fresh = false
	}
	samples := m.wave.samples
	sampleRate := m.wave.sampleRate
	m.wave.mu.Unlock()

	bufSR := float64(sampleRate)
	if bufSR <= 0 {
		bufSR = deviceSR
	}

	SnapshotInputs(m.ins[:], m.scratch[:], m.connected[:])
	gate, cvs := m.scratch[0], m.scratch[1]

	WithWriteMany(m.outputs, func(outs [][]float32) {
		out := outs[0]
		for i := range out {
			g, cv := gate[i], cvs[i]

			if m.gateDet.IsTransition(g) {
				m.pos = 0
				m.playing = true
			}
			if m.playing && m.pos >= float64(len(samples)) {
				m.playing = false
				m.pos = 0
			}

			var v float32
			if m.playing && len(samples) > 0 {
				idx := int(m.pos)
				if idx >= 0 && idx < len(samples) {
					v = samples[idx]
				}
			}
			out[i] = v

			if m.playing {
				rate := (bufSR / deviceSR) * math.Pow(2, float64(cv))
				m.pos += rate
			}
		}
	})
}

func (m *SamplePlayerModule) UI(surface UISurface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	surface.Label(0, 0, samplePlayerCatalogName+": "+m.Path)
}

func (m *SamplePlayerModule) Encode() (ModuleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ModuleRecord{Tag: samplePlayerCatalogName, ID: m.id, Fields: map[string]any{"path": m.Path}}, nil
}

func decodeSamplePlayer(rec ModuleRecord, cfg AudioConfig) Module {
	m := newSamplePlayerModule(cfg).(*SamplePlayerModule)
	m.id = rec.ID
	if p, ok := rec.Fields["path"].(string); ok && p != "" {
		m.Load(p)
	}
	return m
}
