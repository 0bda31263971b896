// modules_freeverb.go - Jezar-style Freeverb stereo reverb

package synth

const freeverbCatalogName = "Freeverb"

const (
	fvNumCombs     = 8
	fvNumAllpasses = 4
	fvStereoSpread = 23
	fvFixedGain    = 0.015
	fvScaleWet     = 3.0
	fvScaleDamp    = 0.4
	fvScaleRoom    = 0.28
	fvOffsetRoom   = 0.7
	fvTuningSR     = 44100.0
)

var fvCombTuningL = [fvNumCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
var fvAllpassTuningL = [fvNumAllpasses]int{556, 441, 341, 225}

type fvComb struct {
	buf         []float32
	idx         int
	feedback    float32
	filterstore float32
	damp1, damp2 float32
}

func (c *fvComb) process(input float32) float32 {
	output := c.buf[c.idx]
	c.filterstore = output*c.damp2 + c.filterstore*c.damp1
	c.buf[c.idx] = input + c.filterstore*c.feedback
	c.idx++
	if c.idx >= len(c.buf) {
		c.idx = 0
	}
	return output
}

type fvAllpass struct {
	buf      []float32
	idx      int
	feedback float32
}

func (a *fvAllpass) process(input float32) float32 {
	bufout := a.buf[a.idx]
	output := -input + bufout
	a.buf[a.idx] = input + bufout*a.feedback
	a.idx++
	if a.idx >= len(a.buf) {
		a.idx = 0
	}
	return output
}

// fvEngine is one stereo reverb tank. SetAudioConfig allocates it at the
// configured sample rate and rebuilds it only if the sample rate changes;
// if SetAudioConfig has not run, the first Calc allocates it at 48 kHz,
// mirroring the lazy-init-on-first-calc convention the original
// source uses for its reverb engine.
type fvEngine struct {
	combL, combR     [fvNumCombs]fvComb
	allpassL, allpassR [fvNumAllpasses]fvAllpass
	sampleRate       int
}

func newFVEngine(sampleRate int) *fvEngine {
	e := &fvEngine{sampleRate: sampleRate}
	scale := float64(sampleRate) / fvTuningSR
	for i := 0; i < fvNumCombs; i++ {
		e.combL[i].buf = make([]float32, int(float64(fvCombTuningL[i])*scale))
		e.combR[i].buf = make([]float32, int(float64(fvCombTuningL[i]+fvStereoSpread)*scale))
	}
	for i := 0; i < fvNumAllpasses; i++ {
		e.allpassL[i].buf = make([]float32, int(float64(fvAllpassTuningL[i])*scale))
		e.allpassR[i].buf = make([]float32, int(float64(fvAllpassTuningL[i]+fvStereoSpread)*scale))
		e.allpassL[i].feedback = 0.5
		e.allpassR[i].feedback = 0.5
	}
	return e
}

func (e *fvEngine) setParams(roomSize, damp float64, freeze bool) {
	rs := roomSize
	dp := damp
	if freeze {
		rs = 1.0
		dp = 0.0
	}
	feedback := float32(rs*fvScaleRoom + fvOffsetRoom)
	damp1 := float32(dp * fvScaleDamp)
	damp2 := 1 - damp1
	for i := 0; i < fvNumCombs; i++ {
		e.combL[i].feedback = feedback
		e.combL[i].damp1, e.combL[i].damp2 = damp1, damp2
		e.combR[i].feedback = feedback
		e.combR[i].damp1, e.combR[i].damp2 = damp1, damp2
	}
}

func (e *fvEngine) tick(inL, inR float32) (outL, outR float32) {
	input := (inL + inR) * fvFixedGain
	var l, r float32
	for i := 0; i < fvNumCombs; i++ {
		l += e.combL[i].process(input)
		r += e.combR[i].process(input)
	}
	for i := 0; i < fvNumAllpasses; i++ {
		l = e.allpassL[i].process(l)
		r = e.allpassR[i].process(r)
	}
	return l, r
}

// FreeverbModule wraps fvEngine with the public {room_size, damp, wet,
// dry, width, freeze} parameter set.
type FreeverbModule struct {
	moduleBase

	RoomSize, Damp, Wet, Dry, Width float64
	Freeze                          bool

	engine          *fvEngine
	lastRoom, lastDamp float64
	lastFreeze      bool
	latched         bool

	ins       [2]AudioBuffer
	scratch   [2][]float32
	connected [2]bool
}

func newFreeverbModule(cfg AudioConfig) Module {
	m := &FreeverbModule{
		moduleBase: newModuleBase(freeverbCatalogName, 2, 2,
			[]string{"in L", "in R"}, []string{"out L", "out R"}),
		RoomSize: 0.5,
		Damp:     0.5,
		Wet:      0.33,
		Dry:      0.4,
		Width:    1.0,
	}
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
	return m
}

func (m *FreeverbModule) resizeScratch(size int) {
	for i := range m.scratch {
		m.scratch[i] = make([]float32, size)
	}
}

func (m *FreeverbModule) SetAudioConfig(cfg AudioConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
	if m.engine == nil || m.engine.sampleRate != cfg.SampleRate {
		m.engine = newFVEngine(cfg.SampleRate)
		m.latched = false
	}
}

func (m *FreeverbModule) Calc() {
	m.ins[0] = m.ResolveInput(0)
	m.ins[1] = m.ResolveInput(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.engine == nil {
		m.engine = newFVEngine(48000)
	}
	if !m.latched || m.RoomSize != m.lastRoom || m.Damp != m.lastDamp || m.Freeze != m.lastFreeze {
		m.engine.setParams(m.RoomSize, m.Damp, m.Freeze)
		m.lastRoom, m.lastDamp, m.lastFreeze = m.RoomSize, m.Damp, m.Freeze
		m.latched = true
	}

	wet1 := float32(m.Wet * (m.Width/2 + 0.5))
	wet2 := float32(m.Wet * ((1 - m.Width) / 2))
	dry := float32(m.Dry)

	SnapshotInputs(m.ins[:], m.scratch[:], m.connected[:])
	inL, inRs := m.scratch[0], m.scratch[1]

	WithWriteMany(m.outputs, func(outs [][]float32) {
		outL, outR := outs[0], outs[1]
		for i := range outL {
			l, r := inL[i], inRs[i]
			wl, wr := m.engine.tick(l, r)
			outL[i] = wl*wet1 + wr*wet2 + l*dry
			outR[i] = wr*wet1 + wl*wet2 + r*dry
		}
	})
}

func (m *FreeverbModule) UI(surface UISurface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	surface.Label(0, 0, freeverbCatalogName)
	if v, changed := surface.Knob(0, 16, 50, 16, "room", float32(m.RoomSize), 0, 1); changed {
		m.RoomSize = float64(v)
	}
	if v, changed := surface.Knob(50, 16, 50, 16, "damp", float32(m.Damp), 0, 1); changed {
		m.Damp = float64(v)
	}
	if v, changed := surface.Knob(100, 16, 50, 16, "wet", float32(m.Wet), 0, 1); changed {
		m.Wet = float64(v)
	}
	if v, changed := surface.Knob(150, 16, 50, 16, "dry", float32(m.Dry), 0, 1); changed {
		m.Dry = float64(v)
	}
	if surface.Button(200, 16, 50, 16, "freeze") {
		m.Freeze = !m.Freeze
		m.markDirty()
	}
}

func (m *FreeverbModule) Encode() (ModuleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ModuleRecord{
		Tag: freeverbCatalogName,
		ID:  m.id,
		Fields: map[string]any{
			"room_size": m.RoomSize,
			"damp":      m.Damp,
			"wet":       m.Wet,
			"dry":       m.Dry,
			"width":     m.Width,
			"freeze":    m.Freeze,
		},
	}, nil
}

func decodeFreeverb(rec ModuleRecord, cfg AudioConfig) Module {
	m := newFreeverbModule(cfg).(*FreeverbModule)
	m.id = rec.ID
	if v, ok := rec.Fields["room_size"].(float64); ok {
		m.RoomSize = v
	}
	if v, ok := rec.Fields["damp"].(float64); ok {
		m.Damp = v
	}
	if v, ok := rec.Fields["wet"].(float64); ok {
		m.Wet = v
	}
	if v, ok := rec.Fields["dry"].(float64); ok {
		m.Dry = v
	}
	if v, ok := rec.Fields["width"].(float64); ok {
		m.Width = v
	}
	if v, ok := rec.Fields["freeze"].(bool); ok {
		m.Freeze = v
	}
	return m
}
