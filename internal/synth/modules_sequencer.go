// modules_sequencer.go - grid sequencer and its 8-channel pattern variant

package synth

const gridSequencerCatalogName = "Grid Sequencer"
const patternSequencerCatalogName = "Pattern Sequencer"

// GridCell is one step of a Grid Sequencer: either empty, or a pitch row
// with a hold bit (true = gate stays high for the whole step, false =
// gate passes the raw step_in signal through).
type GridCell struct {
	Set  bool
	Row  int
	Hold bool
}

// GridSequencerModule is a one-pitch-column step sequencer: each step
// selects a row (pitch) or is silent, with the last selected pitch held
// across silent steps.
type GridSequencerModule struct {
	moduleBase

	Octaves        int
	StepsPerOctave int
	Sequence       []GridCell

	currentStep int
	lastCV      float64
	stepDet     TransitionDetector
	syncDet     TransitionDetector

	ins       [2]AudioBuffer
	scratch   [2][]float32
	connected [2]bool
}

func newGridSequencerModule(cfg AudioConfig) Module {
	m := &GridSequencerModule{
		moduleBase: newModuleBase(gridSequencerCatalogName, 2, 3,
			[]string{"step", "sync"}, []string{"cv", "gate", "sync"}),
		Octaves:        2,
		StepsPerOctave: 12,
		Sequence:       make([]GridCell, 8),
		stepDet:        NewTransitionDetector(),
		syncDet:        NewTransitionDetector(),
	}
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
	return m
}

func (m *GridSequencerModule) resizeScratch(size int) {
	for i := range m.scratch {
		m.scratch[i] = make([]float32, size)
	}
}

func (m *GridSequencerModule) SetAudioConfig(cfg AudioConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
}

func (m *GridSequencerModule) Calc() {
	m.ins[0] = m.ResolveInput(0)
	m.ins[1] = m.ResolveInput(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Sequence) == 0 {
		m.outputs[0].WithWrite(func(d []float32) {
			for i := range d {
				d[i] = 0
			}
		})
		m.outputs[1].WithWrite(func(d []float32) {
			for i := range d {
				d[i] = 0
			}
		})
		m.outputs[2].WithWrite(func(d []float32) {
			for i := range d {
				d[i] = 0
			}
		})
		return
	}

	stepsPerOctave := m.StepsPerOctave
	if stepsPerOctave <= 0 {
		stepsPerOctave = 12
	}

	SnapshotInputs(m.ins[:], m.scratch[:], m.connected[:])
	step, sync := m.scratch[0], m.scratch[1]

	WithWriteMany(m.outputs, func(outs [][]float32) {
		cvOut, gateOut, syncOut := outs[0], outs[1], outs[2]
		for i := range cvOut {
			stepVal, syncVal := step[i], sync[i]

			if m.syncDet.IsTransition(syncVal) {
				m.currentStep = 0
				m.markDirty()
			}
			if m.currentStep >= len(m.Sequence) {
				m.currentStep = 0
			}
			if m.stepDet.IsTransition(stepVal) {
				m.currentStep++
				if m.currentStep >= len(m.Sequence) {
					m.currentStep = 0
				}
				m.markDirty()
			}

			cell := m.Sequence[m.currentStep]
			var gate float32
			if cell.Set {
				m.lastCV = float64(cell.Row) / float64(stepsPerOctave)
				if cell.Hold {
					gate = 1.0
				} else {
					gate = stepVal
				}
			}

			cvOut[i] = float32(m.lastCV)
			gateOut[i] = gate
			if m.currentStep == 0 {
				syncOut[i] = 1.0
			} else {
				syncOut[i] = 0
			}
		}
	})
}

func (m *GridSequencerModule) UI(surface UISurface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	surface.Label(0, 0, gridSequencerCatalogName)
	const cellSize float32 = 7
	rows := m.Octaves * m.StepsPerOctave
	for step := range m.Sequence {
		for row := 0; row < rows; row++ {
			cell := m.Sequence[step]
			filled := cell.Set && cell.Row == row
			x := float32(step) * (cellSize + 1)
			y := float32(row)*(cellSize+1) + 16
			if surface.Cell(x, y, cellSize, filled) {
				if filled {
					m.Sequence[step] = GridCell{}
				} else {
					m.Sequence[step] = GridCell{Set: true, Row: row, Hold: cell.Hold}
				}
				m.markDirty()
			}
		}
	}
}

func (m *GridSequencerModule) Encode() (ModuleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := make([][3]int, len(m.Sequence))
	for i, c := range m.Sequence {
		set := 0
		if c.Set {
			set = 1
		}
		hold := 0
		if c.Hold {
			hold = 1
		}
		seq[i] = [3]int{set, c.Row, hold}
	}
	return ModuleRecord{
		Tag: gridSequencerCatalogName,
		ID:  m.id,
		Fields: map[string]any{
			"octaves":          m.Octaves,
			"steps_per_octave": m.StepsPerOctave,
			"sequence":         seq,
		},
	}, nil
}

func decodeGridSequencer(rec ModuleRecord, cfg AudioConfig) Module {
	m := newGridSequencerModule(cfg).(*GridSequencerModule)
	m.id = rec.ID
	if v, ok := rec.Fields["octaves"].(int); ok {
		m.Octaves = v
	}
	if v, ok := rec.Fields["steps_per_octave"].(int); ok {
		m.StepsPerOctave = v
	}
	if seq, ok := rec.Fields["sequence"].([][3]int); ok {
		m.Sequence = make([]GridCell, len(seq))
		for i, c := range seq {
			m.Sequence[i] = GridCell{Set: c[0] != 0, Row: c[1], Hold: c[2] != 0}
		}
	}
	return m
}

// --- Pattern Sequencer -------------------------------------------------

// PatternCellState is a tri-state pattern sequencer cell.
type PatternCellState uint8

const (
	PatternOff PatternCellState = iota
	PatternOn
	PatternHold
)

const patternChannels = 8

// PatternSequencerModule is the Grid Sequencer's multi-row sibling: 8
// independent channels share one step/sync timebase, each with its own
// row of tri-state cells producing its own gate output.
type PatternSequencerModule struct {
	moduleBase

	Steps int
	Rows  [patternChannels][]PatternCellState

	currentStep int
	stepDet     TransitionDetector
	syncDet     TransitionDetector

	ins       [2]AudioBuffer
	scratch   [2][]float32
	connected [2]bool
}

func newPatternSequencerModule(cfg AudioConfig) Module {
	outLabels := make([]string, patternChannels+1)
	for i := 0; i < patternChannels; i++ {
		outLabels[i] = "gate"
	}
	outLabels[patternChannels] = "sync"

	m := &PatternSequencerModule{
		moduleBase: newModuleBase(patternSequencerCatalogName, 2, patternChannels+1,
			[]string{"step", "sync"}, outLabels),
		Steps:   8,
		stepDet: NewTransitionDetector(),
		syncDet: NewTransitionDetector(),
	}
	for c := 0; c < patternChannels; c++ {
		m.Rows[c] = make([]PatternCellState, m.Steps)
	}
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
	return m
}

func (m *PatternSequencerModule) resizeScratch(size int) {
	for i := range m.scratch {
		m.scratch[i] = make([]float32, size)
	}
}

func (m *PatternSequencerModule) SetAudioConfig(cfg AudioConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resizeScratch(cfg.BufferSize)
	m.resizeOutputs(cfg.BufferSize)
}

func (m *PatternSequencerModule) Calc() {
	m.ins[0] = m.ResolveInput(0)
	m.ins[1] = m.ResolveInput(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Steps == 0 {
		for c := range m.outputs {
			m.outputs[c].WithWrite(func(d []float32) {
				for i := range d {
					d[i] = 0
				}
			})
		}
		return
	}

	SnapshotInputs(m.ins[:], m.scratch[:], m.connected[:])
	step, sync := m.scratch[0], m.scratch[1]

	WithWriteMany(m.outputs, func(outs [][]float32) {
		n := len(outs[0])
		for i := 0; i < n; i++ {
			stepVal, syncVal := step[i], sync[i]

			if m.syncDet.IsTransition(syncVal) {
				m.currentStep = 0
			}
			if m.currentStep >= m.Steps {
				m.currentStep = 0
			}
			if m.stepDet.IsTransition(stepVal) {
				m.currentStep++
				if m.currentStep >= m.Steps {
					m.currentStep = 0
				}
			}

			for c := 0; c < patternChannels; c++ {
				var gate float32
				if m.currentStep < len(m.Rows[c]) {
					switch m.Rows[c][m.currentStep] {
					case PatternOn:
						gate = stepVal
					case PatternHold:
						gate = 1.0
					}
				}
				outs[c][i] = gate
			}
			if m.currentStep == 0 {
				outs[patternChannels][i] = 1.0
			} else {
				outs[patternChannels][i] = 0
			}
		}
	})
}

func (m *PatternSequencerModule) UI(surface UISurface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	surface.Label(0, 0, patternSequencerCatalogName)
	const cellSize float32 = 7
	for c := 0; c < patternChannels; c++ {
		for step := 0; step < len(m.Rows[c]); step++ {
			x := float32(step) * (cellSize + 1)
			y := float32(c)*(cellSize+1) + 16
			if surface.Cell(x, y, cellSize, m.Rows[c][step] != PatternOff) {
				m.Rows[c][step] = (m.Rows[c][step] + 1) % 3
				m.markDirty()
			}
		}
	}
}

func (m *PatternSequencerModule) Encode() (ModuleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([][]uint8, patternChannels)
	for c := 0; c < patternChannels; c++ {
		row := make([]uint8, len(m.Rows[c]))
		for i, v := range m.Rows[c] {
			row[i] = uint8(v)
		}
		rows[c] = row
	}
	return ModuleRecord{
		Tag: patternSequencerCatalogName,
		ID:  m.id,
		Fields: map[string]any{
			"steps": m.Steps,
			"rows":  rows,
		},
	}, nil
}

func decodePatternSequencer(rec ModuleRecord, cfg AudioConfig) Module {
	m := newPatternSequencerModule(cfg).(*PatternSequencerModule)
	m.id = rec.ID
	if v, ok := rec.Fields["steps"].(int); ok {
		m.Steps = v
	}
	if rows, ok := rec.Fields["rows"].([][]uint8); ok {
		for c := 0; c < patternChannels && c < len(rows); c++ {
			m.Rows[c] = make([]PatternCellState, len(rows[c]))
			for i, v := range rows[c] {
				m.Rows[c][i] = PatternCellState(v)
			}
		}
	}
	return m
}
