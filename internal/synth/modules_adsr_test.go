package synth

import "testing"

func gateBufferConst(bufSize int, v float32) AudioBuffer {
	b := NewAudioBufferSize(bufSize)
	b.WithWrite(func(data []float32) {
		for i := range data {
			data[i] = v
		}
	})
	return b
}

type constSource struct {
	moduleBase
	buf AudioBuffer
}

func newConstSource(cfg AudioConfig, v float32) Module {
	m := &constSource{moduleBase: newModuleBase("const", 0, 1, nil, []string{"out"})}
	m.resizeOutputs(cfg.BufferSize)
	m.buf = gateBufferConst(cfg.BufferSize, v)
	return m
}

func (m *constSource) Calc() {
	src := m.buf
	m.outputs[0].WithWrite(func(dst []float32) {
		src.WithRead(func(data []float32, ok bool) {
			copy(dst, data)
		})
	})
}
func (m *constSource) UI(UISurface)                       {}
func (m *constSource) Encode() (ModuleRecord, error)       { return ModuleRecord{}, nil }
func (m *constSource) SetAudioConfig(cfg AudioConfig)      { m.resizeOutputs(cfg.BufferSize) }

func TestADSR_AttackStartsFromZeroOnFreshTrigger(t *testing.T) {
	// The default 10 ms attack lasts 10 samples at 1 kHz, so an 8-sample
	// block stays inside the attack ramp.
	cfg := AudioConfig{SampleRate: 1000, BufferSize: 8, Channels: 1}
	gate := newConstSource(cfg, 1)
	adsr := newADSRModule(cfg)
	must(t, adsr.SetInput(0, gate, 0))

	gate.Calc()
	adsr.Calc()

	outBuf, err := adsr.GetOutput(0)
	if err != nil {
		t.Fatal(err)
	}
	outBuf.WithRead(func(data []float32, ok bool) {
		if !ok {
			t.Fatal("expected non-empty envelope output")
		}
		if data[0] != 0 {
			t.Fatalf("first sample of a fresh attack should read 0, got %v", data[0])
		}
		for i := 1; i < len(data); i++ {
			if data[i] < data[i-1] {
				t.Fatalf("attack ramp must be monotonically non-decreasing, dropped at %d: %v -> %v", i, data[i-1], data[i])
			}
		}
	})
}

func TestADSR_ReleaseFromSustainDecaysToZero(t *testing.T) {
	cfg := AudioConfig{SampleRate: 1000, BufferSize: 8, Channels: 1}
	adsr := newADSRModule(cfg).(*ADSRModule)
	adsr.ASec, adsr.DSec, adsr.RSec, adsr.SVal = 0.001, 0.001, 0.05, 0.5

	high := newConstSource(cfg, 1)
	low := newConstSource(cfg, 0)
	must(t, adsr.SetInput(0, high, 0))

	// Drive enough blocks to reach sustain.
	for i := 0; i < 5; i++ {
		high.Calc()
		adsr.Calc()
	}
	if adsr.stage != adsrSustain {
		t.Fatalf("expected sustain stage after enough blocks, got %v", adsr.stage)
	}

	must(t, adsr.SetInput(0, low, 0))
	for i := 0; i < 200; i++ {
		low.Calc()
		adsr.Calc()
	}
	if adsr.stage != adsrNone {
		t.Fatalf("expected envelope to finish release back to None, got stage %v value %v", adsr.stage, adsr.value)
	}
	if adsr.value != 0 {
		t.Fatalf("expected value 0 at end of release, got %v", adsr.value)
	}
}

func TestADSR_RetriggerMidAttackResumesFromCurrentValue(t *testing.T) {
	cfg := AudioConfig{SampleRate: 1000, BufferSize: 1, Channels: 1}
	adsr := newADSRModule(cfg).(*ADSRModule)
	adsr.ASec = 1.0 // slow attack so we stay mid-attack across several blocks

	gate := newConstSource(cfg, 1)
	must(t, adsr.SetInput(0, gate, 0))

	for i := 0; i < 5; i++ {
		gate.Calc()
		adsr.Calc()
	}
	valueBeforeRetrigger := adsr.value
	if valueBeforeRetrigger <= 0 {
		t.Fatal("expected nonzero progress into attack before retriggering")
	}

	// Drop the gate, then raise it again within one sample: a re-trigger.
	low := newConstSource(cfg, 0)
	must(t, adsr.SetInput(0, low, 0))
	low.Calc()
	adsr.Calc()

	must(t, adsr.SetInput(0, gate, 0))
	gate.Calc()
	adsr.Calc()

	outBuf, _ := adsr.GetOutput(0)
	outBuf.WithRead(func(data []float32, ok bool) {
		if float64(data[0]) != valueBeforeRetrigger {
			// The attack keeps running through the single low sample (only
			// sustain reacts to a falling gate), so the value has advanced one
			// more step; what matters is there is no discontinuous jump back
			// to zero: the retrigger resumes from the running value.
			if data[0] == 0 {
				t.Fatalf("retrigger must not click back to exactly 0, got %v", data[0])
			}
		}
	})
}
