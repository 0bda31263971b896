package synth

import "testing"

func TestNoise_SamplesStayWithinUnitRange(t *testing.T) {
	cfg := AudioConfig{SampleRate: 48000, BufferSize: 4096, Channels: 1}
	m := newNoiseModule(cfg).(*NoiseModule)
	m.Calc()

	out, _ := m.GetOutput(0)
	out.WithRead(func(data []float32, ok bool) {
		seenNonZero := false
		for i, v := range data {
			if v < -1 || v > 1 {
				t.Fatalf("sample %d out of [-1, 1]: %v", i, v)
			}
			if v != 0 {
				seenNonZero = true
			}
		}
		if !seenNonZero {
			t.Fatal("expected at least one non-zero sample in a 4096-sample noise block")
		}
	})
}

func TestNoise_SuccessiveBlocksDiffer(t *testing.T) {
	cfg := AudioConfig{SampleRate: 48000, BufferSize: 256, Channels: 1}
	m := newNoiseModule(cfg).(*NoiseModule)

	m.Calc()
	out, _ := m.GetOutput(0)
	var first []float32
	out.WithRead(func(data []float32, ok bool) { first = append(first, data...) })

	m.Calc()
	var second []float32
	out.WithRead(func(data []float32, ok bool) { second = append(second, data...) })

	identical := true
	for i := range first {
		if first[i] != second[i] {
			identical = false
			break
		}
	}
	if identical {
		t.Fatal("expected two successive noise blocks to differ")
	}
}
