package synth

import "testing"

func TestMath_OperationsWithBothInputsConnected(t *testing.T) {
	cfg := AudioConfig{SampleRate: 48000, BufferSize: 1, Channels: 1}
	a := NewAudioBufferSize(1)
	a.WithWrite(func(d []float32) { d[0] = 5 })
	b := NewAudioBufferSize(1)
	b.WithWrite(func(d []float32) { d[0] = 2 })

	cases := []struct {
		op   MathOperation
		want float32
	}{
		{MathAdd, 7},
		{MathSubtract, 3},
		{MathMultiply, 10},
	}
	for _, c := range cases {
		m := newMathModule(cfg).(*MathModule)
		m.Op = c.op
		m.inputs[0] = inputSlot{src: &directBufferModule{buf: a}, wired: true}
		m.inputs[1] = inputSlot{src: &directBufferModule{buf: b}, wired: true}
		m.Calc()

		out, _ := m.GetOutput(0)
		out.WithRead(func(data []float32, ok bool) {
			if data[0] != c.want {
				t.Fatalf("op %v: got %v, want %v", c.op, data[0], c.want)
			}
		})
	}
}

func TestMath_UnconnectedBFallsBackToConstant(t *testing.T) {
	cfg := AudioConfig{SampleRate: 48000, BufferSize: 1, Channels: 1}
	m := newMathModule(cfg).(*MathModule)
	m.Op = MathAdd
	m.Constant = 3

	a := NewAudioBufferSize(1)
	a.WithWrite(func(d []float32) { d[0] = 4 })
	m.inputs[0] = inputSlot{src: &directBufferModule{buf: a}, wired: true}

	m.Calc()

	out, _ := m.GetOutput(0)
	out.WithRead(func(data []float32, ok bool) {
		if data[0] != 7 {
			t.Fatalf("got %v, want 7 (4 + constant 3)", data[0])
		}
	})
}
