//go:build !headless

// audio_backend_oto.go - oto v3 device backend

package synth

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// floatsToBytes reinterprets samples as little-endian bytes into dst.
func floatsToBytes(samples []float32, dst []byte) {
	if len(samples) == 0 {
		return
	}
	src := (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[: len(samples)*4 : len(samples)*4]
	copy(dst, src)
}

// DevicePlayer drives a Runtime through an oto output stream. Read is
// called on oto's internal audio goroutine; it must never block beyond
// the Runtime's own short per-block work.
type DevicePlayer struct {
	ctx     *oto.Context
	player  *oto.Player
	runtime *Runtime
	floats  []float32

	mutex   sync.Mutex
	started bool
}

// NewDevicePlayer opens an oto context at the given sample rate and
// channel count, 32-bit float.
func NewDevicePlayer(sampleRate, channels int) (*DevicePlayer, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, err
	}
	<-ready
	return &DevicePlayer{ctx: ctx}, nil
}

// Attach binds the Runtime this player pulls samples from and creates the
// underlying oto player.
func (dp *DevicePlayer) Attach(rt *Runtime) {
	dp.mutex.Lock()
	defer dp.mutex.Unlock()
	dp.runtime = rt
	dp.player = dp.ctx.NewPlayer(dp)
	dp.floats = make([]float32, 4096)
}

// Read implements io.Reader for oto.Player, converting the requested byte
// count to float32 samples and asking the Runtime to fill them.
func (dp *DevicePlayer) Read(p []byte) (int, error) {
	if dp.runtime == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	n := len(p) / 4
	if cap(dp.floats) < n {
		dp.floats = make([]float32, n)
	}
	samples := dp.floats[:n]
	dp.runtime.FillFloat32(samples)
	floatsToBytes(samples, p)
	return len(p), nil
}

func (dp *DevicePlayer) Start() {
	dp.mutex.Lock()
	defer dp.mutex.Unlock()
	if !dp.started && dp.player != nil {
		dp.player.Play()
		dp.started = true
	}
}

func (dp *DevicePlayer) Stop() {
	dp.mutex.Lock()
	defer dp.mutex.Unlock()
	if dp.started && dp.player != nil {
		dp.player.Close()
		dp.started = false
	}
}

func (dp *DevicePlayer) Close() {
	dp.Stop()
	dp.mutex.Lock()
	defer dp.mutex.Unlock()
	if dp.player != nil {
		dp.player.Close()
		dp.player = nil
	}
}

func (dp *DevicePlayer) IsStarted() bool {
	dp.mutex.Lock()
	defer dp.mutex.Unlock()
	return dp.started
}
