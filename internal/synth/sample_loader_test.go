package synth

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeTestWAV writes a minimal canonical PCM WAV file (mono, 16-bit) with
// the given samples, scaled to the full int16 range.
func writeTestWAV(t *testing.T, samples []int16, sampleRate int) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.wav")

	dataSize := len(samples) * 2
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create test wav: %v", err)
	}
	defer f.Close()

	write := func(v any) {
		_ = binary.Write(f, binary.LittleEndian, v)
	}

	f.WriteString("RIFF")
	write(uint32(36 + dataSize))
	f.WriteString("WAVE")
	f.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1)) // PCM
	write(uint16(1)) // mono
	write(uint32(sampleRate))
	write(uint32(sampleRate * 2))
	write(uint16(2))
	write(uint16(16))
	f.WriteString("data")
	write(uint32(dataSize))
	for _, s := range samples {
		write(s)
	}
	return path
}

func TestDecodeWAVFile_ReturnsNormalizedSamplesAndSampleRate(t *testing.T) {
	path := writeTestWAV(t, []int16{0, 32767, -32768, 16384}, 44100)

	samples, sampleRate, err := decodeWAVFile(path)
	if err != nil {
		t.Fatalf("decodeWAVFile: %v", err)
	}
	if sampleRate != 44100 {
		t.Fatalf("sample rate: got %d, want 44100", sampleRate)
	}
	if len(samples) != 4 {
		t.Fatalf("sample count: got %d, want 4", len(samples))
	}
	if samples[0] != 0 {
		t.Fatalf("sample 0: got %v, want 0", samples[0])
	}
	if samples[1] < 0.99 || samples[1] > 1.0 {
		t.Fatalf("sample 1 (max int16): got %v, want ~1.0", samples[1])
	}
	if samples[2] < -1.0 || samples[2] > -0.99 {
		t.Fatalf("sample 2 (min int16): got %v, want ~-1.0", samples[2])
	}
}

func TestDecodeWAVFile_MissingFileErrors(t *testing.T) {
	_, _, err := decodeWAVFile(filepath.Join(t.TempDir(), "does-not-exist.wav"))
	if err == nil {
		t.Fatal("expected an error opening a missing file")
	}
}

func TestLoadSampleAsync_PublishesIntoWaveBoxUnderLock(t *testing.T) {
	path := writeTestWAV(t, []int16{100, 200, 300}, 48000)
	box := &waveBox{}

	loadSampleAsync(path, box)

	// loadSampleAsync launches its own goroutine; poll briefly for it to
	// publish, mirroring how the audio thread would adopt it on its next
	// calc rather than blocking.
	for i := 0; i < 1000; i++ {
		box.mu.Lock()
		fresh := box.fresh
		box.mu.Unlock()
		if fresh {
			break
		}
		runtime.Gosched()
	}

	box.mu.Lock()
	defer box.mu.Unlock()
	if !box.fresh {
		t.Fatal("expected the wave box to be marked fresh after a successful load")
	}
	if box.sampleRate != 48000 {
		t.Fatalf("sample rate: got %d, want 48000", box.sampleRate)
	}
	if len(box.samples) != 3 {
		t.Fatalf("sample count: got %d, want 3", len(box.samples))
	}
}
