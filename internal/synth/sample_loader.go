// sample_loader.go - asynchronous WAV decoding for the sample player

package synth

import (
	"fmt"
	"log"
	"os"

	wav "github.com/youpy/go-wav"
)

// decodeWAVFile reads a WAV file and returns its first channel as
// normalized float32 samples plus its native sample rate. 8/16/24/32-bit
// integer and 32-bit float PCM are accepted; any other bit depth is
// reported as ErrUnknownSampleDepth.
func decodeWAVFile(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("synthrack: open sample %q: %w", path, err)
	}
	defer f.Close()

	reader := wav.NewReader(f)
	format, err := reader.Format()
	if err != nil {
		return nil, 0, fmt.Errorf("synthrack: read WAV format %q: %w", path, err)
	}
	switch format.BitsPerSample {
	case 8, 16, 24, 32:
	default:
		return nil, 0, fmt.Errorf("%w: %d-bit", ErrUnknownSampleDepth, format.BitsPerSample)
	}

	var out []float32
	for {
		samples, err := reader.ReadSamples()
		if err != nil {
			break
		}
		for _, s := range samples {
			out = append(out, float32(reader.FloatValue(s, 0)))
		}
	}
	return out, int(format.SampleRate), nil
}

// loadSampleAsync decodes path in the background and hands the result to
// box under its mutex, marking it fresh for the audio thread to adopt on
// its next (non-contended) calc. Decode failures are logged and leave the
// box untouched, matching a disconnected-input silent degradation.
func loadSampleAsync(path string, box *waveBox) {
	go func() {
		samples, sampleRate, err := decodeWAVFile(path)
		if err != nil {
			log.Printf("synthrack: sample load failed for %q: %v", path, err)
			return
		}
		box.mu.Lock()
		box.samples = samples
		box.sampleRate = sampleRate
		box.fresh = true
		box.mu.Unlock()
	}()
}
