package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/synthrack/engine/internal/synth"
)

// configFlags registers the audio config flags shared by run/validate/inspect
// and returns a function that builds the AudioConfig once fs is parsed.
func configFlags(fs *pflag.FlagSet) func() synth.AudioConfig {
	sampleRate := fs.IntP("sample-rate", "r", 48000, "audio sample rate in Hz")
	blockSize := fs.IntP("block-size", "b", 1024, "samples per block")
	channels := fs.IntP("channels", "c", 2, "output channel count")
	return func() synth.AudioConfig {
		return synth.AudioConfig{
			SampleRate: *sampleRate,
			BufferSize: *blockSize,
			Channels:   *channels,
		}
	}
}

func loadPatchFile(path string, cfg synth.AudioConfig) (*synth.Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading patch file: %w", err)
	}
	ws, err := synth.DecodePatch(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("decoding patch: %w", err)
	}
	return ws, nil
}
