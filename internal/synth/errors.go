// errors.go - sentinel errors for the module graph and patch codec

package synth

import "errors"

var (
	ErrPortOutOfRange    = errors.New("synthrack: port index out of range")
	ErrNoSuchCatalogEntry = errors.New("synthrack: no such catalog entry")
	ErrUnconnected       = errors.New("synthrack: port is unconnected")
	ErrNoSuchModule      = errors.New("synthrack: no module with that id")
	ErrTruncatedPatch    = errors.New("synthrack: truncated patch payload")
	ErrUnknownPatchTag   = errors.New("synthrack: unknown module tag in patch")
	ErrBadMagic          = errors.New("synthrack: not a synthrack patch file")
	ErrUnsupportedVersion = errors.New("synthrack: unsupported patch schema version")
	ErrUnknownSampleDepth = errors.New("synthrack: unsupported WAV bit depth")
)
