// clipboard.go - workspace subgraph copy/paste through the system clipboard

package synth

import (
	"fmt"

	"golang.design/x/clipboard"
)

var clipboardReady bool

// initClipboard starts the x/clipboard backend. Safe to call more than
// once; only the first call does anything. Must be called from the
// control thread before Copy/Paste (it touches platform windowing state
// on some backends).
func initClipboard() error {
	if clipboardReady {
		return nil
	}
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("synthrack: clipboard init: %w", err)
	}
	clipboardReady = true
	return nil
}

// CopySelectionToClipboard serializes the selected modules and the
// connections between them (not connections leaving the selection) and
// writes the result to the system clipboard.
func CopySelectionToClipboard(ws *Workspace, ids []string) error {
	if err := initClipboard(); err != nil {
		return err
	}
	selected := make([]Module, 0, len(ids))
	for _, id := range ids {
		if m, ok := ws.Module(id); ok {
			selected = append(selected, m)
		}
	}
	data, err := encodeModules(ws, selected)
	if err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, data)
	return nil
}

// PasteFromClipboard decodes the current clipboard contents as a
// synthrack subgraph, gives every module a fresh identity (so pasting
// twice never collides with itself or the original), offsets positions
// by (dx, dy), adds the modules to ws, and returns them.
func PasteFromClipboard(ws *Workspace, dx, dy float32) ([]Module, error) {
	if err := initClipboard(); err != nil {
		return nil, err
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return nil, nil
	}
	return pasteSubgraph(ws, data, dx, dy)
}

// pasteSubgraph is the clipboard-free core of PasteFromClipboard,
// separated out so tests can exercise it without a real clipboard.
func pasteSubgraph(ws *Workspace, data []byte, dx, dy float32) ([]Module, error) {
	if len(data) < 8 || string(data[:4]) != string(patchMagic[:]) {
		return nil, ErrBadMagic
	}
	scratch, err := DecodePatch(data, ws.Config())
	if err != nil {
		return nil, err
	}

	idRemap := make(map[string]string, len(scratch.Modules()))
	pasted := make([]Module, 0, len(scratch.Modules()))

	for _, m := range scratch.Modules() {
		rec, err := m.Encode()
		if err != nil {
			return nil, err
		}
		decoder, ok := decoderByTag[rec.Tag]
		if !ok {
			return nil, ErrUnknownPatchTag
		}
		rec.ID = newModuleID()
		fresh := decoder(rec, ws.Config())
		idRemap[m.ID()] = fresh.ID()
		pos := scratch.Position(m.ID())
		ws.AddModule(fresh, Position{X: pos.X + dx, Y: pos.Y + dy})
		pasted = append(pasted, fresh)
	}

	for _, m := range scratch.Modules() {
		sinkID := idRemap[m.ID()]
		for i := uint8(0); i < m.NumInputs(); i++ {
			src, srcPort, connected := m.GetInput(i)
			if !connected || src == nil {
				continue
			}
			srcID, ok := idRemap[src.ID()]
			if !ok {
				continue
			}
			_ = ws.Connect(sinkID, i, srcID, srcPort)
		}
	}

	return pasted, nil
}
