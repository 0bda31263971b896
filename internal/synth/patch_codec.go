// patch_codec.go - self-describing binary patch format
//
// Layout: magic "SRPB", a uint32 schema version, then three
// length-prefixed sections (modules, connections, positions), each gob
// encoded independently. Gob can't serialize an interface-typed catalog
// directly, so each module is carried as a ModuleRecord{Tag, ID, Fields}
// and reconstructed through the catalog's decoder table.

package synth

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
)

var patchMagic = [4]byte{'S', 'R', 'P', 'B'}

const patchVersion uint32 = 1

type connectionRecord struct {
	SrcID    string
	SrcPort  uint8
	SinkID   string
	SinkPort uint8
}

type positionRecord struct {
	ID   string
	X, Y float32
}

func init() {
	gob.Register(map[string]any{})
	// Every concrete type a module's Encode() stores in a Fields value
	// must be registered: gob needs the type name on the wire to decode
	// back into the interface{} map value.
	gob.Register(float64(0))
	gob.Register(int(0))
	gob.Register(uint8(0))
	gob.Register(true)
	gob.Register("")
	gob.Register([]float64{})
	gob.Register([][3]int{})
	gob.Register([][]uint8{})
}

func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func writeSection(buf *bytes.Buffer, tag byte, payload []byte) {
	buf.WriteByte(tag)
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(payload)))
	buf.Write(length[:])
	buf.Write(payload)
}

func readSection(data []byte) (tag byte, payload []byte, rest []byte, err error) {
	if len(data) < 5 {
		return 0, nil, nil, ErrTruncatedPatch
	}
	tag = data[0]
	length := binary.BigEndian.Uint32(data[1:5])
	data = data[5:]
	if uint64(len(data)) < uint64(length) {
		return 0, nil, nil, ErrTruncatedPatch
	}
	return tag, data[:length], data[length:], nil
}

// EncodePatch serializes a workspace's modules, connections, and
// positions into the binary patch format.
func EncodePatch(ws *Workspace) ([]byte, error) {
	return encodeModules(ws, ws.Modules())
}

// encodeModules serializes exactly the given modules (which must all
// belong to ws) plus the connections between them and their positions.
// Connections to modules outside the given set are omitted, which is
// what makes this safe to reuse for clipboard subgraph copies.
func encodeModules(ws *Workspace, modules []Module) ([]byte, error) {
	inSet := make(map[string]bool, len(modules))
	for _, m := range modules {
		inSet[m.ID()] = true
	}

	records := make([]ModuleRecord, 0, len(modules))
	var connections []connectionRecord
	var positions []positionRecord

	for _, m := range modules {
		rec, err := m.Encode()
		if err != nil {
			return nil, fmt.Errorf("synthrack: encode module %s: %w", m.ID(), err)
		}
		records = append(records, rec)

		for i := uint8(0); i < m.NumInputs(); i++ {
			src, srcPort, connected := m.GetInput(i)
			if !connected || src == nil || !inSet[src.ID()] {
				continue
			}
			connections = append(connections, connectionRecord{
				SrcID: src.ID(), SrcPort: srcPort, SinkID: m.ID(), SinkPort: i,
			})
		}

		pos := ws.Position(m.ID())
		positions = append(positions, positionRecord{ID: m.ID(), X: pos.X, Y: pos.Y})
	}

	modulesPayload, err := gobEncode(records)
	if err != nil {
		return nil, fmt.Errorf("synthrack: encode modules section: %w", err)
	}
	connectionsPayload, err := gobEncode(connections)
	if err != nil {
		return nil, fmt.Errorf("synthrack: encode connections section: %w", err)
	}
	positionsPayload, err := gobEncode(positions)
	if err != nil {
		return nil, fmt.Errorf("synthrack: encode positions section: %w", err)
	}

	var out bytes.Buffer
	out.Write(patchMagic[:])
	var version [4]byte
	binary.BigEndian.PutUint32(version[:], patchVersion)
	out.Write(version[:])
	writeSection(&out, 0, modulesPayload)
	writeSection(&out, 1, connectionsPayload)
	writeSection(&out, 2, positionsPayload)
	return out.Bytes(), nil
}

// DecodePatch reconstructs a workspace from its binary encoding at the
// given audio config. Connections whose endpoints are absent or out of
// range are silently skipped rather than failing the whole load.
func DecodePatch(data []byte, cfg AudioConfig) (*Workspace, error) {
	if len(data) < 8 || !bytes.Equal(data[:4], patchMagic[:]) {
		return nil, ErrBadMagic
	}
	version := binary.BigEndian.Uint32(data[4:8])
	if version != patchVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, version, patchVersion)
	}
	rest := data[8:]

	_, modulesPayload, rest, err := readSection(rest)
	if err != nil {
		return nil, err
	}
	_, connectionsPayload, rest, err := readSection(rest)
	if err != nil {
		return nil, err
	}
	_, positionsPayload, _, err := readSection(rest)
	if err != nil {
		return nil, err
	}

	var records []ModuleRecord
	if err := gobDecode(modulesPayload, &records); err != nil {
		return nil, fmt.Errorf("synthrack: decode modules section: %w", err)
	}
	var connections []connectionRecord
	if err := gobDecode(connectionsPayload, &connections); err != nil {
		return nil, fmt.Errorf("synthrack: decode connections section: %w", err)
	}
	var positions []positionRecord
	if err := gobDecode(positionsPayload, &positions); err != nil {
		return nil, fmt.Errorf("synthrack: decode positions section: %w", err)
	}

	ws := NewWorkspace(cfg)
	var output Module
	for _, rec := range records {
		decoder, ok := decoderByTag[rec.Tag]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPatchTag, rec.Tag)
		}
		m := decoder(rec, cfg)
		ws.AddModule(m, Position{})
		if rec.Tag == outputCatalogName && output == nil {
			output = m
		}
	}
	if output != nil {
		_ = ws.SetOutput(output.ID())
	}

	for _, c := range connections {
		_ = ws.Connect(c.SinkID, c.SinkPort, c.SrcID, c.SrcPort)
	}
	for _, p := range positions {
		ws.MovePosition(p.ID, Position{X: p.X, Y: p.Y})
	}

	return ws, nil
}
