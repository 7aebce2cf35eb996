// Package persist implements the wire-compatible on-disk layout for a
// pkg/bridgetree/tree.Tree, using canonical CBOR as the record transport and
// pkg/bridgetree/bfieldcodec to frame digest values within it.
//
// Persistence is scoped to hashadapter.Digest trees: that is the only
// digest type with a defined field-element encoding, and it is the only
// digest type bridgetreectl's on-disk state format needs to support.
package persist

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/vybium/bridgetree/pkg/bridgetree/bfieldcodec"
	"github.com/vybium/bridgetree/pkg/bridgetree/field"
	"github.com/vybium/bridgetree/pkg/bridgetree/hash"
	"github.com/vybium/bridgetree/pkg/bridgetree/hashadapter"
	"github.com/vybium/bridgetree/pkg/bridgetree/tree"
)

// version is the sole supported value of the wire record's version marker.
const version = 0

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	opts := cbor.CanonicalEncOptions()
	m, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	encMode = m

	dopts := cbor.DecOptions{ExtraReturnErrors: cbor.ExtraDecErrorUnknownField}
	dm, err := dopts.DecMode()
	if err != nil {
		panic(err)
	}
	decMode = dm
}

// digestRecord is a digest's wire form: its field elements, length-prefixed
// through bfieldcodec, then carried as a CBOR byte string.
type digestRecord []byte

func encodeDigest(d hash.Digest) digestRecord {
	elements := bfieldcodec.EncodeLengthPrefix(d[:])
	buf := make([]byte, 0, len(elements)*8)
	for _, e := range elements {
		b := e.ToBytes()
		buf = append(buf, b[:]...)
	}
	return buf
}

func decodeDigest(rec digestRecord) (hash.Digest, error) {
	if len(rec)%8 != 0 {
		return hash.Digest{}, fmt.Errorf("persist: digest record length %d is not a multiple of 8", len(rec))
	}
	elements := make([]field.Element, len(rec)/8)
	for i := range elements {
		var b [8]byte
		copy(b[:], rec[i*8:i*8+8])
		elements[i] = field.FromBytes(b)
	}
	length, remaining, err := bfieldcodec.DecodeLengthPrefix(elements)
	if err != nil {
		return hash.Digest{}, fmt.Errorf("persist: decode digest length prefix: %w", err)
	}
	if length != hash.DigestLen || len(remaining) < length {
		return hash.Digest{}, fmt.Errorf("persist: digest record has length %d, want %d", length, hash.DigestLen)
	}
	var d hash.Digest
	copy(d[:], remaining[:hash.DigestLen])
	return d, nil
}

// leafRecord is the wire form of the frontier's rightmost leaf pair: A is
// always present, B is present only for a right-hand leaf.
type leafRecord struct {
	Right bool         `cbor:"1,keyasint"`
	A     digestRecord `cbor:"2,keyasint"`
	B     digestRecord `cbor:"3,keyasint,omitempty"`
}

type frontierRecord struct {
	Position uint64         `cbor:"1,keyasint"`
	Leaf     leafRecord     `cbor:"2,keyasint"`
	Ommers   []digestRecord `cbor:"3,keyasint"`
}

type authFragmentRecord struct {
	Position          uint64         `cbor:"1,keyasint"`
	AltitudesObserved uint64         `cbor:"2,keyasint"`
	Values            []digestRecord `cbor:"3,keyasint"`
}

type bridgeRecord struct {
	HasPriorPosition bool                          `cbor:"1,keyasint"`
	PriorPosition    uint64                        `cbor:"2,keyasint"`
	Fragments        map[uint64]authFragmentRecord `cbor:"3,keyasint"`
	Frontier         frontierRecord                `cbor:"4,keyasint"`
}

// checkpointRecord is the tagged union described in the persisted-state
// layout: Tag 0 is the empty checkpoint, tag 1 carries Index and Bridge.
type checkpointRecord struct {
	Tag    uint64        `cbor:"1,keyasint"`
	Index  uint64        `cbor:"2,keyasint,omitempty"`
	Bridge *bridgeRecord `cbor:"3,keyasint,omitempty"`
}

type stateRecord struct {
	Version        uint64             `cbor:"1,keyasint"`
	Bridges        []bridgeRecord     `cbor:"2,keyasint"`
	IncompleteFrom uint64             `cbor:"3,keyasint"`
	Saved          map[string]uint64  `cbor:"4,keyasint"`
	Checkpoints    []checkpointRecord `cbor:"5,keyasint"`
	MaxCheckpoints uint64             `cbor:"6,keyasint"`
}

// Save serializes t to path, overwriting any existing file.
func Save(t *tree.Tree[hashadapter.Digest], path string) error {
	rec, err := encodeState(t)
	if err != nil {
		return fmt.Errorf("persist: encode state: %w", err)
	}
	buf, err := encMode.Marshal(rec)
	if err != nil {
		return fmt.Errorf("persist: marshal cbor: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("persist: write %s: %w", path, err)
	}
	return nil
}

// Load deserializes a tree previously written by Save, wiring it back to
// hasher (which must produce the same digests it was saved with).
func Load(path string, hasher *hashadapter.TreeHasher, depth uint8, maxCheckpoints int) (*tree.Tree[hashadapter.Digest], error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persist: read %s: %w", path, err)
	}
	var rec stateRecord
	if err := decMode.Unmarshal(buf, &rec); err != nil {
		return nil, fmt.Errorf("persist: unmarshal cbor: %w", err)
	}
	if rec.Version != version {
		return nil, fmt.Errorf("persist: unsupported version marker %d", rec.Version)
	}
	return decodeState(&rec, hasher, depth, maxCheckpoints)
}
