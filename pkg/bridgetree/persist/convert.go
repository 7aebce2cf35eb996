package persist

import (
	"fmt"

	"github.com/vybium/bridgetree/pkg/bridgetree/hashadapter"
	"github.com/vybium/bridgetree/pkg/bridgetree/tree"
)

func encodeState(t *tree.Tree[hashadapter.Digest]) (*stateRecord, error) {
	snap := t.Snapshot()

	bridges := make([]bridgeRecord, len(snap.Bridges))
	for i, b := range snap.Bridges {
		bridges[i] = encodeBridge(b)
	}

	saved := make(map[string]uint64, len(snap.Saved))
	for digest, idx := range snap.Saved {
		saved[string(encodeDigest(digest))] = uint64(idx)
	}

	checkpoints := make([]checkpointRecord, len(snap.Checkpoints))
	for i, cp := range snap.Checkpoints {
		if cp.Empty {
			checkpoints[i] = checkpointRecord{Tag: 0}
			continue
		}
		b := encodeBridge(cp.Bridge)
		checkpoints[i] = checkpointRecord{Tag: 1, Index: uint64(cp.Index), Bridge: &b}
	}

	return &stateRecord{
		Version:        version,
		Bridges:        bridges,
		IncompleteFrom: uint64(snap.IncompleteFrom),
		Saved:          saved,
		Checkpoints:    checkpoints,
		MaxCheckpoints: uint64(snap.MaxCheckpoints),
	}, nil
}

func decodeState(rec *stateRecord, hasher *hashadapter.TreeHasher, depth uint8, maxCheckpoints int) (*tree.Tree[hashadapter.Digest], error) {
	bridges := make([]tree.BridgeSnapshot[hashadapter.Digest], len(rec.Bridges))
	for i, b := range rec.Bridges {
		decoded, err := decodeBridge(b)
		if err != nil {
			return nil, fmt.Errorf("persist: decode bridge %d: %w", i, err)
		}
		bridges[i] = decoded
	}

	saved := make(map[hashadapter.Digest]int, len(rec.Saved))
	for wire, idx := range rec.Saved {
		d, err := decodeDigest(digestRecord(wire))
		if err != nil {
			return nil, fmt.Errorf("persist: decode saved digest: %w", err)
		}
		saved[d] = int(idx)
	}

	checkpoints := make([]tree.CheckpointSnapshot[hashadapter.Digest], len(rec.Checkpoints))
	for i, cp := range rec.Checkpoints {
		if cp.Tag == 0 {
			checkpoints[i] = tree.CheckpointSnapshot[hashadapter.Digest]{Empty: true}
			continue
		}
		if cp.Bridge == nil {
			return nil, fmt.Errorf("persist: checkpoint %d tagged non-empty but carries no bridge", i)
		}
		b, err := decodeBridge(*cp.Bridge)
		if err != nil {
			return nil, fmt.Errorf("persist: decode checkpoint %d bridge: %w", i, err)
		}
		checkpoints[i] = tree.CheckpointSnapshot[hashadapter.Digest]{Index: int(cp.Index), Bridge: b}
	}

	snap := tree.Snapshot[hashadapter.Digest]{
		Depth:          depth,
		Bridges:        bridges,
		IncompleteFrom: int(rec.IncompleteFrom),
		Saved:          saved,
		Checkpoints:    checkpoints,
		MaxCheckpoints: int(rec.MaxCheckpoints),
	}
	return tree.FromSnapshot[hashadapter.Digest](hasher, snap), nil
}

func encodeBridge(b tree.BridgeSnapshot[hashadapter.Digest]) bridgeRecord {
	fragments := make(map[uint64]authFragmentRecord, len(b.Fragments))
	for k, f := range b.Fragments {
		fragments[uint64(k)] = encodeFragment(f)
	}
	return bridgeRecord{
		HasPriorPosition: b.HasPriorPosition,
		PriorPosition:    uint64(b.PriorPosition),
		Fragments:        fragments,
		Frontier:         encodeFrontier(b.Frontier),
	}
}

func decodeBridge(r bridgeRecord) (tree.BridgeSnapshot[hashadapter.Digest], error) {
	fragments := make(map[int]tree.FragmentSnapshot[hashadapter.Digest], len(r.Fragments))
	for k, f := range r.Fragments {
		decoded, err := decodeFragment(f)
		if err != nil {
			return tree.BridgeSnapshot[hashadapter.Digest]{}, err
		}
		fragments[int(k)] = decoded
	}
	frontier, err := decodeFrontier(r.Frontier)
	if err != nil {
		return tree.BridgeSnapshot[hashadapter.Digest]{}, err
	}
	return tree.BridgeSnapshot[hashadapter.Digest]{
		HasPriorPosition: r.HasPriorPosition,
		PriorPosition:    tree.Position(r.PriorPosition),
		Fragments:        fragments,
		Frontier:         frontier,
	}, nil
}

func encodeFrontier(f tree.FrontierSnapshot[hashadapter.Digest]) frontierRecord {
	ommers := make([]digestRecord, len(f.Ommers))
	for i, o := range f.Ommers {
		ommers[i] = encodeDigest(o)
	}
	lr := leafRecord{Right: f.Right, A: encodeDigest(f.A)}
	if f.Right {
		lr.B = encodeDigest(f.B)
	}
	return frontierRecord{
		Position: uint64(f.Position),
		Leaf:     lr,
		Ommers:   ommers,
	}
}

func decodeFrontier(r frontierRecord) (tree.FrontierSnapshot[hashadapter.Digest], error) {
	a, err := decodeDigest(r.Leaf.A)
	if err != nil {
		return tree.FrontierSnapshot[hashadapter.Digest]{}, fmt.Errorf("decode leaf A: %w", err)
	}
	s := tree.FrontierSnapshot[hashadapter.Digest]{
		Position: tree.Position(r.Position),
		Right:    r.Leaf.Right,
		A:        a,
	}
	if r.Leaf.Right {
		b, err := decodeDigest(r.Leaf.B)
		if err != nil {
			return tree.FrontierSnapshot[hashadapter.Digest]{}, fmt.Errorf("decode leaf B: %w", err)
		}
		s.B = b
	}
	ommers := make([]hashadapter.Digest, len(r.Ommers))
	for i, o := range r.Ommers {
		d, err := decodeDigest(o)
		if err != nil {
			return tree.FrontierSnapshot[hashadapter.Digest]{}, fmt.Errorf("decode ommer %d: %w", i, err)
		}
		ommers[i] = d
	}
	s.Ommers = ommers
	return s, nil
}

func encodeFragment(f tree.FragmentSnapshot[hashadapter.Digest]) authFragmentRecord {
	values := make([]digestRecord, len(f.Values))
	for i, v := range f.Values {
		values[i] = encodeDigest(v)
	}
	return authFragmentRecord{
		Position:          uint64(f.Position),
		AltitudesObserved: uint64(f.AltitudesObserved),
		Values:            values,
	}
}

func decodeFragment(r authFragmentRecord) (tree.FragmentSnapshot[hashadapter.Digest], error) {
	values := make([]hashadapter.Digest, len(r.Values))
	for i, v := range r.Values {
		d, err := decodeDigest(v)
		if err != nil {
			return tree.FragmentSnapshot[hashadapter.Digest]{}, fmt.Errorf("decode value %d: %w", i, err)
		}
		values[i] = d
	}
	return tree.FragmentSnapshot[hashadapter.Digest]{
		Position:          tree.Position(r.Position),
		AltitudesObserved: int(r.AltitudesObserved),
		Values:            values,
	}, nil
}
