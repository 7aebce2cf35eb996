package tree

// Snapshot is the exported, serialization-friendly view of a Tree's entire
// state. It exists so a persistence layer outside this package can walk the
// wire-compatible record layout without this package needing to expose its
// bridge/fragment/frontier types themselves.
type Snapshot[H comparable] struct {
	Depth          uint8
	Bridges        []BridgeSnapshot[H]
	IncompleteFrom int
	Saved          map[H]int
	Checkpoints    []CheckpointSnapshot[H]
	MaxCheckpoints int
}

// FrontierSnapshot is the exported view of a non-empty frontier: Right
// reports whether the rightmost leaf pair is complete, in which case B
// holds its second element; otherwise B is the zero value of H.
type FrontierSnapshot[H any] struct {
	Position Position
	Right    bool
	A        H
	B        H
	Ommers   []H
}

// FragmentSnapshot is the exported view of an authFragment.
type FragmentSnapshot[H any] struct {
	Position          Position
	AltitudesObserved int
	Values            []H
}

// BridgeSnapshot is the exported view of a merkleBridge.
type BridgeSnapshot[H any] struct {
	HasPriorPosition bool
	PriorPosition    Position
	Fragments        map[int]FragmentSnapshot[H]
	Frontier         FrontierSnapshot[H]
}

// CheckpointSnapshot is the exported view of a checkpoint.
type CheckpointSnapshot[H any] struct {
	Empty  bool
	Index  int
	Bridge BridgeSnapshot[H]
}

func snapshotFrontier[H any](f nonEmptyFrontier[H]) FrontierSnapshot[H] {
	s := FrontierSnapshot[H]{
		Position: f.position,
		A:        f.leaf.a,
		Ommers:   append([]H(nil), f.ommers...),
	}
	if f.leaf.isRight() {
		s.Right = true
		s.B = *f.leaf.b
	}
	return s
}

func frontierFromSnapshot[H any](s FrontierSnapshot[H]) nonEmptyFrontier[H] {
	var l leaf[H]
	if s.Right {
		l = leafRight(s.A, s.B)
	} else {
		l = leafLeft(s.A)
	}
	return nonEmptyFrontier[H]{
		position: s.Position,
		leaf:     l,
		ommers:   append([]H(nil), s.Ommers...),
	}
}

func snapshotFragment[H any](f authFragment[H]) FragmentSnapshot[H] {
	return FragmentSnapshot[H]{
		Position:          f.position,
		AltitudesObserved: f.altitudesObserved,
		Values:            append([]H(nil), f.values...),
	}
}

func fragmentFromSnapshot[H any](s FragmentSnapshot[H]) authFragment[H] {
	return authFragment[H]{
		position:          s.Position,
		altitudesObserved: s.AltitudesObserved,
		values:            append([]H(nil), s.Values...),
	}
}

func snapshotBridge[H comparable](b merkleBridge[H]) BridgeSnapshot[H] {
	fragments := make(map[int]FragmentSnapshot[H], len(b.fragments))
	for k, f := range b.fragments {
		fragments[k] = snapshotFragment(f)
	}
	return BridgeSnapshot[H]{
		HasPriorPosition: b.hasPrior,
		PriorPosition:    b.priorPosition,
		Fragments:        fragments,
		Frontier:         snapshotFrontier(b.frontier),
	}
}

func bridgeFromSnapshot[H comparable](s BridgeSnapshot[H]) merkleBridge[H] {
	fragments := make(map[int]authFragment[H], len(s.Fragments))
	for k, f := range s.Fragments {
		fragments[k] = fragmentFromSnapshot(f)
	}
	return merkleBridge[H]{
		priorPosition: s.PriorPosition,
		hasPrior:      s.HasPriorPosition,
		fragments:     fragments,
		frontier:      frontierFromSnapshot(s.Frontier),
	}
}

// Snapshot captures t's entire state in the exported, serialization-ready
// shape described on Snapshot.
func (t *Tree[H]) Snapshot() Snapshot[H] {
	bridges := make([]BridgeSnapshot[H], len(t.bridges))
	for i, b := range t.bridges {
		bridges[i] = snapshotBridge(b)
	}
	saved := make(map[H]int, len(t.saved))
	for k, v := range t.saved {
		saved[k] = v
	}
	checkpoints := make([]CheckpointSnapshot[H], len(t.checkpoints))
	for i, cp := range t.checkpoints {
		checkpoints[i] = CheckpointSnapshot[H]{
			Empty:  cp.empty,
			Index:  cp.index,
			Bridge: snapshotBridge(cp.bridge),
		}
	}
	return Snapshot[H]{
		Depth:          t.depth,
		Bridges:        bridges,
		IncompleteFrom: t.incompleteFrom,
		Saved:          saved,
		Checkpoints:    checkpoints,
		MaxCheckpoints: t.maxCheckpoints,
	}
}

// FromSnapshot rebuilds a Tree from a Snapshot previously produced by
// Tree.Snapshot, wiring it to hasher.
func FromSnapshot[H comparable](hasher Hashable[H], s Snapshot[H]) *Tree[H] {
	bridges := make([]merkleBridge[H], len(s.Bridges))
	for i, b := range s.Bridges {
		bridges[i] = bridgeFromSnapshot(b)
	}
	saved := make(map[H]int, len(s.Saved))
	for k, v := range s.Saved {
		saved[k] = v
	}
	checkpoints := make([]checkpoint[H], len(s.Checkpoints))
	for i, cp := range s.Checkpoints {
		checkpoints[i] = checkpoint[H]{
			empty:  cp.Empty,
			index:  cp.Index,
			bridge: bridgeFromSnapshot(cp.Bridge),
		}
	}
	return &Tree[H]{
		hasher:         hasher,
		depth:          s.Depth,
		bridges:        bridges,
		incompleteFrom: s.IncompleteFrom,
		saved:          saved,
		checkpoints:    checkpoints,
		maxCheckpoints: s.MaxCheckpoints,
	}
}
