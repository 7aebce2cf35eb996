package tree

// merkleBridge is a frontier augmented with the auth fragments of every
// witness whose authentication path reconstruction is still pending in this
// bridge's epoch. Fragments are keyed by the index, within the owning
// Tree's bridges slice, of the bridge that first created them — an index
// that never moves, since only bridges strictly after it are ever
// truncated or fused away.
type merkleBridge[H comparable] struct {
	priorPosition Position
	hasPrior      bool
	fragments     map[int]authFragment[H]
	frontier      nonEmptyFrontier[H]
}

func newMerkleBridge[H comparable](v H) merkleBridge[H] {
	return merkleBridge[H]{
		fragments: map[int]authFragment[H]{},
		frontier:  newNonEmptyFrontier(v),
	}
}

func (b merkleBridge[H]) clone() merkleBridge[H] {
	fragments := make(map[int]authFragment[H], len(b.fragments))
	for k, f := range b.fragments {
		fragments[k] = f.clone()
	}
	return merkleBridge[H]{
		priorPosition: b.priorPosition,
		hasPrior:      b.hasPrior,
		fragments:     fragments,
		frontier:      b.frontier.clone(),
	}
}

// successor forks a new bridge from this one: the frontier is carried over
// unchanged, every existing fragment is continued, and a fresh fragment is
// opened for the anchor at this bridge's current position — curIdx is this
// bridge's own index in the owning Tree's bridges slice.
func (b merkleBridge[H]) successor(curIdx int) merkleBridge[H] {
	fragments := make(map[int]authFragment[H], len(b.fragments)+1)
	for k, f := range b.fragments {
		fragments[k] = f.successor()
	}
	fragments[curIdx] = newAuthFragment[H](b.frontier.position)
	return merkleBridge[H]{
		priorPosition: b.frontier.position,
		hasPrior:      true,
		fragments:     fragments,
		frontier:      b.frontier.clone(),
	}
}

func (b *merkleBridge[H]) append(h Hashable[H], v H) {
	b.frontier.append(h, v)
	for k, f := range b.fragments {
		f.augment(h, &b.frontier)
		b.fragments[k] = f
	}
}

func (b merkleBridge[H]) maxAltitude() uint8   { return b.frontier.maxAltitude() }
func (b merkleBridge[H]) root(h Hashable[H]) H { return b.frontier.root(h) }
func (b merkleBridge[H]) leafValue() H         { return b.frontier.leafValue() }

// canFollow reports whether b could have been forked directly from prev,
// i.e. b has no recorded predecessor position, or that position matches
// prev's current frontier position.
func (b merkleBridge[H]) canFollow(prev merkleBridge[H]) bool {
	if !b.hasPrior {
		return true
	}
	return b.priorPosition == prev.frontier.position
}

// fuse combines b with its direct successor next, producing a bridge that
// spans both epochs. Every fragment b owns is fused with next's fragment of
// the same key, if next has one — keys present only in next belong to
// anchors strictly inside next's epoch and are dropped, since they don't
// concern b's authentication obligations.
func (b merkleBridge[H]) fuse(next merkleBridge[H]) (merkleBridge[H], bool) {
	if !next.canFollow(b) {
		var zero merkleBridge[H]
		return zero, false
	}
	fragments := make(map[int]authFragment[H], len(b.fragments))
	for k, f := range b.fragments {
		nextFragment, ok := next.fragments[k]
		if !ok {
			fragments[k] = f.clone()
			continue
		}
		fused, ok := f.fuse(nextFragment)
		if !ok {
			panic("bridgetree: found auth fragments at incompatible positions")
		}
		fragments[k] = fused
	}
	return merkleBridge[H]{
		priorPosition: b.priorPosition,
		hasPrior:      b.hasPrior,
		fragments:     fragments,
		frontier:      next.frontier.clone(),
	}, true
}

// fuseAll left-folds fuse across bridges, returning false if any adjacent
// pair fails canFollow.
func fuseAll[H comparable](bridges []merkleBridge[H]) (merkleBridge[H], bool) {
	if len(bridges) == 0 {
		var zero merkleBridge[H]
		return zero, false
	}
	acc := bridges[0].clone()
	for _, b := range bridges[1:] {
		fused, ok := acc.fuse(b)
		if !ok {
			var zero merkleBridge[H]
			return zero, false
		}
		acc = fused
	}
	return acc, true
}

// checkpoint is a restorable snapshot of the tree's latest bridge, taken
// for bounded rewind. empty is true for a checkpoint taken while the tree
// had no bridges at all.
type checkpoint[H comparable] struct {
	empty  bool
	index  int
	bridge merkleBridge[H]
}
