package tree

// Recording is a detached, single-bridge buffer used to stage a sequence of
// appends and later replay them atomically into a Tree via Play. It is the
// stage-then-commit primitive for callers who want to speculatively extend
// a tree without mutating it until they're sure the extension should stick.
type Recording[H comparable] struct {
	hasher Hashable[H]
	depth  uint8
	bridge *merkleBridge[H]
}

// Append stages a value, starting a new bridge if the recording is empty.
// It returns false, leaving the recording unchanged, on depth saturation.
func (r *Recording[H]) Append(v H) bool {
	if r.bridge == nil {
		b := newMerkleBridge[H](v)
		r.bridge = &b
		return true
	}
	if IsComplete(r.bridge.frontier.position, r.depth) {
		return false
	}
	r.bridge.append(r.hasher, v)
	return true
}

// Play fuses other's staged bridge onto this recording's. If this recording
// is empty, other's bridge replaces it outright (this mirrors the behavior
// of Tree.Play's own bridge-replacement semantics at the recording level,
// including the case where other is itself empty).
func (r *Recording[H]) Play(other *Recording[H]) bool {
	if r.bridge != nil && other.bridge != nil {
		fused, ok := r.bridge.fuse(*other.bridge)
		if !ok {
			return false
		}
		r.bridge = &fused
		return true
	}
	if other.bridge != nil {
		b := other.bridge.clone()
		r.bridge = &b
	} else {
		r.bridge = nil
	}
	return true
}
