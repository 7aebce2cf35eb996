// Package tree implements a space-efficient, append-only Merkle tree that
// supports streaming append, fixed-depth root computation against canonical
// empty branches, witnessing of individual leaves with later authentication
// path reconstruction, and bounded checkpoint/rewind.
//
// The design targets commitment trees where the total number of leaves may
// be very large (up to 2^depth) but only a small subset of them ever need an
// authentication path: rather than materializing the full tree, a Tree keeps
// only the O(log n) digests ("ommers") required to extend the current root
// and to reconstruct paths for leaves marked via Witness.
//
// The hash primitive is an external collaborator supplied by the caller
// through the Hashable interface; this package never computes a hash value
// itself.
//
// A Tree is not safe for concurrent use. Append, Witness, Checkpoint,
// Rewind and Play mutate the tree and must be serialized by the caller with
// respect to each other and with respect to Root and AuthenticationPath.
package tree
