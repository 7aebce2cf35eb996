// Package hashadapter binds the permutation-based hash functions in
// pkg/bridgetree/hash to the tree.Hashable capability the core tree package
// consumes as its external hash collaborator.
package hashadapter

import (
	"strings"

	"github.com/vybium/bridgetree/pkg/bridgetree/field"
	"github.com/vybium/bridgetree/pkg/bridgetree/hash"
	"github.com/vybium/bridgetree/pkg/bridgetree/tree"
)

// Digest is the concrete H a TreeHasher produces and consumes.
type Digest = hash.Digest

// TreeHasher implements tree.Hashable[Digest] over Tip5, the same
// permutation-based hash used throughout this module's other digest
// consumers (the static cross-check tree in pkg/bridgetree/merkle, in
// particular).
//
// Combine absorbs the altitude alongside both child digests through
// hash.HashVarlen, so the altitude acts as a domain separator: combining
// the same pair of digests at two different altitudes never collides.
// EmptyRoot is memoized per instance rather than recomputed from EmptyLeaf
// on every call, since the recurrence EmptyRoot(k+1) =
// Combine(k, EmptyRoot(k), EmptyRoot(k)) is itself a full permutation call.
type TreeHasher struct {
	emptyLeaf  Digest
	emptyRoots []Digest
}

// NewTreeHasher builds a TreeHasher with its EmptyRoot table precomputed up
// to and including the given depth.
func NewTreeHasher(depth uint8) *TreeHasher {
	h := &TreeHasher{emptyLeaf: hash.ZeroDigest()}
	h.emptyRoots = make([]Digest, depth+1)
	h.emptyRoots[0] = h.emptyLeaf
	for k := uint8(1); k <= depth; k++ {
		h.emptyRoots[k] = h.Combine(k-1, h.emptyRoots[k-1], h.emptyRoots[k-1])
	}
	return h
}

// EmptyLeaf returns the all-zero digest.
func (h *TreeHasher) EmptyLeaf() Digest { return h.emptyLeaf }

// EmptyRoot returns the root of a perfect, all-empty subtree of the given
// altitude, extending the memoized table on demand if asked for an altitude
// beyond what NewTreeHasher precomputed.
func (h *TreeHasher) EmptyRoot(altitude uint8) Digest {
	if int(altitude) < len(h.emptyRoots) {
		return h.emptyRoots[altitude]
	}
	d := h.emptyRoots[len(h.emptyRoots)-1]
	for k := uint8(len(h.emptyRoots)) - 1; k < altitude; k++ {
		d = h.Combine(k, d, d)
		h.emptyRoots = append(h.emptyRoots, d)
	}
	return d
}

// Combine hashes the altitude together with both child digests.
func (h *TreeHasher) Combine(altitude uint8, left, right Digest) Digest {
	input := make([]field.Element, 0, 1+2*hash.DigestLen)
	input = append(input, field.New(uint64(altitude)))
	input = append(input, left[:]...)
	input = append(input, right[:]...)
	return hash.HashVarlen(input)
}

var _ tree.Hashable[Digest] = (*TreeHasher)(nil)

// PoseidonTreeHasher implements tree.Hashable[Digest] over Poseidon, the
// alternative arithmetization-oriented permutation this module carries
// alongside Tip5 (pkg/bridgetree/hash/poseidon.go). It gives a caller that
// wants to swap permutations a second concrete, fully wired Hashable rather
// than leaving Poseidon an unused file; NewTreeHasher/TreeHasher remain the
// default.
//
// Combine absorbs the altitude and both child digests into a fresh
// PoseidonSponge and squeezes DigestLen elements back out, mirroring
// TreeHasher's altitude-as-domain-separator scheme over Tip5.
type PoseidonTreeHasher struct {
	emptyLeaf  Digest
	emptyRoots []Digest
}

// NewTreeHasherPoseidon builds a PoseidonTreeHasher with its EmptyRoot table
// precomputed up to and including the given depth, using Poseidon's default
// 128-bit security parameters.
func NewTreeHasherPoseidon(depth uint8) (*PoseidonTreeHasher, error) {
	h := &PoseidonTreeHasher{emptyLeaf: hash.ZeroDigest()}
	h.emptyRoots = make([]Digest, depth+1)
	h.emptyRoots[0] = h.emptyLeaf
	for k := uint8(1); k <= depth; k++ {
		d, err := h.combine(k-1, h.emptyRoots[k-1], h.emptyRoots[k-1])
		if err != nil {
			return nil, err
		}
		h.emptyRoots[k] = d
	}
	return h, nil
}

// EmptyLeaf returns the all-zero digest.
func (h *PoseidonTreeHasher) EmptyLeaf() Digest { return h.emptyLeaf }

// EmptyRoot returns the root of a perfect, all-empty subtree of the given
// altitude, extending the memoized table on demand.
func (h *PoseidonTreeHasher) EmptyRoot(altitude uint8) Digest {
	if int(altitude) < len(h.emptyRoots) {
		return h.emptyRoots[altitude]
	}
	d := h.emptyRoots[len(h.emptyRoots)-1]
	for k := uint8(len(h.emptyRoots)) - 1; k < altitude; k++ {
		next, err := h.combine(k, d, d)
		if err != nil {
			panic(err)
		}
		d = next
		h.emptyRoots = append(h.emptyRoots, d)
	}
	return d
}

// Combine hashes the altitude together with both child digests via
// Poseidon. It panics if the underlying sponge construction fails, which
// cannot happen with Poseidon's built-in default parameters.
func (h *PoseidonTreeHasher) Combine(altitude uint8, left, right Digest) Digest {
	d, err := h.combine(altitude, left, right)
	if err != nil {
		panic(err)
	}
	return d
}

func (h *PoseidonTreeHasher) combine(altitude uint8, left, right Digest) (Digest, error) {
	sponge, err := hash.NewPoseidonSponge(nil)
	if err != nil {
		return Digest{}, err
	}
	input := make([]field.Element, 0, 1+2*hash.DigestLen)
	input = append(input, field.New(uint64(altitude)))
	input = append(input, left[:]...)
	input = append(input, right[:]...)
	sponge.Absorb(input)

	out := sponge.Squeeze(hash.DigestLen)
	var d Digest
	copy(d[:], out)
	return d, nil
}

var _ tree.Hashable[Digest] = (*PoseidonTreeHasher)(nil)

// Testing implements tree.Hashable[string] with the literal
// string-concatenation hash: Combine(_, a, b) = a + b, EmptyLeaf() = "_",
// EmptyRoot(k) = "_" repeated 2^k times. Every digest it produces is
// human-readable, which makes it useful for writing authentication-path
// scenarios as literal expected strings rather than opaque hex.
type Testing struct{}

func (Testing) EmptyLeaf() string { return "_" }

func (Testing) EmptyRoot(altitude uint8) string {
	return strings.Repeat("_", 1<<altitude)
}

func (Testing) Combine(_ uint8, left, right string) string {
	return left + right
}

var _ tree.Hashable[string] = Testing{}
