package tree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/bridgetree/pkg/bridgetree/hashadapter"
	"github.com/vybium/bridgetree/pkg/bridgetree/tree"
)

// These scenarios are the concrete worked examples from the reference hash
// (combine(a, b) = a ++ b, empty_leaf() = "_", empty_root(k) = "_" * 2^k),
// each run against a fresh DEPTH-d tree and checked against its literal
// expected path.

func TestScenarioS1_WitnessThenQuery(t *testing.T) {
	tr := tree.New[string](hashadapter.Testing{}, 4, 8)
	require.True(t, tr.Append("a"))
	require.True(t, tr.Witness())

	pos, path, ok := tr.AuthenticationPath("a")
	require.True(t, ok)
	require.Equal(t, tree.Position(0), pos)
	require.Equal(t, []string{"_", "__", "____", "________"}, path)
}

func TestScenarioS2_AppendAfterWitness(t *testing.T) {
	tr := tree.New[string](hashadapter.Testing{}, 4, 8)
	require.True(t, tr.Append("a"))
	require.True(t, tr.Witness())
	require.True(t, tr.Append("b"))

	pos, path, ok := tr.AuthenticationPath("a")
	require.True(t, ok)
	require.Equal(t, tree.Position(0), pos)
	require.Equal(t, []string{"b", "__", "____", "________"}, path)
}

func TestScenarioS3_WitnessMiddleLeaf(t *testing.T) {
	tr := tree.New[string](hashadapter.Testing{}, 4, 8)
	require.True(t, tr.Append("a"))
	require.True(t, tr.Append("b"))
	require.True(t, tr.Append("c"))
	require.True(t, tr.Witness())
	require.True(t, tr.Append("d"))
	require.True(t, tr.Append("e"))

	pos, path, ok := tr.AuthenticationPath("c")
	require.True(t, ok)
	require.Equal(t, tree.Position(2), pos)
	require.Equal(t, []string{"d", "ab", "e___", "________"}, path)
}

func TestScenarioS4_WitnessEleventhLeaf(t *testing.T) {
	tr := tree.New[string](hashadapter.Testing{}, 4, 8)
	for _, leaf := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
		require.True(t, tr.Append(leaf))
	}
	require.True(t, tr.Witness())
	require.True(t, tr.Append("l"))

	pos, path, ok := tr.AuthenticationPath("k")
	require.True(t, ok)
	require.Equal(t, tree.Position(10), pos)
	require.Equal(t, []string{"l", "ij", "____", "abcdefgh"}, path)
}

func TestScenarioS5_RewindAcrossNoOpCheckpoint(t *testing.T) {
	tr := tree.New[string](hashadapter.Testing{}, 4, 8)
	require.True(t, tr.Append("a"))
	require.True(t, tr.Witness())
	tr.Checkpoint()
	require.True(t, tr.Rewind())
	for _, leaf := range []string{"b", "c", "d", "e"} {
		require.True(t, tr.Append(leaf))
	}
	require.True(t, tr.Witness()) // witness "e"
	for _, leaf := range []string{"f", "g", "h"} {
		require.True(t, tr.Append(leaf))
	}

	pos, path, ok := tr.AuthenticationPath("a")
	require.True(t, ok)
	require.Equal(t, tree.Position(0), pos)
	require.Equal(t, []string{"b", "cd", "efgh", "________"}, path)
}

func TestScenarioS6_DuplicateFrontierCollapse(t *testing.T) {
	tr := tree.New[string](hashadapter.Testing{}, 4, 8)
	require.True(t, tr.Append("a"))
	require.True(t, tr.Witness())
	require.True(t, tr.RemoveWitness("a"))
	tr.Checkpoint()
	require.True(t, tr.Witness())
	require.True(t, tr.Rewind())
	tr.Checkpoint()
	require.True(t, tr.Append("a"))

	pos, path, ok := tr.AuthenticationPath("a")
	require.True(t, ok)
	require.Equal(t, tree.Position(0), pos)
	require.Equal(t, []string{"a", "__", "____", "________"}, path)
}

func TestScenarioS7_SaturationAtDepthThree(t *testing.T) {
	tr := tree.New[string](hashadapter.Testing{}, 3, 8)
	leaves := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	for i, leaf := range leaves[:8] {
		require.Truef(t, tr.Append(leaf), "append %d (%q) should succeed", i, leaf)
	}
	require.False(t, tr.Append(leaves[8]), "the ninth append into a DEPTH=3 tree must fail")
}

func TestScenarioS8_RewindRefusedThenDropOldest(t *testing.T) {
	tr := tree.New[string](hashadapter.Testing{}, 6, 8)
	tr.Checkpoint()
	require.True(t, tr.Append("a"))
	require.True(t, tr.Witness())
	require.True(t, tr.Append("b"))
	require.True(t, tr.Append("c"))

	require.False(t, tr.Rewind(), "rewind must refuse: it would destroy a's witness")
	require.True(t, tr.DropOldestCheckpoint())
}

// Boundary behaviors from spec.md section 8, not tied to a numbered
// scenario.

func TestBoundary_EmptyTreeRootIsEmptyRootOfDepth(t *testing.T) {
	tr := tree.New[string](hashadapter.Testing{}, 3, 8)
	require.Equal(t, "________", tr.Root())
}

func TestBoundary_WitnessOnEmptyTreeFails(t *testing.T) {
	tr := tree.New[string](hashadapter.Testing{}, 3, 8)
	require.False(t, tr.Witness())
}

func TestBoundary_RewindOnEmptyStackFails(t *testing.T) {
	tr := tree.New[string](hashadapter.Testing{}, 3, 8)
	require.False(t, tr.Rewind())
}

func TestBoundary_AuthenticationPathOfUnwitnessedLeafFails(t *testing.T) {
	tr := tree.New[string](hashadapter.Testing{}, 3, 8)
	require.True(t, tr.Append("a"))
	_, _, ok := tr.AuthenticationPath("a")
	require.False(t, ok)
}

func TestBoundary_RemoveWitnessOfUnwitnessedLeafFails(t *testing.T) {
	tr := tree.New[string](hashadapter.Testing{}, 3, 8)
	require.True(t, tr.Append("a"))
	require.False(t, tr.RemoveWitness("a"))
}

func TestBoundary_RightmostWitnessPathPaddedWithEmptyRoot(t *testing.T) {
	tr := tree.New[string](hashadapter.Testing{}, 4, 8)
	require.True(t, tr.Append("a"))
	require.True(t, tr.Witness())

	pos, path, ok := tr.AuthenticationPath("a")
	require.True(t, ok)
	require.Equal(t, tree.Position(0), pos)
	require.Len(t, path, 4)
	require.Equal(t, []string{"_", "__", "____", "________"}, path)
}
