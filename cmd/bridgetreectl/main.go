// Command bridgetreectl drives a persisted BridgeTree from the shell: it
// appends leaves, witnesses the tip, takes and rewinds checkpoints, and
// prints or verifies authentication paths.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/vybium/bridgetree/pkg/bridgetree/field"
	"github.com/vybium/bridgetree/pkg/bridgetree/hash"
	"github.com/vybium/bridgetree/pkg/bridgetree/hashadapter"
	"github.com/vybium/bridgetree/pkg/bridgetree/merkle"
	"github.com/vybium/bridgetree/pkg/bridgetree/persist"
	"github.com/vybium/bridgetree/pkg/bridgetree/tree"
)

const (
	success = 0
	failure = 1
)

const (
	defaultDepth          = 32
	defaultMaxCheckpoints = 100
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: bridgetreectl <append|witness|checkpoint|rewind|path|verify> [flags]")
		return failure
	}
	cmd, rest := args[0], args[1:]

	flags := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	statePath := flags.String("state", "./bridgetree.cbor", "path to the persisted tree state")
	leaves := flags.StringArray("leaf", nil, "leaf value (repeatable)")
	level := flags.String("level", "info", "log output level")
	depth := flags.Uint8("depth", defaultDepth, "tree depth; not stored in the state file, so it must match the depth the state was created with")
	maxCheckpoints := flags.Int("max-checkpoints", defaultMaxCheckpoints, "checkpoint retention bound, only used when creating new state")

	if err := flags.Parse(rest); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return failure
	}

	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	parsedLevel, err := zerolog.ParseLevel(*level)
	if err != nil {
		log.Error().Str("level", *level).Err(err).Msg("could not parse log level")
		return failure
	}
	log = log.Level(parsedLevel)

	hasher := hashadapter.NewTreeHasher(*depth)

	switch cmd {
	case "append":
		return cmdAppend(log, hasher, *statePath, *depth, *maxCheckpoints, *leaves)
	case "witness":
		return cmdWitness(log, hasher, *statePath, *depth, *maxCheckpoints)
	case "checkpoint":
		return cmdCheckpoint(log, hasher, *statePath, *depth, *maxCheckpoints)
	case "rewind":
		return cmdRewind(log, hasher, *statePath, *depth, *maxCheckpoints)
	case "path":
		if len(*leaves) != 1 {
			log.Error().Msg("path requires exactly one --leaf")
			return failure
		}
		return cmdPath(log, hasher, *statePath, *depth, *maxCheckpoints, (*leaves)[0])
	case "verify":
		if len(*leaves) != 1 {
			log.Error().Msg("verify requires exactly one --leaf")
			return failure
		}
		return cmdVerify(log, hasher, *statePath, *depth, *maxCheckpoints, (*leaves)[0])
	default:
		log.Error().Str("command", cmd).Msg("unknown command")
		return failure
	}
}

// leafDigest hashes a command-line leaf string into the same digest space
// the production hasher combines internally, so every subcommand exercises
// the one wire-compatible persisted format rather than splitting leaf
// identity between a string-keyed tree and a digest-keyed one.
func leafDigest(s string) hashadapter.Digest {
	b := []byte(s)
	n := (len(b) + 7) / 8
	if n == 0 {
		n = 1
	}
	elements := make([]field.Element, n)
	for i := 0; i < n; i++ {
		var chunk [8]byte
		copy(chunk[:], b[i*8:])
		elements[i] = field.FromBytes(chunk)
	}
	return hash.HashVarlen(elements)
}

// leafLogPath is where append records the leaf strings it has appended, in
// order, so verify can materialize an independent static cross-check tree
// without needing to store the full leaf history in the persisted state
// itself (the persisted state only needs bridges, not raw leaf history).
func leafLogPath(statePath string) string { return statePath + ".leaves" }

func appendLeafLog(statePath string, leaves []string) error {
	f, err := os.OpenFile(leafLogPath(statePath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, leaf := range leaves {
		if _, err := fmt.Fprintln(f, leaf); err != nil {
			return err
		}
	}
	return nil
}

func readLeafLog(statePath string) ([]string, error) {
	f, err := os.Open(leafLogPath(statePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	var leaves []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		leaves = append(leaves, line)
	}
	return leaves, scanner.Err()
}

func loadOrCreate(log zerolog.Logger, hasher *hashadapter.TreeHasher, path string, depth uint8, maxCheckpoints int) *tree.Tree[hashadapter.Digest] {
	t, err := persist.Load(path, hasher, depth, maxCheckpoints)
	if err != nil {
		if os.IsNotExist(err) || os.IsNotExist(unwrap(err)) {
			log.Info().Str("state", path).Msg("no existing state, starting a new tree")
			return tree.New[hashadapter.Digest](hasher, depth, maxCheckpoints)
		}
		log.Error().Err(err).Msg("could not load state, starting a new tree")
		return tree.New[hashadapter.Digest](hasher, depth, maxCheckpoints)
	}
	return t
}

func unwrap(err error) error {
	type unwrapper interface{ Unwrap() error }
	for err != nil {
		if u, ok := err.(unwrapper); ok {
			err = u.Unwrap()
			continue
		}
		break
	}
	return err
}

func cmdAppend(log zerolog.Logger, hasher *hashadapter.TreeHasher, path string, depth uint8, maxCheckpoints int, leaves []string) int {
	t := loadOrCreate(log, hasher, path, depth, maxCheckpoints)
	for _, leafStr := range leaves {
		if !t.Append(leafDigest(leafStr)) {
			log.Error().Str("leaf", leafStr).Msg("tree is saturated at its configured depth")
			return failure
		}
	}
	if err := persist.Save(t, path); err != nil {
		log.Error().Err(err).Msg("could not save state")
		return failure
	}
	if err := appendLeafLog(path, leaves); err != nil {
		log.Error().Err(err).Msg("could not record leaf log")
		return failure
	}
	log.Info().Int("appended", len(leaves)).Msg("appended leaves")
	return success
}

func cmdWitness(log zerolog.Logger, hasher *hashadapter.TreeHasher, path string, depth uint8, maxCheckpoints int) int {
	t := loadOrCreate(log, hasher, path, depth, maxCheckpoints)
	if !t.Witness() {
		log.Error().Msg("cannot witness an empty tree")
		return failure
	}
	if err := persist.Save(t, path); err != nil {
		log.Error().Err(err).Msg("could not save state")
		return failure
	}
	log.Info().Msg("witnessed current tip")
	return success
}

func cmdCheckpoint(log zerolog.Logger, hasher *hashadapter.TreeHasher, path string, depth uint8, maxCheckpoints int) int {
	t := loadOrCreate(log, hasher, path, depth, maxCheckpoints)
	t.Checkpoint()
	if err := persist.Save(t, path); err != nil {
		log.Error().Err(err).Msg("could not save state")
		return failure
	}
	log.Info().Msg("checkpoint taken")
	return success
}

func cmdRewind(log zerolog.Logger, hasher *hashadapter.TreeHasher, path string, depth uint8, maxCheckpoints int) int {
	t := loadOrCreate(log, hasher, path, depth, maxCheckpoints)
	if !t.Rewind() {
		log.Error().Msg("cannot rewind: no checkpoint, or rewinding would discard witness data")
		return failure
	}
	if err := persist.Save(t, path); err != nil {
		log.Error().Err(err).Msg("could not save state")
		return failure
	}
	log.Info().Msg("rewound to the last checkpoint")
	return success
}

type pathOutput struct {
	Position uint64   `json:"position"`
	Path     []string `json:"path"`
}

func cmdPath(log zerolog.Logger, hasher *hashadapter.TreeHasher, path string, depth uint8, maxCheckpoints int, leafStr string) int {
	t := loadOrCreate(log, hasher, path, depth, maxCheckpoints)
	pos, authPath, ok := t.AuthenticationPath(leafDigest(leafStr))
	if !ok {
		log.Error().Str("leaf", leafStr).Msg("leaf is not currently witnessed")
		return failure
	}
	out := pathOutput{Position: uint64(pos), Path: make([]string, len(authPath))}
	for i, d := range authPath {
		out.Path[i] = d.Hex()
	}
	enc, err := json.Marshal(out)
	if err != nil {
		log.Error().Err(err).Msg("could not encode path")
		return failure
	}
	fmt.Println(string(enc))
	return success
}

// maxMaterializableDepth bounds the static cross-check tree to trees small
// enough to fully materialize; beyond it the static tree is skipped and
// only the BridgeTree's own path-folding is checked.
const maxMaterializableDepth = 20

func cmdVerify(log zerolog.Logger, hasher *hashadapter.TreeHasher, path string, depth uint8, maxCheckpoints int, leafStr string) int {
	t := loadOrCreate(log, hasher, path, depth, maxCheckpoints)
	leaf := leafDigest(leafStr)
	pos, authPath, ok := t.AuthenticationPath(leaf)
	if !ok {
		log.Error().Str("leaf", leafStr).Msg("leaf is not currently witnessed")
		return failure
	}

	folded := leaf
	for lvl, sibling := range authPath {
		if uint64(pos)&(uint64(1)<<uint(lvl)) != 0 {
			folded = hasher.Combine(uint8(lvl), sibling, folded)
		} else {
			folded = hasher.Combine(uint8(lvl), folded, sibling)
		}
	}

	root := t.Root()
	if folded != root {
		log.Error().Str("folded", folded.Hex()).Str("root", root.Hex()).Msg("authentication path does not fold to the tree root")
		return failure
	}
	log.Info().Msg("authentication path folds to the tree root")

	if depth <= maxMaterializableDepth {
		if err := crossCheckStaticTree(log, hasher, path, depth, leafStr, leaf, root); err != nil {
			log.Error().Err(err).Msg("static cross-check failed")
			return failure
		}
	} else {
		log.Info().Uint8("depth", depth).Msg("tree too deep to materialize, skipping static cross-check")
	}

	fmt.Println(root.Hex())
	return success
}

// crossCheckStaticTree materializes every leaf recorded in the leaf log
// into a full 2^depth-leaf merkle.MerkleTree, using the same altitude-keyed
// Combine the BridgeTree uses, and confirms both structures agree on the
// root and on leafStr's authentication path.
func crossCheckStaticTree(log zerolog.Logger, hasher *hashadapter.TreeHasher, statePath string, depth uint8, leafStr string, leafDig, treeRoot hashadapter.Digest) error {
	leaves, err := readLeafLog(statePath)
	if err != nil {
		return fmt.Errorf("read leaf log: %w", err)
	}
	total := uint64(1) << depth
	digests := make([]hash.Digest, total)
	for i := range digests {
		digests[i] = hasher.EmptyLeaf()
	}
	leafIndex := -1
	for i, l := range leaves {
		if uint64(i) >= total {
			break
		}
		digests[i] = leafDigest(l)
		if l == leafStr && leafIndex == -1 {
			leafIndex = i
		}
	}
	if leafIndex == -1 {
		return fmt.Errorf("leaf %q not found in leaf log", leafStr)
	}

	mt, err := merkle.NewWithCombine(digests, func(altitude uint32, left, right hash.Digest) hash.Digest {
		return hasher.Combine(uint8(altitude), left, right)
	})
	if err != nil {
		return fmt.Errorf("materialize static tree: %w", err)
	}
	if mt.Root() != treeRoot {
		return fmt.Errorf("static tree root %s does not match BridgeTree root %s", mt.Root().Hex(), treeRoot.Hex())
	}
	staticPath, err := mt.AuthenticationPath(uint64(leafIndex))
	if err != nil {
		return fmt.Errorf("static tree authentication path: %w", err)
	}
	combine := func(altitude uint32, left, right hash.Digest) hash.Digest {
		return hasher.Combine(uint8(altitude), left, right)
	}
	if !merkle.VerifyInclusionProofWithCombine(mt.Root(), uint64(leafIndex), leafDig, staticPath, combine) {
		return fmt.Errorf("static tree rejects its own inclusion proof for %q", leafStr)
	}
	log.Info().Msg("static cross-check tree agrees with the BridgeTree root and path")
	return nil
}
