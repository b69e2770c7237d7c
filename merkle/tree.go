// Package merkle implements the append-only commitment accumulator kept for
// every proposal.
//
// Nodes are stored in an arena of per-level hash arrays, levels[0] holding
// the leaf hashes. Parents hash their two children with a 0x01 prefix (leaves
// use 0x00). When a level has an odd number of nodes the last one is carried
// up unchanged, so a tree of n leaves has the same shape as an RFC 6962 log
// of n entries. Appending a leaf only recomputes the last node of every
// level.
package merkle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vocdoni/arbo"
)

var (
	// ErrLeafNotFound is returned when a leaf index is beyond the tree size.
	ErrLeafNotFound = errors.New("leaf not found")
	// ErrEmptyCommitment is returned when inserting an empty commitment.
	ErrEmptyCommitment = errors.New("empty commitment")
)

// Tree is an append-only merkle tree of commitments. It is safe for
// concurrent use; readers never observe a partially applied Insert.
type Tree struct {
	mu     sync.RWMutex
	hashFn arbo.HashFunction
	leaves [][]byte
	levels [][][]byte
	// roots[k] is the root of the tree holding the first k leaves
	roots [][]byte
}

// NewTree returns an empty tree. A nil hashFn defaults to sha256.
func NewTree(hashFn arbo.HashFunction) (*Tree, error) {
	if hashFn == nil {
		hashFn = arbo.HashFunctionSha256
	}
	empty, err := EmptyRoot(hashFn)
	if err != nil {
		return nil, err
	}
	return &Tree{
		hashFn: hashFn,
		roots:  [][]byte{empty},
	}, nil
}

// Load returns a tree with the given commitments inserted in order.
func Load(hashFn arbo.HashFunction, commitments [][]byte) (*Tree, error) {
	t, err := NewTree(hashFn)
	if err != nil {
		return nil, err
	}
	for i, c := range commitments {
		if _, _, err := t.Insert(c); err != nil {
			return nil, fmt.Errorf("could not load leaf %d: %w", i, err)
		}
	}
	return t, nil
}

// HashFunction returns the hash function of the tree.
func (t *Tree) HashFunction() arbo.HashFunction {
	return t.hashFn
}

// Insert appends the commitment at the next index and returns that index
// with the new root. On error the tree is left unchanged.
func (t *Tree) Insert(commitment []byte) (uint64, []byte, error) {
	if len(commitment) == 0 {
		return 0, nil, ErrEmptyCommitment
	}
	leaf, err := LeafHash(t.hashFn, commitment)
	if err != nil {
		return 0, nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// compute the new right edge first so a hash failure leaves no trace
	index := len(t.leaves)
	edge := [][]byte{leaf}
	for l, pos := 0, index; pos > 0; l++ {
		cur := edge[l]
		if pos%2 == 1 {
			h, err := NodeHash(t.hashFn, t.levels[l][pos-1], cur)
			if err != nil {
				return 0, nil, err
			}
			cur = h
		}
		edge = append(edge, cur)
		pos /= 2
	}

	t.leaves = append(t.leaves, append([]byte(nil), commitment...))
	pos := index
	for l, h := range edge {
		if l == len(t.levels) {
			t.levels = append(t.levels, nil)
		}
		if pos == len(t.levels[l]) {
			t.levels[l] = append(t.levels[l], h)
		} else {
			t.levels[l][pos] = h
		}
		pos /= 2
	}
	root := edge[len(edge)-1]
	t.roots = append(t.roots, root)
	return uint64(index), clone(root), nil
}

// Root returns the current root.
func (t *Tree) Root() []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return clone(t.roots[len(t.roots)-1])
}

// RootAt returns the root the tree had when it held size leaves.
func (t *Tree) RootAt(size uint64) ([]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if size >= uint64(len(t.roots)) {
		return nil, false
	}
	return clone(t.roots[size]), true
}

// Size returns the number of leaves.
func (t *Tree) Size() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return uint64(len(t.leaves))
}

// Leaf returns the commitment stored at index.
func (t *Tree) Leaf(index uint64) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if index >= uint64(len(t.leaves)) {
		return nil, fmt.Errorf("%w: index %d, size %d", ErrLeafNotFound, index, len(t.leaves))
	}
	return clone(t.leaves[index]), nil
}

// Leaves returns a copy of the ordered commitments.
func (t *Tree) Leaves() [][]byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([][]byte(nil), t.leaves...)
}

// Proof returns the inclusion proof of the leaf at index against the
// current root.
func (t *Tree) Proof(index uint64) (*Proof, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	size := uint64(len(t.leaves))
	if index >= size {
		return nil, fmt.Errorf("%w: index %d, size %d", ErrLeafNotFound, index, size)
	}
	proof := &Proof{
		Commitment: clone(t.leaves[index]),
		Index:      index,
		TreeSize:   size,
		Root:       clone(t.roots[size]),
	}
	pos := index
	for l := 0; uint64(len(t.levels[l])) > 1; l++ {
		level := t.levels[l]
		switch {
		case pos%2 == 1:
			proof.Siblings = append(proof.Siblings, clone(level[pos-1]))
		case pos+1 < uint64(len(level)):
			proof.Siblings = append(proof.Siblings, clone(level[pos+1]))
		}
		pos /= 2
	}
	return proof, nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
