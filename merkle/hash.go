package merkle

import (
	"fmt"

	"github.com/vocdoni/arbo"
)

const (
	leafPrefix = 0x00
	nodePrefix = 0x01
)

// LeafHash returns H(0x00 || commitment).
func LeafHash(hashFn arbo.HashFunction, commitment []byte) ([]byte, error) {
	h, err := hashFn.Hash([]byte{leafPrefix}, commitment)
	if err != nil {
		return nil, fmt.Errorf("could not hash leaf: %w", err)
	}
	return h, nil
}

// NodeHash returns H(0x01 || left || right).
func NodeHash(hashFn arbo.HashFunction, left, right []byte) ([]byte, error) {
	h, err := hashFn.Hash([]byte{nodePrefix}, left, right)
	if err != nil {
		return nil, fmt.Errorf("could not hash node: %w", err)
	}
	return h, nil
}

// EmptyRoot is the root of a tree without leaves, H() over the empty input.
func EmptyRoot(hashFn arbo.HashFunction) ([]byte, error) {
	h, err := hashFn.Hash()
	if err != nil {
		return nil, fmt.Errorf("could not hash empty root: %w", err)
	}
	return h, nil
}

// parent combines the nodes at positions 2i and 2i+1 of level. If 2i is the
// last node of an odd sized level it is carried up unchanged.
func parent(hashFn arbo.HashFunction, level [][]byte, i int) ([]byte, error) {
	left := 2 * i
	if left+1 >= len(level) {
		return level[left], nil
	}
	return NodeHash(hashFn, level[left], level[left+1])
}

// RootOf rebuilds the whole tree from the ordered commitments and returns
// its root. It is the reference the incremental Tree must match. A nil
// hashFn defaults to sha256.
func RootOf(hashFn arbo.HashFunction, commitments [][]byte) ([]byte, error) {
	if hashFn == nil {
		hashFn = arbo.HashFunctionSha256
	}
	if len(commitments) == 0 {
		return EmptyRoot(hashFn)
	}
	level := make([][]byte, len(commitments))
	for i, c := range commitments {
		h, err := LeafHash(hashFn, c)
		if err != nil {
			return nil, err
		}
		level[i] = h
	}
	for len(level) > 1 {
		next := make([][]byte, (len(level)+1)/2)
		for i := range next {
			h, err := parent(hashFn, level, i)
			if err != nil {
				return nil, err
			}
			next[i] = h
		}
		level = next
	}
	return level[0], nil
}

// pathLen is the number of siblings in the path of leaf index within a tree
// of size leaves. Carried up levels contribute no sibling.
func pathLen(index, size uint64) int {
	n := 0
	for size > 1 {
		if index%2 == 1 || index+1 < size {
			n++
		}
		index /= 2
		size = (size + 1) / 2
	}
	return n
}
