package merkle

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vocdoni/arbo"
	"github.com/vocdoni/proposal-ledger/types"
)

// ErrMalformedProof is returned when a proof is structurally invalid. A
// well formed proof that does not match a root is not an error.
var ErrMalformedProof = errors.New("malformed proof")

// Proof is the inclusion proof of a commitment. TreeSize is the number of
// leaves the tree had when the proof was issued; with Index it fixes which
// levels carried the node up and so how many siblings the path holds.
type Proof struct {
	Commitment types.HexBytes   `json:"commitment"`
	Index      uint64           `json:"index"`
	TreeSize   uint64           `json:"treeSize"`
	Siblings   []types.HexBytes `json:"siblings"`
	Root       types.HexBytes   `json:"root"`
}

// check validates the structure of the proof.
func (p *Proof) check(hashFn arbo.HashFunction) error {
	if p == nil {
		return fmt.Errorf("%w: nil proof", ErrMalformedProof)
	}
	if len(p.Commitment) == 0 {
		return fmt.Errorf("%w: missing commitment", ErrMalformedProof)
	}
	if p.TreeSize == 0 || p.Index >= p.TreeSize {
		return fmt.Errorf("%w: index %d out of tree size %d", ErrMalformedProof, p.Index, p.TreeSize)
	}
	if want := pathLen(p.Index, p.TreeSize); len(p.Siblings) != want {
		return fmt.Errorf("%w: got %d siblings, want %d", ErrMalformedProof, len(p.Siblings), want)
	}
	for i, s := range p.Siblings {
		if len(s) != hashFn.Len() {
			return fmt.Errorf("%w: sibling %d has %d bytes", ErrMalformedProof, i, len(s))
		}
	}
	return nil
}

// ComputeRoot walks the path from the commitment up and returns the
// resulting root.
func (p *Proof) ComputeRoot(hashFn arbo.HashFunction) ([]byte, error) {
	if err := p.check(hashFn); err != nil {
		return nil, err
	}
	h, err := LeafHash(hashFn, p.Commitment)
	if err != nil {
		return nil, err
	}
	index, size, next := p.Index, p.TreeSize, 0
	for size > 1 {
		switch {
		case index%2 == 1:
			h, err = NodeHash(hashFn, p.Siblings[next], h)
			next++
		case index+1 < size:
			h, err = NodeHash(hashFn, h, p.Siblings[next])
			next++
		}
		if err != nil {
			return nil, err
		}
		index /= 2
		size = (size + 1) / 2
	}
	return h, nil
}

// Verify checks the proof against expectedRoot. It returns false without
// error for a well formed proof that does not match, and an error wrapping
// ErrMalformedProof when the proof structure is invalid.
func Verify(hashFn arbo.HashFunction, proof *Proof, expectedRoot []byte) (bool, error) {
	if hashFn == nil {
		hashFn = arbo.HashFunctionSha256
	}
	if len(expectedRoot) == 0 {
		return false, fmt.Errorf("%w: missing root", ErrMalformedProof)
	}
	root, err := proof.ComputeRoot(hashFn)
	if err != nil {
		return false, err
	}
	return bytes.Equal(root, expectedRoot), nil
}

// Verify checks the proof against the root embedded in it.
func (p *Proof) Verify(hashFn arbo.HashFunction) (bool, error) {
	if p == nil {
		return false, fmt.Errorf("%w: nil proof", ErrMalformedProof)
	}
	return Verify(hashFn, p, p.Root)
}
