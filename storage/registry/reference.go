package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vocdoni/arbo"
	"github.com/vocdoni/proposal-ledger/types"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// Proof is the inclusion proof of a voter key in a registry tree.
type Proof struct {
	Root     types.HexBytes `json:"root"`
	Key      types.HexBytes `json:"key"`
	Value    types.HexBytes `json:"value"`
	Siblings types.HexBytes `json:"siblings"`
}

// Ref is a reference to the voter registry of a proposal. It holds the
// Merkle tree. All accesses to the underlying tree are protected by treeMu.
type Ref struct {
	ProposalID types.ProposalID `cbor:"0,keyasint,omitempty"`
	MaxLevels  int              `cbor:"1,keyasint,omitempty"`
	HashType   string           `cbor:"2,keyasint,omitempty"`
	Created    types.Timestamp  `cbor:"3,keyasint,omitempty"`

	tree *arbo.Tree
	// treeMu protects all access to the underlying Merkle tree.
	treeMu sync.Mutex
}

// Tree returns the underlying arbo.Tree pointer.
// (Not concurrency-safe; use Has, MarkWithTx, Root or GenProof.)
func (ref *Ref) Tree() *arbo.Tree {
	return ref.tree
}

// Has reports whether the voter is registered.
func (ref *Ref) Has(binding []byte) (bool, error) {
	key := HashAndTrunkKey(ref.ProposalID, binding)
	ref.treeMu.Lock()
	defer ref.treeMu.Unlock()
	if _, _, err := ref.tree.Get(key); err != nil {
		if errors.Is(err, arbo.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MarkWithTx registers the voter using the given write transaction of the
// database the registry was opened with. Nothing is visible until the
// caller commits wTx; if the caller discards it the tree is unchanged.
func (ref *Ref) MarkWithTx(wTx db.WriteTx, binding []byte) error {
	key := HashAndTrunkKey(ref.ProposalID, binding)
	if key == nil {
		return fmt.Errorf("could not derive registry key")
	}
	ref.treeMu.Lock()
	defer ref.treeMu.Unlock()
	tx := prefixeddb.NewPrefixedWriteTx(wTx, treePrefix(ref.ProposalID))
	if err := ref.tree.AddWithTx(tx, key, votedValue); err != nil {
		if errors.Is(err, arbo.ErrKeyAlreadyExists) {
			return ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

// Root safely returns the current Merkle tree root.
func (ref *Ref) Root() []byte {
	ref.treeMu.Lock()
	defer ref.treeMu.Unlock()
	root, err := ref.tree.Root()
	if err != nil {
		return nil
	}
	return root
}

// Size safely returns the number of registered voters.
func (ref *Ref) Size() int {
	ref.treeMu.Lock()
	defer ref.treeMu.Unlock()
	size, err := ref.tree.GetNLeafs()
	if err != nil {
		return 0
	}
	return size
}

// GenProof safely generates the registry proof of a voter. It returns
// ErrKeyNotFound if the voter is not registered.
func (ref *Ref) GenProof(binding []byte) (*Proof, error) {
	key := HashAndTrunkKey(ref.ProposalID, binding)
	ref.treeMu.Lock()
	defer ref.treeMu.Unlock()
	root, err := ref.tree.Root()
	if err != nil {
		return nil, err
	}
	leafKey, value, siblings, inclusion, err := ref.tree.GenProof(key)
	if err != nil {
		return nil, err
	}
	if !inclusion {
		return nil, ErrKeyNotFound
	}
	return &Proof{
		Root:     root,
		Key:      leafKey,
		Value:    value,
		Siblings: siblings,
	}, nil
}
