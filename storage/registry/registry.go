// Package registry keeps the set of voters of every proposal. Each proposal
// owns an arbo sparse merkle tree whose keys are derived from the voter
// binding, so a voter can be registered only once per proposal and the set
// is summarized by a root. The tree never holds the voter's choice or the
// leaf index of the commitment.
package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/arbo"
	"github.com/vocdoni/proposal-ledger/types"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

const (
	registryDBprefix          = "rt_"
	registryDBreferencePrefix = "rr_"
)

var (
	// ErrRegistryNotFound is returned when a registry is not found in the database.
	ErrRegistryNotFound = fmt.Errorf("voter registry not found in the local database")
	// ErrRegistryAlreadyExists is returned by New() if the registry already exists.
	ErrRegistryAlreadyExists = fmt.Errorf("voter registry already exists in the local database")
	// ErrAlreadyRegistered is returned when marking a voter twice.
	ErrAlreadyRegistered = fmt.Errorf("voter already registered")
	// ErrKeyNotFound is returned when a voter is not in the tree.
	ErrKeyNotFound = fmt.Errorf("key not found")

	defaultHashFunction = arbo.HashFunctionSha256

	// votedValue is the leaf value of every registered voter.
	votedValue = []byte{1}
)

// RegistryDB is a safe and persistent database of voter registries, one
// per proposal.
type RegistryDB struct {
	mu     sync.RWMutex
	db     db.Database
	loaded map[types.ProposalID]*Ref
}

// NewRegistryDB creates a new RegistryDB object.
func NewRegistryDB(db db.Database) *RegistryDB {
	return &RegistryDB{
		db:     db,
		loaded: make(map[types.ProposalID]*Ref),
	}
}

// New creates the registry of a proposal. It returns
// ErrRegistryAlreadyExists if the proposal already has one.
func (r *RegistryDB) New(pid types.ProposalID) (*Ref, error) {
	key := referenceKey(pid)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.loaded[pid]; exists {
		return nil, ErrRegistryAlreadyExists
	}
	if _, err := r.db.Get(key); err == nil {
		return nil, ErrRegistryAlreadyExists
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		return nil, err
	}

	ref := &Ref{
		ProposalID: pid,
		MaxLevels:  types.RegistryTreeMaxLevels,
		HashType:   string(defaultHashFunction.Type()),
		Created:    types.TimestampOf(time.Now()),
	}
	if err := r.openTree(ref); err != nil {
		return nil, err
	}
	if err := r.writeReference(ref); err != nil {
		return nil, err
	}
	r.loaded[pid] = ref
	return ref, nil
}

// Exists returns true if the proposal has a registry.
func (r *RegistryDB) Exists(pid types.ProposalID) bool {
	r.mu.RLock()
	_, exists := r.loaded[pid]
	r.mu.RUnlock()
	if exists {
		return true
	}
	_, err := r.db.Get(referenceKey(pid))
	return err == nil
}

// Load returns the registry of a proposal from memory or from the database.
func (r *RegistryDB) Load(pid types.ProposalID) (*Ref, error) {
	r.mu.RLock()
	if ref, exists := r.loaded[pid]; exists {
		r.mu.RUnlock()
		return ref, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	// another goroutine may have loaded it meanwhile
	if ref, exists := r.loaded[pid]; exists {
		return ref, nil
	}

	data, err := r.db.Get(referenceKey(pid))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRegistryNotFound, pid)
		}
		return nil, err
	}
	ref := &Ref{}
	if err := cbor.Unmarshal(data, ref); err != nil {
		return nil, fmt.Errorf("decode registry reference: %w", err)
	}
	if ref.HashType != string(defaultHashFunction.Type()) {
		return nil, fmt.Errorf("unsupported registry hash function %q", ref.HashType)
	}
	if err := r.openTree(ref); err != nil {
		return nil, err
	}
	r.loaded[pid] = ref
	return ref, nil
}

// openTree opens the arbo tree of the reference in its own prefix.
func (r *RegistryDB) openTree(ref *Ref) error {
	tree, err := arbo.NewTree(arbo.Config{
		Database:     prefixeddb.NewPrefixedDatabase(r.db, treePrefix(ref.ProposalID)),
		MaxLevels:    ref.MaxLevels,
		HashFunction: defaultHashFunction,
	})
	if err != nil {
		return err
	}
	ref.tree = tree
	return nil
}

// writeReference writes a registry reference to the database.
func (r *RegistryDB) writeReference(ref *Ref) error {
	data, err := cbor.Marshal(ref)
	if err != nil {
		return err
	}
	wtx := r.db.WriteTx()
	defer wtx.Discard()
	if err := wtx.Set(referenceKey(ref.ProposalID), data); err != nil {
		return err
	}
	return wtx.Commit()
}

// HashAndTrunkKey derives the tree key of a voter in a proposal: the hash
// of pid || binding truncated to the tree depth. Returns nil if the hash
// function fails.
func HashAndTrunkKey(pid types.ProposalID, binding []byte) []byte {
	hash, err := defaultHashFunction.Hash(pid.Marshal(), binding)
	if err != nil {
		return nil
	}
	return hash[:types.RegistryKeyLen]
}

// VerifyProof checks a registry proof against the root it carries.
func VerifyProof(proof *Proof) bool {
	if proof == nil {
		return false
	}
	valid, err := arbo.CheckProof(defaultHashFunction, proof.Key, proof.Value, proof.Root, proof.Siblings)
	if err != nil {
		return false
	}
	return valid
}

func referenceKey(pid types.ProposalID) []byte {
	return append([]byte(registryDBreferencePrefix), pid.Marshal()...)
}

// treePrefix returns the prefix used for the registry tree in the database.
func treePrefix(pid types.ProposalID) []byte {
	return append([]byte(registryDBprefix), pid.Marshal()...)
}
