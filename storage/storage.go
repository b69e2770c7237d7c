// storage package contains all the artifacts of the voting ledger that are
// stored in the database. It is a prefixed key-value store over a
// go.vocdoni.io/dvote database. The following prefixes are used:
//   - 'o/' for organizations (by address)
//   - 'p/' for proposals (by id)
//   - 'l/' for merkle leaves (by proposal id and leaf index)
//   - 'r/' for vote reveals (by proposal id and leaf index)
//   - 's/' for consumed salts (by proposal id and salt hash)
//   - 'v/' for the proposals each voter took part in (by voter key and id)
//   - 'k/' for counters
//
// The voter registry trees live under their own prefix, see the registry
// subpackage. Vote writes touch several prefixes and the registry tree in a
// single write transaction.
package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vocdoni/proposal-ledger/log"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	// Prefixes for the keys in the database.
	organizationPrefix = []byte("o/")
	proposalPrefix     = []byte("p/")
	leafPrefix         = []byte("l/")
	revealPrefix       = []byte("r/")
	saltPrefix         = []byte("s/")
	voterPrefix        = []byte("v/")
	counterPrefix      = []byte("k/")
	treeHashPrefix     = []byte("t/")

	nextProposalIDKey = []byte("nextProposalId")
)

var (
	// ErrNotFound is returned when an artifact is not in the database.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating an artifact twice.
	ErrAlreadyExists = errors.New("already exists")
)

// Storage wraps the database and provides the methods to read and write the
// ledger artifacts.
type Storage struct {
	db db.Database
	// globalLock serializes read-modify-write sequences such as the id
	// counter.
	globalLock sync.Mutex
}

// New creates a new Storage instance.
func New(db db.Database) *Storage {
	return &Storage{db: db}
}

// DB returns the underlying database.
func (s *Storage) DB() db.Database {
	return s.db
}

// Close closes the storage.
func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		log.Warnw("could not close database", "error", err)
	}
}

// setArtifact encodes the artifact and writes it under prefix/key.
func (s *Storage) setArtifact(prefix, key []byte, artifact any) error {
	data, err := encodeArtifact(artifact)
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	defer wTx.Discard()
	if err := wTx.Set(key, data); err != nil {
		return err
	}
	return wTx.Commit()
}

// getArtifact reads and decodes the artifact stored under prefix/key into
// out. It returns ErrNotFound if the key does not exist.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	data, err := rd.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := decodeArtifact(data, out); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	return nil
}

// hasKey reports whether prefix/key exists.
func (s *Storage) hasKey(prefix, key []byte) (bool, error) {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	if _, err := rd.Get(key); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// iterate calls fn for every key under prefix/sub in key order, with the
// sub prefix stripped from the key. Keys and values are copies.
func (s *Storage) iterate(prefix, sub []byte, fn func(k, v []byte) error) error {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	var cbErr error
	if err := rd.Iterate(sub, func(k, v []byte) bool {
		if cbErr = fn(append([]byte(nil), k...), append([]byte(nil), v...)); cbErr != nil {
			return false
		}
		return true
	}); err != nil {
		return err
	}
	return cbErr
}
