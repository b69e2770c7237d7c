package storage

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/proposal-ledger/types"
)

// voterKeySize is the size of the voter part of the voter index keys.
const voterKeySize = 20

// Artifact encoding/decoding
func encodeArtifact(a any) ([]byte, error) {
	encOpts := cbor.CoreDetEncOptions()
	em, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return em.Marshal(a)
}

func decodeArtifact(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

// SaltHash returns the digest under which a consumed salt is recorded. The
// salt itself is never stored.
func SaltHash(salt []byte) []byte {
	hash := sha256.Sum256(salt)
	return hash[:]
}

// voterIndexKey returns the fixed size key of a voter binding, so no
// binding can be a prefix of another one.
func voterIndexKey(voter []byte) []byte {
	hash := sha256.Sum256(voter)
	return hash[:voterKeySize]
}

// indexKey returns pid || index, both big-endian so keys sort by index.
func indexKey(pid types.ProposalID, index uint64) []byte {
	key := pid.Marshal()
	return binary.BigEndian.AppendUint64(key, index)
}
