package storage

import (
	"fmt"

	"github.com/vocdoni/proposal-ledger/types"
)

// SetTreeHash records the hash function type of the commitment tree of pid.
func (s *Storage) SetTreeHash(pid types.ProposalID, hashType string) error {
	if hashType == "" {
		return fmt.Errorf("empty hash type")
	}
	return s.setArtifact(treeHashPrefix, pid.Marshal(), hashType)
}

// TreeHash returns the hash function type of the commitment tree of pid. It
// returns ErrNotFound if none was recorded.
func (s *Storage) TreeHash(pid types.ProposalID) (string, error) {
	var hashType string
	if err := s.getArtifact(treeHashPrefix, pid.Marshal(), &hashType); err != nil {
		return "", err
	}
	return hashType, nil
}
