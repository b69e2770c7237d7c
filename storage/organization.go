package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/proposal-ledger/types"
)

// RegisterOrganization stores a new organization. It returns
// ErrAlreadyExists if the address is already registered.
func (s *Storage) RegisterOrganization(org *types.Organization) error {
	if org == nil {
		return fmt.Errorf("nil organization")
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	exists, err := s.hasKey(organizationPrefix, org.Address.Bytes())
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("organization %s: %w", org.Address.Hex(), ErrAlreadyExists)
	}
	return s.setArtifact(organizationPrefix, org.Address.Bytes(), org)
}

// Organization returns the organization registered with the address. It
// returns ErrNotFound if there is none.
func (s *Storage) Organization(address common.Address) (*types.Organization, error) {
	org := &types.Organization{}
	if err := s.getArtifact(organizationPrefix, address.Bytes(), org); err != nil {
		return nil, err
	}
	return org, nil
}
