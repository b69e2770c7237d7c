package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/vocdoni/proposal-ledger/types"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// CreateProposal assigns the next proposal id to p and stores it, together
// with the updated counters, in one transaction. The organization must be
// registered. Ids start at 1.
func (s *Storage) CreateProposal(p *types.Proposal) (types.ProposalID, error) {
	if p == nil {
		return 0, fmt.Errorf("nil proposal")
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	org := &types.Organization{}
	if err := s.getArtifact(organizationPrefix, p.Organization.Bytes(), org); err != nil {
		return 0, fmt.Errorf("organization %s: %w", p.Organization.Hex(), err)
	}

	next, err := s.nextProposalID()
	if err != nil {
		return 0, err
	}
	p.ID = next
	org.Proposals++

	proposalData, err := encodeArtifact(p)
	if err != nil {
		return 0, err
	}
	orgData, err := encodeArtifact(org)
	if err != nil {
		return 0, err
	}

	wTx := s.db.WriteTx()
	defer wTx.Discard()
	if err := prefixeddb.NewPrefixedWriteTx(wTx, proposalPrefix).Set(p.ID.Marshal(), proposalData); err != nil {
		return 0, err
	}
	if err := prefixeddb.NewPrefixedWriteTx(wTx, organizationPrefix).Set(org.Address.Bytes(), orgData); err != nil {
		return 0, err
	}
	counter := binary.BigEndian.AppendUint64(nil, uint64(next+1))
	if err := prefixeddb.NewPrefixedWriteTx(wTx, counterPrefix).Set(nextProposalIDKey, counter); err != nil {
		return 0, err
	}
	if err := wTx.Commit(); err != nil {
		return 0, err
	}
	return next, nil
}

// nextProposalID reads the id counter. Callers must hold globalLock.
func (s *Storage) nextProposalID() (types.ProposalID, error) {
	rd := prefixeddb.NewPrefixedReader(s.db, counterPrefix)
	data, err := rd.Get(nextProposalIDKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 1, nil
		}
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupted proposal counter: %x", data)
	}
	return types.ProposalID(binary.BigEndian.Uint64(data)), nil
}

// Proposal returns the proposal with the given id. It returns ErrNotFound
// if it does not exist.
func (s *Storage) Proposal(pid types.ProposalID) (*types.Proposal, error) {
	p := &types.Proposal{}
	if err := s.getArtifact(proposalPrefix, pid.Marshal(), p); err != nil {
		return nil, err
	}
	return p, nil
}

// Proposals returns every stored proposal ordered by id.
func (s *Storage) Proposals() ([]*types.Proposal, error) {
	var list []*types.Proposal
	err := s.iterate(proposalPrefix, nil, func(_, v []byte) error {
		p := &types.Proposal{}
		if err := decodeArtifact(v, p); err != nil {
			return fmt.Errorf("decode proposal: %w", err)
		}
		list = append(list, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}
