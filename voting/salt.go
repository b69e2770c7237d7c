package voting

import (
	"fmt"

	"github.com/vocdoni/proposal-ledger/commitment"
	"github.com/vocdoni/proposal-ledger/types"
)

// saltSlot is the (proposal, voter) pair a salt was issued to.
type saltSlot struct {
	pid   types.ProposalID
	voter string
}

func slotOf(pid types.ProposalID, voter []byte) saltSlot {
	return saltSlot{pid: pid, voter: string(voter)}
}

// IssueSalt generates a fresh salt for the voter in the proposal and
// remembers the slot it was issued to. A salt can still be used if it was
// evicted from the pending set, but never by another slot while pending.
func (s *Service) IssueSalt(pid types.ProposalID, voter []byte) (types.HexBytes, error) {
	if len(voter) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrPrecondition, commitment.ErrEmptyBinding)
	}
	b, err := s.box(pid)
	if err != nil {
		return nil, err
	}
	if s.opts.EnforceDeadline && b.closed(s.now()) {
		return nil, fmt.Errorf("%w: %s", ErrProposalClosed, pid)
	}
	voted, err := b.voters.Has(voter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if voted {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateVote, pid)
	}
	salt, err := commitment.GenerateSalt()
	if err != nil {
		return nil, err
	}
	s.salts.Add(string(salt), slotOf(pid, voter))
	saltsIssued.Inc()
	return salt, nil
}

// checkSaltSlot returns ErrSaltNotIssued if the salt is pending for a
// different slot.
func (s *Service) checkSaltSlot(pid types.ProposalID, voter, salt []byte) error {
	slot, ok := s.salts.Peek(string(salt))
	if ok && slot != slotOf(pid, voter) {
		return ErrSaltNotIssued
	}
	return nil
}
