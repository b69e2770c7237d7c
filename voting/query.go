package voting

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vocdoni/proposal-ledger/merkle"
	"github.com/vocdoni/proposal-ledger/storage/registry"
	"github.com/vocdoni/proposal-ledger/tally"
	"github.com/vocdoni/proposal-ledger/types"
)

// HasVoted reports whether the voter already voted in the proposal.
func (s *Service) HasVoted(pid types.ProposalID, voter []byte) (bool, error) {
	b, err := s.box(pid)
	if err != nil {
		return false, err
	}
	voted, err := b.voters.Has(voter)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return voted, nil
}

// Root returns the current commitment root of the proposal.
func (s *Service) Root(pid types.ProposalID) (types.HexBytes, error) {
	b, err := s.box(pid)
	if err != nil {
		return nil, err
	}
	return b.tree.Root(), nil
}

// Size returns the number of accepted votes of the proposal.
func (s *Service) Size(pid types.ProposalID) (uint64, error) {
	b, err := s.box(pid)
	if err != nil {
		return 0, err
	}
	return b.tree.Size(), nil
}

// Stats folds the revealed votes of the proposal. The reveals must account
// for every committed leaf.
func (s *Service) Stats(pid types.ProposalID) (types.VotingStats, error) {
	b, err := s.box(pid)
	if err != nil {
		return types.VotingStats{}, err
	}
	size, reveals := b.snapshot()
	stats := tally.Compute(reveals)
	if err := tally.Reconcile(stats, size); err != nil {
		return types.VotingStats{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return stats, nil
}

// Proof returns the inclusion proof of the leaf at index against the
// current root.
func (s *Service) Proof(pid types.ProposalID, index uint64) (*merkle.Proof, error) {
	b, err := s.box(pid)
	if err != nil {
		return nil, err
	}
	return b.tree.Proof(index)
}

// VerifyProof checks that the proof belongs to the proposal. The path must
// lead to the root the tree had when it held proof.TreeSize leaves, which
// is the current root for proofs issued after the last vote. A structurally
// invalid proof is an error; a valid proof that does not match is false.
func (s *Service) VerifyProof(pid types.ProposalID, proof *merkle.Proof) (bool, error) {
	b, err := s.box(pid)
	if err != nil {
		return false, err
	}
	valid, err := verifyAgainst(b.tree, proof)
	if err != nil {
		return false, err
	}
	proofsVerified(valid).Inc()
	return valid, nil
}

func verifyAgainst(tree *merkle.Tree, proof *merkle.Proof) (bool, error) {
	computed, err := proof.ComputeRoot(tree.HashFunction())
	if err != nil {
		return false, err
	}
	root, ok := tree.RootAt(proof.TreeSize)
	if !ok {
		return false, nil
	}
	return bytes.Equal(computed, root), nil
}

// VotersRoot returns the root of the registry of voters of the proposal.
func (s *Service) VotersRoot(pid types.ProposalID) (types.HexBytes, error) {
	b, err := s.box(pid)
	if err != nil {
		return nil, err
	}
	return b.voters.Root(), nil
}

// VoterProof returns the registry proof showing the voter already voted.
func (s *Service) VoterProof(pid types.ProposalID, voter []byte) (*registry.Proof, error) {
	b, err := s.box(pid)
	if err != nil {
		return nil, err
	}
	proof, err := b.voters.GenProof(voter)
	if err != nil {
		if errors.Is(err, registry.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: voter has not voted in %s", ErrNotFound, pid)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return proof, nil
}
