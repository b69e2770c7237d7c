package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/vocdoni/proposal-ledger/types"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// AcceptedVote is everything persisted when a vote is accepted. The voter
// is only linked to the proposal, never to the leaf or the reveal.
type AcceptedVote struct {
	ProposalID types.ProposalID
	Voter      []byte
	Commitment types.HexBytes
	Reveal     types.Reveal
	SaltHash   []byte
}

// CommitVote writes the leaf, the reveal, the consumed salt and the voter
// index of an accepted vote. withTx is called with the same write
// transaction before it is committed, so other tree updates (the voter
// registry) are applied atomically with the vote. If anything fails nothing
// is written.
func (s *Storage) CommitVote(v *AcceptedVote, withTx func(db.WriteTx) error) error {
	if v == nil {
		return fmt.Errorf("nil vote")
	}
	reveal, err := encodeArtifact(&v.Reveal)
	if err != nil {
		return fmt.Errorf("encode reveal: %w", err)
	}
	key := indexKey(v.ProposalID, v.Reveal.Index)

	wTx := s.db.WriteTx()
	defer wTx.Discard()
	if err := prefixeddb.NewPrefixedWriteTx(wTx, leafPrefix).Set(key, v.Commitment); err != nil {
		return fmt.Errorf("set leaf: %w", err)
	}
	if err := prefixeddb.NewPrefixedWriteTx(wTx, revealPrefix).Set(key, reveal); err != nil {
		return fmt.Errorf("set reveal: %w", err)
	}
	saltKey := append(v.ProposalID.Marshal(), v.SaltHash...)
	if err := prefixeddb.NewPrefixedWriteTx(wTx, saltPrefix).Set(saltKey, []byte{1}); err != nil {
		return fmt.Errorf("set salt: %w", err)
	}
	voterKey := append(voterIndexKey(v.Voter), v.ProposalID.Marshal()...)
	if err := prefixeddb.NewPrefixedWriteTx(wTx, voterPrefix).Set(voterKey, []byte{1}); err != nil {
		return fmt.Errorf("set voter index: %w", err)
	}
	if withTx != nil {
		if err := withTx(wTx); err != nil {
			return err
		}
	}
	return wTx.Commit()
}

// Leaves returns the ordered commitments of the proposal.
func (s *Storage) Leaves(pid types.ProposalID) ([][]byte, error) {
	var leaves [][]byte
	err := s.iterate(leafPrefix, pid.Marshal(), func(k, v []byte) error {
		if len(k) != 8 {
			return fmt.Errorf("invalid leaf key %x", k)
		}
		if index := binary.BigEndian.Uint64(k); index != uint64(len(leaves)) {
			return fmt.Errorf("leaf sequence of proposal %s has a gap at %d", pid, len(leaves))
		}
		leaves = append(leaves, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return leaves, nil
}

// Reveals returns the reveals of the proposal ordered by leaf index.
func (s *Storage) Reveals(pid types.ProposalID) ([]types.Reveal, error) {
	var reveals []types.Reveal
	err := s.iterate(revealPrefix, pid.Marshal(), func(_, v []byte) error {
		var r types.Reveal
		if err := decodeArtifact(v, &r); err != nil {
			return fmt.Errorf("decode reveal: %w", err)
		}
		reveals = append(reveals, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reveals, nil
}

// SaltUsed reports whether a salt with the given hash was already consumed
// in the proposal.
func (s *Storage) SaltUsed(pid types.ProposalID, saltHash []byte) (bool, error) {
	return s.hasKey(saltPrefix, append(pid.Marshal(), saltHash...))
}

// VoterProposals returns the ids of the proposals the voter took part in.
func (s *Storage) VoterProposals(voter []byte) ([]types.ProposalID, error) {
	var pids []types.ProposalID
	err := s.iterate(voterPrefix, voterIndexKey(voter), func(k, _ []byte) error {
		var pid types.ProposalID
		if err := pid.Unmarshal(k); err != nil {
			return err
		}
		pids = append(pids, pid)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pids, nil
}
