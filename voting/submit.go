package voting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vocdoni/proposal-ledger/log"
	"github.com/vocdoni/proposal-ledger/merkle"
	"github.com/vocdoni/proposal-ledger/storage"
	"github.com/vocdoni/proposal-ledger/storage/registry"
	"github.com/vocdoni/proposal-ledger/types"
	"go.vocdoni.io/dvote/db"
)

// Receipt is the outcome of a vote submission. Rejections carry the kind
// of error in Reason.
type Receipt struct {
	Accepted bool          `json:"accepted"`
	Proof    *merkle.Proof `json:"proof,omitempty"`
	Reason   ErrorKind     `json:"reason,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// Vote is a vote as submitted by a voter.
type Vote struct {
	ProposalID types.ProposalID
	Binding    []byte
	Choice     types.VoteChoice
	// Weight defaults to 1 when nil.
	Weight *types.BigInt
	Salt   []byte
}

// SubmitVote commits the vote, registers the voter and appends the
// commitment to the proposal tree. The context is only checked before the
// vote is written; once the write begins it runs to completion.
//
// On success the receipt holds the inclusion proof of the new leaf. On
// rejection it returns both a receipt with the reason and the error. A
// rejected vote leaves the proposal unchanged.
func (s *Service) SubmitVote(ctx context.Context, v *Vote) (*Receipt, error) {
	start := time.Now()
	defer observeSubmit(start)

	proof, err := s.submitVote(ctx, v)
	if err != nil {
		kind := KindOf(err)
		votesRejected(kind).Inc()
		log.Debugw("vote rejected", "reason", string(kind), "error", err.Error())
		return &Receipt{Reason: kind, Message: err.Error()}, err
	}
	votesAccepted.Inc()
	return &Receipt{Accepted: true, Proof: proof}, nil
}

func (s *Service) submitVote(ctx context.Context, v *Vote) (*merkle.Proof, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil vote", ErrPrecondition)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	weight := v.Weight
	if weight == nil {
		weight = types.NewInt(1)
	}
	c, err := s.builder.Commit(v.ProposalID, v.Binding, v.Choice, weight, v.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	b, err := s.box(v.ProposalID)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if s.opts.EnforceDeadline && b.closed(s.now()) {
		return nil, fmt.Errorf("%w: %s", ErrProposalClosed, v.ProposalID)
	}
	voted, err := b.voters.Has(v.Binding)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if voted {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateVote, v.ProposalID)
	}
	if err := s.checkSaltSlot(v.ProposalID, v.Binding, v.Salt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	saltHash := storage.SaltHash(v.Salt)
	used, err := s.stg.SaltUsed(v.ProposalID, saltHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if used {
		return nil, fmt.Errorf("%w: %v", ErrPrecondition, ErrSaltReused)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// the index is only taken by the tree once the write is committed
	index := b.tree.Size()
	reveal := types.Reveal{Index: index, Choice: v.Choice, Weight: weight.Clone()}
	if err := s.stg.CommitVote(&storage.AcceptedVote{
		ProposalID: v.ProposalID,
		Voter:      v.Binding,
		Commitment: c,
		Reveal:     reveal,
		SaltHash:   saltHash,
	}, func(wTx db.WriteTx) error {
		return b.voters.MarkWithTx(wTx, v.Binding)
	}); err != nil {
		if errors.Is(err, registry.ErrAlreadyRegistered) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVote, v.ProposalID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	b.stateMu.Lock()
	_, _, err = b.tree.Insert(c)
	if err == nil {
		b.reveals = append(b.reveals, reveal)
	}
	b.stateMu.Unlock()
	if err != nil {
		// the vote is persisted, the box is rebuilt from storage on restart
		log.Errorw(err, "could not insert persisted commitment")
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	s.salts.Remove(string(v.Salt))

	log.Debugw("vote accepted", "proposalId", v.ProposalID.String(), "index", index)
	return b.tree.Proof(index)
}
