// Package tally folds revealed votes into VotingStats and normalizes the
// different shapes in which stats travel over the wire.
package tally

import (
	"errors"
	"fmt"

	"github.com/vocdoni/proposal-ledger/types"
)

// ErrMismatch is returned when the revealed votes do not account for every
// committed leaf.
var ErrMismatch = errors.New("revealed votes do not match committed votes")

// Compute folds the reveals into a new VotingStats. It keeps no state, so
// calling it twice over the same reveals gives the same result. A nil or
// empty input yields zero stats. Reveals with an unknown choice are ignored.
func Compute(reveals []types.Reveal) types.VotingStats {
	stats := types.NewVotingStats()
	for _, r := range reveals {
		var count *uint64
		var weight *types.BigInt
		switch r.Choice {
		case types.ChoiceYes:
			count, weight = &stats.YesVotes, stats.YesWeight
		case types.ChoiceNo:
			count, weight = &stats.NoVotes, stats.NoWeight
		case types.ChoiceAbstain:
			count, weight = &stats.AbstainVotes, stats.AbstainWeight
		default:
			continue
		}
		w := r.Weight
		if w == nil {
			w = types.NewInt(0)
		}
		*count++
		weight.Add(weight, w)
		stats.TotalVotes++
		stats.TotalWeight.Add(stats.TotalWeight, w)
	}
	return stats
}

// Reconcile checks that the stats account for exactly committed votes.
func Reconcile(stats types.VotingStats, committed uint64) error {
	if stats.TotalVotes != committed {
		return fmt.Errorf("%w: %d revealed, %d committed", ErrMismatch, stats.TotalVotes, committed)
	}
	return nil
}
