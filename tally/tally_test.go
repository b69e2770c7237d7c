package tally

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/proposal-ledger/types"
)

func reveals(choices ...types.VoteChoice) []types.Reveal {
	out := make([]types.Reveal, len(choices))
	for i, ch := range choices {
		out[i] = types.Reveal{Index: uint64(i), Choice: ch, Weight: types.NewInt(1)}
	}
	return out
}

func TestComputeEmpty(t *testing.T) {
	c := qt.New(t)
	for _, in := range [][]types.Reveal{nil, {}} {
		stats := Compute(in)
		c.Assert(stats.Equal(types.NewVotingStats()), qt.IsTrue)
		c.Assert(stats.TotalWeight, qt.IsNotNil)
		c.Assert(Reconcile(stats, 0), qt.IsNil)
	}
}

func TestComputeExample(t *testing.T) {
	c := qt.New(t)
	in := reveals(types.ChoiceYes, types.ChoiceYes, types.ChoiceNo, types.ChoiceAbstain)
	stats := Compute(in)
	c.Assert(stats.TotalVotes, qt.Equals, uint64(4))
	c.Assert(stats.YesVotes, qt.Equals, uint64(2))
	c.Assert(stats.NoVotes, qt.Equals, uint64(1))
	c.Assert(stats.AbstainVotes, qt.Equals, uint64(1))
	c.Assert(stats.TotalWeight.String(), qt.Equals, "4")
	c.Assert(stats.YesWeight.String(), qt.Equals, "2")
	c.Assert(stats.NoWeight.String(), qt.Equals, "1")
	c.Assert(stats.AbstainWeight.String(), qt.Equals, "1")
	c.Assert(Reconcile(stats, 4), qt.IsNil)

	// no hidden accumulation between calls
	again := Compute(in)
	c.Assert(again.Equal(stats), qt.IsTrue)
	// the input weights are not modified by the fold
	for _, r := range in {
		c.Assert(r.Weight.String(), qt.Equals, "1")
	}
}

func TestComputeWeights(t *testing.T) {
	c := qt.New(t)
	in := []types.Reveal{
		{Choice: types.ChoiceYes, Weight: types.NewInt(10)},
		{Choice: types.ChoiceNo, Weight: types.NewInt(3)},
		{Choice: types.ChoiceNo, Weight: nil},
		{Choice: types.VoteChoice(9), Weight: types.NewInt(100)},
	}
	stats := Compute(in)
	c.Assert(stats.TotalVotes, qt.Equals, stats.YesVotes+stats.NoVotes+stats.AbstainVotes)
	c.Assert(stats.TotalVotes, qt.Equals, uint64(3))
	c.Assert(stats.TotalWeight.String(), qt.Equals, "13")
	c.Assert(stats.NoWeight.String(), qt.Equals, "3")

	err := Reconcile(stats, 4)
	c.Assert(errors.Is(err, ErrMismatch), qt.IsTrue)
}
