package tally

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/proposal-ledger/types"
)

const record = `{"totalVotes":4,"yesVotes":2,"noVotes":1,"abstainVotes":1,` +
	`"totalWeight":"4","yesWeight":"2","noWeight":1,"abstainWeight":"1"}`

func TestNormalizeShapes(t *testing.T) {
	c := qt.New(t)
	want := Compute(reveals(types.ChoiceYes, types.ChoiceYes, types.ChoiceNo, types.ChoiceAbstain))

	for _, in := range []string{
		record,
		"[" + record + "]",
		`{"Ok":` + record + `}`,
		`[{"Ok":` + record + `}]`,
		`{"Ok":[` + record + `]}`,
		"  \n" + record,
	} {
		got := Normalize([]byte(in))
		c.Assert(got.Equal(want), qt.IsTrue, qt.Commentf("input %s", in))
	}

	// the canonical encoding normalizes to itself
	data, err := json.Marshal(want)
	c.Assert(err, qt.IsNil)
	c.Assert(Normalize(data).Equal(want), qt.IsTrue)
}

func TestNormalizeFallback(t *testing.T) {
	c := qt.New(t)
	zero := types.NewVotingStats()
	for _, in := range []string{
		"",
		"null",
		"[]",
		"42",
		`"stats"`,
		`{"Ok":null}`,
		`{"Err":"not found"}`,
		`{"totalVotes":`,
		`[[[[[[` + record + `]]]]]]`,
	} {
		got := Normalize([]byte(in))
		c.Assert(got.Equal(zero), qt.IsTrue, qt.Commentf("input %q", in))
		c.Assert(got.TotalWeight, qt.IsNotNil)
	}
}

func TestNormalizeFields(t *testing.T) {
	c := qt.New(t)
	got := Normalize([]byte(`{"totalVotes":"3","yesVotes":-1,"noVotes":"x","abstainVotes":2.0,` +
		`"totalWeight":"18446744073709551617","yesWeight":1e3,"noWeight":0.5}`))
	c.Assert(got.TotalVotes, qt.Equals, uint64(3))
	c.Assert(got.YesVotes, qt.Equals, uint64(0))
	c.Assert(got.NoVotes, qt.Equals, uint64(0))
	c.Assert(got.AbstainVotes, qt.Equals, uint64(2))
	c.Assert(got.TotalWeight.String(), qt.Equals, "18446744073709551617")
	c.Assert(got.YesWeight.String(), qt.Equals, "1000")
	c.Assert(got.NoWeight.String(), qt.Equals, "0")
	c.Assert(got.AbstainWeight.String(), qt.Equals, "0")
}

func TestNormalizeHugeNumbers(t *testing.T) {
	c := qt.New(t)
	got := Normalize([]byte(`{"totalVotes":1e100000000,"totalWeight":1e100000000,` +
		`"yesWeight":1e1000000000,"noWeight":"1e200","abstainWeight":1e150}`))
	c.Assert(got.TotalVotes, qt.Equals, uint64(0))
	c.Assert(got.TotalWeight.String(), qt.Equals, "0")
	c.Assert(got.YesWeight.String(), qt.Equals, "0")
	// 1e200 needs 665 bits
	c.Assert(got.NoWeight.String(), qt.Equals, "0")
	c.Assert(got.AbstainWeight.MathBigInt().BitLen(), qt.Equals, 499)
}
