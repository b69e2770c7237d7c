package types

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestVoteChoiceJSON(t *testing.T) {
	c := qt.New(t)
	for _, tc := range []struct {
		in   string
		want VoteChoice
	}{
		{`"Yes"`, ChoiceYes},
		{`"No"`, ChoiceNo},
		{`"Abstain"`, ChoiceAbstain},
		{`{"Yes": null}`, ChoiceYes},
		{`{"Abstain":null}`, ChoiceAbstain},
	} {
		var got VoteChoice
		c.Assert(json.Unmarshal([]byte(tc.in), &got), qt.IsNil, qt.Commentf("input %s", tc.in))
		c.Assert(got, qt.Equals, tc.want)
	}

	for _, bad := range []string{`"yes"`, `"Maybe"`, `{}`, `{"Yes":null,"No":null}`, `3`} {
		var got VoteChoice
		c.Assert(json.Unmarshal([]byte(bad), &got), qt.IsNotNil, qt.Commentf("input %s", bad))
	}

	out, err := json.Marshal(ChoiceNo)
	c.Assert(err, qt.IsNil)
	c.Assert(string(out), qt.Equals, `"No"`)

	_, err = json.Marshal(VoteChoice(7))
	c.Assert(err, qt.IsNotNil)
	c.Assert(VoteChoice(7).Valid(), qt.IsFalse)

	var unset VoteChoice
	c.Assert(unset, qt.Equals, ChoiceUnset)
	c.Assert(unset.Valid(), qt.IsFalse)
	_, err = json.Marshal(unset)
	c.Assert(err, qt.IsNotNil)
	_, err = ParseVoteChoice("Unset")
	c.Assert(err, qt.IsNotNil)
}
