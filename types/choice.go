package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// VoteChoice is the option selected by a voter. The zero value is not a
// choice, so a request that omits it is rejected.
type VoteChoice uint8

const (
	ChoiceUnset VoteChoice = iota
	ChoiceYes
	ChoiceNo
	ChoiceAbstain
)

var choiceNames = map[VoteChoice]string{
	ChoiceYes:     "Yes",
	ChoiceNo:      "No",
	ChoiceAbstain: "Abstain",
}

// Valid reports whether c is one of the known choices.
func (c VoteChoice) Valid() bool {
	_, ok := choiceNames[c]
	return ok
}

func (c VoteChoice) String() string {
	if name, ok := choiceNames[c]; ok {
		return name
	}
	return fmt.Sprintf("VoteChoice(%d)", uint8(c))
}

// ParseVoteChoice returns the choice for its name (Yes, No or Abstain).
func ParseVoteChoice(s string) (VoteChoice, error) {
	for c, name := range choiceNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown vote choice %q", s)
}

// MarshalJSON encodes the choice as its name.
func (c VoteChoice) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid vote choice %d", uint8(c))
	}
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts the bare name ("Yes") and the tagged variant form
// ({"Yes": null}) used by the web client.
func (c *VoteChoice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var tagged map[string]json.RawMessage
		if err := json.Unmarshal(data, &tagged); err != nil {
			return err
		}
		if len(tagged) != 1 {
			return fmt.Errorf("vote choice variant must have exactly one tag, got %d", len(tagged))
		}
		for name := range tagged {
			parsed, err := ParseVoteChoice(name)
			if err != nil {
				return err
			}
			*c = parsed
		}
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("invalid vote choice: %w", err)
	}
	parsed, err := ParseVoteChoice(name)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
