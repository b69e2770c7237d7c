package types

// Reveal is the opened content of one accepted commitment, stored by leaf
// index so it never names the voter.
type Reveal struct {
	Index  uint64     `json:"index" cbor:"0,keyasint,omitempty"`
	Choice VoteChoice `json:"choice" cbor:"1,keyasint,omitempty"`
	Weight *BigInt    `json:"weight" cbor:"2,keyasint,omitempty"`
}

// VotingStats is the aggregate of a proposal's revealed votes.
type VotingStats struct {
	TotalVotes    uint64  `json:"totalVotes"`
	YesVotes      uint64  `json:"yesVotes"`
	NoVotes       uint64  `json:"noVotes"`
	AbstainVotes  uint64  `json:"abstainVotes"`
	TotalWeight   *BigInt `json:"totalWeight"`
	YesWeight     *BigInt `json:"yesWeight"`
	NoWeight      *BigInt `json:"noWeight"`
	AbstainWeight *BigInt `json:"abstainWeight"`
}

// NewVotingStats returns zeroed stats with every weight allocated.
func NewVotingStats() VotingStats {
	return VotingStats{
		TotalWeight:   NewInt(0),
		YesWeight:     NewInt(0),
		NoWeight:      NewInt(0),
		AbstainWeight: NewInt(0),
	}
}

// Equal compares the counters by value. Nil weights compare as zero.
func (s VotingStats) Equal(o VotingStats) bool {
	return s.TotalVotes == o.TotalVotes &&
		s.YesVotes == o.YesVotes &&
		s.NoVotes == o.NoVotes &&
		s.AbstainVotes == o.AbstainVotes &&
		s.TotalWeight.Equal(o.TotalWeight) &&
		s.YesWeight.Equal(o.YesWeight) &&
		s.NoWeight.Equal(o.NoWeight) &&
		s.AbstainWeight.Equal(o.AbstainWeight)
}
