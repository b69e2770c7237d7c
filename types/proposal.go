package types

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ProposalID identifies a proposal. Ids are assigned sequentially starting
// at 1 and are never reused.
type ProposalID uint64

// Marshal encodes the ProposalID as 8 big-endian bytes.
func (p ProposalID) Marshal() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(p))
	return b
}

// Unmarshal decodes 8 big-endian bytes into the ProposalID.
func (p *ProposalID) Unmarshal(data []byte) error {
	if len(data) != 8 {
		return fmt.Errorf("invalid ProposalID length: %d", len(data))
	}
	*p = ProposalID(binary.BigEndian.Uint64(data))
	return nil
}

// String returns the decimal representation of the id.
func (p ProposalID) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

// ParseProposalID parses the decimal representation of a proposal id.
func ParseProposalID(s string) (ProposalID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid proposal id %q: %w", s, err)
	}
	return ProposalID(n), nil
}

// Timestamp is a point in time as signed nanoseconds since the Unix epoch.
type Timestamp int64

// TimestampOf converts a time.Time into a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

// Time converts the Timestamp back into a time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t))
}

// Proposal is a question put to voters. Created and Deadline never change
// once the proposal is stored.
type Proposal struct {
	ID           ProposalID     `json:"id" cbor:"0,keyasint,omitempty"`
	Title        string         `json:"title" cbor:"1,keyasint,omitempty"`
	Description  string         `json:"description" cbor:"2,keyasint,omitempty"`
	Created      Timestamp      `json:"created" cbor:"3,keyasint,omitempty"`
	Deadline     Timestamp      `json:"deadline" cbor:"4,keyasint,omitempty"`
	Organization common.Address `json:"organization" cbor:"5,keyasint,omitempty"`
	VotingMethod string         `json:"votingMethod" cbor:"6,keyasint,omitempty"`
}

// IsActive reports whether the proposal still accepts votes at now.
func (p *Proposal) IsActive(now time.Time) bool {
	return int64(p.Deadline) > now.UnixNano()
}

// Organization is a principal allowed to create proposals.
type Organization struct {
	Address    common.Address `json:"address" cbor:"0,keyasint,omitempty"`
	Registered Timestamp      `json:"registered" cbor:"1,keyasint,omitempty"`
	Proposals  uint64         `json:"proposals" cbor:"2,keyasint,omitempty"`
}
