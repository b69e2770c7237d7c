package api

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/proposal-ledger/merkle"
	"github.com/vocdoni/proposal-ledger/storage/registry"
	"github.com/vocdoni/proposal-ledger/types"
	"github.com/vocdoni/proposal-ledger/voting"
)

// SignedRequest wraps every write request. The signature is an Ethereum
// personal signature of the exact payload bytes; the recovered address is
// the principal of the request.
type SignedRequest struct {
	Payload   json.RawMessage `json:"payload"`
	Signature types.HexBytes  `json:"signature"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// OrganizationRequest registers the signer as an organization. Address
// must be the signer.
type OrganizationRequest struct {
	Address common.Address `json:"address"`
}

// NewProposalRequest creates a proposal of the signer organization.
type NewProposalRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	DurationHours uint64 `json:"durationHours"`
}

// ProposalsResponse is the list of proposals.
type ProposalsResponse struct {
	Proposals []*voting.ProposalInfo `json:"proposals"`
}

// SaltRequest asks for a salt for the signer in the proposal.
type SaltRequest struct {
	ProposalID types.ProposalID `json:"proposalId"`
}

// SaltResponse holds a freshly issued salt.
type SaltResponse struct {
	ProposalID types.ProposalID `json:"proposalId"`
	Salt       types.HexBytes   `json:"salt"`
}

// VoteRequest is the vote of the signer. Weight defaults to 1.
type VoteRequest struct {
	ProposalID types.ProposalID `json:"proposalId"`
	Choice     types.VoteChoice `json:"choice"`
	Weight     *types.BigInt    `json:"weight,omitempty"`
	Salt       types.HexBytes   `json:"salt"`
}

// VoteResponse is the receipt of an accepted vote.
type VoteResponse struct {
	Accepted bool          `json:"accepted"`
	Proof    *merkle.Proof `json:"proof"`
}

// VoterStatus tells whether an address voted in a proposal, with the
// registry proof when it did.
type VoterStatus struct {
	ProposalID types.ProposalID `json:"proposalId"`
	Address    common.Address   `json:"address"`
	Voted      bool             `json:"voted"`
	Proof      *registry.Proof  `json:"proof,omitempty"`
}

// RootResponse is the current state of a proposal tree.
type RootResponse struct {
	ProposalID types.ProposalID `json:"proposalId"`
	Root       types.HexBytes   `json:"root"`
	Size       uint64           `json:"size"`
	VotersRoot types.HexBytes   `json:"votersRoot"`
}

// VerifyResponse is the result of a proof verification.
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// VoterVotesResponse lists the proposals an address voted in.
type VoterVotesResponse struct {
	Address   common.Address     `json:"address"`
	Proposals []types.ProposalID `json:"proposals"`
}
