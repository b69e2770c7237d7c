package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/proposal-ledger/api"
	"github.com/vocdoni/proposal-ledger/crypto/ethereum"
	"github.com/vocdoni/proposal-ledger/merkle"
	"github.com/vocdoni/proposal-ledger/tally"
	"github.com/vocdoni/proposal-ledger/types"
	"github.com/vocdoni/proposal-ledger/voting"
)

// APIError is a failed API request.
type APIError struct {
	Status int
	Code   int
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %d (code %d): %s", errCodeNot200, e.Status, e.Code, e.Msg)
}

// Sign wraps payload into a SignedRequest signed by keys.
func Sign(keys *ethereum.SignKeys, payload any) (*api.SignedRequest, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	signature, err := keys.SignEthereum(data)
	if err != nil {
		return nil, fmt.Errorf("failed to sign payload: %w", err)
	}
	return &api.SignedRequest{Payload: data, Signature: signature}, nil
}

// call performs the request and decodes a 200 response into out. Any other
// status is returned as an *APIError.
func (c *HTTPclient) call(method string, body, out any, urlPath ...string) error {
	data, status, err := c.Request(method, body, nil, urlPath...)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		apiErr := &APIError{Status: status, Msg: string(data)}
		resp := &api.ErrorResponse{}
		if err := json.Unmarshal(data, resp); err == nil && resp.Code != 0 {
			apiErr.Code, apiErr.Msg = resp.Code, resp.Error
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *HTTPclient) signedCall(keys *ethereum.SignKeys, payload, out any, urlPath ...string) error {
	req, err := Sign(keys, payload)
	if err != nil {
		return err
	}
	return c.call(HTTPPOST, req, out, urlPath...)
}

func proposalPath(endpoint string, pid types.ProposalID) string {
	return api.EndpointWithParam(endpoint, api.ProposalURLParam, pid.String())
}

// RegisterOrganization registers the keys as an organization.
func (c *HTTPclient) RegisterOrganization(keys *ethereum.SignKeys) (*types.Organization, error) {
	org := &types.Organization{}
	payload := &api.OrganizationRequest{Address: keys.Address()}
	if err := c.signedCall(keys, payload, org, api.OrganizationsEndpoint); err != nil {
		return nil, err
	}
	return org, nil
}

// CreateProposal creates a proposal of the organization behind keys.
func (c *HTTPclient) CreateProposal(keys *ethereum.SignKeys, title, description string,
	durationHours uint64,
) (*voting.ProposalInfo, error) {
	info := &voting.ProposalInfo{}
	payload := &api.NewProposalRequest{
		Title:         title,
		Description:   description,
		DurationHours: durationHours,
	}
	if err := c.signedCall(keys, payload, info, api.ProposalsEndpoint); err != nil {
		return nil, err
	}
	return info, nil
}

// Proposals returns every proposal.
func (c *HTTPclient) Proposals() ([]*voting.ProposalInfo, error) {
	resp := &api.ProposalsResponse{}
	if err := c.call(HTTPGET, nil, resp, api.ProposalsEndpoint); err != nil {
		return nil, err
	}
	return resp.Proposals, nil
}

// Proposal returns the proposal with the given id.
func (c *HTTPclient) Proposal(pid types.ProposalID) (*voting.ProposalInfo, error) {
	info := &voting.ProposalInfo{}
	if err := c.call(HTTPGET, nil, info, proposalPath(api.ProposalEndpoint, pid)); err != nil {
		return nil, err
	}
	return info, nil
}

// Salt asks for a salt for the voter behind keys.
func (c *HTTPclient) Salt(keys *ethereum.SignKeys, pid types.ProposalID) (types.HexBytes, error) {
	resp := &api.SaltResponse{}
	payload := &api.SaltRequest{ProposalID: pid}
	if err := c.signedCall(keys, payload, resp, proposalPath(api.ProposalSaltEndpoint, pid)); err != nil {
		return nil, err
	}
	return resp.Salt, nil
}

// Vote casts the vote of the voter behind keys. A nil weight counts as 1.
func (c *HTTPclient) Vote(keys *ethereum.SignKeys, pid types.ProposalID, choice types.VoteChoice,
	weight *types.BigInt, salt types.HexBytes,
) (*api.VoteResponse, error) {
	resp := &api.VoteResponse{}
	payload := &api.VoteRequest{
		ProposalID: pid,
		Choice:     choice,
		Weight:     weight,
		Salt:       salt,
	}
	if err := c.signedCall(keys, payload, resp, proposalPath(api.ProposalVotesEndpoint, pid)); err != nil {
		return nil, err
	}
	return resp, nil
}

// DidVote reports whether the address voted in the proposal.
func (c *HTTPclient) DidVote(pid types.ProposalID, address common.Address) (*api.VoterStatus, error) {
	status := &api.VoterStatus{}
	endpoint := api.EndpointWithParam(proposalPath(api.ProposalVoterEndpoint, pid),
		api.AddressURLParam, address.Hex())
	if err := c.call(HTTPGET, nil, status, endpoint); err != nil {
		return nil, err
	}
	return status, nil
}

// Root returns the current roots of the proposal.
func (c *HTTPclient) Root(pid types.ProposalID) (*api.RootResponse, error) {
	resp := &api.RootResponse{}
	if err := c.call(HTTPGET, nil, resp, proposalPath(api.ProposalRootEndpoint, pid)); err != nil {
		return nil, err
	}
	return resp, nil
}

// Stats returns the tally of the proposal. Whatever shape the response
// has, it is normalized into VotingStats.
func (c *HTTPclient) Stats(pid types.ProposalID) (types.VotingStats, error) {
	data, status, err := c.Request(HTTPGET, nil, nil, proposalPath(api.ProposalStatsEndpoint, pid))
	if err != nil {
		return types.VotingStats{}, err
	}
	if status != http.StatusOK {
		return types.VotingStats{}, &APIError{Status: status, Msg: string(data)}
	}
	return tally.Normalize(data), nil
}

// Proof returns the inclusion proof of the leaf at index.
func (c *HTTPclient) Proof(pid types.ProposalID, index uint64) (*merkle.Proof, error) {
	proof := &merkle.Proof{}
	endpoint := api.EndpointWithParam(proposalPath(api.ProposalProofEndpoint, pid),
		api.IndexURLParam, strconv.FormatUint(index, 10))
	if err := c.call(HTTPGET, nil, proof, endpoint); err != nil {
		return nil, err
	}
	return proof, nil
}

// Verify asks the server to check the proof against the proposal.
func (c *HTTPclient) Verify(pid types.ProposalID, proof *merkle.Proof) (bool, error) {
	resp := &api.VerifyResponse{}
	if err := c.call(HTTPPOST, proof, resp, proposalPath(api.ProposalVerifyEndpoint, pid)); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

// VoterVotes returns the proposals the address voted in.
func (c *HTTPclient) VoterVotes(address common.Address) ([]types.ProposalID, error) {
	resp := &api.VoterVotesResponse{}
	endpoint := api.EndpointWithParam(api.VoterVotesEndpoint, api.AddressURLParam, address.Hex())
	if err := c.call(HTTPGET, nil, resp, endpoint); err != nil {
		return nil, err
	}
	return resp.Proposals, nil
}
