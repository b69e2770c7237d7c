package api

import "strings"

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// MetricsEndpoint exposes the service metrics in Prometheus format
	MetricsEndpoint = "/metrics"

	// OrganizationsEndpoint is the endpoint for registering the signer as an
	// organization
	OrganizationsEndpoint = "/organizations"

	// ProposalsEndpoint is the endpoint for creating and listing proposals
	ProposalsEndpoint = "/proposals"
	// ProposalEndpoint is the endpoint to get the proposal info
	ProposalURLParam = "proposalId"
	ProposalEndpoint = "/proposals/{" + ProposalURLParam + "}"
	// ProposalSaltEndpoint issues a salt to the signer for the proposal
	ProposalSaltEndpoint = ProposalEndpoint + "/salt"
	// ProposalVotesEndpoint is the endpoint for submitting a vote
	ProposalVotesEndpoint = ProposalEndpoint + "/votes"
	// ProposalVoterEndpoint reports whether an address voted in the proposal
	AddressURLParam       = "address"
	ProposalVoterEndpoint = ProposalEndpoint + "/voters/{" + AddressURLParam + "}"
	// ProposalRootEndpoint returns the current commitment root
	ProposalRootEndpoint = ProposalEndpoint + "/root"
	// ProposalStatsEndpoint returns the tally of the proposal
	ProposalStatsEndpoint = ProposalEndpoint + "/stats"
	// ProposalProofEndpoint returns the inclusion proof of a leaf
	IndexURLParam         = "index"
	ProposalProofEndpoint = ProposalEndpoint + "/proofs/{" + IndexURLParam + "}"
	// ProposalVerifyEndpoint checks an inclusion proof against the proposal
	ProposalVerifyEndpoint = ProposalEndpoint + "/verify"

	// VoterVotesEndpoint lists the proposals an address voted in
	VoterVotesEndpoint = "/voters/{" + AddressURLParam + "}/votes"
)

// EndpointWithParam fills the URL parameter of the endpoint with value.
func EndpointWithParam(endpoint, param, value string) string {
	return strings.ReplaceAll(endpoint, "{"+param+"}", value)
}
