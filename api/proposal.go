package api

import (
	"errors"
	"net/http"

	"github.com/vocdoni/proposal-ledger/voting"
)

// newProposal creates a proposal of the signer organization
// POST /proposals
func (a *API) newProposal(w http.ResponseWriter, r *http.Request) {
	req := &NewProposalRequest{}
	signer, ok := signedPayload(w, r, req)
	if !ok {
		return
	}
	p, err := a.voting.CreateProposal(signer, req.Title, req.Description, req.DurationHours)
	if err != nil {
		votingError(err).Write(w)
		return
	}
	info, err := a.voting.Proposal(p.ID)
	if err != nil {
		votingError(err).Write(w)
		return
	}
	httpWriteJSON(w, info)
}

// proposals lists every proposal
// GET /proposals
func (a *API) proposals(w http.ResponseWriter, r *http.Request) {
	list, err := a.voting.Proposals()
	if err != nil {
		votingError(err).Write(w)
		return
	}
	httpWriteJSON(w, &ProposalsResponse{Proposals: list})
}

// proposal returns the proposal info
// GET /proposals/{proposalId}
func (a *API) proposal(w http.ResponseWriter, r *http.Request) {
	pid, ok := proposalIDParam(w, r)
	if !ok {
		return
	}
	info, err := a.voting.Proposal(pid)
	if err != nil {
		if errors.Is(err, voting.ErrNotFound) {
			ErrProposalNotFound.WithErr(err).Write(w)
			return
		}
		votingError(err).Write(w)
		return
	}
	httpWriteJSON(w, info)
}

// root returns the current roots of the proposal
// GET /proposals/{proposalId}/root
func (a *API) root(w http.ResponseWriter, r *http.Request) {
	pid, ok := proposalIDParam(w, r)
	if !ok {
		return
	}
	root, err := a.voting.Root(pid)
	if err != nil {
		votingError(err).Write(w)
		return
	}
	size, err := a.voting.Size(pid)
	if err != nil {
		votingError(err).Write(w)
		return
	}
	votersRoot, err := a.voting.VotersRoot(pid)
	if err != nil {
		votingError(err).Write(w)
		return
	}
	httpWriteJSON(w, &RootResponse{
		ProposalID: pid,
		Root:       root,
		Size:       size,
		VotersRoot: votersRoot,
	})
}

// stats returns the tally of the proposal
// GET /proposals/{proposalId}/stats
func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	pid, ok := proposalIDParam(w, r)
	if !ok {
		return
	}
	stats, err := a.voting.Stats(pid)
	if err != nil {
		votingError(err).Write(w)
		return
	}
	httpWriteJSON(w, &stats)
}
