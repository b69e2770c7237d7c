package api

import (
	"encoding/json"
	"net/http"

	"github.com/vocdoni/proposal-ledger/log"
	"github.com/vocdoni/proposal-ledger/merkle"
	"github.com/vocdoni/proposal-ledger/types"
	"github.com/vocdoni/proposal-ledger/voting"
)

// newSalt issues a salt to the signer for the proposal
// POST /proposals/{proposalId}/salt
func (a *API) newSalt(w http.ResponseWriter, r *http.Request) {
	pid, ok := proposalIDParam(w, r)
	if !ok {
		return
	}
	req := &SaltRequest{}
	signer, ok := signedPayload(w, r, req)
	if !ok || !checkProposalID(w, pid, req.ProposalID) {
		return
	}
	salt, err := a.voting.IssueSalt(pid, signer.Bytes())
	if err != nil {
		votingError(err).Write(w)
		return
	}
	httpWriteJSON(w, &SaltResponse{ProposalID: pid, Salt: salt})
}

// newVote submits the vote of the signer
// POST /proposals/{proposalId}/votes
func (a *API) newVote(w http.ResponseWriter, r *http.Request) {
	pid, ok := proposalIDParam(w, r)
	if !ok {
		return
	}
	req := &VoteRequest{}
	signer, ok := signedPayload(w, r, req)
	if !ok || !checkProposalID(w, pid, req.ProposalID) {
		return
	}
	if req.Choice == types.ChoiceUnset {
		ErrMissingChoice.Write(w)
		return
	}
	receipt, err := a.voting.SubmitVote(r.Context(), &voting.Vote{
		ProposalID: pid,
		Binding:    signer.Bytes(),
		Choice:     req.Choice,
		Weight:     req.Weight,
		Salt:       req.Salt,
	})
	if err != nil {
		votingError(err).Write(w)
		return
	}
	if receipt == nil || receipt.Proof == nil {
		ErrGenericInternalServerError.With("vote accepted without proof").Write(w)
		return
	}
	log.Infow("new vote", "proposalId", pid.String(), "index", receipt.Proof.Index)
	httpWriteJSON(w, &VoteResponse{Accepted: receipt.Accepted, Proof: receipt.Proof})
}

// voterStatus reports whether the address voted in the proposal
// GET /proposals/{proposalId}/voters/{address}
func (a *API) voterStatus(w http.ResponseWriter, r *http.Request) {
	pid, ok := proposalIDParam(w, r)
	if !ok {
		return
	}
	address, ok := addressParam(w, r)
	if !ok {
		return
	}
	voted, err := a.voting.HasVoted(pid, address.Bytes())
	if err != nil {
		votingError(err).Write(w)
		return
	}
	status := &VoterStatus{ProposalID: pid, Address: address, Voted: voted}
	if voted {
		if status.Proof, err = a.voting.VoterProof(pid, address.Bytes()); err != nil {
			votingError(err).Write(w)
			return
		}
	}
	httpWriteJSON(w, status)
}

// proof returns the inclusion proof of a leaf against the current root
// GET /proposals/{proposalId}/proofs/{index}
func (a *API) proof(w http.ResponseWriter, r *http.Request) {
	pid, ok := proposalIDParam(w, r)
	if !ok {
		return
	}
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	proof, err := a.voting.Proof(pid, index)
	if err != nil {
		votingError(err).Write(w)
		return
	}
	httpWriteJSON(w, proof)
}

// verifyProof checks an inclusion proof against the proposal roots
// POST /proposals/{proposalId}/verify
func (a *API) verifyProof(w http.ResponseWriter, r *http.Request) {
	pid, ok := proposalIDParam(w, r)
	if !ok {
		return
	}
	proof := &merkle.Proof{}
	if err := json.NewDecoder(r.Body).Decode(proof); err != nil {
		ErrMalformedBody.Withf("could not decode proof: %v", err).Write(w)
		return
	}
	valid, err := a.voting.VerifyProof(pid, proof)
	if err != nil {
		votingError(err).Write(w)
		return
	}
	httpWriteJSON(w, &VerifyResponse{Valid: valid})
}

// voterVotes lists the proposals the address voted in
// GET /voters/{address}/votes
func (a *API) voterVotes(w http.ResponseWriter, r *http.Request) {
	address, ok := addressParam(w, r)
	if !ok {
		return
	}
	pids, err := a.voting.VoterProposals(address.Bytes())
	if err != nil {
		votingError(err).Write(w)
		return
	}
	httpWriteJSON(w, &VoterVotesResponse{Address: address, Proposals: pids})
}
