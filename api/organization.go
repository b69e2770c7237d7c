package api

import (
	"net/http"

	"github.com/vocdoni/proposal-ledger/log"
)

// registerOrganization registers the signer as an organization
// POST /organizations
func (a *API) registerOrganization(w http.ResponseWriter, r *http.Request) {
	req := &OrganizationRequest{}
	signer, ok := signedPayload(w, r, req)
	if !ok {
		return
	}
	if req.Address != signer {
		ErrPayloadMismatch.Withf("address %s is not the signer %s", req.Address.Hex(), signer.Hex()).Write(w)
		return
	}
	org, err := a.voting.RegisterOrganization(signer)
	if err != nil {
		votingError(err).Write(w)
		return
	}
	log.Infow("new organization", "address", org.Address.Hex())
	httpWriteJSON(w, org)
}
