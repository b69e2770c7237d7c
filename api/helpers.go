package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/proposal-ledger/crypto/ethereum"
	"github.com/vocdoni/proposal-ledger/log"
	"github.com/vocdoni/proposal-ledger/types"
)

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data any) {
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	n, err := w.Write(jdata)
	if err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
	log.Debugw("api response", "bytes", n, "data", strings.ReplaceAll(string(jdata), "\"", ""))
}

// httpWriteOK helper function allows to write an OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// signedPayload decodes a SignedRequest body into payload and returns the
// address that signed it. On failure it writes the error response and
// returns false.
func signedPayload(w http.ResponseWriter, r *http.Request, payload any) (common.Address, bool) {
	req := &SignedRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return common.Address{}, false
	}
	if len(req.Payload) == 0 {
		ErrMalformedBody.With("missing payload").Write(w)
		return common.Address{}, false
	}
	address, err := ethereum.AddrFromSignature(req.Payload, req.Signature)
	if err != nil {
		ErrInvalidSignature.Withf("could not extract address from signature: %v", err).Write(w)
		return common.Address{}, false
	}
	if err := json.Unmarshal(req.Payload, payload); err != nil {
		ErrMalformedBody.Withf("could not decode payload: %v", err).Write(w)
		return common.Address{}, false
	}
	return address, true
}

// proposalIDParam parses the proposal id of the URL.
func proposalIDParam(w http.ResponseWriter, r *http.Request) (types.ProposalID, bool) {
	pid, err := types.ParseProposalID(chi.URLParam(r, ProposalURLParam))
	if err != nil {
		ErrMalformedProposalID.WithErr(err).Write(w)
		return 0, false
	}
	return pid, true
}

// addressParam parses the hex address of the URL.
func addressParam(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	param := chi.URLParam(r, AddressURLParam)
	if !common.IsHexAddress(param) {
		ErrMalformedAddress.With(param).Write(w)
		return common.Address{}, false
	}
	return common.HexToAddress(param), true
}

// indexParam parses the leaf index of the URL.
func indexParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	index, err := strconv.ParseUint(chi.URLParam(r, IndexURLParam), 10, 64)
	if err != nil {
		ErrMalformedIndex.WithErr(err).Write(w)
		return 0, false
	}
	return index, true
}

// checkProposalID fails if the signed payload names another proposal than
// the URL, so a signature cannot be replayed against another proposal.
func checkProposalID(w http.ResponseWriter, url, signed types.ProposalID) bool {
	if url != signed {
		ErrPayloadMismatch.With(fmt.Sprintf("url proposal %s, signed proposal %s", url, signed)).Write(w)
		return false
	}
	return true
}
