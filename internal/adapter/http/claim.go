package httpadapter

import "net/http"

// handleClaim settles a claim for one recipient. The caller must be the
// recipient or the owner.
func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req claimRequest
	if err = decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	amount, err := parseOptionalAmount(req.Amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.engine.Claim(r.Context(), who, req.Recipient, amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSettlementResponse(s))
}

// handleClaimBatch settles for many recipients in one unit of work.
// Recipients with nothing claimable are reported as skipped rather than
// failing the batch.
func (h *Handler) handleClaimBatch(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req batchClaimRequest
	if err = decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	batch, err := req.toPort()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.engine.ClaimBatch(r.Context(), who, batch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toBatchResponse(res))
}
