package httpadapter

import "net/http"

// handleGetCampaign returns the campaign or 404 when none was created.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.engine.Campaign(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResponse(c))
}

// handleCreateCampaign opens the campaign. The engine checks the schedule
// and the holder's funding; this handler only converts the payload.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req createCampaignRequest
	if err = decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	params, err := req.params()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.engine.CreateCampaign(r.Context(), who, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toCampaignResponse(c))
}

func (h *Handler) handleCloseCampaign(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.engine.CloseCampaign(r.Context(), who)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, closeResponse{
		Campaign: toCampaignResponse(res.Campaign),
		Returned: res.Returned.Dec(),
	})
}

func (h *Handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req sweepRequest
	if err = decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	swept, err := h.engine.Sweep(r.Context(), who, req.Asset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sweepResponse{Asset: req.Asset, Amount: swept.Dec()})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.Status(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toStatusResponse(s))
}
