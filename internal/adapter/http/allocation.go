package httpadapter

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
)

// handleAddAllocations registers a batch of entitlements. The batch is
// applied atomically; one bad entry rejects all of them.
func (h *Handler) handleAddAllocations(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req addAllocationsRequest
	if err = decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	entries, err := req.entries()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.engine.AddAllocations(r.Context(), who, entries); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveAllocation(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	recipient, err := pathAddress(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.engine.RemoveAllocation(r.Context(), who, recipient); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReplaceIdentity(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	old, err := pathAddress(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req replaceIdentityRequest
	if err = decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.engine.ReplaceIdentity(r.Context(), who, old, req.Replacement); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePosition reports allocation, claims and what is claimable now.
func (h *Handler) handlePosition(w http.ResponseWriter, r *http.Request) {
	recipient, err := pathAddress(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	pos, err := h.engine.Position(r.Context(), recipient)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toPositionResponse(pos))
}

// handleInvestors pages through the investor index. limit defaults to 100
// and is capped by the engine.
func (h *Handler) handleInvestors(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.engine.Investors(r.Context(), offset, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := investorsResponse{Investors: page.Investors, Total: page.Total, Offset: max(offset, 0)}
	if resp.Investors == nil {
		resp.Investors = []common.Address{}
	}
	h.writeJSON(w, http.StatusOK, resp)
}
