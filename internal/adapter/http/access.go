package httpadapter

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
)

func (h *Handler) handleIsBlacklisted(w http.ResponseWriter, r *http.Request) {
	identity, err := pathAddress(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok, err := h.engine.IsBlacklisted(r.Context(), identity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, blacklistResponse{Address: identity, Blacklisted: ok})
}

func (h *Handler) handleSetBlacklist(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	identity, err := pathAddress(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req blacklistRequest
	if err = decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.engine.SetBlacklist(r.Context(), who, identity, req.Blacklisted); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, blacklistResponse{Address: identity, Blacklisted: req.Blacklisted})
}

func (h *Handler) handleAuthorizedWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.engine.AuthorizedWallets(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if wallets == nil {
		wallets = []common.Address{}
	}
	h.writeJSON(w, http.StatusOK, authorizedResponse{Wallets: wallets})
}

func (h *Handler) handleSetAuthorized(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	wallet, err := pathAddress(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req authorizedRequest
	if err = decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.engine.SetAuthorized(r.Context(), who, wallet, req.Authorized); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.engine.Pause(r.Context(), who); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.engine.Unpause(r.Context(), who); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTransferOwnership nominates a pending owner; the nominee completes
// the handover through handleAcceptOwnership.
func (h *Handler) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req transferOwnershipRequest
	if err = decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.engine.TransferOwnership(r.Context(), who, req.NewOwner); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleAcceptOwnership(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.engine.AcceptOwnership(r.Context(), who); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
