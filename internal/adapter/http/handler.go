package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mesa-vesting/internal/core/port"
)

// CallerHeader carries the identity of the acting account. Authentication
// happens in the gateway in front of the service.
const CallerHeader = "X-Caller-Address"

// maxBodyBytes fits a full allocation batch.
const maxBodyBytes = 4 << 20

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
// It holds the engine to execute business logic and a logger for structured
// logging. Routes are registered on a chi.Router for convenient method
// handling.
type Handler struct {
	engine port.Engine
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(engine port.Engine, logger *slog.Logger) *Handler {
	h := &Handler{engine: engine, logger: logger.With(slog.String("layer", "http"))}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.handleStatus)

		r.Get("/campaign", h.handleGetCampaign)
		r.Post("/campaign", h.handleCreateCampaign)
		r.Post("/campaign/close", h.handleCloseCampaign)

		r.Post("/allocations", h.handleAddAllocations)
		r.Get("/allocations/{address}", h.handlePosition)
		r.Delete("/allocations/{address}", h.handleRemoveAllocation)
		r.Post("/allocations/{address}/replace", h.handleReplaceIdentity)

		r.Post("/claims", h.handleClaim)
		r.Post("/claims/batch", h.handleClaimBatch)

		r.Get("/investors", h.handleInvestors)

		r.Get("/blacklist/{address}", h.handleIsBlacklisted)
		r.Put("/blacklist/{address}", h.handleSetBlacklist)
		r.Get("/authorized", h.handleAuthorizedWallets)
		r.Put("/authorized/{address}", h.handleSetAuthorized)

		r.Post("/pause", h.handlePause)
		r.Post("/unpause", h.handleUnpause)
		r.Post("/ownership/transfer", h.handleTransferOwnership)
		r.Post("/ownership/accept", h.handleAcceptOwnership)
		r.Post("/sweep", h.handleSweep)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
