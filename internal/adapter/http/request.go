package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/holiman/uint256"

	"mesa-vesting/internal/core/domain"
)

// codeBadRequest marks requests rejected before they reach the engine.
const codeBadRequest domain.Code = "BAD_REQUEST"

type errorResponse struct {
	Code     domain.Code       `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func badRequest(message string) *domain.Error {
	return domain.New(codeBadRequest, message)
}

// statusFor maps an error class to a transport status.
func statusFor(code domain.Code) int {
	if code == codeBadRequest {
		return http.StatusBadRequest
	}
	switch code.Class() {
	case domain.ClassValidation:
		return http.StatusBadRequest
	case domain.ClassAuthorization:
		return http.StatusForbidden
	case domain.ClassState, domain.ClassGuard:
		return http.StatusConflict
	case domain.ClassEconomic:
		return http.StatusUnprocessableEntity
	case domain.ClassNotFound:
		return http.StatusNotFound
	case domain.ClassExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as JSON. Errors without a domain code are logged
// and hidden behind a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) || statusFor(de.Code) == http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Code: domain.CodeUnknown, Message: "internal error"})
		return
	}
	h.writeJSON(w, statusFor(de.Code), errorResponse{Code: de.Code, Message: de.Error(), Metadata: de.Metadata})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// encoding should rarely fail; log and move on
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// decode reads a JSON body into dst, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid JSON: " + err.Error())
	}
	return nil
}

// caller reads the acting identity from CallerHeader.
func caller(r *http.Request) (common.Address, error) {
	v := r.Header.Get(CallerHeader)
	if v == "" {
		return common.Address{}, badRequest("missing " + CallerHeader + " header")
	}
	return parseAddress(CallerHeader, v)
}

func pathAddress(r *http.Request) (common.Address, error) {
	return parseAddress("address", chi.URLParam(r, "address"))
}

func parseAddress(field, v string) (common.Address, error) {
	if !common.IsHexAddress(v) {
		return common.Address{}, badRequest("invalid " + field + " " + strconv.Quote(v))
	}
	return common.HexToAddress(v), nil
}

// parseOptionalAmount treats an empty string as zero.
func parseOptionalAmount(v string) (uint256.Int, error) {
	if v == "" {
		return uint256.Int{}, nil
	}
	return domain.ParseAmount(v)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("invalid '" + name + "' parameter")
	}
	return n, nil
}
