package planapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spacegps/transfer-planner/core"
	"github.com/spacegps/transfer-planner/internal/logging"
)

// ErrNotFound is a package-level sentinel used when an entity cannot be
// located in the store.
var ErrNotFound = errors.New("not found")

// ErrUnverifiablePlan marks plans whose burns span more than one two-body
// frame; numeric verification only covers single-primary transfers.
var ErrUnverifiablePlan = errors.New("plan cannot be verified numerically")

// StatusForError maps planning errors onto HTTP status codes.
func StatusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound),
		errors.Is(err, core.ErrUnknownBody):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidPlanRequest),
		errors.Is(err, ErrInvalidVerifyRequest),
		errors.Is(err, ErrUnverifiablePlan),
		errors.Is(err, core.ErrNoSharedPrimary):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	writeJSON(w, StatusForError(err), errorBody{
		Error:     err.Error(),
		RequestID: logging.RequestIDFromContext(ctx),
	})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
