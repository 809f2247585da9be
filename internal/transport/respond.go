package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fivestackbot/fivestack/internal/domain/roster"
)

// ErrorBody is the JSON error envelope returned to the gateway.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain rejections onto stable kinds and HTTP statuses.
// Each kind keeps its own short message so the gateway can show a single,
// unambiguous reason.
func writeError(w http.ResponseWriter, err error) {
	kind, status := classify(err)
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{
		Kind:    kind,
		Message: err.Error(),
	}})
}

func classify(err error) (string, int) {
	switch {
	case errors.Is(err, roster.ErrNoActiveSession):
		return "no_active_session", http.StatusNotFound
	case errors.Is(err, roster.ErrAlreadyActive):
		return "already_active", http.StatusConflict
	case errors.Is(err, roster.ErrAlreadyJoined):
		return "already_joined", http.StatusConflict
	case errors.Is(err, roster.ErrNotJoined):
		return "not_joined", http.StatusConflict
	case errors.Is(err, roster.ErrFull):
		return "full", http.StatusConflict
	case errors.Is(err, roster.ErrAlreadyClosed):
		return "already_closed", http.StatusConflict
	case errors.Is(err, roster.ErrClosed):
		return "closed", http.StatusConflict
	case errors.Is(err, roster.ErrNotOwner):
		return "not_owner", http.StatusForbidden
	default:
		return "internal", http.StatusInternalServerError
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorBody{Error: ErrorDetail{
		Kind:    "invalid_request",
		Message: message,
	}})
}
