package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-notify-api/internal/domain"
	"github.com/go-notify-api/internal/targeting"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UpdatedEnvelope reports how many notifications a PATCH touched.
type UpdatedEnvelope struct {
	Updated int `json:"updated"`
}

// DeletedEnvelope reports how many notifications a DELETE removed.
type DeletedEnvelope struct {
	Deleted int `json:"deleted"`
}

// BadgeEnvelope carries the app-icon badge count.
type BadgeEnvelope struct {
	Count int `json:"count"`
}

// DispatchEnvelope reports how many recipients an event fanned out to.
type DispatchEnvelope struct {
	Recipients int `json:"recipients"`
}

// RuleSetEnvelope wraps the active targeting rules for the admin endpoint.
type RuleSetEnvelope struct {
	Version string           `json:"version"`
	Rules   []targeting.Rule `json:"rules"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors to status codes. Anything
// unrecognized is an opaque 500 so storage detail stays out of responses.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
