package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-notify-api/internal/application/dispatch"
	"github.com/go-notify-api/internal/domain"
	"github.com/go-notify-api/internal/pkg/validate"
	"github.com/go-notify-api/internal/transport/http/middleware"
)

// EventHandler receives status-change events from the orders and projects
// flows and hands them to the dispatcher.
type EventHandler struct {
	svc dispatch.Service
}

func NewEventHandler(svc dispatch.Service) *EventHandler {
	return &EventHandler{svc: svc}
}

// Dispatch answers 202: the notification records exist when it returns, but
// push and SMS delivery continue in the background.
func (h *EventHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ClaimsFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var ev domain.StatusEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recipients, err := h.svc.Dispatch(r.Context(), ev)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, DispatchEnvelope{Recipients: recipients})
}
