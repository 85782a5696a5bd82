package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-notify-api/internal/application/subscription"
	"github.com/go-notify-api/internal/domain"
	"github.com/go-notify-api/internal/transport/http/middleware"
)

// SubscriptionHandler handles Web Push device registration endpoints.
type SubscriptionHandler struct {
	svc subscription.Service
}

func NewSubscriptionHandler(svc subscription.Service) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

func (h *SubscriptionHandler) Register(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.RegisterSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.svc.Register(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// Unregister removes the subscription for the endpoint in the body. Unknown
// endpoints still answer 200: the browser already dropped its half.
func (h *SubscriptionHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ClaimsFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UnregisterSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint is required")
		return
	}
	if err := h.svc.Unregister(r.Context(), req.Endpoint); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "subscription removed"})
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	subs, err := h.svc.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	if subs == nil {
		subs = []domain.PushSubscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}
