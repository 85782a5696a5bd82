package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-notify-api/internal/application/badge"
	"github.com/go-notify-api/internal/application/notification"
	"github.com/go-notify-api/internal/domain"
	"github.com/go-notify-api/internal/pkg/validate"
	"github.com/go-notify-api/internal/transport/http/middleware"
)

// NotificationHandler handles the notification panel endpoints.
type NotificationHandler struct {
	svc    notification.Service
	badges badge.Service
}

func NewNotificationHandler(svc notification.Service, badges badge.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc, badges: badges}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	q, err := parseListQuery(r)
	if err != nil {
		httpError(w, err)
		return
	}
	list, err := h.svc.List(r.Context(), claims.UserID, q)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.svc.MarkRead(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UpdatedEnvelope{Updated: updated})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.DeleteNotificationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	deleted, err := h.svc.Delete(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeletedEnvelope{Deleted: deleted})
}

// Badge returns the count the frontend paints on the app icon.
func (h *NotificationHandler) Badge(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	st := h.badges.State(r.Context(), claims.UserID)
	writeJSON(w, http.StatusOK, BadgeEnvelope{Count: st.DisplayCount()})
}

// parseListQuery reads the list filters off the query string. Unparseable
// page/limit values fall back to the service defaults; a malformed unreadOnly
// or an unknown project_source is the caller's mistake and rejected.
func parseListQuery(r *http.Request) (domain.ListNotificationsQuery, error) {
	params := r.URL.Query()
	var q domain.ListNotificationsQuery
	q.Page, _ = strconv.Atoi(params.Get("page"))
	q.Limit, _ = strconv.Atoi(params.Get("limit"))
	if v := params.Get("unreadOnly"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return q, fmt.Errorf("unreadOnly must be a boolean: %w", domain.ErrBadRequest)
		}
		q.UnreadOnly = b
	}
	q.ProjectSource = params.Get("project_source")
	if err := validate.Struct(q); err != nil {
		return q, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	return q, nil
}
