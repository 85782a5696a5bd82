package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-notify-api/internal/config"
	"github.com/go-notify-api/internal/domain"
	jwtinfra "github.com/go-notify-api/internal/infrastructure/jwt"
	"github.com/go-notify-api/internal/transport/http/middleware"
)

// --- mocks ---

type mockNotifSvc struct{ mock.Mock }

func (m *mockNotifSvc) List(ctx context.Context, userID string, q domain.ListNotificationsQuery) (*domain.NotificationList, error) {
	args := m.Called(ctx, userID, q)
	if l, _ := args.Get(0).(*domain.NotificationList); l != nil {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotifSvc) MarkRead(ctx context.Context, userID string, req domain.MarkReadRequest) (int, error) {
	args := m.Called(ctx, userID, req)
	return args.Int(0), args.Error(1)
}

func (m *mockNotifSvc) Delete(ctx context.Context, userID string, req domain.DeleteNotificationsRequest) (int, error) {
	args := m.Called(ctx, userID, req)
	return args.Int(0), args.Error(1)
}

type mockBadgeSvc struct{ mock.Mock }

func (m *mockBadgeSvc) State(ctx context.Context, userID string) domain.BadgeState {
	return m.Called(ctx, userID).Get(0).(domain.BadgeState)
}

// --- helpers ---

// newTestJWTProvider generates a fresh RSA key pair and returns a verify-only
// provider plus the private key for minting tokens in place of the account
// service.
func newTestJWTProvider(t *testing.T) (*jwtinfra.Provider, *rsa.PrivateKey) {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	pubPath := filepath.Join(t.TempDir(), "public.pem")
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{JWTPublicKeyPath: pubPath})
	require.NoError(t, err)
	return p, privKey
}

// bearerReq builds a request with a signed Bearer token for the given userID and role.
func bearerReq(t *testing.T, key *rsa.PrivateKey, method, target, userID, role string, body []byte) *http.Request {
	t.Helper()
	claims := &jwtinfra.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)

	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// serveAuthed wraps the handler with middleware.Auth before serving.
func serveAuthed(p *jwtinfra.Provider, h http.Handler, w http.ResponseWriter, r *http.Request) {
	middleware.Auth(p)(h).ServeHTTP(w, r)
}

// --- List tests ---

func TestListNotifications_NoClaims(t *testing.T) {
	h := NewNotificationHandler(&mockNotifSvc{}, &mockBadgeSvc{})
	r := httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r) // called directly, no claims in context
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListNotifications_QueryPassedThrough(t *testing.T) {
	p, key := newTestJWTProvider(t)
	svc := &mockNotifSvc{}
	svc.On("List", mock.Anything, "u1", domain.ListNotificationsQuery{
		Page: 2, Limit: 5, UnreadOnly: true, ProjectSource: domain.SourceOrders,
	}).Return(&domain.NotificationList{
		Notifications: []domain.Notification{{NotificationID: "n1", UserID: "u1", Title: "Order shipped"}},
		UnreadCount:   3,
		Total:         11,
		Page:          2,
		Limit:         5,
	}, nil)
	h := NewNotificationHandler(svc, &mockBadgeSvc{})

	r := bearerReq(t, key, http.MethodGet,
		"/v1/notifications?page=2&limit=5&unreadOnly=true&project_source=orders", "u1", domain.RoleSite, nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.List), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp domain.NotificationList
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 3, resp.UnreadCount)
	assert.Equal(t, 11, resp.Total)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "n1", resp.Notifications[0].NotificationID)
	svc.AssertExpectations(t)
}

func TestListNotifications_UnknownProjectSource(t *testing.T) {
	p, key := newTestJWTProvider(t)
	svc := &mockNotifSvc{}
	h := NewNotificationHandler(svc, &mockBadgeSvc{})

	r := bearerReq(t, key, http.MethodGet, "/v1/notifications?project_source=everything", "u1", domain.RoleSite, nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.List), rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestListNotifications_BadUnreadOnly(t *testing.T) {
	p, key := newTestJWTProvider(t)
	h := NewNotificationHandler(&mockNotifSvc{}, &mockBadgeSvc{})

	r := bearerReq(t, key, http.MethodGet, "/v1/notifications?unreadOnly=maybe", "u1", domain.RoleSite, nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.List), rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- MarkRead tests ---

func TestMarkRead_InvalidBody(t *testing.T) {
	p, key := newTestJWTProvider(t)
	h := NewNotificationHandler(&mockNotifSvc{}, &mockBadgeSvc{})

	r := bearerReq(t, key, http.MethodPatch, "/v1/notifications", "u1", domain.RoleSite, []byte("not-json"))
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.MarkRead), rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMarkRead_SelectorConflict(t *testing.T) {
	p, key := newTestJWTProvider(t)
	svc := &mockNotifSvc{}
	svc.On("MarkRead", mock.Anything, "u1", mock.Anything).Return(0, domain.ErrBadRequest)
	h := NewNotificationHandler(svc, &mockBadgeSvc{})

	body, _ := json.Marshal(domain.MarkReadRequest{NotificationIDs: []string{"n1"}, MarkAll: true})
	r := bearerReq(t, key, http.MethodPatch, "/v1/notifications", "u1", domain.RoleSite, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.MarkRead), rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMarkRead_ByIDs(t *testing.T) {
	p, key := newTestJWTProvider(t)
	svc := &mockNotifSvc{}
	svc.On("MarkRead", mock.Anything, "u1", domain.MarkReadRequest{
		NotificationIDs: []string{"n1", "n2"},
	}).Return(2, nil)
	h := NewNotificationHandler(svc, &mockBadgeSvc{})

	body, _ := json.Marshal(domain.MarkReadRequest{NotificationIDs: []string{"n1", "n2"}})
	r := bearerReq(t, key, http.MethodPatch, "/v1/notifications", "u1", domain.RoleSite, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.MarkRead), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp UpdatedEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Updated)
	svc.AssertExpectations(t)
}

func TestMarkRead_All(t *testing.T) {
	p, key := newTestJWTProvider(t)
	svc := &mockNotifSvc{}
	svc.On("MarkRead", mock.Anything, "u1", domain.MarkReadRequest{MarkAll: true}).Return(7, nil)
	h := NewNotificationHandler(svc, &mockBadgeSvc{})

	body, _ := json.Marshal(domain.MarkReadRequest{MarkAll: true})
	r := bearerReq(t, key, http.MethodPatch, "/v1/notifications", "u1", domain.RoleSite, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.MarkRead), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp UpdatedEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 7, resp.Updated)
}

// --- Delete tests ---

func TestDeleteNotifications_ByIDs(t *testing.T) {
	p, key := newTestJWTProvider(t)
	svc := &mockNotifSvc{}
	svc.On("Delete", mock.Anything, "u1", domain.DeleteNotificationsRequest{
		NotificationIDs: []string{"n1", "n2", "n3"},
	}).Return(3, nil)
	h := NewNotificationHandler(svc, &mockBadgeSvc{})

	body, _ := json.Marshal(domain.DeleteNotificationsRequest{NotificationIDs: []string{"n1", "n2", "n3"}})
	r := bearerReq(t, key, http.MethodDelete, "/v1/notifications", "u1", domain.RoleSite, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Delete), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp DeletedEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Deleted)
	svc.AssertExpectations(t)
}

func TestDeleteNotifications_StoreError(t *testing.T) {
	p, key := newTestJWTProvider(t)
	svc := &mockNotifSvc{}
	svc.On("Delete", mock.Anything, "u1", mock.Anything).Return(0, assert.AnError)
	h := NewNotificationHandler(svc, &mockBadgeSvc{})

	body, _ := json.Marshal(domain.DeleteNotificationsRequest{DeleteAll: true})
	r := bearerReq(t, key, http.MethodDelete, "/v1/notifications", "u1", domain.RoleSite, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Delete), rr, r)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// --- Badge tests ---

func TestBadge_UnreadWins(t *testing.T) {
	p, key := newTestJWTProvider(t)
	badges := &mockBadgeSvc{}
	badges.On("State", mock.Anything, "u1").Return(domain.BadgeState{UnreadCount: 3, PendingCount: 5})
	h := NewNotificationHandler(&mockNotifSvc{}, badges)

	r := bearerReq(t, key, http.MethodGet, "/v1/notifications/badge", "u1", domain.RoleSite, nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Badge), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp BadgeEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Count)
}

func TestBadge_FallsBackToPending(t *testing.T) {
	p, key := newTestJWTProvider(t)
	badges := &mockBadgeSvc{}
	badges.On("State", mock.Anything, "u1").Return(domain.BadgeState{PendingCount: 4})
	h := NewNotificationHandler(&mockNotifSvc{}, badges)

	r := bearerReq(t, key, http.MethodGet, "/v1/notifications/badge", "u1", domain.RoleSite, nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Badge), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp BadgeEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 4, resp.Count)
}
