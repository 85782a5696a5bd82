package subscription

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-notify-api/internal/domain"
)

// --- mocks ---

type mockStore struct{ mock.Mock }

func (m *mockStore) Put(ctx context.Context, s *domain.PushSubscription) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockStore) GetByEndpoint(ctx context.Context, endpoint string) (*domain.PushSubscription, error) {
	args := m.Called(ctx, endpoint)
	if s, _ := args.Get(0).(*domain.PushSubscription); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error) {
	args := m.Called(ctx, userID)
	if subs, _ := args.Get(0).([]domain.PushSubscription); subs != nil {
		return subs, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) Delete(ctx context.Context, endpoint string) error {
	return m.Called(ctx, endpoint).Error(0)
}

// --- helpers ---

const endpoint = "https://push.example.com/send/abc123"

func newTestService(store *mockStore) Service {
	return NewService(store, slog.New(slog.DiscardHandler))
}

func registerReq() domain.RegisterSubscriptionRequest {
	return domain.RegisterSubscriptionRequest{
		Subscription: domain.WebPushSubscription{
			Endpoint: endpoint,
			Keys:     domain.SubscriptionKeys{P256dh: "p256dh-key", Auth: "auth-secret"},
		},
		DeviceInfo: &domain.DeviceInfo{UserAgent: "Mozilla/5.0", Platform: "Linux"},
	}
}

// --- Register ---

func TestRegister_NewEndpoint(t *testing.T) {
	store := &mockStore{}
	store.On("GetByEndpoint", mock.Anything, endpoint).Return(nil, domain.ErrNotFound)
	store.On("Put", mock.Anything, mock.MatchedBy(func(s *domain.PushSubscription) bool {
		return s.UserID == "user-1" && s.Endpoint == endpoint && s.SubscriptionID != ""
	})).Return(nil)

	sub, err := newTestService(store).Register(context.Background(), "user-1", registerReq())
	require.NoError(t, err)
	assert.Equal(t, "p256dh-key", sub.P256dh)
	assert.Equal(t, "auth-secret", sub.Auth)
	assert.Equal(t, "Linux", sub.DeviceInfo.Platform)
	assert.False(t, sub.CreatedAt.IsZero())
	store.AssertExpectations(t)
}

func TestRegister_ExistingEndpointKeepsIdentity(t *testing.T) {
	created := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	store := &mockStore{}
	store.On("GetByEndpoint", mock.Anything, endpoint).Return(&domain.PushSubscription{
		SubscriptionID: "sub-original",
		UserID:         "user-1",
		Endpoint:       endpoint,
		CreatedAt:      created,
	}, nil)
	store.On("Put", mock.Anything, mock.Anything).Return(nil)

	sub, err := newTestService(store).Register(context.Background(), "user-1", registerReq())
	require.NoError(t, err)
	assert.Equal(t, "sub-original", sub.SubscriptionID)
	assert.Equal(t, created, sub.CreatedAt)
	assert.True(t, sub.UpdatedAt.After(created))
}

func TestRegister_ReassignsOwnership(t *testing.T) {
	store := &mockStore{}
	store.On("GetByEndpoint", mock.Anything, endpoint).Return(&domain.PushSubscription{
		SubscriptionID: "sub-original",
		UserID:         "user-other",
		Endpoint:       endpoint,
	}, nil)
	store.On("Put", mock.Anything, mock.MatchedBy(func(s *domain.PushSubscription) bool {
		return s.UserID == "user-1" && s.SubscriptionID == "sub-original"
	})).Return(nil)

	sub, err := newTestService(store).Register(context.Background(), "user-1", registerReq())
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub.UserID)
	store.AssertExpectations(t)
}

func TestRegister_RejectsMissingKeys(t *testing.T) {
	store := &mockStore{}
	req := registerReq()
	req.Subscription.Keys = domain.SubscriptionKeys{}

	_, err := newTestService(store).Register(context.Background(), "user-1", req)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_RejectsBadEndpoint(t *testing.T) {
	store := &mockStore{}
	req := registerReq()
	req.Subscription.Endpoint = "not-a-url"

	_, err := newTestService(store).Register(context.Background(), "user-1", req)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestRegister_LookupFailure(t *testing.T) {
	store := &mockStore{}
	store.On("GetByEndpoint", mock.Anything, endpoint).Return(nil, errors.New("dynamo down"))

	_, err := newTestService(store).Register(context.Background(), "user-1", registerReq())
	assert.Error(t, err)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

// --- Unregister ---

func TestUnregister(t *testing.T) {
	store := &mockStore{}
	store.On("Delete", mock.Anything, endpoint).Return(nil)

	err := newTestService(store).Unregister(context.Background(), endpoint)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

// --- ListForUser ---

func TestListForUser(t *testing.T) {
	store := &mockStore{}
	store.On("ListByUser", mock.Anything, "user-1").Return([]domain.PushSubscription{
		{SubscriptionID: "s1"}, {SubscriptionID: "s2"},
	}, nil)

	subs, err := newTestService(store).ListForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}
