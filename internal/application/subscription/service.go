package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-notify-api/internal/domain"
	"github.com/go-notify-api/internal/pkg/id"
	"github.com/go-notify-api/internal/pkg/validate"
)

type Service interface {
	Register(ctx context.Context, userID string, req domain.RegisterSubscriptionRequest) (*domain.PushSubscription, error)
	Unregister(ctx context.Context, endpoint string) error
	ListForUser(ctx context.Context, userID string) ([]domain.PushSubscription, error)
}

type subscriptionStore interface {
	Put(ctx context.Context, s *domain.PushSubscription) error
	GetByEndpoint(ctx context.Context, endpoint string) (*domain.PushSubscription, error)
	ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error)
	Delete(ctx context.Context, endpoint string) error
}

type service struct {
	repo subscriptionStore
	log  *slog.Logger
}

func NewService(repo subscriptionStore, log *slog.Logger) Service {
	return &service{repo: repo, log: log}
}

// Register upserts a subscription keyed by its endpoint. Re-registering the
// same browser keeps the subscription's identity and creation time and
// refreshes everything else. When the endpoint was last registered under a
// different account (shared kiosk browsers do this), ownership moves to the
// caller; the old owner stops receiving pushes on this device, which is the
// point.
func (s *service) Register(ctx context.Context, userID string, req domain.RegisterSubscriptionRequest) (*domain.PushSubscription, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}

	now := time.Now().UTC()
	sub := &domain.PushSubscription{
		SubscriptionID: id.New(),
		UserID:         userID,
		Endpoint:       req.Subscription.Endpoint,
		P256dh:         req.Subscription.Keys.P256dh,
		Auth:           req.Subscription.Keys.Auth,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.DeviceInfo != nil {
		sub.DeviceInfo = *req.DeviceInfo
	}

	existing, err := s.repo.GetByEndpoint(ctx, req.Subscription.Endpoint)
	switch {
	case err == nil:
		sub.SubscriptionID = existing.SubscriptionID
		sub.CreatedAt = existing.CreatedAt
		if existing.UserID != userID {
			s.log.Info("push endpoint reassigned",
				"subscription_id", sub.SubscriptionID,
				"from_user", existing.UserID,
				"to_user", userID)
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	if err := s.repo.Put(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Unregister drops the subscription for endpoint. Unknown endpoints are a
// no-op: the browser may have revoked the subscription before telling us.
func (s *service) Unregister(ctx context.Context, endpoint string) error {
	return s.repo.Delete(ctx, endpoint)
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]domain.PushSubscription, error) {
	return s.repo.ListByUser(ctx, userID)
}
