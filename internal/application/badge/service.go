package badge

import (
	"context"
	"log/slog"

	"github.com/go-notify-api/internal/domain"
)

type Service interface {
	State(ctx context.Context, userID string) domain.BadgeState
}

type unreadCounter interface {
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type pendingCounter interface {
	CountOpenForUser(ctx context.Context, userID string) (int, error)
}

type service struct {
	notifications unreadCounter
	approvals     pendingCounter
	log           *slog.Logger
}

func NewService(notifications unreadCounter, approvals pendingCounter, log *slog.Logger) Service {
	return &service{notifications: notifications, approvals: approvals, log: log}
}

// State gathers both badge inputs. A count that cannot be read becomes zero
// rather than an error; the badge is decoration and must never fail a page.
func (s *service) State(ctx context.Context, userID string) domain.BadgeState {
	var st domain.BadgeState

	unread, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		s.log.Warn("unread count unavailable", "user_id", userID, "err", err)
	} else {
		st.UnreadCount = unread
	}

	pending, err := s.approvals.CountOpenForUser(ctx, userID)
	if err != nil {
		s.log.Warn("pending count unavailable", "user_id", userID, "err", err)
	} else {
		st.PendingCount = pending
	}
	return st
}
