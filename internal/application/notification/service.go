package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-notify-api/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service interface {
	List(ctx context.Context, userID string, q domain.ListNotificationsQuery) (*domain.NotificationList, error)
	MarkRead(ctx context.Context, userID string, req domain.MarkReadRequest) (int, error)
	Delete(ctx context.Context, userID string, req domain.DeleteNotificationsRequest) (int, error)
}

type notificationStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int, error)
	MarkReadAll(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID string, ids []string) (int, error)
	DeleteAll(ctx context.Context, userID string) (int, error)
}

type service struct {
	repo notificationStore
	log  *slog.Logger
}

func NewService(repo notificationStore, log *slog.Logger) Service {
	return &service{repo: repo, log: log}
}

// List returns one page of the caller's notifications, newest first.
//
// A failed backing fetch degrades to an empty page instead of an error: the
// notification panel must never take the rest of the UI down with it. The
// failure is logged, since the empty page also masks a genuine outage from
// the caller.
func (s *service) List(ctx context.Context, userID string, q domain.ListNotificationsQuery) (*domain.NotificationList, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.log.Warn("notification list degraded to empty", "user_id", userID, "err", err)
		return &domain.NotificationList{
			Notifications: []domain.Notification{},
			Page:          page,
			Limit:         limit,
		}, nil
	}

	scoped := all
	if q.ProjectSource != "" {
		scoped = make([]domain.Notification, 0, len(all))
		for _, n := range all {
			if n.ProjectSource == q.ProjectSource {
				scoped = append(scoped, n)
			}
		}
	}

	unread := 0
	for _, n := range scoped {
		if !n.IsRead {
			unread++
		}
	}

	visible := scoped
	if q.UnreadOnly {
		visible = make([]domain.Notification, 0, unread)
		for _, n := range scoped {
			if !n.IsRead {
				visible = append(visible, n)
			}
		}
	}

	return &domain.NotificationList{
		Notifications: pageSlice(visible, page, limit),
		UnreadCount:   unread,
		Total:         len(visible),
		Page:          page,
		Limit:         limit,
	}, nil
}

// MarkRead flips is_read for the selected notifications and returns how many
// rows changed. Ids the caller does not own are skipped, not reported.
func (s *service) MarkRead(ctx context.Context, userID string, req domain.MarkReadRequest) (int, error) {
	if err := exactlyOne(len(req.NotificationIDs) > 0, req.MarkAll, "notificationIds", "markAll"); err != nil {
		return 0, err
	}
	if req.MarkAll {
		return s.repo.MarkReadAll(ctx, userID)
	}
	return s.repo.MarkRead(ctx, userID, req.NotificationIDs)
}

// Delete permanently removes the selected notifications and returns how many
// rows were removed. Same ownership scoping as MarkRead; there is no undelete.
func (s *service) Delete(ctx context.Context, userID string, req domain.DeleteNotificationsRequest) (int, error) {
	if err := exactlyOne(len(req.NotificationIDs) > 0, req.DeleteAll, "notificationIds", "deleteAll"); err != nil {
		return 0, err
	}
	if req.DeleteAll {
		return s.repo.DeleteAll(ctx, userID)
	}
	return s.repo.Delete(ctx, userID, req.NotificationIDs)
}

func exactlyOne(hasIDs, all bool, idsField, allField string) error {
	switch {
	case hasIDs && all:
		return fmt.Errorf("%s and %s are mutually exclusive: %w", idsField, allField, domain.ErrBadRequest)
	case !hasIDs && !all:
		return fmt.Errorf("either %s or %s is required: %w", idsField, allField, domain.ErrBadRequest)
	}
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	return page, limit
}

func pageSlice(items []domain.Notification, page, limit int) []domain.Notification {
	start := (page - 1) * limit
	if start >= len(items) {
		return []domain.Notification{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
