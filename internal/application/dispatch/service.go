package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-notify-api/internal/domain"
	webpushinfra "github.com/go-notify-api/internal/infrastructure/webpush"
	"github.com/go-notify-api/internal/pkg/id"
	"github.com/go-notify-api/internal/push"
	"github.com/go-notify-api/internal/targeting"
)

// smsLimit keeps escalation messages inside a single SMS segment.
const smsLimit = 160

type Service interface {
	// Dispatch fans one status event out to notification records and
	// best-effort deliveries. It returns the number of records created.
	Dispatch(ctx context.Context, ev domain.StatusEvent) (int, error)
}

type resolver interface {
	Resolve(ev targeting.Event) (targeting.Resolution, bool)
}

type userDirectory interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	ListActiveByRole(ctx context.Context, role string) ([]domain.User, error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type subscriptionStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error)
	Delete(ctx context.Context, endpoint string) error
}

type pushSender interface {
	Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	rules         resolver
	users         userDirectory
	notifications notificationStore
	subscriptions subscriptionStore
	push          pushSender
	sms           smsSender
	smsTypes      map[string]struct{}
	log           *slog.Logger
}

type ServiceDeps struct {
	Rules         resolver
	Users         userDirectory
	Notifications notificationStore
	Subscriptions subscriptionStore
	Push          pushSender
	SMS           smsSender // nil disables SMS escalation
	SMSTypes      []string  // notification types escalated over SMS
	Log           *slog.Logger
}

func NewService(deps ServiceDeps) Service {
	smsTypes := make(map[string]struct{}, len(deps.SMSTypes))
	for _, t := range deps.SMSTypes {
		smsTypes[t] = struct{}{}
	}
	return &service{
		rules:         deps.Rules,
		users:         deps.Users,
		notifications: deps.Notifications,
		subscriptions: deps.Subscriptions,
		push:          deps.Push,
		sms:           deps.SMS,
		smsTypes:      smsTypes,
		log:           deps.Log,
	}
}

// Dispatch resolves the event's audience, writes one record per recipient,
// then attempts delivery to every registered device.
//
// The two phases fail differently on purpose. Record writes are the product:
// a failure aborts the remaining writes and propagates so the emitter can
// retry the event. Deliveries are a courtesy: every failure is logged and
// swallowed, and one dead device never blocks another. An unmapped status
// resolves to nobody and is a successful no-op.
func (s *service) Dispatch(ctx context.Context, ev domain.StatusEvent) (int, error) {
	res, ok := s.rules.Resolve(targeting.Event{
		Domain:      ev.Domain,
		Status:      ev.Status,
		EntityID:    ev.EntityID,
		EntityName:  ev.EntityName,
		OldStatus:   ev.OldStatus,
		ActorUserID: ev.ActorUserID,
		ActorRole:   ev.ActorRole,
	})
	if !ok {
		s.log.Debug("no targeting rule", "domain", ev.Domain, "status", ev.Status)
		return 0, nil
	}

	recipients, err := s.resolveRecipients(ctx, res)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		s.log.Debug("event resolved to no recipients", "domain", ev.Domain, "status", ev.Status)
		return 0, nil
	}

	created := 0
	var proto *domain.Notification
	for _, u := range recipients {
		n, err := s.buildNotification(u.UserID, res, ev)
		if err != nil {
			return created, err
		}
		if err := s.notifications.Put(ctx, n); err != nil {
			return created, fmt.Errorf("create notification for user %s: %w", u.UserID, err)
		}
		created++
		proto = n
	}

	// Every record carries the same message; any of them can stand in for
	// the push payload.
	s.deliver(ctx, recipients, proto)
	return created, nil
}

// resolveRecipients expands the resolution's roles through the user
// directory and unions in the explicit users, deduplicating so nobody gets
// two records for one event. Directory failures propagate: without the
// audience there is nothing correct to write.
func (s *service) resolveRecipients(ctx context.Context, res targeting.Resolution) ([]domain.User, error) {
	seen := make(map[string]struct{})
	var recipients []domain.User

	for _, role := range res.Roles {
		users, err := s.users.ListActiveByRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("resolve role %s: %w", role, err)
		}
		for _, u := range users {
			if _, dup := seen[u.UserID]; dup {
				continue
			}
			seen[u.UserID] = struct{}{}
			recipients = append(recipients, u)
		}
	}

	for _, uid := range res.ExplicitUserIDs {
		if _, dup := seen[uid]; dup {
			continue
		}
		u, err := s.users.Get(ctx, uid)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.log.Warn("explicit recipient not in directory", "user_id", uid)
				continue
			}
			return nil, fmt.Errorf("resolve user %s: %w", uid, err)
		}
		if u.Enable != 1 {
			continue
		}
		seen[uid] = struct{}{}
		recipients = append(recipients, *u)
	}
	return recipients, nil
}

func (s *service) buildNotification(userID string, res targeting.Resolution, ev domain.StatusEvent) (*domain.Notification, error) {
	entityID := ev.EntityID
	data := &domain.NotificationData{Kind: domain.DataKindForType(res.Type)}
	if data.Kind == domain.DataKindSystem {
		// Rules occasionally route a status through a system-typed notice.
		data.System = &domain.SystemNotice{
			Reason: ev.Status,
			URL:    push.DefaultRoute(res.Type, ev.EntityID),
		}
	} else {
		data.Status = &domain.StatusChange{
			EntityID:   ev.EntityID,
			EntityName: ev.EntityName,
			OldStatus:  ev.OldStatus,
			NewStatus:  ev.Status,
			URL:        push.DefaultRoute(res.Type, ev.EntityID),
		}
	}
	n := &domain.Notification{
		NotificationID:  id.New(),
		UserID:          userID,
		RelatedEntityID: &entityID,
		Title:           res.Title,
		Body:            res.Body,
		Type:            res.Type,
		Data:            data,
		ProjectSource:   sourceFor(ev.Domain),
		// Whole seconds so the created_at GSI sort key stays
		// lexicographically ordered; the ULID breaks ties.
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := n.Data.ValidateFor(n.Type); err != nil {
		return nil, err
	}
	return n, nil
}

// deliver pushes the payload to every device of every recipient, plus SMS
// for escalated types. Sends run concurrently and are awaited, on a context
// detached from the caller: an emitter that gives up mid-dispatch must not
// cancel deliveries already owed.
func (s *service) deliver(ctx context.Context, recipients []domain.User, proto *domain.Notification) {
	payload, err := json.Marshal(push.ForNotification(proto))
	if err != nil {
		s.log.Warn("push payload marshal failed", "type", proto.Type, "err", err)
		payload = nil
	}

	sendCtx := context.WithoutCancel(ctx)
	_, escalate := s.smsTypes[proto.Type]

	var wg sync.WaitGroup
	for _, u := range recipients {
		if payload != nil {
			subs, err := s.subscriptions.ListByUser(sendCtx, u.UserID)
			if err != nil {
				s.log.Warn("subscription lookup failed", "user_id", u.UserID, "err", err)
				subs = nil
			}
			for _, sub := range subs {
				wg.Add(1)
				go func(sub domain.PushSubscription) {
					defer wg.Done()
					s.sendPush(sendCtx, &sub, payload)
				}(sub)
			}
		}

		if escalate && s.sms != nil && u.Phone != nil && *u.Phone != "" {
			wg.Add(1)
			go func(userID, phone string) {
				defer wg.Done()
				msg := push.Truncate(proto.Title+": "+proto.Body, smsLimit)
				if err := s.sms.SendSMS(sendCtx, phone, msg); err != nil {
					s.log.Warn("sms escalation failed", "user_id", userID, "err", err)
				}
			}(u.UserID, *u.Phone)
		}
	}
	wg.Wait()
}

func (s *service) sendPush(ctx context.Context, sub *domain.PushSubscription, payload []byte) {
	err := s.push.Send(ctx, sub, payload)
	if err == nil {
		return
	}
	if errors.Is(err, webpushinfra.ErrSubscriptionGone) {
		s.log.Info("pruning retired subscription",
			"subscription_id", sub.SubscriptionID, "user_id", sub.UserID)
		if derr := s.subscriptions.Delete(ctx, sub.Endpoint); derr != nil {
			s.log.Warn("subscription prune failed",
				"subscription_id", sub.SubscriptionID, "err", derr)
		}
		return
	}
	s.log.Warn("push send failed",
		"subscription_id", sub.SubscriptionID, "user_id", sub.UserID, "err", err)
}

func sourceFor(eventDomain string) string {
	if eventDomain == targeting.DomainProject {
		return domain.SourceProjects
	}
	return domain.SourceOrders
}
