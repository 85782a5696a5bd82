package webpush

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/go-notify-api/internal/config"
	"github.com/go-notify-api/internal/domain"
)

// ErrSubscriptionGone marks an endpoint the push service has retired. The
// dispatcher prunes the stored subscription when it sees this.
var ErrSubscriptionGone = errors.New("push subscription gone")

// Sender encrypts and delivers a payload to one browser push endpoint.
type Sender interface {
	Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error
}

type sender struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        int
	client     *http.Client
}

// NewSender builds a VAPID-authenticated web push sender. The subscriber
// address is the contact the push services may use about misbehaving senders.
func NewSender(cfg *config.Config) Sender {
	return &sender{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subscriber: cfg.VAPIDSubscriber,
		ttl:        int(cfg.PushTTL.Seconds()),
		client:     &http.Client{Timeout: cfg.PushTimeout},
	}
}

func (s *sender) Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.subscriber,
		TTL:             s.ttl,
		Urgency:         webpush.UrgencyNormal,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("endpoint returned %d: %w", resp.StatusCode, ErrSubscriptionGone)
	case resp.StatusCode >= 300:
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}
