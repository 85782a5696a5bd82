package http

import (
	"log/slog"

	"github.com/go-notify-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-notify-api/internal/infrastructure/jwt"
	"github.com/go-notify-api/internal/infrastructure/sns"
	webpushinfra "github.com/go-notify-api/internal/infrastructure/webpush"
	"github.com/go-notify-api/internal/targeting"
)

// Deps holds all infrastructure dependencies for the router. The repos are
// the concrete dynamo types; each application service narrows them to the
// interface it consumes.
type Deps struct {
	NotificationRepo *dynamo.NotificationRepo
	SubscriptionRepo *dynamo.SubscriptionRepo
	UserRepo         *dynamo.UserRepo
	ApprovalRepo     *dynamo.ApprovalRepo

	// Rules is the targeting rule set loaded at startup.
	Rules *targeting.RuleSet

	PushSender webpushinfra.Sender
	SMSSender  sns.SMSSender // nil disables SMS escalation

	// JWTProvider may be nil in local setups without the account service's
	// public key; the router then skips auth entirely.
	JWTProvider *jwtinfra.Provider

	Log *slog.Logger
}
