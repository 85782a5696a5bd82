// Package push defines the JSON payload delivered to browser push
// subscriptions and the navigation conventions the receiving service worker
// applies to it.
//
// The receiver runs out of process. On receipt it renders an OS notification
// carrying Tag (the platform collapses notifications that share a tag) and
// Data. On click it navigates to Data.URL when present, otherwise to
// DefaultRoute(Data.Type, Data.EntityID), focusing an existing app window
// before opening a new one. A close action dismisses without navigating.
// Nothing here is shared state: the server only ever hands a payload to the
// transport.
package push

import (
	"strings"

	"github.com/go-notify-api/internal/domain"
)

// Default notification assets served by the web app.
const (
	DefaultIcon  = "/icons/icon-192.png"
	DefaultBadge = "/icons/badge-72.png"
)

// bodyLimit keeps push bodies inside what mobile notification shades show
// without clipping mid-word.
const bodyLimit = 180

// Payload is the push message body. Field names are part of the service
// worker contract and must not change without a coordinated worker release.
type Payload struct {
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Icon  string      `json:"icon,omitempty"`
	Badge string      `json:"badge,omitempty"`
	Tag   string      `json:"tag,omitempty"`
	Data  PayloadData `json:"data"`
}

// PayloadData is the click-handling context attached to a notification.
type PayloadData struct {
	URL      string `json:"url,omitempty"`
	EntityID string `json:"entityId,omitempty"`
	Type     string `json:"type"`
}

// ForNotification builds the payload for a stored notification record.
func ForNotification(n *domain.Notification) Payload {
	p := Payload{
		Title: n.Title,
		Body:  Truncate(n.Body, bodyLimit),
		Icon:  DefaultIcon,
		Badge: DefaultBadge,
		Tag:   Tag(n.Type, n.RelatedEntityID),
		Data:  PayloadData{Type: n.Type},
	}
	if n.RelatedEntityID != nil {
		p.Data.EntityID = *n.RelatedEntityID
	}
	if n.Data != nil {
		switch {
		case n.Data.Status != nil:
			p.Data.URL = n.Data.Status.URL
		case n.Data.System != nil:
			p.Data.URL = n.Data.System.URL
		}
	}
	return p
}

// Tag groups notifications so a newer push for the same entity replaces the
// one still on screen instead of stacking.
func Tag(notificationType string, entityID *string) string {
	if entityID == nil || *entityID == "" {
		return notificationType
	}
	return notificationType + ":" + *entityID
}

// DefaultRoute is the in-app path the worker falls back to when a payload
// carries no explicit URL. It must stay in sync with the web app's router.
func DefaultRoute(notificationType, entityID string) string {
	switch {
	case domain.IsOrderType(notificationType) && entityID != "":
		return "/orders/" + entityID
	case domain.IsProjectType(notificationType) && entityID != "":
		return "/projects/" + entityID
	default:
		return "/notifications"
	}
}

// Truncate shortens body text for constrained platform notification UIs.
// Multi-byte text is cut on a rune boundary.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
