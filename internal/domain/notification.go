package domain

import (
	"fmt"
	"strings"
	"time"
)

// Notification type namespaces. Order- and project-domain types carry an
// "order."/"project." prefix so consumers (source filters, the background
// receiver's click routing) can branch without a lookup table. TypeSystem is
// the only type outside the two domains.
const (
	TypeSystem = "system"

	orderTypePrefix   = "order."
	projectTypePrefix = "project."
)

// Notification data kinds, the discriminator of NotificationData.
const (
	DataKindOrder   = "order"
	DataKindProject = "project"
	DataKindSystem  = "system"
)

// project_source filter values.
const (
	SourceOrders   = "orders"
	SourceProjects = "projects"
)

// Notification is one addressed record: exactly one owner, immutable except
// IsRead, removed by hard delete.
type Notification struct {
	NotificationID  string            `json:"id" dynamodbav:"notification_id"`
	UserID          string            `json:"user_id" dynamodbav:"user_id"`
	RelatedEntityID *string           `json:"related_entity_id,omitempty" dynamodbav:"related_entity_id"`
	Title           string            `json:"title" dynamodbav:"title"`
	Body            string            `json:"body" dynamodbav:"body"`
	Type            string            `json:"type" dynamodbav:"type"`
	Data            *NotificationData `json:"data,omitempty" dynamodbav:"data"`
	IsRead          bool              `json:"is_read" dynamodbav:"is_read"`
	ProjectSource   string            `json:"project_source,omitempty" dynamodbav:"project_source"`
	CreatedAt       time.Time         `json:"created_at" dynamodbav:"created_at"`
}

// NotificationData is a tagged union: Kind selects which variant is populated.
// Order- and project-kind payloads describe a status transition; system-kind
// payloads carry a reason. Exactly one variant may be set.
type NotificationData struct {
	Kind   string        `json:"kind" dynamodbav:"kind"`
	Status *StatusChange `json:"status,omitempty" dynamodbav:"status,omitempty"`
	System *SystemNotice `json:"system,omitempty" dynamodbav:"system,omitempty"`
}

// StatusChange is the payload for order- and project-kind notifications.
type StatusChange struct {
	EntityID   string `json:"entity_id" dynamodbav:"entity_id"`
	EntityName string `json:"entity_name,omitempty" dynamodbav:"entity_name"`
	OldStatus  string `json:"old_status,omitempty" dynamodbav:"old_status"`
	NewStatus  string `json:"new_status" dynamodbav:"new_status"`
	URL        string `json:"url,omitempty" dynamodbav:"url"`
}

// SystemNotice is the payload for system-kind notifications.
type SystemNotice struct {
	Reason string `json:"reason,omitempty" dynamodbav:"reason"`
	URL    string `json:"url,omitempty" dynamodbav:"url"`
}

// IsOrderType reports whether t belongs to the order domain.
func IsOrderType(t string) bool { return strings.HasPrefix(t, orderTypePrefix) }

// IsProjectType reports whether t belongs to the project domain.
func IsProjectType(t string) bool { return strings.HasPrefix(t, projectTypePrefix) }

// DataKindForType returns the data kind a notification of type t must carry.
func DataKindForType(t string) string {
	switch {
	case IsOrderType(t):
		return DataKindOrder
	case IsProjectType(t):
		return DataKindProject
	default:
		return DataKindSystem
	}
}

// Validate checks the union invariant: Kind set, the matching variant (and
// only it) populated. Violations wrap ErrBadRequest so callers map to HTTP
// 400 without inspecting messages.
func (d *NotificationData) Validate() error {
	switch d.Kind {
	case DataKindOrder, DataKindProject:
		if d.Status == nil || d.System != nil {
			return fmt.Errorf("data kind %q requires exactly the status payload: %w", d.Kind, ErrBadRequest)
		}
		if d.Status.EntityID == "" || d.Status.NewStatus == "" {
			return fmt.Errorf("status payload requires entity_id and new_status: %w", ErrBadRequest)
		}
	case DataKindSystem:
		if d.System == nil || d.Status != nil {
			return fmt.Errorf("data kind %q requires exactly the system payload: %w", d.Kind, ErrBadRequest)
		}
	default:
		return fmt.Errorf("unknown data kind %q: %w", d.Kind, ErrBadRequest)
	}
	return nil
}

// ValidateFor additionally checks that the union kind agrees with the
// notification type the record carries.
func (d *NotificationData) ValidateFor(notificationType string) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if want := DataKindForType(notificationType); d.Kind != want {
		return fmt.Errorf("data kind %q does not match notification type %q: %w", d.Kind, notificationType, ErrBadRequest)
	}
	return nil
}

// ListNotificationsQuery are the filters for a notification listing. Page
// and Limit are normalized by the service; zero values mean "first page,
// default size".
type ListNotificationsQuery struct {
	Page          int
	Limit         int
	UnreadOnly    bool
	ProjectSource string `validate:"omitempty,oneof=orders projects"`
}

// NotificationList is one page of a user's notifications plus the counters
// the UI renders alongside. UnreadCount and Total are scoped to the query's
// project source, not to the page.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
	Total         int            `json:"total"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
}

// MarkReadRequest selects which notifications to mark read. Exactly one of
// NotificationIDs or MarkAll must be set.
type MarkReadRequest struct {
	NotificationIDs []string `json:"notificationIds"`
	MarkAll         bool     `json:"markAll"`
}

// DeleteNotificationsRequest selects which notifications to delete. Exactly
// one of NotificationIDs or DeleteAll must be set.
type DeleteNotificationsRequest struct {
	NotificationIDs []string `json:"notificationIds"`
	DeleteAll       bool     `json:"deleteAll"`
}
