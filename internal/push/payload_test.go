package push

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-notify-api/internal/domain"
)

func TestForNotification(t *testing.T) {
	entityID := "ord-42"
	n := &domain.Notification{
		NotificationID:  "n-1",
		UserID:          "user-1",
		RelatedEntityID: &entityID,
		Title:           "Order approved",
		Body:            "Order PO-42 has been approved.",
		Type:            "order.approved",
		Data: &domain.NotificationData{
			Kind: domain.DataKindOrder,
			Status: &domain.StatusChange{
				EntityID:  entityID,
				OldStatus: "submitted",
				NewStatus: "approved",
				URL:       "/orders/ord-42",
			},
		},
		CreatedAt: time.Now(),
	}

	p := ForNotification(n)
	assert.Equal(t, "Order approved", p.Title)
	assert.Equal(t, "Order PO-42 has been approved.", p.Body)
	assert.Equal(t, "order.approved:ord-42", p.Tag)
	assert.Equal(t, "/orders/ord-42", p.Data.URL)
	assert.Equal(t, "ord-42", p.Data.EntityID)
	assert.Equal(t, "order.approved", p.Data.Type)
	assert.Equal(t, DefaultIcon, p.Icon)
}

func TestForNotificationSystemNotice(t *testing.T) {
	n := &domain.Notification{
		Title: "Maintenance tonight",
		Body:  "The dashboard will be unavailable from 02:00.",
		Type:  domain.TypeSystem,
		Data: &domain.NotificationData{
			Kind:   domain.DataKindSystem,
			System: &domain.SystemNotice{Reason: "maintenance", URL: "/status"},
		},
	}

	p := ForNotification(n)
	assert.Equal(t, domain.TypeSystem, p.Tag, "no entity, tag falls back to type")
	assert.Equal(t, "/status", p.Data.URL)
	assert.Empty(t, p.Data.EntityID)
}

func TestPayloadWireFormat(t *testing.T) {
	entityID := "prj-7"
	p := ForNotification(&domain.Notification{
		RelatedEntityID: &entityID,
		Title:           "Project active",
		Body:            "Project Alpha is now active.",
		Type:            "project.active",
	})

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	data, ok := decoded["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "prj-7", data["entityId"], "worker reads camelCase entityId")
	assert.Equal(t, "project.active", data["type"])
	_, hasURL := data["url"]
	assert.False(t, hasURL, "empty url is omitted, worker falls back to default route")
}

func TestDefaultRoute(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		entityID string
		want     string
	}{
		{"order detail", "order.approved", "ord-1", "/orders/ord-1"},
		{"project detail", "project.completed", "prj-2", "/projects/prj-2"},
		{"order without entity", "order.approved", "", "/notifications"},
		{"system", "system", "x", "/notifications"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultRoute(tt.typ, tt.entityID))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "", Truncate("anything", 0))

	long := strings.Repeat("palabra ", 40)
	got := Truncate(long, bodyLimit)
	assert.LessOrEqual(t, len([]rune(got)), bodyLimit)
	assert.True(t, strings.HasSuffix(got, "…"))

	multibyte := strings.Repeat("ñ", 20)
	got = Truncate(multibyte, 10)
	assert.Equal(t, strings.Repeat("ñ", 9)+"…", got)
}
