package domain

// BadgeState feeds the menu badge. Derived on demand, never persisted.
type BadgeState struct {
	UnreadCount  int `json:"unreadCount"`
	PendingCount int `json:"pendingCount"`
}

// DisplayCount is the number the badge shows. Unread notifications win;
// once they are cleared the badge falls back to outstanding work items so
// "something needs you" stays visible. A display policy only, it never
// corrects either count.
func (b BadgeState) DisplayCount() int {
	if b.UnreadCount > 0 {
		return b.UnreadCount
	}
	return b.PendingCount
}
