package domain

// StatusEvent is the wire form of a status change reported by the orders and
// projects flows. The actor fields describe the user who performed the
// change, not the caller of the endpoint (service-to-service calls report on
// behalf of a user).
type StatusEvent struct {
	Domain      string `json:"domain" validate:"required,oneof=order project"`
	Status      string `json:"status" validate:"required"`
	EntityID    string `json:"entity_id" validate:"required"`
	EntityName  string `json:"entity_name"`
	OldStatus   string `json:"old_status"`
	ActorUserID string `json:"actor_user_id"`
	ActorRole   string `json:"actor_role"`
}
