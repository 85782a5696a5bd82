package domain

import "time"

// Approval states.
const (
	ApprovalOpen = "open"
	ApprovalDone = "done"
)

// Approval is the read model of the approvals queue, an unrelated domain this
// service only counts: open approvals assigned to a user feed the badge's
// pending-work fallback.
type Approval struct {
	ApprovalID string    `json:"id" dynamodbav:"approval_id"`
	AssignedTo string    `json:"assigned_to" dynamodbav:"assigned_to"`
	State      string    `json:"state" dynamodbav:"state"`
	EntityID   string    `json:"entity_id,omitempty" dynamodbav:"entity_id"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}
