package domain

import "time"

// Recipient roles used for event fan-out. RoleService identifies the
// business-logic backend calling the internal dispatch endpoint.
const (
	RoleAdmin       = "admin"
	RoleEngineering = "engineering"
	RoleSite        = "site"
	RoleService     = "service"
)

// KnownRole reports whether r is one of the fan-out roles.
func KnownRole(r string) bool {
	switch r {
	case RoleAdmin, RoleEngineering, RoleSite, RoleService:
		return true
	}
	return false
}

// User is the read model of the user directory. The directory is owned by the
// surrounding dashboard backend; this service only reads it to resolve role
// fan-out and SMS escalation targets.
type User struct {
	UserID    string    `json:"id" dynamodbav:"user_id"`
	Username  string    `json:"username" dynamodbav:"username"`
	Email     string    `json:"email" dynamodbav:"email"`
	Phone     *string   `json:"phone,omitempty" dynamodbav:"phone"`
	Role      string    `json:"role" dynamodbav:"role"`
	Enable    int       `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}
