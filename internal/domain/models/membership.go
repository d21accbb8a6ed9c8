// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the per-group permission tier a membership carries.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the closed set of roles.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// Membership is the authoritative join between users and groups and the
// central record of the authorization core. Exactly one document per
// (user_id, group_id), enforced by a unique index.
//
// WorkloadRatio is the membership's percentage share of the group's
// workload: nil means "unspecified"; when present it must satisfy
// 0 < x <= 100 with at most one decimal digit, and the non-nil ratios
// of a group's active memberships must sum to exactly 100. Those rules
// live in internal/app/policy/workload.
type Membership struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	GroupID       primitive.ObjectID `bson:"group_id" json:"group_id"`
	Role          Role               `bson:"role" json:"role"`
	WorkloadRatio *float64           `bson:"workload_ratio,omitempty" json:"workload_ratio,omitempty"`
	Active        bool               `bson:"active" json:"active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
