// internal/app/policy/permit/permit.go

// Package permit is the single permission evaluator for group-scoped
// operations. Every handler that guards an action on a group (directly,
// or transitively through a task, assignment, or evaluation) resolves
// the group id for its operation and calls Evaluate; there are no
// per-feature reimplementations of the membership check.
//
// Cross-group collection endpoints ("my memberships", "evaluations
// visible to me") are a separate concern: they pre-scope the query to
// the caller's active group ids instead of running a per-item check.
package permit

import (
	"context"

	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tier is the minimum role required for an operation.
type Tier int

const (
	TierMember Tier = iota
	TierAdmin
)

// Code classifies the outcome of an evaluation.
type Code int

const (
	Allow Code = iota
	DenyNotAuthenticated
	DenyNotMember
	DenyInactive
	DenyInsufficientRole
)

// Decision is the outcome of a permission evaluation. When Code is
// Allow, Membership carries the caller's resolved membership so the
// handler can use it without a second lookup (e.g. stamping
// assigned_by on a new assignment).
type Decision struct {
	Code       Code
	Membership *models.Membership
}

// Allowed reports whether the decision permits the operation.
func (d Decision) Allowed() bool { return d.Code == Allow }

// MembershipSource is the one lookup the evaluator needs. The
// memberships store satisfies it; tests use an in-memory fake.
type MembershipSource interface {
	FindByUserAndGroup(ctx context.Context, userID, groupID primitive.ObjectID) (*models.Membership, error)
}

// Evaluate decides whether the identity may perform an operation on the
// group at the required tier. It is a pure decision over current store
// state: the returned error is only ever an infrastructure failure.
func Evaluate(ctx context.Context, src MembershipSource, identity *auth.Identity, groupID primitive.ObjectID, tier Tier) (Decision, error) {
	if identity == nil {
		return Decision{Code: DenyNotAuthenticated}, nil
	}

	m, err := src.FindByUserAndGroup(ctx, identity.UserID, groupID)
	if err != nil {
		return Decision{}, err
	}
	if m == nil {
		return Decision{Code: DenyNotMember}, nil
	}
	if !m.Active {
		return Decision{Code: DenyInactive}, nil
	}
	if tier == TierAdmin && m.Role != models.RoleAdmin {
		return Decision{Code: DenyInsufficientRole}, nil
	}
	return Decision{Code: Allow, Membership: m}, nil
}
