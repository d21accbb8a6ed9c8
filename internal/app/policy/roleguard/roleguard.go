// internal/app/policy/roleguard/roleguard.go

// Package roleguard enforces the last-admin invariant: a group must
// retain at least one active admin membership at all times. The guard
// applies to exactly two operations — deleting an admin membership and
// demoting an admin to member — and must run inside the same
// group-serialized section as the mutation it gates (grouplock.Lock),
// so two concurrent demotions of sibling admins cannot both pass.
package roleguard

import (
	"context"

	"github.com/dalemusser/kajishare/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminCounter is the one aggregate the guard needs. The memberships
// store satisfies it; tests use an in-memory fake.
type AdminCounter interface {
	CountActiveAdmins(ctx context.Context, groupID primitive.ObjectID) (int64, error)
}

// CanDemoteOrRemove reports whether the membership may be deleted or
// demoted from admin to member. Non-admin memberships are always
// allowed; an admin membership is allowed only while the group holds
// another active admin. The decision is pure over current store state:
// evaluating it twice without an intervening mutation yields the same
// result.
func CanDemoteOrRemove(ctx context.Context, src AdminCounter, m models.Membership) (bool, error) {
	if m.Role != models.RoleAdmin {
		return true, nil
	}
	n, err := src.CountActiveAdmins(ctx, m.GroupID)
	if err != nil {
		return false, err
	}
	return n > 1, nil
}
