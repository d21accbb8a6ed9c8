package permit_test

import (
	"context"
	"testing"

	"github.com/dalemusser/kajishare/internal/app/policy/permit"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeMemberships returns the canned membership for one (user, group)
// pair and nil for everyone else.
type fakeMemberships struct {
	userID     primitive.ObjectID
	groupID    primitive.ObjectID
	membership *models.Membership
}

func (f *fakeMemberships) FindByUserAndGroup(_ context.Context, userID, groupID primitive.ObjectID) (*models.Membership, error) {
	if userID == f.userID && groupID == f.groupID {
		return f.membership, nil
	}
	return nil, nil
}

func TestEvaluate_Unauthenticated(t *testing.T) {
	groupID := primitive.NewObjectID()
	src := &fakeMemberships{}

	d, err := permit.Evaluate(context.Background(), src, nil, groupID, permit.TierMember)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if d.Code != permit.DenyNotAuthenticated {
		t.Errorf("code: got %v, want DenyNotAuthenticated", d.Code)
	}
	if d.Allowed() {
		t.Error("unauthenticated must not be allowed")
	}
}

func TestEvaluate_NotAMember(t *testing.T) {
	userID := primitive.NewObjectID()
	groupID := primitive.NewObjectID()
	identity := &auth.Identity{UserID: userID}
	src := &fakeMemberships{userID: userID, groupID: primitive.NewObjectID()}

	for _, tier := range []permit.Tier{permit.TierMember, permit.TierAdmin} {
		d, err := permit.Evaluate(context.Background(), src, identity, groupID, tier)
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if d.Code != permit.DenyNotMember {
			t.Errorf("tier %v: got %v, want DenyNotMember", tier, d.Code)
		}
	}
}

func TestEvaluate_RoleTierActiveMatrix(t *testing.T) {
	userID := primitive.NewObjectID()
	groupID := primitive.NewObjectID()
	identity := &auth.Identity{UserID: userID}

	cases := []struct {
		name   string
		role   models.Role
		active bool
		tier   permit.Tier
		want   permit.Code
	}{
		{"active member, member tier", models.RoleMember, true, permit.TierMember, permit.Allow},
		{"active member, admin tier", models.RoleMember, true, permit.TierAdmin, permit.DenyInsufficientRole},
		{"active admin, member tier", models.RoleAdmin, true, permit.TierMember, permit.Allow},
		{"active admin, admin tier", models.RoleAdmin, true, permit.TierAdmin, permit.Allow},
		{"inactive member, member tier", models.RoleMember, false, permit.TierMember, permit.DenyInactive},
		{"inactive member, admin tier", models.RoleMember, false, permit.TierAdmin, permit.DenyInactive},
		{"inactive admin, member tier", models.RoleAdmin, false, permit.TierMember, permit.DenyInactive},
		{"inactive admin, admin tier", models.RoleAdmin, false, permit.TierAdmin, permit.DenyInactive},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeMemberships{
				userID:  userID,
				groupID: groupID,
				membership: &models.Membership{
					ID:      primitive.NewObjectID(),
					UserID:  userID,
					GroupID: groupID,
					Role:    tc.role,
					Active:  tc.active,
				},
			}
			d, err := permit.Evaluate(context.Background(), src, identity, groupID, tc.tier)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if d.Code != tc.want {
				t.Errorf("code: got %v, want %v", d.Code, tc.want)
			}
			if tc.want == permit.Allow && d.Membership == nil {
				t.Error("allow decision must carry the membership")
			}
			if tc.want != permit.Allow && d.Membership != nil {
				t.Error("deny decision must not carry a membership")
			}
		})
	}
}

func TestEvaluate_AllowReturnsCallersMembership(t *testing.T) {
	userID := primitive.NewObjectID()
	groupID := primitive.NewObjectID()
	membershipID := primitive.NewObjectID()
	identity := &auth.Identity{UserID: userID}
	src := &fakeMemberships{
		userID:  userID,
		groupID: groupID,
		membership: &models.Membership{
			ID:      membershipID,
			UserID:  userID,
			GroupID: groupID,
			Role:    models.RoleAdmin,
			Active:  true,
		},
	}

	d, err := permit.Evaluate(context.Background(), src, identity, groupID, permit.TierAdmin)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !d.Allowed() {
		t.Fatalf("expected allow, got %v", d.Code)
	}
	if d.Membership.ID != membershipID {
		t.Errorf("membership id: got %s, want %s", d.Membership.ID.Hex(), membershipID.Hex())
	}
}
