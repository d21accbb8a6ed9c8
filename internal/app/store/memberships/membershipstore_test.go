package membershipstore_test

import (
	"errors"
	"testing"

	membershipstore "github.com/dalemusser/kajishare/internal/app/store/memberships"
	"github.com/dalemusser/kajishare/internal/app/system/indexes"
	"github.com/dalemusser/kajishare/internal/domain/fault"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"github.com/dalemusser/kajishare/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setup(t *testing.T) (*membershipstore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return membershipstore.New(db), testutil.NewFixtures(t, db)
}

func TestCreate_DuplicatePair(t *testing.T) {
	store, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Aki")
	group := fixtures.CreateGroup(ctx, "Flat 12")
	fixtures.CreateMembership(ctx, user.ID, group.ID, models.RoleMember)

	_, err := store.Create(ctx, models.Membership{
		UserID:  user.ID,
		GroupID: group.ID,
		Role:    models.RoleAdmin,
		Active:  true,
	})
	if !errors.Is(err, fault.ErrDuplicateMembership) {
		t.Errorf("second create: got %v, want ErrDuplicateMembership", err)
	}
}

func TestSumWorkloadRatio(t *testing.T) {
	store, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	group := fixtures.CreateGroup(ctx, "Flat 12")
	a := fixtures.CreateUser(ctx, "A")
	b := fixtures.CreateUser(ctx, "B")
	c := fixtures.CreateUser(ctx, "C")
	d := fixtures.CreateUser(ctx, "D")

	ma := fixtures.CreateMembershipWithRatio(ctx, a.ID, group.ID, models.RoleAdmin, 60)
	fixtures.CreateMembershipWithRatio(ctx, b.ID, group.ID, models.RoleMember, 40)
	fixtures.CreateMembership(ctx, c.ID, group.ID, models.RoleMember) // nil ratio

	// Inactive memberships must not contribute.
	inactive := fixtures.CreateMembershipWithRatio(ctx, d.ID, group.ID, models.RoleMember, 50)
	if err := store.UpdateRatioAndActive(ctx, inactive.ID, inactive.WorkloadRatio, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	sum, err := store.SumWorkloadRatio(ctx, group.ID, nil)
	if err != nil {
		t.Fatalf("SumWorkloadRatio: %v", err)
	}
	if sum != 100 {
		t.Errorf("sum: got %v, want 100", sum)
	}

	sum, err = store.SumWorkloadRatio(ctx, group.ID, &ma.ID)
	if err != nil {
		t.Fatalf("SumWorkloadRatio excluding: %v", err)
	}
	if sum != 40 {
		t.Errorf("sum excluding 60: got %v, want 40", sum)
	}
}

func TestCountActiveAdmins(t *testing.T) {
	store, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	group := fixtures.CreateGroup(ctx, "Flat 12")
	a := fixtures.CreateUser(ctx, "A")
	b := fixtures.CreateUser(ctx, "B")
	c := fixtures.CreateUser(ctx, "C")
	d := fixtures.CreateUser(ctx, "D")

	fixtures.CreateMembership(ctx, a.ID, group.ID, models.RoleAdmin)
	fixtures.CreateMembership(ctx, b.ID, group.ID, models.RoleAdmin)
	fixtures.CreateMembership(ctx, c.ID, group.ID, models.RoleMember)

	// An inactive admin does not count toward the invariant.
	inactive := fixtures.CreateMembership(ctx, d.ID, group.ID, models.RoleAdmin)
	if err := store.UpdateRatioAndActive(ctx, inactive.ID, nil, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	n, err := store.CountActiveAdmins(ctx, group.ID)
	if err != nil {
		t.Fatalf("CountActiveAdmins: %v", err)
	}
	if n != 2 {
		t.Errorf("active admins: got %d, want 2", n)
	}
}

func TestActiveGroupIDs(t *testing.T) {
	store, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "A")
	g1 := fixtures.CreateGroup(ctx, "One")
	g2 := fixtures.CreateGroup(ctx, "Two")
	g3 := fixtures.CreateGroup(ctx, "Three")

	fixtures.CreateMembership(ctx, user.ID, g1.ID, models.RoleMember)
	fixtures.CreateMembership(ctx, user.ID, g2.ID, models.RoleAdmin)
	m3 := fixtures.CreateMembership(ctx, user.ID, g3.ID, models.RoleMember)
	if err := store.UpdateRatioAndActive(ctx, m3.ID, nil, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	ids, err := store.ActiveGroupIDs(ctx, user.ID)
	if err != nil {
		t.Fatalf("ActiveGroupIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("group ids: got %d, want 2", len(ids))
	}
	want := map[primitive.ObjectID]bool{g1.ID: true, g2.ID: true}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected group id %s", id.Hex())
		}
	}
}

func TestSetRoleAndDelete(t *testing.T) {
	store, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "A")
	group := fixtures.CreateGroup(ctx, "One")
	m := fixtures.CreateMembership(ctx, user.ID, group.ID, models.RoleMember)

	if err := store.SetRole(ctx, m.ID, models.RoleAdmin); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	got, err := store.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("role: got %q, want admin", got.Role)
	}

	if err := store.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByID(ctx, m.ID); err == nil {
		t.Error("membership still present after delete")
	}
}
