// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	assignmentstore "github.com/dalemusser/kajishare/internal/app/store/assignments"
	groupstore "github.com/dalemusser/kajishare/internal/app/store/groups"
	membershipstore "github.com/dalemusser/kajishare/internal/app/store/memberships"
	taskstore "github.com/dalemusser/kajishare/internal/app/store/tasks"
	userstore "github.com/dalemusser/kajishare/internal/app/store/users"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures creates domain entities for tests through the real stores,
// so fixture data goes through the same code paths production writes
// do.
type Fixtures struct {
	t *testing.T

	Users       *userstore.Store
	Groups      *groupstore.Store
	Memberships *membershipstore.Store
	Tasks       *taskstore.Store
	Assignments *assignmentstore.Store

	seq int
}

// NewFixtures builds a fixture factory over db.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{
		t:           t,
		Users:       userstore.New(db),
		Groups:      groupstore.New(db),
		Memberships: membershipstore.New(db),
		Tasks:       taskstore.New(db),
		Assignments: assignmentstore.New(db),
	}
}

func (f *Fixtures) next() int {
	f.seq++
	return f.seq
}

// CreateUser inserts a user with a generated google_sub and email.
func (f *Fixtures) CreateUser(ctx context.Context, name string) models.User {
	f.t.Helper()
	n := f.next()
	user, err := f.Users.Create(ctx, models.User{
		GoogleSub:   fmt.Sprintf("sub-%d-%d", time.Now().UnixNano(), n),
		Name:        name,
		Email:       fmt.Sprintf("user%d-%d@example.com", n, time.Now().UnixNano()),
		AccountType: models.AccountUser,
	})
	if err != nil {
		f.t.Fatalf("fixture user: %v", err)
	}
	return user
}

// CreateGroup inserts a group with sensible defaults.
func (f *Fixtures) CreateGroup(ctx context.Context, name string) models.Group {
	f.t.Helper()
	group, err := f.Groups.Create(ctx, models.Group{
		Name:        name,
		AssignMode:  models.AssignEqual,
		BalanceType: models.BalancePoint,
		Active:      true,
	})
	if err != nil {
		f.t.Fatalf("fixture group: %v", err)
	}
	return group
}

// CreateMembership joins user to group with the given role, active,
// with no workload ratio.
func (f *Fixtures) CreateMembership(ctx context.Context, userID, groupID primitive.ObjectID, role models.Role) models.Membership {
	f.t.Helper()
	m, err := f.Memberships.Create(ctx, models.Membership{
		UserID:  userID,
		GroupID: groupID,
		Role:    role,
		Active:  true,
	})
	if err != nil {
		f.t.Fatalf("fixture membership: %v", err)
	}
	return m
}

// CreateMembershipWithRatio joins user to group with a workload ratio.
func (f *Fixtures) CreateMembershipWithRatio(ctx context.Context, userID, groupID primitive.ObjectID, role models.Role, ratio float64) models.Membership {
	f.t.Helper()
	m, err := f.Memberships.Create(ctx, models.Membership{
		UserID:        userID,
		GroupID:       groupID,
		Role:          role,
		WorkloadRatio: &ratio,
		Active:        true,
	})
	if err != nil {
		f.t.Fatalf("fixture membership: %v", err)
	}
	return m
}

// CreateTask inserts a task in the group.
func (f *Fixtures) CreateTask(ctx context.Context, groupID primitive.ObjectID, name string, point int) models.Task {
	f.t.Helper()
	task, err := f.Tasks.Create(ctx, models.Task{
		GroupID: groupID,
		Name:    name,
		Point:   point,
	})
	if err != nil {
		f.t.Fatalf("fixture task: %v", err)
	}
	return task
}

// CreateAssignment assigns the task to the membership, due a week out.
func (f *Fixtures) CreateAssignment(ctx context.Context, taskID, membershipID primitive.ObjectID) models.Assignment {
	f.t.Helper()
	a, err := f.Assignments.Create(ctx, models.Assignment{
		TaskID:       taskID,
		MembershipID: membershipID,
		DueDate:      time.Now().UTC().Add(7 * 24 * time.Hour),
	})
	if err != nil {
		f.t.Fatalf("fixture assignment: %v", err)
	}
	return a
}

// CompleteAssignment marks the assignment completed as of due date.
func (f *Fixtures) CompleteAssignment(ctx context.Context, a models.Assignment) models.Assignment {
	f.t.Helper()
	done := a.DueDate.Add(time.Hour)
	a.CompletedDate = &done
	a.SyncStatus()
	if err := f.Assignments.Update(ctx, a); err != nil {
		f.t.Fatalf("fixture complete assignment: %v", err)
	}
	return a
}
