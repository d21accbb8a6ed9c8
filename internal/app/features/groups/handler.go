// internal/app/features/groups/handler.go

// Package groups implements the /api/v1/groups endpoints: the
// collection scoped to the caller's active memberships, group
// creation with an auto-admin membership, joining by share key, and
// the admin-only update and cascading destroy.
package groups

import (
	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	assignmentstore "github.com/dalemusser/kajishare/internal/app/store/assignments"
	evaluationstore "github.com/dalemusser/kajishare/internal/app/store/evaluations"
	groupstore "github.com/dalemusser/kajishare/internal/app/store/groups"
	membershipstore "github.com/dalemusser/kajishare/internal/app/store/memberships"
	taskstore "github.com/dalemusser/kajishare/internal/app/store/tasks"
	"github.com/dalemusser/kajishare/internal/app/system/grouplock"
	"go.uber.org/zap"
)

type Handler struct {
	Groups      *groupstore.Store
	Memberships *membershipstore.Store
	Tasks       *taskstore.Store
	Assignments *assignmentstore.Store
	Evaluations *evaluationstore.Store
	Locks       *grouplock.Keyed
	ErrLog      *apierr.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(
	groups *groupstore.Store,
	memberships *membershipstore.Store,
	tasks *taskstore.Store,
	assignments *assignmentstore.Store,
	evaluations *evaluationstore.Store,
	locks *grouplock.Keyed,
	errLog *apierr.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Groups:      groups,
		Memberships: memberships,
		Tasks:       tasks,
		Assignments: assignments,
		Evaluations: evaluations,
		Locks:       locks,
		ErrLog:      errLog,
		Log:         logger,
	}
}
