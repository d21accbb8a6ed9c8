// internal/app/features/assignments/handler.go

// Package assignments implements the task-scoped assignment collection
// (/api/v1/tasks/{taskID}/assignments) and the assignment item
// endpoints (/api/v1/assignments/{id}).
//
// An assignment's status follows its completed date: setting the date
// completes the assignment, clearing it reverts a completed one to
// pending. The reconciliation lives on the model (SyncStatus); the
// handlers here run it before every write.
package assignments

import (
	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	assignmentstore "github.com/dalemusser/kajishare/internal/app/store/assignments"
	evaluationstore "github.com/dalemusser/kajishare/internal/app/store/evaluations"
	membershipstore "github.com/dalemusser/kajishare/internal/app/store/memberships"
	taskstore "github.com/dalemusser/kajishare/internal/app/store/tasks"
	"go.uber.org/zap"
)

type Handler struct {
	Assignments *assignmentstore.Store
	Tasks       *taskstore.Store
	Memberships *membershipstore.Store
	Evaluations *evaluationstore.Store
	ErrLog      *apierr.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(
	assignments *assignmentstore.Store,
	tasks *taskstore.Store,
	memberships *membershipstore.Store,
	evaluations *evaluationstore.Store,
	errLog *apierr.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Assignments: assignments,
		Tasks:       tasks,
		Memberships: memberships,
		Evaluations: evaluations,
		ErrLog:      errLog,
		Log:         logger,
	}
}
