// internal/app/features/tasks/handler.go

// Package tasks implements the group-scoped task collection
// (/api/v1/groups/{groupID}/tasks) and the task item endpoints
// (/api/v1/tasks/{id}). Members can read; admins can write.
package tasks

import (
	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	assignmentstore "github.com/dalemusser/kajishare/internal/app/store/assignments"
	evaluationstore "github.com/dalemusser/kajishare/internal/app/store/evaluations"
	membershipstore "github.com/dalemusser/kajishare/internal/app/store/memberships"
	taskstore "github.com/dalemusser/kajishare/internal/app/store/tasks"
	"go.uber.org/zap"
)

type Handler struct {
	Tasks       *taskstore.Store
	Memberships *membershipstore.Store
	Assignments *assignmentstore.Store
	Evaluations *evaluationstore.Store
	ErrLog      *apierr.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(
	tasks *taskstore.Store,
	memberships *membershipstore.Store,
	assignments *assignmentstore.Store,
	evaluations *evaluationstore.Store,
	errLog *apierr.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Tasks:       tasks,
		Memberships: memberships,
		Assignments: assignments,
		Evaluations: evaluations,
		ErrLog:      errLog,
		Log:         logger,
	}
}
