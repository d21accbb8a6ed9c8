// internal/app/features/evaluations/handler.go

// Package evaluations implements the /api/v1/evaluations endpoints.
// Evaluations are peer scores on completed assignments: members of the
// owning group may read, create and update; only admins may delete.
// The evaluator is always the caller; a client cannot score on
// someone else's behalf.
package evaluations

import (
	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	assignmentstore "github.com/dalemusser/kajishare/internal/app/store/assignments"
	evaluationstore "github.com/dalemusser/kajishare/internal/app/store/evaluations"
	membershipstore "github.com/dalemusser/kajishare/internal/app/store/memberships"
	taskstore "github.com/dalemusser/kajishare/internal/app/store/tasks"
	"go.uber.org/zap"
)

type Handler struct {
	Evaluations *evaluationstore.Store
	Assignments *assignmentstore.Store
	Tasks       *taskstore.Store
	Memberships *membershipstore.Store
	ErrLog      *apierr.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(
	evaluations *evaluationstore.Store,
	assignments *assignmentstore.Store,
	tasks *taskstore.Store,
	memberships *membershipstore.Store,
	errLog *apierr.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Evaluations: evaluations,
		Assignments: assignments,
		Tasks:       tasks,
		Memberships: memberships,
		ErrLog:      errLog,
		Log:         logger,
	}
}
