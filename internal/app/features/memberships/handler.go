// internal/app/features/memberships/handler.go

// Package memberships implements the /api/v1/memberships endpoints.
// This is where the authorization core earns its keep: every mutation
// runs under the group's lock and through the workload and role-change
// policies before it touches the store.
package memberships

import (
	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	membershipstore "github.com/dalemusser/kajishare/internal/app/store/memberships"
	userstore "github.com/dalemusser/kajishare/internal/app/store/users"
	"github.com/dalemusser/kajishare/internal/app/system/grouplock"
	"go.uber.org/zap"
)

type Handler struct {
	Memberships *membershipstore.Store
	Users       *userstore.Store
	Locks       *grouplock.Keyed
	ErrLog      *apierr.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(
	memberships *membershipstore.Store,
	users *userstore.Store,
	locks *grouplock.Keyed,
	errLog *apierr.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Memberships: memberships,
		Users:       users,
		Locks:       locks,
		ErrLog:      errLog,
		Log:         logger,
	}
}
