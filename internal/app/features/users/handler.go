// internal/app/features/users/handler.go

// Package users implements the /api/v1/users endpoints. Account
// creation normally happens through the Google sign-in flow; the
// create endpoint here exists for service administrators provisioning
// accounts by hand.
package users

import (
	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	userstore "github.com/dalemusser/kajishare/internal/app/store/users"
	"go.uber.org/zap"
)

type Handler struct {
	Users  *userstore.Store
	ErrLog *apierr.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, errLog *apierr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, ErrLog: errLog, Log: logger}
}
