// internal/app/features/sessions/handler.go

// Package sessions implements POST /api/v1/auth/google: verify the
// presented Google ID token and find-or-create the matching user.
// Per-request authentication is the auth middleware's job; this
// endpoint exists so clients can register and fetch their own record.
package sessions

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	userstore "github.com/dalemusser/kajishare/internal/app/store/users"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/app/system/httpjson"
	"github.com/dalemusser/kajishare/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Users     *userstore.Store
	Verifier  auth.TokenVerifier
	Exchanger auth.CodeExchanger
	ErrLog    *apierr.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(users *userstore.Store, verifier auth.TokenVerifier, exchanger auth.CodeExchanger, errLog *apierr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Verifier: verifier, Exchanger: exchanger, ErrLog: errLog, Log: logger}
}

// HandleGoogleAuth verifies the bearer ID token and upserts the user.
func (h *Handler) HandleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		apierr.Unauthorized(w, "no token provided")
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	h.signIn(w, r, token)
}

// HandleGoogleCode finishes the server-side OAuth code flow: exchange
// the posted authorization code for tokens, then sign in with the ID
// token from the exchange.
func (h *Handler) HandleGoogleCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		apierr.Unprocessable(w, "code can't be blank")
		return
	}

	token, err := h.Exchanger.Exchange(r.Context(), req.Code)
	if err != nil {
		h.Log.Warn("google code exchange rejected", zap.Error(err))
		apierr.Unauthorized(w, "invalid authorization code")
		return
	}
	h.signIn(w, r, token)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, rawToken string) {
	claims, err := h.Verifier.Verify(r.Context(), rawToken)
	if err != nil {
		h.Log.Warn("google token rejected", zap.Error(err))
		apierr.Unauthorized(w, "invalid ID token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.UpsertByGoogleSub(ctx, claims.Sub, claims.Name, claims.Email, claims.Picture)
	if err != nil {
		h.ErrLog.ServerError(w, r, "google auth upsert failed", err)
		return
	}

	h.Log.Info("user signed in",
		zap.String("user_id", user.ID.Hex()),
		zap.String("email", user.Email))
	httpjson.OK(w, user)
}
