// internal/app/features/users/users.go
package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	userstore "github.com/dalemusser/kajishare/internal/app/store/users"
	"github.com/dalemusser/kajishare/internal/app/system/httpjson"
	"github.com/dalemusser/kajishare/internal/app/system/sanitize"
	"github.com/dalemusser/kajishare/internal/app/system/timeouts"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxNameLen = 50

type userPayload struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	GoogleSub string `json:"google_sub,omitempty"`
}

func validateNameAndEmail(name, email string) []string {
	var errs []string
	if name == "" {
		errs = append(errs, "name can't be blank")
	}
	if len([]rune(name)) > maxNameLen {
		errs = append(errs, "name is too long (maximum is 50 characters)")
	}
	if email == "" {
		errs = append(errs, "email can't be blank")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, "email is invalid")
	}
	return errs
}

// HandleIndex lists all users.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if _, ok := apierr.RequireIdentity(w, r); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Users.List(ctx)
	if err != nil {
		h.ErrLog.ServerError(w, r, "list users failed", err)
		return
	}
	httpjson.OK(w, list)
}

// HandleShow returns a single user by id.
func (h *Handler) HandleShow(w http.ResponseWriter, r *http.Request) {
	if _, ok := apierr.RequireIdentity(w, r); !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.NotFound(w, "user not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "user not found")
			return
		}
		h.ErrLog.ServerError(w, r, "load user failed", err)
		return
	}
	httpjson.OK(w, user)
}

// HandleCreate provisions a user account directly. Restricted to
// service administrators; ordinary accounts come from Google sign-in.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := apierr.RequireIdentity(w, r)
	if !ok {
		return
	}
	if identity.AccountType != models.AccountAdmin {
		apierr.Forbidden(w, "admin account required")
		return
	}

	var req userPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}
	req.Name = sanitize.Text(req.Name)

	errs := validateNameAndEmail(req.Name, req.Email)
	if req.GoogleSub == "" {
		errs = append(errs, "google_sub can't be blank")
	}
	if len(errs) > 0 {
		apierr.Unprocessable(w, errs...)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.Create(ctx, models.User{
		GoogleSub:   req.GoogleSub,
		Name:        req.Name,
		Email:       req.Email,
		AccountType: models.AccountUser,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			apierr.Unprocessable(w, err.Error())
			return
		}
		h.ErrLog.ServerError(w, r, "create user failed", err)
		return
	}

	h.Log.Info("user created",
		zap.String("user_id", user.ID.Hex()),
		zap.String("by", identity.UserID.Hex()))
	httpjson.Created(w, user)
}

// HandleUpdate changes a user's name or email. Callers may edit their
// own record; service administrators may edit anyone's.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := apierr.RequireIdentity(w, r)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.NotFound(w, "user not found")
		return
	}
	if id != identity.UserID && identity.AccountType != models.AccountAdmin {
		apierr.Forbidden(w, "you can only update your own account")
		return
	}

	var req userPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}
	req.Name = sanitize.Text(req.Name)

	if errs := validateNameAndEmail(req.Name, req.Email); len(errs) > 0 {
		apierr.Unprocessable(w, errs...)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.Update(ctx, id, req.Name, req.Email); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "user not found")
			return
		}
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			apierr.Unprocessable(w, err.Error())
			return
		}
		h.ErrLog.ServerError(w, r, "update user failed", err)
		return
	}

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.ServerError(w, r, "reload user failed", err)
		return
	}
	httpjson.OK(w, user)
}
