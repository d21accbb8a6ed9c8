// internal/app/features/apierr/apierr.go

// Package apierr renders the JSON error envelope and maps domain
// outcomes (permit decisions, fault sentinels) to HTTP statuses. The
// rule engine itself never sees a status code; this package is the
// boundary translation.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/kajishare/internal/app/policy/permit"
	"github.com/dalemusser/kajishare/internal/domain/fault"
	"go.uber.org/zap"
)

type envelope struct {
	Error  string   `json:"error,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// BadRequest renders a 400 with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	write(w, http.StatusBadRequest, envelope{Error: msg})
}

// Unauthorized renders a 401 with the given message.
func Unauthorized(w http.ResponseWriter, msg string) {
	write(w, http.StatusUnauthorized, envelope{Error: msg})
}

// Forbidden renders a 403 with the given message.
func Forbidden(w http.ResponseWriter, msg string) {
	write(w, http.StatusForbidden, envelope{Error: msg})
}

// NotFound renders a 404 with the given message.
func NotFound(w http.ResponseWriter, msg string) {
	write(w, http.StatusNotFound, envelope{Error: msg})
}

// Unprocessable renders a 422 with field-level messages, matching the
// shape clients expect for validation failures.
func Unprocessable(w http.ResponseWriter, errs ...string) {
	write(w, http.StatusUnprocessableEntity, envelope{Errors: errs})
}

// ErrorLogger logs infrastructure failures and renders a generic 500.
// Internal details never reach the response body.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// ServerError logs the underlying error and renders a generic 500.
func (l *ErrorLogger) ServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	l.log.Error(logMsg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	write(w, http.StatusInternalServerError, envelope{Error: "internal server error"})
}

// RenderDecision renders a deny decision and reports whether the
// request was denied (true means the handler must return). Allow
// renders nothing.
func RenderDecision(w http.ResponseWriter, d permit.Decision) bool {
	switch d.Code {
	case permit.Allow:
		return false
	case permit.DenyNotAuthenticated:
		Unauthorized(w, fault.ErrNotAuthenticated.Error())
	case permit.DenyNotMember:
		Forbidden(w, "You are not a member of this group")
	case permit.DenyInactive:
		Forbidden(w, "Your membership is not active")
	default:
		Forbidden(w, "You are not allowed to perform this action. Admin permission required.")
	}
	return true
}

// RenderFault maps a domain fault sentinel to its HTTP status and
// reports whether err was one. Non-fault errors are left to the caller
// (usually ErrorLogger.ServerError).
func RenderFault(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, fault.ErrNotAuthenticated):
		Unauthorized(w, err.Error())
	case errors.Is(err, fault.ErrNotAMember),
		errors.Is(err, fault.ErrMembershipInactive),
		errors.Is(err, fault.ErrInsufficientRole),
		errors.Is(err, fault.ErrLastAdmin):
		Forbidden(w, err.Error())
	case errors.Is(err, fault.ErrWorkloadRange),
		errors.Is(err, fault.ErrWorkloadPrecision),
		errors.Is(err, fault.ErrWorkloadSum),
		errors.Is(err, fault.ErrDuplicateMembership),
		errors.Is(err, fault.ErrAssignmentNotCompleted),
		errors.Is(err, fault.ErrDuplicateEvaluation):
		Unprocessable(w, err.Error())
	default:
		return false
	}
	return true
}
