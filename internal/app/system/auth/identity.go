// internal/app/system/auth/identity.go
package auth

import (
	"context"
	"net/http"

	"github.com/dalemusser/kajishare/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the authenticated caller, resolved from a verified bearer
// token and loaded from the users collection. It is threaded through
// handlers and the policy layer explicitly; there is no ambient
// current-user state.
type Identity struct {
	UserID      primitive.ObjectID
	GoogleSub   string
	Name        string
	Email       string
	AccountType models.AccountType
}

type ctxKey string

const identityKey ctxKey = "identity"

// CurrentIdentity returns the request's identity and a found flag.
func CurrentIdentity(r *http.Request) (*Identity, bool) {
	id, ok := r.Context().Value(identityKey).(*Identity)
	return id, ok
}

// WithIdentity returns a request whose context carries the identity.
func WithIdentity(r *http.Request, id *Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, id))
}

// WithTestIdentity injects an identity for handler tests, bypassing
// token verification.
func WithTestIdentity(r *http.Request, id *Identity) *http.Request {
	return WithIdentity(r, id)
}
