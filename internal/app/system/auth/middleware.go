// internal/app/system/auth/middleware.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// IdentityResolver maps verified token claims to the local Identity,
// or (nil, nil) when no matching user exists. Bootstrap wires an
// adapter over the users store.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, claims *Claims) (*Identity, error)
}

// Authenticator is the bearer-token middleware. It verifies the
// Authorization header on each request and, when a matching user
// exists, injects the Identity into the request context. Requests
// without a valid token pass through unauthenticated; the apierr
// RequireIdentity gate turns a missing identity into a 401.
type Authenticator struct {
	Verifier TokenVerifier
	Resolver IdentityResolver
	Log      *zap.Logger
}

// NewAuthenticator builds the middleware.
func NewAuthenticator(verifier TokenVerifier, resolver IdentityResolver, logger *zap.Logger) *Authenticator {
	return &Authenticator{Verifier: verifier, Resolver: resolver, Log: logger}
}

// bearerToken extracts the credential from "Authorization: Bearer <t>".
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return token, token != ""
}

// LoadIdentity verifies the bearer token (if any) and loads the caller
// into the request context. Verification failures are treated as
// unauthenticated, not as errors: the downstream gate decides whether
// the route needs an identity.
func (a *Authenticator) LoadIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.Verifier.Verify(r.Context(), token)
		if err != nil {
			a.Log.Debug("bearer token rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		identity, err := a.Resolver.ResolveIdentity(r.Context(), claims)
		if err != nil {
			a.Log.Warn("identity resolution failed", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if identity != nil && identity.UserID != primitive.NilObjectID {
			r = WithIdentity(r, identity)
		}
		next.ServeHTTP(w, r)
	})
}
