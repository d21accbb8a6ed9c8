// internal/app/bootstrap/identity.go
package bootstrap

import (
	"context"

	userstore "github.com/dalemusser/kajishare/internal/app/store/users"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
)

// userResolver adapts the users store to the auth middleware's
// IdentityResolver. A verified token whose subject has no user record
// resolves to nil: the caller exists to Google but not to us until
// they hit the sign-in endpoint.
type userResolver struct {
	users *userstore.Store
}

func (ur *userResolver) ResolveIdentity(ctx context.Context, claims *auth.Claims) (*auth.Identity, error) {
	user, err := ur.users.FindByGoogleSub(ctx, claims.Sub)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &auth.Identity{
		UserID:      user.ID,
		GoogleSub:   user.GoogleSub,
		Name:        user.Name,
		Email:       user.Email,
		AccountType: user.AccountType,
	}, nil
}
