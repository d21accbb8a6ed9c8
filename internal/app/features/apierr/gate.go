// internal/app/features/apierr/gate.go
package apierr

import (
	"net/http"

	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/domain/fault"
)

// RequireIdentity ensures the request carries an authenticated
// identity. On failure it renders the 401 and returns ok=false.
func RequireIdentity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity, ok := auth.CurrentIdentity(r)
	if !ok {
		Unauthorized(w, fault.ErrNotAuthenticated.Error())
		return nil, false
	}
	return identity, true
}
