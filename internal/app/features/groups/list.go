// internal/app/features/groups/list.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/system/httpjson"
	"github.com/dalemusser/kajishare/internal/app/system/timeouts"
	"github.com/dalemusser/kajishare/internal/domain/models"
)

// HandleIndex lists the groups the caller actively belongs to. There
// is no global group listing; visibility follows membership.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	identity, ok := apierr.RequireIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	groupIDs, err := h.Memberships.ActiveGroupIDs(ctx, identity.UserID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "resolve caller groups failed", err)
		return
	}

	list, err := h.Groups.ListByIDs(ctx, groupIDs)
	if err != nil {
		h.ErrLog.ServerError(w, r, "list groups failed", err)
		return
	}
	if list == nil {
		list = []models.Group{}
	}
	httpjson.OK(w, list)
}
