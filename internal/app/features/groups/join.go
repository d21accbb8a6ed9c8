// internal/app/features/groups/join.go
package groups

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/system/httpjson"
	"github.com/dalemusser/kajishare/internal/app/system/timeouts"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"go.uber.org/zap"
)

// HandleJoin adds the caller to the group matching the presented share
// key, as an ordinary member with no workload ratio.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	identity, ok := apierr.RequireIdentity(w, r)
	if !ok {
		return
	}

	var req struct {
		ShareKey string `json:"share_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}
	req.ShareKey = strings.TrimSpace(req.ShareKey)
	if req.ShareKey == "" {
		apierr.Unprocessable(w, "share_key can't be blank")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	group, err := h.Groups.FindByShareKey(ctx, req.ShareKey)
	if err != nil {
		h.ErrLog.ServerError(w, r, "share key lookup failed", err)
		return
	}
	if group == nil {
		apierr.NotFound(w, "no group with that share key")
		return
	}

	unlock := h.Locks.Lock(group.ID)
	defer unlock()

	membership, err := h.Memberships.Create(ctx, models.Membership{
		UserID:  identity.UserID,
		GroupID: group.ID,
		Role:    models.RoleMember,
		Active:  true,
	})
	if err != nil {
		if apierr.RenderFault(w, err) {
			return
		}
		h.ErrLog.ServerError(w, r, "join group failed", err)
		return
	}

	h.Log.Info("user joined group",
		zap.String("group_id", group.ID.Hex()),
		zap.String("user_id", identity.UserID.Hex()))
	httpjson.Created(w, membership)
}
