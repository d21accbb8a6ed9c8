// internal/app/features/memberships/changerole.go
package memberships

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/policy/permit"
	"github.com/dalemusser/kajishare/internal/app/policy/roleguard"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/app/system/httpjson"
	"github.com/dalemusser/kajishare/internal/app/system/timeouts"
	"github.com/dalemusser/kajishare/internal/domain/fault"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleChangeRole is the dedicated role-change endpoint. Admins of
// the membership's group only. Changing to the role the membership
// already has is a no-op success. Demoting the group's only active
// admin is refused.
func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.NotFound(w, "membership not found")
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}
	newRole := models.Role(req.Role)
	if !newRole.Valid() {
		apierr.Unprocessable(w, "Invalid role. Must be 'admin' or 'member'")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	membership, err := h.Memberships.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "membership not found")
			return
		}
		h.ErrLog.ServerError(w, r, "load membership failed", err)
		return
	}

	identity, _ := auth.CurrentIdentity(r)
	decision, err := permit.Evaluate(ctx, h.Memberships, identity, membership.GroupID, permit.TierAdmin)
	if err != nil {
		h.ErrLog.ServerError(w, r, "permission check failed", err)
		return
	}
	if apierr.RenderDecision(w, decision) {
		return
	}

	unlock := h.Locks.Lock(membership.GroupID)
	defer unlock()

	// Reload inside the serialized section so the demotion guard sees
	// the current role, not a pre-lock snapshot.
	membership, err = h.Memberships.GetByID(ctx, membership.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "membership not found")
			return
		}
		h.ErrLog.ServerError(w, r, "reload membership failed", err)
		return
	}

	if membership.Role == newRole {
		httpjson.OK(w, map[string]string{"message": "Role is already " + string(newRole)})
		return
	}

	if membership.Role == models.RoleAdmin && newRole == models.RoleMember {
		allowed, err := roleguard.CanDemoteOrRemove(ctx, h.Memberships, membership)
		if err != nil {
			h.ErrLog.ServerError(w, r, "admin count failed", err)
			return
		}
		if !allowed {
			apierr.RenderFault(w, fault.ErrLastAdmin)
			return
		}
	}

	if err := h.Memberships.SetRole(ctx, membership.ID, newRole); err != nil {
		h.ErrLog.ServerError(w, r, "change role failed", err)
		return
	}

	h.Log.Info("membership role changed",
		zap.String("membership_id", membership.ID.Hex()),
		zap.String("group_id", membership.GroupID.Hex()),
		zap.String("from", string(membership.Role)),
		zap.String("to", string(newRole)),
		zap.String("by", identity.UserID.Hex()))
	httpjson.OK(w, map[string]string{"message": "Role successfully changed to " + string(newRole)})
}
