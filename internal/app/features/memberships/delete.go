// internal/app/features/memberships/delete.go
package memberships

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/policy/permit"
	"github.com/dalemusser/kajishare/internal/app/policy/roleguard"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/app/system/timeouts"
	"github.com/dalemusser/kajishare/internal/domain/fault"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleDestroy removes a membership. Admins of the membership's group
// only. Removing the group's only admin is refused; promote someone
// else first.
func (h *Handler) HandleDestroy(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.NotFound(w, "membership not found")
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

	// Reload inside the serialized section: the role or active flag may
	// have changed between the first read and taking the lock, and the
	// guard must see the current record.
	membership, err = h.Memberships.GetByID(ctx, membership.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "membership not found")
			return
		}
		h.ErrLog.ServerError(w, r, "reload membership failed", err)
		return
	}

	allowed, err := roleguard.CanDemoteOrRemove(ctx, h.Memberships, membership)
	if err != nil {
		h.ErrLog.ServerError(w, r, "admin count failed", err)
		return
	}
	if !allowed {
		apierr.RenderFault(w, fault.ErrLastAdmin)
		return
	}

	if err := h.Memberships.Delete(ctx, membership.ID); err != nil {
		h.ErrLog.ServerError(w, r, "delete membership failed", err)
		return
	}

	h.Log.Info("membership deleted",
		zap.String("membership_id", membership.ID.Hex()),
		zap.String("group_id", membership.GroupID.Hex()),
		zap.String("user_id", membership.UserID.Hex()),
		zap.String("by", identity.UserID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
