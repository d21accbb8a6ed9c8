// internal/app/features/memberships/update.go
package memberships

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/policy/permit"
	"github.com/dalemusser/kajishare/internal/app/policy/roleguard"
	"github.com/dalemusser/kajishare/internal/app/policy/workload"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/app/system/httpjson"
	"github.com/dalemusser/kajishare/internal/app/system/timeouts"
	"github.com/dalemusser/kajishare/internal/domain/fault"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleUpdate changes a membership's workload ratio or active flag.
// Admins of the membership's group only. Role changes go through the
// dedicated change_role endpoint; a role field here is ignored.
//
// An absent workload_ratio keeps the current value; an explicit null
// clears it. Deactivating the group's only active admin is refused.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.NotFound(w, "membership not found")
		return
	}

	var body struct {
		WorkloadRatio json.RawMessage `json:"workload_ratio"`
		Active        *bool           `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
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

	// Reload inside the serialized section so the merge and the role
	// guard work from the current record, not a pre-lock snapshot.
	membership, err = h.Memberships.GetByID(ctx, membership.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "membership not found")
			return
		}
		h.ErrLog.ServerError(w, r, "reload membership failed", err)
		return
	}

	ratio := membership.WorkloadRatio
	if body.WorkloadRatio != nil {
		ratio = nil
		if err := json.Unmarshal(body.WorkloadRatio, &ratio); err != nil {
			apierr.Unprocessable(w, "workload_ratio must be a number or null")
			return
		}
	}
	active := membership.Active
	if body.Active != nil {
		active = *body.Active
	}

	if membership.Active && !active {
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

	violation, err := workload.Check(ctx, h.Memberships, membership.GroupID, ratio, &membership.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "workload check failed", err)
		return
	}
	if violation != nil && (active || violation.Kind != workload.SumInvalid) {
		apierr.RenderFault(w, violation.Err())
		return
	}

	if err := h.Memberships.UpdateRatioAndActive(ctx, membership.ID, ratio, active); err != nil {
		h.ErrLog.ServerError(w, r, "update membership failed", err)
		return
	}

	updated, err := h.Memberships.GetByID(ctx, membership.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "reload membership failed", err)
		return
	}

	h.Log.Info("membership updated",
		zap.String("membership_id", membership.ID.Hex()),
		zap.String("group_id", membership.GroupID.Hex()),
		zap.String("by", identity.UserID.Hex()))
	httpjson.OK(w, updated)
}
