// internal/app/features/memberships/create.go
package memberships

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/policy/permit"
	"github.com/dalemusser/kajishare/internal/app/policy/workload"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/app/system/httpjson"
	"github.com/dalemusser/kajishare/internal/app/system/timeouts"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type createPayload struct {
	UserID        string   `json:"user_id"`
	GroupID       string   `json:"group_id"`
	Role          string   `json:"role"`
	WorkloadRatio *float64 `json:"workload_ratio"`
	Active        *bool    `json:"active"`
}

// HandleCreate adds a user to a group. Admins of the target group
// only. The workload policy runs under the group lock so two
// concurrent creates cannot both see room in the ratio sum.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}

	groupID, err := primitive.ObjectIDFromHex(req.GroupID)
	if err != nil {
		apierr.Unprocessable(w, "group_id is required")
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		apierr.Unprocessable(w, "user_id is required")
		return
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		apierr.Unprocessable(w, "role is not included in the list")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	identity, _ := auth.CurrentIdentity(r)
	decision, err := permit.Evaluate(ctx, h.Memberships, identity, groupID, permit.TierAdmin)
	if err != nil {
		h.ErrLog.ServerError(w, r, "permission check failed", err)
		return
	}
	if apierr.RenderDecision(w, decision) {
		return
	}

	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.Unprocessable(w, "user does not exist")
			return
		}
		h.ErrLog.ServerError(w, r, "load user failed", err)
		return
	}

	unlock := h.Locks.Lock(groupID)
	defer unlock()

	violation, err := workload.Check(ctx, h.Memberships, groupID, req.WorkloadRatio, nil)
	if err != nil {
		h.ErrLog.ServerError(w, r, "workload check failed", err)
		return
	}
	// Inactive memberships do not participate in the ratio sum, so only
	// the range and precision rules apply to them.
	if violation != nil && (active || violation.Kind != workload.SumInvalid) {
		apierr.RenderFault(w, violation.Err())
		return
	}

	membership, err := h.Memberships.Create(ctx, models.Membership{
		UserID:        userID,
		GroupID:       groupID,
		Role:          role,
		WorkloadRatio: req.WorkloadRatio,
		Active:        active,
	})
	if err != nil {
		if apierr.RenderFault(w, err) {
			return
		}
		h.ErrLog.ServerError(w, r, "create membership failed", err)
		return
	}

	h.Log.Info("membership created",
		zap.String("membership_id", membership.ID.Hex()),
		zap.String("group_id", groupID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.String("role", string(role)),
		zap.String("by", identity.UserID.Hex()))
	httpjson.Created(w, membership)
}
