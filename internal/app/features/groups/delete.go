// internal/app/features/groups/delete.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/policy/permit"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDestroy deletes a group and everything hanging off it: tasks,
// their assignments, those assignments' evaluations, and finally the
// memberships. Admins only. Runs under the group lock so no membership
// mutation interleaves with the teardown.
func (h *Handler) HandleDestroy(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		apierr.NotFound(w, "group not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	identity, _ := auth.CurrentIdentity(r)
	decision, err := permit.Evaluate(ctx, h.Memberships, identity, id, permit.TierAdmin)
	if err != nil {
		h.ErrLog.ServerError(w, r, "permission check failed", err)
		return
	}
	if apierr.RenderDecision(w, decision) {
		return
	}

	unlock := h.Locks.Lock(id)
	defer unlock()

	taskIDs, err := h.Tasks.DeleteByGroup(ctx, id)
	if err != nil {
		h.ErrLog.ServerError(w, r, "delete group tasks failed", err)
		return
	}
	assignmentIDs, err := h.Assignments.DeleteByTasks(ctx, taskIDs)
	if err != nil {
		h.ErrLog.ServerError(w, r, "delete group assignments failed", err)
		return
	}
	if _, err := h.Evaluations.DeleteByAssignments(ctx, assignmentIDs); err != nil {
		h.ErrLog.ServerError(w, r, "delete group evaluations failed", err)
		return
	}
	if _, err := h.Memberships.DeleteByGroup(ctx, id); err != nil {
		h.ErrLog.ServerError(w, r, "delete group memberships failed", err)
		return
	}
	if err := h.Groups.Delete(ctx, id); err != nil {
		h.ErrLog.ServerError(w, r, "delete group failed", err)
		return
	}

	h.Log.Info("group deleted",
		zap.String("group_id", id.Hex()),
		zap.String("by", identity.UserID.Hex()),
		zap.Int("tasks", len(taskIDs)),
		zap.Int("assignments", len(assignmentIDs)))
	w.WriteHeader(http.StatusNoContent)
}
