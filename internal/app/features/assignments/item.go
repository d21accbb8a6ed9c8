// internal/app/features/assignments/item.go
package assignments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/policy/permit"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/app/system/httpjson"
	"github.com/dalemusser/kajishare/internal/app/system/sanitize"
	"github.com/dalemusser/kajishare/internal/app/system/timeouts"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// loadAndPermit resolves the assignment from the URL and evaluates the
// caller's permission against the owning group, reached through the
// assignment's task.
func (h *Handler) loadAndPermit(ctx context.Context, w http.ResponseWriter, r *http.Request, tier permit.Tier) (models.Assignment, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.NotFound(w, "assignment not found")
		return models.Assignment{}, false
	}

	assignment, err := h.Assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "assignment not found")
			return models.Assignment{}, false
		}
		h.ErrLog.ServerError(w, r, "load assignment failed", err)
		return models.Assignment{}, false
	}

	task, err := h.Tasks.GetByID(ctx, assignment.TaskID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "load assignment task failed", err)
		return models.Assignment{}, false
	}

	identity, _ := auth.CurrentIdentity(r)
	decision, err := permit.Evaluate(ctx, h.Memberships, identity, task.GroupID, tier)
	if err != nil {
		h.ErrLog.ServerError(w, r, "permission check failed", err)
		return models.Assignment{}, false
	}
	if apierr.RenderDecision(w, decision) {
		return models.Assignment{}, false
	}
	return assignment, true
}

// HandleShow returns a single assignment. Members only.
func (h *Handler) HandleShow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	assignment, ok := h.loadAndPermit(ctx, w, r, permit.TierMember)
	if !ok {
		return
	}
	httpjson.OK(w, assignment)
}

// HandleUpdate changes an assignment's due date, comment, status or
// completed date. Any member of the group may update, so a member can
// mark their own work done without an admin.
//
// Fields absent from the payload keep their stored values; an explicit
// null completed_date clears it and reverts the status.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	assignment, ok := h.loadAndPermit(ctx, w, r, permit.TierMember)
	if !ok {
		return
	}

	var req struct {
		DueDate       *time.Time      `json:"due_date"`
		CompletedDate json.RawMessage `json:"completed_date"`
		Comment       *string         `json:"comment"`
		Status        *string         `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}

	if req.DueDate != nil {
		assignment.DueDate = *req.DueDate
	}
	if req.CompletedDate != nil {
		var completed *time.Time
		if err := json.Unmarshal(req.CompletedDate, &completed); err != nil {
			apierr.Unprocessable(w, "completed_date must be a timestamp or null")
			return
		}
		assignment.CompletedDate = completed
	}
	if req.Comment != nil {
		assignment.Comment = sanitize.Text(*req.Comment)
	}
	if req.Status != nil {
		status := models.AssignmentStatus(*req.Status)
		if !status.Valid() {
			apierr.Unprocessable(w, "status is not included in the list")
			return
		}
		assignment.Status = status
	}

	if assignment.DueDate.IsZero() {
		apierr.Unprocessable(w, "due_date can't be blank")
		return
	}
	if assignment.CompletedDate != nil && assignment.CompletedDate.Before(assignment.DueDate) {
		apierr.Unprocessable(w, "completed_date must be on or after the due date")
		return
	}
	assignment.SyncStatus()

	if err := h.Assignments.Update(ctx, assignment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "assignment not found")
			return
		}
		h.ErrLog.ServerError(w, r, "update assignment failed", err)
		return
	}

	updated, err := h.Assignments.GetByID(ctx, assignment.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "reload assignment failed", err)
		return
	}
	httpjson.OK(w, updated)
}

// HandleDestroy deletes an assignment and its evaluations. Admins only.
func (h *Handler) HandleDestroy(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	assignment, ok := h.loadAndPermit(ctx, w, r, permit.TierAdmin)
	if !ok {
		return
	}

	if _, err := h.Evaluations.DeleteByAssignments(ctx, []primitive.ObjectID{assignment.ID}); err != nil {
		h.ErrLog.ServerError(w, r, "delete assignment evaluations failed", err)
		return
	}
	if err := h.Assignments.Delete(ctx, assignment.ID); err != nil {
		h.ErrLog.ServerError(w, r, "delete assignment failed", err)
		return
	}

	h.Log.Info("assignment deleted",
		zap.String("assignment_id", assignment.ID.Hex()),
		zap.String("task_id", assignment.TaskID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
