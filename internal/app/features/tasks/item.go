// internal/app/features/tasks/item.go
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/policy/permit"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/app/system/httpjson"
	"github.com/dalemusser/kajishare/internal/app/system/timeouts"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// loadAndPermit resolves the task from the URL, then evaluates the
// caller's permission against the task's group. Item endpoints derive
// the group from the task rather than trusting a client-sent group id.
func (h *Handler) loadAndPermit(ctx context.Context, w http.ResponseWriter, r *http.Request, tier permit.Tier) (models.Task, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "taskID"))
	if err != nil {
		apierr.NotFound(w, "task not found")
		return models.Task{}, false
	}

	task, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "task not found")
			return models.Task{}, false
		}
		h.ErrLog.ServerError(w, r, "load task failed", err)
		return models.Task{}, false
	}

	identity, _ := auth.CurrentIdentity(r)
	decision, err := permit.Evaluate(ctx, h.Memberships, identity, task.GroupID, tier)
	if err != nil {
		h.ErrLog.ServerError(w, r, "permission check failed", err)
		return models.Task{}, false
	}
	if apierr.RenderDecision(w, decision) {
		return models.Task{}, false
	}
	return task, true
}

// HandleShow returns a single task. Members only.
func (h *Handler) HandleShow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, ok := h.loadAndPermit(ctx, w, r, permit.TierMember)
	if !ok {
		return
	}
	httpjson.OK(w, task)
}

// HandleUpdate changes a task. Admins only.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, ok := h.loadAndPermit(ctx, w, r, permit.TierAdmin)
	if !ok {
		return
	}

	var req taskPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		apierr.Unprocessable(w, errs...)
		return
	}

	if err := h.Tasks.Update(ctx, task.ID, req.Name, req.Description, req.Point); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "task not found")
			return
		}
		h.ErrLog.ServerError(w, r, "update task failed", err)
		return
	}

	updated, err := h.Tasks.GetByID(ctx, task.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "reload task failed", err)
		return
	}
	httpjson.OK(w, updated)
}

// HandleDestroy deletes a task along with its assignments and their
// evaluations. Admins only.
func (h *Handler) HandleDestroy(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, ok := h.loadAndPermit(ctx, w, r, permit.TierAdmin)
	if !ok {
		return
	}

	assignmentIDs, err := h.Assignments.DeleteByTasks(ctx, []primitive.ObjectID{task.ID})
	if err != nil {
		h.ErrLog.ServerError(w, r, "delete task assignments failed", err)
		return
	}
	if _, err := h.Evaluations.DeleteByAssignments(ctx, assignmentIDs); err != nil {
		h.ErrLog.ServerError(w, r, "delete task evaluations failed", err)
		return
	}
	if err := h.Tasks.Delete(ctx, task.ID); err != nil {
		h.ErrLog.ServerError(w, r, "delete task failed", err)
		return
	}

	h.Log.Info("task deleted",
		zap.String("task_id", task.ID.Hex()),
		zap.String("group_id", task.GroupID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
