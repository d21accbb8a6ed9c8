// internal/app/features/tasks/collection.go
package tasks

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/policy/permit"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/app/system/httpjson"
	"github.com/dalemusser/kajishare/internal/app/system/sanitize"
	"github.com/dalemusser/kajishare/internal/app/system/timeouts"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	maxNameLen        = 50
	maxDescriptionLen = 50
)

type taskPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Point       int    `json:"point"`
}

func (p *taskPayload) validate() []string {
	p.Name = sanitize.Text(p.Name)
	p.Description = sanitize.Text(p.Description)

	var errs []string
	if p.Name == "" {
		errs = append(errs, "name can't be blank")
	}
	if len([]rune(p.Name)) > maxNameLen {
		errs = append(errs, "name is too long (maximum is 50 characters)")
	}
	if len([]rune(p.Description)) > maxDescriptionLen {
		errs = append(errs, "description is too long (maximum is 50 characters)")
	}
	if p.Point <= 0 {
		errs = append(errs, "point must be greater than 0")
	}
	return errs
}

// HandleIndex lists a group's tasks. Members only.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		apierr.NotFound(w, "group not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	identity, _ := auth.CurrentIdentity(r)
	decision, err := permit.Evaluate(ctx, h.Memberships, identity, groupID, permit.TierMember)
	if err != nil {
		h.ErrLog.ServerError(w, r, "permission check failed", err)
		return
	}
	if apierr.RenderDecision(w, decision) {
		return
	}

	list, err := h.Tasks.ListByGroup(ctx, groupID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "list tasks failed", err)
		return
	}
	if list == nil {
		list = []models.Task{}
	}
	httpjson.OK(w, list)
}

// HandleCreate adds a task to a group. Admins only.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		apierr.NotFound(w, "group not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
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

	var req taskPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		apierr.Unprocessable(w, errs...)
		return
	}

	task, err := h.Tasks.Create(ctx, models.Task{
		GroupID:     groupID,
		Name:        req.Name,
		Description: req.Description,
		Point:       req.Point,
	})
	if err != nil {
		h.ErrLog.ServerError(w, r, "create task failed", err)
		return
	}

	h.Log.Info("task created",
		zap.String("task_id", task.ID.Hex()),
		zap.String("group_id", groupID.Hex()))
	httpjson.Created(w, task)
}
