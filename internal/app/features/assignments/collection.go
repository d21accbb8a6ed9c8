// internal/app/features/assignments/collection.go
package assignments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/policy/permit"
	assignmentstore "github.com/dalemusser/kajishare/internal/app/store/assignments"
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

type assignmentPayload struct {
	MembershipID  string     `json:"membership_id,omitempty"`
	DueDate       *time.Time `json:"due_date"`
	CompletedDate *time.Time `json:"completed_date"`
	Comment       string     `json:"comment"`
	Status        string     `json:"status"`
}

func (p *assignmentPayload) validate() []string {
	p.Comment = sanitize.Text(p.Comment)

	var errs []string
	if p.DueDate == nil || p.DueDate.IsZero() {
		errs = append(errs, "due_date can't be blank")
	}
	if p.Status != "" && !models.AssignmentStatus(p.Status).Valid() {
		errs = append(errs, "status is not included in the list")
	}
	if p.CompletedDate != nil && p.DueDate != nil && p.CompletedDate.Before(*p.DueDate) {
		errs = append(errs, "completed_date must be on or after the due date")
	}
	return errs
}

// loadTaskAndPermit resolves the task from the URL and evaluates the
// caller's permission against the task's group.
func (h *Handler) loadTaskAndPermit(ctx context.Context, w http.ResponseWriter, r *http.Request, tier permit.Tier) (models.Task, permit.Decision, bool) {
	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "taskID"))
	if err != nil {
		apierr.NotFound(w, "task not found")
		return models.Task{}, permit.Decision{}, false
	}

	task, err := h.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "task not found")
			return models.Task{}, permit.Decision{}, false
		}
		h.ErrLog.ServerError(w, r, "load task failed", err)
		return models.Task{}, permit.Decision{}, false
	}

	identity, _ := auth.CurrentIdentity(r)
	decision, err := permit.Evaluate(ctx, h.Memberships, identity, task.GroupID, tier)
	if err != nil {
		h.ErrLog.ServerError(w, r, "permission check failed", err)
		return models.Task{}, permit.Decision{}, false
	}
	if apierr.RenderDecision(w, decision) {
		return models.Task{}, permit.Decision{}, false
	}
	return task, decision, true
}

// HandleIndex lists a task's assignments. Members only.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, _, ok := h.loadTaskAndPermit(ctx, w, r, permit.TierMember)
	if !ok {
		return
	}

	list, err := h.Assignments.ListByTask(ctx, task.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "list assignments failed", err)
		return
	}
	if list == nil {
		list = []models.Assignment{}
	}
	httpjson.OK(w, list)
}

// HandleCreate assigns a task to a membership. Admins only. The target
// membership must belong to the same group as the task; the creating
// admin's membership is stamped as assigned_by.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, decision, ok := h.loadTaskAndPermit(ctx, w, r, permit.TierAdmin)
	if !ok {
		return
	}

	var req assignmentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}

	errs := req.validate()
	membershipID, err := primitive.ObjectIDFromHex(req.MembershipID)
	if err != nil {
		errs = append(errs, "membership_id is invalid")
	}
	if len(errs) > 0 {
		apierr.Unprocessable(w, errs...)
		return
	}

	target, err := h.Memberships.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.Unprocessable(w, "membership does not exist")
			return
		}
		h.ErrLog.ServerError(w, r, "load membership failed", err)
		return
	}
	if target.GroupID != task.GroupID {
		apierr.Unprocessable(w, "membership does not belong to this task's group")
		return
	}

	adminMembershipID := decision.Membership.ID
	assignment := models.Assignment{
		TaskID:        task.ID,
		MembershipID:  target.ID,
		AssignedByID:  &adminMembershipID,
		DueDate:       *req.DueDate,
		CompletedDate: req.CompletedDate,
		Comment:       req.Comment,
		Status:        models.AssignmentStatus(req.Status),
	}

	created, err := h.Assignments.Create(ctx, assignment)
	if err != nil {
		if errors.Is(err, assignmentstore.ErrDuplicateAssignment) {
			apierr.Unprocessable(w, err.Error())
			return
		}
		h.ErrLog.ServerError(w, r, "create assignment failed", err)
		return
	}

	h.Log.Info("assignment created",
		zap.String("assignment_id", created.ID.Hex()),
		zap.String("task_id", task.ID.Hex()),
		zap.String("membership_id", target.ID.Hex()))
	httpjson.Created(w, created)
}
