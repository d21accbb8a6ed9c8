// internal/app/features/evaluations/evaluations.go
package evaluations

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
	"github.com/dalemusser/kajishare/internal/domain/fault"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxFeedbackLen = 100

type evaluationPayload struct {
	AssignmentID string `json:"assignment_id,omitempty"`
	Score        int    `json:"score"`
	Feedback     string `json:"feedback"`
}

func (p *evaluationPayload) validate() []string {
	p.Feedback = sanitize.Text(p.Feedback)

	var errs []string
	if p.Score < 1 || p.Score > 5 {
		errs = append(errs, "score must be between 1 and 5")
	}
	if len([]rune(p.Feedback)) > maxFeedbackLen {
		errs = append(errs, "feedback is too long (maximum is 100 characters)")
	}
	return errs
}

// groupForAssignment walks assignment -> task -> group.
func (h *Handler) groupForAssignment(ctx context.Context, assignmentID primitive.ObjectID) (models.Assignment, primitive.ObjectID, error) {
	assignment, err := h.Assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return models.Assignment{}, primitive.NilObjectID, err
	}
	task, err := h.Tasks.GetByID(ctx, assignment.TaskID)
	if err != nil {
		return models.Assignment{}, primitive.NilObjectID, err
	}
	return assignment, task.GroupID, nil
}

// loadAndPermit resolves the evaluation from the URL and evaluates the
// caller's permission against the owning group.
func (h *Handler) loadAndPermit(ctx context.Context, w http.ResponseWriter, r *http.Request, tier permit.Tier) (models.Evaluation, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.NotFound(w, "evaluation not found")
		return models.Evaluation{}, false
	}

	evaluation, err := h.Evaluations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "evaluation not found")
			return models.Evaluation{}, false
		}
		h.ErrLog.ServerError(w, r, "load evaluation failed", err)
		return models.Evaluation{}, false
	}

	_, groupID, err := h.groupForAssignment(ctx, evaluation.AssignmentID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "resolve evaluation group failed", err)
		return models.Evaluation{}, false
	}

	identity, _ := auth.CurrentIdentity(r)
	decision, err := permit.Evaluate(ctx, h.Memberships, identity, groupID, tier)
	if err != nil {
		h.ErrLog.ServerError(w, r, "permission check failed", err)
		return models.Evaluation{}, false
	}
	if apierr.RenderDecision(w, decision) {
		return models.Evaluation{}, false
	}
	return evaluation, true
}

// HandleIndex lists the evaluations in the caller's active groups.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	identity, ok := apierr.RequireIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	groupIDs, err := h.Memberships.ActiveGroupIDs(ctx, identity.UserID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "resolve caller groups failed", err)
		return
	}
	taskIDs, err := h.Tasks.IDsByGroups(ctx, groupIDs)
	if err != nil {
		h.ErrLog.ServerError(w, r, "resolve group tasks failed", err)
		return
	}
	assignmentIDs, err := h.Assignments.IDsByTasks(ctx, taskIDs)
	if err != nil {
		h.ErrLog.ServerError(w, r, "resolve task assignments failed", err)
		return
	}
	list, err := h.Evaluations.ListByAssignments(ctx, assignmentIDs)
	if err != nil {
		h.ErrLog.ServerError(w, r, "list evaluations failed", err)
		return
	}
	if list == nil {
		list = []models.Evaluation{}
	}
	httpjson.OK(w, list)
}

// HandleShow returns a single evaluation. Members only.
func (h *Handler) HandleShow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	evaluation, ok := h.loadAndPermit(ctx, w, r, permit.TierMember)
	if !ok {
		return
	}
	httpjson.OK(w, evaluation)
}

// HandleCreate scores a completed assignment. Members of the owning
// group only; the evaluator is the caller. Scoring an assignment that
// is not completed, or scoring the same assignment twice, is refused.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := apierr.RequireIdentity(w, r)
	if !ok {
		return
	}

	var req evaluationPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}
	assignmentID, err := primitive.ObjectIDFromHex(req.AssignmentID)
	if err != nil {
		apierr.Unprocessable(w, "assignment_id is required")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		apierr.Unprocessable(w, errs...)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	assignment, groupID, err := h.groupForAssignment(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "assignment not found")
			return
		}
		h.ErrLog.ServerError(w, r, "resolve assignment failed", err)
		return
	}

	decision, err := permit.Evaluate(ctx, h.Memberships, identity, groupID, permit.TierMember)
	if err != nil {
		h.ErrLog.ServerError(w, r, "permission check failed", err)
		return
	}
	if apierr.RenderDecision(w, decision) {
		return
	}

	if !assignment.Completed() {
		apierr.RenderFault(w, fault.ErrAssignmentNotCompleted)
		return
	}

	evaluation, err := h.Evaluations.Create(ctx, models.Evaluation{
		AssignmentID: assignmentID,
		EvaluatorID:  identity.UserID,
		Score:        req.Score,
		Feedback:     req.Feedback,
	})
	if err != nil {
		if apierr.RenderFault(w, err) {
			return
		}
		h.ErrLog.ServerError(w, r, "create evaluation failed", err)
		return
	}

	h.Log.Info("evaluation created",
		zap.String("evaluation_id", evaluation.ID.Hex()),
		zap.String("assignment_id", assignmentID.Hex()),
		zap.String("evaluator_id", identity.UserID.Hex()))
	httpjson.Created(w, evaluation)
}

// HandleUpdate changes an evaluation's score or feedback. Members of
// the owning group only.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	evaluation, ok := h.loadAndPermit(ctx, w, r, permit.TierMember)
	if !ok {
		return
	}

	var req evaluationPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		apierr.Unprocessable(w, errs...)
		return
	}

	if err := h.Evaluations.Update(ctx, evaluation.ID, req.Score, req.Feedback); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "evaluation not found")
			return
		}
		h.ErrLog.ServerError(w, r, "update evaluation failed", err)
		return
	}

	updated, err := h.Evaluations.GetByID(ctx, evaluation.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, "reload evaluation failed", err)
		return
	}
	httpjson.OK(w, updated)
}

// HandleDestroy deletes an evaluation. Admins of the owning group only.
func (h *Handler) HandleDestroy(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	evaluation, ok := h.loadAndPermit(ctx, w, r, permit.TierAdmin)
	if !ok {
		return
	}

	if err := h.Evaluations.Delete(ctx, evaluation.ID); err != nil {
		h.ErrLog.ServerError(w, r, "delete evaluation failed", err)
		return
	}

	h.Log.Info("evaluation deleted",
		zap.String("evaluation_id", evaluation.ID.Hex()))
	httpjson.OK(w, map[string]any{
		"message":    "Evaluation has been successfully deleted",
		"deleted_at": time.Now().UTC(),
	})
}
