// internal/app/features/groups/update.go
package groups

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
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleUpdate changes a group's settings. Admins only. The share key
// is immutable and ignored if present in the payload.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		apierr.NotFound(w, "group not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
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

	var req groupPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}
	mode, balance, errs := req.normalize()
	if len(errs) > 0 {
		apierr.Unprocessable(w, errs...)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	if err := h.Groups.Update(ctx, id, req.Name, mode, balance, active); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "group not found")
			return
		}
		h.ErrLog.ServerError(w, r, "update group failed", err)
		return
	}

	group, err := h.Groups.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.ServerError(w, r, "reload group failed", err)
		return
	}
	httpjson.OK(w, group)
}
