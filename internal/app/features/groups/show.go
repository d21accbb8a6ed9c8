// internal/app/features/groups/show.go
package groups

import (
	"context"
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

// HandleShow returns a single group. Members only.
func (h *Handler) HandleShow(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		apierr.NotFound(w, "group not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	identity, _ := auth.CurrentIdentity(r)
	decision, err := permit.Evaluate(ctx, h.Memberships, identity, id, permit.TierMember)
	if err != nil {
		h.ErrLog.ServerError(w, r, "permission check failed", err)
		return
	}
	if apierr.RenderDecision(w, decision) {
		return
	}

	group, err := h.Groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierr.NotFound(w, "group not found")
			return
		}
		h.ErrLog.ServerError(w, r, "load group failed", err)
		return
	}
	httpjson.OK(w, group)
}
