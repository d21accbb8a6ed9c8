// internal/app/features/memberships/list.go
package memberships

import (
	"context"
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
)

// HandleIndex lists memberships. With a group_id query parameter the
// caller must be a member of that group; without one the listing is
// scoped to every group the caller actively belongs to, so no check is
// needed.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	identity, ok := apierr.RequireIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var list []models.Membership
	if raw := r.URL.Query().Get("group_id"); raw != "" {
		groupID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			apierr.NotFound(w, "group not found")
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
		list, err = h.Memberships.ListByGroup(ctx, groupID)
		if err != nil {
			h.ErrLog.ServerError(w, r, "list memberships failed", err)
			return
		}
	} else {
		groupIDs, err := h.Memberships.ActiveGroupIDs(ctx, identity.UserID)
		if err != nil {
			h.ErrLog.ServerError(w, r, "resolve caller groups failed", err)
			return
		}
		list, err = h.Memberships.ListByGroups(ctx, groupIDs)
		if err != nil {
			h.ErrLog.ServerError(w, r, "list memberships failed", err)
			return
		}
	}

	if list == nil {
		list = []models.Membership{}
	}
	httpjson.OK(w, list)
}

// HandleShow returns a single membership. Visible to members of the
// same group.
func (h *Handler) HandleShow(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.NotFound(w, "membership not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
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
	decision, err := permit.Evaluate(ctx, h.Memberships, identity, membership.GroupID, permit.TierMember)
	if err != nil {
		h.ErrLog.ServerError(w, r, "permission check failed", err)
		return
	}
	if apierr.RenderDecision(w, decision) {
		return
	}
	httpjson.OK(w, membership)
}
