// internal/app/features/groups/create.go
package groups

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/system/httpjson"
	"github.com/dalemusser/kajishare/internal/app/system/sanitize"
	"github.com/dalemusser/kajishare/internal/app/system/timeouts"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"go.uber.org/zap"
)

const maxGroupNameLen = 100

type groupPayload struct {
	Name        string `json:"name"`
	AssignMode  string `json:"assign_mode"`
	BalanceType string `json:"balance_type"`
	Active      *bool  `json:"active,omitempty"`
}

func (p *groupPayload) normalize() (models.AssignMode, models.BalanceType, []string) {
	p.Name = sanitize.Text(p.Name)

	mode := models.AssignMode(p.AssignMode)
	if p.AssignMode == "" {
		mode = models.AssignEqual
	}
	balance := models.BalanceType(p.BalanceType)
	if p.BalanceType == "" {
		balance = models.BalancePoint
	}

	var errs []string
	if p.Name == "" {
		errs = append(errs, "name can't be blank")
	}
	if len([]rune(p.Name)) > maxGroupNameLen {
		errs = append(errs, "name is too long (maximum is 100 characters)")
	}
	if !mode.Valid() {
		errs = append(errs, "assign_mode is not included in the list")
	}
	if !balance.Valid() {
		errs = append(errs, "balance_type is not included in the list")
	}
	return mode, balance, errs
}

// HandleCreate creates a group and makes the caller its first admin.
// The share key is generated server-side and returned in the response.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := apierr.RequireIdentity(w, r)
	if !ok {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	group, err := h.Groups.Create(ctx, models.Group{
		Name:        req.Name,
		AssignMode:  mode,
		BalanceType: balance,
		Active:      true,
	})
	if err != nil {
		h.ErrLog.ServerError(w, r, "create group failed", err)
		return
	}

	// The creator must end up an admin or the group is orphaned with
	// no one able to manage it.
	if _, err := h.Memberships.Create(ctx, models.Membership{
		UserID:  identity.UserID,
		GroupID: group.ID,
		Role:    models.RoleAdmin,
		Active:  true,
	}); err != nil {
		if derr := h.Groups.Delete(ctx, group.ID); derr != nil {
			h.Log.Error("orphaned group cleanup failed",
				zap.String("group_id", group.ID.Hex()),
				zap.Error(derr))
		}
		h.ErrLog.ServerError(w, r, "create admin membership failed", err)
		return
	}

	h.Log.Info("group created",
		zap.String("group_id", group.ID.Hex()),
		zap.String("creator_id", identity.UserID.Hex()))
	httpjson.Created(w, group)
}
