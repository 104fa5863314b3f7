package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"panchayattax/apperr"
	"panchayattax/authz"
	"panchayattax/services"
)

type roleRequest struct {
	Role   services.Role `json:"role"`
	Active *bool         `json:"active"`
}

type userView struct {
	ID          string        `json:"id"`
	Email       string        `json:"email"`
	DisplayName string        `json:"displayName"`
	Role        services.Role `json:"role"`
	Active      bool          `json:"active"`
}

func toUserView(u services.AppUser) userView {
	return userView{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Role: u.Role, Active: u.Active}
}

// HandleMe returns the caller's own identity and role.
func HandleMe(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		u := currentUser(e)
		if u == nil {
			return d.respondError(e, apperr.New(apperr.Unauthenticated, "sign in required"))
		}
		if d.Policy.IsSuperAdmin(u) {
			u.Role = services.RoleSuperAdmin
		}
		return e.JSON(http.StatusOK, toUserView(*u))
	}
}

// HandleUserRole returns a handler that changes a user's role and active
// flag. Nobody may change their own role.
func HandleUserRole(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		actor, err := d.authorize(e, authz.ManageUsers)
		if err != nil {
			return d.respondError(e, err)
		}

		var req roleRequest
		if err := e.BindBody(&req); err != nil {
			return d.respondError(e, badBody(err))
		}

		ctx := e.Request.Context()
		id := e.Request.PathValue("id")
		if id == actor.ID {
			return d.respondError(e, apperr.New(apperr.InvalidArgument, "you cannot change your own role"))
		}
		current, err := d.Store.GetUser(ctx, id)
		if err != nil {
			return d.respondError(e, err)
		}
		active := current.Active
		if req.Active != nil {
			active = *req.Active
		}

		updated, err := d.Store.SetUserRole(ctx, id, req.Role, active)
		if err != nil {
			return d.respondError(e, err)
		}
		d.logFor(e).Info("user role changed", map[string]interface{}{
			"user_id": id,
			"role":    updated.Role,
			"active":  updated.Active,
			"by":      actor.Email,
		})
		return e.JSON(http.StatusOK, toUserView(updated))
	}
}
