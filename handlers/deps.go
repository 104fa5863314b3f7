package handlers

import (
	"context"

	"github.com/pocketbase/pocketbase/core"

	"panchayattax/apperr"
	"panchayattax/authz"
	"panchayattax/billing"
	"panchayattax/collections"
	"panchayattax/logger"
	"panchayattax/services"
	"panchayattax/store"
)

// Deps are the collaborators every handler closes over.
type Deps struct {
	Store    *store.Store
	Billing  *billing.Service
	Renderer billing.Renderer
	Policy   *authz.Policy
	Log      *logger.Logger
	DueDays  int
}

type contextKey string

const (
	requestIDKey contextKey = "requestID"
	loggerKey    contextKey = "logger"
)

// requestID returns the id RequestLogger assigned to the request.
func requestID(e *core.RequestEvent) string {
	if id, ok := e.Request.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// logFor returns the request-scoped logger, falling back to the base one.
func (d *Deps) logFor(e *core.RequestEvent) *logger.Logger {
	if l, ok := e.Request.Context().Value(loggerKey).(*logger.Logger); ok {
		return l
	}
	return d.Log
}

func withRequestLogger(ctx context.Context, id string, l *logger.Logger) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, id)
	return context.WithValue(ctx, loggerKey, l)
}

// currentUser maps the authenticated record to an AppUser. PocketBase
// superusers act as super admins; records from other auth collections are
// not application users.
func currentUser(e *core.RequestEvent) *services.AppUser {
	if e.Auth == nil {
		return nil
	}
	if e.Auth.IsSuperuser() {
		return &services.AppUser{
			ID:          e.Auth.Id,
			Email:       e.Auth.Email(),
			DisplayName: "Superuser",
			Role:        services.RoleSuperAdmin,
			Active:      true,
		}
	}
	if e.Auth.Collection().Name != collections.Users {
		return nil
	}
	u := store.DecodeUser(e.Auth)
	return &u
}

// authorize returns the caller when they may perform action.
func (d *Deps) authorize(e *core.RequestEvent, action authz.Action) (*services.AppUser, error) {
	u := currentUser(e)
	if u == nil {
		return nil, apperr.New(apperr.Unauthenticated, "sign in required")
	}
	if !d.Policy.Can(action, u) {
		return nil, apperr.New(apperr.PermissionDenied, "not allowed to "+string(action))
	}
	return u, nil
}

// respondError writes the JSON error envelope. Internal errors are logged
// with their cause; the caller only sees a generic message.
func (d *Deps) respondError(e *core.RequestEvent, err error) error {
	if apperr.KindOf(err) == apperr.Internal {
		d.logFor(e).Error("request failed", err, map[string]interface{}{
			"method": e.Request.Method,
			"path":   e.Request.URL.Path,
		})
	}
	status, body := apperr.ToResponse(err, requestID(e))
	return e.JSON(status, body)
}
