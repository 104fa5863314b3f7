package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"panchayattax/authz"
	"panchayattax/services"
)

// HandleSettingsGet returns a handler that reads the panchayat settings.
func HandleSettingsGet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.ManageSettings); err != nil {
			return d.respondError(e, err)
		}
		s, err := d.Store.GetSettings(e.Request.Context())
		if err != nil {
			return d.respondError(e, err)
		}
		return e.JSON(http.StatusOK, s)
	}
}

// HandleSettingsSave returns a handler that replaces the panchayat settings.
func HandleSettingsSave(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		actor, err := d.authorize(e, authz.ManageSettings)
		if err != nil {
			return d.respondError(e, err)
		}

		var s services.PanchayatSettings
		if err := e.BindBody(&s); err != nil {
			return d.respondError(e, badBody(err))
		}
		saved, err := d.Store.SaveSettings(e.Request.Context(), s)
		if err != nil {
			return d.respondError(e, err)
		}
		d.logFor(e).Info("panchayat settings saved", map[string]interface{}{"by": actor.Email})
		return e.JSON(http.StatusOK, saved)
	}
}
