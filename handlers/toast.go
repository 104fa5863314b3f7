package handlers

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"
)

// SetToast sets the HX-Trigger response header so the dashboard shows a
// toast. An existing HX-Trigger JSON object is merged rather than replaced.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	payload := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &payload); err != nil {
			log.Warn().Err(err).Msg("toast: existing HX-Trigger is not valid JSON, overwriting")
			payload = map[string]any{}
		}
	}
	payload["showToast"] = map[string]string{"message": message, "type": toastType}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("toast: failed to marshal HX-Trigger JSON")
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))
}

// ErrorToast sets an error toast and tells HTMX not to swap the response
// body into the page.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}
