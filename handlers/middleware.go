package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"
)

// AuthCookie is the cookie the dashboard keeps the auth token in.
const AuthCookie = "pb_auth"

// RequestLogger assigns each request an id (reusing X-Request-ID when the
// client sent one), stores a child logger in the request context and logs
// the outcome once the handler returns.
func RequestLogger(d *Deps) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		start := time.Now()

		id := e.Request.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		e.Response.Header().Set("X-Request-ID", id)

		reqLog := d.Log.WithRequestID(id)
		e.Request = e.Request.WithContext(withRequestLogger(e.Request.Context(), id, reqLog))

		err := e.Next()

		status := e.Status()
		if err != nil && status == 0 {
			status = http.StatusInternalServerError
		}
		fields := map[string]interface{}{
			"status":     status,
			"method":     e.Request.Method,
			"path":       e.Request.URL.Path,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  e.Request.RemoteAddr,
		}
		if q := e.Request.URL.RawQuery; q != "" {
			fields["query"] = q
		}

		switch {
		case status >= 500:
			reqLog.Error("request completed", err, fields)
		case status >= 400:
			reqLog.Warn("request completed", fields)
		default:
			reqLog.Info("request completed", fields)
		}
		return err
	}
}

// CookieAuth lets browser requests authenticate with the pb_auth cookie.
// It only fills in the Authorization header when the client sent none, and
// must run before PocketBase loads the auth token.
func CookieAuth() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if e.Request.Header.Get("Authorization") == "" {
			if c, err := e.Request.Cookie(AuthCookie); err == nil && c.Value != "" {
				e.Request.Header.Set("Authorization", c.Value)
			}
		}
		return e.Next()
	}
}
