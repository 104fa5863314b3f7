package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"panchayattax/authz"
	"panchayattax/billing"
	"panchayattax/logger"
	"panchayattax/services"
	"panchayattax/store"
	"panchayattax/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app core.App, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// memoryObjects is an in-memory object store.
type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryObjects) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return nil
}

func (m *memoryObjects) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://files.test/%s?expires=%d", key, int(ttl.Seconds())), nil
}

func (m *memoryObjects) URL(key string) string {
	return "s3://panchayat-bills/" + key
}

type testEnv struct {
	app     core.App
	deps    *Deps
	objects *memoryObjects
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	app := testhelpers.NewTestApp(t)

	renderer, err := services.NewBillRenderer("")
	if err != nil {
		t.Fatalf("NewBillRenderer: %v", err)
	}
	st := store.New(app)
	policy := authz.NewPolicy("")
	log := logger.Nop()
	objects := &memoryObjects{}

	return &testEnv{
		app:     app,
		objects: objects,
		deps: &Deps{
			Store:    st,
			Renderer: renderer,
			Policy:   policy,
			Log:      log,
			DueDays:  30,
			Billing: billing.NewService(st, renderer, objects, policy, log, billing.Options{
				Prefix:        "LONI",
				VerifyBaseURL: "http://localhost:8090/verify",
				DueDays:       30,
				SignedURLTTL:  15 * time.Minute,
			}),
		},
	}
}

// request describes one handler call.
type request struct {
	method string
	target string
	body   string
	auth   *core.Record
	path   map[string]string
	header map[string]string
}

func (env *testEnv) do(t *testing.T, handler func(*Deps) func(*core.RequestEvent) error, r request) *httptest.ResponseRecorder {
	t.Helper()
	if r.method == "" {
		r.method = http.MethodGet
	}
	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	req := httptest.NewRequest(r.method, r.target, body)
	if r.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.header {
		req.Header.Set(k, v)
	}
	for k, v := range r.path {
		req.SetPathValue(k, v)
	}

	rec := httptest.NewRecorder()
	e := newTestRequestEvent(env.app, req, rec)
	e.Auth = r.auth
	if err := handler(env.deps)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

// seedBillable creates settings and one residential property with two 2024
// records, one paid and one unpaid. It returns the property id.
func seedBillable(t *testing.T, app core.App) string {
	t.Helper()
	testhelpers.CreateTestSettings(t, app, "Gram Panchayat Loni", map[string]float64{
		"Residential": 0.5,
		"Commercial":  1.2,
	})
	prop := testhelpers.CreateTestProperty(t, app, "Ramesh Kumar", "H-12", "Residential", 1000)
	testhelpers.CreateTestTaxRecord(t, app, prop.Id, 1, "Property", 2024, 500, 500, "Paid")
	testhelpers.CreateTestTaxRecord(t, app, prop.Id, 2, "Water", 2024, 200, 0, "Unpaid")
	return prop.Id
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, rec.Body.String())
	}
}

// errorCode returns the code of a JSON error envelope.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	decodeJSON(t, rec, &body)
	if body.Success {
		t.Fatalf("expected an error envelope, got %q", rec.Body.String())
	}
	return body.Error.Code
}
