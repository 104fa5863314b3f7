package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panchayattax/authz"
	"panchayattax/services"
	"panchayattax/testhelpers"
)

func TestPropertyLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := testhelpers.CreateTestUser(t, env.app, "admin@loni.test", "admin", true)

	created := env.do(t, HandlePropertyCreate, request{
		method: http.MethodPost,
		target: "/api/properties",
		body:   `{"ownerName":"Ramesh Kumar","mobile":"9876543210","houseNo":"H-12","propertyType":"Residential","area":1200}`,
		auth:   admin,
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	var p services.Property
	decodeJSON(t, created, &p)
	require.NotEmpty(t, p.ID)

	patched := env.do(t, HandlePropertyUpdate, request{
		method: http.MethodPatch,
		target: "/api/properties/" + p.ID,
		body:   `{"fatherName":"Suresh Kumar","address":"Ward 3"}`,
		auth:   admin,
		path:   map[string]string{"id": p.ID},
	})
	require.Equal(t, http.StatusOK, patched.Code, patched.Body.String())
	var updated services.Property
	decodeJSON(t, patched, &updated)
	assert.Equal(t, "Suresh Kumar", updated.FatherName)
	assert.Equal(t, "Ramesh Kumar", updated.OwnerName, "unset fields are kept")
	assert.Equal(t, 1200.0, updated.Area)

	list := env.do(t, HandlePropertyList, request{target: "/api/properties", auth: admin})
	require.Equal(t, http.StatusOK, list.Code)
	var l propertyList
	decodeJSON(t, list, &l)
	assert.Equal(t, 1, l.Total)

	deleted := env.do(t, HandlePropertyDelete, request{
		method: http.MethodDelete,
		target: "/api/properties/" + p.ID,
		auth:   admin,
		path:   map[string]string{"id": p.ID},
	})
	assert.Equal(t, http.StatusNoContent, deleted.Code)

	gone := env.do(t, HandlePropertyGet, request{
		target: "/api/properties/" + p.ID,
		auth:   admin,
		path:   map[string]string{"id": p.ID},
	})
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestPropertyCreate_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	admin := testhelpers.CreateTestUser(t, env.app, "admin@loni.test", "admin", true)

	rec := env.do(t, HandlePropertyCreate, request{
		method: http.MethodPost,
		target: "/api/properties",
		body:   `{"ownerName":"","mobile":"12345","houseNo":"H-1","propertyType":"Temple","area":-3}`,
		auth:   admin,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error struct {
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	decodeJSON(t, rec, &body)
	for _, field := range []string{"ownerName", "mobile", "propertyType", "area"} {
		assert.Contains(t, body.Error.Fields, field)
	}

	props, err := env.deps.Store.ListProperties(t.Context())
	require.NoError(t, err)
	assert.Empty(t, props, "nothing is saved on validation failure")
}

func TestPropertyWrites_RequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	viewer := testhelpers.CreateTestUser(t, env.app, "viewer@loni.test", "viewer", true)

	rec := env.do(t, HandlePropertyCreate, request{
		method: http.MethodPost,
		target: "/api/properties",
		body:   `{"ownerName":"X","houseNo":"1","propertyType":"Residential"}`,
		auth:   viewer,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	list := env.do(t, HandlePropertyList, request{target: "/api/properties", auth: viewer})
	assert.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), `"items":[]`)
}

func TestTaxAssess_DefaultsFromRate(t *testing.T) {
	env := newTestEnv(t)
	testhelpers.CreateTestSettings(t, env.app, "Gram Panchayat Loni", map[string]float64{"Residential": 0.5})
	prop := testhelpers.CreateTestProperty(t, env.app, "Ramesh Kumar", "H-12", "Residential", 1000)
	admin := testhelpers.CreateTestUser(t, env.app, "admin@loni.test", "admin", true)

	rec := env.do(t, HandleTaxAssess, request{
		method: http.MethodPost,
		target: "/api/properties/" + prop.Id + "/taxes",
		body:   `{"taxType":"Property","assessmentYear":2025}`,
		auth:   admin,
		path:   map[string]string{"id": prop.Id},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tax services.TaxRecord
	decodeJSON(t, rec, &tax)
	assert.Equal(t, 500.0, tax.AssessedAmount)
	assert.Equal(t, 500.0, tax.BaseAmount)
	assert.Equal(t, services.StatusUnpaid, tax.Status)

	explicit := env.do(t, HandleTaxAssess, request{
		method: http.MethodPost,
		target: "/api/properties/" + prop.Id + "/taxes",
		body:   `{"taxType":"Water","assessmentYear":2025,"assessedAmount":0}`,
		auth:   admin,
		path:   map[string]string{"id": prop.Id},
	})
	require.Equal(t, http.StatusCreated, explicit.Code, explicit.Body.String())
	decodeJSON(t, explicit, &tax)
	assert.Equal(t, 0.0, tax.AssessedAmount)
	assert.Equal(t, services.StatusPaid, tax.Status, "nothing assessed means nothing owed")
}

func TestTaxAssess_NeedsSettingsForDefault(t *testing.T) {
	env := newTestEnv(t)
	prop := testhelpers.CreateTestProperty(t, env.app, "Ramesh Kumar", "H-12", "Residential", 1000)
	admin := testhelpers.CreateTestUser(t, env.app, "admin@loni.test", "admin", true)

	rec := env.do(t, HandleTaxAssess, request{
		method: http.MethodPost,
		target: "/api/properties/" + prop.Id + "/taxes",
		body:   `{"taxType":"Property","assessmentYear":2025}`,
		auth:   admin,
		path:   map[string]string{"id": prop.Id},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaxPayment(t *testing.T) {
	env := newTestEnv(t)
	prop := testhelpers.CreateTestProperty(t, env.app, "Ramesh Kumar", "H-12", "Residential", 1000)
	rec := testhelpers.CreateTestTaxRecord(t, env.app, prop.Id, 1, "Property", 2025, 500, 0, "Unpaid")
	admin := testhelpers.CreateTestUser(t, env.app, "admin@loni.test", "admin", true)

	pay := func(body string) *services.TaxRecord {
		res := env.do(t, HandleTaxPayment, request{
			method: http.MethodPost,
			target: "/api/taxes/" + rec.Id + "/payments",
			body:   body,
			auth:   admin,
			path:   map[string]string{"id": rec.Id},
		})
		if res.Code != http.StatusOK {
			t.Logf("payment rejected: %d %s", res.Code, res.Body.String())
			return nil
		}
		var tax services.TaxRecord
		decodeJSON(t, res, &tax)
		return &tax
	}

	first := pay(`{"amount":300,"paymentMethod":"Cash"}`)
	require.NotNil(t, first)
	assert.Equal(t, services.StatusPartial, first.Status)
	assert.True(t, strings.HasPrefix(first.ReceiptNumber, "RCPT-"), first.ReceiptNumber)
	assert.NotNil(t, first.PaymentDate)

	second := pay(`{"amount":200,"paymentMethod":"UPI","receiptNumber":"R-42"}`)
	require.NotNil(t, second)
	assert.Equal(t, 500.0, second.AmountPaid)
	assert.Equal(t, services.StatusPaid, second.Status)
	assert.Equal(t, "R-42", second.ReceiptNumber)

	assert.Nil(t, pay(`{"amount":0,"paymentMethod":"Cash"}`))
	assert.Nil(t, pay(`{"amount":10}`))
}

func TestSettings(t *testing.T) {
	env := newTestEnv(t)
	super := testhelpers.CreateTestUser(t, env.app, "sa@loni.test", "super_admin", true)
	admin := testhelpers.CreateTestUser(t, env.app, "admin@loni.test", "admin", true)

	missing := env.do(t, HandleSettingsGet, request{target: "/api/panchayat/settings", auth: super})
	assert.Equal(t, http.StatusNotFound, missing.Code)

	denied := env.do(t, HandleSettingsSave, request{
		method: http.MethodPut,
		target: "/api/panchayat/settings",
		body:   `{"name":"Gram Panchayat Loni"}`,
		auth:   admin,
	})
	assert.Equal(t, http.StatusForbidden, denied.Code)

	invalid := env.do(t, HandleSettingsSave, request{
		method: http.MethodPut,
		target: "/api/panchayat/settings",
		body:   `{"name":"Gram Panchayat Loni","pinCode":"2011"}`,
		auth:   super,
	})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)

	saved := env.do(t, HandleSettingsSave, request{
		method: http.MethodPut,
		target: "/api/panchayat/settings",
		body:   `{"name":"Gram Panchayat Loni","pinCode":"201102","taxRates":{"Residential":0.5},"lateFeePercent":2}`,
		auth:   super,
	})
	require.Equal(t, http.StatusOK, saved.Code, saved.Body.String())

	got := env.do(t, HandleSettingsGet, request{target: "/api/panchayat/settings", auth: super})
	require.Equal(t, http.StatusOK, got.Code)
	var s services.PanchayatSettings
	decodeJSON(t, got, &s)
	assert.Equal(t, "201102", s.PinCode)
	assert.Equal(t, 0.5, s.TaxRates[services.PropertyResidential])
}

func TestUserRole(t *testing.T) {
	env := newTestEnv(t)
	super := testhelpers.CreateTestUser(t, env.app, "sa@loni.test", "super_admin", true)
	clerk := testhelpers.CreateTestUser(t, env.app, "clerk@loni.test", "viewer", true)

	rec := env.do(t, HandleUserRole, request{
		method: http.MethodPatch,
		target: "/api/users/" + clerk.Id + "/role",
		body:   `{"role":"admin"}`,
		auth:   super,
		path:   map[string]string{"id": clerk.Id},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var u userView
	decodeJSON(t, rec, &u)
	assert.Equal(t, services.RoleAdmin, u.Role)
	assert.True(t, u.Active)

	self := env.do(t, HandleUserRole, request{
		method: http.MethodPatch,
		target: "/api/users/" + super.Id + "/role",
		body:   `{"role":"viewer"}`,
		auth:   super,
		path:   map[string]string{"id": super.Id},
	})
	assert.Equal(t, http.StatusBadRequest, self.Code)

	byAdmin := env.do(t, HandleUserRole, request{
		method: http.MethodPatch,
		target: "/api/users/" + super.Id + "/role",
		body:   `{"role":"viewer"}`,
		auth:   clerk,
		path:   map[string]string{"id": super.Id},
	})
	assert.Equal(t, http.StatusForbidden, byAdmin.Code)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	env.deps.Policy = authz.NewPolicy("boss@loni.test")
	boss := testhelpers.CreateTestUser(t, env.app, "boss@loni.test", "viewer", true)

	rec := env.do(t, HandleMe, request{target: "/api/me", auth: boss})
	require.Equal(t, http.StatusOK, rec.Code)
	var u userView
	decodeJSON(t, rec, &u)
	assert.Equal(t, services.RoleSuperAdmin, u.Role)

	anon := env.do(t, HandleMe, request{target: "/api/me"})
	assert.Equal(t, http.StatusUnauthorized, anon.Code)
}
