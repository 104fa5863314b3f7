package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panchayattax/billing"
	"panchayattax/testhelpers"
)

func TestGenerateBill_Success(t *testing.T) {
	env := newTestEnv(t)
	propID := seedBillable(t, env.app)
	admin := testhelpers.CreateTestUser(t, env.app, "admin@loni.test", "admin", true)

	rec := env.do(t, HandleGenerateBill, request{
		method: http.MethodPost,
		target: "/api/bills/generate",
		body:   `{"propertyId":"` + propID + `","year":2024,"taxTypes":["Property","Water"],"language":"en"}`,
		auth:   admin,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res billing.Result
	decodeJSON(t, rec, &res)
	assert.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.BillID, "LONI-2024-"), res.BillID)
	assert.Contains(t, res.DownloadURL, "bills/2024/"+res.BillID+".pdf")
	assert.Equal(t, 700.0, res.Bill.TotalAmount)
	assert.Equal(t, 500.0, res.Bill.AmountPaid)
	assert.Len(t, res.Bill.TaxBreakdown, 2)

	stored, err := env.deps.Store.GetBill(t.Context(), res.BillID)
	require.NoError(t, err)
	assert.Equal(t, propID, stored.PropertyID)
	assert.Equal(t, admin.Id, stored.GeneratedBy)
	assert.Contains(t, env.objects.objects, "bills/2024/"+res.BillID+".pdf")
}

func TestGenerateBill_Rejections(t *testing.T) {
	env := newTestEnv(t)
	propID := seedBillable(t, env.app)
	viewer := testhelpers.CreateTestUser(t, env.app, "viewer@loni.test", "viewer", true)
	admin := testhelpers.CreateTestUser(t, env.app, "admin@loni.test", "admin", true)
	inactive := testhelpers.CreateTestUser(t, env.app, "former@loni.test", "admin", false)

	valid := `{"propertyId":"` + propID + `","year":2024,"taxTypes":["Property"],"language":"en"}`

	tests := []struct {
		name     string
		body     string
		user     string
		wantCode int
		wantKind string
	}{
		{"unauthenticated", valid, "", http.StatusUnauthorized, "unauthenticated"},
		{"viewer", valid, "viewer", http.StatusForbidden, "permission-denied"},
		{"inactive admin", valid, "inactive", http.StatusForbidden, "permission-denied"},
		{"bad json", `{"year":`, "admin", http.StatusBadRequest, "invalid-argument"},
		{"no tax types", `{"propertyId":"` + propID + `","year":2024,"taxTypes":[]}`, "admin", http.StatusBadRequest, "invalid-argument"},
		{"unknown language", `{"propertyId":"` + propID + `","year":2024,"taxTypes":["Property"],"language":"fr"}`, "admin", http.StatusBadRequest, "invalid-argument"},
		{"no records for year", `{"propertyId":"` + propID + `","year":2019,"taxTypes":["Property"]}`, "admin", http.StatusNotFound, "not-found"},
		{"unknown property", `{"propertyId":"missing0000000","year":2024,"taxTypes":["Property"]}`, "admin", http.StatusNotFound, "not-found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := request{method: http.MethodPost, target: "/api/bills/generate", body: tt.body}
			switch tt.user {
			case "viewer":
				r.auth = viewer
			case "admin":
				r.auth = admin
			case "inactive":
				r.auth = inactive
			}
			rec := env.do(t, HandleGenerateBill, r)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantKind, errorCode(t, rec))
		})
	}
	assert.Empty(t, env.objects.objects, "rejected requests must not upload anything")
}

func TestGetBill(t *testing.T) {
	env := newTestEnv(t)
	propID := seedBillable(t, env.app)
	admin := testhelpers.CreateTestUser(t, env.app, "admin@loni.test", "admin", true)

	gen := env.do(t, HandleGenerateBill, request{
		method: http.MethodPost,
		target: "/api/bills/generate",
		body:   `{"propertyId":"` + propID + `","year":2024,"taxTypes":["Water"]}`,
		auth:   admin,
	})
	require.Equal(t, http.StatusOK, gen.Code, gen.Body.String())
	var res billing.Result
	decodeJSON(t, gen, &res)

	rec := env.do(t, HandleGetBill, request{
		target: "/api/bills/" + res.BillID,
		auth:   admin,
		path:   map[string]string{"billId": res.BillID},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"billId":"`+res.BillID+`"`)
	assert.NotContains(t, rec.Body.String(), "storagePath")

	missing := env.do(t, HandleGetBill, request{
		target: "/api/bills/LONI-2024-00000000",
		auth:   admin,
		path:   map[string]string{"billId": "LONI-2024-00000000"},
	})
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestVerifyBill(t *testing.T) {
	env := newTestEnv(t)
	propID := seedBillable(t, env.app)
	admin := testhelpers.CreateTestUser(t, env.app, "admin@loni.test", "admin", true)

	gen := env.do(t, HandleGenerateBill, request{
		method: http.MethodPost,
		target: "/api/bills/generate",
		body:   `{"propertyId":"` + propID + `","year":2024,"taxTypes":["Property","Water"]}`,
		auth:   admin,
	})
	var res billing.Result
	decodeJSON(t, gen, &res)

	rec := env.do(t, HandleVerifyBill, request{
		target: "/verify/" + res.BillID,
		path:   map[string]string{"billId": res.BillID},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	testhelpers.AssertHTMLContains(t, rec.Body.String(), res.BillID, "Ramesh Kumar", "₹700.00")

	rec = env.do(t, HandleVerifyBill, request{
		target: "/verify/LONI-2024-FFFFFFFF",
		path:   map[string]string{"billId": "LONI-2024-FFFFFFFF"},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Ramesh Kumar")
}
