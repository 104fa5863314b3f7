// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"panchayattax/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	if err := collections.Setup(app); err != nil {
		t.Fatalf("failed to set up collections: %v", err)
	}

	return app
}

// CreateTestSettings creates the panchayat settings singleton.
func CreateTestSettings(t *testing.T, app core.App, name string, rates map[string]float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collections.PanchayatSettings)
	if err != nil {
		t.Fatalf("failed to find panchayat_settings collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("name_hi", "ग्राम पंचायत")
	record.Set("district", "Pune")
	record.Set("state", "Maharashtra")
	record.Set("pin_code", "411001")
	record.Set("address", "Panchayat Bhavan")
	record.Set("secretary_name", "Test Secretary")
	record.Set("tax_rates", rates)
	record.Set("late_fee_percent", 2)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test settings: %v", err)
	}

	return record
}

// CreateTestProperty creates a property record and returns it.
func CreateTestProperty(t *testing.T, app core.App, ownerName, houseNo, propertyType string, area float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collections.Properties)
	if err != nil {
		t.Fatalf("failed to find properties collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("owner_name", ownerName)
	record.Set("father_name", "Test Father")
	record.Set("mobile", "9876543210")
	record.Set("house_no", houseNo)
	record.Set("address", "Ward 3")
	record.Set("property_type", propertyType)
	record.Set("area", area)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test property: %v", err)
	}

	return record
}

// CreateTestTaxRecord creates a tax record at the given sort position.
// payment_status is stored as given so tests can create drifted records.
func CreateTestTaxRecord(t *testing.T, app core.App, propertyID string, sortOrder int, taxType string, year int, assessed, paid float64, status string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collections.TaxRecords)
	if err != nil {
		t.Fatalf("failed to find tax_records collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("property", propertyID)
	record.Set("sort_order", sortOrder)
	record.Set("tax_type", taxType)
	record.Set("base_amount", assessed)
	record.Set("assessed_amount", assessed)
	record.Set("amount_paid", paid)
	record.Set("payment_status", status)
	record.Set("assessment_year", year)
	if paid > 0 {
		record.Set("payment_date", time.Date(year, time.June, 15, 10, 0, 0, 0, time.UTC))
		record.Set("payment_method", "Cash")
	}

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test tax record: %v", err)
	}

	return record
}

// CreateTestUser creates a users auth record with the given role.
func CreateTestUser(t *testing.T, app core.App, email, role string, active bool) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collections.Users)
	if err != nil {
		t.Fatalf("failed to find users collection: %v", err)
	}

	record := core.NewRecord(col)
	record.SetEmail(email)
	record.SetPassword("test-password-123")
	record.Set("name", "Test User")
	record.Set("role", role)
	record.Set("active", active)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test user: %v", err)
	}

	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
