package collections_test

import (
	"testing"

	"panchayattax/collections"
	"panchayattax/services"
	"panchayattax/testhelpers"
)

func TestSeed_CreatesData(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	settingsCol, _ := app.FindCollectionByNameOrId("panchayat_settings")
	settings, _ := app.FindAllRecords(settingsCol)
	if len(settings) != 1 {
		t.Fatalf("expected 1 settings record, got %d", len(settings))
	}
	if settings[0].GetString("name") != "Gram Panchayat Loni" {
		t.Errorf("settings name = %q", settings[0].GetString("name"))
	}

	propertiesCol, _ := app.FindCollectionByNameOrId("properties")
	properties, _ := app.FindAllRecords(propertiesCol)
	if len(properties) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(properties))
	}

	taxCol, _ := app.FindCollectionByNameOrId("tax_records")
	taxes, _ := app.FindAllRecords(taxCol)
	if len(taxes) != 8 {
		t.Errorf("expected 8 tax records, got %d", len(taxes))
	}

	// Seeded statuses agree with the amounts.
	for _, rec := range taxes {
		want := services.DerivePaymentStatus(rec.GetFloat("assessed_amount"), rec.GetFloat("amount_paid"))
		if got := services.PaymentStatus(rec.GetString("payment_status")); got != want {
			t.Errorf("tax record %s status = %q, want %q", rec.Id, got, want)
		}
	}
}

func TestSeed_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("first Seed() error: %v", err)
	}
	if err := collections.Seed(app); err != nil {
		t.Fatalf("second Seed() error: %v", err)
	}

	propertiesCol, _ := app.FindCollectionByNameOrId("properties")
	properties, _ := app.FindAllRecords(propertiesCol)
	if len(properties) != 3 {
		t.Errorf("expected 3 properties after two seeds, got %d", len(properties))
	}
}

func TestSeed_SkipsWhenPropertiesExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestProperty(t, app, "Existing Owner", "X-1", "Residential", 500)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	settingsCol, _ := app.FindCollectionByNameOrId("panchayat_settings")
	settings, _ := app.FindAllRecords(settingsCol)
	if len(settings) != 0 {
		t.Errorf("expected no seeded settings, got %d", len(settings))
	}
}
