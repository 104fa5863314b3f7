package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"
)

// Collection names.
const (
	Properties        = "properties"
	TaxRecords        = "tax_records"
	PanchayatSettings = "panchayat_settings"
	Bills             = "bills"
	Users             = "users"
)

var (
	propertyTypes = []string{"Residential", "Commercial", "Agricultural", "Industrial"}
	taxTypes      = []string{"Property", "Water", "Sanitation", "Lighting", "Land", "Business", "Other"}
	statuses      = []string{"Paid", "Unpaid", "Partial"}
	roles         = []string{"super_admin", "admin", "viewer"}
	languages     = []string{"en", "hi", "bilingual"}
)

// Setup programmatically creates/ensures the properties, tax_records,
// panchayat_settings and bills collections exist, and adds the role
// fields to the built-in users auth collection. Safe to call on every start.
func Setup(app core.App) error {
	if _, err := ensureCollection(app, PanchayatSettings, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "name_hi"})
		c.Fields.Add(&core.TextField{Name: "district"})
		c.Fields.Add(&core.TextField{Name: "state"})
		c.Fields.Add(&core.TextField{Name: "pin_code", Pattern: `^[0-9]{6}$`})
		c.Fields.Add(&core.TextField{Name: "address"})
		c.Fields.Add(&core.TextField{Name: "secretary_name"})
		c.Fields.Add(&core.JSONField{Name: "tax_rates"})
		c.Fields.Add(&core.NumberField{Name: "late_fee_percent", Min: floatPtr(0), Max: floatPtr(100)})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	}); err != nil {
		return err
	}

	properties, err := ensureCollection(app, Properties, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "owner_name", Required: true})
		c.Fields.Add(&core.TextField{Name: "father_name"})
		c.Fields.Add(&core.TextField{Name: "mobile"})
		c.Fields.Add(&core.TextField{Name: "house_no", Required: true})
		c.Fields.Add(&core.TextField{Name: "address"})
		c.Fields.Add(&core.SelectField{
			Name:      "property_type",
			Required:  true,
			Values:    propertyTypes,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "area", Min: floatPtr(0)})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})
	if err != nil {
		return err
	}

	if _, err := ensureCollection(app, TaxRecords, func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "property",
			Required:      true,
			CollectionId:  properties.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
		c.Fields.Add(&core.SelectField{
			Name:      "tax_type",
			Required:  true,
			Values:    taxTypes,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "base_amount", Min: floatPtr(0)})
		c.Fields.Add(&core.NumberField{Name: "assessed_amount", Min: floatPtr(0)})
		c.Fields.Add(&core.NumberField{Name: "amount_paid", Min: floatPtr(0)})
		c.Fields.Add(&core.SelectField{
			Name:      "payment_status",
			Required:  true,
			Values:    statuses,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "assessment_year", Required: true, OnlyInt: true})
		c.Fields.Add(&core.DateField{Name: "payment_date"})
		c.Fields.Add(&core.TextField{Name: "receipt_number"})
		c.Fields.Add(&core.TextField{Name: "payment_method"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_tax_records_property", false, "property, sort_order", "")
	}); err != nil {
		return err
	}

	if _, err := ensureCollection(app, Bills, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "bill_id", Required: true})
		// Snapshot, not a relation: bills outlive hard-deleted properties.
		c.Fields.Add(&core.TextField{Name: "property_id", Required: true})
		c.Fields.Add(&core.TextField{Name: "owner_name"})
		c.Fields.Add(&core.TextField{Name: "house_no"})
		c.Fields.Add(&core.NumberField{Name: "year", Required: true, OnlyInt: true})
		c.Fields.Add(&core.JSONField{Name: "tax_breakdown"})
		c.Fields.Add(&core.NumberField{Name: "total_amount"})
		c.Fields.Add(&core.NumberField{Name: "amount_paid"})
		c.Fields.Add(&core.SelectField{Name: "status", Values: statuses, MaxSelect: 1})
		c.Fields.Add(&core.TextField{Name: "generated_by"})
		c.Fields.Add(&core.DateField{Name: "generated_at"})
		c.Fields.Add(&core.DateField{Name: "due_date"})
		c.Fields.Add(&core.TextField{Name: "storage_path"})
		c.Fields.Add(&core.TextField{Name: "storage_url"})
		c.Fields.Add(&core.TextField{Name: "download_url"})
		c.Fields.Add(&core.SelectField{Name: "language", Values: languages, MaxSelect: 1})
		c.Fields.Add(&core.TextField{Name: "payment_method"})
		c.Fields.Add(&core.TextField{Name: "receipt_number"})
		c.AddIndex("idx_bills_bill_id", true, "bill_id", "")
	}); err != nil {
		return err
	}

	return ensureUserRoleFields(app)
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app core.App, name string, addFields func(*core.Collection)) (*core.Collection, error) {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		return existing, nil
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}

	log.Info().Str("name", name).Str("id", collection.Id).Msg("created collection")
	return collection, nil
}

// ensureUserRoleFields adds role and active to the users auth collection.
func ensureUserRoleFields(app core.App) error {
	users, err := app.FindCollectionByNameOrId(Users)
	if err != nil {
		return fmt.Errorf("find users collection: %w", err)
	}

	changed := false
	if users.Fields.GetByName("role") == nil {
		users.Fields.Add(&core.SelectField{Name: "role", Values: roles, MaxSelect: 1})
		changed = true
	}
	if users.Fields.GetByName("active") == nil {
		users.Fields.Add(&core.BoolField{Name: "active"})
		changed = true
	}
	if !changed {
		return nil
	}

	if err := app.Save(users); err != nil {
		return fmt.Errorf("add role fields to users: %w", err)
	}
	return nil
}

func floatPtr(v float64) *float64 { return &v }
