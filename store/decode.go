package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"panchayattax/services"
)

// ErrMalformed marks a stored record that fails domain validation.
type ErrMalformed struct {
	Collection string
	ID         string
	Err        error
}

func (e *ErrMalformed) Error() string {
	return fmt.Sprintf("malformed %s record %s: %v", e.Collection, e.ID, e.Err)
}

func (e *ErrMalformed) Unwrap() error { return e.Err }

func optionalTime(rec *core.Record, field string) *time.Time {
	dt := rec.GetDateTime(field)
	if dt.IsZero() {
		return nil
	}
	t := dt.Time()
	return &t
}

// unmarshalJSONField decodes a JSON field, leaving dst untouched when the
// field is empty.
func unmarshalJSONField(rec *core.Record, field string, dst any) error {
	raw := strings.TrimSpace(rec.GetString(field))
	if raw == "" || raw == "null" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

func decodeProperty(rec *core.Record) (services.Property, error) {
	p := services.Property{
		ID:         rec.Id,
		OwnerName:  rec.GetString("owner_name"),
		FatherName: rec.GetString("father_name"),
		Mobile:     rec.GetString("mobile"),
		HouseNo:    rec.GetString("house_no"),
		Address:    rec.GetString("address"),
		Type:       services.PropertyType(rec.GetString("property_type")),
		Area:       rec.GetFloat("area"),
	}
	if err := p.Validate(); err != nil {
		return services.Property{}, &ErrMalformed{Collection: "properties", ID: rec.Id, Err: err}
	}
	return p, nil
}

func decodeTaxRecord(rec *core.Record) (services.TaxRecord, error) {
	t := services.TaxRecord{
		ID:             rec.Id,
		PropertyID:     rec.GetString("property"),
		Type:           services.TaxType(rec.GetString("tax_type")),
		BaseAmount:     rec.GetFloat("base_amount"),
		AssessedAmount: rec.GetFloat("assessed_amount"),
		AmountPaid:     rec.GetFloat("amount_paid"),
		Status:         services.PaymentStatus(rec.GetString("payment_status")),
		AssessmentYear: rec.GetInt("assessment_year"),
		PaymentDate:    optionalTime(rec, "payment_date"),
		ReceiptNumber:  rec.GetString("receipt_number"),
		PaymentMethod:  rec.GetString("payment_method"),
	}
	if t.BaseAmount == 0 {
		t.BaseAmount = t.AssessedAmount
	}
	if err := t.Validate(); err != nil {
		return services.TaxRecord{}, &ErrMalformed{Collection: "tax_records", ID: rec.Id, Err: err}
	}
	return t, nil
}

func decodeSettings(rec *core.Record) (services.PanchayatSettings, error) {
	s := services.PanchayatSettings{
		ID:             rec.Id,
		Name:           rec.GetString("name"),
		NameHi:         rec.GetString("name_hi"),
		District:       rec.GetString("district"),
		State:          rec.GetString("state"),
		PinCode:        rec.GetString("pin_code"),
		Address:        rec.GetString("address"),
		SecretaryName:  rec.GetString("secretary_name"),
		LateFeePercent: rec.GetFloat("late_fee_percent"),
	}
	if err := unmarshalJSONField(rec, "tax_rates", &s.TaxRates); err != nil {
		return services.PanchayatSettings{}, &ErrMalformed{Collection: "panchayat_settings", ID: rec.Id, Err: err}
	}
	if err := s.Validate(); err != nil {
		return services.PanchayatSettings{}, &ErrMalformed{Collection: "panchayat_settings", ID: rec.Id, Err: err}
	}
	return s, nil
}

func decodeBill(rec *core.Record) (services.Bill, error) {
	b := services.Bill{
		ID:            rec.Id,
		BillID:        rec.GetString("bill_id"),
		PropertyID:    rec.GetString("property_id"),
		OwnerName:     rec.GetString("owner_name"),
		HouseNo:       rec.GetString("house_no"),
		Year:          rec.GetInt("year"),
		TotalAmount:   rec.GetFloat("total_amount"),
		AmountPaid:    rec.GetFloat("amount_paid"),
		Status:        services.PaymentStatus(rec.GetString("status")),
		GeneratedBy:   rec.GetString("generated_by"),
		GeneratedAt:   rec.GetDateTime("generated_at").Time(),
		DueDate:       rec.GetDateTime("due_date").Time(),
		StoragePath:   rec.GetString("storage_path"),
		StorageURL:    rec.GetString("storage_url"),
		DownloadURL:   rec.GetString("download_url"),
		Language:      services.Language(rec.GetString("language")),
		PaymentMethod: rec.GetString("payment_method"),
		ReceiptNumber: rec.GetString("receipt_number"),
	}
	if err := unmarshalJSONField(rec, "tax_breakdown", &b.TaxBreakdown); err != nil {
		return services.Bill{}, &ErrMalformed{Collection: "bills", ID: rec.Id, Err: err}
	}
	return b, nil
}

// DecodeUser maps a users auth record to an AppUser. Records without a role
// are viewers.
func DecodeUser(rec *core.Record) services.AppUser {
	role := services.Role(rec.GetString("role"))
	if role == "" {
		role = services.RoleViewer
	}
	return services.AppUser{
		ID:          rec.Id,
		Email:       rec.Email(),
		DisplayName: rec.GetString("name"),
		Role:        role,
		Active:      rec.GetBool("active"),
	}
}
