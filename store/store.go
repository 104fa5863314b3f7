// Package store maps PocketBase records to domain types. Every record read
// is validated; records that fail validation are reported, never guessed at.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"

	"panchayattax/apperr"
	"panchayattax/collections"
	"panchayattax/services"
)

// Store reads and writes domain records through a PocketBase app.
type Store struct {
	app core.App
}

// New returns a Store backed by app.
func New(app core.App) *Store {
	return &Store{app: app}
}

func notFound(what, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.NotFound, fmt.Sprintf("%s %s not found", what, id))
	}
	return apperr.Wrap(apperr.Internal, "load "+what, err)
}

func saveErr(what string, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return apperr.Validation(err)
	}
	return apperr.Wrap(apperr.Internal, "save "+what, err)
}

// GetProperty loads a property and its tax records in stored order.
func (s *Store) GetProperty(ctx context.Context, id string) (services.Property, error) {
	rec, err := s.app.FindRecordById(collections.Properties, id)
	if err != nil {
		return services.Property{}, notFound("property", id, err)
	}
	p, err := decodeProperty(rec)
	if err != nil {
		return services.Property{}, apperr.Wrap(apperr.Internal, "decode property", err)
	}
	p.Taxes, err = s.taxRecords(ctx, dbx.HashExp{"property": id})
	if err != nil {
		return services.Property{}, err
	}
	return p, nil
}

// ListProperties loads every property with its tax records, ordered by
// house number. Malformed properties and tax records are logged and left
// out so one bad record does not hide the rest.
func (s *Store) ListProperties(ctx context.Context) ([]services.Property, error) {
	var recs []*core.Record
	err := s.app.RecordQuery(collections.Properties).
		WithContext(ctx).
		OrderBy("house_no ASC", "id ASC").
		All(&recs)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list properties", err)
	}

	taxes, err := s.listTaxRecords(ctx, nil, true)
	if err != nil {
		return nil, err
	}
	byProperty := make(map[string][]services.TaxRecord, len(recs))
	for _, t := range taxes {
		byProperty[t.PropertyID] = append(byProperty[t.PropertyID], t)
	}

	out := make([]services.Property, 0, len(recs))
	for _, rec := range recs {
		p, err := decodeProperty(rec)
		if err != nil {
			if skipMalformed(err) {
				continue
			}
			return nil, apperr.Wrap(apperr.Internal, "decode property", err)
		}
		p.Taxes = byProperty[p.ID]
		out = append(out, p)
	}
	return out, nil
}

// skipMalformed logs err and reports true when it is an *ErrMalformed.
func skipMalformed(err error) bool {
	var malformed *ErrMalformed
	if !errors.As(err, &malformed) {
		return false
	}
	log.Warn().
		Str("collection", malformed.Collection).
		Str("id", malformed.ID).
		Err(malformed.Err).
		Msg("skipping malformed record")
	return true
}

func (s *Store) taxRecords(ctx context.Context, where dbx.Expression) ([]services.TaxRecord, error) {
	return s.listTaxRecords(ctx, where, false)
}

func (s *Store) listTaxRecords(ctx context.Context, where dbx.Expression, lenient bool) ([]services.TaxRecord, error) {
	q := s.app.RecordQuery(collections.TaxRecords).
		WithContext(ctx).
		OrderBy("sort_order ASC", "created ASC")
	if where != nil {
		q = q.AndWhere(where)
	}

	var recs []*core.Record
	if err := q.All(&recs); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list tax records", err)
	}

	out := make([]services.TaxRecord, 0, len(recs))
	for _, rec := range recs {
		t, err := decodeTaxRecord(rec)
		if err != nil {
			if lenient && skipMalformed(err) {
				continue
			}
			return nil, apperr.Wrap(apperr.Internal, "decode tax record", err)
		}
		out = append(out, t)
	}
	return out, nil
}

func setPropertyFields(rec *core.Record, p services.Property) {
	rec.Set("owner_name", p.OwnerName)
	rec.Set("father_name", p.FatherName)
	rec.Set("mobile", p.Mobile)
	rec.Set("house_no", p.HouseNo)
	rec.Set("address", p.Address)
	rec.Set("property_type", string(p.Type))
	rec.Set("area", p.Area)
}

// CreateProperty registers a new property. Tax records on p are ignored.
func (s *Store) CreateProperty(ctx context.Context, p services.Property) (services.Property, error) {
	if err := p.Validate(); err != nil {
		return services.Property{}, apperr.Validation(err)
	}
	col, err := s.app.FindCollectionByNameOrId(collections.Properties)
	if err != nil {
		return services.Property{}, apperr.Wrap(apperr.Internal, "find properties collection", err)
	}

	rec := core.NewRecord(col)
	setPropertyFields(rec, p)
	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return services.Property{}, saveErr("property", err)
	}
	p.ID = rec.Id
	p.Taxes = nil
	return p, nil
}

// UpdateProperty overwrites the owner details of an existing property.
func (s *Store) UpdateProperty(ctx context.Context, p services.Property) (services.Property, error) {
	rec, err := s.app.FindRecordById(collections.Properties, p.ID)
	if err != nil {
		return services.Property{}, notFound("property", p.ID, err)
	}
	if err := p.Validate(); err != nil {
		return services.Property{}, apperr.Validation(err)
	}

	setPropertyFields(rec, p)
	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return services.Property{}, saveErr("property", err)
	}
	return s.GetProperty(ctx, p.ID)
}

// DeleteProperty hard-deletes a property. Its tax records cascade.
func (s *Store) DeleteProperty(ctx context.Context, id string) error {
	rec, err := s.app.FindRecordById(collections.Properties, id)
	if err != nil {
		return notFound("property", id, err)
	}
	if err := s.app.DeleteWithContext(ctx, rec); err != nil {
		return apperr.Wrap(apperr.Internal, "delete property", err)
	}
	return nil
}

// AddTaxRecord appends a tax record after the property's existing records.
func (s *Store) AddTaxRecord(ctx context.Context, t services.TaxRecord) (services.TaxRecord, error) {
	if _, err := s.app.FindRecordById(collections.Properties, t.PropertyID); err != nil {
		return services.TaxRecord{}, notFound("property", t.PropertyID, err)
	}
	if t.BaseAmount == 0 {
		t.BaseAmount = t.AssessedAmount
	}
	if err := t.Validate(); err != nil {
		return services.TaxRecord{}, apperr.Validation(err)
	}

	col, err := s.app.FindCollectionByNameOrId(collections.TaxRecords)
	if err != nil {
		return services.TaxRecord{}, apperr.Wrap(apperr.Internal, "find tax_records collection", err)
	}

	var last struct {
		Max int `db:"max"`
	}
	err = s.app.DB().
		NewQuery("SELECT COALESCE(MAX(sort_order), 0) AS max FROM tax_records WHERE property = {:property}").
		WithContext(ctx).
		Bind(dbx.Params{"property": t.PropertyID}).
		One(&last)
	if err != nil {
		return services.TaxRecord{}, apperr.Wrap(apperr.Internal, "find last sort order", err)
	}

	rec := core.NewRecord(col)
	rec.Set("property", t.PropertyID)
	rec.Set("sort_order", last.Max+1)
	rec.Set("tax_type", string(t.Type))
	rec.Set("assessment_year", t.AssessmentYear)
	setTaxAmounts(rec, t)
	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return services.TaxRecord{}, saveErr("tax record", err)
	}
	t.ID = rec.Id
	return t, nil
}

func setTaxAmounts(rec *core.Record, t services.TaxRecord) {
	rec.Set("base_amount", t.BaseAmount)
	rec.Set("assessed_amount", t.AssessedAmount)
	rec.Set("amount_paid", t.AmountPaid)
	rec.Set("payment_status", string(t.Status))
	rec.Set("receipt_number", t.ReceiptNumber)
	rec.Set("payment_method", t.PaymentMethod)
	if t.PaymentDate != nil {
		rec.Set("payment_date", *t.PaymentDate)
	} else {
		rec.Set("payment_date", "")
	}
}

// GetTaxRecord loads one tax record.
func (s *Store) GetTaxRecord(ctx context.Context, id string) (services.TaxRecord, error) {
	rec, err := s.app.FindRecordById(collections.TaxRecords, id)
	if err != nil {
		return services.TaxRecord{}, notFound("tax record", id, err)
	}
	t, err := decodeTaxRecord(rec)
	if err != nil {
		return services.TaxRecord{}, apperr.Wrap(apperr.Internal, "decode tax record", err)
	}
	return t, nil
}

// RecordPayment adds a payment to a tax record. The read, the status
// recalculation and the write run in one transaction, so concurrent payments
// against the same record all count. Payment errors from
// services.ApplyPayment are returned unwrapped.
func (s *Store) RecordPayment(ctx context.Context, id string, p services.Payment) (services.TaxRecord, error) {
	var saved services.TaxRecord
	err := s.app.RunInTransaction(func(txApp core.App) error {
		rec, err := txApp.FindRecordById(collections.TaxRecords, id)
		if err != nil {
			return notFound("tax record", id, err)
		}
		current, err := decodeTaxRecord(rec)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "decode tax record", err)
		}

		next, err := services.ApplyPayment(current, p)
		if err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return apperr.Validation(err)
		}

		setTaxAmounts(rec, next)
		if err := txApp.SaveWithContext(ctx, rec); err != nil {
			return saveErr("tax record", err)
		}
		saved, err = decodeTaxRecord(rec)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "decode tax record", err)
		}
		return nil
	})
	if err != nil {
		return services.TaxRecord{}, err
	}
	return saved, nil
}

func (s *Store) settingsRecord(ctx context.Context) (*core.Record, error) {
	var recs []*core.Record
	err := s.app.RecordQuery(collections.PanchayatSettings).
		WithContext(ctx).
		OrderBy("id ASC").
		Limit(1).
		All(&recs)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "load panchayat settings", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// GetSettings loads the panchayat settings singleton.
func (s *Store) GetSettings(ctx context.Context) (services.PanchayatSettings, error) {
	rec, err := s.settingsRecord(ctx)
	if err != nil {
		return services.PanchayatSettings{}, err
	}
	if rec == nil {
		return services.PanchayatSettings{}, apperr.New(apperr.NotFound, "panchayat settings are not configured")
	}
	settings, err := decodeSettings(rec)
	if err != nil {
		return services.PanchayatSettings{}, apperr.Wrap(apperr.Internal, "decode panchayat settings", err)
	}
	return settings, nil
}

// SaveSettings creates or replaces the panchayat settings singleton.
func (s *Store) SaveSettings(ctx context.Context, settings services.PanchayatSettings) (services.PanchayatSettings, error) {
	if err := settings.Validate(); err != nil {
		return services.PanchayatSettings{}, apperr.Validation(err)
	}

	rec, err := s.settingsRecord(ctx)
	if err != nil {
		return services.PanchayatSettings{}, err
	}
	if rec == nil {
		col, err := s.app.FindCollectionByNameOrId(collections.PanchayatSettings)
		if err != nil {
			return services.PanchayatSettings{}, apperr.Wrap(apperr.Internal, "find panchayat_settings collection", err)
		}
		rec = core.NewRecord(col)
	}

	rec.Set("name", settings.Name)
	rec.Set("name_hi", settings.NameHi)
	rec.Set("district", settings.District)
	rec.Set("state", settings.State)
	rec.Set("pin_code", settings.PinCode)
	rec.Set("address", settings.Address)
	rec.Set("secretary_name", settings.SecretaryName)
	rec.Set("tax_rates", settings.TaxRates)
	rec.Set("late_fee_percent", settings.LateFeePercent)
	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return services.PanchayatSettings{}, saveErr("panchayat settings", err)
	}
	settings.ID = rec.Id
	return settings, nil
}

// CreateBill persists a generated bill. Bills are never updated.
func (s *Store) CreateBill(ctx context.Context, b services.Bill) (services.Bill, error) {
	col, err := s.app.FindCollectionByNameOrId(collections.Bills)
	if err != nil {
		return services.Bill{}, apperr.Wrap(apperr.Internal, "find bills collection", err)
	}

	rec := core.NewRecord(col)
	rec.Set("bill_id", b.BillID)
	rec.Set("property_id", b.PropertyID)
	rec.Set("owner_name", b.OwnerName)
	rec.Set("house_no", b.HouseNo)
	rec.Set("year", b.Year)
	rec.Set("tax_breakdown", b.TaxBreakdown)
	rec.Set("total_amount", b.TotalAmount)
	rec.Set("amount_paid", b.AmountPaid)
	rec.Set("status", string(b.Status))
	rec.Set("generated_by", b.GeneratedBy)
	rec.Set("generated_at", b.GeneratedAt)
	rec.Set("due_date", b.DueDate)
	rec.Set("storage_path", b.StoragePath)
	rec.Set("storage_url", b.StorageURL)
	rec.Set("download_url", b.DownloadURL)
	rec.Set("language", string(b.Language))
	rec.Set("payment_method", b.PaymentMethod)
	rec.Set("receipt_number", b.ReceiptNumber)
	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return services.Bill{}, saveErr("bill", err)
	}
	b.ID = rec.Id
	return b, nil
}

// GetBill loads a bill by its public bill id.
func (s *Store) GetBill(ctx context.Context, billID string) (services.Bill, error) {
	rec, err := s.app.FindFirstRecordByData(collections.Bills, "bill_id", billID)
	if err != nil {
		return services.Bill{}, notFound("bill", billID, err)
	}
	b, err := decodeBill(rec)
	if err != nil {
		return services.Bill{}, apperr.Wrap(apperr.Internal, "decode bill", err)
	}
	return b, nil
}
