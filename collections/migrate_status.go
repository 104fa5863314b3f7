package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"

	"panchayattax/services"
)

// ReconcilePaymentStatuses rewrites payment_status on every tax record whose
// stored status disagrees with its assessed and paid amounts. It returns the
// number of records corrected and is safe to run repeatedly.
func ReconcilePaymentStatuses(app core.App) (int, error) {
	col, err := app.FindCollectionByNameOrId(TaxRecords)
	if err != nil {
		return 0, fmt.Errorf("reconcile: could not find tax_records collection: %w", err)
	}

	records, err := app.FindAllRecords(col)
	if err != nil {
		return 0, fmt.Errorf("reconcile: could not query tax_records: %w", err)
	}

	fixed := 0
	err = app.RunInTransaction(func(txApp core.App) error {
		for _, rec := range records {
			stored := services.PaymentStatus(rec.GetString("payment_status"))
			want := services.DerivePaymentStatus(rec.GetFloat("assessed_amount"), rec.GetFloat("amount_paid"))
			if stored == want {
				continue
			}

			rec.Set("payment_status", string(want))
			if err := txApp.Save(rec); err != nil {
				return fmt.Errorf("reconcile: save tax record %s: %w", rec.Id, err)
			}
			log.Info().
				Str("tax_record_id", rec.Id).
				Str("from", string(stored)).
				Str("to", string(want)).
				Msg("reconcile: corrected payment status")
			fixed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return fixed, nil
}
