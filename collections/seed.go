package collections

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"

	"panchayattax/services"
)

// ── Definition structs ───────────────────────────────────────────────────

type taxDef struct {
	taxType   services.TaxType
	year      int
	assessed  float64
	paid      float64
	paidOn    string
	receiptNo string
	method    string
}

type propertyDef struct {
	ownerName    string
	fatherName   string
	mobile       string
	houseNo      string
	address      string
	propertyType services.PropertyType
	area         float64
	taxes        []taxDef
}

var seedSettings = services.PanchayatSettings{
	Name:          "Gram Panchayat Loni",
	NameHi:        "ग्राम पंचायत लोनी",
	District:      "Ahmednagar",
	State:         "Maharashtra",
	PinCode:       "413713",
	Address:       "Panchayat Bhavan, Main Road, Loni",
	SecretaryName: "S. K. Patil",
	TaxRates: map[services.PropertyType]float64{
		services.PropertyResidential:  0.5,
		services.PropertyCommercial:   1.2,
		services.PropertyAgricultural: 150,
		services.PropertyIndustrial:   2,
	},
	LateFeePercent: 2,
}

var seedProperties = []propertyDef{
	{
		ownerName:    "Ramesh Shinde",
		fatherName:   "Vitthal Shinde",
		mobile:       "9822012345",
		houseNo:      "H-101",
		address:      "Ward 1, Near Hanuman Mandir",
		propertyType: services.PropertyResidential,
		area:         1200,
		taxes: []taxDef{
			{services.TaxProperty, 2025, 600, 600, "2025-05-12", "RCPT-2025-0001", "Cash"},
			{services.TaxWater, 2025, 500, 500, "2025-05-12", "RCPT-2025-0001", "Cash"},
			{services.TaxSanitation, 2025, 200, 0, "", "", ""},
		},
	},
	{
		ownerName:    "Sunita Kale",
		fatherName:   "Prakash Kale",
		mobile:       "9890098765",
		houseNo:      "S-14",
		address:      "Market Road",
		propertyType: services.PropertyCommercial,
		area:         800,
		taxes: []taxDef{
			{services.TaxProperty, 2025, 960, 500, "2025-08-03", "RCPT-2025-0002", "UPI"},
			{services.TaxBusiness, 2025, 1500, 0, "", "", ""},
			{services.TaxLighting, 2025, 150, 150, "2025-08-03", "RCPT-2025-0002", "UPI"},
		},
	},
	{
		ownerName:    "Dattatray Gaikwad",
		houseNo:      "F-7",
		address:      "Survey No. 42, Pravara Canal",
		propertyType: services.PropertyAgricultural,
		area:         3.5,
		taxes: []taxDef{
			{services.TaxLand, 2024, 525, 525, "2024-11-20", "RCPT-2024-0031", "Cheque"},
			{services.TaxLand, 2025, 525, 0, "", "", ""},
		},
	},
}

// Seed inserts demo panchayat settings, properties and tax records. It is a
// no-op once any property exists.
func Seed(app core.App) error {
	propertiesCol, err := app.FindCollectionByNameOrId(Properties)
	if err != nil {
		return fmt.Errorf("seed: could not find properties collection: %w", err)
	}
	existing, err := app.FindRecordsByFilter(propertiesCol, "", "", 1, 0)
	if err != nil {
		return fmt.Errorf("seed: could not query properties: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	log.Info().Msg("seed: properties collection is empty, inserting seed data")

	settingsCol, err := app.FindCollectionByNameOrId(PanchayatSettings)
	if err != nil {
		return fmt.Errorf("seed: could not find panchayat_settings collection: %w", err)
	}
	taxCol, err := app.FindCollectionByNameOrId(TaxRecords)
	if err != nil {
		return fmt.Errorf("seed: could not find tax_records collection: %w", err)
	}

	return app.RunInTransaction(func(txApp core.App) error {
		if err := seedSettingsRecord(txApp, settingsCol); err != nil {
			return err
		}

		records := 0
		for _, d := range seedProperties {
			prop := core.NewRecord(propertiesCol)
			prop.Set("owner_name", d.ownerName)
			prop.Set("father_name", d.fatherName)
			prop.Set("mobile", d.mobile)
			prop.Set("house_no", d.houseNo)
			prop.Set("address", d.address)
			prop.Set("property_type", string(d.propertyType))
			prop.Set("area", d.area)
			if err := txApp.Save(prop); err != nil {
				return fmt.Errorf("seed: save property %q: %w", d.houseNo, err)
			}

			for i, td := range d.taxes {
				rec := core.NewRecord(taxCol)
				rec.Set("property", prop.Id)
				rec.Set("sort_order", i+1)
				rec.Set("tax_type", string(td.taxType))
				rec.Set("base_amount", td.assessed)
				rec.Set("assessed_amount", td.assessed)
				rec.Set("amount_paid", td.paid)
				rec.Set("payment_status", string(services.DerivePaymentStatus(td.assessed, td.paid)))
				rec.Set("assessment_year", td.year)
				rec.Set("receipt_number", td.receiptNo)
				rec.Set("payment_method", td.method)
				if td.paidOn != "" {
					paidOn, err := time.ParseInLocation(time.DateOnly, td.paidOn, services.IST)
					if err != nil {
						return fmt.Errorf("seed: payment date %q: %w", td.paidOn, err)
					}
					rec.Set("payment_date", paidOn)
				}
				if err := txApp.Save(rec); err != nil {
					return fmt.Errorf("seed: save %s tax for %q: %w", td.taxType, d.houseNo, err)
				}
				records++
			}
		}

		log.Info().
			Int("properties", len(seedProperties)).
			Int("tax_records", records).
			Msg("seed: done")
		return nil
	})
}

func seedSettingsRecord(app core.App, col *core.Collection) error {
	existing, err := app.FindRecordsByFilter(col, "", "", 1, 0)
	if err != nil {
		return fmt.Errorf("seed: could not query panchayat_settings: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	rec := core.NewRecord(col)
	rec.Set("name", seedSettings.Name)
	rec.Set("name_hi", seedSettings.NameHi)
	rec.Set("district", seedSettings.District)
	rec.Set("state", seedSettings.State)
	rec.Set("pin_code", seedSettings.PinCode)
	rec.Set("address", seedSettings.Address)
	rec.Set("secretary_name", seedSettings.SecretaryName)
	rec.Set("tax_rates", seedSettings.TaxRates)
	rec.Set("late_fee_percent", seedSettings.LateFeePercent)
	if err := app.Save(rec); err != nil {
		return fmt.Errorf("seed: save panchayat settings: %w", err)
	}
	return nil
}
