package services

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var pinCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

func propertyTypeValues() []interface{} {
	out := make([]interface{}, len(AllPropertyTypes))
	for i, v := range AllPropertyTypes {
		out[i] = v
	}
	return out
}

func taxTypeValues() []interface{} {
	out := make([]interface{}, len(AllTaxTypes))
	for i, v := range AllTaxTypes {
		out[i] = v
	}
	return out
}

func statusValues() []interface{} {
	out := make([]interface{}, len(AllPaymentStatuses))
	for i, v := range AllPaymentStatuses {
		out[i] = v
	}
	return out
}

// Validate checks the owner details of a property. Tax records are validated
// separately.
func (p Property) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.OwnerName, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.HouseNo, validation.Required, validation.Length(1, 50)),
		validation.Field(&p.Mobile, is.Digit, validation.Length(10, 10)),
		validation.Field(&p.Type, validation.Required, validation.In(propertyTypeValues()...)),
		validation.Field(&p.Area, validation.Min(0.0)),
	)
}

// Validate checks the amounts and enums of a tax record.
func (t TaxRecord) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Type, validation.Required, validation.In(taxTypeValues()...)),
		validation.Field(&t.BaseAmount, validation.Min(0.0)),
		validation.Field(&t.AssessedAmount, validation.Min(0.0)),
		validation.Field(&t.AmountPaid, validation.Min(0.0)),
		validation.Field(&t.Status, validation.Required, validation.In(statusValues()...)),
		validation.Field(&t.AssessmentYear, validation.Required, validation.Min(1900), validation.Max(2200)),
	)
}

// Validate checks the letterhead and rates.
func (s PanchayatSettings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.PinCode, validation.Match(pinCodePattern)),
		validation.Field(&s.LateFeePercent, validation.Min(0.0), validation.Max(100.0)),
		validation.Field(&s.TaxRates, validation.By(validateRates)),
	)
}

func validateRates(value interface{}) error {
	rates, _ := value.(map[PropertyType]float64)
	for pt, rate := range rates {
		if err := validation.Validate(pt, validation.In(propertyTypeValues()...)); err != nil {
			return validation.NewError("validation_rate_type", "unknown property type "+string(pt))
		}
		if rate < 0 {
			return validation.NewError("validation_rate_negative", "rate for "+string(pt)+" must not be negative")
		}
	}
	return nil
}
