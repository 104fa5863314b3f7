package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"panchayattax/apperr"
	"panchayattax/authz"
	"panchayattax/services"
)

type assessmentRequest struct {
	TaxType        services.TaxType `json:"taxType"`
	AssessmentYear int              `json:"assessmentYear"`
	BaseAmount     *float64         `json:"baseAmount"`
	AssessedAmount *float64         `json:"assessedAmount"`
}

type paymentRequest struct {
	Amount        float64 `json:"amount"`
	Method        string  `json:"paymentMethod"`
	ReceiptNumber string  `json:"receiptNumber"`
}

// HandleTaxAssess returns a handler that adds a tax assessment to a
// property. Without an assessed amount the property's area is charged at
// the configured rate for its type.
func HandleTaxAssess(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.ManageProperties); err != nil {
			return d.respondError(e, err)
		}

		var req assessmentRequest
		if err := e.BindBody(&req); err != nil {
			return d.respondError(e, badBody(err))
		}

		ctx := e.Request.Context()
		property, err := d.Store.GetProperty(ctx, e.Request.PathValue("id"))
		if err != nil {
			return d.respondError(e, err)
		}

		var assessed float64
		if req.AssessedAmount != nil {
			assessed = *req.AssessedAmount
		} else {
			settings, err := d.Store.GetSettings(ctx)
			if err != nil {
				return d.respondError(e, err)
			}
			assessed = services.DefaultAssessment(property, settings)
		}
		base := assessed
		if req.BaseAmount != nil {
			base = *req.BaseAmount
		}

		rec, err := d.Store.AddTaxRecord(ctx, services.TaxRecord{
			PropertyID:     property.ID,
			Type:           req.TaxType,
			BaseAmount:     base,
			AssessedAmount: assessed,
			Status:         services.DerivePaymentStatus(assessed, 0),
			AssessmentYear: req.AssessmentYear,
		})
		if err != nil {
			return d.respondError(e, err)
		}
		d.logFor(e).Info("tax assessed", map[string]interface{}{
			"property_id":   property.ID,
			"tax_record_id": rec.ID,
			"tax_type":      rec.Type,
			"assessed":      rec.AssessedAmount,
		})
		return e.JSON(http.StatusCreated, rec)
	}
}

// HandleTaxPayment returns a handler that records a payment against a tax
// record and recomputes its status.
func HandleTaxPayment(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.RecordPayment); err != nil {
			return d.respondError(e, err)
		}

		var req paymentRequest
		if err := e.BindBody(&req); err != nil {
			return d.respondError(e, badBody(err))
		}

		saved, err := d.Store.RecordPayment(e.Request.Context(), e.Request.PathValue("id"), services.Payment{
			Amount:        req.Amount,
			Method:        req.Method,
			ReceiptNumber: req.ReceiptNumber,
			PaidAt:        time.Now(),
		})
		if errors.Is(err, services.ErrNonPositivePayment) || errors.Is(err, services.ErrMissingMethod) {
			return d.respondError(e, paymentError(err))
		}
		if err != nil {
			return d.respondError(e, err)
		}
		d.logFor(e).Info("payment recorded", map[string]interface{}{
			"tax_record_id": saved.ID,
			"amount":        req.Amount,
			"receipt":       saved.ReceiptNumber,
			"status":        saved.Status,
		})
		return e.JSON(http.StatusOK, saved)
	}
}

func paymentError(err error) error {
	field := "amount"
	if errors.Is(err, services.ErrMissingMethod) {
		field = "paymentMethod"
	}
	return &apperr.Error{
		Kind:    apperr.InvalidArgument,
		Message: "invalid payment",
		Fields:  map[string]string{field: err.Error()},
		Err:     err,
	}
}
