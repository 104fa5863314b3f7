package services

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	ErrNonPositivePayment = errors.New("payment amount must be positive")
	ErrMissingMethod      = errors.New("payment method is required")
)

// DefaultAssessment is the assessed amount implied by a property's area and
// the per-unit rate for its type, rounded to paise.
func DefaultAssessment(p Property, s PanchayatSettings) float64 {
	return math.Round(p.Area*s.RateFor(p.Type)*100) / 100
}

// Payment is one payment against a tax record.
type Payment struct {
	Amount        float64
	Method        string
	ReceiptNumber string
	PaidAt        time.Time
}

// ApplyPayment adds the payment to the record and recomputes its status. A
// receipt number is generated when none is given. Overpayment is allowed and
// shows up as a negative due.
func ApplyPayment(t TaxRecord, p Payment) (TaxRecord, error) {
	if p.Amount <= 0 {
		return t, ErrNonPositivePayment
	}
	method := strings.TrimSpace(p.Method)
	if method == "" {
		return t, ErrMissingMethod
	}

	paidAt := p.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	receipt := strings.TrimSpace(p.ReceiptNumber)
	if receipt == "" {
		receipt = GenerateReceiptNumber(paidAt.In(IST).Year())
	}

	t.AmountPaid = math.Round((t.AmountPaid+p.Amount)*100) / 100
	t.Status = DerivePaymentStatus(t.AssessedAmount, t.AmountPaid)
	t.PaymentMethod = method
	t.ReceiptNumber = receipt
	t.PaymentDate = &paidAt
	return t, nil
}
