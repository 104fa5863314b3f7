package services

// DerivePaymentStatus computes the status implied by the amounts: Paid once
// the paid amount covers the assessment, Partial for any smaller positive
// payment, Unpaid otherwise. A zero assessment counts as Paid.
func DerivePaymentStatus(assessed, paid float64) PaymentStatus {
	switch {
	case paid >= assessed:
		return StatusPaid
	case paid > 0:
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// StatusDrifted reports whether the stored status disagrees with the amounts.
func (t TaxRecord) StatusDrifted() bool {
	return t.Status != DerivePaymentStatus(t.AssessedAmount, t.AmountPaid)
}
