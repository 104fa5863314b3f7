package services

import "testing"

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		name     string
		assessed float64
		paid     float64
		want     PaymentStatus
	}{
		{"fully paid", 1200, 1200, StatusPaid},
		{"nothing paid", 1200, 0, StatusUnpaid},
		{"half paid", 1200, 600, StatusPartial},
		{"overpaid", 1200, 1500, StatusPaid},
		{"one paisa short", 1200, 1199.99, StatusPartial},
		{"zero assessment", 0, 0, StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivePaymentStatus(tt.assessed, tt.paid)
			if got != tt.want {
				t.Errorf("DerivePaymentStatus(%v, %v) = %s, want %s", tt.assessed, tt.paid, got, tt.want)
			}
		})
	}
}

func TestStatusDrifted(t *testing.T) {
	rec := TaxRecord{AssessedAmount: 500, AmountPaid: 500, Status: StatusUnpaid}
	if !rec.StatusDrifted() {
		t.Error("expected stored Unpaid on a settled record to be drifted")
	}
	rec.Status = StatusPaid
	if rec.StatusDrifted() {
		t.Error("expected Paid on a settled record not to be drifted")
	}
}
