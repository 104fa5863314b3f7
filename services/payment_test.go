package services

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefaultAssessment(t *testing.T) {
	settings := PanchayatSettings{TaxRates: map[PropertyType]float64{
		PropertyResidential:  0.5,
		PropertyAgricultural: 150,
	}}
	tests := []struct {
		name string
		prop Property
		want float64
	}{
		{"residential", Property{Type: PropertyResidential, Area: 1200}, 600},
		{"agricultural acres", Property{Type: PropertyAgricultural, Area: 3.5}, 525},
		{"no rate configured", Property{Type: PropertyIndustrial, Area: 1000}, 0},
		{"zero area", Property{Type: PropertyResidential}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultAssessment(tt.prop, settings); got != tt.want {
				t.Errorf("DefaultAssessment = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyPayment(t *testing.T) {
	base := TaxRecord{Type: TaxWater, AssessedAmount: 500, Status: StatusUnpaid, AssessmentYear: 2025}
	paidAt := time.Date(2025, time.August, 10, 11, 0, 0, 0, IST)

	tests := []struct {
		name       string
		start      TaxRecord
		amount     float64
		wantPaid   float64
		wantStatus PaymentStatus
	}{
		{"partial", base, 200, 200, StatusPartial},
		{"full", base, 500, 500, StatusPaid},
		{"completes partial", TaxRecord{AssessedAmount: 500, AmountPaid: 200, Status: StatusPartial}, 300, 500, StatusPaid},
		{"overpayment", base, 600, 600, StatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyPayment(tt.start, Payment{Amount: tt.amount, Method: "Cash", PaidAt: paidAt})
			if err != nil {
				t.Fatalf("ApplyPayment error: %v", err)
			}
			if got.AmountPaid != tt.wantPaid {
				t.Errorf("AmountPaid = %v, want %v", got.AmountPaid, tt.wantPaid)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
			if got.PaymentDate == nil || !got.PaymentDate.Equal(paidAt) {
				t.Errorf("PaymentDate = %v, want %v", got.PaymentDate, paidAt)
			}
		})
	}
}

func TestApplyPayment_ReceiptNumber(t *testing.T) {
	paidAt := time.Date(2026, time.January, 5, 9, 0, 0, 0, IST)
	rec := TaxRecord{AssessedAmount: 100}

	got, err := ApplyPayment(rec, Payment{Amount: 50, Method: "UPI", PaidAt: paidAt})
	if err != nil {
		t.Fatalf("ApplyPayment error: %v", err)
	}
	if !strings.HasPrefix(got.ReceiptNumber, "RCPT-2026-") {
		t.Errorf("generated receipt = %q", got.ReceiptNumber)
	}

	got, err = ApplyPayment(rec, Payment{Amount: 50, Method: "UPI", ReceiptNumber: "R-77", PaidAt: paidAt})
	if err != nil {
		t.Fatalf("ApplyPayment error: %v", err)
	}
	if got.ReceiptNumber != "R-77" {
		t.Errorf("explicit receipt = %q, want R-77", got.ReceiptNumber)
	}
}

func TestApplyPayment_Rejects(t *testing.T) {
	rec := TaxRecord{AssessedAmount: 100, Status: StatusUnpaid}

	if _, err := ApplyPayment(rec, Payment{Amount: 0, Method: "Cash"}); !errors.Is(err, ErrNonPositivePayment) {
		t.Errorf("zero amount err = %v", err)
	}
	if _, err := ApplyPayment(rec, Payment{Amount: -5, Method: "Cash"}); !errors.Is(err, ErrNonPositivePayment) {
		t.Errorf("negative amount err = %v", err)
	}
	if _, err := ApplyPayment(rec, Payment{Amount: 10, Method: "  "}); !errors.Is(err, ErrMissingMethod) {
		t.Errorf("blank method err = %v", err)
	}
}
