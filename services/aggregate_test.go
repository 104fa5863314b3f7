package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTotals_DueIsExactDifference(t *testing.T) {
	var records []TaxRecord
	for i := 1; i <= 250; i++ {
		assessed := float64(i) * 37.13
		paid := float64(i%7) * 11.07
		records = append(records, TaxRecord{AssessedAmount: assessed, AmountPaid: paid})

		due := TotalDue(records)
		want := TotalAssessed(records).Sub(TotalPaid(records))
		if !due.Equal(want) {
			t.Fatalf("after %d records: due %s != assessed-paid %s", i, due, want)
		}
		if tot := ComputeTotals(records); !tot.Due.Equal(due) || !tot.Assessed.Equal(TotalAssessed(records)) {
			t.Fatalf("ComputeTotals disagrees after %d records: %+v", i, tot)
		}
	}
}

func TestTotalAssessed_NoFloatDrift(t *testing.T) {
	records := []TaxRecord{{AssessedAmount: 0.1}, {AssessedAmount: 0.2}}
	if got := TotalAssessed(records); !got.Equal(dec("0.3")) {
		t.Errorf("TotalAssessed = %s, want 0.3", got)
	}
}

func TestTotalDue_NotClampedOnOverpayment(t *testing.T) {
	records := []TaxRecord{{AssessedAmount: 100, AmountPaid: 150}}
	if got := TotalDue(records); !got.Equal(dec("-50")) {
		t.Errorf("TotalDue = %s, want -50", got)
	}
}

func TestCollectionRate(t *testing.T) {
	tests := []struct {
		name    string
		records []TaxRecord
		want    float64
	}{
		{"no records", nil, 0},
		{"zero assessed", []TaxRecord{{AssessedAmount: 0, AmountPaid: 0}}, 0},
		{"zero assessed with payment", []TaxRecord{{AssessedAmount: 0, AmountPaid: 10}}, 0},
		{"half collected", []TaxRecord{{AssessedAmount: 1000, AmountPaid: 500}}, 50},
		{"fully collected", []TaxRecord{{AssessedAmount: 1200, AmountPaid: 1200}, {AssessedAmount: 500, AmountPaid: 500}}, 100},
		{"quarter", []TaxRecord{{AssessedAmount: 400, AmountPaid: 100}, {AssessedAmount: 400}}, 12.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CollectionRate(tt.records); got != tt.want {
				t.Errorf("CollectionRate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBreakdownByTaxType(t *testing.T) {
	records := []TaxRecord{
		{Type: TaxProperty, AssessedAmount: 1200, AmountPaid: 1200},
		{Type: TaxWater, AssessedAmount: 500, AmountPaid: 200},
		{Type: TaxWater, AssessedAmount: 300, AmountPaid: 0},
	}

	got := BreakdownByTaxType(records)

	if len(got) != 2 {
		t.Fatalf("expected 2 tax types, got %d", len(got))
	}
	water := got[TaxWater]
	if water.Count != 2 || !water.Total.Equal(dec("800")) || !water.Paid.Equal(dec("200")) || !water.Pending.Equal(dec("600")) {
		t.Errorf("water breakdown = %+v", water)
	}
	prop := got[TaxProperty]
	if prop.Count != 1 || !prop.Pending.IsZero() {
		t.Errorf("property breakdown = %+v", prop)
	}
}

func TestBreakdownByPropertyType(t *testing.T) {
	props := []Property{
		{ID: "a", Type: PropertyResidential},
		{ID: "b", Type: PropertyResidential},
		{ID: "c", Type: PropertyCommercial},
	}
	got := BreakdownByPropertyType(props)
	if got[PropertyResidential] != 2 || got[PropertyCommercial] != 1 || got[PropertyIndustrial] != 0 {
		t.Errorf("BreakdownByPropertyType = %v", got)
	}
}

func TestStatusCounts_UsesStoredStatus(t *testing.T) {
	records := []TaxRecord{
		// Stored status wins even when amounts disagree.
		{AssessedAmount: 100, AmountPaid: 100, Status: StatusUnpaid},
		{AssessedAmount: 100, AmountPaid: 50, Status: StatusPartial},
		{AssessedAmount: 100, AmountPaid: 100, Status: StatusPaid},
	}
	got := StatusCounts(records)
	if got[StatusUnpaid] != 1 || got[StatusPartial] != 1 || got[StatusPaid] != 1 {
		t.Errorf("StatusCounts = %v", got)
	}
}

func TestSummarize_TwoRecordsOnePropertyFullyPaid(t *testing.T) {
	prop := Property{ID: "p1", Type: PropertyResidential}
	rows := []ReportRow{
		{Property: prop, Tax: TaxRecord{Type: TaxProperty, AssessedAmount: 1200, AmountPaid: 1200, Status: StatusPaid, AssessmentYear: 2024}},
		{Property: prop, Tax: TaxRecord{Type: TaxWater, AssessedAmount: 500, AmountPaid: 500, Status: StatusPaid, AssessmentYear: 2024}},
	}

	s := Summarize(rows)

	if s.Properties != 1 || s.Records != 2 {
		t.Errorf("counts = %d properties, %d records", s.Properties, s.Records)
	}
	if !s.Totals.Assessed.Equal(dec("1700")) || !s.Totals.Paid.Equal(dec("1700")) || !s.Totals.Due.IsZero() {
		t.Errorf("totals = %+v", s.Totals)
	}
	if s.CollectionRate != 100 {
		t.Errorf("collection rate = %v", s.CollectionRate)
	}
	if s.ByStatus[StatusPaid] != 2 {
		t.Errorf("status counts = %v", s.ByStatus)
	}
	if s.ByPropertyType[PropertyResidential] != 1 {
		t.Errorf("property type counts = %v", s.ByPropertyType)
	}
}
