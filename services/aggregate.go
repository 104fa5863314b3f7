package services

import (
	"github.com/shopspring/decimal"
)

// Totals are the assessed, paid and due sums over a set of tax records.
// Due is always exactly Assessed minus Paid.
type Totals struct {
	Assessed decimal.Decimal
	Paid     decimal.Decimal
	Due      decimal.Decimal
}

// TypeBreakdown is the per-tax-type rollup.
type TypeBreakdown struct {
	Count   int
	Total   decimal.Decimal
	Paid    decimal.Decimal
	Pending decimal.Decimal
}

// Summary is every aggregate the dashboard and the report summary sheet show.
type Summary struct {
	Properties     int
	Records        int
	Totals         Totals
	CollectionRate float64
	ByTaxType      map[TaxType]TypeBreakdown
	ByPropertyType map[PropertyType]int
	ByStatus       map[PaymentStatus]int
}

func amount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// TotalAssessed sums the assessed amounts.
func TotalAssessed(records []TaxRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(amount(r.AssessedAmount))
	}
	return sum
}

// TotalPaid sums the paid amounts.
func TotalPaid(records []TaxRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(amount(r.AmountPaid))
	}
	return sum
}

// TotalDue is TotalAssessed minus TotalPaid. It is negative on overpayment.
func TotalDue(records []TaxRecord) decimal.Decimal {
	return TotalAssessed(records).Sub(TotalPaid(records))
}

// ComputeTotals accumulates all three totals in a single pass.
func ComputeTotals(records []TaxRecord) Totals {
	assessed, paid := decimal.Zero, decimal.Zero
	for _, r := range records {
		assessed = assessed.Add(amount(r.AssessedAmount))
		paid = paid.Add(amount(r.AmountPaid))
	}
	return Totals{Assessed: assessed, Paid: paid, Due: assessed.Sub(paid)}
}

// CollectionRate is paid over assessed as a percentage, 0 when nothing is assessed.
func CollectionRate(records []TaxRecord) float64 {
	return collectionRate(ComputeTotals(records))
}

func collectionRate(t Totals) float64 {
	if t.Assessed.IsZero() {
		return 0
	}
	return t.Paid.Div(t.Assessed).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// BreakdownByTaxType groups count, total, paid and pending per tax type.
func BreakdownByTaxType(records []TaxRecord) map[TaxType]TypeBreakdown {
	out := make(map[TaxType]TypeBreakdown)
	for _, r := range records {
		b := out[r.Type]
		b.Count++
		b.Total = b.Total.Add(amount(r.AssessedAmount))
		b.Paid = b.Paid.Add(amount(r.AmountPaid))
		b.Pending = b.Total.Sub(b.Paid)
		out[r.Type] = b
	}
	return out
}

// BreakdownByPropertyType counts properties per type.
func BreakdownByPropertyType(properties []Property) map[PropertyType]int {
	out := make(map[PropertyType]int)
	for _, p := range properties {
		out[p.Type]++
	}
	return out
}

// StatusCounts counts records by their stored status.
func StatusCounts(records []TaxRecord) map[PaymentStatus]int {
	out := make(map[PaymentStatus]int)
	for _, r := range records {
		out[r.Status]++
	}
	return out
}

// Summarize aggregates a filtered row set. Properties are counted once
// each however many of their records matched.
func Summarize(rows []ReportRow) Summary {
	records := make([]TaxRecord, len(rows))
	seen := make(map[string]bool)
	var props []Property
	for i, row := range rows {
		records[i] = row.Tax
		if !seen[row.Property.ID] {
			seen[row.Property.ID] = true
			props = append(props, row.Property)
		}
	}

	totals := ComputeTotals(records)
	return Summary{
		Properties:     len(props),
		Records:        len(records),
		Totals:         totals,
		CollectionRate: collectionRate(totals),
		ByTaxType:      BreakdownByTaxType(records),
		ByPropertyType: BreakdownByPropertyType(props),
		ByStatus:       StatusCounts(records),
	}
}
