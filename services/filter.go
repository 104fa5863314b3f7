package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FilterAll matches every value of a property-type or status filter.
const FilterAll = "all"

// ReportRow is one tax record paired with the property it belongs to.
// Property.Taxes is left empty on rows.
type ReportRow struct {
	Property Property
	Tax      TaxRecord
}

// FinancialYear is an Indian financial year, April of Start to March of End.
type FinancialYear struct {
	Start int
	End   int
}

// ParseFinancialYear parses the "YYYY-YY" form, e.g. "2025-26".
func ParseFinancialYear(s string) (FinancialYear, error) {
	startStr, endStr, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || len(startStr) != 4 || len(endStr) != 2 {
		return FinancialYear{}, fmt.Errorf("financial year %q must look like 2025-26", s)
	}
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return FinancialYear{}, fmt.Errorf("financial year %q: bad start year: %w", s, err)
	}
	endSuffix, err := strconv.Atoi(endStr)
	if err != nil {
		return FinancialYear{}, fmt.Errorf("financial year %q: bad end year: %w", s, err)
	}
	if endSuffix != (start+1)%100 {
		return FinancialYear{}, fmt.Errorf("financial year %q: end year must follow start year", s)
	}
	return FinancialYear{Start: start, End: start + 1}, nil
}

// FinancialYearOf returns the financial year containing t in IST.
// Jan 2026 falls in 2025-26, May 2026 in 2026-27.
func FinancialYearOf(t time.Time) FinancialYear {
	t = t.In(IST)
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return FinancialYear{Start: start, End: start + 1}
}

func (fy FinancialYear) String() string {
	return fmt.Sprintf("%d-%02d", fy.Start, fy.End%100)
}

// Window returns the first and last instant of the financial year in IST.
func (fy FinancialYear) Window() (time.Time, time.Time) {
	from := time.Date(fy.Start, time.April, 1, 0, 0, 0, 0, IST)
	to := time.Date(fy.End, time.April, 1, 0, 0, 0, 0, IST).Add(-time.Nanosecond)
	return from, to
}

// Matches reports whether a record belongs to the financial year. A record
// matches when its assessment year equals either calendar year of the FY,
// or when it was paid inside the April-to-March window. The calendar-year
// test is intentionally loose because assessment years are stored as plain
// calendar years.
func (fy FinancialYear) Matches(t TaxRecord) bool {
	if t.AssessmentYear == fy.Start || t.AssessmentYear == fy.End {
		return true
	}
	if t.PaymentDate == nil {
		return false
	}
	from, to := fy.Window()
	paid := t.PaymentDate.In(IST)
	return !paid.Before(from) && !paid.After(to)
}

// DateRange is an inclusive range of IST calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses two YYYY-MM-DD dates as IST days.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(start), IST)
	if err != nil {
		return DateRange{}, fmt.Errorf("start date %q: %w", start, err)
	}
	e, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(end), IST)
	if err != nil {
		return DateRange{}, fmt.Errorf("end date %q: %w", end, err)
	}
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return DateRange{Start: s, End: e}, nil
}

// Contains reports whether the record was paid on a day inside the range.
// Records without a payment date never match.
func (r DateRange) Contains(t TaxRecord) bool {
	if t.PaymentDate == nil {
		return false
	}
	day := istDay(*t.PaymentDate)
	return !day.Before(istDay(r.Start)) && !day.After(istDay(r.End))
}

func istDay(t time.Time) time.Time {
	t = t.In(IST)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, IST)
}

// ReportFilter selects report rows. All set criteria must match.
type ReportFilter struct {
	FinancialYear *FinancialYear
	Range         *DateRange
	PropertyType  string
	Status        string
}

// Match reports whether one record of property p passes the filter.
func (f ReportFilter) Match(p Property, t TaxRecord) bool {
	if f.FinancialYear != nil && !f.FinancialYear.Matches(t) {
		return false
	}
	if f.Range != nil && !f.Range.Contains(t) {
		return false
	}
	if !matchesOption(f.PropertyType, string(p.Type)) {
		return false
	}
	return matchesOption(f.Status, string(t.Status))
}

func matchesOption(want, got string) bool {
	return want == "" || strings.EqualFold(want, FilterAll) || want == got
}

// Apply flattens properties into rows and keeps the matching ones, in
// property order then stored record order.
func (f ReportFilter) Apply(properties []Property) []ReportRow {
	var rows []ReportRow
	for _, p := range properties {
		for _, t := range p.Taxes {
			if f.Match(p, t) {
				rows = append(rows, ReportRow{Property: p.withoutTaxes(), Tax: t})
			}
		}
	}
	return rows
}

// Describe renders the date part of the filter for report headings.
func (f ReportFilter) Describe(lang Language) string {
	switch {
	case f.Range != nil:
		return Resolve(LabelPeriod, lang) + ": " + FormatDate(f.Range.Start) + " - " + FormatDate(f.Range.End)
	case f.FinancialYear != nil:
		return Resolve(LabelFinancialYear, lang) + ": " + f.FinancialYear.String()
	default:
		return Resolve(LabelAll, lang)
	}
}

func (p Property) withoutTaxes() Property {
	p.Taxes = nil
	return p
}
