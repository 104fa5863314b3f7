package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBillPrefix is the panchayat code bill numbers start with.
const DefaultBillPrefix = "LONI"

// randomSegment returns the first 8 hex characters of a fresh UUID, upper-cased.
func randomSegment() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// formatBillNumber constructs the bill number string from components.
func formatBillNumber(prefix string, year int, segment string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, year, segment)
}

// GenerateBillNumber creates a new bill number.
// Format: {prefix}-{year}-{segment}
//   - prefix: panchayat code, DefaultBillPrefix when empty
//   - year: assessment year the bill covers
//   - segment: 8 random upper-case hex characters
//
// Numbers are random, not sequential; regenerating a bill yields a new number.
func GenerateBillNumber(prefix string, year int) string {
	if prefix == "" {
		prefix = DefaultBillPrefix
	}
	return formatBillNumber(prefix, year, randomSegment())
}

// GenerateReceiptNumber creates a receipt number for a recorded payment.
// Format: RCPT-{year}-{segment}
func GenerateReceiptNumber(year int) string {
	return formatBillNumber("RCPT", year, randomSegment())
}

// BillStoragePath is the object key a bill PDF is stored under.
func BillStoragePath(year int, billID string) string {
	return fmt.Sprintf("bills/%d/%s.pdf", year, billID)
}

// ReceiptFilename is the download filename of a bill PDF.
func ReceiptFilename(propertyID string, generatedAt time.Time) string {
	return fmt.Sprintf("Tax-Receipt-%s-%s.pdf", propertyID, FormatFileDate(generatedAt))
}

// ReportFilename is the download filename of a report workbook.
func ReportFilename(f ReportFilter, now time.Time) string {
	switch {
	case f.Range != nil:
		return fmt.Sprintf("Tax_Report_%s_to_%s.xlsx",
			f.Range.Start.In(IST).Format(time.DateOnly), f.Range.End.In(IST).Format(time.DateOnly))
	case f.FinancialYear != nil:
		return fmt.Sprintf("Tax_Report_FY_%s_%s.xlsx", f.FinancialYear, now.In(IST).Format(time.DateOnly))
	default:
		return fmt.Sprintf("Tax_Report_All_%s.xlsx", now.In(IST).Format(time.DateOnly))
	}
}
