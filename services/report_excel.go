package services

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	ReportDataSheet    = "Tax Records"
	ReportSummarySheet = "Summary"

	reportHeaderRow = 5
	indianMoneyFmt  = `[>=10000000]##\,##\,##\,##0.00;[>=100000]##\,##\,##0.00;##,##0.00`
)

// ReportInput is everything a report workbook is built from.
type ReportInput struct {
	Rows        []ReportRow
	Filter      ReportFilter
	Settings    PanchayatSettings
	Language    Language
	GeneratedAt time.Time
}

// reportColumns are the data sheet columns, in order.
var reportColumns = []struct {
	label LabelKey
	width float64
}{
	{LabelPropertyID, 18},
	{LabelOwnerName, 24},
	{LabelFatherName, 24},
	{LabelMobile, 14},
	{LabelAddress, 32},
	{LabelPropertyType, 16},
	{LabelArea, 10},
	{LabelTaxType, 18},
	{LabelAssessmentYear, 12},
	{LabelBaseAmount, 16},
	{LabelTotalAssessed, 16},
	{LabelAmountPaid, 16},
	{LabelBalanceDue, 16},
	{LabelPaymentStatus, 14},
	{LabelPaymentDate, 14},
}

type reportStyles struct {
	title, subtitle, header, text, money, label, value, moneyBold, percent int
}

func newReportStyles(f *excelize.File) (reportStyles, error) {
	var s reportStyles
	var err error

	moneyFmt := indianMoneyFmt

	defs := []struct {
		dst   *int
		name  string
		style *excelize.Style
	}{
		{&s.title, "title", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}},
		{&s.subtitle, "subtitle", &excelize.Style{Font: &excelize.Font{Size: 10, Color: "#555555"}}},
		{&s.header, "header", &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 10},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    thinBorders(),
		}},
		{&s.text, "text", &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()}},
		{&s.money, "money", &excelize.Style{
			Font:         &excelize.Font{Size: 10},
			Border:       thinBorders(),
			CustomNumFmt: &moneyFmt,
		}},
		{&s.label, "label", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}}},
		{&s.value, "value", &excelize.Style{Font: &excelize.Font{Size: 11}}},
		{&s.moneyBold, "money bold", &excelize.Style{
			Font:         &excelize.Font{Bold: true, Size: 11},
			CustomNumFmt: &moneyFmt,
		}},
		{&s.percent, "percent", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, NumFmt: 10}},
	}
	for _, d := range defs {
		if *d.dst, err = f.NewStyle(d.style); err != nil {
			return s, fmt.Errorf("create %s style: %w", d.name, err)
		}
	}
	return s, nil
}

// GenerateReport builds the report workbook: one row per filtered tax
// record on the data sheet and the aggregates on the summary sheet.
// It returns the workbook bytes and the summary written to it.
func GenerateReport(in ReportInput) ([]byte, Summary, error) {
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now()
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ReportDataSheet); err != nil {
		return nil, Summary{}, fmt.Errorf("set sheet name: %w", err)
	}
	if _, err := f.NewSheet(ReportSummarySheet); err != nil {
		return nil, Summary{}, fmt.Errorf("create summary sheet: %w", err)
	}

	styles, err := newReportStyles(f)
	if err != nil {
		return nil, Summary{}, err
	}

	if err := writeDataSheet(f, styles, in); err != nil {
		return nil, Summary{}, err
	}

	summary := Summarize(in.Rows)
	if err := writeSummarySheet(f, styles, in, summary); err != nil {
		return nil, Summary{}, err
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, Summary{}, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), summary, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeTitleRows(f *excelize.File, sheet string, lastCol int, styles reportStyles, in ReportInput) error {
	title := Resolve(LabelTaxReport, in.Language)
	if in.Settings.Name != "" {
		title = in.Settings.Name + " - " + title
	}
	lines := []struct {
		text  string
		style int
	}{
		{title, styles.title},
		{in.Filter.Describe(in.Language), styles.subtitle},
		{Resolve(LabelGeneratedOn, in.Language) + ": " + FormatDate(in.GeneratedAt), styles.subtitle},
	}
	for i, l := range lines {
		r := i + 1
		if err := f.MergeCell(sheet, cell(1, r), cell(lastCol, r)); err != nil {
			return fmt.Errorf("merge title row %d: %w", r, err)
		}
		f.SetCellValue(sheet, cell(1, r), sanitizeExcelCell(l.text))
		f.SetCellStyle(sheet, cell(1, r), cell(lastCol, r), l.style)
	}
	return nil
}

func writeDataSheet(f *excelize.File, styles reportStyles, in ReportInput) error {
	sheet := ReportDataSheet
	lastCol := len(reportColumns)

	for i, c := range reportColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, c.width); err != nil {
			return fmt.Errorf("set col width %s: %w", name, err)
		}
	}

	if err := writeTitleRows(f, sheet, lastCol, styles, in); err != nil {
		return err
	}

	// Column headers are always bilingual.
	for i, c := range reportColumns {
		f.SetCellValue(sheet, cell(i+1, reportHeaderRow), Resolve(c.label, LangBilingual))
	}
	f.SetCellStyle(sheet, cell(1, reportHeaderRow), cell(lastCol, reportHeaderRow), styles.header)
	f.SetRowHeight(sheet, reportHeaderRow, 30)

	na := Resolve(LabelNotAvailable, LangEnglish)
	r := reportHeaderRow + 1
	for _, row := range in.Rows {
		p, t := row.Property, row.Tax
		base := t.BaseAmount
		if base == 0 {
			base = t.AssessedAmount
		}
		father := p.FatherName
		if father == "" {
			father = na
		}

		values := []interface{}{
			sanitizeExcelCell(p.ID),
			sanitizeExcelCell(p.OwnerName),
			sanitizeExcelCell(father),
			sanitizeExcelCell(p.Mobile),
			sanitizeExcelCell(p.Address),
			PropertyTypeLabel(p.Type, in.Language),
			p.Area,
			TaxTypeLabel(t.Type, in.Language),
			strconv.Itoa(t.AssessmentYear),
			base,
			t.AssessedAmount,
			t.AmountPaid,
			amount(t.AssessedAmount).Sub(amount(t.AmountPaid)).InexactFloat64(),
			StatusLabel(t.Status, in.Language),
			FormatOptionalDate(t.PaymentDate),
		}
		for i, v := range values {
			f.SetCellValue(sheet, cell(i+1, r), v)
		}
		f.SetCellStyle(sheet, cell(1, r), cell(lastCol, r), styles.text)
		f.SetCellStyle(sheet, cell(10, r), cell(13, r), styles.money)
		r++
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      reportHeaderRow,
		TopLeftCell: cell(1, reportHeaderRow+1),
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	lastRow := r - 1
	if lastRow < reportHeaderRow+1 {
		lastRow = reportHeaderRow + 1
	}
	if err := f.AutoFilter(sheet, cell(1, reportHeaderRow)+":"+cell(lastCol, lastRow), nil); err != nil {
		return fmt.Errorf("set autofilter: %w", err)
	}
	return nil
}

// Summary sheet cells read back by callers and tests.
const (
	SummaryPropertiesCell = "B5"
	SummaryRecordsCell    = "B6"
	SummaryAssessedCell   = "B7"
	SummaryPaidCell       = "B8"
	SummaryDueCell        = "B9"
	SummaryRateCell       = "B10"
)

func writeSummarySheet(f *excelize.File, styles reportStyles, in ReportInput, s Summary) error {
	sheet := ReportSummarySheet
	lang := in.Language

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "E", 18)

	if err := writeTitleRows(f, sheet, 5, styles, in); err != nil {
		return err
	}

	f.SetCellValue(sheet, "A4", Resolve(LabelSummary, lang))
	f.SetCellStyle(sheet, "A4", "A4", styles.title)

	type kv struct {
		label LabelKey
		cell  string
		value interface{}
		style int
	}
	pairs := []kv{
		{LabelTotalProperties, SummaryPropertiesCell, s.Properties, styles.value},
		{LabelTotalRecords, SummaryRecordsCell, s.Records, styles.value},
		{LabelTotalAmount, SummaryAssessedCell, s.Totals.Assessed.InexactFloat64(), styles.moneyBold},
		{LabelTotalPaid, SummaryPaidCell, s.Totals.Paid.InexactFloat64(), styles.moneyBold},
		{LabelTotalDue, SummaryDueCell, s.Totals.Due.InexactFloat64(), styles.moneyBold},
		{LabelCollectionRate, SummaryRateCell, s.CollectionRate / 100, styles.percent},
	}
	for _, p := range pairs {
		labelCell := "A" + p.cell[1:]
		f.SetCellValue(sheet, labelCell, Resolve(p.label, lang))
		f.SetCellStyle(sheet, labelCell, labelCell, styles.label)
		f.SetCellValue(sheet, p.cell, p.value)
		f.SetCellStyle(sheet, p.cell, p.cell, p.style)
	}

	r := 12
	f.SetCellValue(sheet, cell(1, r), Resolve(LabelByStatus, lang))
	f.SetCellStyle(sheet, cell(1, r), cell(2, r), styles.header)
	r++
	for _, st := range AllPaymentStatuses {
		f.SetCellValue(sheet, cell(1, r), StatusLabel(st, lang))
		f.SetCellValue(sheet, cell(2, r), s.ByStatus[st])
		f.SetCellStyle(sheet, cell(1, r), cell(2, r), styles.text)
		r++
	}

	r++
	headers := []LabelKey{LabelTaxType, LabelCount, LabelTotalAmount, LabelTotalPaid, LabelTotalDue}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(i+1, r), Resolve(h, lang))
	}
	f.SetCellStyle(sheet, cell(1, r), cell(len(headers), r), styles.header)
	r++
	for _, tt := range AllTaxTypes {
		b := s.ByTaxType[tt]
		f.SetCellValue(sheet, cell(1, r), TaxTypeLabel(tt, lang))
		f.SetCellValue(sheet, cell(2, r), b.Count)
		f.SetCellValue(sheet, cell(3, r), b.Total.InexactFloat64())
		f.SetCellValue(sheet, cell(4, r), b.Paid.InexactFloat64())
		f.SetCellValue(sheet, cell(5, r), b.Pending.InexactFloat64())
		f.SetCellStyle(sheet, cell(1, r), cell(2, r), styles.text)
		f.SetCellStyle(sheet, cell(3, r), cell(5, r), styles.money)
		r++
	}
	return nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
