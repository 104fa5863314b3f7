package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// ImportSheet is the sheet name of the property import template.
const ImportSheet = "Properties"

// importField is one column of a property import file. Key matches the JSON
// name of the Property field it fills.
type importField struct {
	Key      string
	Label    LabelKey
	Required bool
	Example  string
}

var propertyImportFields = []importField{
	{Key: "ownerName", Label: LabelOwnerName, Required: true, Example: "Ramesh Kumar"},
	{Key: "fatherName", Label: LabelFatherName, Example: "Suresh Kumar"},
	{Key: "mobile", Label: LabelMobile, Example: "9876543210"},
	{Key: "houseNo", Label: LabelHouseNo, Required: true, Example: "H-12"},
	{Key: "address", Label: LabelAddress, Example: "Ward 3, Main Road"},
	{Key: "propertyType", Label: LabelPropertyType, Required: true, Example: string(PropertyResidential)},
	{Key: "area", Label: LabelArea, Example: "1200"},
}

// RowError is a problem with one field of one imported row. Row is the
// 1-based line in the file, counting the header.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportedProperty is a validated row ready to be saved.
type ImportedProperty struct {
	Row      int
	Property Property
}

// PropertyImport is the outcome of parsing and validating an import file.
type PropertyImport struct {
	FileName   string             `json:"fileName"`
	TotalRows  int                `json:"totalRows"`
	ValidRows  int                `json:"validRows"`
	ErrorRows  int                `json:"errorRows"`
	Errors     []RowError         `json:"errors,omitempty"`
	Properties []ImportedProperty `json:"-"`
}

// ErrUnsupportedImport is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedImport = errors.New("unsupported file format: must be .csv or .xlsx")

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// mapHeaders maps column headers to import field keys. A header matches a
// field by its key or by its English, Hindi or bilingual label, ignoring
// case and the " *" the template adds to required columns. Unknown columns
// map to "".
func mapHeaders(headers []string) ([]string, []string) {
	lookup := make(map[string]string)
	for _, f := range propertyImportFields {
		lookup[strings.ToLower(f.Key)] = f.Key
		for _, lang := range []Language{LangEnglish, LangHindi, LangBilingual} {
			lookup[strings.ToLower(Resolve(f.Label, lang))] = f.Key
		}
	}

	mapped := make([]string, len(headers))
	var unrecognized []string
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSpace(strings.TrimSuffix(norm, "*"))
		if key, ok := lookup[norm]; ok {
			mapped[i] = key
		} else if strings.TrimSpace(h) != "" {
			unrecognized = append(unrecognized, h)
		}
	}
	return mapped, unrecognized
}

func fieldLabel(key string) string {
	for _, f := range propertyImportFields {
		if f.Key == key {
			return Resolve(f.Label, LangEnglish)
		}
	}
	return key
}

// ParsePropertyImport reads a CSV or XLSX file of properties and validates
// every row the same way a single registration is validated. Blank rows are
// skipped. A file missing a required column is rejected as a whole.
func ParsePropertyImport(r io.Reader, fileName string) (*PropertyImport, error) {
	var headers []string
	var dataRows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		headers, dataRows, err = parseCSV(r)
	case ".xlsx":
		headers, dataRows, err = parseExcel(r)
	default:
		return nil, ErrUnsupportedImport
	}
	if err != nil {
		return nil, err
	}

	columnKeys, _ := mapHeaders(headers)
	present := make(map[string]bool, len(columnKeys))
	for _, k := range columnKeys {
		present[k] = true
	}
	var missing []string
	for _, f := range propertyImportFields {
		if f.Required && !present[f.Key] {
			missing = append(missing, Resolve(f.Label, LangEnglish))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}

	result := &PropertyImport{FileName: fileName}
	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row

		data := make(map[string]string, len(columnKeys))
		blank := true
		for colIdx, key := range columnKeys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[colIdx])
			data[key] = v
			if v != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		result.TotalRows++

		p, rowErrors := propertyFromRow(rowNum, data)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorRows++
			continue
		}
		result.Properties = append(result.Properties, ImportedProperty{Row: rowNum, Property: p})
	}
	result.ValidRows = len(result.Properties)
	return result, nil
}

func propertyFromRow(rowNum int, data map[string]string) (Property, []RowError) {
	var errs []RowError

	p := Property{
		OwnerName:  data["ownerName"],
		FatherName: data["fatherName"],
		Mobile:     data["mobile"],
		HouseNo:    data["houseNo"],
		Address:    data["address"],
		Type:       matchPropertyType(data["propertyType"]),
	}
	if raw := data["area"]; raw != "" {
		area, err := cast.ToFloat64E(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			errs = append(errs, RowError{Row: rowNum, Field: fieldLabel("area"), Message: fmt.Sprintf("%q is not a number", raw)})
		}
		p.Area = area
	}

	var verrs validation.Errors
	if err := p.Validate(); errors.As(err, &verrs) {
		for _, f := range propertyImportFields {
			if ferr, ok := verrs[f.Key]; ok {
				errs = append(errs, RowError{Row: rowNum, Field: fieldLabel(f.Key), Message: ferr.Error()})
			}
		}
	} else if err != nil {
		errs = append(errs, RowError{Row: rowNum, Message: err.Error()})
	}
	return p, errs
}

// matchPropertyType accepts property types in any letter case. Unknown
// values pass through for validation to report.
func matchPropertyType(s string) PropertyType {
	for _, t := range AllPropertyTypes {
		if strings.EqualFold(s, string(t)) {
			return t
		}
	}
	return PropertyType(s)
}

// GeneratePropertyImportTemplate builds an .xlsx with the import columns,
// required ones marked with " *", and one example row.
func GeneratePropertyImportTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ImportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	requiredStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1D4ED8"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create required header style: %w", err)
	}
	optionalStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#6B7280"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create optional header style: %w", err)
	}

	for i, field := range propertyImportFields {
		col, _ := excelize.ColumnNumberToName(i + 1)
		header := Resolve(field.Label, LangBilingual)
		style := optionalStyle
		if field.Required {
			header += " *"
			style = requiredStyle
		}
		f.SetCellValue(ImportSheet, col+"1", header)
		f.SetCellStyle(ImportSheet, col+"1", col+"1", style)
		f.SetCellValue(ImportSheet, col+"2", field.Example)
		f.SetColWidth(ImportSheet, col, col, 24)
	}
	f.SetRowHeight(ImportSheet, 1, 30)
	f.SetPanes(ImportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write import template: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateImportErrorReport creates a downloadable .xlsx file from row errors.
func GenerateImportErrorReport(errs []RowError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Field")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errs {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, sanitizeExcelCell(e.Field))
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
