package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParsePropertyImport_CSV(t *testing.T) {
	csvData := "Owner Name,House No,Mobile,Property Type,Area\n" +
		"Ramesh Kumar,H-12,9876543210,residential,1200\n" +
		",,,,\n" +
		"Sita Devi,H-13,12345,Commercial,\"1,500\"\n"

	result, err := ParsePropertyImport(strings.NewReader(csvData), "props.csv")
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalRows, "blank rows are skipped")
	assert.Equal(t, 1, result.ValidRows)
	assert.Equal(t, 1, result.ErrorRows)

	require.Len(t, result.Properties, 1)
	p := result.Properties[0]
	assert.Equal(t, 2, p.Row)
	assert.Equal(t, "Ramesh Kumar", p.Property.OwnerName)
	assert.Equal(t, PropertyResidential, p.Property.Type)
	assert.Equal(t, 1200.0, p.Property.Area)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Equal(t, "Mobile", result.Errors[0].Field)
}

func TestParsePropertyImport_BilingualHeaders(t *testing.T) {
	csvData := "Owner Name / स्वामी का नाम *,मकान नंबर,propertyType\n" +
		"Asha,7,Agricultural\n"

	result, err := ParsePropertyImport(strings.NewReader(csvData), "props.CSV")
	require.NoError(t, err)
	require.Len(t, result.Properties, 1)
	assert.Equal(t, "Asha", result.Properties[0].Property.OwnerName)
	assert.Equal(t, "7", result.Properties[0].Property.HouseNo)
	assert.Equal(t, PropertyAgricultural, result.Properties[0].Property.Type)
}

func TestParsePropertyImport_RowErrors(t *testing.T) {
	csvData := "Owner Name,House No,Property Type,Area\n" +
		"Ramesh,H-1,Castle,abc\n"

	result, err := ParsePropertyImport(strings.NewReader(csvData), "props.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ValidRows)
	assert.Equal(t, 1, result.ErrorRows)

	fields := map[string]bool{}
	for _, e := range result.Errors {
		assert.Equal(t, 2, e.Row)
		fields[e.Field] = true
	}
	assert.True(t, fields["Area"], "unparseable area reported")
	assert.True(t, fields["Property Type"], "unknown property type reported")
}

func TestParsePropertyImport_MissingRequiredColumn(t *testing.T) {
	csvData := "Owner Name,Mobile\nRamesh,9876543210\n"

	_, err := ParsePropertyImport(strings.NewReader(csvData), "props.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "House No")
	assert.Contains(t, err.Error(), "Property Type")
}

func TestParsePropertyImport_Rejects(t *testing.T) {
	_, err := ParsePropertyImport(strings.NewReader("x"), "props.txt")
	assert.ErrorIs(t, err, ErrUnsupportedImport)

	_, err = ParsePropertyImport(strings.NewReader("Owner Name,House No,Property Type\n"), "props.csv")
	assert.Error(t, err, "header-only file")
}

func TestPropertyImportTemplate_RoundTrip(t *testing.T) {
	data, err := GeneratePropertyImportTemplate()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, ImportSheet, f.GetSheetName(0))
	a1, _ := f.GetCellValue(ImportSheet, "A1")
	assert.True(t, strings.HasSuffix(a1, " *"), "owner name is required: %q", a1)
	b1, _ := f.GetCellValue(ImportSheet, "B1")
	assert.False(t, strings.HasSuffix(b1, " *"), "father name is optional: %q", b1)

	// The template's example row must itself import cleanly.
	result, err := ParsePropertyImport(bytes.NewReader(data), "template.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalRows)
	assert.Equal(t, 1, result.ValidRows)
	assert.Empty(t, result.Errors)
}

func TestGenerateImportErrorReport(t *testing.T) {
	data, err := GenerateImportErrorReport([]RowError{
		{Row: 3, Field: "Mobile", Message: "the length must be exactly 10"},
		{Row: 5, Field: "Owner Name", Message: "=HYPERLINK(\"x\")"},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Errors")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Row #", "Field", "Error"}, rows[0])
	assert.Equal(t, "3", rows[1][0])
	assert.False(t, strings.HasPrefix(rows[2][2], "="), "formula injection neutralised")
}
