// Package templates holds the server-rendered HTML components. The views
// are written in .templ files; the _templ.go files are generated with
// `templ generate`.
package templates

// SummaryCard is one headline figure on the dashboard.
type SummaryCard struct {
	Label string
	Value string
	Tone  string // daisyUI color suffix: success, warning, error, info
}

// BreakdownRow is one tax type line of the dashboard breakdown table.
type BreakdownRow struct {
	Label   string
	Count   int
	Total   string
	Paid    string
	Pending string
}

// CountRow is a label with a count.
type CountRow struct {
	Label string
	Count int
}

// SelectOption is an option of a filter dropdown.
type SelectOption struct {
	Value    string
	Label    string
	Selected bool
}

// DashboardFilter is the current state of the dashboard filter form.
type DashboardFilter struct {
	FinancialYear string
	Start         string
	End           string
	PropertyTypes []SelectOption
	Statuses      []SelectOption
	Languages     []SelectOption
	Description   string
	ExportURL     string
	ErrorMessage  string
}

// DashboardData is everything the dashboard renders.
type DashboardData struct {
	Lang           string
	Title          string
	PanchayatName  string
	Filter         DashboardFilter
	Cards          []SummaryCard
	CollectionRate string
	RateValue      float64
	ByTaxType      []BreakdownRow
	TaxTypeHeaders []string
	ByStatus       []CountRow
	ByPropertyType []CountRow
	SectionTitles  DashboardSectionTitles
}

// DashboardSectionTitles are the translated headings of the dashboard.
type DashboardSectionTitles struct {
	ByTaxType      string
	ByStatus       string
	ByPropertyType string
	CollectionRate string
	Export         string
	Apply          string
}

// VerifyData is the public view of a bill reached from its QR code.
type VerifyData struct {
	Found       bool
	BillID      string
	OwnerName   string
	HouseNo     string
	Year        string
	Total       string
	Paid        string
	Status      string
	GeneratedAt string
}

func (d VerifyData) fields() [][2]string {
	return [][2]string{
		{"Owner", d.OwnerName},
		{"House No", d.HouseNo},
		{"Year", d.Year},
		{"Total", d.Total},
		{"Paid", d.Paid},
		{"Status", d.Status},
		{"Generated", d.GeneratedAt},
	}
}
