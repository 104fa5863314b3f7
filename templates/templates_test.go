package templates

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func TestDashboardPage_EscapesAndRenders(t *testing.T) {
	d := DashboardData{
		Lang:          "en",
		Title:         "Dashboard",
		PanchayatName: `GP <Loni> & "Co"`,
		Cards: []SummaryCard{
			{Label: "Total Amount", Value: "₹1,700", Tone: "info"},
		},
		CollectionRate: "100.0%",
		RateValue:      100,
		TaxTypeHeaders: []string{"Tax Type", "Count", "Total", "Paid", "Pending"},
		ByTaxType:      []BreakdownRow{{Label: "Water Tax", Count: 2, Total: "₹700", Paid: "₹700", Pending: "₹0"}},
		ByStatus:       []CountRow{{Label: "Paid", Count: 3}},
		Filter: DashboardFilter{
			FinancialYear: "2025-26",
			Statuses:      []SelectOption{{Value: "all", Label: "All"}, {Value: "Paid", Label: "Paid", Selected: true}},
			ExportURL:     "/reports/export?fy=2025-26",
		},
	}

	var buf bytes.Buffer
	if err := DashboardPage(d).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		`GP &lt;Loni&gt; &amp; &#34;Co&#34;`,
		"₹1,700",
		`value="2025-26"`,
		`<option value="Paid" selected>`,
		`value="100.0"`,
		"Water Tax",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard HTML missing %q", want)
		}
	}
	if strings.Contains(html, "<Loni>") {
		t.Error("panchayat name was not escaped")
	}
}

func TestDashboardContent_IsFragment(t *testing.T) {
	var buf bytes.Buffer
	if err := DashboardContent(DashboardData{Title: "Dashboard"}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if strings.Contains(buf.String(), "<html") {
		t.Error("content fragment must not include the document shell")
	}
	if !strings.HasPrefix(buf.String(), `<div id="dashboard">`) {
		t.Errorf("unexpected fragment start: %.40s", buf.String())
	}
}

func TestVerifyPage(t *testing.T) {
	var buf bytes.Buffer
	err := VerifyPage(VerifyData{Found: true, BillID: "LONI-2025-AB12CD34", OwnerName: "Ramesh", Status: "Paid"}).
		Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.Contains(buf.String(), "LONI-2025-AB12CD34 is genuine") {
		t.Error("verify page missing confirmation")
	}

	buf.Reset()
	if err := VerifyPage(VerifyData{BillID: "FAKE-1"}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.Contains(buf.String(), "No bill with number") {
		t.Error("verify page missing not-found message")
	}
}

func TestPage_RendersChildren(t *testing.T) {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>body</p>")
		return err
	})

	var buf bytes.Buffer
	ctx := templ.WithChildren(context.Background(), body)
	if err := Page("Tax <Report>", "hi").Render(ctx, &buf); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	html := buf.String()
	for _, want := range []string{
		`<html lang="hi">`,
		"<title>Tax &lt;Report&gt;</title>",
		`<main class="container mx-auto p-6"><p>body</p></main>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page HTML missing %q", want)
		}
	}
}

func TestDashboardContent_ExportLinkAndFilterError(t *testing.T) {
	d := DashboardData{
		Title:  "Dashboard",
		Cards:  []SummaryCard{{Label: "Total Due", Value: "₹200", Tone: "error"}},
		Filter: DashboardFilter{ExportURL: "/reports/export?fy=2025-26&lang=hi", ErrorMessage: "end date is before start date"},
		SectionTitles: DashboardSectionTitles{
			Export: "Download Report",
		},
	}

	var buf bytes.Buffer
	if err := DashboardContent(d).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	html := buf.String()
	for _, want := range []string{
		`href="/reports/export?fy=2025-26&amp;lang=hi"`,
		`<div class="stat-value text-error">₹200</div>`,
		`<div class="alert alert-error mb-4">end date is before start date</div>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard HTML missing %q", want)
		}
	}
}
