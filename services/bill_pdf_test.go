package services

import (
	"errors"
	"testing"
	"time"
)

func billFixture() BillInput {
	paid := time.Date(2024, time.August, 2, 11, 0, 0, 0, IST)
	return BillInput{
		BillID: "LONI-2024-ABCDEF12",
		Property: Property{
			ID:        "prop0000000001",
			OwnerName: "Ramesh Kumar",
			Mobile:    "9876543210",
			HouseNo:   "H-12",
			Address:   "Ward 3, Loni",
			Type:      PropertyResidential,
			Area:      1200,
		},
		Items: []TaxRecord{
			{ID: "t1", Type: TaxProperty, AssessedAmount: 1200, AmountPaid: 1200, Status: StatusPaid, AssessmentYear: 2024, PaymentDate: &paid},
			{ID: "t2", Type: TaxWater, AssessedAmount: 500, AmountPaid: 500, Status: StatusPaid, AssessmentYear: 2024, PaymentDate: &paid},
		},
		Settings: PanchayatSettings{
			Name:           "Gram Panchayat Loni",
			NameHi:         "ग्राम पंचायत लोनी",
			District:       "Ghaziabad",
			State:          "Uttar Pradesh",
			PinCode:        "201102",
			LateFeePercent: 2,
			SecretaryName:  "S. Sharma",
		},
		Language:    LangEnglish,
		GeneratedAt: time.Date(2024, time.October, 1, 10, 0, 0, 0, IST),
		VerifyURL:   "http://localhost:8090/verify/LONI-2024-ABCDEF12",
	}
}

func assertPDF(t *testing.T, data []byte) {
	t.Helper()
	if len(data) < 5 || string(data[:5]) != "%PDF-" {
		t.Fatalf("result is not a PDF (%d bytes)", len(data))
	}
}

func TestRenderBill_TwoPaidRecords(t *testing.T) {
	r, err := NewBillRenderer("")
	if err != nil {
		t.Fatalf("NewBillRenderer() error = %v", err)
	}

	data, totals, err := r.Render(billFixture())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	assertPDF(t, data)

	if !totals.Assessed.Equal(dec("1700")) || !totals.Paid.Equal(dec("1700")) || !totals.Due.IsZero() {
		t.Errorf("totals = %+v, want 1700/1700/0", totals)
	}
	if got := BillStatus(totals); got != StatusPaid {
		t.Errorf("BillStatus = %s, want Paid", got)
	}
}

func TestRenderBill_NoItems(t *testing.T) {
	r, _ := NewBillRenderer("")
	in := billFixture()
	in.Items = nil

	_, _, err := r.Render(in)
	if !errors.Is(err, ErrNoBillItems) {
		t.Fatalf("Render() error = %v, want ErrNoBillItems", err)
	}
}

func TestRenderBill_OptionalSections(t *testing.T) {
	r, _ := NewBillRenderer(t.TempDir())
	if r.SupportsHindi() {
		t.Fatal("empty font dir should not enable Hindi")
	}

	in := billFixture()
	in.Language = LangBilingual
	in.Property.FatherName = ""
	in.Property.Mobile = ""
	in.Settings.LateFeePercent = 0
	in.Payment = &PaymentInfo{IsPaid: true, PaymentMethod: "UPI"}
	in.Items[1].AmountPaid = 0
	in.Items[1].Status = StatusUnpaid

	data, totals, err := r.Render(in)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	assertPDF(t, data)
	if !totals.Due.Equal(dec("500")) {
		t.Errorf("due = %s, want 500", totals.Due)
	}
	if got := BillStatus(totals); got != StatusPartial {
		t.Errorf("BillStatus = %s, want Partial", got)
	}
}

func TestRenderBill_ManyRowsPaginates(t *testing.T) {
	r, _ := NewBillRenderer("")
	in := billFixture()
	in.Items = nil
	for i := 0; i < 60; i++ {
		in.Items = append(in.Items, TaxRecord{Type: AllTaxTypes[i%len(AllTaxTypes)], AssessedAmount: 100, AmountPaid: float64(i % 3 * 50)})
	}

	data, totals, err := r.Render(in)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	assertPDF(t, data)
	if !totals.Assessed.Equal(dec("6000")) {
		t.Errorf("assessed = %s", totals.Assessed)
	}
	if want := TotalAssessed(in.Items).Sub(TotalPaid(in.Items)); !totals.Due.Equal(want) {
		t.Errorf("due = %s, want %s", totals.Due, want)
	}
}

func TestBillDueDate(t *testing.T) {
	gen := time.Date(2025, time.January, 15, 9, 0, 0, 0, IST)
	if got := FormatDate(BillDueDate(gen, DefaultDueDays)); got != "14/02/2025" {
		t.Errorf("due date = %s, want 14/02/2025", got)
	}
}

func TestBillLines(t *testing.T) {
	lines := BillLines(billFixture().Items)
	if len(lines) != 2 || lines[1].TaxType != TaxWater || lines[1].Due != 0 {
		t.Errorf("BillLines = %+v", lines)
	}
}

func TestPanchayatTitle(t *testing.T) {
	s := PanchayatSettings{Name: "Gram Panchayat Loni", NameHi: "ग्राम पंचायत लोनी"}
	if got := panchayatTitle(s, LangBilingual); got != "Gram Panchayat Loni / ग्राम पंचायत लोनी" {
		t.Errorf("bilingual title = %q", got)
	}
	if got := panchayatTitle(PanchayatSettings{}, LangHindi); got != "Gram Panchayat" {
		t.Errorf("default title = %q", got)
	}
}

func TestRenderBill_Receipt(t *testing.T) {
	r, _ := NewBillRenderer("")
	in := billFixture()
	in.BillID = GenerateReceiptNumber(2024)
	in.VerifyURL = ""
	in.Receipt = true

	data, _, err := r.Render(in)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	assertPDF(t, data)

	if got := numberLabel(in); got != LabelReceiptNo {
		t.Errorf("receipt number label = %v, want LabelReceiptNo", got)
	}
	if got := verifyContent(in); got != "" {
		t.Errorf("receipt verify content = %q, want none", got)
	}
}

func TestVerifyContent(t *testing.T) {
	in := BillInput{BillID: "LONI-2025-ABCD1234", VerifyURL: "https://tax.example/verify/LONI-2025-ABCD1234"}
	if got := verifyContent(in); got != in.VerifyURL {
		t.Errorf("verify content = %q, want the verify URL", got)
	}
	if got := numberLabel(in); got != LabelBillNo {
		t.Errorf("bill number label = %v, want LabelBillNo", got)
	}
	in.VerifyURL = ""
	if got := verifyContent(in); got != in.BillID {
		t.Errorf("verify content = %q, want the bill id", got)
	}
}
