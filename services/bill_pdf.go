package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"
)

// ErrNoBillItems is returned when a bill would have no line items.
var ErrNoBillItems = errors.New("bill has no tax records")

// DefaultDueDays is how long after generation a bill falls due.
const DefaultDueDays = 30

const (
	devanagariFamily   = "noto-devanagari"
	devanagariRegular  = "NotoSansDevanagari-Regular.ttf"
	devanagariBold     = "NotoSansDevanagari-Bold.ttf"
	qrPixels           = 320
	qrRowHeight        = 28.0
	billTableRowHeight = 7.0
)

var (
	darkBg    = &props.Color{Red: 33, Green: 37, Blue: 41}
	white     = &props.Color{Red: 255, Green: 255, Blue: 255}
	altBg     = &props.Color{Red: 248, Green: 249, Blue: 250}
	summaryBg = &props.Color{Red: 233, Green: 236, Blue: 239}
	greyText  = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// BillInput is everything one bill is rendered from. Items are rendered in
// the order given.
type BillInput struct {
	BillID      string
	Property    Property
	Items       []TaxRecord
	Settings    PanchayatSettings
	Language    Language
	GeneratedAt time.Time
	DueDate     time.Time
	VerifyURL   string
	Payment     *PaymentInfo
	// Receipt marks an on-demand copy that is never stored. BillID is then
	// printed as a receipt number and no verification QR code is drawn.
	Receipt     bool
}

// BillDueDate returns the due date for a bill generated at t.
func BillDueDate(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// BillRenderer lays out property tax bills as A4 PDFs.
type BillRenderer struct {
	fonts []*entity.CustomFont
}

// NewBillRenderer loads the Devanagari font pair from fontDir when present.
// Without it, Hindi and bilingual bills are rendered with English labels.
func NewBillRenderer(fontDir string) (*BillRenderer, error) {
	r := &BillRenderer{}
	if fontDir == "" {
		return r, nil
	}

	regular := filepath.Join(fontDir, devanagariRegular)
	bold := filepath.Join(fontDir, devanagariBold)
	if !fileExists(regular) || !fileExists(bold) {
		return r, nil
	}

	fonts, err := repository.New().
		AddUTF8Font(devanagariFamily, fontstyle.Normal, regular).
		AddUTF8Font(devanagariFamily, fontstyle.Bold, bold).
		Load()
	if err != nil {
		return nil, fmt.Errorf("load devanagari fonts: %w", err)
	}
	r.fonts = fonts
	return r, nil
}

// SupportsHindi reports whether Devanagari text can be rendered.
func (r *BillRenderer) SupportsHindi() bool {
	return len(r.fonts) > 0
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Render produces the bill PDF and the totals printed on it.
func (r *BillRenderer) Render(in BillInput) ([]byte, Totals, error) {
	if len(in.Items) == 0 {
		return nil, Totals{}, ErrNoBillItems
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now()
	}
	if in.DueDate.IsZero() {
		in.DueDate = BillDueDate(in.GeneratedAt, DefaultDueDays)
	}
	lang := in.Language
	if lang != LangEnglish && !r.SupportsHindi() {
		lang = LangEnglish
	}

	builder := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		})
	if r.SupportsHindi() {
		builder = builder.
			WithCustomFonts(r.fonts).
			WithDefaultFont(&props.Font{Family: devanagariFamily})
	}

	m := maroto.New(builder.Build())

	addBillHeader(m, in.Settings, lang)
	addBillMeta(m, in, lang)
	addOwnerBlock(m, in.Property, lang)
	addBillTableHeader(m, lang)
	totals := addBillRows(m, in.Items, lang)
	addBillTotals(m, totals, lang)
	if in.Payment != nil && in.Payment.IsPaid {
		addPaymentBlock(m, in.Payment, lang)
	}
	if err := addVerifyAndSignature(m, in, lang); err != nil {
		return nil, Totals{}, err
	}
	addBillFooter(m, in, lang)

	doc, err := m.Generate()
	if err != nil {
		return nil, Totals{}, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), totals, nil
}

func panchayatTitle(s PanchayatSettings, lang Language) string {
	name := s.Name
	if name == "" {
		name = Resolve(LabelPanchayatName, LangEnglish)
	}
	if s.NameHi == "" {
		return name
	}
	switch lang {
	case LangHindi:
		return s.NameHi
	case LangBilingual:
		return name + " / " + s.NameHi
	}
	return name
}

// addBillHeader adds the letterhead: name, address, title and a rule.
func addBillHeader(m core.Maroto, s PanchayatSettings, lang Language) {
	m.AddRows(
		row.New(10).Add(
			text.NewCol(12, panchayatTitle(s, lang), props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Align: align.Center,
			}),
		),
	)

	if addr := s.AddressLine(); addr != "" {
		m.AddRow(5, text.NewCol(12, addr, props.Text{
			Size:  8,
			Align: align.Center,
			Color: greyText,
		}))
	}

	m.AddRow(9, text.NewCol(12, Resolve(LabelTaxBill, lang), props.Text{
		Size:  12,
		Style: fontstyle.Bold,
		Align: align.Center,
		Top:   2,
	}))
	m.AddRow(4, line.NewCol(12))
}

// addBillMeta adds bill number, dates and property ID.
func addBillMeta(m core.Maroto, in BillInput, lang Language) {
	left := props.Text{Size: 9, Align: align.Left}
	right := props.Text{Size: 9, Align: align.Right}

	m.AddRow(6,
		text.NewCol(6, Resolve(numberLabel(in), lang)+": "+in.BillID, left),
		text.NewCol(6, Resolve(LabelBillDate, lang)+": "+FormatDate(in.GeneratedAt), right),
	)
	m.AddRow(6,
		text.NewCol(6, Resolve(LabelPropertyID, lang)+": "+in.Property.ID, left),
		text.NewCol(6, Resolve(LabelDueDate, lang)+": "+FormatDate(in.DueDate), props.Text{
			Size:  9,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)
	m.AddRow(3)
}

func numberLabel(in BillInput) LabelKey {
	if in.Receipt {
		return LabelReceiptNo
	}
	return LabelBillNo
}

// verifyContent is what the QR code encodes. Receipts have none.
func verifyContent(in BillInput) string {
	if in.Receipt {
		return ""
	}
	if in.VerifyURL != "" {
		return in.VerifyURL
	}
	return in.BillID
}

// addOwnerBlock adds the bill-to section.
func addOwnerBlock(m core.Maroto, p Property, lang Language) {
	m.AddRow(7, text.NewCol(12, Resolve(LabelBillTo, lang), props.Text{
		Size:  10,
		Style: fontstyle.Bold,
	}))

	na := Resolve(LabelNotAvailable, lang)
	orNA := func(s string) string {
		if s == "" {
			return na
		}
		return s
	}

	fields := []struct {
		label LabelKey
		value string
	}{
		{LabelOwnerName, orNA(p.OwnerName)},
		{LabelFatherName, orNA(p.FatherName)},
		{LabelAddress, orNA(p.Address)},
		{LabelHouseNo, orNA(p.HouseNo)},
		{LabelMobile, orNA(p.Mobile)},
	}

	labelText := props.Text{Size: 9, Style: fontstyle.Bold, Color: greyText}
	valueText := props.Text{Size: 9}
	for _, f := range fields {
		m.AddRow(5,
			text.NewCol(4, Resolve(f.label, lang)+":", labelText),
			text.NewCol(8, f.value, valueText),
		)
	}
	m.AddRow(4)
}

// addBillTableHeader adds the tax table column headings.
func addBillTableHeader(m core.Maroto, lang Language) {
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: white,
		Top:   1.5,
	}
	headerLeft := headerText
	headerLeft.Align = align.Left
	headerRight := headerText
	headerRight.Align = align.Right

	headerCell := &props.Cell{BackgroundColor: darkBg}

	m.AddRows(
		row.New(billTableRowHeight+1).Add(
			col.New(1).Add(text.New(Resolve(LabelSerialNo, lang), headerText)),
			col.New(5).Add(text.New(Resolve(LabelTaxType, lang), headerLeft)),
			col.New(2).Add(text.New(Resolve(LabelAssessedAmount, lang), headerRight)),
			col.New(2).Add(text.New(Resolve(LabelAmountPaid, lang), headerRight)),
			col.New(2).Add(text.New(Resolve(LabelDueAmount, lang), headerRight)),
		).WithStyle(headerCell),
	)
}

// addBillRows adds one row per item and returns the running totals.
func addBillRows(m core.Maroto, items []TaxRecord, lang Language) Totals {
	var totals Totals

	for i, item := range items {
		assessed := amount(item.AssessedAmount)
		paid := amount(item.AmountPaid)
		due := assessed.Sub(paid)

		totals.Assessed = totals.Assessed.Add(assessed)
		totals.Paid = totals.Paid.Add(paid)
		totals.Due = totals.Assessed.Sub(totals.Paid)

		base := props.Text{Size: 8, Align: align.Center, Top: 1.5}
		leftText := base
		leftText.Align = align.Left
		rightText := base
		rightText.Align = align.Right

		r := row.New(billTableRowHeight).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", i+1), base)),
			col.New(5).Add(text.New(TaxTypeCell(item.Type, lang), leftText)),
			col.New(2).Add(text.New(FormatDecimalINR(assessed), rightText)),
			col.New(2).Add(text.New(FormatDecimalINR(paid), rightText)),
			col.New(2).Add(text.New(FormatDecimalINR(due), rightText)),
		)
		if i%2 == 1 {
			r.WithStyle(&props.Cell{BackgroundColor: altBg})
		}
		m.AddRows(r)
	}

	return totals
}

// addBillTotals adds the bold totals row.
func addBillTotals(m core.Maroto, t Totals, lang Language) {
	bold := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Top: 1.5}
	label := bold
	label.Align = align.Left

	m.AddRows(
		row.New(billTableRowHeight+1).Add(
			col.New(6).Add(text.New(Resolve(LabelTotal, lang), label)),
			col.New(2).Add(text.New(FormatDecimalINR(t.Assessed), bold)),
			col.New(2).Add(text.New(FormatDecimalINR(t.Paid), bold)),
			col.New(2).Add(text.New(FormatDecimalINR(t.Due), bold)),
		).WithStyle(&props.Cell{BackgroundColor: summaryBg}),
	)
	m.AddRow(4)
}

// addPaymentBlock adds the payment details of a settled bill.
func addPaymentBlock(m core.Maroto, p *PaymentInfo, lang Language) {
	m.AddRow(6, text.NewCol(12, Resolve(LabelPaymentDetails, lang), props.Text{
		Size:  9,
		Style: fontstyle.Bold,
	}))

	na := Resolve(LabelNotAvailable, lang)
	method, receipt := p.PaymentMethod, p.ReceiptNumber
	if method == "" {
		method = na
	}
	if receipt == "" {
		receipt = na
	}
	m.AddRow(5,
		text.NewCol(6, Resolve(LabelPaymentMethod, lang)+": "+method, props.Text{Size: 8}),
		text.NewCol(6, Resolve(LabelReceiptNo, lang)+": "+receipt, props.Text{Size: 8}),
	)
	m.AddRow(3)
}

// addVerifyAndSignature adds the QR code on the left and the signature
// block on the right.
func addVerifyAndSignature(m core.Maroto, in BillInput, lang Language) error {
	secretary := in.Settings.SecretaryName
	signature := col.New(4).Add(
		text.New("______________________", props.Text{Size: 9, Align: align.Center, Top: 14}),
		text.New(Resolve(LabelSecretary, lang), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center, Top: 19}),
	)
	if secretary != "" {
		signature.Add(text.New(secretary, props.Text{Size: 8, Align: align.Center, Top: 23}))
	}
	signatureLabel := text.NewCol(4, Resolve(LabelAuthorizedSignature, lang), props.Text{Size: 7, Align: align.Center, Color: greyText})

	verify := verifyContent(in)
	if verify == "" {
		m.AddRows(row.New(qrRowHeight).Add(col.New(8), signature))
		m.AddRow(5, col.New(8), signatureLabel)
		return nil
	}

	qrPNG, err := QRCodePNG(verify, qrPixels)
	if err != nil {
		return fmt.Errorf("render bill QR code: %w", err)
	}
	m.AddRows(
		row.New(qrRowHeight).Add(
			col.New(3).Add(image.NewFromBytes(qrPNG, extension.Png, props.Rect{
				Center:  true,
				Percent: 100,
			})),
			col.New(5),
			signature,
		),
	)
	m.AddRow(5,
		text.NewCol(3, Resolve(LabelScanToVerify, lang), props.Text{Size: 7, Align: align.Center, Color: greyText}),
		col.New(5),
		signatureLabel,
	)
	return nil
}

// addBillFooter adds the late-fee note and generation timestamp.
func addBillFooter(m core.Maroto, in BillInput, lang Language) {
	m.AddRow(4)
	if in.Settings.LateFeePercent > 0 {
		note := fmt.Sprintf(Resolve(LabelLateFeeNote, lang), FormatPercent(in.Settings.LateFeePercent))
		m.AddRow(5, text.NewCol(12, note, props.Text{Size: 7, Color: greyText}))
	}
	m.AddRow(5, text.NewCol(12,
		Resolve(LabelGeneratedOn, lang)+": "+FormatDateLong(in.GeneratedAt)+" "+in.GeneratedAt.In(IST).Format("15:04")+" IST",
		props.Text{Size: 7, Align: align.Right, Color: greyText},
	))
}

// BillLines snapshots the items of a bill for persistence.
func BillLines(items []TaxRecord) []BillLine {
	lines := make([]BillLine, len(items))
	for i, it := range items {
		lines[i] = BillLine{
			TaxRecordID:    it.ID,
			TaxType:        it.Type,
			AssessmentYear: it.AssessmentYear,
			AssessedAmount: it.AssessedAmount,
			AmountPaid:     it.AmountPaid,
			Due:            amount(it.AssessedAmount).Sub(amount(it.AmountPaid)).InexactFloat64(),
			Status:         it.Status,
		}
	}
	return lines
}

// BillStatus is the status of a bill as a whole, derived from its totals.
func BillStatus(t Totals) PaymentStatus {
	return DerivePaymentStatus(t.Assessed.InexactFloat64(), t.Paid.InexactFloat64())
}
