package services

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language selects which label variant a document is rendered with.
type Language string

const (
	LangEnglish   Language = "en"
	LangHindi     Language = "hi"
	LangBilingual Language = "bilingual"
)

// ParseLanguage accepts "en", "hi" or "bilingual" (case-insensitive).
// An empty string means English.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case "", LangEnglish:
		return LangEnglish, nil
	case LangHindi:
		return LangHindi, nil
	case LangBilingual:
		return LangBilingual, nil
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

var languageMatcher = language.NewMatcher([]language.Tag{language.English, language.Hindi})

// NegotiateLanguage picks a document language from an Accept-Language header.
func NegotiateLanguage(acceptLanguage string) Language {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LangEnglish
	}
	tag, _, conf := languageMatcher.Match(tags...)
	if conf == language.No {
		return LangEnglish
	}
	if base, _ := tag.Base(); base.String() == "hi" {
		return LangHindi
	}
	return LangEnglish
}

// LabelKey names a translatable label. The set is closed; every key has a
// catalog entry.
type LabelKey int

const (
	LabelPanchayatName LabelKey = iota
	LabelTaxBill
	LabelBillNo
	LabelBillDate
	LabelPropertyID
	LabelDueDate
	LabelBillTo
	LabelOwnerName
	LabelFatherName
	LabelAddress
	LabelHouseNo
	LabelMobile
	LabelSerialNo
	LabelTaxType
	LabelAssessedAmount
	LabelAmountPaid
	LabelDueAmount
	LabelTotal
	LabelScanToVerify
	LabelAuthorizedSignature
	LabelSecretary
	LabelPaymentDetails
	LabelPaymentMethod
	LabelReceiptNo
	LabelPaymentStatus
	LabelPaymentDate
	LabelLateFeeNote
	LabelPropertyType
	LabelArea
	LabelAssessmentYear
	LabelBaseAmount
	LabelTotalAssessed
	LabelBalanceDue
	LabelTaxReport
	LabelTaxRecords
	LabelSummary
	LabelTotalProperties
	LabelTotalRecords
	LabelTotalAmount
	LabelTotalPaid
	LabelTotalDue
	LabelCollectionRate
	LabelStatus
	LabelCount
	LabelFinancialYear
	LabelPeriod
	LabelGeneratedOn
	LabelNotAvailable
	LabelAll
	LabelDashboard
	LabelByTaxType
	LabelByPropertyType
	LabelByStatus
	LabelApplyFilters
	LabelDownloadReport

	labelKeyCount
)

type labelEntry struct {
	En string
	Hi string
	Bi string
}

func entry(en, hi string) labelEntry {
	return labelEntry{En: en, Hi: hi, Bi: en + " / " + hi}
}

var labelCatalog = map[LabelKey]labelEntry{
	LabelPanchayatName:       entry("Gram Panchayat", "ग्राम पंचायत"),
	LabelTaxBill:             entry("Property Tax Bill", "संपत्ति कर बिल"),
	LabelBillNo:              entry("Bill No", "बिल संख्या"),
	LabelBillDate:            entry("Bill Date", "बिल दिनांक"),
	LabelPropertyID:          entry("Property ID", "संपत्ति आईडी"),
	LabelDueDate:             entry("Due Date", "देय तिथि"),
	LabelBillTo:              entry("Bill To", "प्राप्तकर्ता"),
	LabelOwnerName:           entry("Owner Name", "स्वामी का नाम"),
	LabelFatherName:          entry("Father's/Husband's Name", "पिता/पति का नाम"),
	LabelAddress:             entry("Address", "पता"),
	LabelHouseNo:             entry("House No", "मकान नंबर"),
	LabelMobile:              entry("Mobile", "मोबाइल"),
	LabelSerialNo:            {En: "S.No", Hi: "क्र.सं.", Bi: "S.No / क्र.सं."},
	LabelTaxType:             entry("Tax Type", "कर का प्रकार"),
	LabelAssessedAmount:      entry("Assessed Amount", "निर्धारित राशि"),
	LabelAmountPaid:          entry("Amount Paid", "भुगतान राशि"),
	LabelDueAmount:           entry("Due Amount", "बकाया राशि"),
	LabelTotal:               entry("Total", "कुल"),
	LabelScanToVerify:        entry("Scan to verify", "सत्यापन हेतु स्कैन करें"),
	LabelAuthorizedSignature: entry("Authorized Signature", "अधिकृत हस्ताक्षर"),
	LabelSecretary:           entry("Secretary", "सचिव"),
	LabelPaymentDetails:      entry("Payment Details", "भुगतान विवरण"),
	LabelPaymentMethod:       entry("Payment Method", "भुगतान का तरीका"),
	LabelReceiptNo:           entry("Receipt No", "रसीद संख्या"),
	LabelPaymentStatus:       entry("Payment Status", "भुगतान स्थिति"),
	LabelPaymentDate:         entry("Payment Date", "भुगतान तिथि"),
	LabelLateFeeNote: {
		En: "A late fee of %s applies to amounts unpaid after the due date.",
		Hi: "देय तिथि के बाद बकाया राशि पर %s विलंब शुल्क लागू होगा।",
		Bi: "A late fee of %[1]s applies after the due date. / देय तिथि के बाद %[1]s विलंब शुल्क लागू होगा।",
	},
	LabelPropertyType:    entry("Property Type", "संपत्ति का प्रकार"),
	LabelArea:            entry("Area", "क्षेत्रफल"),
	LabelAssessmentYear:  entry("Assessment Year", "निर्धारण वर्ष"),
	LabelBaseAmount:      entry("Base Amount", "मूल राशि"),
	LabelTotalAssessed:   entry("Total Assessed", "कुल निर्धारित"),
	LabelBalanceDue:      entry("Balance Due", "शेष बकाया"),
	LabelTaxReport:       entry("Tax Report", "कर रिपोर्ट"),
	LabelTaxRecords:      {En: "Tax Records", Hi: "कर अभिलेख", Bi: "Tax Records"},
	LabelSummary:         {En: "Summary", Hi: "सारांश", Bi: "Summary"},
	LabelTotalProperties: entry("Total Properties", "कुल संपत्तियाँ"),
	LabelTotalRecords:    entry("Total Tax Records", "कुल कर अभिलेख"),
	LabelTotalAmount:     entry("Total Amount", "कुल राशि"),
	LabelTotalPaid:       entry("Total Paid", "कुल भुगतान"),
	LabelTotalDue:        entry("Total Due", "कुल बकाया"),
	LabelCollectionRate:  entry("Collection Rate", "संग्रह दर"),
	LabelStatus:          entry("Status", "स्थिति"),
	LabelCount:           entry("Count", "संख्या"),
	LabelFinancialYear:   entry("Financial Year", "वित्तीय वर्ष"),
	LabelPeriod:          entry("Period", "अवधि"),
	LabelGeneratedOn:     entry("Generated On", "निर्माण तिथि"),
	LabelNotAvailable:    {En: "N/A", Hi: "उपलब्ध नहीं", Bi: "N/A"},
	LabelAll:             entry("All", "सभी"),
	LabelDashboard:       entry("Dashboard", "डैशबोर्ड"),
	LabelByTaxType:       entry("By Tax Type", "कर प्रकार अनुसार"),
	LabelByPropertyType:  entry("By Property Type", "संपत्ति प्रकार अनुसार"),
	LabelByStatus:        entry("By Payment Status", "भुगतान स्थिति अनुसार"),
	LabelApplyFilters:    entry("Apply", "लागू करें"),
	LabelDownloadReport:  entry("Download Report", "रिपोर्ट डाउनलोड करें"),
}

// Resolve returns the label for key in lang, falling back to English when
// the requested variant is empty. An unknown key is a programming error.
func Resolve(key LabelKey, lang Language) string {
	e, ok := labelCatalog[key]
	if !ok {
		panic(fmt.Sprintf("labels: undefined label key %d", key))
	}
	var s string
	switch lang {
	case LangHindi:
		s = e.Hi
	case LangBilingual:
		s = e.Bi
	default:
		s = e.En
	}
	if s == "" {
		return e.En
	}
	return s
}

var taxTypeNames = map[TaxType]labelEntry{
	TaxProperty:   entry("Property Tax", "संपत्ति कर"),
	TaxWater:      entry("Water Tax", "जल कर"),
	TaxSanitation: entry("Sanitation Tax", "स्वच्छता कर"),
	TaxLighting:   entry("Lighting Tax", "प्रकाश कर"),
	TaxLand:       entry("Land Tax", "भूमि कर"),
	TaxBusiness:   entry("Business Tax", "व्यवसाय कर"),
	TaxOther:      entry("Other Tax", "अन्य कर"),
}

var propertyTypeNames = map[PropertyType]labelEntry{
	PropertyResidential:  entry("Residential", "आवासीय"),
	PropertyCommercial:   entry("Commercial", "वाणिज्यिक"),
	PropertyAgricultural: entry("Agricultural", "कृषि"),
	PropertyIndustrial:   entry("Industrial", "औद्योगिक"),
}

var statusNames = map[PaymentStatus]labelEntry{
	StatusPaid:    entry("Paid", "पूर्ण भुगतान"),
	StatusPartial: entry("Partial", "आंशिक भुगतान"),
	StatusUnpaid:  entry("Unpaid", "अदत्त"),
}

func pick(e labelEntry, ok bool, fallback string, lang Language) string {
	if !ok {
		return fallback
	}
	switch lang {
	case LangHindi:
		if e.Hi != "" {
			return e.Hi
		}
	case LangBilingual:
		if e.Bi != "" {
			return e.Bi
		}
	}
	return e.En
}

// TaxTypeLabel returns the display name of a tax type.
func TaxTypeLabel(t TaxType, lang Language) string {
	e, ok := taxTypeNames[t]
	return pick(e, ok, string(t), lang)
}

// PropertyTypeLabel returns the display name of a property type.
func PropertyTypeLabel(p PropertyType, lang Language) string {
	e, ok := propertyTypeNames[p]
	return pick(e, ok, string(p), lang)
}

// StatusLabel returns the display name of a payment status.
func StatusLabel(s PaymentStatus, lang Language) string {
	e, ok := statusNames[s]
	return pick(e, ok, string(s), lang)
}

// TaxTypeCell is the bill table text for a tax type: the type followed by
// its Hindi name in parentheses. English-only bills use the English name.
func TaxTypeCell(t TaxType, lang Language) string {
	if lang == LangEnglish {
		return TaxTypeLabel(t, LangEnglish)
	}
	return string(t) + " (" + TaxTypeLabel(t, LangHindi) + ")"
}
