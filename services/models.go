package services

import (
	"strings"
	"time"
)

// PropertyType classifies a registered property.
type PropertyType string

const (
	PropertyResidential  PropertyType = "Residential"
	PropertyCommercial   PropertyType = "Commercial"
	PropertyAgricultural PropertyType = "Agricultural"
	PropertyIndustrial   PropertyType = "Industrial"
)

// AllPropertyTypes lists property types in display order.
var AllPropertyTypes = []PropertyType{
	PropertyResidential, PropertyCommercial, PropertyAgricultural, PropertyIndustrial,
}

// AreaUnit returns the unit the area of a property of this type is measured in.
func (p PropertyType) AreaUnit() string {
	if p == PropertyAgricultural {
		return "acres"
	}
	return "sq ft"
}

// TaxType is the kind of levy a tax record assesses.
type TaxType string

const (
	TaxProperty   TaxType = "Property"
	TaxWater      TaxType = "Water"
	TaxSanitation TaxType = "Sanitation"
	TaxLighting   TaxType = "Lighting"
	TaxLand       TaxType = "Land"
	TaxBusiness   TaxType = "Business"
	TaxOther      TaxType = "Other"
)

// AllTaxTypes lists tax types in display order. Report rollups use this order.
var AllTaxTypes = []TaxType{
	TaxProperty, TaxWater, TaxSanitation, TaxLighting, TaxLand, TaxBusiness, TaxOther,
}

// PaymentStatus is the settlement state of a tax record.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "Paid"
	StatusUnpaid  PaymentStatus = "Unpaid"
	StatusPartial PaymentStatus = "Partial"
)

// AllPaymentStatuses lists statuses in display order.
var AllPaymentStatuses = []PaymentStatus{StatusPaid, StatusPartial, StatusUnpaid}

// Property is a registered property with its tax records in stored order.
type Property struct {
	ID         string       `json:"id"`
	OwnerName  string       `json:"ownerName"`
	FatherName string       `json:"fatherName"`
	Mobile     string       `json:"mobile"`
	HouseNo    string       `json:"houseNo"`
	Address    string       `json:"address"`
	Type       PropertyType `json:"propertyType"`
	Area       float64      `json:"area"`
	Taxes      []TaxRecord  `json:"taxes"`
}

// TaxRecord is one assessment against a property.
type TaxRecord struct {
	ID             string        `json:"id"`
	PropertyID     string        `json:"propertyId"`
	Type           TaxType       `json:"taxType"`
	BaseAmount     float64       `json:"baseAmount"`
	AssessedAmount float64       `json:"assessedAmount"`
	AmountPaid     float64       `json:"amountPaid"`
	Status         PaymentStatus `json:"paymentStatus"`
	AssessmentYear int           `json:"assessmentYear"`
	PaymentDate    *time.Time    `json:"paymentDate,omitempty"`
	ReceiptNumber  string        `json:"receiptNumber,omitempty"`
	PaymentMethod  string        `json:"paymentMethod,omitempty"`
}

// Due is the outstanding amount, negative when overpaid.
func (t TaxRecord) Due() float64 {
	return t.AssessedAmount - t.AmountPaid
}

// PanchayatSettings is the singleton letterhead and rate configuration.
type PanchayatSettings struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	NameHi         string                   `json:"nameHi"`
	District       string                   `json:"district"`
	State          string                   `json:"state"`
	PinCode        string                   `json:"pinCode"`
	Address        string                   `json:"address"`
	SecretaryName  string                   `json:"secretaryName"`
	TaxRates       map[PropertyType]float64 `json:"taxRates"`
	LateFeePercent float64                  `json:"lateFeePercent"`
}

// AddressLine joins the postal parts of the settings into one line.
func (s PanchayatSettings) AddressLine() string {
	line := joinNonEmpty([]string{s.Address, s.District, s.State}, ", ")
	if s.PinCode != "" {
		if line != "" {
			line += " - "
		}
		line += s.PinCode
	}
	return line
}

// RateFor returns the per-unit-area rate for a property type, 0 when unset.
func (s PanchayatSettings) RateFor(p PropertyType) float64 {
	return s.TaxRates[p]
}

// PaymentInfo is optional payment detail printed on a bill.
type PaymentInfo struct {
	IsPaid        bool   `json:"isPaid"`
	PaymentMethod string `json:"paymentMethod"`
	ReceiptNumber string `json:"receiptNumber"`
}

// BillLine is the snapshot of one tax record included in a bill.
type BillLine struct {
	TaxRecordID    string        `json:"taxRecordId"`
	TaxType        TaxType       `json:"taxType"`
	AssessmentYear int           `json:"assessmentYear"`
	AssessedAmount float64       `json:"assessedAmount"`
	AmountPaid     float64       `json:"amountPaid"`
	Due            float64       `json:"due"`
	Status         PaymentStatus `json:"status"`
}

// Bill is the persisted summary of a generated bill. It is never updated.
type Bill struct {
	ID            string        `json:"id"`
	BillID        string        `json:"billId"`
	PropertyID    string        `json:"propertyId"`
	OwnerName     string        `json:"ownerName"`
	HouseNo       string        `json:"houseNo"`
	Year          int           `json:"year"`
	TaxBreakdown  []BillLine    `json:"taxBreakdown"`
	TotalAmount   float64       `json:"totalAmount"`
	AmountPaid    float64       `json:"amountPaid"`
	Status        PaymentStatus `json:"status"`
	GeneratedBy   string        `json:"generatedBy"`
	GeneratedAt   time.Time     `json:"generatedAt"`
	DueDate       time.Time     `json:"dueDate"`
	StoragePath   string        `json:"-"`
	StorageURL    string        `json:"storageUrl"`
	DownloadURL   string        `json:"downloadUrl"`
	Language      Language      `json:"language"`
	PaymentMethod string        `json:"paymentMethod,omitempty"`
	ReceiptNumber string        `json:"receiptNumber,omitempty"`
}

// Role is an application user's role.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleViewer     Role = "viewer"
)

// AppUser is an authenticated user of the application.
type AppUser struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role
	Active      bool
}

// joinNonEmpty joins the non-blank parts with sep.
func joinNonEmpty(parts []string, sep string) string {
	var out []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, sep)
}
