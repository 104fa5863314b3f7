// Package billing generates, stores and records property tax bills.
package billing

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/dustin/go-humanize"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"panchayattax/apperr"
	"panchayattax/authz"
	"panchayattax/logger"
	"panchayattax/services"
	"panchayattax/storage"
)

// Repository is the persistence the bill flow reads from and writes to.
type Repository interface {
	GetProperty(ctx context.Context, id string) (services.Property, error)
	GetSettings(ctx context.Context) (services.PanchayatSettings, error)
	CreateBill(ctx context.Context, b services.Bill) (services.Bill, error)
}

// Renderer lays out a bill PDF.
type Renderer interface {
	Render(in services.BillInput) ([]byte, services.Totals, error)
}

// Authorizer decides whether a user may act.
type Authorizer interface {
	Can(action authz.Action, u *services.AppUser) bool
}

// Request is the input of a bill generation call.
type Request struct {
	PropertyID  string                `json:"propertyId"`
	Year        int                   `json:"year"`
	TaxTypes    []services.TaxType    `json:"taxTypes"`
	Language    services.Language     `json:"language"`
	PaymentInfo *services.PaymentInfo `json:"paymentInfo,omitempty"`
}

// Validate checks the request shape. It does not touch storage.
func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PropertyID, validation.Required),
		validation.Field(&r.Year, validation.Required, validation.Min(1900), validation.Max(2200)),
		validation.Field(&r.TaxTypes, validation.Required, validation.Each(validation.In(taxTypeValues()...))),
		validation.Field(&r.Language, validation.By(func(v interface{}) error {
			_, err := services.ParseLanguage(string(r.Language))
			return err
		})),
	)
}

func taxTypeValues() []interface{} {
	out := make([]interface{}, len(services.AllTaxTypes))
	for i, t := range services.AllTaxTypes {
		out[i] = t
	}
	return out
}

// Result is returned to the caller after a bill is generated.
type Result struct {
	Success     bool          `json:"success"`
	BillID      string        `json:"billId"`
	DownloadURL string        `json:"downloadUrl"`
	Bill        services.Bill `json:"bill"`
}

// Options configures a Service.
type Options struct {
	Prefix        string
	VerifyBaseURL string
	DueDays       int
	SignedURLTTL  time.Duration
}

// Service orchestrates bill generation.
type Service struct {
	repo     Repository
	renderer Renderer
	store    storage.ObjectStore
	policy   Authorizer
	log      *logger.Logger
	opts     Options
	now      func() time.Time
}

// NewService wires a bill Service.
func NewService(repo Repository, renderer Renderer, store storage.ObjectStore, policy Authorizer, log *logger.Logger, opts Options) *Service {
	if opts.Prefix == "" {
		opts.Prefix = services.DefaultBillPrefix
	}
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = 15 * time.Minute
	}
	return &Service{
		repo:     repo,
		renderer: renderer,
		store:    store,
		policy:   policy,
		log:      log,
		opts:     opts,
		now:      time.Now,
	}
}

// SelectItems returns the records assessed for year whose type is in types,
// keeping their stored order.
func SelectItems(records []services.TaxRecord, year int, types []services.TaxType) []services.TaxRecord {
	want := make(map[services.TaxType]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var out []services.TaxRecord
	for _, r := range records {
		if r.AssessmentYear == year && want[r.Type] {
			out = append(out, r)
		}
	}
	return out
}

// Generate renders a bill for the request, uploads it, signs a download URL
// and records the bill. Authorization is checked before anything is read.
// There is no compensation: if recording fails after the upload, the stored
// PDF is left behind and logged.
func (s *Service) Generate(ctx context.Context, actor *services.AppUser, req Request) (Result, error) {
	if actor == nil {
		return Result{}, apperr.New(apperr.Unauthenticated, "sign in to generate bills")
	}
	if !s.policy.Can(authz.GenerateBill, actor) {
		return Result{}, apperr.New(apperr.PermissionDenied, "only admins can generate bills")
	}
	if err := req.Validate(); err != nil {
		return Result{}, apperr.Validation(err)
	}
	lang, _ := services.ParseLanguage(string(req.Language))

	property, err := s.repo.GetProperty(ctx, req.PropertyID)
	if err != nil {
		return Result{}, err
	}
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return Result{}, err
	}

	items := SelectItems(property.Taxes, req.Year, req.TaxTypes)
	if len(items) == 0 {
		return Result{}, apperr.New(apperr.NotFound, "no tax records match the requested year and tax types")
	}

	fields := map[string]interface{}{
		"property_id":  property.ID,
		"record_count": len(items),
		"year":         req.Year,
	}

	now := s.now()
	billID := services.GenerateBillNumber(s.opts.Prefix, req.Year)
	dueDate := services.BillDueDate(now, s.opts.DueDays)
	pdf, totals, err := s.renderer.Render(services.BillInput{
		BillID:      billID,
		Property:    property,
		Items:       items,
		Settings:    settings,
		Language:    lang,
		GeneratedAt: now,
		DueDate:     dueDate,
		VerifyURL:   services.VerifyURL(s.opts.VerifyBaseURL, billID),
		Payment:     req.PaymentInfo,
	})
	if err != nil {
		s.log.Error("failed to render bill", err, fields)
		if errors.Is(err, services.ErrNoBillItems) {
			return Result{}, apperr.Wrap(apperr.NotFound, "no tax records to bill", err)
		}
		return Result{}, apperr.Wrap(apperr.Internal, "render bill", err)
	}

	path := services.BillStoragePath(req.Year, billID)
	fields["bill_id"] = billID
	fields["storage_path"] = path
	fields["size"] = humanize.Bytes(uint64(len(pdf)))

	if err := s.store.Put(ctx, path, bytes.NewReader(pdf), int64(len(pdf)), "application/pdf"); err != nil {
		s.log.Error("failed to upload bill", err, fields)
		return Result{}, apperr.Wrap(apperr.Internal, "upload bill", err)
	}

	downloadURL, err := s.store.PresignGet(ctx, path, s.opts.SignedURLTTL)
	if err != nil {
		s.log.Error("failed to sign bill download url; stored object is orphaned", err, fields)
		return Result{}, apperr.Wrap(apperr.Internal, "sign bill url", err)
	}

	bill := services.Bill{
		BillID:       billID,
		PropertyID:   property.ID,
		OwnerName:    property.OwnerName,
		HouseNo:      property.HouseNo,
		Year:         req.Year,
		TaxBreakdown: services.BillLines(items),
		TotalAmount:  totals.Assessed.InexactFloat64(),
		AmountPaid:   totals.Paid.InexactFloat64(),
		Status:       services.BillStatus(totals),
		GeneratedBy:  actor.ID,
		GeneratedAt:  now,
		DueDate:      dueDate,
		StoragePath:  path,
		StorageURL:   s.store.URL(path),
		DownloadURL:  downloadURL,
		Language:     lang,
	}
	if req.PaymentInfo != nil {
		bill.PaymentMethod = req.PaymentInfo.PaymentMethod
		bill.ReceiptNumber = req.PaymentInfo.ReceiptNumber
	}

	saved, err := s.repo.CreateBill(ctx, bill)
	if err != nil {
		s.log.Error("failed to record bill; stored object is orphaned", err, fields)
		return Result{}, apperr.Wrap(apperr.Internal, "record bill", err)
	}

	s.log.Info("bill generated", fields)
	return Result{Success: true, BillID: billID, DownloadURL: downloadURL, Bill: saved}, nil
}
