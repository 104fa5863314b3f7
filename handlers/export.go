package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"panchayattax/apperr"
	"panchayattax/authz"
	"panchayattax/billing"
	"panchayattax/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

func writeAttachment(e *core.RequestEvent, contentType, filename string, data []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, sanitizeFilename(filename)))
	e.Response.WriteHeader(http.StatusOK)
	_, err := e.Response.Write(data)
	return err
}

// HandleReceiptPDF returns a handler that renders a property's bill for one
// year and streams it as a download. Nothing is stored or recorded, so the
// copy carries a receipt number and no verification QR code.
func HandleReceiptPDF(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.DownloadReceipt); err != nil {
			return d.respondError(e, err)
		}

		q := e.Request.URL.Query()
		year, err := cast.ToIntE(strings.TrimSpace(q.Get("year")))
		if err != nil || year < 1900 || year > 2200 {
			return d.respondError(e, &apperr.Error{
				Kind:    apperr.InvalidArgument,
				Message: "invalid receipt request",
				Fields:  map[string]string{"year": "year must be a four-digit year"},
			})
		}
		types, err := parseTaxTypes(q.Get("types"))
		if err != nil {
			return d.respondError(e, err)
		}
		lang, err := documentLanguage(q, e.Request.Header.Get("Accept-Language"))
		if err != nil {
			return d.respondError(e, err)
		}

		ctx := e.Request.Context()
		property, err := d.Store.GetProperty(ctx, e.Request.PathValue("id"))
		if err != nil {
			return d.respondError(e, err)
		}
		settings, err := d.Store.GetSettings(ctx)
		if err != nil {
			return d.respondError(e, err)
		}

		items := billing.SelectItems(property.Taxes, year, types)
		if len(items) == 0 {
			return d.respondError(e, apperr.New(apperr.NotFound, "no tax records match the requested year and tax types"))
		}

		now := time.Now()
		pdf, _, err := d.Renderer.Render(services.BillInput{
			BillID:      services.GenerateReceiptNumber(year),
			Property:    property,
			Items:       items,
			Settings:    settings,
			Language:    lang,
			GeneratedAt: now,
			DueDate:     services.BillDueDate(now, d.DueDays),
			Receipt:     true,
		})
		if err != nil {
			return d.respondError(e, apperr.Wrap(apperr.Internal, "render receipt", err))
		}

		d.logFor(e).Info("receipt downloaded", map[string]interface{}{
			"property_id":  property.ID,
			"year":         year,
			"record_count": len(items),
			"size":         humanize.Bytes(uint64(len(pdf))),
		})
		return writeAttachment(e, "application/pdf", services.ReceiptFilename(property.ID, now), pdf)
	}
}

// HandleReportExport returns a handler that builds the filtered tax report
// workbook and streams it as a download.
func HandleReportExport(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.ExportReport); err != nil {
			return d.respondError(e, err)
		}

		q := e.Request.URL.Query()
		filter, err := parseReportFilter(q)
		if err != nil {
			return d.respondError(e, err)
		}
		lang, err := documentLanguage(q, e.Request.Header.Get("Accept-Language"))
		if err != nil {
			return d.respondError(e, err)
		}

		ctx := e.Request.Context()
		properties, err := d.Store.ListProperties(ctx)
		if err != nil {
			return d.respondError(e, err)
		}
		settings, err := optionalSettings(d, e)
		if err != nil {
			return d.respondError(e, err)
		}

		now := time.Now()
		rows := filter.Apply(properties)
		xlsx, summary, err := services.GenerateReport(services.ReportInput{
			Rows:        rows,
			Filter:      filter,
			Settings:    settings,
			Language:    lang,
			GeneratedAt: now,
		})
		if err != nil {
			return d.respondError(e, apperr.Wrap(apperr.Internal, "generate report", err))
		}

		d.logFor(e).Info("report exported", map[string]interface{}{
			"records":    summary.Records,
			"properties": summary.Properties,
			"filter":     filter.Describe(services.LangEnglish),
			"size":       humanize.Bytes(uint64(len(xlsx))),
		})
		return writeAttachment(e, xlsxContentType, services.ReportFilename(filter, now), xlsx)
	}
}

// optionalSettings loads the panchayat settings, treating unconfigured
// settings as empty. Reports and the dashboard work without a letterhead.
func optionalSettings(d *Deps, e *core.RequestEvent) (services.PanchayatSettings, error) {
	settings, err := d.Store.GetSettings(e.Request.Context())
	if apperr.Is(err, apperr.NotFound) {
		return services.PanchayatSettings{}, nil
	}
	return settings, err
}
