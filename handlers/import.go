package handlers

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pocketbase/pocketbase/core"

	"panchayattax/apperr"
	"panchayattax/authz"
	"panchayattax/services"
)

const maxImportSize = 10 << 20

type importResponse struct {
	*services.PropertyImport
	DryRun   bool                `json:"dryRun"`
	Imported []services.Property `json:"imported,omitempty"`
}

// HandlePropertyImport returns a handler that bulk-registers properties from
// an uploaded CSV or XLSX file in the "file" form field. Rows are validated
// first; if any row is invalid nothing is saved. With ?dryRun=true the file
// is only validated. With ?errors=xlsx a file with row errors is answered
// with a downloadable error report instead of JSON.
func HandlePropertyImport(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.ManageProperties); err != nil {
			return d.respondError(e, err)
		}

		if err := e.Request.ParseMultipartForm(maxImportSize); err != nil {
			return d.respondError(e, apperr.Wrap(apperr.InvalidArgument, "file too large or invalid form data", err))
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return d.respondError(e, apperr.Wrap(apperr.InvalidArgument, "please select a file to upload", err))
		}
		defer file.Close()

		result, err := services.ParsePropertyImport(file, header.Filename)
		if err != nil {
			return d.respondError(e, apperr.Wrap(apperr.InvalidArgument, err.Error(), err))
		}

		q := e.Request.URL.Query()
		resp := importResponse{PropertyImport: result, DryRun: q.Get("dryRun") == "true"}
		d.logFor(e).Info("property import parsed", map[string]interface{}{
			"file":       header.Filename,
			"size":       humanize.Bytes(uint64(header.Size)),
			"total_rows": result.TotalRows,
			"error_rows": result.ErrorRows,
		})

		if result.ErrorRows > 0 {
			if q.Get("errors") == "xlsx" {
				report, err := services.GenerateImportErrorReport(result.Errors)
				if err != nil {
					return d.respondError(e, apperr.Wrap(apperr.Internal, "build error report", err))
				}
				return writeAttachment(e, xlsxContentType, "Import_Errors_"+services.FormatFileDate(time.Now())+".xlsx", report)
			}
			return e.JSON(http.StatusUnprocessableEntity, resp)
		}
		if resp.DryRun || result.ValidRows == 0 {
			return e.JSON(http.StatusOK, resp)
		}

		saved, failed, err := d.Store.ImportProperties(e.Request.Context(), result.Properties)
		if err != nil {
			if failed != nil {
				result.Errors = append(result.Errors, *failed)
				result.ErrorRows++
				result.ValidRows--
				d.logFor(e).Warn("property import rolled back", map[string]interface{}{"row": failed.Row})
				return e.JSON(http.StatusUnprocessableEntity, resp)
			}
			return d.respondError(e, err)
		}
		resp.Imported = saved
		d.logFor(e).Info("properties imported", map[string]interface{}{"count": len(saved)})
		return e.JSON(http.StatusCreated, resp)
	}
}

// HandleImportTemplate returns a handler that downloads the blank property
// import spreadsheet.
func HandleImportTemplate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.ManageProperties); err != nil {
			return d.respondError(e, err)
		}
		data, err := services.GeneratePropertyImportTemplate()
		if err != nil {
			return d.respondError(e, apperr.Wrap(apperr.Internal, "build import template", err))
		}
		return writeAttachment(e, xlsxContentType, "Property_Import_Template.xlsx", data)
	}
}
