package handlers

import (
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase/core"

	"panchayattax/apperr"
	"panchayattax/authz"
	"panchayattax/billing"
	"panchayattax/services"
	"panchayattax/templates"
)

// HandleGenerateBill returns a handler that renders, stores and records a
// bill, replying with its id and a short-lived download URL.
func HandleGenerateBill(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		actor, err := d.authorize(e, authz.GenerateBill)
		if err != nil {
			return d.respondError(e, err)
		}

		var req billing.Request
		if err := e.BindBody(&req); err != nil {
			return d.respondError(e, apperr.Wrap(apperr.InvalidArgument, "request body is not valid JSON", err))
		}

		res, err := d.Billing.Generate(e.Request.Context(), actor, req)
		if err != nil {
			return d.respondError(e, err)
		}
		return e.JSON(http.StatusOK, res)
	}
}

// HandleGetBill returns a handler that fetches a recorded bill by its bill id.
func HandleGetBill(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.ViewRecords); err != nil {
			return d.respondError(e, err)
		}
		bill, err := d.Store.GetBill(e.Request.Context(), e.Request.PathValue("billId"))
		if err != nil {
			return d.respondError(e, err)
		}
		return e.JSON(http.StatusOK, bill)
	}
}

// HandleVerifyBill returns the public page a bill's QR code points at.
func HandleVerifyBill(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		billID := e.Request.PathValue("billId")
		data := templates.VerifyData{BillID: billID}

		bill, err := d.Store.GetBill(e.Request.Context(), billID)
		switch {
		case err == nil:
			data = verifyData(bill)
		case apperr.Is(err, apperr.NotFound):
		default:
			d.logFor(e).Error("verify: failed to load bill", err, map[string]interface{}{"bill_id": billID})
			return e.String(http.StatusInternalServerError, "Failed to verify bill")
		}

		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		if !data.Found {
			e.Response.WriteHeader(http.StatusNotFound)
		}
		return templates.VerifyPage(data).Render(e.Request.Context(), e.Response)
	}
}

func verifyData(b services.Bill) templates.VerifyData {
	return templates.VerifyData{
		Found:       true,
		BillID:      b.BillID,
		OwnerName:   b.OwnerName,
		HouseNo:     b.HouseNo,
		Year:        strconv.Itoa(b.Year),
		Total:       services.FormatINR(b.TotalAmount),
		Paid:        services.FormatINR(b.AmountPaid),
		Status:      services.StatusLabel(b.Status, services.LangEnglish),
		GeneratedAt: services.FormatDate(b.GeneratedAt),
	}
}
