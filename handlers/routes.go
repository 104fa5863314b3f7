package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/hook"
)

// Register binds the middleware and every application route.
// /api/settings belongs to PocketBase, so panchayat settings live under
// /api/panchayat/settings.
func Register(se *core.ServeEvent, d *Deps) {
	se.Router.Bind(&hook.Handler[*core.RequestEvent]{
		Id:       "panchayatCookieAuth",
		Func:     CookieAuth(),
		Priority: apis.DefaultLoadAuthTokenMiddlewarePriority - 1,
	})
	se.Router.BindFunc(RequestLogger(d))

	se.Router.GET("/", func(e *core.RequestEvent) error {
		return e.Redirect(http.StatusFound, "/dashboard")
	})
	se.Router.GET("/dashboard", HandleDashboard(d))
	se.Router.GET("/verify/{billId}", HandleVerifyBill(d))
	se.Router.GET("/properties/{id}/receipt", HandleReceiptPDF(d))
	se.Router.GET("/reports/export", HandleReportExport(d))
	se.Router.GET("/properties/import/template", HandleImportTemplate(d))

	api := se.Router.Group("/api")
	api.GET("/me", HandleMe(d))
	api.GET("/dashboard", HandleDashboardJSON(d))

	api.POST("/bills/generate", HandleGenerateBill(d))
	api.GET("/bills/{billId}", HandleGetBill(d))

	api.POST("/properties", HandlePropertyCreate(d))
	api.GET("/properties", HandlePropertyList(d))
	api.POST("/properties/import", HandlePropertyImport(d))
	api.GET("/properties/{id}", HandlePropertyGet(d))
	api.PATCH("/properties/{id}", HandlePropertyUpdate(d))
	api.DELETE("/properties/{id}", HandlePropertyDelete(d))
	api.POST("/properties/{id}/taxes", HandleTaxAssess(d))
	api.POST("/taxes/{id}/payments", HandleTaxPayment(d))

	api.GET("/panchayat/settings", HandleSettingsGet(d))
	api.PUT("/panchayat/settings", HandleSettingsSave(d))

	api.PATCH("/users/{id}/role", HandleUserRole(d))
}
