package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pocketbase/pocketbase/core"

	"panchayattax/apperr"
	"panchayattax/authz"
	"panchayattax/services"
	"panchayattax/templates"
)

var languageOptions = []struct {
	lang  services.Language
	label string
}{
	{services.LangEnglish, "English"},
	{services.LangHindi, "हिन्दी"},
	{services.LangBilingual, "English + हिन्दी"},
}

// HandleDashboard returns a handler that renders the collection dashboard.
// HTMX requests from the filter form get only the dashboard fragment.
func HandleDashboard(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.ViewDashboard); err != nil {
			if apperr.Is(err, apperr.Unauthenticated) {
				return e.String(http.StatusUnauthorized, "Sign in to view the dashboard")
			}
			return e.String(http.StatusForbidden, "You are not allowed to view the dashboard")
		}

		q := e.Request.URL.Query()
		lang, err := documentLanguage(q, e.Request.Header.Get("Accept-Language"))
		if err != nil {
			lang = services.LangEnglish
		}

		filter, filterErr := parseReportFilter(q)
		properties, err := d.Store.ListProperties(e.Request.Context())
		if err != nil {
			d.logFor(e).Error("dashboard: failed to list properties", err, nil)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to load dashboard")
		}
		settings, err := optionalSettings(d, e)
		if err != nil {
			d.logFor(e).Error("dashboard: failed to load settings", err, nil)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to load dashboard")
		}

		summary := services.Summarize(filter.Apply(properties))
		data := buildDashboardData(q, filter, summary, settings, lang)
		if filterErr != nil {
			data.Filter.ErrorMessage = filterMessage(filterErr)
		}

		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		if e.Request.Header.Get("HX-Request") == "true" {
			return templates.DashboardContent(data).Render(e.Request.Context(), e.Response)
		}
		return templates.DashboardPage(data).Render(e.Request.Context(), e.Response)
	}
}

// HandleDashboardJSON returns the dashboard summary as JSON.
func HandleDashboardJSON(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.authorize(e, authz.ViewDashboard); err != nil {
			return d.respondError(e, err)
		}
		filter, err := parseReportFilter(e.Request.URL.Query())
		if err != nil {
			return d.respondError(e, err)
		}
		properties, err := d.Store.ListProperties(e.Request.Context())
		if err != nil {
			return d.respondError(e, err)
		}
		summary := services.Summarize(filter.Apply(properties))
		return e.JSON(http.StatusOK, summaryJSON(filter, summary))
	}
}

// filterMessage flattens a filter error into one line for the form alert.
func filterMessage(err error) string {
	var msg string
	var ae *apperr.Error
	if errors.As(err, &ae) {
		for _, key := range []string{"fy", "start", "propertyType", "status"} {
			if m := ae.Fields[key]; m != "" {
				if msg != "" {
					msg += "; "
				}
				msg += m
			}
		}
	}
	if msg == "" {
		msg = err.Error()
	}
	return msg
}

func buildDashboardData(q url.Values, f services.ReportFilter, s services.Summary, settings services.PanchayatSettings, lang services.Language) templates.DashboardData {
	r := func(k services.LabelKey) string { return services.Resolve(k, lang) }

	name := settings.Name
	if lang == services.LangHindi && settings.NameHi != "" {
		name = settings.NameHi
	}
	if name == "" {
		name = r(services.LabelPanchayatName)
	}

	pageLang := "en"
	if lang == services.LangHindi {
		pageLang = "hi"
	}

	data := templates.DashboardData{
		Lang:          pageLang,
		Title:         r(services.LabelDashboard),
		PanchayatName: name,
		Filter: templates.DashboardFilter{
			FinancialYear: q.Get("fy"),
			Start:         q.Get("start"),
			End:           q.Get("end"),
			Description:   f.Describe(lang),
			ExportURL:     exportURL(q),
		},
		Cards: []templates.SummaryCard{
			{Label: r(services.LabelTotalProperties), Value: strconv.Itoa(s.Properties), Tone: "info"},
			{Label: r(services.LabelTotalRecords), Value: strconv.Itoa(s.Records), Tone: "info"},
			{Label: r(services.LabelTotalAmount), Value: services.FormatINRWhole(s.Totals.Assessed.InexactFloat64()), Tone: "primary"},
			{Label: r(services.LabelTotalPaid), Value: services.FormatINRWhole(s.Totals.Paid.InexactFloat64()), Tone: "success"},
			{Label: r(services.LabelTotalDue), Value: services.FormatINRWhole(s.Totals.Due.InexactFloat64()), Tone: "error"},
		},
		CollectionRate: services.FormatPercent(s.CollectionRate),
		RateValue:      s.CollectionRate,
		TaxTypeHeaders: []string{
			r(services.LabelTaxType), r(services.LabelCount), r(services.LabelTotalAmount),
			r(services.LabelTotalPaid), r(services.LabelTotalDue),
		},
		SectionTitles: templates.DashboardSectionTitles{
			ByTaxType:      r(services.LabelByTaxType),
			ByStatus:       r(services.LabelByStatus),
			ByPropertyType: r(services.LabelByPropertyType),
			CollectionRate: r(services.LabelCollectionRate),
			Export:         r(services.LabelDownloadReport),
			Apply:          r(services.LabelApplyFilters),
		},
	}

	all := services.Resolve(services.LabelAll, lang)
	data.Filter.PropertyTypes = append(data.Filter.PropertyTypes, templates.SelectOption{Value: services.FilterAll, Label: all, Selected: isAll(f.PropertyType)})
	for _, p := range services.AllPropertyTypes {
		data.Filter.PropertyTypes = append(data.Filter.PropertyTypes, templates.SelectOption{
			Value: string(p), Label: services.PropertyTypeLabel(p, lang), Selected: f.PropertyType == string(p),
		})
		data.ByPropertyType = append(data.ByPropertyType, templates.CountRow{
			Label: services.PropertyTypeLabel(p, lang), Count: s.ByPropertyType[p],
		})
	}

	data.Filter.Statuses = append(data.Filter.Statuses, templates.SelectOption{Value: services.FilterAll, Label: all, Selected: isAll(f.Status)})
	for _, st := range services.AllPaymentStatuses {
		data.Filter.Statuses = append(data.Filter.Statuses, templates.SelectOption{
			Value: string(st), Label: services.StatusLabel(st, lang), Selected: f.Status == string(st),
		})
		data.ByStatus = append(data.ByStatus, templates.CountRow{
			Label: services.StatusLabel(st, lang), Count: s.ByStatus[st],
		})
	}

	for _, o := range languageOptions {
		data.Filter.Languages = append(data.Filter.Languages, templates.SelectOption{
			Value: string(o.lang), Label: o.label, Selected: o.lang == lang,
		})
	}

	for _, t := range services.AllTaxTypes {
		b := s.ByTaxType[t]
		data.ByTaxType = append(data.ByTaxType, templates.BreakdownRow{
			Label:   services.TaxTypeLabel(t, lang),
			Count:   b.Count,
			Total:   services.FormatDecimalINR(b.Total),
			Paid:    services.FormatDecimalINR(b.Paid),
			Pending: services.FormatDecimalINR(b.Pending),
		})
	}
	return data
}

func isAll(v string) bool {
	return validOption(v, nil)
}

// exportURL carries the dashboard's filter over to the report download.
func exportURL(q url.Values) string {
	out := url.Values{}
	for _, key := range []string{"fy", "start", "end", "propertyType", "status", "lang"} {
		if v := q.Get(key); v != "" {
			out.Set(key, v)
		}
	}
	if len(out) == 0 {
		return "/reports/export"
	}
	return "/reports/export?" + out.Encode()
}

type taxTypeSummary struct {
	Count   int     `json:"count"`
	Total   float64 `json:"total"`
	Paid    float64 `json:"paid"`
	Pending float64 `json:"pending"`
}

type dashboardSummary struct {
	Success        bool                                `json:"success"`
	Filter         string                              `json:"filter"`
	Properties     int                                 `json:"properties"`
	Records        int                                 `json:"records"`
	TotalAmount    float64                             `json:"totalAmount"`
	TotalPaid      float64                             `json:"totalPaid"`
	TotalDue       float64                             `json:"totalDue"`
	CollectionRate float64                             `json:"collectionRate"`
	ByTaxType      map[services.TaxType]taxTypeSummary `json:"byTaxType"`
	ByPropertyType map[services.PropertyType]int       `json:"byPropertyType"`
	ByStatus       map[services.PaymentStatus]int      `json:"byStatus"`
}

func summaryJSON(f services.ReportFilter, s services.Summary) dashboardSummary {
	out := dashboardSummary{
		Success:        true,
		Filter:         f.Describe(services.LangEnglish),
		Properties:     s.Properties,
		Records:        s.Records,
		TotalAmount:    s.Totals.Assessed.InexactFloat64(),
		TotalPaid:      s.Totals.Paid.InexactFloat64(),
		TotalDue:       s.Totals.Due.InexactFloat64(),
		CollectionRate: s.CollectionRate,
		ByTaxType:      make(map[services.TaxType]taxTypeSummary, len(s.ByTaxType)),
		ByPropertyType: s.ByPropertyType,
		ByStatus:       s.ByStatus,
	}
	for t, b := range s.ByTaxType {
		out.ByTaxType[t] = taxTypeSummary{
			Count:   b.Count,
			Total:   b.Total.InexactFloat64(),
			Paid:    b.Paid.InexactFloat64(),
			Pending: b.Pending.InexactFloat64(),
		}
	}
	return out
}
