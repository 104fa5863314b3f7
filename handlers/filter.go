package handlers

import (
	"net/url"
	"strings"

	"panchayattax/apperr"
	"panchayattax/services"
)

// parseReportFilter reads the report filter from query parameters:
// fy=2025-26, start/end=YYYY-MM-DD (both or neither), propertyType and
// status ("all" or a single value).
func parseReportFilter(q url.Values) (services.ReportFilter, error) {
	var f services.ReportFilter
	fields := map[string]string{}

	if fy := strings.TrimSpace(q.Get("fy")); fy != "" {
		parsed, err := services.ParseFinancialYear(fy)
		if err != nil {
			fields["fy"] = err.Error()
		} else {
			f.FinancialYear = &parsed
		}
	}

	start, end := strings.TrimSpace(q.Get("start")), strings.TrimSpace(q.Get("end"))
	switch {
	case start == "" && end == "":
	case start == "" || end == "":
		fields["start"] = "start and end dates must be given together"
	default:
		r, err := services.ParseDateRange(start, end)
		if err != nil {
			fields["start"] = err.Error()
		} else {
			f.Range = &r
		}
	}

	f.PropertyType = strings.TrimSpace(q.Get("propertyType"))
	if !validOption(f.PropertyType, propertyTypeOptions()) {
		fields["propertyType"] = "unknown property type " + f.PropertyType
	}
	f.Status = strings.TrimSpace(q.Get("status"))
	if !validOption(f.Status, statusOptions()) {
		fields["status"] = "unknown payment status " + f.Status
	}

	if len(fields) > 0 {
		return services.ReportFilter{}, &apperr.Error{
			Kind:    apperr.InvalidArgument,
			Message: "invalid report filter",
			Fields:  fields,
		}
	}
	return f, nil
}

func validOption(v string, allowed []string) bool {
	if v == "" || strings.EqualFold(v, services.FilterAll) {
		return true
	}
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func propertyTypeOptions() []string {
	out := make([]string, len(services.AllPropertyTypes))
	for i, p := range services.AllPropertyTypes {
		out[i] = string(p)
	}
	return out
}

func statusOptions() []string {
	out := make([]string, len(services.AllPaymentStatuses))
	for i, s := range services.AllPaymentStatuses {
		out[i] = string(s)
	}
	return out
}

// documentLanguage picks the language from ?lang=, falling back to the
// Accept-Language header.
func documentLanguage(q url.Values, acceptLanguage string) (services.Language, error) {
	raw := strings.TrimSpace(q.Get("lang"))
	if raw == "" {
		return services.NegotiateLanguage(acceptLanguage), nil
	}
	lang, err := services.ParseLanguage(raw)
	if err != nil {
		return "", &apperr.Error{
			Kind:    apperr.InvalidArgument,
			Message: "invalid language",
			Fields:  map[string]string{"lang": err.Error()},
		}
	}
	return lang, nil
}

// parseTaxTypes splits a comma-separated tax type list. An empty list
// selects every tax type.
func parseTaxTypes(raw string) ([]services.TaxType, error) {
	if strings.TrimSpace(raw) == "" {
		return services.AllTaxTypes, nil
	}
	known := make(map[services.TaxType]bool, len(services.AllTaxTypes))
	for _, t := range services.AllTaxTypes {
		known[t] = true
	}

	var out []services.TaxType
	for _, part := range strings.Split(raw, ",") {
		t := services.TaxType(strings.TrimSpace(part))
		if t == "" {
			continue
		}
		if !known[t] {
			return nil, &apperr.Error{
				Kind:    apperr.InvalidArgument,
				Message: "invalid tax types",
				Fields:  map[string]string{"types": "unknown tax type " + string(t)},
			}
		}
		out = append(out, t)
	}
	return out, nil
}
