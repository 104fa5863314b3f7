// Package authz decides which actions an authenticated user may perform.
package authz

import (
	"strings"

	"panchayattax/services"
)

// Action is something a user may be allowed to do.
type Action string

const (
	ViewDashboard    Action = "view_dashboard"
	ViewRecords      Action = "view_records"
	ExportReport     Action = "export_report"
	DownloadReceipt  Action = "download_receipt"
	GenerateBill     Action = "generate_bill"
	ManageProperties Action = "manage_properties"
	RecordPayment    Action = "record_payment"
	ManageSettings   Action = "manage_settings"
	ManageUsers      Action = "manage_users"
)

// AllActions lists every action, for policy tables and tests.
var AllActions = []Action{
	ViewDashboard, ViewRecords, ExportReport, DownloadReceipt, GenerateBill,
	ManageProperties, RecordPayment, ManageSettings, ManageUsers,
}

var roleActions = map[services.Role]map[Action]bool{
	services.RoleViewer: {
		ViewDashboard:   true,
		ViewRecords:     true,
		ExportReport:    true,
		DownloadReceipt: true,
	},
	services.RoleAdmin: {
		ViewDashboard:    true,
		ViewRecords:      true,
		ExportReport:     true,
		DownloadReceipt:  true,
		GenerateBill:     true,
		ManageProperties: true,
		RecordPayment:    true,
	},
}

// Policy is the single place access decisions are made.
type Policy struct {
	superAdminEmail string
}

// NewPolicy returns a policy that treats superAdminEmail as a super admin
// regardless of the stored role. An empty email disables that override.
func NewPolicy(superAdminEmail string) *Policy {
	return &Policy{superAdminEmail: strings.ToLower(strings.TrimSpace(superAdminEmail))}
}

// IsSuperAdmin reports whether the user has unrestricted access.
func (p *Policy) IsSuperAdmin(u *services.AppUser) bool {
	if u == nil || !u.Active {
		return false
	}
	if u.Role == services.RoleSuperAdmin {
		return true
	}
	return p.superAdminEmail != "" && strings.EqualFold(u.Email, p.superAdminEmail)
}

// Can reports whether u may perform action. Nil and inactive users may do
// nothing.
func (p *Policy) Can(action Action, u *services.AppUser) bool {
	if u == nil || !u.Active {
		return false
	}
	if p.IsSuperAdmin(u) {
		return true
	}
	return roleActions[u.Role][action]
}
