package models

import (
	"strings"

	"gorm.io/gorm"
)

// Lead statuses. A lead's status is advanced by draft lifecycle transitions
// but lives in its own column - it is set explicitly on each transition, not
// computed on read.
const (
	LeadStatusNew         = "NEW"
	LeadStatusResearched  = "RESEARCHED"
	LeadStatusDrafted     = "DRAFTED"
	LeadStatusApproved    = "APPROVED"
	LeadStatusSent        = "SENT"
	LeadStatusReplied     = "REPLIED"
	LeadStatusBooked      = "BOOKED"
	LeadStatusClosedWon   = "CLOSED_WON"
	LeadStatusOptedOut    = "OPTED_OUT"
	LeadStatusUnqualified = "UNQUALIFIED"
)

// LeadStatuses lists every valid lead status, in funnel order
var LeadStatuses = []string{
	LeadStatusNew, LeadStatusResearched, LeadStatusDrafted,
	LeadStatusApproved, LeadStatusSent, LeadStatusReplied,
	LeadStatusBooked, LeadStatusClosedWon, LeadStatusOptedOut,
	LeadStatusUnqualified,
}

// ContactMethod types
const (
	ContactTypeEmail = "EMAIL"
	ContactTypePhone = "PHONE"
	ContactTypeOther = "OTHER"
)

// Lead represents a prospective business/organization contact
type Lead struct {
	gorm.Model
	WorkspaceID uint `gorm:"not null;index" json:"workspace_id"`

	CompanyName string `gorm:"not null" json:"company_name"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
	Location    string `json:"location"`
	PlaceID     string `json:"place_id"`

	Status string `gorm:"default:'NEW';index" json:"status"`

	// Relations
	ContactMethods []ContactMethod `gorm:"foreignKey:LeadID" json:"contact_methods,omitempty"`
	Drafts         []DraftEmail    `gorm:"foreignKey:LeadID" json:"drafts,omitempty"`
	Approvals      []ApprovalItem  `gorm:"foreignKey:LeadID" json:"approvals,omitempty"`
}

// ContactMethod is one reachable address for a lead
type ContactMethod struct {
	gorm.Model
	LeadID uint `gorm:"not null;index" json:"lead_id"`

	Type        string `gorm:"not null;default:'EMAIL'" json:"type"` // EMAIL, PHONE, OTHER
	Value       string `gorm:"not null" json:"value"`
	IsRoleBased bool   `gorm:"default:false" json:"is_role_based"`
	IsVerified  bool   `gorm:"default:false" json:"is_verified"`

	// Relations
	Lead Lead `json:"-"`
}

// PrimaryEmail returns the first EMAIL contact method, or nil
func (l *Lead) PrimaryEmail() *ContactMethod {
	for i := range l.ContactMethods {
		if l.ContactMethods[i].Type == ContactTypeEmail {
			return &l.ContactMethods[i]
		}
	}
	return nil
}

// ValidLeadStatus reports whether s is a known lead status
func ValidLeadStatus(s string) bool {
	for _, v := range LeadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// SearchLeads applies the case-insensitive substring filter over
// companyName/website/industry/location used by the lead list endpoint
func SearchLeads(db *gorm.DB, term string) *gorm.DB {
	pattern := "%" + strings.ToLower(term) + "%"
	return db.Where(
		"LOWER(company_name) LIKE ? OR LOWER(website) LIKE ? OR LOWER(industry) LIKE ? OR LOWER(location) LIKE ?",
		pattern, pattern, pattern, pattern,
	)
}
