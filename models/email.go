package models

import (
	"time"

	"gorm.io/gorm"
)

// Draft email statuses. PENDING_APPROVAL exists in the schema and is counted
// by the stats endpoints, but no transition currently produces it; drafts are
// created directly in DRAFT.
const (
	DraftStatusDraft           = "DRAFT"
	DraftStatusPendingApproval = "PENDING_APPROVAL"
	DraftStatusApproved        = "APPROVED"
	DraftStatusRejected        = "REJECTED"
	DraftStatusSent            = "SENT"
)

// Send providers recorded on SendEvent rows
const (
	ProviderInternal = "INTERNAL"
	ProviderGmail    = "GMAIL"
	ProviderSMTP     = "SMTP"
)

// DraftEmail is one generated, editable email tied to exactly one lead and
// one campaign. This is the central mutable entity of the approval/send
// lifecycle.
type DraftEmail struct {
	gorm.Model
	LeadID     uint `gorm:"not null;index" json:"lead_id"`
	CampaignID uint `gorm:"not null;index" json:"campaign_id"`

	Subject   string `gorm:"not null" json:"subject"`
	BodyHTML  string `gorm:"type:text;not null" json:"body_html"`
	ToAddress string `gorm:"not null" json:"to_address"`
	Status    string `gorm:"default:'DRAFT';index" json:"status"`

	// Relations
	Lead      Lead           `json:"lead,omitempty"`
	Campaign  Campaign       `json:"campaign,omitempty"`
	Approvals []ApprovalItem `gorm:"foreignKey:DraftEmailID" json:"approvals,omitempty"`
	SendEvent *SendEvent     `gorm:"foreignKey:DraftEmailID" json:"send_event,omitempty"`
}

// ApprovalItem is an immutable audit row appended on each approve/reject
// decision. A draft reviewed twice gets two rows; the trail records every
// decision, not just the latest one. Rows are only removed by a full
// workspace reset.
type ApprovalItem struct {
	gorm.Model
	DraftEmailID uint `gorm:"not null;index" json:"draft_email_id"`
	LeadID       uint `gorm:"not null;index" json:"lead_id"`

	Status     string    `gorm:"not null" json:"status"` // APPROVED or REJECTED
	ReviewedAt time.Time `gorm:"not null" json:"reviewed_at"`
}

// SendEvent is an immutable audit row created exactly once per successful
// send. The unique index on DraftEmailID enforces at most one successful
// send per draft at the storage layer.
type SendEvent struct {
	gorm.Model
	DraftEmailID    uint `gorm:"not null;uniqueIndex" json:"draft_email_id"`
	ContactMethodID uint `gorm:"not null;index" json:"contact_method_id"`

	Provider  string `gorm:"not null" json:"provider"`
	MessageID string `gorm:"not null" json:"message_id"`
}

// ValidDraftStatus reports whether s is a known draft status
func ValidDraftStatus(s string) bool {
	switch s {
	case DraftStatusDraft, DraftStatusPendingApproval, DraftStatusApproved,
		DraftStatusRejected, DraftStatusSent:
		return true
	}
	return false
}
