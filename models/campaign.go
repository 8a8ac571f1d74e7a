package models

import "gorm.io/gorm"

// Campaign statuses
const (
	CampaignStatusDraft     = "DRAFT"
	CampaignStatusActive    = "ACTIVE"
	CampaignStatusPaused    = "PAUSED"
	CampaignStatusCompleted = "COMPLETED"
)

// Campaign types shipped with the product. The column is an open-ended
// string so new playbooks can be added without a migration; unknown types
// fall back to the cold-outreach templates at generation time.
const (
	CampaignTypeReamCleaning = "REAM_CLEANING"
	CampaignTypeUnidoxia     = "UNIDOXIA"
	CampaignTypeColdOutreach = "COLD_OUTREACH"
	CampaignTypeFollowUp     = "FOLLOW_UP"
)

// Campaign represents an outreach initiative
type Campaign struct {
	gorm.Model
	WorkspaceID uint `gorm:"not null;index" json:"workspace_id"`

	Name   string `gorm:"not null" json:"name"`
	Type   string `gorm:"not null" json:"type"`
	Status string `gorm:"default:'DRAFT'" json:"status"` // DRAFT, ACTIVE, PAUSED, COMPLETED

	// Relations
	Steps  []SequenceStep `gorm:"foreignKey:CampaignID" json:"steps,omitempty"`
	Drafts []DraftEmail   `gorm:"foreignKey:CampaignID" json:"drafts,omitempty"`
}

// SequenceStep is one templated touch within a campaign's cadence.
// StepNumber is unique and densely assigned per campaign (1..N). Nothing in
// this service schedules or fires steps; DelayDays is descriptive metadata.
type SequenceStep struct {
	gorm.Model
	CampaignID uint `gorm:"not null;index;uniqueIndex:idx_campaign_step" json:"campaign_id"`

	StepNumber int    `gorm:"not null;uniqueIndex:idx_campaign_step" json:"step_number"`
	DelayDays  int    `gorm:"not null;default:0" json:"delay_days"` // days after step 1
	SubjectTpl string `gorm:"not null" json:"subject_tpl"`
	BodyTpl    string `gorm:"type:text;not null" json:"body_tpl"`

	// Relations
	Campaign Campaign `json:"-"`
}

// ValidCampaignStatus reports whether s is a known campaign status
func ValidCampaignStatus(s string) bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusPaused, CampaignStatusCompleted:
		return true
	}
	return false
}

// CampaignProgress derives the percentage of sent drafts. Progress is never
// stored; it is recomputed from the draft rows on every read.
func CampaignProgress(total, sent int64) int {
	if total == 0 {
		return 0
	}
	return int(float64(sent)/float64(total)*100 + 0.5)
}
