package models

import "gorm.io/gorm"

// SeedDemoData loads a small demo dataset into the given workspace. It is a
// no-op when any lead already exists, so repeated calls are safe.
func SeedDemoData(db *gorm.DB, ws *Workspace) (bool, error) {
	var count int64
	if err := db.Model(&Lead{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	leads := []Lead{
		{WorkspaceID: ws.ID, CompanyName: "Acme Corp", Website: "acme.io", Status: LeadStatusNew, Industry: "SaaS", Location: "USA"},
		{WorkspaceID: ws.ID, CompanyName: "Stanford University", Website: "stanford.edu", Status: LeadStatusResearched, Industry: "Education", Location: "USA"},
		{WorkspaceID: ws.ID, CompanyName: "Nexus AI", Website: "nexus.ai", Status: LeadStatusNew, Industry: "AI", Location: "UK"},
	}
	if err := db.Create(&leads).Error; err != nil {
		return false, err
	}

	campaigns := []Campaign{
		{WorkspaceID: ws.ID, Name: "Ream Cleaning - South London", Type: CampaignTypeReamCleaning, Status: CampaignStatusActive},
		{WorkspaceID: ws.ID, Name: "UniDoxia - UK Universities", Type: CampaignTypeUnidoxia, Status: CampaignStatusPaused},
	}
	if err := db.Create(&campaigns).Error; err != nil {
		return false, err
	}

	return true, nil
}

// ResetWorkspace wipes every record, audit rows included. This is the only
// path that deletes ApprovalItem or SendEvent rows.
func ResetWorkspace(db *gorm.DB) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	for _, model := range []interface{}{
		&SendEvent{}, &ApprovalItem{}, &DraftEmail{}, &SequenceStep{},
		&ContactMethod{}, &Campaign{}, &Lead{}, &Workspace{},
	} {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}
