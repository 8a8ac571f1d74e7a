package models

import "gorm.io/gorm"

// DefaultWorkspaceName is the sentinel name of the singleton workspace. The
// app is single-tenant for now; all leads and campaigns hang off this record.
const DefaultWorkspaceName = "Default Workspace"

// Workspace is the tenant boundary owning leads and campaigns
type Workspace struct {
	gorm.Model
	Name string `gorm:"not null;uniqueIndex" json:"name"`

	// Relations
	Leads     []Lead     `gorm:"foreignKey:WorkspaceID" json:"leads,omitempty"`
	Campaigns []Campaign `gorm:"foreignKey:WorkspaceID" json:"campaigns,omitempty"`
}

// EnsureDefaultWorkspace provisions the singleton workspace at startup.
// FirstOrCreate against the unique name keeps this idempotent, so concurrent
// first boots cannot create two defaults.
func EnsureDefaultWorkspace(db *gorm.DB) (*Workspace, error) {
	var ws Workspace
	if err := db.Where(Workspace{Name: DefaultWorkspaceName}).FirstOrCreate(&ws).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}
