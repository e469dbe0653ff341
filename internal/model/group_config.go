package model

// GroupConfig is the per-group configuration row in groups_config.
// SpreadsheetID overrides the default spreadsheet for groups whose data
// lives in a separate document; empty means "use the default".
type GroupConfig struct {
	GroupID       string `gorm:"type:varchar(50);primaryKey"            json:"group_id"`
	Name          string `gorm:"type:varchar(100);not null"             json:"name"`
	SpreadsheetID string `gorm:"type:varchar(100);not null;default:''"  json:"spreadsheet_id"`
	IsActive      bool   `gorm:"not null;default:true"                  json:"is_active"`
	BaseModel
}

// TableName maps GroupConfig onto groups_config.
func (GroupConfig) TableName() string { return "groups_config" }
