package dto

import "github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"

// ── group configuration DTO ──

// CreateGroupRequest registers a new group. SpreadsheetID may stay empty
// to use the default spreadsheet.
type CreateGroupRequest struct {
	GroupID       string `json:"group_id"       binding:"required,min=1,max=50"`
	Name          string `json:"name"           binding:"required,min=1,max=100"`
	SpreadsheetID string `json:"spreadsheet_id" binding:"omitempty,max=100"`
}

// UpdateGroupRequest edits a group configuration. Nil fields are left
// unchanged.
type UpdateGroupRequest struct {
	Name          *string `json:"name"           binding:"omitempty,min=1,max=100"`
	SpreadsheetID *string `json:"spreadsheet_id" binding:"omitempty,max=100"`
	IsActive      *bool   `json:"is_active"`
}

// GroupResponse is one configured group.
type GroupResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
	// HasOwnSpreadsheet tells the admin panel whether the group overrides
	// the default spreadsheet; the raw id is not exposed to instructors.
	HasOwnSpreadsheet bool `json:"has_own_spreadsheet"`
}

// GroupDetailResponse is the admin view including the spreadsheet binding.
type GroupDetailResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SpreadsheetID string `json:"spreadsheet_id"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// GroupsResponse is returned by GET /api/groups.
type GroupsResponse struct {
	Groups []GroupResponse `json:"groups"`
}

// GroupDetailsResponse is returned by GET /api/admin/groups.
type GroupDetailsResponse struct {
	Groups []GroupDetailResponse `json:"groups"`
}

// NewGroupResponse maps a group configuration to its instructor-facing shape.
func NewGroupResponse(g *model.GroupConfig) GroupResponse {
	return GroupResponse{
		ID:                g.GroupID,
		Name:              g.Name,
		IsActive:          g.IsActive,
		HasOwnSpreadsheet: g.SpreadsheetID != "",
	}
}

// NewGroupDetailResponse maps a group configuration to its admin shape.
func NewGroupDetailResponse(g *model.GroupConfig) GroupDetailResponse {
	return GroupDetailResponse{
		ID:            g.GroupID,
		Name:          g.Name,
		SpreadsheetID: g.SpreadsheetID,
		IsActive:      g.IsActive,
		CreatedAt:     g.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     g.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
