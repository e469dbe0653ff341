package dto

// ── report DTO ──

// ReportQuery is the query of GET /api/reports/attendance and the export
// endpoints. GroupIDs is a comma-separated list; empty means every group
// the caller may see. Status filters students: "" keeps active students,
// "all" keeps everyone, otherwise it must be a lifecycle status.
type ReportQuery struct {
	GroupIDs string `form:"groupIds"`
	DateFrom string `form:"dateFrom" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"dateTo"   binding:"omitempty,datetime=2006-01-02"`
	Status   string `form:"status"   binding:"omitempty,oneof=active inactive pending all"`
}

// ReportItem is one student's aggregated attendance over the report window.
type ReportItem struct {
	StudentID     string `json:"student_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	GroupID       string `json:"group_id"`
	GroupName     string `json:"group_name"`
	Status        string `json:"status"`
	Present       int    `json:"present"`
	Absent        int    `json:"absent"`
	Withdrawn     int    `json:"withdrawn"`
	TotalSessions int    `json:"total_sessions"`
	Percent       int    `json:"percent"`
}

// GroupStats summarizes one group inside the report window.
type GroupStats struct {
	GroupID        string `json:"group_id"`
	GroupName      string `json:"group_name"`
	Sessions       int    `json:"sessions"`
	Students       int    `json:"students"`
	AveragePercent int    `json:"average_percent"`
}

// ReportTotals aggregates the whole report.
type ReportTotals struct {
	Groups         int `json:"groups"`
	Sessions       int `json:"sessions"`
	Students       int `json:"students"`
	AveragePercent int `json:"average_percent"`
}

// ReportResponse is returned by GET /api/reports/attendance.
type ReportResponse struct {
	DateFrom string       `json:"date_from,omitempty"`
	DateTo   string       `json:"date_to,omitempty"`
	Items    []ReportItem `json:"items"`
	Groups   []GroupStats `json:"groups"`
	Totals   ReportTotals `json:"totals"`
}
