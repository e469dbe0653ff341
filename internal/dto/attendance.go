package dto

// ── attendance DTO ──

// AttendanceQuery is the query of GET /api/attendance and /api/attendance/exists.
type AttendanceQuery struct {
	GroupID string `form:"groupId" binding:"required"`
	Date    string `form:"date"    binding:"required,datetime=2006-01-02"`
}

// AttendanceItem is one student's attendance state inside a session.
// UpdatedAt is the server-side RFC3339 timestamp of the winning row;
// it doubles as the optimistic-concurrency token on writes.
type AttendanceItem struct {
	StudentID string `json:"student_id" binding:"required"`
	Status    string `json:"status"     binding:"required,oneof=present absent withdrawn"`
	UpdatedAt string `json:"updated_at"`
	Note      string `json:"note,omitempty" binding:"max=500"`
}

// AttendanceResponse is the roster-joined view of one session.
type AttendanceResponse struct {
	SessionID string           `json:"session_id"`
	GroupID   string           `json:"group_id"`
	Date      string           `json:"date"`
	Items     []AttendanceItem `json:"items"`
}

// SetAttendanceRequest is the body of POST /api/attendance.
type SetAttendanceRequest struct {
	GroupID string           `json:"groupId" binding:"required"`
	Date    string           `json:"date"    binding:"required,datetime=2006-01-02"`
	Items   []AttendanceItem `json:"items"   binding:"required,min=1,dive"`
}

// ConflictItem reports a stale write: the client's updated_at no longer
// matches the server's. Current* carry the surviving server value so the
// client can re-render and retry.
type ConflictItem struct {
	StudentID        string `json:"student_id"`
	CurrentStatus    string `json:"current_status"`
	CurrentUpdatedAt string `json:"current_updated_at"`
	CurrentNote      string `json:"current_note,omitempty"`
}

// SetAttendanceResponse partitions a save into applied and conflicted items.
// Conflicts are part of the 200 payload, never an HTTP error.
type SetAttendanceResponse struct {
	SessionID string           `json:"session_id"`
	Updated   []AttendanceItem `json:"updated"`
	Conflicts []ConflictItem   `json:"conflicts"`
}

// ExistsResponse is returned by GET /api/attendance/exists.
type ExistsResponse struct {
	Exists    bool   `json:"exists"`
	SessionID string `json:"session_id,omitempty"`
}
