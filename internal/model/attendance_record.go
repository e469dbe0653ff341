package model

// Attendance statuses.
const (
	AttendancePresent   = "present"
	AttendanceAbsent    = "absent"
	AttendanceWithdrawn = "withdrawn"
)

// ValidAttendanceStatus reports whether s is a known attendance status.
func ValidAttendanceStatus(s string) bool {
	return s == AttendancePresent || s == AttendanceAbsent || s == AttendanceWithdrawn
}

// AttendanceRecord is one row of the Attendance worksheet. The sheet is an
// append-only log: an "update" is a new row for the same (session, student)
// and readers keep the row with the largest UpdatedAt. Timestamps are
// RFC3339 UTC strings, so lexicographic order is temporal order.
type AttendanceRecord struct {
	SessionID string `json:"session_id"`
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updated_at"`
	Note      string `json:"note,omitempty"`
}

// LatestAttendance folds an attendance log into the effective row per
// student: for each student the record with the lexicographically largest
// UpdatedAt wins. Records for other sessions are skipped.
func LatestAttendance(records []AttendanceRecord, sessionID string) map[string]AttendanceRecord {
	latest := make(map[string]AttendanceRecord)
	for _, rec := range records {
		if rec.SessionID != sessionID || rec.StudentID == "" {
			continue
		}
		if cur, ok := latest[rec.StudentID]; !ok || rec.UpdatedAt > cur.UpdatedAt {
			latest[rec.StudentID] = rec
		}
	}
	return latest
}
