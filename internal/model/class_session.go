package model

import "strings"

// ClassSession is one row of the Sessions worksheet: the grouping key for
// all attendance records of a group on a given date. Sessions are created
// lazily on the first read or write for a (group, date) pair and never
// deleted. Racing creators may append duplicate rows; the deterministic id
// makes the duplicates collapse onto the same key.
type ClassSession struct {
	SessionID string `json:"session_id"`
	GroupID   string `json:"group_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	CreatedAt string `json:"created_at,omitempty"`
}

// SessionID derives the deterministic session identifier for a group and
// date: SESS-<date>-<normalized group>, where the group code is uppercased
// and runs of non-alphanumerics collapse to a single dash.
func SessionID(groupID, date string) string {
	return "SESS-" + date + "-" + normalizeGroupID(groupID)
}

func normalizeGroupID(groupID string) string {
	var b strings.Builder
	b.Grow(len(groupID))
	lastDash := false
	for _, r := range strings.ToUpper(groupID) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
