package model

import "time"

// Student lifecycle statuses. Legacy rows may leave the column empty; an
// empty status counts as active when the active flag is set.
const (
	StudentPending  = "pending"
	StudentActive   = "active"
	StudentInactive = "inactive"
)

// Student is one row of the Students worksheet. The sheet is append-only:
// lifecycle changes (approval, expulsion) append a new row for the same id
// and readers keep the last row per id.
type Student struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	GroupID   string `json:"group_id"`
	Active    bool   `json:"active"`
	Class     string `json:"class,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Status    string `json:"status"`
	StartDate string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   string `json:"end_date,omitempty"`   // YYYY-MM-DD
	UpdatedAt string `json:"updated_at,omitempty"` // RFC3339 UTC
}

// Valid reports whether the row carries the fields every consumer needs.
// Rows failing this check are dropped during reads.
func (s *Student) Valid() bool {
	return s.ID != "" && s.FirstName != "" && s.LastName != "" && s.GroupID != ""
}

// EffectiveStatus resolves the lifecycle status, treating an empty status
// column on an active row as active.
func (s *Student) EffectiveStatus() string {
	if s.Status != "" {
		return s.Status
	}
	if s.Active {
		return StudentActive
	}
	return StudentInactive
}

// EnrolledOn reports whether the student counts as enrolled on the given
// day: effective status active, active flag set, and the day inside the
// optional start/end date bounds.
func (s *Student) EnrolledOn(day time.Time) bool {
	if !s.Active || s.EffectiveStatus() != StudentActive {
		return false
	}
	return s.EnrollmentCovers(day.Format("2006-01-02"))
}

// EnrollmentCovers reports whether an ISO date falls inside the start/end
// bounds, ignoring the current lifecycle state. Reports use this so a
// student expelled in May is still charged for the March sessions they
// were enrolled in.
func (s *Student) EnrollmentCovers(date string) bool {
	if s.StartDate != "" && date < s.StartDate {
		return false
	}
	if s.EndDate != "" && date > s.EndDate {
		return false
	}
	return true
}
