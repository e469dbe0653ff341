package model

import "time"

// AuthSession is one server-side HTTP session, stored in sessions. The
// cookie carries the token plus an HMAC signature; only the token is
// persisted.
type AuthSession struct {
	Token        string    `gorm:"type:varchar(64);primaryKey"            json:"-"`
	InstructorID string    `gorm:"type:uuid;not null;index"               json:"instructor_id"`
	ExpiresAt    time.Time `gorm:"not null;index"                         json:"expires_at"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"     json:"created_at"`
	UserAgent    string    `gorm:"type:varchar(255);not null;default:''"  json:"user_agent"`
	IP           string    `gorm:"type:varchar(45);not null;default:''"   json:"ip"`

	Instructor *Instructor `gorm:"foreignKey:InstructorID;references:ID" json:"-"`
}

// TableName maps AuthSession onto sessions.
func (AuthSession) TableName() string { return "sessions" }

// Expired reports whether the session is past its expiry.
func (s *AuthSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
