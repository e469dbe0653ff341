package model

import "time"

// Account roles. Owner and reception administer the school; instructors
// only work with their assigned groups.
const (
	RoleOwner      = "owner"
	RoleReception  = "reception"
	RoleInstructor = "instructor"
)

// Account statuses. Self-registered accounts start as pending and cannot
// log in until approved.
const (
	AccountPending  = "pending"
	AccountActive   = "active"
	AccountInactive = "inactive"
)

// ValidRole reports whether s is a known account role.
func ValidRole(s string) bool {
	return s == RoleOwner || s == RoleReception || s == RoleInstructor
}

// Instructor is a staff account, stored in instructors_auth.
type Instructor struct {
	ID           string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"username"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	FirstName    string `gorm:"type:varchar(100);not null;default:''"          json:"first_name"`
	LastName     string `gorm:"type:varchar(100);not null;default:''"          json:"last_name"`
	Phone        string `gorm:"type:varchar(30);not null;default:''"           json:"phone"`
	Role         string `gorm:"type:varchar(20);not null;default:'instructor'" json:"role"`
	Status       string `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	BaseModel

	Assignments []GroupAssignment `gorm:"foreignKey:InstructorID;references:ID" json:"assignments,omitempty"`
}

// TableName maps Instructor onto the historical table name.
func (Instructor) TableName() string { return "instructors_auth" }

// GroupIDs returns the group ids this instructor is assigned to.
func (i *Instructor) GroupIDs() []string {
	ids := make([]string, 0, len(i.Assignments))
	for _, a := range i.Assignments {
		ids = append(ids, a.GroupID)
	}
	return ids
}

// GroupAssignment is one row of the instructor-to-group allow list.
type GroupAssignment struct {
	InstructorID string    `gorm:"type:uuid;primaryKey"               json:"instructor_id"`
	GroupID      string    `gorm:"type:varchar(50);primaryKey"        json:"group_id"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName maps GroupAssignment onto instructor_group_assignments.
func (GroupAssignment) TableName() string { return "instructor_group_assignments" }
