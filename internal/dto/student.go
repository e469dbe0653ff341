package dto

import "github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"

// ── student DTO ──

// StudentListRequest is the query of GET /api/students. Parameter names
// are the historical camelCase ones the web client sends.
type StudentListRequest struct {
	GroupID      string `form:"groupId"      binding:"required"`
	ShowInactive bool   `form:"showInactive"`
}

// SubmitStudentRequest is an instructor's new-student submission; the
// student stays pending until an admin approves it.
type SubmitStudentRequest struct {
	GroupID   string `json:"groupId"    binding:"required"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name"  binding:"required,max=100"`
	Class     string `json:"class"      binding:"omitempty,max=50"`
	Phone     string `json:"phone"      binding:"omitempty,max=30"`
	Email     string `json:"email"      binding:"omitempty,email"`
	StartDate string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
}

// ApproveStudentRequest activates a pending student.
type ApproveStudentRequest struct {
	GroupID   string `json:"groupId"    binding:"required"`
	StartDate string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
}

// ExpelStudentRequest deactivates a student with an enrollment end date.
type ExpelStudentRequest struct {
	GroupID string `json:"groupId"  binding:"required"`
	EndDate string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

// PendingStudentsRequest is the query of GET /api/admin/pending-students.
type PendingStudentsRequest struct {
	GroupID string `form:"groupId"`
}

// StudentResponse is one student row after latest-row resolution.
type StudentResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	GroupID   string `json:"group_id"`
	Active    bool   `json:"active"`
	Class     string `json:"class,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Status    string `json:"status"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// StudentsResponse is returned by GET /api/students.
type StudentsResponse struct {
	Students []StudentResponse `json:"students"`
}

// NewStudentResponse maps a student row to its client shape.
func NewStudentResponse(s *model.Student) StudentResponse {
	return StudentResponse{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		GroupID:   s.GroupID,
		Active:    s.Active,
		Class:     s.Class,
		Phone:     s.Phone,
		Email:     s.Email,
		Status:    s.EffectiveStatus(),
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
	}
}
