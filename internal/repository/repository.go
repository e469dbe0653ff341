package repository

import (
	"context"

	"gorm.io/gorm"
)

// SheetClient is the slice of the spreadsheet access layer the worksheet
// repositories consume. *sheets.Client satisfies it.
type SheetClient interface {
	ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
	AppendRows(ctx context.Context, spreadsheetID, rng string, rows [][]string) error
}

// Repository aggregates every data-access interface. Relational entities
// (accounts, sessions, group configuration) live in PostgreSQL; the
// spreadsheet-backed entities (students, class sessions, attendance) live
// in Google Sheets, which is the system of record for them.
type Repository struct {
	Instructor   InstructorRepository
	AuthSession  AuthSessionRepository
	GroupConfig  GroupConfigRepository
	Student      StudentRepository
	ClassSession ClassSessionRepository
	Attendance   AttendanceRepository
}

// NewRepository wires all repository implementations.
func NewRepository(db *gorm.DB, sc SheetClient) *Repository {
	return &Repository{
		Instructor:   NewInstructorRepo(db),
		AuthSession:  NewAuthSessionRepo(db),
		GroupConfig:  NewGroupConfigRepo(db),
		Student:      NewStudentRepo(sc),
		ClassSession: NewClassSessionRepo(sc),
		Attendance:   NewAttendanceRepo(sc),
	}
}
