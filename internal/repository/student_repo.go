package repository

import (
	"context"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/sheets"
	apperr "github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/errors"
)

// studentsRange covers the Students worksheet: id, first_name, last_name,
// group_id, active, class, phone, email, status, start_date, end_date,
// updated_at. Column order is free; the header row drives the mapping.
const studentsRange = "Students!A1:L"

// StudentRepository is the data access interface for the Students
// worksheet. Reads resolve the append-only log to the last row per student
// id and drop rows missing required fields.
type StudentRepository interface {
	List(ctx context.Context, spreadsheetID string) ([]model.Student, error)
	ListByGroup(ctx context.Context, spreadsheetID, groupID string) ([]model.Student, error)
	Append(ctx context.Context, spreadsheetID string, student *model.Student) error
}

// studentRepo is the Sheets implementation of StudentRepository.
type studentRepo struct {
	sc SheetClient
}

// NewStudentRepo creates a StudentRepository.
func NewStudentRepo(sc SheetClient) StudentRepository {
	return &studentRepo{sc: sc}
}

func (r *studentRepo) List(ctx context.Context, spreadsheetID string) ([]model.Student, error) {
	rows, err := r.sc.ReadRange(ctx, spreadsheetID, studentsRange)
	if err != nil {
		return nil, apperr.Upstream("fetch students", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	idx := sheets.HeaderIndex(rows[0])
	var (
		id        = sheets.Column(idx, "id")
		firstName = sheets.Column(idx, "first_name")
		lastName  = sheets.Column(idx, "last_name")
		groupID   = sheets.Column(idx, "group_id")
		active    = sheets.Column(idx, "active")
		class     = sheets.Column(idx, "class")
		phone     = sheets.Column(idx, "phone")
		email     = sheets.Column(idx, "email")
		status    = sheets.Column(idx, "status")
		startDate = sheets.Column(idx, "start_date")
		endDate   = sheets.Column(idx, "end_date")
		updatedAt = sheets.Column(idx, "updated_at")
	)

	// Append order is chronological, so the last row per id wins.
	order := make([]string, 0, len(rows)-1)
	latest := make(map[string]model.Student, len(rows)-1)
	for _, row := range rows[1:] {
		s := model.Student{
			ID:        sheets.Cell(row, id),
			FirstName: sheets.Cell(row, firstName),
			LastName:  sheets.Cell(row, lastName),
			GroupID:   sheets.Cell(row, groupID),
			Active:    sheets.ParseBool(sheets.Cell(row, active)),
			Class:     sheets.Cell(row, class),
			Phone:     sheets.Cell(row, phone),
			Email:     sheets.Cell(row, email),
			Status:    sheets.Cell(row, status),
			StartDate: sheets.Cell(row, startDate),
			EndDate:   sheets.Cell(row, endDate),
			UpdatedAt: sheets.Cell(row, updatedAt),
		}
		if !s.Valid() {
			continue
		}
		if _, seen := latest[s.ID]; !seen {
			order = append(order, s.ID)
		}
		latest[s.ID] = s
	}

	students := make([]model.Student, 0, len(order))
	for _, sid := range order {
		students = append(students, latest[sid])
	}
	return students, nil
}

func (r *studentRepo) ListByGroup(ctx context.Context, spreadsheetID, groupID string) ([]model.Student, error) {
	students, err := r.List(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	filtered := students[:0]
	for _, s := range students {
		if s.GroupID == groupID {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

func (r *studentRepo) Append(ctx context.Context, spreadsheetID string, student *model.Student) error {
	active := "false"
	if student.Active {
		active = "true"
	}
	row := []string{
		student.ID,
		student.FirstName,
		student.LastName,
		student.GroupID,
		active,
		student.Class,
		student.Phone,
		student.Email,
		student.Status,
		student.StartDate,
		student.EndDate,
		student.UpdatedAt,
	}
	if err := r.sc.AppendRows(ctx, spreadsheetID, studentsRange, [][]string{row}); err != nil {
		return apperr.Upstream("save student", err)
	}
	return nil
}
