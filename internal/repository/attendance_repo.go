package repository

import (
	"context"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/sheets"
	apperr "github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/errors"
)

// attendanceRange covers the Attendance worksheet: session_id, student_id,
// status, updated_at, note.
const attendanceRange = "Attendance!A1:E"

// AttendanceRepository is the data access interface for the append-only
// attendance log. Reads return raw rows, unresolved: multiple rows per
// (session, student) are expected and callers pick the latest per student.
type AttendanceRepository interface {
	// List returns the whole log of a spreadsheet. Reports scan it once
	// instead of re-reading the sheet per session.
	List(ctx context.Context, spreadsheetID string) ([]model.AttendanceRecord, error)
	ListBySession(ctx context.Context, spreadsheetID, sessionID string) ([]model.AttendanceRecord, error)
	Append(ctx context.Context, spreadsheetID string, records []model.AttendanceRecord) error
}

// attendanceRepo is the Sheets implementation of AttendanceRepository.
type attendanceRepo struct {
	sc SheetClient
}

// NewAttendanceRepo creates an AttendanceRepository.
func NewAttendanceRepo(sc SheetClient) AttendanceRepository {
	return &attendanceRepo{sc: sc}
}

func (r *attendanceRepo) List(ctx context.Context, spreadsheetID string) ([]model.AttendanceRecord, error) {
	rows, err := r.sc.ReadRange(ctx, spreadsheetID, attendanceRange)
	if err != nil {
		return nil, apperr.Upstream("fetch attendance", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	idx := sheets.HeaderIndex(rows[0])
	var (
		session   = sheets.Column(idx, "session_id")
		studentID = sheets.Column(idx, "student_id")
		status    = sheets.Column(idx, "status")
		updatedAt = sheets.Column(idx, "updated_at")
		note      = sheets.Column(idx, "note")
	)

	var records []model.AttendanceRecord
	for _, row := range rows[1:] {
		rec := model.AttendanceRecord{
			SessionID: sheets.Cell(row, session),
			StudentID: sheets.Cell(row, studentID),
			Status:    sheets.Cell(row, status),
			UpdatedAt: sheets.Cell(row, updatedAt),
			Note:      sheets.Cell(row, note),
		}
		if rec.SessionID == "" || rec.StudentID == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *attendanceRepo) ListBySession(ctx context.Context, spreadsheetID, sessionID string) ([]model.AttendanceRecord, error) {
	records, err := r.List(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	filtered := records[:0]
	for _, rec := range records {
		if rec.SessionID == sessionID {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

func (r *attendanceRepo) Append(ctx context.Context, spreadsheetID string, records []model.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.SessionID,
			rec.StudentID,
			rec.Status,
			rec.UpdatedAt,
			rec.Note,
		})
	}
	if err := r.sc.AppendRows(ctx, spreadsheetID, attendanceRange, rows); err != nil {
		return apperr.Upstream("save attendance", err)
	}
	return nil
}
