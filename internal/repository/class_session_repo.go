package repository

import (
	"context"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/sheets"
	apperr "github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/errors"
)

// sessionsRange covers the Sessions worksheet: session_id, group_id, date,
// created_at.
const sessionsRange = "Sessions!A1:D"

// ClassSessionRepository is the data access interface for the Sessions
// worksheet. Find returns (nil, nil) when no row matches; racing creators
// may append duplicate rows for one (group, date), which is benign because
// the session id is deterministic.
type ClassSessionRepository interface {
	Find(ctx context.Context, spreadsheetID, groupID, date string) (*model.ClassSession, error)
	ListByGroup(ctx context.Context, spreadsheetID, groupID string) ([]model.ClassSession, error)
	Append(ctx context.Context, spreadsheetID string, session *model.ClassSession) error
}

// classSessionRepo is the Sheets implementation of ClassSessionRepository.
type classSessionRepo struct {
	sc SheetClient
}

// NewClassSessionRepo creates a ClassSessionRepository.
func NewClassSessionRepo(sc SheetClient) ClassSessionRepository {
	return &classSessionRepo{sc: sc}
}

func (r *classSessionRepo) Find(ctx context.Context, spreadsheetID, groupID, date string) (*model.ClassSession, error) {
	sessions, err := r.ListByGroup(ctx, spreadsheetID, groupID)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].Date == date {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

func (r *classSessionRepo) ListByGroup(ctx context.Context, spreadsheetID, groupID string) ([]model.ClassSession, error) {
	rows, err := r.sc.ReadRange(ctx, spreadsheetID, sessionsRange)
	if err != nil {
		return nil, apperr.Upstream("fetch sessions", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	idx := sheets.HeaderIndex(rows[0])
	var (
		sessionID = sheets.Column(idx, "session_id")
		group     = sheets.Column(idx, "group_id")
		date      = sheets.Column(idx, "date")
		createdAt = sheets.Column(idx, "created_at")
	)

	var sessions []model.ClassSession
	for _, row := range rows[1:] {
		s := model.ClassSession{
			SessionID: sheets.Cell(row, sessionID),
			GroupID:   sheets.Cell(row, group),
			Date:      sheets.Cell(row, date),
			CreatedAt: sheets.Cell(row, createdAt),
		}
		if s.SessionID == "" || s.GroupID != groupID || s.Date == "" {
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (r *classSessionRepo) Append(ctx context.Context, spreadsheetID string, session *model.ClassSession) error {
	row := []string{
		session.SessionID,
		session.GroupID,
		session.Date,
		session.CreatedAt,
	}
	if err := r.sc.AppendRows(ctx, spreadsheetID, sessionsRange, [][]string{row}); err != nil {
		return apperr.Upstream("create session", err)
	}
	return nil
}
