package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/repository"
)

// AttendanceService is the read-modify-write flow over the append-only
// Attendance worksheet.
//
// Writes are optimistic: every save re-reads the current state and compares
// the client's known updated_at per student against the server's. A
// mismatch means somebody wrote in between; the item is bounced back as a
// conflict with the surviving value instead of being overwritten. The
// window between the baseline read and the append is not locked, so two
// saves racing inside it can both pass the check. That is accepted: the
// sheet offers no transactions, rows only ever accumulate, and readers
// deterministically keep the newest row per student.
type AttendanceService interface {
	Get(ctx context.Context, caller *dto.Caller, groupID, date string) (*dto.AttendanceResponse, error)
	Set(ctx context.Context, caller *dto.Caller, req *dto.SetAttendanceRequest) (*dto.SetAttendanceResponse, error)
	Exists(ctx context.Context, caller *dto.Caller, groupID, date string) (*dto.ExistsResponse, error)

	// FindOrCreateSession resolves the session row for (group, date),
	// appending one with the deterministic id when none exists. Racing
	// creators may append duplicates; they share the same id, so every
	// caller still lands on one logical session.
	FindOrCreateSession(ctx context.Context, spreadsheetID, groupID, date string) (string, error)
}

type attendanceService struct {
	repo     *repository.Repository
	groups   GroupService
	students StudentService
	logger   *zap.Logger
}

// NewAttendanceService creates an AttendanceService instance.
func NewAttendanceService(repo *repository.Repository, groups GroupService, students StudentService, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, groups: groups, students: students, logger: logger}
}

func (s *attendanceService) FindOrCreateSession(ctx context.Context, spreadsheetID, groupID, date string) (string, error) {
	sess, err := s.repo.ClassSession.Find(ctx, spreadsheetID, groupID, date)
	if err != nil {
		return "", err
	}
	if sess != nil {
		return sess.SessionID, nil
	}

	created := &model.ClassSession{
		SessionID: model.SessionID(groupID, date),
		GroupID:   groupID,
		Date:      date,
		CreatedAt: nowStamp(),
	}
	if err := s.repo.ClassSession.Append(ctx, spreadsheetID, created); err != nil {
		return "", err
	}

	s.logger.Info("session created",
		zap.String("session_id", created.SessionID),
		zap.String("group_id", groupID),
		zap.String("date", date))

	return created.SessionID, nil
}

// Get returns the session's attendance joined against the roster. Students
// without any row default to absent with an empty timestamp, which the
// client reads as "nothing saved yet".
func (s *attendanceService) Get(ctx context.Context, caller *dto.Caller, groupID, date string) (*dto.AttendanceResponse, error) {
	spreadsheetID, err := s.groups.ResolveSpreadsheet(ctx, caller, groupID)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.FindOrCreateSession(ctx, spreadsheetID, groupID, date)
	if err != nil {
		return nil, err
	}

	latest, err := s.currentState(ctx, spreadsheetID, sessionID)
	if err != nil {
		return nil, err
	}

	roster, err := s.students.Roster(ctx, spreadsheetID, groupID)
	if err != nil {
		return nil, err
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, err
	}

	items := make([]dto.AttendanceItem, 0, len(roster))
	for _, st := range roster {
		if !st.EnrolledOn(day) {
			continue
		}
		if rec, ok := latest[st.ID]; ok {
			items = append(items, dto.AttendanceItem{
				StudentID: st.ID,
				Status:    rec.Status,
				UpdatedAt: rec.UpdatedAt,
				Note:      rec.Note,
			})
			continue
		}
		items = append(items, dto.AttendanceItem{
			StudentID: st.ID,
			Status:    model.AttendanceAbsent,
		})
	}

	return &dto.AttendanceResponse{
		SessionID: sessionID,
		GroupID:   groupID,
		Date:      date,
		Items:     items,
	}, nil
}

// Set partitions the submitted items into applied and conflicted. An item
// conflicts when its updated_at differs from the server's current value
// for that student; both empty means nobody has written yet, so the first
// save always goes through. Conflicted items are not written.
func (s *attendanceService) Set(ctx context.Context, caller *dto.Caller, req *dto.SetAttendanceRequest) (*dto.SetAttendanceResponse, error) {
	spreadsheetID, err := s.groups.ResolveSpreadsheet(ctx, caller, req.GroupID)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.FindOrCreateSession(ctx, spreadsheetID, req.GroupID, req.Date)
	if err != nil {
		return nil, err
	}

	latest, err := s.currentState(ctx, spreadsheetID, sessionID)
	if err != nil {
		return nil, err
	}

	resp := &dto.SetAttendanceResponse{
		SessionID: sessionID,
		Updated:   []dto.AttendanceItem{},
		Conflicts: []dto.ConflictItem{},
	}

	stamp := nowStamp()
	records := make([]model.AttendanceRecord, 0, len(req.Items))
	for _, item := range req.Items {
		current, marked := latest[item.StudentID]

		currentStamp := ""
		if marked {
			currentStamp = current.UpdatedAt
		}
		if item.UpdatedAt != currentStamp {
			conflict := dto.ConflictItem{
				StudentID:        item.StudentID,
				CurrentStatus:    model.AttendanceAbsent,
				CurrentUpdatedAt: currentStamp,
			}
			if marked {
				conflict.CurrentStatus = current.Status
				conflict.CurrentNote = current.Note
			}
			resp.Conflicts = append(resp.Conflicts, conflict)
			continue
		}

		records = append(records, model.AttendanceRecord{
			SessionID: sessionID,
			StudentID: item.StudentID,
			Status:    item.Status,
			UpdatedAt: stamp,
			Note:      item.Note,
		})
		resp.Updated = append(resp.Updated, dto.AttendanceItem{
			StudentID: item.StudentID,
			Status:    item.Status,
			UpdatedAt: stamp,
			Note:      item.Note,
		})
	}

	if len(records) > 0 {
		if err := s.repo.Attendance.Append(ctx, spreadsheetID, records); err != nil {
			return nil, err
		}
	}

	s.logger.Info("attendance saved",
		zap.String("session_id", sessionID),
		zap.String("group_id", req.GroupID),
		zap.Int("updated", len(resp.Updated)),
		zap.Int("conflicts", len(resp.Conflicts)),
		zap.String("by", caller.ID))

	return resp, nil
}

// Exists probes whether anything was ever saved for (group, date). A pure
// read: no session row is created for a probe.
func (s *attendanceService) Exists(ctx context.Context, caller *dto.Caller, groupID, date string) (*dto.ExistsResponse, error) {
	spreadsheetID, err := s.groups.ResolveSpreadsheet(ctx, caller, groupID)
	if err != nil {
		return nil, err
	}

	sess, err := s.repo.ClassSession.Find(ctx, spreadsheetID, groupID, date)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return &dto.ExistsResponse{Exists: false}, nil
	}

	latest, err := s.currentState(ctx, spreadsheetID, sess.SessionID)
	if err != nil {
		return nil, err
	}

	for _, rec := range latest {
		if rec.UpdatedAt != "" {
			return &dto.ExistsResponse{Exists: true, SessionID: sess.SessionID}, nil
		}
	}
	return &dto.ExistsResponse{Exists: false, SessionID: sess.SessionID}, nil
}

// currentState folds the session's append log into the effective row per
// student.
func (s *attendanceService) currentState(ctx context.Context, spreadsheetID, sessionID string) (map[string]model.AttendanceRecord, error) {
	records, err := s.repo.Attendance.ListBySession(ctx, spreadsheetID, sessionID)
	if err != nil {
		return nil, err
	}
	return model.LatestAttendance(records, sessionID), nil
}
