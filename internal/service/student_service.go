package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/repository"
)

var (
	ErrStudentNotFound   = errors.New("student not found in this group")
	ErrStudentNotPending = errors.New("student is not awaiting approval")
	ErrStudentInactive   = errors.New("student is already inactive")
)

// StudentService works on the Students worksheet. The sheet is append-only,
// so every lifecycle transition (submission, approval, expulsion) appends a
// new row for the student id; the repository resolves reads to the last row
// per id.
type StudentService interface {
	List(ctx context.Context, caller *dto.Caller, req *dto.StudentListRequest) (*dto.StudentsResponse, error)
	Submit(ctx context.Context, caller *dto.Caller, req *dto.SubmitStudentRequest) (*dto.StudentResponse, error)
	ListPending(ctx context.Context, caller *dto.Caller, groupID string) (*dto.StudentsResponse, error)
	Approve(ctx context.Context, caller *dto.Caller, studentID string, req *dto.ApproveStudentRequest) (*dto.StudentResponse, error)
	Expel(ctx context.Context, caller *dto.Caller, studentID string, req *dto.ExpelStudentRequest) (*dto.StudentResponse, error)

	// Roster returns the group's resolved student rows sorted for display.
	// No lifecycle filtering; attendance and reports apply their own.
	Roster(ctx context.Context, spreadsheetID, groupID string) ([]model.Student, error)
}

type studentService struct {
	repo   *repository.Repository
	groups GroupService
	logger *zap.Logger
}

// NewStudentService creates a StudentService instance.
func NewStudentService(repo *repository.Repository, groups GroupService, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, groups: groups, logger: logger}
}

func (s *studentService) List(ctx context.Context, caller *dto.Caller, req *dto.StudentListRequest) (*dto.StudentsResponse, error) {
	spreadsheetID, err := s.groups.ResolveSpreadsheet(ctx, caller, req.GroupID)
	if err != nil {
		return nil, err
	}

	students, err := s.Roster(ctx, spreadsheetID, req.GroupID)
	if err != nil {
		return nil, err
	}

	resp := &dto.StudentsResponse{Students: make([]dto.StudentResponse, 0, len(students))}
	today := time.Now()
	for i := range students {
		if !req.ShowInactive && !students[i].EnrolledOn(today) {
			continue
		}
		resp.Students = append(resp.Students, dto.NewStudentResponse(&students[i]))
	}
	return resp, nil
}

// Submit appends a pending student row. Instructors use this to hand new
// students to the office; nothing shows up on attendance lists until an
// admin approves.
func (s *studentService) Submit(ctx context.Context, caller *dto.Caller, req *dto.SubmitStudentRequest) (*dto.StudentResponse, error) {
	spreadsheetID, err := s.groups.ResolveSpreadsheet(ctx, caller, req.GroupID)
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		GroupID:   req.GroupID,
		Active:    false,
		Class:     req.Class,
		Phone:     req.Phone,
		Email:     req.Email,
		Status:    model.StudentPending,
		StartDate: req.StartDate,
		UpdatedAt: nowStamp(),
	}
	if err := s.repo.Student.Append(ctx, spreadsheetID, student); err != nil {
		s.logger.Error("submitting student failed",
			zap.String("group_id", req.GroupID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("student submitted",
		zap.String("student_id", student.ID),
		zap.String("group_id", req.GroupID),
		zap.String("by", caller.ID))

	resp := dto.NewStudentResponse(student)
	return &resp, nil
}

func (s *studentService) ListPending(ctx context.Context, caller *dto.Caller, groupID string) (*dto.StudentsResponse, error) {
	var pending []model.Student

	if groupID != "" {
		spreadsheetID, err := s.groups.ResolveSpreadsheet(ctx, caller, groupID)
		if err != nil {
			return nil, err
		}
		students, err := s.repo.Student.ListByGroup(ctx, spreadsheetID, groupID)
		if err != nil {
			return nil, err
		}
		for _, st := range students {
			if st.EffectiveStatus() == model.StudentPending {
				pending = append(pending, st)
			}
		}
	} else {
		groups, err := s.groups.VisibleGroups(ctx, caller)
		if err != nil {
			return nil, err
		}
		// Groups may share one spreadsheet; read each document once.
		wanted := make(map[string]bool, len(groups))
		seen := make(map[string]bool, len(groups))
		var sheets []string
		for i := range groups {
			wanted[groups[i].GroupID] = true
			id := s.groups.SpreadsheetFor(&groups[i])
			if !seen[id] {
				seen[id] = true
				sheets = append(sheets, id)
			}
		}
		for _, sheet := range sheets {
			students, err := s.repo.Student.List(ctx, sheet)
			if err != nil {
				return nil, err
			}
			for _, st := range students {
				if wanted[st.GroupID] && st.EffectiveStatus() == model.StudentPending {
					pending = append(pending, st)
				}
			}
		}
	}

	sortStudents(pending)

	resp := &dto.StudentsResponse{Students: make([]dto.StudentResponse, 0, len(pending))}
	for i := range pending {
		resp.Students = append(resp.Students, dto.NewStudentResponse(&pending[i]))
	}
	return resp, nil
}

// Approve appends an active row for a pending student. The pending row
// stays in the log; readers resolve to the newer row.
func (s *studentService) Approve(ctx context.Context, caller *dto.Caller, studentID string, req *dto.ApproveStudentRequest) (*dto.StudentResponse, error) {
	spreadsheetID, student, err := s.findStudent(ctx, caller, req.GroupID, studentID)
	if err != nil {
		return nil, err
	}
	if student.EffectiveStatus() != model.StudentPending {
		return nil, ErrStudentNotPending
	}

	approved := *student
	approved.Active = true
	approved.Status = model.StudentActive
	approved.UpdatedAt = nowStamp()
	if req.StartDate != "" {
		approved.StartDate = req.StartDate
	} else if approved.StartDate == "" {
		approved.StartDate = time.Now().UTC().Format("2006-01-02")
	}

	if err := s.repo.Student.Append(ctx, spreadsheetID, &approved); err != nil {
		s.logger.Error("approving student failed",
			zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("student approved",
		zap.String("student_id", studentID),
		zap.String("group_id", req.GroupID),
		zap.String("by", caller.ID))

	resp := dto.NewStudentResponse(&approved)
	return &resp, nil
}

// Expel appends an inactive row with an enrollment end date. Attendance
// history before the end date is preserved for reports.
func (s *studentService) Expel(ctx context.Context, caller *dto.Caller, studentID string, req *dto.ExpelStudentRequest) (*dto.StudentResponse, error) {
	spreadsheetID, student, err := s.findStudent(ctx, caller, req.GroupID, studentID)
	if err != nil {
		return nil, err
	}
	if student.EffectiveStatus() == model.StudentInactive {
		return nil, ErrStudentInactive
	}

	expelled := *student
	expelled.Active = false
	expelled.Status = model.StudentInactive
	expelled.UpdatedAt = nowStamp()
	expelled.EndDate = req.EndDate
	if expelled.EndDate == "" {
		expelled.EndDate = time.Now().UTC().Format("2006-01-02")
	}

	if err := s.repo.Student.Append(ctx, spreadsheetID, &expelled); err != nil {
		s.logger.Error("expelling student failed",
			zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("student expelled",
		zap.String("student_id", studentID),
		zap.String("group_id", req.GroupID),
		zap.String("end_date", expelled.EndDate),
		zap.String("by", caller.ID))

	resp := dto.NewStudentResponse(&expelled)
	return &resp, nil
}

func (s *studentService) Roster(ctx context.Context, spreadsheetID, groupID string) ([]model.Student, error) {
	students, err := s.repo.Student.ListByGroup(ctx, spreadsheetID, groupID)
	if err != nil {
		s.logger.Error("reading roster failed",
			zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}
	sortStudents(students)
	return students, nil
}

// ── helpers ──

func (s *studentService) findStudent(ctx context.Context, caller *dto.Caller, groupID, studentID string) (string, *model.Student, error) {
	spreadsheetID, err := s.groups.ResolveSpreadsheet(ctx, caller, groupID)
	if err != nil {
		return "", nil, err
	}
	students, err := s.repo.Student.ListByGroup(ctx, spreadsheetID, groupID)
	if err != nil {
		return "", nil, err
	}
	for i := range students {
		if students[i].ID == studentID {
			return spreadsheetID, &students[i], nil
		}
	}
	return "", nil, ErrStudentNotFound
}

// sortStudents orders by last name then first name under Polish collation,
// so Ł, Ś and Ż land where the office expects them. A fresh collator per
// call: collate.Collator is not safe for concurrent use.
func sortStudents(students []model.Student) {
	col := collate.New(language.Polish)
	sort.Slice(students, func(i, j int) bool {
		if r := col.CompareString(students[i].LastName, students[j].LastName); r != 0 {
			return r < 0
		}
		if r := col.CompareString(students[i].FirstName, students[j].FirstName); r != 0 {
			return r < 0
		}
		return students[i].ID < students[j].ID
	})
}

// nowStamp is the canonical timestamp format of every sheet write. RFC3339
// UTC keeps lexicographic order equal to temporal order.
func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
