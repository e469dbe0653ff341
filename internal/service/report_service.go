package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/repository"
)

// ReportService aggregates the attendance history into per-student and
// per-group counts and percentages. Pure aggregation over the resolved
// latest-row state; a session a student never got marked in counts as
// absent, provided the session date falls inside their enrollment window.
type ReportService interface {
	Build(ctx context.Context, caller *dto.Caller, query *dto.ReportQuery) (*dto.ReportResponse, error)
}

type reportService struct {
	repo     *repository.Repository
	groups   GroupService
	students StudentService
	logger   *zap.Logger
}

// NewReportService creates a ReportService instance.
func NewReportService(repo *repository.Repository, groups GroupService, students StudentService, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, groups: groups, students: students, logger: logger}
}

func (s *reportService) Build(ctx context.Context, caller *dto.Caller, query *dto.ReportQuery) (*dto.ReportResponse, error) {
	groups, err := s.groups.GroupsForReport(ctx, caller, splitGroupIDs(query.GroupIDs))
	if err != nil {
		return nil, err
	}

	resp := &dto.ReportResponse{
		DateFrom: query.DateFrom,
		DateTo:   query.DateTo,
		Items:    []dto.ReportItem{},
		Groups:   []dto.GroupStats{},
	}

	for i := range groups {
		group := &groups[i]
		stats, items, err := s.buildGroup(ctx, group, query)
		if err != nil {
			return nil, err
		}
		resp.Items = append(resp.Items, items...)
		resp.Groups = append(resp.Groups, stats)
	}

	sortReportItems(resp.Items)

	var present, total int
	for _, item := range resp.Items {
		present += item.Present
		total += item.TotalSessions
	}
	for _, g := range resp.Groups {
		resp.Totals.Sessions += g.Sessions
	}
	resp.Totals.Groups = len(resp.Groups)
	resp.Totals.Students = len(resp.Items)
	resp.Totals.AveragePercent = percent(present, total)

	return resp, nil
}

// buildGroup aggregates one group: its sessions inside the date window,
// the latest record per (session, student), and the resulting counts per
// student filtered by the requested lifecycle status.
func (s *reportService) buildGroup(ctx context.Context, group *model.GroupConfig, query *dto.ReportQuery) (dto.GroupStats, []dto.ReportItem, error) {
	stats := dto.GroupStats{GroupID: group.GroupID, GroupName: group.Name}
	spreadsheetID := s.groups.SpreadsheetFor(group)

	sessions, err := s.repo.ClassSession.ListByGroup(ctx, spreadsheetID, group.GroupID)
	if err != nil {
		return stats, nil, err
	}

	// Racing find-or-create calls can leave duplicate rows; the id is
	// deterministic, so keying by id collapses them to one session.
	sessionDates := make(map[string]string)
	for _, sess := range sessions {
		if !dateInRange(sess.Date, query.DateFrom, query.DateTo) {
			continue
		}
		sessionDates[sess.SessionID] = sess.Date
	}
	stats.Sessions = len(sessionDates)

	roster, err := s.students.Roster(ctx, spreadsheetID, group.GroupID)
	if err != nil {
		return stats, nil, err
	}

	records, err := s.repo.Attendance.List(ctx, spreadsheetID)
	if err != nil {
		return stats, nil, err
	}

	// session id → student id → winning record
	state := make(map[string]map[string]model.AttendanceRecord, len(sessionDates))
	for _, rec := range records {
		if _, wanted := sessionDates[rec.SessionID]; !wanted {
			continue
		}
		perStudent := state[rec.SessionID]
		if perStudent == nil {
			perStudent = make(map[string]model.AttendanceRecord)
			state[rec.SessionID] = perStudent
		}
		if cur, ok := perStudent[rec.StudentID]; !ok || rec.UpdatedAt > cur.UpdatedAt {
			perStudent[rec.StudentID] = rec
		}
	}

	items := make([]dto.ReportItem, 0, len(roster))
	var groupPresent, groupTotal int
	for i := range roster {
		st := &roster[i]
		if !matchesStatusFilter(st, query.Status) {
			continue
		}

		item := dto.ReportItem{
			StudentID: st.ID,
			FirstName: st.FirstName,
			LastName:  st.LastName,
			GroupID:   group.GroupID,
			GroupName: group.Name,
			Status:    st.EffectiveStatus(),
		}

		for sessionID, date := range sessionDates {
			if rec, ok := state[sessionID][st.ID]; ok {
				switch rec.Status {
				case model.AttendancePresent:
					item.Present++
				case model.AttendanceWithdrawn:
					item.Withdrawn++
				default:
					item.Absent++
				}
				item.TotalSessions++
				continue
			}
			// Unmarked: charged as absent only inside the enrollment
			// window, so sessions before joining do not drag the
			// percentage down.
			if st.EnrollmentCovers(date) {
				item.Absent++
				item.TotalSessions++
			}
		}

		item.Percent = percent(item.Present, item.TotalSessions)
		groupPresent += item.Present
		groupTotal += item.TotalSessions
		items = append(items, item)
	}

	stats.Students = len(items)
	stats.AveragePercent = percent(groupPresent, groupTotal)
	return stats, items, nil
}

// ── helpers ──

func splitGroupIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// dateInRange compares ISO dates as strings; same format, so string order
// is date order.
func dateInRange(date, from, to string) bool {
	if date == "" {
		return false
	}
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

// matchesStatusFilter applies the report's student filter: empty keeps
// active students, "all" keeps everyone, anything else matches the
// lifecycle status exactly.
func matchesStatusFilter(st *model.Student, filter string) bool {
	switch filter {
	case "":
		return st.EffectiveStatus() == model.StudentActive
	case "all":
		return true
	default:
		return st.EffectiveStatus() == filter
	}
}

func percent(present, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(present) / float64(total)))
}

func sortReportItems(items []dto.ReportItem) {
	col := collate.New(language.Polish)
	sort.Slice(items, func(i, j int) bool {
		if items[i].GroupID != items[j].GroupID {
			if r := col.CompareString(items[i].GroupName, items[j].GroupName); r != 0 {
				return r < 0
			}
			return items[i].GroupID < items[j].GroupID
		}
		if r := col.CompareString(items[i].LastName, items[j].LastName); r != 0 {
			return r < 0
		}
		if r := col.CompareString(items[i].FirstName, items[j].FirstName); r != 0 {
			return r < 0
		}
		return items[i].StudentID < items[j].StudentID
	})
}
