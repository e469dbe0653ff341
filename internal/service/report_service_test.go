package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
)

// ── test setup ──

func setupTestReportService() (ReportService, *testRepos) {
	repos := newTestRepos()
	repo := repos.toRepository()
	logger := zap.NewNop()
	groups := NewGroupService(testConfig(), repo, logger)
	students := NewStudentService(repo, groups, logger)
	svc := NewReportService(repo, groups, students, logger)
	return svc, repos
}

func seedSession(repos *testRepos, sheet, groupID, date string) string {
	id := model.SessionID(groupID, date)
	repos.classSessions.rows[sheet] = append(repos.classSessions.rows[sheet], model.ClassSession{
		SessionID: id,
		GroupID:   groupID,
		Date:      date,
		CreatedAt: date + "T10:00:00Z",
	})
	return id
}

func seedMark(repos *testRepos, sheet, sessionID, studentID, status, stamp string) {
	repos.attendance.rows[sheet] = append(repos.attendance.rows[sheet], model.AttendanceRecord{
		SessionID: sessionID,
		StudentID: studentID,
		Status:    status,
		UpdatedAt: stamp,
	})
}

// seedMarchFixture: one group, two students, three March sessions.
// s1: present, present, absent. s2: present, withdrawn, unmarked.
func seedMarchFixture(repos *testRepos) {
	seedGroup(repos.groups, "tti", "Taniec Towarzyski I", "")
	repos.students.rows["sheet-default"] = []model.Student{
		activeStudent("s1", "Anna", "Kowalska", "tti"),
		activeStudent("s2", "Jan", "Nowak", "tti"),
	}
	sess1 := seedSession(repos, "sheet-default", "tti", "2026-03-02")
	sess2 := seedSession(repos, "sheet-default", "tti", "2026-03-09")
	sess3 := seedSession(repos, "sheet-default", "tti", "2026-03-16")

	seedMark(repos, "sheet-default", sess1, "s1", model.AttendancePresent, "2026-03-02T18:00:00Z")
	seedMark(repos, "sheet-default", sess2, "s1", model.AttendancePresent, "2026-03-09T18:00:00Z")
	seedMark(repos, "sheet-default", sess3, "s1", model.AttendanceAbsent, "2026-03-16T18:00:00Z")

	seedMark(repos, "sheet-default", sess1, "s2", model.AttendancePresent, "2026-03-02T18:00:00Z")
	seedMark(repos, "sheet-default", sess2, "s2", model.AttendanceWithdrawn, "2026-03-09T18:00:00Z")
	// s2 unmarked on 2026-03-16: charged as absent.
}

func reportItemsByStudent(resp *dto.ReportResponse) map[string]dto.ReportItem {
	items := make(map[string]dto.ReportItem, len(resp.Items))
	for _, item := range resp.Items {
		items[item.StudentID] = item
	}
	return items
}

// ── Build ──

func TestReportService_Build_CountsAndRounding(t *testing.T) {
	svc, repos := setupTestReportService()
	seedMarchFixture(repos)

	resp, err := svc.Build(context.Background(), ownerCaller(), &dto.ReportQuery{})
	if err != nil {
		t.Fatalf("Build should succeed: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 report items, got %d", len(resp.Items))
	}
	items := reportItemsByStudent(resp)

	s1 := items["s1"]
	if s1.Present != 2 || s1.Absent != 1 || s1.Withdrawn != 0 || s1.TotalSessions != 3 {
		t.Errorf("s1 counts wrong: %+v", s1)
	}
	if s1.Percent != 67 {
		t.Errorf("2 of 3 should round half up to 67, got %d", s1.Percent)
	}

	s2 := items["s2"]
	if s2.Present != 1 || s2.Absent != 1 || s2.Withdrawn != 1 || s2.TotalSessions != 3 {
		t.Errorf("s2 counts wrong: %+v", s2)
	}
	if s2.Present+s2.Absent+s2.Withdrawn != s2.TotalSessions {
		t.Errorf("marks must add up to the total, got %+v", s2)
	}
	if s2.Percent != 33 {
		t.Errorf("1 of 3 should round to 33, got %d", s2.Percent)
	}
}

func TestReportService_Build_GroupStatsAndTotals(t *testing.T) {
	svc, repos := setupTestReportService()
	seedMarchFixture(repos)

	resp, err := svc.Build(context.Background(), ownerCaller(), &dto.ReportQuery{})
	if err != nil {
		t.Fatalf("Build should succeed: %v", err)
	}
	if len(resp.Groups) != 1 {
		t.Fatalf("expected 1 group stat, got %d", len(resp.Groups))
	}
	g := resp.Groups[0]
	if g.GroupID != "tti" || g.Sessions != 3 || g.Students != 2 {
		t.Errorf("group stats wrong: %+v", g)
	}
	// 3 attendances over 6 student-sessions.
	if g.AveragePercent != 50 {
		t.Errorf("expected group average 50, got %d", g.AveragePercent)
	}

	if resp.Totals.Groups != 1 || resp.Totals.Sessions != 3 || resp.Totals.Students != 2 {
		t.Errorf("report totals wrong: %+v", resp.Totals)
	}
	if resp.Totals.AveragePercent != 50 {
		t.Errorf("expected overall average 50, got %d", resp.Totals.AveragePercent)
	}
}

func TestReportService_Build_DateWindow(t *testing.T) {
	svc, repos := setupTestReportService()
	seedMarchFixture(repos)

	resp, err := svc.Build(context.Background(), ownerCaller(), &dto.ReportQuery{
		DateFrom: "2026-03-05",
		DateTo:   "2026-03-31",
	})
	if err != nil {
		t.Fatalf("Build should succeed: %v", err)
	}
	if resp.Groups[0].Sessions != 2 {
		t.Errorf("expected 2 sessions inside the window, got %d", resp.Groups[0].Sessions)
	}
	items := reportItemsByStudent(resp)
	s1 := items["s1"]
	if s1.Present != 1 || s1.Absent != 1 || s1.TotalSessions != 2 {
		t.Errorf("s1 window counts wrong: %+v", s1)
	}
	if s1.Percent != 50 {
		t.Errorf("expected 50%% inside the window, got %d", s1.Percent)
	}
	if resp.DateFrom != "2026-03-05" || resp.DateTo != "2026-03-31" {
		t.Errorf("response should echo the window, got %s..%s", resp.DateFrom, resp.DateTo)
	}
}

func TestReportService_Build_UnmarkedChargedOnlyInsideEnrollment(t *testing.T) {
	svc, repos := setupTestReportService()
	seedGroup(repos.groups, "tti", "Taniec Towarzyski I", "")
	late := activeStudent("s3", "Ewa", "Lis", "tti")
	late.StartDate = "2026-03-10"
	repos.students.rows["sheet-default"] = []model.Student{late}

	seedSession(repos, "sheet-default", "tti", "2026-03-02")
	seedSession(repos, "sheet-default", "tti", "2026-03-09")
	seedSession(repos, "sheet-default", "tti", "2026-03-16")

	resp, err := svc.Build(context.Background(), ownerCaller(), &dto.ReportQuery{})
	if err != nil {
		t.Fatalf("Build should succeed: %v", err)
	}
	items := reportItemsByStudent(resp)
	s3 := items["s3"]
	// Only the session after joining counts against the student.
	if s3.TotalSessions != 1 || s3.Absent != 1 {
		t.Errorf("pre-enrollment sessions must not be charged: %+v", s3)
	}
}

func TestReportService_Build_LatestRowWins(t *testing.T) {
	svc, repos := setupTestReportService()
	seedGroup(repos.groups, "tti", "Taniec Towarzyski I", "")
	repos.students.rows["sheet-default"] = []model.Student{
		activeStudent("s1", "Anna", "Kowalska", "tti"),
	}
	sess := seedSession(repos, "sheet-default", "tti", "2026-03-02")
	seedMark(repos, "sheet-default", sess, "s1", model.AttendanceAbsent, "2026-03-02T18:00:00Z")
	seedMark(repos, "sheet-default", sess, "s1", model.AttendancePresent, "2026-03-02T18:05:00Z")

	resp, err := svc.Build(context.Background(), ownerCaller(), &dto.ReportQuery{})
	if err != nil {
		t.Fatalf("Build should succeed: %v", err)
	}
	items := reportItemsByStudent(resp)
	if items["s1"].Present != 1 || items["s1"].Absent != 0 {
		t.Errorf("the corrected row must win: %+v", items["s1"])
	}
}

func TestReportService_Build_StatusFilter(t *testing.T) {
	svc, repos := setupTestReportService()
	seedGroup(repos.groups, "tti", "Taniec Towarzyski I", "")
	expelled := model.Student{
		ID: "s9", FirstName: "Piotr", LastName: "Zieliński", GroupID: "tti",
		Active: false, Status: model.StudentInactive,
		StartDate: "2026-01-01", EndDate: "2026-03-10",
		UpdatedAt: "2026-03-10T10:00:00Z",
	}
	repos.students.rows["sheet-default"] = []model.Student{
		activeStudent("s1", "Anna", "Kowalska", "tti"),
		expelled,
	}
	sess1 := seedSession(repos, "sheet-default", "tti", "2026-03-02")
	seedSession(repos, "sheet-default", "tti", "2026-03-16")
	seedMark(repos, "sheet-default", sess1, "s9", model.AttendancePresent, "2026-03-02T18:00:00Z")

	ctx := context.Background()

	// Default keeps active students only.
	resp, err := svc.Build(ctx, ownerCaller(), &dto.ReportQuery{})
	if err != nil {
		t.Fatalf("Build should succeed: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].StudentID != "s1" {
		t.Errorf("default filter should keep active students only, got %+v", resp.Items)
	}

	// "all" keeps the expelled student, with history intact.
	resp, err = svc.Build(ctx, ownerCaller(), &dto.ReportQuery{Status: "all"})
	if err != nil {
		t.Fatalf("Build should succeed: %v", err)
	}
	items := reportItemsByStudent(resp)
	s9, ok := items["s9"]
	if !ok {
		t.Fatal("status=all should include the expelled student")
	}
	if s9.Status != model.StudentInactive {
		t.Errorf("expected inactive status, got %s", s9.Status)
	}
	// Marked on 03-02; 03-16 is past the end date, so not charged.
	if s9.Present != 1 || s9.TotalSessions != 1 {
		t.Errorf("history before expulsion must be preserved: %+v", s9)
	}
}

func TestReportService_Build_InstructorForeignGroupDenied(t *testing.T) {
	svc, repos := setupTestReportService()
	seedMarchFixture(repos)

	_, err := svc.Build(context.Background(), instructorCaller("hiphop"), &dto.ReportQuery{GroupIDs: "tti"})
	if !errors.Is(err, ErrGroupAccessDenied) {
		t.Errorf("expected ErrGroupAccessDenied, got %v", err)
	}
}

func TestReportService_Build_DeactivatedGroupStillReportable(t *testing.T) {
	svc, repos := setupTestReportService()
	seedMarchFixture(repos)
	repos.groups.groups["tti"].IsActive = false

	// Not named: the deactivated group disappears from the blanket report.
	resp, err := svc.Build(context.Background(), ownerCaller(), &dto.ReportQuery{})
	if err != nil {
		t.Fatalf("Build should succeed: %v", err)
	}
	if len(resp.Groups) != 0 {
		t.Errorf("deactivated groups are not part of the blanket report, got %d", len(resp.Groups))
	}

	// Named explicitly: its history stays reachable.
	resp, err = svc.Build(context.Background(), ownerCaller(), &dto.ReportQuery{GroupIDs: "tti"})
	if err != nil {
		t.Fatalf("Build should succeed for a named deactivated group: %v", err)
	}
	if len(resp.Groups) != 1 || resp.Groups[0].Sessions != 3 {
		t.Errorf("expected the full history of the named group, got %+v", resp.Groups)
	}
}

func TestReportService_Build_SortsByPolishCollation(t *testing.T) {
	svc, repos := setupTestReportService()
	seedGroup(repos.groups, "tti", "Taniec Towarzyski I", "")
	repos.students.rows["sheet-default"] = []model.Student{
		activeStudent("s1", "Anna", "Mazur", "tti"),
		activeStudent("s2", "Ewa", "Łoś", "tti"),
		activeStudent("s3", "Jan", "Lis", "tti"),
	}

	resp, err := svc.Build(context.Background(), ownerCaller(), &dto.ReportQuery{})
	if err != nil {
		t.Fatalf("Build should succeed: %v", err)
	}
	if len(resp.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(resp.Items))
	}
	got := []string{resp.Items[0].LastName, resp.Items[1].LastName, resp.Items[2].LastName}
	want := []string{"Lis", "Łoś", "Mazur"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected Polish order %v, got %v", want, got)
		}
	}
}
