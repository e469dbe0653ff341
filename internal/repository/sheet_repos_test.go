package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
	apperr "github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/pkg/errors"
)

// ── test helpers ──

// fakeSheetClient serves canned worksheet rows keyed by range and records
// what gets appended.
type fakeSheetClient struct {
	ranges      map[string][][]string
	readErr     error
	appends     map[string][][]string
	appendCalls int
	appendErr   error
}

func newFakeSheetClient() *fakeSheetClient {
	return &fakeSheetClient{
		ranges:  make(map[string][][]string),
		appends: make(map[string][][]string),
	}
}

func (f *fakeSheetClient) ReadRange(_ context.Context, _ string, rng string) ([][]string, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.ranges[rng], nil
}

func (f *fakeSheetClient) AppendRows(_ context.Context, _ string, rng string, rows [][]string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appendCalls++
	f.appends[rng] = append(f.appends[rng], rows...)
	return nil
}

// ── StudentRepository tests ──

func TestStudentRepo_List_HeaderDrivenMapping(t *testing.T) {
	sc := newFakeSheetClient()
	// Columns deliberately out of the canonical order; class/phone/email
	// columns absent entirely.
	sc.ranges["Students!A1:L"] = [][]string{
		{"last_name", "ID", "group_id", "first_name", "Active", "status", "updated_at"},
		{"Kowalska", "s1", "tti", "Anna", "true", "active", "2026-01-10T10:00:00Z"},
	}
	repo := NewStudentRepo(sc)

	students, err := repo.List(context.Background(), "sheet-1")
	if err != nil {
		t.Fatalf("List should succeed: %v", err)
	}
	if len(students) != 1 {
		t.Fatalf("expected 1 student, got %d", len(students))
	}
	s := students[0]
	if s.ID != "s1" || s.FirstName != "Anna" || s.LastName != "Kowalska" || s.GroupID != "tti" {
		t.Errorf("column mapping broken: %+v", s)
	}
	if !s.Active || s.Status != "active" || s.UpdatedAt != "2026-01-10T10:00:00Z" {
		t.Errorf("unexpected parsed fields: %+v", s)
	}
	if s.Class != "" || s.Email != "" {
		t.Errorf("absent columns should read empty, got %+v", s)
	}
}

func TestStudentRepo_List_LastRowPerStudentWins(t *testing.T) {
	sc := newFakeSheetClient()
	sc.ranges["Students!A1:L"] = [][]string{
		{"id", "first_name", "last_name", "group_id", "active", "status"},
		{"s1", "Anna", "Kowalska", "tti", "true", "active"},
		{"s2", "Jan", "Nowak", "tti", "true", "active"},
		{"s1", "Anna", "Kowalska-Lis", "tti", "true", "active"}, // rename appended later
	}
	repo := NewStudentRepo(sc)

	students, err := repo.List(context.Background(), "sheet-1")
	if err != nil {
		t.Fatalf("List should succeed: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("expected 2 resolved students, got %d", len(students))
	}
	// First-seen order is preserved even though s1's winning row is last.
	if students[0].ID != "s1" || students[0].LastName != "Kowalska-Lis" {
		t.Errorf("expected s1 resolved to latest row first, got %+v", students[0])
	}
	if students[1].ID != "s2" {
		t.Errorf("expected s2 second, got %+v", students[1])
	}
}

func TestStudentRepo_List_DropsInvalidAndRaggedRows(t *testing.T) {
	sc := newFakeSheetClient()
	sc.ranges["Students!A1:L"] = [][]string{
		{"id", "first_name", "last_name", "group_id", "active"},
		{"s1", "Anna", "Kowalska", "tti", "true"},
		{"s2", "", "Nowak", "tti", "true"}, // missing first name
		{"", "Jan", "Ptak", "tti", "true"}, // missing id
		{"s3", "Ola"},                      // ragged row, trailing cells absent
	}
	repo := NewStudentRepo(sc)

	students, err := repo.List(context.Background(), "sheet-1")
	if err != nil {
		t.Fatalf("List should succeed: %v", err)
	}
	if len(students) != 1 || students[0].ID != "s1" {
		t.Errorf("expected only s1 to survive, got %+v", students)
	}
}

func TestStudentRepo_List_HeaderOnlySheet(t *testing.T) {
	sc := newFakeSheetClient()
	sc.ranges["Students!A1:L"] = [][]string{
		{"id", "first_name", "last_name", "group_id"},
	}
	repo := NewStudentRepo(sc)

	students, err := repo.List(context.Background(), "sheet-1")
	if err != nil {
		t.Fatalf("List should succeed: %v", err)
	}
	if len(students) != 0 {
		t.Errorf("expected no students, got %d", len(students))
	}
}

func TestStudentRepo_List_PolishBooleanSpelling(t *testing.T) {
	sc := newFakeSheetClient()
	sc.ranges["Students!A1:L"] = [][]string{
		{"id", "first_name", "last_name", "group_id", "active"},
		{"s1", "Anna", "Kowalska", "tti", "Tak"},
		{"s2", "Jan", "Nowak", "tti", "0"},
	}
	repo := NewStudentRepo(sc)

	students, err := repo.List(context.Background(), "sheet-1")
	if err != nil {
		t.Fatalf("List should succeed: %v", err)
	}
	if !students[0].Active {
		t.Error(`"Tak" should parse as active`)
	}
	if students[1].Active {
		t.Error(`"0" should parse as inactive`)
	}
}

func TestStudentRepo_ListByGroup(t *testing.T) {
	sc := newFakeSheetClient()
	sc.ranges["Students!A1:L"] = [][]string{
		{"id", "first_name", "last_name", "group_id", "active"},
		{"s1", "Anna", "Kowalska", "tti", "true"},
		{"s2", "Jan", "Nowak", "hiphop", "true"},
	}
	repo := NewStudentRepo(sc)

	students, err := repo.ListByGroup(context.Background(), "sheet-1", "tti")
	if err != nil {
		t.Fatalf("ListByGroup should succeed: %v", err)
	}
	if len(students) != 1 || students[0].ID != "s1" {
		t.Errorf("expected only the tti student, got %+v", students)
	}
}

func TestStudentRepo_Append_RowShape(t *testing.T) {
	sc := newFakeSheetClient()
	repo := NewStudentRepo(sc)

	err := repo.Append(context.Background(), "sheet-1", &model.Student{
		ID:        "s1",
		FirstName: "Anna",
		LastName:  "Kowalska",
		GroupID:   "tti",
		Active:    true,
		Status:    model.StudentActive,
		StartDate: "2026-01-10",
		UpdatedAt: "2026-01-10T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("Append should succeed: %v", err)
	}

	rows := sc.appends["Students!A1:L"]
	if len(rows) != 1 {
		t.Fatalf("expected 1 appended row, got %d", len(rows))
	}
	row := rows[0]
	if len(row) != 12 {
		t.Fatalf("expected 12 cells matching the worksheet header, got %d", len(row))
	}
	if row[0] != "s1" || row[4] != "true" || row[8] != "active" || row[11] != "2026-01-10T10:00:00Z" {
		t.Errorf("unexpected row shape: %v", row)
	}
}

func TestStudentRepo_List_WrapsUpstreamError(t *testing.T) {
	sc := newFakeSheetClient()
	sc.readErr = errors.New("googleapi: Error 403: caller does not have permission")
	repo := NewStudentRepo(sc)

	_, err := repo.List(context.Background(), "sheet-1")
	if err == nil {
		t.Fatal("expected an error")
	}
	ue, ok := apperr.AsUpstream(err)
	if !ok {
		t.Fatalf("expected an upstream error, got %v", err)
	}
	if ue.Hint == "" {
		t.Error("upstream error should carry the sharing hint")
	}
}

// ── ClassSessionRepository tests ──

func seedSessionsSheet(sc *fakeSheetClient) {
	sc.ranges["Sessions!A1:D"] = [][]string{
		{"session_id", "group_id", "date", "created_at"},
		{"SESS-2026-03-02-TTI", "tti", "2026-03-02", "2026-03-02T18:00:00Z"},
		{"SESS-2026-03-09-TTI", "tti", "2026-03-09", "2026-03-09T18:00:00Z"},
		{"SESS-2026-03-02-HIPHOP", "hiphop", "2026-03-02", "2026-03-02T17:00:00Z"},
		{"", "tti", "2026-03-16", "2026-03-16T18:00:00Z"}, // no id, dropped
	}
}

func TestClassSessionRepo_Find(t *testing.T) {
	sc := newFakeSheetClient()
	seedSessionsSheet(sc)
	repo := NewClassSessionRepo(sc)

	sess, err := repo.Find(context.Background(), "sheet-1", "tti", "2026-03-02")
	if err != nil {
		t.Fatalf("Find should succeed: %v", err)
	}
	if sess == nil || sess.SessionID != "SESS-2026-03-02-TTI" {
		t.Errorf("expected the tti session for 2026-03-02, got %+v", sess)
	}
}

func TestClassSessionRepo_Find_NoMatch(t *testing.T) {
	sc := newFakeSheetClient()
	seedSessionsSheet(sc)
	repo := NewClassSessionRepo(sc)

	sess, err := repo.Find(context.Background(), "sheet-1", "tti", "2026-03-23")
	if err != nil {
		t.Fatalf("a missing session is not an error: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil for an untaken date, got %+v", sess)
	}
}

func TestClassSessionRepo_ListByGroup(t *testing.T) {
	sc := newFakeSheetClient()
	seedSessionsSheet(sc)
	repo := NewClassSessionRepo(sc)

	sessions, err := repo.ListByGroup(context.Background(), "sheet-1", "tti")
	if err != nil {
		t.Fatalf("ListByGroup should succeed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 tti sessions (idless row dropped), got %d", len(sessions))
	}
	for _, s := range sessions {
		if s.GroupID != "tti" {
			t.Errorf("foreign group leaked into the result: %+v", s)
		}
	}
}

func TestClassSessionRepo_Append_RowShape(t *testing.T) {
	sc := newFakeSheetClient()
	repo := NewClassSessionRepo(sc)

	err := repo.Append(context.Background(), "sheet-1", &model.ClassSession{
		SessionID: "SESS-2026-03-02-TTI",
		GroupID:   "tti",
		Date:      "2026-03-02",
		CreatedAt: "2026-03-02T18:00:00Z",
	})
	if err != nil {
		t.Fatalf("Append should succeed: %v", err)
	}

	rows := sc.appends["Sessions!A1:D"]
	if len(rows) != 1 || len(rows[0]) != 4 {
		t.Fatalf("expected one 4-cell row, got %v", rows)
	}
	if rows[0][0] != "SESS-2026-03-02-TTI" || rows[0][2] != "2026-03-02" {
		t.Errorf("unexpected row shape: %v", rows[0])
	}
}

// ── AttendanceRepository tests ──

func seedAttendanceSheet(sc *fakeSheetClient) {
	sc.ranges["Attendance!A1:E"] = [][]string{
		{"session_id", "student_id", "status", "updated_at", "note"},
		{"SESS-2026-03-02-TTI", "s1", "absent", "2026-03-02T18:00:00Z", ""},
		{"SESS-2026-03-02-TTI", "s1", "present", "2026-03-02T18:05:00Z", "poprawka"},
		{"SESS-2026-03-09-TTI", "s1", "present", "2026-03-09T18:00:00Z", ""},
		{"", "s1", "present", "2026-03-09T18:00:00Z", ""}, // no session, dropped
	}
}

func TestAttendanceRepo_List_KeepsRawLog(t *testing.T) {
	sc := newFakeSheetClient()
	seedAttendanceSheet(sc)
	repo := NewAttendanceRepo(sc)

	records, err := repo.List(context.Background(), "sheet-1")
	if err != nil {
		t.Fatalf("List should succeed: %v", err)
	}
	// Both rows for (session, s1) survive; resolution is the caller's job.
	if len(records) != 3 {
		t.Fatalf("expected 3 raw records, got %d", len(records))
	}
	if records[0].Status != "absent" || records[1].Status != "present" {
		t.Errorf("log order must be preserved: %+v", records[:2])
	}
	if records[1].Note != "poprawka" {
		t.Errorf("note column lost: %+v", records[1])
	}
}

func TestAttendanceRepo_ListBySession(t *testing.T) {
	sc := newFakeSheetClient()
	seedAttendanceSheet(sc)
	repo := NewAttendanceRepo(sc)

	records, err := repo.ListBySession(context.Background(), "sheet-1", "SESS-2026-03-02-TTI")
	if err != nil {
		t.Fatalf("ListBySession should succeed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records for the session, got %d", len(records))
	}
	for _, rec := range records {
		if rec.SessionID != "SESS-2026-03-02-TTI" {
			t.Errorf("foreign session leaked into the result: %+v", rec)
		}
	}
}

func TestAttendanceRepo_Append_BatchInOneCall(t *testing.T) {
	sc := newFakeSheetClient()
	repo := NewAttendanceRepo(sc)

	err := repo.Append(context.Background(), "sheet-1", []model.AttendanceRecord{
		{SessionID: "SESS-2026-03-02-TTI", StudentID: "s1", Status: "present", UpdatedAt: "2026-03-02T18:00:00Z"},
		{SessionID: "SESS-2026-03-02-TTI", StudentID: "s2", Status: "absent", UpdatedAt: "2026-03-02T18:00:00Z", Note: "zwolnienie"},
	})
	if err != nil {
		t.Fatalf("Append should succeed: %v", err)
	}

	if sc.appendCalls != 1 {
		t.Errorf("a batch save must be one API call, got %d", sc.appendCalls)
	}
	rows := sc.appends["Attendance!A1:E"]
	if len(rows) != 2 {
		t.Fatalf("expected 2 appended rows, got %d", len(rows))
	}
	if len(rows[0]) != 5 || rows[1][4] != "zwolnienie" {
		t.Errorf("unexpected row shape: %v", rows)
	}
}

func TestAttendanceRepo_Append_EmptyBatchSkipsAPI(t *testing.T) {
	sc := newFakeSheetClient()
	repo := NewAttendanceRepo(sc)

	if err := repo.Append(context.Background(), "sheet-1", nil); err != nil {
		t.Fatalf("empty append should succeed: %v", err)
	}
	if sc.appendCalls != 0 {
		t.Errorf("empty batch must not hit the API, got %d calls", sc.appendCalls)
	}
}

func TestAttendanceRepo_Append_WrapsUpstreamError(t *testing.T) {
	sc := newFakeSheetClient()
	sc.appendErr = errors.New("googleapi: Error 429: rate limit exceeded")
	repo := NewAttendanceRepo(sc)

	err := repo.Append(context.Background(), "sheet-1", []model.AttendanceRecord{
		{SessionID: "SESS-2026-03-02-TTI", StudentID: "s1", Status: "present"},
	})
	if _, ok := apperr.AsUpstream(err); !ok {
		t.Errorf("expected an upstream error, got %v", err)
	}
}
