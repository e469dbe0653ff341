package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/config"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/model"
	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/repository"
)

// ── Mock InstructorRepository ──

type mockInstructorRepo struct {
	instructors map[string]*model.Instructor
	idCounter   int
}

func newMockInstructorRepo() *mockInstructorRepo {
	return &mockInstructorRepo{instructors: make(map[string]*model.Instructor)}
}

func (m *mockInstructorRepo) Create(_ context.Context, inst *model.Instructor) error {
	for _, existing := range m.instructors {
		if existing.Username == inst.Username || existing.Email == inst.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if inst.ID == "" {
		m.idCounter++
		inst.ID = fmt.Sprintf("inst-%d", m.idCounter)
	}
	inst.CreatedAt = time.Now()
	inst.UpdatedAt = time.Now()
	m.instructors[inst.ID] = inst
	return nil
}

func (m *mockInstructorRepo) GetByID(_ context.Context, id string) (*model.Instructor, error) {
	if inst, ok := m.instructors[id]; ok {
		return inst, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInstructorRepo) GetByUsername(_ context.Context, username string) (*model.Instructor, error) {
	for _, inst := range m.instructors {
		if inst.Username == username {
			return inst, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInstructorRepo) GetByEmail(_ context.Context, email string) (*model.Instructor, error) {
	for _, inst := range m.instructors {
		if inst.Email == email {
			return inst, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInstructorRepo) List(_ context.Context) ([]model.Instructor, error) {
	var result []model.Instructor
	for _, inst := range m.instructors {
		result = append(result, *inst)
	}
	return result, nil
}

func (m *mockInstructorRepo) ListByStatus(_ context.Context, status string) ([]model.Instructor, error) {
	var result []model.Instructor
	for _, inst := range m.instructors {
		if inst.Status == status {
			result = append(result, *inst)
		}
	}
	return result, nil
}

func (m *mockInstructorRepo) Update(_ context.Context, inst *model.Instructor) error {
	if _, ok := m.instructors[inst.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	inst.UpdatedAt = time.Now()
	m.instructors[inst.ID] = inst
	return nil
}

func (m *mockInstructorRepo) ReplaceAssignments(_ context.Context, instructorID string, groupIDs []string) error {
	inst, ok := m.instructors[instructorID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	assignments := make([]model.GroupAssignment, 0, len(groupIDs))
	for _, gid := range groupIDs {
		assignments = append(assignments, model.GroupAssignment{
			InstructorID: instructorID,
			GroupID:      gid,
		})
	}
	inst.Assignments = assignments
	return nil
}

// ── Mock AuthSessionRepository ──

// mockAuthSessionRepo resolves the Instructor association on reads the way
// the gorm implementation preloads it.
type mockAuthSessionRepo struct {
	sessions    map[string]*model.AuthSession
	instructors *mockInstructorRepo
}

func newMockAuthSessionRepo(instructors *mockInstructorRepo) *mockAuthSessionRepo {
	return &mockAuthSessionRepo{
		sessions:    make(map[string]*model.AuthSession),
		instructors: instructors,
	}
}

func (m *mockAuthSessionRepo) Create(_ context.Context, sess *model.AuthSession) error {
	cp := *sess
	cp.CreatedAt = time.Now()
	m.sessions[sess.Token] = &cp
	return nil
}

func (m *mockAuthSessionRepo) GetByToken(_ context.Context, token string) (*model.AuthSession, error) {
	sess, ok := m.sessions[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sess
	if inst, ok := m.instructors.instructors[sess.InstructorID]; ok {
		cp.Instructor = inst
	}
	return &cp, nil
}

func (m *mockAuthSessionRepo) Delete(_ context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

func (m *mockAuthSessionRepo) ListTokensByInstructor(_ context.Context, instructorID string) ([]string, error) {
	var tokens []string
	for tok, sess := range m.sessions {
		if sess.InstructorID == instructorID {
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}

func (m *mockAuthSessionRepo) DeleteByInstructor(_ context.Context, instructorID string) error {
	for tok, sess := range m.sessions {
		if sess.InstructorID == instructorID {
			delete(m.sessions, tok)
		}
	}
	return nil
}

// ── Mock GroupConfigRepository ──

type mockGroupConfigRepo struct {
	groups map[string]*model.GroupConfig
}

func newMockGroupConfigRepo() *mockGroupConfigRepo {
	return &mockGroupConfigRepo{groups: make(map[string]*model.GroupConfig)}
}

func (m *mockGroupConfigRepo) Create(_ context.Context, group *model.GroupConfig) error {
	if _, exists := m.groups[group.GroupID]; exists {
		return gorm.ErrDuplicatedKey
	}
	group.CreatedAt = time.Now()
	group.UpdatedAt = time.Now()
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupConfigRepo) GetByID(_ context.Context, groupID string) (*model.GroupConfig, error) {
	if g, ok := m.groups[groupID]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupConfigRepo) List(_ context.Context) ([]model.GroupConfig, error) {
	var result []model.GroupConfig
	for _, g := range m.groups {
		if g.IsActive {
			result = append(result, *g)
		}
	}
	sortGroupsByName(result)
	return result, nil
}

func (m *mockGroupConfigRepo) ListAll(_ context.Context) ([]model.GroupConfig, error) {
	var result []model.GroupConfig
	for _, g := range m.groups {
		result = append(result, *g)
	}
	sortGroupsByName(result)
	return result, nil
}

func (m *mockGroupConfigRepo) Update(_ context.Context, group *model.GroupConfig) error {
	if _, ok := m.groups[group.GroupID]; !ok {
		return gorm.ErrRecordNotFound
	}
	group.UpdatedAt = time.Now()
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupConfigRepo) SetActive(_ context.Context, groupID string, active bool) error {
	g, ok := m.groups[groupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	g.IsActive = active
	g.UpdatedAt = time.Now()
	return nil
}

// sortGroupsByName mirrors the ORDER BY name of the real queries so tests
// see a deterministic order.
func sortGroupsByName(groups []model.GroupConfig) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Name != groups[j].Name {
			return groups[i].Name < groups[j].Name
		}
		return groups[i].GroupID < groups[j].GroupID
	})
}

// ── Mock StudentRepository ──

// mockStudentRepo keeps an append-only log per spreadsheet and resolves
// reads to the last row per student id, like the worksheet implementation.
type mockStudentRepo struct {
	rows map[string][]model.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{rows: make(map[string][]model.Student)}
}

func (m *mockStudentRepo) List(_ context.Context, spreadsheetID string) ([]model.Student, error) {
	log := m.rows[spreadsheetID]
	order := make([]string, 0, len(log))
	latest := make(map[string]model.Student, len(log))
	for _, s := range log {
		if _, seen := latest[s.ID]; !seen {
			order = append(order, s.ID)
		}
		latest[s.ID] = s
	}
	students := make([]model.Student, 0, len(order))
	for _, id := range order {
		students = append(students, latest[id])
	}
	return students, nil
}

func (m *mockStudentRepo) ListByGroup(_ context.Context, spreadsheetID, groupID string) ([]model.Student, error) {
	students, _ := m.List(context.Background(), spreadsheetID)
	var filtered []model.Student
	for _, s := range students {
		if s.GroupID == groupID {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

func (m *mockStudentRepo) Append(_ context.Context, spreadsheetID string, student *model.Student) error {
	m.rows[spreadsheetID] = append(m.rows[spreadsheetID], *student)
	return nil
}

// ── Mock ClassSessionRepository ──

type mockClassSessionRepo struct {
	rows map[string][]model.ClassSession
}

func newMockClassSessionRepo() *mockClassSessionRepo {
	return &mockClassSessionRepo{rows: make(map[string][]model.ClassSession)}
}

func (m *mockClassSessionRepo) Find(_ context.Context, spreadsheetID, groupID, date string) (*model.ClassSession, error) {
	for _, sess := range m.rows[spreadsheetID] {
		if sess.GroupID == groupID && sess.Date == date {
			cp := sess
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockClassSessionRepo) ListByGroup(_ context.Context, spreadsheetID, groupID string) ([]model.ClassSession, error) {
	var result []model.ClassSession
	for _, sess := range m.rows[spreadsheetID] {
		if sess.GroupID == groupID {
			result = append(result, sess)
		}
	}
	return result, nil
}

func (m *mockClassSessionRepo) Append(_ context.Context, spreadsheetID string, session *model.ClassSession) error {
	m.rows[spreadsheetID] = append(m.rows[spreadsheetID], *session)
	return nil
}

// ── Mock AttendanceRepository ──

// mockAttendanceRepo returns the raw append log; callers resolve the latest
// row per student, exactly like the worksheet implementation.
type mockAttendanceRepo struct {
	rows map[string][]model.AttendanceRecord
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{rows: make(map[string][]model.AttendanceRecord)}
}

func (m *mockAttendanceRepo) List(_ context.Context, spreadsheetID string) ([]model.AttendanceRecord, error) {
	return append([]model.AttendanceRecord(nil), m.rows[spreadsheetID]...), nil
}

func (m *mockAttendanceRepo) ListBySession(_ context.Context, spreadsheetID, sessionID string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, rec := range m.rows[spreadsheetID] {
		if rec.SessionID == sessionID {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) Append(_ context.Context, spreadsheetID string, records []model.AttendanceRecord) error {
	m.rows[spreadsheetID] = append(m.rows[spreadsheetID], records...)
	return nil
}

// ── test wiring ──

// testRepos aggregates the mocks so tests can seed them directly.
type testRepos struct {
	instructors   *mockInstructorRepo
	authSessions  *mockAuthSessionRepo
	groups        *mockGroupConfigRepo
	students      *mockStudentRepo
	classSessions *mockClassSessionRepo
	attendance    *mockAttendanceRepo
}

func newTestRepos() *testRepos {
	instructors := newMockInstructorRepo()
	return &testRepos{
		instructors:   instructors,
		authSessions:  newMockAuthSessionRepo(instructors),
		groups:        newMockGroupConfigRepo(),
		students:      newMockStudentRepo(),
		classSessions: newMockClassSessionRepo(),
		attendance:    newMockAttendanceRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		Instructor:   r.instructors,
		AuthSession:  r.authSessions,
		GroupConfig:  r.groups,
		Student:      r.students,
		ClassSession: r.classSessions,
		Attendance:   r.attendance,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{BaseURL: "http://localhost:5173"},
		Session: config.SessionConfig{
			Secret:     "0123456789abcdef0123456789abcdef",
			CookieName: "csm_session",
			TTL:        24 * time.Hour,
		},
		Google: config.GoogleConfig{SpreadsheetID: "sheet-default"},
	}
}

// ── shared seed helpers ──

func ownerCaller() *dto.Caller {
	return &dto.Caller{ID: "owner-1", Role: model.RoleOwner}
}

func instructorCaller(groupIDs ...string) *dto.Caller {
	return &dto.Caller{ID: "inst-1", Role: model.RoleInstructor, GroupIDs: groupIDs}
}

// seedGroup registers an active group. An empty spreadsheetID means the
// group lives in the default spreadsheet.
func seedGroup(groups *mockGroupConfigRepo, id, name, spreadsheetID string) {
	groups.groups[id] = &model.GroupConfig{
		GroupID:       id,
		Name:          name,
		SpreadsheetID: spreadsheetID,
		IsActive:      true,
	}
}

func activeStudent(id, firstName, lastName, groupID string) model.Student {
	return model.Student{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		GroupID:   groupID,
		Active:    true,
		Status:    model.StudentActive,
		UpdatedAt: "2026-01-10T10:00:00Z",
	}
}
