package services

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/repositories"
)

// In-memory Repository used across service tests.

type mockRepository struct {
	user     *mockUserRepo
	school   *mockSchoolRepo
	schedule *mockScheduleRepo
	blocking *mockBlockingRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		user:     &mockUserRepo{users: map[uint]*models.User{}, students: map[uint]*models.StudentProfile{}, teachers: map[uint]*models.TeacherProfile{}, admins: map[uint]*models.AdminProfile{}},
		school:   &mockSchoolRepo{schools: map[uint]*models.School{}},
		schedule: &mockScheduleRepo{},
		blocking: &mockBlockingRepo{},
	}
}

func (m *mockRepository) User() repositories.UserRepository         { return m.user }
func (m *mockRepository) School() repositories.SchoolRepository     { return m.school }
func (m *mockRepository) Schedule() repositories.ScheduleRepository { return m.schedule }
func (m *mockRepository) Blocking() repositories.BlockingRepository { return m.blocking }
func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(_ context.Context) error { return nil }
func (m *mockRepository) Close() error                 { return nil }

// ===== USERS =====

type mockUserRepo struct {
	users    map[uint]*models.User
	students map[uint]*models.StudentProfile
	teachers map[uint]*models.TeacherProfile
	admins   map[uint]*models.AdminProfile
	nextID   uint
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.PhoneNumber == user.PhoneNumber && u.Role == user.Role {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.users[user.ID] = user

	if user.StudentProfile != nil {
		user.StudentProfile.UserID = user.ID
		m.students[user.ID] = user.StudentProfile
	}
	if user.TeacherProfile != nil {
		user.TeacherProfile.UserID = user.ID
		m.teachers[user.ID] = user.TeacherProfile
	}
	if user.AdminProfile != nil {
		user.AdminProfile.UserID = user.ID
		m.admins[user.ID] = user.AdminProfile
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByIDWithProfile(ctx context.Context, id uint) (*models.User, error) {
	u, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.StudentProfile = m.students[id]
	u.TeacherProfile = m.teachers[id]
	u.AdminProfile = m.admins[id]
	return u, nil
}

func (m *mockUserRepo) GetByPhoneAndRole(_ context.Context, phone string, role models.UserRole) (*models.User, error) {
	for _, u := range m.users {
		if u.PhoneNumber == phone && u.Role == role {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uint) error {
	delete(m.users, id)
	delete(m.students, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, _ repositories.UserFilters) ([]*models.User, int64, error) {
	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) GetStudentProfile(_ context.Context, userID uint) (*models.StudentProfile, error) {
	p, ok := m.students[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (m *mockUserRepo) GetTeacherProfile(_ context.Context, userID uint) (*models.TeacherProfile, error) {
	p, ok := m.teachers[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (m *mockUserRepo) GetAdminProfile(_ context.Context, userID uint) (*models.AdminProfile, error) {
	p, ok := m.admins[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (m *mockUserRepo) UpdateStudentProfile(_ context.Context, profile *models.StudentProfile) error {
	m.students[profile.UserID] = profile
	return nil
}

func (m *mockUserRepo) UpdateTeacherProfile(_ context.Context, profile *models.TeacherProfile) error {
	m.teachers[profile.UserID] = profile
	return nil
}

func (m *mockUserRepo) UpdateAdminProfile(_ context.Context, profile *models.AdminProfile) error {
	m.admins[profile.UserID] = profile
	return nil
}

func (m *mockUserRepo) ListStudentsBySchool(_ context.Context, schoolID uint) ([]*models.StudentProfile, error) {
	var out []*models.StudentProfile
	for _, p := range m.students {
		if p.SchoolID != nil && *p.SchoolID == schoolID {
			p.User = m.users[p.UserID]
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *mockUserRepo) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	for _, u := range m.users {
		if u.PhoneNumber == phone {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) ExistsByPhoneAndRole(_ context.Context, phone string, role models.UserRole) (bool, error) {
	for _, u := range m.users {
		if u.PhoneNumber == phone && u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

// ===== SCHOOLS =====

type mockSchoolRepo struct {
	schools map[uint]*models.School
	nextID  uint
}

func (m *mockSchoolRepo) Create(_ context.Context, school *models.School) error {
	m.nextID++
	school.ID = m.nextID
	m.schools[school.ID] = school
	return nil
}

func (m *mockSchoolRepo) GetByID(_ context.Context, id uint) (*models.School, error) {
	s, ok := m.schools[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (m *mockSchoolRepo) Update(_ context.Context, school *models.School) error {
	m.schools[school.ID] = school
	return nil
}

func (m *mockSchoolRepo) Delete(_ context.Context, id uint) error {
	delete(m.schools, id)
	return nil
}

func (m *mockSchoolRepo) List(_ context.Context, _ repositories.SchoolFilters) ([]*models.School, int64, error) {
	out := make([]*models.School, 0, len(m.schools))
	for _, s := range m.schools {
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (m *mockSchoolRepo) ExistsByID(_ context.Context, id uint) (bool, error) {
	_, ok := m.schools[id]
	return ok, nil
}

// ===== SCHEDULES =====

type mockScheduleRepo struct {
	windows  []*models.ScheduleWindow
	closures []*models.ScheduleClosure
	nextID   uint
}

func (m *mockScheduleRepo) ReplaceWindows(_ context.Context, schoolID uint, windows []*models.ScheduleWindow) error {
	kept := m.windows[:0]
	for _, w := range m.windows {
		if w.SchoolID != schoolID {
			kept = append(kept, w)
		}
	}
	m.windows = append(kept, windows...)
	return nil
}

func (m *mockScheduleRepo) ListWindows(_ context.Context, schoolID uint) ([]*models.ScheduleWindow, error) {
	var out []*models.ScheduleWindow
	for _, w := range m.windows {
		if w.SchoolID == schoolID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockScheduleRepo) ListWindowsByWeekday(_ context.Context, schoolID uint, weekday int) ([]*models.ScheduleWindow, error) {
	var out []*models.ScheduleWindow
	for _, w := range m.windows {
		if w.SchoolID == schoolID && w.Weekday == weekday {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockScheduleRepo) CreateClosure(_ context.Context, closure *models.ScheduleClosure) error {
	m.nextID++
	closure.ID = m.nextID
	m.closures = append(m.closures, closure)
	return nil
}

func (m *mockScheduleRepo) DeleteClosure(_ context.Context, id uint) error {
	for i, c := range m.closures {
		if c.ID == id {
			m.closures = append(m.closures[:i], m.closures[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) ListClosures(_ context.Context, schoolID uint, year int, month time.Month) ([]*models.ScheduleClosure, error) {
	var out []*models.ScheduleClosure
	for _, c := range m.closures {
		if c.SchoolID == schoolID && c.Date.Year() == year && c.Date.Month() == month {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockScheduleRepo) GetClosureOn(_ context.Context, schoolID uint, date time.Time) (*models.ScheduleClosure, error) {
	for _, c := range m.closures {
		if c.SchoolID == schoolID &&
			c.Date.Year() == date.Year() && c.Date.YearDay() == date.YearDay() {
			return c, nil
		}
	}
	return nil, nil
}

// ===== BLOCKING =====

type mockBlockingRepo struct {
	rules      []*models.BlockingRule
	exceptions []*models.EmergencyException
	logs       []*models.ExceptionLog
	nextID     uint
}

func (m *mockBlockingRepo) CreateRule(_ context.Context, rule *models.BlockingRule) error {
	for _, r := range m.rules {
		if r.SchoolID == rule.SchoolID && r.PackageName == rule.PackageName {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	rule.ID = m.nextID
	m.rules = append(m.rules, rule)
	return nil
}

func (m *mockBlockingRepo) GetRuleByID(_ context.Context, id uint) (*models.BlockingRule, error) {
	for _, r := range m.rules {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBlockingRepo) UpdateRule(_ context.Context, rule *models.BlockingRule) error {
	for i, r := range m.rules {
		if r.ID == rule.ID {
			m.rules[i] = rule
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockBlockingRepo) DeleteRule(_ context.Context, id uint) error {
	for i, r := range m.rules {
		if r.ID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockBlockingRepo) ListRulesBySchool(_ context.Context, schoolID uint) ([]*models.BlockingRule, error) {
	var out []*models.BlockingRule
	for _, r := range m.rules {
		if r.SchoolID == schoolID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockBlockingRepo) RuleExists(_ context.Context, schoolID uint, packageName string) (bool, error) {
	for _, r := range m.rules {
		if r.SchoolID == schoolID && r.PackageName == packageName {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBlockingRepo) CreateException(_ context.Context, exc *models.EmergencyException) error {
	m.nextID++
	exc.ID = m.nextID
	if exc.CreatedAt.IsZero() {
		exc.CreatedAt = time.Now()
	}
	m.exceptions = append(m.exceptions, exc)
	return nil
}

func (m *mockBlockingRepo) GetExceptionByID(_ context.Context, id uint) (*models.EmergencyException, error) {
	for _, e := range m.exceptions {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBlockingRepo) UpdateException(_ context.Context, exc *models.EmergencyException) error {
	for i, e := range m.exceptions {
		if e.ID == exc.ID {
			m.exceptions[i] = exc
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockBlockingRepo) ListExceptions(_ context.Context, filters repositories.ExceptionFilters) ([]*models.EmergencyException, int64, error) {
	var out []*models.EmergencyException
	for _, e := range m.exceptions {
		if filters.Status != "" && e.Status != filters.Status {
			continue
		}
		if filters.StudentID != 0 && e.StudentID != filters.StudentID {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (m *mockBlockingRepo) ListActiveExceptions(_ context.Context, studentID uint, at time.Time) ([]*models.EmergencyException, error) {
	var out []*models.EmergencyException
	for _, e := range m.exceptions {
		if e.StudentID == studentID && e.ActiveAt(at) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockBlockingRepo) CountExceptionsSince(_ context.Context, studentID uint, since time.Time) (int64, error) {
	var count int64
	for _, e := range m.exceptions {
		if e.StudentID == studentID && !e.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockBlockingRepo) CreateExceptionLog(_ context.Context, log *models.ExceptionLog) error {
	m.nextID++
	log.ID = m.nextID
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockBlockingRepo) ListExceptionLogs(_ context.Context, exceptionID uint) ([]*models.ExceptionLog, error) {
	var out []*models.ExceptionLog
	for _, l := range m.logs {
		if l.ExceptionID == exceptionID {
			out = append(out, l)
		}
	}
	return out, nil
}
