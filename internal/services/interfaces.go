package services

import (
	"context"
	"time"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/repositories"
	"github.com/NewEdu-F-2025/platform-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type StudentRegisterRequest = validator.StudentRegisterRequest
type TeacherRegisterRequest = validator.TeacherRegisterRequest
type AdminRegisterRequest = validator.AdminRegisterRequest
type LoginRequest = validator.LoginRequest
type PhoneCheckRequest = validator.PhoneCheckRequest

type StudentSchoolUpdateRequest = validator.StudentSchoolUpdateRequest
type TeacherUpdateRequest = validator.TeacherUpdateRequest
type AdminUpdateRequest = validator.AdminUpdateRequest

type SchoolCreateRequest = validator.SchoolCreateRequest
type SchoolUpdateRequest = validator.SchoolUpdateRequest
type ScheduleWindowRequest = validator.ScheduleWindowRequest
type ScheduleClosureRequest = validator.ScheduleClosureRequest

type BlockingRuleRequest = validator.BlockingRuleRequest
type ExceptionCreateRequest = validator.ExceptionCreateRequest
type ExceptionReviewRequest = validator.ExceptionReviewRequest

type SchoolListResponse struct {
	Schools []*models.School `json:"schools"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
}

type ExceptionResponse struct {
	*models.EmergencyException
	CanCancel bool `json:"can_cancel"`
}

type ExceptionListResponse struct {
	Exceptions []*ExceptionResponse `json:"exceptions"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Size       int                  `json:"size"`
}

// DeviceLocation is the optional client position supplied on a status poll.
type DeviceLocation struct {
	Latitude  float64
	Longitude float64
}

// ===== SERVICE INTERFACES =====

// AuthService covers registration, login and phone checks.
type AuthService interface {
	RegisterStudent(ctx context.Context, req *StudentRegisterRequest) (*models.TokenResponse, error)
	RegisterTeacher(ctx context.Context, req *TeacherRegisterRequest) (*models.TokenResponse, error)
	RegisterAdmin(ctx context.Context, req *AdminRegisterRequest) (*models.TokenResponse, error)

	Login(ctx context.Context, req *LoginRequest) (*models.TokenResponse, error)
	CheckPhone(ctx context.Context, req *PhoneCheckRequest) (*models.PhoneCheckResponse, error)
}

// ProfileService reads and updates the caller's own profile.
type ProfileService interface {
	GetProfile(ctx context.Context, userID uint) (*models.ProfileResponse, error)
	UpdateStudentSchool(ctx context.Context, userID uint, req *StudentSchoolUpdateRequest) (*models.ProfileResponse, error)
	UpdateTeacher(ctx context.Context, userID uint, req *TeacherUpdateRequest) (*models.ProfileResponse, error)
	UpdateAdmin(ctx context.Context, userID uint, req *AdminUpdateRequest) (*models.ProfileResponse, error)
}

// SchoolService manages the school registry (admin-only writes).
type SchoolService interface {
	Create(ctx context.Context, req *SchoolCreateRequest, adminID uint) (*models.School, error)
	GetByID(ctx context.Context, id uint) (*models.School, error)
	Update(ctx context.Context, id uint, req *SchoolUpdateRequest, adminID uint) (*models.School, error)
	Delete(ctx context.Context, id uint, adminID uint) error
	List(ctx context.Context, filters repositories.SchoolFilters) (*SchoolListResponse, error)
}

// ScheduleService manages school-hour windows and closures, and serves the
// month view polled by student devices.
type ScheduleService interface {
	ReplaceWindows(ctx context.Context, schoolID uint, reqs []ScheduleWindowRequest, adminID uint) ([]*models.ScheduleWindow, error)
	AddClosure(ctx context.Context, schoolID uint, req *ScheduleClosureRequest, adminID uint) (*models.ScheduleClosure, error)
	RemoveClosure(ctx context.Context, schoolID, closureID uint, adminID uint) error
	GetMonthSchedule(ctx context.Context, schoolID uint, year int, month time.Month) (*models.MonthSchedule, error)
	GetMonthScheduleForStudent(ctx context.Context, studentID uint, year int, month time.Month) (*models.MonthSchedule, error)
}

// BlockingService evaluates the blocking decision and manages rules and
// emergency exceptions.
type BlockingService interface {
	// Decision evaluation for a student device; loc is nil when the client
	// sent no coordinates.
	EvaluateForStudent(ctx context.Context, studentID uint, loc *DeviceLocation) (*models.BlockingDecision, error)

	// Rule management (admin)
	CreateRule(ctx context.Context, schoolID uint, req *BlockingRuleRequest, adminID uint) (*models.BlockingRule, error)
	UpdateRule(ctx context.Context, ruleID uint, req *BlockingRuleRequest, adminID uint) (*models.BlockingRule, error)
	DeleteRule(ctx context.Context, ruleID uint, adminID uint) error
	ListRules(ctx context.Context, schoolID uint) ([]*models.BlockingRule, error)

	// Emergency exceptions
	RequestException(ctx context.Context, studentID uint, req *ExceptionCreateRequest) (*ExceptionResponse, error)
	ListStudentExceptions(ctx context.Context, studentID uint, page, size int) (*ExceptionListResponse, error)
	ListPendingExceptions(ctx context.Context, page, size int) (*ExceptionListResponse, error)
	ReviewException(ctx context.Context, exceptionID uint, req *ExceptionReviewRequest, adminID uint) (*ExceptionResponse, error)
	GetExceptionLogs(ctx context.Context, exceptionID uint, adminID uint) ([]*models.ExceptionLog, error)
}

// ExportService produces admin xlsx exports.
type ExportService interface {
	ExportSchoolStudents(ctx context.Context, schoolID uint, adminID uint) ([]byte, string, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Auth() AuthService
	Profile() ProfileService
	School() SchoolService
	Schedule() ScheduleService
	Blocking() BlockingService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
