package validator

import (
	"time"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
)

// ===== REGISTRATION =====

// StudentRegisterRequest represents the request structure for registering students
type StudentRegisterRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,uz_phone"`
	FullName    string `json:"full_name" validate:"required,min=2,max=100"`
	Password    string `json:"password" validate:"required,min=6,max=128"`
	School      string `json:"school" validate:"required,max=200"`
	SchoolID    *uint  `json:"school_id"`
	Grade       int    `json:"grade" validate:"required,grade_range"`
	ClassID     string `json:"class_id" validate:"omitempty,max=20"`
}

// TeacherRegisterRequest represents the request structure for registering teachers
type TeacherRegisterRequest struct {
	PhoneNumber string   `json:"phone_number" validate:"required,uz_phone"`
	FullName    string   `json:"full_name" validate:"required,min=2,max=100"`
	Password    string   `json:"password" validate:"required,min=6,max=128"`
	School      string   `json:"school" validate:"required,max=200"`
	Subjects    []string `json:"subjects" validate:"omitempty,max=20,dive,min=1,max=100"`
}

// AdminRegisterRequest represents the request structure for registering administrators
type AdminRegisterRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,uz_phone"`
	FullName    string `json:"full_name" validate:"required,min=2,max=100"`
	Password    string `json:"password" validate:"required,min=6,max=128"`
	RoleLabel   string `json:"role_label" validate:"omitempty,max=100"`
}

// ===== AUTHENTICATION =====

type LoginRequest struct {
	PhoneNumber string          `json:"phone_number" validate:"required,uz_phone"`
	Password    string          `json:"password" validate:"required"`
	Role        models.UserRole `json:"role" validate:"required,oneof=student teacher admin"`
}

type PhoneCheckRequest struct {
	PhoneNumber string          `json:"phone_number" validate:"required,uz_phone"`
	Role        models.UserRole `json:"role" validate:"required,oneof=student teacher admin"`
}

// ===== PROFILE UPDATES =====

// StudentSchoolUpdateRequest updates the student's school placement; nil
// fields are left untouched.
type StudentSchoolUpdateRequest struct {
	School   *string `json:"school" validate:"omitempty,min=1,max=200"`
	SchoolID *uint   `json:"school_id"`
	Grade    *int    `json:"grade" validate:"omitempty,grade_range"`
	ClassID  *string `json:"class_id" validate:"omitempty,max=20"`
}

type TeacherUpdateRequest struct {
	School   *string  `json:"school" validate:"omitempty,min=1,max=200"`
	Subjects []string `json:"subjects" validate:"omitempty,max=20,dive,min=1,max=100"`
}

type AdminUpdateRequest struct {
	RoleLabel *string `json:"role_label" validate:"omitempty,max=100"`
}

// ===== SCHOOLS & SCHEDULES =====

type SchoolCreateRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	Address      string  `json:"address" validate:"omitempty,max=300"`
	Region       string  `json:"region" validate:"omitempty,max=100"`
	Latitude     float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude    float64 `json:"longitude" validate:"required,min=-180,max=180"`
	RadiusMeters float64 `json:"radius_meters" validate:"omitempty,min=10,max=5000"`
}

type SchoolUpdateRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Address      *string  `json:"address" validate:"omitempty,max=300"`
	Region       *string  `json:"region" validate:"omitempty,max=100"`
	Latitude     *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	RadiusMeters *float64 `json:"radius_meters" validate:"omitempty,min=10,max=5000"`
}

type ScheduleWindowRequest struct {
	Weekday     int `json:"weekday" validate:"min=0,max=6"`
	StartMinute int `json:"start_minute" validate:"minute_of_day"`
	EndMinute   int `json:"end_minute" validate:"minute_of_day"`
}

type ScheduleClosureRequest struct {
	Date             time.Time          `json:"date" validate:"required"`
	Name             string             `json:"name" validate:"required,min=1,max=200"`
	Kind             models.ClosureKind `json:"kind" validate:"omitempty,oneof=holiday special_event"`
	BlockingModified bool               `json:"blocking_modified"`
}

// ===== BLOCKING =====

type BlockingRuleRequest struct {
	PackageName string             `json:"package_name" validate:"required,app_package"`
	AppName     string             `json:"app_name" validate:"required,min=1,max=255"`
	Window      *RuleWindowRequest `json:"window"`
}

type RuleWindowRequest struct {
	StartMinute int `json:"start_minute" validate:"minute_of_day"`
	EndMinute   int `json:"end_minute" validate:"minute_of_day"`
}

type ExceptionCreateRequest struct {
	PackageName string `json:"package_name" validate:"required,app_package"`
	Reason      string `json:"reason" validate:"required,min=10,max=500"`
}

type ExceptionReviewRequest struct {
	Approve         bool   `json:"approve"`
	Basis           string `json:"basis" validate:"omitempty,max=500"`
	DurationMinutes *int   `json:"duration_minutes" validate:"omitempty,min=5,max=480"`
}

// BlockingStatusQuery carries the optional device coordinates supplied by the
// client on the status poll.
type BlockingStatusQuery struct {
	Latitude  *float64 `form:"lat" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `form:"lon" validate:"omitempty,min=-180,max=180"`
}
