package models

import (
	"time"

	"gorm.io/datatypes"
)

// BlockingRule names one app package restricted for a school during school
// hours. Window, when set, narrows the restriction to a daily interval
// (JSON {"start_minute":..,"end_minute":..}); a null window means the whole
// school day.
type BlockingRule struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	SchoolID    uint           `json:"school_id" gorm:"not null;uniqueIndex:idx_rules_school_package"`
	PackageName string         `json:"package_name" gorm:"not null;size:255;uniqueIndex:idx_rules_school_package"`
	AppName     string         `json:"app_name" gorm:"not null;size:255"`
	Window      datatypes.JSON `json:"window" gorm:"type:jsonb"`

	CreatedBy uint      `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BlockingRule) TableName() string {
	return "blocking_rules"
}

// RuleWindow is the decoded form of BlockingRule.Window.
type RuleWindow struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

type ExceptionStatus string

const (
	ExceptionPending  ExceptionStatus = "pending"
	ExceptionApproved ExceptionStatus = "approved"
	ExceptionRejected ExceptionStatus = "rejected"
)

// EmergencyException is a student-initiated, time-bounded override suspending
// a blocking rule for one app. It only takes effect once approved, and stops
// applying after ExpiresAt.
type EmergencyException struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	StudentID   uint            `json:"student_id" gorm:"not null;index"`
	PackageName string          `json:"package_name" gorm:"not null;size:255"`
	Reason      string          `json:"reason" gorm:"not null;type:text"`
	Status      ExceptionStatus `json:"status" gorm:"not null;size:20;default:pending;index"`

	ReviewedBy *uint      `json:"reviewed_by"`
	ExpiresAt  *time.Time `json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Logs []ExceptionLog `json:"logs,omitempty" gorm:"foreignKey:ExceptionID;constraint:OnDelete:CASCADE"`
}

func (EmergencyException) TableName() string {
	return "emergency_exceptions"
}

// ActiveAt reports whether the exception suspends blocking at t.
func (e *EmergencyException) ActiveAt(t time.Time) bool {
	if e.Status != ExceptionApproved {
		return false
	}
	return e.ExpiresAt == nil || t.Before(*e.ExpiresAt)
}

// ExceptionLog is one audited status transition of an emergency exception.
type ExceptionLog struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	ExceptionID     uint            `json:"exception_id" gorm:"not null;index"`
	StatusWas       ExceptionStatus `json:"status_was" gorm:"size:20"`
	StatusChangedTo ExceptionStatus `json:"status_changed_to" gorm:"size:20"`
	AdminID         *uint           `json:"admin_id"`
	Basis           string          `json:"basis" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
}

func (ExceptionLog) TableName() string {
	return "exception_logs"
}

// BlockingDecision is the evaluator output: the set of currently-restricted
// packages plus an overall flag, with the inputs that produced it echoed back
// so a client with intermittent connectivity can cache and reuse it.
type BlockingDecision struct {
	BlockingActive bool      `json:"blocking_active"`
	Reason         string    `json:"reason"`
	SchoolHours    bool      `json:"school_hours"`
	InsideGrounds  bool      `json:"inside_grounds"`
	SchoolName     string    `json:"school_name,omitempty"`
	RestrictedApps []string  `json:"restricted_apps"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
}
