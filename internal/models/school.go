package models

import (
	"time"
)

// School is administrator-owned reference data. Latitude/Longitude/RadiusMeters
// define the geofence used by the blocking evaluator.
type School struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"not null;size:200;index"`
	Address string `json:"address" gorm:"size:300"`
	Region  string `json:"region" gorm:"size:100;index"`

	Latitude     float64 `json:"latitude" gorm:"not null"`
	Longitude    float64 `json:"longitude" gorm:"not null"`
	RadiusMeters float64 `json:"radius_meters" gorm:"not null;default:250"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Rules    []BlockingRule    `json:"rules,omitempty" gorm:"foreignKey:SchoolID;constraint:OnDelete:CASCADE"`
	Windows  []ScheduleWindow  `json:"windows,omitempty" gorm:"foreignKey:SchoolID;constraint:OnDelete:CASCADE"`
	Closures []ScheduleClosure `json:"closures,omitempty" gorm:"foreignKey:SchoolID;constraint:OnDelete:CASCADE"`
}

func (School) TableName() string {
	return "schools"
}

// ScheduleWindow is one active school-hours interval on a weekday.
// Minutes are counted from local midnight.
type ScheduleWindow struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	SchoolID    uint `json:"school_id" gorm:"not null;index"`
	Weekday     int  `json:"weekday" gorm:"not null"` // time.Weekday: 0=Sunday .. 6=Saturday
	StartMinute int  `json:"start_minute" gorm:"not null"`
	EndMinute   int  `json:"end_minute" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ScheduleWindow) TableName() string {
	return "schedule_windows"
}

type ClosureKind string

const (
	ClosureHoliday      ClosureKind = "holiday"
	ClosureSpecialEvent ClosureKind = "special_event"
)

// ScheduleClosure marks a calendar date on which the school-hours windows do
// not apply (holiday) or are modified (special event).
type ScheduleClosure struct {
	ID       uint        `json:"id" gorm:"primaryKey"`
	SchoolID uint        `json:"school_id" gorm:"not null;index"`
	Date     time.Time   `json:"date" gorm:"not null;type:date;index"`
	Name     string      `json:"name" gorm:"not null;size:200"`
	Kind     ClosureKind `json:"kind" gorm:"not null;size:20;default:holiday"`

	// BlockingModified marks special events that keep blocking active with an
	// adjusted window rather than suspending it.
	BlockingModified bool `json:"blocking_modified" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ScheduleClosure) TableName() string {
	return "schedule_closures"
}

// MonthSchedule is the client-facing month view of a school's calendar.
type MonthSchedule struct {
	Month         int               `json:"month"`
	Year          int               `json:"year"`
	Windows       []ScheduleWindow  `json:"windows"`
	Holidays      []ScheduleClosure `json:"holidays"`
	SpecialEvents []ScheduleClosure `json:"special_events"`
}

// SchoolExportRow is one line of the admin xlsx export of a school's students.
type SchoolExportRow struct {
	UserID      uint   `json:"user_id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Grade       int    `json:"grade"`
	ClassID     string `json:"class_id"`
	Blocked     bool   `json:"blocked"`
}
