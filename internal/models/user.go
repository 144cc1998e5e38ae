package models

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// User is the base identity record. Exactly one role profile row exists per
// user, matching Role; profile rows cascade on delete.
type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	PhoneNumber  string   `json:"phone_number" gorm:"not null;size:20;uniqueIndex:idx_users_phone_role"`
	Role         UserRole `json:"role" gorm:"not null;size:20;uniqueIndex:idx_users_phone_role"`
	FullName     string   `json:"full_name" gorm:"not null;size:100"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	StudentProfile *StudentProfile `json:"student_profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	TeacherProfile *TeacherProfile `json:"teacher_profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	AdminProfile   *AdminProfile   `json:"admin_profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

// StudentProfile holds the student extension fields.
type StudentProfile struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   uint   `json:"user_id" gorm:"not null;uniqueIndex"`
	School   string `json:"school" gorm:"not null;size:200"`
	SchoolID *uint  `json:"school_id" gorm:"index"`
	Grade    int    `json:"grade" gorm:"not null"`
	ClassID  string `json:"class_id" gorm:"size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (StudentProfile) TableName() string {
	return "students"
}

// TeacherProfile holds the teacher extension fields. Subjects is a JSON array
// of free-text subject names.
type TeacherProfile struct {
	ID       uint           `json:"id" gorm:"primaryKey"`
	UserID   uint           `json:"user_id" gorm:"not null;uniqueIndex"`
	School   string         `json:"school" gorm:"not null;size:200"`
	Subjects datatypes.JSON `json:"subjects" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TeacherProfile) TableName() string {
	return "teachers"
}

// AdminProfile holds the administrator extension fields.
type AdminProfile struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UserID    uint   `json:"user_id" gorm:"not null;uniqueIndex"`
	RoleLabel string `json:"role_label" gorm:"size:100;default:moderator"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AdminProfile) TableName() string {
	return "admins"
}
