package models

import "time"

// ===== PROFILE VIEWS =====

// ProfileResponse is the role-appropriate view returned by the profile
// service. Exactly one of the extension fields is populated.
type ProfileResponse struct {
	User    UserSummary     `json:"user"`
	Student *StudentProfile `json:"student,omitempty"`
	Teacher *TeacherProfile `json:"teacher,omitempty"`
	Admin   *AdminProfile   `json:"admin,omitempty"`
}

type UserSummary struct {
	ID          uint      `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	FullName    string    `json:"full_name"`
	Role        UserRole  `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		PhoneNumber: u.PhoneNumber,
		FullName:    u.FullName,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ===== AUTH VIEWS =====

type TokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	UserID      uint     `json:"user_id"`
	Role        UserRole `json:"role"`
	ExpiresAt   int64    `json:"expires_at"` // Unix timestamp
}

type PhoneCheckResponse struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message"`
}
