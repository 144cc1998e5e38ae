package repositories

import (
	"context"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Role   models.UserRole // Filter by role, empty means all roles
	Query  string          // Search query for name or phone number
	Limit  int             // Page size
	Offset int             // Offset for pagination
}

// UserRepository interface for identity and profile operations
type UserRepository interface {
	// Basic CRUD operations. Create persists the user together with any
	// attached role profile.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDWithProfile(ctx context.Context, id uint) (*models.User, error)
	GetByPhoneAndRole(ctx context.Context, phone string, role models.UserRole) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error

	// List and search operations
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)

	// Profile operations
	GetStudentProfile(ctx context.Context, userID uint) (*models.StudentProfile, error)
	GetTeacherProfile(ctx context.Context, userID uint) (*models.TeacherProfile, error)
	GetAdminProfile(ctx context.Context, userID uint) (*models.AdminProfile, error)
	UpdateStudentProfile(ctx context.Context, profile *models.StudentProfile) error
	UpdateTeacherProfile(ctx context.Context, profile *models.TeacherProfile) error
	UpdateAdminProfile(ctx context.Context, profile *models.AdminProfile) error

	// Export support
	ListStudentsBySchool(ctx context.Context, schoolID uint) ([]*models.StudentProfile, error)

	// Validation and checks
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	ExistsByPhoneAndRole(ctx context.Context, phone string, role models.UserRole) (bool, error)
}
