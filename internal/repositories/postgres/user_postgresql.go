package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/NewEdu-F-2025/platform-service/internal/cache"
	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/repositories"
)

type UserPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

// Create persists a user together with any attached role profile. gorm
// inserts the association rows in the same statement batch, so an outer
// transaction keeps user and profile atomic.
func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, u.cacheManager.Exists, fmt.Sprintf("phone:%s:*", user.PhoneNumber))

	return nil
}

// GetByID retrieves a user by ID with caching
func (u *UserPostgreSQL) GetByID(ctx context.Context, id uint) (*models.User, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var user models.User

	err := u.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		if err := u.db.WithContext(ctx).First(&dbUser, id).Error; err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		return &dbUser, nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByIDWithProfile retrieves a user with the role profile preloaded
func (u *UserPostgreSQL) GetByIDWithProfile(ctx context.Context, id uint) (*models.User, error) {
	cacheKey := fmt.Sprintf("profile:%d", id)
	var user models.User

	err := u.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		if err := u.db.WithContext(ctx).
			Preload("StudentProfile").
			Preload("TeacherProfile").
			Preload("AdminProfile").
			First(&dbUser, id).Error; err != nil {
			return nil, fmt.Errorf("failed to get user with profile: %w", err)
		}
		return &dbUser, nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByPhoneAndRole retrieves a user by the composite credential key.
// Not cached: it sits on the login path and returns the password hash.
func (u *UserPostgreSQL) GetByPhoneAndRole(ctx context.Context, phone string, role models.UserRole) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).
		Where("phone_number = ? AND role = ?", phone, role).
		First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by phone and role: %w", err)
	}

	return &user, nil
}

// Update updates a user and invalidates cache
func (u *UserPostgreSQL) Update(ctx context.Context, user *models.User) error {
	if err := u.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	cache.InvalidateUserCache(ctx, u.cacheManager, user.ID, user.PhoneNumber)

	return nil
}

// Delete removes a user; profile rows follow via the FK cascade
func (u *UserPostgreSQL) Delete(ctx context.Context, id uint) error {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return fmt.Errorf("failed to get user for delete: %w", err)
	}

	if err := u.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	cache.InvalidateUserCache(ctx, u.cacheManager, user.ID, user.PhoneNumber)

	return nil
}

// ===== LIST AND SEARCH OPERATIONS =====

func (u *UserPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := u.db.WithContext(ctx).Model(&models.User{})

	if filters.Role != "" {
		query = query.Where("role = ?", filters.Role)
	}
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("full_name ILIKE ? OR phone_number LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// ===== PROFILE OPERATIONS =====

func (u *UserPostgreSQL) GetStudentProfile(ctx context.Context, userID uint) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := u.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}
	return &profile, nil
}

func (u *UserPostgreSQL) GetTeacherProfile(ctx context.Context, userID uint) (*models.TeacherProfile, error) {
	var profile models.TeacherProfile
	if err := u.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to get teacher profile: %w", err)
	}
	return &profile, nil
}

func (u *UserPostgreSQL) GetAdminProfile(ctx context.Context, userID uint) (*models.AdminProfile, error) {
	var profile models.AdminProfile
	if err := u.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to get admin profile: %w", err)
	}
	return &profile, nil
}

func (u *UserPostgreSQL) UpdateStudentProfile(ctx context.Context, profile *models.StudentProfile) error {
	if err := u.db.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update student profile: %w", err)
	}

	cache.SafeDelete(ctx, u.cacheManager.User, fmt.Sprintf("profile:%d", profile.UserID))
	cache.InvalidateBlockingCache(ctx, u.cacheManager, profile.UserID)

	return nil
}

func (u *UserPostgreSQL) UpdateTeacherProfile(ctx context.Context, profile *models.TeacherProfile) error {
	if err := u.db.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update teacher profile: %w", err)
	}

	cache.SafeDelete(ctx, u.cacheManager.User, fmt.Sprintf("profile:%d", profile.UserID))

	return nil
}

func (u *UserPostgreSQL) UpdateAdminProfile(ctx context.Context, profile *models.AdminProfile) error {
	if err := u.db.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update admin profile: %w", err)
	}

	cache.SafeDelete(ctx, u.cacheManager.User, fmt.Sprintf("profile:%d", profile.UserID))

	return nil
}

// ===== EXPORT SUPPORT =====

func (u *UserPostgreSQL) ListStudentsBySchool(ctx context.Context, schoolID uint) ([]*models.StudentProfile, error) {
	var profiles []*models.StudentProfile
	if err := u.db.WithContext(ctx).
		Preload("User").
		Where("school_id = ?", schoolID).
		Order("grade, class_id, id").
		Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list students by school: %w", err)
	}
	return profiles, nil
}

// ===== VALIDATION AND CHECKS =====

func (u *UserPostgreSQL) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	cacheKey := fmt.Sprintf("phone:%s:any", phone)
	var exists bool

	err := u.cacheManager.Exists.CacheOrExecute(ctx, cacheKey, &exists, cache.ExistsCacheConfig.TTL, func() (interface{}, error) {
		var count int64
		if err := u.db.WithContext(ctx).
			Model(&models.User{}).
			Where("phone_number = ?", phone).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check phone existence: %w", err)
		}
		return count > 0, nil
	})
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (u *UserPostgreSQL) ExistsByPhoneAndRole(ctx context.Context, phone string, role models.UserRole) (bool, error) {
	cacheKey := fmt.Sprintf("phone:%s:%s", phone, role)
	var exists bool

	err := u.cacheManager.Exists.CacheOrExecute(ctx, cacheKey, &exists, cache.ExistsCacheConfig.TTL, func() (interface{}, error) {
		var count int64
		if err := u.db.WithContext(ctx).
			Model(&models.User{}).
			Where("phone_number = ? AND role = ?", phone, role).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check phone and role existence: %w", err)
		}
		return count > 0, nil
	})
	if err != nil {
		return false, err
	}

	return exists, nil
}
