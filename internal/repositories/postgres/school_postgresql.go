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

type SchoolPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSchoolPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SchoolRepository {
	return &SchoolPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

func (s *SchoolPostgreSQL) Create(ctx context.Context, school *models.School) error {
	if err := s.db.WithContext(ctx).Create(school).Error; err != nil {
		return fmt.Errorf("failed to create school: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, s.cacheManager.School, "list:*")

	return nil
}

// GetByID retrieves a school by ID with caching
func (s *SchoolPostgreSQL) GetByID(ctx context.Context, id uint) (*models.School, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var school models.School

	err := s.cacheManager.School.CacheOrExecute(ctx, cacheKey, &school, cache.SchoolCacheConfig.TTL, func() (interface{}, error) {
		var dbSchool models.School
		if err := s.db.WithContext(ctx).First(&dbSchool, id).Error; err != nil {
			return nil, fmt.Errorf("failed to get school: %w", err)
		}
		return &dbSchool, nil
	})
	if err != nil {
		return nil, err
	}

	return &school, nil
}

func (s *SchoolPostgreSQL) Update(ctx context.Context, school *models.School) error {
	if err := s.db.WithContext(ctx).Save(school).Error; err != nil {
		return fmt.Errorf("failed to update school: %w", err)
	}

	cache.InvalidateSchoolCache(ctx, s.cacheManager, school.ID)

	return nil
}

func (s *SchoolPostgreSQL) Delete(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&models.School{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete school: %w", err)
	}

	cache.InvalidateSchoolCache(ctx, s.cacheManager, id)

	return nil
}

// ===== LIST AND SEARCH OPERATIONS =====

func (s *SchoolPostgreSQL) List(ctx context.Context, filters repositories.SchoolFilters) ([]*models.School, int64, error) {
	var schools []*models.School
	var total int64

	query := s.db.WithContext(ctx).Model(&models.School{})

	if filters.Region != "" {
		query = query.Where("region = ?", filters.Region)
	}
	if filters.Query != "" {
		query = query.Where("name ILIKE ?", "%"+filters.Query+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count schools: %w", err)
	}

	query = query.Order("name")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&schools).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list schools: %w", err)
	}

	return schools, total, nil
}

// ===== VALIDATION AND CHECKS =====

func (s *SchoolPostgreSQL) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.School{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check school existence: %w", err)
	}

	return count > 0, nil
}
