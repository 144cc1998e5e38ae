package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/NewEdu-F-2025/platform-service/internal/cache"
	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/repositories"
)

type BlockingPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewBlockingPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.BlockingRepository {
	return &BlockingPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== RULE OPERATIONS =====

func (b *BlockingPostgreSQL) CreateRule(ctx context.Context, rule *models.BlockingRule) error {
	if err := b.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create blocking rule: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, b.cacheManager.Blocking, fmt.Sprintf("school:%d:*", rule.SchoolID))

	return nil
}

func (b *BlockingPostgreSQL) GetRuleByID(ctx context.Context, id uint) (*models.BlockingRule, error) {
	var rule models.BlockingRule
	if err := b.db.WithContext(ctx).First(&rule, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get blocking rule: %w", err)
	}
	return &rule, nil
}

func (b *BlockingPostgreSQL) UpdateRule(ctx context.Context, rule *models.BlockingRule) error {
	if err := b.db.WithContext(ctx).Save(rule).Error; err != nil {
		return fmt.Errorf("failed to update blocking rule: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, b.cacheManager.Blocking, fmt.Sprintf("school:%d:*", rule.SchoolID))

	return nil
}

func (b *BlockingPostgreSQL) DeleteRule(ctx context.Context, id uint) error {
	var rule models.BlockingRule
	if err := b.db.WithContext(ctx).First(&rule, id).Error; err != nil {
		return fmt.Errorf("failed to get blocking rule for delete: %w", err)
	}

	if err := b.db.WithContext(ctx).Delete(&models.BlockingRule{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete blocking rule: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, b.cacheManager.Blocking, fmt.Sprintf("school:%d:*", rule.SchoolID))

	return nil
}

// ListRulesBySchool retrieves a school's rule set with caching; it backs every
// blocking evaluation
func (b *BlockingPostgreSQL) ListRulesBySchool(ctx context.Context, schoolID uint) ([]*models.BlockingRule, error) {
	cacheKey := fmt.Sprintf("school:%d:rules", schoolID)
	var rules []*models.BlockingRule

	err := b.cacheManager.Blocking.CacheOrExecute(ctx, cacheKey, &rules, cache.BlockingCacheConfig.TTL, func() (interface{}, error) {
		var dbRules []*models.BlockingRule
		if err := b.db.WithContext(ctx).
			Where("school_id = ?", schoolID).
			Order("package_name").
			Find(&dbRules).Error; err != nil {
			return nil, fmt.Errorf("failed to list blocking rules: %w", err)
		}
		return dbRules, nil
	})
	if err != nil {
		return nil, err
	}

	return rules, nil
}

func (b *BlockingPostgreSQL) RuleExists(ctx context.Context, schoolID uint, packageName string) (bool, error) {
	var count int64
	if err := b.db.WithContext(ctx).
		Model(&models.BlockingRule{}).
		Where("school_id = ? AND package_name = ?", schoolID, packageName).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check blocking rule existence: %w", err)
	}

	return count > 0, nil
}

// ===== EXCEPTION OPERATIONS =====

func (b *BlockingPostgreSQL) CreateException(ctx context.Context, exc *models.EmergencyException) error {
	if err := b.db.WithContext(ctx).Create(exc).Error; err != nil {
		return fmt.Errorf("failed to create emergency exception: %w", err)
	}

	cache.InvalidateBlockingCache(ctx, b.cacheManager, exc.StudentID)

	return nil
}

func (b *BlockingPostgreSQL) GetExceptionByID(ctx context.Context, id uint) (*models.EmergencyException, error) {
	var exc models.EmergencyException
	if err := b.db.WithContext(ctx).
		Preload("Logs").
		First(&exc, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get emergency exception: %w", err)
	}
	return &exc, nil
}

func (b *BlockingPostgreSQL) UpdateException(ctx context.Context, exc *models.EmergencyException) error {
	if err := b.db.WithContext(ctx).Save(exc).Error; err != nil {
		return fmt.Errorf("failed to update emergency exception: %w", err)
	}

	cache.InvalidateBlockingCache(ctx, b.cacheManager, exc.StudentID)

	return nil
}

func (b *BlockingPostgreSQL) ListExceptions(ctx context.Context, filters repositories.ExceptionFilters) ([]*models.EmergencyException, int64, error) {
	var exceptions []*models.EmergencyException
	var total int64

	query := b.db.WithContext(ctx).Model(&models.EmergencyException{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.StudentID != 0 {
		query = query.Where("student_id = ?", filters.StudentID)
	}
	if filters.SchoolID != 0 {
		query = query.Where("student_id IN (?)",
			b.db.Model(&models.StudentProfile{}).
				Select("user_id").
				Where("school_id = ?", filters.SchoolID))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count emergency exceptions: %w", err)
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&exceptions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list emergency exceptions: %w", err)
	}

	return exceptions, total, nil
}

// ListActiveExceptions returns approved, unexpired exceptions for a student
func (b *BlockingPostgreSQL) ListActiveExceptions(ctx context.Context, studentID uint, at time.Time) ([]*models.EmergencyException, error) {
	var exceptions []*models.EmergencyException
	if err := b.db.WithContext(ctx).
		Where("student_id = ? AND status = ? AND (expires_at IS NULL OR expires_at > ?)",
			studentID, models.ExceptionApproved, at).
		Find(&exceptions).Error; err != nil {
		return nil, fmt.Errorf("failed to list active exceptions: %w", err)
	}
	return exceptions, nil
}

// CountExceptionsSince backs the rate limit when Redis is unreachable
func (b *BlockingPostgreSQL) CountExceptionsSince(ctx context.Context, studentID uint, since time.Time) (int64, error) {
	var count int64
	if err := b.db.WithContext(ctx).
		Model(&models.EmergencyException{}).
		Where("student_id = ? AND created_at >= ?", studentID, since).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count recent exceptions: %w", err)
	}
	return count, nil
}

// ===== AUDIT TRAIL =====

func (b *BlockingPostgreSQL) CreateExceptionLog(ctx context.Context, log *models.ExceptionLog) error {
	if err := b.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create exception log: %w", err)
	}
	return nil
}

func (b *BlockingPostgreSQL) ListExceptionLogs(ctx context.Context, exceptionID uint) ([]*models.ExceptionLog, error) {
	var logs []*models.ExceptionLog
	if err := b.db.WithContext(ctx).
		Where("exception_id = ?", exceptionID).
		Order("created_at").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list exception logs: %w", err)
	}
	return logs, nil
}
