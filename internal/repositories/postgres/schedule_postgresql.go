package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/NewEdu-F-2025/platform-service/internal/cache"
	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/repositories"
)

type SchedulePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSchedulePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ScheduleRepository {
	return &SchedulePostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== WEEKLY WINDOWS =====

// ReplaceWindows swaps the full weekly timetable for a school in one
// transaction
func (s *SchedulePostgreSQL) ReplaceWindows(ctx context.Context, schoolID uint, windows []*models.ScheduleWindow) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("school_id = ?", schoolID).
			Delete(&models.ScheduleWindow{}).Error; err != nil {
			return fmt.Errorf("failed to clear schedule windows: %w", err)
		}

		for _, w := range windows {
			w.ID = 0
			w.SchoolID = schoolID
		}
		if len(windows) > 0 {
			if err := tx.Create(&windows).Error; err != nil {
				return fmt.Errorf("failed to create schedule windows: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.SafeInvalidatePattern(ctx, s.cacheManager.Schedule, fmt.Sprintf("school:%d:*", schoolID))
	cache.SafeInvalidatePattern(ctx, s.cacheManager.Blocking, fmt.Sprintf("school:%d:*", schoolID))

	return nil
}

// ListWindows retrieves the weekly timetable with caching
func (s *SchedulePostgreSQL) ListWindows(ctx context.Context, schoolID uint) ([]*models.ScheduleWindow, error) {
	cacheKey := fmt.Sprintf("school:%d:windows", schoolID)
	var windows []*models.ScheduleWindow

	err := s.cacheManager.Schedule.CacheOrExecute(ctx, cacheKey, &windows, cache.ScheduleCacheConfig.TTL, func() (interface{}, error) {
		var dbWindows []*models.ScheduleWindow
		if err := s.db.WithContext(ctx).
			Where("school_id = ?", schoolID).
			Order("weekday, start_minute").
			Find(&dbWindows).Error; err != nil {
			return nil, fmt.Errorf("failed to list schedule windows: %w", err)
		}
		return dbWindows, nil
	})
	if err != nil {
		return nil, err
	}

	return windows, nil
}

func (s *SchedulePostgreSQL) ListWindowsByWeekday(ctx context.Context, schoolID uint, weekday int) ([]*models.ScheduleWindow, error) {
	var windows []*models.ScheduleWindow
	if err := s.db.WithContext(ctx).
		Where("school_id = ? AND weekday = ?", schoolID, weekday).
		Order("start_minute").
		Find(&windows).Error; err != nil {
		return nil, fmt.Errorf("failed to list schedule windows by weekday: %w", err)
	}
	return windows, nil
}

// ===== CLOSURES =====

func (s *SchedulePostgreSQL) CreateClosure(ctx context.Context, closure *models.ScheduleClosure) error {
	if err := s.db.WithContext(ctx).Create(closure).Error; err != nil {
		return fmt.Errorf("failed to create schedule closure: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, s.cacheManager.Schedule, fmt.Sprintf("school:%d:*", closure.SchoolID))
	cache.SafeInvalidatePattern(ctx, s.cacheManager.Blocking, fmt.Sprintf("school:%d:*", closure.SchoolID))

	return nil
}

func (s *SchedulePostgreSQL) DeleteClosure(ctx context.Context, id uint) error {
	var closure models.ScheduleClosure
	if err := s.db.WithContext(ctx).First(&closure, id).Error; err != nil {
		return fmt.Errorf("failed to get schedule closure for delete: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&models.ScheduleClosure{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete schedule closure: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, s.cacheManager.Schedule, fmt.Sprintf("school:%d:*", closure.SchoolID))
	cache.SafeInvalidatePattern(ctx, s.cacheManager.Blocking, fmt.Sprintf("school:%d:*", closure.SchoolID))

	return nil
}

func (s *SchedulePostgreSQL) ListClosures(ctx context.Context, schoolID uint, year int, month time.Month) ([]*models.ScheduleClosure, error) {
	cacheKey := fmt.Sprintf("school:%d:closures:%d-%02d", schoolID, year, int(month))
	var closures []*models.ScheduleClosure

	err := s.cacheManager.Schedule.CacheOrExecute(ctx, cacheKey, &closures, cache.ScheduleCacheConfig.TTL, func() (interface{}, error) {
		from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)

		var dbClosures []*models.ScheduleClosure
		if err := s.db.WithContext(ctx).
			Where("school_id = ? AND date >= ? AND date < ?", schoolID, from, to).
			Order("date").
			Find(&dbClosures).Error; err != nil {
			return nil, fmt.Errorf("failed to list schedule closures: %w", err)
		}
		return dbClosures, nil
	})
	if err != nil {
		return nil, err
	}

	return closures, nil
}

// GetClosureOn returns the closure covering a calendar date, or nil when the
// date is a regular school day
func (s *SchedulePostgreSQL) GetClosureOn(ctx context.Context, schoolID uint, date time.Time) (*models.ScheduleClosure, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var closure models.ScheduleClosure
	err := s.db.WithContext(ctx).
		Where("school_id = ? AND date = ?", schoolID, day).
		First(&closure).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get schedule closure: %w", err)
	}

	return &closure, nil
}
