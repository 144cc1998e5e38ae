package repositories

import (
	"context"
	"time"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
)

// SchoolFilters defines filters for school queries
type SchoolFilters struct {
	Region string // Filter by region, empty means all regions
	Query  string // Search query for school name
	Limit  int    // Page size
	Offset int    // Offset for pagination
}

// SchoolRepository interface for school reference data
type SchoolRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, school *models.School) error
	GetByID(ctx context.Context, id uint) (*models.School, error)
	Update(ctx context.Context, school *models.School) error
	Delete(ctx context.Context, id uint) error

	// List and search operations
	List(ctx context.Context, filters SchoolFilters) ([]*models.School, int64, error)

	// Validation and checks
	ExistsByID(ctx context.Context, id uint) (bool, error)
}

// ScheduleRepository interface for school-hour windows and closures
type ScheduleRepository interface {
	// Weekly windows. ReplaceWindows swaps the full weekly timetable for a
	// school in one transaction.
	ReplaceWindows(ctx context.Context, schoolID uint, windows []*models.ScheduleWindow) error
	ListWindows(ctx context.Context, schoolID uint) ([]*models.ScheduleWindow, error)
	ListWindowsByWeekday(ctx context.Context, schoolID uint, weekday int) ([]*models.ScheduleWindow, error)

	// Closures (holidays and special events)
	CreateClosure(ctx context.Context, closure *models.ScheduleClosure) error
	DeleteClosure(ctx context.Context, id uint) error
	ListClosures(ctx context.Context, schoolID uint, year int, month time.Month) ([]*models.ScheduleClosure, error)
	GetClosureOn(ctx context.Context, schoolID uint, date time.Time) (*models.ScheduleClosure, error)
}
