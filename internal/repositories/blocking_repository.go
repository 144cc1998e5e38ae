package repositories

import (
	"context"
	"time"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
)

// ExceptionFilters defines filters for emergency exception queries
type ExceptionFilters struct {
	Status    models.ExceptionStatus // Filter by status, empty means all
	StudentID uint                   // Filter by student, zero means all
	SchoolID  uint                   // Filter by the student's school, zero means all
	Limit     int                    // Page size
	Offset    int                    // Offset for pagination
}

// BlockingRepository interface for app blocking rules and emergency exceptions
type BlockingRepository interface {
	// Rule operations
	CreateRule(ctx context.Context, rule *models.BlockingRule) error
	GetRuleByID(ctx context.Context, id uint) (*models.BlockingRule, error)
	UpdateRule(ctx context.Context, rule *models.BlockingRule) error
	DeleteRule(ctx context.Context, id uint) error
	ListRulesBySchool(ctx context.Context, schoolID uint) ([]*models.BlockingRule, error)
	RuleExists(ctx context.Context, schoolID uint, packageName string) (bool, error)

	// Exception operations
	CreateException(ctx context.Context, exc *models.EmergencyException) error
	GetExceptionByID(ctx context.Context, id uint) (*models.EmergencyException, error)
	UpdateException(ctx context.Context, exc *models.EmergencyException) error
	ListExceptions(ctx context.Context, filters ExceptionFilters) ([]*models.EmergencyException, int64, error)
	ListActiveExceptions(ctx context.Context, studentID uint, at time.Time) ([]*models.EmergencyException, error)

	// Rate limiting fallback when the cache layer is unavailable
	CountExceptionsSince(ctx context.Context, studentID uint, since time.Time) (int64, error)

	// Audit trail
	CreateExceptionLog(ctx context.Context, log *models.ExceptionLog) error
	ListExceptionLogs(ctx context.Context, exceptionID uint) ([]*models.ExceptionLog, error)
}
