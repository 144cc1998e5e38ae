package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gorm.io/datatypes"

	"github.com/NewEdu-F-2025/platform-service/internal/cache"
	"github.com/NewEdu-F-2025/platform-service/internal/events"
	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/repositories"
	"github.com/NewEdu-F-2025/platform-service/internal/validator"
)

const (
	// Emergency exception rate limit per student
	exceptionRateLimit  = 3
	exceptionRateWindow = 24 * time.Hour

	// Approval validity when the reviewer sets no explicit duration
	defaultExceptionDuration = 2 * time.Hour
)

type blockingService struct {
	repo         repositories.Repository
	cacheManager *cache.CacheManager
	publisher    events.EventPublisher
	logger       *slog.Logger
	validator    *validator.Validator
	business     *validator.BusinessValidator

	// Injectable clock for evaluator tests
	now func() time.Time
}

func NewBlockingService(repo repositories.Repository, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) BlockingService {
	return &blockingService{
		repo:         repo,
		cacheManager: cacheManager,
		publisher:    publisher,
		logger:       logger,
		validator:    v,
		business:     validator.NewBusinessValidator(v),
		now:          time.Now,
	}
}

// ===== DECISION EVALUATION =====

// EvaluateForStudent computes the blocking decision: restrictions apply only
// during school hours while the device is inside the school geofence, and
// approved emergency exceptions carve individual apps out of the result.
func (s *blockingService) EvaluateForStudent(ctx context.Context, studentID uint, loc *DeviceLocation) (*models.BlockingDecision, error) {
	profile, err := s.repo.User().GetStudentProfile(ctx, studentID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}

	now := s.now()
	decision := &models.BlockingDecision{
		RestrictedApps: []string{},
		EvaluatedAt:    now,
	}

	if profile.SchoolID == nil {
		decision.Reason = "no school assigned"
		return decision, nil
	}

	school, err := s.repo.School().GetByID(ctx, *profile.SchoolID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to get school: %w", err)
	}
	decision.SchoolName = school.Name

	schoolHours, reason, err := s.inSchoolHours(ctx, school.ID, now)
	if err != nil {
		return nil, err
	}
	decision.SchoolHours = schoolHours
	if !schoolHours {
		decision.Reason = reason
		return decision, nil
	}

	// No coordinates means the device cannot be placed on school grounds,
	// so restrictions do not apply.
	if loc == nil {
		decision.Reason = "device location unknown"
		return decision, nil
	}

	distance := haversineMeters(loc.Latitude, loc.Longitude, school.Latitude, school.Longitude)
	decision.InsideGrounds = distance <= school.RadiusMeters
	if !decision.InsideGrounds {
		decision.Reason = "outside school grounds"
		return decision, nil
	}

	restricted, err := s.restrictedPackages(ctx, school.ID, studentID, now)
	if err != nil {
		return nil, err
	}

	decision.RestrictedApps = restricted
	decision.BlockingActive = len(restricted) > 0
	if decision.BlockingActive {
		decision.Reason = "school hours, on school grounds"
	} else {
		decision.Reason = "no restricted apps"
	}

	return decision, nil
}

// inSchoolHours checks the weekly windows against today's closure entry.
// Holidays and unmodified special events suspend blocking for the day;
// special events flagged blocking_modified keep the windows in force.
func (s *blockingService) inSchoolHours(ctx context.Context, schoolID uint, now time.Time) (bool, string, error) {
	closure, err := s.repo.Schedule().GetClosureOn(ctx, schoolID, now)
	if err != nil {
		return false, "", fmt.Errorf("failed to check schedule closure: %w", err)
	}
	if closure != nil && !(closure.Kind == models.ClosureSpecialEvent && closure.BlockingModified) {
		return false, fmt.Sprintf("school closed: %s", closure.Name), nil
	}

	windows, err := s.repo.Schedule().ListWindows(ctx, schoolID)
	if err != nil {
		return false, "", fmt.Errorf("failed to list schedule windows: %w", err)
	}

	minute := now.Hour()*60 + now.Minute()
	weekday := int(now.Weekday())
	for _, w := range windows {
		if w.Weekday == weekday && minute >= w.StartMinute && minute < w.EndMinute {
			return true, "", nil
		}
	}

	return false, "outside school hours", nil
}

// restrictedPackages applies per-rule daily windows and subtracts active
// emergency exceptions
func (s *blockingService) restrictedPackages(ctx context.Context, schoolID, studentID uint, now time.Time) ([]string, error) {
	rules, err := s.repo.Blocking().ListRulesBySchool(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocking rules: %w", err)
	}

	exceptions, err := s.repo.Blocking().ListActiveExceptions(ctx, studentID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active exceptions: %w", err)
	}
	excepted := make(map[string]bool, len(exceptions))
	for _, exc := range exceptions {
		if exc.ActiveAt(now) {
			excepted[exc.PackageName] = true
		}
	}

	minute := now.Hour()*60 + now.Minute()
	restricted := make([]string, 0, len(rules))
	for _, rule := range rules {
		if excepted[rule.PackageName] {
			continue
		}
		if len(rule.Window) > 0 {
			var window models.RuleWindow
			if err := json.Unmarshal(rule.Window, &window); err != nil {
				s.logger.Error("Malformed rule window",
					"rule_id", rule.ID,
					"error", err)
				continue
			}
			if minute < window.StartMinute || minute >= window.EndMinute {
				continue
			}
		}
		restricted = append(restricted, rule.PackageName)
	}

	return restricted, nil
}

// haversineMeters is the great-circle distance between two coordinates
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000.0

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// ===== RULE MANAGEMENT =====

func (s *blockingService) CreateRule(ctx context.Context, schoolID uint, req *BlockingRuleRequest, adminID uint) (*models.BlockingRule, error) {
	if errs := s.business.ValidateBlockingRule(req); len(errs) > 0 {
		return nil, errs
	}

	exists, err := s.repo.School().ExistsByID(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify school: %w", err)
	}
	if !exists {
		return nil, ErrSchoolNotFound
	}

	ruleExists, err := s.repo.Blocking().RuleExists(ctx, schoolID, req.PackageName)
	if err != nil {
		return nil, fmt.Errorf("failed to check blocking rule: %w", err)
	}
	if ruleExists {
		return nil, ErrRuleExists
	}

	rule := &models.BlockingRule{
		SchoolID:    schoolID,
		PackageName: req.PackageName,
		AppName:     req.AppName,
		CreatedBy:   adminID,
	}
	if req.Window != nil {
		window, err := json.Marshal(models.RuleWindow{
			StartMinute: req.Window.StartMinute,
			EndMinute:   req.Window.EndMinute,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode rule window: %w", err)
		}
		rule.Window = datatypes.JSON(window)
	}

	if err := s.repo.Blocking().CreateRule(ctx, rule); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrRuleExists
		}
		return nil, fmt.Errorf("failed to create blocking rule: %w", err)
	}

	s.logger.Info("Blocking rule created",
		"rule_id", rule.ID,
		"school_id", schoolID,
		"package", rule.PackageName,
		"admin_id", adminID)

	return rule, nil
}

func (s *blockingService) UpdateRule(ctx context.Context, ruleID uint, req *BlockingRuleRequest, adminID uint) (*models.BlockingRule, error) {
	if errs := s.business.ValidateBlockingRule(req); len(errs) > 0 {
		return nil, errs
	}

	rule, err := s.repo.Blocking().GetRuleByID(ctx, ruleID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to get blocking rule: %w", err)
	}

	rule.PackageName = req.PackageName
	rule.AppName = req.AppName
	rule.Window = nil
	if req.Window != nil {
		window, err := json.Marshal(models.RuleWindow{
			StartMinute: req.Window.StartMinute,
			EndMinute:   req.Window.EndMinute,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode rule window: %w", err)
		}
		rule.Window = datatypes.JSON(window)
	}

	if err := s.repo.Blocking().UpdateRule(ctx, rule); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrRuleExists
		}
		return nil, fmt.Errorf("failed to update blocking rule: %w", err)
	}

	s.logger.Info("Blocking rule updated",
		"rule_id", rule.ID,
		"admin_id", adminID)

	return rule, nil
}

func (s *blockingService) DeleteRule(ctx context.Context, ruleID uint, adminID uint) error {
	if err := s.repo.Blocking().DeleteRule(ctx, ruleID); err != nil {
		if isNotFound(err) {
			return ErrRuleNotFound
		}
		return fmt.Errorf("failed to delete blocking rule: %w", err)
	}

	s.logger.Info("Blocking rule deleted",
		"rule_id", ruleID,
		"admin_id", adminID)

	return nil
}

func (s *blockingService) ListRules(ctx context.Context, schoolID uint) ([]*models.BlockingRule, error) {
	exists, err := s.repo.School().ExistsByID(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify school: %w", err)
	}
	if !exists {
		return nil, ErrSchoolNotFound
	}

	rules, err := s.repo.Blocking().ListRulesBySchool(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocking rules: %w", err)
	}

	return rules, nil
}

// ===== EMERGENCY EXCEPTIONS =====

// RequestException files a pending exception. Requests are limited per
// student per 24 hours; the counter lives in Redis with a database fallback.
func (s *blockingService) RequestException(ctx context.Context, studentID uint, req *ExceptionCreateRequest) (*ExceptionResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if err := s.checkRateLimit(ctx, studentID); err != nil {
		return nil, err
	}

	exc := &models.EmergencyException{
		StudentID:   studentID,
		PackageName: req.PackageName,
		Reason:      req.Reason,
		Status:      models.ExceptionPending,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Blocking().CreateException(ctx, exc); err != nil {
			return err
		}
		return txRepo.Blocking().CreateExceptionLog(ctx, &models.ExceptionLog{
			ExceptionID:     exc.ID,
			StatusChangedTo: models.ExceptionPending,
			Basis:           "requested by student",
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create emergency exception: %w", err)
	}

	s.logger.Info("Emergency exception requested",
		"exception_id", exc.ID,
		"student_id", studentID,
		"package", exc.PackageName)

	event := events.NewEvent(events.EventExceptionRequest, &events.ExceptionRequestedEvent{
		ExceptionID: exc.ID,
		StudentID:   studentID,
		PackageName: exc.PackageName,
		Reason:      exc.Reason,
	})
	if err := s.publisher.Publish(ctx, events.TopicBlocking, event); err != nil {
		s.logger.Error("Failed to publish exception event",
			"error", err,
			"exception_id", exc.ID)
	}

	return &ExceptionResponse{EmergencyException: exc, CanCancel: true}, nil
}

func (s *blockingService) checkRateLimit(ctx context.Context, studentID uint) error {
	key := fmt.Sprintf("ratelimit:%d", studentID)
	count, err := s.cacheManager.Blocking.IncrWithWindow(ctx, key, exceptionRateWindow)
	if err == nil {
		if count > exceptionRateLimit {
			return ErrRateLimited
		}
		return nil
	}

	// Cache down: count rows instead
	dbCount, dbErr := s.repo.Blocking().CountExceptionsSince(ctx, studentID, s.now().Add(-exceptionRateWindow))
	if dbErr != nil {
		return fmt.Errorf("failed to check rate limit: %w", dbErr)
	}
	if dbCount >= exceptionRateLimit {
		return ErrRateLimited
	}
	return nil
}

func (s *blockingService) ListStudentExceptions(ctx context.Context, studentID uint, page, size int) (*ExceptionListResponse, error) {
	return s.listExceptions(ctx, repositories.ExceptionFilters{StudentID: studentID}, page, size, studentID)
}

func (s *blockingService) ListPendingExceptions(ctx context.Context, page, size int) (*ExceptionListResponse, error) {
	return s.listExceptions(ctx, repositories.ExceptionFilters{Status: models.ExceptionPending}, page, size, 0)
}

func (s *blockingService) listExceptions(ctx context.Context, filters repositories.ExceptionFilters, page, size int, ownerID uint) (*ExceptionListResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	filters.Limit = size
	filters.Offset = (page - 1) * size

	exceptions, total, err := s.repo.Blocking().ListExceptions(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list emergency exceptions: %w", err)
	}

	items := make([]*ExceptionResponse, 0, len(exceptions))
	for _, exc := range exceptions {
		items = append(items, &ExceptionResponse{
			EmergencyException: exc,
			CanCancel:          exc.Status == models.ExceptionPending && exc.StudentID == ownerID,
		})
	}

	return &ExceptionListResponse{
		Exceptions: items,
		Total:      total,
		Page:       page,
		Size:       size,
	}, nil
}

// ReviewException approves or rejects a pending exception and records the
// transition in the audit trail. Approval grants a time-bounded window.
func (s *blockingService) ReviewException(ctx context.Context, exceptionID uint, req *ExceptionReviewRequest, adminID uint) (*ExceptionResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	exc, err := s.repo.Blocking().GetExceptionByID(ctx, exceptionID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrExceptionNotFound
		}
		return nil, fmt.Errorf("failed to get emergency exception: %w", err)
	}
	if exc.Status != models.ExceptionPending {
		return nil, ErrAlreadyReviewed
	}

	statusWas := exc.Status
	if req.Approve {
		exc.Status = models.ExceptionApproved
		duration := defaultExceptionDuration
		if req.DurationMinutes != nil {
			duration = time.Duration(*req.DurationMinutes) * time.Minute
		}
		expires := s.now().Add(duration)
		exc.ExpiresAt = &expires
	} else {
		exc.Status = models.ExceptionRejected
	}
	exc.ReviewedBy = &adminID

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Blocking().UpdateException(ctx, exc); err != nil {
			return err
		}
		return txRepo.Blocking().CreateExceptionLog(ctx, &models.ExceptionLog{
			ExceptionID:     exc.ID,
			StatusWas:       statusWas,
			StatusChangedTo: exc.Status,
			AdminID:         &adminID,
			Basis:           req.Basis,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to review emergency exception: %w", err)
	}

	s.logger.Info("Emergency exception reviewed",
		"exception_id", exc.ID,
		"status", exc.Status,
		"admin_id", adminID)

	event := events.NewEvent(events.EventExceptionReviewed, &events.ExceptionReviewedEvent{
		ExceptionID: exc.ID,
		StudentID:   exc.StudentID,
		PackageName: exc.PackageName,
		Status:      string(exc.Status),
		AdminID:     adminID,
		ExpiresAt:   exc.ExpiresAt,
	})
	if err := s.publisher.Publish(ctx, events.TopicBlocking, event); err != nil {
		s.logger.Error("Failed to publish review event",
			"error", err,
			"exception_id", exc.ID)
	}

	return &ExceptionResponse{EmergencyException: exc}, nil
}

func (s *blockingService) GetExceptionLogs(ctx context.Context, exceptionID uint, adminID uint) ([]*models.ExceptionLog, error) {
	if _, err := s.repo.Blocking().GetExceptionByID(ctx, exceptionID); err != nil {
		if isNotFound(err) {
			return nil, ErrExceptionNotFound
		}
		return nil, fmt.Errorf("failed to get emergency exception: %w", err)
	}

	logs, err := s.repo.Blocking().ListExceptionLogs(ctx, exceptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exception logs: %w", err)
	}

	return logs, nil
}
