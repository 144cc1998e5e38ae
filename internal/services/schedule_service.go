package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/repositories"
	"github.com/NewEdu-F-2025/platform-service/internal/validator"
)

type scheduleService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	business  *validator.BusinessValidator
}

func NewScheduleService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) ScheduleService {
	return &scheduleService{
		repo:      repo,
		logger:    logger,
		validator: v,
		business:  validator.NewBusinessValidator(v),
	}
}

// ReplaceWindows swaps the whole weekly timetable for a school
func (s *scheduleService) ReplaceWindows(ctx context.Context, schoolID uint, reqs []ScheduleWindowRequest, adminID uint) ([]*models.ScheduleWindow, error) {
	for i := range reqs {
		if errs := s.business.ValidateScheduleWindow(&reqs[i]); len(errs) > 0 {
			return nil, errs
		}
	}

	exists, err := s.repo.School().ExistsByID(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify school: %w", err)
	}
	if !exists {
		return nil, ErrSchoolNotFound
	}

	windows := make([]*models.ScheduleWindow, 0, len(reqs))
	for _, r := range reqs {
		windows = append(windows, &models.ScheduleWindow{
			SchoolID:    schoolID,
			Weekday:     r.Weekday,
			StartMinute: r.StartMinute,
			EndMinute:   r.EndMinute,
		})
	}

	if err := s.repo.Schedule().ReplaceWindows(ctx, schoolID, windows); err != nil {
		return nil, fmt.Errorf("failed to replace schedule windows: %w", err)
	}

	s.logger.Info("School timetable replaced",
		"school_id", schoolID,
		"windows", len(windows),
		"admin_id", adminID)

	return windows, nil
}

func (s *scheduleService) AddClosure(ctx context.Context, schoolID uint, req *ScheduleClosureRequest, adminID uint) (*models.ScheduleClosure, error) {
	if errs := s.business.ValidateScheduleClosure(req); len(errs) > 0 {
		return nil, errs
	}

	exists, err := s.repo.School().ExistsByID(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify school: %w", err)
	}
	if !exists {
		return nil, ErrSchoolNotFound
	}

	kind := req.Kind
	if kind == "" {
		kind = models.ClosureHoliday
	}

	closure := &models.ScheduleClosure{
		SchoolID:         schoolID,
		Date:             req.Date,
		Name:             req.Name,
		Kind:             kind,
		BlockingModified: req.BlockingModified,
	}

	if err := s.repo.Schedule().CreateClosure(ctx, closure); err != nil {
		return nil, fmt.Errorf("failed to create schedule closure: %w", err)
	}

	s.logger.Info("Schedule closure added",
		"school_id", schoolID,
		"closure_id", closure.ID,
		"kind", closure.Kind,
		"admin_id", adminID)

	return closure, nil
}

func (s *scheduleService) RemoveClosure(ctx context.Context, schoolID, closureID uint, adminID uint) error {
	if err := s.repo.Schedule().DeleteClosure(ctx, closureID); err != nil {
		if isNotFound(err) {
			return ErrClosureNotFound
		}
		return fmt.Errorf("failed to delete schedule closure: %w", err)
	}

	s.logger.Info("Schedule closure removed",
		"school_id", schoolID,
		"closure_id", closureID,
		"admin_id", adminID)

	return nil
}

// GetMonthSchedule assembles the month view polled by devices: weekly windows
// plus the month's holidays and special events.
func (s *scheduleService) GetMonthSchedule(ctx context.Context, schoolID uint, year int, month time.Month) (*models.MonthSchedule, error) {
	exists, err := s.repo.School().ExistsByID(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify school: %w", err)
	}
	if !exists {
		return nil, ErrSchoolNotFound
	}

	windows, err := s.repo.Schedule().ListWindows(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule windows: %w", err)
	}

	closures, err := s.repo.Schedule().ListClosures(ctx, schoolID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule closures: %w", err)
	}

	sched := &models.MonthSchedule{
		Month:         int(month),
		Year:          year,
		Windows:       make([]models.ScheduleWindow, 0, len(windows)),
		Holidays:      []models.ScheduleClosure{},
		SpecialEvents: []models.ScheduleClosure{},
	}

	for _, w := range windows {
		sched.Windows = append(sched.Windows, *w)
	}
	for _, c := range closures {
		switch c.Kind {
		case models.ClosureSpecialEvent:
			sched.SpecialEvents = append(sched.SpecialEvents, *c)
		default:
			sched.Holidays = append(sched.Holidays, *c)
		}
	}

	return sched, nil
}

// GetMonthScheduleForStudent resolves the caller's school, then returns the
// month view. Students without a school assignment get an empty schedule.
func (s *scheduleService) GetMonthScheduleForStudent(ctx context.Context, studentID uint, year int, month time.Month) (*models.MonthSchedule, error) {
	profile, err := s.repo.User().GetStudentProfile(ctx, studentID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}

	if profile.SchoolID == nil {
		return &models.MonthSchedule{
			Month:         int(month),
			Year:          year,
			Windows:       []models.ScheduleWindow{},
			Holidays:      []models.ScheduleClosure{},
			SpecialEvents: []models.ScheduleClosure{},
		}, nil
	}

	return s.GetMonthSchedule(ctx, *profile.SchoolID, year, month)
}
