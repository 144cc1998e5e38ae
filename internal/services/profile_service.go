package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/repositories"
	"github.com/NewEdu-F-2025/platform-service/internal/validator"
)

type profileService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewProfileService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) ProfileService {
	return &profileService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

// GetProfile returns the caller's identity plus the extension matching their
// role. Missing profile rows are tolerated for reads.
func (s *profileService) GetProfile(ctx context.Context, userID uint) (*models.ProfileResponse, error) {
	user, err := s.repo.User().GetByIDWithProfile(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	resp := &models.ProfileResponse{User: user.Summary()}
	switch user.Role {
	case models.RoleStudent:
		resp.Student = user.StudentProfile
	case models.RoleTeacher:
		resp.Teacher = user.TeacherProfile
	case models.RoleAdmin:
		resp.Admin = user.AdminProfile
	}

	return resp, nil
}

// UpdateStudentSchool changes the caller's school placement. Only students
// may call it; nil fields keep their stored value.
func (s *profileService) UpdateStudentSchool(ctx context.Context, userID uint, req *StudentSchoolUpdateRequest) (*models.ProfileResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Role != models.RoleStudent {
		return nil, NewPermissionError(userID, userID, "student_profile", "update", "caller is not a student")
	}

	profile, err := s.repo.User().GetStudentProfile(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}

	if req.School != nil {
		profile.School = *req.School
	}
	if req.SchoolID != nil {
		exists, err := s.repo.School().ExistsByID(ctx, *req.SchoolID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify school: %w", err)
		}
		if !exists {
			return nil, ErrSchoolNotFound
		}
		profile.SchoolID = req.SchoolID
	}
	if req.Grade != nil {
		profile.Grade = *req.Grade
	}
	if req.ClassID != nil {
		profile.ClassID = *req.ClassID
	}

	if err := s.repo.User().UpdateStudentProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update student profile: %w", err)
	}

	s.logger.Info("Student school updated",
		"user_id", userID,
		"school_id", profile.SchoolID)

	return s.GetProfile(ctx, userID)
}

func (s *profileService) UpdateTeacher(ctx context.Context, userID uint, req *TeacherUpdateRequest) (*models.ProfileResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Role != models.RoleTeacher {
		return nil, NewPermissionError(userID, userID, "teacher_profile", "update", "caller is not a teacher")
	}

	profile, err := s.repo.User().GetTeacherProfile(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get teacher profile: %w", err)
	}

	if req.School != nil {
		profile.School = *req.School
	}
	if req.Subjects != nil {
		subjects, err := json.Marshal(req.Subjects)
		if err != nil {
			return nil, fmt.Errorf("failed to encode subjects: %w", err)
		}
		profile.Subjects = datatypes.JSON(subjects)
	}

	if err := s.repo.User().UpdateTeacherProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update teacher profile: %w", err)
	}

	return s.GetProfile(ctx, userID)
}

func (s *profileService) UpdateAdmin(ctx context.Context, userID uint, req *AdminUpdateRequest) (*models.ProfileResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Role != models.RoleAdmin {
		return nil, NewPermissionError(userID, userID, "admin_profile", "update", "caller is not an administrator")
	}

	profile, err := s.repo.User().GetAdminProfile(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get admin profile: %w", err)
	}

	if req.RoleLabel != nil {
		profile.RoleLabel = *req.RoleLabel
	}

	if err := s.repo.User().UpdateAdminProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update admin profile: %w", err)
	}

	return s.GetProfile(ctx, userID)
}
