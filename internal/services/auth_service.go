package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/NewEdu-F-2025/platform-service/internal/auth"
	"github.com/NewEdu-F-2025/platform-service/internal/events"
	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/repositories"
	"github.com/NewEdu-F-2025/platform-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	issuer    *auth.TokenIssuer
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	business  *validator.BusinessValidator
}

func NewAuthService(repo repositories.Repository, issuer *auth.TokenIssuer, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		issuer:    issuer,
		publisher: publisher,
		logger:    logger,
		validator: v,
		business:  validator.NewBusinessValidator(v),
	}
}

// ===== REGISTRATION =====

func (s *authService) RegisterStudent(ctx context.Context, req *StudentRegisterRequest) (*models.TokenResponse, error) {
	if errs := s.business.ValidateStudentRegister(req); len(errs) > 0 {
		return nil, errs
	}

	user := &models.User{
		PhoneNumber: req.PhoneNumber,
		Role:        models.RoleStudent,
		FullName:    req.FullName,
		StudentProfile: &models.StudentProfile{
			School:   req.School,
			SchoolID: req.SchoolID,
			Grade:    req.Grade,
			ClassID:  req.ClassID,
		},
	}

	if req.SchoolID != nil {
		exists, err := s.repo.School().ExistsByID(ctx, *req.SchoolID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify school: %w", err)
		}
		if !exists {
			return nil, ErrSchoolNotFound
		}
	}

	return s.register(ctx, user, req.Password)
}

func (s *authService) RegisterTeacher(ctx context.Context, req *TeacherRegisterRequest) (*models.TokenResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	subjects, err := json.Marshal(req.Subjects)
	if err != nil {
		return nil, fmt.Errorf("failed to encode subjects: %w", err)
	}

	user := &models.User{
		PhoneNumber: req.PhoneNumber,
		Role:        models.RoleTeacher,
		FullName:    req.FullName,
		TeacherProfile: &models.TeacherProfile{
			School:   req.School,
			Subjects: datatypes.JSON(subjects),
		},
	}

	return s.register(ctx, user, req.Password)
}

func (s *authService) RegisterAdmin(ctx context.Context, req *AdminRegisterRequest) (*models.TokenResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user := &models.User{
		PhoneNumber: req.PhoneNumber,
		Role:        models.RoleAdmin,
		FullName:    req.FullName,
		AdminProfile: &models.AdminProfile{
			RoleLabel: req.RoleLabel,
		},
	}

	return s.register(ctx, user, req.Password)
}

// register persists the user with its profile in one transaction, then issues
// the session token. The same phone number may exist once per role.
func (s *authService) register(ctx context.Context, user *models.User, password string) (*models.TokenResponse, error) {
	exists, err := s.repo.User().ExistsByPhoneAndRole(ctx, user.PhoneNumber, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone number: %w", err)
	}
	if exists {
		return nil, ErrDuplicatePhone
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return txRepo.User().Create(ctx, user)
	})
	if err != nil {
		// The composite unique index backstops the pre-check under
		// concurrent registrations
		if isDuplicateKey(err) {
			return nil, ErrDuplicatePhone
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered",
		"user_id", user.ID,
		"role", user.Role)

	s.publishRegistered(ctx, user)

	return s.issueToken(user)
}

func (s *authService) publishRegistered(ctx context.Context, user *models.User) {
	var schoolID *uint
	if user.StudentProfile != nil {
		schoolID = user.StudentProfile.SchoolID
	}

	event := events.NewEvent(events.EventUserRegistered, &events.UserRegisteredEvent{
		UserID:      user.ID,
		PhoneNumber: user.PhoneNumber,
		Role:        string(user.Role),
		SchoolID:    schoolID,
	})

	if err := s.publisher.Publish(ctx, events.TopicUsers, event); err != nil {
		s.logger.Error("Failed to publish registration event",
			"error", err,
			"user_id", user.ID)
	}
}

// ===== LOGIN =====

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*models.TokenResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByPhoneAndRole(ctx, req.PhoneNumber, req.Role)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("User logged in",
		"user_id", user.ID,
		"role", user.Role)

	return s.issueToken(user)
}

// ===== PHONE CHECK =====

func (s *authService) CheckPhone(ctx context.Context, req *PhoneCheckRequest) (*models.PhoneCheckResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	exists, err := s.repo.User().ExistsByPhoneAndRole(ctx, req.PhoneNumber, req.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone number: %w", err)
	}

	message := "Phone number is available"
	if exists {
		message = "Phone number is already registered"
	}

	return &models.PhoneCheckResponse{
		Exists:  exists,
		Message: message,
	}, nil
}

// ===== HELPERS =====

func (s *authService) issueToken(user *models.User) (*models.TokenResponse, error) {
	token, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      user.ID,
		Role:        user.Role,
		ExpiresAt:   expiresAt.Unix(),
	}, nil
}
