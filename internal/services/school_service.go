package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/repositories"
	"github.com/NewEdu-F-2025/platform-service/internal/validator"
)

const defaultGeofenceRadius = 250 // meters

type schoolService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSchoolService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) SchoolService {
	return &schoolService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *schoolService) Create(ctx context.Context, req *SchoolCreateRequest, adminID uint) (*models.School, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	radius := req.RadiusMeters
	if radius == 0 {
		radius = defaultGeofenceRadius
	}

	school := &models.School{
		Name:         req.Name,
		Address:      req.Address,
		Region:       req.Region,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: radius,
	}

	if err := s.repo.School().Create(ctx, school); err != nil {
		return nil, fmt.Errorf("failed to create school: %w", err)
	}

	s.logger.Info("School created",
		"school_id", school.ID,
		"name", school.Name,
		"admin_id", adminID)

	return school, nil
}

func (s *schoolService) GetByID(ctx context.Context, id uint) (*models.School, error) {
	school, err := s.repo.School().GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSchoolNotFound
		}
		return nil, fmt.Errorf("failed to get school: %w", err)
	}
	return school, nil
}

func (s *schoolService) Update(ctx context.Context, id uint, req *SchoolUpdateRequest, adminID uint) (*models.School, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	school, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		school.Name = *req.Name
	}
	if req.Address != nil {
		school.Address = *req.Address
	}
	if req.Region != nil {
		school.Region = *req.Region
	}
	if req.Latitude != nil {
		school.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		school.Longitude = *req.Longitude
	}
	if req.RadiusMeters != nil {
		school.RadiusMeters = *req.RadiusMeters
	}

	if err := s.repo.School().Update(ctx, school); err != nil {
		return nil, fmt.Errorf("failed to update school: %w", err)
	}

	s.logger.Info("School updated",
		"school_id", school.ID,
		"admin_id", adminID)

	return school, nil
}

func (s *schoolService) Delete(ctx context.Context, id uint, adminID uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.School().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete school: %w", err)
	}

	s.logger.Info("School deleted",
		"school_id", id,
		"admin_id", adminID)

	return nil
}

func (s *schoolService) List(ctx context.Context, filters repositories.SchoolFilters) (*SchoolListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	schools, total, err := s.repo.School().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list schools: %w", err)
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &SchoolListResponse{
		Schools: schools,
		Total:   total,
		Page:    page,
		Size:    filters.Limit,
	}, nil
}
