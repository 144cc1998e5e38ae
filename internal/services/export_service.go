package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

var exportHeaders = []string{"User ID", "Full Name", "Phone Number", "Grade", "Class", "Blocked Apps"}

// ExportSchoolStudents builds an xlsx roster of a school's students for
// administrators. Returns the file bytes and a suggested filename.
func (s *exportService) ExportSchoolStudents(ctx context.Context, schoolID uint, adminID uint) ([]byte, string, error) {
	school, err := s.repo.School().GetByID(ctx, schoolID)
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrSchoolNotFound
		}
		return nil, "", fmt.Errorf("failed to get school: %w", err)
	}

	profiles, err := s.repo.User().ListStudentsBySchool(ctx, schoolID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list students: %w", err)
	}

	rules, err := s.repo.Blocking().ListRulesBySchool(ctx, schoolID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list blocking rules: %w", err)
	}
	hasRules := len(rules) > 0

	rows := make([]models.SchoolExportRow, 0, len(profiles))
	for _, p := range profiles {
		row := models.SchoolExportRow{
			UserID:  p.UserID,
			Grade:   p.Grade,
			ClassID: p.ClassID,
			Blocked: hasRules,
		}
		if p.User != nil {
			row.FullName = p.User.FullName
			row.PhoneNumber = p.User.PhoneNumber
		}
		rows = append(rows, row)
	}

	data, err := s.buildWorkbook(school.Name, rows)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("School roster exported",
		"school_id", schoolID,
		"students", len(rows),
		"admin_id", adminID)

	filename := fmt.Sprintf("students_%d_%s.xlsx", schoolID, time.Now().Format("2006-01-02"))
	return data, filename, nil
}

func (s *exportService) buildWorkbook(schoolName string, rows []models.SchoolExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Error("Failed to close workbook", "error", err)
		}
	}()

	const sheet = "Students"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := f.SetCellValue(sheet, "A1", schoolName); err != nil {
		return nil, fmt.Errorf("failed to write title: %w", err)
	}

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, row := range rows {
		values := []interface{}{row.UserID, row.FullName, row.PhoneNumber, row.Grade, row.ClassID, row.Blocked}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+3)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return buf.Bytes(), nil
}
