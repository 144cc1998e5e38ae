package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/repositories"
	"github.com/NewEdu-F-2025/platform-service/internal/validator"
)

func newSchoolFixture(t *testing.T) (SchoolService, *mockRepository) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()

	return NewSchoolService(repo, logger, validator.New()), repo
}

func TestCreateSchool(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults geofence radius", func(t *testing.T) {
		svc, _ := newSchoolFixture(t)

		school, err := svc.Create(ctx, &SchoolCreateRequest{
			Name:      "School 21",
			Region:    "Tashkent",
			Latitude:  41.31,
			Longitude: 69.28,
		}, 42)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if school.RadiusMeters != 250 {
			t.Errorf("expected default radius 250, got %f", school.RadiusMeters)
		}
	})

	t.Run("keeps explicit radius", func(t *testing.T) {
		svc, _ := newSchoolFixture(t)

		school, err := svc.Create(ctx, &SchoolCreateRequest{
			Name:         "School 21",
			Latitude:     41.31,
			Longitude:    69.28,
			RadiusMeters: 400,
		}, 42)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if school.RadiusMeters != 400 {
			t.Errorf("expected radius 400, got %f", school.RadiusMeters)
		}
	})

	t.Run("rejects out-of-range coordinates", func(t *testing.T) {
		svc, _ := newSchoolFixture(t)

		_, err := svc.Create(ctx, &SchoolCreateRequest{
			Name:      "School 21",
			Latitude:  123.0,
			Longitude: 69.28,
		}, 42)
		if err == nil {
			t.Fatal("expected validation error for latitude out of range")
		}
	})
}

func TestUpdateSchool(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSchoolFixture(t)

	school, err := svc.Create(ctx, &SchoolCreateRequest{
		Name:      "School 21",
		Latitude:  41.31,
		Longitude: 69.28,
	}, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	radius := 500.0
	updated, err := svc.Update(ctx, school.ID, &SchoolUpdateRequest{RadiusMeters: &radius}, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.RadiusMeters != 500 || updated.Name != "School 21" {
		t.Errorf("partial update went wrong: %+v", updated)
	}

	if _, err := svc.Update(ctx, 777, &SchoolUpdateRequest{RadiusMeters: &radius}, 42); !errors.Is(err, ErrSchoolNotFound) {
		t.Fatalf("expected ErrSchoolNotFound, got %v", err)
	}
}

func TestDeleteSchool(t *testing.T) {
	ctx := context.Background()
	svc, repo := newSchoolFixture(t)

	school := &models.School{Name: "School 21", Latitude: 41.31, Longitude: 69.28, RadiusMeters: 250}
	if err := repo.School().Create(ctx, school); err != nil {
		t.Fatalf("failed to seed school: %v", err)
	}

	if err := svc.Delete(ctx, school.ID, 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetByID(ctx, school.ID); !errors.Is(err, ErrSchoolNotFound) {
		t.Fatalf("expected ErrSchoolNotFound after delete, got %v", err)
	}
}

func TestListSchools(t *testing.T) {
	ctx := context.Background()
	svc, repo := newSchoolFixture(t)

	for _, name := range []string{"School 21", "School 50"} {
		school := &models.School{Name: name, Latitude: 41.31, Longitude: 69.28, RadiusMeters: 250}
		if err := repo.School().Create(ctx, school); err != nil {
			t.Fatalf("failed to seed school: %v", err)
		}
	}

	resp, err := svc.List(ctx, repositories.SchoolFilters{Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 2 || len(resp.Schools) != 2 {
		t.Errorf("unexpected list response %+v", resp)
	}
	if resp.Page != 1 {
		t.Errorf("expected page 1, got %d", resp.Page)
	}
}
