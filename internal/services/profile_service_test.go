package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/validator"
)

func newProfileFixture(t *testing.T) (ProfileService, *mockRepository) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()

	return NewProfileService(repo, logger, validator.New()), repo
}

func seedStudent(t *testing.T, repo *mockRepository) *models.User {
	t.Helper()

	user := &models.User{
		PhoneNumber: "+998901234567",
		Role:        models.RoleStudent,
		FullName:    "Aziz Karimov",
		StudentProfile: &models.StudentProfile{
			School:  "School 21",
			Grade:   9,
			ClassID: "9-A",
		},
	}
	if err := repo.User().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed student: %v", err)
	}
	return user
}

func seedTeacher(t *testing.T, repo *mockRepository) *models.User {
	t.Helper()

	user := &models.User{
		PhoneNumber:    "+998935554433",
		Role:           models.RoleTeacher,
		FullName:       "Nodira Yusupova",
		TeacherProfile: &models.TeacherProfile{School: "School 21"},
	}
	if err := repo.User().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed teacher: %v", err)
	}
	return user
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	svc, repo := newProfileFixture(t)
	student := seedStudent(t, repo)
	teacher := seedTeacher(t, repo)

	resp, err := svc.GetProfile(ctx, student.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Student == nil || resp.Teacher != nil || resp.Admin != nil {
		t.Errorf("expected only the student extension, got %+v", resp)
	}
	if resp.Student.Grade != 9 {
		t.Errorf("unexpected grade %d", resp.Student.Grade)
	}
	if resp.User.ID != student.ID {
		t.Errorf("unexpected user id %d", resp.User.ID)
	}

	resp, err = svc.GetProfile(ctx, teacher.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Teacher == nil || resp.Student != nil {
		t.Errorf("expected only the teacher extension, got %+v", resp)
	}

	if _, err := svc.GetProfile(ctx, 999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateStudentSchool(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update keeps other fields", func(t *testing.T) {
		svc, repo := newProfileFixture(t)
		student := seedStudent(t, repo)

		school := &models.School{Name: "School 50", Latitude: 41.3, Longitude: 69.2, RadiusMeters: 200}
		if err := repo.School().Create(ctx, school); err != nil {
			t.Fatalf("failed to seed school: %v", err)
		}

		name := "School 50"
		resp, err := svc.UpdateStudentSchool(ctx, student.ID, &StudentSchoolUpdateRequest{
			School:   &name,
			SchoolID: &school.ID,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Student.School != "School 50" || resp.Student.SchoolID == nil || *resp.Student.SchoolID != school.ID {
			t.Errorf("school not updated: %+v", resp.Student)
		}
		if resp.Student.Grade != 9 || resp.Student.ClassID != "9-A" {
			t.Errorf("untouched fields changed: %+v", resp.Student)
		}
	})

	t.Run("unknown school id", func(t *testing.T) {
		svc, repo := newProfileFixture(t)
		student := seedStudent(t, repo)

		schoolID := uint(777)
		_, err := svc.UpdateStudentSchool(ctx, student.ID, &StudentSchoolUpdateRequest{SchoolID: &schoolID})
		if !errors.Is(err, ErrSchoolNotFound) {
			t.Fatalf("expected ErrSchoolNotFound, got %v", err)
		}
	})

	t.Run("non-student forbidden", func(t *testing.T) {
		svc, repo := newProfileFixture(t)
		teacher := seedTeacher(t, repo)

		grade := 10
		_, err := svc.UpdateStudentSchool(ctx, teacher.ID, &StudentSchoolUpdateRequest{Grade: &grade})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected a permission error, got %v", err)
		}
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("expected PermissionError, got %T", err)
		}
	})
}

func TestUpdateTeacher(t *testing.T) {
	ctx := context.Background()
	svc, repo := newProfileFixture(t)
	teacher := seedTeacher(t, repo)

	subjects := []string{"physics", "astronomy"}
	resp, err := svc.UpdateTeacher(ctx, teacher.ID, &TeacherUpdateRequest{Subjects: subjects})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Teacher == nil || len(resp.Teacher.Subjects) == 0 {
		t.Errorf("subjects not stored: %+v", resp.Teacher)
	}

	student := seedStudent(t, repo)
	if _, err := svc.UpdateTeacher(ctx, student.ID, &TeacherUpdateRequest{Subjects: subjects}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected a permission error, got %v", err)
	}
}
