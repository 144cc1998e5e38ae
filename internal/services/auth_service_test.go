package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/NewEdu-F-2025/platform-service/internal/auth"
	"github.com/NewEdu-F-2025/platform-service/internal/events"
	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/validator"
)

func newAuthFixture(t *testing.T) (AuthService, *mockRepository, *events.MockEventPublisher) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	issuer := auth.NewTokenIssuer("test-secret", "platform-service", time.Hour)

	return NewAuthService(repo, issuer, publisher, logger, validator.New()), repo, publisher
}

func studentRequest() *StudentRegisterRequest {
	return &StudentRegisterRequest{
		PhoneNumber: "+998901234567",
		FullName:    "Aziz Karimov",
		Password:    "secret123",
		School:      "School 21",
		Grade:       9,
		ClassID:     "9-A",
	}
}

func TestRegisterStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, repo, publisher := newAuthFixture(t)

		resp, err := svc.RegisterStudent(ctx, studentRequest())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.AccessToken == "" || resp.TokenType != "bearer" {
			t.Errorf("unexpected token response %+v", resp)
		}
		if resp.Role != models.RoleStudent {
			t.Errorf("expected student role, got %s", resp.Role)
		}

		stored, err := repo.User().GetByPhoneAndRole(ctx, "+998901234567", models.RoleStudent)
		if err != nil {
			t.Fatalf("user not stored: %v", err)
		}
		if stored.PasswordHash == "secret123" {
			t.Error("password stored in plain text")
		}
		if err := auth.CheckPassword(stored.PasswordHash, "secret123"); err != nil {
			t.Errorf("stored hash does not verify: %v", err)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventUserRegistered {
			t.Errorf("expected one registration event, got %+v", published)
		}
	})

	t.Run("duplicate phone for same role", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		if _, err := svc.RegisterStudent(ctx, studentRequest()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := svc.RegisterStudent(ctx, studentRequest())
		if !errors.Is(err, ErrDuplicatePhone) {
			t.Fatalf("expected ErrDuplicatePhone, got %v", err)
		}
	})

	t.Run("same phone under another role", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		if _, err := svc.RegisterStudent(ctx, studentRequest()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := svc.RegisterTeacher(ctx, &TeacherRegisterRequest{
			PhoneNumber: "+998901234567",
			FullName:    "Aziz Karimov",
			Password:    "secret123",
			School:      "School 21",
			Subjects:    []string{"mathematics"},
		})
		if err != nil {
			t.Fatalf("expected registration under a different role to succeed, got %v", err)
		}
	})

	t.Run("unknown school id", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		req := studentRequest()
		schoolID := uint(777)
		req.SchoolID = &schoolID
		_, err := svc.RegisterStudent(ctx, req)
		if !errors.Is(err, ErrSchoolNotFound) {
			t.Fatalf("expected ErrSchoolNotFound, got %v", err)
		}
	})

	t.Run("rejects malformed phone", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		req := studentRequest()
		req.PhoneNumber = "901234567"
		if _, err := svc.RegisterStudent(ctx, req); err == nil {
			t.Fatal("expected validation error for a phone without +998 prefix")
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		if _, err := svc.RegisterStudent(ctx, studentRequest()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		resp, err := svc.Login(ctx, &LoginRequest{
			PhoneNumber: "+998901234567",
			Password:    "secret123",
			Role:        models.RoleStudent,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.AccessToken == "" {
			t.Error("expected a token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		if _, err := svc.RegisterStudent(ctx, studentRequest()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err := svc.Login(ctx, &LoginRequest{
			PhoneNumber: "+998901234567",
			Password:    "wrong-password",
			Role:        models.RoleStudent,
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown phone", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		_, err := svc.Login(ctx, &LoginRequest{
			PhoneNumber: "+998909999999",
			Password:    "secret123",
			Role:        models.RoleStudent,
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("registered role does not open other roles", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		if _, err := svc.RegisterStudent(ctx, studentRequest()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err := svc.Login(ctx, &LoginRequest{
			PhoneNumber: "+998901234567",
			Password:    "secret123",
			Role:        models.RoleAdmin,
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestCheckPhone(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(t)

	resp, err := svc.CheckPhone(ctx, &PhoneCheckRequest{
		PhoneNumber: "+998901234567",
		Role:        models.RoleStudent,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Exists {
		t.Error("expected phone to be available")
	}

	if _, err := svc.RegisterStudent(ctx, studentRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err = svc.CheckPhone(ctx, &PhoneCheckRequest{
		PhoneNumber: "+998901234567",
		Role:        models.RoleStudent,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Exists {
		t.Error("expected phone to be reported as taken")
	}
}
