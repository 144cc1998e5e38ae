package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/validator"
)

func newScheduleFixture(t *testing.T) (ScheduleService, *mockRepository, *models.School) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	svc := NewScheduleService(repo, logger, validator.New())

	school := &models.School{Name: "School 21", Latitude: 41.31, Longitude: 69.28, RadiusMeters: 250}
	if err := repo.School().Create(context.Background(), school); err != nil {
		t.Fatalf("failed to seed school: %v", err)
	}

	return svc, repo, school
}

func TestReplaceWindows(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the whole timetable", func(t *testing.T) {
		svc, repo, school := newScheduleFixture(t)

		old := []*models.ScheduleWindow{{SchoolID: school.ID, Weekday: 6, StartMinute: 600, EndMinute: 720}}
		if err := repo.Schedule().ReplaceWindows(ctx, school.ID, old); err != nil {
			t.Fatalf("failed to seed windows: %v", err)
		}

		windows, err := svc.ReplaceWindows(ctx, school.ID, []ScheduleWindowRequest{
			{Weekday: 1, StartMinute: 480, EndMinute: 840},
			{Weekday: 2, StartMinute: 480, EndMinute: 840},
		}, 42)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(windows) != 2 {
			t.Fatalf("expected 2 windows, got %d", len(windows))
		}

		stored, err := repo.Schedule().ListWindows(ctx, school.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(stored) != 2 {
			t.Errorf("old windows were not replaced, got %d", len(stored))
		}
		for _, w := range stored {
			if w.Weekday == 6 {
				t.Error("Saturday window from the old timetable survived")
			}
		}
	})

	t.Run("rejects inverted window", func(t *testing.T) {
		svc, _, school := newScheduleFixture(t)

		_, err := svc.ReplaceWindows(ctx, school.ID, []ScheduleWindowRequest{
			{Weekday: 1, StartMinute: 840, EndMinute: 480},
		}, 42)
		if err == nil {
			t.Fatal("expected validation error for end before start")
		}
	})

	t.Run("unknown school", func(t *testing.T) {
		svc, _, _ := newScheduleFixture(t)

		_, err := svc.ReplaceWindows(ctx, 777, []ScheduleWindowRequest{
			{Weekday: 1, StartMinute: 480, EndMinute: 840},
		}, 42)
		if !errors.Is(err, ErrSchoolNotFound) {
			t.Fatalf("expected ErrSchoolNotFound, got %v", err)
		}
	})
}

func TestClosures(t *testing.T) {
	ctx := context.Background()

	t.Run("kind defaults to holiday", func(t *testing.T) {
		svc, _, school := newScheduleFixture(t)

		closure, err := svc.AddClosure(ctx, school.ID, &ScheduleClosureRequest{
			Date: time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC),
			Name: "Navruz",
		}, 42)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if closure.Kind != models.ClosureHoliday {
			t.Errorf("expected holiday kind, got %s", closure.Kind)
		}
	})

	t.Run("remove missing closure", func(t *testing.T) {
		svc, _, school := newScheduleFixture(t)

		err := svc.RemoveClosure(ctx, school.ID, 777, 42)
		if !errors.Is(err, ErrClosureNotFound) {
			t.Fatalf("expected ErrClosureNotFound, got %v", err)
		}
	})
}

func TestGetMonthSchedule(t *testing.T) {
	ctx := context.Background()
	svc, repo, school := newScheduleFixture(t)

	windows := []*models.ScheduleWindow{
		{SchoolID: school.ID, Weekday: 1, StartMinute: 480, EndMinute: 840},
	}
	if err := repo.Schedule().ReplaceWindows(ctx, school.ID, windows); err != nil {
		t.Fatalf("failed to seed windows: %v", err)
	}

	closures := []*models.ScheduleClosure{
		{SchoolID: school.ID, Date: time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC), Name: "Navruz", Kind: models.ClosureHoliday},
		{SchoolID: school.ID, Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), Name: "Olympiad", Kind: models.ClosureSpecialEvent, BlockingModified: true},
		{SchoolID: school.ID, Date: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), Name: "Out of month", Kind: models.ClosureHoliday},
	}
	for _, c := range closures {
		if err := repo.Schedule().CreateClosure(ctx, c); err != nil {
			t.Fatalf("failed to seed closure: %v", err)
		}
	}

	sched, err := svc.GetMonthSchedule(ctx, school.ID, 2026, time.March)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sched.Windows) != 1 {
		t.Errorf("expected 1 window, got %d", len(sched.Windows))
	}
	if len(sched.Holidays) != 1 || sched.Holidays[0].Name != "Navruz" {
		t.Errorf("unexpected holidays %+v", sched.Holidays)
	}
	if len(sched.SpecialEvents) != 1 || sched.SpecialEvents[0].Name != "Olympiad" {
		t.Errorf("unexpected special events %+v", sched.SpecialEvents)
	}
}

func TestGetMonthScheduleForStudent(t *testing.T) {
	ctx := context.Background()
	svc, repo, school := newScheduleFixture(t)

	assigned := &models.User{
		PhoneNumber:    "+998901112233",
		Role:           models.RoleStudent,
		FullName:       "Aziz Karimov",
		StudentProfile: &models.StudentProfile{School: school.Name, SchoolID: &school.ID, Grade: 9},
	}
	unassigned := &models.User{
		PhoneNumber:    "+998907778899",
		Role:           models.RoleStudent,
		FullName:       "Dilnoza Rashidova",
		StudentProfile: &models.StudentProfile{School: "unknown", Grade: 7},
	}
	for _, u := range []*models.User{assigned, unassigned} {
		if err := repo.User().Create(ctx, u); err != nil {
			t.Fatalf("failed to seed student: %v", err)
		}
	}
	windows := []*models.ScheduleWindow{{SchoolID: school.ID, Weekday: 1, StartMinute: 480, EndMinute: 840}}
	if err := repo.Schedule().ReplaceWindows(ctx, school.ID, windows); err != nil {
		t.Fatalf("failed to seed windows: %v", err)
	}

	sched, err := svc.GetMonthScheduleForStudent(ctx, assigned.ID, 2026, time.March)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sched.Windows) != 1 {
		t.Errorf("expected the school's windows, got %+v", sched.Windows)
	}

	sched, err = svc.GetMonthScheduleForStudent(ctx, unassigned.ID, 2026, time.March)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sched.Windows) != 0 {
		t.Errorf("expected an empty schedule without a school, got %+v", sched.Windows)
	}
}
