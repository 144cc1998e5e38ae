package validator

import (
	"testing"
	"time"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
)

func TestUzPhoneRule(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		phone string
		valid bool
	}{
		{"valid mobile", "+998901234567", true},
		{"valid alternate prefix", "+998331234567", true},
		{"missing plus", "998901234567", false},
		{"wrong country code", "+797901234567", false},
		{"too short", "+99890123456", false},
		{"too long", "+9989012345678", false},
		{"letters in number", "+99890123456a", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Var(tt.phone, "uz_phone")
			if tt.valid && err != nil {
				t.Errorf("expected %q to be valid, got %v", tt.phone, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("expected %q to be invalid", tt.phone)
			}
		})
	}
}

func TestGradeRangeRule(t *testing.T) {
	v := New()

	for _, grade := range []int{1, 6, 11} {
		if err := v.Var(grade, "grade_range"); err != nil {
			t.Errorf("expected grade %d to be valid, got %v", grade, err)
		}
	}
	for _, grade := range []int{0, 12, -3} {
		if err := v.Var(grade, "grade_range"); err == nil {
			t.Errorf("expected grade %d to be invalid", grade)
		}
	}
}

func TestAppPackageRule(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		pkg   string
		valid bool
	}{
		{"android package", "com.instagram.android", true},
		{"underscores and digits", "uz.my_app2.client", true},
		{"single segment", "instagram", false},
		{"empty segment", "com..android", false},
		{"trailing dot", "com.instagram.", false},
		{"space in segment", "com.insta gram", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Var(tt.pkg, "app_package")
			if tt.valid && err != nil {
				t.Errorf("expected %q to be valid, got %v", tt.pkg, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("expected %q to be invalid", tt.pkg)
			}
		})
	}
}

func TestValidateStruct(t *testing.T) {
	v := New()

	req := &StudentRegisterRequest{
		PhoneNumber: "901234567",
		FullName:    "A",
		Password:    "123",
		School:      "School 21",
		Grade:       15,
	}

	errs := v.Validate(req)
	if len(errs) == 0 {
		t.Fatal("expected validation errors")
	}

	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, want := range []string{"phonenumber", "fullname", "password", "grade"} {
		if !fields[want] {
			t.Errorf("expected an error on %s, got %+v", want, errs)
		}
	}
}

func TestBusinessValidator(t *testing.T) {
	bv := NewBusinessValidator(New())

	t.Run("blank school name", func(t *testing.T) {
		errs := bv.ValidateStudentRegister(&StudentRegisterRequest{
			PhoneNumber: "+998901234567",
			FullName:    "Aziz Karimov",
			Password:    "secret123",
			School:      "   ",
			Grade:       9,
		})
		if len(errs) == 0 {
			t.Fatal("expected error for blank school")
		}
	})

	t.Run("inverted schedule window", func(t *testing.T) {
		errs := bv.ValidateScheduleWindow(&ScheduleWindowRequest{
			Weekday:     1,
			StartMinute: 840,
			EndMinute:   480,
		})
		if len(errs) == 0 {
			t.Fatal("expected error for end before start")
		}
	})

	t.Run("inverted rule window", func(t *testing.T) {
		errs := bv.ValidateBlockingRule(&BlockingRuleRequest{
			PackageName: "com.instagram.android",
			AppName:     "Instagram",
			Window:      &RuleWindowRequest{StartMinute: 600, EndMinute: 540},
		})
		if len(errs) == 0 {
			t.Fatal("expected error for inverted window")
		}
	})

	t.Run("holiday cannot modify blocking", func(t *testing.T) {
		errs := bv.ValidateScheduleClosure(&ScheduleClosureRequest{
			Date:             time.Now().AddDate(0, 1, 0),
			Name:             "Navruz",
			Kind:             models.ClosureHoliday,
			BlockingModified: true,
		})
		if len(errs) == 0 {
			t.Fatal("expected error for blocking_modified on a holiday")
		}
	})

	t.Run("valid special event", func(t *testing.T) {
		errs := bv.ValidateScheduleClosure(&ScheduleClosureRequest{
			Date:             time.Now().AddDate(0, 1, 0),
			Name:             "Olympiad",
			Kind:             models.ClosureSpecialEvent,
			BlockingModified: true,
		})
		if len(errs) != 0 {
			t.Fatalf("unexpected errors: %+v", errs)
		}
	})
}
