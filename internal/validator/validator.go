package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes a single failed field check.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors aggregates field errors; it satisfies the error interface
// so services can return it directly.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToValidationErrors converts go-playground validator errors into our
// structured form.
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var result ValidationErrors
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			result = append(result, ValidationError{
				Field:   strings.ToLower(fe.Field()),
				Message: messageForTag(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return result
	}

	return ValidationErrors{{Field: "request", Message: err.Error()}}
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uz_phone":
		return "must be in format +998XXXXXXXXX"
	case "grade_range":
		return "must be between 1 and 11"
	case "app_package":
		return "must be a valid app package name"
	case "minute_of_day":
		return "must be between 0 and 1440"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Validator wraps go-playground validator with the platform's custom rules.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with all custom rules registered.
func New() *Validator {
	v := &Validator{validate: validator.New()}
	v.registerRules()
	return v
}

// Validate checks struct tags and returns structured field errors, or nil.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// Var validates a single value against a rule expression.
func (v *Validator) Var(value interface{}, tag string) error {
	return v.validate.Var(value, tag)
}

func (v *Validator) registerRules() {
	// Uzbekistan national phone format: +998 followed by exactly 9 digits
	v.validate.RegisterValidation("uz_phone", func(fl validator.FieldLevel) bool {
		phone := strings.TrimSpace(fl.Field().String())
		if !strings.HasPrefix(phone, "+998") || len(phone) != 13 {
			return false
		}
		for _, r := range phone[4:] {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})

	// School grade bounds
	v.validate.RegisterValidation("grade_range", func(fl validator.FieldLevel) bool {
		grade := fl.Field().Int()
		return grade >= 1 && grade <= 11
	})

	// Android-style package names: dot-separated lowercase segments
	v.validate.RegisterValidation("app_package", func(fl validator.FieldLevel) bool {
		pkg := fl.Field().String()
		if pkg == "" || len(pkg) > 255 {
			return false
		}
		segments := strings.Split(pkg, ".")
		if len(segments) < 2 {
			return false
		}
		for _, seg := range segments {
			if seg == "" {
				return false
			}
			for _, r := range seg {
				if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
					return false
				}
			}
		}
		return true
	})

	// Minutes counted from local midnight
	v.validate.RegisterValidation("minute_of_day", func(fl validator.FieldLevel) bool {
		m := fl.Field().Int()
		return m >= 0 && m <= 1440
	})
}
