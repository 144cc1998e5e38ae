package validator

import (
	"strings"
	"time"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
)

// BusinessValidator layers domain rules on top of struct-tag validation.
type BusinessValidator struct {
	validator *Validator
}

func NewBusinessValidator(v *Validator) *BusinessValidator {
	return &BusinessValidator{validator: v}
}

// ValidateStudentRegister validates student registration business rules
func (bv *BusinessValidator) ValidateStudentRegister(req *StudentRegisterRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.validator.Validate(req)...)

	if strings.TrimSpace(req.School) == "" {
		errors = append(errors, ValidationError{
			Field:   "school",
			Message: "cannot be blank",
			Value:   req.School,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateScheduleWindow validates a single school-hours window
func (bv *BusinessValidator) ValidateScheduleWindow(req *ScheduleWindowRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.validator.Validate(req)...)

	if req.EndMinute <= req.StartMinute {
		errors = append(errors, ValidationError{
			Field:   "end_minute",
			Message: "must be after start_minute",
			Value:   req.EndMinute,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateBlockingRule validates a blocking rule, including its optional
// daily window
func (bv *BusinessValidator) ValidateBlockingRule(req *BlockingRuleRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.validator.Validate(req)...)

	if req.Window != nil && req.Window.EndMinute <= req.Window.StartMinute {
		errors = append(errors, ValidationError{
			Field:   "window.end_minute",
			Message: "must be after window.start_minute",
			Value:   req.Window.EndMinute,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateScheduleClosure validates a holiday or special-event entry
func (bv *BusinessValidator) ValidateScheduleClosure(req *ScheduleClosureRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.validator.Validate(req)...)

	if req.Kind == models.ClosureHoliday && req.BlockingModified {
		errors = append(errors, ValidationError{
			Field:   "blocking_modified",
			Message: "holidays suspend blocking entirely",
			Value:   req.BlockingModified,
			Rule:    "business_logic",
		})
	}

	if req.Date.Before(time.Now().AddDate(-1, 0, 0)) {
		errors = append(errors, ValidationError{
			Field:   "date",
			Message: "is too far in the past",
			Value:   req.Date,
			Rule:    "business_logic",
		})
	}

	return errors
}
