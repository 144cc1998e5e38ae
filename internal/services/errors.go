package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ===== SENTINEL ERRORS =====

var (
	// Identity
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrDuplicatePhone  = errors.New("phone number already registered for this role")

	// Credentials. Login failures collapse into this single error so the
	// response does not reveal whether the phone number is registered.
	ErrInvalidCredentials = errors.New("invalid phone number or password")

	// Reference data
	ErrSchoolNotFound  = errors.New("school not found")
	ErrClosureNotFound = errors.New("schedule closure not found")

	// Blocking
	ErrRuleNotFound      = errors.New("blocking rule not found")
	ErrRuleExists        = errors.New("blocking rule already exists for this app")
	ErrExceptionNotFound = errors.New("emergency exception not found")
	ErrAlreadyReviewed   = errors.New("emergency exception already reviewed")
	ErrRateLimited       = errors.New("too many emergency exception requests")

	// Access
	ErrForbidden = errors.New("operation not permitted for this user")
)

// ===== ERROR TYPES =====

// PermissionError carries the denied subject and action for logging; handlers
// map it to 403.
type PermissionError struct {
	UserID   uint
	Resource string
	ID       uint
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ID, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewPermissionError(userID uint, id uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		ID:       id,
		Action:   action,
		Reason:   reason,
	}
}

// BusinessRuleError marks a request that is well-formed but violates a domain
// rule; handlers map it to 422.
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
	}
}

// isNotFound reports whether err stems from a missing database record
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicateKey reports whether err stems from a unique constraint violation.
// Requires TranslateError on the gorm dialector.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
