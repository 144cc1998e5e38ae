package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// Source identifies this service in published events
	Source = "platform-service"

	// Version is the event envelope version
	Version = "1.0"
)

// Topics
const (
	TopicUsers    = "platform.users"
	TopicBlocking = "platform.blocking"
)

// Event types
const (
	EventUserRegistered    = "user.registered"
	EventExceptionRequest  = "blocking.exception_requested"
	EventExceptionReviewed = "blocking.exception_reviewed"
)

// Event is the envelope published to Kafka.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with identity and timing filled in
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    Source,
		Version:   Version,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes domain events to the message broker
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// UserRegisteredEvent is emitted after a successful registration.
type UserRegisteredEvent struct {
	UserID      uint   `json:"user_id"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	SchoolID    *uint  `json:"school_id,omitempty"`
}

// ExceptionRequestedEvent is emitted when a student files an emergency
// exception; consumers notify the reviewing administrators.
type ExceptionRequestedEvent struct {
	ExceptionID uint   `json:"exception_id"`
	StudentID   uint   `json:"student_id"`
	PackageName string `json:"package_name"`
	Reason      string `json:"reason"`
}

// ExceptionReviewedEvent is emitted on approval or rejection.
type ExceptionReviewedEvent struct {
	ExceptionID uint       `json:"exception_id"`
	StudentID   uint       `json:"student_id"`
	PackageName string     `json:"package_name"`
	Status      string     `json:"status"`
	AdminID     uint       `json:"admin_id"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
