package events

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent(EventUserRegistered, &UserRegisteredEvent{
		UserID:      1,
		PhoneNumber: "+998901234567",
		Role:        "student",
	})

	if event.ID == "" {
		t.Error("expected a generated event ID")
	}
	if event.Type != EventUserRegistered {
		t.Errorf("unexpected type %q", event.Type)
	}
	if event.Source != Source {
		t.Errorf("unexpected source %q", event.Source)
	}
	if event.Version != Version {
		t.Errorf("unexpected version %q", event.Version)
	}
	if time.Since(event.Timestamp) > time.Minute {
		t.Errorf("unexpected timestamp %v", event.Timestamp)
	}
}

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := NewMockEventPublisher(logger)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		event := NewEvent(EventExceptionRequest, &ExceptionRequestedEvent{ExceptionID: uint(i + 1)})
		if err := publisher.Publish(ctx, TopicBlocking, event); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 3 {
		t.Fatalf("expected 3 events, got %d", len(published))
	}

	publisher.ClearEvents()
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Error("expected cleared event list")
	}

	if err := publisher.Close(); err != nil {
		t.Errorf("unexpected error on close: %v", err)
	}
}
