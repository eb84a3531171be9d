package events

import (
	"context"
	"time"
)

const (
	NoteCreated        = "NOTE_CREATED"
	NoteUpdated        = "NOTE_UPDATED"
	NoteDeleted        = "NOTE_DELETED"
	ReminderScheduled  = "REMINDER_SCHEDULED"
	ReminderCancelled  = "REMINDER_CANCELLED"
	ReminderSent       = "REMINDER_SENT"
	DeviceSubscribed   = "DEVICE_SUBSCRIBED"
	DeviceUnsubscribed = "DEVICE_UNSUBSCRIBED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "NOTE_CREATED").
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

// Publisher ships events to whatever bus is configured.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NopPublisher drops every event. Used when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
