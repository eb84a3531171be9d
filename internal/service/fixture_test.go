package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"sado-notes-be/internal/dto"
	"sado-notes-be/internal/model"
	"sado-notes-be/internal/pkg/logger"
	"sado-notes-be/internal/repository/unitofwork"
	"sado-notes-be/pkg/database"
	"sado-notes-be/pkg/events"
	"sado-notes-be/pkg/push"
	"sado-notes-be/pkg/scheduler"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeSender answers every token with the outcome registered for it, or
// Delivered when none is.
type fakeSender struct {
	mu       sync.Mutex
	outcomes map[string]push.Outcome
	sent     []string
	messages []push.Message
}

func newFakeSender() *fakeSender {
	return &fakeSender{outcomes: map[string]push.Outcome{}}
}

func (f *fakeSender) result(token string) push.Result {
	outcome, ok := f.outcomes[token]
	if !ok {
		outcome = push.Delivered
	}
	return push.Result{Token: token, Outcome: outcome}
}

func (f *fakeSender) Deliver(_ context.Context, token string, msg push.Message) push.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, token)
	f.messages = append(f.messages, msg)
	return f.result(token)
}

func (f *fakeSender) DeliverMany(_ context.Context, tokens []string, msg push.Message) []push.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	out := make([]push.Result, 0, len(tokens))
	for _, token := range tokens {
		f.sent = append(f.sent, token)
		out = append(out, f.result(token))
	}
	return out
}

func (f *fakeSender) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []dto.PublishSummarizeNoteMessage
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	var msg dto.PublishSummarizeNoteMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	f.mu.Lock()
	f.messages = append(f.messages, msg)
	f.mu.Unlock()
	return nil
}

func (f *fakePublisher) Last() dto.PublishSummarizeNoteMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[len(f.messages)-1]
}

type recordingEvents struct {
	mu    sync.Mutex
	types []string
}

func (r *recordingEvents) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	r.types = append(r.types, e.EventType())
	r.mu.Unlock()
	return nil
}

func (r *recordingEvents) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}

type fixture struct {
	db            *gorm.DB
	uowFactory    unitofwork.RepositoryFactory
	scheduler     *scheduler.Scheduler
	sender        *fakeSender
	publisher     *fakePublisher
	events        *recordingEvents
	notifications *notificationService
	devices       IDeviceService
	reminders     *reminderService
	notes         INoteService
	now           time.Time
}

// fixtureNow is a Thursday morning in UTC.
var fixtureNow = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewInMemorySQLite()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{
		db:         db,
		uowFactory: unitofwork.NewRepositoryFactory(db),
		scheduler:  scheduler.New(scheduler.Options{Strict: true}),
		sender:     newFakeSender(),
		publisher:  &fakePublisher{},
		events:     &recordingEvents{},
		now:        fixtureNow,
	}
	clock := func() time.Time { return f.now }
	log := logger.NewNopLogger()

	f.notifications = NewNotificationService(f.uowFactory, time.UTC).(*notificationService)
	f.notifications.now = clock
	f.devices = NewDeviceService(f.uowFactory, f.events, log)
	f.reminders = NewReminderService(
		f.uowFactory, f.scheduler, f.notifications, f.devices, f.sender, f.events, log, nil,
	).(*reminderService)
	f.reminders.now = clock
	f.notes = NewNoteService(f.uowFactory, f.publisher, f.notifications, f.reminders, f.events, log)
	return f
}

func strPtr(s string) *string { return &s }
