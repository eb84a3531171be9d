package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"sado-notes-be/internal/constant"
	"sado-notes-be/internal/dto"
	"sado-notes-be/internal/entity"
	"sado-notes-be/pkg/events"
	"sado-notes-be/pkg/push"
	"sado-notes-be/pkg/scheduler"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) subscribe(t *testing.T, userID uuid.UUID, tokens ...string) {
	t.Helper()
	for _, token := range tokens {
		_, err := f.devices.Subscribe(context.Background(), userID, &dto.SubscribeDeviceRequest{FcmToken: token})
		require.NoError(t, err)
	}
}

func (f *fixture) noteWithReminder(t *testing.T, userID uuid.UUID, title, content string) uuid.UUID {
	t.Helper()
	res, err := f.notes.SaveNoteWithNotification(context.Background(), userID, &dto.SaveNoteWithNotificationRequest{
		SaveNoteRequest:  dto.SaveNoteRequest{Title: title, Content: content},
		NotifyPreference: dailyAt("09:00", "2026-10-31"),
	})
	require.NoError(t, err)
	return res.Id
}

func (f *fixture) setSummary(t *testing.T, noteID uuid.UUID, summary string) {
	t.Helper()
	ctx := context.Background()
	repo := f.uowFactory.NewUnitOfWork(ctx).NoteRepository()
	rows, err := repo.UpdateSummary(ctx, noteID, 1, summary)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)
}

func TestDispatch_DeliversToEveryDevice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	noteID := f.noteWithReminder(t, userID, "Standup", "Standup with team at 10 AM")
	f.setSummary(t, noteID, "Reminder: Team standup at 10 AM")
	f.subscribe(t, userID, "token-a", "token-b")

	result, err := f.reminders.Dispatch(ctx, scheduler.JobKey{UserID: userID, NoteID: noteID})
	require.NoError(t, err)

	assert.Equal(t, DispatchDelivered, result.Outcome)
	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 2, result.Delivered)
	assert.ElementsMatch(t, []string{"token-a", "token-b"}, f.sender.Sent())

	msg := f.sender.messages[0]
	assert.Equal(t, "Note Reminder", msg.Title)
	assert.Equal(t, "Standup: Reminder: Team standup at 10 AM", msg.Body)
	assert.Equal(t, noteID.String(), msg.Data["note_id"])
	assert.Equal(t, "/editor?id="+noteID.String(), msg.Data["link"])
	assert.Contains(t, f.events.Types(), events.ReminderSent)
}

func TestDispatch_SingleDeviceUsesDeliver(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	noteID := f.noteWithReminder(t, userID, "Solo", "content")
	f.subscribe(t, userID, "only")

	result, err := f.reminders.Dispatch(context.Background(), scheduler.JobKey{UserID: userID, NoteID: noteID})
	require.NoError(t, err)
	assert.Equal(t, DispatchDelivered, result.Outcome)
	assert.Equal(t, []string{"only"}, f.sender.Sent())
}

func TestDispatch_ExpiredSettingIsRemovedWithoutDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	noteID := f.noteWithReminder(t, userID, "Old", "content")
	f.subscribe(t, userID, "token-a")
	key := scheduler.JobKey{UserID: userID, NoteID: noteID}
	require.True(t, f.scheduler.Has(key))

	f.now = time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)

	result, err := f.reminders.Dispatch(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, DispatchExpired, result.Outcome)
	assert.Empty(t, f.sender.Sent())
	assert.False(t, f.scheduler.Has(key))

	setting, err := f.notifications.Get(ctx, noteID)
	require.NoError(t, err)
	assert.Nil(t, setting)
}

func TestDispatch_PrunesUnregisteredTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	noteID := f.noteWithReminder(t, userID, "Prune", "content")
	f.subscribe(t, userID, "alive", "dead")
	f.sender.outcomes["dead"] = push.Unregistered

	result, err := f.reminders.Dispatch(ctx, scheduler.JobKey{UserID: userID, NoteID: noteID})
	require.NoError(t, err)
	assert.Equal(t, DispatchDelivered, result.Outcome)
	assert.Equal(t, 1, result.Delivered)
	assert.Equal(t, 1, result.Pruned)

	tokens, err := f.devices.Tokens(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alive"}, tokens)
}

func TestDispatch_AllFailedReportsFailed(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	noteID := f.noteWithReminder(t, userID, "Quota", "content")
	f.subscribe(t, userID, "a", "b")
	f.sender.outcomes["a"] = push.QuotaExceeded
	f.sender.outcomes["b"] = push.Skipped

	result, err := f.reminders.Dispatch(context.Background(), scheduler.JobKey{UserID: userID, NoteID: noteID})
	require.NoError(t, err)
	assert.Equal(t, DispatchFailed, result.Outcome)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Pruned)
}

func TestDispatch_NoDevices(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	noteID := f.noteWithReminder(t, userID, "Lonely", "content")

	result, err := f.reminders.Dispatch(context.Background(), scheduler.JobKey{UserID: userID, NoteID: noteID})
	require.NoError(t, err)
	assert.Equal(t, DispatchNoDevices, result.Outcome)
	assert.True(t, f.scheduler.Has(scheduler.JobKey{UserID: userID, NoteID: noteID}))
}

func TestDispatch_OrphanJobIsCancelled(t *testing.T) {
	f := newFixture(t)
	key := scheduler.JobKey{UserID: uuid.New(), NoteID: uuid.New()}
	require.NoError(t, f.scheduler.Install(key, scheduler.Trigger{Cadence: scheduler.Hourly}))

	result, err := f.reminders.Dispatch(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, DispatchCancelled, result.Outcome)
	assert.False(t, f.scheduler.Has(key))
}

func TestDispatch_MissingNoteCancelsJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	f.subscribe(t, userID, "token-a")

	noteID := f.noteWithReminder(t, userID, "Standup", "Standup with team at 10 AM")
	key := scheduler.JobKey{UserID: userID, NoteID: noteID}
	require.True(t, f.scheduler.Has(key))

	// The setting row outlives the note when the note is removed behind the service.
	rows, err := f.uowFactory.NewUnitOfWork(ctx).NoteRepository().Delete(ctx, noteID, userID)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	result, err := f.reminders.Dispatch(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, DispatchNoteMissing, result.Outcome)
	assert.False(t, f.scheduler.Has(key))
	assert.Empty(t, f.sender.Sent())
}

func TestBuildReminderMessage(t *testing.T) {
	id := uuid.New()

	generic := BuildReminderMessage(&entity.Note{Id: id, Title: "Groceries", Summary: strPtr(constant.SummaryPlaceholderCreate)})
	assert.Equal(t, "Reminder for note: Groceries", generic.Body)

	untitled := BuildReminderMessage(&entity.Note{Id: id})
	assert.Equal(t, "Reminder for note: Untitled Note", untitled.Body)

	long := strings.Repeat("x", 250)
	truncated := BuildReminderMessage(&entity.Note{Id: id, Title: "T", Summary: &long})
	assert.Equal(t, "T: "+strings.Repeat("x", 200)+"...", truncated.Body)
}

func TestRestoreSchedules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	live := f.noteWithReminder(t, userID, "live", "c")
	expiring, err := f.notes.SaveNoteWithNotification(ctx, userID, &dto.SaveNoteWithNotificationRequest{
		SaveNoteRequest:  dto.SaveNoteRequest{Title: "soon"},
		NotifyPreference: dailyAt("10:00", "2026-10-16"),
	})
	require.NoError(t, err)

	// A restart: fresh job table, clock moved past the second expiry.
	f.scheduler = scheduler.New(scheduler.Options{Strict: true})
	f.reminders.scheduler = f.scheduler
	f.now = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	restored, err := f.reminders.RestoreSchedules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)
	assert.True(t, f.scheduler.Has(scheduler.JobKey{UserID: userID, NoteID: live}))
	assert.False(t, f.scheduler.Has(scheduler.JobKey{UserID: userID, NoteID: expiring.Id}))

	setting, err := f.notifications.Get(ctx, expiring.Id)
	require.NoError(t, err)
	assert.Nil(t, setting)
}
