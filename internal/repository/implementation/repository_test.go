package implementation

import (
	"context"
	"testing"
	"time"

	"sado-notes-be/internal/entity"
	"sado-notes-be/internal/model"
	"sado-notes-be/internal/repository/specification"
	"sado-notes-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewInMemorySQLite()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func TestNoteRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDB(t))
	userID := uuid.New()

	note := &entity.Note{
		UserId:   userID,
		Title:    "Standup",
		Content:  "Standup with team at 10 AM",
		Summary:  strPtr("placeholder"),
		Metadata: map[string]interface{}{"color": "blue"},
	}
	require.NoError(t, repo.Create(ctx, note))
	assert.NotEqual(t, uuid.Nil, note.Id)
	assert.Equal(t, int64(1), note.Revision)

	found, err := repo.FindOne(ctx, specification.ByID{ID: note.Id}, specification.OwnedBy{UserID: userID})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Standup", found.Title)
	assert.Equal(t, "blue", found.Metadata["color"])

	other, err := repo.FindOne(ctx, specification.ByID{ID: note.Id}, specification.OwnedBy{UserID: uuid.New()})
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestNoteRepository_UpdateBumpsRevisionAndIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDB(t))
	userID := uuid.New()

	note := &entity.Note{UserId: userID, Title: "a", Content: "b", Summary: strPtr("s")}
	require.NoError(t, repo.Create(ctx, note))

	rows, err := repo.Update(ctx, &entity.Note{Id: note.Id, UserId: uuid.New(), Title: "hijack"})
	require.NoError(t, err)
	assert.Zero(t, rows)

	rows, err = repo.Update(ctx, &entity.Note{Id: note.Id, UserId: userID, Title: "a2", Content: "b2", Summary: strPtr("s2")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	found, err := repo.FindOne(ctx, specification.ByID{ID: note.Id})
	require.NoError(t, err)
	assert.Equal(t, "a2", found.Title)
	assert.Equal(t, int64(2), found.Revision)
}

func TestNoteRepository_UpdateSummaryGuardedByRevision(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDB(t))
	userID := uuid.New()

	note := &entity.Note{UserId: userID, Title: "a", Content: "b", Summary: strPtr("pending")}
	require.NoError(t, repo.Create(ctx, note))

	_, err := repo.Update(ctx, &entity.Note{Id: note.Id, UserId: userID, Title: "a", Content: "newer", Summary: strPtr("pending")})
	require.NoError(t, err)

	rows, err := repo.UpdateSummary(ctx, note.Id, 1, "stale summary")
	require.NoError(t, err)
	assert.Zero(t, rows)

	rows, err = repo.UpdateSummary(ctx, note.Id, 2, "fresh summary")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	found, err := repo.FindOne(ctx, specification.ByID{ID: note.Id})
	require.NoError(t, err)
	assert.Equal(t, "fresh summary", found.SummaryText())
}

func TestNoteRepository_SummaryAfterDeleteIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDB(t))
	userID := uuid.New()

	note := &entity.Note{UserId: userID, Title: "a", Content: "b"}
	require.NoError(t, repo.Create(ctx, note))

	rows, err := repo.Delete(ctx, note.Id, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.UpdateSummary(ctx, note.Id, note.Revision, "late")
	require.NoError(t, err)
	assert.Zero(t, rows)

	found, err := repo.FindOne(ctx, specification.ByID{ID: note.Id})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestNotificationSettingRepository_UpsertReplacesByNote(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationSettingRepository(newTestDB(t))
	userID, noteID := uuid.New(), uuid.New()
	end := time.Now().Add(24 * time.Hour).UTC()

	first := &entity.NotificationSetting{
		NoteId: noteID, UserId: userID, Notify: true,
		NotifyType: entity.NotifyTypeDaily, NotifyTime: strPtr("09:00"), EndDate: &end,
	}
	require.NoError(t, repo.Upsert(ctx, first))

	second := &entity.NotificationSetting{
		NoteId: noteID, UserId: userID, Notify: true,
		NotifyType: entity.NotifyTypeHourly, EndDate: &end,
	}
	require.NoError(t, repo.Upsert(ctx, second))

	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, entity.NotifyTypeHourly, second.NotifyType)
	assert.Nil(t, second.NotifyTime)

	all, err := repo.FindAll(ctx, specification.ByNoteID{NoteID: noteID})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	enabled, err := repo.FindAll(ctx, specification.NotifyEnabled{})
	require.NoError(t, err)
	assert.Len(t, enabled, 1)
}

func TestNotificationSettingRepository_DeleteByNoteIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationSettingRepository(newTestDB(t))
	userID, noteID := uuid.New(), uuid.New()

	require.NoError(t, repo.Upsert(ctx, &entity.NotificationSetting{NoteId: noteID, UserId: userID, NotifyType: "daily"}))

	rows, err := repo.DeleteByNote(ctx, noteID, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, rows)

	rows, err = repo.DeleteByNote(ctx, noteID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	found, err := repo.FindOne(ctx, specification.ByNoteID{NoteID: noteID})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestPushSubscriptionRepository_UpsertMovesOwnership(t *testing.T) {
	ctx := context.Background()
	repo := NewPushSubscriptionRepository(newTestDB(t))
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, repo.Upsert(ctx, &entity.PushSubscription{FcmToken: "token-1", UserId: alice}))
	require.NoError(t, repo.Upsert(ctx, &entity.PushSubscription{FcmToken: "token-1", UserId: bob}))

	aliceSubs, err := repo.FindAll(ctx, specification.OwnedBy{UserID: alice})
	require.NoError(t, err)
	assert.Empty(t, aliceSubs)

	bobSubs, err := repo.FindAll(ctx, specification.OwnedBy{UserID: bob})
	require.NoError(t, err)
	require.Len(t, bobSubs, 1)
	assert.Equal(t, "token-1", bobSubs[0].FcmToken)
}

func TestPushSubscriptionRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewPushSubscriptionRepository(newTestDB(t))
	userID := uuid.New()

	for _, token := range []string{"t1", "t2", "t3"} {
		require.NoError(t, repo.Upsert(ctx, &entity.PushSubscription{FcmToken: token, UserId: userID}))
	}

	rows, err := repo.DeleteByToken(ctx, uuid.New(), "t1")
	require.NoError(t, err)
	assert.Zero(t, rows)

	rows, err = repo.DeleteByToken(ctx, userID, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.DeleteTokens(ctx, []string{"t2", "missing"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.DeleteTokens(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, rows)

	left, err := repo.FindAll(ctx, specification.OwnedBy{UserID: userID})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "t3", left[0].FcmToken)
}
