package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sado-notes-be/internal/dto"
	"sado-notes-be/internal/entity"
	"sado-notes-be/internal/pkg/logger"
	"sado-notes-be/internal/pkg/serverutils"
	"sado-notes-be/internal/service"
	"sado-notes-be/pkg/apperror"
	"sado-notes-be/pkg/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeNoteService struct {
	service.INoteService
	saveWithNotification func(ctx context.Context, userId uuid.UUID, req *dto.SaveNoteWithNotificationRequest) (*dto.NoteResponse, error)
	show                 func(ctx context.Context, userId, id uuid.UUID) (*dto.NoteResponse, error)
	deleteNote           func(ctx context.Context, userId, id uuid.UUID) error
}

func (f *fakeNoteService) SaveNoteWithNotification(ctx context.Context, userId uuid.UUID, req *dto.SaveNoteWithNotificationRequest) (*dto.NoteResponse, error) {
	return f.saveWithNotification(ctx, userId, req)
}

func (f *fakeNoteService) Show(ctx context.Context, userId, id uuid.UUID) (*dto.NoteResponse, error) {
	return f.show(ctx, userId, id)
}

func (f *fakeNoteService) DeleteNote(ctx context.Context, userId, id uuid.UUID) error {
	return f.deleteNote(ctx, userId, id)
}

type fakeDeviceService struct {
	service.IDeviceService
	subscribe func(ctx context.Context, userId uuid.UUID, req *dto.SubscribeDeviceRequest) (*dto.DeviceResponse, error)
}

func (f *fakeDeviceService) Subscribe(ctx context.Context, userId uuid.UUID, req *dto.SubscribeDeviceRequest) (*dto.DeviceResponse, error) {
	return f.subscribe(ctx, userId, req)
}

type fakeNotificationService struct {
	service.INotificationService
	get func(ctx context.Context, noteId uuid.UUID) (*entity.NotificationSetting, error)
}

func (f *fakeNotificationService) Get(ctx context.Context, noteId uuid.UUID) (*entity.NotificationSetting, error) {
	return f.get(ctx, noteId)
}

type fakeReminderService struct {
	service.IReminderService
	next *time.Time
}

func (f *fakeReminderService) NextFire(uuid.UUID, uuid.UUID) *time.Time { return f.next }

func newTestApp(notes service.INoteService, devices service.IDeviceService, settings service.INotificationService, reminders service.IReminderService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler(logger.NewNopLogger())})
	api := app.Group("/api")
	auth := serverutils.JwtMiddleware(testSecret)
	NewNoteController(notes).RegisterRoutes(api, auth)
	NewNotificationController(devices, settings, reminders).RegisterRoutes(api, auth)
	return app
}

func bearer(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func doJSON(t *testing.T, app *fiber.App, method, path, auth string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestNoteController_RequiresToken(t *testing.T) {
	app := newTestApp(&fakeNoteService{}, &fakeDeviceService{}, &fakeNotificationService{}, &fakeReminderService{})

	status, body := doJSON(t, app, http.MethodGet, "/api/notes/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["error_code"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/notes/"+uuid.NewString(), "Bearer nope", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestNoteController_CreateWithNotification(t *testing.T) {
	userID := uuid.New()
	noteID := uuid.New()

	var got *dto.SaveNoteWithNotificationRequest
	notes := &fakeNoteService{
		saveWithNotification: func(_ context.Context, uid uuid.UUID, req *dto.SaveNoteWithNotificationRequest) (*dto.NoteResponse, error) {
			assert.Equal(t, userID, uid)
			got = req
			notifyType := "daily"
			return &dto.NoteResponse{Id: noteID, UserId: uid, Title: req.Title, Notify: true, NotifyType: &notifyType, NotifyTime: req.NotifyTime}, nil
		},
	}
	app := newTestApp(notes, &fakeDeviceService{}, &fakeNotificationService{}, &fakeReminderService{})

	status, body := doJSON(t, app, http.MethodPost, "/api/notes/notify", bearer(t, userID), map[string]any{
		"title":       "Standup",
		"content":     "Standup with team at 10 AM",
		"notify":      true,
		"notify_type": "daily",
		"notify_time": "09:00",
		"end_date":    "2026-10-31",
	})
	require.Equal(t, http.StatusCreated, status)
	require.NotNil(t, got)
	assert.Equal(t, "Standup", got.Title)
	assert.True(t, got.Notify)
	assert.Equal(t, "2026-10-31", *got.EndDate)

	data := body["data"].(map[string]any)
	assert.Equal(t, noteID.String(), data["id"])
	assert.Equal(t, "09:00", data["notify_time"])
}

func TestNoteController_RejectsOverlongTitle(t *testing.T) {
	app := newTestApp(&fakeNoteService{}, &fakeDeviceService{}, &fakeNotificationService{}, &fakeReminderService{})

	status, body := doJSON(t, app, http.MethodPost, "/api/notes/notify", bearer(t, uuid.New()), map[string]any{
		"title":    strings.Repeat("t", 256),
		"notify":   true,
		"end_date": "2026-10-31",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["error_code"])
	details := body["details"].(map[string]any)
	assert.Contains(t, details, "title")
}

func TestNoteController_NotifyTimeIsCheckedByTheService(t *testing.T) {
	var calls int
	notes := &fakeNoteService{
		saveWithNotification: func(_ context.Context, uid uuid.UUID, req *dto.SaveNoteWithNotificationRequest) (*dto.NoteResponse, error) {
			calls++
			if req.NotifyType == "daily" {
				if _, _, err := scheduler.ParseTimeOfDay(*req.NotifyTime); err != nil {
					return nil, err
				}
			}
			return &dto.NoteResponse{Id: uuid.New(), UserId: uid}, nil
		},
	}
	app := newTestApp(notes, &fakeDeviceService{}, &fakeNotificationService{}, &fakeReminderService{})
	auth := bearer(t, uuid.New())

	// Hourly reminders ignore the time of day, so a malformed one still saves.
	status, _ := doJSON(t, app, http.MethodPost, "/api/notes/notify", auth, map[string]any{
		"notify":      true,
		"notify_type": "hourly",
		"notify_time": "9am",
		"end_date":    "2026-10-31",
	})
	assert.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodPost, "/api/notes/notify", auth, map[string]any{
		"notify":      true,
		"notify_type": "daily",
		"notify_time": "9am",
		"end_date":    "2026-10-31",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["error_code"])
	details := body["details"].(map[string]any)
	assert.Contains(t, details, "notify_time")
	assert.Equal(t, 2, calls)
}

func TestNoteController_ServiceErrorsKeepTheirStatus(t *testing.T) {
	notes := &fakeNoteService{
		show: func(context.Context, uuid.UUID, uuid.UUID) (*dto.NoteResponse, error) {
			return nil, apperror.NotFound("note not found")
		},
		deleteNote: func(context.Context, uuid.UUID, uuid.UUID) error {
			return apperror.Store(assert.AnError, "failed to delete note")
		},
	}
	app := newTestApp(notes, &fakeDeviceService{}, &fakeNotificationService{}, &fakeReminderService{})
	auth := bearer(t, uuid.New())

	status, body := doJSON(t, app, http.MethodGet, "/api/notes/"+uuid.NewString(), auth, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "note not found", body["message"])

	status, body = doJSON(t, app, http.MethodDelete, "/api/notes/"+uuid.NewString(), auth, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "storage failure", body["message"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/notes/not-a-uuid", auth, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNotificationController_Subscribe(t *testing.T) {
	userID := uuid.New()
	devices := &fakeDeviceService{
		subscribe: func(_ context.Context, uid uuid.UUID, req *dto.SubscribeDeviceRequest) (*dto.DeviceResponse, error) {
			assert.Equal(t, userID, uid)
			return &dto.DeviceResponse{Id: uuid.New(), FcmToken: req.FcmToken}, nil
		},
	}
	app := newTestApp(&fakeNoteService{}, devices, &fakeNotificationService{}, &fakeReminderService{})

	status, body := doJSON(t, app, http.MethodPost, "/api/notifications/subscribe", bearer(t, userID), map[string]any{"fcm_token": "abc"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "abc", body["data"].(map[string]any)["fcm_token"])

	status, body = doJSON(t, app, http.MethodPost, "/api/notifications/subscribe", bearer(t, userID), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["details"].(map[string]any), "fcm_token")
}

func TestNotificationController_ShowSettingIsOwnerScoped(t *testing.T) {
	owner := uuid.New()
	noteID := uuid.New()
	next := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	settings := &fakeNotificationService{
		get: func(context.Context, uuid.UUID) (*entity.NotificationSetting, error) {
			return &entity.NotificationSetting{NoteId: noteID, UserId: owner, Notify: true, NotifyType: "daily"}, nil
		},
	}
	app := newTestApp(&fakeNoteService{}, &fakeDeviceService{}, settings, &fakeReminderService{next: &next})

	status, body := doJSON(t, app, http.MethodGet, "/api/notifications/notes/"+noteID.String(), bearer(t, owner), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2026-10-16T09:00:00Z", body["data"].(map[string]any)["next_fire_at"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/notifications/notes/"+noteID.String(), bearer(t, uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, status)
}
