package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sado-notes-be/internal/dto"
	"sado-notes-be/internal/entity"
	"sado-notes-be/internal/repository/specification"
	"sado-notes-be/internal/repository/unitofwork"
	"sado-notes-be/pkg/apperror"
	"sado-notes-be/pkg/scheduler"

	"github.com/google/uuid"
)

// INotificationService is the store for per-note reminder preferences.
// Methods taking a UnitOfWork run inside it when non-nil so callers can
// group them with note writes.
type INotificationService interface {
	ParsePreference(userId, noteId uuid.UUID, pref dto.NotifyPreference) (*entity.NotificationSetting, error)
	Upsert(ctx context.Context, uow unitofwork.UnitOfWork, setting *entity.NotificationSetting) (*entity.NotificationSetting, error)
	Remove(ctx context.Context, uow unitofwork.UnitOfWork, userId, noteId uuid.UUID) (bool, error)
	Get(ctx context.Context, noteId uuid.UUID) (*entity.NotificationSetting, error)
	GetMany(ctx context.Context, noteIds []uuid.UUID) (map[uuid.UUID]*entity.NotificationSetting, error)
	ListEnabled(ctx context.Context) ([]*entity.NotificationSetting, error)
	IsExpired(setting *entity.NotificationSetting, now time.Time) bool
}

type notificationService struct {
	uowFactory unitofwork.RepositoryFactory
	location   *time.Location
	now        func() time.Time
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, location *time.Location) INotificationService {
	if location == nil {
		location = time.UTC
	}
	return &notificationService{
		uowFactory: uowFactory,
		location:   location,
		now:        time.Now,
	}
}

func (s *notificationService) unitOfWork(ctx context.Context, uow unitofwork.UnitOfWork) unitofwork.UnitOfWork {
	if uow != nil {
		return uow
	}
	return s.uowFactory.NewUnitOfWork(ctx)
}

// ParsePreference validates a client preference and normalises it into a
// setting row. A disabled preference is returned with Notify=false.
func (s *notificationService) ParsePreference(userId, noteId uuid.UUID, pref dto.NotifyPreference) (*entity.NotificationSetting, error) {
	notifyType := strings.ToLower(strings.TrimSpace(pref.NotifyType))
	if notifyType == "" {
		notifyType = entity.NotifyTypeDaily
	}
	if notifyType != entity.NotifyTypeDaily && notifyType != entity.NotifyTypeHourly {
		return nil, apperror.Validation("notify_type must be hourly or daily").
			WithDetails(map[string]string{"notify_type": notifyType})
	}

	setting := &entity.NotificationSetting{
		NoteId:     noteId,
		UserId:     userId,
		Notify:     pref.Notify,
		NotifyType: notifyType,
	}
	if !pref.Notify {
		return setting, nil
	}

	if pref.EndDate == nil || strings.TrimSpace(*pref.EndDate) == "" {
		return nil, apperror.Validation("end_date is required when notify is true").
			WithDetails(map[string]string{"end_date": "required"})
	}
	endDate, err := s.parseEndDate(*pref.EndDate)
	if err != nil {
		return nil, err
	}
	if !endDate.After(s.now()) {
		return nil, apperror.Validation("end_date must be in the future").
			WithDetails(map[string]string{"end_date": *pref.EndDate})
	}
	setting.EndDate = &endDate

	if notifyType == entity.NotifyTypeDaily && pref.NotifyTime != nil && strings.TrimSpace(*pref.NotifyTime) != "" {
		hour, minute, err := scheduler.ParseTimeOfDay(*pref.NotifyTime)
		if err != nil {
			return nil, err
		}
		normalised := fmt.Sprintf("%02d:%02d", hour, minute)
		setting.NotifyTime = &normalised
	}

	return setting, nil
}

// parseEndDate accepts RFC3339 or a bare date, which means the end of that
// day in the reminder timezone.
func (s *notificationService) parseEndDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if d, err := time.ParseInLocation("2006-01-02", raw, s.location); err == nil {
		return d.AddDate(0, 0, 1).Add(-time.Nanosecond).UTC(), nil
	}
	return time.Time{}, apperror.Validation("end_date must be RFC3339 or YYYY-MM-DD").
		WithDetails(map[string]string{"end_date": raw})
}

func (s *notificationService) Upsert(ctx context.Context, uow unitofwork.UnitOfWork, setting *entity.NotificationSetting) (*entity.NotificationSetting, error) {
	if setting == nil {
		return nil, apperror.Validation("notification setting is required")
	}
	if setting.Notify && setting.EndDate == nil {
		return nil, apperror.Validation("end_date is required when notify is true").
			WithDetails(map[string]string{"end_date": "required"})
	}

	uow = s.unitOfWork(ctx, uow)
	stored := *setting
	if err := uow.NotificationSettingRepository().Upsert(ctx, &stored); err != nil {
		return nil, apperror.Store(err, "failed to save notification setting")
	}
	return &stored, nil
}

func (s *notificationService) Remove(ctx context.Context, uow unitofwork.UnitOfWork, userId, noteId uuid.UUID) (bool, error) {
	uow = s.unitOfWork(ctx, uow)
	rows, err := uow.NotificationSettingRepository().DeleteByNote(ctx, noteId, userId)
	if err != nil {
		return false, apperror.Store(err, "failed to delete notification setting")
	}
	return rows > 0, nil
}

func (s *notificationService) Get(ctx context.Context, noteId uuid.UUID) (*entity.NotificationSetting, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	setting, err := uow.NotificationSettingRepository().FindOne(ctx, specification.ByNoteID{NoteID: noteId})
	if err != nil {
		return nil, apperror.Store(err, "failed to load notification setting")
	}
	return setting, nil
}

func (s *notificationService) GetMany(ctx context.Context, noteIds []uuid.UUID) (map[uuid.UUID]*entity.NotificationSetting, error) {
	out := make(map[uuid.UUID]*entity.NotificationSetting, len(noteIds))
	if len(noteIds) == 0 {
		return out, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	settings, err := uow.NotificationSettingRepository().FindAll(ctx, specification.ByNoteIDs{NoteIDs: noteIds})
	if err != nil {
		return nil, apperror.Store(err, "failed to load notification settings")
	}
	for _, setting := range settings {
		out[setting.NoteId] = setting
	}
	return out, nil
}

func (s *notificationService) ListEnabled(ctx context.Context) ([]*entity.NotificationSetting, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	settings, err := uow.NotificationSettingRepository().FindAll(ctx, specification.NotifyEnabled{})
	if err != nil {
		return nil, apperror.Store(err, "failed to list notification settings")
	}
	return settings, nil
}

func (s *notificationService) IsExpired(setting *entity.NotificationSetting, now time.Time) bool {
	return setting.IsExpired(now)
}
