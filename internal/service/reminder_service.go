package service

import (
	"context"
	"fmt"
	"time"

	"sado-notes-be/internal/constant"
	"sado-notes-be/internal/entity"
	"sado-notes-be/internal/pkg/logger"
	"sado-notes-be/internal/repository/specification"
	"sado-notes-be/internal/repository/unitofwork"
	"sado-notes-be/pkg/apperror"
	"sado-notes-be/pkg/events"
	"sado-notes-be/pkg/metrics"
	"sado-notes-be/pkg/push"
	"sado-notes-be/pkg/scheduler"

	"github.com/google/uuid"
)

const reminderModule = "REMINDER"

type DispatchOutcome string

const (
	DispatchDelivered   DispatchOutcome = "delivered"
	DispatchFailed      DispatchOutcome = "failed"
	DispatchExpired     DispatchOutcome = "expired"
	DispatchCancelled   DispatchOutcome = "cancelled"
	DispatchNoteMissing DispatchOutcome = "note_missing"
	DispatchNoDevices   DispatchOutcome = "no_devices"
)

// DispatchResult summarises one fire of a reminder job.
type DispatchResult struct {
	Outcome   DispatchOutcome
	Attempted int
	Delivered int
	Pruned    int
	Skipped   int
}

// IReminderService keeps scheduled jobs in step with notification settings
// and delivers a reminder each time a job fires.
type IReminderService interface {
	Schedule(setting *entity.NotificationSetting) error
	Cancel(userId, noteId uuid.UUID) bool
	NextFire(userId, noteId uuid.UUID) *time.Time
	Dispatch(ctx context.Context, key scheduler.JobKey) (*DispatchResult, error)
	// Fire adapts Dispatch to scheduler.FireFunc.
	Fire(ctx context.Context, key scheduler.JobKey)
	RestoreSchedules(ctx context.Context) (int, error)
}

type reminderService struct {
	uowFactory          unitofwork.RepositoryFactory
	scheduler           *scheduler.Scheduler
	notificationService INotificationService
	deviceService       IDeviceService
	sender              push.Sender
	eventPublisher      events.Publisher
	logger              logger.ILogger
	metrics             *metrics.ReminderMetrics
	now                 func() time.Time
}

func NewReminderService(
	uowFactory unitofwork.RepositoryFactory,
	sched *scheduler.Scheduler,
	notificationService INotificationService,
	deviceService IDeviceService,
	sender push.Sender,
	eventPublisher events.Publisher,
	log logger.ILogger,
	m *metrics.ReminderMetrics,
) IReminderService {
	return &reminderService{
		uowFactory:          uowFactory,
		scheduler:           sched,
		notificationService: notificationService,
		deviceService:       deviceService,
		sender:              sender,
		eventPublisher:      eventPublisher,
		logger:              log,
		metrics:             m,
		now:                 time.Now,
	}
}

func keyFor(userId, noteId uuid.UUID) scheduler.JobKey {
	return scheduler.JobKey{UserID: userId, NoteID: noteId}
}

func (s *reminderService) Schedule(setting *entity.NotificationSetting) error {
	trigger, err := scheduler.TriggerFor(setting.NotifyType, setting.NotifyTime)
	if err != nil {
		return err
	}

	key := keyFor(setting.UserId, setting.NoteId)
	if err := s.scheduler.Install(key, trigger); err != nil {
		return err
	}

	publishEvent(context.Background(), s.eventPublisher, s.logger, events.ReminderScheduled, map[string]interface{}{
		"user_id": setting.UserId.String(),
		"note_id": setting.NoteId.String(),
		"trigger": trigger.String(),
	})
	return nil
}

func (s *reminderService) Cancel(userId, noteId uuid.UUID) bool {
	if !s.scheduler.Remove(keyFor(userId, noteId)) {
		return false
	}
	publishEvent(context.Background(), s.eventPublisher, s.logger, events.ReminderCancelled, map[string]interface{}{
		"user_id": userId.String(),
		"note_id": noteId.String(),
	})
	return true
}

func (s *reminderService) NextFire(userId, noteId uuid.UUID) *time.Time {
	next := s.scheduler.Next(keyFor(userId, noteId))
	if next.IsZero() {
		return nil
	}
	return &next
}

func (s *reminderService) Fire(ctx context.Context, key scheduler.JobKey) {
	result, err := s.Dispatch(ctx, key)
	if err != nil {
		s.logger.Error(reminderModule, "Reminder dispatch failed", map[string]interface{}{
			"job_id": key.String(),
			"error":  err.Error(),
		})
		return
	}
	s.logger.Info(reminderModule, "Reminder dispatched", map[string]interface{}{
		"job_id":    key.String(),
		"outcome":   string(result.Outcome),
		"attempted": result.Attempted,
		"delivered": result.Delivered,
		"pruned":    result.Pruned,
		"skipped":   result.Skipped,
	})
}

// Dispatch runs one fire: check the setting, load the note, format the
// message, fan out to every device and prune the dead ones.
func (s *reminderService) Dispatch(ctx context.Context, key scheduler.JobKey) (result *DispatchResult, err error) {
	begin := time.Now()
	defer func() {
		if result != nil {
			s.metrics.ObserveDispatch(string(result.Outcome), time.Since(begin))
		}
	}()

	setting, err := s.notificationService.Get(ctx, key.NoteID)
	if err != nil {
		return nil, err
	}

	// No setting, a disabled one, or one owned by someone else: this job
	// should not exist.
	if setting == nil || !setting.Notify || setting.UserId != key.UserID {
		s.Cancel(key.UserID, key.NoteID)
		return &DispatchResult{Outcome: DispatchCancelled}, nil
	}

	if s.notificationService.IsExpired(setting, s.now()) {
		s.Cancel(key.UserID, key.NoteID)
		if _, err := s.notificationService.Remove(ctx, nil, key.UserID, key.NoteID); err != nil {
			s.logger.Warn(reminderModule, "Failed to delete expired setting", map[string]interface{}{
				"job_id": key.String(),
				"error":  err.Error(),
			})
		}
		return &DispatchResult{Outcome: DispatchExpired}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: key.NoteID},
		specification.OwnedBy{UserID: key.UserID},
	)
	if err != nil {
		return nil, apperror.Store(err, "failed to load note for reminder")
	}
	if note == nil {
		s.Cancel(key.UserID, key.NoteID)
		return &DispatchResult{Outcome: DispatchNoteMissing}, nil
	}

	tokens, err := s.deviceService.Tokens(ctx, key.UserID)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return &DispatchResult{Outcome: DispatchNoDevices}, nil
	}

	msg := BuildReminderMessage(note)

	var results []push.Result
	if len(tokens) == 1 {
		results = []push.Result{s.sender.Deliver(ctx, tokens[0], msg)}
	} else {
		results = s.sender.DeliverMany(ctx, tokens, msg)
	}

	result = &DispatchResult{}
	var dead []string
	for _, r := range results {
		s.metrics.IncDelivery(string(r.Outcome))
		switch r.Outcome {
		case push.Delivered:
			result.Attempted++
			result.Delivered++
		case push.Skipped:
			result.Skipped++
		case push.Unregistered:
			result.Attempted++
			dead = append(dead, r.Token)
		default:
			result.Attempted++
			details := map[string]interface{}{
				"job_id":  key.String(),
				"token":   logger.MaskToken(r.Token),
				"outcome": string(r.Outcome),
			}
			if r.Err != nil {
				details["error"] = r.Err.Error()
			}
			s.logger.Warn(reminderModule, "Push delivery failed", details)
		}
	}

	if len(dead) > 0 {
		pruned, err := s.deviceService.Prune(ctx, dead)
		if err != nil {
			s.logger.Error(reminderModule, "Failed to prune unregistered devices", map[string]interface{}{
				"job_id": key.String(),
				"count":  len(dead),
				"error":  err.Error(),
			})
		}
		result.Pruned = int(pruned)
		s.metrics.AddPruned(int(pruned))
	}

	if result.Delivered > 0 {
		result.Outcome = DispatchDelivered
		publishEvent(ctx, s.eventPublisher, s.logger, events.ReminderSent, map[string]interface{}{
			"user_id":   key.UserID.String(),
			"note_id":   key.NoteID.String(),
			"delivered": result.Delivered,
		})
	} else {
		result.Outcome = DispatchFailed
	}
	return result, nil
}

// BuildReminderMessage formats the push payload for a note.
func BuildReminderMessage(note *entity.Note) push.Message {
	title := note.Title
	if title == "" {
		title = constant.DefaultNoteTitle
	}

	body := fmt.Sprintf(constant.ReminderGenericBodyFmt, title)
	if summary := note.SummaryText(); summary != "" && !constant.IsSummaryPlaceholder(summary) {
		body = fmt.Sprintf("%s: %s", title, truncateRunes(summary, constant.ReminderSummaryLength))
	}

	noteID := note.Id.String()
	return push.Message{
		Title: constant.ReminderTitle,
		Body:  body,
		Data: map[string]string{
			"note_id": noteID,
			"link":    fmt.Sprintf(constant.ReminderLinkFmt, noteID),
		},
	}
}

// RestoreSchedules rebuilds the job table from stored settings. Expired
// settings are deleted instead of scheduled.
func (s *reminderService) RestoreSchedules(ctx context.Context) (int, error) {
	settings, err := s.notificationService.ListEnabled(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	restored := 0
	for _, setting := range settings {
		if s.notificationService.IsExpired(setting, now) {
			if _, err := s.notificationService.Remove(ctx, nil, setting.UserId, setting.NoteId); err != nil {
				s.logger.Warn(reminderModule, "Failed to delete expired setting on restore", map[string]interface{}{
					"note_id": setting.NoteId.String(),
					"error":   err.Error(),
				})
			}
			continue
		}
		if err := s.Schedule(setting); err != nil {
			s.logger.Error(reminderModule, "Failed to restore reminder", map[string]interface{}{
				"note_id": setting.NoteId.String(),
				"error":   err.Error(),
			})
			continue
		}
		restored++
	}

	s.logger.Info(reminderModule, "Reminder schedules restored", map[string]interface{}{
		"restored": restored,
		"total":    len(settings),
	})
	return restored, nil
}
