package service

import (
	"context"
	"encoding/json"
	"strings"

	"sado-notes-be/internal/constant"
	"sado-notes-be/internal/dto"
	"sado-notes-be/internal/entity"
	"sado-notes-be/internal/pkg/logger"
	"sado-notes-be/internal/repository/specification"
	"sado-notes-be/internal/repository/unitofwork"
	"sado-notes-be/pkg/apperror"
	"sado-notes-be/pkg/events"

	"github.com/google/uuid"
)

const noteModule = "NOTE"

type INoteService interface {
	SaveNote(ctx context.Context, userId uuid.UUID, req *dto.SaveNoteRequest) (*dto.NoteResponse, error)
	SaveNoteWithNotification(ctx context.Context, userId uuid.UUID, req *dto.SaveNoteWithNotificationRequest) (*dto.NoteResponse, error)
	UpdateNote(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	UpdateNoteWithNotification(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteWithNotificationRequest) (*dto.NoteResponse, error)
	DeleteNote(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.NoteResponse, error)
}

type noteService struct {
	uowFactory          unitofwork.RepositoryFactory
	publisherService    IPublisherService
	notificationService INotificationService
	reminderService     IReminderService
	eventPublisher      events.Publisher
	logger              logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	notificationService INotificationService,
	reminderService IReminderService,
	eventPublisher events.Publisher,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:          uowFactory,
		publisherService:    publisherService,
		notificationService: notificationService,
		reminderService:     reminderService,
		eventPublisher:      eventPublisher,
		logger:              log,
	}
}

func normaliseTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return constant.DefaultNoteTitle
	}
	return title
}

func normaliseMetadata(metadata map[string]interface{}) map[string]interface{} {
	if metadata == nil {
		return map[string]interface{}{}
	}
	return metadata
}

func (c *noteService) SaveNote(ctx context.Context, userId uuid.UUID, req *dto.SaveNoteRequest) (*dto.NoteResponse, error) {
	return c.save(ctx, userId, req, nil)
}

func (c *noteService) SaveNoteWithNotification(ctx context.Context, userId uuid.UUID, req *dto.SaveNoteWithNotificationRequest) (*dto.NoteResponse, error) {
	return c.save(ctx, userId, &req.SaveNoteRequest, &req.NotifyPreference)
}

func (c *noteService) save(ctx context.Context, userId uuid.UUID, req *dto.SaveNoteRequest, pref *dto.NotifyPreference) (*dto.NoteResponse, error) {
	noteId := uuid.New()

	// Reject a bad preference before anything is written.
	var setting *entity.NotificationSetting
	if pref != nil {
		parsed, err := c.notificationService.ParsePreference(userId, noteId, *pref)
		if err != nil {
			return nil, err
		}
		setting = parsed
	}

	placeholder := constant.SummaryPlaceholderCreate
	note := &entity.Note{
		Id:       noteId,
		UserId:   userId,
		Title:    normaliseTitle(req.Title),
		Content:  req.Content,
		Summary:  &placeholder,
		Metadata: normaliseMetadata(req.Metadata),
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Store(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	if err := uow.NoteRepository().Create(ctx, note); err != nil {
		return nil, apperror.Store(err, "failed to create note")
	}

	if setting != nil && setting.Notify {
		stored, err := c.notificationService.Upsert(ctx, uow, setting)
		if err != nil {
			return nil, err
		}
		setting = stored
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Store(err, "failed to commit note")
	}

	c.enqueueSummary(ctx, note)
	if err := c.applySchedule(userId, noteId, setting); err != nil {
		return nil, err
	}

	publishEvent(ctx, c.eventPublisher, c.logger, events.NoteCreated, map[string]interface{}{
		"note_id": note.Id.String(),
		"user_id": userId.String(),
		"title":   note.Title,
	})

	return c.toResponse(note, setting), nil
}

func (c *noteService) UpdateNote(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	note, err := c.update(ctx, userId, req.Id, &req.SaveNoteRequest, nil)
	if err != nil {
		return nil, err
	}

	setting, err := c.notificationService.Get(ctx, note.Id)
	if err != nil {
		return nil, err
	}
	return c.toResponse(note, setting), nil
}

func (c *noteService) UpdateNoteWithNotification(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteWithNotificationRequest) (*dto.NoteResponse, error) {
	setting, err := c.notificationService.ParsePreference(userId, req.Id, req.NotifyPreference)
	if err != nil {
		return nil, err
	}

	note, err := c.update(ctx, userId, req.Id, &req.SaveNoteRequest, setting)
	if err != nil {
		return nil, err
	}
	return c.toResponse(note, setting), nil
}

// update rewrites the note and, when setting is non-nil, replaces or drops
// its reminder in the same transaction. The job table follows after commit.
func (c *noteService) update(
	ctx context.Context,
	userId, noteId uuid.UUID,
	req *dto.SaveNoteRequest,
	setting *entity.NotificationSetting,
) (*entity.Note, error) {
	placeholder := constant.SummaryPlaceholderUpdate

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Store(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	rows, err := uow.NoteRepository().Update(ctx, &entity.Note{
		Id:       noteId,
		UserId:   userId,
		Title:    normaliseTitle(req.Title),
		Content:  req.Content,
		Summary:  &placeholder,
		Metadata: normaliseMetadata(req.Metadata),
	})
	if err != nil {
		return nil, apperror.Store(err, "failed to update note")
	}
	if rows == 0 {
		return nil, apperror.NotFound("note not found")
	}

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: noteId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperror.Store(err, "failed to reload note")
	}
	if note == nil {
		return nil, apperror.NotFound("note not found")
	}

	if setting != nil {
		if setting.Notify {
			stored, err := c.notificationService.Upsert(ctx, uow, setting)
			if err != nil {
				return nil, err
			}
			*setting = *stored
		} else if _, err := c.notificationService.Remove(ctx, uow, userId, noteId); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Store(err, "failed to commit note")
	}

	c.enqueueSummary(ctx, note)
	if setting != nil {
		if err := c.applySchedule(userId, noteId, setting); err != nil {
			return nil, err
		}
	}

	publishEvent(ctx, c.eventPublisher, c.logger, events.NoteUpdated, map[string]interface{}{
		"note_id":  note.Id.String(),
		"user_id":  userId.String(),
		"revision": note.Revision,
	})
	return note, nil
}

// applySchedule installs the job for an enabled setting and removes it otherwise.
func (c *noteService) applySchedule(userId, noteId uuid.UUID, setting *entity.NotificationSetting) error {
	if setting == nil {
		return nil
	}
	if setting.Notify {
		return c.reminderService.Schedule(setting)
	}
	c.reminderService.Cancel(userId, noteId)
	return nil
}

// enqueueSummary hands the note to the enrichment consumer. Failure only
// leaves the placeholder in place, so it is logged rather than returned.
func (c *noteService) enqueueSummary(ctx context.Context, note *entity.Note) {
	payload, err := json.Marshal(dto.PublishSummarizeNoteMessage{
		NoteId:   note.Id,
		Revision: note.Revision,
	})
	if err == nil {
		err = c.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		c.logger.Warn(noteModule, "Failed to queue summary generation", map[string]interface{}{
			"note_id": note.Id.String(),
			"error":   err.Error(),
		})
	}
}

func (c *noteService) DeleteNote(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return apperror.Store(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	if _, err := c.notificationService.Remove(ctx, uow, userId, id); err != nil {
		return err
	}

	rows, err := uow.NoteRepository().Delete(ctx, id, userId)
	if err != nil {
		return apperror.Store(err, "failed to delete note")
	}
	if rows == 0 {
		return apperror.NotFound("note not found")
	}

	if err := uow.Commit(); err != nil {
		return apperror.Store(err, "failed to commit note deletion")
	}

	c.reminderService.Cancel(userId, id)

	publishEvent(ctx, c.eventPublisher, c.logger, events.NoteDeleted, map[string]interface{}{
		"note_id": id.String(),
		"user_id": userId.String(),
	})
	return nil
}

func (c *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperror.Store(err, "failed to load note")
	}
	if note == nil {
		return nil, apperror.NotFound("note not found")
	}

	setting, err := c.notificationService.Get(ctx, note.Id)
	if err != nil {
		return nil, err
	}
	return c.toResponse(note, setting), nil
}

func (c *noteService) List(ctx context.Context, userId uuid.UUID) ([]*dto.NoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Store(err, "failed to list notes")
	}

	ids := make([]uuid.UUID, len(notes))
	for i, note := range notes {
		ids[i] = note.Id
	}
	settings, err := c.notificationService.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.NoteResponse, 0, len(notes))
	for _, note := range notes {
		res = append(res, c.toResponse(note, settings[note.Id]))
	}
	return res, nil
}

// toResponse merges a note with its reminder setting. Notes without an
// enabled setting report notify=false and null reminder fields.
func (c *noteService) toResponse(note *entity.Note, setting *entity.NotificationSetting) *dto.NoteResponse {
	res := &dto.NoteResponse{
		Id:        note.Id,
		UserId:    note.UserId,
		Title:     note.Title,
		Content:   note.Content,
		Summary:   note.Summary,
		Metadata:  normaliseMetadata(note.Metadata),
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
	if setting != nil && setting.Notify {
		notifyType := setting.NotifyType
		res.Notify = true
		res.NotifyType = &notifyType
		res.NotifyTime = setting.NotifyTime
		res.EndDate = setting.EndDate
	}
	return res
}
