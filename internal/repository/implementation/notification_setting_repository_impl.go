package implementation

import (
	"context"
	"errors"

	"sado-notes-be/internal/entity"
	"sado-notes-be/internal/mapper"
	"sado-notes-be/internal/model"
	"sado-notes-be/internal/repository/contract"
	"sado-notes-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationSettingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NotificationSettingMapper
}

func NewNotificationSettingRepository(db *gorm.DB) contract.NotificationSettingRepository {
	return &NotificationSettingRepositoryImpl{
		db:     db,
		mapper: mapper.NewNotificationSettingMapper(),
	}
}

func (r *NotificationSettingRepositoryImpl) Upsert(ctx context.Context, setting *entity.NotificationSetting) error {
	m := r.mapper.ToModel(setting)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "note_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "notify", "notify_type", "notify_time", "end_date", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	// On conflict the row keeps its original id, so read back what is stored.
	var stored model.NotificationSetting
	if err := r.db.WithContext(ctx).Where("note_id = ?", m.NoteId).First(&stored).Error; err != nil {
		return err
	}
	*setting = *r.mapper.ToEntity(&stored)
	return nil
}

func (r *NotificationSettingRepositoryImpl) DeleteByNote(ctx context.Context, noteId uuid.UUID, userId uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("note_id = ? AND user_id = ?", noteId, userId).
		Delete(&model.NotificationSetting{})
	return result.RowsAffected, result.Error
}

func (r *NotificationSettingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.NotificationSetting, error) {
	var m model.NotificationSetting
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NotificationSettingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.NotificationSetting, error) {
	var models []*model.NotificationSetting
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
