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

type PushSubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PushSubscriptionMapper
}

func NewPushSubscriptionRepository(db *gorm.DB) contract.PushSubscriptionRepository {
	return &PushSubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewPushSubscriptionMapper(),
	}
}

func (r *PushSubscriptionRepositoryImpl) Upsert(ctx context.Context, sub *entity.PushSubscription) error {
	m := r.mapper.ToModel(sub)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fcm_token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	var stored model.PushSubscription
	if err := r.db.WithContext(ctx).Where("fcm_token = ?", m.FcmToken).First(&stored).Error; err != nil {
		return err
	}
	*sub = *r.mapper.ToEntity(&stored)
	return nil
}

func (r *PushSubscriptionRepositoryImpl) DeleteByToken(ctx context.Context, userId uuid.UUID, token string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("fcm_token = ? AND user_id = ?", token, userId).
		Delete(&model.PushSubscription{})
	return result.RowsAffected, result.Error
}

func (r *PushSubscriptionRepositoryImpl) DeleteTokens(ctx context.Context, tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("fcm_token IN ?", tokens).
		Delete(&model.PushSubscription{})
	return result.RowsAffected, result.Error
}

func (r *PushSubscriptionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PushSubscription, error) {
	var m model.PushSubscription
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PushSubscriptionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PushSubscription, error) {
	var models []*model.PushSubscription
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
