package contract

import (
	"context"

	"sado-notes-be/internal/entity"
	"sado-notes-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NotificationSettingRepository interface {
	// Upsert inserts or replaces the setting keyed by note id in one statement.
	Upsert(ctx context.Context, setting *entity.NotificationSetting) error
	DeleteByNote(ctx context.Context, noteId uuid.UUID, userId uuid.UUID) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.NotificationSetting, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.NotificationSetting, error)
}
