package contract

import (
	"context"

	"sado-notes-be/internal/entity"
	"sado-notes-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PushSubscriptionRepository interface {
	// Upsert registers the token, moving it to sub.UserId if another user held it.
	Upsert(ctx context.Context, sub *entity.PushSubscription) error
	DeleteByToken(ctx context.Context, userId uuid.UUID, token string) (int64, error)
	// DeleteTokens removes tokens regardless of owner. Used to prune dead devices.
	DeleteTokens(ctx context.Context, tokens []string) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PushSubscription, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PushSubscription, error)
}
