package unitofwork

import (
	"context"

	"sado-notes-be/internal/repository/contract"
)

// RepositoryFactory hands out units of work bound to the shared handle.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	NoteRepository() contract.NoteRepository
	NotificationSettingRepository() contract.NotificationSettingRepository
	PushSubscriptionRepository() contract.PushSubscriptionRepository
}
