package contract

import (
	"context"

	"sado-notes-be/internal/entity"
	"sado-notes-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	// Update rewrites title, content, metadata and summary of a note owned by
	// note.UserId and bumps its revision. Returns the number of rows touched.
	Update(ctx context.Context, note *entity.Note) (int64, error)
	// UpdateSummary writes a summary only while the note is still at revision.
	UpdateSummary(ctx context.Context, id uuid.UUID, revision int64, summary string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID, userId uuid.UUID) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
}
