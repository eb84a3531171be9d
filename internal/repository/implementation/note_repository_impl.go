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
)

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if m.Revision == 0 {
		m.Revision = 1
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entity.Note) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ? AND user_id = ?", note.Id, note.UserId).
		Updates(map[string]interface{}{
			"title":    note.Title,
			"content":  note.Content,
			"metadata": r.mapper.EncodeMetadata(note.Metadata),
			"summary":  note.Summary,
			"revision": gorm.Expr("revision + 1"),
		})
	return result.RowsAffected, result.Error
}

func (r *NoteRepositoryImpl) UpdateSummary(ctx context.Context, id uuid.UUID, revision int64, summary string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ? AND revision = ?", id, revision).
		Update("summary", summary)
	return result.RowsAffected, result.Error
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, id uuid.UUID, userId uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userId).
		Delete(&model.Note{})
	return result.RowsAffected, result.Error
}

func (r *NoteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	var m model.Note
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var models []*model.Note
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
