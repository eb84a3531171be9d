package mapper

import (
	"encoding/json"
	"time"

	"sado-notes-be/internal/entity"
	"sado-notes-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var deletedAt *time.Time
	if n.DeletedAt.Valid {
		t := n.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	metadata := map[string]interface{}{}
	if len(n.Metadata) > 0 {
		// Unreadable metadata degrades to an empty object rather than hiding the note.
		_ = json.Unmarshal(n.Metadata, &metadata)
	}

	return &entity.Note{
		Id:        n.Id,
		UserId:    n.UserId,
		Title:     n.Title,
		Content:   n.Content,
		Summary:   n.Summary,
		Metadata:  metadata,
		Revision:  n.Revision,
		CreatedAt: n.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: n.DeletedAt.Valid,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if n.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *n.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	return &model.Note{
		Id:        n.Id,
		UserId:    n.UserId,
		Title:     n.Title,
		Content:   n.Content,
		Summary:   n.Summary,
		Metadata:  m.EncodeMetadata(n.Metadata),
		Revision:  n.Revision,
		CreatedAt: n.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *NoteMapper) EncodeMetadata(metadata map[string]interface{}) datatypes.JSON {
	if metadata == nil {
		return datatypes.JSON("{}")
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}
