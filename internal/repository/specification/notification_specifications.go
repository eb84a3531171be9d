package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByNoteID struct {
	NoteID uuid.UUID
}

func (s ByNoteID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("note_id = ?", s.NoteID)
}

type ByNoteIDs struct {
	NoteIDs []uuid.UUID
}

func (s ByNoteIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("note_id IN ?", s.NoteIDs)
}

// NotifyEnabled keeps only settings whose reminder is switched on.
type NotifyEnabled struct{}

func (s NotifyEnabled) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notify = ?", true)
}

type ByFcmToken struct {
	Token string
}

func (s ByFcmToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("fcm_token = ?", s.Token)
}
