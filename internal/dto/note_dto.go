package dto

import (
	"time"

	"github.com/google/uuid"
)

type SaveNoteRequest struct {
	Title    string                 `json:"title" validate:"max=255"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}

// NotifyPreference is the reminder part of a note mutation.
type NotifyPreference struct {
	Notify     bool    `json:"notify"`
	NotifyType string  `json:"notify_type" validate:"max=16"`
	NotifyTime *string `json:"notify_time"`
	EndDate    *string `json:"end_date"`
}

type SaveNoteWithNotificationRequest struct {
	SaveNoteRequest
	NotifyPreference
}

type UpdateNoteRequest struct {
	Id uuid.UUID `json:"-"`
	SaveNoteRequest
}

type UpdateNoteWithNotificationRequest struct {
	Id uuid.UUID `json:"-"`
	SaveNoteRequest
	NotifyPreference
}

type NoteResponse struct {
	Id         uuid.UUID              `json:"id"`
	UserId     uuid.UUID              `json:"user_id"`
	Title      string                 `json:"title"`
	Content    string                 `json:"content"`
	Summary    *string                `json:"summary"`
	Metadata   map[string]interface{} `json:"metadata"`
	Notify     bool                   `json:"notify"`
	NotifyType *string                `json:"notify_type"`
	NotifyTime *string                `json:"notify_time"`
	EndDate    *time.Time             `json:"end_date"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  *time.Time             `json:"updated_at"`
}

type DeleteNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

// PublishSummarizeNoteMessage asks the enrichment consumer to summarise a note
// as it stood at Revision.
type PublishSummarizeNoteMessage struct {
	NoteId   uuid.UUID `json:"note_id"`
	Revision int64     `json:"revision"`
}
