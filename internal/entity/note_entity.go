package entity

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	Content   string
	Summary   *string
	Metadata  map[string]interface{}
	Revision  int64
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// SummaryText returns the stored summary or "" when enrichment has not written one.
func (n *Note) SummaryText() string {
	if n == nil || n.Summary == nil {
		return ""
	}
	return *n.Summary
}
