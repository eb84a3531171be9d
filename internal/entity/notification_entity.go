package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotifyTypeHourly = "hourly"
	NotifyTypeDaily  = "daily"
)

type NotificationSetting struct {
	Id         uuid.UUID
	NoteId     uuid.UUID
	UserId     uuid.UUID
	Notify     bool
	NotifyType string
	NotifyTime *string
	EndDate    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsExpired compares now against the stored expiry. A setting without an
// expiry never expires.
func (s *NotificationSetting) IsExpired(now time.Time) bool {
	if s == nil || s.EndDate == nil {
		return false
	}
	return now.After(*s.EndDate)
}

type PushSubscription struct {
	Id        uuid.UUID
	FcmToken  string
	UserId    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}
