package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationSetting holds the reminder preference of a single note.
type NotificationSetting struct {
	Id         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	NoteId     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_notification_settings_note"`
	UserId     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Notify     bool       `gorm:"column:notify;not null;default:false"`
	NotifyType string     `gorm:"type:varchar(16);not null;default:'daily'"`
	NotifyTime *string    `gorm:"type:varchar(5)"`
	EndDate    *time.Time `gorm:"index"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime"`
}

func (NotificationSetting) TableName() string {
	return "notification_settings"
}

// PushSubscription is one device token registered for push delivery.
type PushSubscription struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FcmToken  string    `gorm:"type:text;not null;uniqueIndex:idx_push_subscriptions_token"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (PushSubscription) TableName() string {
	return "push_subscriptions"
}
