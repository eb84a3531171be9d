package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubscribeDeviceRequest struct {
	FcmToken string `json:"fcm_token" validate:"required,max=4096"`
}

type UnsubscribeDeviceRequest struct {
	FcmToken string `json:"fcm_token" validate:"required"`
}

type DeviceResponse struct {
	Id        uuid.UUID `json:"id"`
	FcmToken  string    `json:"fcm_token"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NotificationSettingResponse struct {
	NoteId     uuid.UUID  `json:"note_id"`
	Notify     bool       `json:"notify"`
	NotifyType string     `json:"notify_type"`
	NotifyTime *string    `json:"notify_time"`
	EndDate    *time.Time `json:"end_date"`
	NextFireAt *time.Time `json:"next_fire_at,omitempty"`
}
