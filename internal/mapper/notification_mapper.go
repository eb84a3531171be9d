package mapper

import (
	"sado-notes-be/internal/entity"
	"sado-notes-be/internal/model"
)

type NotificationSettingMapper struct{}

func NewNotificationSettingMapper() *NotificationSettingMapper {
	return &NotificationSettingMapper{}
}

func (m *NotificationSettingMapper) ToEntity(s *model.NotificationSetting) *entity.NotificationSetting {
	if s == nil {
		return nil
	}
	return &entity.NotificationSetting{
		Id:         s.Id,
		NoteId:     s.NoteId,
		UserId:     s.UserId,
		Notify:     s.Notify,
		NotifyType: s.NotifyType,
		NotifyTime: s.NotifyTime,
		EndDate:    s.EndDate,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func (m *NotificationSettingMapper) ToModel(s *entity.NotificationSetting) *model.NotificationSetting {
	if s == nil {
		return nil
	}
	return &model.NotificationSetting{
		Id:         s.Id,
		NoteId:     s.NoteId,
		UserId:     s.UserId,
		Notify:     s.Notify,
		NotifyType: s.NotifyType,
		NotifyTime: s.NotifyTime,
		EndDate:    s.EndDate,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func (m *NotificationSettingMapper) ToEntities(settings []*model.NotificationSetting) []*entity.NotificationSetting {
	entities := make([]*entity.NotificationSetting, len(settings))
	for i, s := range settings {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

type PushSubscriptionMapper struct{}

func NewPushSubscriptionMapper() *PushSubscriptionMapper {
	return &PushSubscriptionMapper{}
}

func (m *PushSubscriptionMapper) ToEntity(s *model.PushSubscription) *entity.PushSubscription {
	if s == nil {
		return nil
	}
	return &entity.PushSubscription{
		Id:        s.Id,
		FcmToken:  s.FcmToken,
		UserId:    s.UserId,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *PushSubscriptionMapper) ToModel(s *entity.PushSubscription) *model.PushSubscription {
	if s == nil {
		return nil
	}
	return &model.PushSubscription{
		Id:        s.Id,
		FcmToken:  s.FcmToken,
		UserId:    s.UserId,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *PushSubscriptionMapper) ToEntities(subs []*model.PushSubscription) []*entity.PushSubscription {
	entities := make([]*entity.PushSubscription, len(subs))
	for i, s := range subs {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
