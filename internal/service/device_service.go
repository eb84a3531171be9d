package service

import (
	"context"
	"strings"

	"sado-notes-be/internal/dto"
	"sado-notes-be/internal/entity"
	"sado-notes-be/internal/pkg/logger"
	"sado-notes-be/internal/repository/specification"
	"sado-notes-be/internal/repository/unitofwork"
	"sado-notes-be/pkg/apperror"
	"sado-notes-be/pkg/events"

	"github.com/google/uuid"
)

const deviceModule = "DEVICE"

type IDeviceService interface {
	Subscribe(ctx context.Context, userId uuid.UUID, req *dto.SubscribeDeviceRequest) (*dto.DeviceResponse, error)
	Unsubscribe(ctx context.Context, userId uuid.UUID, req *dto.UnsubscribeDeviceRequest) error
	Tokens(ctx context.Context, userId uuid.UUID) ([]string, error)
	// Prune deletes tokens the push service reported as no longer registered.
	Prune(ctx context.Context, tokens []string) (int64, error)
}

type deviceService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher events.Publisher
	logger         logger.ILogger
}

func NewDeviceService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IDeviceService {
	return &deviceService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *deviceService) Subscribe(ctx context.Context, userId uuid.UUID, req *dto.SubscribeDeviceRequest) (*dto.DeviceResponse, error) {
	token := strings.TrimSpace(req.FcmToken)
	if token == "" {
		return nil, apperror.Validation("fcm_token is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub := &entity.PushSubscription{FcmToken: token, UserId: userId}
	if err := uow.PushSubscriptionRepository().Upsert(ctx, sub); err != nil {
		return nil, apperror.Store(err, "failed to register device")
	}

	s.logger.Info(deviceModule, "Device subscribed", map[string]interface{}{
		"user_id": userId.String(),
		"token":   logger.MaskToken(token),
	})
	publishEvent(ctx, s.eventPublisher, s.logger, events.DeviceSubscribed, map[string]interface{}{
		"user_id": userId.String(),
	})

	return &dto.DeviceResponse{
		Id:        sub.Id,
		FcmToken:  sub.FcmToken,
		CreatedAt: sub.CreatedAt,
		UpdatedAt: sub.UpdatedAt,
	}, nil
}

func (s *deviceService) Unsubscribe(ctx context.Context, userId uuid.UUID, req *dto.UnsubscribeDeviceRequest) error {
	token := strings.TrimSpace(req.FcmToken)
	if token == "" {
		return apperror.Validation("fcm_token is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.PushSubscriptionRepository().DeleteByToken(ctx, userId, token)
	if err != nil {
		return apperror.Store(err, "failed to unregister device")
	}
	if rows == 0 {
		return apperror.NotFound("device not registered")
	}

	s.logger.Info(deviceModule, "Device unsubscribed", map[string]interface{}{
		"user_id": userId.String(),
		"token":   logger.MaskToken(token),
	})
	publishEvent(ctx, s.eventPublisher, s.logger, events.DeviceUnsubscribed, map[string]interface{}{
		"user_id": userId.String(),
	})
	return nil
}

func (s *deviceService) Tokens(ctx context.Context, userId uuid.UUID) ([]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	subs, err := uow.PushSubscriptionRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, apperror.Store(err, "failed to load devices")
	}

	tokens := make([]string, 0, len(subs))
	for _, sub := range subs {
		tokens = append(tokens, sub.FcmToken)
	}
	return tokens, nil
}

func (s *deviceService) Prune(ctx context.Context, tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.PushSubscriptionRepository().DeleteTokens(ctx, tokens)
	if err != nil {
		return 0, apperror.Store(err, "failed to prune devices")
	}
	return rows, nil
}
