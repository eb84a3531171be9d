package controller

import (
	"sado-notes-be/internal/dto"
	"sado-notes-be/internal/pkg/serverutils"
	"sado-notes-be/internal/service"
	"sado-notes-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type INotificationController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Subscribe(ctx *fiber.Ctx) error
	Unsubscribe(ctx *fiber.Ctx) error
	ShowSetting(ctx *fiber.Ctx) error
}

type notificationController struct {
	deviceService       service.IDeviceService
	notificationService service.INotificationService
	reminderService     service.IReminderService
}

func NewNotificationController(
	deviceService service.IDeviceService,
	notificationService service.INotificationService,
	reminderService service.IReminderService,
) INotificationController {
	return &notificationController{
		deviceService:       deviceService,
		notificationService: notificationService,
		reminderService:     reminderService,
	}
}

func (c *notificationController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/notifications", auth)
	h.Post("subscribe", c.Subscribe)
	h.Post("unsubscribe", c.Unsubscribe)
	h.Get("notes/:id", c.ShowSetting)
}

func (c *notificationController) Subscribe(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.SubscribeDeviceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.deviceService.Subscribe(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Device subscribed", res))
}

func (c *notificationController) Unsubscribe(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.UnsubscribeDeviceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.deviceService.Unsubscribe(ctx.UserContext(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Device unsubscribed", nil))
}

// ShowSetting reports the reminder of one note together with its next fire time.
func (c *notificationController) ShowSetting(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	noteId, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	setting, err := c.notificationService.Get(ctx.UserContext(), noteId)
	if err != nil {
		return err
	}
	if setting == nil || setting.UserId != userId {
		return apperror.NotFound("notification setting not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show notification setting", dto.NotificationSettingResponse{
		NoteId:     setting.NoteId,
		Notify:     setting.Notify,
		NotifyType: setting.NotifyType,
		NotifyTime: setting.NotifyTime,
		EndDate:    setting.EndDate,
		NextFireAt: c.reminderService.NextFire(userId, noteId),
	}))
}
