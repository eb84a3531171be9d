package serverutils

import (
	"errors"

	"sado-notes-be/internal/pkg/logger"
	"sado-notes-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error returned by a handler as an ErrorBody.
// Typed errors keep their own status; anything else is a 500 with a generic
// message, and the cause goes to the log only.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(fe.Code).JSON(ErrorBody{
				Code:      fe.Code,
				ErrorCode: httpErrorCode(fe.Code),
				Message:   fe.Message,
			})
		}

		typed, ok := apperror.As(err)
		if !ok {
			typed = apperror.Wrap(apperror.CodeStore, err, "unexpected error")
		}
		meta := apperror.MetadataFor(typed.Code())

		msg := meta.PublicMessage
		switch typed.Code() {
		case apperror.CodeValidation, apperror.CodeUnauthorized, apperror.CodeNotFound:
			if m := typed.Message(); m != "" {
				msg = m
			}
		}

		body := ErrorBody{
			Code:      meta.HTTPStatus,
			ErrorCode: string(typed.Code()),
			Message:   msg,
		}
		if meta.DetailsAllowed {
			body.Details = typed.Details()
		}

		if meta.HTTPStatus >= fiber.StatusInternalServerError && log != nil {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"code":   string(typed.Code()),
				"error":  err.Error(),
			})
		}

		return ctx.Status(meta.HTTPStatus).JSON(body)
	}
}

func httpErrorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return string(apperror.CodeValidation)
	case fiber.StatusUnauthorized:
		return string(apperror.CodeUnauthorized)
	case fiber.StatusNotFound:
		return string(apperror.CodeNotFound)
	}
	return "HTTP_ERROR"
}
