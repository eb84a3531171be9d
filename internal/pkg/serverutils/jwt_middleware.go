package serverutils

import (
	"sado-notes-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userIDLocal = "user_id"

// JwtMiddleware accepts HMAC bearer tokens signed with secret and stores the
// user_id claim on the request.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return apperror.Unauthorized("missing token")
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.ErrUnauthorized
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return apperror.Unauthorized("invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return apperror.Unauthorized("invalid claims")
		}

		raw, _ := claims["user_id"].(string)
		userId, err := uuid.Parse(raw)
		if err != nil {
			return apperror.Unauthorized("token missing user_id")
		}

		ctx.Locals(userIDLocal, userId)
		return ctx.Next()
	}
}

// CurrentUserID returns the user set by JwtMiddleware.
func CurrentUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	userId, ok := ctx.Locals(userIDLocal).(uuid.UUID)
	if !ok || userId == uuid.Nil {
		return uuid.Nil, apperror.Unauthorized("missing user")
	}
	return userId, nil
}

// ParamUUID parses a path parameter, reporting a bad value as NOT_FOUND.
func ParamUUID(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.NotFound("resource not found")
	}
	return id, nil
}
