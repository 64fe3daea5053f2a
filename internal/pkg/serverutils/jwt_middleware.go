package serverutils

import (
	"crypto/subtle"
	"fmt"

	"mentor-ai-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userIDLocal = "user_id"

// NewJwtMiddleware verifies the bearer token issued by the identity provider
// and stores its user_id claim in ctx.Locals.
func NewJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return apperror.Unauthorized("Missing token")
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return apperror.Unauthorized("Invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return apperror.Unauthorized("Invalid claims")
		}
		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			return apperror.Unauthorized("Invalid claims")
		}

		ctx.Locals(userIDLocal, userID)
		return ctx.Next()
	}
}

// CurrentUserID returns the authenticated user set by the JWT middleware.
func CurrentUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals(userIDLocal).(string)
	if !ok {
		return uuid.Nil, apperror.Unauthorized("Unauthorized")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Unauthorized("Invalid user ID")
	}
	return id, nil
}

// NewInternalTokenMiddleware guards service-to-service endpoints with a
// shared secret in X-Internal-Token. An empty secret disables the endpoints.
func NewInternalTokenMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		given := ctx.Get("X-Internal-Token")
		if secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			return apperror.Unauthorized("Invalid internal token")
		}
		return ctx.Next()
	}
}
