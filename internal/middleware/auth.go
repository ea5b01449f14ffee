// Package middleware provides HTTP middleware components for the application.
// It includes authentication and authorization middleware for the fiber web
// framework.
package middleware

import (
	"strings"

	"paygate/internal/models"
	"paygate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthMiddleware validates the bearer JWT and stores its claims in the
// request context.
type AuthMiddleware struct {
	secret []byte
	log    *zap.SugaredLogger
}

func NewAuthMiddleware(secret string, log *zap.SugaredLogger) *AuthMiddleware {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AuthMiddleware{
		secret: []byte(secret),
		log:    log,
	}
}

// Handler checks for:
// - Presence of Authorization header with Bearer token
// - Valid HMAC signature
// - Token expiration
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return response.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Error(c, fiber.StatusUnauthorized, "invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		m.log.Debugw("token validation failed", "error", err)
		return response.Error(c, fiber.StatusUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || claims.UserID == 0 {
		return response.Error(c, fiber.StatusUnauthorized, "invalid claims")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)

	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok {
			return response.Unauthorized(c)
		}

		// If user is admin, allow all permissions
		if claims.Role == "admin" || claims.HasPermission(permission) {
			return c.Next()
		}

		return response.Error(c, fiber.StatusForbidden, "Insufficient permissions")
	}
}
