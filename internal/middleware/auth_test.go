package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paygate/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims *models.UserClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(role string, permissions ...string) *models.UserClaims {
	return &models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:      42,
		Role:        role,
		Permissions: permissions,
	}
}

func TestAuthMiddleware_Handler(t *testing.T) {
	expired := validClaims("customer")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	anonymous := validClaims("customer")
	anonymous.UserID = 0

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{
			name:       "valid token",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("customer")),
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not bearer",
			header:     "Basic abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims("customer")),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong algorithm",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims("customer")),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no user",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), anonymous),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", NewAuthMiddleware(testSecret, nil).Handler, func(c *fiber.Ctx) error {
				claims := c.Locals("claims").(*models.UserClaims)
				assert.Equal(t, uint(42), c.Locals("userID"))
				return c.SendString(claims.Role)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name       string
		claims     *models.UserClaims
		wantStatus int
		wantBody   string
	}{
		{"granted", validClaims("customer", models.PermissionApplePay), http.StatusOK, ""},
		{"admin bypass", validClaims("admin"), http.StatusOK, ""},
		{"missing permission", validClaims("readonly", models.PermissionPaymentTokenRead), http.StatusForbidden, `{"error":"Insufficient permissions"}`},
		{"no claims", nil, http.StatusUnauthorized, `{"error":"Unauthorized"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				if tt.claims != nil {
					c.Locals("claims", tt.claims)
				}
				return c.Next()
			})
			app.Get("/", HasPermission(models.PermissionApplePay), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.JSONEq(t, tt.wantBody, string(body))
			}
		})
	}
}
