// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"paygate/internal/handlers"
	"paygate/internal/middleware"
	"paygate/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Auth         *middleware.AuthMiddleware
	PaymentToken *handlers.PaymentTokenHandler
	ApplePay     *handlers.ApplePayHandler
	Charge       *handlers.ChargeHandler
	Health       *handlers.HealthHandler
	Metrics      fiber.Handler
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, h Handlers) {
	app.Get("/health", h.Health.HealthCheck)
	if h.Metrics != nil {
		app.Get("/metrics", h.Metrics)
	}

	api := app.Group("/api", h.Auth.Handler)

	tokens := api.Group("/payment-tokens")
	tokens.Get("/", middleware.HasPermission(models.PermissionPaymentTokenRead), h.PaymentToken.ListTokens)
	tokens.Post("/", middleware.HasPermission(models.PermissionPaymentTokenWrite), h.PaymentToken.AddToken)
	tokens.Put("/:token/default", middleware.HasPermission(models.PermissionPaymentTokenWrite), h.PaymentToken.SetDefault)
	tokens.Delete("/:token", middleware.HasPermission(models.PermissionPaymentTokenWrite), h.PaymentToken.DeleteToken)

	api.Post("/charges", middleware.HasPermission(models.PermissionChargeWrite), h.Charge.Charge)

	applePay := api.Group("/apple-pay")
	applePay.Post("/validate", middleware.HasPermission(models.PermissionApplePay), h.ApplePay.ValidateMerchant)
}
