package handlers

import (
	"context"
	"errors"

	"paygate/internal/gateway/applepay"
	"paygate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// MerchantValidator validates the merchant session with Apple Pay.
type MerchantValidator interface {
	NewValidationRequest() *applepay.ValidationRequest
	ValidateMerchant(ctx context.Context, validationURL string, req *applepay.ValidationRequest) (*applepay.Response, error)
}

type ApplePayHandler struct {
	validator MerchantValidator
}

func NewApplePayHandler(validator MerchantValidator) *ApplePayHandler {
	return &ApplePayHandler{validator: validator}
}

type validateMerchantInput struct {
	ValidationURL string `json:"validation_url"`
}

// ValidateMerchant relays the browser's onvalidatemerchant URL to Apple and
// returns the merchant session unmodified.
func (h *ApplePayHandler) ValidateMerchant(c *fiber.Ctx) error {
	var input validateMerchantInput
	if err := c.BodyParser(&input); err != nil || input.ValidationURL == "" {
		return response.BadRequest(c, "validation_url is required")
	}

	resp, err := h.validator.ValidateMerchant(c.UserContext(), input.ValidationURL, h.validator.NewValidationRequest())
	if err != nil {
		switch {
		case errors.Is(err, applepay.ErrInvalidValidationURL):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, applepay.ErrValidationFailed):
			return response.Error(c, fiber.StatusBadGateway, "Apple Pay merchant validation failed")
		default:
			return response.ServerError(c, "Apple Pay merchant validation failed")
		}
	}

	return c.JSON(resp.MerchantSession())
}
