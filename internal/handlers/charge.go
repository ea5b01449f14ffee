package handlers

import (
	"context"
	"errors"

	"paygate/internal/gateway/charges"
	"paygate/internal/models"
	"paygate/internal/paymenttoken"
	"paygate/internal/services/tokens"
	"paygate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v72"
)

// Charger charges a stored payment token.
type Charger interface {
	Charge(ctx context.Context, tok *paymenttoken.PaymentToken, amount int64, currency, description string) (*stripe.Charge, error)
}

type ChargeHandler struct {
	tokenService tokens.Service
	charger      Charger
}

func NewChargeHandler(tokenService tokens.Service, charger Charger) *ChargeHandler {
	return &ChargeHandler{
		tokenService: tokenService,
		charger:      charger,
	}
}

type chargeInput struct {
	Token       string `json:"token"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// Charge charges the given token, or the customer's default one.
func (h *ChargeHandler) Charge(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input chargeInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.Amount <= 0 || len(input.Currency) != 3 {
		return response.BadRequest(c, "amount and a three letter currency are required")
	}

	var (
		tok *paymenttoken.PaymentToken
		err error
	)
	if input.Token != "" {
		tok, err = h.tokenService.Get(c.UserContext(), claims.UserID, input.Token)
	} else {
		tok, err = h.tokenService.GetDefault(c.UserContext(), claims.UserID)
	}
	if err != nil {
		if errors.Is(err, tokens.ErrTokenNotFound) || errors.Is(err, tokens.ErrNoDefaultToken) {
			return response.NotFound(c, err.Error())
		}
		return response.ServerError(c, "Failed to load payment method")
	}

	ch, err := h.charger.Charge(c.UserContext(), tok, input.Amount, input.Currency, input.Description)
	if err != nil {
		switch {
		case errors.Is(err, charges.ErrTokenExpired), errors.Is(err, charges.ErrUnsupportedToken):
			return response.Error(c, fiber.StatusUnprocessableEntity, err.Error())
		default:
			return response.Error(c, fiber.StatusBadGateway, "Charge failed")
		}
	}

	return response.Created(c, "Charge created", fiber.Map{
		"charge_id": ch.ID,
		"status":    ch.Status,
		"amount":    input.Amount,
		"currency":  input.Currency,
		"payment_method": fiber.Map{
			"type_full":     tok.TypeFull(),
			"masked_number": tok.MaskedNumber(),
		},
	})
}
