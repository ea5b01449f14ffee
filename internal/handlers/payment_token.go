package handlers

import (
	"errors"
	"time"

	"paygate/internal/gateway/charges"
	"paygate/internal/models"
	"paygate/internal/paymenttoken"
	"paygate/internal/services/tokens"
	"paygate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type PaymentTokenHandler struct {
	tokenService tokens.Service
	now          func() time.Time
}

func NewPaymentTokenHandler(tokenService tokens.Service) *PaymentTokenHandler {
	return &PaymentTokenHandler{
		tokenService: tokenService,
		now:          time.Now,
	}
}

func (h *PaymentTokenHandler) AddToken(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var input models.CreatePaymentTokenInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	tok, err := h.tokenService.Add(c.UserContext(), claims.UserID, input)
	if err != nil {
		return h.tokenError(c, err)
	}

	return response.Created(c, "Payment method saved successfully", h.view(tok))
}

func (h *PaymentTokenHandler) ListTokens(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	toks, err := h.tokenService.List(c.UserContext(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "Failed to fetch payment methods")
	}

	views := make([]models.PaymentTokenView, 0, len(toks))
	for _, tok := range toks {
		views = append(views, h.view(tok))
	}
	return response.Success(c, "Payment methods retrieved successfully", views)
}

func (h *PaymentTokenHandler) SetDefault(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	tok, err := h.tokenService.SetDefault(c.UserContext(), claims.UserID, c.Params("token"))
	if err != nil {
		return h.tokenError(c, err)
	}

	return response.Success(c, "Default payment method updated", h.view(tok))
}

func (h *PaymentTokenHandler) DeleteToken(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	if err := h.tokenService.Delete(c.UserContext(), claims.UserID, c.Params("token")); err != nil {
		return h.tokenError(c, err)
	}

	return response.Success(c, "Payment method deleted successfully", nil)
}

func (h *PaymentTokenHandler) tokenError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, tokens.ErrTokenNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, tokens.ErrTokenExists):
		return response.Conflict(c, err.Error())
	case errors.Is(err, tokens.ErrInvalidInput),
		errors.Is(err, paymenttoken.ErrInvalidCardNumber),
		errors.Is(err, paymenttoken.ErrInvalidExpiry),
		errors.Is(err, charges.ErrUnknownToken),
		errors.Is(err, charges.ErrDirectTokenization):
		return response.BadRequest(c, err.Error())
	default:
		return response.ServerError(c, "Failed to process payment method")
	}
}

func (h *PaymentTokenHandler) view(tok *paymenttoken.PaymentToken) models.PaymentTokenView {
	v := models.PaymentTokenView{
		Token:        tok.Token(),
		Type:         tok.Type(),
		TypeFull:     tok.TypeFull(),
		MaskedNumber: tok.MaskedNumber(),
		LastFour:     tok.LastFour(),
		IsCreditCard: tok.IsCreditCard(),
		IsDefault:    tok.IsDefault(),
		Expired:      tok.IsExpired(h.now()),
	}
	if tok.IsCreditCard() && tok.ExpMonth() != "" {
		v.Expiry = tok.ExpMonth() + "/" + tok.ExpYear()
	}
	return v
}
