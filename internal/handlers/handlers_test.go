package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"paygate/internal/gateway/applepay"
	"paygate/internal/gateway/charges"
	"paygate/internal/models"
	"paygate/internal/paymenttoken"
	"paygate/internal/services/tokens"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"
)

type MockTokenService struct {
	mock.Mock
}

type MockValidator struct {
	mock.Mock
}

type MockCharger struct {
	mock.Mock
}

type MockPinger struct {
	err error
}

func (p MockPinger) HealthCheck(context.Context) error { return p.err }

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("claims", &models.UserClaims{UserID: 7, Role: "customer"})
		return c.Next()
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestPaymentTokenHandler_AddToken(t *testing.T) {
	visa := paymenttoken.New("tok_visa", paymenttoken.Card{Type: "visa", LastFour: "4242", ExpMonth: "12", ExpYear: "2030"}, true)

	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockTokenService)
		wantStatus int
	}{
		{
			name: "saved",
			body: `{"card_number":"4242424242424242","expiry_month":"12","expiry_year":"2030"}`,
			setupMock: func(s *MockTokenService) {
				s.On("Add", mock.Anything, uint(7), mock.MatchedBy(func(in models.CreatePaymentTokenInput) bool {
					return in.CardNumber == "4242424242424242"
				})).Return(visa, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "invalid card",
			body: `{"card_number":"1234"}`,
			setupMock: func(s *MockTokenService) {
				s.On("Add", mock.Anything, uint(7), mock.Anything).Return(nil, paymenttoken.ErrInvalidCardNumber)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate",
			body: `{"token":"tok_visa"}`,
			setupMock: func(s *MockTokenService) {
				s.On("Add", mock.Anything, uint(7), mock.Anything).Return(nil, tokens.ErrTokenExists)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "storage failure",
			body: `{"token":"tok_visa"}`,
			setupMock: func(s *MockTokenService) {
				s.On("Add", mock.Anything, uint(7), mock.Anything).Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "bad json",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTokenService)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}

			app := newApp()
			h := NewPaymentTokenHandler(svc)
			app.Post("/payment-tokens", h.AddToken)

			status, body := doRequest(t, app, http.MethodPost, "/payment-tokens", tt.body)
			assert.Equal(t, tt.wantStatus, status)

			if status == http.StatusCreated {
				data := body["data"].(map[string]interface{})
				assert.Equal(t, "Visa", data["type_full"])
				assert.Equal(t, "•••• 4242", data["masked_number"])
				assert.Equal(t, "12/2030", data["expiry"])
				assert.Equal(t, true, data["default"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestPaymentTokenHandler_ListTokens(t *testing.T) {
	svc := new(MockTokenService)
	svc.On("List", mock.Anything, uint(7)).Return([]*paymenttoken.PaymentToken{
		paymenttoken.New("tok_mastercard", paymenttoken.Card{Type: "mc", LastFour: "4444", ExpMonth: "01", ExpYear: "2020"}, false),
		paymenttoken.New("ba_1", paymenttoken.ECheck{LastFour: "6789"}, true),
	}, nil)

	app := newApp()
	h := NewPaymentTokenHandler(svc)
	h.now = func() time.Time { return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC) }
	app.Get("/payment-tokens", h.ListTokens)

	status, body := doRequest(t, app, http.MethodGet, "/payment-tokens", "")
	require.Equal(t, http.StatusOK, status)

	data := body["data"].([]interface{})
	require.Len(t, data, 2)

	card := data[0].(map[string]interface{})
	assert.Equal(t, "MasterCard", card["type_full"])
	assert.Equal(t, true, card["expired"])
	assert.Equal(t, true, card["is_credit_card"])

	check := data[1].(map[string]interface{})
	assert.Equal(t, "eCheck", check["type_full"])
	assert.Equal(t, false, check["is_credit_card"])
	assert.Nil(t, check["expiry"])
	assert.Equal(t, true, check["default"])
}

func TestPaymentTokenHandler_SetDefaultAndDelete(t *testing.T) {
	svc := new(MockTokenService)
	svc.On("SetDefault", mock.Anything, uint(7), "ba_1").
		Return(paymenttoken.New("ba_1", paymenttoken.ECheck{LastFour: "6789"}, true), nil)
	svc.On("SetDefault", mock.Anything, uint(7), "nope").Return(nil, tokens.ErrTokenNotFound)
	svc.On("Delete", mock.Anything, uint(7), "ba_1").Return(nil)
	svc.On("Delete", mock.Anything, uint(7), "nope").Return(tokens.ErrTokenNotFound)

	app := newApp()
	h := NewPaymentTokenHandler(svc)
	app.Put("/payment-tokens/:token/default", h.SetDefault)
	app.Delete("/payment-tokens/:token", h.DeleteToken)

	status, body := doRequest(t, app, http.MethodPut, "/payment-tokens/ba_1/default", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["data"].(map[string]interface{})["default"])

	status, _ = doRequest(t, app, http.MethodPut, "/payment-tokens/nope/default", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doRequest(t, app, http.MethodDelete, "/payment-tokens/ba_1", "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = doRequest(t, app, http.MethodDelete, "/payment-tokens/nope", "")
	assert.Equal(t, http.StatusNotFound, status)

	svc.AssertExpectations(t)
}

func TestApplePayHandler_ValidateMerchant(t *testing.T) {
	session, err := applepay.NewResponse([]byte(`{"merchantSessionIdentifier":"SSH1","displayName":"Shop"}`))
	require.NoError(t, err)
	req := &applepay.ValidationRequest{MerchantIdentifier: "merchant.x"}

	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockValidator)
		wantStatus int
	}{
		{
			name: "session relayed",
			body: `{"validation_url":"https://apple-pay-gateway.apple.com/paymentservices/startSession"}`,
			setupMock: func(v *MockValidator) {
				v.On("NewValidationRequest").Return(req)
				v.On("ValidateMerchant", mock.Anything, "https://apple-pay-gateway.apple.com/paymentservices/startSession", req).Return(session, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "bad url",
			body: `{"validation_url":"https://evil.example"}`,
			setupMock: func(v *MockValidator) {
				v.On("NewValidationRequest").Return(req)
				v.On("ValidateMerchant", mock.Anything, mock.Anything, req).Return(nil, applepay.ErrInvalidValidationURL)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "apple rejected",
			body: `{"validation_url":"https://apple-pay-gateway.apple.com/x"}`,
			setupMock: func(v *MockValidator) {
				v.On("NewValidationRequest").Return(req)
				v.On("ValidateMerchant", mock.Anything, mock.Anything, req).Return(nil, applepay.ErrValidationFailed)
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "missing url",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := new(MockValidator)
			if tt.setupMock != nil {
				tt.setupMock(v)
			}

			app := newApp()
			app.Post("/apple-pay/validate", NewApplePayHandler(v).ValidateMerchant)

			status, body := doRequest(t, app, http.MethodPost, "/apple-pay/validate", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			if status == http.StatusOK {
				assert.Equal(t, "SSH1", body["merchantSessionIdentifier"])
				assert.Equal(t, "Shop", body["displayName"])
			}
			v.AssertExpectations(t)
		})
	}
}

func TestChargeHandler_Charge(t *testing.T) {
	visa := paymenttoken.New("tok_visa", paymenttoken.Card{Type: "visa", LastFour: "4242", ExpMonth: "12", ExpYear: "2030"}, true)

	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockTokenService, *MockCharger)
		wantStatus int
	}{
		{
			name: "default token",
			body: `{"amount":1000,"currency":"usd"}`,
			setupMock: func(s *MockTokenService, c *MockCharger) {
				s.On("GetDefault", mock.Anything, uint(7)).Return(visa, nil)
				c.On("Charge", mock.Anything, visa, int64(1000), "usd", "").Return(&stripe.Charge{ID: "ch_1", Status: "succeeded"}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "explicit token expired",
			body: `{"token":"tok_visa","amount":1000,"currency":"usd"}`,
			setupMock: func(s *MockTokenService, c *MockCharger) {
				s.On("Get", mock.Anything, uint(7), "tok_visa").Return(visa, nil)
				c.On("Charge", mock.Anything, visa, int64(1000), "usd", "").Return(nil, charges.ErrTokenExpired)
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "no default",
			body: `{"amount":1000,"currency":"usd"}`,
			setupMock: func(s *MockTokenService, c *MockCharger) {
				s.On("GetDefault", mock.Anything, uint(7)).Return(nil, tokens.ErrNoDefaultToken)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "declined",
			body: `{"amount":1000,"currency":"usd"}`,
			setupMock: func(s *MockTokenService, c *MockCharger) {
				s.On("GetDefault", mock.Anything, uint(7)).Return(visa, nil)
				c.On("Charge", mock.Anything, visa, int64(1000), "usd", "").Return(nil, errors.New("card_declined"))
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "invalid amount",
			body:       `{"amount":0,"currency":"usd"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTokenService)
			charger := new(MockCharger)
			if tt.setupMock != nil {
				tt.setupMock(svc, charger)
			}

			app := newApp()
			app.Post("/charges", NewChargeHandler(svc, charger).Charge)

			status, body := doRequest(t, app, http.MethodPost, "/charges", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			if status == http.StatusCreated {
				data := body["data"].(map[string]interface{})
				assert.Equal(t, "ch_1", data["charge_id"])
			}

			svc.AssertExpectations(t)
			charger.AssertExpectations(t)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", NewHealthHandler(map[string]Pinger{"database": MockPinger{}}).HealthCheck)
	app.Get("/degraded", NewHealthHandler(map[string]Pinger{
		"database": MockPinger{},
		"redis":    MockPinger{err: errors.New("down")},
	}).HealthCheck)

	status, body := doRequest(t, app, http.MethodGet, "/ok", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = doRequest(t, app, http.MethodGet, "/degraded", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unavailable", body["services"].(map[string]interface{})["redis"])
}

// Implement tokens.Service
func (m *MockTokenService) Add(ctx context.Context, userID uint, input models.CreatePaymentTokenInput) (*paymenttoken.PaymentToken, error) {
	args := m.Called(ctx, userID, input)
	return tokenArg(args, 0), args.Error(1)
}

func (m *MockTokenService) List(ctx context.Context, userID uint) ([]*paymenttoken.PaymentToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*paymenttoken.PaymentToken), args.Error(1)
}

func (m *MockTokenService) Get(ctx context.Context, userID uint, token string) (*paymenttoken.PaymentToken, error) {
	args := m.Called(ctx, userID, token)
	return tokenArg(args, 0), args.Error(1)
}

func (m *MockTokenService) GetDefault(ctx context.Context, userID uint) (*paymenttoken.PaymentToken, error) {
	args := m.Called(ctx, userID)
	return tokenArg(args, 0), args.Error(1)
}

func (m *MockTokenService) SetDefault(ctx context.Context, userID uint, token string) (*paymenttoken.PaymentToken, error) {
	args := m.Called(ctx, userID, token)
	return tokenArg(args, 0), args.Error(1)
}

func (m *MockTokenService) Delete(ctx context.Context, userID uint, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func tokenArg(args mock.Arguments, i int) *paymenttoken.PaymentToken {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).(*paymenttoken.PaymentToken)
}

// Implement MerchantValidator
func (m *MockValidator) NewValidationRequest() *applepay.ValidationRequest {
	args := m.Called()
	return args.Get(0).(*applepay.ValidationRequest)
}

func (m *MockValidator) ValidateMerchant(ctx context.Context, validationURL string, req *applepay.ValidationRequest) (*applepay.Response, error) {
	args := m.Called(ctx, validationURL, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*applepay.Response), args.Error(1)
}

// Implement Charger
func (m *MockCharger) Charge(ctx context.Context, tok *paymenttoken.PaymentToken, amount int64, currency, description string) (*stripe.Charge, error) {
	args := m.Called(ctx, tok, amount, currency, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Charge), args.Error(1)
}
