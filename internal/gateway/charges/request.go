// Package charges charges stored payment tokens through Stripe.
package charges

import (
	"fmt"
	"net/url"
	"strings"

	"paygate/internal/gateway/api"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/form"
)

var sensitiveParams = []string{"source", "customer"}

// ChargeRequest charges a payment token. It renders as the form encoded body
// Stripe receives.
type ChargeRequest struct {
	Params *stripe.ChargeParams
}

var _ api.Request = (*ChargeRequest)(nil)

// NewChargeRequest builds a charge of amount (in the currency's minor unit)
// against token. Every request carries a fresh idempotency key.
func NewChargeRequest(token string, amount int64, currency, description string) (*ChargeRequest, error) {
	if token == "" {
		return nil, fmt.Errorf("payment token is required")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	params := &stripe.ChargeParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
	}
	if description != "" {
		params.Description = stripe.String(description)
	}
	if err := params.SetSource(token); err != nil {
		return nil, fmt.Errorf("invalid payment token: %w", err)
	}
	params.SetIdempotencyKey(uuid.NewString())

	return &ChargeRequest{Params: params}, nil
}

// IdempotencyKey returns the key sent with this request.
func (r *ChargeRequest) IdempotencyKey() string {
	if r.Params.IdempotencyKey == nil {
		return ""
	}
	return *r.Params.IdempotencyKey
}

func (r *ChargeRequest) String() string {
	values := &form.Values{}
	form.AppendTo(values, r.Params)
	return values.Encode()
}

// SafeString masks the payment source, the customer and any card number.
func (r *ChargeRequest) SafeString() string {
	values, err := url.ParseQuery(r.String())
	if err != nil {
		return ""
	}
	for key, vals := range values {
		if !isSensitiveParam(key) {
			for i, v := range vals {
				vals[i] = api.MaskPANs(v)
			}
			continue
		}
		for i, v := range vals {
			vals[i] = api.MaskValue(v)
		}
	}
	return values.Encode()
}

func isSensitiveParam(key string) bool {
	for _, s := range sensitiveParams {
		if key == s || strings.HasPrefix(key, s+"[") {
			return true
		}
	}
	return false
}
