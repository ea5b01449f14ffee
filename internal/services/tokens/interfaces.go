package tokens

import (
	"context"

	"paygate/internal/models"
	"paygate/internal/paymenttoken"
)

// Cache holds the stored records of a user's payment tokens.
type Cache interface {
	GetPaymentTokens(ctx context.Context, userID uint) ([]*models.PaymentTokenRecord, bool, error)
	CachePaymentTokens(ctx context.Context, userID uint, records []*models.PaymentTokenRecord) error
	InvalidatePaymentTokens(ctx context.Context, userID uint) error
}

// Service manages the payment tokens saved by customers.
type Service interface {
	Add(ctx context.Context, userID uint, input models.CreatePaymentTokenInput) (*paymenttoken.PaymentToken, error)
	List(ctx context.Context, userID uint) ([]*paymenttoken.PaymentToken, error)
	Get(ctx context.Context, userID uint, token string) (*paymenttoken.PaymentToken, error)
	GetDefault(ctx context.Context, userID uint) (*paymenttoken.PaymentToken, error)
	SetDefault(ctx context.Context, userID uint, token string) (*paymenttoken.PaymentToken, error)
	Delete(ctx context.Context, userID uint, token string) error
}
