package repositories

import (
	"context"
	"errors"

	"paygate/internal/models"
)

var (
	ErrTokenNotFound = errors.New("payment token not found")
)

type PaymentTokenRepository interface {
	// Core operations
	GetByToken(ctx context.Context, userID uint, token string) (*models.PaymentTokenRecord, error)
	// Create inserts record. A record flagged as default clears the flag on
	// the user's other tokens in the same transaction.
	Create(ctx context.Context, record *models.PaymentTokenRecord) error
	// Delete removes token. When it was the default, the user's oldest
	// remaining token becomes the default in the same transaction.
	Delete(ctx context.Context, userID uint, token string) error

	// Query operations
	GetByUserID(ctx context.Context, userID uint) ([]*models.PaymentTokenRecord, error)
	GetDefault(ctx context.Context, userID uint) (*models.PaymentTokenRecord, error)

	// SetDefault makes token the user's only default, or clears its flag
	// when isDefault is false.
	SetDefault(ctx context.Context, userID uint, token string, isDefault bool) error
}
