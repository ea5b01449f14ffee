package repositories

import (
	"context"
	"errors"
	"fmt"

	"paygate/internal/models"

	"gorm.io/gorm"
)

type paymentTokenRepository struct {
	db *gorm.DB
}

func NewPaymentTokenRepository(db *gorm.DB) PaymentTokenRepository {
	return &paymentTokenRepository{
		db: db,
	}
}

func (r *paymentTokenRepository) GetByToken(ctx context.Context, userID uint, token string) (*models.PaymentTokenRecord, error) {
	var record models.PaymentTokenRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get payment token: %w", err)
	}
	return &record, nil
}

func (r *paymentTokenRepository) Create(ctx context.Context, record *models.PaymentTokenRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if record.IsDefault {
			if err := tx.Model(&models.PaymentTokenRecord{}).
				Where("user_id = ? AND is_default = ?", record.UserID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(record).Error
	})
}

func (r *paymentTokenRepository) Delete(ctx context.Context, userID uint, token string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.PaymentTokenRecord
		if err := tx.Where("user_id = ? AND token = ?", userID, token).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFound
			}
			return err
		}

		if err := tx.Delete(&record).Error; err != nil {
			return err
		}
		if !record.IsDefault {
			return nil
		}

		// Promote the oldest remaining token
		var next models.PaymentTokenRecord
		err := tx.Where("user_id = ?", userID).Order("created_at ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
}

func (r *paymentTokenRepository) GetByUserID(ctx context.Context, userID uint) ([]*models.PaymentTokenRecord, error) {
	var records []*models.PaymentTokenRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user payment tokens: %w", err)
	}
	return records, nil
}

func (r *paymentTokenRepository) GetDefault(ctx context.Context, userID uint) (*models.PaymentTokenRecord, error) {
	var record models.PaymentTokenRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get default payment token: %w", err)
	}
	return &record, nil
}

func (r *paymentTokenRepository) SetDefault(ctx context.Context, userID uint, token string, isDefault bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.PaymentTokenRecord
		if err := tx.Where("user_id = ? AND token = ?", userID, token).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFound
			}
			return err
		}

		if !isDefault {
			return tx.Model(&record).Update("is_default", false).Error
		}

		// Remove default flag from all user's tokens
		if err := tx.Model(&models.PaymentTokenRecord{}).
			Where("user_id = ? AND id <> ?", userID, record.ID).
			Update("is_default", false).Error; err != nil {
			return err
		}

		if err := tx.Model(&record).Update("is_default", true).Error; err != nil {
			return err
		}

		return nil
	})
}
