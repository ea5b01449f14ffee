package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"paygate/internal/models"
	"paygate/internal/utils/cachekeys"

	"github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get decodes the value under key into dest and reports whether it was found.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Payment token caching. Only datastore records are cached; tokens are
// rebuilt from them on every load.
func (s *CacheService) CachePaymentTokens(ctx context.Context, userID uint, records []*models.PaymentTokenRecord) error {
	return s.Set(ctx, cachekeys.GenerateKey(cachekeys.EntityPaymentToken, cachekeys.KeyUser, userID), records)
}

// GetPaymentTokens returns the cached records of a user.
func (s *CacheService) GetPaymentTokens(ctx context.Context, userID uint) ([]*models.PaymentTokenRecord, bool, error) {
	var records []*models.PaymentTokenRecord
	found, err := s.Get(ctx, cachekeys.GenerateKey(cachekeys.EntityPaymentToken, cachekeys.KeyUser, userID), &records)
	if err != nil || !found {
		return nil, false, err
	}
	return records, true, nil
}

func (s *CacheService) InvalidatePaymentTokens(ctx context.Context, userID uint) error {
	return s.Delete(ctx, cachekeys.GenerateKey(cachekeys.EntityPaymentToken, cachekeys.KeyUser, userID))
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
