// Package tokens manages customers' saved payment tokens on top of the
// token repository, keeping at most one default token per customer.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"paygate/internal/gateway/charges"
	"paygate/internal/metrics"
	"paygate/internal/models"
	"paygate/internal/paymenttoken"
	"paygate/internal/repositories"
	"paygate/internal/utils/cachekeys"

	"go.uber.org/zap"
)

const gatewayID = "stripe"

type service struct {
	repo      repositories.PaymentTokenRepository
	cache     Cache
	tokenizer charges.Tokenizer
	log       *zap.SugaredLogger
	metrics   metrics.Collector
}

// Option configures the token service.
type Option func(*service)

// WithMetrics records cache and operation metrics on m.
func WithMetrics(m metrics.Collector) Option {
	return func(s *service) {
		s.metrics = m
	}
}

// NewService returns the token service. cache may be nil.
func NewService(repo repositories.PaymentTokenRepository, cache Cache, tokenizer charges.Tokenizer, log *zap.SugaredLogger, opts ...Option) Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &service{
		repo:      repo,
		cache:     cache,
		tokenizer: tokenizer,
		log:       log,
		metrics:   metrics.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Add(ctx context.Context, userID uint, input models.CreatePaymentTokenInput) (*paymenttoken.PaymentToken, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("add_token", time.Since(start))
	}()

	tok, err := s.add(ctx, userID, input)
	switch {
	case err == nil:
		s.metrics.RecordOperationResult("add_token", metrics.ResultSuccess)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrTokenExists),
		errors.Is(err, paymenttoken.ErrInvalidCardNumber), errors.Is(err, paymenttoken.ErrInvalidExpiry),
		errors.Is(err, charges.ErrUnknownToken), errors.Is(err, charges.ErrDirectTokenization):
		s.metrics.RecordOperationResult("add_token", metrics.ResultRejected)
	default:
		s.metrics.RecordOperationResult("add_token", metrics.ResultFailure)
	}
	return tok, err
}

func (s *service) add(ctx context.Context, userID uint, input models.CreatePaymentTokenInput) (*paymenttoken.PaymentToken, error) {
	tok, err := s.tokenize(input)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByToken(ctx, userID, tok.Token()); err == nil {
		return nil, ErrTokenExists
	} else if !errors.Is(err, repositories.ErrTokenNotFound) {
		return nil, err
	}

	existing, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	// The first saved method becomes the default
	tok.SetDefault(input.MakeDefault || len(existing) == 0)

	if err := s.repo.Create(ctx, toRecord(userID, tok)); err != nil {
		return nil, fmt.Errorf("failed to save payment token: %w", err)
	}
	s.invalidate(ctx, userID)

	s.log.Infow("payment token saved",
		"user_id", userID,
		"type", tok.Type(),
		"last_four", tok.LastFour(),
		"default", tok.IsDefault(),
	)
	return tok, nil
}

func (s *service) List(ctx context.Context, userID uint) ([]*paymenttoken.PaymentToken, error) {
	records, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	toks := make([]*paymenttoken.PaymentToken, 0, len(records))
	for _, rec := range records {
		tok, err := fromRecord(rec)
		if err != nil {
			s.log.Warnw("skipping malformed payment token", "user_id", userID, "error", err)
			continue
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

func (s *service) Get(ctx context.Context, userID uint, token string) (*paymenttoken.PaymentToken, error) {
	rec, err := s.repo.GetByToken(ctx, userID, token)
	if err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return fromRecord(rec)
}

func (s *service) GetDefault(ctx context.Context, userID uint) (*paymenttoken.PaymentToken, error) {
	rec, err := s.repo.GetDefault(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return nil, ErrNoDefaultToken
		}
		return nil, err
	}
	return fromRecord(rec)
}

func (s *service) SetDefault(ctx context.Context, userID uint, token string) (*paymenttoken.PaymentToken, error) {
	tok, err := s.Get(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetDefault(ctx, userID, token, true); err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to set default payment token: %w", err)
	}
	tok.SetDefault(true)
	s.invalidate(ctx, userID)

	return tok, nil
}

// Delete removes a token. When the default is removed the oldest remaining
// token takes its place.
func (s *service) Delete(ctx context.Context, userID uint, token string) error {
	if err := s.repo.Delete(ctx, userID, token); err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("failed to delete payment token: %w", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *service) tokenize(input models.CreatePaymentTokenInput) (*paymenttoken.PaymentToken, error) {
	switch {
	case input.CardNumber != "":
		card, token, err := s.tokenizer.TokenizeCard(input.CardNumber, input.ExpiryMonth, input.ExpiryYear)
		if err != nil {
			return nil, err
		}
		return paymenttoken.New(token, card, false), nil

	case strings.EqualFold(input.Type, paymenttoken.TypeECheck):
		if input.Token == "" || input.AccountNumber == "" {
			return nil, fmt.Errorf("%w: echeck requires token and account_number", ErrInvalidInput)
		}
		return paymenttoken.New(input.Token, paymenttoken.ECheck{
			LastFour: paymenttoken.LastFourOf(input.AccountNumber),
		}, false), nil

	case input.Token != "":
		card, err := s.tokenizer.DescribeToken(input.Token, input.ExpiryMonth, input.ExpiryYear)
		if err != nil {
			return nil, err
		}
		return paymenttoken.New(input.Token, card, false), nil
	}

	return nil, fmt.Errorf("%w: card_number or token is required", ErrInvalidInput)
}

// load reads a user's records through the cache.
func (s *service) load(ctx context.Context, userID uint) ([]*models.PaymentTokenRecord, error) {
	if s.cache != nil {
		records, found, err := s.cache.GetPaymentTokens(ctx, userID)
		if err != nil {
			s.log.Warnw("payment token cache read failed", "user_id", userID, "error", err)
		} else if found {
			s.metrics.RecordCacheHit(string(cachekeys.EntityPaymentToken))
			return records, nil
		}
		s.metrics.RecordCacheMiss(string(cachekeys.EntityPaymentToken))
	}

	records, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CachePaymentTokens(ctx, userID, records); err != nil {
			s.log.Warnw("payment token cache write failed", "user_id", userID, "error", err)
		}
	}
	return records, nil
}

func (s *service) invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePaymentTokens(ctx, userID); err != nil {
		s.log.Warnw("payment token cache invalidation failed", "user_id", userID, "error", err)
	}
}

func toRecord(userID uint, tok *paymenttoken.PaymentToken) *models.PaymentTokenRecord {
	attrs := tok.DatastoreFormat()
	return &models.PaymentTokenRecord{
		UserID:    userID,
		Token:     tok.Token(),
		Gateway:   gatewayID,
		Type:      attrs.Type,
		LastFour:  attrs.LastFour,
		ExpMonth:  attrs.ExpMonth,
		ExpYear:   attrs.ExpYear,
		IsDefault: attrs.Default,
	}
}

func fromRecord(rec *models.PaymentTokenRecord) (*paymenttoken.PaymentToken, error) {
	return paymenttoken.FromAttributes(rec.Token, paymenttoken.Attributes{
		Default:  rec.IsDefault,
		Type:     rec.Type,
		LastFour: rec.LastFour,
		ExpMonth: rec.ExpMonth,
		ExpYear:  rec.ExpYear,
	})
}
