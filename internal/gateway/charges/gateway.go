package charges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paygate/internal/metrics"
	"paygate/internal/paymenttoken"
	"paygate/internal/telemetry"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/charge"
	"go.uber.org/zap"
)

var (
	ErrTokenExpired     = errors.New("payment token has expired")
	ErrUnsupportedToken = errors.New("payment token type not supported by gateway")
)

// ChargeCreator creates charges. *charge.Client satisfies it.
type ChargeCreator interface {
	New(params *stripe.ChargeParams) (*stripe.Charge, error)
}

// Gateway charges stored payment tokens.
type Gateway struct {
	charges ChargeCreator
	log     *zap.SugaredLogger
	metrics metrics.Collector
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithMetrics records charge results on m.
func WithMetrics(m metrics.Collector) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// NewGateway returns a gateway using the Stripe API with secretKey. API
// calls are traced and the client library logs through log.
func NewGateway(secretKey string, log *zap.SugaredLogger, opts ...Option) *Gateway {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	httpClient := telemetry.HTTPClient(nil)
	httpClient.Timeout = 80 * time.Second

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:    httpClient,
		LeveledLogger: log,
	})
	return NewGatewayWithCreator(&charge.Client{B: backend, Key: secretKey}, log, opts...)
}

func NewGatewayWithCreator(creator ChargeCreator, log *zap.SugaredLogger, opts ...Option) *Gateway {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	g := &Gateway{charges: creator, log: log, metrics: metrics.Noop{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Charge charges amount against tok. Only the masked request is logged.
func (g *Gateway) Charge(ctx context.Context, tok *paymenttoken.PaymentToken, amount int64, currency, description string) (*stripe.Charge, error) {
	if tok.IsCheck() {
		g.metrics.RecordOperationResult("charge", metrics.ResultRejected)
		return nil, ErrUnsupportedToken
	}
	if tok.IsExpired(nowFunc()) {
		g.metrics.RecordOperationResult("charge", metrics.ResultRejected)
		return nil, ErrTokenExpired
	}

	req, err := NewChargeRequest(tok.Token(), amount, currency, description)
	if err != nil {
		return nil, err
	}
	req.Params.Context = ctx

	g.log.Infow("creating charge",
		"type", tok.TypeFull(),
		"last_four", tok.LastFour(),
		"idempotency_key", req.IdempotencyKey(),
		"request", req.SafeString(),
	)

	start := time.Now()
	ch, err := g.charges.New(req.Params)
	g.metrics.RecordOperationDuration("charge", time.Since(start))
	if err != nil {
		g.metrics.RecordOperationResult("charge", metrics.ResultFailure)
		g.log.Errorw("charge failed", "idempotency_key", req.IdempotencyKey(), "error", err)
		return nil, fmt.Errorf("charge failed: %w", err)
	}
	g.metrics.RecordOperationResult("charge", metrics.ResultSuccess)

	g.log.Infow("charge created", "charge_id", ch.ID, "status", ch.Status)
	return ch, nil
}
