package applepay

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paygate/internal/telemetry"

	"go.uber.org/zap"
)

var (
	ErrInvalidValidationURL = errors.New("invalid apple pay validation url")
	ErrValidationFailed     = errors.New("apple pay merchant validation failed")
)

const maxResponseBytes = 1 << 20

// Config identifies the merchant towards Apple Pay.
type Config struct {
	MerchantID  string
	DisplayName string
	Domain      string
	CertFile    string
	KeyFile     string
	Timeout     time.Duration
}

// Client validates the merchant against Apple Pay on behalf of the browser.
type Client struct {
	cfg          Config
	httpClient   *http.Client
	allowedHosts []string
	log          *zap.SugaredLogger
}

type Option func(*Client)

// WithHTTPClient replaces the client used to reach Apple. Its transport is
// used as is.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithAllowedHosts replaces the hosts validation URLs may point at. A
// leading dot matches any subdomain.
func WithAllowedHosts(hosts ...string) Option {
	return func(cl *Client) { cl.allowedHosts = hosts }
}

// NewClient builds a client presenting the merchant identity certificate
// from cfg when one is configured.
func NewClient(cfg Config, log *zap.SugaredLogger, opts ...Option) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	c := &Client{
		cfg:          cfg,
		allowedHosts: []string{"apple.com", ".apple.com"},
		log:          log,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.CertFile != "" && cfg.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load merchant identity certificate: %w", err)
			}
			transport.TLSClientConfig = &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			}
		}
		c.httpClient = telemetry.HTTPClient(transport)
		c.httpClient.Timeout = cfg.Timeout
	}

	return c, nil
}

// NewValidationRequest builds the validation request for this merchant.
func (c *Client) NewValidationRequest() *ValidationRequest {
	return &ValidationRequest{
		MerchantIdentifier: c.cfg.MerchantID,
		DisplayName:        c.cfg.DisplayName,
		Initiative:         InitiativeWeb,
		InitiativeContext:  c.cfg.Domain,
	}
}

// ValidateMerchant posts req to validationURL and returns the merchant
// session. Only the masked request is logged.
func (c *Client) ValidateMerchant(ctx context.Context, validationURL string, req *ValidationRequest) (*Response, error) {
	if err := c.checkURL(validationURL); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, validationURL, bytes.NewBufferString(req.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to build validation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.log.Infow("apple pay merchant validation request", "url", validationURL, "request", req.SafeString())

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Errorw("apple pay merchant validation transport error", "url", validationURL, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read validation response: %w", err)
	}

	resp, err := NewResponse(body)
	if err != nil {
		c.log.Errorw("apple pay merchant validation response not JSON",
			"status", httpResp.StatusCode, "duration", time.Since(start))
		return nil, fmt.Errorf("%w: status %d: %v", ErrValidationFailed, httpResp.StatusCode, err)
	}

	c.log.Infow("apple pay merchant validation response",
		"status", httpResp.StatusCode,
		"duration", time.Since(start),
		"response", resp.SafeString(),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return resp, fmt.Errorf("%w: status %d: %v", ErrValidationFailed, httpResp.StatusCode, resp.StatusMessage())
	}

	return resp, nil
}

func (c *Client) checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValidationURL, err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be https", ErrInvalidValidationURL)
	}

	host := strings.ToLower(u.Hostname())
	for _, allowed := range c.allowedHosts {
		allowed = strings.ToLower(allowed)
		if host == allowed || (strings.HasPrefix(allowed, ".") && strings.HasSuffix(host, allowed)) {
			return nil
		}
	}
	return fmt.Errorf("%w: host %q not allowed", ErrInvalidValidationURL, host)
}
