package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"meli-reconciler/internal/core/ports"
	"meli-reconciler/internal/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies access tokens to the gateway.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	// Refresh renews the token after the API rejected it.
	Refresh(ctx context.Context, rejected string) (string, error)
}

// GatewayConfig controls pacing and retries.
type GatewayConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	MaxAttempts    int
	BackoffBase    time.Duration
	RatePerSecond  float64
	Burst          int
}

const maxBodyBytes = 8 << 20

// Gateway performs authenticated marketplace calls. Ordinary API failures
// come back as a result with Success=false; an error is returned only when
// the call cannot be made at all.
type Gateway struct {
	cfg     GatewayConfig
	tokens  TokenSource
	client  HTTPClient
	limiter *rate.Limiter
	metrics *metrics.Metrics
	log     zerolog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewGateway creates a gateway. m may be nil.
func NewGateway(cfg GatewayConfig, tokens TokenSource, client HTTPClient, m *metrics.Metrics, log zerolog.Logger) *Gateway {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Gateway{
		cfg:     cfg,
		tokens:  tokens,
		client:  client,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		metrics: m,
		log:     log,
		sleep:   sleepCtx,
	}
}

// Request calls endpoint (relative to the base URL) with an optional JSON body.
func (g *Gateway) Request(ctx context.Context, method, endpoint string, body any) (*ports.MarketplaceResult, error) {
	if g.cfg.BaseURL == "" || g.client == nil {
		return nil, ports.ErrGatewayNotConfigured
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	token, err := g.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	target := g.cfg.BaseURL + "/" + strings.TrimLeft(endpoint, "/")
	refreshed := false
	var last *ports.MarketplaceResult

	for attempt := 0; attempt < g.cfg.MaxAttempts; {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		status, header, respBody, callErr := g.do(ctx, method, target, token, payload)

		switch {
		case callErr != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			last = &ports.MarketplaceResult{Error: "request failed", Details: callErr.Error()}

		case status >= 200 && status < 300:
			g.count("success")
			return &ports.MarketplaceResult{Success: true, Status: status, Data: json.RawMessage(respBody)}, nil

		case status == http.StatusUnauthorized && !refreshed:
			refreshed = true
			g.count("refresh")
			token, err = g.tokens.Refresh(ctx, token)
			if err != nil {
				if errors.Is(err, ports.ErrCredentialsUnavailable) {
					return nil, err
				}
				g.log.Warn().Err(err).Str("endpoint", endpoint).Msg("marketplace: token refresh failed")
				g.count("error")
				return failure(status, respBody), nil
			}
			// The refresh retry does not consume the attempt budget.
			continue

		case status == http.StatusTooManyRequests || status >= 500:
			last = failure(status, respBody)

		default:
			g.count("error")
			return failure(status, respBody), nil
		}

		attempt++
		if attempt >= g.cfg.MaxAttempts {
			break
		}

		wait := g.backoff(attempt - 1)
		if ra, ok := parseRetryAfter(header); ok {
			wait = ra
		}
		g.count("retry")
		g.log.Warn().
			Str("endpoint", endpoint).
			Int("status", last.Status).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("marketplace: retrying request")
		if err := g.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	g.count("error")
	return last, nil
}

func (g *Gateway) do(ctx context.Context, method, target, token string, payload []byte) (int, http.Header, []byte, error) {
	if g.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.RequestTimeout)
		defer cancel()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, resp.Header, body, nil
}

func (g *Gateway) backoff(n int) time.Duration {
	return g.cfg.BackoffBase * time.Duration(1<<n)
}

func (g *Gateway) count(outcome string) {
	if g.metrics != nil {
		g.metrics.MarketplaceRequests.WithLabelValues(outcome).Inc()
	}
}

// failure builds a Success=false result, pulling the API's message out of
// the body when it is JSON.
func failure(status int, body []byte) *ports.MarketplaceResult {
	res := &ports.MarketplaceResult{Status: status, Details: string(body)}

	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		res.Error = apiErr.Message
		if res.Error == "" {
			res.Error = apiErr.Error
		}
	}
	if res.Error == "" {
		res.Error = http.StatusText(status)
	}
	return res
}

// parseRetryAfter accepts both delta-seconds and HTTP-date values.
func parseRetryAfter(h http.Header) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
