package client

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/alutech/weather-service/internal/models"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result is a provider response the caller still needs to classify: some
// providers signal "unavailable" through status codes or content types
// rather than transport errors.
type Result struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsJSON reports whether the provider answered with a JSON content type.
func (r *Result) IsJSON() bool {
	return strings.Contains(r.ContentType, "application/json")
}

type BaseClient struct {
	client         HTTPClient
	logger         *zap.Logger
	circuitBreaker *gobreaker.CircuitBreaker
	maxRetries     int
	retryDelay     time.Duration
	multiplier     float64
}

type ClientConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	Multiplier     float64
	Threshold      int
	BreakerTimeout time.Duration
}

func NewBaseClient(name string, config ClientConfig, logger *zap.Logger) *BaseClient {
	httpClient := &http.Client{
		Timeout: config.Timeout,
	}

	threshold := config.Threshold
	if threshold <= 0 {
		threshold = 3
	}

	breakerSettings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= uint32(threshold) && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("client", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &BaseClient{
		client:         httpClient,
		logger:         logger,
		circuitBreaker: gobreaker.NewCircuitBreaker(breakerSettings),
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
		multiplier:     config.Multiplier,
	}
}

// Get performs a GET through the circuit breaker, retrying transport errors
// and 5xx/429 responses up to the configured retry budget (zero on the
// weather paths, where the provider fallback is the only recovery). Any
// transport-level failure comes back wrapped in models.ErrNetwork.
func (c *BaseClient) Get(ctx context.Context, url string, header http.Header) (*Result, error) {
	var result *Result

	_, execErr := c.circuitBreaker.Execute(func() (interface{}, error) {
		var err error
		result, err = c.doGetWithRetry(ctx, url, header)
		return result, err
	})

	if execErr != nil {
		return nil, execErr
	}

	return result, nil
}

func (c *BaseClient) doGetWithRetry(ctx context.Context, url string, header http.Header) (*Result, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(c.retryDelay) * math.Pow(c.multiplier, float64(attempt-1)))
			c.logger.Debug("Retrying request",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", models.ErrNetwork, ctx.Err())
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request failed: %w", err)
		}
		for key, values := range header {
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("HTTP request failed",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		// Retry server errors and rate limiting; everything else is a
		// response the caller classifies itself.
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			continue
		}

		c.logger.Debug("Request completed",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.Int("body_size", len(body)))

		return &Result{
			StatusCode:  resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        body,
		}, nil
	}

	return nil, fmt.Errorf("%w: %v", models.ErrNetwork, lastErr)
}
