package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"planrelay/internal/config"
	"planrelay/internal/types"
)

// RetryPolicy configures the retry behavior for webhook delivery.
type RetryPolicy struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// Channel posts formatted notifications to the Discord webhook with
// consistent resilience patterns: per-attempt timeout, retry with exponential
// backoff and jitter on 429/5xx/network errors (respecting Retry-After), and
// a circuit breaker across attempts.
type Channel struct {
	webhookURL string
	userAgent  string
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	retry      RetryPolicy
	logger     *slog.Logger
	sleepFn    func(time.Duration) // for testability; defaults to time.Sleep
}

// ChannelOption is a functional option for configuring a Channel.
type ChannelOption func(*Channel)

// WithSleepFunc overrides the sleep function used between retries.
// This is intended for testing to avoid real delays.
func WithSleepFunc(fn func(time.Duration)) ChannelOption {
	return func(c *Channel) {
		c.sleepFn = fn
	}
}

// WithHTTPClient overrides the HTTP client, allowing tests to inject an
// httptest server client.
func WithHTTPClient(client *http.Client) ChannelOption {
	return func(c *Channel) {
		c.client = client
	}
}

// NewChannel creates a Channel from the Discord delivery configuration.
func NewChannel(cfg config.DiscordConfig, logger *slog.Logger, opts ...ChannelOption) *Channel {
	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "discord-webhook",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	c := &Channel{
		webhookURL: cfg.WebhookURL.Unmask(),
		userAgent:  cfg.UserAgent,
		client:     &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		retry: RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			MinWait:    cfg.MinWait,
			MaxWait:    cfg.MaxWait,
		},
		logger:  logger,
		sleepFn: time.Sleep,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Send formats and delivers one notification. It returns a *types.AppError on
// failure; the caller decides whether to log or surface it. Retries stay
// within this call: once Send returns, the delivery attempt is over.
func (c *Channel) Send(ctx context.Context, msg types.NotificationMessage) error {
	payload, err := FormatDiscord(msg)
	if err != nil {
		return types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to encode discord payload",
			err,
		)
	}

	var lastResp *http.Response
	var lastErr error

	maxAttempts := 1 + c.retry.MaxRetries
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := c.attempt(ctx, payload)
		if err == nil {
			// 2xx with a platform-valid body.
			return nil
		}

		lastErr = err
		lastResp = resp

		// Circuit breaker open: stop immediately, the upstream needs air.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			break
		}

		// Permanent client errors do not retry.
		if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 &&
			resp.StatusCode != http.StatusTooManyRequests {
			break
		}

		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}

		if attempt < maxAttempts-1 {
			c.sleepFn(c.computeBackoff(attempt, resp))
		}
	}

	return c.mapError(lastResp, lastErr)
}

// attemptResult pairs the response metadata the retry loop needs. The body is
// consumed inside attempt; only status and headers travel upward.
func (c *Channel) attempt(ctx context.Context, payload []byte) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
		if reqErr != nil {
			return nil, reqErr
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		r, doErr := c.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}

		body, _ := io.ReadAll(io.LimitReader(r.Body, maxResponseBodyRead))
		r.Body.Close()

		if vErr := ValidateResponse(r.StatusCode, body); vErr != nil {
			return r, vErr
		}
		return r, nil
	})

	return resp, err
}

// computeBackoff determines the wait duration before the next retry attempt.
// It respects the Retry-After header if present, otherwise uses exponential
// backoff with jitter clamped to [MinWait, MaxWait].
func (c *Channel) computeBackoff(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
				wait := time.Duration(seconds) * time.Second
				if wait > c.retry.MaxWait {
					wait = c.retry.MaxWait
				}
				return wait
			}
			if t, err := http.ParseTime(retryAfter); err == nil {
				wait := time.Until(t)
				if wait <= 0 {
					return c.retry.MinWait
				}
				if wait > c.retry.MaxWait {
					wait = c.retry.MaxWait
				}
				return wait
			}
		}
	}

	// Exponential backoff with jitter in [MinWait, min(MaxWait, MinWait*2^attempt)].
	base := float64(c.retry.MinWait) * math.Pow(2, float64(attempt))
	maxWait := float64(c.retry.MaxWait)
	if base > maxWait {
		base = maxWait
	}
	minWait := float64(c.retry.MinWait)
	if base <= minWait {
		return c.retry.MinWait
	}
	jittered := minWait + rand.Float64()*(base-minWait)
	return time.Duration(jittered)
}

// mapError translates delivery failures into domain-level AppErrors.
func (c *Channel) mapError(resp *http.Response, err error) *types.AppError {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.NewAppError(
			types.ErrCodeUpstreamDiscordUnavailable,
			"circuit breaker is open; discord unavailable",
			err,
		)
	}

	if resp != nil {
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return types.NewAppError(
				types.ErrCodeUpstreamDiscordUnavailable,
				"discord rate limit exceeded after retries",
				err,
			)
		case resp.StatusCode >= 500:
			return types.NewAppError(
				types.ErrCodeUpstreamDiscordUnavailable,
				fmt.Sprintf("discord returned %d after retries", resp.StatusCode),
				err,
			)
		case resp.StatusCode >= 400:
			return types.NewAppError(
				types.ErrCodeUpstreamDiscordRejected,
				fmt.Sprintf("discord rejected the payload with %d", resp.StatusCode),
				err,
			)
		}
	}

	return types.NewAppError(
		types.ErrCodeUpstreamDiscordUnavailable,
		"discord delivery failed",
		err,
	)
}
