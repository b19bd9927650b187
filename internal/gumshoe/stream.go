package gumshoe

import (
	"context"
	"fmt"
	"time"
)

// Streaming poller defaults. The remote investigation is asynchronous:
// a submitted message is acknowledged immediately and the result is
// polled for. Stream folds that into one blocking call.
const (
	// DefaultSettleDelay is how long to wait after submission before
	// the first poll. The remote task needs a moment to start.
	DefaultSettleDelay = 2 * time.Second

	// DefaultStreamTimeout is the hard wall-clock bound on one
	// streaming call, measured from submission.
	DefaultStreamTimeout = 5 * time.Minute

	// DefaultRetryFallback is the poll interval used when the server
	// does not specify one.
	DefaultRetryFallback = 4 * time.Second

	// DefaultMinPollInterval clamps server-specified intervals from
	// below; a zero or negative suggestion never causes a hot loop.
	DefaultMinPollInterval = 1 * time.Second

	// DefaultErrorBackoff is the first delay after a transient poll
	// failure. It doubles on each consecutive failure.
	DefaultErrorBackoff = 2 * time.Second

	// DefaultMaxPollFailures is how many consecutive poll failures are
	// tolerated before the last error propagates.
	DefaultMaxPollFailures = 3
)

// StreamConfig tunes the streaming poller. The zero value means "all
// defaults"; tests shrink the delays.
type StreamConfig struct {
	SettleDelay     time.Duration
	Timeout         time.Duration
	RetryFallback   time.Duration
	MinPollInterval time.Duration
	ErrorBackoff    time.Duration
	MaxPollFailures int
}

func (c StreamConfig) withDefaults() StreamConfig {
	if c.SettleDelay <= 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultStreamTimeout
	}
	if c.RetryFallback <= 0 {
		c.RetryFallback = DefaultRetryFallback
	}
	if c.MinPollInterval <= 0 {
		c.MinPollInterval = DefaultMinPollInterval
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = DefaultErrorBackoff
	}
	if c.MaxPollFailures <= 0 {
		c.MaxPollFailures = DefaultMaxPollFailures
	}
	return c
}

// StreamResult is the terminal outcome of a successful streaming call.
type StreamResult struct {
	ChatID   string
	Response string
}

// Stream submits a message and blocks until the investigation
// completes, fails, is cancelled, or the wall-clock deadline elapses.
// Each new partial snapshot the server reports is passed to onPartial
// exactly once; byte-identical repeats are suppressed. onPartial may
// be nil. Cancelling ctx stops the call at the next suspension point
// with no further network calls; it does not affect other calls
// sharing the session.
func (c *Client) Stream(ctx context.Context, chatID, message string, onPartial func(partial string)) (StreamResult, error) {
	ex, err := c.SendMessage(ctx, chatID, message)
	if err != nil {
		return StreamResult{}, fmt.Errorf("submit message: %w", err)
	}
	deadline := time.Now().Add(c.stream.Timeout)

	c.logger.Debug("message submitted",
		"chat_id", ex.ChatID,
		"request_id", ex.RequestID,
	)

	if err := sleepCtx(ctx, c.stream.SettleDelay); err != nil {
		return StreamResult{}, fmt.Errorf("streaming cancelled: %w", err)
	}

	var lastPartial string
	havePartial := false
	failures := 0

	for {
		if err := ctx.Err(); err != nil {
			return StreamResult{}, fmt.Errorf("streaming cancelled: %w", err)
		}
		if !time.Now().Before(deadline) {
			return StreamResult{}, fmt.Errorf("chat %s: %w", ex.ChatID, ErrStreamTimeout)
		}

		status, err := c.GetResponse(ctx, ex.RequestID)
		if err != nil {
			// Cancellation surfacing through the poll call is not a
			// transient service failure.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return StreamResult{}, fmt.Errorf("streaming cancelled: %w", ctxErr)
			}

			failures++
			if failures >= c.stream.MaxPollFailures {
				return StreamResult{}, fmt.Errorf("polling gave up after %d consecutive failures: %w", failures, err)
			}
			backoff := c.stream.ErrorBackoff << (failures - 1)
			c.logger.Warn("poll failed, backing off",
				"request_id", ex.RequestID,
				"failures", failures,
				"backoff", backoff,
				"error", err,
			)
			if err := sleepCtx(ctx, backoff); err != nil {
				return StreamResult{}, fmt.Errorf("streaming cancelled: %w", err)
			}
			continue
		}
		failures = 0

		switch status.State {
		case StateProcessing:
			if status.Partial != nil && (!havePartial || *status.Partial != lastPartial) {
				lastPartial = *status.Partial
				havePartial = true
				if onPartial != nil {
					onPartial(lastPartial)
				}
			}
			if err := sleepCtx(ctx, c.pollInterval(status)); err != nil {
				return StreamResult{}, fmt.Errorf("streaming cancelled: %w", err)
			}

		case StateComplete:
			return StreamResult{ChatID: ex.ChatID, Response: status.Response}, nil

		case StateFailed:
			return StreamResult{}, &TaskError{Message: status.Reason}
		}
	}
}

// pollInterval resolves how long to wait before the next poll: the
// server's suggestion when it gave a usable one, the fallback
// otherwise, clamped from below so a bogus suggestion never spins.
func (c *Client) pollInterval(status ResponseStatus) time.Duration {
	d := status.RetryAfter
	if d <= 0 {
		d = c.stream.RetryFallback
	}
	if d < c.stream.MinPollInterval {
		d = c.stream.MinPollInterval
	}
	return d
}

// sleepCtx sleeps for d or until ctx is cancelled, whichever comes
// first, returning the context error in the latter case.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
