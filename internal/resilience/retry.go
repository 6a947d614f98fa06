package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Strategy selects how the backoff delay grows between attempts.
type Strategy string

const (
	// StrategyExponential grows the delay by Multiplier^(attempt-1).
	StrategyExponential Strategy = "exponential"
	// StrategyLinear grows the delay by attempt number.
	StrategyLinear Strategy = "linear"
	// StrategyFixed uses BaseDelay for every retry.
	StrategyFixed Strategy = "fixed"
	// StrategyImmediate retries without delay.
	StrategyImmediate Strategy = "immediate"
)

// RetryConfig controls retry behavior for one source category. Configured
// once at startup; read-only during operation.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts (including the first try).
	// A value of 1 means no retries. Default: 3.
	MaxAttempts int

	// BaseDelay is the base delay before the first retry. Default: 500ms.
	BaseDelay time.Duration

	// MaxDelay caps the backoff duration. Default: 30s.
	MaxDelay time.Duration

	// Strategy selects the backoff curve. Default: exponential.
	Strategy Strategy

	// Multiplier scales exponential backoff. Default: 2.0.
	Multiplier float64

	// Jitter adds ±10% randomization to each computed delay.
	Jitter bool

	// Timeout bounds a single attempt. Zero means no per-attempt deadline.
	Timeout time.Duration

	// RetryablePatterns extends the transient-error substring matching for
	// this source category.
	RetryablePatterns []string

	// ShouldRetry optionally overrides the default transient-error check.
	ShouldRetry func(err error) bool

	// OnRetry is called before each retry sleep with attempt number and error.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig returns a sensible retry configuration for API calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
		Strategy:    StrategyExponential,
		Multiplier:  2.0,
		Jitter:      true,
	}
}

func applyDefaults(cfg RetryConfig) RetryConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyExponential
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	return cfg
}

func (cfg RetryConfig) retryable(err error) bool {
	if cfg.ShouldRetry != nil {
		return cfg.ShouldRetry(err)
	}
	if len(cfg.RetryablePatterns) > 0 {
		patterns := append(append([]string{}, defaultTransientPatterns...), cfg.RetryablePatterns...)
		return isTransientWith(err, patterns)
	}
	return IsTransient(err)
}

// Do executes fn with retry according to cfg. Only errors deemed retryable
// are retried; anything else fails on the first attempt. A provider
// retry-after hint replaces the computed delay. Context cancellation stops
// retries immediately.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal executes fn returning a value with retry logic. Same semantics as Do
// but preserves the return value from the successful call.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = applyDefaults(cfg)

	var zero T
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		val, err := attemptOnce(ctx, cfg, fn)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}

		if !cfg.retryable(lastErr) {
			return zero, lastErr
		}

		if attempt >= cfg.MaxAttempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr)
		}

		delay := computeDelay(attempt, cfg)
		if hint := RetryAfterHint(lastErr); hint > 0 {
			delay = hint
		}
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, lastErr
			case <-timer.C:
			}
		}
	}

	return zero, lastErr
}

func attemptOnce[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	if cfg.Timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	return fn(attemptCtx)
}

// computeDelay returns the backoff before the retry following the given
// attempt (1-based), clamped to MaxDelay and optionally jittered ±10%.
func computeDelay(attempt int, cfg RetryConfig) time.Duration {
	var delay float64
	switch cfg.Strategy {
	case StrategyImmediate:
		return 0
	case StrategyFixed:
		delay = float64(cfg.BaseDelay)
	case StrategyLinear:
		delay = float64(cfg.BaseDelay) * float64(attempt)
	default: // exponential
		delay = float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	}

	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	if cfg.Jitter {
		delay += (rand.Float64()*2 - 1) * delay * 0.10
	}

	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// RetryLogger returns an OnRetry callback that logs each retry attempt.
func RetryLogger(source, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying source query",
			zap.String("source", source),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
