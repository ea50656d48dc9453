package xlitfix

import (
	"context"
	"errors"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes a function with exponential backoff retry.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		// Check context before each attempt
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		// Check if error is retryable
		if !IsRetryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxRetries {
			delay := cfg.BaseDelay * time.Duration(1<<attempt)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Check for ModelError with Retryable flag
	var modelErr *ModelError
	if errors.As(err, &modelErr) {
		return modelErr.Retryable
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Sampling may return a different number of outputs on the next call
	var countErr *CountMismatchError
	return errors.As(err, &countErr)
}

// RetryableModel wraps a Model with retry logic.
type RetryableModel struct {
	model  Model
	config RetryConfig
}

// NewRetryableModel creates a new model with retry logic.
func NewRetryableModel(model Model, cfg RetryConfig) *RetryableModel {
	return &RetryableModel{
		model:  model,
		config: cfg,
	}
}

// Transliterate implements Model with retry logic.
func (m *RetryableModel) Transliterate(ctx context.Context, req TransliterateRequest) ([]string, error) {
	return WithRetry(ctx, m.config, func() ([]string, error) {
		return m.model.Transliterate(ctx, req)
	})
}
