package errors

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/compozy/testproject/engine/core"
	"github.com/compozy/testproject/pkg/logger"
)

// -----
// Recovery
// -----

// WithRecover executes fn and converts a panic into a PANIC_RECOVERED error
func WithRecover(operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)

			switch v := r.(type) {
			case error:
				err = v
			case string:
				err = errors.New(v)
			default:
				err = fmt.Errorf("panic: %v", v)
			}

			err = core.NewError(err, "PANIC_RECOVERED", map[string]any{
				"operation": operation,
				"panic":     fmt.Sprintf("%v", r),
			})
		}
	}()

	return fn()
}

// -----
// Retry using retry-go
// -----

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxAttempts     uint
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	RetryableErrors []core.ErrorCode
}

// DefaultRetryConfig returns the defaults used for network calls
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		RetryableErrors: []core.ErrorCode{
			core.ErrorCodeStoreConnection,
			core.ErrorCodeDescriberFailed,
		},
	}
}

func (c *RetryConfig) options(ctx context.Context, operation string) []retry.Option {
	return []retry.Option{
		retry.Attempts(c.MaxAttempts),
		retry.Delay(c.InitialDelay),
		retry.MaxDelay(c.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("operation failed, retrying",
				"operation", operation,
				"attempt", n+1,
				"max_attempts", c.MaxAttempts,
				"error", err,
			)
		}),
		retry.RetryIf(func(err error) bool {
			return isRetryable(err, c.RetryableErrors)
		}),
	}
}

// WithRetry executes fn, retrying errors whose code is listed in config
func WithRetry(ctx context.Context, operation string, config *RetryConfig, fn func() error) error {
	_, err := WithRetryTyped(ctx, operation, config, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// WithRetryTyped executes fn with retry logic and returns its result
func WithRetryTyped[T any](
	ctx context.Context,
	operation string,
	config *RetryConfig,
	fn func() (T, error),
) (T, error) {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var result T
	err := retry.Do(func() error {
		var err error
		result, err = fn()
		return err
	}, config.options(ctx, operation)...)

	if err != nil && isRetryable(err, config.RetryableErrors) {
		return result, core.NewError(err, "MAX_RETRIES_EXCEEDED", map[string]any{
			"operation": operation,
			"attempts":  config.MaxAttempts,
		})
	}
	return result, err
}

// isRetryable checks whether err carries one of the retryable codes
func isRetryable(err error, codes []core.ErrorCode) bool {
	code := core.CodeOf(err)
	if code == "" {
		return false
	}
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// -----
// Graceful Degradation
// -----

// GracefulDegradeConfig configures graceful degradation behavior
type GracefulDegradeConfig struct {
	LogWarning bool
}

// WithGracefulDegrade executes a function and returns a default value on error
func WithGracefulDegrade[T any](operation string, config *GracefulDegradeConfig, defaultVal T, fn func() (T, error)) T {
	result, err := fn()
	if err != nil {
		if config != nil && config.LogWarning {
			logger.Warn("operation degraded gracefully",
				"operation", operation,
				"error", err,
			)
		}
		return defaultVal
	}
	return result
}
