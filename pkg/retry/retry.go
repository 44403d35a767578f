// Package retry - повторы с backoff для внешних подключений.
// Пайплайн использует его для connect к БД и отправки событий в брокер:
// обе операции сетевые и падают транзиентно
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// Func - операция, которую имеет смысл повторять
type Func func(ctx context.Context) error

// Retryer выполняет операцию с повторами по конфигурации
type Retryer struct {
	config Config
}

// New создает Retryer. Невалидная конфигурация - ошибка
func New(config Config) (*Retryer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}
	return &Retryer{config: config}, nil
}

// Do выполняет операцию. При выключенном retry - один вызов без обвязки
func (r *Retryer) Do(ctx context.Context, fn Func) error {
	if !r.config.Enabled {
		return fn(ctx)
	}

	var lastErr error
	attempts := 0

	for {
		attempts++

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.retryable(err) {
			return fmt.Errorf("non-retryable error: %w", err)
		}

		if r.config.MaxAttempts > 0 && attempts >= r.config.MaxAttempts {
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", r.config.MaxAttempts, lastErr)
		}

		if ctx.Err() != nil {
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		}

		delay := r.delay(attempts)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempts, err, delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}

// delay вычисляет паузу перед следующей попыткой
func (r *Retryer) delay(attempt int) time.Duration {
	var delay time.Duration

	switch r.config.Backoff {
	case BackoffConstant:
		delay = r.config.InitialDelay
	case BackoffLinear:
		delay = r.config.InitialDelay * time.Duration(attempt)
	case BackoffExponential:
		multiplier := math.Pow(r.config.Multiplier, float64(attempt-1))
		delay = time.Duration(float64(r.config.InitialDelay) * multiplier)
	default:
		delay = r.config.InitialDelay
	}

	if r.config.MaxDelay > 0 && delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	// Jitter размазывает повторы нескольких пайплайнов по времени
	if r.config.Jitter > 0 {
		jitter := time.Duration(float64(delay) * r.config.Jitter * (rand.Float64()*2 - 1))
		delay += jitter
		if delay < 0 {
			delay = r.config.InitialDelay
		}
	}

	return delay
}

// retryable - повторять ли эту ошибку. Пустой список паттернов = повторять все
func (r *Retryer) retryable(err error) bool {
	if err == nil {
		return false
	}
	if len(r.config.RetryableErrors) == 0 {
		return true
	}
	errStr := err.Error()
	for _, pattern := range r.config.RetryableErrors {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
