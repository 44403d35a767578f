package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(maxAttempts int) Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.MaxAttempts = maxAttempts
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.Jitter = 0
	return cfg
}

func TestDoDisabled(t *testing.T) {
	r, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	calls := 0
	err = r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, disabled retry must run exactly once", calls)
	}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	r, err := New(fastConfig(5))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	calls := 0
	err = r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, expected 3", calls)
	}
}

func TestDoMaxAttempts(t *testing.T) {
	cfg := fastConfig(3)
	var retries int
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) { retries++ }

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	calls := 0
	err = r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("persistent")
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("calls = %d, expected 3", calls)
	}
	if retries != 2 {
		t.Errorf("OnRetry fired %d times, expected 2", retries)
	}
}

func TestDoNonRetryableError(t *testing.T) {
	cfg := fastConfig(5)
	cfg.RetryableErrors = []string{"connection refused", "timeout"}

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	calls := 0
	err = r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("syntax error")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, non-matching error must not be retried", calls)
	}

	calls = 0
	err = r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, matching error must be retried", calls)
	}
}

func TestDoContextCancelled(t *testing.T) {
	cfg := fastConfig(0) // без лимита попыток
	cfg.InitialDelay = 50 * time.Millisecond

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err = r.Do(ctx, func(ctx context.Context) error {
		return errors.New("transient")
	})
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Errorf("expected context cancellation, got %v", err)
	}
}

func TestDelayGrowth(t *testing.T) {
	cfg := fastConfig(10)
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = time.Second

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Экспонента: 1ms, 2ms, 4ms
	if d := r.delay(1); d != time.Millisecond {
		t.Errorf("delay(1) = %v", d)
	}
	if d := r.delay(2); d != 2*time.Millisecond {
		t.Errorf("delay(2) = %v", d)
	}
	if d := r.delay(3); d != 4*time.Millisecond {
		t.Errorf("delay(3) = %v", d)
	}

	// Потолок
	if d := r.delay(30); d != time.Second {
		t.Errorf("delay(30) = %v, expected cap at %v", d, time.Second)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty backoff filled in", func(c *Config) { c.Backoff = "" }, false},
		{"negative attempts", func(c *Config) { c.MaxAttempts = -1 }, true},
		{"bad backoff", func(c *Config) { c.Backoff = "fibonacci" }, true},
		{"max below initial", func(c *Config) { c.MaxDelay = time.Millisecond }, true},
		{"jitter out of range", func(c *Config) { c.Jitter = 1.5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Enabled = true
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
