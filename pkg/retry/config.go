package retry

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Backoff - стратегия роста задержки между попытками
type Backoff string

const (
	BackoffConstant    Backoff = "constant"
	BackoffLinear      Backoff = "linear"
	BackoffExponential Backoff = "exponential"
)

// Config - параметры повторов
type Config struct {
	// Enabled - выключенный retry выполняет операцию ровно один раз
	Enabled bool `yaml:"enabled"`

	// MaxAttempts - максимум попыток, включая первую (0 = без лимита)
	MaxAttempts int `yaml:"max_attempts"`

	// InitialDelay - задержка перед первым повтором
	InitialDelay time.Duration `yaml:"initial_delay"`

	// MaxDelay - потолок задержки (0 = без потолка)
	MaxDelay time.Duration `yaml:"max_delay"`

	// Backoff - стратегия роста задержки, пустая = exponential
	Backoff Backoff `yaml:"backoff"`

	// Multiplier - множитель exponential backoff (по умолчанию 2.0)
	Multiplier float64 `yaml:"multiplier"`

	// Jitter - доля случайного разброса задержки, 0.0 - 1.0
	Jitter float64 `yaml:"jitter"`

	// RetryableErrors - подстроки ошибок, подлежащих повтору.
	// Пустой список = повторять любые ошибки
	RetryableErrors []string `yaml:"retryable_errors"`

	// OnRetry - вызывается перед каждым повтором
	OnRetry func(attempt int, err error, delay time.Duration) `yaml:"-"`
}

// UnmarshalYAML принимает задержки в человеческом виде ("500ms", "30s")
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type raw struct {
		Enabled         bool     `yaml:"enabled"`
		MaxAttempts     int      `yaml:"max_attempts"`
		InitialDelay    string   `yaml:"initial_delay"`
		MaxDelay        string   `yaml:"max_delay"`
		Backoff         Backoff  `yaml:"backoff"`
		Multiplier      float64  `yaml:"multiplier"`
		Jitter          float64  `yaml:"jitter"`
		RetryableErrors []string `yaml:"retryable_errors"`
	}
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}

	c.Enabled = r.Enabled
	c.MaxAttempts = r.MaxAttempts
	c.Backoff = r.Backoff
	c.Multiplier = r.Multiplier
	c.Jitter = r.Jitter
	c.RetryableErrors = r.RetryableErrors

	if r.InitialDelay != "" {
		d, err := time.ParseDuration(r.InitialDelay)
		if err != nil {
			return fmt.Errorf("invalid initial_delay: %w", err)
		}
		c.InitialDelay = d
	}
	if r.MaxDelay != "" {
		d, err := time.ParseDuration(r.MaxDelay)
		if err != nil {
			return fmt.Errorf("invalid max_delay: %w", err)
		}
		c.MaxDelay = d
	}
	return nil
}

// DefaultConfig - повторы выключены; включение задает разумные границы
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Backoff:      BackoffExponential,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Validate проверяет конфигурацию и подставляет умолчания
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be >= 0, got %d", c.MaxAttempts)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("initial_delay must be >= 0")
	}
	if c.MaxDelay > 0 && c.MaxDelay < c.InitialDelay {
		return fmt.Errorf("max_delay (%v) must be >= initial_delay (%v)", c.MaxDelay, c.InitialDelay)
	}
	if c.InitialDelay == 0 {
		c.InitialDelay = time.Second
	}
	switch c.Backoff {
	case "":
		c.Backoff = BackoffExponential
	case BackoffConstant, BackoffLinear, BackoffExponential:
	default:
		return fmt.Errorf("invalid backoff strategy: %s", c.Backoff)
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.Jitter < 0 || c.Jitter > 1.0 {
		return fmt.Errorf("jitter must be between 0.0 and 1.0, got %f", c.Jitter)
	}
	return nil
}
