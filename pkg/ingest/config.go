// Package ingest - пайплайны загрузки: CSV-панели → длинный формат →
// table store, с публикацией результата и событий.
// Парсинг файлов и конфигов - внешняя обвязка вокруг ядра
package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nurhachar-sibei/Datadeal/pkg/dedup"
	"github.com/nurhachar-sibei/Datadeal/pkg/notify"
	"github.com/nurhachar-sibei/Datadeal/pkg/resultlog"
	"github.com/nurhachar-sibei/Datadeal/pkg/retry"
)

// PipelineConfig - полная конфигурация пайплайна загрузки
type PipelineConfig struct {
	Name          string              `yaml:"name"`
	Version       string              `yaml:"version"`
	Description   string              `yaml:"description"`
	Database      DatabaseConfig      `yaml:"database"`
	Sources       []SourceConfig      `yaml:"sources"`
	Audit         AuditConfig         `yaml:"audit"`
	ErrorHandling ErrorHandlingConfig `yaml:"error_handling"`
	Retry         retry.Config        `yaml:"retry"`
	ResultLog     ResultLogConfig     `yaml:"result_log"`
	Notify        NotifyConfig        `yaml:"notify"`
}

// DatabaseConfig - подключение к целевой БД
type DatabaseConfig struct {
	Type     string `yaml:"type"`      // sqlite, postgres, mysql, mssql
	DSN      string `yaml:"dsn"`       // строка подключения
	Schema   string `yaml:"schema"`    // схема (PostgreSQL)
	Timeout  int    `yaml:"timeout"`   // таймаут запросов в секундах
	MaxConns int    `yaml:"max_conns"` // размер пула
}

// SourceConfig - один CSV-источник: широкий файл одной метрики
type SourceConfig struct {
	// Table - имя целевой таблицы (санитизируется при записи)
	Table string `yaml:"table"`

	// Metric - имя метрики; пустое = имя таблицы
	Metric string `yaml:"metric"`

	// Path - путь к широкому CSV (первая колонка - дата, заголовок - коды)
	Path string `yaml:"path"`

	// Policy - политика конфликтов: skip (default), overwrite, fullrow
	Policy string `yaml:"policy"`

	// Recreate - пересоздать таблицу (drop + create) перед загрузкой
	Recreate bool `yaml:"recreate"`
}

// AuditConfig - параметры audit журнала
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Output  string `yaml:"output"` // путь к JSON-lines файлу, пустой = stdout
}

// ErrorHandlingConfig - стратегия обработки ошибок источников
type ErrorHandlingConfig struct {
	// OnSourceError - fail (default) или skip
	OnSourceError string `yaml:"on_source_error"`
}

// ResultLogConfig - публикация результата выполнения в Redis
type ResultLogConfig struct {
	// Type - redis (пустое = отключено)
	Type string `yaml:"type"`

	resultlog.Config `yaml:",inline"`
}

// NotifyConfig - отправка событий жизненного цикла в message broker
type NotifyConfig struct {
	// Enabled - отправлять события create/insert по источникам
	Enabled bool `yaml:"enabled"`

	notify.Config `yaml:",inline"`
}

// LoadConfig читает YAML конфигурацию пайплайна.
// Переменные окружения вида ${VAR} разворачиваются до парсинга -
// секреты (DSN, пароли) не хранятся в файле
func LoadConfig(path string) (*PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg PipelineConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет конфигурацию
func (c *PipelineConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("pipeline name is required")
	}
	if c.Database.Type == "" {
		return fmt.Errorf("database type is required")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	for i, src := range c.Sources {
		if src.Table == "" {
			return fmt.Errorf("source[%d]: table name is required", i)
		}
		if src.Path == "" {
			return fmt.Errorf("source[%d] (%s): path is required", i, src.Table)
		}
		if _, err := dedup.ParsePolicy(src.Policy); err != nil {
			return fmt.Errorf("source[%d] (%s): %w", i, src.Table, err)
		}
	}

	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}

	switch c.ErrorHandling.OnSourceError {
	case "", "fail", "skip":
	default:
		return fmt.Errorf("unknown on_source_error: %q (expected fail or skip)",
			c.ErrorHandling.OnSourceError)
	}

	if c.ResultLog.Type != "" && c.ResultLog.Type != "redis" {
		return fmt.Errorf("unsupported result_log type: %q", c.ResultLog.Type)
	}
	if c.ResultLog.Type == "redis" {
		if c.ResultLog.Address == "" {
			return fmt.Errorf("result_log: address is required")
		}
		if c.ResultLog.Name == "" {
			return fmt.Errorf("result_log: name is required")
		}
	}

	return nil
}

// MetricFor возвращает имя метрики источника (fallback - имя таблицы)
func (s SourceConfig) MetricFor() string {
	if s.Metric != "" {
		return s.Metric
	}
	return s.Table
}
