// Package resultlog - публикация результата выполнения пайплайна в Redis.
// Оркестратор получает состояние двумя путями: GET ключа (polling)
// и подписка на канал (event-driven)
package resultlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config - параметры публикации результата
type Config struct {
	// Name - имя результата, входит в Redis-ключ и имя канала
	Name string `yaml:"name"`

	// Address - адрес Redis (host:port)
	Address string `yaml:"address"`

	// Password - пароль Redis (пустой = без аутентификации)
	Password string `yaml:"password,omitempty"`

	// DB - номер базы Redis
	DB int `yaml:"db,omitempty"`

	// TTL - время жизни ключа состояния в секундах
	TTL int `yaml:"ttl"`
}

// Run - счетчики одного выполнения пайплайна
type Run struct {
	PipelineName string
	StartedAt    time.Time
	FinishedAt   time.Time
	RowsLoaded   int
	RowsInserted int
	RowsUpdated  int
	RowsSkipped  int
}

// PipelineResult - состояние пайплайна, публикуемое в Redis
// после завершения выполнения (успешного или с ошибкой).
//
// Redis-ключи:
//
//	SET  datadeal:pipeline:<name>:state  <JSON>  EX <ttl>  — для GET-запросов оркестратора
//	PUB  datadeal:pipeline:<name>                          — для event-driven маршрутизации
type PipelineResult struct {
	PipelineName string    `json:"pipeline_name"`
	ResultName   string    `json:"result_name"`
	Status       string    `json:"status"` // "success" | "failed"
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	DurationMs   int64     `json:"duration_ms"`
	RowsLoaded   int       `json:"rows_loaded"`
	RowsInserted int       `json:"rows_inserted"`
	RowsUpdated  int       `json:"rows_updated"`
	RowsSkipped  int       `json:"rows_skipped"`
	Error        *string   `json:"error,omitempty"`
}

// RedisPublisher публикует результат выполнения пайплайна в Redis
type RedisPublisher struct {
	client *redis.Client
	config Config
}

// NewRedisPublisher создает Redis publisher на основе конфигурации
func NewRedisPublisher(config Config) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return &RedisPublisher{client: client, config: config}
}

// Publish публикует результат выполнения пайплайна:
//   - SET datadeal:pipeline:<name>:state <JSON> EX <ttl>  → для опроса (polling)
//   - PUBLISH datadeal:pipeline:<name> <JSON>             → для подписки (pub/sub)
//
// Вызывается независимо от результата выполнения.
// execErr == nil означает успешное выполнение
func (p *RedisPublisher) Publish(ctx context.Context, run Run, execErr error) error {
	result := PipelineResult{
		PipelineName: run.PipelineName,
		ResultName:   p.config.Name,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		DurationMs:   run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
		RowsLoaded:   run.RowsLoaded,
		RowsInserted: run.RowsInserted,
		RowsUpdated:  run.RowsUpdated,
		RowsSkipped:  run.RowsSkipped,
	}

	if execErr != nil {
		result.Status = "failed"
		errStr := execErr.Error()
		result.Error = &errStr
	} else {
		result.Status = "success"
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	stateKey := fmt.Sprintf("datadeal:pipeline:%s:state", p.config.Name)
	eventChannel := fmt.Sprintf("datadeal:pipeline:%s", p.config.Name)
	ttl := time.Duration(p.config.TTL) * time.Second

	if err := p.client.Set(ctx, stateKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}

	if err := p.client.Publish(ctx, eventChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}

	return nil
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
