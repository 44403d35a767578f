// Package notify - отправка событий жизненного цикла таблиц во внешние
// message broker'ы. Оркестраторы и downstream-потребители узнают о
// create/insert/drop без опроса БД. Только отправка: потребление событий -
// ответственность внешних систем
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event - событие жизненного цикла таблицы, сериализуется в JSON
type Event struct {
	// Op - операция: create_table, insert, drop_table, pipeline
	Op string `json:"op"`

	// Table - имя таблицы (после санитизации)
	Table string `json:"table,omitempty"`

	// Rows - число затронутых строк
	Rows int `json:"rows,omitempty"`

	// Status - success или failure
	Status string `json:"status"`

	// Error - сообщение об ошибке при failure
	Error string `json:"error,omitempty"`

	// At - время события
	At time.Time `json:"at"`
}

// Marshal сериализует событие в JSON
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier - универсальный интерфейс отправителя событий
type Notifier interface {
	// Connect устанавливает соединение с брокером
	Connect(ctx context.Context) error

	// Send отправляет событие
	Send(ctx context.Context, event Event) error

	// Ping проверяет доступность брокера
	Ping(ctx context.Context) error

	// Close закрывает соединение
	Close() error

	// Type возвращает тип брокера (kafka, rabbitmq)
	Type() string
}

// Config - параметры подключения к брокеру
type Config struct {
	// Type - kafka или rabbitmq
	Type string `yaml:"type"`

	// Kafka
	Brokers []string `yaml:"brokers,omitempty"`
	Topic   string   `yaml:"topic,omitempty"`

	// RabbitMQ
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Queue    string `yaml:"queue,omitempty"`
	VHost    string `yaml:"vhost,omitempty"`
	UseTLS   bool   `yaml:"use_tls,omitempty"`

	// Durable - очередь переживает перезапуск RabbitMQ
	Durable bool `yaml:"durable,omitempty"`
}

// New создает Notifier по конфигурации
func New(cfg Config) (Notifier, error) {
	switch cfg.Type {
	case "kafka":
		return NewKafka(cfg)
	case "rabbitmq":
		return NewRabbitMQ(cfg)
	default:
		return nil, fmt.Errorf("unsupported notifier type: %s (supported: kafka, rabbitmq)", cfg.Type)
	}
}
