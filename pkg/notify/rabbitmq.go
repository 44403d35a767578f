package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQ реализует Notifier для RabbitMQ
type RabbitMQ struct {
	config  Config
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewRabbitMQ создает RabbitMQ notifier
func NewRabbitMQ(cfg Config) (*RabbitMQ, error) {
	if cfg.Queue == "" {
		return nil, fmt.Errorf("queue name is required for RabbitMQ")
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		if cfg.UseTLS {
			cfg.Port = 5671 // amqps default
		} else {
			cfg.Port = 5672 // amqp default
		}
	}
	if cfg.VHost == "" {
		cfg.VHost = "/"
	}
	return &RabbitMQ{config: cfg}, nil
}

// Connect устанавливает соединение и объявляет очередь.
// Параметры очереди должны совпадать с существующей очередью
func (r *RabbitMQ) Connect(ctx context.Context) error {
	scheme := "amqp"
	if r.config.UseTLS {
		scheme = "amqps"
	}
	connStr := fmt.Sprintf("%s://%s:%s@%s:%d/%s",
		scheme, r.config.User, r.config.Password,
		r.config.Host, r.config.Port, r.config.VHost)

	var err error
	if r.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: r.config.Host,
			MinVersion: tls.VersionTLS12,
		}
		r.conn, err = amqp.DialTLS(connStr, tlsConfig)
	} else {
		r.conn, err = amqp.Dial(connStr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	r.channel, err = r.conn.Channel()
	if err != nil {
		r.conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = r.channel.QueueDeclare(
		r.config.Queue,
		r.config.Durable,
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		r.channel.Close()
		r.conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	return nil
}

// Send публикует событие в очередь
func (r *RabbitMQ) Send(ctx context.Context, event Event) error {
	if r.channel == nil {
		return fmt.Errorf("not connected to RabbitMQ")
	}

	payload, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		"",             // exchange (default)
		r.config.Queue, // routing key = имя очереди
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Ping проверяет доступность RabbitMQ
func (r *RabbitMQ) Ping(ctx context.Context) error {
	if r.conn == nil || r.conn.IsClosed() {
		return fmt.Errorf("not connected to RabbitMQ")
	}
	if r.channel == nil {
		return fmt.Errorf("channel not open")
	}
	return nil
}

// Close закрывает канал и соединение
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			return fmt.Errorf("failed to close channel: %w", err)
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	return nil
}

// Type возвращает тип брокера
func (r *RabbitMQ) Type() string {
	return "rabbitmq"
}
