package audit

import (
	"context"
	"fmt"
	"sync"
)

// Logger - интерфейс audit журнала. Запись синхронная: операция
// над таблицей считается завершенной вместе со своей audit записью
type Logger interface {
	Log(ctx context.Context, entry *Entry) error
	Close() error
}

// AuditLogger - журнал, пишущий в набор appender'ов
type AuditLogger struct {
	mu        sync.RWMutex
	appenders []Appender
	onError   func(error)
}

// NewLogger - создать audit logger
func NewLogger(appenders ...Appender) *AuditLogger {
	return &AuditLogger{appenders: appenders}
}

// OnError - установить callback для ошибок appender'ов
func (l *AuditLogger) OnError(fn func(error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onError = fn
}

// AddAppender - добавить appender
func (l *AuditLogger) AddAppender(appender Appender) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appenders = append(l.appenders, appender)
}

// Log - записать entry во все appenders. Возвращает первую ошибку,
// но пытается записать в каждый appender
func (l *AuditLogger) Log(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("entry is nil")
	}

	l.mu.RLock()
	appenders := l.appenders
	onError := l.onError
	l.mu.RUnlock()

	var firstError error
	for _, appender := range appenders {
		if err := appender.Append(ctx, entry); err != nil {
			if firstError == nil {
				firstError = err
			}
			if onError != nil {
				onError(fmt.Errorf("appender failed: %w", err))
			}
		}
	}
	return firstError
}

// Close - закрыть все appenders
func (l *AuditLogger) Close() error {
	l.mu.RLock()
	appenders := l.appenders
	l.mu.RUnlock()

	var firstError error
	for _, appender := range appenders {
		if err := appender.Close(); err != nil && firstError == nil {
			firstError = err
		}
	}
	return firstError
}

// NullLogger - пустой logger (для тестов и отключенного аудита)
type NullLogger struct{}

// NewNullLogger - создать null logger
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

// Log - ничего не делает
func (nl *NullLogger) Log(ctx context.Context, entry *Entry) error {
	return nil
}

// Close - ничего не делает
func (nl *NullLogger) Close() error {
	return nil
}
