// Package audit - журнал жизненного цикла таблиц и пайплайнов.
// Окружающая система логирует create/drop/insert для аудита, поэтому
// table store пишет запись на каждую операцию, включая неуспешные
package audit

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

// Operation - тип операции
type Operation string

const (
	OpCreateTable Operation = "create_table"
	OpDropTable   Operation = "drop_table"
	OpInsert      Operation = "insert"
	OpDelete      Operation = "delete"
	OpQuery       Operation = "query"
	OpMultiFactor Operation = "multifactor"
	OpPipeline    Operation = "pipeline"
	OpExport      Operation = "export"
	OpConnect     Operation = "connect"
)

// Status - статус выполнения операции
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Entry - запись в audit журнале
type Entry struct {
	// ID - уникальный идентификатор записи
	ID string `json:"id"`

	// Timestamp - время операции
	Timestamp time.Time `json:"timestamp"`

	// Operation - тип операции
	Operation Operation `json:"operation"`

	// Status - статус выполнения
	Status Status `json:"status"`

	// Table - имя таблицы (после санитизации)
	Table string `json:"table,omitempty"`

	// Policy - политика конфликтов операции вставки
	Policy string `json:"policy,omitempty"`

	// Inserted/Updated/Skipped - счетчики dedup-плана
	Inserted int `json:"inserted,omitempty"`
	Updated  int `json:"updated,omitempty"`
	Skipped  int `json:"skipped,omitempty"`

	// Duration - длительность операции
	Duration time.Duration `json:"duration,omitempty"`

	// ErrorMessage - сообщение об ошибке
	ErrorMessage string `json:"error_message,omitempty"`

	// Metadata - дополнительные метаданные
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewEntry - создать новую audit запись
func NewEntry(operation Operation, status Status) *Entry {
	return &Entry{
		ID:        generateID(),
		Timestamp: time.Now(),
		Operation: operation,
		Status:    status,
	}
}

// WithTable - установить имя таблицы
func (e *Entry) WithTable(table string) *Entry {
	e.Table = table
	return e
}

// WithPolicy - установить политику конфликтов
func (e *Entry) WithPolicy(policy string) *Entry {
	e.Policy = policy
	return e
}

// WithCounts - установить счетчики dedup-плана
func (e *Entry) WithCounts(inserted, updated, skipped int) *Entry {
	e.Inserted = inserted
	e.Updated = updated
	e.Skipped = skipped
	return e
}

// WithDuration - установить длительность
func (e *Entry) WithDuration(d time.Duration) *Entry {
	e.Duration = d
	return e
}

// WithError - установить ошибку и перевести статус в failure
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.ErrorMessage = err.Error()
		e.Status = StatusFailure
	}
	return e
}

// WithMetadata - добавить метаданные
func (e *Entry) WithMetadata(key string, value any) *Entry {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

// ToJSON - преобразовать в JSON
func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// String - строковое представление для текстовых appender'ов
func (e *Entry) String() string {
	return fmt.Sprintf("[%s] %s %s table=%s (inserted=%d, updated=%d, skipped=%d, duration=%v)",
		e.Timestamp.Format(time.RFC3339),
		e.Operation,
		e.Status,
		e.Table,
		e.Inserted,
		e.Updated,
		e.Skipped,
		e.Duration,
	)
}

// idSeq - сквозной счетчик записей процесса: две записи, созданные
// в одну наносекунду, одним timestamp'ом не различить
var idSeq atomic.Uint64

// generateID - генерация уникального ID
func generateID() string {
	return fmt.Sprintf("audit-%d-%d",
		time.Now().UnixNano(),
		idSeq.Add(1),
	)
}
