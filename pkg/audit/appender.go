package audit

import (
	"context"
	"io"
	"sync"
)

// Appender - приемник audit записей
type Appender interface {
	Append(ctx context.Context, entry *Entry) error
	Close() error
}

// WriterAppender - запись JSON-строк в произвольный io.Writer
// (stdout, буфер в тестах)
type WriterAppender struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterAppender - создать writer appender
func NewWriterAppender(w io.Writer) *WriterAppender {
	return &WriterAppender{w: w}
}

// Append - записать entry как JSON-строку
func (wa *WriterAppender) Append(ctx context.Context, entry *Entry) error {
	data, err := entry.ToJSON()
	if err != nil {
		return err
	}
	data = append(data, '\n')

	wa.mu.Lock()
	defer wa.mu.Unlock()
	_, err = wa.w.Write(data)
	return err
}

// Close - закрыть appender (noop, writer принадлежит вызывающему)
func (wa *WriterAppender) Close() error {
	return nil
}

// NullAppender - пустой appender (для тестов)
type NullAppender struct{}

// NewNullAppender - создать null appender
func NewNullAppender() *NullAppender {
	return &NullAppender{}
}

// Append - ничего не делает
func (na *NullAppender) Append(ctx context.Context, entry *Entry) error {
	return nil
}

// Close - ничего не делает
func (na *NullAppender) Close() error {
	return nil
}
