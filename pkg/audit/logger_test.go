package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEntryBuilders(t *testing.T) {
	entry := NewEntry(OpInsert, StatusSuccess).
		WithTable("pb").
		WithPolicy("skip").
		WithCounts(2, 1, 3).
		WithDuration(5*time.Millisecond).
		WithMetadata("checksum", "abc")

	if entry.ID == "" {
		t.Error("entry ID must be generated")
	}
	if entry.Table != "pb" || entry.Policy != "skip" {
		t.Errorf("table/policy = %q/%q", entry.Table, entry.Policy)
	}
	if entry.Inserted != 2 || entry.Updated != 1 || entry.Skipped != 3 {
		t.Errorf("counts = %d/%d/%d", entry.Inserted, entry.Updated, entry.Skipped)
	}
	if entry.Metadata["checksum"] != "abc" {
		t.Errorf("metadata = %v", entry.Metadata)
	}
	if entry.Status != StatusSuccess {
		t.Errorf("status = %q", entry.Status)
	}
}

func TestEntryIDsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	// Плотный цикл укладывает соседние записи в одну наносекунду
	for i := 0; i < 10000; i++ {
		id := NewEntry(OpInsert, StatusSuccess).ID
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate entry ID %q at iteration %d", id, i)
		}
		seen[id] = struct{}{}
	}
}

func TestWithErrorFlipsStatus(t *testing.T) {
	entry := NewEntry(OpCreateTable, StatusSuccess).WithError(errors.New("boom"))
	if entry.Status != StatusFailure {
		t.Errorf("status = %q, expected failure", entry.Status)
	}
	if entry.ErrorMessage != "boom" {
		t.Errorf("error message = %q", entry.ErrorMessage)
	}

	// nil ошибка статус не трогает
	entry = NewEntry(OpCreateTable, StatusSuccess).WithError(nil)
	if entry.Status != StatusSuccess || entry.ErrorMessage != "" {
		t.Errorf("nil error must keep entry intact: %+v", entry)
	}
}

func TestWriterAppenderJSONLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(NewWriterAppender(&buf))

	ctx := context.Background()
	if err := logger.Log(ctx, NewEntry(OpInsert, StatusSuccess).WithTable("pb").WithCounts(2, 0, 0)); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := logger.Log(ctx, NewEntry(OpDropTable, StatusSuccess).WithTable("pe")); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %d", len(lines))
	}

	var first Entry
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if first.Operation != OpInsert || first.Table != "pb" || first.Inserted != 2 {
		t.Errorf("decoded entry = %+v", first)
	}
}

func TestLoggerMultipleAppenders(t *testing.T) {
	var a, b bytes.Buffer
	logger := NewLogger(NewWriterAppender(&a))
	logger.AddAppender(NewWriterAppender(&b))

	if err := logger.Log(context.Background(), NewEntry(OpQuery, StatusSuccess)); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("entry must reach every appender")
	}
}

func TestNullLogger(t *testing.T) {
	logger := NewNullLogger()
	if err := logger.Log(context.Background(), NewEntry(OpInsert, StatusSuccess)); err != nil {
		t.Errorf("NullLogger.Log failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("NullLogger.Close failed: %v", err)
	}
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	appender, err := NewFileAppender(FileAppenderConfig{FilePath: path})
	if err != nil {
		t.Fatalf("NewFileAppender failed: %v", err)
	}

	logger := NewLogger(appender)
	if err := logger.Log(context.Background(), NewEntry(OpPipeline, StatusSuccess).WithTable("pb")); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read journal: %v", err)
	}
	var entry Entry
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("journal line is not valid JSON: %v", err)
	}
	if entry.Operation != OpPipeline || entry.Table != "pb" {
		t.Errorf("decoded entry = %+v", entry)
	}
}
