// Package sqlite - backend исполнителя на modernc.org/sqlite (pure Go,
// без CGO). Используется как встраиваемое хранилище по умолчанию и как
// in-memory БД в интеграционных тестах
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nurhachar-sibei/Datadeal/pkg/executor"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor/base"
	_ "modernc.org/sqlite"
)

const driverSqlite = "sqlite"

// Compile-time check: Executor должен реализовывать интерфейс executor.Executor
var _ executor.Executor = (*Executor)(nil)

// Регистрация backend'а в глобальной фабрике
func init() {
	executor.Register("sqlite", func() executor.Executor {
		return &Executor{}
	})
}

// Executor - исполнитель для SQLite
type Executor struct {
	base.SQLExecutor
}

// Connect устанавливает подключение к SQLite
func (e *Executor) Connect(ctx context.Context, cfg executor.Config) error {
	db, err := sql.Open(driverSqlite, cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// In-memory БД живет в рамках одного подключения:
	// пул из нескольких соединений дал бы несколько независимых БД
	if strings.Contains(cfg.DSN, ":memory:") {
		db.SetMaxOpenConns(1)
	} else if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	e.Init(db, "sqlite", Dialect{})

	if err := e.applyPragmaOptimizations(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to apply PRAGMA optimizations: %w", err)
	}

	return nil
}

// NewExecutor создает подключенный исполнитель для SQLite по пути к файлу
func NewExecutor(filePath string) (*Executor, error) {
	e := &Executor{}
	err := e.Connect(context.Background(), executor.Config{
		Type: "sqlite",
		DSN:  filePath,
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// applyPragmaOptimizations применяет PRAGMA оптимизации для массовых операций
func (e *Executor) applyPragmaOptimizations(ctx context.Context) error {
	pragmas := []string{
		// WAL mode: Write-Ahead Logging - заметно быстрее записи
		"PRAGMA journal_mode = WAL",

		// Synchronous NORMAL: fsync только на критичных моментах.
		// Безопасно при WAL mode
		"PRAGMA synchronous = NORMAL",

		// Cache size: 64 MB кеша (по умолчанию ~2 MB)
		"PRAGMA cache_size = -64000",

		// Временные таблицы/индексы в RAM, не на диске
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := e.DB().ExecContext(ctx, pragma); err != nil {
			// Отдельные PRAGMA могут не поддерживаться - не фатально
			continue
		}
	}

	return nil
}

// Dialect - SQL-диалект SQLite
type Dialect struct{}

var _ executor.Dialect = Dialect{}

func (Dialect) Name() string { return "sqlite" }

func (Dialect) Placeholder(n int) string { return "?" }

func (Dialect) QuoteIdent(name string) string { return `"` + name + `"` }

func (Dialect) TimestampType() string { return "TIMESTAMP" }

func (Dialect) TextType() string { return "TEXT" }

func (Dialect) FloatType() string { return "REAL" }

func (Dialect) LimitClause(n int) string { return fmt.Sprintf(" LIMIT %d", n) }

func (Dialect) TableExistsSQL() string {
	return `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`
}

func (Dialect) ListTablesSQL() string {
	return `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
}
