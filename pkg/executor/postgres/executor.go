// Package postgres - backend исполнителя на jackc/pgx/v5 с пулом подключений.
// Исходная система хранила факторные панели именно в PostgreSQL
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor"
)

// Compile-time check: Executor должен реализовывать интерфейс executor.Executor
var _ executor.Executor = (*Executor)(nil)

// Регистрация backend'а в глобальной фабрике
func init() {
	executor.Register("postgres", func() executor.Executor {
		return &Executor{}
	})
}

// Executor - исполнитель для PostgreSQL
type Executor struct {
	pool    *pgxpool.Pool
	dialect Dialect
}

// Connect устанавливает подключение к PostgreSQL
func (e *Executor) Connect(ctx context.Context, cfg executor.Config) error {
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.MaxConns > 0 {
		config.MaxConns = int32(cfg.MaxConns)
	} else {
		config.MaxConns = 10 // default
	}
	if cfg.MinConns > 0 {
		config.MinConns = int32(cfg.MinConns)
	} else {
		config.MinConns = 2 // default
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	schema := cfg.Schema
	if schema == "" {
		schema = "public" // default schema
	}

	e.pool = pool
	e.dialect = Dialect{schema: schema}
	return nil
}

// Pool возвращает *pgxpool.Pool для прямого доступа
func (e *Executor) Pool() *pgxpool.Pool {
	return e.pool
}

// Exec выполняет statement и возвращает число затронутых строк
func (e *Executor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if e.pool == nil {
		return 0, fmt.Errorf("executor not connected")
	}
	tag, err := e.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Query выполняет SELECT
func (e *Executor) Query(ctx context.Context, query string, args ...any) (executor.Rows, error) {
	if e.pool == nil {
		return nil, fmt.Errorf("executor not connected")
	}
	rows, err := e.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

// BeginTx начинает транзакцию
func (e *Executor) BeginTx(ctx context.Context) (executor.Tx, error) {
	if e.pool == nil {
		return nil, fmt.Errorf("executor not connected")
	}
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxTx{tx: tx}, nil
}

// Ping проверяет доступность БД
func (e *Executor) Ping(ctx context.Context) error {
	if e.pool == nil {
		return fmt.Errorf("executor not connected")
	}
	return e.pool.Ping(ctx)
}

// Close закрывает пул подключений
func (e *Executor) Close(ctx context.Context) error {
	if e.pool != nil {
		e.pool.Close()
	}
	return nil
}

// Dialect возвращает SQL-диалект backend'а
func (e *Executor) Dialect() executor.Dialect {
	return e.dialect
}

// Type возвращает тип СУБД
func (e *Executor) Type() string {
	return "postgres"
}

// pgxRows - обертка pgx.Rows для реализации executor.Rows
// (pgx.Rows.Close не возвращает ошибку)
type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *pgxRows) Err() error             { return r.rows.Err() }
func (r *pgxRows) Close() error           { r.rows.Close(); return nil }

// pgxTx - обертка pgx.Tx для реализации executor.Tx
type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *pgxTx) Query(ctx context.Context, query string, args ...any) (executor.Rows, error) {
	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

func (t *pgxTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgxTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// Dialect - SQL-диалект PostgreSQL
type Dialect struct {
	schema string
}

var _ executor.Dialect = Dialect{}

func (Dialect) Name() string { return "postgres" }

func (Dialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (Dialect) QuoteIdent(name string) string { return `"` + name + `"` }

func (Dialect) TimestampType() string { return "TIMESTAMP" }

func (Dialect) TextType() string { return "TEXT" }

func (Dialect) FloatType() string { return "DOUBLE PRECISION" }

func (Dialect) LimitClause(n int) string { return fmt.Sprintf(" LIMIT %d", n) }

func (d Dialect) TableExistsSQL() string {
	return fmt.Sprintf(
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = '%s' AND table_name = $1`,
		d.schemaName())
}

func (d Dialect) ListTablesSQL() string {
	return fmt.Sprintf(
		`SELECT table_name FROM information_schema.tables WHERE table_schema = '%s' ORDER BY table_name`,
		d.schemaName())
}

func (d Dialect) schemaName() string {
	if d.schema == "" {
		return "public"
	}
	return d.schema
}
