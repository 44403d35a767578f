// Package mysql - backend исполнителя на go-sql-driver/mysql через database/sql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor/base"
)

// Compile-time check: Executor должен реализовывать интерфейс executor.Executor
var _ executor.Executor = (*Executor)(nil)

// Регистрация backend'а в глобальной фабрике
func init() {
	executor.Register("mysql", func() executor.Executor {
		return &Executor{}
	})
}

// Executor - исполнитель для MySQL/MariaDB
type Executor struct {
	base.SQLExecutor
}

// Connect устанавливает подключение к MySQL
func (e *Executor) Connect(ctx context.Context, cfg executor.Config) error {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	e.Init(db, "mysql", Dialect{})
	return nil
}

// Dialect - SQL-диалект MySQL
type Dialect struct{}

var _ executor.Dialect = Dialect{}

func (Dialect) Name() string { return "mysql" }

func (Dialect) Placeholder(n int) string { return "?" }

func (Dialect) QuoteIdent(name string) string { return "`" + name + "`" }

func (Dialect) TimestampType() string { return "DATETIME" }

// VARCHAR вместо TEXT: колонки с кодами и метриками входят в индексы,
// а TEXT в MySQL требует префиксной длины
func (Dialect) TextType() string { return "VARCHAR(255)" }

func (Dialect) FloatType() string { return "DOUBLE" }

func (Dialect) LimitClause(n int) string { return fmt.Sprintf(" LIMIT %d", n) }

func (Dialect) TableExistsSQL() string {
	return `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`
}

func (Dialect) ListTablesSQL() string {
	return `SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name`
}
