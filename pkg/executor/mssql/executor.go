// Package mssql - backend исполнителя на denisenkom/go-mssqldb через database/sql.
package mssql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor/base"
)

// Compile-time check: Executor должен реализовывать интерфейс executor.Executor
var _ executor.Executor = (*Executor)(nil)

// Регистрация backend'а в глобальной фабрике
func init() {
	executor.Register("mssql", func() executor.Executor {
		return &Executor{}
	})
}

// Executor - исполнитель для Microsoft SQL Server
type Executor struct {
	base.SQLExecutor
}

// Connect устанавливает подключение к SQL Server
func (e *Executor) Connect(ctx context.Context, cfg executor.Config) error {
	db, err := sql.Open("sqlserver", cfg.DSN)
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

	e.Init(db, "mssql", Dialect{})
	return nil
}

// Dialect - SQL-диалект SQL Server
type Dialect struct{}

var _ executor.Dialect = Dialect{}

func (Dialect) Name() string { return "mssql" }

func (Dialect) Placeholder(n int) string { return fmt.Sprintf("@p%d", n) }

func (Dialect) QuoteIdent(name string) string { return "[" + name + "]" }

func (Dialect) TimestampType() string { return "DATETIME2" }

func (Dialect) TextType() string { return "NVARCHAR(255)" }

func (Dialect) FloatType() string { return "FLOAT" }

// SQL Server не поддерживает LIMIT, используем OFFSET/FETCH
// (требует ORDER BY, который запросы всегда содержат)
func (Dialect) LimitClause(n int) string {
	return fmt.Sprintf(" OFFSET 0 ROWS FETCH NEXT %d ROWS ONLY", n)
}

func (Dialect) TableExistsSQL() string {
	return `SELECT COUNT(*) FROM sys.tables WHERE name = @p1`
}

func (Dialect) ListTablesSQL() string {
	return `SELECT name FROM sys.tables ORDER BY name`
}
