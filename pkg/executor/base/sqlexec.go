package base

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nurhachar-sibei/Datadeal/pkg/executor"
)

// SQLExecutor - реализация executor.Executor поверх database/sql.
// Общее ядро для sqlite/mysql/mssql backend'ов: каждый из них предоставляет
// только Connect (открытие драйвера, настройка пула) и свой диалект
type SQLExecutor struct {
	db      *sql.DB
	dialect executor.Dialect
	dbType  string
}

// Init инициализирует исполнитель открытым подключением.
// Вызывается из Connect конкретного backend'а
func (e *SQLExecutor) Init(db *sql.DB, dbType string, dialect executor.Dialect) {
	e.db = db
	e.dbType = dbType
	e.dialect = dialect
}

// DB возвращает *sql.DB для прямого доступа (helper метод)
func (e *SQLExecutor) DB() *sql.DB {
	return e.db
}

// Exec выполняет statement и возвращает число затронутых строк
func (e *SQLExecutor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if e.db == nil {
		return 0, fmt.Errorf("executor not connected")
	}
	res, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		// Некоторые statement'ы (DDL) не сообщают RowsAffected
		return 0, nil
	}
	return affected, nil
}

// Query выполняет SELECT
func (e *SQLExecutor) Query(ctx context.Context, query string, args ...any) (executor.Rows, error) {
	if e.db == nil {
		return nil, fmt.Errorf("executor not connected")
	}
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// BeginTx начинает транзакцию
func (e *SQLExecutor) BeginTx(ctx context.Context) (executor.Tx, error) {
	if e.db == nil {
		return nil, fmt.Errorf("executor not connected")
	}
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

// Ping проверяет доступность БД
func (e *SQLExecutor) Ping(ctx context.Context) error {
	if e.db == nil {
		return fmt.Errorf("executor not connected")
	}
	return e.db.PingContext(ctx)
}

// Close закрывает подключение
func (e *SQLExecutor) Close(ctx context.Context) error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// Dialect возвращает SQL-диалект backend'а
func (e *SQLExecutor) Dialect() executor.Dialect {
	return e.dialect
}

// Type возвращает тип СУБД
func (e *SQLExecutor) Type() string {
	return e.dbType
}

// sqlTx - обертка *sql.Tx для реализации executor.Tx
type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (executor.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *sqlTx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}
