// Package store - table store над абстрактным реляционным исполнителем.
// Владеет DDL (создание/удаление таблиц с фиксированной длинной схемой),
// проверками существования и выполнением insert/update/select statement'ов,
// построенных по dedup-плану. Одна физическая таблица на логический датасет,
// схема всегда (timestamp, code, metric, value) - динамические колонки
// на код никогда не создаются, число различных кодов не ограничено
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/nurhachar-sibei/Datadeal/pkg/audit"
	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
	"github.com/nurhachar-sibei/Datadeal/pkg/dedup"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor/base"
)

// defaultBatchSize - строк на один batched INSERT.
// 500 строк x 4 параметра = 2000 параметров, в пределах лимита
// SQL Server (2100 параметров на statement)
const defaultBatchSize = 500

// Store - хранилище метрических таблиц
type Store struct {
	exec      executor.Executor
	aud       audit.Logger
	batchSize int
}

// Option - опция конструктора
type Option func(*Store)

// WithAudit - подключить audit журнал (по умолчанию NullLogger)
func WithAudit(aud audit.Logger) Option {
	return func(s *Store) {
		if aud != nil {
			s.aud = aud
		}
	}
}

// WithBatchSize - переопределить размер пачки INSERT
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// New - создать store над подключенным исполнителем
func New(exec executor.Executor, opts ...Option) *Store {
	s := &Store{
		exec:      exec,
		aud:       audit.NewNullLogger(),
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Executor возвращает нижележащий исполнитель
func (s *Store) Executor() executor.Executor {
	return s.exec
}

// ========== Жизненный цикл таблиц ==========

// CreateTable создает таблицу и вставляет начальные строки.
// Если таблица существует и overwrite=false - ErrTableExists.
// При overwrite=true существующая таблица сначала удаляется.
// initialRows всегда вставляются целиком (пустой existing key set),
// внутрипачечные дубликаты ключей при этом отбрасываются
func (s *Store) CreateTable(ctx context.Context, name string, initialRows []panel.LongRecord, overwrite bool) (dedup.Report, error) {
	name = panel.SanitizeName(name)
	started := time.Now()

	report, err := s.createTable(ctx, name, initialRows, overwrite)

	entry := audit.NewEntry(audit.OpCreateTable, audit.StatusSuccess).
		WithTable(name).
		WithCounts(report.Inserted, report.Updated, report.Skipped).
		WithDuration(time.Since(started)).
		WithError(err)
	s.aud.Log(ctx, entry)

	return report, err
}

func (s *Store) createTable(ctx context.Context, name string, initialRows []panel.LongRecord, overwrite bool) (dedup.Report, error) {
	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return dedup.Report{}, err
	}
	if exists {
		if !overwrite {
			return dedup.Report{}, fmt.Errorf("%w: %q", ErrTableExists, name)
		}
		if err := s.dropTable(ctx, name); err != nil {
			return dedup.Report{}, err
		}
	}

	d := s.exec.Dialect()
	ddl := fmt.Sprintf(
		"CREATE TABLE %s (%s %s NOT NULL, %s %s NOT NULL, %s %s NOT NULL, %s %s)",
		d.QuoteIdent(name),
		d.QuoteIdent("timestamp"), d.TimestampType(),
		d.QuoteIdent("code"), d.TextType(),
		d.QuoteIdent("metric"), d.TextType(),
		d.QuoteIdent("value"), d.FloatType(),
	)
	if _, err := s.exec.Exec(ctx, ddl); err != nil {
		return dedup.Report{}, fmt.Errorf("failed to create table %q: %w", name, err)
	}

	// Индекс по timestamp и составной (timestamp, code) для запросов
	indexes := []string{
		fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
			d.QuoteIdent("idx_"+name+"_ts"), d.QuoteIdent(name), d.QuoteIdent("timestamp")),
		fmt.Sprintf("CREATE INDEX %s ON %s (%s, %s)",
			d.QuoteIdent("idx_"+name+"_ts_code"), d.QuoteIdent(name),
			d.QuoteIdent("timestamp"), d.QuoteIdent("code")),
	}
	for _, ddl := range indexes {
		if _, err := s.exec.Exec(ctx, ddl); err != nil {
			return dedup.Report{}, fmt.Errorf("failed to create index on %q: %w", name, err)
		}
	}

	if len(initialRows) == 0 {
		return dedup.Report{}, nil
	}

	plan, err := dedup.Compute(dedup.Existing{}, initialRows, dedup.SkipDuplicates)
	if err != nil {
		return dedup.Report{}, err
	}
	if err := s.applyPlan(ctx, name, plan); err != nil {
		// Незаполненная таблица после неудачной начальной вставки
		// бесполезна - убираем ее, чтобы повторный create не падал.
		// Неудавшаяся зачистка оставляет полусозданную таблицу -
		// об этом нужно сообщить вместе с исходной ошибкой
		if dropErr := s.dropTable(ctx, name); dropErr != nil {
			return dedup.Report{}, fmt.Errorf("%w (cleanup of half-created table failed: %v)", err, dropErr)
		}
		return dedup.Report{}, err
	}
	return plan.Report(), nil
}

// DropTable удаляет таблицу. Отсутствующая таблица - ErrTableNotFound,
// тихий успех недопустим по контракту аудита
func (s *Store) DropTable(ctx context.Context, name string) error {
	name = panel.SanitizeName(name)

	err := func() error {
		exists, err := s.tableExists(ctx, name)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %q", ErrTableNotFound, name)
		}
		return s.dropTable(ctx, name)
	}()

	entry := audit.NewEntry(audit.OpDropTable, audit.StatusSuccess).
		WithTable(name).
		WithError(err)
	s.aud.Log(ctx, entry)

	return err
}

func (s *Store) dropTable(ctx context.Context, name string) error {
	d := s.exec.Dialect()
	if _, err := s.exec.Exec(ctx, "DROP TABLE "+d.QuoteIdent(name)); err != nil {
		return fmt.Errorf("failed to drop table %q: %w", name, err)
	}
	return nil
}

// ========== Метаданные ==========

// TableExists проверяет существование таблицы
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	return s.tableExists(ctx, panel.SanitizeName(name))
}

func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	rows, err := s.exec.Query(ctx, s.exec.Dialect().TableExistsSQL(), name)
	if err != nil {
		return false, fmt.Errorf("failed to check table %q: %w", name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return false, rows.Err()
	}
	var raw any
	if err := rows.Scan(&raw); err != nil {
		return false, err
	}
	count, err := base.ToInt(raw)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListTables возвращает имена всех таблиц
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.exec.Query(ctx, s.exec.Dialect().ListTablesSQL())
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var raw any
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		name, err := base.ToString(raw)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Info - метаданные таблицы
type Info struct {
	Name         string
	RowCount     int64
	CodeCount    int64
	MetricCount  int64
	MinTimestamp *time.Time
	MaxTimestamp *time.Time
}

// TableInfo возвращает статистику таблицы: число строк, различных кодов
// и метрик, диапазон таймстемпов. Для пустой таблицы диапазон nil
func (s *Store) TableInfo(ctx context.Context, name string) (Info, error) {
	name = panel.SanitizeName(name)

	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return Info{}, err
	}
	if !exists {
		return Info{}, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}

	d := s.exec.Dialect()
	query := fmt.Sprintf(
		"SELECT COUNT(*), COUNT(DISTINCT %s), COUNT(DISTINCT %s), MIN(%s), MAX(%s) FROM %s",
		d.QuoteIdent("code"), d.QuoteIdent("metric"),
		d.QuoteIdent("timestamp"), d.QuoteIdent("timestamp"),
		d.QuoteIdent(name),
	)
	rows, err := s.exec.Query(ctx, query)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read info for %q: %w", name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Info{}, err
		}
		return Info{Name: name}, nil
	}

	var rawCount, rawCodes, rawMetrics, rawMin, rawMax any
	if err := rows.Scan(&rawCount, &rawCodes, &rawMetrics, &rawMin, &rawMax); err != nil {
		return Info{}, err
	}

	info := Info{Name: name}
	if info.RowCount, err = base.ToInt(rawCount); err != nil {
		return Info{}, err
	}
	if info.CodeCount, err = base.ToInt(rawCodes); err != nil {
		return Info{}, err
	}
	if info.MetricCount, err = base.ToInt(rawMetrics); err != nil {
		return Info{}, err
	}
	if rawMin != nil {
		t, err := base.ToTime(rawMin)
		if err != nil {
			return Info{}, err
		}
		info.MinTimestamp = &t
	}
	if rawMax != nil {
		t, err := base.ToTime(rawMax)
		if err != nil {
			return Info{}, err
		}
		info.MaxTimestamp = &t
	}
	return info, nil
}
