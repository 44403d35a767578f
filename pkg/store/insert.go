package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nurhachar-sibei/Datadeal/pkg/audit"
	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
	"github.com/nurhachar-sibei/Datadeal/pkg/dedup"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor/base"
)

// InsertData вставляет пачку записей согласно политике конфликтов.
// Отсутствующая таблица - ErrTableNotFound (read path никогда не создает
// таблицы автоматически). Вся пачка одного вызова выполняется в одной
// транзакции: либо коммитятся все insert и update, либо ни один
func (s *Store) InsertData(ctx context.Context, name string, rows []panel.LongRecord, policy dedup.ConflictPolicy) (dedup.Report, error) {
	name = panel.SanitizeName(name)
	started := time.Now()

	report, err := s.insertData(ctx, name, rows, policy)

	entry := audit.NewEntry(audit.OpInsert, audit.StatusSuccess).
		WithTable(name).
		WithPolicy(string(policy)).
		WithCounts(report.Inserted, report.Updated, report.Skipped).
		WithDuration(time.Since(started)).
		WithError(err)
	s.aud.Log(ctx, entry)

	return report, err
}

func (s *Store) insertData(ctx context.Context, name string, rows []panel.LongRecord, policy dedup.ConflictPolicy) (dedup.Report, error) {
	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return dedup.Report{}, err
	}
	if !exists {
		return dedup.Report{}, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}

	existing, err := s.fetchExisting(ctx, name, policy)
	if err != nil {
		return dedup.Report{}, err
	}

	plan, err := dedup.Compute(existing, rows, policy)
	if err != nil {
		return dedup.Report{}, err
	}

	if err := s.applyPlan(ctx, name, plan); err != nil {
		return dedup.Report{}, err
	}
	return plan.Report(), nil
}

// fetchExisting строит снимок сохраненных данных для планирования.
// FullRowCompare читает строки целиком, остальные политики - только ключи
func (s *Store) fetchExisting(ctx context.Context, name string, policy dedup.ConflictPolicy) (dedup.Existing, error) {
	d := s.exec.Dialect()

	cols := fmt.Sprintf("%s, %s, %s",
		d.QuoteIdent("timestamp"), d.QuoteIdent("code"), d.QuoteIdent("metric"))
	if policy == dedup.FullRowCompare {
		cols += ", " + d.QuoteIdent("value")
	}

	rows, err := s.exec.Query(ctx, fmt.Sprintf("SELECT %s FROM %s", cols, d.QuoteIdent(name)))
	if err != nil {
		return dedup.Existing{}, fmt.Errorf("failed to fetch existing keys for %q: %w", name, err)
	}
	defer rows.Close()

	var records []panel.LongRecord
	for rows.Next() {
		var rec panel.LongRecord
		var rawTS, rawCode, rawMetric any

		if policy == dedup.FullRowCompare {
			var rawValue any
			if err := rows.Scan(&rawTS, &rawCode, &rawMetric, &rawValue); err != nil {
				return dedup.Existing{}, err
			}
			if rec.Value, err = base.ToNullFloat(rawValue); err != nil {
				return dedup.Existing{}, err
			}
		} else {
			if err := rows.Scan(&rawTS, &rawCode, &rawMetric); err != nil {
				return dedup.Existing{}, err
			}
		}

		if rec.Timestamp, err = base.ToTime(rawTS); err != nil {
			return dedup.Existing{}, err
		}
		if rec.Code, err = base.ToString(rawCode); err != nil {
			return dedup.Existing{}, err
		}
		if rec.Metric, err = base.ToString(rawMetric); err != nil {
			return dedup.Existing{}, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return dedup.Existing{}, err
	}

	existing := dedup.Existing{Keys: dedup.NewKeySet(records)}
	if policy == dedup.FullRowCompare {
		existing.Rows = dedup.NewRowSet(records)
	}
	return existing, nil
}

// applyPlan выполняет insert и update одного плана в одной транзакции
func (s *Store) applyPlan(ctx context.Context, name string, plan dedup.Plan) error {
	if len(plan.ToInsert) == 0 && len(plan.ToUpdate) == 0 {
		return nil
	}

	tx, err := s.exec.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %q: %w", name, err)
	}

	if err := s.execPlan(ctx, tx, name, plan); err != nil {
		tx.Rollback(ctx)
		return fmt.Errorf("failed to persist into %q (insert=%d, update=%d): %w",
			name, len(plan.ToInsert), len(plan.ToUpdate), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit into %q: %w", name, err)
	}
	return nil
}

func (s *Store) execPlan(ctx context.Context, tx executor.Tx, name string, plan dedup.Plan) error {
	for start := 0; start < len(plan.ToInsert); start += s.batchSize {
		end := start + s.batchSize
		if end > len(plan.ToInsert) {
			end = len(plan.ToInsert)
		}
		if err := s.insertBatch(ctx, tx, name, plan.ToInsert[start:end]); err != nil {
			return err
		}
	}

	for _, rec := range plan.ToUpdate {
		if err := s.updateRow(ctx, tx, name, rec); err != nil {
			return err
		}
	}
	return nil
}

// insertBatch выполняет один multi-row INSERT
func (s *Store) insertBatch(ctx context.Context, tx executor.Tx, name string, batch []panel.LongRecord) error {
	d := s.exec.Dialect()

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s, %s, %s, %s) VALUES ",
		d.QuoteIdent(name),
		d.QuoteIdent("timestamp"), d.QuoteIdent("code"),
		d.QuoteIdent("metric"), d.QuoteIdent("value"))

	args := make([]any, 0, len(batch)*4)
	n := 1
	for i, rec := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "(%s, %s, %s, %s)",
			d.Placeholder(n), d.Placeholder(n+1), d.Placeholder(n+2), d.Placeholder(n+3))
		n += 4

		args = append(args, base.FormatTime(rec.Timestamp), rec.Code, rec.Metric, nullableArg(rec.Value))
	}

	_, err := tx.Exec(ctx, sb.String(), args...)
	return err
}

// updateRow перезаписывает значение по бизнес-ключу (OverwriteExisting)
func (s *Store) updateRow(ctx context.Context, tx executor.Tx, name string, rec panel.LongRecord) error {
	d := s.exec.Dialect()
	query := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s AND %s = %s AND %s = %s",
		d.QuoteIdent(name),
		d.QuoteIdent("value"), d.Placeholder(1),
		d.QuoteIdent("timestamp"), d.Placeholder(2),
		d.QuoteIdent("code"), d.Placeholder(3),
		d.QuoteIdent("metric"), d.Placeholder(4))

	_, err := tx.Exec(ctx, query,
		nullableArg(rec.Value), base.FormatTime(rec.Timestamp), rec.Code, rec.Metric)
	return err
}

// nullableArg разворачивает *float64 в driver-значение: nil = SQL NULL.
// Типизированный nil (*float64)(nil) внутри any не равен nil для драйверов
func nullableArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
