package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor/base"
)

// Filter - условия выборки длинных записей
type Filter struct {
	// Start/End - границы диапазона таймстемпов, обе опциональны
	// (nil = не ограничено). Границы включительны
	Start *time.Time
	End   *time.Time

	// Codes - фильтр по кодам инструментов. Пустой список = все коды
	Codes []string

	// Limit - максимум длинных строк в выборке, 0 = без лимита.
	// Лимит применяется к длинному формату ДО pivot: обрезка может
	// пройти посреди таймстемпа и панель получится неравномерной
	// по кодам. Порядок выборки (timestamp, code) делает обрезку
	// воспроизводимой при одинаковых данных.
	// DeleteRecords лимит игнорирует (DELETE ... LIMIT нестандартен)
	Limit int
}

// empty - фильтр без единого условия (Limit условием не считается)
func (f Filter) empty() bool {
	return f.Start == nil && f.End == nil && len(f.Codes) == 0
}

// conds строит WHERE-условия и аргументы фильтра в диалекте d
func (f Filter) conds(d executor.Dialect) ([]string, []any) {
	var conds []string
	var args []any
	n := 1

	if f.Start != nil {
		conds = append(conds, fmt.Sprintf("%s >= %s", d.QuoteIdent("timestamp"), d.Placeholder(n)))
		args = append(args, base.FormatTime(*f.Start))
		n++
	}
	if f.End != nil {
		conds = append(conds, fmt.Sprintf("%s <= %s", d.QuoteIdent("timestamp"), d.Placeholder(n)))
		args = append(args, base.FormatTime(*f.End))
		n++
	}
	if len(f.Codes) > 0 {
		placeholders := make([]string, len(f.Codes))
		for i, code := range f.Codes {
			placeholders[i] = d.Placeholder(n)
			args = append(args, code)
			n++
		}
		conds = append(conds, fmt.Sprintf("%s IN (%s)",
			d.QuoteIdent("code"), strings.Join(placeholders, ", ")))
	}
	return conds, args
}

// FetchRecords читает длинные записи таблицы по фильтру.
// Отсутствующая таблица - ErrTableNotFound, таблица не создается
func (s *Store) FetchRecords(ctx context.Context, name string, f Filter) ([]panel.LongRecord, error) {
	name = panel.SanitizeName(name)

	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}

	d := s.exec.Dialect()

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s, %s, %s, %s FROM %s",
		d.QuoteIdent("timestamp"), d.QuoteIdent("code"),
		d.QuoteIdent("metric"), d.QuoteIdent("value"),
		d.QuoteIdent(name))

	conds, args := f.conds(d)
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	fmt.Fprintf(&sb, " ORDER BY %s, %s", d.QuoteIdent("timestamp"), d.QuoteIdent("code"))

	if f.Limit > 0 {
		sb.WriteString(d.LimitClause(f.Limit))
	}

	rows, err := s.exec.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %q: %w", name, err)
	}
	defer rows.Close()

	var records []panel.LongRecord
	for rows.Next() {
		var rawTS, rawCode, rawMetric, rawValue any
		if err := rows.Scan(&rawTS, &rawCode, &rawMetric, &rawValue); err != nil {
			return nil, err
		}

		var rec panel.LongRecord
		if rec.Timestamp, err = base.ToTime(rawTS); err != nil {
			return nil, err
		}
		if rec.Code, err = base.ToString(rawCode); err != nil {
			return nil, err
		}
		if rec.Metric, err = base.ToString(rawMetric); err != nil {
			return nil, err
		}
		if rec.Value, err = base.ToNullFloat(rawValue); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
