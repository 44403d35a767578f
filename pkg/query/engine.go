// Package query - pivot query engine: восстанавливает широкую панель
// из длинных строк одной таблицы либо объединяет несколько таблиц
// по (timestamp, code) в комбинированную панель.
// Движок stateless: каждый запрос полностью определяется сохраненными
// таблицами, состояние между вызовами не переживает
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nurhachar-sibei/Datadeal/pkg/audit"
	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
	"github.com/nurhachar-sibei/Datadeal/pkg/store"
)

// ErrNoTables - multifactor запрос без единой таблицы
var ErrNoTables = errors.New("no tables specified")

// MultiFactorMetric - имя метрики комбинированной панели
const MultiFactorMetric = "multifactor"

// Options - условия запроса
type Options struct {
	// Start/End - границы диапазона таймстемпов (включительно), nil = без границы
	Start *time.Time
	End   *time.Time

	// Codes - фильтр по кодам, пустой = все коды
	Codes []string

	// RowLimit - максимум ДЛИННЫХ строк, читаемых до pivot (0 = без лимита).
	// Документированная особенность: лимит режет длинный формат, поэтому
	// широкая панель может оборваться посреди таймстемпа неравномерно
	// по кодам. Применяется только одиночным запросом
	RowLimit int
}

// Engine - движок запросов над table store
type Engine struct {
	store *store.Store
	aud   audit.Logger
}

// Option - опция конструктора
type Option func(*Engine)

// WithAudit - подключить audit журнал (по умолчанию NullLogger)
func WithAudit(aud audit.Logger) Option {
	return func(e *Engine) {
		if aud != nil {
			e.aud = aud
		}
	}
}

// New - создать движок над store
func New(st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: st,
		aud:   audit.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// QuerySingle читает одну таблицу и собирает панель ее метрики.
// Пустой результат дает пустую панель с метрикой по имени таблицы
func (e *Engine) QuerySingle(ctx context.Context, table string, opts Options) (*panel.Panel, error) {
	started := time.Now()

	p, err := e.querySingle(ctx, table, opts)

	entry := audit.NewEntry(audit.OpQuery, audit.StatusSuccess).
		WithTable(panel.SanitizeName(table)).
		WithDuration(time.Since(started)).
		WithError(err)
	if p != nil {
		entry.WithMetadata("cells", p.NumCells())
	}
	e.aud.Log(ctx, entry)

	return p, err
}

func (e *Engine) querySingle(ctx context.Context, table string, opts Options) (*panel.Panel, error) {
	records, err := e.store.FetchRecords(ctx, table, store.Filter{
		Start: opts.Start,
		End:   opts.End,
		Codes: opts.Codes,
		Limit: opts.RowLimit,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return panel.New(panel.SanitizeName(table)), nil
	}
	return panel.Pivot(records, "")
}

// QueryMultiFactor выполняет одиночный запрос по каждой таблице и
// outer-join'ит результаты по (timestamp, code). Колонки комбинированной
// панели - декартово объединение {table}_{code} по всем таблицам и всем
// кодам, встретившимся в ЛЮБОЙ из таблиц; отсутствующая у таблицы пара
// (timestamp, code) дает явный NULL, никогда не ноль и не пропуск строки.
//
// Join коммутативен и ассоциативен по множеству колонок; порядок колонок
// стабилен: группировка по таблицам в порядке аргумента, внутри - коды
// в порядке первого появления по таблицам
func (e *Engine) QueryMultiFactor(ctx context.Context, tables []string, opts Options) (*panel.Panel, error) {
	started := time.Now()

	p, err := e.queryMultiFactor(ctx, tables, opts)

	entry := audit.NewEntry(audit.OpMultiFactor, audit.StatusSuccess).
		WithDuration(time.Since(started)).
		WithError(err).
		WithMetadata("tables", len(tables))
	e.aud.Log(ctx, entry)

	return p, err
}

func (e *Engine) queryMultiFactor(ctx context.Context, tables []string, opts Options) (*panel.Panel, error) {
	if len(tables) == 0 {
		return nil, ErrNoTables
	}

	// RowLimit не пробрасывается: обрезка одной таблицы исказила бы join
	single := Options{Start: opts.Start, End: opts.End, Codes: opts.Codes}

	panels := make([]*panel.Panel, 0, len(tables))
	names := make([]string, 0, len(tables))
	for _, table := range tables {
		p, err := e.querySingle(ctx, table, single)
		if err != nil {
			return nil, fmt.Errorf("multifactor query failed on %q: %w", table, err)
		}
		panels = append(panels, p)
		names = append(names, panel.SanitizeName(table))
	}

	// Объединение осей: таймстемпы и коды всех таблиц
	var timestamps []time.Time
	seenTS := make(map[int64]struct{})
	var codes []string
	seenCode := make(map[string]struct{})
	for _, p := range panels {
		for _, ts := range p.Timestamps() {
			unix := panel.NormalizeTime(ts).Unix()
			if _, ok := seenTS[unix]; !ok {
				seenTS[unix] = struct{}{}
				timestamps = append(timestamps, ts)
			}
		}
		for _, code := range p.Codes() {
			if _, ok := seenCode[code]; !ok {
				seenCode[code] = struct{}{}
				codes = append(codes, code)
			}
		}
	}

	combined := panel.New(MultiFactorMetric)
	for i, p := range panels {
		for _, code := range codes {
			column := names[i] + "_" + code
			for _, ts := range timestamps {
				value, present := p.Cell(ts, code)
				if present && value != nil {
					combined.Set(ts, column, *value)
				} else {
					combined.SetNull(ts, column)
				}
			}
		}
	}
	return combined, nil
}
