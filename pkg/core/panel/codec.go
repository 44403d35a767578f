package panel

import (
	"fmt"
	"regexp"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// SanitizeName приводит имя к безопасному физическому идентификатору:
// все символы кроме [a-zA-Z0-9_] заменяются на подчеркивание.
// Применяется ТОЛЬКО к именам таблиц и индексов - коды инструментов
// хранятся как данные без изменений
func SanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// Unpivot разворачивает панель в длинный формат: одна LongRecord на каждую
// заданную ячейку, включая явные NULL. Порядок эмиссии детерминированный -
// timestamp-major, code-minor (стабильные тестовые фикстуры); порядок хранения
// реляционный слой не гарантирует.
// Чистая функция, без I/O
func Unpivot(p *Panel, metric string) ([]LongRecord, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil panel", ErrInvalidRow)
	}
	if metric == "" {
		return nil, fmt.Errorf("%w: empty metric name", ErrInvalidRow)
	}

	records := make([]LongRecord, 0, p.NumCells())
	for _, ts := range p.timestamps {
		for _, code := range p.codes {
			value, present := p.Cell(ts, code)
			if !present {
				continue
			}
			rec := LongRecord{
				Timestamp: ts,
				Code:      code,
				Metric:    metric,
				Value:     value,
			}
			if err := rec.Validate(); err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

// Pivot - обратная операция: собирает панель из длинных записей.
//
// Если в записях несколько метрик и metricFilter пуст - ErrAmbiguousMetric
// (кодек никогда не выбирает метрику молча). При заданном фильтре записи
// других метрик отбрасываются.
//
// Контракт query-пути СЛАБЕЕ инварианта панели: пары (timestamp, code),
// отсутствующие во входных записях, в панели просто отсутствуют - NULL не
// материализуются. Вызывающий, которому нужна плотная панель, должен
// заполнить пропуски явно
func Pivot(records []LongRecord, metricFilter string) (*Panel, error) {
	metric := metricFilter

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		if metricFilter != "" {
			continue
		}
		if metric == "" {
			metric = rec.Metric
		} else if rec.Metric != metric {
			return nil, fmt.Errorf("%w: got %q and %q, specify a metric filter",
				ErrAmbiguousMetric, metric, rec.Metric)
		}
	}

	p := New(metric)
	for _, rec := range records {
		if rec.Metric != metric {
			continue
		}
		if rec.Value == nil {
			p.SetNull(rec.Timestamp, rec.Code)
		} else {
			p.Set(rec.Timestamp, rec.Code, *rec.Value)
		}
	}
	return p, nil
}
