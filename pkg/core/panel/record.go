package panel

import (
	"fmt"
	"time"
)

// LongRecord - каноническая единица хранения: одна ячейка панели
// в длинном формате (timestamp, code, metric, value)
type LongRecord struct {
	// Timestamp - дата наблюдения (обязательное поле)
	Timestamp time.Time

	// Code - идентификатор инструмента, хранится как данные БЕЗ санитизации
	// (санитизируются только физические имена таблиц/индексов)
	Code string

	// Metric - имя логического фактора, которому принадлежит запись.
	// Для однометричных таблиц константа на таблицу
	Metric string

	// Value - значение ячейки, nil означает NULL
	Value *float64
}

// Key - бизнес-ключ записи (timestamp, code, metric).
// Хранилище НЕ навязывает уникальность этого ключа constraint'ом -
// за гарантию единственности отвечает исключительно dedup engine
type Key struct {
	// Timestamp - unix-секунды в UTC. Дневные финансовые данные
	// округляются до секунды без потерь при round-trip через любую СУБД
	Timestamp int64
	Code      string
	Metric    string
}

// NormalizeTime приводит таймстемп к UTC с точностью до секунды.
// Единая нормализация для ключей dedup и для привязки SQL-параметров
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// Key возвращает бизнес-ключ записи
func (r LongRecord) Key() Key {
	return Key{
		Timestamp: NormalizeTime(r.Timestamp).Unix(),
		Code:      r.Code,
		Metric:    r.Metric,
	}
}

// Validate проверяет запись на корректность.
// Кодек не глотает некорректный вход - fail fast с ErrInvalidRow
func (r LongRecord) Validate() error {
	if r.Timestamp.IsZero() {
		return fmt.Errorf("%w: zero timestamp (code=%q, metric=%q)", ErrInvalidRow, r.Code, r.Metric)
	}
	if r.Code == "" {
		return fmt.Errorf("%w: empty code at %s", ErrInvalidRow, r.Timestamp.Format("2006-01-02"))
	}
	if r.Metric == "" {
		return fmt.Errorf("%w: empty metric (code=%q)", ErrInvalidRow, r.Code)
	}
	return nil
}

// Float - helper для literal-значений: Float(1.5) вместо временной переменной
func Float(v float64) *float64 {
	return &v
}
