// Package dedup - чистый движок планирования вставок/обновлений.
// Хранилище не навязывает уникальность бизнес-ключа constraint'ом,
// поэтому partitioning кандидатов на insert/update/skip целиком
// выполняется здесь. Движок не делает I/O - это шаг планирования,
// потребляемый table store
package dedup

import (
	"fmt"
	"strconv"

	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
)

// ConflictPolicy - правило обработки кандидата, ключ которого уже сохранен
type ConflictPolicy string

const (
	// SkipDuplicates - кандидат с существующим ключом пропускается (default)
	SkipDuplicates ConflictPolicy = "skip"

	// OverwriteExisting - кандидат с существующим ключом заменяет значение
	OverwriteExisting ConflictPolicy = "overwrite"

	// FullRowCompare - дубликатом считается только полное совпадение всех
	// колонок (timestamp, code, metric, value). Используется упрощенными
	// bulk-insert путями без key-индекса.
	//
	// Известный семантический разрыв: измененное значение при существующем
	// ключе трактуется как НОВАЯ строка, а не update - возможны дубликаты
	// ключей с разными значениями. Режим сознательно обменивает корректность
	// на отсутствие предварительной выборки ключей
	FullRowCompare ConflictPolicy = "fullrow"
)

// ParsePolicy разбирает строковое имя политики (конфиги, CLI флаги)
func ParsePolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(s) {
	case SkipDuplicates, OverwriteExisting, FullRowCompare:
		return ConflictPolicy(s), nil
	case "":
		return SkipDuplicates, nil
	default:
		return "", fmt.Errorf("unknown conflict policy: %q (expected skip, overwrite or fullrow)", s)
	}
}

// KeySet - множество бизнес-ключей (timestamp, code, metric), уже сохраненных
// в таблице. Вычисляется по требованию table store перед планированием
type KeySet map[panel.Key]struct{}

// NewKeySet строит KeySet по записям
func NewKeySet(records []panel.LongRecord) KeySet {
	s := make(KeySet, len(records))
	for _, r := range records {
		s.Add(r.Key())
	}
	return s
}

// Add добавляет ключ в множество
func (s KeySet) Add(k panel.Key) {
	s[k] = struct{}{}
}

// Has проверяет наличие ключа
func (s KeySet) Has(k panel.Key) bool {
	_, ok := s[k]
	return ok
}

// rowKey - полная идентичность строки для FullRowCompare:
// бизнес-ключ плюс каноническое представление значения
type rowKey struct {
	key   panel.Key
	value string
}

func newRowKey(r panel.LongRecord) rowKey {
	v := "null"
	if r.Value != nil {
		v = strconv.FormatFloat(*r.Value, 'g', -1, 64)
	}
	return rowKey{key: r.Key(), value: v}
}

// RowSet - множество полных строк для FullRowCompare
type RowSet map[rowKey]struct{}

// NewRowSet строит RowSet по записям
func NewRowSet(records []panel.LongRecord) RowSet {
	s := make(RowSet, len(records))
	for _, r := range records {
		s[newRowKey(r)] = struct{}{}
	}
	return s
}

// Existing - снимок уже сохраненных данных таблицы на момент планирования.
// Для SkipDuplicates/OverwriteExisting достаточно Keys,
// для FullRowCompare требуется Rows
type Existing struct {
	Keys KeySet
	Rows RowSet
}

// Plan - результат планирования: partitioning кандидатов
type Plan struct {
	ToInsert []panel.LongRecord
	ToUpdate []panel.LongRecord
	ToSkip   []panel.LongRecord
}

// Report - счетчики для observability
type Report struct {
	Inserted int
	Updated  int
	Skipped  int
}

// Report возвращает счетчики плана
func (p Plan) Report() Report {
	return Report{
		Inserted: len(p.ToInsert),
		Updated:  len(p.ToUpdate),
		Skipped:  len(p.ToSkip),
	}
}

// Compute планирует insert/update/skip для пачки кандидатов согласно политике.
// Пустой список кандидатов дает пустой план, не ошибку.
// Некорректные кандидаты отклоняются fail fast (ErrInvalidRow через %w).
//
// Внутри одной пачки ключ учитывается один раз: повторный кандидат с уже
// запланированным ключом уходит в ToSkip (первое вхождение выигрывает) -
// иначе один вызов создал бы дубликаты, которые обязан исключать сам движок
func Compute(existing Existing, candidates []panel.LongRecord, policy ConflictPolicy) (Plan, error) {
	switch policy {
	case SkipDuplicates, OverwriteExisting, FullRowCompare:
	default:
		return Plan{}, fmt.Errorf("unknown conflict policy: %q", policy)
	}

	var plan Plan
	seen := make(KeySet, len(candidates))
	seenRows := make(RowSet)

	for _, cand := range candidates {
		if err := cand.Validate(); err != nil {
			return Plan{}, err
		}

		if policy == FullRowCompare {
			rk := newRowKey(cand)
			if _, dup := existing.Rows[rk]; dup {
				plan.ToSkip = append(plan.ToSkip, cand)
				continue
			}
			if _, dup := seenRows[rk]; dup {
				plan.ToSkip = append(plan.ToSkip, cand)
				continue
			}
			seenRows[rk] = struct{}{}
			plan.ToInsert = append(plan.ToInsert, cand)
			continue
		}

		key := cand.Key()
		if seen.Has(key) {
			plan.ToSkip = append(plan.ToSkip, cand)
			continue
		}
		seen.Add(key)

		if existing.Keys.Has(key) {
			if policy == OverwriteExisting {
				plan.ToUpdate = append(plan.ToUpdate, cand)
			} else {
				plan.ToSkip = append(plan.ToSkip, cand)
			}
			continue
		}
		plan.ToInsert = append(plan.ToInsert, cand)
	}

	return plan, nil
}
