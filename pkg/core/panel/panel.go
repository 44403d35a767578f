package panel

import (
	"sort"
	"time"
)

// Panel - пользовательская форма данных: матрица дата × код для одной метрики.
// Таймстемпы упорядочены по возрастанию, коды - в порядке первого появления.
// Панель различает явный NULL в ячейке и отсутствующую ячейку:
// отсутствующая пара (timestamp, code) трактуется как missing, никогда как ноль
type Panel struct {
	metric     string
	timestamps []time.Time
	tsIndex    map[int64]struct{}
	codes      []string
	codeIndex  map[string]struct{}
	cells      map[cellKey]*float64 // присутствие ключа = ячейка задана, nil = явный NULL
}

type cellKey struct {
	ts   int64
	code string
}

// New создает пустую панель для метрики
func New(metric string) *Panel {
	return &Panel{
		metric:    metric,
		tsIndex:   make(map[int64]struct{}),
		codeIndex: make(map[string]struct{}),
		cells:     make(map[cellKey]*float64),
	}
}

// Metric возвращает имя метрики панели
func (p *Panel) Metric() string {
	return p.metric
}

// Timestamps возвращает копию упорядоченного списка таймстемпов
func (p *Panel) Timestamps() []time.Time {
	out := make([]time.Time, len(p.timestamps))
	copy(out, p.timestamps)
	return out
}

// Codes возвращает копию списка кодов в порядке первого появления
func (p *Panel) Codes() []string {
	out := make([]string, len(p.codes))
	copy(out, p.codes)
	return out
}

// NumCells возвращает количество заданных ячеек (включая явные NULL)
func (p *Panel) NumCells() int {
	return len(p.cells)
}

// Set задает значение ячейки (timestamp, code)
func (p *Panel) Set(ts time.Time, code string, value float64) {
	v := value
	p.setCell(ts, code, &v)
}

// SetNull задает явный NULL в ячейке (timestamp, code).
// Отличается от незаданной ячейки: при unpivot явный NULL эмитится записью
func (p *Panel) SetNull(ts time.Time, code string) {
	p.setCell(ts, code, nil)
}

// Value возвращает значение ячейки.
// ok == false, если ячейка отсутствует ИЛИ содержит явный NULL
func (p *Panel) Value(ts time.Time, code string) (float64, bool) {
	cell, present := p.Cell(ts, code)
	if !present || cell == nil {
		return 0, false
	}
	return *cell, true
}

// Cell возвращает ячейку как есть: present=false - ячейка не задана,
// present=true и nil - явный NULL
func (p *Panel) Cell(ts time.Time, code string) (value *float64, present bool) {
	v, ok := p.cells[cellKey{ts: NormalizeTime(ts).Unix(), code: code}]
	return v, ok
}

func (p *Panel) setCell(ts time.Time, code string, value *float64) {
	norm := NormalizeTime(ts)
	unix := norm.Unix()

	if _, seen := p.tsIndex[unix]; !seen {
		p.tsIndex[unix] = struct{}{}
		// Вставка с сохранением возрастающего порядка
		i := sort.Search(len(p.timestamps), func(i int) bool {
			return p.timestamps[i].After(norm)
		})
		p.timestamps = append(p.timestamps, time.Time{})
		copy(p.timestamps[i+1:], p.timestamps[i:])
		p.timestamps[i] = norm
	}

	if _, seen := p.codeIndex[code]; !seen {
		p.codeIndex[code] = struct{}{}
		p.codes = append(p.codes, code)
	}

	p.cells[cellKey{ts: unix, code: code}] = value
}
