package panel

import "errors"

// Ошибки уровня кодека. Оборачиваются через fmt.Errorf("%w: ...") с деталями,
// проверяются через errors.Is
var (
	// ErrInvalidRow - некорректная запись на границе кодека
	// (пустой code/metric, нулевой timestamp)
	ErrInvalidRow = errors.New("invalid row")

	// ErrAmbiguousMetric - в наборе записей несколько метрик,
	// а фильтр метрики не задан. Кодек никогда не выбирает метрику молча
	ErrAmbiguousMetric = errors.New("ambiguous metric")
)
