package executor

// Dialect описывает различия SQL-синтаксиса между backend'ами.
// Table store и query engine строят statement'ы только через диалект -
// ни одного захардкоженного плейсхолдера или имени типа в ядре
type Dialect interface {
	// Name возвращает имя диалекта (совпадает с типом СУБД)
	Name() string

	// Placeholder возвращает плейсхолдер для n-го параметра (1-based):
	// "?" (sqlite, mysql), "$1" (postgres), "@p1" (mssql)
	Placeholder(n int) string

	// QuoteIdent квотирует идентификатор: "name", `name`, [name]
	QuoteIdent(name string) string

	// TimestampType - имя типа колонки таймстемпа в DDL
	TimestampType() string

	// TextType - имя типа текстовой колонки в DDL
	// (MySQL требует ограниченную длину для индексируемых колонок)
	TextType() string

	// FloatType - имя типа колонки double precision в DDL
	FloatType() string

	// LimitClause возвращает суффикс ограничения числа строк для SELECT
	// с ORDER BY: " LIMIT n" либо " OFFSET 0 ROWS FETCH NEXT n ROWS ONLY"
	LimitClause(n int) string

	// TableExistsSQL - запрос COUNT(*) существования таблицы,
	// один параметр - имя таблицы (в плейсхолдере №1 этого диалекта)
	TableExistsSQL() string

	// ListTablesSQL - запрос списка пользовательских таблиц, без параметров,
	// одна колонка - имя, отсортировано по имени
	ListTablesSQL() string
}
