package store

import "errors"

var (
	// ErrTableExists - createTable для существующей таблицы без overwrite
	ErrTableExists = errors.New("table already exists")

	// ErrTableNotFound - операция над отсутствующей таблицей.
	// Drop отсутствующей таблицы - ошибка, а не тихий успех:
	// жизненный цикл таблиц логируется для аудита
	ErrTableNotFound = errors.New("table not found")

	// ErrEmptyFilter - DeleteRecords без единого условия.
	// Удаление всей таблицы выражается явным DropTable, а не
	// delete с пустым фильтром
	ErrEmptyFilter = errors.New("delete requires at least one filter condition")
)
