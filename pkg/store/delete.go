package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nurhachar-sibei/Datadeal/pkg/audit"
	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
)

// DeleteRecords удаляет длинные записи по фильтру и возвращает число
// удаленных строк. Фильтр без единого условия - ErrEmptyFilter: снести
// все данные можно только явным DropTable. Отсутствующая таблица -
// ErrTableNotFound. Filter.Limit игнорируется
func (s *Store) DeleteRecords(ctx context.Context, name string, f Filter) (int64, error) {
	name = panel.SanitizeName(name)
	started := time.Now()

	deleted, err := s.deleteRecords(ctx, name, f)

	entry := audit.NewEntry(audit.OpDelete, audit.StatusSuccess).
		WithTable(name).
		WithDuration(time.Since(started)).
		WithError(err).
		WithMetadata("deleted", deleted)
	s.aud.Log(ctx, entry)

	return deleted, err
}

func (s *Store) deleteRecords(ctx context.Context, name string, f Filter) (int64, error) {
	if f.empty() {
		return 0, fmt.Errorf("%w: %q", ErrEmptyFilter, name)
	}

	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}

	d := s.exec.Dialect()
	conds, args := f.conds(d)

	query := fmt.Sprintf("DELETE FROM %s WHERE %s",
		d.QuoteIdent(name), strings.Join(conds, " AND "))

	deleted, err := s.exec.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %q: %w", name, err)
	}
	return deleted, nil
}
