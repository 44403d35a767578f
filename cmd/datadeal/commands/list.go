// Package commands - реализация команд CLI поверх table store и query engine
package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nurhachar-sibei/Datadeal/pkg/audit"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor"
	"github.com/nurhachar-sibei/Datadeal/pkg/store"
)

// openStore подключается к БД и создает store
func openStore(ctx context.Context, cfg executor.Config, aud audit.Logger) (*store.Store, executor.Executor, error) {
	exec, err := executor.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return store.New(exec, store.WithAudit(aud)), exec, nil
}

// ListTables выводит имена всех таблиц
func ListTables(ctx context.Context, cfg executor.Config, aud audit.Logger, w io.Writer) error {
	st, exec, err := openStore(ctx, cfg, aud)
	if err != nil {
		return err
	}
	defer exec.Close(ctx)

	names, err := st.ListTables(ctx)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Fprintln(w, "No tables found")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}

// TableInfo выводит статистику таблицы
func TableInfo(ctx context.Context, cfg executor.Config, aud audit.Logger, name string, w io.Writer) error {
	st, exec, err := openStore(ctx, cfg, aud)
	if err != nil {
		return err
	}
	defer exec.Close(ctx)

	info, err := st.TableInfo(ctx, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Table:    %s\n", info.Name)
	fmt.Fprintf(w, "Rows:     %d\n", info.RowCount)
	fmt.Fprintf(w, "Codes:    %d\n", info.CodeCount)
	fmt.Fprintf(w, "Metrics:  %d\n", info.MetricCount)
	if info.MinTimestamp != nil && info.MaxTimestamp != nil {
		fmt.Fprintf(w, "Range:    %s .. %s\n",
			info.MinTimestamp.Format("2006-01-02"),
			info.MaxTimestamp.Format("2006-01-02"))
	} else {
		fmt.Fprintf(w, "Range:    (empty)\n")
	}
	return nil
}

// DropTable удаляет таблицу
func DropTable(ctx context.Context, cfg executor.Config, aud audit.Logger, name string, w io.Writer) error {
	st, exec, err := openStore(ctx, cfg, aud)
	if err != nil {
		return err
	}
	defer exec.Close(ctx)

	if err := st.DropTable(ctx, name); err != nil {
		return err
	}
	fmt.Fprintf(w, "Table %q dropped\n", name)
	return nil
}

// DeleteOptions - условия удаления записей
type DeleteOptions struct {
	Table string
	From  string // YYYY-MM-DD, пустое = без нижней границы
	To    string // YYYY-MM-DD, пустое = без верхней границы
	Codes []string
}

// DeleteRecords удаляет записи таблицы по фильтру. Хотя бы одно
// условие обязательно - снос всех данных выражается командой drop
func DeleteRecords(ctx context.Context, cfg executor.Config, aud audit.Logger, opts DeleteOptions, w io.Writer) error {
	filter, err := buildFilter(opts.From, opts.To, opts.Codes)
	if err != nil {
		return err
	}

	st, exec, err := openStore(ctx, cfg, aud)
	if err != nil {
		return err
	}
	defer exec.Close(ctx)

	deleted, err := st.DeleteRecords(ctx, opts.Table, filter)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Deleted %d rows from %q\n", deleted, opts.Table)
	return nil
}

func buildFilter(from, to string, codes []string) (store.Filter, error) {
	f := store.Filter{Codes: codes}

	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return store.Filter{}, fmt.Errorf("invalid --from date: %w", err)
		}
		f.Start = &t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return store.Filter{}, fmt.Errorf("invalid --to date: %w", err)
		}
		f.End = &t
	}
	return f, nil
}
