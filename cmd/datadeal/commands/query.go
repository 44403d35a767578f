package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nurhachar-sibei/Datadeal/pkg/audit"
	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor"
	"github.com/nurhachar-sibei/Datadeal/pkg/export"
	"github.com/nurhachar-sibei/Datadeal/pkg/query"
)

// QueryOptions - параметры запроса панели
type QueryOptions struct {
	Tables   []string // одна таблица для query, несколько для multifactor
	From     string   // YYYY-MM-DD, пустое = без нижней границы
	To       string   // YYYY-MM-DD, пустое = без верхней границы
	Codes    []string
	Limit    int
	Output   string // путь к файлу, пустое = stdout
	Format   string // csv, xlsx
	Compress bool
	Sheet    string
}

// QueryTable выполняет одиночный или multifactor запрос и выгружает панель
func QueryTable(ctx context.Context, cfg executor.Config, aud audit.Logger, opts QueryOptions, w io.Writer) error {
	qopts, err := buildQueryOptions(opts)
	if err != nil {
		return err
	}

	st, exec, err := openStore(ctx, cfg, aud)
	if err != nil {
		return err
	}
	defer exec.Close(ctx)

	engine := query.New(st, query.WithAudit(aud))

	var p *panel.Panel
	if len(opts.Tables) == 1 {
		p, err = engine.QuerySingle(ctx, opts.Tables[0], qopts)
	} else {
		p, err = engine.QueryMultiFactor(ctx, opts.Tables, qopts)
	}
	if err != nil {
		return err
	}

	return writePanel(p, opts, w)
}

func buildQueryOptions(opts QueryOptions) (query.Options, error) {
	qopts := query.Options{
		Codes:    opts.Codes,
		RowLimit: opts.Limit,
	}

	if opts.From != "" {
		t, err := time.Parse("2006-01-02", opts.From)
		if err != nil {
			return query.Options{}, fmt.Errorf("invalid --from date: %w", err)
		}
		qopts.Start = &t
	}
	if opts.To != "" {
		t, err := time.Parse("2006-01-02", opts.To)
		if err != nil {
			return query.Options{}, fmt.Errorf("invalid --to date: %w", err)
		}
		qopts.End = &t
	}
	return qopts, nil
}

func writePanel(p *panel.Panel, opts QueryOptions, w io.Writer) error {
	switch opts.Format {
	case "", "csv":
		if opts.Output == "" {
			if opts.Compress {
				return export.WriteCSVZstd(os.Stdout, p)
			}
			return export.WriteCSV(os.Stdout, p)
		}
		if err := export.WriteCSVFile(opts.Output, p, opts.Compress); err != nil {
			return err
		}

	case "xlsx":
		if opts.Output == "" {
			return fmt.Errorf("--output is required for xlsx format")
		}
		if err := export.WriteXLSX(opts.Output, p, opts.Sheet); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unsupported format: %q (supported: csv, xlsx)", opts.Format)
	}

	if opts.Output != "" {
		fmt.Fprintf(w, "Panel %q (%d timestamps, %d columns) written to %s\n",
			p.Metric(), len(p.Timestamps()), len(p.Codes()), opts.Output)
	}
	return nil
}
