package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/nurhachar-sibei/Datadeal/pkg/audit"
	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
	"github.com/nurhachar-sibei/Datadeal/pkg/dedup"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor"
	"github.com/nurhachar-sibei/Datadeal/pkg/ingest"
)

// ImportOptions - параметры загрузки CSV в таблицу
type ImportOptions struct {
	Table    string
	Metric   string // пустое = имя таблицы
	FilePath string
	Policy   string // skip, overwrite, fullrow
	Create   bool   // создать таблицу (команда --create)
	Recreate bool   // пересоздать при существовании
}

// ImportCSV загружает широкий CSV в метрическую таблицу
func ImportCSV(ctx context.Context, cfg executor.Config, aud audit.Logger, opts ImportOptions, w io.Writer) error {
	metric := opts.Metric
	if metric == "" {
		metric = opts.Table
	}

	pan, err := ingest.LoadCSVPanel(opts.FilePath, metric)
	if err != nil {
		return err
	}

	records, err := panel.Unpivot(pan, metric)
	if err != nil {
		return err
	}

	policy, err := dedup.ParsePolicy(opts.Policy)
	if err != nil {
		return err
	}

	st, exec, err := openStore(ctx, cfg, aud)
	if err != nil {
		return err
	}
	defer exec.Close(ctx)

	var report dedup.Report
	if opts.Create {
		report, err = st.CreateTable(ctx, opts.Table, records, opts.Recreate)
	} else {
		report, err = st.InsertData(ctx, opts.Table, records, policy)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Loaded %d rows from %s: inserted=%d, updated=%d, skipped=%d (checksum %s)\n",
		len(records), opts.FilePath,
		report.Inserted, report.Updated, report.Skipped,
		ingest.BatchChecksum(records))
	return nil
}
