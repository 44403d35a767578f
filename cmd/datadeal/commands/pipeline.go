package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nurhachar-sibei/Datadeal/pkg/ingest"
)

// RunPipeline выполняет пайплайн загрузки из YAML конфигурации
func RunPipeline(ctx context.Context, configPath string, w io.Writer) error {
	cfg, err := ingest.LoadConfig(configPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Pipeline %q: %d source(s) -> %s\n",
		cfg.Name, len(cfg.Sources), cfg.Database.Type)

	processor := ingest.NewProcessor(cfg)
	execErr := processor.Execute(ctx)

	stats := processor.Stats()
	for _, src := range stats.Sources {
		if src.Skipped {
			fmt.Fprintf(w, "  %s: SKIPPED (%s)\n", src.Table, src.Error)
			continue
		}
		fmt.Fprintf(w, "  %s: loaded=%d inserted=%d updated=%d skipped=%d checksum=%s\n",
			src.Table, src.RowsLoaded,
			src.Report.Inserted, src.Report.Updated, src.Report.Skipped,
			src.Checksum)
	}
	fmt.Fprintf(w, "Done in %v: loaded=%d inserted=%d updated=%d skipped=%d\n",
		stats.Duration.Round(time.Millisecond),
		stats.TotalLoaded, stats.TotalInserted, stats.TotalUpdated, stats.TotalSkipped)

	return execErr
}
