package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nurhachar-sibei/Datadeal/pkg/audit"
	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
	"github.com/nurhachar-sibei/Datadeal/pkg/dedup"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor"
	"github.com/nurhachar-sibei/Datadeal/pkg/notify"
	"github.com/nurhachar-sibei/Datadeal/pkg/resultlog"
	"github.com/nurhachar-sibei/Datadeal/pkg/retry"
	"github.com/nurhachar-sibei/Datadeal/pkg/store"
)

// SourceStats - результат загрузки одного источника
type SourceStats struct {
	Table      string
	Metric     string
	Checksum   string
	RowsLoaded int
	Report     dedup.Report
	Skipped    bool // источник пропущен из-за ошибки (on_source_error: skip)
	Error      string
}

// Stats - агрегированная статистика выполнения пайплайна
type Stats struct {
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	Sources       []SourceStats
	TotalLoaded   int
	TotalInserted int
	TotalUpdated  int
	TotalSkipped  int
}

// Processor выполняет пайплайн загрузки: на каждый источник
// load → unpivot → create-or-insert, затем публикация результата
type Processor struct {
	config *PipelineConfig
	stats  Stats
}

// NewProcessor создает processor для конфигурации
func NewProcessor(config *PipelineConfig) *Processor {
	return &Processor{config: config}
}

// Stats возвращает статистику последнего выполнения
func (p *Processor) Stats() Stats {
	return p.stats
}

// Execute выполняет пайплайн. Результат публикуется в result log
// независимо от исхода (успех или ошибка)
func (p *Processor) Execute(ctx context.Context) error {
	p.stats = Stats{StartTime: time.Now()}
	defer func() {
		p.stats.EndTime = time.Now()
		p.stats.Duration = p.stats.EndTime.Sub(p.stats.StartTime)
	}()

	aud, err := p.buildAudit()
	if err != nil {
		return err
	}
	defer aud.Close()

	execErr := p.run(ctx, aud)

	if p.config.ResultLog.Type == "redis" {
		publisher := resultlog.NewRedisPublisher(p.config.ResultLog.Config)
		defer publisher.Close()

		run := resultlog.Run{
			PipelineName: p.config.Name,
			StartedAt:    p.stats.StartTime,
			FinishedAt:   time.Now(),
			RowsLoaded:   p.stats.TotalLoaded,
			RowsInserted: p.stats.TotalInserted,
			RowsUpdated:  p.stats.TotalUpdated,
			RowsSkipped:  p.stats.TotalSkipped,
		}
		if pubErr := publisher.Publish(ctx, run, execErr); pubErr != nil {
			if execErr == nil {
				return fmt.Errorf("pipeline succeeded but result publish failed: %w", pubErr)
			}
			// Ошибка выполнения важнее ошибки публикации
		}
	}

	return execErr
}

func (p *Processor) run(ctx context.Context, aud audit.Logger) error {
	retryer, err := retry.New(p.config.Retry)
	if err != nil {
		return err
	}

	cfg := executor.Config{
		Type:     p.config.Database.Type,
		DSN:      p.config.Database.DSN,
		Schema:   p.config.Database.Schema,
		Timeout:  time.Duration(p.config.Database.Timeout) * time.Second,
		MaxConns: p.config.Database.MaxConns,
	}

	// Connect к БД повторяется: пайплайны стартуют по расписанию,
	// и сервер может быть еще недоступен
	var exec executor.Executor
	err = retryer.Do(ctx, func(ctx context.Context) error {
		var connErr error
		exec, connErr = executor.New(ctx, cfg)
		return connErr
	})
	if err != nil {
		aud.Log(ctx, audit.NewEntry(audit.OpConnect, audit.StatusSuccess).WithError(err))
		return err
	}
	defer exec.Close(ctx)

	st := store.New(exec, store.WithAudit(aud))

	var notifier notify.Notifier
	if p.config.Notify.Enabled {
		notifier, err = notify.New(p.config.Notify.Config)
		if err != nil {
			return err
		}
		if err := retryer.Do(ctx, notifier.Connect); err != nil {
			return fmt.Errorf("failed to connect notifier: %w", err)
		}
		defer notifier.Close()
	}

	skipOnError := p.config.ErrorHandling.OnSourceError == "skip"

	for _, src := range p.config.Sources {
		srcStats, err := p.runSource(ctx, st, aud, src)
		p.stats.Sources = append(p.stats.Sources, srcStats)

		if err != nil {
			if !skipOnError {
				p.notifySource(ctx, notifier, srcStats, err)
				return fmt.Errorf("source %q failed: %w", src.Table, err)
			}
			continue
		}

		p.stats.TotalLoaded += srcStats.RowsLoaded
		p.stats.TotalInserted += srcStats.Report.Inserted
		p.stats.TotalUpdated += srcStats.Report.Updated
		p.stats.TotalSkipped += srcStats.Report.Skipped

		p.notifySource(ctx, notifier, srcStats, nil)
	}

	return nil
}

func (p *Processor) runSource(ctx context.Context, st *store.Store, aud audit.Logger, src SourceConfig) (SourceStats, error) {
	srcStats := SourceStats{Table: src.Table, Metric: src.MetricFor()}

	pan, err := LoadCSVPanel(src.Path, srcStats.Metric)
	if err != nil {
		return p.failSource(ctx, aud, srcStats, err)
	}

	records, err := panel.Unpivot(pan, srcStats.Metric)
	if err != nil {
		return p.failSource(ctx, aud, srcStats, err)
	}
	srcStats.RowsLoaded = len(records)
	srcStats.Checksum = BatchChecksum(records)

	policy, err := dedup.ParsePolicy(src.Policy)
	if err != nil {
		return p.failSource(ctx, aud, srcStats, err)
	}

	exists, err := st.TableExists(ctx, src.Table)
	if err != nil {
		return p.failSource(ctx, aud, srcStats, err)
	}

	if !exists || src.Recreate {
		srcStats.Report, err = st.CreateTable(ctx, src.Table, records, src.Recreate)
	} else {
		srcStats.Report, err = st.InsertData(ctx, src.Table, records, policy)
	}
	if err != nil {
		return p.failSource(ctx, aud, srcStats, err)
	}

	entry := audit.NewEntry(audit.OpPipeline, audit.StatusSuccess).
		WithTable(panel.SanitizeName(src.Table)).
		WithPolicy(string(policy)).
		WithCounts(srcStats.Report.Inserted, srcStats.Report.Updated, srcStats.Report.Skipped).
		WithMetadata("pipeline", p.config.Name).
		WithMetadata("checksum", srcStats.Checksum).
		WithMetadata("rows_loaded", srcStats.RowsLoaded)
	aud.Log(ctx, entry)

	return srcStats, nil
}

func (p *Processor) failSource(ctx context.Context, aud audit.Logger, srcStats SourceStats, err error) (SourceStats, error) {
	srcStats.Skipped = true
	srcStats.Error = err.Error()

	entry := audit.NewEntry(audit.OpPipeline, audit.StatusSuccess).
		WithTable(panel.SanitizeName(srcStats.Table)).
		WithMetadata("pipeline", p.config.Name).
		WithError(err)
	aud.Log(ctx, entry)

	return srcStats, err
}

func (p *Processor) notifySource(ctx context.Context, notifier notify.Notifier, srcStats SourceStats, execErr error) {
	if notifier == nil {
		return
	}

	event := notify.Event{
		Op:     "insert",
		Table:  panel.SanitizeName(srcStats.Table),
		Rows:   srcStats.Report.Inserted + srcStats.Report.Updated,
		Status: "success",
		At:     time.Now(),
	}
	if execErr != nil {
		event.Status = "failure"
		event.Error = execErr.Error()
	}

	// Недоставленное событие не валит загрузку - данные уже сохранены
	notifier.Send(ctx, event)
}

func (p *Processor) buildAudit() (audit.Logger, error) {
	if !p.config.Audit.Enabled {
		return audit.NewNullLogger(), nil
	}
	if p.config.Audit.Output == "" {
		return audit.NewLogger(audit.NewWriterAppender(os.Stdout)), nil
	}

	appender, err := audit.NewFileAppender(audit.FileAppenderConfig{
		FilePath: p.config.Audit.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audit output: %w", err)
	}
	return audit.NewLogger(appender), nil
}
