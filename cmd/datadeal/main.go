package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nurhachar-sibei/Datadeal/cmd/datadeal/commands"
	"github.com/nurhachar-sibei/Datadeal/pkg/audit"
	"github.com/nurhachar-sibei/Datadeal/pkg/executor"

	// Регистрация backend'ов в фабрике исполнителей
	_ "github.com/nurhachar-sibei/Datadeal/pkg/executor/mssql"
	_ "github.com/nurhachar-sibei/Datadeal/pkg/executor/mysql"
	_ "github.com/nurhachar-sibei/Datadeal/pkg/executor/postgres"
	_ "github.com/nurhachar-sibei/Datadeal/pkg/executor/sqlite"
)

func main() {
	ctx := context.Background()

	flags := ParseFlags()

	if *flags.Version {
		PrintVersion()
		os.Exit(0)
	}
	if *flags.Help {
		PrintHelp()
		os.Exit(0)
	}

	// Создание образцов конфигурации
	if *flags.CreateConfigPG {
		createConfigTemplate("postgres")
		return
	}
	if *flags.CreateConfigMSSQL {
		createConfigTemplate("mssql")
		return
	}
	if *flags.CreateConfigSQLite {
		createConfigTemplate("sqlite")
		return
	}
	if *flags.CreateConfigMySQL {
		createConfigTemplate("mysql")
		return
	}

	// Пайплайн несет конфигурацию подключения в себе
	if *flags.Pipeline != "" {
		if err := commands.RunPipeline(ctx, *flags.Pipeline, os.Stdout); err != nil {
			fatal("Pipeline failed: %v", err)
		}
		return
	}

	config, err := LoadConfig(*flags.Config)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	execConfig := executor.Config{
		Type:     config.Database.NormalizedType(),
		DSN:      config.Database.BuildDSN(),
		Schema:   config.Database.Schema,
		MaxConns: config.Database.MaxConns,
	}

	aud, err := buildAudit(config.Audit)
	if err != nil {
		fatal("Failed to init audit log: %v", err)
	}
	defer aud.Close()

	var cmdErr error
	switch {
	case *flags.List:
		cmdErr = commands.ListTables(ctx, execConfig, aud, os.Stdout)

	case *flags.Info != "":
		cmdErr = commands.TableInfo(ctx, execConfig, aud, *flags.Info, os.Stdout)

	case *flags.Drop != "":
		cmdErr = commands.DropTable(ctx, execConfig, aud, *flags.Drop, os.Stdout)

	case *flags.Delete != "":
		cmdErr = commands.DeleteRecords(ctx, execConfig, aud, commands.DeleteOptions{
			Table: *flags.Delete,
			From:  *flags.From,
			To:    *flags.To,
			Codes: splitList(*flags.Codes),
		}, os.Stdout)

	case *flags.Create != "":
		if *flags.Import == "" {
			fatal("--create requires --import <csv file>")
		}
		cmdErr = commands.ImportCSV(ctx, execConfig, aud, commands.ImportOptions{
			Table:    *flags.Create,
			Metric:   *flags.Metric,
			FilePath: *flags.Import,
			Policy:   *flags.Policy,
			Create:   true,
			Recreate: *flags.Recreate,
		}, os.Stdout)

	case *flags.Import != "":
		table := *flags.Metric
		if table == "" {
			fatal("--import without --create requires --metric <table name>")
		}
		cmdErr = commands.ImportCSV(ctx, execConfig, aud, commands.ImportOptions{
			Table:    table,
			Metric:   *flags.Metric,
			FilePath: *flags.Import,
			Policy:   *flags.Policy,
		}, os.Stdout)

	case *flags.Query != "":
		cmdErr = commands.QueryTable(ctx, execConfig, aud, queryOptions(flags, []string{*flags.Query}), os.Stdout)

	case *flags.MultiFactor != "":
		tables := splitList(*flags.MultiFactor)
		if len(tables) == 0 {
			fatal("--multifactor requires at least one table name")
		}
		cmdErr = commands.QueryTable(ctx, execConfig, aud, queryOptions(flags, tables), os.Stdout)

	default:
		PrintHelp()
		os.Exit(1)
	}

	if cmdErr != nil {
		fatal("%v", cmdErr)
	}
}

func queryOptions(flags *Flags, tables []string) commands.QueryOptions {
	return commands.QueryOptions{
		Tables:   tables,
		From:     *flags.From,
		To:       *flags.To,
		Codes:    splitList(*flags.Codes),
		Limit:    *flags.Limit,
		Output:   *flags.Output,
		Format:   *flags.Format,
		Compress: *flags.Compress,
		Sheet:    *flags.Sheet,
	}
}

func buildAudit(cfg AuditConfig) (audit.Logger, error) {
	if !cfg.Enabled {
		return audit.NewNullLogger(), nil
	}
	if cfg.File == "" {
		return audit.NewLogger(audit.NewWriterAppender(os.Stderr)), nil
	}
	appender, err := audit.NewFileAppender(audit.FileAppenderConfig{FilePath: cfg.File})
	if err != nil {
		return nil, err
	}
	return audit.NewLogger(appender), nil
}

func createConfigTemplate(dbType string) {
	filename := fmt.Sprintf("config-%s.yaml", dbType)
	if err := SaveConfig(filename, CreateSampleConfig(dbType)); err != nil {
		fatal("Failed to create config: %v", err)
	}
	fmt.Printf("Sample config written to %s\n", filename)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
