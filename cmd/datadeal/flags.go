package main

import "flag"

// Flags holds all command-line flags
type Flags struct {
	// Commands
	List        *bool
	Info        *string
	Create      *string
	Drop        *string
	Delete      *string
	Import      *string
	Query       *string
	MultiFactor *string
	Pipeline    *string

	// Query filters
	From  *string
	To    *string
	Codes *string
	Limit *int

	// Options
	Config   *string
	Output   *string
	Format   *string
	Metric   *string
	Policy   *string
	Recreate *bool
	Compress *bool
	Sheet    *string

	// Config creation
	CreateConfigPG     *bool
	CreateConfigMSSQL  *bool
	CreateConfigSQLite *bool
	CreateConfigMySQL  *bool

	// Misc
	Version *bool
	Help    *bool
}

// ParseFlags defines and parses all command-line flags
func ParseFlags() *Flags {
	f := &Flags{}

	// Commands
	f.List = flag.Bool("list", false, "List all metric tables in database")
	f.Info = flag.String("info", "", "Show table statistics (table name)")
	f.Create = flag.String("create", "", "Create metric table from wide CSV (table name, requires --import)")
	f.Drop = flag.String("drop", "", "Drop metric table (table name)")
	f.Delete = flag.String("delete", "", "Delete rows by filter (table name, requires --from/--to/--codes)")
	f.Import = flag.String("import", "", "Wide CSV file to load (file path)")
	f.Query = flag.String("query", "", "Query single metric table to wide panel (table name)")
	f.MultiFactor = flag.String("multifactor", "", "Join metric tables into one panel (comma-separated table names)")
	f.Pipeline = flag.String("pipeline", "", "Execute ingest pipeline from YAML config (file path)")

	// Query filters
	f.From = flag.String("from", "", "Start of time range, inclusive (YYYY-MM-DD)")
	f.To = flag.String("to", "", "End of time range, inclusive (YYYY-MM-DD)")
	f.Codes = flag.String("codes", "", "Instrument codes filter (comma-separated)")
	f.Limit = flag.Int("limit", 0, "Max long-format rows read before pivoting (0 = unlimited)")

	// Options
	f.Config = flag.String("config", "config.yaml", "Configuration file path")
	f.Output = flag.String("output", "", "Output file path (default: stdout)")
	f.Format = flag.String("format", "csv", "Output format: csv, xlsx")
	f.Metric = flag.String("metric", "", "Metric name for import (default: table name)")
	f.Policy = flag.String("policy", "skip", "Conflict policy: skip, overwrite, fullrow")
	f.Recreate = flag.Bool("recreate", false, "Drop and recreate table on --create")
	f.Compress = flag.Bool("compress", false, "Compress CSV output with zstd")
	f.Sheet = flag.String("sheet", "", "Excel sheet name for XLSX output")

	// Config creation
	f.CreateConfigPG = flag.Bool("create-config-pg", false, "Create sample PostgreSQL config file")
	f.CreateConfigMSSQL = flag.Bool("create-config-mssql", false, "Create sample MS SQL config file")
	f.CreateConfigSQLite = flag.Bool("create-config-sqlite", false, "Create sample SQLite config file")
	f.CreateConfigMySQL = flag.Bool("create-config-mysql", false, "Create sample MySQL config file")

	// Misc
	f.Version = flag.Bool("version", false, "Show version information")
	f.Help = flag.Bool("help", false, "Show detailed help with examples")

	flag.Parse()

	return f
}
