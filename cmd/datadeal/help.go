package main

import "fmt"

const version = "1.2.0"

// PrintVersion выводит версию
func PrintVersion() {
	fmt.Printf("datadeal %s - financial panel persistence and pivot query tool\n", version)
}

// PrintHelp выводит справку с примерами
func PrintHelp() {
	fmt.Print(`datadeal - persist wide financial panels into relational storage and back

USAGE:
    datadeal [command] [options]

COMMANDS:
    -list                         List all metric tables
    -info <table>                 Show table statistics (rows, codes, time range)
    -create <table> -import <f>   Create table and load wide CSV
    -drop <table>                 Drop table (fails if absent)
    -delete <table>               Delete rows by -from/-to/-codes (refuses an empty filter)
    -import <f> -metric <table>   Insert wide CSV into existing table
    -query <table>                Query table to wide panel
    -multifactor <t1,t2,...>      Join tables into combined panel ({table}_{code} columns)
    -pipeline <config.yaml>       Run ingest pipeline (sources, audit, result log, notify)

QUERY OPTIONS:
    -from 2020-01-01              Start of time range (inclusive)
    -to 2020-12-31                End of time range (inclusive)
    -codes A,B,C                  Filter instrument codes
    -limit N                      Cap long-format rows read before pivot

IMPORT OPTIONS:
    -metric <name>                Metric name (default: table name)
    -policy skip|overwrite|fullrow  Conflict policy for duplicate keys
    -recreate                     Drop and recreate table on -create

OUTPUT OPTIONS:
    -output <file>                Output file (default: stdout)
    -format csv|xlsx              Output format
    -compress                     zstd-compress CSV output
    -sheet <name>                 Excel sheet name

CONFIG:
    -config <file>                Connection config (default: config.yaml)
    -create-config-sqlite         Write sample SQLite config
    -create-config-pg             Write sample PostgreSQL config
    -create-config-mysql          Write sample MySQL config
    -create-config-mssql          Write sample MS SQL config

EXAMPLES:
    # Create a table from a wide CSV (dates in first column, codes in header)
    datadeal -create pb -import pb.csv

    # Re-load the same file: duplicates are skipped
    datadeal -import pb.csv -metric pb -policy skip

    # Overwrite values for existing keys
    datadeal -import pb_fixed.csv -metric pb -policy overwrite

    # Query a window of the panel to xlsx
    datadeal -query pb -from 2020-01-01 -to 2020-06-30 -format xlsx -output pb.xlsx

    # Join two factor tables: columns pb_A, pb_B, pe_A, pe_B
    datadeal -multifactor pb,pe -output factors.csv

    # Delete a bad date range for two codes
    datadeal -delete pb -from 2020-03-01 -to 2020-03-05 -codes A,B

    # Run a YAML pipeline with audit and Redis result publishing
    datadeal -pipeline pipeline.yaml
`)
}
