package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
)

func day(d int) time.Time {
	return time.Date(2020, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestReadCSVPanel(t *testing.T) {
	csv := "date,A,B\n" +
		"2020-01-01,1.5,null\n" +
		"2020-01-02,,2.5\n"

	p, err := ReadCSVPanel(strings.NewReader(csv), "pb")
	if err != nil {
		t.Fatalf("ReadCSVPanel failed: %v", err)
	}

	if p.Metric() != "pb" {
		t.Errorf("metric = %q, expected pb", p.Metric())
	}
	if v, ok := p.Cell(day(1), "A"); !ok || v == nil || *v != 1.5 {
		t.Errorf("(day 1, A) = %v present=%v, expected 1.5", v, ok)
	}
	// Литерал "null" - явный NULL
	if v, ok := p.Cell(day(1), "B"); !ok || v != nil {
		t.Errorf("(day 1, B): expected explicit NULL, got %v present=%v", v, ok)
	}
	// Пустая ячейка - отсутствующее значение
	if _, ok := p.Cell(day(2), "A"); ok {
		t.Error("(day 2, A): empty cell must stay absent")
	}
	if p.NumCells() != 3 {
		t.Errorf("cells = %d, expected 3", p.NumCells())
	}
}

func TestReadCSVPanelDateFormats(t *testing.T) {
	tests := []struct {
		name string
		date string
	}{
		{"iso", "2020-01-01"},
		{"slash", "2020/01/01"},
		{"datetime", "2020-01-01 00:00:00"},
		{"dotted", "01.01.2020"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ReadCSVPanel(strings.NewReader("date,A\n"+tt.date+",1\n"), "pb")
			if err != nil {
				t.Fatalf("ReadCSVPanel failed: %v", err)
			}
			if _, ok := p.Cell(day(1), "A"); !ok {
				t.Errorf("timestamps = %v, expected %v", p.Timestamps(), day(1))
			}
		})
	}
}

func TestReadCSVPanelErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"no code columns", "date\n2020-01-01\n"},
		{"bad date", "date,A\nyesterday,1\n"},
		{"bad value", "date,A\n2020-01-01,abc\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSVPanel(strings.NewReader(tt.csv), "pb"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBatchChecksumDeterministic(t *testing.T) {
	records := []panel.LongRecord{
		{Timestamp: day(1), Code: "A", Metric: "pb", Value: panel.Float(1.5)},
		{Timestamp: day(1), Code: "B", Metric: "pb", Value: nil},
	}

	first := BatchChecksum(records)
	second := BatchChecksum(records)
	if first != second {
		t.Errorf("checksum not deterministic: %s vs %s", first, second)
	}
	if len(first) != 16 {
		t.Errorf("checksum %q is not a 64-bit hex digest", first)
	}

	changed := []panel.LongRecord{
		{Timestamp: day(1), Code: "A", Metric: "pb", Value: panel.Float(1.6)},
		{Timestamp: day(1), Code: "B", Metric: "pb", Value: nil},
	}
	if BatchChecksum(changed) == first {
		t.Error("changed value must change the checksum")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() PipelineConfig {
		return PipelineConfig{
			Name:     "daily",
			Database: DatabaseConfig{Type: "sqlite", DSN: ":memory:"},
			Sources:  []SourceConfig{{Table: "pb", Path: "pb.csv"}},
		}
	}

	if err := func() error { c := valid(); return c.Validate() }(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*PipelineConfig)
	}{
		{"missing name", func(c *PipelineConfig) { c.Name = "" }},
		{"missing db type", func(c *PipelineConfig) { c.Database.Type = "" }},
		{"missing dsn", func(c *PipelineConfig) { c.Database.DSN = "" }},
		{"no sources", func(c *PipelineConfig) { c.Sources = nil }},
		{"source without table", func(c *PipelineConfig) { c.Sources[0].Table = "" }},
		{"source without path", func(c *PipelineConfig) { c.Sources[0].Path = "" }},
		{"bad policy", func(c *PipelineConfig) { c.Sources[0].Policy = "merge" }},
		{"bad error mode", func(c *PipelineConfig) { c.ErrorHandling.OnSourceError = "retry" }},
		{"bad result_log type", func(c *PipelineConfig) { c.ResultLog.Type = "kafka" }},
		{"redis without address", func(c *PipelineConfig) {
			c.ResultLog.Type = "redis"
			c.ResultLog.Name = "daily"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestMetricFor(t *testing.T) {
	if got := (SourceConfig{Table: "pb"}).MetricFor(); got != "pb" {
		t.Errorf("fallback metric = %q, expected table name", got)
	}
	if got := (SourceConfig{Table: "pb", Metric: "pb_ratio"}).MetricFor(); got != "pb_ratio" {
		t.Errorf("metric = %q, expected pb_ratio", got)
	}
}
