package panel

import (
	"errors"
	"math"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2020, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "pb", "pb"},
		{"dots and dashes", "factor.pb-ratio", "factor_pb_ratio"},
		{"spaces", "my table", "my_table"},
		{"unicode", "таблица", "_______"},
		{"already safe", "table_01", "table_01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.expected {
				t.Errorf("SanitizeName(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestUnpivotOrder(t *testing.T) {
	p := New("pb")
	// Нарочно задаем ячейки не по порядку
	p.Set(day(2), "B", 4.0)
	p.Set(day(1), "A", 1.0)
	p.Set(day(2), "A", 3.0)
	p.Set(day(1), "B", 2.0)

	records, err := Unpivot(p, "pb")
	if err != nil {
		t.Fatalf("Unpivot failed: %v", err)
	}

	// timestamp-major, code-minor; коды в порядке первого появления (B, A)
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	expected := []struct {
		ts    time.Time
		code  string
		value float64
	}{
		{day(1), "B", 2.0},
		{day(1), "A", 1.0},
		{day(2), "B", 4.0},
		{day(2), "A", 3.0},
	}
	for i, exp := range expected {
		rec := records[i]
		if !rec.Timestamp.Equal(exp.ts) || rec.Code != exp.code || *rec.Value != exp.value {
			t.Errorf("record[%d] = (%v, %s, %v), expected (%v, %s, %v)",
				i, rec.Timestamp, rec.Code, *rec.Value, exp.ts, exp.code, exp.value)
		}
		if rec.Metric != "pb" {
			t.Errorf("record[%d] metric = %q, expected pb", i, rec.Metric)
		}
	}
}

func TestUnpivotExplicitNull(t *testing.T) {
	p := New("pe")
	p.Set(day(1), "A", 1.0)
	p.SetNull(day(1), "B")

	records, err := Unpivot(p, "pe")
	if err != nil {
		t.Fatalf("Unpivot failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records (explicit null emitted), got %d", len(records))
	}

	var nullRec *LongRecord
	for i := range records {
		if records[i].Code == "B" {
			nullRec = &records[i]
		}
	}
	if nullRec == nil {
		t.Fatal("record for code B not emitted")
	}
	if nullRec.Value != nil {
		t.Errorf("expected nil value for explicit null, got %v", *nullRec.Value)
	}
}

func TestUnpivotInvalid(t *testing.T) {
	if _, err := Unpivot(nil, "pb"); !errors.Is(err, ErrInvalidRow) {
		t.Errorf("nil panel: expected ErrInvalidRow, got %v", err)
	}
	if _, err := Unpivot(New("pb"), ""); !errors.Is(err, ErrInvalidRow) {
		t.Errorf("empty metric: expected ErrInvalidRow, got %v", err)
	}
}

func TestPivotAmbiguousMetric(t *testing.T) {
	records := []LongRecord{
		{Timestamp: day(1), Code: "A", Metric: "pb", Value: Float(1)},
		{Timestamp: day(1), Code: "A", Metric: "pe", Value: Float(2)},
	}

	if _, err := Pivot(records, ""); !errors.Is(err, ErrAmbiguousMetric) {
		t.Errorf("expected ErrAmbiguousMetric, got %v", err)
	}

	// С фильтром - записи другой метрики отбрасываются
	p, err := Pivot(records, "pb")
	if err != nil {
		t.Fatalf("Pivot with filter failed: %v", err)
	}
	if p.Metric() != "pb" {
		t.Errorf("metric = %q, expected pb", p.Metric())
	}
	if v, ok := p.Value(day(1), "A"); !ok || v != 1 {
		t.Errorf("cell (day1, A) = (%v, %v), expected (1, true)", v, ok)
	}
	if p.NumCells() != 1 {
		t.Errorf("expected 1 cell, got %d", p.NumCells())
	}
}

func TestPivotSparse(t *testing.T) {
	// Контракт query-пути: отсутствующие пары просто отсутствуют
	records := []LongRecord{
		{Timestamp: day(1), Code: "A", Metric: "pb", Value: Float(1)},
		{Timestamp: day(2), Code: "B", Metric: "pb", Value: Float(2)},
	}

	p, err := Pivot(records, "")
	if err != nil {
		t.Fatalf("Pivot failed: %v", err)
	}
	if p.NumCells() != 2 {
		t.Errorf("expected 2 cells (no materialized nulls), got %d", p.NumCells())
	}
	if _, present := p.Cell(day(1), "B"); present {
		t.Error("cell (day1, B) must be absent, not null")
	}
}

func TestPivotInvalidRow(t *testing.T) {
	records := []LongRecord{
		{Timestamp: day(1), Code: "", Metric: "pb", Value: Float(1)},
	}
	if _, err := Pivot(records, ""); !errors.Is(err, ErrInvalidRow) {
		t.Errorf("expected ErrInvalidRow for empty code, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	p := New("m")
	values := map[string]map[int]float64{
		"SH600000": {1: 1.5, 2: 2.25, 3: -0.75},
		"SZ000001": {1: 100.125, 3: 0},
	}
	for code, byDay := range values {
		for d, v := range byDay {
			p.Set(day(d), code, v)
		}
	}

	records, err := Unpivot(p, "m")
	if err != nil {
		t.Fatalf("Unpivot failed: %v", err)
	}
	back, err := Pivot(records, "m")
	if err != nil {
		t.Fatalf("Pivot failed: %v", err)
	}

	if back.NumCells() != p.NumCells() {
		t.Fatalf("cell count %d != %d", back.NumCells(), p.NumCells())
	}
	if len(back.Timestamps()) != len(p.Timestamps()) {
		t.Fatalf("timestamp count mismatch")
	}
	for code, byDay := range values {
		for d, v := range byDay {
			got, ok := back.Value(day(d), code)
			if !ok {
				t.Errorf("cell (day%d, %s) lost in round trip", d, code)
				continue
			}
			if math.Abs(got-v) > 1e-12 {
				t.Errorf("cell (day%d, %s) = %v, expected %v", d, code, got, v)
			}
		}
	}
}

func TestPanelTimestampsSorted(t *testing.T) {
	p := New("m")
	p.Set(day(3), "A", 3)
	p.Set(day(1), "A", 1)
	p.Set(day(2), "A", 2)

	ts := p.Timestamps()
	for i := 1; i < len(ts); i++ {
		if !ts[i-1].Before(ts[i]) {
			t.Fatalf("timestamps not ascending: %v", ts)
		}
	}
}

func TestNormalizeTime(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	local := time.Date(2020, 1, 1, 3, 0, 0, 999_000_000, loc)
	norm := NormalizeTime(local)

	if norm.Location() != time.UTC {
		t.Error("normalized time must be UTC")
	}
	if norm.Nanosecond() != 0 {
		t.Error("normalized time must be truncated to seconds")
	}
	if !norm.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected normalized time: %v", norm)
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name string
		rec  LongRecord
		ok   bool
	}{
		{"valid", LongRecord{Timestamp: day(1), Code: "A", Metric: "pb"}, true},
		{"zero timestamp", LongRecord{Code: "A", Metric: "pb"}, false},
		{"empty code", LongRecord{Timestamp: day(1), Metric: "pb"}, false},
		{"empty metric", LongRecord{Timestamp: day(1), Code: "A"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidRow) {
				t.Errorf("expected ErrInvalidRow, got %v", err)
			}
		})
	}
}
