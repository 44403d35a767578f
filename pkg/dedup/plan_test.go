package dedup

import (
	"errors"
	"testing"
	"time"

	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
)

func day(d int) time.Time {
	return time.Date(2020, 1, d, 0, 0, 0, 0, time.UTC)
}

func rec(d int, code string, value float64) panel.LongRecord {
	return panel.LongRecord{Timestamp: day(d), Code: code, Metric: "pb", Value: panel.Float(value)}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input    string
		expected ConflictPolicy
		ok       bool
	}{
		{"", SkipDuplicates, true},
		{"skip", SkipDuplicates, true},
		{"overwrite", OverwriteExisting, true},
		{"fullrow", FullRowCompare, true},
		{"merge", "", false},
	}

	for _, tt := range tests {
		t.Run("input="+tt.input, func(t *testing.T) {
			got, err := ParsePolicy(tt.input)
			if tt.ok && (err != nil || got != tt.expected) {
				t.Errorf("ParsePolicy(%q) = (%v, %v), expected %v", tt.input, got, err, tt.expected)
			}
			if !tt.ok && err == nil {
				t.Errorf("ParsePolicy(%q): expected error", tt.input)
			}
		})
	}
}

func TestComputeEmptyCandidates(t *testing.T) {
	plan, err := Compute(Existing{}, nil, SkipDuplicates)
	if err != nil {
		t.Fatalf("empty candidates must not error: %v", err)
	}
	r := plan.Report()
	if r.Inserted != 0 || r.Updated != 0 || r.Skipped != 0 {
		t.Errorf("expected empty plan, got %+v", r)
	}
}

func TestComputeSkipDuplicates(t *testing.T) {
	existing := Existing{Keys: NewKeySet([]panel.LongRecord{rec(1, "A", 1)})}
	candidates := []panel.LongRecord{
		rec(1, "A", 99), // ключ существует - skip, значение не важно
		rec(2, "A", 2),  // новый ключ - insert
	}

	plan, err := Compute(existing, candidates, SkipDuplicates)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	r := plan.Report()
	if r.Inserted != 1 || r.Updated != 0 || r.Skipped != 1 {
		t.Errorf("report = %+v, expected inserted=1 skipped=1", r)
	}
	if plan.ToInsert[0].Code != "A" || !plan.ToInsert[0].Timestamp.Equal(day(2)) {
		t.Errorf("wrong record planned for insert: %+v", plan.ToInsert[0])
	}
}

func TestComputeOverwrite(t *testing.T) {
	existing := Existing{Keys: NewKeySet([]panel.LongRecord{rec(1, "A", 1), rec(2, "A", 2)})}
	candidates := []panel.LongRecord{
		rec(1, "A", 10), // существует - update
		rec(3, "A", 30), // новый - insert
	}

	plan, err := Compute(existing, candidates, OverwriteExisting)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	r := plan.Report()
	if r.Inserted != 1 || r.Updated != 1 || r.Skipped != 0 {
		t.Errorf("report = %+v, expected inserted=1 updated=1", r)
	}
	if *plan.ToUpdate[0].Value != 10 {
		t.Errorf("update must carry the new value, got %v", *plan.ToUpdate[0].Value)
	}
}

func TestComputeFullRowCompare(t *testing.T) {
	stored := []panel.LongRecord{rec(1, "A", 1)}
	existing := Existing{Keys: NewKeySet(stored), Rows: NewRowSet(stored)}

	candidates := []panel.LongRecord{
		rec(1, "A", 1), // полное совпадение - skip
		rec(1, "A", 2), // тот же ключ, другое значение - НОВАЯ строка (семантический разрыв)
	}

	plan, err := Compute(existing, candidates, FullRowCompare)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	r := plan.Report()
	if r.Inserted != 1 || r.Skipped != 1 || r.Updated != 0 {
		t.Errorf("report = %+v, expected inserted=1 skipped=1", r)
	}
	if *plan.ToInsert[0].Value != 2 {
		t.Errorf("changed value must be planned as a new row")
	}
}

func TestComputeFullRowNullValue(t *testing.T) {
	stored := []panel.LongRecord{{Timestamp: day(1), Code: "A", Metric: "pb", Value: nil}}
	existing := Existing{Keys: NewKeySet(stored), Rows: NewRowSet(stored)}

	candidates := []panel.LongRecord{
		{Timestamp: day(1), Code: "A", Metric: "pb", Value: nil},
	}
	plan, err := Compute(existing, candidates, FullRowCompare)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(plan.ToSkip) != 1 {
		t.Errorf("null value must compare equal to stored null")
	}
}

func TestComputeIntraBatchDuplicates(t *testing.T) {
	candidates := []panel.LongRecord{
		rec(1, "A", 1),
		rec(1, "A", 2), // дубликат ключа внутри пачки - первый выигрывает
	}

	for _, policy := range []ConflictPolicy{SkipDuplicates, OverwriteExisting} {
		t.Run(string(policy), func(t *testing.T) {
			plan, err := Compute(Existing{Keys: NewKeySet(nil)}, candidates, policy)
			if err != nil {
				t.Fatalf("Compute failed: %v", err)
			}
			if len(plan.ToInsert) != 1 || len(plan.ToSkip) != 1 {
				t.Errorf("expected insert=1 skip=1, got insert=%d skip=%d",
					len(plan.ToInsert), len(plan.ToSkip))
			}
			if *plan.ToInsert[0].Value != 1 {
				t.Errorf("first occurrence must win, got %v", *plan.ToInsert[0].Value)
			}
		})
	}
}

func TestComputeInvalidCandidate(t *testing.T) {
	candidates := []panel.LongRecord{
		{Timestamp: day(1), Code: "", Metric: "pb"},
	}
	if _, err := Compute(Existing{}, candidates, SkipDuplicates); !errors.Is(err, panel.ErrInvalidRow) {
		t.Errorf("expected ErrInvalidRow, got %v", err)
	}
}

func TestComputeUnknownPolicy(t *testing.T) {
	if _, err := Compute(Existing{}, nil, ConflictPolicy("merge")); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestKeyNormalization(t *testing.T) {
	// Один момент времени в разных зонах дает один ключ
	loc := time.FixedZone("UTC+8", 8*3600)
	a := panel.LongRecord{Timestamp: time.Date(2020, 1, 1, 8, 0, 0, 0, loc), Code: "A", Metric: "pb"}
	b := panel.LongRecord{Timestamp: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Code: "A", Metric: "pb"}

	if a.Key() != b.Key() {
		t.Errorf("keys differ across time zones: %+v vs %+v", a.Key(), b.Key())
	}
}
