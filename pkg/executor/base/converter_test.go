package base

import (
	"testing"
	"time"
)

func TestFormatTime(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	ts := time.Date(2020, 6, 15, 15, 30, 45, 999_000_000, loc)

	got := FormatTime(ts)
	if got != "2020-06-15 12:30:45" {
		t.Errorf("FormatTime = %q, expected UTC second precision", got)
	}
}

func TestToTime(t *testing.T) {
	expected := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		input any
	}{
		{"time.Time", expected},                     // pgx
		{"canonical string", "2020-01-02 03:04:05"}, // sqlite
		{"bytes", []byte("2020-01-02 03:04:05")},    // mysql
		{"rfc3339", "2020-01-02T03:04:05Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToTime(tt.input)
			if err != nil {
				t.Fatalf("ToTime failed: %v", err)
			}
			if !got.Equal(expected) {
				t.Errorf("ToTime = %v, expected %v", got, expected)
			}
		})
	}

	t.Run("date only", func(t *testing.T) {
		got, err := ToTime("2020-01-02")
		if err != nil {
			t.Fatalf("ToTime failed: %v", err)
		}
		if !got.Equal(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("ToTime = %v", got)
		}
	})

	t.Run("null", func(t *testing.T) {
		if _, err := ToTime(nil); err == nil {
			t.Error("expected error for NULL timestamp")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := ToTime("not a date"); err == nil {
			t.Error("expected error for unparsable string")
		}
	})
}

func TestToNullFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected *float64
		ok       bool
	}{
		{"nil is NULL", nil, nil, true},
		{"float64", float64(1.5), ptr(1.5), true},
		{"float32", float32(2), ptr(2), true},
		{"int64", int64(3), ptr(3), true},
		{"string", "4.25", ptr(4.25), true},
		{"bytes", []byte("-0.5"), ptr(-0.5), true},
		{"garbage", "abc", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToNullFloat(tt.input)
			if !tt.ok {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ToNullFloat failed: %v", err)
			}
			if (got == nil) != (tt.expected == nil) {
				t.Fatalf("ToNullFloat = %v, expected %v", got, tt.expected)
			}
			if got != nil && *got != *tt.expected {
				t.Errorf("ToNullFloat = %v, expected %v", *got, *tt.expected)
			}
		})
	}
}

func TestToInt(t *testing.T) {
	for _, input := range []any{int64(7), int32(7), int(7), float64(7), "7", []byte("7")} {
		got, err := ToInt(input)
		if err != nil || got != 7 {
			t.Errorf("ToInt(%T %v) = (%d, %v), expected 7", input, input, got, err)
		}
	}
	if _, err := ToInt(nil); err == nil {
		t.Error("expected error for NULL")
	}
}

func TestToString(t *testing.T) {
	for _, tt := range []struct {
		input    any
		expected string
	}{
		{"abc", "abc"},
		{[]byte("xyz"), "xyz"},
	} {
		got, err := ToString(tt.input)
		if err != nil || got != tt.expected {
			t.Errorf("ToString(%v) = (%q, %v)", tt.input, got, err)
		}
	}
	if _, err := ToString(nil); err == nil {
		t.Error("expected error for NULL")
	}
}

func ptr(v float64) *float64 { return &v }
