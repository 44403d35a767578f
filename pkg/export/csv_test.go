package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
)

func samplePanel() *panel.Panel {
	day1 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	p := panel.New("pb")
	p.Set(day1, "A", 1.5)
	p.SetNull(day1, "B")
	p.Set(day2, "B", 2.5)
	// (day2, A) отсутствует
	return p
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, samplePanel()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	expected := "timestamp,A,B\n" +
		"2020-01-01,1.5,\n" +
		"2020-01-02,,2.5\n"
	if buf.String() != expected {
		t.Errorf("CSV output:\n%s\nexpected:\n%s", buf.String(), expected)
	}
}

func TestWriteCSVNilPanel(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err == nil {
		t.Error("expected error for nil panel")
	}
}

func TestWriteCSVIntraday(t *testing.T) {
	ts := time.Date(2020, 1, 1, 15, 30, 0, 0, time.UTC)
	p := panel.New("pb")
	p.Set(ts, "A", 1.0)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, p); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	expected := "timestamp,A\n2020-01-01 15:30:00,1\n"
	if buf.String() != expected {
		t.Errorf("CSV output:\n%s\nexpected:\n%s", buf.String(), expected)
	}
}

func TestZstdRoundTrip(t *testing.T) {
	var plain, compressed bytes.Buffer
	p := samplePanel()

	if err := WriteCSV(&plain, p); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if err := WriteCSVZstd(&compressed, p); err != nil {
		t.Fatalf("WriteCSVZstd failed: %v", err)
	}

	restored, err := ReadCSVZstd(&compressed)
	if err != nil {
		t.Fatalf("ReadCSVZstd failed: %v", err)
	}
	if !bytes.Equal(restored, plain.Bytes()) {
		t.Errorf("round trip mismatch:\n%s\nexpected:\n%s", restored, plain.Bytes())
	}
}

func TestWriteCSVFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("plain", func(t *testing.T) {
		path := filepath.Join(dir, "pb.csv")
		if err := WriteCSVFile(path, samplePanel(), false); err != nil {
			t.Fatalf("WriteCSVFile failed: %v", err)
		}
	})

	t.Run("compressed", func(t *testing.T) {
		path := filepath.Join(dir, "pb.csv.zst")
		if err := WriteCSVFile(path, samplePanel(), true); err != nil {
			t.Fatalf("WriteCSVFile failed: %v", err)
		}
	})
}
