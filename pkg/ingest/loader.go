package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
)

// Форматы дат первой колонки широкого CSV
var csvTimeLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"02.01.2006",
}

// ReadCSVPanel читает широкий CSV в панель: первая колонка - дата,
// остальные колонки - коды инструментов (заголовок - имена кодов).
// Пустая ячейка - отсутствующее значение (ячейка не задается),
// литерал "null" - явный NULL
func ReadCSVPanel(r io.Reader, metric string) (*panel.Panel, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("wide CSV must have a date column and at least one code column")
	}
	codes := header[1:]

	p := panel.New(metric)
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}
		line++

		ts, err := parseCSVTime(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		for i, code := range codes {
			if i+1 >= len(row) {
				break
			}
			cell := strings.TrimSpace(row[i+1])
			if cell == "" {
				continue
			}
			if strings.EqualFold(cell, "null") {
				p.SetNull(ts, code)
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, code %q: invalid value %q: %w", line, code, cell, err)
			}
			p.Set(ts, code, value)
		}
	}
	return p, nil
}

// LoadCSVPanel читает широкий CSV-файл в панель
func LoadCSVPanel(path, metric string) (*panel.Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	p, err := ReadCSVPanel(f, metric)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", path, err)
	}
	return p, nil
}

func parseCSVTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", s)
}
