// Package export - выгрузка панелей во внешние форматы: широкий CSV
// (с опциональным zstd-сжатием), XLSX и снапшоты в S3
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
)

// formatTimestamp - дневные данные выгружаются как дата,
// внутридневные - с временем
func formatTimestamp(t time.Time) string {
	t = panel.NormalizeTime(t)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatValue(v *float64) string {
	if v == nil {
		return "" // пустая ячейка = NULL
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// WriteCSV выгружает панель в широкий CSV: первая колонка - timestamp,
// далее по колонке на код. Отсутствующие и NULL ячейки - пустые
func WriteCSV(w io.Writer, p *panel.Panel) error {
	if p == nil {
		return fmt.Errorf("panel is nil")
	}

	cw := csv.NewWriter(w)
	codes := p.Codes()

	header := append([]string{"timestamp"}, codes...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(codes)+1)
	for _, ts := range p.Timestamps() {
		row[0] = formatTimestamp(ts)
		for i, code := range codes {
			cell, present := p.Cell(ts, code)
			if !present {
				row[i+1] = ""
				continue
			}
			row[i+1] = formatValue(cell)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVZstd выгружает панель в CSV, сжатый zstd
func WriteCSVZstd(w io.Writer, p *panel.Panel) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}

	if err := WriteCSV(zw, p); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish zstd stream: %w", err)
	}
	return nil
}

// ReadCSVZstd распаковывает zstd-поток (обратный путь для проверки выгрузок)
func ReadCSVZstd(r io.Reader) ([]byte, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return data, nil
}

// WriteCSVFile выгружает панель в файл. compress=true пишет zstd-поток
// (принято дописывать расширение .zst к имени файла)
func WriteCSVFile(path string, p *panel.Panel, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if compress {
		return WriteCSVZstd(f, p)
	}
	return WriteCSV(f, p)
}
