package export

import (
	"fmt"

	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
	"github.com/xuri/excelize/v2"
)

// WriteXLSX выгружает панель в Excel-файл: строка заголовков с кодами,
// далее по строке на таймстемп. Пустая ячейка = NULL
func WriteXLSX(filePath string, p *panel.Panel, sheetName string) error {
	if p == nil {
		return fmt.Errorf("panel is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = p.Metric()
		if sheetName == "" {
			sheetName = "Sheet1"
		}
	}

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	codes := p.Codes()

	// Заголовки: timestamp + коды
	headers := append([]string{"timestamp"}, codes...)
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to build cell name: %w", err)
		}
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, ts := range p.Timestamps() {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return fmt.Errorf("failed to build cell name: %w", err)
		}
		f.SetCellValue(sheetName, cell, formatTimestamp(ts))

		for col, code := range codes {
			value, present := p.Cell(ts, code)
			if !present || value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+2, rowIdx+2)
			if err != nil {
				return fmt.Errorf("failed to build cell name: %w", err)
			}
			f.SetCellValue(sheetName, cell, *value)
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}
