package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"subtrack/internal/core"
)

const sheetName = "Subscriptions"

// WriteXLSX writes the subscription table as a spreadsheet with a bold
// header and a totals row.
func WriteXLSX(w io.Writer, subs []core.Subscription) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("set header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, boldStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}

	for r, row := range rows(subs) {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("set cell: %w", err)
			}
		}
	}

	totalRow := len(subs) + 2
	labelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	valueCell, _ := excelize.CoordinatesToCellName(len(header), totalRow)
	if err := f.SetCellValue(sheetName, labelCell, "Monthly total"); err != nil {
		return fmt.Errorf("set total label: %w", err)
	}
	if err := f.SetCellValue(sheetName, valueCell, fmt.Sprintf("%.2f", core.MonthlyNetTotal(subs))); err != nil {
		return fmt.Errorf("set total value: %w", err)
	}
	if err := f.SetCellStyle(sheetName, labelCell, labelCell, boldStyle); err != nil {
		return fmt.Errorf("style total: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
