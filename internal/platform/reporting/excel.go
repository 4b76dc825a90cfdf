package reporting

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX renders a measure report as a spreadsheet. Columns follow the
// sorted result keys so repeated exports line up.
func ExportXLSX(report *MeasureReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Report"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	columns := columnOrder(report.Results)
	for col, name := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for rowIdx, row := range report.Results {
		for col, name := range columns {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, row[name]); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func columnOrder(results []map[string]interface{}) []string {
	if len(results) == 0 {
		return nil
	}
	columns := make([]string, 0, len(results[0]))
	for name := range results[0] {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}
