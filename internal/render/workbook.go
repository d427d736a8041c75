package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go-stats-dashboard/internal/model"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// Sheet is one worksheet of an exported workbook
type Sheet struct {
	Name  string
	Table model.Table
}

// DashboardSheets lays out one sheet per metric panel
func DashboardSheets(result *model.DashboardResult) []Sheet {
	sheets := make([]Sheet, 0, len(result.Panels))
	for _, panel := range result.Panels {
		sheets = append(sheets, Sheet{Name: panel.Metric, Table: panel.Table})
	}
	return sheets
}

// PenguinSheets lays out the penguin averages and the cleaned raw table
func PenguinSheets(result *model.PenguinResult) []Sheet {
	return []Sheet{
		{Name: "body_mass_by_sex", Table: chartTable(result.MassBySex)},
		{Name: "flipper_by_sex", Table: chartTable(result.FlipperBySex)},
		{Name: "raw", Table: result.Raw},
	}
}

func chartTable(chart model.BarChart) model.Table {
	table := model.Table{Columns: []string{chart.XLabel, chart.YLabel}, Rows: make([][]string, len(chart.Points))}
	for i, pt := range chart.Points {
		table.Rows[i] = []string{pt.Label, strconv.FormatFloat(pt.Value, 'f', -1, 64)}
	}
	return table
}

// WorkbookXLSX writes each sheet's table into an XLSX workbook
func WorkbookXLSX(sheets []Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if len(sheets) == 0 {
		sheets = []Sheet{{Name: "Sheet1"}}
	}

	used := make(map[string]bool)
	for i, sheet := range sheets {
		name := uniqueSheetName(sheetName(sheet.Name, i), used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", name, err)
		}

		for col, header := range sheet.Table.Columns {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(name, cell, header); err != nil {
				return nil, fmt.Errorf("failed to write header %q: %w", header, err)
			}
			colName, _ := excelize.ColumnNumberToName(col + 1)
			if err := f.SetColWidth(name, colName, colName, 24); err != nil {
				return nil, err
			}
		}
		for r, row := range sheet.Table.Rows {
			for col, value := range row {
				cell, err := excelize.CoordinatesToCellName(col+1, r+2)
				if err != nil {
					return nil, err
				}
				if err := f.SetCellValue(name, cell, cellValue(value)); err != nil {
					return nil, fmt.Errorf("failed to write %s: %w", cell, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValue stores numeric text as a number
func cellValue(s string) interface{} {
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	return s
}

// sheetName strips the characters Excel forbids and truncates to 31 runes
func sheetName(name string, index int) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		name = fmt.Sprintf("Sheet%d", index+1)
	}
	return truncateRunes(name, maxSheetName)
}

func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
