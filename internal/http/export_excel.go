package httpapi

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/sqall01/alertR/internal/dashboard"
)

// GenerateWorkbook 每张表一个工作表, 第一行为表头
func GenerateWorkbook(tables []dashboard.Table) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo 之前不能 Close

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#C9D8EA"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	styles, err := classStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, t := range tables {
		if err := writeSheet(f, t, headerStyle, styles); err != nil {
			f.Close()
			return nil, err
		}
		if i == 0 {
			index, err := f.GetSheetIndex(t.Title)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to get sheet index: %w", err)
			}
			f.SetActiveSheet(index)
		}
	}
	if len(tables) > 0 {
		// 删除默认的 Sheet1
		if err := f.DeleteSheet("Sheet1"); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to delete default sheet: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

// classStyles 单元格状态对应的底色, 与网页 CSS 一致
func classStyles(f *excelize.File) (map[dashboard.CellClass]int, error) {
	colors := map[dashboard.CellClass]string{
		dashboard.ClassNormal:    "#9AE69A",
		dashboard.ClassFail:      "#F07575",
		dashboard.ClassTriggered: "#FFD966",
		dashboard.ClassError:     "#D99AD9",
	}
	out := make(map[dashboard.CellClass]int, len(colors))
	for class, color := range colors {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create style for %s: %w", class, err)
		}
		out[class] = id
	}
	return out, nil
}

func writeSheet(f *excelize.File, t dashboard.Table, headerStyle int, styles map[dashboard.CellClass]int) error {
	sheet := t.Title
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	widths := make([]int, len(t.Columns))
	for col, header := range t.Columns {
		widths[col] = utf8.RuneCountInString(header)
		if err := setCellValue(f, sheet, col+1, 1, header); err != nil {
			return fmt.Errorf("failed to set header cell: %w", err)
		}
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for rowIdx, r := range t.Rows {
		row := rowIdx + 2 // 第1行是表头
		for col, c := range r {
			if col < len(widths) {
				widths[col] = max(widths[col], utf8.RuneCountInString(c.Text))
			}
			if c.Text == "" {
				continue
			}
			if err := setCellValue(f, sheet, col+1, row, c.Text); err != nil {
				return fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, col+1, err)
			}
			if style, ok := styles[c.Class]; ok {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
					return fmt.Errorf("failed to set cell style: %w", err)
				}
			}
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, float64(min(w+2, 60))); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// 冻结表头
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

// setCellValue 设置单元格值
func setCellValue(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
