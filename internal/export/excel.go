package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"financas/internal/core"
)

const excelSheet = "Transações"

var excelHeaders = []string{"Data", "Tipo", "Valor", "Categoria", "Descrição"}

var excelColWidths = []float64{15, 15, 15, 20, 40}

// Excel renders the transaction set as an .xlsx workbook with a styled
// table and an income/expense/balance footer.
func Excel(ts []core.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", excelSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#2196F3"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("excel header style: %w", err)
	}
	for i, header := range excelHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(excelSheet, cell, header)
	}
	f.SetCellStyle(excelSheet, "A1", "E1", headerStyle)

	incomeStyle, err := rowStyle(f, "#E8F5E9", false)
	if err != nil {
		return nil, err
	}
	expenseStyle, err := rowStyle(f, "#FFEBEE", false)
	if err != nil {
		return nil, err
	}
	incomeAmountStyle, err := rowStyle(f, "#E8F5E9", true)
	if err != nil {
		return nil, err
	}
	expenseAmountStyle, err := rowStyle(f, "#FFEBEE", true)
	if err != nil {
		return nil, err
	}

	row := 2
	for _, t := range ts {
		r := NewRow(t)
		f.SetCellValue(excelSheet, fmt.Sprintf("A%d", row), r.Date)
		f.SetCellValue(excelSheet, fmt.Sprintf("B%d", row), r.Type)
		f.SetCellValue(excelSheet, fmt.Sprintf("C%d", row), r.Amount)
		f.SetCellValue(excelSheet, fmt.Sprintf("D%d", row), r.Category)
		f.SetCellValue(excelSheet, fmt.Sprintf("E%d", row), r.Description)

		style, amountStyle := expenseStyle, expenseAmountStyle
		if r.Income {
			style, amountStyle = incomeStyle, incomeAmountStyle
		}
		f.SetCellStyle(excelSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), style)
		f.SetCellStyle(excelSheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), amountStyle)
		f.SetCellStyle(excelSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("E%d", row), style)
		row++
	}

	totals := core.ComputeTotals(ts)
	summaryStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("excel summary style: %w", err)
	}

	row++
	summary := []struct {
		label string
		value string
	}{
		{"Receitas:", totals.Income.BRL()},
		{"Despesas:", totals.Expense.BRL()},
		{"Saldo:", totals.Balance.BRL()},
	}
	for _, s := range summary {
		f.SetCellValue(excelSheet, fmt.Sprintf("B%d", row), s.label)
		f.SetCellValue(excelSheet, fmt.Sprintf("C%d", row), s.value)
		f.SetCellStyle(excelSheet, fmt.Sprintf("B%d", row), fmt.Sprintf("C%d", row), summaryStyle)
		row++
	}

	for i, width := range excelColWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(excelSheet, col, col, width)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func rowStyle(f *excelize.File, fill string, amount bool) (int, error) {
	align := &excelize.Alignment{Vertical: "center"}
	if amount {
		align.Horizontal = "right"
	}
	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		Alignment: align,
		Border:    thinBorders(),
	})
	if err != nil {
		return 0, fmt.Errorf("excel row style: %w", err)
	}
	return style, nil
}

func thinBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "#BDBDBD", Style: 1},
		{Type: "right", Color: "#BDBDBD", Style: 1},
		{Type: "top", Color: "#BDBDBD", Style: 1},
		{Type: "bottom", Color: "#BDBDBD", Style: 1},
	}
}
