package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"financas/internal/core"
)

const pdfTitle = "Relatório de Transações Financeiras"

// Column widths in mm, sized for an A4 portrait content area of 190mm.
var pdfColWidths = [5]float64{25, 25, 30, 40, 70}

// PDF renders the transaction set as a paginated A4 report. The table
// header is repeated on every page.
func PDF(ts []core.Transaction, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(33, 33, 33)
	pdf.CellFormat(190, 10, tr(pdfTitle), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(117, 117, 117)
	pdf.CellFormat(190, 6, tr(fmt.Sprintf("Gerado em: %s", now.Format("02/01/2006 15:04"))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	totals := core.ComputeTotals(ts)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(33, 33, 33)
	summary := []struct {
		label string
		value string
	}{
		{"Receitas:", totals.Income.BRL()},
		{"Despesas:", totals.Expense.BRL()},
		{"Saldo:", totals.Balance.BRL()},
	}
	for _, s := range summary {
		pdf.CellFormat(30, 6, tr(s.label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(50, 6, tr(s.value), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
	}
	pdf.Ln(4)

	writeTableHeader(pdf, tr)

	pdf.SetFont("Helvetica", "", 9)
	for _, t := range ts {
		// 282mm leaves room for one 7mm row above the bottom margin.
		if pdf.GetY() > 275 {
			pdf.AddPage()
			writeTableHeader(pdf, tr)
			pdf.SetFont("Helvetica", "", 9)
		}

		r := NewRow(t)
		if r.Income {
			pdf.SetFillColor(232, 245, 233)
		} else {
			pdf.SetFillColor(255, 235, 238)
		}
		pdf.SetTextColor(33, 33, 33)

		cells := [5]string{r.Date, r.Type, r.Amount, r.Category, r.Description}
		aligns := [5]string{"C", "C", "R", "L", "L"}
		for i, cell := range cells {
			ln := 0
			if i == len(cells)-1 {
				ln = 1
			}
			pdf.CellFormat(pdfColWidths[i], 7, tr(clip(pdf, cell, pdfColWidths[i])), "1", ln, aligns[i], true, 0, "")
		}
	}

	if len(ts) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(117, 117, 117)
		pdf.CellFormat(190, 7, tr("Nenhuma transação encontrada"), "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTableHeader(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	headers := [5]string{"Data", "Tipo", "Valor", "Categoria", "Descrição"}
	for i, header := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(pdfColWidths[i], 8, tr(header), "1", ln, "C", true, 0, "")
	}
}

// clip truncates text that would overflow its column.
func clip(pdf *fpdf.Fpdf, s string, width float64) string {
	const pad = 2.0
	if pdf.GetStringWidth(s) <= width-pad {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width-pad {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
