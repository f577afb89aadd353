package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	// 30pt expressed in millimetres.
	pageMargin = 10.58
	fontFamily = "Helvetica"
)

// PDFRenderer lays the report out on A4 pages.
type PDFRenderer struct {
	// FontSize is the body text size in points.
	FontSize float64
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{FontSize: 11}
}

func (*PDFRenderer) Extension() string { return "pdf" }

func (p *PDFRenderer) Render(ctx context.Context, r Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin+10)
	pdf.SetTitle(r.Title(), true)
	pdf.SetCreator("daybook", true)
	pdf.SetCreationDate(r.GeneratedAt)

	// The core fonts are cp1252; translate so dashes and accents survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, _ := pdf.GetPageSize()

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(fontFamily, "B", 18)
		pdf.CellFormat(0, 10, tr(r.Title()), "", 1, "L", false, 0, "")
		pdf.Ln(4)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-(pageMargin + 5))
		pdf.SetFont(fontFamily, "", 9)
		pdf.CellFormat(0, 5, tr(r.Footer()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	if len(r.Entries) == 0 {
		pdf.SetFont(fontFamily, "I", p.FontSize)
		pdf.CellFormat(0, 6, "No entries in this range.", "", 1, "L", false, 0, "")
	}

	for i, item := range r.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pdf.SetFont(fontFamily, "B", p.FontSize+1)
		pdf.CellFormat(0, 7, tr(item.Date.Format(entryDateLayout)), "", 1, "L", false, 0, "")

		pdf.SetFont(fontFamily, "", p.FontSize)
		pdf.CellFormat(0, 6, tr("Mood: "+item.Mood), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr("Category: "+item.Category), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		pdf.MultiCell(0, 5, tr(strings.TrimSpace(item.Content)), "", "L", false)

		if i < len(r.Entries)-1 {
			pdf.Ln(3)
			y := pdf.GetY()
			pdf.SetDrawColor(200, 200, 200)
			pdf.Line(pageMargin, y, pageWidth-pageMargin, y)
			pdf.Ln(5)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
