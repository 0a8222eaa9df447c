package document

import (
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

var (
	headerFill  = [3]int{41, 128, 185}
	gridHeader  = [3]int{224, 224, 224}
	stripedFill = [3]int{245, 245, 245}
)

// PDFRenderer draws a Document with fpdf at the positions chosen by the Composer.
type PDFRenderer struct{}

// ContentType implements Renderer.
func (PDFRenderer) ContentType() string { return "application/pdf" }

// Extension implements Renderer.
func (PDFRenderer) Extension() string { return "pdf" }

// Render implements Renderer.
func (PDFRenderer) Render(w io.Writer, doc *Document) error {
	l := doc.Layout
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: l.PageWidth, Ht: l.PageHeight},
	})
	pdf.SetTitle(doc.Title, true)
	pdf.SetMargins(l.MarginLeft, l.MarginTop, l.MarginLeft)
	// Pagination is decided by the Composer.
	pdf.SetAutoPageBreak(false, 0)

	// TODO: embed a Devanagari-capable TTF so names outside cp1252 are not replaced.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	p := &pdfPainter{pdf: pdf, tr: tr, left: l.MarginLeft}

	for _, section := range doc.Sections {
		for _, text := range section.Texts {
			p.text(text)
		}
		if section.Table != nil {
			p.table(section.Table)
		}
	}
	for p.page < doc.Pages {
		p.goTo(p.page + 1)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

type pdfPainter struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	left float64
	page int
}

func (p *pdfPainter) goTo(page int) {
	for p.page < page {
		p.pdf.AddPage()
		p.page++
	}
}

func (p *pdfPainter) text(t Text) {
	p.goTo(t.Page)
	style := ""
	if t.Bold {
		style = "B"
	}
	p.pdf.SetFont("Helvetica", style, t.Size)
	p.pdf.SetTextColor(0, 0, 0)
	p.pdf.Text(p.left, t.Y, p.tr(t.Content))
}

func (p *pdfPainter) table(t *Table) {
	for _, frag := range t.Fragments {
		p.goTo(frag.Page)
		y := frag.Y
		p.header(t, y)
		y += t.HeaderHeight

		p.pdf.SetFont("Helvetica", "", t.FontSize)
		p.pdf.SetTextColor(0, 0, 0)
		for i := frag.FirstRow; i < frag.FirstRow+frag.RowCount; i++ {
			fill := false
			border := "1"
			if t.Style == TableStriped {
				border = "B"
				if (i-frag.FirstRow)%2 == 1 {
					fill = true
					p.pdf.SetFillColor(stripedFill[0], stripedFill[1], stripedFill[2])
				}
			}
			p.row(t, t.Rows[i], y, t.RowHeight, border, fill, t.Placeholder)
			y += t.RowHeight
		}
	}
}

func (p *pdfPainter) header(t *Table, y float64) {
	p.pdf.SetFont("Helvetica", "B", t.FontSize)
	if t.Style == TableStriped {
		p.pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
		p.pdf.SetTextColor(255, 255, 255)
	} else {
		p.pdf.SetFillColor(gridHeader[0], gridHeader[1], gridHeader[2])
		p.pdf.SetTextColor(0, 0, 0)
	}
	titles := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		titles[i] = col.Title
	}
	p.row(t, titles, y, t.HeaderHeight, "1", true, false)
}

func (p *pdfPainter) row(t *Table, cells []string, y, h float64, border string, fill, span bool) {
	p.pdf.SetXY(p.left, y)
	if span {
		width := 0.0
		for _, col := range t.Columns {
			width += col.Width
		}
		p.pdf.CellFormat(width, h, p.fit(cells[0], width), border, 0, "C", fill, 0, "")
		return
	}
	for i, col := range t.Columns {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		p.pdf.CellFormat(col.Width, h, p.fit(cell, col.Width), border, 0, "L", fill, 0, "")
	}
}

// fit truncates s so it stays inside a cell of width w.
func (p *pdfPainter) fit(s string, w float64) string {
	s = p.tr(s)
	limit := w - 2*p.pdf.GetCellMargin()
	if p.pdf.GetStringWidth(s) <= limit {
		return s
	}
	const ellipsis = "..."
	for len(s) > 0 && p.pdf.GetStringWidth(s+ellipsis) > limit {
		s = strings.TrimRight(s[:len(s)-1], " ")
	}
	return s + ellipsis
}
