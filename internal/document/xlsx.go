package document

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Report"

// XLSXRenderer writes the Document's sections top to bottom on a single sheet.
type XLSXRenderer struct{}

// ContentType implements Renderer.
func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension implements Renderer.
func (XLSXRenderer) Extension() string { return "xlsx" }

// Render implements Renderer.
func (XLSXRenderer) Render(w io.Writer, doc *Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2980B9"}},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return err
	}

	sw := &sheetWriter{f: f, row: 1}
	for _, section := range doc.Sections {
		for _, text := range section.Texts {
			style := 0
			if text.Bold {
				style = bold
			}
			if err := sw.line([]string{text.Content}, style); err != nil {
				return err
			}
		}
		if section.Table != nil {
			titles := make([]string, len(section.Table.Columns))
			for i, col := range section.Table.Columns {
				titles[i] = col.Title
			}
			if err := sw.line(titles, header); err != nil {
				return err
			}
			for _, row := range section.Table.Rows {
				if err := sw.line(row, 0); err != nil {
					return err
				}
			}
		}
		sw.row++
	}

	if err := f.SetColWidth(reportSheet, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(reportSheet, "B", "E", 20); err != nil {
		return err
	}
	return f.Write(w)
}

type sheetWriter struct {
	f   *excelize.File
	row int
}

func (s *sheetWriter) line(cells []string, style int) error {
	for i, value := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, s.row)
		if err != nil {
			return err
		}
		if err := s.f.SetCellValue(reportSheet, cell, value); err != nil {
			return err
		}
		if style != 0 {
			if err := s.f.SetCellStyle(reportSheet, cell, cell, style); err != nil {
				return err
			}
		}
	}
	s.row++
	return nil
}
