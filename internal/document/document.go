// Package document composes report documents from aggregated participation data
// and renders them to PDF or XLSX.
package document

import (
	"fmt"
	"strings"
)

// SectionKind identifies the role a section plays in a report.
type SectionKind string

const (
	SectionTitle   SectionKind = "title"
	SectionSummary SectionKind = "summary"
	SectionDetail  SectionKind = "detail"
)

// TableStyle selects how a renderer paints a table.
type TableStyle string

const (
	TableGrid    TableStyle = "grid"
	TableStriped TableStyle = "striped"
)

// Position is a vertical location on a page, in layout units from the top edge.
type Position struct {
	Page int
	Y    float64
}

// Text is a single positioned line. Y is the text baseline.
type Text struct {
	Page    int
	Y       float64
	Size    float64
	Bold    bool
	Content string
}

// Column is a fixed-width table column.
type Column struct {
	Title string
	Width float64
}

// Fragment is the part of a table that fits on one page. Every fragment starts with
// a repeated header row.
type Fragment struct {
	Page     int
	Y        float64
	FirstRow int
	RowCount int
}

// Table is a fixed-column table with its page placement.
type Table struct {
	Columns      []Column
	Rows         [][]string
	Style        TableStyle
	FontSize     float64
	HeaderHeight float64
	RowHeight    float64
	Placeholder  bool
	Fragments    []Fragment
}

// Section is one block of the report.
type Section struct {
	Kind    SectionKind
	Heading string
	Texts   []Text
	Table   *Table
	Start   Position
	End     Position
}

// Document is the composed, backend-independent report.
type Document struct {
	Title    string
	Year     int
	Branch   string
	Layout   Layout
	Pages    int
	Sections []Section
}

// FileName returns the export file name for the given extension.
func (d *Document) FileName(ext string) string {
	branch := strings.TrimSpace(d.Branch)
	if branch == "" {
		branch = "All"
	}
	branch = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':', '"':
			return '_'
		}
		return r
	}, branch)
	return fmt.Sprintf("Activity_Report_%d_%s.%s", d.Year, branch, strings.TrimPrefix(ext, "."))
}

// DetailSections returns the per-activity sections in document order.
func (d *Document) DetailSections() []Section {
	out := make([]Section, 0, len(d.Sections))
	for _, s := range d.Sections {
		if s.Kind == SectionDetail {
			out = append(out, s)
		}
	}
	return out
}
