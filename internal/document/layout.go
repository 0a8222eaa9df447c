package document

import "errors"

// ErrLayoutTooSmall is returned when a page cannot hold a heading, a table header and one row.
var ErrLayoutTooSmall = errors.New("layout leaves no room for a table row")

// Layout holds page geometry in millimetres.
type Layout struct {
	PageWidth       float64
	PageHeight      float64
	MarginTop       float64
	MarginBottom    float64
	MarginLeft      float64
	SectionGap      float64
	TitleSize       float64
	TextSize        float64
	LineHeight      float64
	BannerSize      float64
	HeadingSize     float64
	HeadingGap      float64
	HeaderHeight    float64
	SummaryRowSize  float64
	SummaryRowH     float64
	DetailRowSize   float64
	DetailRowH      float64
	SummaryColumns  []Column
	DetailColumns   []Column
	PlaceholderText string
	EmptySummary    string
}

// DefaultLayout is an A4 portrait page.
func DefaultLayout() Layout {
	return Layout{
		PageWidth:      210,
		PageHeight:     297,
		MarginTop:      20,
		MarginBottom:   15,
		MarginLeft:     14,
		SectionGap:     10,
		TitleSize:      18,
		TextSize:       12,
		LineHeight:     8,
		BannerSize:     16,
		HeadingSize:    14,
		HeadingGap:     6,
		HeaderHeight:   8,
		SummaryRowSize: 10,
		SummaryRowH:    8,
		DetailRowSize:  8,
		DetailRowH:     6,
		SummaryColumns: []Column{
			{Title: "Activity Name", Width: 130},
			{Title: "Participants", Width: 52},
		},
		DetailColumns: []Column{
			{Title: "Full Name", Width: 50},
			{Title: "Membership No.", Width: 32},
			{Title: "By Whom", Width: 40},
			{Title: "Date", Width: 28},
			{Title: "Phone", Width: 32},
		},
		PlaceholderText: "No participants",
		EmptySummary:    "No data available",
	}
}

func (l Layout) bottom() float64 {
	return l.PageHeight - l.MarginBottom
}

func (l Layout) validate() error {
	usable := l.bottom() - l.MarginTop
	need := l.BannerSize + l.HeadingGap + l.HeaderHeight + max(l.SummaryRowH, l.DetailRowH) + l.SectionGap
	if usable <= 0 || usable < need || l.SummaryRowH <= 0 || l.DetailRowH <= 0 {
		return ErrLayoutTooSmall
	}
	if len(l.SummaryColumns) != 2 || len(l.DetailColumns) != 5 {
		return errors.New("layout must define 2 summary columns and 5 detail columns")
	}
	return nil
}
