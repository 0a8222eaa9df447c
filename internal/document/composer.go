package document

import (
	"fmt"
	"slices"
	"strconv"

	"example.com/sahakari/internal/domain"
)

const (
	detailBanner = "Participants Detail (Grouped by Activity)"
	dateLayout   = "2006-01-02"
	emptyCell    = "-"
)

// Composer turns a summary and its clusters into a Document. It tracks the
// vertical cursor itself so placement does not depend on a rendering backend.
type Composer struct {
	layout Layout
}

// NewComposer validates layout and returns a Composer for it.
func NewComposer(layout Layout) (*Composer, error) {
	if err := layout.validate(); err != nil {
		return nil, err
	}
	return &Composer{layout: layout}, nil
}

// Compose lays out a report with the default A4 layout.
func Compose(summary domain.ReportSummary, clusters []domain.ActivityCluster) *Document {
	c := &Composer{layout: DefaultLayout()}
	return c.Compose(summary, clusters)
}

// Compose produces the title section, the summary table section and one detail
// section per cluster, in the clusters' order. Each section starts SectionGap
// below the end of the previous one.
func (c *Composer) Compose(summary domain.ReportSummary, clusters []domain.ActivityCluster) *Document {
	cur := &cursor{layout: c.layout, page: 1, y: c.layout.MarginTop}
	doc := &Document{
		Title:  fmt.Sprintf("Activity Report Summary - %d", summary.Year),
		Year:   summary.Year,
		Branch: summary.Branch,
		Layout: c.layout,
	}

	doc.Sections = append(doc.Sections, c.titleSection(cur, doc.Title, summary))
	cur.gap()
	doc.Sections = append(doc.Sections, c.summarySection(cur, summary))

	for i, cluster := range clusters {
		cur.gap()
		doc.Sections = append(doc.Sections, c.detailSection(cur, cluster, i == 0))
	}

	doc.Pages = cur.page
	return doc
}

func (c *Composer) titleSection(cur *cursor, title string, summary domain.ReportSummary) Section {
	l := c.layout
	start := cur.position()
	lines := []Text{
		{Size: l.TitleSize, Bold: true, Content: title},
		{Size: l.TextSize, Content: "Branch: " + summary.Branch},
		{Size: l.TextSize, Content: "Total Activities: " + strconv.Itoa(summary.TotalActivities)},
		{Size: l.TextSize, Content: "Total Participants: " + strconv.Itoa(summary.TotalParticipants)},
	}
	for i := range lines {
		if i > 0 {
			step := l.LineHeight
			if i == 1 {
				step += l.LineHeight / 4
			}
			cur.reserve(step)
		}
		lines[i].Page, lines[i].Y = cur.page, cur.y
	}
	return Section{Kind: SectionTitle, Heading: title, Texts: lines, Start: start, End: cur.position()}
}

func (c *Composer) summarySection(cur *cursor, summary domain.ReportSummary) Section {
	l := c.layout
	table := &Table{
		Columns:      l.SummaryColumns,
		Style:        TableGrid,
		FontSize:     l.SummaryRowSize,
		HeaderHeight: l.HeaderHeight,
		RowHeight:    l.SummaryRowH,
	}
	for _, row := range summary.Breakdown {
		table.Rows = append(table.Rows, []string{row.ActivityName, strconv.Itoa(row.Participants)})
	}
	if len(table.Rows) == 0 {
		table.Rows = [][]string{{l.EmptySummary, ""}}
		table.Placeholder = true
	}

	start := cur.position()
	cur.placeTable(table)
	return Section{Kind: SectionSummary, Heading: "Activity Breakdown", Table: table, Start: start, End: cur.position()}
}

func (c *Composer) detailSection(cur *cursor, cluster domain.ActivityCluster, first bool) Section {
	l := c.layout
	heading := "Activity: " + cluster.ActivityName
	table := &Table{
		Columns:      l.DetailColumns,
		Style:        TableStriped,
		FontSize:     l.DetailRowSize,
		HeaderHeight: l.HeaderHeight,
		RowHeight:    l.DetailRowH,
	}
	for _, rec := range byDate(cluster.Records) {
		table.Rows = append(table.Rows, detailRow(rec))
	}
	if len(table.Rows) == 0 {
		table.Rows = [][]string{{l.PlaceholderText, "", "", "", ""}}
		table.Placeholder = true
	}

	var texts []Text
	keep := l.HeadingGap + l.HeaderHeight + l.DetailRowH
	if first {
		cur.ensure(l.SectionGap + keep)
	} else {
		cur.ensure(keep)
	}
	start := cur.position()
	if first {
		texts = append(texts, Text{Page: cur.page, Y: cur.y, Size: l.BannerSize, Bold: true, Content: detailBanner})
		cur.reserve(l.SectionGap)
	}
	texts = append(texts, Text{Page: cur.page, Y: cur.y, Size: l.HeadingSize, Bold: true, Content: heading})
	cur.reserve(l.HeadingGap)
	cur.placeTable(table)

	return Section{Kind: SectionDetail, Heading: cluster.ActivityName, Texts: texts, Table: table, Start: start, End: cur.position()}
}

// byDate orders a cluster's records by participation date for display. The sort is
// stable and undated records go last.
func byDate(records []domain.ParticipationRecord) []domain.ParticipationRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b domain.ParticipationRecord) int {
		switch {
		case !a.HasDate() && !b.HasDate():
			return 0
		case !a.HasDate():
			return 1
		case !b.HasDate():
			return -1
		}
		return a.Date.Compare(*b.Date)
	})
	return out
}

func detailRow(rec domain.ParticipationRecord) []string {
	date := emptyCell
	if rec.HasDate() {
		date = rec.Date.UTC().Format(dateLayout)
	}
	return []string{
		orDash(rec.FullName),
		orDash(rec.MembershipNumber),
		orDash(rec.RecordedBy),
		date,
		orDash(rec.PhoneNumber),
	}
}

func orDash(s string) string {
	if s == "" {
		return emptyCell
	}
	return s
}
