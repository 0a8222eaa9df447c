package document

// cursor is the running vertical position across sections.
type cursor struct {
	layout Layout
	page   int
	y      float64
}

func (c *cursor) position() Position {
	return Position{Page: c.page, Y: c.y}
}

func (c *cursor) newPage() {
	c.page++
	c.y = c.layout.MarginTop
}

// ensure starts a new page unless h more units fit on the current one.
func (c *cursor) ensure(h float64) {
	if c.y+h > c.layout.bottom() {
		c.newPage()
	}
}

// reserve moves the cursor down by h, breaking the page first when needed.
func (c *cursor) reserve(h float64) {
	c.ensure(h)
	c.y += h
}

// gap applies the inter-section margin. A gap that would cross the bottom margin
// becomes a page break instead.
func (c *cursor) gap() {
	if c.y+c.layout.SectionGap > c.layout.bottom() {
		c.newPage()
		return
	}
	c.y += c.layout.SectionGap
}

// placeTable splits t into per-page fragments, repeating the header on each page.
// t must have at least one row.
func (c *cursor) placeTable(t *Table) {
	row := 0
	for row < len(t.Rows) {
		c.ensure(t.HeaderHeight + t.RowHeight)
		frag := Fragment{Page: c.page, Y: c.y, FirstRow: row}
		c.y += t.HeaderHeight
		for row < len(t.Rows) && c.y+t.RowHeight <= c.layout.bottom() {
			c.y += t.RowHeight
			row++
			frag.RowCount++
		}
		t.Fragments = append(t.Fragments, frag)
		if row < len(t.Rows) {
			c.newPage()
		}
	}
}
