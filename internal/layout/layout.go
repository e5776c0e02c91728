// Package layout decides where printed fragments land on fixed-size pages.
//
// A Cursor tracks the vertical position on the current page. Before a
// fragment is placed the caller asks the cursor to make room for its full
// height; if it would cross the bottom margin a new page is started and the
// cursor returns to the top margin. Units are whatever the page geometry is
// expressed in: millimetres for PDF, text rows for terminals.
package layout

// Geometry is a page size and a uniform margin.
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
}

// A4 is a portrait A4 page in millimetres with 20mm margins.
var A4 = Geometry{PageWidth: 210, PageHeight: 297, Margin: 20}

// ContentWidth is the printable width between the side margins.
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - 2*g.Margin
}

// UsableHeight is the printable height between the top and bottom margins.
func (g Geometry) UsableHeight() float64 {
	return g.PageHeight - 2*g.Margin
}

// WouldOverflow reports whether a fragment of height required starting at
// cursorY would cross the bottom margin.
func WouldOverflow(cursorY, required, pageHeight, margin float64) bool {
	return cursorY+required > pageHeight-margin
}

// Cursor is the pagination state of one render: a Y position and a page
// count. Build a fresh one per document.
type Cursor struct {
	geom Geometry
	y    float64
	page int
}

// NewCursor starts at the top margin of page 1.
func NewCursor(geom Geometry) *Cursor {
	return &Cursor{geom: geom, y: geom.Margin, page: 1}
}

// Y is the current vertical position.
func (c *Cursor) Y() float64 { return c.y }

// Page is the 1-based number of the current page.
func (c *Cursor) Page() int { return c.page }

// Geometry returns the page geometry the cursor was built with.
func (c *Cursor) Geometry() Geometry { return c.geom }

// Ensure starts a new page when required does not fit below the cursor and
// reports whether it did. A fragment taller than a whole page is placed at
// the top of a fresh page; the cursor never breaks twice for it.
func (c *Cursor) Ensure(required float64) bool {
	if !WouldOverflow(c.y, required, c.geom.PageHeight, c.geom.Margin) {
		return false
	}
	if c.y == c.geom.Margin {
		return false
	}
	c.NewPage()
	return true
}

// NewPage moves the cursor to the top of the next page.
func (c *Cursor) NewPage() {
	c.page++
	c.y = c.geom.Margin
}

// Advance moves the cursor down by dy.
func (c *Cursor) Advance(dy float64) {
	if dy > 0 {
		c.y += dy
	}
}
