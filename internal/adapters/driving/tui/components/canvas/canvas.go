// Package canvas renders a page of the loaded document as a grid of
// terminal cells and translates the cursor into viewport coordinates.
//
// Each cell stands for CellWidth x CellHeight points of the viewport.
// The page container scrolls under a fixed window, so its origin in the
// viewport moves with the scroll offset.
package canvas

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/marginalia/internal/core/domain"
)

// Viewport points covered by one terminal cell.
const (
	CellWidth  = 6.0
	CellHeight = 12.0
)

// signatureSize is the extent of a placed signature in page points.
var signatureSize = domain.PageSize{Width: 150, Height: 50}

// Cell addresses a cell of the page grid.
type Cell struct {
	Col int
	Row int
}

type paint int

const (
	paintPage paint = iota
	paintHighlight
	paintUnderline
	paintComment
	paintSignature
	paintMarking
	paintCursor
)

type cell struct {
	ch    rune
	paint paint
	color string
}

// Canvas is the page view component.
type Canvas struct {
	styles *styles.Styles

	page        int
	size        domain.PageSize
	runs        []domain.TextRun
	annotations []domain.Annotation
	zoom        float64

	cursor Cell
	mark   *Cell
	scroll Cell

	width  int
	height int
}

// New creates an empty canvas.
func New(s *styles.Styles) *Canvas {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Canvas{
		styles: s,
		size:   domain.DefaultPageSize,
		zoom:   domain.DefaultZoom,
		width:  80,
		height: 20,
	}
}

// SetSize sets the window size in cells.
func (c *Canvas) SetSize(width, height int) {
	c.width = max(width, 1)
	c.height = max(height, 1)
	c.follow()
}

// Size returns the window size in cells.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// SetPage replaces the page content. Moving to another page resets the
// cursor and any pending selection.
func (c *Canvas) SetPage(page int, size domain.PageSize, runs []domain.TextRun, annotations []domain.Annotation) {
	if page != c.page {
		c.cursor = Cell{}
		c.scroll = Cell{}
		c.mark = nil
	}
	c.page = page
	if size.Width <= 0 || size.Height <= 0 {
		size = domain.DefaultPageSize
	}
	c.size = size
	c.runs = runs
	c.annotations = annotations
	c.clamp()
	c.follow()
}

// Page returns the page shown.
func (c *Canvas) Page() int {
	return c.page
}

// Annotations returns the annotations drawn on the page.
func (c *Canvas) Annotations() []domain.Annotation {
	return c.annotations
}

// SetZoom changes the zoom factor, keeping the cursor on the same spot of
// the page.
func (c *Canvas) SetZoom(z float64) {
	if z <= 0 || z == c.zoom {
		return
	}
	at := c.pagePoint(c.cursor)
	c.zoom = z
	c.cursor = c.CellAt(at)
	c.mark = nil
	c.clamp()
	c.follow()
}

// Zoom returns the zoom factor the page is drawn at.
func (c *Canvas) Zoom() float64 {
	return c.zoom
}

// Grid returns the page extent in cells at the current zoom.
func (c *Canvas) Grid() (cols, rows int) {
	cols = int(math.Ceil(c.size.Width * c.zoom / CellWidth))
	rows = int(math.Ceil(c.size.Height * c.zoom / CellHeight))
	return max(cols, 1), max(rows, 1)
}

// Move shifts the cursor, staying on the page.
func (c *Canvas) Move(dCol, dRow int) {
	c.cursor.Col += dCol
	c.cursor.Row += dRow
	c.clamp()
	c.follow()
}

// MoveTo places the cursor on cell.
func (c *Canvas) MoveTo(cell Cell) {
	c.cursor = cell
	c.clamp()
	c.follow()
}

// Cursor returns the cursor cell.
func (c *Canvas) Cursor() Cell {
	return c.cursor
}

// Origin returns the top-left of the page container in the viewport frame.
func (c *Canvas) Origin() domain.Point {
	return domain.Point{X: -float64(c.scroll.Col) * CellWidth, Y: -float64(c.scroll.Row) * CellHeight}
}

// Click returns the viewport position of the cursor and the page origin.
func (c *Canvas) Click() (click, origin domain.Point) {
	return c.viewportPoint(c.cursor), c.Origin()
}

// CellAt returns the cell containing a page position.
func (c *Canvas) CellAt(p domain.Point) Cell {
	return Cell{
		Col: int(math.Floor(p.X * c.zoom / CellWidth)),
		Row: int(math.Floor(p.Y * c.zoom / CellHeight)),
	}
}

// StartMark anchors a range selection at the cursor.
func (c *Canvas) StartMark() {
	m := c.cursor
	c.mark = &m
}

// CancelMark drops the pending range selection.
func (c *Canvas) CancelMark() {
	c.mark = nil
}

// Marking reports whether a range selection is pending.
func (c *Canvas) Marking() bool {
	return c.mark != nil
}

// Selection returns the text between the mark and the cursor with its
// bounding rectangle in the viewport frame. Text runs touching the marked
// cells are selected whole. Without text the selection is empty.
func (c *Canvas) Selection() *domain.Selection {
	if c.mark == nil {
		return &domain.Selection{}
	}
	from, to := c.markedCells()
	area := domain.Rect{
		X:      float64(from.Col) * CellWidth / c.zoom,
		Y:      float64(from.Row) * CellHeight / c.zoom,
		Width:  float64(to.Col-from.Col+1) * CellWidth / c.zoom,
		Height: float64(to.Row-from.Row+1) * CellHeight / c.zoom,
	}

	var parts []string
	var bounds *domain.Rect
	for _, r := range c.runs {
		b := r.Bounds()
		if !intersects(area, b) {
			continue
		}
		parts = append(parts, r.Text)
		bounds = union(bounds, b)
	}
	if bounds == nil {
		return &domain.Selection{}
	}

	origin := c.Origin()
	topLeft := bounds.Origin().Scale(c.zoom).Add(origin)
	return &domain.Selection{
		Text: strings.Join(parts, " "),
		Rect: domain.Rect{
			X:      topLeft.X,
			Y:      topLeft.Y,
			Width:  bounds.Width * c.zoom,
			Height: bounds.Height * c.zoom,
		},
	}
}

// View renders the visible part of the page.
func (c *Canvas) View() string {
	grid := c.paint()
	lines := make([]string, 0, len(grid))
	for _, row := range grid {
		lines = append(lines, c.renderRow(row))
	}
	return strings.Join(lines, "\n")
}

func (c *Canvas) paint() [][]cell {
	cols, rows := c.Grid()
	w := min(c.width, cols-c.scroll.Col)
	h := min(c.height, rows-c.scroll.Row)

	grid := make([][]cell, max(h, 0))
	for y := range grid {
		grid[y] = make([]cell, max(w, 0))
		for x := range grid[y] {
			grid[y][x] = cell{ch: ' '}
		}
	}
	set := func(abs Cell, fn func(*cell)) {
		x, y := abs.Col-c.scroll.Col, abs.Row-c.scroll.Row
		if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) {
			fn(&grid[y][x])
		}
	}

	for _, r := range c.runs {
		c.paintRun(r, set)
	}
	for _, a := range c.annotations {
		c.paintAnnotation(a, set)
	}
	if c.mark != nil {
		from, to := c.markedCells()
		for row := from.Row; row <= to.Row; row++ {
			for col := from.Col; col <= to.Col; col++ {
				set(Cell{Col: col, Row: row}, func(x *cell) { x.paint = paintMarking })
			}
		}
	}
	set(c.cursor, func(x *cell) { x.paint = paintCursor })
	return grid
}

func (c *Canvas) paintRun(r domain.TextRun, set func(Cell, func(*cell))) {
	text := []rune(r.Text)
	if len(text) == 0 {
		return
	}
	b := r.Bounds()
	row := c.CellAt(domain.Point{Y: b.Y + b.Height/2}).Row
	advance := r.Width / float64(len(text))
	for i, ch := range text {
		col := c.CellAt(domain.Point{X: r.X + float64(i)*advance}).Col
		set(Cell{Col: col, Row: row}, func(x *cell) { x.ch = ch })
	}
}

func (c *Canvas) paintAnnotation(a domain.Annotation, set func(Cell, func(*cell))) {
	switch a.Type {
	case domain.AnnotationHighlight, domain.AnnotationUnderline:
		if a.BoundingRect == nil {
			return
		}
		p := paintHighlight
		if a.Type == domain.AnnotationUnderline {
			p = paintUnderline
		}
		c.fill(*a.BoundingRect, set, func(x *cell) {
			x.paint = p
			x.color = a.Color
		})

	case domain.AnnotationComment:
		set(c.CellAt(a.Position), func(x *cell) {
			x.ch = '¶'
			x.paint = paintComment
		})

	case domain.AnnotationSignature:
		box := domain.Rect{X: a.Position.X, Y: a.Position.Y, Width: signatureSize.Width, Height: signatureSize.Height}
		c.fill(box, set, func(x *cell) { x.paint = paintSignature })
		start := c.CellAt(a.Position)
		for i, ch := range "~signed~" {
			set(Cell{Col: start.Col + i, Row: start.Row}, func(x *cell) { x.ch = ch })
		}
	}
}

// fill applies fn to every cell overlapping a page rectangle.
func (c *Canvas) fill(r domain.Rect, set func(Cell, func(*cell)), fn func(*cell)) {
	from := c.CellAt(r.Origin())
	to := c.CellAt(domain.Point{X: r.X + r.Width, Y: r.Y + r.Height})
	if r.Width > 0 && to.Col > from.Col && math.Mod((r.X+r.Width)*c.zoom, CellWidth) == 0 {
		to.Col--
	}
	if r.Height > 0 && to.Row > from.Row && math.Mod((r.Y+r.Height)*c.zoom, CellHeight) == 0 {
		to.Row--
	}
	for row := from.Row; row <= to.Row; row++ {
		for col := from.Col; col <= to.Col; col++ {
			set(Cell{Col: col, Row: row}, fn)
		}
	}
}

func (c *Canvas) renderRow(row []cell) string {
	var b strings.Builder
	var run []rune
	var current cell
	flush := func() {
		if len(run) > 0 {
			b.WriteString(c.style(current).Render(string(run)))
			run = run[:0]
		}
	}
	for i, x := range row {
		if i == 0 || x.paint != current.paint || x.color != current.color {
			flush()
			current = x
		}
		run = append(run, x.ch)
	}
	flush()
	return b.String()
}

func (c *Canvas) style(x cell) lipgloss.Style {
	switch x.paint {
	case paintHighlight:
		return c.styles.Highlight(colorOr(x.color))
	case paintUnderline:
		return c.styles.Underline(colorOr(x.color))
	case paintComment:
		return c.styles.Comment
	case paintSignature:
		return c.styles.Signature
	case paintMarking:
		return c.styles.Marking
	case paintCursor:
		return c.styles.Cursor
	default:
		return c.styles.Page
	}
}

func (c *Canvas) markedCells() (from, to Cell) {
	from = Cell{Col: min(c.mark.Col, c.cursor.Col), Row: min(c.mark.Row, c.cursor.Row)}
	to = Cell{Col: max(c.mark.Col, c.cursor.Col), Row: max(c.mark.Row, c.cursor.Row)}
	return from, to
}

func (c *Canvas) viewportPoint(abs Cell) domain.Point {
	return domain.Point{
		X: float64(abs.Col-c.scroll.Col) * CellWidth,
		Y: float64(abs.Row-c.scroll.Row) * CellHeight,
	}
}

func (c *Canvas) pagePoint(abs Cell) domain.Point {
	return domain.Point{X: float64(abs.Col) * CellWidth / c.zoom, Y: float64(abs.Row) * CellHeight / c.zoom}
}

func (c *Canvas) clamp() {
	cols, rows := c.Grid()
	c.cursor.Col = min(max(c.cursor.Col, 0), cols-1)
	c.cursor.Row = min(max(c.cursor.Row, 0), rows-1)
}

// follow scrolls so the cursor stays inside the window.
func (c *Canvas) follow() {
	if c.cursor.Col < c.scroll.Col {
		c.scroll.Col = c.cursor.Col
	}
	if c.cursor.Col >= c.scroll.Col+c.width {
		c.scroll.Col = c.cursor.Col - c.width + 1
	}
	if c.cursor.Row < c.scroll.Row {
		c.scroll.Row = c.cursor.Row
	}
	if c.cursor.Row >= c.scroll.Row+c.height {
		c.scroll.Row = c.cursor.Row - c.height + 1
	}
}

func intersects(a, b domain.Rect) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width && a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

func union(acc *domain.Rect, r domain.Rect) *domain.Rect {
	if acc == nil {
		return &r
	}
	x0 := math.Min(acc.X, r.X)
	y0 := math.Min(acc.Y, r.Y)
	x1 := math.Max(acc.X+acc.Width, r.X+r.Width)
	y1 := math.Max(acc.Y+acc.Height, r.Y+r.Height)
	return &domain.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func colorOr(color string) string {
	if color == "" {
		return domain.DefaultColor
	}
	return color
}
