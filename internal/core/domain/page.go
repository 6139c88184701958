package domain

// TextRun is a run of text on a page, positioned top-down in page points.
type TextRun struct {
	Text     string
	X        float64
	Y        float64
	Width    float64
	FontSize float64
}

// Bounds returns the rectangle the run occupies.
// Height is taken from the font size.
func (r TextRun) Bounds() Rect {
	h := r.FontSize
	if h <= 0 {
		h = 1
	}
	return Rect{X: r.X, Y: r.Y - h, Width: r.Width, Height: h}
}

// PageSize is the extent of a page in points.
type PageSize struct {
	Width  float64
	Height float64
}

// DefaultPageSize is US Letter, used when a page reports no MediaBox.
var DefaultPageSize = PageSize{Width: 612, Height: 792}
