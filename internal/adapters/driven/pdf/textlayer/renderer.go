// Package textlayer reads the page structure and positioned text of a PDF
// using github.com/ledongthuc/pdf. It is the rendering collaborator: the TUI
// draws pages from the text runs it returns.
package textlayer

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

// Glyph metrics used when the font reports no widths.
const (
	averageAdvance   = 0.5
	fallbackFontSize = 10.0
)

// errNoPages is returned for documents without a single page.
var errNoPages = errors.New("document has no pages")

// Renderer opens PDF documents for display.
type Renderer struct{}

// NewRenderer creates a new text layer renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Open parses data. The reader panics on some malformed input; that is
// reported as an error.
func (r *Renderer) Open(data []byte) (doc driven.RenderedDocument, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("malformed PDF: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	if reader.NumPage() < 1 {
		return nil, errNoPages
	}

	return &Document{
		reader: reader,
		sizes:  make(map[int]domain.PageSize),
		runs:   make(map[int][]domain.TextRun),
	}, nil
}

// Document is an opened PDF. Page sizes and text layers are computed on
// first use and cached.
type Document struct {
	reader *pdf.Reader

	mu    sync.Mutex
	sizes map[int]domain.PageSize
	runs  map[int][]domain.TextRun
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// PageSize returns the MediaBox extent of a 1-based page.
// Pages without a usable MediaBox report domain.DefaultPageSize.
func (d *Document) PageSize(page int) (domain.PageSize, error) {
	if err := d.checkPage(page); err != nil {
		return domain.PageSize{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if size, ok := d.sizes[page]; ok {
		return size, nil
	}

	size := d.mediaBox(page)
	d.sizes[page] = size
	return size, nil
}

// TextLayer returns the text runs of a page, top-down, in reading order.
func (d *Document) TextLayer(page int) ([]domain.TextRun, error) {
	size, err := d.PageSize(page)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if runs, ok := d.runs[page]; ok {
		return runs, nil
	}

	runs, err := d.extract(page, size)
	if err != nil {
		return nil, err
	}
	d.runs[page] = runs
	return runs, nil
}

func (d *Document) checkPage(page int) error {
	if page < 1 || page > d.reader.NumPage() {
		return fmt.Errorf("%w: page %d outside 1..%d", domain.ErrInvalidInput, page, d.reader.NumPage())
	}
	return nil
}

// mediaBox walks up the page tree until a MediaBox is found.
func (d *Document) mediaBox(page int) (size domain.PageSize) {
	defer func() {
		if recover() != nil {
			size = domain.DefaultPageSize
		}
	}()

	v := d.reader.Page(page).V
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			w := box.Index(2).Float64() - box.Index(0).Float64()
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if w > 0 && h > 0 {
				return domain.PageSize{Width: w, Height: h}
			}
		}
		v = v.Key("Parent")
	}
	return domain.DefaultPageSize
}

// extract merges the page's glyphs into runs sharing a baseline.
func (d *Document) extract(page int, size domain.PageSize) (runs []domain.TextRun, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			runs = nil
			err = fmt.Errorf("read text of page %d: %v", page, rec)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}
	return mergeGlyphs(p.Content().Text, size.Height), nil
}

// estimateAdvance approximates the width of a glyph whose font carries no
// /Widths array (the standard 14 fonts usually do not) at half an em per rune.
func estimateAdvance(g pdf.Text) float64 {
	size := g.FontSize
	if size <= 0 {
		size = fallbackFontSize
	}
	return size * averageAdvance * float64(max(1, utf8.RuneCountInString(g.S)))
}

// mergeGlyphs joins glyphs on the same baseline into runs and converts
// the bottom-up PDF y axis to top-down.
func mergeGlyphs(glyphs []pdf.Text, pageHeight float64) []domain.TextRun {
	var runs []domain.TextRun
	var cur *domain.TextRun
	var text strings.Builder

	flush := func() {
		if cur != nil && strings.TrimSpace(text.String()) != "" {
			cur.Text = text.String()
			runs = append(runs, *cur)
		}
		cur = nil
		text.Reset()
	}

	for _, g := range glyphs {
		y := pageHeight - g.Y
		x, w := g.X, g.W
		if w <= 0 {
			w = estimateAdvance(g)
		}
		if cur != nil {
			end := cur.X + cur.Width
			sameLine := math.Abs(cur.Y-y) < math.Max(1, g.FontSize/3)
			// Without widths the reader does not advance the pen.
			if sameLine && g.W <= 0 && x >= cur.X && x < end {
				x = end
			}
			adjacent := x >= end-1 && x-end < math.Max(g.FontSize, 1)
			if sameLine && adjacent {
				if x-end > g.FontSize/4 && !strings.HasSuffix(text.String(), " ") {
					text.WriteByte(' ')
				}
				text.WriteString(g.S)
				cur.Width = x + w - cur.X
				continue
			}
			flush()
		}
		cur = &domain.TextRun{X: x, Y: y, Width: w, FontSize: g.FontSize}
		text.WriteString(g.S)
	}
	flush()

	sort.SliceStable(runs, func(i, j int) bool {
		if math.Abs(runs[i].Y-runs[j].Y) >= 1 {
			return runs[i].Y < runs[j].Y
		}
		return runs[i].X < runs[j].X
	})
	return runs
}
