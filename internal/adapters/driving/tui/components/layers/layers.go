// Package layers lists the annotations of the current page.
package layers

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/marginalia/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/services"
)

// previewRunes is the length of the text preview in a row.
const previewRunes = 20

// Panel shows the annotations of one page with a movable selection.
type Panel struct {
	styles      *styles.Styles
	annotations []domain.Annotation
	selected    int
	focused     bool
	width       int
	height      int
	now         func() time.Time
}

// New creates an empty panel.
func New(s *styles.Styles) *Panel {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Panel{
		styles: s,
		width:  36,
		height: 20,
		now:    time.Now,
	}
}

// SetAnnotations replaces the listed annotations, keeping the selection in range.
func (p *Panel) SetAnnotations(annotations []domain.Annotation) {
	p.annotations = annotations
	if p.selected >= len(annotations) {
		p.selected = max(len(annotations)-1, 0)
	}
}

// Annotations returns the listed annotations.
func (p *Panel) Annotations() []domain.Annotation {
	return p.annotations
}

// SetSize sets the panel size.
func (p *Panel) SetSize(width, height int) {
	p.width = max(width, 10)
	p.height = max(height, 3)
}

// Width returns the panel width.
func (p *Panel) Width() int {
	return p.width
}

// Focus gives the panel keyboard focus.
func (p *Panel) Focus() {
	p.focused = true
}

// Blur removes keyboard focus.
func (p *Panel) Blur() {
	p.focused = false
}

// Focused reports whether the panel has keyboard focus.
func (p *Panel) Focused() bool {
	return p.focused
}

// MoveUp selects the previous annotation.
func (p *Panel) MoveUp() {
	if p.selected > 0 {
		p.selected--
	}
}

// MoveDown selects the next annotation.
func (p *Panel) MoveDown() {
	if p.selected < len(p.annotations)-1 {
		p.selected++
	}
}

// SelectedIndex returns the index of the selected row.
func (p *Panel) SelectedIndex() int {
	return p.selected
}

// Selected returns the selected annotation, or nil when the list is empty.
func (p *Panel) Selected() *domain.Annotation {
	if p.selected < 0 || p.selected >= len(p.annotations) {
		return nil
	}
	a := p.annotations[p.selected]
	return &a
}

// View renders the panel.
func (p *Panel) View() string {
	var b strings.Builder
	title := fmt.Sprintf("Layers (%d)", len(p.annotations))
	if p.focused {
		b.WriteString(p.styles.Title.Render(title))
	} else {
		b.WriteString(p.styles.Subtitle.Render(title))
	}
	b.WriteString("\n\n")

	if len(p.annotations) == 0 {
		b.WriteString(p.styles.Muted.Render("No annotations on this page"))
		return p.frame(b.String())
	}

	// Each annotation takes two lines.
	visible := max((p.height-3)/2, 1)
	start := 0
	if p.selected >= visible {
		start = p.selected - visible + 1
	}
	end := min(start+visible, len(p.annotations))

	for i := start; i < end; i++ {
		b.WriteString(p.renderRow(i))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return p.frame(b.String())
}

func (p *Panel) frame(content string) string {
	return lipgloss.NewStyle().Width(p.width).Render(content)
}

func (p *Panel) renderRow(i int) string {
	a := p.annotations[i]

	head := fmt.Sprintf("#%d %s", a.ID, a.Type)
	if a.Type.UsesColor() && a.Color != "" {
		head += " " + p.styles.Swatch(a.Color)
	}
	if i == p.selected && p.focused {
		head = p.styles.Selected.Render("▸ " + head)
	} else if i == p.selected {
		head = p.styles.Normal.Render("▸ " + head)
	} else {
		head = p.styles.Normal.Render("  " + head)
	}

	detail := fmt.Sprintf("    %s  (%.0f, %.0f)  Added %s",
		Preview(a), a.Position.X, a.Position.Y, humanize.RelTime(a.CreatedAt, p.now(), "ago", "from now"))
	return head + "\n" + p.styles.Muted.Render(detail)
}

// Preview returns a one-line summary of the annotation content.
func Preview(a domain.Annotation) string {
	switch a.Type {
	case domain.AnnotationComment:
		text, format := domain.StripCommentMarkers(a.Data)
		preview := fmt.Sprintf("%q", services.Truncate(text, previewRunes))
		if format.Bold {
			preview += " [B]"
		}
		if format.Italic {
			preview += " [I]"
		}
		return preview
	case domain.AnnotationSignature:
		// Base64 carries three bytes in four characters.
		payload := strings.TrimPrefix(a.Data, "data:image/png;base64,")
		return "image " + humanize.Bytes(uint64(len(payload)*3/4))
	default:
		if a.Data == "" {
			return domain.ColorLabel(a.Color)
		}
		return fmt.Sprintf("%q", services.Truncate(a.Data, previewRunes))
	}
}
