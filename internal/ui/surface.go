package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/wreath/internal/memorial"
	"github.com/five82/wreath/internal/state"
)

// surface paints board text onto one background color. Every segment,
// separators and padding included, carries that color so the header,
// tooltip and toasts read as solid bars.
type surface struct {
	bg     lipgloss.Color
	styles Styles
}

func newSurface(theme Theme, color string) surface {
	bg := lipgloss.Color(color)
	return surface{bg: bg, styles: theme.Styles().WithBackground(color)}
}

func (s surface) text(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	return style.Background(s.bg).Render(text)
}

func (s surface) pad(n int) string {
	if n <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Background(s.bg).Render(strings.Repeat(" ", n))
}

func (s surface) join(parts []string, sep string) string {
	return strings.Join(parts, s.text(sep, s.styles.FaintText))
}

func (s surface) fill(content string, width int) string {
	return lipgloss.NewStyle().Background(s.bg).Width(width).Render(content)
}

// variantStyle is the tribute color for v, brighter while highlighted.
func (s surface) variantStyle(v memorial.Variant, highlighted bool) lipgloss.Style {
	switch {
	case v == memorial.VariantLeaf && highlighted:
		return s.styles.LeafNew
	case v == memorial.VariantLeaf:
		return s.styles.Leaf
	case highlighted:
		return s.styles.FlowerNew
	default:
		return s.styles.Flower
	}
}

// mark renders the glyph that stands for v on the canvas.
func (s surface) mark(v memorial.Variant, glyphs glyphSet) string {
	g := glyphs.flower
	if v == memorial.VariantLeaf {
		g = glyphs.leaves[0]
	}
	return s.text(g, s.variantStyle(v, false))
}

// count renders "3 flowers" in the variant's color.
func (s surface) count(n int, v memorial.Variant) string {
	return s.text(countLabel(n, v), s.variantStyle(v, false))
}

// notice renders the toast icon for a notification kind.
func (s surface) notice(kind state.NoticeKind) string {
	if kind == state.NoticeFailure {
		return s.text("✗", s.styles.DangerText)
	}
	return s.text("✓", s.styles.SuccessText)
}

// keyHint renders one "key action" pair from the key map.
func (s surface) keyHint(key, desc string) string {
	return s.text(key, s.styles.WarningText) + s.pad(1) + s.text(desc, s.styles.MutedText)
}
