package ui

import (
	"fmt"
	"strings"

	"github.com/five82/wreath/internal/memorial"
	"github.com/five82/wreath/internal/state"
)

// renderTooltip renders the detail panel for the selected tribute. It always
// returns tooltipHeight lines.
func (m Model) renderTooltip() string {
	bg := newSurface(m.theme, m.theme.SurfaceAlt)
	styles := bg.styles
	inner := max(m.width-2, 1)

	lines := make([]string, 0, tooltipHeight)
	t, ok := m.selectedTribute()
	if !ok {
		lines = append(lines, bg.text("Select a tribute with j/k to read it.", styles.FaintText))
	} else {
		label := "Flower"
		if t.Variant == memorial.VariantLeaf {
			label = "Leaf"
		}
		head := bg.mark(t.Variant, glyphsFor(m.glyphs)) + bg.pad(1) +
			bg.text(fmt.Sprintf("%s #%d", label, t.ID), styles.Text.Bold(true))
		if when := formatCreatedAt(t.ParsedCreatedAt(), t.CreatedAt); when != "" {
			head += bg.pad(2) + bg.text(when, styles.MutedText)
		}
		if m.snapshot.IsHighlighted(t.Variant, t.ID) {
			head += bg.pad(2) + bg.text("new", bg.variantStyle(t.Variant, true))
		}
		lines = append(lines, head)
		for _, line := range wrapLines(t.Content, inner, tooltipHeight-1) {
			lines = append(lines, bg.text(line, styles.Text))
		}
	}
	for len(lines) < tooltipHeight {
		lines = append(lines, "")
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = styles.Surface.Padding(0, 1).Width(m.width).Render(line)
	}
	return strings.Join(out, "\n")
}

// visibleToasts returns the newest notifications first, capped at MaxToasts.
func visibleToasts(notes []state.Notification) []state.Notification {
	out := make([]state.Notification, 0, min(len(notes), MaxToasts))
	for i := len(notes) - 1; i >= 0 && len(out) < MaxToasts; i-- {
		out = append(out, notes[i])
	}
	return out
}

// renderToasts renders one line per visible notification.
func (m Model) renderToasts() string {
	toasts := visibleToasts(m.snapshot.Notifications)
	if len(toasts) == 0 {
		return ""
	}
	bg := newSurface(m.theme, m.theme.Surface)
	styles := bg.styles

	lines := make([]string, 0, len(toasts))
	for _, n := range toasts {
		text := bg.notice(n.Kind) + bg.pad(1) + bg.text(n.Title, styles.Text.Bold(true))
		if msg := strings.TrimSpace(n.Message); msg != "" {
			text += bg.text(" · ", styles.FaintText) +
				bg.text(truncate(msg, max(m.width-len(n.Title)-8, 10)), styles.MutedText)
		}
		lines = append(lines, styles.Surface.Padding(0, 1).Width(m.width).Render(text))
	}
	return strings.Join(lines, "\n")
}
