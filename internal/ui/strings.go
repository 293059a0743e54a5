package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// truncateMiddle keeps both ends of value and drops characters from the
// middle. Used for the API base URL in the header.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	keep := limit - 1
	prefix := keep / 2
	suffix := keep - prefix
	return string(runes[:prefix]) + "…" + string(runes[len(runes)-suffix:])
}

// wrapLines word-wraps text to width and keeps at most maxLines lines. The
// last kept line gets an ellipsis when text was cut.
func wrapLines(text string, width, maxLines int) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" || width <= 0 || maxLines <= 0 {
		return nil
	}
	wrapped := lipgloss.NewStyle().Width(width).Render(text)
	lines := strings.Split(wrapped, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	if len(lines) <= maxLines {
		return lines
	}
	lines = lines[:maxLines]
	last := []rune(lines[maxLines-1])
	if width > 3 && len(last)+3 > width {
		last = last[:width-3]
	}
	lines[maxLines-1] = strings.TrimRight(string(last), " ") + "..."
	return lines
}

// formatCreatedAt renders a tribute timestamp in local time, or the raw value
// when the server sent something unparseable.
func formatCreatedAt(parsed time.Time, raw string) string {
	if parsed.IsZero() {
		return strings.TrimSpace(raw)
	}
	return parsed.Local().Format("Jan 2, 2006 15:04")
}
