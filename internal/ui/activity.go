package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/wreath/internal/logtail"
	"github.com/five82/wreath/internal/telemetry"
)

// activityTailLines is how many log lines are read for the overlay.
const activityTailLines = 200

// StatsFunc reports the session's gateway and poll counters.
type StatsFunc func(context.Context) (telemetry.Summary, error)

// activityModal shows the session counters and the most recent records from
// wreath's log file.
type activityModal struct {
	path    string
	stats   string
	entries []logtail.Entry
	err     error
}

type activityLoadedMsg struct {
	stats   string
	entries []logtail.Entry
	err     error
}

func loadActivityCmd(ctx context.Context, path string, stats StatsFunc) tea.Cmd {
	return func() tea.Msg {
		var msg activityLoadedMsg
		if stats != nil {
			if sum, err := stats(ctx); err == nil {
				msg.stats = sum.String()
			}
		}
		if path == "" {
			return msg
		}
		msg.entries, msg.err = logtail.Tail(path, activityTailLines)
		return msg
	}
}

func (a *activityModal) Update(msg tea.Msg, _ keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil, false
	}
	if k.String() == "ctrl+c" {
		return a, tea.Quit, true
	}
	// Any key closes
	return a, nil, true
}

func (a *activityModal) View(theme Theme, width, height int) string {
	styles := theme.Styles().WithBackground(theme.SurfaceAlt)
	frameWidth := max(min(width-4, 110), 30)
	inner := frameWidth - 6
	visible := max(height-10, 3)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Recent activity"))
	b.WriteString("\n")
	if a.path != "" {
		b.WriteString(styles.FaintText.Render(truncateMiddle(a.path, inner)))
		b.WriteString("\n")
	}
	if a.stats != "" {
		b.WriteString(styles.MutedText.Render(truncate(a.stats, inner)))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", min(inner, 40))))
	b.WriteString("\n")

	switch {
	case a.path == "":
		b.WriteString(styles.MutedText.Render("Logging is disabled for this session."))
	case a.err != nil:
		b.WriteString(styles.DangerText.Render(truncate(a.err.Error(), inner)))
	case len(a.entries) == 0:
		b.WriteString(styles.MutedText.Render("Nothing logged yet."))
	default:
		entries := a.entries
		if len(entries) > visible {
			entries = entries[len(entries)-visible:]
		}
		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			lines = append(lines, levelStyle(styles, e.Level).Render(truncate(e.String(), inner)))
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("Press any key to close"))

	return placeCenter(theme, width, height, modalFrame(theme, frameWidth, b.String()))
}

func levelStyle(styles Styles, level string) lipgloss.Style {
	switch strings.ToUpper(level) {
	case "ERROR":
		return styles.DangerText
	case "WARN":
		return styles.WarningText
	case "DEBUG":
		return styles.FaintText
	default:
		return styles.Text
	}
}
