package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"

	"github.com/five82/wreath/internal/memorial"
	"github.com/five82/wreath/internal/state"
)

// renderHeader renders the status bar: logo, counts, sync state and server.
func (m Model) renderHeader() string {
	bg := newSurface(m.theme, m.theme.Surface)
	styles := bg.styles
	compact := m.width < LayoutCompactWidth

	parts := []string{
		bg.text("✿ wreath", styles.Logo),
		bg.count(len(m.snapshot.Flowers), memorial.VariantFlower) +
			bg.text(" · ", styles.FaintText) +
			bg.count(len(m.snapshot.Leaves), memorial.VariantLeaf),
		m.syncStatus(bg),
	}

	if m.sendingFlower || m.snapshot.IsCreatingFlower {
		parts = append(parts, bg.text(m.spinner.View()+" Sending flower", styles.AccentText))
	}
	if m.sendingLeaf || m.snapshot.IsCreatingLeaf {
		parts = append(parts, bg.text(m.spinner.View()+" Sending leaf", styles.AccentText))
	}
	if !compact && m.apiBase != "" {
		parts = append(parts, bg.text(truncateMiddle(m.apiBase, 40), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.join(parts, "  "))
}

// syncStatus describes the polling state, most severe condition first.
func (m Model) syncStatus(bg surface) string {
	styles := bg.styles
	snap := m.snapshot
	switch {
	case snap.IsLoadingInitial:
		return bg.text(m.spinner.View()+" Loading", styles.WarningText)
	case snap.IsOffline():
		return bg.text("Offline", styles.DangerText) + bg.pad(1) +
			bg.text(errorSummary(snap.LastError), styles.MutedText)
	case snap.LastError != nil:
		return bg.text("Sync failed", styles.WarningText) + bg.pad(1) +
			bg.text(errorSummary(snap.LastError), styles.MutedText)
	case snap.IsFetchingAny:
		return bg.text(m.spinner.View()+" Syncing", styles.AccentText)
	}
	if updated := lastUpdated(snap); !updated.IsZero() {
		return bg.text("Updated "+updated.Local().Format("15:04:05"), styles.MutedText)
	}
	return bg.text("Waiting", styles.MutedText)
}

// renderCommandBar renders the key hints under the header.
func (m Model) renderCommandBar() string {
	bg := newSurface(m.theme, m.theme.Surface)

	bindings := m.keys.ShortHelp()
	if len(m.snapshot.Notifications) > 0 {
		bindings = []key.Binding{m.keys.NewFlower, m.keys.NewLeaf, m.keys.Dismiss, m.keys.Help, m.keys.Quit}
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, bg.keyHint(h.Key, h.Desc))
	}
	return bg.styles.Footer.Width(m.width).Render(bg.join(parts, "  "))
}

func countLabel(n int, v memorial.Variant) string {
	if n == 1 {
		return "1 " + string(v)
	}
	return fmt.Sprintf("%d %s", n, v.Plural())
}

// errorSummary shortens a refresh error for the header.
func errorSummary(err error) string {
	if err == nil {
		return ""
	}
	var fe *state.FetchError
	if errors.As(err, &fe) {
		return truncate(fe.Message, 48)
	}
	return truncate(strings.TrimSpace(err.Error()), 48)
}

func lastUpdated(snap state.Snapshot) time.Time {
	a, b := snap.FlowerState.LastUpdated, snap.LeafState.LastUpdated
	if a.After(b) {
		return a
	}
	return b
}
