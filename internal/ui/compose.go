package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/wreath/internal/memorial"
)

// composeModal collects the message for a new flower.
type composeModal struct {
	input textinput.Model
	err   string
}

func newComposeModal(theme Theme) *composeModal {
	ti := textinput.New()
	ti.Placeholder = "Share a memory or a few warm words"
	ti.Prompt = "› "
	ti.CharLimit = memorial.MaxContentLength
	ti.Width = composeWidth - 8
	ti.PromptStyle = theme.Styles().AccentText
	ti.PlaceholderStyle = theme.Styles().FaintText
	ti.Focus()
	return &composeModal{input: ti}
}

func (c *composeModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case k.String() == "ctrl+c":
			return c, tea.Quit, true
		case key.Matches(k, keys.Escape):
			return c, nil, true
		case key.Matches(k, keys.Confirm):
			content, ok := memorial.NormalizeContent(c.input.Value())
			if !ok {
				c.err = "Please write a message first."
				return c, nil, false
			}
			return c, submitFlowerCmd(content), true
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	if c.err != "" && strings.TrimSpace(c.input.Value()) != "" {
		c.err = ""
	}
	return c, cmd, false
}

func (c *composeModal) View(theme Theme, width, height int) string {
	bg := newSurface(theme, theme.SurfaceAlt)
	styles := bg.styles
	inner := composeWidth - 6

	var b strings.Builder
	b.WriteString(bg.text("Leave a flower", styles.Logo))
	b.WriteString("\n")
	b.WriteString(bg.text("Your words will join the wreath for everyone to read.", styles.MutedText))
	b.WriteString("\n\n")
	b.WriteString(bg.fill(c.input.View(), inner))
	b.WriteString("\n\n")

	count := fmt.Sprintf("%d/%d", utf8.RuneCountInString(c.input.Value()), memorial.MaxContentLength)
	status := bg.text(count, styles.FaintText)
	if c.err != "" {
		status = bg.text(c.err, styles.DangerText) + bg.pad(2) + status
	}
	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(bg.keyHint("enter", "send") + bg.pad(2) + bg.keyHint("esc", "cancel"))

	return placeCenter(theme, width, height, modalFrame(theme, composeWidth, b.String()))
}
