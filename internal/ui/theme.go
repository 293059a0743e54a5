package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Header, footer and panels
	SurfaceAlt string // Input and tooltip panels

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string

	// Tribute colors
	Flower    string
	FlowerNew string
	Leaf      string
	LeafNew   string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Background: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Background)),

		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		SurfaceAlt: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SurfaceAlt)).
			Foreground(lipgloss.Color(t.Text)),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Flower)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		Flower: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Flower)),

		FlowerNew: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FlowerNew)).
			Bold(true),

		Leaf: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Leaf)),

		LeafNew: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.LeafNew)).
			Bold(true),
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Background lipgloss.Style
	Surface    lipgloss.Style
	SurfaceAlt lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style

	Flower    lipgloss.Style
	FlowerNew lipgloss.Style
	Leaf      lipgloss.Style
	LeafNew   lipgloss.Style
}

// WithBackground returns a copy of Styles with every style carrying bgColor.
// This ensures styled text has explicit backgrounds instead of transparent/inherit.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)

	return Styles{
		Background: s.Background.Background(bg),
		Surface:    s.Surface.Background(bg),
		SurfaceAlt: s.SurfaceAlt.Background(bg),

		Text:        s.Text.Background(bg),
		MutedText:   s.MutedText.Background(bg),
		FaintText:   s.FaintText.Background(bg),
		AccentText:  s.AccentText.Background(bg),
		SuccessText: s.SuccessText.Background(bg),
		WarningText: s.WarningText.Background(bg),
		DangerText:  s.DangerText.Background(bg),

		Header:   s.Header.Background(bg),
		Footer:   s.Footer.Background(bg),
		Logo:     s.Logo.Background(bg),
		Selected: s.Selected,

		Flower:    s.Flower.Background(bg),
		FlowerNew: s.FlowerNew.Background(bg),
		Leaf:      s.Leaf.Background(bg),
		LeafNew:   s.LeafNew.Background(bg),
	}
}

// Theme definitions

var themes = map[string]Theme{
	"Blossom": blossomTheme(),
	"Grove":   groveTheme(),
	"Dusk":    duskTheme(),
}

var themeOrder = []string{"Blossom", "Grove", "Dusk"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return blossomTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func blossomTheme() Theme {
	// Warm parchment with rose petals, after the web board's pink and amber.
	return Theme{
		Name: "Blossom",

		Background: "#1c1417",
		Surface:    "#261b1f",
		SurfaceAlt: "#33252a",

		SelectionBg:   "#f9a8d4", // pink-300
		SelectionText: "#1c1417",

		Border:      "#4a343b",
		BorderFocus: "#fb7185", // rose-400

		Text:    "#fdf2f8", // pink-50
		Muted:   "#d6b8c2",
		Faint:   "#8c6f78",
		Accent:  "#fbbf24", // amber-400
		Success: "#6ee7b7", // emerald-300
		Warning: "#fcd34d", // amber-300
		Danger:  "#f87171", // red-400

		Flower:    "#f9a8d4", // pink-300
		FlowerNew: "#fde68a", // amber-200
		Leaf:      "#6ee7b7", // emerald-300
		LeafNew:   "#bbf7d0", // green-200
	}
}

func groveTheme() Theme {
	// Kanagawa-inspired greens: https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name: "Grove",

		Background: "#16161D", // sumiInk0
		Surface:    "#1F1F28", // sumiInk3
		SurfaceAlt: "#2A2A37", // sumiInk4

		SelectionBg:   "#2D4F67", // waveBlue1
		SelectionText: "#DCD7BA", // fujiWhite

		Border:      "#54546D", // sumiInk6
		BorderFocus: "#7E9CD8", // crystalBlue

		Text:    "#DCD7BA", // fujiWhite
		Muted:   "#C8C093", // oldWhite
		Faint:   "#727169", // fujiGray
		Accent:  "#7E9CD8", // crystalBlue
		Success: "#98BB6C", // springGreen
		Warning: "#E6C384", // carpYellow
		Danger:  "#E46876", // waveRed

		Flower:    "#D27E99", // sakuraPink
		FlowerNew: "#E6C384", // carpYellow
		Leaf:      "#98BB6C", // springGreen
		LeafNew:   "#C0E0A0",
	}
}

func duskTheme() Theme {
	// Tailwind CSS Slate palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Dusk",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		SurfaceAlt: "#1e293b", // slate-800

		SelectionBg:   "#0284c7", // sky-600
		SelectionText: "#f8fafc", // slate-50

		Border:      "#334155", // slate-700
		BorderFocus: "#38bdf8", // sky-400

		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Faint:   "#64748b", // slate-500
		Accent:  "#38bdf8", // sky-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500

		Flower:    "#c4b5fd", // violet-300
		FlowerNew: "#fde047", // yellow-300
		Leaf:      "#5eead4", // teal-300
		LeafNew:   "#a7f3d0", // emerald-200
	}
}
