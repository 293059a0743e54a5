package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/wreath/internal/layout"
	"github.com/five82/wreath/internal/memorial"
	"github.com/five82/wreath/internal/prefs"
	"github.com/five82/wreath/internal/state"
)

type cellKind int

const (
	cellEmpty cellKind = iota
	cellFlower
	cellFlowerNew
	cellLeaf
	cellLeafNew
)

type cell struct {
	glyph    string
	kind     cellKind
	selected bool
}

type glyphSet struct {
	flower, flowerNew string
	// leaves indexed by rotation bucket: horizontal, falling, vertical, rising
	leaves [4]string
}

var (
	unicodeGlyphs = glyphSet{flower: "✿", flowerNew: "❀", leaves: [4]string{"─", "╲", "│", "╱"}}
	asciiGlyphs   = glyphSet{flower: "*", flowerNew: "@", leaves: [4]string{"-", "\\", "|", "/"}}
)

func glyphsFor(name string) glyphSet {
	if name == prefs.GlyphsASCII {
		return asciiGlyphs
	}
	return unicodeGlyphs
}

// leafGlyph picks the stroke closest to a leaf's rotation. Angles grow
// clockwise on screen.
func (g glyphSet) leafGlyph(rotation float64) string {
	a := math.Mod(rotation, 180)
	if a < 0 {
		a += 180
	}
	bucket := int(math.Floor((a+22.5)/45)) % 4
	return g.leaves[bucket]
}

// tribute is one selectable item, flowers first then leaves.
type tribute struct {
	memorial.Tribute
	Variant memorial.Variant
}

func tributes(snap state.Snapshot) []tribute {
	out := make([]tribute, 0, len(snap.Flowers)+len(snap.Leaves))
	for _, f := range snap.Flowers {
		out = append(out, tribute{Tribute: f.Tribute, Variant: memorial.VariantFlower})
	}
	for _, l := range snap.Leaves {
		out = append(out, tribute{Tribute: l.Tribute, Variant: memorial.VariantLeaf})
	}
	return out
}

// buildGrid places every tribute on a width×height grid. Flowers overwrite
// leaves sharing a cell and the selected tribute is drawn last.
func buildGrid(snap state.Snapshot, selected *state.HighlightKey, glyphs glyphSet, width, height int) [][]cell {
	if width <= 0 || height <= 0 {
		return nil
	}
	grid := make([][]cell, height)
	for r := range grid {
		grid[r] = make([]cell, width)
		for c := range grid[r] {
			grid[r][c] = cell{glyph: " "}
		}
	}

	var picked *cell
	var pickedAt layout.Placement
	for _, p := range layout.Arrange(snap.Flowers, snap.Leaves, width, height) {
		c := placementCell(p, snap, glyphs)
		if selected != nil && selected.Variant == p.Variant && selected.ID == p.ID {
			c.selected = true
			picked, pickedAt = &c, p
			continue
		}
		grid[p.Row][p.Col] = c
	}
	if picked != nil {
		grid[pickedAt.Row][pickedAt.Col] = *picked
	}
	return grid
}

func placementCell(p layout.Placement, snap state.Snapshot, glyphs glyphSet) cell {
	isNew := snap.IsHighlighted(p.Variant, p.ID)
	if p.Variant == memorial.VariantFlower {
		if isNew {
			return cell{glyph: glyphs.flowerNew, kind: cellFlowerNew}
		}
		return cell{glyph: glyphs.flower, kind: cellFlower}
	}
	kind := cellLeaf
	if isNew {
		kind = cellLeafNew
	}
	return cell{glyph: glyphs.leafGlyph(p.Rotation), kind: kind}
}

// renderCanvas draws the wreath into height lines of exactly width cells.
func (m Model) renderCanvas(width, height int) string {
	bg := newSurface(m.theme, m.theme.Background)
	styles := bg.styles

	if height < 1 || width < 1 {
		return ""
	}
	if len(m.snapshot.Flowers) == 0 && len(m.snapshot.Leaves) == 0 {
		return m.renderEmptyCanvas(styles, width, height)
	}

	var selected *state.HighlightKey
	if t, ok := m.selectedTribute(); ok {
		selected = &state.HighlightKey{Variant: t.Variant, ID: t.ID}
	}
	grid := buildGrid(m.snapshot, selected, glyphsFor(m.glyphs), width, height)

	lines := make([]string, len(grid))
	for r, row := range grid {
		var b strings.Builder
		run := 0
		for _, c := range row {
			if c.kind == cellEmpty {
				run++
				continue
			}
			b.WriteString(bg.pad(run))
			run = 0
			b.WriteString(cellStyle(styles, c).Render(c.glyph))
		}
		b.WriteString(bg.pad(run))
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}

func cellStyle(styles Styles, c cell) (s lipgloss.Style) {
	switch c.kind {
	case cellFlowerNew:
		s = styles.FlowerNew
	case cellLeaf:
		s = styles.Leaf
	case cellLeafNew:
		s = styles.LeafNew
	default:
		s = styles.Flower
	}
	if c.selected {
		s = styles.Selected.Bold(true)
	}
	return s
}

func (m Model) renderEmptyCanvas(styles Styles, width, height int) string {
	var msg string
	switch {
	case m.snapshot.IsLoadingInitial:
		msg = styles.MutedText.Render(m.spinner.View() + " Gathering tributes...")
	case m.snapshot.LastError != nil:
		msg = styles.DangerText.Render("Could not load the wreath.") + "\n" +
			styles.MutedText.Render("Retrying every "+m.pollEvery.String()+". Press r to try now.")
	default:
		msg = styles.Text.Render("The wreath is waiting for its first tribute.") + "\n" +
			styles.MutedText.Render("Press n to leave a flower or l to send a leaf.")
	}
	return placeCenter(m.theme, width, height, msg)
}
