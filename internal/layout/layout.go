// Package layout places tributes on the wreath.
//
// Positions are percentages of the canvas: flowers sit on an inner ring of
// radius 15 around (50, 50), leaves on an outer ring of radius 35. A single
// flower sits in the centre. Cell converts a position to terminal cells.
package layout

import (
	"math"

	"github.com/five82/wreath/internal/memorial"
)

const (
	CenterX      = 50.0
	CenterY      = 50.0
	FlowerRadius = 15.0
	LeafRadius   = 35.0

	// goldenAngle spreads leaf rotations so neighbours rarely match.
	goldenAngle = 137.508
)

// Point is a position in canvas percent.
type Point struct {
	X, Y float64
}

// FlowerPosition returns where the index-th of total flowers goes.
func FlowerPosition(index, total int) Point {
	if total <= 1 {
		return Point{X: CenterX, Y: CenterY}
	}
	return onRing(index, total, FlowerRadius)
}

// LeafPosition returns where the index-th of total leaves goes.
func LeafPosition(index, total int) Point {
	if total <= 0 {
		total = 1
	}
	return onRing(index, total, LeafRadius)
}

func onRing(index, total int, radius float64) Point {
	angle := float64(index) * 360 / float64(total) * math.Pi / 180
	return Point{
		X: CenterX + radius*math.Cos(angle),
		Y: CenterY + radius*math.Sin(angle),
	}
}

// LeafRotation returns a stable pseudo-random rotation in [-180, 180) for a
// leaf id.
func LeafRotation(id int64) float64 {
	r := math.Mod(float64(id)*goldenAngle, 360)
	if r < 0 {
		r += 360
	}
	return r - 180
}

// Cell maps p onto a width×height grid of terminal cells.
func Cell(p Point, width, height int) (col, row int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	col = int(math.Round(p.X / 100 * float64(width-1)))
	row = int(math.Round(p.Y / 100 * float64(height-1)))
	return clamp(col, 0, width-1), clamp(row, 0, height-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Placement is one tribute positioned on the canvas.
type Placement struct {
	Variant  memorial.Variant
	ID       int64
	Index    int
	Point    Point
	Col, Row int
	Rotation float64
}

// Arrange positions every leaf and flower on a width×height grid. Leaves come
// first so flowers drawn afterwards end up on top.
func Arrange(flowers []memorial.Flower, leaves []memorial.Leaf, width, height int) []Placement {
	out := make([]Placement, 0, len(flowers)+len(leaves))
	for i, l := range leaves {
		p := LeafPosition(i, len(leaves))
		col, row := Cell(p, width, height)
		out = append(out, Placement{
			Variant:  memorial.VariantLeaf,
			ID:       l.ID,
			Index:    i,
			Point:    p,
			Col:      col,
			Row:      row,
			Rotation: LeafRotation(l.ID),
		})
	}
	for i, f := range flowers {
		p := FlowerPosition(i, len(flowers))
		col, row := Cell(p, width, height)
		out = append(out, Placement{
			Variant: memorial.VariantFlower,
			ID:      f.ID,
			Index:   i,
			Point:   p,
			Col:     col,
			Row:     row,
		})
	}
	return out
}
