package ui

import "time"

// Terminal thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the width below which the header drops detail.
	LayoutCompactWidth = 80

	// minCanvasHeight is the smallest wreath canvas worth drawing.
	minCanvasHeight = 5

	// chromeHeight covers the header and command bar.
	chromeHeight = 2

	// tooltipHeight is the detail panel under the canvas.
	tooltipHeight = 3

	// composeWidth is the width of the message modal.
	composeWidth = 64
)

// Toast limits.
const (
	// MaxToasts is how many notifications are shown at once.
	MaxToasts = 3
)

// Timing constants.
const (
	// DefaultUIInterval is how often the UI re-reads the store. It is
	// sub-second so highlights fade close to their deadline.
	DefaultUIInterval = 250 * time.Millisecond
)
