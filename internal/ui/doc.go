// Package ui provides the Bubble Tea terminal interface for the memorial
// board.
//
// # Layout
//
//	┌──────────────────────────────────────────────┐
//	│ ✿ wreath  3 flowers · 5 leaves  Updated ...  │  header
//	│ n Leave a flower  l Send a leaf  ...         │  command bar
//	│                                              │
//	│              ─    ✿   ╱                      │  canvas
//	│           │     ✿  ❀    ─                    │
//	│                                              │
//	│ ✓ Your message was delivered · ...           │  toasts
//	│ ✿ Flower #12  Jan 2, 2025 15:04              │  tooltip
//	│ Forever in our hearts.                       │
//	└──────────────────────────────────────────────┘
//
// Flowers sit on the inner ring and leaves on the outer ring, positioned by
// the layout package. Highlighted tributes use the theme's "new" colors until
// their deadline passes.
//
// # Data Flow
//
// The model never fetches on its own schedule. A tick every
// DefaultUIInterval copies Store.Snapshot into the model; the poller in
// package app refreshes the store. Create and refresh actions run as
// tea.Cmds against the Store and report back with actionDoneMsg, after which
// the model takes a fresh snapshot. Outcome messages come from the store's
// notifications and render as toasts.
//
// # Preferences
//
// Theme (T) and glyph set (A) changes are written to prefs.toml immediately.
package ui
