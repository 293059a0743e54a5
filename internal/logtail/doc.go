// Package logtail reads the end of wreath's own log file.
//
// The TUI logs JSON lines (log/slog's JSON handler) to a file because it owns
// the terminal. The activity overlay uses Tail to show the most recent
// records, so gateway failures can be diagnosed without leaving the board.
//
// Read keeps a ring buffer of maxLines lines while scanning the file once, so
// memory stays bounded however large the log grows:
//
//	lines, err := logtail.Read(path, 200)
//
// Parse turns one JSON line into an Entry with its time, level, message and
// remaining attributes sorted by key. Entry.String renders the compact form
// shown in the overlay:
//
//	14:03:11 WARN gateway call failed code=0 message="server unreachable"
//
// Lines that are not JSON are kept verbatim in Entry.Raw.
package logtail
