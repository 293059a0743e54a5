package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/facebookgo/clock"

	"github.com/five82/wreath/internal/logging"
	"github.com/five82/wreath/internal/memorial"
	"github.com/five82/wreath/internal/state"
	"github.com/five82/wreath/internal/telemetry"
)

const defaultWatchInterval = 500 * time.Millisecond

// Board is the part of *state.Store the headless watcher drives.
type Board interface {
	Snapshot() state.Snapshot
	CreateFlower(ctx context.Context, content string) (memorial.Envelope[memorial.Flower], error)
	CreateLeaf(ctx context.Context) (memorial.Envelope[memorial.Leaf], error)
	Invalidate(ctx context.Context, v memorial.Variant) error
}

// Watcher is the line-oriented alternative to the TUI. It prints what
// changes on the board and reads simple commands from its input.
type Watcher struct {
	Board    Board
	Out      io.Writer
	Clock    clock.Clock
	Interval time.Duration
	Log      logging.Logger
	Stats    func(context.Context) (telemetry.Summary, error)

	loaded     bool
	lastNotice int
	shown      map[state.HighlightKey]struct{}
	lastErr    string
}

// Run reports board changes until ctx is done or a quit command arrives.
// End of input is not an error; the watcher keeps reporting.
func (w *Watcher) Run(ctx context.Context, in io.Reader) error {
	clk := w.Clock
	if clk == nil {
		clk = clock.New()
	}
	interval := w.Interval
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	ticker := clk.Ticker(interval)
	defer ticker.Stop()

	var lines <-chan string
	if in != nil {
		lines = readLines(ctx, in)
	}

	w.printf("Watching the wreath. Type \"help\" for commands.\n")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.report(w.Board.Snapshot())
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if quit := w.exec(ctx, line); quit {
				return nil
			}
		}
	}
}

func readLines(ctx context.Context, in io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// exec runs one command line and reports whether the watcher should stop.
func (w *Watcher) exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	cmd, rest, _ := strings.Cut(line, " ")

	switch strings.ToLower(cmd) {
	case "quit", "exit", "q":
		return true

	case "flower", "f":
		_, err := w.Board.CreateFlower(ctx, rest)
		switch {
		case errors.Is(err, state.ErrEmptyContent):
			w.printf("! Please write a message first: flower <message>\n")
			return false
		case err != nil:
			w.printf("! %v\n", err)
			return false
		}

	case "leaf", "l":
		if _, err := w.Board.CreateLeaf(ctx); err != nil {
			w.printf("! %v\n", err)
			return false
		}

	case "refresh", "r":
		for _, v := range []memorial.Variant{memorial.VariantFlower, memorial.VariantLeaf} {
			if err := w.Board.Invalidate(ctx, v); err != nil && w.Log != nil {
				w.Log.Debug(ctx, "manual refresh failed", "variant", string(v), "error", err)
			}
		}

	case "list", "ls":
		w.list(w.Board.Snapshot())
		return false

	case "stats":
		if w.Stats == nil {
			w.printf("! Metrics are not available.\n")
			return false
		}
		sum, err := w.Stats(ctx)
		if err != nil {
			w.printf("! %v\n", err)
			return false
		}
		w.printf("Stats: %s\n", sum)
		return false

	case "help", "?":
		w.printf("Commands:\n" +
			"  flower <message>  leave a flower (up to 200 characters)\n" +
			"  leaf              send a leaf with a server-chosen phrase\n" +
			"  refresh           reload both collections now\n" +
			"  list              print every tribute\n" +
			"  stats             print gateway and poll counters\n" +
			"  quit              stop watching\n")
		return false

	default:
		w.printf("! Unknown command %q. Type \"help\" for commands.\n", cmd)
		return false
	}

	w.report(w.Board.Snapshot())
	return false
}

// report prints what changed since the previous snapshot: the first full
// load, newly highlighted tributes, new notifications and sync errors.
func (w *Watcher) report(snap state.Snapshot) {
	if w.shown == nil {
		w.shown = make(map[state.HighlightKey]struct{})
	}

	if !w.loaded && snap.FlowerState.Loaded && snap.LeafState.Loaded {
		w.loaded = true
		w.printf("Wreath loaded: %s and %s.\n",
			count(len(snap.Flowers), memorial.VariantFlower),
			count(len(snap.Leaves), memorial.VariantLeaf))
	}

	for _, f := range snap.Flowers {
		w.announce(snap, memorial.VariantFlower, f.Tribute)
	}
	for _, l := range snap.Leaves {
		w.announce(snap, memorial.VariantLeaf, l.Tribute)
	}

	for _, n := range snap.Notifications {
		if n.ID <= w.lastNotice {
			continue
		}
		w.lastNotice = n.ID
		mark := "✓"
		if n.Kind == state.NoticeFailure {
			mark = "✗"
		}
		w.printf("%s %s: %s\n", mark, n.Title, n.Message)
	}

	msg := ""
	if snap.LastError != nil {
		msg = snap.LastError.Error()
	}
	if msg != w.lastErr {
		switch {
		case msg != "" && snap.IsOffline():
			w.printf("! Offline: %s\n", msg)
		case msg != "":
			w.printf("! Sync failed: %s\n", msg)
		default:
			w.printf("Sync restored.\n")
		}
		w.lastErr = msg
	}
}

func (w *Watcher) announce(snap state.Snapshot, v memorial.Variant, t memorial.Tribute) {
	key := state.HighlightKey{Variant: v, ID: t.ID}
	if _, done := w.shown[key]; done || !snap.IsHighlighted(v, t.ID) {
		return
	}
	w.shown[key] = struct{}{}
	w.printf("+ %s #%d: %s\n", v, t.ID, t.Content)
}

func (w *Watcher) list(snap state.Snapshot) {
	w.printf("%s:\n", count(len(snap.Flowers), memorial.VariantFlower))
	for _, f := range snap.Flowers {
		w.printf("  #%d  %s\n", f.ID, f.Content)
	}
	w.printf("%s:\n", count(len(snap.Leaves), memorial.VariantLeaf))
	for _, l := range snap.Leaves {
		w.printf("  #%d  %s\n", l.ID, l.Content)
	}
}

func (w *Watcher) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.Out, format, args...)
}

func count(n int, v memorial.Variant) string {
	if n == 1 {
		return "1 " + string(v)
	}
	return fmt.Sprintf("%d %s", n, v.Plural())
}
