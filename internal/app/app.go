package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/five82/wreath/internal/config"
	"github.com/five82/wreath/internal/logging"
	"github.com/five82/wreath/internal/memorial"
	"github.com/five82/wreath/internal/prefs"
	"github.com/five82/wreath/internal/state"
	"github.com/five82/wreath/internal/telemetry"
	"github.com/five82/wreath/internal/ui"
)

// Options configure the wreath application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/wreath/prefs.toml
	APIBase    string // overrides api_base from the config file
	PollEvery  int    // seconds; zero uses the config value
	Headless   bool

	// Headless I/O; nil uses os.Stdin and os.Stdout.
	Stdin  io.Reader
	Stdout io.Writer
}

// Run boots wreath until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIBase); v != "" {
		cfg.APIBase = v
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}

	log, logPath, closeLog := openLogger(cfg, opts.Headless)
	defer closeLog()

	client, err := memorial.NewClient(cfg.APIBase, memorial.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return fmt.Errorf("init memorial client: %w", err)
	}

	provider, reader := telemetry.NewProvider()
	otel.SetMeterProvider(provider)
	defer func() { _ = provider.Shutdown(context.Background()) }()
	stats := func(ctx context.Context) (telemetry.Summary, error) {
		return telemetry.Summarize(ctx, reader)
	}

	metrics, err := telemetry.New(provider)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	client.OnRequest(logRequest(ctx, log))
	client.OnResponse(logResponse(ctx, log))
	client.OnResponse(metrics.RecordResponse)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := state.New(client)
	defer store.Close()
	store.StartSweeper(ctx)

	poller := &Poller{Store: store, Interval: cfg.PollInterval, Log: log, Metrics: metrics}
	polling := poller.Start(ctx)
	defer func() {
		cancel()
		<-polling
	}()

	log.Info(ctx, "wreath started",
		"api_base", client.BaseURL(),
		"poll_interval", cfg.PollInterval.String(),
		"headless", opts.Headless,
	)

	if opts.Headless {
		stdin, stdout := opts.Stdin, opts.Stdout
		if stdin == nil {
			stdin = os.Stdin
		}
		if stdout == nil {
			stdout = os.Stdout
		}
		w := &Watcher{Board: store, Out: stdout, Log: log, Stats: stats}
		return w.Run(ctx, stdin)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Log:       log,
		APIBase:   client.BaseURL(),
		PollEvery: cfg.PollInterval,
		Prefs:     prefs.Load(prefsPath),
		PrefsPath: prefsPath,
		LogPath:   logPath,
		Stats:     stats,
	})
}

// openLogger logs to stderr in headless mode. The TUI owns the terminal, so
// it logs JSON to the configured file, or nowhere if the file cannot be
// opened. The returned path is empty unless logging goes to a file.
func openLogger(cfg config.Config, headless bool) (logging.Logger, string, func()) {
	if headless {
		return logging.NewStderr(cfg.LogLevel), "", func() {}
	}
	log, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wreath: logging disabled: %v\n", err)
		return logging.Discard(), "", func() {}
	}
	return log, cfg.LogFile, func() { _ = closer.Close() }
}
