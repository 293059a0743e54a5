// Package app is the composition root for wreath.
//
// # Startup
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        Read ~/.config/wreath/config.toml
//	       ├─────> logging              File (TUI) or stderr (headless)
//	       ├─────> memorial.NewClient() Gateway with log and metric hooks
//	       ├─────> state.New()          Shared store plus sweeper
//	       ├─────> Poller.Start()       Refresh both collections every 30s
//	       └─────> ui.Run() or Watcher.Run()   Blocks until quit
//
// # Polling
//
// The poller refreshes flowers and leaves concurrently with an errgroup.
// Each Refresh already retries inside the store (three attempts, exponential
// backoff), so the poller never retries on its own: a failed cycle is just
// followed by the next tick. The first poll happens immediately at startup.
//
// # Errors
//
// Config parse errors and an invalid API base URL are fatal and returned
// from Run. Everything after startup is recoverable and only logged or shown
// in the UI.
//
// # Headless Mode
//
// Watcher prints board changes as plain lines and accepts commands on stdin
// ("flower <message>", "leaf", "refresh", "list", "quit"). cmd/wreath selects
// it with -headless or when stdout is not a terminal.
package app
