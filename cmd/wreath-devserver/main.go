package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/five82/wreath/internal/devserver"
	"github.com/five82/wreath/internal/logging"
)

const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	addr := flag.String("addr", ":8081", "listen address")
	seed := flag.Bool("seed", true, "start with sample flowers and leaves")
	failEvery := flag.Int("fail-every", 0, "answer every n-th API request with 503 (0 disables)")
	latency := flag.Duration("latency", 0, "delay every API response")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := logging.NewStderr(*logLevel)
	gin.SetMode(gin.ReleaseMode)

	board := devserver.NewBoard()
	if *seed {
		board.Seed()
	}
	srv := &http.Server{
		Addr: *addr,
		Handler: devserver.NewRouter(board, devserver.Options{
			Logger:    log,
			FailEvery: *failEvery,
			Latency:   *latency,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info(ctx, "dev server listening", "addr", *addr, "api", "/api/v1")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "wreath-devserver: %v\n", err)
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "wreath-devserver: shutdown: %v\n", err)
			return 1
		}
		log.Info(context.Background(), "dev server stopped")
	}
	return 0
}
