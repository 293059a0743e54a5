package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facebookgo/clock"
	"golang.org/x/sync/errgroup"

	"github.com/five82/wreath/internal/logging"
	"github.com/five82/wreath/internal/memorial"
	"github.com/five82/wreath/internal/state"
	"github.com/five82/wreath/internal/telemetry"
)

const defaultPollInterval = 30 * time.Second

// Refresher is the part of *state.Store the poller drives.
type Refresher interface {
	Refresh(ctx context.Context, v memorial.Variant) error
}

// Poller refreshes both collections at a fixed cadence. Retries within a
// cycle are the store's business; a failed cycle is simply tried again on the
// next tick.
type Poller struct {
	Store    Refresher
	Interval time.Duration
	Clock    clock.Clock
	Log      logging.Logger
	Metrics  *telemetry.Metrics
}

// Start polls once right away and then every Interval until ctx is done. It
// returns immediately; the returned channel closes when the loop exits.
func (p *Poller) Start(ctx context.Context) <-chan struct{} {
	interval := p.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}

	// Created before the goroutine starts so a mock clock never misses a tick.
	ticker := clk.Ticker(interval)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			_ = p.PollOnce(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return done
}

// PollOnce refreshes flowers and leaves concurrently. A failure of one
// collection does not cancel the other; the first error is returned.
func (p *Poller) PollOnce(ctx context.Context) error {
	var g errgroup.Group
	for _, v := range []memorial.Variant{memorial.VariantFlower, memorial.VariantLeaf} {
		g.Go(func() error {
			if err := p.Store.Refresh(ctx, v); err != nil {
				return fmt.Errorf("refresh %s: %w", v.Plural(), err)
			}
			return nil
		})
	}
	err := g.Wait()

	p.Metrics.RecordPoll(ctx, err)
	if err != nil && ctx.Err() == nil && !errors.Is(err, state.ErrClosed) && p.Log != nil {
		p.Log.Warn(ctx, "poll failed", "error", err)
	}
	return err
}
