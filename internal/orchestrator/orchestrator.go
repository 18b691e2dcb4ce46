// Package orchestrator implements the Scan Orchestrator (spec §4.7):
// drives one base URL's scan to completion, and sequences multiple base
// URLs sharing one Visited Set and Event Bus.
//
// Grounded on the teacher's internal/runner/runner.go Run/runSingleTarget
// split: a top-level loop over targets with per-target error isolation,
// generalized here to drive the Work Queue/Worker Pool instead of a
// single flat wordlist pass.
package orchestrator

import (
	"context"
	"net/url"
	"time"

	"github.com/NutekSecurity/dirnutek/internal/events"
	"github.com/NutekSecurity/dirnutek/internal/pool"
	"github.com/NutekSecurity/dirnutek/internal/queue"
	"github.com/NutekSecurity/dirnutek/internal/scan"
	"github.com/NutekSecurity/dirnutek/internal/scanerr"
	"github.com/NutekSecurity/dirnutek/internal/template"
	"github.com/NutekSecurity/dirnutek/internal/urlkey"
	"github.com/NutekSecurity/dirnutek/internal/visited"
)

// pollInterval is the small timer the drive loop falls back to
// alongside Queue.Notify, per spec §4.4's termination rule: while the
// queue is empty but items are still in flight, the loop wakes on a
// push or on this tick and checks again.
const pollInterval = 20 * time.Millisecond

// Run drives a single base URL to completion: seeds the queue, dispatches
// workers until the queue is empty and no task is in flight (or Stop is
// broadcast), and emits ScanStarted/ScanFinished/ScanStopped around it.
func Run(ctx context.Context, cfg *scan.Config, bus *events.Bus, control *events.Control, visitedSet *visited.Set, base *url.URL) error {
	if err := template.Validate(cfg, base); err != nil {
		return err
	}

	if err := bus.Send(ctx, events.Event{Kind: events.ScanStarted, TotalWords: len(cfg.Words)}); err != nil {
		return err
	}

	q := queue.New()
	q.PushBack(queue.Item{URL: urlkey.Clone(base), Depth: 0})

	p := pool.New(cfg, bus, control, visitedSet, q)

	drive(ctx, p, q, control)

	p.Wait()

	if control.Stopped() {
		return bus.Send(ctx, events.Event{Kind: events.ScanStopped})
	}
	return bus.Send(ctx, events.Event{Kind: events.ScanFinished})
}

// drive repeatedly dispatches queued work and waits for either a fresh
// push, a tick of pollInterval, cancellation, or Stop, returning once
// the queue is empty and no task is in flight.
func drive(ctx context.Context, p *pool.Pool, q *queue.Queue, control *events.Control) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		p.Dispatch(ctx)

		if q.IsEmpty() && p.InFlight() == 0 {
			return
		}

		select {
		case <-q.Notify():
		case <-ticker.C:
		case <-ctx.Done():
			return
		case <-control.Done():
			return
		}
	}
}

// RunAll sequences Run over every base URL, sharing one Visited Set and
// Event Bus so duplicate hosts/paths across bases are only scanned once
// (spec's multi-target supplement; see SPEC_FULL.md). A base that fails
// with ConfigInvalid or MarkerMissing is reported as ErrorOccurred and
// the remaining bases still run; RunAll then returns the first such
// error. Any other error, or a cancelled context, aborts at once.
func RunAll(ctx context.Context, cfg *scan.Config, bus *events.Bus, control *events.Control, visitedSet *visited.Set, bases []*url.URL) error {
	var baseErr error
	for _, base := range bases {
		if control.Stopped() || ctx.Err() != nil {
			return ctx.Err()
		}

		if err := Run(ctx, cfg, bus, control, visitedSet, base); err != nil {
			if ctx.Err() != nil {
				return err
			}
			if scanerr.Is(err, scanerr.ConfigInvalid) || scanerr.Is(err, scanerr.MarkerMissing) {
				_ = bus.Send(ctx, events.Event{Kind: events.ErrorOccurred, Message: err.Error()})
				if baseErr == nil {
					baseErr = err
				}
				continue
			}
			return err
		}
	}
	return baseErr
}
