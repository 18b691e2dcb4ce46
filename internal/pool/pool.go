// Package pool implements the Worker Pool (spec §4.5): a bounded set of
// in-flight HTTP requests draining the Work Queue, running every word in
// the wordlist against each dequeued URL before optionally pushing a
// recursion target back onto the queue.
//
// Grounded on the teacher's internal/scanner/worker.go RunWorkerPool: a
// semaphore-style bounded fan-out with a WaitGroup-driven close. Adapted
// from a fixed path slice fed by one producer into a live, self-feeding
// Work Queue where each dequeued item itself fans out across the whole
// wordlist, so Concurrency bounds simultaneous requests rather than
// simultaneous queue items.
package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NutekSecurity/dirnutek/internal/events"
	"github.com/NutekSecurity/dirnutek/internal/queue"
	"github.com/NutekSecurity/dirnutek/internal/scan"
	"github.com/NutekSecurity/dirnutek/internal/scanerr"
	"github.com/NutekSecurity/dirnutek/internal/scanner"
	"github.com/NutekSecurity/dirnutek/internal/template"
	"github.com/NutekSecurity/dirnutek/internal/urlkey"
	"github.com/NutekSecurity/dirnutek/internal/visited"
)

// Pool runs bounded work against a shared Work Queue until told to stop
// or the queue and item-level in-flight count both go to zero.
type Pool struct {
	cfg       *scan.Config
	bus       *events.Bus
	control   *events.Control
	visited   *visited.Set
	q         *queue.Queue
	evaluator *scanner.Evaluator

	sem        chan struct{} // bounds simultaneous HTTP requests
	itemsInFlight int64      // items dequeued but not yet fully processed
	wg         sync.WaitGroup
}

// New builds a Pool bound to cfg's concurrency and HTTP client.
func New(cfg *scan.Config, bus *events.Bus, control *events.Control, visitedSet *visited.Set, q *queue.Queue) *Pool {
	n := cfg.Concurrency
	if n <= 0 {
		n = 1
	}
	return &Pool{
		cfg:       cfg,
		bus:       bus,
		control:   control,
		visited:   visitedSet,
		q:         q,
		evaluator: scanner.New(cfg.Client, cfg.UserAgent, cfg.Filters),
		sem:       make(chan struct{}, n),
	}
}

// InFlight returns the number of queue items currently being processed
// (some of their words may still be running). The Scan Orchestrator's
// drive loop combines this with Queue.IsEmpty to decide when a scan is
// truly finished (spec §4.4, §4.7): a non-zero count here means more
// work could still be pushed onto the queue.
func (p *Pool) InFlight() int {
	return int(atomic.LoadInt64(&p.itemsInFlight))
}

// Wait blocks until every dispatched item has finished every word.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Dispatch pops every item currently queued and spawns a supervisor
// goroutine for each, which then fans its wordlist out across the
// pool's shared request semaphore. It returns immediately; the drive
// loop calls it repeatedly as new items arrive.
//
// An item popped at or beyond MaxDepth is dropped without expansion
// (spec §4.7 drive-loop step 2): it was already recorded in the
// Visited Set when it was enqueued, but fanning its wordlist out would
// produce requests one expansion deeper than MaxDepth allows.
func (p *Pool) Dispatch(ctx context.Context) {
	for {
		item, ok := p.q.PopFront()
		if !ok {
			return
		}

		if p.cfg.MaxDepth > 0 && item.Depth >= p.cfg.MaxDepth {
			continue
		}

		atomic.AddInt64(&p.itemsInFlight, 1)
		p.wg.Add(1)
		go p.runItem(ctx, item)
	}
}

func (p *Pool) runItem(ctx context.Context, item queue.Item) {
	defer func() {
		atomic.AddInt64(&p.itemsInFlight, -1)
		p.wg.Done()
	}()

	var wordWG sync.WaitGroup
	for _, word := range p.cfg.Words {
		if p.control.Stopped() || ctx.Err() != nil {
			break
		}

		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			wordWG.Wait()
			return
		case <-p.control.Done():
			wordWG.Wait()
			return
		}

		wordWG.Add(1)
		go func(word string) {
			defer func() {
				<-p.sem
				wordWG.Done()
			}()
			p.runWord(ctx, item, word)
		}(word)
	}
	wordWG.Wait()
}

func (p *Pool) runWord(ctx context.Context, item queue.Item, word string) {
	if p.cfg.DelayMs > 0 {
		select {
		case <-time.After(time.Duration(p.cfg.DelayMs) * time.Millisecond):
		case <-ctx.Done():
			return
		case <-p.control.Done():
			return
		}
	}

	target, warnings, err := template.Build(p.cfg, item.URL, word)
	for _, w := range warnings {
		_ = p.bus.Send(ctx, events.Event{Kind: events.Warning, Message: w})
	}
	if err != nil {
		// InvalidTarget (a bad reparse after substitution) is a per-word
		// templating hiccup, not a request failure; spec §7 only wants
		// ErrorOccurred for Transport failures.
		kind := events.ErrorOccurred
		if scanerr.Is(err, scanerr.InvalidTarget) {
			kind = events.Warning
		}
		_ = p.bus.Send(ctx, events.Event{Kind: kind, Message: err.Error()})
		return
	}

	outcome, err := p.evaluator.Evaluate(ctx, p.bus, target)
	if err != nil {
		return
	}

	if outcome.Enqueue == nil || item.Depth >= p.cfg.MaxDepth {
		return
	}

	key := urlkey.Canonical(outcome.Enqueue)
	if p.visited.InsertIfAbsent(key) {
		p.q.PushBack(queue.Item{URL: outcome.Enqueue, Depth: item.Depth + 1})
	}
}
