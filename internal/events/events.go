// Package events implements the Event Bus (spec §4.6): a bounded,
// multi-producer/single-consumer event channel from workers to a sink,
// and a broadcast control channel back (currently one signal: Stop).
//
// Grounded on the teacher's channel-based worker pool
// (internal/scanner/worker.go) for the bounded-channel-as-backpressure
// idiom, and on the SpaceLeam-idorPlus fuzzer engine
// (pkg/fuzzer/engine.go) for the ctx.Done()-guarded send pattern used
// here to detect a sink that has gone away.
package events

import (
	"context"
	"sync"

	"github.com/NutekSecurity/dirnutek/internal/scanerr"
)

// Kind tags a ScanEvent variant.
type Kind int

const (
	ScanStarted Kind = iota
	FoundURL
	RequestCompleted
	ErrorOccurred
	Warning
	ScanFinished
	ScanStopped
)

func (k Kind) String() string {
	switch k {
	case ScanStarted:
		return "ScanStarted"
	case FoundURL:
		return "FoundUrl"
	case RequestCompleted:
		return "RequestCompleted"
	case ErrorOccurred:
		return "ErrorOccurred"
	case Warning:
		return "Warning"
	case ScanFinished:
		return "ScanFinished"
	case ScanStopped:
		return "ScanStopped"
	default:
		return "Unknown"
	}
}

// Event is the tagged variant of spec §3 "Scan Event". Only the fields
// relevant to Kind are populated.
type Event struct {
	Kind       Kind
	TotalWords int    // ScanStarted
	Line       string // FoundUrl: the formatted match line
	URL        string // FoundUrl: the bare matched URL, for non-verbose sinks
	Message    string // ErrorOccurred / Warning
}

// Bus is the event channel plus a "sink gone" signal; the control
// broadcast is the separate Control type.
type Bus struct {
	events     chan Event
	sinkClosed chan struct{}
	closeOnce  sync.Once
}

// NewBus creates an Event Bus with the given channel capacity (spec §4.6
// suggests 100).
func NewBus(capacity int) *Bus {
	return &Bus{
		events:     make(chan Event, capacity),
		sinkClosed: make(chan struct{}),
	}
}

// Events returns the receive-only event stream for the sink to consume.
func (b *Bus) Events() <-chan Event {
	return b.events
}

// Send delivers ev to the sink, blocking while the channel is full
// because the sink is not keeping up (backpressure per spec §5/§9). Returns a SinkClosed error if the sink
// has announced it is gone (CloseSink), or ctx's error if cancelled
// first.
func (b *Bus) Send(ctx context.Context, ev Event) error {
	select {
	case b.events <- ev:
		return nil
	case <-b.sinkClosed:
		return scanerr.New(scanerr.SinkClosed, "event sink is no longer consuming")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CloseSink marks the sink as gone; subsequent Send calls fail fast
// instead of blocking forever on a dead consumer. Idempotent.
func (b *Bus) CloseSink() {
	b.closeOnce.Do(func() { close(b.sinkClosed) })
}

// Finish closes the event channel. Only call this after every producer
// has returned from its last Send — closing early while a worker is
// still sending is the exact deadlock spec §5 warns against.
func (b *Bus) Finish() {
	close(b.events)
}

// Control is the broadcast-to-many-subscribers Stop signal (spec §3/§4.6).
type Control struct {
	ch   chan struct{}
	once sync.Once
}

// NewControl creates a Control in the running (not stopped) state.
func NewControl() *Control {
	return &Control{ch: make(chan struct{})}
}

// Stop broadcasts Stop to every subscriber. Idempotent.
func (c *Control) Stop() {
	c.once.Do(func() { close(c.ch) })
}

// Stopped performs the non-blocking check a worker does before issuing
// a request (spec §4.5 step 3).
func (c *Control) Stopped() bool {
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}

// Done returns the channel closed when Stop is called, for use in
// select statements alongside I/O and timers.
func (c *Control) Done() <-chan struct{} {
	return c.ch
}
