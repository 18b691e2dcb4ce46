package events

import (
	"context"
	"testing"
	"time"

	"github.com/NutekSecurity/dirnutek/internal/scanerr"
)

func TestSend_DeliversToEvents(t *testing.T) {
	b := NewBus(1)
	if err := b.Send(context.Background(), Event{Kind: FoundURL, Line: "hit"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case ev := <-b.Events():
		if ev.Line != "hit" {
			t.Errorf("expected Line %q, got %q", "hit", ev.Line)
		}
	case <-time.After(time.Second):
		t.Fatal("expected the event to be delivered")
	}
}

func TestSend_FailsAfterCloseSink(t *testing.T) {
	b := NewBus(0)
	b.CloseSink()

	err := b.Send(context.Background(), Event{Kind: Warning})
	if !scanerr.Is(err, scanerr.SinkClosed) {
		t.Fatalf("expected SinkClosed, got %v", err)
	}
}

func TestSend_RespectsContextCancellation(t *testing.T) {
	b := NewBus(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Send(ctx, Event{Kind: Warning})
	if err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
}

func TestControl_StopIsIdempotentAndBroadcasts(t *testing.T) {
	c := NewControl()
	if c.Stopped() {
		t.Error("a fresh Control should not be stopped")
	}

	c.Stop()
	c.Stop() // must not panic on double close

	if !c.Stopped() {
		t.Error("expected Stopped to report true after Stop")
	}

	select {
	case <-c.Done():
	default:
		t.Error("expected Done() to be closed after Stop")
	}
}
