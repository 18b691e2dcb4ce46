package queue

import (
	"net/url"
	"testing"
	"time"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parsing %q: %v", raw, err)
	}
	return u
}

func TestPushPopFIFOOrder(t *testing.T) {
	q := New()
	q.PushBack(Item{URL: mustURL(t, "https://example.com/a"), Depth: 0})
	q.PushBack(Item{URL: mustURL(t, "https://example.com/b"), Depth: 0})

	first, ok := q.PopFront()
	if !ok || first.URL.Path != "/a" {
		t.Fatalf("expected /a first, got %+v ok=%v", first, ok)
	}
	second, ok := q.PopFront()
	if !ok || second.URL.Path != "/b" {
		t.Fatalf("expected /b second, got %+v ok=%v", second, ok)
	}
	if _, ok := q.PopFront(); ok {
		t.Error("expected empty queue after draining both items")
	}
}

func TestIsEmpty(t *testing.T) {
	q := New()
	if !q.IsEmpty() {
		t.Error("new queue should be empty")
	}
	q.PushBack(Item{URL: mustURL(t, "https://example.com/"), Depth: 0})
	if q.IsEmpty() {
		t.Error("queue with one item should not be empty")
	}
}

func TestNotify_FiresOnPush(t *testing.T) {
	q := New()
	q.PushBack(Item{URL: mustURL(t, "https://example.com/"), Depth: 0})

	select {
	case <-q.Notify():
	case <-time.After(time.Second):
		t.Fatal("expected a notification after PushBack")
	}
}
