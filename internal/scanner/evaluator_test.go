package scanner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/NutekSecurity/dirnutek/internal/events"
	"github.com/NutekSecurity/dirnutek/internal/filter"
	"github.com/NutekSecurity/dirnutek/internal/template"
)

func drainBus(bus *events.Bus) []events.Event {
	var got []events.Event
	for {
		select {
		case ev := <-bus.Events():
			got = append(got, ev)
		default:
			return got
		}
	}
}

func TestEvaluate_200_RecursesWithTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world\nsecond line"))
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL + "/admin")
	e := New(srv.Client(), "", filter.Set{})
	bus := events.NewBus(10)

	outcome, err := e.Evaluate(context.Background(), bus, template.Target{Method: http.MethodGet, URL: u, Headers: http.Header{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Matched {
		t.Error("expected a match for 200 with no filters")
	}
	if outcome.Enqueue == nil || outcome.Enqueue.Path != "/admin/" {
		t.Errorf("expected recursion target with trailing slash, got %+v", outcome.Enqueue)
	}

	evs := drainBus(bus)
	var sawCompleted, sawFound bool
	for _, ev := range evs {
		if ev.Kind == events.RequestCompleted {
			sawCompleted = true
		}
		if ev.Kind == events.FoundURL {
			sawFound = true
			if ev.Line == "" {
				t.Error("expected a formatted match line")
			}
		}
	}
	if !sawCompleted || !sawFound {
		t.Errorf("expected RequestCompleted and FoundUrl events, got %+v", evs)
	}
}

func TestEvaluate_301_SkipsBodyRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/new-place")
		w.WriteHeader(http.StatusMovedPermanently)
		w.Write([]byte("this body should never be counted"))
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL + "/old")
	client := srv.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	e := New(client, "", filter.Set{})
	bus := events.NewBus(10)

	outcome, err := e.Evaluate(context.Background(), bus, template.Target{Method: http.MethodGet, URL: u, Headers: http.Header{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Matched {
		t.Fatal("expected 301 to match with no filters set")
	}

	var line string
	for _, ev := range drainBus(bus) {
		if ev.Kind == events.FoundURL {
			line = ev.Line
		}
	}
	if line == "" {
		t.Fatal("expected a FoundUrl line")
	}
	if got := "[0W, 0C, 0L]"; !strings.Contains(line, got) {
		t.Errorf("expected 301 metrics to be zeroed, got line %q", line)
	}
	if !strings.Contains(line, "/new-place") {
		t.Errorf("expected the Location header in the match line, got %q", line)
	}
}

func TestEvaluate_404_FilteredByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL + "/missing")
	e := New(srv.Client(), "", filter.Set{})
	bus := events.NewBus(10)

	outcome, err := e.Evaluate(context.Background(), bus, template.Target{Method: http.MethodGet, URL: u, Headers: http.Header{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Matched {
		t.Error("404 should be filtered by the implicit default")
	}
	if outcome.Enqueue != nil {
		t.Error("a non-matching 404 should never recurse")
	}
}

func TestEvaluate_500_DoesNotRecurse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL + "/err")
	e := New(srv.Client(), "", filter.Set{})
	bus := events.NewBus(10)

	outcome, err := e.Evaluate(context.Background(), bus, template.Target{Method: http.MethodGet, URL: u, Headers: http.Header{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Enqueue != nil {
		t.Error("non-2xx/3xx responses should never produce a recursion target")
	}
}

func TestEvaluate_TransportFailure_NoRequestCompleted(t *testing.T) {
	u, _ := url.Parse("http://127.0.0.1:1")
	e := New(http.DefaultClient, "", filter.Set{})
	bus := events.NewBus(10)

	_, err := e.Evaluate(context.Background(), bus, template.Target{Method: http.MethodGet, URL: u, Headers: http.Header{}})
	if err == nil {
		t.Fatal("expected a transport error connecting to a closed port")
	}

	for _, ev := range drainBus(bus) {
		if ev.Kind == events.RequestCompleted {
			t.Error("a transport failure must not emit RequestCompleted")
		}
	}
}

func TestCountMetrics(t *testing.T) {
	words, chars, lines := countMetrics([]byte("hello world\nsecond"))
	if words != 3 {
		t.Errorf("expected 3 words, got %d", words)
	}
	if chars != 18 {
		t.Errorf("expected 18 chars, got %d", chars)
	}
	if lines != 2 {
		t.Errorf("expected 2 lines, got %d", lines)
	}
}

func TestCountMetrics_Empty(t *testing.T) {
	words, chars, lines := countMetrics([]byte(""))
	if words != 0 || chars != 0 || lines != 0 {
		t.Errorf("expected all zeros for empty body, got %d/%d/%d", words, chars, lines)
	}
}
