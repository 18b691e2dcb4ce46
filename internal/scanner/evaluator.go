// Package scanner implements the Response Evaluator (spec §4.2): issues
// the templated request, applies the filter pipeline, and signals
// whether/what to recurse into.
//
// Grounded on the teacher's internal/scanner/requester.go for the
// request/transport shape (method default, header application, body
// read, word/line counting) and on internal/filter/status.go for the
// include/exclude precedence this generalizes.
package scanner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/NutekSecurity/dirnutek/internal/events"
	"github.com/NutekSecurity/dirnutek/internal/filter"
	"github.com/NutekSecurity/dirnutek/internal/scanerr"
	"github.com/NutekSecurity/dirnutek/internal/template"
	"github.com/NutekSecurity/dirnutek/internal/urlkey"
)

// Evaluator executes templated targets and evaluates their responses.
type Evaluator struct {
	Client    *http.Client
	UserAgent string
	Filters   filter.Set
}

// New creates an Evaluator.
func New(client *http.Client, userAgent string, filters filter.Set) *Evaluator {
	return &Evaluator{Client: client, UserAgent: userAgent, Filters: filters}
}

// Outcome carries what the pool needs to know after a successful
// evaluation: whether to recurse, and into what.
type Outcome struct {
	// Matched is true if the response passed every filter (a FoundUrl
	// event was already sent for it).
	Matched bool
	// Enqueue is non-nil if the response should feed recursion (spec
	// §4.2 step 8). Already has the path-mode trailing slash applied
	// for 2xx responses.
	Enqueue *url.URL
}

// Evaluate sends target, applies the filter pipeline, and emits
// RequestCompleted/FoundUrl/ErrorOccurred on bus as it goes (spec §4.2
// steps 1-8). A non-nil error means the request could not be built,
// failed in transport, its body could not be read, or an event could
// not be sent. RequestCompleted is emitted only once a response has
// arrived, so it is absent when the build or the transport failed.
func (e *Evaluator) Evaluate(ctx context.Context, bus *events.Bus, target template.Target) (Outcome, error) {
	req, err := e.buildRequest(ctx, target)
	if err != nil {
		return Outcome{}, scanerr.Wrap(scanerr.InvalidTarget, "building request", err)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		_ = bus.Send(ctx, events.Event{Kind: events.ErrorOccurred, Message: err.Error()})
		return Outcome{}, scanerr.Wrap(scanerr.Transport, "request failed", err)
	}
	defer resp.Body.Close()

	if err := bus.Send(ctx, events.Event{Kind: events.RequestCompleted}); err != nil {
		return Outcome{}, err
	}

	status := resp.StatusCode
	location := ""
	if status == 301 {
		location = locationOf(resp)
	}

	var words, chars, lines int
	if status != 301 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Outcome{}, scanerr.Wrap(scanerr.Transport, "reading response body", err)
		}
		words, chars, lines = countMetrics(body)
	}

	if !e.Filters.Passes(status, words, chars, lines) {
		return Outcome{}, nil
	}

	line := formatMatch(status, target.URL, location, words, chars, lines)
	if err := bus.Send(ctx, events.Event{Kind: events.FoundURL, Line: line, URL: target.URL.String()}); err != nil {
		return Outcome{}, err
	}

	return Outcome{Matched: true, Enqueue: recursionTarget(status, target.URL)}, nil
}

func (e *Evaluator) buildRequest(ctx context.Context, target template.Target) (*http.Request, error) {
	method := target.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if target.Body != "" {
		body = bytes.NewReader([]byte(target.Body))
	}

	req, err := http.NewRequestWithContext(ctx, method, target.URL.String(), body)
	if err != nil {
		return nil, err
	}

	for name, values := range target.Headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if req.Header.Get("User-Agent") == "" && e.UserAgent != "" {
		req.Header.Set("User-Agent", e.UserAgent)
	}

	return req, nil
}

// locationOf returns the Location header, defaulting to "unknown" if
// missing or non-ASCII (spec §4.2 step 3).
func locationOf(resp *http.Response) string {
	loc := resp.Header.Get("Location")
	if loc == "" || !isASCII(loc) {
		return "unknown"
	}
	return loc
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

// countMetrics computes (words, chars, lines) the way spec §4.2 step 5
// describes: words are whitespace-separated tokens, chars are Unicode
// scalars, lines are terminator-delimited with the trailing partial
// line counted iff non-empty.
func countMetrics(body []byte) (words, chars, lines int) {
	text := string(body)
	words = len(strings.Fields(text))
	chars = utf8.RuneCountInString(text)
	lines = countLines(text)
	return
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

func formatMatch(status int, target *url.URL, location string, words, chars, lines int) string {
	statusText := fmt.Sprintf("%d %s", status, http.StatusText(status))
	if location != "" {
		return fmt.Sprintf("[%s] %s -> %s [%dW, %dC, %dL]", statusText, target.String(), location, words, chars, lines)
	}
	return fmt.Sprintf("[%s] %s [%dW, %dC, %dL]", statusText, target.String(), words, chars, lines)
}

// recursionTarget implements spec §4.2 step 8: 2xx recurses with a
// trailing-slash-normalized URL, 3xx recurses as-is, everything else
// doesn't recurse.
func recursionTarget(status int, target *url.URL) *url.URL {
	switch {
	case status >= 200 && status < 300:
		return urlkey.WithTrailingSlash(target)
	case status >= 300 && status < 400:
		return urlkey.Clone(target)
	default:
		return nil
	}
}
