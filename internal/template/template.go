// Package template implements the Request Templater (spec §4.1): a pure
// function substituting the word into the URL, headers, or body
// depending on fuzz mode. Grounded on the teacher's path-joining
// convention in internal/scanner/requester.go (Do), generalized from a
// single Path mode to all three modes spec §3/§4.1 describe.
package template

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/NutekSecurity/dirnutek/internal/fuzzmode"
	"github.com/NutekSecurity/dirnutek/internal/scan"
	"github.com/NutekSecurity/dirnutek/internal/scanerr"
	"github.com/NutekSecurity/dirnutek/internal/urlkey"
)

const marker = "FUZZ"

// Target is a fully-resolved request ready for the Response Evaluator.
type Target struct {
	Method  string
	URL     *url.URL
	Headers http.Header
	Body    string // empty means no body
}

// Validate performs the mode-level check that doesn't depend on the
// word: Parameter mode requires some query value to contain FUZZ. This
// is checked once per base URL (not per task) so MarkerMissing surfaces
// as a single fatal error for the base, per spec §7.
func Validate(cfg *scan.Config, base *url.URL) error {
	if cfg.Mode != fuzzmode.Parameter {
		return nil
	}
	if _, ok := firstFuzzParam(base.RawQuery); !ok {
		return scanerr.New(scanerr.MarkerMissing, "no query parameter value contains FUZZ")
	}
	return nil
}

// Build substitutes word into base per cfg's mode/method, returning the
// resolved Target plus any non-fatal warnings (malformed headers,
// subdomain mode with no FUZZ marker in the host).
func Build(cfg *scan.Config, base *url.URL, word string) (Target, []string, error) {
	var warnings []string
	target := urlkey.Clone(base)

	suppressPathSub := cfg.Method == http.MethodPost && cfg.Body != ""

	switch cfg.Mode {
	case fuzzmode.Path:
		if !suppressPathSub {
			reparsed, err := applyPathMode(target, word)
			if err != nil {
				return Target{}, warnings, scanerr.Wrap(scanerr.InvalidTarget, "path substitution produced an invalid URL", err)
			}
			target = reparsed
		}

	case fuzzmode.Subdomain:
		if !strings.Contains(target.Host, marker) {
			warnings = append(warnings, "subdomain mode: host has no FUZZ marker, every request hits the same host")
		}
		target.Host = strings.ReplaceAll(target.Host, marker, word)

	case fuzzmode.Parameter:
		newQuery, ok := substituteFirstFuzzParam(target.RawQuery, word)
		if !ok {
			return Target{}, warnings, scanerr.New(scanerr.MarkerMissing, "no query parameter value contains FUZZ")
		}
		target.RawQuery = newQuery
	}

	headers := http.Header{}
	for _, raw := range cfg.Headers {
		name, value, ok := splitHeader(raw)
		if !ok {
			warnings = append(warnings, "skipping malformed header (expected \"Name: Value\"): "+raw)
			continue
		}
		headers.Add(name, strings.ReplaceAll(value, marker, word))
	}

	var body string
	if cfg.Method == http.MethodPost && cfg.Body != "" {
		body = strings.ReplaceAll(cfg.Body, marker, word)
	}

	return Target{
		Method:  cfg.Method,
		URL:     target,
		Headers: headers,
		Body:    body,
	}, warnings, nil
}

// applyPathMode substitutes FUZZ in the path with word if the path has
// the marker; otherwise it appends word, ensuring a trailing slash first
// per spec §4.1.
func applyPathMode(target *url.URL, word string) (*url.URL, error) {
	p := target.Path
	if strings.Contains(p, marker) {
		p = strings.ReplaceAll(p, marker, word)
	} else {
		if !strings.HasSuffix(p, "/") {
			p += "/"
		}
		p += word
	}
	target.Path = p
	return url.Parse(target.String())
}

// substituteFirstFuzzParam replaces FUZZ in the first query value that
// contains it, preserving query order and every other pair verbatim.
func substituteFirstFuzzParam(rawQuery, word string) (string, bool) {
	if rawQuery == "" {
		return rawQuery, false
	}
	pairs := strings.Split(rawQuery, "&")
	found := false
	for i, pair := range pairs {
		if found {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || !strings.Contains(kv[1], marker) {
			continue
		}
		kv[1] = strings.ReplaceAll(kv[1], marker, word)
		pairs[i] = kv[0] + "=" + kv[1]
		found = true
	}
	return strings.Join(pairs, "&"), found
}

func firstFuzzParam(rawQuery string) (string, bool) {
	for _, pair := range strings.Split(rawQuery, "&") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 && strings.Contains(kv[1], marker) {
			return kv[0], true
		}
	}
	return "", false
}

func splitHeader(raw string) (name, value string, ok bool) {
	idx := strings.Index(raw, ":")
	if idx < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(raw[:idx])
	value = strings.TrimSpace(raw[idx+1:])
	if name == "" {
		return "", "", false
	}
	return name, value, true
}
