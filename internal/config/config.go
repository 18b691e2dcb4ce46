// Package config holds the CLI-bound Options and its translation into a
// scan.Config plus the resolved list of base URLs.
//
// Grounded on the teacher's internal/config/config.go Options struct,
// trimmed to the surface spec §6 names and extended with the
// multi-base-URL / TLS / proxy supplements described in SPEC_FULL.md.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/NutekSecurity/dirnutek/internal/filter"
	"github.com/NutekSecurity/dirnutek/internal/fuzzmode"
	"github.com/NutekSecurity/dirnutek/internal/httpclient"
	"github.com/NutekSecurity/dirnutek/internal/scan"
	"github.com/NutekSecurity/dirnutek/internal/scanerr"
	"github.com/NutekSecurity/dirnutek/internal/wordlist"
)

// Options holds every flag the CLI accepts, before translation.
type Options struct {
	URLs        []string
	URLsFile    string
	ResultsFile string

	WordlistPath string

	Method  string
	Headers []string
	Body    string

	Threads int
	Timeout time.Duration
	DelayMs int

	MaxDepth int

	IncludeStatus     []int
	ExcludeStatus     []int
	ExactWords        []int
	ExcludeExactWords []int
	ExactChars        []int
	ExcludeExactChars []int
	ExactLines        []int
	ExcludeExactLines []int

	UserAgent              string
	Proxy                  string
	DangerAcceptInvalidTLS bool

	OutputFile string
	Quiet      bool
	Verbose    bool
	TUI        bool
}

// Resolved bundles everything Run needs: the frozen scan.Config and the
// ordered list of base URLs to scan.
type Resolved struct {
	Config *scan.Config
	Bases  []*url.URL
}

// Build validates opts and translates it into a Resolved scan plan.
// Every validation failure is a ConfigInvalid error (spec §7).
func Build(opts *Options) (*Resolved, error) {
	rawTargets, err := resolveTargetStrings(opts)
	if err != nil {
		return nil, err
	}
	if len(rawTargets) == 0 {
		return nil, scanerr.New(scanerr.ConfigInvalid, "no target specified (-u, --urls-file, or --results-file)")
	}

	bases := make([]*url.URL, 0, len(rawTargets))
	for _, raw := range rawTargets {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return nil, scanerr.Wrap(scanerr.ConfigInvalid, fmt.Sprintf("invalid target URL %q", raw), err)
		}
		bases = append(bases, u)
	}

	if opts.WordlistPath == "" {
		return nil, scanerr.New(scanerr.ConfigInvalid, "a wordlist is required (-w)")
	}
	words, err := wordlist.Load(opts.WordlistPath)
	if err != nil {
		return nil, scanerr.Wrap(scanerr.ConfigInvalid, "loading wordlist", err)
	}
	if len(words) == 0 {
		return nil, scanerr.New(scanerr.ConfigInvalid, "wordlist is empty")
	}

	threads := opts.Threads
	if threads <= 0 {
		threads = 10
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client, err := httpclient.New(httpclient.Options{
		Timeout:            timeout,
		Concurrency:        threads,
		InsecureSkipVerify: opts.DangerAcceptInvalidTLS,
		Proxy:              opts.Proxy,
	})
	if err != nil {
		return nil, scanerr.Wrap(scanerr.ConfigInvalid, "building HTTP client", err)
	}

	method := opts.Method
	if method == "" {
		method = "GET"
	}

	mode := fuzzmode.Infer(rawTargets[0])

	cfg := &scan.Config{
		Client:      client,
		UserAgent:   opts.UserAgent,
		Words:       words,
		Method:      method,
		Mode:        mode,
		Headers:     opts.Headers,
		Body:        opts.Body,
		DelayMs:     opts.DelayMs,
		Concurrency: threads,
		MaxDepth:    opts.MaxDepth,
		Filters: filter.Set{
			IncludeStatus:     opts.IncludeStatus,
			ExcludeStatus:     opts.ExcludeStatus,
			ExactWords:        opts.ExactWords,
			ExcludeExactWords: opts.ExcludeExactWords,
			ExactChars:        opts.ExactChars,
			ExcludeExactChars: opts.ExcludeExactChars,
			ExactLines:        opts.ExactLines,
			ExcludeExactLines: opts.ExcludeExactLines,
		},
	}

	return &Resolved{Config: cfg, Bases: bases}, nil
}

// resolveTargetStrings builds the raw target list from -u (repeatable),
// --urls-file, and --results-file, normalizing bare hosts to http://
// like the teacher's target-file loader does.
func resolveTargetStrings(opts *Options) ([]string, error) {
	var targets []string

	targets = append(targets, opts.URLs...)

	if opts.URLsFile != "" {
		if _, err := os.Stat(opts.URLsFile); err != nil {
			return nil, scanerr.Wrap(scanerr.ConfigInvalid, "reading urls file", err)
		}
		urls, err := wordlist.LoadURLs(opts.URLsFile)
		if err != nil {
			return nil, scanerr.Wrap(scanerr.ConfigInvalid, "reading urls file", err)
		}
		targets = append(targets, normalizeBareHosts(urls)...)
	}

	if opts.ResultsFile != "" {
		// spec §6: --results-file extracts https?://\S+ per line, so a
		// prior run's saved matches can seed a new, deeper scan.
		if _, err := os.Stat(opts.ResultsFile); err != nil {
			return nil, scanerr.Wrap(scanerr.ConfigInvalid, "reading results file", err)
		}
		urls, err := wordlist.ExtractURLs(opts.ResultsFile)
		if err != nil {
			return nil, scanerr.Wrap(scanerr.ConfigInvalid, "reading results file", err)
		}
		targets = append(targets, urls...)
	}

	return targets, nil
}

func normalizeBareHosts(urls []string) []string {
	out := make([]string, len(urls))
	for i, u := range urls {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			u = "http://" + u
		}
		out[i] = u
	}
	return out
}
