// Package httpclient builds the configurable HTTP client the spec
// treats as an external collaborator (§1): timeout, redirect-disable,
// TLS options, proxying. Grounded on the teacher's
// internal/scanner/requester.go transport construction.
package httpclient

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Options configures the shared HTTP client handle.
type Options struct {
	Timeout             time.Duration // design default 10s per spec §5
	Concurrency         int           // sizes MaxIdleConnsPerHost
	InsecureSkipVerify  bool          // --danger-accept-invalid-certs
	Proxy               string
}

// New builds an *http.Client with redirects disabled (so 3xx is
// observable to the Response Evaluator per spec §4.2) and no cookie jar
// (no authenticated session replay per spec §1 Non-goals).
func New(opts Options) (*http.Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify},
		DialContext: (&net.Dialer{
			Timeout: timeout,
		}).DialContext,
		MaxIdleConnsPerHost: maxInt(opts.Concurrency, 1),
		MaxIdleConns:        maxInt(opts.Concurrency, 1),
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		// Redirects are explicitly disabled so 3xx is observable (§4.2, §6).
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
