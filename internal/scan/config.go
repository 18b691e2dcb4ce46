// Package scan holds the frozen Scan Config (spec §3) shared by the
// Templater, Evaluator, and Worker Pool once a scan begins.
package scan

import (
	"net/http"

	"github.com/NutekSecurity/dirnutek/internal/filter"
	"github.com/NutekSecurity/dirnutek/internal/fuzzmode"
)

// Config bundles everything the scan engine needs once construction is
// done. It is never mutated after Run starts.
type Config struct {
	Client    *http.Client
	UserAgent string

	Words  []string
	Method string
	Mode   fuzzmode.Mode

	// Headers holds raw "Name: Value" templates, FUZZ allowed in the value.
	Headers []string
	// Body is an optional POST body template, FUZZ allowed. Empty means
	// no body templating; only meaningful when Method is POST.
	Body string

	DelayMs     int
	Concurrency int
	// MaxDepth == 0 means no recursion beyond depth 0 (spec §3, §9).
	MaxDepth int

	Filters filter.Set
}
