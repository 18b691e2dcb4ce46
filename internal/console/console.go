// Package console implements the line-oriented stdout/stderr Event Bus
// sink described in spec §6: matches go to stdout, diagnostics go to
// stderr with "[*]"/"[!]" prefixes.
//
// Grounded on the teacher's internal/output/text.go (result line
// formatting, quiet handling, optional output file) and progress.go
// (stderr-only lifecycle lines), trimmed to the Event Bus's own already
// fully-formatted FoundUrl lines rather than rebuilding them here.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/NutekSecurity/dirnutek/internal/events"
	"github.com/NutekSecurity/dirnutek/internal/scanerr"
)

// Sink drains an Event Bus to stdout/stderr until the channel closes or
// a broken pipe is detected.
type Sink struct {
	out     *bufio.Writer
	outF    io.Closer
	quiet   bool
	verbose bool

	requests int
	matches  int
	errors   int
}

// New creates a Sink. If resultsFile is non-empty, matches are written
// there instead of stdout (diagnostics always go to stderr). Per spec
// §6, verbose surfaces errors/warnings and prints the full formatted
// match line; non-verbose prints the bare matched URL only.
func New(resultsFile string, quiet, verbose bool) (*Sink, error) {
	var w io.Writer = os.Stdout
	var closer io.Closer
	if resultsFile != "" {
		f, err := os.Create(resultsFile)
		if err != nil {
			return nil, scanerr.Wrap(scanerr.ConfigInvalid, "creating results file", err)
		}
		w = f
		closer = f
	}
	return &Sink{out: bufio.NewWriter(w), outF: closer, quiet: quiet, verbose: verbose}, nil
}

// Run drains bus until its event channel closes. If writing ever fails
// it calls bus.CloseSink, which unblocks any producer still waiting on
// Send, and returns a SinkClosed error (spec §7).
func (s *Sink) Run(bus *events.Bus) error {
	defer s.out.Flush()

	for ev := range bus.Events() {
		if err := s.handle(ev); err != nil {
			bus.CloseSink()
			return err
		}
	}
	return nil
}

// Close releases the results file, if one was opened.
func (s *Sink) Close() error {
	s.out.Flush()
	if s.outF != nil {
		return s.outF.Close()
	}
	return nil
}

// Stats returns the running request/match/error counters for a final
// summary line.
func (s *Sink) Stats() (requests, matches, errors int) {
	return s.requests, s.matches, s.errors
}

func (s *Sink) handle(ev events.Event) error {
	switch ev.Kind {
	case events.ScanStarted:
		if !s.quiet {
			fmt.Fprintf(os.Stderr, "[*] Starting scan (%d words)\n", ev.TotalWords)
		}
	case events.FoundURL:
		s.matches++
		line := ev.URL
		if s.verbose {
			line = ev.Line
		}
		if _, err := fmt.Fprintln(s.out, line); err != nil {
			return scanerr.Wrap(scanerr.SinkClosed, "writing match", err)
		}
		s.out.Flush()
	case events.RequestCompleted:
		s.requests++
	case events.ErrorOccurred:
		s.errors++
		if s.verbose && !s.quiet {
			fmt.Fprintf(os.Stderr, "[!] %s\n", ev.Message)
		}
	case events.Warning:
		if s.verbose && !s.quiet {
			fmt.Fprintf(os.Stderr, "[!] %s\n", ev.Message)
		}
	case events.ScanFinished:
		if !s.quiet {
			fmt.Fprintf(os.Stderr, "[*] Scan finished: %d requests, %d matches, %d errors\n", s.requests, s.matches, s.errors)
		}
	case events.ScanStopped:
		if !s.quiet {
			fmt.Fprintf(os.Stderr, "[*] Scan stopped: %d requests, %d matches, %d errors\n", s.requests, s.matches, s.errors)
		}
	}
	return nil
}
