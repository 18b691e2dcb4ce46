// Package cmd wires the CLI surface (spec §6) onto the scan engine.
//
// Grounded on the teacher's cmd/root.go: the flag-group help layout,
// the intSliceValue pflag.Value for comma-separated status/metric
// filters, and SilenceUsage/SilenceErrors plus a top-level Execute.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/NutekSecurity/dirnutek/internal/config"
	"github.com/NutekSecurity/dirnutek/internal/console"
	"github.com/NutekSecurity/dirnutek/internal/events"
	"github.com/NutekSecurity/dirnutek/internal/orchestrator"
	"github.com/NutekSecurity/dirnutek/internal/tui"
	"github.com/NutekSecurity/dirnutek/internal/urlkey"
	"github.com/NutekSecurity/dirnutek/internal/visited"
	"github.com/NutekSecurity/dirnutek/pkg/version"
)

var opts config.Options

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"TARGET", []string{"url", "urls-file", "results-file", "wordlist"}},
	{"REQUEST", []string{"method", "header", "body", "user-agent"}},
	{"DISCOVERY", []string{"max-depth"}},
	{"MATCHERS", []string{"include-status", "words", "chars", "lines"}},
	{"FILTERS", []string{"exclude-status", "exclude-words", "exclude-chars", "exclude-lines"}},
	{"RATE-LIMIT", []string{"threads", "timeout", "delay"}},
	{"TRANSPORT", []string{"proxy", "danger-accept-invalid-certs"}},
	{"OUTPUT", []string{"output", "quiet", "verbose", "tui"}},
}

var rootCmd = &cobra.Command{
	Use:     "dirnutek -u <url> -w <wordlist> [flags]",
	Short:   "Concurrent web content discovery engine",
	Version: version.Version,
	Long: `dirnutek discovers paths, subdomains, and query parameter values by
substituting FUZZ markers from a wordlist into HTTP requests and
reporting responses that survive a configurable filter.`,
	Example: `  dirnutek -u https://example.com/FUZZ -w words.txt
  dirnutek -u https://FUZZ.example.com -w subdomains.txt
  dirnutek -u "https://example.com/search?q=FUZZ" -w words.txt
  dirnutek -l targets.txt -w words.txt -t 50 -x 404,500
  dirnutek -u https://example.com/FUZZ -w words.txt --tui`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(opts.URLs) == 0 && opts.URLsFile == "" && opts.ResultsFile == "" {
			_ = cmd.Help()
			fmt.Fprintln(os.Stderr)
			return fmt.Errorf("target required: use -u, -l, or --results-file")
		}
		for i, u := range opts.URLs {
			if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
				opts.URLs[i] = "http://" + u
			}
		}
		if len(opts.IncludeStatus) > 0 && len(opts.ExcludeStatus) > 0 {
			return fmt.Errorf("--include-status and --exclude-status are mutually exclusive")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return run(ctx)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func run(ctx context.Context) error {
	resolved, err := config.Build(&opts)
	if err != nil {
		return err
	}

	bus := events.NewBus(100)
	control := events.NewControl()
	visitedSet := visited.New()
	baseKeys := make([]string, len(resolved.Bases))
	for i, base := range resolved.Bases {
		baseKeys[i] = urlkey.Canonical(base)
	}
	visitedSet.Seed(baseKeys...)

	var sinkErr error
	sinkDone := make(chan struct{})

	if opts.TUI {
		go func() {
			sinkErr = tui.Run(bus, control)
			close(sinkDone)
		}()
	} else {
		sink, err := console.New(opts.OutputFile, opts.Quiet, opts.Verbose)
		if err != nil {
			return err
		}
		stopCleanup := console.WatchForStop(control)
		defer stopCleanup()
		go func() {
			sinkErr = sink.Run(bus)
			_ = sink.Close()
			close(sinkDone)
		}()
	}

	go func() {
		<-ctx.Done()
		control.Stop()
	}()

	runErr := orchestrator.RunAll(ctx, resolved.Config, bus, control, visitedSet, resolved.Bases)
	bus.Finish()
	<-sinkDone

	if runErr != nil {
		return runErr
	}
	return sinkErr
}

func init() {
	f := rootCmd.Flags()

	f.StringArrayVarP(&opts.URLs, "url", "u", nil, "Target URL, FUZZ marks the substitution point (repeatable)")
	f.StringVarP(&opts.URLsFile, "urls-file", "l", "", "File with one target URL per line")
	f.StringVar(&opts.ResultsFile, "results-file", "", "Extract https?://... targets from a prior results/output file")
	f.StringVarP(&opts.WordlistPath, "wordlist", "w", "", "Wordlist path, one word per line")

	f.StringVarP(&opts.Method, "method", "X", "GET", "HTTP method")
	f.StringArrayVarP(&opts.Headers, "header", "H", nil, "Custom header template \"Name: Value\", FUZZ allowed (repeatable)")
	f.StringVar(&opts.Body, "body", "", "POST body template, FUZZ allowed")
	f.StringVar(&opts.UserAgent, "user-agent", "dirnutek", "User-Agent header")

	f.IntVarP(&opts.MaxDepth, "max-depth", "R", 0, "Maximum recursion depth (0 disables recursion)")

	f.VarP(&intSliceValue{target: &opts.IncludeStatus}, "include-status", "i", "Only show these status codes (comma-separated)")
	f.VarP(&intSliceValue{target: &opts.ExcludeStatus}, "exclude-status", "x", "Hide these status codes (comma-separated, replaces the default 404 exclusion)")
	f.Var(&intSliceValue{target: &opts.ExactWords}, "words", "Only show responses with exactly these word counts (comma-separated)")
	f.Var(&intSliceValue{target: &opts.ExcludeExactWords}, "exclude-words", "Hide responses with exactly these word counts (comma-separated)")
	f.Var(&intSliceValue{target: &opts.ExactChars}, "chars", "Only show responses with exactly these char counts (comma-separated)")
	f.Var(&intSliceValue{target: &opts.ExcludeExactChars}, "exclude-chars", "Hide responses with exactly these char counts (comma-separated)")
	f.Var(&intSliceValue{target: &opts.ExactLines}, "lines", "Only show responses with exactly these line counts (comma-separated)")
	f.Var(&intSliceValue{target: &opts.ExcludeExactLines}, "exclude-lines", "Hide responses with exactly these line counts (comma-separated)")

	f.IntVarP(&opts.Threads, "threads", "t", 10, "Number of concurrent workers")
	f.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "HTTP request timeout")
	f.IntVar(&opts.DelayMs, "delay", 0, "Delay in milliseconds before each request, per worker")

	f.StringVar(&opts.Proxy, "proxy", "", "HTTP/SOCKS proxy URL")
	f.BoolVar(&opts.DangerAcceptInvalidTLS, "danger-accept-invalid-certs", false, "Skip TLS certificate verification")

	f.StringVarP(&opts.OutputFile, "output", "o", "", "Write matches to this file instead of stdout")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress diagnostic lines, matches only")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Surface errors/warnings and print the full formatted match line")
	f.BoolVar(&opts.TUI, "tui", false, "Run the live dashboard instead of line output")

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprint(w, helpBanner(cmd.Version))
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			writeFlagGroup(w, cmd.Flags(), g.flags)
		}
		fmt.Fprintln(w)
	})
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// intSliceValue implements pflag.Value for comma-separated int slices,
// used for the status/metric filter flags. Unlike a plain append, Set
// drops values already present: "-x 404,404,500" and two separate
// "-x 404 -x 500" invocations both settle on one {404,500} filter,
// since a repeated status/count in a filter changes nothing.
type intSliceValue struct {
	target *[]int
}

func (v *intSliceValue) String() string {
	if v.target == nil || len(*v.target) == 0 {
		return ""
	}
	parts := make([]string, len(*v.target))
	for i, val := range *v.target {
		parts[i] = strconv.Itoa(val)
	}
	return strings.Join(parts, ",")
}

func (v *intSliceValue) Set(s string) error {
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid integer %q: %w", p, err)
		}
		if !containsInt(*v.target, n) {
			*v.target = append(*v.target, n)
		}
	}
	return nil
}

func (v *intSliceValue) Type() string { return "ints" }

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// writeFlagGroup prints one help section's flags through a tabwriter so
// the usage column lines up without hand-padding each label.
func writeFlagGroup(w io.Writer, flags *pflag.FlagSet, names []string) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	for _, name := range names {
		fl := flags.Lookup(name)
		if fl == nil {
			continue
		}
		fmt.Fprintf(tw, "   %s\t%s\n", flagLabel(fl), flagUsage(fl))
	}
	tw.Flush()
}

func flagLabel(f *pflag.Flag) string {
	label := "--" + f.Name
	if f.Shorthand != "" {
		label = "-" + f.Shorthand + ", " + label
	}
	if f.Value.Type() != "bool" {
		label += " " + f.Value.Type()
	}
	return label
}

// flagUsage appends a "(default ...)" suffix when the default is a
// meaningful, non-zero value worth repeating in help output.
func flagUsage(f *pflag.Flag) string {
	switch f.DefValue {
	case "", "false", "0", "0s", "[]":
		return f.Usage
	default:
		return fmt.Sprintf("%s (default %s)", f.Usage, f.DefValue)
	}
}

func helpBanner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
  _____  _                 _         _
 |  __ \(_)               | |       | |
 | |  | |_ _ __ _ __  _   _| |_ ___  | | __
 | |  | | | '__| '_ \| | | | __/ _ \ | |/ /
 | |__| | | |  | | | | |_| | ||  __/ |   <
 |_____/|_|_|  |_| |_|\__,_|\__\___| |_|\_\  %s

`, ver)
}
