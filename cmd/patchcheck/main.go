package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"patchcheck/internal/catalog"
	"patchcheck/internal/config"
	"patchcheck/internal/debug"
	"patchcheck/internal/feed"
	"patchcheck/internal/gate"
	"patchcheck/internal/pipeline"
	"patchcheck/internal/report"
)

const spinnerDelay = 250 * time.Millisecond

func main() {
	os.Exit(realMain())
}

func realMain() int {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		return 1
	}

	versionFlag := flag.Bool("version", false, "Print version information and exit")
	debugFlag := flag.Bool("debug", config.GetBool(config.KeyDebug), "Write a debug log to ~/.patchcheck/debug.log")
	outputFormatFlag := flag.String("output-format", config.GetString(config.KeyOutputFormat), "Summary table style (rich, light, plain)")
	jsonFlag := flag.Bool("json", config.GetBool(config.KeyOutputJSON), "Print one JSON object per game instead of text")
	summaryFlag := flag.Bool("summary", config.GetBool(config.KeyOutputSummary), "Print a summary table after all games are checked")
	concurrencyFlag := flag.Int("concurrency", config.GetInt(config.KeyConcurrency), "Number of games checked at once (1 reports as each game finishes)")
	skipRuntimeCheckFlag := flag.Bool("skip-runtime-check", config.GetBool(config.KeySkipRuntimeCheck), "Skip the Go runtime version check (or set PC_SKIP_RUNTIME_CHECK=true)")
	flag.Parse()

	if *versionFlag {
		printVersion(os.Stdout)
		return 0
	}

	visited := map[string]struct{}{}
	flag.CommandLine.Visit(func(f *flag.Flag) {
		visited[f.Name] = struct{}{}
	})

	opts := computeRuntimeOptions(runtimeFlags{
		debug:            debugFlag,
		outputFormat:     outputFormatFlag,
		jsonOutput:       jsonFlag,
		summary:          summaryFlag,
		concurrency:      concurrencyFlag,
		skipRuntimeCheck: skipRuntimeCheckFlag,
	}, visited)

	if err := debug.Init(opts.debug); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug logging disabled: %v\n", err)
	}
	defer debug.Close()

	if !opts.skipRuntimeCheck {
		info, err := gate.CheckRuntime(gate.Options{})
		if handleRuntimeCheckResult(os.Stderr, info, err) {
			return 1
		}
	}

	extra, err := config.ExtraGames()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fetcher := feed.NewFetcher(
		feed.WithTimeout(opts.feedTimeout),
		feed.WithUserAgent(opts.userAgent),
	)
	games := catalog.New(opts.gamesRoot, extra).Games()

	var newIndicator func() progressIndicator
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		newIndicator = func() progressIndicator {
			return newFeedSpinner(os.Stderr, spinnerDelay)
		}
	}

	run(context.Background(), opts, games, fetcher, os.Stdout, newIndicator)
	return 0
}

// run checks every game and writes the report to w. Per-game failures are
// reported and never abort the run.
func run(ctx context.Context, opts runtimeOptions, games iter.Seq[*catalog.Game], source pipeline.TitleSource, w io.Writer, newIndicator func() progressIndicator) []pipeline.Outcome {
	debug.Logf("run: format=%s json=%t concurrency=%d", opts.outputFormat, opts.jsonOutput, opts.concurrency)

	var primary pipeline.Reporter
	if opts.jsonOutput {
		primary = report.NewJSON(w)
	} else {
		primary = report.NewText(w)
	}
	reporters := pipeline.MultiReporter{primary}

	showSummary := opts.summary && !opts.jsonOutput
	summary := &report.Summary{}
	if showSummary {
		reporters = append(reporters, summary)
	}

	if newIndicator != nil && !opts.jsonOutput && opts.concurrency <= 1 {
		if indicator := newIndicator(); indicator != nil {
			defer indicator.Stop()
			source = progressSource{source: source, indicator: indicator}
		}
	}

	runner := pipeline.NewRunner(source,
		pipeline.WithReporter(reporters),
		pipeline.WithConcurrency(opts.concurrency),
	)
	outcomes := runner.Run(ctx, games)

	if showSummary {
		if rendered := summary.Render(opts.outputFormat); rendered != "" {
			_, _ = fmt.Fprintf(w, "\n%s\n", rendered)
		}
	}
	return outcomes
}

type runtimeFlags struct {
	debug            *bool
	outputFormat     *string
	jsonOutput       *bool
	summary          *bool
	concurrency      *int
	skipRuntimeCheck *bool
}

type runtimeOptions struct {
	debug            bool
	outputFormat     string
	jsonOutput       bool
	summary          bool
	concurrency      int
	skipRuntimeCheck bool

	gamesRoot   string
	feedTimeout time.Duration
	userAgent   string
}

func computeRuntimeOptions(flags runtimeFlags, visited map[string]struct{}) runtimeOptions {
	opts := runtimeOptions{
		debug:            config.GetBool(config.KeyDebug),
		outputFormat:     strings.TrimSpace(config.GetString(config.KeyOutputFormat)),
		jsonOutput:       config.GetBool(config.KeyOutputJSON),
		summary:          config.GetBool(config.KeyOutputSummary),
		concurrency:      config.GetInt(config.KeyConcurrency),
		skipRuntimeCheck: config.GetBool(config.KeySkipRuntimeCheck),
		gamesRoot:        strings.TrimSpace(config.GetString(config.KeyGamesRoot)),
		feedTimeout:      config.GetDuration(config.KeyFeedTimeout),
		userAgent:        strings.TrimSpace(config.GetString(config.KeyFeedUserAgent)),
	}

	if flagWasExplicitlySet("debug", visited) {
		opts.debug = *flags.debug
	}
	if flagWasExplicitlySet("output-format", visited) {
		opts.outputFormat = strings.TrimSpace(*flags.outputFormat)
	}
	if flagWasExplicitlySet("json", visited) {
		opts.jsonOutput = *flags.jsonOutput
	}
	if flagWasExplicitlySet("summary", visited) {
		opts.summary = *flags.summary
	}
	if flagWasExplicitlySet("concurrency", visited) {
		opts.concurrency = *flags.concurrency
	}
	if flagWasExplicitlySet("skip-runtime-check", visited) {
		opts.skipRuntimeCheck = *flags.skipRuntimeCheck
	}

	if opts.concurrency < 1 {
		opts.concurrency = 1
	}
	if opts.feedTimeout < 0 {
		opts.feedTimeout = 0
	}
	return opts
}

func flagWasExplicitlySet(name string, visited map[string]struct{}) bool {
	if _, ok := visited[name]; ok {
		return true
	}
	f := flag.CommandLine.Lookup(name)
	if f == nil {
		return false
	}
	return f.Value.String() != f.DefValue
}
