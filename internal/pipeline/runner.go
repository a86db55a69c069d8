// Package pipeline runs the per-game version check.
//
// Each game moves through a linear sequence of steps and stops at the first
// one that fails:
//
//	installed? -> installed version -> feed titles -> latest version -> compare
//
// A failure only ends that game's run; the next game is always attempted.
package pipeline

import (
	"context"
	"iter"
	"slices"

	conciter "github.com/sourcegraph/conc/iter"

	"patchcheck/internal/buildver"
	"patchcheck/internal/catalog"
	"patchcheck/internal/debug"
	"patchcheck/internal/install"
)

// TitleSource returns the post titles of a feed, newest first.
type TitleSource interface {
	Titles(ctx context.Context, url string) ([]string, error)
}

// Runner drives the pipeline for a sequence of games.
type Runner struct {
	source      TitleSource
	reporter    Reporter
	concurrency int

	exists      func(exe catalog.Executable, followsDefaults bool) bool
	readVersion func(path string) (string, error)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithReporter sets where outcomes are sent.
func WithReporter(r Reporter) RunnerOption {
	return func(run *Runner) {
		run.reporter = r
	}
}

// WithConcurrency lets up to n games run at once. Outcomes are still
// reported in catalog order, after every game has finished.
func WithConcurrency(n int) RunnerOption {
	return func(run *Runner) {
		run.concurrency = n
	}
}

// NewRunner creates a Runner that reads feeds from source.
func NewRunner(source TitleSource, opts ...RunnerOption) *Runner {
	r := &Runner{
		source:      source,
		concurrency: 1,
		exists:      install.Exists,
		readVersion: install.ReadVersion,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes every game and returns the outcomes in catalog order.
func (r *Runner) Run(ctx context.Context, games iter.Seq[*catalog.Game]) []Outcome {
	if r.concurrency <= 1 {
		var outcomes []Outcome
		for g := range games {
			o := r.Check(ctx, g)
			r.report(o)
			outcomes = append(outcomes, o)
		}
		return outcomes
	}

	list := slices.Collect(games)
	mapper := conciter.Mapper[*catalog.Game, Outcome]{MaxGoroutines: r.concurrency}
	outcomes := mapper.Map(list, func(g **catalog.Game) Outcome {
		return r.Check(ctx, *g)
	})
	for _, o := range outcomes {
		r.report(o)
	}
	return outcomes
}

// Check runs the pipeline for a single game. It sets g.InstalledVersion once
// the installed build is known.
func (r *Runner) Check(ctx context.Context, g *catalog.Game) Outcome {
	out := Outcome{Game: g.Name}

	if !r.exists(g.Executable, g.FollowsDefaults) {
		debug.Logf("%s: executable missing at %s", g.Name, install.ResolvePath(g.Executable, g.FollowsDefaults))
		out.Status = StatusNotInstalled
		return out
	}

	installed, err := r.readVersion(g.InstalledVersionFile)
	if err != nil {
		debug.Logf("%s: read installed version: %v", g.Name, err)
		out.Status = StatusVersionUnreadable
		out.Err = err
		return out
	}
	if installed == "" {
		debug.Logf("%s: %s has no %s", g.Name, g.InstalledVersionFile, install.BuildVersionKey)
		out.Status = StatusVersionUnreadable
		return out
	}
	g.InstalledVersion = installed
	out.Installed = installed

	titles, err := r.source.Titles(ctx, g.SourceOfTruth)
	if err != nil {
		debug.Logf("%s: fetch feed: %v", g.Name, err)
		out.Status = StatusFeedUnavailable
		out.Err = err
		return out
	}

	latest, ok := buildver.Latest(titles)
	if !ok {
		debug.Logf("%s: no build token in %d titles", g.Name, len(titles))
		out.Status = StatusLatestUnknown
		return out
	}
	out.Latest = latest

	if installed == latest {
		out.Status = StatusUpToDate
	} else {
		out.Status = StatusUpdateAvailable
	}
	debug.Logf("%s: installed %s, latest %s, %s", g.Name, installed, latest, out.Status)
	return out
}

func (r *Runner) report(o Outcome) {
	if r.reporter != nil {
		r.reporter.Report(o)
	}
}
