package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"patchcheck/internal/catalog"
	apperrors "patchcheck/internal/errors"
	"patchcheck/internal/feed"
)

type stubSource struct {
	mu     sync.Mutex
	titles map[string][]string
	errs   map[string]error
	calls  []string
}

func (s *stubSource) Titles(_ context.Context, url string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, url)
	if err := s.errs[url]; err != nil {
		return nil, err
	}
	return s.titles[url], nil
}

type recorder struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (r *recorder) Report(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

// installGame lays out an executable and version file under a temp dir and
// returns a user-supplied game pointing at them.
func installGame(t *testing.T, name, buildVersionJSON, url string) catalog.Game {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "game.exe"), nil, 0o644); err != nil {
		t.Fatalf("write exe: %v", err)
	}
	versionFile := filepath.Join(dir, "cloudcontent.json")
	if buildVersionJSON != "" {
		if err := os.WriteFile(versionFile, []byte(buildVersionJSON), 0o644); err != nil {
			t.Fatalf("write version file: %v", err)
		}
	}
	return catalog.Game{
		Name:                 name,
		Executable:           catalog.Executable{Name: "game.exe", AbsolutePath: dir},
		SourceOfTruth:        url,
		InstalledVersionFile: versionFile,
	}
}

func gamesOf(games ...catalog.Game) catalog.Catalog {
	return catalog.Catalog{Extra: games}
}

func TestCheckTerminalStates(t *testing.T) {
	source := &stubSource{
		titles: map[string][]string{
			"https://feed/current": {"Chapter news", "Update v22.40 Release Notes", "Older v22.30 Notes"},
			"https://feed/newer":   {"Update v22.40 Release Notes"},
			"https://feed/none":    {"Just chatting", "v22.41 hotfix"},
		},
		errs: map[string]error{
			"https://feed/down": fmt.Errorf("%w: status 503", feed.ErrFeedUnavailable),
		},
	}
	const build = `{"BuildVersion": "++Fortnite+Release-22.40-CL-999"}`
	const oldBuild = `{"BuildVersion": "++Fortnite+Release-22.30-CL-999"}`

	tests := []struct {
		name string
		game func(t *testing.T) catalog.Game
		want Outcome
	}{
		{
			name: "not installed",
			game: func(t *testing.T) catalog.Game {
				g := installGame(t, "Missing", build, "https://feed/current")
				g.Executable.Name = "other.exe"
				return g
			},
			want: Outcome{Game: "Missing", Status: StatusNotInstalled},
		},
		{
			name: "version key absent",
			game: func(t *testing.T) catalog.Game {
				return installGame(t, "NoKey", `{"AppName": "Fortnite"}`, "https://feed/current")
			},
			want: Outcome{Game: "NoKey", Status: StatusVersionUnreadable},
		},
		{
			name: "feed unavailable",
			game: func(t *testing.T) catalog.Game {
				return installGame(t, "Down", build, "https://feed/down")
			},
			want: Outcome{Game: "Down", Status: StatusFeedUnavailable, Installed: "22.40"},
		},
		{
			name: "latest unknown",
			game: func(t *testing.T) catalog.Game {
				return installGame(t, "NoToken", build, "https://feed/none")
			},
			want: Outcome{Game: "NoToken", Status: StatusLatestUnknown, Installed: "22.40"},
		},
		{
			name: "up to date",
			game: func(t *testing.T) catalog.Game {
				return installGame(t, "Current", build, "https://feed/current")
			},
			want: Outcome{Game: "Current", Status: StatusUpToDate, Installed: "22.40", Latest: "22.40"},
		},
		{
			name: "update available",
			game: func(t *testing.T) catalog.Game {
				return installGame(t, "Stale", oldBuild, "https://feed/newer")
			},
			want: Outcome{Game: "Stale", Status: StatusUpdateAvailable, Installed: "22.30", Latest: "22.40"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.game(t)
			got := NewRunner(source).Check(context.Background(), &g)
			got.Err = nil
			if got != tt.want {
				t.Fatalf("Check = %+v, want %+v", got, tt.want)
			}
			if g.InstalledVersion != tt.want.Installed {
				t.Fatalf("InstalledVersion = %q, want %q", g.InstalledVersion, tt.want.Installed)
			}
		})
	}
}

func TestCheckContainsReaderErrors(t *testing.T) {
	source := &stubSource{}

	missing := installGame(t, "NoFile", "", "https://feed/current")
	broken := installGame(t, "Broken", `{"BuildVersion": `, "https://feed/current")

	var rec recorder
	outcomes := NewRunner(source, WithReporter(&rec)).Run(context.Background(), gamesOf(missing, broken).Games())

	if len(outcomes) != 2 {
		t.Fatalf("expected both games attempted, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Status != StatusVersionUnreadable {
			t.Fatalf("%s: status %s, want version_unreadable", o.Game, o.Status)
		}
		if o.Err == nil {
			t.Fatalf("%s: expected reader error to be attached", o.Game)
		}
	}
	if !errors.Is(outcomes[0].Err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist cause, got %v", outcomes[0].Err)
	}
	if len(source.calls) != 0 {
		t.Fatalf("feed must not be fetched after version read fails, got %v", source.calls)
	}
}

func TestRunReportsInCatalogOrder(t *testing.T) {
	source := &stubSource{titles: map[string][]string{"u": {"v1.0"}}}
	var games []catalog.Game
	for i := range 6 {
		games = append(games, installGame(t, fmt.Sprintf("game-%d", i), `{"BuildVersion": "x-1.0-y"}`, "u"))
	}

	for _, n := range []int{1, 4} {
		t.Run(fmt.Sprintf("concurrency=%d", n), func(t *testing.T) {
			var rec recorder
			outcomes := NewRunner(source, WithReporter(&rec), WithConcurrency(n)).
				Run(context.Background(), gamesOf(games...).Games())
			if len(rec.outcomes) != len(games) {
				t.Fatalf("expected %d reports, got %d", len(games), len(rec.outcomes))
			}
			for i, o := range rec.outcomes {
				if o.Game != games[i].Name {
					t.Fatalf("report %d = %s, want %s", i, o.Game, games[i].Name)
				}
				if o.Status != StatusUpToDate {
					t.Fatalf("%s: status %s", o.Game, o.Status)
				}
				if outcomes[i] != o {
					t.Fatalf("returned outcomes differ from reported ones at %d", i)
				}
			}
		})
	}
}

func TestRunEndToEndFeedNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/healthy":
			_, _ = w.Write([]byte(`<html><body>
<shreddit-post post-title="Update v22.40 Release Notes"></shreddit-post>
<shreddit-post post-title="Older v22.30 Notes"></shreddit-post>
</body></html>`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	const build = `{"BuildVersion": "++Game+Release-22.30-CL-999"}`
	broken := installGame(t, "Broken", build, server.URL+"/missing")
	healthy := installGame(t, "Healthy", build, server.URL+"/healthy")

	var rec recorder
	NewRunner(feed.NewFetcher(), WithReporter(&rec)).
		Run(context.Background(), gamesOf(broken, healthy).Games())

	if len(rec.outcomes) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(rec.outcomes))
	}
	feedFailures := 0
	for _, o := range rec.outcomes {
		if o.Status == StatusFeedUnavailable {
			feedFailures++
			if o.Game != "Broken" {
				t.Fatalf("unexpected feed failure for %s", o.Game)
			}
			if !apperrors.IsCode(o.Failure(), apperrors.CodeFeedUnavailable) {
				t.Fatalf("expected feed_unavailable code, got %s", apperrors.CodeOf(o.Failure()))
			}
			if !errors.Is(o.Err, feed.ErrFeedUnavailable) {
				t.Fatalf("expected ErrFeedUnavailable cause, got %v", o.Err)
			}
		}
	}
	if feedFailures != 1 {
		t.Fatalf("expected exactly one feed failure, got %d", feedFailures)
	}
	second := rec.outcomes[1]
	if second.Status != StatusUpdateAvailable || second.Latest != "22.40" || second.Installed != "22.30" {
		t.Fatalf("healthy game outcome = %+v", second)
	}
}

func TestOutcomeFailure(t *testing.T) {
	if err := (Outcome{Status: StatusUpToDate}).Failure(); err != nil {
		t.Fatalf("expected no failure for up to date, got %v", err)
	}
	if err := (Outcome{Status: StatusUpdateAvailable}).Failure(); err != nil {
		t.Fatalf("expected no failure for update available, got %v", err)
	}
	err := Outcome{Status: StatusLatestUnknown}.Failure()
	if !apperrors.IsCode(err, apperrors.CodeLatestUnknown) {
		t.Fatalf("expected latest_unknown code, got %v", err)
	}
}

func TestMultiReporterFansOut(t *testing.T) {
	var a, b recorder
	m := MultiReporter{&a, nil, ReporterFunc(b.Report)}
	m.Report(Outcome{Game: "x"})
	if len(a.outcomes) != 1 || len(b.outcomes) != 1 {
		t.Fatalf("expected both reporters to receive the outcome")
	}
}
