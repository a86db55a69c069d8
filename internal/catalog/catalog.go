// Package catalog holds the registry of games patchcheck knows how to track
// and the default install locations used for each of them.
//
// Built-in entries come from a lookup table keyed by game name; adding a game
// means adding a table entry. Games supplied through configuration are
// appended after the built-in entries and are marked as not following the
// defaults, which changes how their executable path is resolved.
package catalog

import (
	"iter"
	"strings"
)

// DefaultRoot is the Epic Games Launcher install root on Windows.
const DefaultRoot = `C:\Program Files\Epic Games`

// Fortnite is the catalog identifier for Fortnite.
const Fortnite = "Fortnite"

// Supported lists the built-in games in report order.
var Supported = []string{Fortnite}

// Executable locates a game's binary on disk.
type Executable struct {
	Name         string `mapstructure:"name" json:"name"`
	AbsolutePath string `mapstructure:"absolute_path" json:"absolute_path"`
}

// Game is one trackable game for the duration of a single run.
// InstalledVersion is filled in by the pipeline and never persisted.
type Game struct {
	Name                 string     `mapstructure:"name" json:"name"`
	Executable           Executable `mapstructure:"executable" json:"executable"`
	SourceOfTruth        string     `mapstructure:"source_of_truth" json:"source_of_truth"`
	InstalledVersionFile string     `mapstructure:"installed_version_file" json:"installed_version_file"`
	InstalledVersion     string     `mapstructure:"-" json:"installed_version,omitempty"`
	FollowsDefaults      bool       `mapstructure:"-" json:"follows_defaults"`
}

// Defaults is the built-in configuration for one catalog entry.
type Defaults struct {
	Name                 string
	Executable           Executable
	SourceOfTruth        string
	InstalledVersionFile string
}

type defaultsFunc func(root string) Defaults

var defaultsTable = map[string]defaultsFunc{
	Fortnite: fortniteDefaults,
}

// Executable names embed their leading separator; see install.ResolvePath.
func fortniteDefaults(root string) Defaults {
	gameDir := root + `\Fortnite`
	return Defaults{
		Name: Fortnite,
		Executable: Executable{
			Name:         `\FortniteClient-Win64-Shipping.exe`,
			AbsolutePath: gameDir + `\FortniteGame\Binaries\Win64`,
		},
		SourceOfTruth:        "https://www.reddit.com/r/FortNiteBR/?f=flair_name%3A%22EPIC%22",
		InstalledVersionFile: gameDir + `\Cloud\cloudcontent.json`,
	}
}

// Lookup returns the defaults for name rooted at root.
// An empty root falls back to DefaultRoot.
func Lookup(name, root string) (Defaults, bool) {
	build, ok := defaultsTable[name]
	if !ok {
		return Defaults{}, false
	}
	root = strings.TrimRight(strings.TrimSpace(root), `\/`)
	if root == "" {
		root = DefaultRoot
	}
	return build(root), true
}

// Catalog produces the games for one run.
type Catalog struct {
	Names []string
	Root  string
	Extra []Game
}

// New returns a catalog over the built-in games plus any user-supplied ones.
func New(root string, extra []Game) Catalog {
	return Catalog{
		Names: Supported,
		Root:  root,
		Extra: extra,
	}
}

// Games yields a freshly constructed Game for each entry, built-in entries
// first. Names without a defaults table entry are skipped.
func (c Catalog) Games() iter.Seq[*Game] {
	return func(yield func(*Game) bool) {
		for _, name := range c.Names {
			d, ok := Lookup(name, c.Root)
			if !ok {
				continue
			}
			g := &Game{
				Name:                 d.Name,
				Executable:           d.Executable,
				SourceOfTruth:        d.SourceOfTruth,
				InstalledVersionFile: d.InstalledVersionFile,
				FollowsDefaults:      true,
			}
			if !yield(g) {
				return
			}
		}
		for _, extra := range c.Extra {
			g := extra
			g.InstalledVersion = ""
			g.FollowsDefaults = false
			if !yield(&g) {
				return
			}
		}
	}
}
