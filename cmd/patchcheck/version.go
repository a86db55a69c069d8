package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"patchcheck/internal/gate"
)

// Version information, injected at build time via ldflags.
var (
	Version   = "dev"
	Build     = "unknown"
	BuildTime = ""
)

func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, "patchcheck version %s", Version)
	if Build != "unknown" && Build != "" {
		_, _ = fmt.Fprintf(w, " (build: %s)", Build)
	}
	if BuildTime != "" {
		_, _ = fmt.Fprintf(w, " [%s]", BuildTime)
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "Go version: %s (requires %s or later)\n", runtime.Version(), gate.MinGoVersion)
	_, _ = fmt.Fprintf(w, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	if Version != "dev" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) > 7 {
			_, _ = fmt.Fprintf(w, "Commit: %s\n", setting.Value[:7])
			return
		}
	}
}
