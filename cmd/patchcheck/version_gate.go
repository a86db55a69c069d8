package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"patchcheck/internal/gate"
)

// handleRuntimeCheckResult prints the outcome of the runtime gate and reports
// whether the run must stop before any game is processed.
func handleRuntimeCheckResult(w io.Writer, info gate.VersionInfo, err error) bool {
	if err == nil {
		return false
	}

	var vErr gate.VersionError
	if errors.As(err, &vErr) {
		switch vErr.Kind {
		case gate.VersionErrorTooOld:
			_, _ = fmt.Fprint(w, formatRuntimeTooOldMessage(info))
			return true
		case gate.VersionErrorParse:
			_, _ = fmt.Fprint(w, formatRuntimeWarning(info, err))
			return false
		}
	}

	_, _ = fmt.Fprintf(w, "Warning: runtime version check failed: %v\n", err)
	return false
}

func formatRuntimeTooOldMessage(info gate.VersionInfo) string {
	installed := orUnknown(info.Installed)
	required := info.Required
	if strings.TrimSpace(required) == "" {
		required = gate.MinGoVersion
	}
	return fmt.Sprintf(`Error: patchcheck expects Go %s or higher, version found: %s

Rebuild patchcheck with a newer Go toolchain, or pass --skip-runtime-check
(PC_SKIP_RUNTIME_CHECK=true) to run anyway.

`, required, installed)
}

func formatRuntimeWarning(info gate.VersionInfo, err error) string {
	errorText := "unknown error"
	if err != nil {
		if text := strings.TrimSpace(err.Error()); text != "" {
			errorText = text
		}
	}
	return fmt.Sprintf(`Warning: could not verify the Go runtime version

Runtime reported: %s
Error: %s

Continuing anyway...

`, orUnknown(info.Runtime), errorText)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
