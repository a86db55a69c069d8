// Package gate checks the environment preconditions that must hold before
// any game is processed.
package gate

import (
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	apperrors "patchcheck/internal/errors"
)

// MinGoVersion is the oldest Go runtime patchcheck supports.
const MinGoVersion = "1.23.0"

// VersionInfo captures the runtime versions seen during the check.
type VersionInfo struct {
	Runtime   string
	Installed string
	Required  string
}

// VersionErrorKind categorizes gate failures.
type VersionErrorKind string

const (
	VersionErrorUnknown VersionErrorKind = "unknown"
	VersionErrorParse   VersionErrorKind = "parse_failed"
	VersionErrorTooOld  VersionErrorKind = "too_old"
)

// VersionError wraps failures with their category and optional inner error.
type VersionError struct {
	Kind VersionErrorKind
	Info VersionInfo
	Err  error
}

// Error implements the error interface.
func (e VersionError) Error() string {
	switch {
	case e.Err != nil:
		return e.Err.Error()
	case e.Kind == VersionErrorTooOld:
		return "go runtime version too old"
	case e.Kind == VersionErrorParse:
		return "failed to parse go runtime version"
	default:
		return "runtime version check failed"
	}
}

// Unwrap exposes the wrapped error.
func (e VersionError) Unwrap() error {
	return e.Err
}

// Options configure CheckRuntime. Zero values use the running runtime and
// MinGoVersion.
type Options struct {
	Runtime    string
	MinVersion string
}

// CheckRuntime validates that the Go runtime satisfies the minimum version.
func CheckRuntime(opts Options) (VersionInfo, error) {
	current := strings.TrimSpace(opts.Runtime)
	if current == "" {
		current = runtime.Version()
	}
	minVersion := strings.TrimSpace(opts.MinVersion)
	if minVersion == "" {
		minVersion = MinGoVersion
	}

	info := VersionInfo{Runtime: current}

	minSemver, normalizedMin, err := parseSemver(minVersion)
	if err != nil {
		return info, VersionError{
			Kind: VersionErrorParse,
			Info: info,
			Err:  fmt.Errorf("parse minimum version %q: %w", minVersion, err),
		}
	}
	info.Required = normalizedMin

	installed, normalizedInstalled, err := parseSemver(current)
	if err != nil {
		return info, VersionError{
			Kind: VersionErrorParse,
			Info: info,
			Err:  err,
		}
	}
	info.Installed = normalizedInstalled

	if installed.compare(minSemver) < 0 {
		return info, VersionError{
			Kind: VersionErrorTooOld,
			Info: info,
			Err: apperrors.New(apperrors.CodeRuntimeTooOld,
				fmt.Sprintf("go runtime %s is older than required %s", normalizedInstalled, normalizedMin), nil),
		}
	}

	return info, nil
}

// Go release strings omit a zero patch ("go1.24") and may carry a suffix
// ("go1.25rc1", "devel go1.26-abcdef").
var semverRegex = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

type semver struct {
	major int
	minor int
	patch int
}

func (s semver) compare(other semver) int {
	if s.major != other.major {
		return compareInt(s.major, other.major)
	}
	if s.minor != other.minor {
		return compareInt(s.minor, other.minor)
	}
	return compareInt(s.patch, other.patch)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func parseSemver(input string) (semver, string, error) {
	match := semverRegex.FindStringSubmatch(strings.TrimSpace(input))
	if match == nil {
		return semver{}, "", fmt.Errorf("no version found in %q", strings.TrimSpace(input))
	}
	major, err := strconv.Atoi(match[1])
	if err != nil {
		return semver{}, "", fmt.Errorf("parse major %q: %w", match[1], err)
	}
	minor, err := strconv.Atoi(match[2])
	if err != nil {
		return semver{}, "", fmt.Errorf("parse minor %q: %w", match[2], err)
	}
	patch := 0
	if match[3] != "" {
		patch, err = strconv.Atoi(match[3])
		if err != nil {
			return semver{}, "", fmt.Errorf("parse patch %q: %w", match[3], err)
		}
	}
	return semver{major: major, minor: minor, patch: patch}, fmt.Sprintf("%d.%d.%d", major, minor, patch), nil
}
