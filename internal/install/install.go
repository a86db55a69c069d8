// Package install inspects a local game installation: whether the game
// executable is present, and which build the launcher last installed.
package install

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"patchcheck/internal/catalog"
)

// BuildVersionKey is the metadata key holding the installed build string.
const BuildVersionKey = "BuildVersion"

// ErrMalformedBuildVersion is returned when BuildVersion is present but does
// not carry a second '-' separated segment.
var ErrMalformedBuildVersion = errors.New("malformed build version")

// ResolvePath returns the path checked for exe.
//
// Catalog defaults store the executable name with its leading separator
// already attached, so the two parts are concatenated as-is. User-supplied
// entries are joined as directory plus child. The two modes stay separate.
func ResolvePath(exe catalog.Executable, followsDefaults bool) string {
	if followsDefaults {
		return exe.AbsolutePath + exe.Name
	}
	return filepath.Join(exe.AbsolutePath, exe.Name)
}

// Exists reports whether the executable is present on disk.
// Any stat failure is treated as absent.
func Exists(exe catalog.Executable, followsDefaults bool) bool {
	_, err := os.Stat(ResolvePath(exe, followsDefaults))
	return err == nil
}

// ReadVersion reads the installed build identifier from the metadata file at
// path. A file without a BuildVersion key yields "" and no error. A missing
// file, invalid JSON or malformed BuildVersion is returned to the caller.
func ReadVersion(path string) (string, error) {
	//nolint:gosec // G304: path comes from the game catalog
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read version file: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parse version file %s: %w", path, err)
	}

	raw, ok := doc[BuildVersionKey]
	if !ok {
		return "", nil
	}
	build, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, not a string", ErrMalformedBuildVersion, BuildVersionKey, raw)
	}
	return ParseBuildVersion(build)
}

// ParseBuildVersion returns the second '-' separated segment of build,
// e.g. "++Fortnite+Release-22.40-CL-1234" yields "22.40".
func ParseBuildVersion(build string) (string, error) {
	parts := strings.Split(build, "-")
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: %q", ErrMalformedBuildVersion, build)
	}
	return parts[1], nil
}
