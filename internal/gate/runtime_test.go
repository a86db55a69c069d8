package gate

import (
	"errors"
	"testing"

	apperrors "patchcheck/internal/errors"
)

func TestParseSemverGoReleaseStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"go1.25.3", "1.25.3"},
		{"go1.24", "1.24.0"},
		{"go1.25rc1", "1.25.0"},
		{"devel go1.26-abcdef Tue Jan 1", "1.26.0"},
	}
	for _, tt := range tests {
		_, got, err := parseSemver(tt.input)
		if err != nil {
			t.Fatalf("parseSemver(%q) returned error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("parseSemver(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseSemverRejectsInvalid(t *testing.T) {
	if _, _, err := parseSemver("no version here"); err == nil {
		t.Fatalf("expected error for invalid input")
	}
}

func TestSemverCompare(t *testing.T) {
	base := semver{major: 1, minor: 23, patch: 0}
	if cmp := base.compare(semver{major: 1, minor: 23}); cmp != 0 {
		t.Fatalf("expected equality, got %d", cmp)
	}
	if cmp := base.compare(semver{major: 1, minor: 23, patch: 1}); cmp >= 0 {
		t.Fatalf("expected less-than comparison, got %d", cmp)
	}
	if cmp := base.compare(semver{major: 1, minor: 22, patch: 9}); cmp <= 0 {
		t.Fatalf("expected greater-than comparison, got %d", cmp)
	}
}

func TestCheckRuntimeCurrentPasses(t *testing.T) {
	info, err := CheckRuntime(Options{})
	if err != nil {
		t.Fatalf("expected running toolchain to satisfy gate, got %v", err)
	}
	if info.Required != MinGoVersion {
		t.Fatalf("Required = %q, want %q", info.Required, MinGoVersion)
	}
}

func TestCheckRuntimeTooOld(t *testing.T) {
	info, err := CheckRuntime(Options{Runtime: "go1.21.4", MinVersion: "1.23.0"})
	var vErr VersionError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected VersionError, got %v", err)
	}
	if vErr.Kind != VersionErrorTooOld {
		t.Fatalf("expected too old, got %s", vErr.Kind)
	}
	if info.Installed != "1.21.4" || info.Required != "1.23.0" {
		t.Fatalf("unexpected info %+v", info)
	}
	if !apperrors.IsCode(err, apperrors.CodeRuntimeTooOld) {
		t.Fatalf("expected runtime_too_old code, got %s", apperrors.CodeOf(err))
	}
}

func TestCheckRuntimeUnparseable(t *testing.T) {
	_, err := CheckRuntime(Options{Runtime: "gccgo"})
	var vErr VersionError
	if !errors.As(err, &vErr) || vErr.Kind != VersionErrorParse {
		t.Fatalf("expected parse VersionError, got %v", err)
	}
}

func TestCheckRuntimeBadMinimum(t *testing.T) {
	_, err := CheckRuntime(Options{Runtime: "go1.25.0", MinVersion: "latest"})
	var vErr VersionError
	if !errors.As(err, &vErr) || vErr.Kind != VersionErrorParse {
		t.Fatalf("expected parse VersionError, got %v", err)
	}
}
