package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"patchcheck/internal/gate"
)

func TestHandleRuntimeCheckResultNoError(t *testing.T) {
	var buf bytes.Buffer
	if exit := handleRuntimeCheckResult(&buf, gate.VersionInfo{}, nil); exit {
		t.Fatalf("expected no exit on nil error")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestHandleRuntimeCheckResultTooOld(t *testing.T) {
	var buf bytes.Buffer
	info := gate.VersionInfo{Runtime: "go1.21.0", Installed: "1.21.0", Required: "1.23.0"}
	err := gate.VersionError{Kind: gate.VersionErrorTooOld, Info: info}
	if exit := handleRuntimeCheckResult(&buf, info, err); !exit {
		t.Fatalf("expected exit for outdated runtime")
	}
	out := buf.String()
	if !strings.Contains(out, "expects Go 1.23.0 or higher") || !strings.Contains(out, "version found: 1.21.0") {
		t.Fatalf("expected both versions in output: %q", out)
	}
}

func TestHandleRuntimeCheckResultParseWarning(t *testing.T) {
	var buf bytes.Buffer
	info := gate.VersionInfo{Runtime: "gccgo"}
	err := gate.VersionError{Kind: gate.VersionErrorParse, Info: info, Err: errors.New("no version found")}
	if exit := handleRuntimeCheckResult(&buf, info, err); exit {
		t.Fatalf("expected parse failure to continue")
	}
	out := buf.String()
	if !strings.Contains(out, "could not verify") || !strings.Contains(out, "gccgo") {
		t.Fatalf("expected warning text, got %q", out)
	}
}

func TestHandleRuntimeCheckResultGenericError(t *testing.T) {
	var buf bytes.Buffer
	if exit := handleRuntimeCheckResult(&buf, gate.VersionInfo{}, errors.New("boom")); exit {
		t.Fatalf("expected generic error to continue")
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected error text, got %q", buf.String())
	}
}
