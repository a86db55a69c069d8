package pipeline

import (
	apperrors "patchcheck/internal/errors"
)

// Status is the terminal state of one game's pipeline.
type Status int

const (
	StatusNotInstalled Status = iota
	StatusVersionUnreadable
	StatusFeedUnavailable
	StatusLatestUnknown
	StatusUpToDate
	StatusUpdateAvailable
)

// String returns the machine-readable name of the status.
func (s Status) String() string {
	switch s {
	case StatusNotInstalled:
		return "not_installed"
	case StatusVersionUnreadable:
		return "version_unreadable"
	case StatusFeedUnavailable:
		return "feed_unavailable"
	case StatusLatestUnknown:
		return "latest_unknown"
	case StatusUpToDate:
		return "up_to_date"
	case StatusUpdateAvailable:
		return "update_available"
	default:
		return "unknown"
	}
}

// Skipped reports whether the game stopped before versions could be compared.
func (s Status) Skipped() bool {
	return s < StatusUpToDate
}

// Code maps a skipped status to its error code.
func (s Status) Code() apperrors.Code {
	switch s {
	case StatusNotInstalled:
		return apperrors.CodeNotInstalled
	case StatusVersionUnreadable:
		return apperrors.CodeVersionUnreadable
	case StatusFeedUnavailable:
		return apperrors.CodeFeedUnavailable
	case StatusLatestUnknown:
		return apperrors.CodeLatestUnknown
	default:
		return apperrors.CodeUnknown
	}
}

// Outcome is the result of running the pipeline for one game.
type Outcome struct {
	Game      string
	Status    Status
	Installed string
	Latest    string
	// Err is the underlying cause for skipped games, when there is one.
	Err error
}

// Failure returns a coded error for skipped outcomes and nil otherwise.
func (o Outcome) Failure() error {
	if !o.Status.Skipped() {
		return nil
	}
	return apperrors.New(o.Status.Code(), "", o.Err)
}

// Reporter receives each outcome as soon as it is final.
type Reporter interface {
	Report(Outcome)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Outcome)

// Report calls f(o).
func (f ReporterFunc) Report(o Outcome) {
	f(o)
}

// MultiReporter fans each outcome out to several reporters in order.
type MultiReporter []Reporter

// Report forwards o to every reporter.
func (m MultiReporter) Report(o Outcome) {
	for _, r := range m {
		if r != nil {
			r.Report(o)
		}
	}
}
