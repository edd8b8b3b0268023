package batch

import (
	"fmt"
	"time"
)

// InputFile is a discovered file carrying the source extension.
type InputFile struct {
	// Path is the directory-joined path handed to the converter.
	Path string
	// Name is the bare file name.
	Name string
	// Base is Name without its final extension.
	Base string
}

// Status classifies a per-file outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of converting one input.
type Result struct {
	Input      InputFile
	OutputPath string
	Status     Status
	// Detail holds the diagnostic for failures and skips.
	Detail   string
	ExitCode int
	Duration time.Duration
}

// OutputName returns the file name of the produced (or intended) output.
func (r Result) OutputName() string {
	return baseName(r.OutputPath)
}

// Summary renders the status line body, e.g. "show.ass -> show.srt".
func (r Result) Summary() string {
	line := fmt.Sprintf("%s -> %s", r.Input.Name, r.OutputName())
	if r.Status == StatusSuccess || r.Detail == "" {
		return line
	}
	return fmt.Sprintf("%s (%s)", line, r.Detail)
}

// Report describes one batch run.
type Report struct {
	RunID      string
	Dir        string
	SourceExt  string
	TargetExt  string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []Result
	Succeeded  int
	Failed     int
	Skipped    int
	// Empty is set when discovery matched nothing.
	Empty bool
}

// Total returns the number of inputs that produced a result.
func (r Report) Total() int {
	return len(r.Results)
}

// Duration returns the wall-clock length of the run.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Report) add(result Result) {
	r.Results = append(r.Results, result)
	switch result.Status {
	case StatusSuccess:
		r.Succeeded++
	case StatusFailure:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	}
}
