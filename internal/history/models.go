package history

import "time"

// Run is one recorded batch run.
type Run struct {
	ID           string
	Dir          string
	SourceExt    string
	TargetExt    string
	StartedAt    time.Time
	FinishedAt   time.Time
	Succeeded    int
	Failed       int
	Skipped      int
	ErrorKind    string
	ErrorMessage string
}

// Aborted reports whether the run stopped on an infrastructure error.
func (r Run) Aborted() bool {
	return r.ErrorMessage != ""
}

// Outcome returns a short label for list views.
func (r Run) Outcome() string {
	switch {
	case r.Aborted():
		return "aborted"
	case r.Failed > 0:
		return "completed with failures"
	default:
		return "completed"
	}
}

// FileResult is one per-file row of a recorded run.
type FileResult struct {
	RunID    string
	Seq      int
	Input    string
	Output   string
	Status   string
	ExitCode int
	Detail   string
	Duration time.Duration
}
