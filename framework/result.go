package framework

import "time"

// Status is the outcome of one test attempt.
type Status string

const (
	StatusPassed   Status = "passed"
	StatusFailed   Status = "failed"
	StatusSkipped  Status = "skipped"
	StatusTimedOut Status = "timedOut"
)

// RunStatus is the overall outcome of a run.
type RunStatus string

const (
	RunPassed      RunStatus = "passed"
	RunFailed      RunStatus = "failed"
	RunInterrupted RunStatus = "interrupted"
)

type TestID struct {
	Suite string
	Title string
}

func (t TestID) String() string {
	return t.Suite + "/" + t.Title
}

// FailureInfo describes the first failure of a test attempt. The first line of Stack repeats
// the first line of Message; the remaining lines are call frames, innermost first.
type FailureInfo struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// StepRecord is a step that was logged while a test attempt ran.
type StepRecord struct {
	Name   string    `json:"name"`
	Status Status    `json:"status"`
	Start  time.Time `json:"start"`
	Stop   time.Time `json:"stop"`
	Error  string    `json:"error,omitempty"`
	Depth  int       `json:"depth"`
}

// TestOutcome is the result of one test attempt.
type TestOutcome struct {
	ID          TestID
	Status      Status
	StartTime   time.Time
	Duration    time.Duration
	Retry       int
	Error       *FailureInfo
	Errors      []error
	SkipReason  string
	Annotations CapturedOutput
	Steps       []StepRecord
}

// Results holds the final outcome of every test that was run, in declaration order.
type Results struct {
	Tests    []TestOutcome
	Failures []TestOutcome
	Status   RunStatus
	Duration time.Duration
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}
