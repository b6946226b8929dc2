package reporter

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hemantjanrao/playwrightFW/framework"
)

const ResultsFileName = "results.json"

type StepResult struct {
	Name     string           `json:"name"`
	Status   framework.Status `json:"status"`
	Start    time.Time        `json:"start"`
	Duration time.Duration    `json:"duration"`
	Error    string           `json:"error,omitempty"`
	Depth    int              `json:"depth,omitempty"`
}

type TestResult struct {
	Suite      string                 `json:"suite"`
	Title      string                 `json:"title"`
	Status     framework.Status       `json:"status"`
	Retry      int                    `json:"retry"`
	StartTime  time.Time              `json:"startTime"`
	Duration   time.Duration          `json:"duration"`
	Error      *framework.FailureInfo `json:"error,omitempty"`
	SkipReason string                 `json:"skipReason,omitempty"`
	Steps      []StepResult           `json:"steps,omitempty"`
}

type RunResult struct {
	RunID     string              `json:"runId"`
	StartTime time.Time           `json:"startTime"`
	EndTime   time.Time           `json:"endTime"`
	Duration  time.Duration       `json:"duration"`
	Workers   int                 `json:"workers"`
	Status    framework.RunStatus `json:"status"`
	Summary   RunSummary          `json:"summary"`
	Tests     []TestResult        `json:"tests"`
	Errors    []string            `json:"errors,omitempty"`
}

// JSONWriter records every test attempt and writes them all to results.json when the run ends.
type JSONWriter struct {
	writer *Writer
	now    func() time.Time

	lock   sync.Mutex
	result RunResult
	path   string
	err    error
}

func NewJSONWriter(w *Writer) *JSONWriter {
	return &JSONWriter{writer: w, now: time.Now}
}

func (j *JSONWriter) OnBegin(totalTests, workers int) {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.result = RunResult{
		RunID:     uuid.NewString(),
		StartTime: j.now(),
		Workers:   workers,
		Summary:   RunSummary{Total: totalTests},
	}
}

func (j *JSONWriter) OnTestBegin(framework.TestID) {}

func (j *JSONWriter) OnTestEnd(outcome framework.TestOutcome) {
	j.lock.Lock()
	defer j.lock.Unlock()
	tr := TestResult{
		Suite:      outcome.ID.Suite,
		Title:      outcome.ID.Title,
		Status:     outcome.Status,
		Retry:      outcome.Retry,
		StartTime:  outcome.StartTime,
		Duration:   outcome.Duration,
		Error:      outcome.Error,
		SkipReason: outcome.SkipReason,
	}
	for _, s := range outcome.Steps {
		tr.Steps = append(tr.Steps, StepResult{
			Name:     s.Name,
			Status:   s.Status,
			Start:    s.Start,
			Duration: s.Stop.Sub(s.Start),
			Error:    s.Error,
			Depth:    s.Depth,
		})
	}
	j.result.Tests = append(j.result.Tests, tr)
	switch outcome.Status {
	case framework.StatusPassed:
		j.result.Summary.Passed++
	case framework.StatusFailed:
		j.result.Summary.Failed++
	case framework.StatusSkipped:
		j.result.Summary.Skipped++
	}
}

func (j *JSONWriter) OnEnd(status framework.RunStatus) {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.result.EndTime = j.now()
	j.result.Duration = j.result.EndTime.Sub(j.result.StartTime)
	j.result.Status = status
	j.result.Summary.Status = status
	j.result.Summary.Duration = j.result.Duration
	if j.result.Summary.Total > 0 {
		j.result.Summary.PassRate = float64(j.result.Summary.Passed) / float64(j.result.Summary.Total) * 100
	}
	j.path, j.err = j.writer.WriteJSON(ResultsFileName, j.result)
}

func (j *JSONWriter) OnError(err error) {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.result.Errors = append(j.result.Errors, err.Error())
}

// Result returns the path of the written file, or the error that prevented writing it.
func (j *JSONWriter) Result() (string, error) {
	j.lock.Lock()
	defer j.lock.Unlock()
	if j.path == "" && j.err == nil {
		return "", fmt.Errorf("%s has not been written yet", ResultsFileName)
	}
	return j.path, j.err
}
