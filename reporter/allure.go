package reporter

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hemantjanrao/playwrightFW/framework"
)

const (
	allureStageFinished = "finished"
	allureStatusBroken  = "broken"
)

type allureResult struct {
	UUID          string               `json:"uuid"`
	HistoryID     string               `json:"historyId"`
	TestCaseID    string               `json:"testCaseId"`
	Name          string               `json:"name"`
	FullName      string               `json:"fullName"`
	Status        string               `json:"status"`
	StatusDetails *allureStatusDetails `json:"statusDetails,omitempty"`
	Stage         string               `json:"stage"`
	Start         int64                `json:"start"`
	Stop          int64                `json:"stop"`
	Steps         []allureStep         `json:"steps"`
	Labels        []allureLabel        `json:"labels"`
	Parameters    []allureParameter    `json:"parameters"`
}

type allureStatusDetails struct {
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
}

type allureStep struct {
	Name          string               `json:"name"`
	Status        string               `json:"status"`
	StatusDetails *allureStatusDetails `json:"statusDetails,omitempty"`
	Stage         string               `json:"stage"`
	Start         int64                `json:"start"`
	Stop          int64                `json:"stop"`
	Steps         []allureStep         `json:"steps"`
}

type allureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type allureParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AllureWriter writes one <uuid>-result.json file per test attempt, in the format read by
// the allure command line tool.
type AllureWriter struct {
	writer *Writer

	lock    sync.Mutex
	written []string
	errs    []error
}

func NewAllureWriter(w *Writer) *AllureWriter {
	return &AllureWriter{writer: w}
}

func (a *AllureWriter) OnBegin(int, int)             {}
func (a *AllureWriter) OnTestBegin(framework.TestID) {}
func (a *AllureWriter) OnEnd(framework.RunStatus)    {}
func (a *AllureWriter) OnError(error)                {}

func (a *AllureWriter) OnTestEnd(outcome framework.TestOutcome) {
	result := toAllure(outcome)
	path, err := a.writer.WriteJSON(result.UUID+"-result.json", result)
	a.lock.Lock()
	defer a.lock.Unlock()
	if err != nil {
		a.errs = append(a.errs, fmt.Errorf("failed to write allure result for %s: %w", outcome.ID, err))
		return
	}
	a.written = append(a.written, path)
}

// Written returns the paths of the files written so far.
func (a *AllureWriter) Written() []string {
	a.lock.Lock()
	defer a.lock.Unlock()
	return append([]string(nil), a.written...)
}

func (a *AllureWriter) Errors() []error {
	a.lock.Lock()
	defer a.lock.Unlock()
	return append([]error(nil), a.errs...)
}

func allureStatus(s framework.Status) string {
	switch s {
	case framework.StatusPassed, framework.StatusFailed, framework.StatusSkipped:
		return string(s)
	default:
		return allureStatusBroken
	}
}

func toAllure(outcome framework.TestOutcome) allureResult {
	fullName := outcome.ID.Suite + " > " + outcome.ID.Title
	sum := md5.Sum([]byte(fullName))
	start := outcome.StartTime.UnixMilli()
	r := allureResult{
		UUID:       uuid.NewString(),
		HistoryID:  hex.EncodeToString(sum[:]),
		TestCaseID: hex.EncodeToString(sum[:]),
		Name:       outcome.ID.Title,
		FullName:   fullName,
		Status:     allureStatus(outcome.Status),
		Stage:      allureStageFinished,
		Start:      start,
		Stop:       start + outcome.Duration.Milliseconds(),
		Steps:      nestSteps(outcome.Steps),
		Labels: []allureLabel{
			{Name: "suite", Value: outcome.ID.Suite},
			{Name: "framework", Value: "playwrightFW"},
			{Name: "language", Value: "go"},
		},
		Parameters: []allureParameter{},
	}
	if outcome.Retry > 0 {
		r.Parameters = append(r.Parameters, allureParameter{Name: "retry", Value: fmt.Sprint(outcome.Retry)})
	}
	if outcome.Error != nil {
		r.StatusDetails = &allureStatusDetails{Message: outcome.Error.Message, Trace: outcome.Error.Stack}
	} else if outcome.SkipReason != "" {
		r.StatusDetails = &allureStatusDetails{Message: outcome.SkipReason}
	}
	return r
}

// nestSteps rebuilds the step tree from the flat, depth-annotated list.
func nestSteps(flat []framework.StepRecord) []allureStep {
	root := []allureStep{}
	var path []*[]allureStep
	path = append(path, &root)
	for _, s := range flat {
		depth := s.Depth
		if depth > len(path)-1 {
			depth = len(path) - 1
		}
		path = path[:depth+1]
		status := string(s.Status)
		if status == "" {
			status = allureStatusBroken
		}
		step := allureStep{
			Name:   s.Name,
			Status: status,
			Stage:  allureStageFinished,
			Start:  s.Start.UnixMilli(),
			Stop:   s.Stop.UnixMilli(),
			Steps:  []allureStep{},
		}
		if s.Error != "" {
			step.StatusDetails = &allureStatusDetails{Message: s.Error}
		}
		parent := path[depth]
		*parent = append(*parent, step)
		path = append(path, &(*parent)[len(*parent)-1].Steps)
	}
	return root
}
