package framework

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hemantjanrao/playwrightFW/logging"
)

// ErrTestFinished is returned by Annotate once the attempt it belongs to has ended.
var ErrTestFinished = errors.New("test has already finished")

// Context is the state of one test attempt. It implements require.TestingT.
//
// FailNow and Skip end the attempt by panicking with the Context itself, so they must only be
// called from the goroutine running the test body.
type Context struct {
	ctx         context.Context
	id          TestID
	retry       int
	logger      *logging.Logger
	fixtures    *Scope
	annotations CapturingLogger

	lock       sync.Mutex
	failed     bool
	skipped    bool
	skipReason string
	errors     []error
	failure    *FailureInfo
	steps      []StepRecord
	openSteps  []int
	finished   bool
}

// NewContext creates a standalone Context, for driving page objects and fixtures outside of a
// Runner. Use Run to execute a body in it.
func NewContext(ctx context.Context, id TestID, logger *logging.Logger) *Context {
	return newContext(ctx, id, 0, logger)
}

func newContext(ctx context.Context, id TestID, retry int, logger *logging.Logger) *Context {
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Context{ctx: ctx, id: id, retry: retry}
	c.logger = logger.For(c)
	c.fixtures = NewScope(c)
	return c
}

// Run executes action in the Context, recovers FailNow, Skip and unexpected panics, then
// releases every fixture the action acquired.
func (c *Context) Run(action func(*Context)) {
	defer func() {
		for _, err := range c.fixtures.Close() {
			c.addError(err)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			if c.Skipped() {
				return
			}
			if _, ok := r.(*Context); ok {
				if len(c.Errors()) == 0 {
					c.addError(errors.New("test failed with no failure message"))
				}
				return
			}
			c.addError(fmt.Errorf("unexpected panic in test: %+v", r))
		}
	}()

	action(c)
}

func (c *Context) ID() TestID {
	return c.id
}

// Retry is the zero-based attempt number.
func (c *Context) Retry() int {
	return c.retry
}

// Context returns a context that is cancelled when the attempt times out.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Logger returns a Logger whose entries are also annotated onto this attempt.
func (c *Context) Logger() *logging.Logger {
	return c.logger
}

func (c *Context) Fixtures() *Scope {
	return c.fixtures
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.addError(fmt.Errorf(format, args...))
}

func (c *Context) addError(err error) {
	stack := captureStack()
	c.lock.Lock()
	defer c.lock.Unlock()
	c.failed = true
	c.errors = append(c.errors, err)
	if c.failure == nil {
		message := err.Error()
		firstLine := strings.SplitN(message, "\n", 2)[0]
		c.failure = &FailureInfo{
			Message: message,
			Stack:   strings.Join(append([]string{firstLine}, stack...), "\n"),
		}
	}
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.lock.Lock()
	c.skipped = true
	c.lock.Unlock()
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.lock.Lock()
	c.skipReason = reason
	c.lock.Unlock()
	c.Skip()
}

func (c *Context) Failed() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.failed
}

func (c *Context) Skipped() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.skipped
}

func (c *Context) Errors() []error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]error(nil), c.errors...)
}

// FailureMessage describes why the attempt failed so far.
func (c *Context) FailureMessage() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	if len(c.errors) == 0 {
		return "test failed"
	}
	msgs := make([]string, 0, len(c.errors))
	for _, e := range c.errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Debug adds an annotation that is only shown when the attempt's output is dumped.
func (c *Context) Debug(message string, args ...interface{}) {
	c.annotations.Printf(message, args...)
}

func (c *Context) Annotate(kind, description string) error {
	c.lock.Lock()
	finished := c.finished
	c.lock.Unlock()
	if finished {
		return ErrTestFinished
	}
	c.annotations.Add(kind, description)
	return nil
}

func (c *Context) BeginStep(name string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.finished {
		return
	}
	c.steps = append(c.steps, StepRecord{Name: name, Start: time.Now(), Depth: len(c.openSteps)})
	c.openSteps = append(c.openSteps, len(c.steps)-1)
}

func (c *Context) EndStep(name string, failure error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.finished || len(c.openSteps) == 0 {
		return
	}
	last := len(c.openSteps) - 1
	step := &c.steps[c.openSteps[last]]
	c.openSteps = c.openSteps[:last]
	step.Stop = time.Now()
	if failure != nil {
		step.Status = StatusFailed
		step.Error = failure.Error()
	} else {
		step.Status = StatusPassed
	}
}

func (c *Context) finish() {
	c.lock.Lock()
	c.finished = true
	c.lock.Unlock()
}

func (c *Context) outcome(start time.Time, duration time.Duration, timedOut bool, timeout time.Duration) TestOutcome {
	c.lock.Lock()
	defer c.lock.Unlock()
	if timedOut {
		err := fmt.Errorf("Test timeout of %dms exceeded.", timeout.Milliseconds())
		c.failed = true
		c.errors = append([]error{err}, c.errors...)
		c.failure = &FailureInfo{Message: err.Error(), Stack: err.Error()}
	}
	status := StatusPassed
	switch {
	case timedOut:
		status = StatusTimedOut
	case c.skipped:
		status = StatusSkipped
	case c.failed:
		status = StatusFailed
	}
	return TestOutcome{
		ID:          c.id,
		Status:      status,
		StartTime:   start,
		Duration:    duration,
		Retry:       c.retry,
		Error:       c.failure,
		Errors:      append([]error(nil), c.errors...),
		SkipReason:  c.skipReason,
		Annotations: c.annotations.Output(),
		Steps:       append([]StepRecord(nil), c.steps...),
	}
}
