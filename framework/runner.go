package framework

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hemantjanrao/playwrightFW/logging"
)

const DefaultTestTimeout = 60 * time.Second

type Test struct {
	Title string
	Body  func(*Context)
}

// Suite is a named group of tests. BeforeEach, if set, runs at the start of every attempt of
// every test in the suite, inside the attempt's Context.
type Suite struct {
	Name       string
	BeforeEach func(*Context)
	Tests      []Test
}

type Runner struct {
	Workers  int
	Retries  int
	Timeout  time.Duration
	Filter   Filter
	Observer Observer
	Logger   *logging.Logger

	observerLock sync.Mutex
}

type scheduledTest struct {
	suite *Suite
	test  Test
	id    TestID
}

// Run executes every selected test and returns their final outcomes. A failed or timed-out
// attempt is rerun until it passes or Retries reruns have been made; only the last attempt's
// outcome is kept in the Results. Cancelling ctx stops new attempts from starting.
func (r *Runner) Run(ctx context.Context, suites []Suite) Results {
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	var scheduled []scheduledTest
	for i := range suites {
		s := &suites[i]
		for _, t := range s.Tests {
			id := TestID{Suite: s.Name, Title: t.Title}
			if r.Filter != nil && !r.Filter(id) {
				continue
			}
			scheduled = append(scheduled, scheduledTest{suite: s, test: t, id: id})
		}
	}

	start := time.Now()
	r.observe(func(o Observer) { o.OnBegin(len(scheduled), workers) })

	outcomes := make([]TestOutcome, len(scheduled))
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i := range scheduled {
		g.Go(func() error {
			outcomes[i] = r.runTest(ctx, scheduled[i])
			return nil
		})
	}
	_ = g.Wait()

	results := Results{Tests: outcomes, Status: RunPassed, Duration: time.Since(start)}
	for _, o := range outcomes {
		if o.Status == StatusFailed || o.Status == StatusTimedOut {
			results.Failures = append(results.Failures, o)
			results.Status = RunFailed
		}
	}
	if ctx.Err() != nil {
		results.Status = RunInterrupted
	}
	r.observe(func(o Observer) { o.OnEnd(results.Status) })
	return results
}

func (r *Runner) runTest(ctx context.Context, st scheduledTest) TestOutcome {
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return TestOutcome{ID: st.id, Status: StatusSkipped, Retry: attempt, SkipReason: "run was interrupted"}
		}
		outcome := r.runAttempt(ctx, st, attempt)
		if outcome.Status == StatusPassed || outcome.Status == StatusSkipped || attempt >= r.Retries {
			return outcome
		}
	}
}

func (r *Runner) runAttempt(parent context.Context, st scheduledTest, attempt int) TestOutcome {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTestTimeout
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	c := newContext(ctx, st.id, attempt, r.Logger)
	r.observe(func(o Observer) { o.OnTestBegin(st.id) })

	start := time.Now()
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(func(c *Context) {
			if st.suite.BeforeEach != nil {
				st.suite.BeforeEach(c)
			}
			st.test.Body(c)
		})
	}()

	timedOut := false
	timer := time.NewTimer(timeout)
	select {
	case <-done:
		timer.Stop()
	case <-timer.C:
		timedOut = true
		cancel()
		<-done
	}
	duration := time.Since(start)
	c.finish()

	outcome := c.outcome(start, duration, timedOut, timeout)
	r.observe(func(o Observer) { o.OnTestEnd(outcome) })
	return outcome
}

// ReportError forwards an error that is not attributable to any single test.
func (r *Runner) ReportError(err error) {
	r.observe(func(o Observer) { o.OnError(err) })
}

func (r *Runner) observe(fn func(Observer)) {
	o := r.Observer
	if o == nil {
		o = nullObserver{}
	}
	r.observerLock.Lock()
	defer r.observerLock.Unlock()
	fn(o)
}
