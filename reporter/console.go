// Package reporter turns run lifecycle events into console output and result files.
package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/hemantjanrao/playwrightFW/framework"
)

const ruleWidth = 80

// RunSummary is the state of a Console's counters.
type RunSummary struct {
	Passed   int                 `json:"passed"`
	Failed   int                 `json:"failed"`
	Skipped  int                 `json:"skipped"`
	Total    int                 `json:"total"`
	PassRate float64             `json:"passRate"`
	Duration time.Duration       `json:"duration"`
	Status   framework.RunStatus `json:"status"`
}

// Console prints a human-readable progress log. Its counters are incremented once per test
// attempt that ends as passed, failed or skipped; other statuses, such as timedOut, are shown
// but not counted.
type Console struct {
	// DebugOutputOnFailure dumps the annotations of failed attempts.
	DebugOutputOnFailure bool
	// DebugOutputOnSuccess dumps the annotations of every other attempt.
	DebugOutputOnSuccess bool

	out     io.Writer
	colors  bool
	retries int
	now     func() time.Time

	lock      sync.Mutex
	startTime time.Time
	passed    int
	failed    int
	skipped   int
	total     int
	status    framework.RunStatus
	duration  time.Duration
}

// NewConsole creates a Console writing to out, or to os.Stdout if out is nil. retries is only
// used for the banner.
func NewConsole(out io.Writer, retries int, colors bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out, colors: colors, retries: retries, now: time.Now}
}

func (r *Console) line(attr color.Attribute, format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	if r.colors {
		c := color.New(attr)
		c.EnableColor()
		text = c.Sprint(text)
	}
	fmt.Fprintln(r.out, text)
}

func (r *Console) rule() {
	fmt.Fprintln(r.out, strings.Repeat("=", ruleWidth))
}

func (r *Console) OnBegin(totalTests, workers int) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.startTime = r.now()
	r.passed, r.failed, r.skipped = 0, 0, 0
	r.total = totalTests
	r.status = ""
	r.duration = 0

	fmt.Fprintln(r.out)
	r.rule()
	r.line(color.FgCyan, "  🎭 PLAYWRIGHT TEST EXECUTION STARTED")
	r.rule()
	r.line(color.FgHiBlack, "  Total Tests: %d", totalTests)
	r.line(color.FgHiBlack, "  Workers: %d", workers)
	r.line(color.FgHiBlack, "  Retry: %d", r.retries)
	r.rule()
	fmt.Fprintln(r.out)
}

func (r *Console) OnTestBegin(id framework.TestID) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.line(color.FgHiBlack, "▶ Running: %s > %s", id.Suite, id.Title)
}

func (r *Console) OnTestEnd(outcome framework.TestOutcome) {
	r.lock.Lock()
	defer r.lock.Unlock()

	switch outcome.Status {
	case framework.StatusPassed:
		r.passed++
	case framework.StatusFailed:
		r.failed++
	case framework.StatusSkipped:
		r.skipped++
	}

	name := fmt.Sprintf("%s %s > %s", statusIcon(outcome.Status), outcome.ID.Suite, outcome.ID.Title)
	if r.colors {
		c := color.New(statusColor(outcome.Status))
		c.EnableColor()
		name = c.Sprint(name)
	}
	duration := fmt.Sprintf("(%s)", FormatDuration(outcome.Duration))
	if r.colors {
		c := color.New(color.FgHiBlack)
		c.EnableColor()
		duration = c.Sprint(duration)
	}
	fmt.Fprintf(r.out, "%s %s\n", name, duration)

	if outcome.Status == framework.StatusFailed && outcome.Error != nil {
		r.line(color.FgRed, "  Error: %s", outcome.Error.Message)
		for _, l := range stackPreview(outcome.Error.Stack) {
			r.line(color.FgHiBlack, "  %s", l)
		}
	}
	if outcome.Status == framework.StatusSkipped && outcome.SkipReason != "" {
		r.line(color.FgYellow, "  Reason: %s", outcome.SkipReason)
	}
	if outcome.Retry > 0 {
		r.line(color.FgYellow, "  ⟳ Retry attempt: %d", outcome.Retry)
	}

	failed := outcome.Status == framework.StatusFailed || outcome.Status == framework.StatusTimedOut
	if len(outcome.Annotations) > 0 &&
		((failed && r.DebugOutputOnFailure) || (!failed && r.DebugOutputOnSuccess)) {
		outcome.Annotations.Dump(r.out, "    DEBUG ")
	}
}

// stackPreview returns up to three stack lines after the message line.
func stackPreview(stack string) []string {
	if stack == "" {
		return nil
	}
	lines := strings.Split(stack, "\n")
	if len(lines) <= 1 {
		return nil
	}
	lines = lines[1:]
	if len(lines) > 3 {
		lines = lines[:3]
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines
}

func (r *Console) OnEnd(status framework.RunStatus) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.status = status
	r.duration = r.now().Sub(r.startTime)
	s := r.summaryLocked()

	fmt.Fprintln(r.out)
	r.rule()
	r.line(color.FgCyan, "  📊 TEST EXECUTION SUMMARY")
	r.rule()
	r.line(color.FgGreen, "  ✓ Passed:  %d", s.Passed)
	r.line(color.FgRed, "  ✗ Failed:  %d", s.Failed)
	r.line(color.FgYellow, "  ○ Skipped: %d", s.Skipped)
	r.line(color.FgHiBlack, "  ─ Total:   %d", s.Total)
	r.line(color.FgCyan, "  📈 Pass Rate: %s%%", FormatPassRate(s))
	r.line(color.FgHiBlack, "  ⏱  Duration: %s", FormatDuration(s.Duration))
	statusAttr := color.FgRed
	if status == framework.RunPassed {
		statusAttr = color.FgGreen
	}
	r.line(statusAttr, "  Status: %s", strings.ToUpper(string(status)))
	r.rule()
	fmt.Fprintln(r.out)
}

func (r *Console) OnError(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.line(color.FgRed, "  ❌ Unexpected Error: %s", err)
}

func (r *Console) Summary() RunSummary {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.summaryLocked()
}

func (r *Console) summaryLocked() RunSummary {
	s := RunSummary{
		Passed:   r.passed,
		Failed:   r.failed,
		Skipped:  r.skipped,
		Total:    r.total,
		Duration: r.duration,
		Status:   r.status,
	}
	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total) * 100
	}
	return s
}

// FormatPassRate renders the pass rate with one decimal, or "0" when there were no tests.
func FormatPassRate(s RunSummary) string {
	if s.Total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", s.PassRate)
}

// FormatDuration renders d as "Xm Ys" when it is at least a minute and "Xs" otherwise, truncating
// to whole seconds.
func FormatDuration(d time.Duration) string {
	seconds := int(d / time.Second)
	minutes := seconds / 60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}

func statusIcon(s framework.Status) string {
	switch s {
	case framework.StatusPassed:
		return "✓"
	case framework.StatusFailed:
		return "✗"
	case framework.StatusSkipped:
		return "○"
	case framework.StatusTimedOut:
		return "⏱"
	default:
		return "?"
	}
}

func statusColor(s framework.Status) color.Attribute {
	switch s {
	case framework.StatusPassed:
		return color.FgGreen
	case framework.StatusFailed:
		return color.FgRed
	case framework.StatusSkipped:
		return color.FgYellow
	case framework.StatusTimedOut:
		return color.FgMagenta
	default:
		return color.Reset
	}
}
