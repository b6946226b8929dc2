package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Annotator receives a copy of every emitted entry. The framework's per-test context implements
// it so that log output is attached to the test that produced it.
//
// Annotate returns an error if the receiver can no longer accept annotations, for instance
// because its test has already finished; the Logger ignores such errors.
type Annotator interface {
	Annotate(kind, description string) error
}

// StepRecorder may optionally be implemented by an Annotator that wants structured notification
// of step boundaries in addition to the log annotations.
type StepRecorder interface {
	BeginStep(name string)
	EndStep(name string, failure error)
}

type sink struct {
	out    io.Writer
	level  Level
	colors bool
	mirror *zap.Logger
	now    func() time.Time
	lock   sync.Mutex
}

// Logger writes leveled, timestamped entries of the form
//
//	[2024-01-02T15:04:05.000Z] [INFO] message
//
// optionally followed by a pretty-printed JSON payload.
//
// A process normally has one root Logger; Logger.For derives a child bound to one test's
// Annotator. Children share the root's writer, level and mirror. SetLevel is not synchronized
// and must not be called while parallel workers are logging.
type Logger struct {
	sink      *sink
	annotator Annotator
}

// New creates a root Logger writing to out at level INFO. If out is nil, os.Stdout is used.
func New(out io.Writer) *Logger {
	if out == nil {
		out = os.Stdout
	}
	return &Logger{sink: &sink{out: out, level: LevelInfo, colors: true, now: time.Now}}
}

// Discard returns a Logger that emits nothing.
func Discard() *Logger {
	l := New(io.Discard)
	l.sink.colors = false
	return l
}

// For returns a child Logger that also annotates entries onto a.
func (l *Logger) For(a Annotator) *Logger {
	return &Logger{sink: l.sink, annotator: a}
}

// SetLevel sets the minimum level that is emitted. It applies to the root and all children.
func (l *Logger) SetLevel(level Level) {
	l.sink.level = level
}

func (l *Logger) Level() Level {
	return l.sink.level
}

// SetColors turns ANSI level colors on or off.
func (l *Logger) SetColors(enabled bool) {
	l.sink.colors = enabled
}

// Mirror sends every emitted entry to z as well, with the payload as a structured field.
func (l *Logger) Mirror(z *zap.Logger) {
	l.sink.mirror = z
}

func (l *Logger) Debug(message string, data ...interface{}) { l.log(LevelDebug, message, data) }
func (l *Logger) Info(message string, data ...interface{})  { l.log(LevelInfo, message, data) }
func (l *Logger) Warn(message string, data ...interface{})  { l.log(LevelWarn, message, data) }
func (l *Logger) Error(message string, data ...interface{}) { l.log(LevelError, message, data) }

func (l *Logger) log(level Level, message string, data []interface{}) {
	s := l.sink
	if level < s.level {
		return
	}
	payload := payloadOf(data)
	formatted := Format(s.now(), level, message, payload)

	s.lock.Lock()
	if s.colors {
		_, _ = level.color().Fprintln(s.out, formatted)
	} else {
		_, _ = fmt.Fprintln(s.out, formatted)
	}
	s.lock.Unlock()

	if s.mirror != nil {
		if ce := s.mirror.Check(level.zapLevel(), message); ce != nil {
			var fields []zap.Field
			if payload != nil {
				fields = append(fields, zap.Any("data", renderable(payload)))
			}
			ce.Write(fields...)
		}
	}

	l.annotate(strings.ToLower(level.String()), formatted)
}

func (l *Logger) annotate(kind, description string) {
	if l.annotator == nil {
		return
	}
	defer func() { _ = recover() }()
	_ = l.annotator.Annotate(kind, description)
}

// Format renders one entry. payload is omitted when nil.
func Format(ts time.Time, level Level, message string, payload interface{}) string {
	line := fmt.Sprintf("[%s] [%s] %s", ts.UTC().Format(timestampFormat), level, message)
	if payload == nil {
		return line
	}
	return line + "\n" + prettyPrint(payload)
}

func payloadOf(data []interface{}) interface{} {
	switch len(data) {
	case 0:
		return nil
	case 1:
		return data[0]
	default:
		return data
	}
}

// renderable turns errors into their message so that they survive JSON encoding.
func renderable(payload interface{}) interface{} {
	if err, ok := payload.(error); ok {
		return err.Error()
	}
	return payload
}

func prettyPrint(payload interface{}) string {
	data, err := json.MarshalIndent(renderable(payload), "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", payload)
	}
	return string(data)
}
