package framework

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

type CapturedMessage struct {
	Time    time.Time
	Kind    string
	Message string
}

type CapturedOutput []CapturedMessage

// CapturingLogger accumulates the annotations of one test attempt.
type CapturingLogger struct {
	output []CapturedMessage
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.Add("debug", fmt.Sprintf(message, args...))
}

func (l *CapturingLogger) Add(kind, message string) {
	l.lock.Lock()
	l.output = append(l.output, CapturedMessage{Time: time.Now(), Kind: kind, Message: message})
	l.lock.Unlock()
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] (%s) %s\n",
			prefix,
			m.Time.Format(timestampFormat),
			m.Kind,
			m.Message,
		)
	}
}
