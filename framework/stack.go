package framework

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

const maxStackFrames = 32

type stackTracer interface {
	StackTrace() errors.StackTrace
}

var internalFramePrefixes = []string{
	"runtime.",
	"github.com/stretchr/testify/",
	"github.com/hemantjanrao/playwrightFW/framework.(*Context)",
	"github.com/hemantjanrao/playwrightFW/framework.(*Scope)",
	"github.com/hemantjanrao/playwrightFW/framework.(*Runner)",
	"github.com/hemantjanrao/playwrightFW/framework.captureStack",
	"github.com/hemantjanrao/playwrightFW/framework.Fixture[",
}

// captureStack returns the caller's frames, innermost first, formatted as
// "at pkg.Func (file.go:42)". Frames belonging to the runtime, to assertion libraries and to
// this package's own failure plumbing are left out.
func captureStack() []string {
	tracer, ok := errors.New("").(stackTracer)
	if !ok {
		return nil
	}
	var lines []string
	for _, frame := range tracer.StackTrace() {
		pc := uintptr(frame) - 1
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		name := fn.Name()
		if isInternalFrame(name) {
			continue
		}
		file, line := fn.FileLine(pc)
		lines = append(lines, fmt.Sprintf("at %s (%s:%d)", shortFuncName(name), file, line))
		if len(lines) == maxStackFrames {
			break
		}
	}
	return lines
}

func isInternalFrame(name string) bool {
	for _, p := range internalFramePrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func shortFuncName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
