package logging

import (
	"errors"
	"fmt"
)

// Step runs work as a named step: it logs "Starting step", then "Completed step" or
// "Failed step". A failure is returned (or, for a panic, re-panicked) exactly as work produced
// it; Step never wraps or swallows it.
func (l *Logger) Step(name string, work func() error) error {
	_, err := StepValue(l, name, func() (struct{}, error) {
		return struct{}{}, work()
	})
	return err
}

// StepValue is Step for work that produces a result, which is returned unmodified.
func StepValue[R any](l *Logger, name string, work func() (R, error)) (R, error) {
	recorder, _ := l.annotator.(StepRecorder)
	if recorder != nil {
		recorder.BeginStep(name)
	}
	l.Info("Starting step: " + name)

	finished := false
	defer func() {
		if finished {
			return
		}
		if r := recover(); r != nil {
			failure := describePanic(r)
			l.Error("Failed step: "+name, failure)
			if recorder != nil {
				recorder.EndStep(name, failure)
			}
			panic(r)
		}
	}()

	result, err := work()
	finished = true
	if err != nil {
		l.Error("Failed step: "+name, err)
		if recorder != nil {
			recorder.EndStep(name, err)
		}
		return result, err
	}
	l.Info("Completed step: " + name)
	if recorder != nil {
		recorder.EndStep(name, nil)
	}
	return result, nil
}

type failureDescriber interface {
	FailureMessage() string
}

func describePanic(r interface{}) error {
	switch v := r.(type) {
	case error:
		return v
	case failureDescriber:
		return errors.New(v.FailureMessage())
	default:
		return fmt.Errorf("%v", v)
	}
}
