package framework

import (
	"fmt"
	"sync"

	"github.com/stretchr/testify/require"
)

// Release tears down a fixture value. It may be nil.
type Release func() error

// Fixture is a named, lazily built resource. The same Fixture value is meant to be declared
// once at package level and shared by every test that needs it; each Scope builds its own
// instance.
type Fixture[V any] struct {
	name  string
	build func(*Scope) (V, Release, error)
}

// Define declares a fixture. The build function may itself depend on other fixtures by calling
// their Get or Resolve methods with the Scope it receives.
func Define[V any](name string, build func(*Scope) (V, Release, error)) Fixture[V] {
	return Fixture[V]{name: name, build: build}
}

func (f Fixture[V]) Name() string {
	return f.name
}

// Get returns the scope's instance of the fixture, building it on first use. If building fails,
// the scope's owner is failed and the calling test stops.
func (f Fixture[V]) Get(s *Scope) V {
	v, err := f.Resolve(s)
	if err != nil {
		s.owner.Errorf("%s", err)
		s.owner.FailNow()
	}
	return v
}

// Resolve is like Get but returns a build failure instead of failing the owner.
func (f Fixture[V]) Resolve(s *Scope) (V, error) {
	var zero V
	if existing, ok, err := s.lookup(f.name); err != nil {
		return zero, err
	} else if ok {
		return existing.(V), nil
	}

	v, release, err := f.build(s)
	s.doneBuilding(f.name)
	if err != nil {
		return zero, fmt.Errorf("fixture %q could not be set up: %w", f.name, err)
	}
	if err := s.store(f.name, v, release); err != nil {
		if release != nil {
			_ = release()
		}
		return zero, err
	}
	return v, nil
}

type scopeEntry struct {
	name    string
	release Release
}

// Scope holds the fixture instances acquired by one test attempt.
type Scope struct {
	owner    require.TestingT
	test     *Context
	lock     sync.Mutex
	values   map[string]interface{}
	building map[string]bool
	order    []scopeEntry
	closed   bool
}

func NewScope(owner require.TestingT) *Scope {
	s := &Scope{
		owner:    owner,
		values:   make(map[string]interface{}),
		building: make(map[string]bool),
	}
	if c, ok := owner.(*Context); ok {
		s.test = c
	}
	return s
}

// Test returns the test attempt that owns the scope, or nil if the owner is not a Context.
func (s *Scope) Test() *Context {
	return s.test
}

func (s *Scope) lookup(name string) (interface{}, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return nil, false, fmt.Errorf("fixture %q requested after its scope was closed", name)
	}
	if v, ok := s.values[name]; ok {
		return v, true, nil
	}
	if s.building[name] {
		return nil, false, fmt.Errorf("fixture %q depends on itself", name)
	}
	s.building[name] = true
	return nil, false, nil
}

func (s *Scope) doneBuilding(name string) {
	s.lock.Lock()
	delete(s.building, name)
	s.lock.Unlock()
}

func (s *Scope) store(name string, v interface{}, release Release) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return fmt.Errorf("fixture %q finished setting up after its scope was closed", name)
	}
	s.values[name] = v
	s.order = append(s.order, scopeEntry{name: name, release: release})
	return nil
}

// Built returns the names of the fixtures acquired so far, in the order they were built.
func (s *Scope) Built() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	names := make([]string, 0, len(s.order))
	for _, e := range s.order {
		names = append(names, e.name)
	}
	return names
}

// Close releases every acquired fixture in reverse build order. Every release runs even if an
// earlier one failed or panicked; the failures are returned. Calling Close again does nothing.
func (s *Scope) Close() []error {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return nil
	}
	s.closed = true
	order := s.order
	s.order = nil
	s.lock.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		if err := runRelease(order[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func runRelease(e scopeEntry) (err error) {
	if e.release == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fixture %q teardown panicked: %v", e.name, r)
		}
	}()
	if rerr := e.release(); rerr != nil {
		return fmt.Errorf("fixture %q teardown failed: %w", e.name, rerr)
	}
	return nil
}
