package parabank

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hemantjanrao/playwrightFW/browser"
)

// fakeBrowser simulates the ParaBank login panel: a correct username and password show the
// home link, anything else shows an error. Like the real engines, a session stops working once
// the context it was opened with is done.
type fakeBrowser struct {
	username string
	password string

	lock     sync.Mutex
	sessions []*fakeSession
}

func newFakeBrowser(username, password string) *fakeBrowser {
	return &fakeBrowser{username: username, password: password}
}

func (b *fakeBrowser) NewSession(ctx context.Context, opts browser.SessionOptions) (browser.Session, error) {
	s := &fakeSession{browser: b, opts: opts, fields: make(map[string]string)}
	s.stopWatch = browser.CloseOnDone(ctx, s.abort)
	b.lock.Lock()
	b.sessions = append(b.sessions, s)
	b.lock.Unlock()
	return s, nil
}

func (b *fakeBrowser) Close() error { return nil }

func (b *fakeBrowser) allSessions() []*fakeSession {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]*fakeSession(nil), b.sessions...)
}

type fakeSession struct {
	browser   *fakeBrowser
	opts      browser.SessionOptions
	stopWatch func()

	lock           sync.Mutex
	calls          []string
	fields         map[string]string
	loggedIn       bool
	loginFailed    bool
	aborted        bool
	closeCalls     int
	defaultTimeout time.Duration
}

func (s *fakeSession) abort() {
	s.lock.Lock()
	s.aborted = true
	s.lock.Unlock()
}

func (s *fakeSession) alive(what string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.aborted {
		return fmt.Errorf("%s: %w", what, browser.ErrSessionClosed)
	}
	return nil
}

func (s *fakeSession) record(format string, args ...interface{}) {
	s.lock.Lock()
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
	s.lock.Unlock()
}

func (s *fakeSession) visible(selector string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	switch selector {
	case selectorUsername, selectorPassword, selectorLoginButton:
		return !s.loggedIn
	case selectorHomeLink:
		return s.loggedIn
	case selectorError:
		return s.loginFailed
	default:
		return false
	}
}

func (s *fakeSession) Goto(url string, _ browser.LoadState) error {
	if err := s.alive("navigating to " + url); err != nil {
		return err
	}
	s.record("goto %s", url)
	return nil
}

func (s *fakeSession) WaitForLoadState(browser.LoadState, time.Duration) error { return nil }

func (s *fakeSession) Locator(selector string) browser.Locator {
	return &fakeLocator{session: s, selector: selector}
}

func (s *fakeSession) URL() string               { return s.opts.BaseURL }
func (s *fakeSession) Title() (string, error)    { return "ParaBank | Welcome", nil }
func (s *fakeSession) Reload() error             { return nil }
func (s *fakeSession) GoBack() error             { return nil }
func (s *fakeSession) PressKey(key string) error { return nil }

func (s *fakeSession) Screenshot(path string, _ bool) error {
	if err := s.alive("taking screenshot"); err != nil {
		return err
	}
	s.record("screenshot %s", path)
	return os.WriteFile(path, []byte("png"), 0o644)
}

func (s *fakeSession) SetDefaultTimeout(timeout time.Duration) {
	s.lock.Lock()
	s.defaultTimeout = timeout
	s.lock.Unlock()
}

func (s *fakeSession) Close() error {
	s.stopWatch()
	s.lock.Lock()
	s.closeCalls++
	s.lock.Unlock()
	return nil
}

func (s *fakeSession) isClosed() bool {
	return s.closeCount() > 0
}

func (s *fakeSession) closeCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.closeCalls
}

func (s *fakeSession) callLog() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeSession) submit() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.fields[selectorUsername] == s.browser.username && s.fields[selectorPassword] == s.browser.password {
		s.loggedIn = true
		s.loginFailed = false
	} else {
		s.loginFailed = true
	}
}

type fakeLocator struct {
	session  *fakeSession
	selector string
}

func (l *fakeLocator) Selector() string { return l.selector }

func (l *fakeLocator) WaitFor(state browser.ElementState, timeout time.Duration) error {
	if err := l.session.alive("waiting for " + l.selector); err != nil {
		return err
	}
	if state == browser.StateVisible && !l.session.visible(l.selector) {
		return fmt.Errorf("%w: waiting for %s", browser.ErrTimeout, l.selector)
	}
	return nil
}

func (l *fakeLocator) Click(browser.ClickOptions) error {
	if err := l.session.alive("clicking " + l.selector); err != nil {
		return err
	}
	l.session.record("click %s", l.selector)
	if l.selector == selectorLoginButton {
		l.session.submit()
	}
	return nil
}

func (l *fakeLocator) Fill(value string) error {
	if err := l.session.alive("filling " + l.selector); err != nil {
		return err
	}
	l.session.record("fill %s %s", l.selector, value)
	l.session.lock.Lock()
	l.session.fields[l.selector] = value
	l.session.lock.Unlock()
	return nil
}

func (l *fakeLocator) SelectOption(string) error { return nil }
func (l *fakeLocator) Check() error              { return nil }
func (l *fakeLocator) Uncheck() error            { return nil }
func (l *fakeLocator) Hover() error              { return nil }
func (l *fakeLocator) ScrollIntoView() error     { return nil }

func (l *fakeLocator) TextContent() (string, error) {
	if l.selector == selectorLoginButton {
		return "Log In", nil
	}
	return "", nil
}

func (l *fakeLocator) AllTextContents() ([]string, error) { return nil, nil }

func (l *fakeLocator) IsVisible() (bool, error) { return l.session.visible(l.selector), nil }
func (l *fakeLocator) IsEnabled() (bool, error) { return true, nil }

func (l *fakeLocator) Count() (int, error) {
	if l.session.visible(l.selector) {
		return 1, nil
	}
	return 0, nil
}

func (l *fakeLocator) First() browser.Locator { return l }

func (l *fakeLocator) Screenshot(path string) error {
	return os.WriteFile(path, []byte("png"), 0o644)
}
