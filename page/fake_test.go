package page

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hemantjanrao/playwrightFW/browser"
)

// fakeSession records calls and serves canned element state.
type fakeSession struct {
	lock      sync.Mutex
	calls     []string
	elements  map[string]*fakeElement
	url       string
	title     string
	idleErr   error
	gotoErr   error
	reloadErr error
}

type fakeElement struct {
	texts    []string
	visible  bool
	enabled  bool
	waitErr  error
	probeErr error
}

func newFakeSession() *fakeSession {
	return &fakeSession{elements: make(map[string]*fakeElement)}
}

func (s *fakeSession) record(format string, args ...interface{}) {
	s.lock.Lock()
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
	s.lock.Unlock()
}

func (s *fakeSession) element(sel string) *fakeElement {
	if e, ok := s.elements[sel]; ok {
		return e
	}
	return &fakeElement{}
}

func (s *fakeSession) Goto(url string, waitUntil browser.LoadState) error {
	s.record("goto %s %s", url, waitUntil)
	if s.gotoErr == nil {
		s.url = url
	}
	return s.gotoErr
}

func (s *fakeSession) WaitForLoadState(state browser.LoadState, timeout time.Duration) error {
	s.record("load %s %s", state, timeout)
	if state == browser.LoadStateNetworkIdle {
		return s.idleErr
	}
	return nil
}

func (s *fakeSession) Locator(selector string) browser.Locator {
	return &fakeLocator{session: s, selector: selector}
}

func (s *fakeSession) URL() string {
	return s.url
}

func (s *fakeSession) Title() (string, error) {
	return s.title, nil
}

func (s *fakeSession) SetDefaultTimeout(timeout time.Duration) {
	s.record("default timeout %s", timeout)
}

func (s *fakeSession) Close() error {
	s.record("close")
	return nil
}

func (s *fakeSession) Reload() error {
	s.record("reload")
	return s.reloadErr
}

func (s *fakeSession) GoBack() error {
	s.record("back")
	return nil
}

func (s *fakeSession) PressKey(key string) error {
	s.record("press %s", key)
	return nil
}

func (s *fakeSession) Screenshot(path string, fullPage bool) error {
	s.record("screenshot %s %t", path, fullPage)
	return os.WriteFile(path, []byte("png"), 0o644)
}

type fakeLocator struct {
	session  *fakeSession
	selector string
	first    bool
}

func (l *fakeLocator) Selector() string { return l.selector }

func (l *fakeLocator) name() string {
	if l.first {
		return l.selector + ">>first"
	}
	return l.selector
}

func (l *fakeLocator) WaitFor(state browser.ElementState, timeout time.Duration) error {
	l.session.record("wait %s %s %s", l.name(), state, timeout)
	return l.session.element(l.selector).waitErr
}

func (l *fakeLocator) Click(opts browser.ClickOptions) error {
	l.session.record("click %s force=%t timeout=%s", l.name(), opts.Force, opts.Timeout)
	return nil
}

func (l *fakeLocator) Fill(value string) error {
	l.session.record("fill %s %s", l.name(), value)
	return nil
}

func (l *fakeLocator) SelectOption(value string) error {
	l.session.record("select %s %s", l.name(), value)
	return nil
}

func (l *fakeLocator) Check() error {
	l.session.record("check %s", l.name())
	return nil
}

func (l *fakeLocator) Uncheck() error {
	l.session.record("uncheck %s", l.name())
	return nil
}

func (l *fakeLocator) Hover() error {
	l.session.record("hover %s", l.name())
	return nil
}

func (l *fakeLocator) ScrollIntoView() error {
	l.session.record("scroll %s", l.name())
	return nil
}

func (l *fakeLocator) TextContent() (string, error) {
	e := l.session.element(l.selector)
	if len(e.texts) == 0 {
		return "", nil
	}
	return e.texts[0], nil
}

func (l *fakeLocator) AllTextContents() ([]string, error) {
	return l.session.element(l.selector).texts, nil
}

func (l *fakeLocator) IsVisible() (bool, error) {
	e := l.session.element(l.selector)
	return e.visible, e.probeErr
}

func (l *fakeLocator) IsEnabled() (bool, error) {
	e := l.session.element(l.selector)
	return e.enabled, e.probeErr
}

func (l *fakeLocator) Count() (int, error) {
	return len(l.session.element(l.selector).texts), nil
}

func (l *fakeLocator) First() browser.Locator {
	return &fakeLocator{session: l.session, selector: l.selector, first: true}
}

func (l *fakeLocator) Screenshot(path string) error {
	l.session.record("element screenshot %s %s", l.name(), path)
	return os.WriteFile(path, []byte("png"), 0o644)
}
