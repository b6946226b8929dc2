// Package page provides the wait-then-act interaction layer that page objects are built on.
package page

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/hemantjanrao/playwrightFW/browser"
	"github.com/hemantjanrao/playwrightFW/logging"
)

const (
	DefaultWaitTimeout    = 10 * time.Second
	NetworkIdleTimeout    = 10 * time.Second
	DefaultScreenshotDir  = "screenshots"
	networkIdleWarning    = "Network idle timeout - continuing anyway"
	screenshotFilePattern = "%s.png"
)

// ClickOptions tunes Click. Timeout is in milliseconds; when undefined, the visibility wait uses
// DefaultWaitTimeout and the click uses the session's default timeout.
type ClickOptions struct {
	Force   bool
	Timeout ldvalue.OptionalInt
}

// Page wraps a browser session. Every action waits for its target to become visible before
// acting on it; reads of element state never fail.
type Page struct {
	ctx           context.Context
	session       browser.Session
	log           *logging.Logger
	screenshotDir string
}

func New(session browser.Session, log *logging.Logger) *Page {
	if log == nil {
		log = logging.Discard()
	}
	return &Page{ctx: context.Background(), session: session, log: log, screenshotDir: DefaultScreenshotDir}
}

// WithContext returns a copy of the Page whose waits end early when ctx is done.
func (p *Page) WithContext(ctx context.Context) *Page {
	c := *p
	c.ctx = ctx
	return &c
}

// WithScreenshotDir returns a copy of the Page that writes screenshots under dir.
func (p *Page) WithScreenshotDir(dir string) *Page {
	c := *p
	c.screenshotDir = dir
	return &c
}

func (p *Page) Session() browser.Session {
	return p.session
}

func (p *Page) Logger() *logging.Logger {
	return p.log
}

func (p *Page) Locator(selector string) browser.Locator {
	return p.session.Locator(selector)
}

func (p *Page) Goto(url string) error {
	p.log.Info("Navigating to: " + url)
	if err := p.session.Goto(url, browser.LoadStateDOMContentLoaded); err != nil {
		return err
	}
	return p.waitForPageLoad()
}

func (p *Page) waitForPageLoad() error {
	if err := p.session.WaitForLoadState(browser.LoadStateDOMContentLoaded, 0); err != nil {
		return err
	}
	if err := p.session.WaitForLoadState(browser.LoadStateNetworkIdle, NetworkIdleTimeout); err != nil {
		p.log.Warn(networkIdleWarning)
	}
	p.log.Debug("Page loaded successfully")
	return nil
}

func (p *Page) WaitForVisible(loc browser.Locator, timeout time.Duration) error {
	return p.waitFor(loc, browser.StateVisible, timeout)
}

func (p *Page) WaitForHidden(loc browser.Locator, timeout time.Duration) error {
	return p.waitFor(loc, browser.StateHidden, timeout)
}

func (p *Page) waitFor(loc browser.Locator, state browser.ElementState, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	p.log.Debug(fmt.Sprintf("Waiting for element to be %s", state))
	if err := loc.WaitFor(state, timeout); err != nil {
		return fmt.Errorf("element %q did not become %s: %w", loc.Selector(), state, err)
	}
	return nil
}

func (p *Page) ScrollTo(loc browser.Locator) error {
	p.log.Debug("Scrolling to element")
	return loc.ScrollIntoView()
}

func (p *Page) Click(loc browser.Locator, opts ClickOptions) error {
	p.log.Debug("Clicking element")
	var timeout time.Duration
	if opts.Timeout.IsDefined() {
		timeout = time.Duration(opts.Timeout.IntValue()) * time.Millisecond
	}
	if err := p.WaitForVisible(loc, timeout); err != nil {
		return err
	}
	return loc.Click(browser.ClickOptions{Force: opts.Force, Timeout: timeout})
}

func (p *Page) Fill(loc browser.Locator, value string) error {
	p.log.Debug("Filling element with value: " + value)
	if err := p.WaitForVisible(loc, 0); err != nil {
		return err
	}
	return loc.Fill(value)
}

func (p *Page) SelectOption(loc browser.Locator, value string) error {
	p.log.Debug("Selecting option: " + value)
	if err := p.WaitForVisible(loc, 0); err != nil {
		return err
	}
	return loc.SelectOption(value)
}

func (p *Page) Check(loc browser.Locator) error {
	p.log.Debug("Checking checkbox")
	if err := p.WaitForVisible(loc, 0); err != nil {
		return err
	}
	return loc.Check()
}

func (p *Page) Uncheck(loc browser.Locator) error {
	p.log.Debug("Unchecking checkbox")
	if err := p.WaitForVisible(loc, 0); err != nil {
		return err
	}
	return loc.Uncheck()
}

func (p *Page) Hover(loc browser.Locator) error {
	p.log.Debug("Hovering over element")
	if err := p.WaitForVisible(loc, 0); err != nil {
		return err
	}
	return loc.Hover()
}

func (p *Page) PressKey(key string) error {
	p.log.Debug("Pressing key: " + key)
	return p.session.PressKey(key)
}

// GetText returns the element's text content, or "" if it has none.
func (p *Page) GetText(loc browser.Locator) (string, error) {
	if err := p.WaitForVisible(loc, 0); err != nil {
		return "", err
	}
	text, err := loc.TextContent()
	if err != nil {
		return "", err
	}
	p.log.Debug("Got text: " + text)
	return text, nil
}

func (p *Page) GetAllTexts(loc browser.Locator) ([]string, error) {
	if err := p.WaitForVisible(loc.First(), 0); err != nil {
		return nil, err
	}
	texts, err := loc.AllTextContents()
	if err != nil {
		return nil, err
	}
	p.log.Debug(fmt.Sprintf("Got %d text elements", len(texts)))
	return texts, nil
}

// IsVisible reports whether the element is visible. Any failure to find out counts as not visible.
func (p *Page) IsVisible(loc browser.Locator) bool {
	visible, err := loc.IsVisible()
	if err != nil {
		return false
	}
	p.log.Debug(fmt.Sprintf("Element visibility: %t", visible))
	return visible
}

// IsEnabled is like IsVisible for the element's enabled state.
func (p *Page) IsEnabled(loc browser.Locator) bool {
	enabled, err := loc.IsEnabled()
	if err != nil {
		return false
	}
	p.log.Debug(fmt.Sprintf("Element enabled: %t", enabled))
	return enabled
}

func (p *Page) GetElementCount(loc browser.Locator) (int, error) {
	n, err := loc.Count()
	if err != nil {
		return 0, err
	}
	p.log.Debug(fmt.Sprintf("Element count: %d", n))
	return n, nil
}

func (p *Page) GetCurrentURL() string {
	url := p.session.URL()
	p.log.Debug("Current URL: " + url)
	return url
}

func (p *Page) GetTitle() (string, error) {
	title, err := p.session.Title()
	if err != nil {
		return "", err
	}
	p.log.Debug("Page title: " + title)
	return title, nil
}

func (p *Page) screenshotPath(name string) (string, error) {
	if name == "" {
		return "", errors.New("screenshot name must not be empty")
	}
	if err := os.MkdirAll(p.screenshotDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	return filepath.Join(p.screenshotDir, fmt.Sprintf(screenshotFilePattern, name)), nil
}

// TakeScreenshot saves a full-page screenshot as <dir>/<name>.png, replacing any earlier one.
func (p *Page) TakeScreenshot(name string) (string, error) {
	p.log.Info("Taking screenshot: " + name)
	path, err := p.screenshotPath(name)
	if err != nil {
		return "", err
	}
	return path, p.session.Screenshot(path, true)
}

func (p *Page) TakeElementScreenshot(loc browser.Locator, name string) (string, error) {
	p.log.Info("Taking element screenshot: " + name)
	path, err := p.screenshotPath(name)
	if err != nil {
		return "", err
	}
	return path, loc.Screenshot(path)
}

// Wait pauses for d, or until the Page's context is done.
func (p *Page) Wait(d time.Duration) error {
	p.log.Debug(fmt.Sprintf("Waiting for %dms", d.Milliseconds()))
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("wait interrupted: %w", context.Cause(p.ctx))
	}
}

func (p *Page) Reload() error {
	p.log.Info("Reloading page")
	if err := p.session.Reload(); err != nil {
		return err
	}
	return p.waitForPageLoad()
}

func (p *Page) GoBack() error {
	p.log.Info("Navigating back")
	if err := p.session.GoBack(); err != nil {
		return err
	}
	return p.waitForPageLoad()
}
