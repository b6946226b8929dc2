package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/security"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

const chromedpDefaultTimeout = 30 * time.Second

type chromedpBrowser struct {
	allocCtx context.Context
	cancel   context.CancelFunc
}

func launchChromedp(opts LaunchOptions) (Browser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if opts.Viewport.Width > 0 && opts.Viewport.Height > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.Viewport.Width, opts.Viewport.Height))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	return &chromedpBrowser{allocCtx: allocCtx, cancel: cancel}, nil
}

func (b *chromedpBrowser) NewSession(ctx context.Context, opts SessionOptions) (Session, error) {
	tabCtx, cancel := chromedp.NewContext(b.allocCtx)
	s := &chromedpSession{ctx: tabCtx, cancel: cancel, baseURL: opts.BaseURL, timeout: chromedpDefaultTimeout}

	var setup []chromedp.Action
	if opts.Viewport.Width > 0 && opts.Viewport.Height > 0 {
		setup = append(setup, chromedp.EmulateViewport(int64(opts.Viewport.Width), int64(opts.Viewport.Height)))
	}
	if opts.IgnoreHTTPSErrors {
		setup = append(setup, security.SetIgnoreCertificateErrors(true))
	}
	if opts.Locale != "" {
		setup = append(setup, emulation.SetLocaleOverride().WithLocale(opts.Locale))
	}
	if opts.TimezoneID != "" {
		setup = append(setup, emulation.SetTimezoneOverride(opts.TimezoneID))
	}
	// Running with no actions starts the browser and opens the tab.
	if err := chromedp.Run(tabCtx, setup...); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open chromedp session: %w", err)
	}
	s.stopWatch = CloseOnDone(ctx, cancel)
	return s, nil
}

func (b *chromedpBrowser) Close() error {
	b.cancel()
	return nil
}

type chromedpSession struct {
	ctx       context.Context
	cancel    context.CancelFunc
	stopWatch func()
	baseURL   string

	lock    sync.Mutex
	timeout time.Duration
}

func (s *chromedpSession) run(timeout time.Duration, what string, actions ...chromedp.Action) error {
	if timeout <= 0 {
		s.lock.Lock()
		timeout = s.timeout
		s.lock.Unlock()
	}
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	err := chromedp.Run(ctx, actions...)
	if err == nil {
		return nil
	}
	if s.ctx.Err() != nil {
		return closedError(s.ctx, what)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return timeoutError(err, what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *chromedpSession) Goto(target string, waitUntil LoadState) error {
	u, err := resolveURL(s.baseURL, target)
	if err != nil {
		return err
	}
	return s.run(0, "navigating to "+u, chromedp.Navigate(u))
}

var readyStateScripts = map[LoadState]string{
	LoadStateDOMContentLoaded: `document.readyState !== "loading"`,
	LoadStateLoad:             `document.readyState === "complete"`,
	LoadStateNetworkIdle: `document.readyState === "complete" &&
		performance.getEntriesByType("resource").every(e => e.responseEnd > 0 && performance.now() - e.responseEnd > 500)`,
}

func (s *chromedpSession) WaitForLoadState(state LoadState, timeout time.Duration) error {
	script, ok := readyStateScripts[state]
	if !ok {
		script = readyStateScripts[LoadStateLoad]
	}
	return s.run(timeout, "waiting for load state "+string(state),
		chromedp.Poll(script, nil, chromedp.WithPollingInterval(100*time.Millisecond)))
}

func (s *chromedpSession) Locator(selector string) Locator {
	return &chromedpLocator{session: s, selector: selector}
}

func (s *chromedpSession) URL() string {
	var location string
	_ = s.run(0, "reading location", chromedp.Location(&location))
	return location
}

func (s *chromedpSession) Title() (string, error) {
	var title string
	err := s.run(0, "reading page title", chromedp.Title(&title))
	return title, err
}

func (s *chromedpSession) Reload() error {
	return s.run(0, "reloading page", chromedp.Reload())
}

func (s *chromedpSession) GoBack() error {
	return s.run(0, "navigating back", chromedp.NavigateBack())
}

var namedKeys = map[string]string{
	"Enter":      kb.Enter,
	"Tab":        kb.Tab,
	"Escape":     kb.Escape,
	"Backspace":  kb.Backspace,
	"Delete":     kb.Delete,
	"ArrowUp":    kb.ArrowUp,
	"ArrowDown":  kb.ArrowDown,
	"ArrowLeft":  kb.ArrowLeft,
	"ArrowRight": kb.ArrowRight,
	"Home":       kb.Home,
	"End":        kb.End,
	"PageUp":     kb.PageUp,
	"PageDown":   kb.PageDown,
}

func keySequence(key string) string {
	if k, ok := namedKeys[key]; ok {
		return k
	}
	return key
}

func (s *chromedpSession) PressKey(key string) error {
	return s.run(0, "pressing "+key, chromedp.KeyEvent(keySequence(key)))
}

func (s *chromedpSession) Screenshot(path string, fullPage bool) error {
	var buf []byte
	var action chromedp.Action = chromedp.CaptureScreenshot(&buf)
	if fullPage {
		action = chromedp.FullScreenshot(&buf, 100)
	}
	if err := s.run(0, "taking screenshot", action); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

func (s *chromedpSession) SetDefaultTimeout(timeout time.Duration) {
	s.lock.Lock()
	s.timeout = timeout
	s.lock.Unlock()
}

func (s *chromedpSession) Close() error {
	s.stopWatch()
	s.cancel()
	return nil
}

type chromedpLocator struct {
	session  *chromedpSession
	selector string
	first    bool
}

func (l *chromedpLocator) Selector() string {
	return l.selector
}

func (l *chromedpLocator) describe(action string) string {
	return fmt.Sprintf("%s %q", action, l.selector)
}

// elements is a JS expression evaluating to the array of matched elements.
func (l *chromedpLocator) elements() string {
	sel := strconv.Quote(l.selector)
	if l.first {
		return fmt.Sprintf("[document.querySelector(%s)].filter(Boolean)", sel)
	}
	return fmt.Sprintf("Array.from(document.querySelectorAll(%s))", sel)
}

func (l *chromedpLocator) eval(what, body string, out interface{}) error {
	script := fmt.Sprintf("((els) => { %s })(%s)", body, l.elements())
	return l.session.run(0, l.describe(what), chromedp.Evaluate(script, out))
}

func (l *chromedpLocator) WaitFor(state ElementState, timeout time.Duration) error {
	var action chromedp.Action
	switch state {
	case StateHidden:
		action = chromedp.WaitNotVisible(l.selector, chromedp.ByQuery)
	case StateAttached:
		action = chromedp.WaitReady(l.selector, chromedp.ByQuery)
	case StateDetached:
		action = chromedp.WaitNotPresent(l.selector, chromedp.ByQuery)
	default:
		action = chromedp.WaitVisible(l.selector, chromedp.ByQuery)
	}
	return l.session.run(timeout, l.describe("waiting for "+string(state)), action)
}

func (l *chromedpLocator) Click(opts ClickOptions) error {
	if opts.Force {
		var clicked bool
		err := l.eval("clicking", `if (!els.length) return false; els[0].click(); return true;`, &clicked)
		if err == nil && !clicked {
			err = fmt.Errorf("no element matches %q", l.selector)
		}
		return err
	}
	return l.session.run(opts.Timeout, l.describe("clicking"), chromedp.Click(l.selector, chromedp.ByQuery))
}

func (l *chromedpLocator) Fill(value string) error {
	return l.session.run(0, l.describe("filling"),
		chromedp.Clear(l.selector, chromedp.ByQuery),
		chromedp.SendKeys(l.selector, value, chromedp.ByQuery),
	)
}

func (l *chromedpLocator) SelectOption(value string) error {
	return l.session.run(0, l.describe("selecting option in"), chromedp.SetValue(l.selector, value, chromedp.ByQuery))
}

func (l *chromedpLocator) setChecked(want bool) error {
	var ok bool
	body := fmt.Sprintf(`if (!els.length) return false; if (els[0].checked !== %t) els[0].click(); return true;`, want)
	if err := l.eval("checking", body, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no element matches %q", l.selector)
	}
	return nil
}

func (l *chromedpLocator) Check() error {
	return l.setChecked(true)
}

func (l *chromedpLocator) Uncheck() error {
	return l.setChecked(false)
}

func (l *chromedpLocator) Hover() error {
	var ok bool
	err := l.eval("hovering", `if (!els.length) return false;
		els[0].dispatchEvent(new MouseEvent("mouseover", {bubbles: true}));
		els[0].dispatchEvent(new MouseEvent("mouseenter"));
		return true;`, &ok)
	if err == nil && !ok {
		err = fmt.Errorf("no element matches %q", l.selector)
	}
	return err
}

func (l *chromedpLocator) ScrollIntoView() error {
	return l.session.run(0, l.describe("scrolling to"), chromedp.ScrollIntoView(l.selector, chromedp.ByQuery))
}

func (l *chromedpLocator) TextContent() (string, error) {
	var result struct {
		Found bool   `json:"found"`
		Text  string `json:"text"`
	}
	err := l.eval("reading text of", `return els.length ? {found: true, text: els[0].textContent || ""} : {found: false};`, &result)
	if err != nil {
		return "", err
	}
	if !result.Found {
		return "", fmt.Errorf("no element matches %q", l.selector)
	}
	return result.Text, nil
}

func (l *chromedpLocator) AllTextContents() ([]string, error) {
	texts := []string{}
	err := l.eval("reading texts of", `return els.map(e => e.textContent || "");`, &texts)
	return texts, err
}

func (l *chromedpLocator) IsVisible() (bool, error) {
	var visible bool
	err := l.eval("checking visibility of", `if (!els.length) return false;
		const e = els[0];
		const style = getComputedStyle(e);
		return style.visibility !== "hidden" && !!(e.offsetWidth || e.offsetHeight || e.getClientRects().length);`, &visible)
	return visible, err
}

func (l *chromedpLocator) IsEnabled() (bool, error) {
	var enabled bool
	err := l.eval("checking state of", `return els.length > 0 && !els[0].disabled;`, &enabled)
	return enabled, err
}

func (l *chromedpLocator) Count() (int, error) {
	var n int
	err := l.eval("counting", `return els.length;`, &n)
	return n, err
}

func (l *chromedpLocator) First() Locator {
	return &chromedpLocator{session: l.session, selector: l.selector, first: true}
}

func (l *chromedpLocator) Screenshot(path string) error {
	var buf []byte
	if err := l.session.run(0, l.describe("taking screenshot of"), chromedp.Screenshot(l.selector, &buf, chromedp.ByQuery)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}
