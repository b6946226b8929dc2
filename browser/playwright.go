package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

type playwrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func launchPlaywright(opts LaunchOptions) (Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	var bt playwright.BrowserType
	switch opts.Browser {
	case "chromium":
		bt = pw.Chromium
	case "firefox":
		bt = pw.Firefox
	case "webkit":
		bt = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("unknown browser %q", opts.Browser)
	}
	b, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", opts.Browser, err)
	}
	return &playwrightBrowser{pw: pw, browser: b}, nil
}

func (b *playwrightBrowser) NewSession(ctx context.Context, opts SessionOptions) (Session, error) {
	contextOpts := playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(opts.IgnoreHTTPSErrors),
	}
	if opts.BaseURL != "" {
		contextOpts.BaseURL = playwright.String(opts.BaseURL)
	}
	if opts.Viewport.Width > 0 && opts.Viewport.Height > 0 {
		contextOpts.Viewport = &playwright.Size{Width: opts.Viewport.Width, Height: opts.Viewport.Height}
	}
	if opts.Locale != "" {
		contextOpts.Locale = playwright.String(opts.Locale)
	}
	if opts.TimezoneID != "" {
		contextOpts.TimezoneId = playwright.String(opts.TimezoneID)
	}
	bc, err := b.browser.NewContext(contextOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	page, err := bc.NewPage()
	if err != nil {
		_ = bc.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	s := &playwrightSession{ctx: ctx, context: bc, page: page}
	s.stopWatch = CloseOnDone(ctx, func() { _ = bc.Close() })
	return s, nil
}

func (b *playwrightBrowser) Close() error {
	err := b.browser.Close()
	if stopErr := b.pw.Stop(); err == nil {
		err = stopErr
	}
	return err
}

type playwrightSession struct {
	ctx       context.Context
	context   playwright.BrowserContext
	page      playwright.Page
	stopWatch func()
}

// playwrightError maps err to ErrTimeout or, once ctx is done and the browser context has been
// closed under the call, to ErrSessionClosed.
func playwrightError(ctx context.Context, err error, what string) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return closedError(ctx, what)
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return timeoutError(err, what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func millis(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	return playwright.Float(float64(d.Milliseconds()))
}

func playwrightLoadState(state LoadState) *playwright.LoadState {
	switch state {
	case LoadStateDOMContentLoaded:
		return playwright.LoadStateDomcontentloaded
	case LoadStateNetworkIdle:
		return playwright.LoadStateNetworkidle
	default:
		return playwright.LoadStateLoad
	}
}

func playwrightWaitUntil(state LoadState) *playwright.WaitUntilState {
	switch state {
	case LoadStateDOMContentLoaded:
		return playwright.WaitUntilStateDomcontentloaded
	case LoadStateNetworkIdle:
		return playwright.WaitUntilStateNetworkidle
	default:
		return playwright.WaitUntilStateLoad
	}
}

func (s *playwrightSession) Goto(url string, waitUntil LoadState) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{WaitUntil: playwrightWaitUntil(waitUntil)})
	return playwrightError(s.ctx, err, "navigating to "+url)
}

func (s *playwrightSession) WaitForLoadState(state LoadState, timeout time.Duration) error {
	err := s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwrightLoadState(state),
		Timeout: millis(timeout),
	})
	return playwrightError(s.ctx, err, "waiting for load state "+string(state))
}

func (s *playwrightSession) Locator(selector string) Locator {
	return &playwrightLocator{ctx: s.ctx, selector: selector, locator: s.page.Locator(selector)}
}

func (s *playwrightSession) URL() string {
	return s.page.URL()
}

func (s *playwrightSession) Title() (string, error) {
	title, err := s.page.Title()
	return title, playwrightError(s.ctx, err, "reading page title")
}

func (s *playwrightSession) Reload() error {
	_, err := s.page.Reload()
	return playwrightError(s.ctx, err, "reloading page")
}

func (s *playwrightSession) GoBack() error {
	_, err := s.page.GoBack()
	return playwrightError(s.ctx, err, "navigating back")
}

func (s *playwrightSession) PressKey(key string) error {
	return playwrightError(s.ctx, s.page.Keyboard().Press(key), "pressing "+key)
}

func (s *playwrightSession) Screenshot(path string, fullPage bool) error {
	_, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(fullPage),
	})
	return playwrightError(s.ctx, err, "taking screenshot")
}

func (s *playwrightSession) SetDefaultTimeout(timeout time.Duration) {
	s.page.SetDefaultTimeout(float64(timeout.Milliseconds()))
}

func (s *playwrightSession) Close() error {
	s.stopWatch()
	return s.context.Close()
}

type playwrightLocator struct {
	ctx      context.Context
	selector string
	locator  playwright.Locator
}

func (l *playwrightLocator) Selector() string {
	return l.selector
}

func (l *playwrightLocator) describe(action string) string {
	return fmt.Sprintf("%s %q", action, l.selector)
}

func (l *playwrightLocator) WaitFor(state ElementState, timeout time.Duration) error {
	var ws *playwright.WaitForSelectorState
	switch state {
	case StateHidden:
		ws = playwright.WaitForSelectorStateHidden
	case StateAttached:
		ws = playwright.WaitForSelectorStateAttached
	case StateDetached:
		ws = playwright.WaitForSelectorStateDetached
	default:
		ws = playwright.WaitForSelectorStateVisible
	}
	err := l.locator.WaitFor(playwright.LocatorWaitForOptions{State: ws, Timeout: millis(timeout)})
	return playwrightError(l.ctx, err, l.describe("waiting for "+string(state)))
}

func (l *playwrightLocator) Click(opts ClickOptions) error {
	err := l.locator.Click(playwright.LocatorClickOptions{
		Force:   playwright.Bool(opts.Force),
		Timeout: millis(opts.Timeout),
	})
	return playwrightError(l.ctx, err, l.describe("clicking"))
}

func (l *playwrightLocator) Fill(value string) error {
	return playwrightError(l.ctx, l.locator.Fill(value), l.describe("filling"))
}

func (l *playwrightLocator) SelectOption(value string) error {
	_, err := l.locator.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}})
	return playwrightError(l.ctx, err, l.describe("selecting option in"))
}

func (l *playwrightLocator) Check() error {
	return playwrightError(l.ctx, l.locator.Check(), l.describe("checking"))
}

func (l *playwrightLocator) Uncheck() error {
	return playwrightError(l.ctx, l.locator.Uncheck(), l.describe("unchecking"))
}

func (l *playwrightLocator) Hover() error {
	return playwrightError(l.ctx, l.locator.Hover(), l.describe("hovering"))
}

func (l *playwrightLocator) ScrollIntoView() error {
	return playwrightError(l.ctx, l.locator.ScrollIntoViewIfNeeded(), l.describe("scrolling to"))
}

func (l *playwrightLocator) TextContent() (string, error) {
	text, err := l.locator.TextContent()
	return text, playwrightError(l.ctx, err, l.describe("reading text of"))
}

func (l *playwrightLocator) AllTextContents() ([]string, error) {
	texts, err := l.locator.AllTextContents()
	return texts, playwrightError(l.ctx, err, l.describe("reading texts of"))
}

func (l *playwrightLocator) IsVisible() (bool, error) {
	visible, err := l.locator.IsVisible()
	return visible, playwrightError(l.ctx, err, l.describe("checking visibility of"))
}

func (l *playwrightLocator) IsEnabled() (bool, error) {
	enabled, err := l.locator.IsEnabled()
	return enabled, playwrightError(l.ctx, err, l.describe("checking state of"))
}

func (l *playwrightLocator) Count() (int, error) {
	n, err := l.locator.Count()
	return n, playwrightError(l.ctx, err, l.describe("counting"))
}

func (l *playwrightLocator) First() Locator {
	return &playwrightLocator{ctx: l.ctx, selector: l.selector, locator: l.locator.First()}
}

func (l *playwrightLocator) Screenshot(path string) error {
	_, err := l.locator.Screenshot(playwright.LocatorScreenshotOptions{Path: playwright.String(path)})
	return playwrightError(l.ctx, err, l.describe("taking screenshot of"))
}
