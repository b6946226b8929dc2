// Package browser abstracts the automation engine that drives a real browser. Page objects talk
// to Session and Locator only; the engines behind them are playwright-go and chromedp.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrTimeout is matched by errors.Is for every error caused by an engine timeout.
var ErrTimeout = errors.New("timeout exceeded")

// ErrSessionClosed is matched by errors.Is for actions that fail because the session's context
// was cancelled.
var ErrSessionClosed = errors.New("browser session closed")

const (
	EnginePlaywright = "playwright"
	EngineChromedp   = "chromedp"
)

type LoadState string

const (
	LoadStateLoad             LoadState = "load"
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	LoadStateNetworkIdle      LoadState = "networkidle"
)

type ElementState string

const (
	StateVisible  ElementState = "visible"
	StateHidden   ElementState = "hidden"
	StateAttached ElementState = "attached"
	StateDetached ElementState = "detached"
)

type Viewport struct {
	Width  int
	Height int
}

type LaunchOptions struct {
	// Browser is "chromium", "firefox" or "webkit". The chromedp engine only drives Chromium.
	Browser  string
	Headless bool
	Viewport Viewport
}

type SessionOptions struct {
	BaseURL           string
	Viewport          Viewport
	IgnoreHTTPSErrors bool
	Locale            string
	TimezoneID        string
}

// ClickOptions tunes a single click. A zero Timeout means the session default.
type ClickOptions struct {
	Force   bool
	Timeout time.Duration
}

// Browser is a launched browser process.
type Browser interface {
	// NewSession opens an isolated browsing context with a single page.
	NewSession(ctx context.Context, opts SessionOptions) (Session, error)
	Close() error
}

// Session is one open page.
type Session interface {
	// Goto navigates to url, resolved against the session's base URL when relative.
	Goto(url string, waitUntil LoadState) error
	WaitForLoadState(state LoadState, timeout time.Duration) error
	Locator(selector string) Locator
	URL() string
	Title() (string, error)
	Reload() error
	GoBack() error
	PressKey(key string) error
	Screenshot(path string, fullPage bool) error
	SetDefaultTimeout(timeout time.Duration)
	Close() error
}

// Locator is a lazy reference to the elements matching a selector. Nothing is looked up until
// one of its methods is called.
type Locator interface {
	Selector() string
	WaitFor(state ElementState, timeout time.Duration) error
	Click(opts ClickOptions) error
	Fill(value string) error
	SelectOption(value string) error
	Check() error
	Uncheck() error
	Hover() error
	ScrollIntoView() error
	TextContent() (string, error)
	AllTextContents() ([]string, error)
	IsVisible() (bool, error)
	IsEnabled() (bool, error)
	Count() (int, error)
	First() Locator
	Screenshot(path string) error
}

// Launch starts a browser with the named engine.
func Launch(engine string, opts LaunchOptions) (Browser, error) {
	if opts.Browser == "" {
		opts.Browser = "chromium"
	}
	switch strings.ToLower(engine) {
	case "", EnginePlaywright:
		return launchPlaywright(opts)
	case EngineChromedp:
		if opts.Browser != "chromium" {
			return nil, fmt.Errorf("the %s engine cannot drive %q", EngineChromedp, opts.Browser)
		}
		return launchChromedp(opts)
	default:
		return nil, fmt.Errorf("unknown browser engine %q", engine)
	}
}

func resolveURL(base, target string) (string, error) {
	if base == "" {
		return target, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	t, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", target, err)
	}
	return b.ResolveReference(t).String(), nil
}

// CloseOnDone calls closeFn once ctx is done, unless stop is called first. stop may be called
// any number of times.
func CloseOnDone(ctx context.Context, closeFn func()) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			select {
			case <-done:
			default:
				closeFn()
			}
		case <-done:
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func closedError(ctx context.Context, what string) error {
	return fmt.Errorf("%s: %w: %s", what, ErrSessionClosed, context.Cause(ctx))
}

func timeoutError(err error, what string) error {
	return fmt.Errorf("%w: %s: %s", ErrTimeout, what, err)
}
