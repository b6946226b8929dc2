package browser

import (
	"context"
	"sync"
)

// LazyBrowser launches its browser the first time a session is requested, so runs that never
// open a page never start one.
type LazyBrowser struct {
	launch func() (Browser, error)

	once    sync.Once
	lock    sync.Mutex
	browser Browser
	err     error
}

func Lazy(engine string, opts LaunchOptions) *LazyBrowser {
	return &LazyBrowser{launch: func() (Browser, error) { return Launch(engine, opts) }}
}

func (l *LazyBrowser) get() (Browser, error) {
	l.once.Do(func() {
		b, err := l.launch()
		l.lock.Lock()
		l.browser, l.err = b, err
		l.lock.Unlock()
	})
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.browser, l.err
}

// NewSession launches the browser if necessary. A failed launch is not retried; every later call
// returns the same error.
func (l *LazyBrowser) NewSession(ctx context.Context, opts SessionOptions) (Session, error) {
	b, err := l.get()
	if err != nil {
		return nil, err
	}
	return b.NewSession(ctx, opts)
}

// Launched reports whether a browser is running.
func (l *LazyBrowser) Launched() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.browser != nil
}

// Close closes the browser if it was ever launched.
func (l *LazyBrowser) Close() error {
	l.lock.Lock()
	b := l.browser
	l.browser = nil
	l.lock.Unlock()
	if b == nil {
		return nil
	}
	return b.Close()
}
