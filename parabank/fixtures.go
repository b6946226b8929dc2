package parabank

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/hemantjanrao/playwrightFW/api"
	"github.com/hemantjanrao/playwrightFW/browser"
	"github.com/hemantjanrao/playwrightFW/config"
	"github.com/hemantjanrao/playwrightFW/framework"
	"github.com/hemantjanrao/playwrightFW/page"
)

const ScreenshotsDir = "screenshots"

var errNoTest = errors.New("fixture can only be used by a running test")

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Env is what the fixtures need from the process: configuration and a launched browser. Browser
// may be nil for runs that only call the API.
type Env struct {
	Config   *config.Manager
	Settings config.RunSettings
	Browser  browser.Browser

	// BaseURL replaces the environment's base URL when set.
	BaseURL string
}

func (e Env) baseURL() string {
	if e.BaseURL != "" {
		return e.BaseURL
	}
	return e.Config.BaseURL()
}

// Fixtures are the per-test resources shared by the ParaBank suites.
type Fixtures struct {
	// PageSession is a new browser session on the application's home page.
	PageSession framework.Fixture[*page.Page]

	// APIClient is an HTTP client rooted at the application's base URL. Its auth token is
	// cleared when the test ends.
	APIClient framework.Fixture[*api.Client]

	LoginPage framework.Fixture[*LoginPage]
}

func NewFixtures(env Env) *Fixtures {
	f := &Fixtures{}

	f.PageSession = framework.Define("page", func(s *framework.Scope) (*page.Page, framework.Release, error) {
		t := s.Test()
		if t == nil {
			return nil, nil, errNoTest
		}
		if env.Browser == nil {
			return nil, nil, errors.New("no browser was launched for this run")
		}
		session, err := env.Browser.NewSession(t.Context(), browser.SessionOptions{
			BaseURL:           env.baseURL(),
			Viewport:          browser.Viewport(env.Settings.Viewport),
			IgnoreHTTPSErrors: env.Settings.IgnoreHTTPSErr,
			Locale:            env.Settings.Locale,
			TimezoneID:        env.Settings.TimezoneID,
		})
		if err != nil {
			return nil, nil, err
		}
		session.SetDefaultTimeout(env.Config.Timeout())
		p := page.New(session, t.Logger()).
			WithContext(t.Context()).
			WithScreenshotDir(filepath.Join(env.Settings.ArtifactDir, ScreenshotsDir))
		if err := p.Goto("/"); err != nil {
			_ = session.Close()
			return nil, nil, err
		}
		release := func() error {
			if t.Failed() && env.Settings.Screenshots != config.ArtifactsOff {
				if path, err := p.TakeScreenshot(screenshotName(t)); err != nil {
					t.Logger().Warn("Could not capture failure screenshot: " + err.Error())
				} else {
					t.Logger().Info("Failure screenshot saved: " + path)
				}
			}
			return session.Close()
		}
		return p, release, nil
	})

	f.APIClient = framework.Define("apiClient", func(s *framework.Scope) (*api.Client, framework.Release, error) {
		t := s.Test()
		if t == nil {
			return nil, nil, errNoTest
		}
		client, err := api.NewClient(t.Context(), env.baseURL(), t, t.Logger())
		if err != nil {
			return nil, nil, err
		}
		client.SetTimeout(env.Config.Timeout())
		return client, func() error {
			client.ClearAuthToken()
			return nil
		}, nil
	})

	f.LoginPage = framework.Define("loginPage", func(s *framework.Scope) (*LoginPage, framework.Release, error) {
		p, err := f.PageSession.Resolve(s)
		if err != nil {
			return nil, nil, err
		}
		return NewLoginPage(p), nil, nil
	})

	return f
}

func screenshotName(t *framework.Context) string {
	id := t.ID()
	name := unsafeFileChars.ReplaceAllString(id.Suite+"-"+id.Title, "-")
	return fmt.Sprintf("%s-retry%d", name, t.Retry())
}
