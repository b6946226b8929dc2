// Package parabank holds the page objects, fixtures, test data and suites for the ParaBank demo
// application.
package parabank

import (
	"github.com/hemantjanrao/playwrightFW/browser"
	"github.com/hemantjanrao/playwrightFW/logging"
	"github.com/hemantjanrao/playwrightFW/page"
)

const (
	selectorUsername    = `input[name="username"]`
	selectorPassword    = `input[name="password"]`
	selectorLoginButton = `input[value="Log In"]`
	selectorHomeLink    = `li.home`
	selectorError       = `.error`
)

// LoginPage is the login panel shown on every ParaBank page to anonymous visitors.
type LoginPage struct {
	*page.Page
	username    browser.Locator
	password    browser.Locator
	loginButton browser.Locator
	homeLink    browser.Locator
	errorText   browser.Locator
}

func NewLoginPage(p *page.Page) *LoginPage {
	return &LoginPage{
		Page:        p,
		username:    p.Locator(selectorUsername),
		password:    p.Locator(selectorPassword),
		loginButton: p.Locator(selectorLoginButton),
		homeLink:    p.Locator(selectorHomeLink),
		errorText:   p.Locator(selectorError),
	}
}

func (l *LoginPage) Navigate() error {
	return l.Logger().Step("Navigate to login page", func() error {
		return l.Goto("/")
	})
}

func (l *LoginPage) Login(username, password string) error {
	return l.Logger().Step("Login with username: "+username, func() error {
		if err := l.Fill(l.username, username); err != nil {
			return err
		}
		if err := l.Fill(l.password, password); err != nil {
			return err
		}
		if err := l.Click(l.loginButton, page.ClickOptions{}); err != nil {
			return err
		}
		l.Logger().Info("Login button clicked")
		return nil
	})
}

// IsOn reports whether the login form is displayed.
func (l *LoginPage) IsOn() bool {
	visible, _ := logging.StepValue(l.Logger(), "Check login page is displayed", func() (bool, error) {
		return l.IsVisible(l.loginButton), nil
	})
	return visible
}

// IsLoggedIn reports whether the navigation shown to logged-in customers is displayed.
func (l *LoginPage) IsLoggedIn() bool {
	visible, _ := logging.StepValue(l.Logger(), "Check user is logged in", func() (bool, error) {
		return l.IsVisible(l.homeLink), nil
	})
	return visible
}

func (l *LoginPage) GetLoginButtonText() (string, error) {
	return logging.StepValue(l.Logger(), "Read login button text", func() (string, error) {
		return l.GetText(l.loginButton)
	})
}

func (l *LoginPage) HomeLink() browser.Locator {
	return l.homeLink
}

func (l *LoginPage) ErrorMessage() browser.Locator {
	return l.errorText
}
