package parabank

import (
	"fmt"
	"net/http"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hemantjanrao/playwrightFW/api"
	"github.com/hemantjanrao/playwrightFW/framework"
)

const (
	pathLogin        = "/parabank/login.htm"
	pathCustomer     = "/parabank/services/bank/customers/%d"
	pathBankInfo     = "/parabank/services/bank/getBankInfo"
	sampleCustomerID = 12212

	maxAPIResponseTime = 2 * time.Second
)

// Suites returns every ParaBank suite. expectTimeout bounds the visibility checks made by the
// tests themselves.
func Suites(f *Fixtures, data LoginTestData, expectTimeout time.Duration) []framework.Suite {
	return []framework.Suite{
		AuthenticationSuite(f, data, expectTimeout),
		APISuite(f, data, expectTimeout),
	}
}

func AuthenticationSuite(f *Fixtures, data LoginTestData, expectTimeout time.Duration) framework.Suite {
	return framework.Suite{
		Name: "Authentication",
		BeforeEach: func(c *framework.Context) {
			c.Logger().Info("Setting up authentication test")
			require.NoError(c, f.LoginPage.Get(c.Fixtures()).Navigate())
		},
		Tests: []framework.Test{
			{
				Title: "Login with valid credentials via UI @smoke",
				Body: func(c *framework.Context) {
					login := f.LoginPage.Get(c.Fixtures())
					user := data.ValidUser()

					require.NoError(c, login.Login(user.Username, user.Password))

					require.NoError(c, login.WaitForVisible(login.HomeLink(), expectTimeout))
					require.True(c, login.IsLoggedIn(), "User should be logged in")

					c.Logger().Info("Login test completed successfully")
				},
			},
			{
				Title: "Login with invalid credentials @negative",
				Body: func(c *framework.Context) {
					login := f.LoginPage.Get(c.Fixtures())
					user := data.InvalidUser()

					require.NoError(c, login.Login(user.Username, user.Password))

					require.NoError(c, login.WaitForVisible(login.ErrorMessage(), expectTimeout))

					c.Logger().Info("Invalid login test completed")
				},
			},
			{
				Title: "Verify login page is displayed @smoke",
				Body: func(c *framework.Context) {
					login := f.LoginPage.Get(c.Fixtures())
					require.True(c, login.IsOn(), "Login page should be displayed")

					c.Logger().Info("Login page verification completed")
				},
			},
		},
	}
}

func APISuite(f *Fixtures, data LoginTestData, expectTimeout time.Duration) framework.Suite {
	loginForm := func() api.RequestOptions {
		user := data.ValidUser()
		return api.RequestOptions{Form: map[string]string{
			"username": user.Username,
			"password": user.Password,
		}}
	}

	return framework.Suite{
		Name: "API Testing Examples",
		Tests: []framework.Test{
			{
				Title: "Authentication using API @api",
				Body: func(c *framework.Context) {
					client := f.APIClient.Get(c.Fixtures())

					resp, err := client.Post(pathLogin, loginForm())
					require.NoError(c, err)

					client.AssertStatusCode(resp, http.StatusOK)
					c.Logger().Info("API login successful")
				},
			},
			{
				Title: "Get account information via API @api",
				Body: func(c *framework.Context) {
					client := f.APIClient.Get(c.Fixtures())

					_, err := client.Post(pathLogin, loginForm())
					require.NoError(c, err)

					resp, err := client.Get(fmt.Sprintf(pathCustomer, sampleCustomerID), api.RequestOptions{
						Headers: map[string]string{"Accept": "application/json"},
					})
					require.NoError(c, err)
					client.AssertStatusCode(resp, http.StatusOK)

					customer, err := api.DecodeJSON[map[string]interface{}](resp)
					require.NoError(c, err)
					c.Logger().Info("Customer data retrieved", customer)
				},
			},
			{
				Title: "Verify API response time @performance",
				Body: func(c *framework.Context) {
					client := f.APIClient.Get(c.Fixtures())

					start := time.Now()
					resp, err := client.Get(pathBankInfo, api.RequestOptions{})
					elapsed := time.Since(start)
					require.NoError(c, err)

					client.AssertStatusCode(resp, http.StatusOK)
					require.Less(c, elapsed, maxAPIResponseTime, "API response time should be under 2 seconds")

					c.Logger().Info(fmt.Sprintf("API response time: %dms", elapsed.Milliseconds()))
				},
			},
			{
				Title: "Combined API and UI test @integration",
				Body: func(c *framework.Context) {
					client := f.APIClient.Get(c.Fixtures())
					p := f.PageSession.Get(c.Fixtures())

					resp, err := client.Post(pathLogin, loginForm())
					require.NoError(c, err)
					client.AssertStatusCode(resp, http.StatusOK)

					require.NoError(c, p.Goto("/"))
					require.NoError(c, p.WaitForVisible(p.Locator(selectorHomeLink), expectTimeout))

					c.Logger().Info("Combined API and UI test completed")
				},
			},
		},
	}
}
