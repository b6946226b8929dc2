package config

import (
	"strings"
	"time"
)

// Environment is a named deployment target of the application under test.
type Environment string

const (
	Dev     Environment = "dev"
	Staging Environment = "staging"
	Prod    Environment = "prod"
	Local   Environment = "local"
)

// AllEnvironments lists every known environment in table order.
var AllEnvironments = []Environment{Dev, Staging, Prod, Local}

// ParseEnvironment maps an environment-selection string to an Environment. The mapping is
// total: anything it does not recognize, including the empty string, selects Local.
func ParseEnvironment(s string) Environment {
	switch strings.ToLower(s) {
	case "dev", "development":
		return Dev
	case "staging", "stage":
		return Staging
	case "prod", "production":
		return Prod
	default:
		return Local
	}
}

// EnvironmentConfig holds the settings for one Environment.
type EnvironmentConfig struct {
	BaseURL string
	// APIURL is optional; Manager.APIURL falls back to BaseURL when it is empty.
	APIURL   string
	Timeout  time.Duration
	Retries  int
	Headless bool
}

// User is a set of login credentials.
type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// TestUsers is the credential set for one Environment.
type TestUsers struct {
	ValidUser   User  `yaml:"validUser"`
	InvalidUser User  `yaml:"invalidUser"`
	AdminUser   *User `yaml:"adminUser,omitempty"`
}

func defaultConfigs() map[Environment]EnvironmentConfig {
	return map[Environment]EnvironmentConfig{
		Dev: {
			BaseURL:  "https://parabank-dev.parasoft.com",
			APIURL:   "https://parabank-dev.parasoft.com/parabank/services",
			Timeout:  30 * time.Second,
			Retries:  2,
			Headless: true,
		},
		Staging: {
			BaseURL:  "https://parabank-staging.parasoft.com",
			APIURL:   "https://parabank-staging.parasoft.com/parabank/services",
			Timeout:  30 * time.Second,
			Retries:  2,
			Headless: true,
		},
		Prod: {
			BaseURL:  "https://parabank.parasoft.com",
			APIURL:   "https://parabank.parasoft.com/parabank/services",
			Timeout:  60 * time.Second,
			Retries:  1,
			Headless: true,
		},
		Local: {
			BaseURL:  "https://parabank.parasoft.com",
			APIURL:   "https://parabank.parasoft.com/parabank/services",
			Timeout:  30 * time.Second,
			Retries:  0,
			Headless: false,
		},
	}
}

func defaultUsers() map[Environment]TestUsers {
	users := make(map[Environment]TestUsers, len(AllEnvironments))
	for _, env := range AllEnvironments {
		users[env] = TestUsers{
			ValidUser:   User{Username: "h-janrao", Password: "@Test1234"},
			InvalidUser: User{Username: "invalid", Password: "invalid"},
		}
	}
	return users
}
