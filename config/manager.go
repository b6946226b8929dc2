package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Variables consulted, in order, to select the Environment.
const (
	EnvVarTestEnv     = "TEST_ENV"
	EnvVarEnvironment = "ENVIRONMENT"
)

// LookupFunc reads a variable from process configuration. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Manager resolves the current Environment and exposes its settings and credentials.
//
// One Manager is built at process start and passed to everything that needs it. Reads are safe
// from any goroutine once the environment has been resolved, but SetEnvironment mutates shared
// state without synchronization and must not be called while parallel workers are running.
type Manager struct {
	lookup      LookupFunc
	resolveOnce sync.Once
	currentEnv  Environment
	configs     map[Environment]EnvironmentConfig
	users       map[Environment]TestUsers
}

// NewManager creates a Manager. If lookup is nil, os.LookupEnv is used. The environment is not
// resolved until the first accessor call.
func NewManager(lookup LookupFunc) *Manager {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Manager{
		lookup:  lookup,
		configs: defaultConfigs(),
		users:   defaultUsers(),
	}
}

func (m *Manager) resolve() {
	m.resolveOnce.Do(func() {
		selection := ""
		for _, key := range []string{EnvVarTestEnv, EnvVarEnvironment} {
			if value, ok := m.lookup(key); ok && value != "" {
				selection = value
				break
			}
		}
		m.currentEnv = ParseEnvironment(selection)
	})
}

// Config returns the settings of the current Environment.
func (m *Manager) Config() EnvironmentConfig {
	m.resolve()
	return m.configs[m.currentEnv]
}

// TestUsers returns the credentials of the current Environment.
func (m *Manager) TestUsers() TestUsers {
	m.resolve()
	return m.users[m.currentEnv]
}

func (m *Manager) CurrentEnvironment() Environment {
	m.resolve()
	return m.currentEnv
}

// SetEnvironment overrides the resolved Environment. Not safe for concurrent use.
func (m *Manager) SetEnvironment(env Environment) {
	m.resolve()
	m.currentEnv = env
}

func (m *Manager) BaseURL() string { return m.Config().BaseURL }

// APIURL returns the API URL of the current Environment, or its BaseURL if it has none.
func (m *Manager) APIURL() string {
	c := m.Config()
	if c.APIURL == "" {
		return c.BaseURL
	}
	return c.APIURL
}

func (m *Manager) Timeout() time.Duration { return m.Config().Timeout }

func (m *Manager) Retries() int { return m.Config().Retries }

func (m *Manager) Headless() bool { return m.Config().Headless }

// LoadUsersFile replaces the credential sets named in a YAML document keyed by environment
// name, for example:
//
//	staging:
//	  validUser: {username: alice, password: secret}
//	  invalidUser: {username: nobody, password: wrong}
//
// Environments the file does not mention keep their built-in credentials.
func (m *Manager) LoadUsersFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading users file: %w", err)
	}
	var overrides map[string]TestUsers
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("malformed users file %s: %w", path, err)
	}
	for name, users := range overrides {
		env := Environment(name)
		if _, known := m.configs[env]; !known {
			return fmt.Errorf("users file %s names unknown environment %q", path, name)
		}
		m.users[env] = users
	}
	return nil
}

// LoadDotEnv loads variables from dotenv files into the process environment. Variables that are
// already set are not overridden, and files that do not exist are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}
