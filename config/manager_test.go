package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestParseEnvironment(t *testing.T) {
	for input, expected := range map[string]Environment{
		"dev":         Dev,
		"development": Dev,
		"DEV":         Dev,
		"Development": Dev,
		"staging":     Staging,
		"stage":       Staging,
		"prod":        Prod,
		"PRODUCTION":  Prod,
		"local":       Local,
		"":            Local,
		"qa":          Local,
		" dev":        Local,
	} {
		assert.Equal(t, expected, ParseEnvironment(input), "input %q", input)
	}
}

func TestManagerResolvesFromTestEnv(t *testing.T) {
	m := NewManager(lookupFrom(map[string]string{"TEST_ENV": "development", "ENVIRONMENT": "prod"}))
	assert.Equal(t, Dev, m.CurrentEnvironment())
	assert.Equal(t, "https://parabank-dev.parasoft.com", m.BaseURL())
}

func TestManagerFallsBackToEnvironmentVariable(t *testing.T) {
	m := NewManager(lookupFrom(map[string]string{"ENVIRONMENT": "stage"}))
	assert.Equal(t, Staging, m.CurrentEnvironment())
}

func TestManagerDefaultsToLocal(t *testing.T) {
	m := NewManager(lookupFrom(nil))
	assert.Equal(t, Local, m.CurrentEnvironment())
	assert.Equal(t, "https://parabank.parasoft.com", m.BaseURL())
	assert.False(t, m.Headless())
	assert.Equal(t, 0, m.Retries())
}

// Unknown selections degrade to Local silently rather than failing; this keeps the current
// behavior even though it can hide a misconfigured pipeline.
func TestManagerUnknownEnvironmentSilentlyResolvesToLocal(t *testing.T) {
	m := NewManager(lookupFrom(map[string]string{"TEST_ENV": "uat"}))
	assert.Equal(t, Local, m.CurrentEnvironment())
}

func TestManagerResolvesOnlyOnce(t *testing.T) {
	vars := map[string]string{"TEST_ENV": "prod"}
	m := NewManager(lookupFrom(vars))
	assert.Equal(t, Prod, m.CurrentEnvironment())
	vars["TEST_ENV"] = "dev"
	assert.Equal(t, Prod, m.CurrentEnvironment())
}

func TestTimeouts(t *testing.T) {
	m := NewManager(lookupFrom(nil))
	for env, expected := range map[Environment]time.Duration{
		Dev:     30 * time.Second,
		Staging: 30 * time.Second,
		Prod:    60 * time.Second,
		Local:   30 * time.Second,
	} {
		m.SetEnvironment(env)
		assert.Equal(t, expected, m.Timeout(), "environment %s", env)
		assert.Equal(t, expected, m.Config().Timeout)
	}
}

func TestSetEnvironment(t *testing.T) {
	m := NewManager(lookupFrom(map[string]string{"TEST_ENV": "dev"}))
	m.SetEnvironment(Prod)
	assert.Equal(t, Prod, m.CurrentEnvironment())
	assert.Equal(t, 1, m.Retries())
	assert.True(t, m.Headless())
}

func TestAPIURLFallsBackToBaseURL(t *testing.T) {
	m := NewManager(lookupFrom(nil))
	assert.Equal(t, "https://parabank.parasoft.com/parabank/services", m.APIURL())

	m.configs[Local] = EnvironmentConfig{BaseURL: "http://localhost:8080"}
	assert.Equal(t, "http://localhost:8080", m.APIURL())
}

func TestTestUsers(t *testing.T) {
	m := NewManager(lookupFrom(nil))
	users := m.TestUsers()
	assert.Equal(t, User{Username: "h-janrao", Password: "@Test1234"}, users.ValidUser)
	assert.Equal(t, User{Username: "invalid", Password: "invalid"}, users.InvalidUser)
	assert.Nil(t, users.AdminUser)
}

func TestLoadUsersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
local:
  validUser: {username: alice, password: secret}
  invalidUser: {username: nobody, password: wrong}
  adminUser: {username: root, password: toor}
`), 0o600))

	m := NewManager(lookupFrom(nil))
	require.NoError(t, m.LoadUsersFile(path))

	users := m.TestUsers()
	assert.Equal(t, "alice", users.ValidUser.Username)
	require.NotNil(t, users.AdminUser)
	assert.Equal(t, "root", users.AdminUser.Username)

	m.SetEnvironment(Dev)
	assert.Equal(t, "h-janrao", m.TestUsers().ValidUser.Username)
}

func TestLoadUsersFileRejectsUnknownEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte("qa:\n  validUser: {username: a, password: b}\n"), 0o600))

	err := NewManager(lookupFrom(nil)).LoadUsersFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"qa"`)
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PWFW_DOTENV_A=fromfile\nPWFW_DOTENV_B=fromfile\n"), 0o600))
	t.Setenv("PWFW_DOTENV_A", "fromprocess")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "fromprocess", os.Getenv("PWFW_DOTENV_A"))
	assert.Equal(t, "fromfile", os.Getenv("PWFW_DOTENV_B"))
	os.Unsetenv("PWFW_DOTENV_B")
}

func TestRunSettingsLocal(t *testing.T) {
	s := NewManager(lookupFrom(map[string]string{"HEADLESS": "true"})).RunSettings()
	assert.False(t, s.CI)
	assert.Equal(t, 4, s.Workers)
	assert.Equal(t, 0, s.Retries)
	assert.True(t, s.Headless)
	assert.Equal(t, "playwright", s.Engine)
	assert.Equal(t, 60*time.Second, s.TestTimeout)
}

func TestRunSettingsCI(t *testing.T) {
	s := NewManager(lookupFrom(map[string]string{"CI": "true", "HEADLESS": "false"})).RunSettings()
	assert.True(t, s.CI)
	assert.Equal(t, 1, s.Workers)
	assert.Equal(t, 2, s.Retries)
	assert.True(t, s.Headless)
	assert.Equal(t, ArtifactsOnFirstRetry, s.Trace)
}
