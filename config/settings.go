package config

import (
	"fmt"
	"strings"
	"time"
)

// Variables consulted by RunSettings.
const (
	EnvVarCI            = "CI"
	EnvVarHeadless      = "HEADLESS"
	EnvVarBrowserEngine = "BROWSER_ENGINE"
	EnvVarBrowser       = "BROWSER"
	EnvVarArtifactDir   = "ARTIFACT_DIR"
	EnvVarLogLevel      = "LOG_LEVEL"
)

// ArtifactPolicy says when a test's artifacts (screenshots, traces) are kept.
type ArtifactPolicy string

const (
	ArtifactsOff            ArtifactPolicy = "off"
	ArtifactsOnFailure      ArtifactPolicy = "only-on-failure"
	ArtifactsRetainOnFailed ArtifactPolicy = "retain-on-failure"
	ArtifactsOnFirstRetry   ArtifactPolicy = "on-first-retry"
)

// Viewport is a browser window size in CSS pixels.
type Viewport struct {
	Width  int
	Height int
}

// RunSettings are the runner-level settings of a test run. They are mostly derived from the CI
// indicator: CI runs use one worker, two retries and a headless browser.
type RunSettings struct {
	CI             bool
	Workers        int
	Retries        int
	Headless       bool
	TestTimeout    time.Duration
	ExpectTimeout  time.Duration
	ActionTimeout  time.Duration
	Screenshots    ArtifactPolicy
	Trace          ArtifactPolicy
	Video          ArtifactPolicy
	ArtifactDir    string
	Engine         string
	Browser        string
	Viewport       Viewport
	Locale         string
	TimezoneID     string
	IgnoreHTTPSErr bool
	LogLevel       string
}

// RunSettings derives the run settings from process configuration.
func (m *Manager) RunSettings() RunSettings {
	ci := m.envOrDefaultBool(EnvVarCI, false)
	s := RunSettings{
		CI:             ci,
		Workers:        4,
		Retries:        0,
		Headless:       m.envOrDefault(EnvVarHeadless, "") == "true",
		TestTimeout:    60 * time.Second,
		ExpectTimeout:  10 * time.Second,
		ActionTimeout:  15 * time.Second,
		Screenshots:    ArtifactsOnFailure,
		Trace:          ArtifactsRetainOnFailed,
		Video:          ArtifactsOff,
		ArtifactDir:    m.envOrDefault(EnvVarArtifactDir, "playwright-report"),
		Engine:         strings.ToLower(m.envOrDefault(EnvVarBrowserEngine, "playwright")),
		Browser:        strings.ToLower(m.envOrDefault(EnvVarBrowser, "chromium")),
		Viewport:       Viewport{Width: 1280, Height: 720},
		Locale:         "en-US",
		TimezoneID:     "America/New_York",
		IgnoreHTTPSErr: true,
		LogLevel:       m.envOrDefault(EnvVarLogLevel, "info"),
	}
	if ci {
		s.Workers = 1
		s.Retries = 2
		s.Headless = true
		s.Trace = ArtifactsOnFirstRetry
		s.Video = ArtifactsRetainOnFailed
	}
	return s
}

func (s RunSettings) String() string {
	return fmt.Sprintf("workers=%d retries=%d headless=%t engine=%s browser=%s",
		s.Workers, s.Retries, s.Headless, s.Engine, s.Browser)
}

func (m *Manager) envOrDefault(key, fallback string) string {
	value, ok := m.lookup(key)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func (m *Manager) envOrDefaultBool(key string, fallback bool) bool {
	value := m.envOrDefault(key, "")
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	default:
		return fallback
	}
}
