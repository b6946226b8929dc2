package main

import (
	"regexp"
	"strings"
	"time"

	"github.com/alessio/shellescape"
	"github.com/spf13/cobra"

	"github.com/hemantjanrao/playwrightFW/config"
	"github.com/hemantjanrao/playwrightFW/framework"
)

type commandParams struct {
	env       string
	filters   framework.RegexFilters
	workers   int
	retries   int
	timeout   time.Duration
	headless  bool
	engine    string
	browser   string
	baseURL   string
	artifacts string
	logLevel  string
	usersFile string
	envFiles  []string
	debug     bool
	debugAll  bool
	noColor   bool
}

func (c *commandParams) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&c.env, "env", "", "environment to test: dev, staging, prod or local (default from TEST_ENV)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.IntVar(&c.workers, "workers", 0, "number of tests to run in parallel (default 4, or 1 on CI)")
	fs.IntVar(&c.retries, "retries", 0, "number of times a failed test is rerun (default 0, or 2 on CI)")
	fs.DurationVar(&c.timeout, "timeout", 0, "time limit for each test attempt (default 60s)")
	fs.BoolVar(&c.headless, "headless", false, "run the browser without a window")
	fs.StringVar(&c.engine, "engine", "", "browser engine: playwright or chromedp (default from BROWSER_ENGINE)")
	fs.StringVar(&c.browser, "browser", "", "browser to drive: chromium, firefox or webkit")
	fs.StringVar(&c.baseURL, "base-url", "", "override the environment's base URL")
	fs.StringVar(&c.artifacts, "artifacts", "", "directory for reports and screenshots (default playwright-report)")
	fs.StringVar(&c.logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (default from LOG_LEVEL)")
	fs.StringVar(&c.usersFile, "users-file", "", "YAML file overriding the test credentials")
	fs.StringSliceVar(&c.envFiles, "env-file", []string{".env"}, "dotenv file(s) to load before reading configuration")
	fs.BoolVar(&c.debug, "debug", false, "print the log of failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "print the log of all tests")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")
}

// apply overrides the settings derived from the environment with the flags that were given on
// the command line.
func (c *commandParams) apply(cmd *cobra.Command, s config.RunSettings) config.RunSettings {
	fs := cmd.Flags()
	if fs.Changed("workers") {
		s.Workers = c.workers
	}
	if fs.Changed("retries") {
		s.Retries = c.retries
	}
	if fs.Changed("timeout") {
		s.TestTimeout = c.timeout
	}
	if fs.Changed("headless") {
		s.Headless = c.headless
	}
	if c.engine != "" {
		s.Engine = strings.ToLower(c.engine)
	}
	if c.browser != "" {
		s.Browser = strings.ToLower(c.browser)
	}
	if c.artifacts != "" {
		s.ArtifactDir = c.artifacts
	}
	if c.logLevel != "" {
		s.LogLevel = c.logLevel
	}
	return s
}

// rerunArgs builds the arguments that rerun exactly the given tests with the same environment.
func (c *commandParams) rerunArgs(program string, failures []framework.TestOutcome) commandBuilder {
	var b commandBuilder
	b.add(program, "run")
	if c.env != "" {
		b.add("--env", c.env)
	}
	if c.baseURL != "" {
		b.add("--base-url", c.baseURL)
	}
	for _, f := range failures {
		b.add("--run", "^"+regexp.QuoteMeta(f.ID.String())+"$")
	}
	return b
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
