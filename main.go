package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hemantjanrao/playwrightFW/browser"
	"github.com/hemantjanrao/playwrightFW/config"
	"github.com/hemantjanrao/playwrightFW/framework"
	"github.com/hemantjanrao/playwrightFW/logging"
	"github.com/hemantjanrao/playwrightFW/parabank"
	"github.com/hemantjanrao/playwrightFW/reporter"
)

const (
	runLogFileName   = "run.log"
	allureResultsDir = "allure-results"
)

var errTestsFailed = errors.New("some tests failed")

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "playwrightFW",
		Short:         "Browser and API tests for the ParaBank demo application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var params commandParams
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the test suites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTests(cmd, &params, out)
		},
	}
	params.bind(runCmd)
	root.AddCommand(runCmd)
	return root
}

func runTests(cmd *cobra.Command, params *commandParams, out io.Writer) error {
	if err := config.LoadDotEnv(params.envFiles...); err != nil {
		return err
	}
	manager := config.NewManager(nil)
	if params.env != "" {
		manager.SetEnvironment(config.ParseEnvironment(params.env))
	}
	if params.usersFile != "" {
		if err := manager.LoadUsersFile(params.usersFile); err != nil {
			return err
		}
	}
	settings := params.apply(cmd, manager.RunSettings())

	log := logging.New(out)
	log.SetColors(!params.noColor)
	level, ok := logging.ParseLevel(settings.LogLevel)
	if !ok {
		log.Warn(fmt.Sprintf("Unknown log level %q, using INFO", settings.LogLevel))
	}
	log.SetLevel(level)

	artifacts, err := reporter.NewWriter(settings.ArtifactDir)
	if err != nil {
		return fmt.Errorf("cannot create artifact directory: %w", err)
	}
	allureDir, err := reporter.NewWriter(filepath.Join(settings.ArtifactDir, allureResultsDir))
	if err != nil {
		return fmt.Errorf("cannot create allure results directory: %w", err)
	}
	runLog, err := logging.NewZapLogger("json", settings.LogLevel, filepath.Join(settings.ArtifactDir, runLogFileName))
	if err != nil {
		return fmt.Errorf("cannot open run log: %w", err)
	}
	defer func() { _ = runLog.Sync() }()
	log.Mirror(runLog)

	log.Info(fmt.Sprintf("Environment: %s (%s)", manager.CurrentEnvironment(), manager.BaseURL()))
	log.Debug("Run settings: " + settings.String())

	framework.PrintFilterDescription(out, params.filters)

	b := browser.Lazy(settings.Engine, browser.LaunchOptions{
		Browser:  settings.Browser,
		Headless: settings.Headless,
		Viewport: browser.Viewport(settings.Viewport),
	})

	console := reporter.NewConsole(out, settings.Retries, !params.noColor)
	console.DebugOutputOnFailure = params.debug || params.debugAll
	console.DebugOutputOnSuccess = params.debugAll
	results := reporter.NewJSONWriter(artifacts)
	allure := reporter.NewAllureWriter(allureDir)
	metrics := reporter.NewMetrics(artifacts)

	runner := &framework.Runner{
		Workers:  settings.Workers,
		Retries:  settings.Retries,
		Timeout:  settings.TestTimeout,
		Filter:   params.filters.AsFilter,
		Observer: framework.Observers{console, results, allure, metrics},
		Logger:   log,
	}

	fixtures := parabank.NewFixtures(parabank.Env{
		Config:   manager,
		Settings: settings,
		Browser:  b,
		BaseURL:  params.baseURL,
	})
	suites := parabank.Suites(fixtures, parabank.NewLoginTestData(manager), settings.ExpectTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	outcome := runner.Run(ctx, suites)

	if err := b.Close(); err != nil {
		log.Warn("Failed to close browser: " + err.Error())
	}
	for _, err := range allure.Errors() {
		log.Warn(err.Error())
	}
	if path, err := results.Result(); err != nil {
		log.Warn("Failed to write results: " + err.Error())
	} else {
		log.Info("Results written to " + path)
	}
	if _, err := metrics.Result(); err != nil {
		log.Warn("Failed to write metrics: " + err.Error())
	}

	if outcome.Status != framework.RunPassed {
		if len(outcome.Failures) > 0 {
			fmt.Fprintln(out, "To rerun the failed tests:")
			fmt.Fprintf(out, "  %s\n", params.rerunArgs(os.Args[0], outcome.Failures))
		}
		return errTestsFailed
	}
	return nil
}
