// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/launchdump/launchdump/internal/config"
	"github.com/launchdump/launchdump/internal/dump"
	"github.com/launchdump/launchdump/internal/eventloop"
	"github.com/launchdump/launchdump/internal/execpath"
	"github.com/launchdump/launchdump/internal/issue"
	"github.com/launchdump/launchdump/internal/launcharg"
	"github.com/launchdump/launchdump/pkg/launch"
	"github.com/launchdump/launchdump/pkg/launch/frontend"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer.
	App struct {
		Config        ConfigProvider
		Lookup        LookupFactory
		DriverFactory DriverFactoryFunc
		stdout        **os.File
		stderr        io.Writer
		environ       func() []string
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config        ConfigProvider
		Lookup        LookupFactory
		DriverFactory DriverFactoryFunc
		// Stdout is the stream suppressed while the launch description is evaluated.
		// Command lines are written to the file it held before suppression.
		Stdout **os.File
		Stderr io.Writer
		// Environ returns the base environment of the evaluation. Nil means os.Environ.
		Environ func() []string
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// LookupFactory builds the executable lookup for the configured extra search paths.
	LookupFactory func(extraPaths []string, logger *log.Logger) dump.Lookup

	// DriverFactoryFunc builds the factory of the async driver used by one evaluation.
	DriverFactoryFunc func(ctx context.Context, logger *log.Logger) launch.DriverFactory

	// DumpRequest captures the CLI inputs of one run.
	DumpRequest struct {
		// LaunchFile is the path of the launch file to evaluate.
		LaunchFile string
		// Arguments are the raw name:=value tokens following the launch file.
		Arguments []string
		// ConfigPath is the explicit --config flag value.
		ConfigPath string
		Verbose    bool
		NoLookup   bool
	}

	// DumpResult describes a run that got as far as walking the launch description.
	DumpResult struct {
		Summary dump.Summary
		// Fatal is the failure that aborted the walk, if any. It has already been
		// reported on stderr and does not change the exit status.
		Fatal error
		// Verbose is the effective verbosity after merging flags and configuration.
		Verbose bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = &os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Lookup == nil {
		deps.Lookup = func(extraPaths []string, logger *log.Logger) dump.Lookup {
			return execpath.New(extraPaths, logger)
		}
	}
	if deps.DriverFactory == nil {
		deps.DriverFactory = eventloop.Factory
	}
	if deps.Environ == nil {
		deps.Environ = os.Environ
	}

	return &App{
		Config:        deps.Config,
		Lookup:        deps.Lookup,
		DriverFactory: deps.DriverFactory,
		stdout:        deps.Stdout,
		stderr:        deps.Stderr,
		environ:       deps.Environ,
	}, nil
}

// PrintConfig writes the effective configuration to stdout as a CUE document.
func (a *App) PrintConfig(ctx context.Context, configPath string) error {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: configPath})
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(*a.stdout, config.GenerateCUE(cfg))
	return err
}

// Dump evaluates the launch file of req and prints its command lines. Only startup
// failures are returned as errors; they are *issue.ActionableError values.
func (a *App) Dump(ctx context.Context, req DumpRequest) (DumpResult, error) {
	result := DumpResult{Verbose: req.Verbose}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: req.ConfigPath})
	if err != nil {
		return result, err
	}
	result.Verbose = req.Verbose || cfg.UI.Verbose
	logger := newLogger(a.stderr, cfg.UI.LogLevel, result.Verbose)

	if err := checkLaunchFile(req.LaunchFile); err != nil {
		return result, err
	}

	pairs, err := launcharg.Parse(req.Arguments)
	if err != nil {
		return result, issue.NewErrorContext().
			WithOperation("parse launch arguments").
			WithSuggestion("Pass every launch argument as name:=value after the launch file").
			WithIssue(issue.MalformedArgumentId).
			Wrap(err).
			BuildError()
	}
	logger.Debug("launch arguments", "names", launcharg.Names(pairs))

	if _, err := frontend.ForPath(req.LaunchFile); err != nil {
		return result, issue.NewErrorContext().
			WithOperation("select launch file format").
			WithResource(req.LaunchFile).
			WithSuggestion(fmt.Sprintf("Use one of the supported extensions: %v", frontend.SupportedExtensions())).
			WithIssue(issue.UnsupportedFormatId).
			Wrap(err).
			BuildError()
	}

	parser := &frontend.Parser{MaxFileSize: cfg.Frontend.MaxFileSize, Logger: logger}
	root, err := parser.NewRoot(req.LaunchFile, pairs)
	if err != nil {
		return result, issue.WrapWithContext(err, "resolve launch file path", req.LaunchFile)
	}

	lookup := a.Lookup(cfg.Lookup.ExtraPaths, logger)
	lc := launch.NewContext(
		launch.WithEnviron(a.environ()),
		launch.WithLookPath(lookup.LookPath),
		launch.WithDriverFactory(a.DriverFactory(ctx, logger)),
	)

	interceptor := &dump.Interceptor{Logger: logger}
	if cfg.Lookup.Enabled && !req.NoLookup {
		interceptor.Lookup = lookup
	}

	dumper := &dump.Dumper{
		Interceptor: interceptor,
		Stdout:      a.stdout,
		Diagnostics: a.stderr,
		Logger:      logger,
	}
	summary, err := dumper.Run(ctx, root, lc)
	result.Summary = summary
	if err != nil {
		var fatal *dump.FatalWalkError
		if !errors.As(err, &fatal) {
			// Suppression could not be set up; nothing was walked.
			return result, issue.WrapWithOperation(err, "evaluate launch file")
		}
		result.Fatal = err
	}
	logger.Info("dump finished",
		"visited", summary.Visited,
		"failed", summary.Failed,
		"emitted", summary.Emitted,
		"cancelled", summary.Cancelled)
	return result, nil
}

func checkLaunchFile(path string) error {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		err = fmt.Errorf("%s is a directory", path)
	}
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("read launch file").
			WithResource(path).
			WithSuggestion("Check that the launch file exists and is readable").
			WithIssue(issue.LaunchFileNotFoundId).
			Wrap(err).
			BuildError()
	}
	return nil
}

// newLogger returns the stderr diagnostic logger. Verbose mode forces debug level.
func newLogger(w io.Writer, level config.LogLevel, verbose bool) *log.Logger {
	lvl, err := log.ParseLevel(level.String())
	if err != nil {
		lvl = log.WarnLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  lvl,
	})
}
