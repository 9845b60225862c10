// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/launchdump/launchdump/pkg/launch/frontend"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the launchdump command bound to app.
func NewRootCommand(app *App) *cobra.Command {
	var (
		req           DumpRequest
		printConfig   bool
		explainIssues bool
	)

	rootCmd := &cobra.Command{
		Use:   "launchdump [flags] <launch-file> [name:=value ...]",
		Short: "Print the commands a launch file would start",
		Long: TitleStyle.Render("launchdump") + SubtitleStyle.Render(" - print the commands a launch file would start") + `

launchdump evaluates a launch description without starting anything. For every
process the description would launch it prints one tab-prefixed line with the
fully resolved command, each token double-quoted.

Launch arguments follow the launch file as name:=value pairs. Flags must come
before the launch file.

` + SubtitleStyle.Render("Supported formats: ") + strings.Join(frontend.SupportedExtensions(), " ") + `

` + SubtitleStyle.Render("Examples:") + `
  ` + CmdStyle.Render("launchdump bringup.launch.xml") + `
  ` + CmdStyle.Render("launchdump -v bringup.launch.yaml robot:=r2 use_sim_time:=true") + `
  ` + CmdStyle.Render("launchdump --no-lookup demo.launch.toml") + `
  ` + CmdStyle.Render("launchdump --print-config"),
		Args: func(cmd *cobra.Command, args []string) error {
			if printConfig || explainIssues {
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case printConfig:
				return app.finish(cmd, app.PrintConfig(cmd.Context(), req.ConfigPath), req.Verbose)
			case explainIssues:
				return app.finish(cmd, app.ExplainIssues(), req.Verbose)
			}
			req.LaunchFile = args[0]
			req.Arguments = args[1:]
			return app.run(cmd, req)
		},
	}

	flags := rootCmd.Flags()
	flags.SetInterspersed(false)
	flags.BoolVarP(&req.Verbose, "verbose", "v", false, "enable verbose output and debug logs")
	flags.StringVar(&req.ConfigPath, "config", "", "config file (default is $XDG_CONFIG_HOME/launchdump/config.cue)")
	flags.BoolVar(&req.NoLookup, "no-lookup", false, "print executables without resolving them on PATH")
	flags.BoolVar(&printConfig, "print-config", false, "print the effective configuration as CUE and exit")
	flags.BoolVar(&explainIssues, "explain-issues", false, "describe every startup error launchdump can report and exit")

	return rootCmd
}

// run executes one dump and converts startup failures into an ExitError after
// rendering them on stderr.
func (a *App) run(cmd *cobra.Command, req DumpRequest) error {
	result, err := a.Dump(cmd.Context(), req)
	return a.finish(cmd, err, result.Verbose)
}

// finish renders err, if any, and turns it into an ExitError.
func (a *App) finish(cmd *cobra.Command, err error, verbose bool) error {
	if err == nil {
		return nil
	}
	renderStartupError(a.stderr, err, verbose)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return &ExitError{Code: 1, Err: err}
}

// Execute builds the production App and runs the root command.
// This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
