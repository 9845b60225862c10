// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/launchdump/launchdump/internal/issue"
)

// issueStylePath is the glamour style used for catalogued issue guidance.
var issueStylePath = "dark"

// renderStartupError prints err on stderr. Actionable errors show their suggestions;
// in verbose mode the error chain and the catalogued issue guidance follow.
func renderStartupError(stderr io.Writer, err error, verbose bool) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+err.Error())
		return
	}

	fmt.Fprintln(stderr, ErrorStyle.Render("Error: ")+ae.Format(verbose))

	catalogEntry := ae.Issue()
	if catalogEntry == nil {
		return
	}
	if !verbose {
		fmt.Fprintln(stderr, renderHintStyle.Render("Run again with --verbose for more help."))
		return
	}
	rendered, renderErr := catalogEntry.Render(issueStylePath)
	if renderErr != nil {
		log.Warn("failed to render issue catalog entry", "issueID", ae.IssueID, "error", renderErr)
		return
	}
	fmt.Fprint(stderr, rendered)
}

// ExplainIssues renders every catalogued issue to stdout.
func (a *App) ExplainIssues() error {
	for _, entry := range issue.Values() {
		rendered, err := entry.Render(issueStylePath)
		if err != nil {
			return fmt.Errorf("render issue %d: %w", entry.Id(), err)
		}
		if _, err := fmt.Fprint(*a.stdout, rendered); err != nil {
			return err
		}
	}
	return nil
}
