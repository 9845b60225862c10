// SPDX-License-Identifier: MPL-2.0

package dump

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/launchdump/launchdump/pkg/launch"
)

type (
	// Lookup locates a bare executable name on the search path of environ.
	Lookup interface {
		LookPath(name string, environ []string) (string, error)
	}

	// Interceptor turns materialized process launches into command lines.
	Interceptor struct {
		// Lookup resolves bare executable names. Nil leaves them unchanged.
		Lookup Lookup
		Logger *log.Logger
	}
)

// MaybeEmit returns the command line of entity when it is a process launch whose
// details were materialized by its visit. Other entities produce nothing.
func (i *Interceptor) MaybeEmit(entity launch.Entity, lc *launch.Context) (string, bool) {
	if entity.Kind() != launch.KindProcessLaunch {
		return "", false
	}
	launcher, ok := entity.(launch.ProcessLauncher)
	if !ok {
		return "", false
	}
	details := launcher.ProcessDetails()
	if details == nil {
		return "", false
	}
	return FormatLine(i.Tokens(details.Cmd, lc)), true
}

// Tokens resolves cmd. The executable is looked up when it is a bare name; arguments are
// trimmed and dropped when empty. A token that fails to resolve keeps its raw form.
func (i *Interceptor) Tokens(cmd []launch.Substitutions, lc *launch.Context) []string {
	if len(cmd) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(cmd))

	exe, err := ResolveOrRaw(cmd[0], lc)
	if err != nil {
		i.debug("executable kept unresolved", "token", exe, "err", err)
	}
	tokens = append(tokens, i.lookPath(exe, lc))

	for _, token := range cmd[1:] {
		arg, err := ResolveOrRaw(token, lc)
		if err != nil {
			i.debug("argument kept unresolved", "token", arg, "err", err)
		}
		if arg = strings.TrimSpace(arg); arg != "" {
			tokens = append(tokens, arg)
		}
	}
	return tokens
}

// FormatLine wraps every token in double quotes, joins them with single spaces and
// prefixes the line with a tab.
func FormatLine(tokens []string) string {
	var sb strings.Builder
	sb.WriteByte('\t')
	for n, tok := range tokens {
		if n > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('"')
		sb.WriteString(tok)
		sb.WriteByte('"')
	}
	return sb.String()
}

func (i *Interceptor) lookPath(exe string, lc *launch.Context) string {
	if i.Lookup == nil || exe == "" || hasPathSeparator(exe) {
		return exe
	}
	path, err := i.Lookup.LookPath(exe, lc.Environ())
	if err != nil || path == "" {
		i.debug("executable not found, keeping bare name", "name", exe, "err", err)
		return exe
	}
	return path
}

func hasPathSeparator(s string) bool {
	return strings.ContainsRune(s, os.PathSeparator) || strings.ContainsRune(s, '/')
}

func (i *Interceptor) debug(msg string, keyvals ...any) {
	if i.Logger != nil {
		i.Logger.Debug(msg, keyvals...)
	}
}
