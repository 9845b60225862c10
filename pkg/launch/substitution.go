// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/launchdump/launchdump/pkg/ament"
)

var (
	// ErrUnboundConfiguration is the sentinel wrapped by UnboundConfigurationError.
	ErrUnboundConfiguration = errors.New("launch configuration does not exist")
	// ErrUnsetEnvironment is returned when $(env NAME) has no value and no default.
	ErrUnsetEnvironment = errors.New("environment variable does not exist")
	// ErrNoLookup is returned by $(find-exec) when the context has no executable lookup.
	ErrNoLookup = errors.New("no executable lookup configured")
	// ErrInvalidBool is the sentinel wrapped by InvalidBoolError.
	ErrInvalidBool = errors.New("invalid boolean value")
)

type (
	// Substitution is one resolvable part of a value.
	Substitution interface {
		// Perform resolves the part against lc. It must not bind launch configurations.
		Perform(lc *Context) (string, error)
		// String returns the unresolved textual form, e.g. "$(var greeting)".
		String() string
	}

	// Substitutions is an ordered sequence of parts whose resolutions are concatenated.
	Substitutions []Substitution

	// Text is a literal part.
	Text string

	// LaunchConfiguration is $(var name).
	LaunchConfiguration struct {
		Name Substitutions
	}

	// EnvironmentVariable is $(env NAME [default]) or, when Optional, $(optenv NAME [default]).
	EnvironmentVariable struct {
		Name       Substitutions
		Default    Substitutions
		HasDefault bool
		Optional   bool
	}

	// FindExecutable is $(find-exec name).
	FindExecutable struct {
		Name Substitutions
	}

	// FindPackagePrefix is $(find-pkg-prefix pkg).
	FindPackagePrefix struct {
		Package Substitutions
	}

	// FindPackageShare is $(find-pkg-share pkg).
	FindPackageShare struct {
		Package Substitutions
	}

	// ExecutableInPackage is $(exec-in-pkg executable pkg).
	ExecutableInPackage struct {
		Executable Substitutions
		Package    Substitutions
	}

	// ThisLaunchFile is $(filename); Path is bound when the file is parsed.
	ThisLaunchFile struct {
		Path string
	}

	// ThisLaunchFileDir is $(dirname); Path is bound when the file is parsed.
	ThisLaunchFileDir struct {
		Path string
	}

	// NotSubstitution is $(not value).
	NotSubstitution struct {
		Value Substitutions
	}

	// AndSubstitution is $(and left right).
	AndSubstitution struct {
		Left, Right Substitutions
	}

	// OrSubstitution is $(or left right).
	OrSubstitution struct {
		Left, Right Substitutions
	}

	// EqualsSubstitution is $(equals left right).
	EqualsSubstitution struct {
		Left, Right Substitutions
	}

	// UnboundConfigurationError is returned when $(var name) references an unbound name.
	UnboundConfigurationError struct {
		Name string
	}

	// InvalidBoolError is returned when a value is not one of true, false, 1 or 0.
	InvalidBoolError struct {
		Value string
	}
)

// Literal returns a Substitutions holding only s.
func Literal(s string) Substitutions {
	return Substitutions{Text(s)}
}

// Perform resolves every part and concatenates the results. Nil parts are skipped.
func (s Substitutions) Perform(lc *Context) (string, error) {
	var sb strings.Builder
	for _, part := range s {
		if part == nil {
			continue
		}
		v, err := part.Perform(lc)
		if err != nil {
			return "", err
		}
		sb.WriteString(v)
	}
	return sb.String(), nil
}

// String concatenates the unresolved textual forms of the parts, skipping nil ones.
func (s Substitutions) String() string {
	var sb strings.Builder
	for _, part := range s {
		if part == nil {
			continue
		}
		sb.WriteString(part.String())
	}
	return sb.String()
}

func (t Text) Perform(*Context) (string, error) { return string(t), nil }
func (t Text) String() string                   { return string(t) }

func (s LaunchConfiguration) Perform(lc *Context) (string, error) {
	name, err := s.Name.Perform(lc)
	if err != nil {
		return "", err
	}
	v, ok := lc.Configuration(name)
	if !ok {
		return "", &UnboundConfigurationError{Name: name}
	}
	return v, nil
}

func (s LaunchConfiguration) String() string { return render("var", s.Name) }

func (s EnvironmentVariable) Perform(lc *Context) (string, error) {
	name, err := s.Name.Perform(lc)
	if err != nil {
		return "", err
	}
	if v, ok := lc.Getenv(name); ok {
		return v, nil
	}
	if s.HasDefault {
		return s.Default.Perform(lc)
	}
	if s.Optional {
		return "", nil
	}
	return "", fmt.Errorf("%w: '%s'", ErrUnsetEnvironment, name)
}

func (s EnvironmentVariable) String() string {
	verb := "env"
	if s.Optional {
		verb = "optenv"
	}
	if s.HasDefault {
		return render(verb, s.Name, s.Default)
	}
	return render(verb, s.Name)
}

func (s FindExecutable) Perform(lc *Context) (string, error) {
	name, err := s.Name.Perform(lc)
	if err != nil {
		return "", err
	}
	return lc.LookPath(name)
}

func (s FindExecutable) String() string { return render("find-exec", s.Name) }

func (s FindPackagePrefix) Perform(lc *Context) (string, error) {
	pkg, err := s.Package.Perform(lc)
	if err != nil {
		return "", err
	}
	return ament.PackagePrefix(pkg, lc.Getenv)
}

func (s FindPackagePrefix) String() string { return render("find-pkg-prefix", s.Package) }

func (s FindPackageShare) Perform(lc *Context) (string, error) {
	pkg, err := s.Package.Perform(lc)
	if err != nil {
		return "", err
	}
	return ament.PackageShare(pkg, lc.Getenv)
}

func (s FindPackageShare) String() string { return render("find-pkg-share", s.Package) }

func (s ExecutableInPackage) Perform(lc *Context) (string, error) {
	exe, err := s.Executable.Perform(lc)
	if err != nil {
		return "", err
	}
	pkg, err := s.Package.Perform(lc)
	if err != nil {
		return "", err
	}
	return ament.ExecutableInPackage(exe, pkg, lc.Getenv)
}

func (s ExecutableInPackage) String() string {
	return render("exec-in-pkg", s.Executable, s.Package)
}

func (s ThisLaunchFile) Perform(*Context) (string, error) { return s.Path, nil }
func (s ThisLaunchFile) String() string                   { return "$(filename)" }

func (s ThisLaunchFileDir) Perform(*Context) (string, error) { return filepath.Dir(s.Path), nil }
func (s ThisLaunchFileDir) String() string                   { return "$(dirname)" }

func (s NotSubstitution) Perform(lc *Context) (string, error) {
	v, err := performBool(lc, s.Value)
	if err != nil {
		return "", err
	}
	return formatBool(!v), nil
}

func (s NotSubstitution) String() string { return render("not", s.Value) }

func (s AndSubstitution) Perform(lc *Context) (string, error) {
	left, err := performBool(lc, s.Left)
	if err != nil {
		return "", err
	}
	right, err := performBool(lc, s.Right)
	if err != nil {
		return "", err
	}
	return formatBool(left && right), nil
}

func (s AndSubstitution) String() string { return render("and", s.Left, s.Right) }

func (s OrSubstitution) Perform(lc *Context) (string, error) {
	left, err := performBool(lc, s.Left)
	if err != nil {
		return "", err
	}
	right, err := performBool(lc, s.Right)
	if err != nil {
		return "", err
	}
	return formatBool(left || right), nil
}

func (s OrSubstitution) String() string { return render("or", s.Left, s.Right) }

func (s EqualsSubstitution) Perform(lc *Context) (string, error) {
	left, err := s.Left.Perform(lc)
	if err != nil {
		return "", err
	}
	right, err := s.Right.Perform(lc)
	if err != nil {
		return "", err
	}
	return formatBool(left == right), nil
}

func (s EqualsSubstitution) String() string { return render("equals", s.Left, s.Right) }

// Error implements the error interface.
func (e *UnboundConfigurationError) Error() string {
	return fmt.Sprintf("launch configuration '%s' does not exist", e.Name)
}

// Unwrap returns ErrUnboundConfiguration.
func (e *UnboundConfigurationError) Unwrap() error {
	return ErrUnboundConfiguration
}

// Error implements the error interface.
func (e *InvalidBoolError) Error() string {
	return fmt.Sprintf("expected 'true', 'false', '1' or '0', got '%s'", e.Value)
}

// Unwrap returns ErrInvalidBool.
func (e *InvalidBoolError) Unwrap() error {
	return ErrInvalidBool
}

// ParseBool accepts true, false, 1 and 0, case-insensitively and ignoring surrounding space.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, &InvalidBoolError{Value: s}
	}
}

func performBool(lc *Context, s Substitutions) (bool, error) {
	v, err := s.Perform(lc)
	if err != nil {
		return false, err
	}
	return ParseBool(v)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// render formats a substitution back into its $(verb arg...) form, quoting arguments
// that contain whitespace.
func render(verb string, args ...Substitutions) string {
	var sb strings.Builder
	sb.WriteString("$(")
	sb.WriteString(verb)
	for _, arg := range args {
		sb.WriteByte(' ')
		text := arg.String()
		if text == "" || strings.ContainsAny(text, " \t\n") {
			sb.WriteString("'" + text + "'")
		} else {
			sb.WriteString(text)
		}
	}
	sb.WriteByte(')')
	return sb.String()
}
