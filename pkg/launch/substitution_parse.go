// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrSubstitutionSyntax is the sentinel wrapped by SubstitutionSyntaxError.
var ErrSubstitutionSyntax = errors.New("invalid substitution syntax")

type (
	// SubstitutionSyntaxError reports a malformed $(...) expression.
	SubstitutionSyntaxError struct {
		Input  string
		Offset int
		Reason string
	}

	// ParseOption configures ParseSubstitutions.
	ParseOption func(*substitutionParser)

	substitutionParser struct {
		input []rune
		pos   int
		file  string
	}

	substitutionBuilder struct {
		minArgs, maxArgs int
		build            func(p *substitutionParser, args []Substitutions) Substitution
	}
)

var substitutionBuilders = map[string]substitutionBuilder{
	"var": {1, 1, func(_ *substitutionParser, a []Substitutions) Substitution {
		return LaunchConfiguration{Name: a[0]}
	}},
	"env": {1, 2, func(_ *substitutionParser, a []Substitutions) Substitution {
		return envSubstitution(a, false)
	}},
	"optenv": {1, 2, func(_ *substitutionParser, a []Substitutions) Substitution {
		return envSubstitution(a, true)
	}},
	"find-exec": {1, 1, func(_ *substitutionParser, a []Substitutions) Substitution {
		return FindExecutable{Name: a[0]}
	}},
	"find-pkg-prefix": {1, 1, func(_ *substitutionParser, a []Substitutions) Substitution {
		return FindPackagePrefix{Package: a[0]}
	}},
	"find-pkg-share": {1, 1, func(_ *substitutionParser, a []Substitutions) Substitution {
		return FindPackageShare{Package: a[0]}
	}},
	"exec-in-pkg": {2, 2, func(_ *substitutionParser, a []Substitutions) Substitution {
		return ExecutableInPackage{Executable: a[0], Package: a[1]}
	}},
	"filename": {0, 0, func(p *substitutionParser, _ []Substitutions) Substitution {
		return ThisLaunchFile{Path: p.file}
	}},
	"dirname": {0, 0, func(p *substitutionParser, _ []Substitutions) Substitution {
		return ThisLaunchFileDir{Path: p.file}
	}},
	"not": {1, 1, func(_ *substitutionParser, a []Substitutions) Substitution {
		return NotSubstitution{Value: a[0]}
	}},
	"and": {2, 2, func(_ *substitutionParser, a []Substitutions) Substitution {
		return AndSubstitution{Left: a[0], Right: a[1]}
	}},
	"or": {2, 2, func(_ *substitutionParser, a []Substitutions) Substitution {
		return OrSubstitution{Left: a[0], Right: a[1]}
	}},
	"equals": {2, 2, func(_ *substitutionParser, a []Substitutions) Substitution {
		return EqualsSubstitution{Left: a[0], Right: a[1]}
	}},
}

// InFile binds $(filename) and $(dirname) to path.
func InFile(path string) ParseOption {
	return func(p *substitutionParser) {
		p.file = path
	}
}

// ParseSubstitutions parses a value such as "$(find-pkg-share demo)/config/$(var robot).yaml".
// Substitution arguments may themselves contain substitutions and may be single- or
// double-quoted to include whitespace.
func ParseSubstitutions(s string, opts ...ParseOption) (Substitutions, error) {
	p := &substitutionParser{input: []rune(s)}
	for _, opt := range opts {
		opt(p)
	}
	subs, err := p.parseValue(func(rune) bool { return false })
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.input) {
		return nil, p.errorf("unexpected %q", p.input[p.pos])
	}
	return subs, nil
}

// MustParseSubstitutions is like ParseSubstitutions but panics on error.
// It is intended for literals in tests and static tables.
func MustParseSubstitutions(s string, opts ...ParseOption) Substitutions {
	subs, err := ParseSubstitutions(s, opts...)
	if err != nil {
		panic(err)
	}
	return subs
}

// Error implements the error interface.
func (e *SubstitutionSyntaxError) Error() string {
	return fmt.Sprintf("invalid substitution %q at offset %d: %s", e.Input, e.Offset, e.Reason)
}

// Unwrap returns ErrSubstitutionSyntax.
func (e *SubstitutionSyntaxError) Unwrap() error {
	return ErrSubstitutionSyntax
}

// parseValue reads text and substitutions until stop reports true for the next rune
// at nesting depth zero.
func (p *substitutionParser) parseValue(stop func(rune) bool) (Substitutions, error) {
	var (
		subs Substitutions
		text strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			subs = append(subs, Text(text.String()))
			text.Reset()
		}
	}
	for p.pos < len(p.input) {
		r := p.input[p.pos]
		if stop(r) {
			break
		}
		if r == '$' && p.peek(1) == '(' {
			flush()
			sub, err := p.parseSubstitution()
			if err != nil {
				return nil, err
			}
			subs = append(subs, sub)
			continue
		}
		text.WriteRune(r)
		p.pos++
	}
	flush()
	return subs, nil
}

func (p *substitutionParser) parseSubstitution() (Substitution, error) {
	start := p.pos
	p.pos += 2 // "$("
	p.skipSpace()
	nameStart := p.pos
	for p.pos < len(p.input) && !unicode.IsSpace(p.input[p.pos]) && p.input[p.pos] != ')' {
		p.pos++
	}
	name := string(p.input[nameStart:p.pos])
	if name == "" {
		return nil, p.errorAt(start, "missing substitution name")
	}
	builder, ok := substitutionBuilders[name]
	if !ok {
		return nil, p.errorAt(nameStart, fmt.Sprintf("unknown substitution %q", name))
	}

	var args []Substitutions
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return nil, p.errorAt(start, "unterminated substitution")
		}
		if p.input[p.pos] == ')' {
			p.pos++
			break
		}
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	if len(args) < builder.minArgs || len(args) > builder.maxArgs {
		return nil, p.errorAt(start, fmt.Sprintf("%s expects %s, got %d",
			name, arity(builder.minArgs, builder.maxArgs), len(args)))
	}
	return builder.build(p, args), nil
}

func (p *substitutionParser) parseArgument() (Substitutions, error) {
	if q := p.input[p.pos]; q == '\'' || q == '"' {
		start := p.pos
		p.pos++
		arg, err := p.parseValue(func(r rune) bool { return r == q })
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.input) {
			return nil, p.errorAt(start, "unterminated quote")
		}
		p.pos++
		if arg == nil {
			arg = Literal("")
		}
		return arg, nil
	}
	return p.parseValue(func(r rune) bool { return unicode.IsSpace(r) || r == ')' })
}

func (p *substitutionParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(p.input[p.pos]) {
		p.pos++
	}
}

func (p *substitutionParser) peek(n int) rune {
	if p.pos+n >= len(p.input) {
		return 0
	}
	return p.input[p.pos+n]
}

func (p *substitutionParser) errorf(format string, args ...any) error {
	return p.errorAt(p.pos, fmt.Sprintf(format, args...))
}

func (p *substitutionParser) errorAt(offset int, reason string) error {
	return &SubstitutionSyntaxError{Input: string(p.input), Offset: offset, Reason: reason}
}

func envSubstitution(args []Substitutions, optional bool) Substitution {
	sub := EnvironmentVariable{Name: args[0], Optional: optional}
	if len(args) == 2 {
		sub.Default = args[1]
		sub.HasDefault = true
	}
	return sub
}

func arity(minArgs, maxArgs int) string {
	switch {
	case minArgs == maxArgs && minArgs == 1:
		return "1 argument"
	case minArgs == maxArgs:
		return fmt.Sprintf("%d arguments", minArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", minArgs, maxArgs)
	}
}

// SplitCommandLine splits a parsed command line into tokens. Whitespace inside text parts
// separates tokens unless it is quoted; a substitution stays attached to the text around it.
func SplitCommandLine(subs Substitutions) []Substitutions {
	var (
		tokens  []Substitutions
		current Substitutions
		text    strings.Builder
		started bool
		quote   rune
	)
	flushText := func() {
		if text.Len() > 0 {
			current = append(current, Text(text.String()))
			text.Reset()
		}
	}
	flushToken := func() {
		flushText()
		if started {
			if current == nil {
				current = Literal("")
			}
			tokens = append(tokens, current)
		}
		current = nil
		started = false
	}

	for _, part := range subs {
		t, ok := part.(Text)
		if !ok {
			flushText()
			current = append(current, part)
			started = true
			continue
		}
		for _, r := range string(t) {
			switch {
			case quote != 0 && r == quote:
				quote = 0
			case quote != 0:
				text.WriteRune(r)
			case r == '\'' || r == '"':
				quote = r
				started = true
			case unicode.IsSpace(r):
				flushToken()
			default:
				text.WriteRune(r)
				started = true
			}
		}
	}
	flushToken()
	return tokens
}
