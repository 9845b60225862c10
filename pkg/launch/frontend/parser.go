// SPDX-License-Identifier: MPL-2.0

package frontend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/launchdump/launchdump/internal/launcharg"
	"github.com/launchdump/launchdump/pkg/cueutil"
	"github.com/launchdump/launchdump/pkg/launch"
)

type (
	// Parser maps decoded launch files to launch descriptions.
	Parser struct {
		// MaxFileSize caps the size of every loaded file. Zero means
		// cueutil.DefaultMaxFileSize.
		MaxFileSize int64
		Logger      *log.Logger
	}

	// fileParser parses the elements of one file.
	fileParser struct {
		*Parser
		file string
	}
)

var defaultParser = &Parser{}

// Load parses the launch file at path with the default Parser.
func Load(path string) (*launch.LaunchDescription, error) {
	return defaultParser.Load(path)
}

// NewRoot returns the root entity of a walk over the launch file at path with the
// default Parser.
func NewRoot(path string, args []launcharg.Pair) (*launch.LaunchDescription, error) {
	return defaultParser.NewRoot(path, args)
}

// NewRoot returns a description holding a single include of path that binds args in
// order. The file itself is loaded when the include is visited.
func (p *Parser) NewRoot(path string, args []launcharg.Pair) (*launch.LaunchDescription, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	arguments := make([]launch.Argument, 0, len(args))
	for _, a := range args {
		arguments = append(arguments, launch.Argument{Name: a.Name, Value: launch.Literal(a.Value)})
	}
	include := &launch.IncludeLaunchDescription{
		Path:      launch.Literal(abs),
		Arguments: arguments,
		Loader:    p.Load,
	}
	return launch.NewLaunchDescription(include), nil
}

// Load reads, decodes and parses the launch file at path.
func (p *Parser) Load(path string) (*launch.LaunchDescription, error) {
	frontend, err := forPath(builtinFrontends(p.maxFileSize()), path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cueutil.CheckFileSize(data, p.maxFileSize(), path); err != nil {
		return nil, err
	}
	root, err := frontend.Decode(data, path)
	if err != nil {
		return nil, &ParseError{File: path, Err: err}
	}
	p.debug("decoded launch file", "file", path, "format", frontend.Name(), "actions", len(root.Children))

	desc, err := p.Parse(root, path)
	if err != nil {
		return nil, err
	}
	return desc, nil
}

// Parse maps a decoded <launch> element read from file to a launch description.
func (p *Parser) Parse(root *Element, file string) (*launch.LaunchDescription, error) {
	if root.Tag != rootTag {
		return nil, &ParseError{File: file, Tag: root.Tag, Err: fmt.Errorf("expected <%s> root", rootTag)}
	}
	fp := &fileParser{Parser: p, file: file}
	entities, err := fp.entities(root.Children)
	if err != nil {
		return nil, err
	}
	desc := launch.NewLaunchDescription(entities...)
	desc.Source = file
	return desc, nil
}

func (p *Parser) maxFileSize() int64 {
	if p.MaxFileSize > 0 {
		return p.MaxFileSize
	}
	return cueutil.DefaultMaxFileSize
}

func (p *Parser) debug(msg string, keyvals ...any) {
	if p.Logger != nil {
		p.Logger.Debug(msg, keyvals...)
	}
}

func (fp *fileParser) entities(els []*Element) ([]launch.Entity, error) {
	out := make([]launch.Entity, 0, len(els))
	for _, el := range els {
		entity, err := fp.entity(el)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				return nil, err
			}
			return nil, &ParseError{File: fp.file, Tag: el.Tag, Err: err}
		}
		out = append(out, entity)
	}
	return out, nil
}

func (fp *fileParser) entity(el *Element) (launch.Entity, error) {
	cond, err := fp.condition(el)
	if err != nil {
		return nil, err
	}

	switch el.Tag {
	case "arg":
		return fp.declareArgument(el, cond)
	case "let":
		name, err := fp.required(el, "name")
		if err != nil {
			return nil, err
		}
		value, err := fp.present(el, "value")
		if err != nil {
			return nil, err
		}
		return &launch.SetLaunchConfiguration{Name: name, Value: value, Condition: cond}, nil
	case "include":
		return fp.include(el, cond)
	case "group":
		return fp.group(el, cond)
	case "push-ros-namespace", "push_ros_namespace":
		ns, err := fp.required(el, "namespace")
		if err != nil {
			return nil, err
		}
		return &launch.PushRosNamespace{Namespace: ns, Condition: cond}, nil
	case "set-env", "set_env":
		name, err := fp.required(el, "name")
		if err != nil {
			return nil, err
		}
		value, err := fp.present(el, "value")
		if err != nil {
			return nil, err
		}
		return &launch.SetEnvironmentVariable{Name: name, Value: value, Condition: cond}, nil
	case "unset-env", "unset_env":
		name, err := fp.required(el, "name")
		if err != nil {
			return nil, err
		}
		return &launch.UnsetEnvironmentVariable{Name: name, Condition: cond}, nil
	case "log":
		msg, err := fp.required(el, "message")
		if err != nil {
			return nil, err
		}
		return &launch.LogInfo{Message: msg, Condition: cond}, nil
	case "executable":
		return fp.executable(el, cond)
	case "node":
		node, err := fp.node(el, cond)
		if err != nil {
			return nil, err
		}
		return node, nil
	case "lifecycle_node", "lifecycle-node":
		node, err := fp.node(el, cond)
		if err != nil {
			return nil, err
		}
		return &launch.LifecycleNode{Node: *node}, nil
	default:
		return nil, fmt.Errorf("unknown action <%s>", el.Tag)
	}
}

func (fp *fileParser) declareArgument(el *Element, cond launch.Condition) (launch.Entity, error) {
	name, ok := el.Attr("name")
	if !ok || name == "" {
		return nil, errors.New("missing attribute 'name'")
	}
	decl := &launch.DeclareLaunchArgument{Name: name, Condition: cond}
	decl.Description, _ = el.Attr("description")
	if def, ok := el.Attr("default"); ok {
		subs, err := fp.subs(def)
		if err != nil {
			return nil, err
		}
		decl.Default, decl.HasDefault = subs, true
	}
	for _, c := range el.Named("choice") {
		value, ok := c.Attr("value")
		if !ok {
			return nil, errors.New("<choice> missing attribute 'value'")
		}
		decl.Choices = append(decl.Choices, value)
	}
	return decl, nil
}

func (fp *fileParser) include(el *Element, cond launch.Condition) (launch.Entity, error) {
	path, err := fp.required(el, "file")
	if err != nil {
		return nil, err
	}
	args, err := fp.arguments(el.Named("arg"))
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(fp.file)
	return &launch.IncludeLaunchDescription{
		Path:      path,
		Arguments: args,
		Condition: cond,
		Loader: func(resolved string) (*launch.LaunchDescription, error) {
			if !filepath.IsAbs(resolved) {
				resolved = filepath.Join(base, resolved)
			}
			return fp.Load(resolved)
		},
	}, nil
}

func (fp *fileParser) group(el *Element, cond launch.Condition) (launch.Entity, error) {
	scoped := true
	if raw, ok := el.Attr("scoped"); ok {
		v, err := launch.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		scoped = v
	}
	actions, err := fp.entities(el.Children)
	if err != nil {
		return nil, err
	}
	return &launch.GroupAction{Actions: actions, Scoped: scoped, Condition: cond}, nil
}

func (fp *fileParser) executable(el *Element, cond launch.Condition) (launch.Entity, error) {
	cmd, err := fp.required(el, "cmd")
	if err != nil {
		return nil, err
	}
	p := &launch.ExecuteProcess{Cmd: launch.SplitCommandLine(cmd), Condition: cond}
	if args, ok := el.Attr("args"); ok {
		subs, err := fp.subs(args)
		if err != nil {
			return nil, err
		}
		p.Cmd = append(p.Cmd, launch.SplitCommandLine(subs)...)
	}
	if p.Name, err = fp.optional(el, "name"); err != nil {
		return nil, err
	}
	if p.Cwd, err = fp.optional(el, "cwd"); err != nil {
		return nil, err
	}
	if p.Env, err = fp.arguments(el.Named("env")); err != nil {
		return nil, err
	}
	return p, nil
}

func (fp *fileParser) node(el *Element, cond launch.Condition) (*launch.Node, error) {
	n := &launch.Node{Condition: cond}
	var err error
	if n.Package, err = fp.required(el, "pkg"); err != nil {
		return nil, err
	}
	if n.Executable, err = fp.required(el, "exec"); err != nil {
		return nil, err
	}
	if n.Name, err = fp.optional(el, "name"); err != nil {
		return nil, err
	}
	nsAttr := "namespace"
	if _, ok := el.Attr(nsAttr); !ok {
		nsAttr = "ns"
	}
	if n.Namespace, err = fp.optional(el, nsAttr); err != nil {
		return nil, err
	}
	if args, ok := el.Attr("args"); ok {
		subs, err := fp.subs(args)
		if err != nil {
			return nil, err
		}
		n.Arguments = launch.SplitCommandLine(subs)
	}
	if n.Parameters, err = fp.arguments(el.Named("param")); err != nil {
		return nil, err
	}
	for _, r := range el.Named("remap") {
		from, err := fp.required(r, "from")
		if err != nil {
			return nil, err
		}
		to, err := fp.required(r, "to")
		if err != nil {
			return nil, err
		}
		n.Remappings = append(n.Remappings, launch.Remapping{From: from, To: to})
	}
	if n.Env, err = fp.arguments(el.Named("env")); err != nil {
		return nil, err
	}
	return n, nil
}

// arguments parses name/value sub-elements such as <arg>, <param> and <env>.
func (fp *fileParser) arguments(els []*Element) ([]launch.Argument, error) {
	var out []launch.Argument
	for _, el := range els {
		name, ok := el.Attr("name")
		if !ok || name == "" {
			return nil, fmt.Errorf("<%s> missing attribute 'name'", el.Tag)
		}
		value, err := fp.present(el, "value")
		if err != nil {
			return nil, fmt.Errorf("<%s name=%q>: %w", el.Tag, name, err)
		}
		out = append(out, launch.Argument{Name: name, Value: value})
	}
	return out, nil
}

func (fp *fileParser) condition(el *Element) (launch.Condition, error) {
	ifExpr, hasIf := el.Attr("if")
	unlessExpr, hasUnless := el.Attr("unless")
	switch {
	case hasIf && hasUnless:
		return nil, errors.New("'if' and 'unless' are mutually exclusive")
	case hasIf:
		subs, err := fp.subs(ifExpr)
		if err != nil {
			return nil, err
		}
		return launch.IfCondition{Expression: subs}, nil
	case hasUnless:
		subs, err := fp.subs(unlessExpr)
		if err != nil {
			return nil, err
		}
		return launch.UnlessCondition{Expression: subs}, nil
	default:
		return nil, nil
	}
}

func (fp *fileParser) required(el *Element, attr string) (launch.Substitutions, error) {
	raw, ok := el.Attr(attr)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("missing attribute '%s'", attr)
	}
	return fp.subs(raw)
}

func (fp *fileParser) present(el *Element, attr string) (launch.Substitutions, error) {
	raw, ok := el.Attr(attr)
	if !ok {
		return nil, fmt.Errorf("missing attribute '%s'", attr)
	}
	return fp.subs(raw)
}

func (fp *fileParser) optional(el *Element, attr string) (launch.Substitutions, error) {
	raw, ok := el.Attr(attr)
	if !ok {
		return nil, nil
	}
	return fp.subs(raw)
}

func (fp *fileParser) subs(raw string) (launch.Substitutions, error) {
	return launch.ParseSubstitutions(raw, launch.InFile(fp.file))
}
