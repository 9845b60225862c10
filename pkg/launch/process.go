// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrLifecycleNodeName is returned when a lifecycle node has no name.
var ErrLifecycleNodeName = errors.New("lifecycle node requires a name")

type (
	// ExecuteProcess describes an external process. Visiting it materializes its
	// ProcessDetails when its condition holds; the process is never started.
	ExecuteProcess struct {
		Cmd       []Substitutions
		Name      Substitutions
		Cwd       Substitutions
		Env       []Argument
		Condition Condition

		details *ProcessDetails
	}

	// Remapping is a ROS name remapping rule.
	Remapping struct {
		From, To Substitutions
	}

	// Node describes a ROS node: an executable installed in a package, started with
	// --ros-args carrying its name, namespace, parameters and remappings.
	Node struct {
		Package    Substitutions
		Executable Substitutions
		Name       Substitutions
		Namespace  Substitutions
		Arguments  []Substitutions
		Parameters []Argument
		Remappings []Remapping
		Env        []Argument
		Condition  Condition

		details *ProcessDetails
	}

	// LifecycleNode is a managed Node. While visited it schedules a state monitor on the
	// context's AsyncDriver that runs until cancelled.
	LifecycleNode struct {
		Node

		monitor Handle
	}
)

func (p *ExecuteProcess) Kind() Kind       { return KindProcessLaunch }
func (p *ExecuteProcess) TypeName() string { return "ExecuteProcess" }

// ProcessDetails returns the materialized command, or nil before a satisfied visit.
func (p *ExecuteProcess) ProcessDetails() *ProcessDetails { return p.details }

// Visit materializes the process details when the condition holds.
func (p *ExecuteProcess) Visit(lc *Context) ([]Entity, error) {
	if ok, err := satisfied(lc, p.Condition); err != nil || !ok {
		return nil, err
	}
	name, err := p.Name.Perform(lc)
	if err != nil {
		return nil, err
	}
	cwd, err := p.Cwd.Perform(lc)
	if err != nil {
		return nil, err
	}
	env, err := performArguments(lc, p.Env)
	if err != nil {
		return nil, err
	}
	p.details = &ProcessDetails{
		Name: name,
		Cmd:  slices.Clone(p.Cmd),
		Cwd:  cwd,
		Env:  env,
	}
	return nil, nil
}

func (n *Node) Kind() Kind       { return KindProcessLaunch }
func (n *Node) TypeName() string { return "Node" }

// ProcessDetails returns the materialized command, or nil before a satisfied visit.
func (n *Node) ProcessDetails() *ProcessDetails { return n.details }

// Visit materializes the node command line when the condition holds.
func (n *Node) Visit(lc *Context) ([]Entity, error) {
	if ok, err := satisfied(lc, n.Condition); err != nil || !ok {
		return nil, err
	}
	details, err := n.materialize(lc)
	if err != nil {
		return nil, err
	}
	n.details = details
	return nil, nil
}

// FullName returns the node name qualified by its resolved namespace.
func (n *Node) FullName(lc *Context) (string, error) {
	name, err := n.Name.Perform(lc)
	if err != nil {
		return "", err
	}
	ns, err := n.resolveNamespace(lc)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(ns, "/") + "/" + name, nil
}

func (n *Node) materialize(lc *Context) (*ProcessDetails, error) {
	name, err := n.Name.Perform(lc)
	if err != nil {
		return nil, err
	}
	ns, err := n.resolveNamespace(lc)
	if err != nil {
		return nil, err
	}
	env, err := performArguments(lc, n.Env)
	if err != nil {
		return nil, err
	}

	var rosArgs []string
	if name != "" {
		rosArgs = append(rosArgs, "-r", "__node:="+name)
	}
	if ns != "" {
		rosArgs = append(rosArgs, "-r", "__ns:="+ns)
	}
	for _, param := range n.Parameters {
		value, err := param.Value.Perform(lc)
		if err != nil {
			return nil, err
		}
		rosArgs = append(rosArgs, "-p", param.Name+":="+value)
	}
	for _, remap := range n.Remappings {
		from, err := remap.From.Perform(lc)
		if err != nil {
			return nil, err
		}
		to, err := remap.To.Perform(lc)
		if err != nil {
			return nil, err
		}
		rosArgs = append(rosArgs, "-r", from+":="+to)
	}

	cmd := make([]Substitutions, 0, 2+len(n.Arguments)+len(rosArgs))
	cmd = append(cmd, Substitutions{ExecutableInPackage{Executable: n.Executable, Package: n.Package}})
	cmd = append(cmd, n.Arguments...)
	if len(rosArgs) > 0 {
		cmd = append(cmd, Literal("--ros-args"))
		for _, arg := range rosArgs {
			cmd = append(cmd, Literal(arg))
		}
	}
	return &ProcessDetails{Name: name, Cmd: cmd, Env: env}, nil
}

// resolveNamespace combines the node namespace with the pushed namespace. An absolute
// node namespace ignores the pushed one.
func (n *Node) resolveNamespace(lc *Context) (string, error) {
	ns, err := n.Namespace.Perform(lc)
	if err != nil {
		return "", err
	}
	switch {
	case strings.HasPrefix(ns, "/"):
		return ns, nil
	case ns == "":
		return lc.Namespace(), nil
	default:
		return lc.Namespace() + "/" + ns, nil
	}
}

func (n *LifecycleNode) TypeName() string { return "LifecycleNode" }

// AsyncHandle returns the state monitor scheduled by the last visit.
func (n *LifecycleNode) AsyncHandle() Handle { return n.monitor }

// Visit materializes the node and starts its state monitor.
func (n *LifecycleNode) Visit(lc *Context) ([]Entity, error) {
	if ok, err := satisfied(lc, n.Condition); err != nil || !ok {
		return nil, err
	}
	details, err := n.materialize(lc)
	if err != nil {
		return nil, err
	}
	if details.Name == "" {
		return nil, ErrLifecycleNodeName
	}
	driver, err := lc.Driver()
	if err != nil {
		return nil, fmt.Errorf("lifecycle node '%s': %w", details.Name, err)
	}
	fullName, err := n.FullName(lc)
	if err != nil {
		return nil, err
	}
	n.monitor = driver.Go("lifecycle-monitor "+fullName, func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	n.details = details
	return nil, nil
}

func performArguments(lc *Context, args []Argument) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(args))
	for _, arg := range args {
		v, err := arg.Value.Perform(lc)
		if err != nil {
			return nil, err
		}
		out[arg.Name] = v
	}
	return out, nil
}
