// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrMissingArgument is the sentinel wrapped by MissingArgumentError.
	ErrMissingArgument = errors.New("launch argument not provided")
	// ErrInvalidChoice is returned when a launch argument value is not one of its choices.
	ErrInvalidChoice = errors.New("invalid launch argument choice")
	// ErrNoLoader is returned by IncludeLaunchDescription when it has no Loader.
	ErrNoLoader = errors.New("include has no launch description loader")
)

type (
	// genericEntity provides the KindGeneric tag to embedding actions.
	genericEntity struct{}

	// Argument is a name/value pair handed to an include or a group.
	Argument struct {
		Name  string
		Value Substitutions
	}

	// Loader loads the launch description stored at path.
	Loader func(path string) (*LaunchDescription, error)

	// LaunchDescription is an ordered list of entities.
	LaunchDescription struct {
		genericEntity
		// Source is the file the description was loaded from, if any.
		Source   string
		Entities []Entity
	}

	// IncludeLaunchDescription loads another launch description and binds its arguments.
	IncludeLaunchDescription struct {
		genericEntity
		Path      Substitutions
		Arguments []Argument
		Loader    Loader
		Condition Condition
	}

	// DeclareLaunchArgument declares a launch argument with an optional default.
	DeclareLaunchArgument struct {
		genericEntity
		Name        string
		Default     Substitutions
		HasDefault  bool
		Description string
		Choices     []string
		Condition   Condition
	}

	// SetLaunchConfiguration binds a launch configuration.
	SetLaunchConfiguration struct {
		genericEntity
		Name      Substitutions
		Value     Substitutions
		Condition Condition
	}

	// GroupAction evaluates its actions, optionally inside a configuration scope.
	GroupAction struct {
		genericEntity
		Actions        []Entity
		Scoped         bool
		Configurations []Argument
		Condition      Condition
	}

	// PushLaunchConfigurations saves the context state; emitted by scoped groups.
	PushLaunchConfigurations struct {
		genericEntity
	}

	// PopLaunchConfigurations restores the state saved by PushLaunchConfigurations.
	PopLaunchConfigurations struct {
		genericEntity
	}

	// PushRosNamespace pushes a namespace applied to nodes visited after it.
	PushRosNamespace struct {
		genericEntity
		Namespace Substitutions
		Condition Condition
	}

	// SetEnvironmentVariable sets a variable in the context environment.
	SetEnvironmentVariable struct {
		genericEntity
		Name      Substitutions
		Value     Substitutions
		Condition Condition
	}

	// UnsetEnvironmentVariable removes a variable from the context environment.
	UnsetEnvironmentVariable struct {
		genericEntity
		Name      Substitutions
		Condition Condition
	}

	// LogInfo writes a user message to the context output.
	LogInfo struct {
		genericEntity
		Message   Substitutions
		Condition Condition
	}

	// OpaqueFunction runs arbitrary Go code during the visit.
	OpaqueFunction struct {
		genericEntity
		Func func(lc *Context) ([]Entity, error)
	}

	// MissingArgumentError is returned when a required launch argument has no value.
	MissingArgumentError struct {
		Name        string
		Description string
		// Included is set when the argument is required by an included description.
		Included string
	}
)

func (genericEntity) Kind() Kind { return KindGeneric }

// NewLaunchDescription returns a description of the given entities.
func NewLaunchDescription(entities ...Entity) *LaunchDescription {
	return &LaunchDescription{Entities: entities}
}

func (d *LaunchDescription) TypeName() string { return "LaunchDescription" }

// Visit returns the entities of the description.
func (d *LaunchDescription) Visit(*Context) ([]Entity, error) {
	return slices.Clone(d.Entities), nil
}

// DeclaredArguments returns the arguments declared at the top level of the description
// or inside its groups. Declarations with a condition, or inside a group with one, are
// not always reached and are left out.
func (d *LaunchDescription) DeclaredArguments() []*DeclareLaunchArgument {
	var out []*DeclareLaunchArgument
	var collect func([]Entity)
	collect = func(entities []Entity) {
		for _, e := range entities {
			switch v := e.(type) {
			case *DeclareLaunchArgument:
				if v.Condition == nil {
					out = append(out, v)
				}
			case *GroupAction:
				if v.Condition == nil {
					collect(v.Actions)
				}
			}
		}
	}
	collect(d.Entities)
	return out
}

func (a *IncludeLaunchDescription) TypeName() string { return "IncludeLaunchDescription" }

// Visit loads the included description and returns the argument bindings followed by it.
func (a *IncludeLaunchDescription) Visit(lc *Context) ([]Entity, error) {
	if ok, err := satisfied(lc, a.Condition); err != nil || !ok {
		return nil, err
	}
	if a.Loader == nil {
		return nil, ErrNoLoader
	}
	path, err := a.Path.Perform(lc)
	if err != nil {
		return nil, err
	}
	desc, err := a.Loader(path)
	if err != nil {
		return nil, err
	}

	provided := make(map[string]bool, len(a.Arguments))
	for _, arg := range a.Arguments {
		provided[arg.Name] = true
	}
	for _, decl := range desc.DeclaredArguments() {
		if decl.HasDefault || provided[decl.Name] {
			continue
		}
		if _, ok := lc.Configuration(decl.Name); ok {
			continue
		}
		return nil, &MissingArgumentError{Name: decl.Name, Description: decl.Description, Included: path}
	}

	children := make([]Entity, 0, len(a.Arguments)+1)
	for _, arg := range a.Arguments {
		children = append(children, &SetLaunchConfiguration{Name: Literal(arg.Name), Value: arg.Value})
	}
	return append(children, desc), nil
}

func (a *DeclareLaunchArgument) TypeName() string { return "DeclareLaunchArgument" }

// Visit binds the default value unless the argument is already bound, and checks choices.
func (a *DeclareLaunchArgument) Visit(lc *Context) ([]Entity, error) {
	if ok, err := satisfied(lc, a.Condition); err != nil || !ok {
		return nil, err
	}
	value, bound := lc.Configuration(a.Name)
	if !bound {
		if !a.HasDefault {
			return nil, &MissingArgumentError{Name: a.Name, Description: a.Description}
		}
		v, err := a.Default.Perform(lc)
		if err != nil {
			return nil, err
		}
		value = v
	}
	if len(a.Choices) > 0 && !slices.Contains(a.Choices, value) {
		return nil, fmt.Errorf("%w: argument '%s' provided value '%s' is not valid, valid options are: [%s]",
			ErrInvalidChoice, a.Name, value, strings.Join(a.Choices, ", "))
	}
	if !bound {
		lc.SetConfiguration(a.Name, value)
	}
	return nil, nil
}

func (a *SetLaunchConfiguration) TypeName() string { return "SetLaunchConfiguration" }

// Visit binds the configuration.
func (a *SetLaunchConfiguration) Visit(lc *Context) ([]Entity, error) {
	if ok, err := satisfied(lc, a.Condition); err != nil || !ok {
		return nil, err
	}
	name, err := a.Name.Perform(lc)
	if err != nil {
		return nil, err
	}
	value, err := a.Value.Perform(lc)
	if err != nil {
		return nil, err
	}
	lc.SetConfiguration(name, value)
	return nil, nil
}

func (a *GroupAction) TypeName() string { return "GroupAction" }

// Visit returns the group's actions, framed by scope push and pop entities when scoped.
func (a *GroupAction) Visit(lc *Context) ([]Entity, error) {
	if ok, err := satisfied(lc, a.Condition); err != nil || !ok {
		return nil, err
	}
	children := make([]Entity, 0, len(a.Actions)+len(a.Configurations)+2)
	if a.Scoped {
		children = append(children, &PushLaunchConfigurations{})
	}
	for _, cfg := range a.Configurations {
		children = append(children, &SetLaunchConfiguration{Name: Literal(cfg.Name), Value: cfg.Value})
	}
	children = append(children, a.Actions...)
	if a.Scoped {
		children = append(children, &PopLaunchConfigurations{})
	}
	return children, nil
}

func (a *PushLaunchConfigurations) TypeName() string { return "PushLaunchConfigurations" }

// Visit saves the context state.
func (a *PushLaunchConfigurations) Visit(lc *Context) ([]Entity, error) {
	lc.PushScope()
	return nil, nil
}

func (a *PopLaunchConfigurations) TypeName() string { return "PopLaunchConfigurations" }

// Visit restores the context state.
func (a *PopLaunchConfigurations) Visit(lc *Context) ([]Entity, error) {
	return nil, lc.PopScope()
}

func (a *PushRosNamespace) TypeName() string { return "PushRosNamespace" }

// Visit pushes the resolved namespace.
func (a *PushRosNamespace) Visit(lc *Context) ([]Entity, error) {
	if ok, err := satisfied(lc, a.Condition); err != nil || !ok {
		return nil, err
	}
	ns, err := a.Namespace.Perform(lc)
	if err != nil {
		return nil, err
	}
	if strings.ContainsAny(ns, " \t\n") {
		return nil, fmt.Errorf("invalid namespace '%s'", ns)
	}
	lc.PushNamespace(ns)
	return nil, nil
}

func (a *SetEnvironmentVariable) TypeName() string { return "SetEnvironmentVariable" }

// Visit sets the variable.
func (a *SetEnvironmentVariable) Visit(lc *Context) ([]Entity, error) {
	if ok, err := satisfied(lc, a.Condition); err != nil || !ok {
		return nil, err
	}
	name, err := a.Name.Perform(lc)
	if err != nil {
		return nil, err
	}
	value, err := a.Value.Perform(lc)
	if err != nil {
		return nil, err
	}
	lc.Setenv(name, value)
	return nil, nil
}

func (a *UnsetEnvironmentVariable) TypeName() string { return "UnsetEnvironmentVariable" }

// Visit removes the variable.
func (a *UnsetEnvironmentVariable) Visit(lc *Context) ([]Entity, error) {
	if ok, err := satisfied(lc, a.Condition); err != nil || !ok {
		return nil, err
	}
	name, err := a.Name.Perform(lc)
	if err != nil {
		return nil, err
	}
	lc.Unsetenv(name)
	return nil, nil
}

func (a *LogInfo) TypeName() string { return "LogInfo" }

// Visit writes the message to the context output.
func (a *LogInfo) Visit(lc *Context) ([]Entity, error) {
	if ok, err := satisfied(lc, a.Condition); err != nil || !ok {
		return nil, err
	}
	msg, err := a.Message.Perform(lc)
	if err != nil {
		return nil, err
	}
	_, err = fmt.Fprintf(lc.Output(), "[INFO] [launch.user]: %s\n", msg)
	return nil, err
}

func (a *OpaqueFunction) TypeName() string { return "OpaqueFunction" }

// Visit calls Func.
func (a *OpaqueFunction) Visit(lc *Context) ([]Entity, error) {
	if a.Func == nil {
		return nil, nil
	}
	return a.Func(lc)
}

// Error implements the error interface.
func (e *MissingArgumentError) Error() string {
	var sb strings.Builder
	if e.Included != "" {
		fmt.Fprintf(&sb, "included launch description '%s' missing required argument '%s'", e.Included, e.Name)
	} else {
		fmt.Fprintf(&sb, "required launch argument '%s' was not provided", e.Name)
	}
	if e.Description != "" {
		fmt.Fprintf(&sb, " (description: '%s')", e.Description)
	}
	return sb.String()
}

// Unwrap returns ErrMissingArgument.
func (e *MissingArgumentError) Unwrap() error {
	return ErrMissingArgument
}
