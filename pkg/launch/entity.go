// SPDX-License-Identifier: MPL-2.0

package launch

import "fmt"

const (
	// KindGeneric covers groups, includes, declarations and every other non-process entity.
	KindGeneric Kind = iota
	// KindProcessLaunch marks entities that implement ProcessLauncher.
	KindProcessLaunch
)

type (
	// Kind is the variant tag of an Entity.
	Kind int

	// Entity is one node of a launch description.
	// Visit evaluates the entity against lc and returns the entities it expands to,
	// in document order. A nil or empty slice means the entity has no children.
	Entity interface {
		Kind() Kind
		TypeName() string
		Visit(lc *Context) ([]Entity, error)
	}

	// ProcessLauncher is implemented by entities of KindProcessLaunch.
	// ProcessDetails is nil until a visit with a satisfied condition materializes it.
	ProcessLauncher interface {
		Entity
		ProcessDetails() *ProcessDetails
	}

	// AsyncHandleOwner is implemented by entities that schedule long-running work on the
	// context's AsyncDriver while being visited.
	AsyncHandleOwner interface {
		AsyncHandle() Handle
	}

	// ProcessDetails is the concrete command specification of a process-launch action.
	ProcessDetails struct {
		// Name is the optional process name.
		Name string
		// Cmd holds the executable token followed by the argument tokens.
		Cmd []Substitutions
		// Cwd is the resolved working directory, empty for the current one.
		Cwd string
		// Env holds resolved per-process environment additions.
		Env map[string]string
	}
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindProcessLaunch:
		return "process-launch"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
