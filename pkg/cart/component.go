package cart

import "nescart/pkg/hw"

// Arg is one argument passed to a component call: either a folded integer
// constant or the name of a program variable.
type Arg struct {
	Value int
	Name  string
}

// IsName reports whether the argument names a variable.
func (a Arg) IsName() bool { return a.Name != "" }

// Invocation is the result of one component call.
type Invocation struct {
	Code   string     // appended to the active section
	Object *hw.Object // hardware object the call evaluates to, if any
}

// Component is a hardware component plugin reached through a call in the
// program, e.g. wait_vblank(). It is created once per cartridge and name.
type Component interface {
	// Procedure is emitted once at the top of the program bank.
	Procedure() string
	// Invoke returns the per-call fragment. The first call marks the
	// component used.
	Invoke(args []Arg) (Invocation, error)
	Used() bool
}

// Poller is an input component polled from the interrupt handler once per
// frame.
type Poller interface {
	Port() int
	Used() bool
	// Polling returns the per-frame fragment, or "" when unused.
	Polling() string
}
