package compiler

import "fmt"

// ErrorKind classifies a compile failure. Every kind aborts the compile.
type ErrorKind int

const (
	// UnsupportedConstruct: no pattern matches the node.
	UnsupportedConstruct ErrorKind = iota + 1
	// MultipleAssignmentTargets: a = b = value.
	MultipleAssignmentTargets
	// InvalidOperand: a pattern matched but an operand has the wrong kind
	// or value.
	InvalidOperand
)

func (k ErrorKind) String() string {
	switch k {
	case UnsupportedConstruct:
		return "unsupported construct"
	case MultipleAssignmentTargets:
		return "multiple assignment targets"
	case InvalidOperand:
		return "invalid operand"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// CompileError carries the kind of failure and the offending node.
type CompileError struct {
	Kind ErrorKind
	Node string // node kind, e.g. "BinOp"
	Pos  Pos
	Msg  string
	Err  error
}

// Sentinels for errors.Is.
var (
	ErrUnsupportedConstruct      = &CompileError{Kind: UnsupportedConstruct}
	ErrMultipleAssignmentTargets = &CompileError{Kind: MultipleAssignmentTargets}
	ErrInvalidOperand            = &CompileError{Kind: InvalidOperand}
)

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("%s: %s %s", e.Pos, e.Kind, e.Node)
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CompileError) Unwrap() error { return e.Err }

// Is matches any CompileError of the same kind, so callers can write
// errors.Is(err, ErrInvalidOperand).
func (e *CompileError) Is(target error) bool {
	t, ok := target.(*CompileError)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, n Node, err error, format string, args ...any) *CompileError {
	e := &CompileError{
		Kind: kind,
		Node: nodeKind(n),
		Msg:  fmt.Sprintf(format, args...),
		Err:  err,
	}
	if n != nil {
		e.Pos = n.Position()
	}
	return e
}

func unsupported(n Node, format string, args ...any) error {
	return newError(UnsupportedConstruct, n, nil, format, args...)
}

func invalid(n Node, format string, args ...any) error {
	return newError(InvalidOperand, n, nil, format, args...)
}

// invalidWrap reports err, typically from hw or bitbag, as an invalid operand.
func invalidWrap(n Node, err error, format string, args ...any) error {
	return newError(InvalidOperand, n, err, format, args...)
}
