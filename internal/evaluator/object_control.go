package evaluator

import (
	"fmt"

	"github.com/funvibe/anonsum/internal/typesystem"
)

// Error is a runtime failure. It unwinds evaluation to the processor.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("ERROR at %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return "ERROR: " + e.Message
}
func (e *Error) RuntimeType() typesystem.Type { return typesystem.TCon{Name: "Error"} }
func (e *Error) Hash() uint64                 { return hashString(e.Message) }

func newError(format string, a ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

func newErrorWithLocation(line, column int, format string, a ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, a...),
		Line:    line,
		Column:  column,
	}
}

func isError(obj Object) bool {
	return obj != nil && obj.Type() == ERROR_OBJ
}
