package diagnostics

import (
	"fmt"
	"github.com/funvibe/anonsum/internal/token"
	"sort"
	"strings"
)

type ErrorCode string

// Parser errors
const (
	ErrP001 ErrorCode = "P001" // syntax error
)

// Analyzer errors
const (
	ErrA001 ErrorCode = "A001" // undeclared name
	ErrA002 ErrorCode = "A002" // undeclared type
	ErrA003 ErrorCode = "A003" // type error
)

// Anonymous sum errors
const (
	ErrS001 ErrorCode = "S001" // OversizedSumType
	ErrS002 ErrorCode = "S002" // SlotIndexOutOfRange
	ErrS003 ErrorCode = "S003" // SlotTypeMismatch
	ErrS004 ErrorCode = "S004" // NonExhaustiveMatch
	ErrS005 ErrorCode = "S005" // UnreachablePattern (warning)
	ErrS006 ErrorCode = "S006" // UnsupportedPolicy
	ErrS007 ErrorCode = "S007" // NotDerivable
	ErrS008 ErrorCode = "S008" // CallThroughSum
)

// Runtime errors
const (
	ErrR001 ErrorCode = "R001"
)

var codeNames = map[ErrorCode]string{
	ErrP001: "SyntaxError",
	ErrA001: "UndeclaredName",
	ErrA002: "UndeclaredType",
	ErrA003: "TypeError",
	ErrS001: "OversizedSumType",
	ErrS002: "SlotIndexOutOfRange",
	ErrS003: "SlotTypeMismatch",
	ErrS004: "NonExhaustiveMatch",
	ErrS005: "UnreachablePattern",
	ErrS006: "UnsupportedPolicy",
	ErrS007: "NotDerivable",
	ErrS008: "CallThroughSum",
	ErrR001: "RuntimeError",
}

// Name returns the condition name of the code, e.g. "NonExhaustiveMatch".
func (c ErrorCode) Name() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return string(c)
}

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// DiagnosticError is a positioned diagnostic produced by any stage.
type DiagnosticError struct {
	Code     ErrorCode
	Severity Severity
	Token    token.Token
	File     string
	Message  string
	Notes    []string
	// Missing lists the uncovered slot indices for S004.
	Missing []int
}

func (e *DiagnosticError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(":")
	}
	fmt.Fprintf(&sb, "%d:%d: ", e.Token.Line, e.Token.Column)
	if e.Severity == SeverityWarning {
		sb.WriteString("warning: ")
	}
	fmt.Fprintf(&sb, "[%s] %s", e.Code, e.Message)
	for _, n := range e.Notes {
		sb.WriteString("\n\t")
		sb.WriteString(n)
	}
	return sb.String()
}

// IsWarning reports whether the diagnostic is advisory only.
func (e *DiagnosticError) IsWarning() bool { return e.Severity == SeverityWarning }

// NewError creates an error-severity diagnostic.
func NewError(code ErrorCode, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &DiagnosticError{Code: code, Severity: SeverityError, Token: tok, Message: msg}
}

// NewWarning creates a warning-severity diagnostic.
func NewWarning(code ErrorCode, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	d := NewError(code, tok, format, args...)
	d.Severity = SeverityWarning
	return d
}

// Note appends an explanatory line to the diagnostic.
func (e *DiagnosticError) Note(format string, args ...interface{}) *DiagnosticError {
	e.Notes = append(e.Notes, fmt.Sprintf(format, args...))
	return e
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []*DiagnosticError) bool {
	for _, d := range diags {
		if !d.IsWarning() {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by file, line, column and code, and drops
// duplicates reported at the same position with the same code and message.
func Sort(diags []*DiagnosticError) []*DiagnosticError {
	if len(diags) == 0 {
		return diags
	}
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		switch {
		case a.File != b.File:
			return a.File < b.File
		case a.Token.Line != b.Token.Line:
			return a.Token.Line < b.Token.Line
		case a.Token.Column != b.Token.Column:
			return a.Token.Column < b.Token.Column
		default:
			return a.Code < b.Code
		}
	})
	dedup := []*DiagnosticError{diags[0]}
	for _, d := range diags[1:] {
		last := dedup[len(dedup)-1]
		if d.File == last.File && d.Token.Line == last.Token.Line && d.Token.Column == last.Token.Column &&
			d.Code == last.Code && d.Message == last.Message {
			continue
		}
		dedup = append(dedup, d)
	}
	return dedup
}
