package typesystem

import (
	"errors"
	"fmt"
)

var (
	// ErrNotDerivable is wrapped by every error reporting a capability
	// that cannot be derived.
	ErrNotDerivable = errors.New("capability not derivable")

	// ErrUnsupportedPolicy is wrapped by errors that a configured policy
	// forbids rather than the type structure.
	ErrUnsupportedPolicy = errors.New("unsupported by policy")
)

// OversizedSumError reports a sum with more slots than the interner allows.
type OversizedSumError struct {
	Slots int
	Max   int
}

func (e *OversizedSumError) Error() string {
	return fmt.Sprintf("anonymous sum has %d slots, limit is %d", e.Slots, e.Max)
}

// IndexError reports a slot index outside the descriptor's range.
type IndexError struct {
	Index int
	Arity int
	Sum   *TSum
}

func (e *IndexError) Error() string {
	if e.Arity == 0 {
		return fmt.Sprintf("slot index %d out of range: %s has no slots", e.Index, e.Sum)
	}
	return fmt.Sprintf("slot index %d out of range for %s (valid: 0..%d)", e.Index, e.Sum, e.Arity-1)
}

// SymbolNotFoundError indicates a symbol was not found
type SymbolNotFoundError struct {
	Name string
}

func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("symbol not found: %s", e.Name)
}

func NewSymbolNotFoundError(name string) *SymbolNotFoundError {
	return &SymbolNotFoundError{Name: name}
}
