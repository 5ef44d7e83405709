package analyzer

import (
	"errors"

	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/typesystem"
)

// inferSlotConstructor resolves ::i(payload) against the expected sum.
// The payload must have exactly the slot's type; the result is the sum.
func (w *walker) inferSlotConstructor(sc *ast.SlotConstructor, expected typesystem.Type) typesystem.Type {
	if sc.IsFirstClass() {
		return w.inferFirstClassConstructor(sc, expected)
	}

	if expected == nil {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, sc.Token,
			"cannot infer the sum type of %s", sc).
			Note("add a type annotation, e.g. let x: A | B = %s", sc))
		w.infer(sc.Payload, nil)
		return unknownType
	}
	if isUnknown(expected) {
		w.infer(sc.Payload, nil)
		return unknownType
	}
	sum, ok := expected.(*typesystem.TSum)
	if !ok {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, sc.Token,
			"constructor %s used where %s is expected", sc, expected))
		w.infer(sc.Payload, nil)
		return unknownType
	}

	slot, ok := w.resolveSlot(sum, sc.Index, sc)
	if !ok {
		w.infer(sc.Payload, nil)
		return sum
	}

	got := w.infer(sc.Payload, slot)
	if !isUnknown(got) && !typesystem.Identical(got, slot) {
		d := diagnostics.NewError(diagnostics.ErrS003, sc.Payload.GetToken(),
			"payload of ::%d has type %s, but slot %d of %s is %s", sc.Index, got, sc.Index, sum, slot)
		for i, other := range sum.Slots {
			if i != sc.Index && typesystem.Identical(other, got) {
				d.Note("slot %d has type %s; did you mean ::%d?", i, got, i)
				break
			}
		}
		w.addError(d)
	}
	return sum
}

// inferFirstClassConstructor types a bare ::i. The context must expect
// fn(slot_i) -> Sum.
func (w *walker) inferFirstClassConstructor(sc *ast.SlotConstructor, expected typesystem.Type) typesystem.Type {
	if expected == nil {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, sc.Token,
			"cannot infer the type of first-class constructor %s", sc).
			Note("annotate it as fn(T) -> A | B"))
		return unknownType
	}
	if isUnknown(expected) {
		return unknownType
	}
	fn, ok := expected.(typesystem.TFunc)
	var sum *typesystem.TSum
	if ok && len(fn.Params) == 1 {
		sum, ok = fn.ReturnType.(*typesystem.TSum)
	} else {
		ok = false
	}
	if !ok {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, sc.Token,
			"first-class constructor %s used where %s is expected", sc, expected).
			Note("a constructor has type fn(T) -> S for a sum S"))
		return unknownType
	}

	slot, ok := w.resolveSlot(sum, sc.Index, sc)
	if !ok {
		return unknownType
	}
	if !isUnknown(fn.Params[0]) && !typesystem.Identical(fn.Params[0], slot) {
		w.addError(diagnostics.NewError(diagnostics.ErrS003, sc.Token,
			"constructor ::%d takes %s, but %s is expected to take %s", sc.Index, slot, sc, fn.Params[0]))
		return unknownType
	}
	return fn
}

// resolveSlot looks up slot i of sum, reporting an out-of-range index.
func (w *walker) resolveSlot(sum *typesystem.TSum, index int, node ast.TokenProvider) (typesystem.Type, bool) {
	slot, err := sum.Slot(index)
	if err != nil {
		var ie *typesystem.IndexError
		if errors.As(err, &ie) {
			w.addError(diagnostics.NewError(diagnostics.ErrS002, node.GetToken(), "%s", ie.Error()))
		} else {
			w.addError(diagnostics.NewError(diagnostics.ErrA003, node.GetToken(), "%s", err.Error()))
		}
		return nil, false
	}
	return slot, true
}
