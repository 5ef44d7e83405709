package evaluator

// ObjectsEqual performs a deep structural equality check. Sum values are
// equal when they carry the same descriptor, tag and payload.
func ObjectsEqual(a, b Object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Type() != b.Type() {
		return false
	}

	switch aVal := a.(type) {
	case *Integer:
		bVal := b.(*Integer)
		return aVal.Value == bVal.Value && aVal.Kind == bVal.Kind
	case *Float:
		bVal := b.(*Float)
		return aVal.Value == bVal.Value && aVal.Kind == bVal.Kind
	case *Boolean:
		return aVal.Value == b.(*Boolean).Value
	case *Char:
		return aVal.Value == b.(*Char).Value
	case *String:
		return aVal.Value == b.(*String).Value
	case *Unit:
		return true
	case *Tuple:
		bVal := b.(*Tuple)
		if len(aVal.Elements) != len(bVal.Elements) {
			return false
		}
		for i := range aVal.Elements {
			if !ObjectsEqual(aVal.Elements[i], bVal.Elements[i]) {
				return false
			}
		}
		return true
	case *SumValue:
		bVal := b.(*SumValue)
		return aVal.Sum == bVal.Sum && aVal.Tag == bVal.Tag && ObjectsEqual(aVal.Payload, bVal.Payload)
	case *CtorFunc:
		bVal := b.(*CtorFunc)
		return aVal.Sum == bVal.Sum && aVal.Index == bVal.Index
	case *Range:
		bVal := b.(*Range)
		return aVal.Start == bVal.Start && aVal.End == bVal.End
	case *Chars:
		return aVal.Value == b.(*Chars).Value
	case *Ready:
		return ObjectsEqual(aVal.Value, b.(*Ready).Value)
	case *Delay:
		bVal := b.(*Delay)
		return aVal.Polls == bVal.Polls && ObjectsEqual(aVal.Value, bVal.Value)
	}
	return false
}
