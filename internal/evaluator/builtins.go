package evaluator

import (
	"github.com/funvibe/anonsum/internal/config"
	"github.com/funvibe/anonsum/internal/typesystem"
)

// Builtins maps each built-in function name to its implementation.
var Builtins = map[string]*Builtin{
	config.DebugFuncName: {Name: config.DebugFuncName, Fn: builtinDebug},
	config.EqFuncName:    {Name: config.EqFuncName, Fn: builtinEq},
	config.CmpFuncName:   {Name: config.CmpFuncName, Fn: builtinCmp},
	config.HashFuncName:  {Name: config.HashFuncName, Fn: builtinHash},
	config.CloneFuncName: {Name: config.CloneFuncName, Fn: builtinClone},
	config.CopyFuncName:  {Name: config.CopyFuncName, Fn: builtinClone},
	config.RangeFuncName: {Name: config.RangeFuncName, Fn: builtinRange},
	config.CharsFuncName: {Name: config.CharsFuncName, Fn: builtinChars},
	config.ReadyFuncName: {Name: config.ReadyFuncName, Fn: builtinReady},
	config.DelayFuncName: {Name: config.DelayFuncName, Fn: builtinDelay},

	config.BlockOnFuncName: {Name: config.BlockOnFuncName, Fn: builtinBlockOn},
	config.MapErrFuncName:  {Name: config.MapErrFuncName, Fn: builtinMapErr},
}

// RegisterBuiltins adds the built-in functions to env.
func RegisterBuiltins(env *Environment) {
	for name, fn := range Builtins {
		env.Set(name, fn)
	}
}

func checkArgs(name string, args []Object, n int) *Error {
	if len(args) != n {
		return newError("%s expects %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func builtinDebug(e *Evaluator, args ...Object) Object {
	if err := checkArgs(config.DebugFuncName, args, 1); err != nil {
		return err
	}
	impl := e.implOf(args[0])
	if impl.Debug == nil {
		return newError("%s does not implement Debug", args[0].RuntimeType())
	}
	return &String{Value: impl.Debug(args[0])}
}

func builtinEq(e *Evaluator, args ...Object) Object {
	if err := checkArgs(config.EqFuncName, args, 2); err != nil {
		return err
	}
	impl := e.implOf(args[0])
	if impl.Eq == nil {
		return newError("%s does not implement PartialEq", args[0].RuntimeType())
	}
	return nativeBoolToBooleanObject(impl.Eq(args[0], args[1]))
}

func builtinCmp(e *Evaluator, args ...Object) Object {
	if err := checkArgs(config.CmpFuncName, args, 2); err != nil {
		return err
	}
	impl := e.implOf(args[0])
	if impl.Cmp == nil {
		return newError("%s does not implement PartialOrd", args[0].RuntimeType())
	}
	return newInt(int64(impl.Cmp(args[0], args[1])), typesystem.I32)
}

func builtinHash(e *Evaluator, args ...Object) Object {
	if err := checkArgs(config.HashFuncName, args, 1); err != nil {
		return err
	}
	impl := e.implOf(args[0])
	if impl.Hash == nil {
		return newError("%s does not implement Hash", args[0].RuntimeType())
	}
	return newInt(int64(impl.Hash(args[0])), typesystem.I64)
}

func builtinClone(e *Evaluator, args ...Object) Object {
	if err := checkArgs(config.CloneFuncName, args, 1); err != nil {
		return err
	}
	impl := e.implOf(args[0])
	if impl.Clone == nil {
		return newError("%s does not implement Clone", args[0].RuntimeType())
	}
	return impl.Clone(args[0])
}

func builtinRange(e *Evaluator, args ...Object) Object {
	if err := checkArgs(config.RangeFuncName, args, 2); err != nil {
		return err
	}
	start, ok1 := args[0].(*Integer)
	end, ok2 := args[1].(*Integer)
	if !ok1 || !ok2 {
		return newError("range expects i32 bounds")
	}
	return &Range{Start: start.Value, End: end.Value}
}

func builtinChars(e *Evaluator, args ...Object) Object {
	if err := checkArgs(config.CharsFuncName, args, 1); err != nil {
		return err
	}
	s, ok := args[0].(*String)
	if !ok {
		return newError("chars expects a String")
	}
	return &Chars{Value: s.Value}
}

func builtinReady(e *Evaluator, args ...Object) Object {
	if err := checkArgs(config.ReadyFuncName, args, 1); err != nil {
		return err
	}
	return &Ready{Value: args[0]}
}

func builtinDelay(e *Evaluator, args ...Object) Object {
	if err := checkArgs(config.DelayFuncName, args, 2); err != nil {
		return err
	}
	polls, ok := args[1].(*Integer)
	if !ok {
		return newError("delay expects an i32 poll count")
	}
	if polls.Value < 0 {
		return newError("delay poll count must not be negative, got %d", polls.Value)
	}
	return &Delay{Value: args[0], Polls: polls.Value}
}

// builtinBlockOn polls a future until it completes.
func builtinBlockOn(e *Evaluator, args ...Object) Object {
	if err := checkArgs(config.BlockOnFuncName, args, 1); err != nil {
		return err
	}
	impl := e.implOf(args[0])
	if impl.Poll == nil {
		return newError("%s does not implement Future", args[0].RuntimeType())
	}
	p := impl.Poll(args[0])
	for i := 0; i < e.MaxPolls; i++ {
		if err := e.Context.Err(); err != nil {
			return newError("block_on cancelled: %v", err)
		}
		if v, ok := p.Poll(); ok {
			return v
		}
	}
	return newError("block_on: future still pending after %d polls", e.MaxPolls)
}

// builtinMapErr applies f to the payload of slot 1 and keeps slot 0,
// building a value of the call's result descriptor.
func builtinMapErr(e *Evaluator, args ...Object) Object {
	if err := checkArgs(config.MapErrFuncName, args, 2); err != nil {
		return err
	}
	r, ok := args[0].(*SumValue)
	if !ok || r.Sum.Arity() != 2 {
		return newError("map_err expects a two-slot anonymous sum, got %s", args[0].Inspect())
	}
	var result *typesystem.TSum
	if e.CurrentCallNode != nil {
		result, _ = e.typeOf(e.CurrentCallNode).(*typesystem.TSum)
	}
	if result == nil {
		return newError("map_err has no resolved result type")
	}
	if r.Tag == 0 {
		return &SumValue{Sum: result, Tag: 0, Payload: r.Payload}
	}
	mapped := e.applyFunction(args[1], e.CurrentCallNode, []Object{r.Payload})
	if isError(mapped) {
		return mapped
	}
	return &SumValue{Sum: result, Tag: 1, Payload: mapped}
}
