package evaluator

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/funvibe/anonsum/internal/analyzer"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/lexer"
	"github.com/funvibe/anonsum/internal/parser"
	"github.com/funvibe/anonsum/internal/pipeline"
	"github.com/funvibe/anonsum/internal/typesystem"
	"github.com/google/go-cmp/cmp"
)

// run checks and evaluates input, returning printed lines and diagnostics.
func run(t *testing.T, input string) ([]string, []*diagnostics.DiagnosticError) {
	t.Helper()
	var out bytes.Buffer
	ctx := pipeline.NewPipelineContext(input)
	ctx.Interner = typesystem.NewInterner(ctx.Settings.Limits.MaxSlots)
	ctx.Output = &out
	ctx = pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
		&EvaluatorProcessor{},
	).Run(ctx)
	text := strings.TrimRight(out.String(), "\n")
	if text == "" {
		return nil, ctx.Errors
	}
	return strings.Split(text, "\n"), ctx.Errors
}

func expectOutput(t *testing.T, input string, want ...string) {
	t.Helper()
	got, errs := run(t, input)
	if diagnostics.HasErrors(errs) {
		for _, e := range errs {
			t.Errorf("unexpected diagnostic: %s", e)
		}
		t.FailNow()
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestConstructMatchRoundTrip(t *testing.T) {
	expectOutput(t, `let v: i32 | String | bool = ::1("two")
let r = match v {
    ::0(n) => "int",
    ::1(s) => s,
    ::2(b) => "bool",
}
print r
let w: i32 | String | bool = ::2(true)
print match w {
    ::0(_) => 0,
    ::1(_) => 1,
    ::2(_) => 2,
}`, "two", "2")
}

func TestDuplicateSlotsStayDistinct(t *testing.T) {
	expectOutput(t, `let a: i32 | i32 = ::0(7)
let b: i32 | i32 = ::1(7)
print match a { ::0(_) => "left", ::1(_) => "right" }
print match b { ::0(_) => "left", ::1(_) => "right" }
print eq(a, b)
print eq(a, ::0(7))`, "left", "right", "false", "true")
}

func TestDebugDelegatesToSlot(t *testing.T) {
	expectOutput(t, `let v: String | i32 = ::1(42)
print v
print debug(v)
let s: String | i32 = ::0("hi")
print s
let nested: i32 | (bool | char) = ::1(::1('x'))
print nested
let pair: (i32 | String, bool) = (::0(3), false)
print pair`, "42", "42", `"hi"`, "'x'", "(3, false)")
}

func TestNestedSumsAreNotFlattened(t *testing.T) {
	expectOutput(t, `let v: i32 | (String | bool) = ::1(::1(true))
print match v {
    ::0(_) => "outer 0",
    ::1(::0(_)) => "inner 0",
    ::1(::1(b)) => "inner 1",
}`, "inner 1")
}

func TestOrPatternBindings(t *testing.T) {
	expectOutput(t, `let v: (i32, i32 | String) = (5, ::1("x"))
print match v {
    (n, ::0(_)) | (n, ::1(_)) => n,
}`, "5")
}

func TestLiteralPatterns(t *testing.T) {
	expectOutput(t, `let v: i32 | char = ::0(2)
print match v {
    ::0(1) => "one",
    ::0(2) => "two",
    ::0(_) => "many",
    ::1('a') => "a",
    ::1(_) => "char",
}`, "two")
}

func TestCapabilityBuiltins(t *testing.T) {
	expectOutput(t, `let a: i32 | String = ::0(1)
let b: i32 | String = ::1("x")
let c: i32 | String = ::0(1)
print eq(a, clone(a))
print eq(a, b)
print eq(hash(a), hash(c))
print eq(hash(a), hash(b))`, "true", "false", "true", "false")
}

func TestFirstClassConstructorAndMapErr(t *testing.T) {
	expectOutput(t, `let wrap: fn(String) -> i32 | String = ::1
let e: i32 | String = wrap("boom")
let ok: i32 | String = ::0(3)
let widened: i32 | (u8 | String) = map_err(e, ::1)
print match widened {
    ::0(_) => "ok",
    ::1(::0(_)) => "code",
    ::1(::1(msg)) => msg,
}
let lift: fn(String) -> bool | String = ::1
let kept = map_err(ok, lift)
print match kept {
    ::0(n) => n,
    ::1(_) => 0,
}`, "boom", "3")
}

func TestIterationThroughSums(t *testing.T) {
	expectOutput(t, `let it: Range | Range = ::1(range(1, 4))
for x in it {
    print x
}
for c in chars("ab") {
    print c
}`, "1", "2", "3", "'a'", "'b'")
}

func TestBlockOnThroughSums(t *testing.T) {
	expectOutput(t, `let f: Ready | Delay = ::1(delay(7, 3))
print block_on(f)
let g: Ready | Delay = ::0(ready(9))
print block_on(g)`, "7", "9")
}

func TestMethodsOnSlots(t *testing.T) {
	expectOutput(t, `let s: String | i32 = ::0("héllo")
print match s {
    ::0(text) => text.len(),
    ::1(n) => n.abs(),
}
print "abc".to_upper()
print 5.max(9)`, "5", "ABC", "9")
}

func TestRuntimeErrorIsReported(t *testing.T) {
	e := New()
	e.MaxPolls = 2
	res := builtinBlockOn(e, &Delay{Value: newInt(1, typesystem.I32), Polls: 5})
	err, ok := res.(*Error)
	if !ok || !strings.Contains(err.Message, "still pending") {
		t.Errorf("block_on = %v, want pending error", res)
	}

	res = callMethod(newInt(-2147483648, typesystem.I32), "abs", nil)
	if !isError(res) {
		t.Errorf("abs of i32 minimum = %s, want overflow error", res.Inspect())
	}
}

func TestCheckErrorsBlockEvaluation(t *testing.T) {
	out, errs := run(t, `print "before"
let v: i32 | String = ::0(1)
let r = match v { ::0(n) => n }`)
	if len(out) != 0 {
		t.Errorf("program with errors produced output %v", out)
	}
	if !diagnostics.HasErrors(errs) {
		t.Errorf("expected S004")
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pc := pipeline.NewPipelineContext(`print 1`)
	pc.Context = ctx
	pc = (&lexer.LexerProcessor{}).Process(pc)
	pc = (&parser.ParserProcessor{}).Process(pc)
	pc = (&analyzer.SemanticAnalyzerProcessor{}).Process(pc)
	var out bytes.Buffer
	pc.Output = &out
	pc = (&EvaluatorProcessor{}).Process(pc)
	if len(pc.Errors) != 1 || pc.Errors[0].Code != diagnostics.ErrR001 {
		t.Fatalf("errors = %v, want one R001", pc.Errors)
	}
}

func TestDispatchTablePerDescriptor(t *testing.T) {
	in := typesystem.NewInterner(16)
	sum := in.MustSum(typesystem.I32, typesystem.String)
	d := NewDispatch()

	var wg sync.WaitGroup
	tables := make([]*SumTable, 8)
	for i := range tables {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tables[i] = d.Table(in.MustSum(typesystem.I32, typesystem.String))
		}(i)
	}
	wg.Wait()
	for i, tbl := range tables {
		if tbl != tables[0] {
			t.Errorf("table %d differs from table 0", i)
		}
	}
	if d.Len() != 1 {
		t.Errorf("Len = %d, want 1", d.Len())
	}

	impl := d.Table(sum).Impl
	if impl.Debug == nil || impl.Eq == nil || impl.Hash == nil || impl.Clone == nil {
		t.Fatalf("i32 | String should have Debug, PartialEq, Hash and Clone")
	}
	if impl.Iter != nil || impl.Poll != nil {
		t.Errorf("i32 | String must not iterate or poll")
	}
	if got := impl.Debug(&SumValue{Sum: sum, Tag: 0, Payload: newInt(42, typesystem.I32)}); got != "42" {
		t.Errorf("Debug(::0(42)) = %q, want 42", got)
	}

	floats := d.Table(in.MustSum(typesystem.I32, typesystem.F64)).Impl
	if floats.Hash != nil {
		t.Errorf("i32 | f64 must not hash: f64 lacks Hash")
	}
	if floats.Eq == nil {
		t.Errorf("i32 | f64 should have PartialEq")
	}
}

func TestTagThenPayloadOrdering(t *testing.T) {
	in := typesystem.NewInterner(16)
	sum := in.MustSum(typesystem.I32, typesystem.String)
	cmpImpl := NewDispatch().Table(sum).Impl.Cmp

	zero := &SumValue{Sum: sum, Tag: 0, Payload: newInt(100, typesystem.I32)}
	one := &SumValue{Sum: sum, Tag: 1, Payload: &String{Value: "a"}}
	small := &SumValue{Sum: sum, Tag: 0, Payload: newInt(1, typesystem.I32)}

	tests := []struct {
		name string
		a, b Object
		want int
	}{
		{"lower tag first", zero, one, -1},
		{"higher tag last", one, small, 1},
		{"same tag by payload", small, zero, -1},
		{"equal", zero, zero, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cmpImpl(tt.a, tt.b); got != tt.want {
				t.Errorf("Cmp = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewSumValueRejectsBadIndex(t *testing.T) {
	sum := typesystem.NewInterner(16).MustSum(typesystem.I32, typesystem.String)
	if _, err := NewSumValue(sum, 2, newInt(1, typesystem.I32)); err == nil {
		t.Errorf("NewSumValue(::2) on a two-slot sum succeeded")
	}
	v, err := NewSumValue(sum, 1, &String{Value: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if !ObjectsEqual(v, &SumValue{Sum: sum, Tag: 1, Payload: &String{Value: "x"}}) {
		t.Errorf("round trip lost the value: %s", v.Inspect())
	}
}
