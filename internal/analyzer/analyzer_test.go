package analyzer

import (
	"strings"
	"testing"

	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/config"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/funvibe/anonsum/internal/lexer"
	"github.com/funvibe/anonsum/internal/parser"
	"github.com/funvibe/anonsum/internal/pipeline"
	"github.com/funvibe/anonsum/internal/typesystem"
)

func TestMain(m *testing.M) {
	config.IsTestMode = true
	m.Run()
}

// analyzeCtx lexes, parses and analyzes input with a private interner.
func analyzeCtx(t *testing.T, input string, settings *config.Settings) *pipeline.PipelineContext {
	t.Helper()
	if settings == nil {
		settings = config.DefaultSettings()
	}
	ctx := pipeline.NewPipelineContext(input)
	ctx.Settings = settings
	ctx.Interner = typesystem.NewInterner(settings.Limits.MaxSlots)
	ctx = pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
	).Run(ctx)
	if ctx.Failed() {
		for _, e := range ctx.Errors {
			t.Errorf("parse error: %s", e)
		}
		t.FailNow()
	}
	return (&SemanticAnalyzerProcessor{}).Process(ctx)
}

func analyzeSource(t *testing.T, input string) []*diagnostics.DiagnosticError {
	t.Helper()
	return analyzeCtx(t, input, nil).Errors
}

func formatErrors(errs []*diagnostics.DiagnosticError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// findError returns the first diagnostic with the given code.
func findError(errs []*diagnostics.DiagnosticError, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	for _, e := range errs {
		if e.Code == code {
			return e
		}
	}
	return nil
}

// expectAnalyzerError asserts that at least one diagnostic with the given code is produced.
func expectAnalyzerError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	return expectErrorWith(t, input, nil, code)
}

func expectErrorWith(t *testing.T, input string, settings *config.Settings, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	errs := analyzeCtx(t, input, settings).Errors
	if e := findError(errs, code); e != nil {
		return e
	}
	if len(errs) == 0 {
		t.Fatalf("expected error %s, but got none\ninput: %s", code, input)
	}
	t.Fatalf("expected error %s, got:\n%s\ninput: %s", code, formatErrors(errs), input)
	return nil
}

// expectAnalyzerErrorContains asserts an error with the given code whose message contains substr.
func expectAnalyzerErrorContains(t *testing.T, input string, code diagnostics.ErrorCode, substr string) {
	t.Helper()
	e := expectAnalyzerError(t, input, code)
	if !strings.Contains(e.Error(), substr) {
		t.Errorf("expected error message to contain %q, got: %s", substr, e.Error())
	}
}

// expectNoAnalyzerErrors asserts that analysis produces no diagnostics at all.
func expectNoAnalyzerErrors(t *testing.T, input string) {
	t.Helper()
	expectCleanWith(t, input, nil)
}

func expectCleanWith(t *testing.T, input string, settings *config.Settings) *pipeline.PipelineContext {
	t.Helper()
	ctx := analyzeCtx(t, input, settings)
	if len(ctx.Errors) > 0 {
		t.Fatalf("expected no errors, got:\n%s\ninput: %s", formatErrors(ctx.Errors), input)
	}
	return ctx
}

// letType returns the type bound by the let statement named name.
func letType(t *testing.T, ctx *pipeline.PipelineContext, name string) typesystem.Type {
	t.Helper()
	for _, stmt := range ctx.AstRoot.(*ast.Program).Statements {
		if ls, ok := stmt.(*ast.LetStatement); ok && ls.Name.Value == name {
			return ctx.TypeMap[ls.Name]
		}
	}
	t.Fatalf("no let %s", name)
	return nil
}

func TestGenericAliasIsTransparent(t *testing.T) {
	ctx := expectCleanWith(t, `type Either<L, R> = L | R
let a: Either<i32, String> = ::0(1)
let b: i32 | String = a
let c: Either<i32, String> = b`, nil)

	a, b := letType(t, ctx, "a"), letType(t, ctx, "b")
	if a.(*typesystem.TSum) != b.(*typesystem.TSum) {
		t.Errorf("Either<i32, String> and i32 | String are different descriptors: %p vs %p", a, b)
	}
}

func TestSumIdentityIsPositional(t *testing.T) {
	expectAnalyzerErrorContains(t, `let a: i32 | String = ::0(1)
let b: String | i32 = a`, diagnostics.ErrA003, "expected String | i32, got i32 | String")
}

func TestNestedSumIsNotFlattened(t *testing.T) {
	expectAnalyzerError(t, `let a: i32 | (String | bool) = ::0(1)
let b: i32 | String | bool = a`, diagnostics.ErrA003)

	expectNoAnalyzerErrors(t, `let a: i32 | (String | bool) = ::1(::1(true))`)
	expectAnalyzerError(t, `let a: i32 | (String | bool) = ::2(true)`, diagnostics.ErrS002)
}

func TestDuplicateSlots(t *testing.T) {
	ctx := expectCleanWith(t, `let a: i32 | i32 = ::0(1)
let b: i32 | i32 = ::1(1)
let r = match b {
    ::0(x) => x,
    ::1(y) => y,
}`, nil)
	if got := letType(t, ctx, "r"); !typesystem.Identical(got, typesystem.I32) {
		t.Errorf("match result type = %s, want i32", got)
	}

	// Covering slot 0 says nothing about slot 1.
	e := expectAnalyzerError(t, `let b: i32 | i32 = ::1(1)
let r = match b { ::0(x) => x }`, diagnostics.ErrS004)
	if len(e.Missing) != 1 || e.Missing[0] != 1 {
		t.Errorf("Missing = %v, want [1]", e.Missing)
	}
}

func TestLiteralTakesSlotType(t *testing.T) {
	expectNoAnalyzerErrors(t, `let a: u8 | i64 = ::0(200)
let b: u8 | i64 = ::1(5000000000i64)
let c: f32 | String = ::0(1.5)`)
	expectAnalyzerErrorContains(t, `let a: u8 | String = ::0(300)`, diagnostics.ErrA003, "overflows u8")
}

func TestFirstClassConstructor(t *testing.T) {
	expectNoAnalyzerErrors(t, `let wrap: fn(String) -> i32 | String = ::1
let v: i32 | String = wrap("x")`)

	expectAnalyzerError(t, `let wrap: fn(i32) -> i32 | String = ::1`, diagnostics.ErrS003)
	expectAnalyzerError(t, `let wrap: fn(i32) -> i32 | String = ::5`, diagnostics.ErrS002)
	expectAnalyzerErrorContains(t, `let wrap = ::1`, diagnostics.ErrA003, "first-class constructor")
}

func TestMapErr(t *testing.T) {
	ctx := expectCleanWith(t, `let r: i32 | String = ::1("boom")
let m: i32 | (u8 | String) = map_err(r, ::1)
let lift: fn(String) -> bool | String = ::1
let n = map_err(r, lift)`, nil)

	want := "i32 | (bool | String)"
	if got := letType(t, ctx, "n").String(); got != want {
		t.Errorf("map_err result = %s, want %s", got, want)
	}

	expectAnalyzerErrorContains(t, `let r: i32 | String | bool = ::0(1)
let lift: fn(String) -> bool | String = ::1
let m = map_err(r, lift)`, diagnostics.ErrA003, "two-slot")
	expectAnalyzerErrorContains(t, `let r: i32 | String = ::0(1)
let m = map_err(r, ::1)`, diagnostics.ErrA003, "cannot infer")
}

func TestIterationAndFutures(t *testing.T) {
	ctx := expectCleanWith(t, `let it: Range | Range = ::1(range(0, 3))
for x in it {
    print x
}
for c in chars("ab") {
    print c
}
let f: Ready | Delay = ::1(delay(7, 2))
let v = block_on(f)`, nil)
	if got := letType(t, ctx, "v"); !typesystem.Identical(got, typesystem.I32) {
		t.Errorf("block_on result = %s, want i32", got)
	}
}

func TestStructCapabilities(t *testing.T) {
	expectNoAnalyzerErrors(t, `struct Point derives Debug, Clone
struct Numbers derives Iterator<i32>
derive Debug, Clone for Point | i32
let it: Numbers | Range = ::1(range(0, 2))
for n in it {
    print n
}`)
}

func TestOrderingPolicy(t *testing.T) {
	src := `let a: i32 | String = ::0(1)
let b: i32 | String = ::1("x")
let c = cmp(a, b)`
	expectErrorWith(t, src, nil, diagnostics.ErrS006)

	settings := config.DefaultSettings()
	settings.Policy.Ordering = config.OrderingTagThenPayload
	expectCleanWith(t, src, settings)
}

func TestDerivationsRecorded(t *testing.T) {
	ctx := expectCleanWith(t, `let a: i32 | String = ::0(1)
print a
print debug(a)`, nil)
	var debug int
	for _, d := range ctx.Derivations {
		if d.Capability == typesystem.Debug {
			debug++
			if !d.Holds {
				t.Errorf("Debug derivation for %s does not hold", d.Type)
			}
		}
	}
	if debug != 1 {
		t.Errorf("Debug derivations recorded = %d, want 1", debug)
	}
}

func TestCoverageNested(t *testing.T) {
	expectNoAnalyzerErrors(t, `let v: i32 | (bool | char) = ::0(1)
let r = match v {
    ::0(_) => 0,
    ::1(::0(true)) => 1,
    ::1(::0(false)) => 2,
    ::1(::1(_)) => 3,
}`)

	e := expectAnalyzerError(t, `let v: i32 | (bool | char) = ::0(1)
let r = match v {
    ::0(_) => 0,
    ::1(::0(true)) => 1,
    ::1(::1(_)) => 3,
}`, diagnostics.ErrS004)
	if len(e.Missing) != 1 || e.Missing[0] != 1 {
		t.Errorf("Missing = %v, want [1]", e.Missing)
	}
	if !strings.Contains(e.Error(), "::1(::0(false))") {
		t.Errorf("witness not listed: %s", e.Error())
	}
}

func TestCoverageTuplesAndOrPatterns(t *testing.T) {
	expectNoAnalyzerErrors(t, `let v: (i32 | String, bool) = (::0(1), true)
let r = match v {
    (::0(_), _) => 0,
    (::1(_), true) | (::1(_), false) => 1,
}`)

	expectNoAnalyzerErrors(t, `let v: i32 | String | bool = ::2(true)
let r = match v {
    ::0(_) | ::2(_) => 0,
    ::1(s) => 1,
}`)
}

func TestLiteralsNeverExhaustInfiniteTypes(t *testing.T) {
	e := expectAnalyzerError(t, `let v: i32 | bool = ::0(1)
let r = match v {
    ::0(1) => 0,
    ::0(2) => 1,
    ::1(_) => 2,
}`, diagnostics.ErrS004)
	if len(e.Missing) != 1 || e.Missing[0] != 0 {
		t.Errorf("Missing = %v, want [0]", e.Missing)
	}
}

func TestMatchArmsAgree(t *testing.T) {
	expectAnalyzerErrorContains(t, `let v: i32 | String = ::0(1)
let r = match v {
    ::0(n) => n,
    ::1(s) => s,
}`, diagnostics.ErrA003, "match arm has type String, expected i32")

	ctx := expectCleanWith(t, `let v: i32 | String = ::0(1)
let r: u8 | bool = match v {
    ::0(_) => ::0(1),
    ::1(_) => ::1(false),
}`, nil)
	if got := letType(t, ctx, "r").String(); got != "u8 | bool" {
		t.Errorf("r = %s", got)
	}
}

func TestScopes(t *testing.T) {
	expectAnalyzerError(t, `for x in range(0, 2) {
    let y = x
}
print y`, diagnostics.ErrA001)

	expectAnalyzerError(t, `let v: i32 | String = ::0(1)
let r = match v {
    ::0(n) => n,
    ::1(_) => n,
}`, diagnostics.ErrA001)
}
