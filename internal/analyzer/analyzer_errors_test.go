package analyzer

import (
	"strings"
	"testing"

	"github.com/funvibe/anonsum/internal/config"
	"github.com/funvibe/anonsum/internal/diagnostics"
	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// A001 / A002 / A003: name and type errors
// ---------------------------------------------------------------------------

func TestA001_UndeclaredName(t *testing.T) {
	e := expectAnalyzerError(t, `let value = 1
print valeu`, diagnostics.ErrA001)
	if !strings.Contains(e.Error(), "did you mean: value?") {
		t.Errorf("expected a suggestion, got: %s", e.Error())
	}
}

func TestA002_UndeclaredType(t *testing.T) {
	expectAnalyzerErrorContains(t, `let x: i32 | Strng = ::0(1)`, diagnostics.ErrA002, "Strng")
}

func TestA003_TypeErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		substr string
	}{
		{"unapplied generic alias", "type Option<T> = T | ()\nlet x: Option = ::1(())", "missing type arguments"},
		{"generic arity", "type Either<L, R> = L | R\nlet x: Either<i32> = ::0(1)", "expects 2 type arguments"},
		{"args on plain type", "let x: i32<bool> = 1", "takes no type arguments"},
		{"constructor needs a sum", "let x = ::0(1)", "cannot infer the sum type"},
		{"constructor into non-sum", "let x: i32 = ::0(1)", "constructor ::0(1) used where i32 is expected"},
		{"no implicit injection", "let x: i32 | String = 5", "write ::0(5)"},
		{"slot pattern on non-sum", "let x = 1\nlet r = match x { ::0(n) => n, _ => 0 }", "not an anonymous sum"},
		{"lowercase type name", "type pair = (i32, i32)", "uppercase"},
		{"redeclared type", "struct P\nstruct P", "already declared"},
		{"unknown capability", "derive Debugg for i32 | bool", "did you mean: Debug?"},
		{"print needs Debug", "let f: fn(i32) -> i32 | bool = ::0\nprint f", "print requires Debug"},
		{"unknown method", "print \"a\".shout()", "has no method 'shout'"},
		{"or-pattern binds different names", "let v: i32 | i32 = ::0(1)\nlet r = match v { ::0(a) | ::1(b) => 0 }", "not bound in every alternative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectAnalyzerErrorContains(t, tt.input, diagnostics.ErrA003, tt.substr)
		})
	}
}

// ---------------------------------------------------------------------------
// S001: OversizedSumType
// ---------------------------------------------------------------------------

func TestS001_OversizedSum(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Limits.MaxSlots = 3
	e := expectErrorWith(t, "type Wide = i32 | bool | char | String", settings, diagnostics.ErrS001)
	if !strings.Contains(e.Message, "4 slots, limit is 3") {
		t.Errorf("message = %q", e.Message)
	}

	// Nesting keeps each sum under the limit.
	expectCleanWith(t, "type Wide = i32 | bool | (char | String)", settings)
}

// ---------------------------------------------------------------------------
// S002: SlotIndexOutOfRange
// ---------------------------------------------------------------------------

func TestS002_SlotIndexOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"constructor", "let a: i32 | String = ::2(1)"},
		{"pattern", "let a: i32 | String = ::0(1)\nlet r = match a { ::0(_) => 0, ::1(_) => 1, ::7(_) => 2 }"},
		{"nested pattern", "let a: i32 | (bool | char) = ::0(1)\nlet r = match a { ::1(::2(_)) => 0, _ => 1 }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := expectAnalyzerError(t, tt.input, diagnostics.ErrS002)
			if !strings.Contains(e.Message, "out of range") {
				t.Errorf("message = %q", e.Message)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// S003: SlotTypeMismatch
// ---------------------------------------------------------------------------

func TestS003_SlotTypeMismatch(t *testing.T) {
	e := expectAnalyzerError(t, `let a: i32 | String = ::0("x")`, diagnostics.ErrS003)
	if !strings.Contains(e.Error(), "did you mean ::1?") {
		t.Errorf("expected slot hint, got: %s", e.Error())
	}

	// No widening between integer types.
	expectAnalyzerError(t, `let a: i64 | String = ::0(5i32)`, diagnostics.ErrS003)

	// No injection of a slot type into a nested sum.
	expectAnalyzerError(t, `let a: i32 | (String | bool) = ::1(true)`, diagnostics.ErrS003)
}

// ---------------------------------------------------------------------------
// S004: NonExhaustiveMatch
// ---------------------------------------------------------------------------

func TestS004_ExhaustivenessBoundary(t *testing.T) {
	e := expectAnalyzerError(t, `let v: i32 | String | bool = ::0(1)
let r = match v {
    ::0(n) => 1,
    ::1(s) => 2,
}`, diagnostics.ErrS004)
	if diff := cmp.Diff([]int{2}, e.Missing); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(e.Message, "slot 2 not covered") {
		t.Errorf("message = %q", e.Message)
	}
	if e.Token.Line != 2 {
		t.Errorf("reported on line %d, want 2", e.Token.Line)
	}

	expectNoAnalyzerErrors(t, `let v: i32 | String | bool = ::0(1)
let r = match v {
    ::0(n) => 1,
    ::1(s) => 2,
    ::2(b) => 3,
}`)
}

func TestS004_MultipleMissingSlots(t *testing.T) {
	e := expectAnalyzerError(t, `let v: i32 | String | bool | char = ::0(1)
let r = match v {
    ::1(_) => 0,
}`, diagnostics.ErrS004)
	if diff := cmp.Diff([]int{0, 2, 3}, e.Missing); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// S005: UnreachablePattern (warning)
// ---------------------------------------------------------------------------

func TestS005_UnreachablePattern(t *testing.T) {
	errs := analyzeSource(t, `let v: i32 | String = ::0(1)
let r = match v {
    ::0(_) => 0,
    ::0(5) => 1,
    ::1(_) => 2,
}`)
	e := findError(errs, diagnostics.ErrS005)
	if e == nil {
		t.Fatalf("expected S005, got:\n%s", formatErrors(errs))
	}
	if !e.IsWarning() {
		t.Errorf("S005 should be a warning")
	}
	if e.Token.Line != 4 {
		t.Errorf("reported on line %d, want 4", e.Token.Line)
	}
	if diagnostics.HasErrors(errs) {
		t.Errorf("unreachable arm must not fail the check:\n%s", formatErrors(errs))
	}
}

func TestS005_RedundantAlternative(t *testing.T) {
	errs := analyzeSource(t, `let v: i32 | String | bool = ::0(1)
let r = match v {
    ::0(_) => 0,
    ::1(_) | ::0(_) => 1,
    ::2(_) => 2,
}`)
	e := findError(errs, diagnostics.ErrS005)
	if e == nil || !strings.Contains(e.Message, "alternative ::0(_)") {
		t.Fatalf("expected redundant alternative warning, got:\n%s", formatErrors(errs))
	}
}

// ---------------------------------------------------------------------------
// S006: UnsupportedPolicy
// ---------------------------------------------------------------------------

func TestS006_DegenerateSums(t *testing.T) {
	for _, src := range []string{"type Never = (|)", "type Only = (| i32)"} {
		t.Run(src, func(t *testing.T) {
			expectAnalyzerErrorContains(t, src, diagnostics.ErrS006, "degenerate_sums")

			settings := config.DefaultSettings()
			settings.Policy.DegenerateSums = config.DegenerateAllow
			expectCleanWith(t, src, settings)
		})
	}
}

func TestS006_CrossSlotAliasing(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"literal on sum", "let v: i32 | String = ::0(1)\nlet r = match v { 1 => 0, _ => 1 }"},
		{"tuple on sum", "let v: (i32, i32) | String = ::1(\"a\")\nlet r = match v { (a, b) => a, _ => 1 }"},
		{"binding under different slots", "let v: i32 | i32 = ::0(1)\nlet r = match v { ::0(x) | ::1(x) => x }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectAnalyzerError(t, tt.input, diagnostics.ErrS006)
		})
	}

	// The same name under the same slot path is fine.
	expectNoAnalyzerErrors(t, `let v: (i32, i32 | String) = (1, ::0(2))
let r = match v {
    (x, ::0(_)) | (x, ::1(_)) => x,
}`)
}

func TestS006_OrderingDisabled(t *testing.T) {
	e := expectAnalyzerError(t, "derive PartialOrd for i32 | String", diagnostics.ErrS006)
	if !strings.Contains(e.Message, config.OrderingTagThenPayload) {
		t.Errorf("message should name the policy value: %q", e.Message)
	}
}

// ---------------------------------------------------------------------------
// S007: NotDerivable
// ---------------------------------------------------------------------------

func TestS007_NotDerivable(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		missing []int
	}{
		{"slot lacks Hash", "derive Hash for i32 | f64", []int{1}},
		{"slot lacks Copy", "derive Copy for String | i32 | String", []int{0, 2}},
		{"iterator items disagree", "derive Iterator for Range | Chars", []int{1}},
		{"struct without Clone", "struct P derives Debug\nderive Clone for P | i32", []int{0}},
		{"excluded capability", "derive Default for i32 | String", nil},
		{"print function slot", "let x: i32 | fn(i32) -> i32 = ::0(1)\nprint x", []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := expectAnalyzerError(t, tt.input, diagnostics.ErrS007)
			if diff := cmp.Diff(tt.missing, e.Missing); diff != "" {
				t.Errorf("Missing mismatch (-want +got):\n%s", diff)
			}
		})
	}

	expectNoAnalyzerErrors(t, "derive PartialEq, Eq, Clone, Debug, Hash for i32 | String | (bool, char)")
	expectNoAnalyzerErrors(t, "derive Iterator<i32> for Range | Range")
	expectAnalyzerErrorContains(t, "derive Iterator<char> for Range | Range", diagnostics.ErrS007, "associated type i32")
}

// ---------------------------------------------------------------------------
// S008: CallThroughSum
// ---------------------------------------------------------------------------

func TestS008_CallThroughSum(t *testing.T) {
	e := expectAnalyzerError(t, `let s: String | String = ::0("a")
print s.len()`, diagnostics.ErrS008)
	if !strings.Contains(e.Error(), "slots [0 1] have 'len'") {
		t.Errorf("expected slot hint, got: %s", e.Error())
	}

	expectAnalyzerError(t, `let f: (fn(i32) -> i32 | bool) | i32 = ::1(1)
print f(1)`, diagnostics.ErrS008)

	expectNoAnalyzerErrors(t, `let s: String | i32 = ::0("a")
let n = match s {
    ::0(text) => text.len(),
    ::1(i) => i.abs(),
}`)
}
