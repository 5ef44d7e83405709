package symbols

import (
	"errors"
	"testing"

	"github.com/funvibe/anonsum/internal/typesystem"
	"github.com/google/go-cmp/cmp"
)

func TestInstantiateReinterns(t *testing.T) {
	in := typesystem.NewInterner(16)
	st := NewSymbolTable()
	st.DefineType("Either", in.MustSum(typesystem.TVar{Name: "L"}, typesystem.TVar{Name: "R"}), []string{"L", "R"}, nil)

	sym, ok := st.FindType("Either")
	if !ok || !sym.IsGenericAlias() {
		t.Fatalf("Either = %+v, %v", sym, ok)
	}
	got := sym.Instantiate([]typesystem.Type{typesystem.I32, typesystem.String})
	if got != in.MustSum(typesystem.I32, typesystem.String) {
		t.Errorf("Either<i32, String> = %s is not the interned i32 | String", got)
	}
}

func TestScopes(t *testing.T) {
	global := NewSymbolTable()
	if !global.IsGlobalScope() {
		t.Errorf("NewSymbolTable is not the global scope")
	}
	if _, ok := global.FindType("i32"); !ok {
		t.Errorf("prelude type i32 not visible")
	}
	global.Define("x", typesystem.I32, nil)
	global.DefineBuiltin("debug", typesystem.String)

	block := NewEnclosedSymbolTable(global, ScopeBlock)
	block.Define("x", typesystem.Bool, nil)
	block.Define("y", typesystem.Char, nil)

	if tp, err := block.Lookup("x"); err != nil || tp != typesystem.Bool {
		t.Errorf("inner x = %v, %v; want bool", tp, err)
	}
	if tp, err := global.Lookup("x"); err != nil || tp != typesystem.I32 {
		t.Errorf("outer x = %v, %v; want i32", tp, err)
	}
	if global.IsDefined("y") {
		t.Errorf("block binding leaked into the global scope")
	}
	var nf *typesystem.SymbolNotFoundError
	if _, err := global.Lookup("zzz"); !errors.As(err, &nf) {
		t.Errorf("Lookup(zzz) err = %v", err)
	}
	if diff := cmp.Diff([]string{"debug", "x", "y"}, block.GetAllNames()); diff != "" {
		t.Errorf("GetAllNames mismatch (-want +got):\n%s", diff)
	}
}
