package typesystem

import (
	"errors"
	"sync"
	"testing"
)

func TestInternIdempotent(t *testing.T) {
	in := NewInterner(0)
	a := in.MustSum(I32, String)
	b := in.MustSum(I32, String)
	if a != b {
		t.Fatalf("same slot sequence produced two descriptors: %p %p", a, b)
	}
	if in.Len() != 1 {
		t.Errorf("Len() = %d, want 1", in.Len())
	}

	c := in.MustSum(String, I32)
	if c == a {
		t.Errorf("%s and %s must be distinct types", a, c)
	}
	if Identical(a, c) {
		t.Errorf("Identical(%s, %s) = true, want false", a, c)
	}
}

func TestInternConcurrent(t *testing.T) {
	in := NewInterner(0)
	const workers = 32

	results := make([]*TSum, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = in.MustSum(I32, TTuple{Elements: []Type{Bool, Char}}, String)
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r != results[0] {
			t.Fatalf("worker %d got a different descriptor", i)
		}
	}
	if in.Len() != 1 {
		t.Errorf("Len() = %d, want 1", in.Len())
	}
}

func TestNoFlattening(t *testing.T) {
	in := NewInterner(0)
	inner := in.MustSum(String, Bool)
	outer := in.MustSum(I32, inner)
	flat := in.MustSum(I32, String, Bool)

	if outer.Arity() != 2 {
		t.Errorf("Arity() = %d, want 2", outer.Arity())
	}
	if outer == flat {
		t.Errorf("nested sum was flattened")
	}
	slot, err := outer.Slot(1)
	if err != nil {
		t.Fatal(err)
	}
	if slot != Type(inner) {
		t.Errorf("slot 1 = %s, want the nested descriptor", slot)
	}
	if got, want := outer.String(), "i32 | (String | bool)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDuplicateSlots(t *testing.T) {
	in := NewInterner(0)
	s := in.MustSum(I32, I32)
	if s.Arity() != 2 {
		t.Fatalf("Arity() = %d, want 2", s.Arity())
	}
	if got := s.String(); got != "i32 | i32" {
		t.Errorf("String() = %q", got)
	}
}

func TestDegenerateSums(t *testing.T) {
	in := NewInterner(0)
	empty := in.MustSum()
	single := in.MustSum(I32)

	if !empty.Degenerate() || !single.Degenerate() {
		t.Errorf("zero- and one-slot sums must be flagged degenerate")
	}
	if in.MustSum(I32, I64).Degenerate() {
		t.Errorf("two-slot sum flagged degenerate")
	}
	if empty.String() != "(|)" || single.String() != "(| i32)" {
		t.Errorf("got %q and %q", empty.String(), single.String())
	}
}

func TestOversizedSum(t *testing.T) {
	in := NewInterner(3)
	if _, err := in.Sum(I32, I64, U8); err != nil {
		t.Fatalf("3 slots at limit 3: %v", err)
	}
	_, err := in.Sum(I32, I64, U8, Char)
	var oe *OversizedSumError
	if !errors.As(err, &oe) {
		t.Fatalf("expected *OversizedSumError, got %v", err)
	}
	if oe.Slots != 4 || oe.Max != 3 {
		t.Errorf("got %+v", oe)
	}
}

func TestSlotIndexOutOfRange(t *testing.T) {
	in := NewInterner(0)
	s := in.MustSum(I32, String, Bool)
	for _, i := range []int{-1, 3, 7} {
		_, err := s.Slot(i)
		var ie *IndexError
		if !errors.As(err, &ie) {
			t.Errorf("Slot(%d): expected *IndexError, got %v", i, err)
			continue
		}
		if ie.Index != i || ie.Arity != 3 {
			t.Errorf("Slot(%d): got %+v", i, ie)
		}
	}
}

func TestApplyReinterns(t *testing.T) {
	in := NewInterner(0)
	l, r := TVar{Name: "L"}, TVar{Name: "R"}
	either := in.MustSum(l, r)

	applied := either.Apply(Subst{"L": I32, "R": String})
	direct := in.MustSum(I32, String)
	if applied != Type(direct) {
		t.Errorf("Either<i32, String> = %s (%p), want interned %p", applied, applied, direct)
	}

	if either.Apply(Subst{}) != Type(either) {
		t.Errorf("empty substitution must return the same descriptor")
	}
}

func TestForeignSumsAreAdopted(t *testing.T) {
	a := NewInterner(0)
	b := NewInterner(0)
	inner := a.MustSum(I32, String)
	outer := b.MustSum(Bool, inner)

	slot, _ := outer.Slot(1)
	adopted, ok := slot.(*TSum)
	if !ok {
		t.Fatalf("slot 1 is %T", slot)
	}
	if adopted.Interner() != b {
		t.Errorf("nested descriptor is owned by another interner")
	}
	if adopted != b.MustSum(I32, String) {
		t.Errorf("nested descriptor not interned in the outer table")
	}
	if !Identical(adopted, inner) {
		t.Errorf("structurally equal sums across interners must be identical")
	}
}

func TestUnifySum(t *testing.T) {
	in := NewInterner(0)
	pattern := in.MustSum(TVar{Name: "T"}, TVar{Name: "E"})
	concrete := in.MustSum(I32, String)

	s, err := Unify(pattern, concrete)
	if err != nil {
		t.Fatalf("Unify: %v", err)
	}
	if !Identical(s["T"], I32) || !Identical(s["E"], String) {
		t.Errorf("got substitution %v", s)
	}

	if _, err := Unify(pattern, in.MustSum(I32, String, Bool)); err == nil {
		t.Errorf("sums of different arity must not unify")
	}
	if _, err := Unify(pattern, I32); err == nil {
		t.Errorf("a sum must not unify with one of its slot types")
	}
}

func TestSameNamedStructsOfDifferentFiles(t *testing.T) {
	in := NewInterner(0)
	a := in.MustSum(TCon{Name: "S", Module: "a.sum"}, I32)
	b := in.MustSum(TCon{Name: "S", Module: "b.sum"}, I32)
	if a == b || Identical(a, b) {
		t.Fatalf("S of a.sum and S of b.sum formed one descriptor")
	}
	if Fingerprint(a) == Fingerprint(b) {
		t.Errorf("fingerprints collide: %s", Fingerprint(a))
	}
	if a.String() != "S | i32" || b.String() != "S | i32" {
		t.Errorf("display = %q, %q; want the bare struct name", a, b)
	}
}
