package typesystem

import (
	"errors"
	"github.com/funvibe/anonsum/internal/config"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDeriveConjunction(t *testing.T) {
	in := NewInterner(0)
	d := NewDeriver(nil, config.OrderingNone)
	intOrString := in.MustSum(I32, String)

	tests := []struct {
		name        string
		sum         *TSum
		cap         Capability
		wantHolds   bool
		wantMissing []int
	}{
		{"debug i32|String", intOrString, Debug, true, nil},
		{"eq i32|String", intOrString, Eq, true, nil},
		{"copy needs every slot", intOrString, Copy, false, []int{1}},
		{"eq fails on float slot", in.MustSum(I32, F64), Eq, false, []int{1}},
		{"partialeq holds with float", in.MustSum(I32, F64), PartialEq, true, nil},
		{"hash with nested sum", in.MustSum(I32, in.MustSum(String, Bool)), Hash, true, nil},
		{"nested sum lacking copy", in.MustSum(I32, in.MustSum(String, Bool)), Copy, false, []int{1}},
		{"tuple slot", in.MustSum(TTuple{Elements: []Type{I32, F32}}, Char), Eq, false, []int{0}},
		{"function slot copy", in.MustSum(TFunc{Params: []Type{I32}, ReturnType: I32}, I32), Copy, true, nil},
		{"function slot debug", in.MustSum(TFunc{Params: []Type{I32}, ReturnType: I32}, I32), Debug, false, []int{0}},
		{"unit slot", in.MustSum(Unit, I32), Hash, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			der, err := d.Derive(tt.sum, tt.cap)
			if err != nil {
				t.Fatalf("Derive: %v", err)
			}
			if der.Holds != tt.wantHolds {
				t.Errorf("Holds = %v, want %v (%s)", der.Holds, tt.wantHolds, der.Reason)
			}
			if diff := cmp.Diff(tt.wantMissing, der.Missing); diff != "" {
				t.Errorf("Missing mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeriveAssociatedTypes(t *testing.T) {
	in := NewInterner(0)
	d := NewDeriver(nil, config.OrderingNone)

	der, err := d.Derive(in.MustSum(Range, Range), Iterator)
	if err != nil {
		t.Fatal(err)
	}
	if !der.Holds || !Identical(der.Assoc, I32) {
		t.Errorf("Range | Range: got %+v", der)
	}

	der, _ = d.Derive(in.MustSum(Range, Chars), Iterator)
	if der.Holds {
		t.Errorf("Range | Chars must not be an iterator: items disagree")
	}
	if diff := cmp.Diff([]int{1}, der.Missing); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}

	der, _ = d.Derive(in.MustSum(Ready, Delay), Future)
	if !der.Holds || !Identical(der.Assoc, I32) {
		t.Errorf("Ready | Delay: got %+v", der)
	}

	der, _ = d.Derive(in.MustSum(), Iterator)
	if der.Holds {
		t.Errorf("empty sum has no item type")
	}
}

func TestDeriveRefusals(t *testing.T) {
	in := NewInterner(0)
	sum := in.MustSum(I32, String)

	d := NewDeriver(nil, config.OrderingNone)
	for _, c := range []Capability{Default, From, Into} {
		if _, err := d.Derive(sum, c); !errors.Is(err, ErrNotDerivable) {
			t.Errorf("Derive(%s) error = %v, want ErrNotDerivable", c, err)
		}
	}
	for _, c := range []Capability{PartialOrd, Ord} {
		if _, err := d.Derive(sum, c); !errors.Is(err, ErrUnsupportedPolicy) {
			t.Errorf("Derive(%s) error = %v, want ErrUnsupportedPolicy", c, err)
		}
	}

	ordered := NewDeriver(nil, config.OrderingTagThenPayload)
	der, err := ordered.Derive(sum, Ord)
	if err != nil || !der.Holds {
		t.Errorf("tag-then-payload Ord: %+v, %v", der, err)
	}
	der, _ = ordered.Derive(in.MustSum(I32, F64), Ord)
	if der.Holds {
		t.Errorf("Ord must fail with a float slot")
	}
}

func TestDeriveNominal(t *testing.T) {
	in := NewInterner(0)
	impls := NewImplTable()
	point := TCon{Name: "Point"}
	impls.Declare(point, Debug, Clone)
	d := NewDeriver(impls, config.OrderingNone)

	if der, _ := d.Derive(in.MustSum(point, I32), Debug); !der.Holds {
		t.Errorf("Point | i32 should be Debug: %s", der.Reason)
	}
	if der, _ := d.Derive(in.MustSum(point, I32), PartialEq); der.Holds {
		t.Errorf("Point | i32 should not be PartialEq")
	}
}

func TestDeriveConcurrent(t *testing.T) {
	in := NewInterner(0)
	d := NewDeriver(nil, config.OrderingNone)
	sum := in.MustSum(I32, String, Char)

	var wg sync.WaitGroup
	results := make([]Derivation, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = d.Derive(sum, Hash)
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		if !r.Holds {
			t.Errorf("worker %d: %+v", i, r)
		}
	}
}

func TestParseCapability(t *testing.T) {
	if c, ok := ParseCapability("Debug"); !ok || c != Debug || !c.Derivable() {
		t.Errorf("Debug: %q %v", c, ok)
	}
	if c, ok := ParseCapability("Default"); !ok || c.Derivable() {
		t.Errorf("Default must parse as excluded: %q %v", c, ok)
	}
	if _, ok := ParseCapability("Display"); ok {
		t.Errorf("unknown capability parsed")
	}
}
