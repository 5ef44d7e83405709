package typesystem

import (
	"testing"
)

func TestKinds(t *testing.T) {
	// 1. Check KStar
	if Star.String() != "*" {
		t.Errorf("KStar.String() = %s, want *", Star.String())
	}

	// 2. Check Arrow
	arrow := MakeArrow(Star, Star) // * -> *
	if arrow.String() != "(* -> *)" {
		t.Errorf("Arrow string = %s, want (* -> *)", arrow.String())
	}

	// 3. Check Arrow Equality
	arrow2 := KArrow{Left: Star, Right: Star}
	if !arrow.Equal(arrow2) {
		t.Errorf("Arrows should be equal")
	}

	if arrow.Equal(Star) {
		t.Errorf("Arrow should not equal Star")
	}
}

func TestKindCheck(t *testing.T) {
	in := NewInterner(0)
	option := TCon{Name: "Option", KindVal: MakeArrow(Star, Star)}

	tests := []struct {
		name    string
		typ     Type
		wantErr bool
	}{
		{"primitive", I32, false},
		{"unapplied alias", option, false},
		{"tuple", TTuple{Elements: []Type{I32, String}}, false},
		{"function", TFunc{Params: []Type{I32}, ReturnType: Bool}, false},
		{"sum", in.MustSum(I32, String), false},
		{"sum with unapplied alias slot", in.MustSum(I32, option), true},
		{"tuple with unapplied alias", TTuple{Elements: []Type{option}}, true},
		{"function returning unapplied alias", TFunc{ReturnType: option}, true},
		{"nested sum slot", in.MustSum(I32, in.MustSum(String, option)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := KindCheck(tt.typ)
			if (err != nil) != tt.wantErr {
				t.Errorf("KindCheck(%s) error = %v, wantErr %v", tt.typ, err, tt.wantErr)
			}
		})
	}
}
