package ibis

import (
	"errors"
	"testing"
)

func TestRelationshipWeights(t *testing.T) {
	cases := []struct {
		kind RelationshipKind
		want float64
	}{
		{KindSupports, 1.0},
		{KindOpposes, 0.8},
		{KindRelatesTo, 0.6},
		{KindRespondsTo, 0.7},
	}
	for _, tc := range cases {
		if got := tc.kind.Weight(); got != tc.want {
			t.Errorf("Weight(%s) = %f, want %f", tc.kind, got, tc.want)
		}
	}
}

func TestUnknownKindWeightFailsClosed(t *testing.T) {
	// Unknown kinds get the weakest recognized weight so a bad record
	// cannot yank nodes across the map.
	if got := RelationshipKind("endorses").Weight(); got != 0.6 {
		t.Errorf("Unknown kind weight = %f, want 0.6", got)
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range []RelationshipKind{KindSupports, KindOpposes, KindRelatesTo, KindRespondsTo} {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if RelationshipKind("").Valid() {
		t.Error("Empty kind should be invalid")
	}
	if RelationshipKind("refutes").Valid() {
		t.Error("Unrecognized kind should be invalid")
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("supports")
	if err != nil {
		t.Fatalf("ParseKind(supports) failed: %v", err)
	}
	if k != KindSupports {
		t.Errorf("ParseKind(supports) = %s", k)
	}

	_, err = ParseKind("refutes")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(refutes) error = %v, want ErrUnknownKind", err)
	}
}
