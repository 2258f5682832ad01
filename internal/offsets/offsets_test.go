package offsets

import (
	"strconv"
	"testing"
)

func TestOffsetMonotonicInIndex(t *testing.T) {
	for _, field := range Fields {
		prev := Offset(field, 11, 0)
		for idx := 1; idx < 16; idx++ {
			got := Offset(field, 11, idx)
			if got <= prev {
				t.Fatalf("offset not increasing for %s: idx %d gave %d after %d", field, idx, got, prev)
			}
			prev = got
		}
	}
}

func TestOffsetFieldsNeverCollide(t *testing.T) {
	for idx := 0; idx < 16; idx++ {
		seen := map[int]Field{}
		for _, field := range Fields {
			v := Offset(field, 12, idx)
			if other, ok := seen[v]; ok {
				t.Fatalf("collision at index %d: %s and %s both map to %d", idx, other, field, v)
			}
			seen[v] = field
		}
	}
}

func TestOffsetKnownValues(t *testing.T) {
	cases := []struct {
		field Field
		plc   int
		index int
		want  int
	}{
		{FieldHiLim, 11, 0, 1104},
		{FieldLoLim, 11, 0, 1120},
		{FieldHomed, 11, 3, 1139},
		{FieldNotHomed, 12, 0, 1252},
		{FieldLimFlags, 12, 1, 1269},
		{FieldPos, 9, 5, 989},
	}
	for _, tc := range cases {
		if got := Offset(tc.field, tc.plc, tc.index); got != tc.want {
			t.Fatalf("Offset(%s, %d, %d) = %d, want %d", tc.field, tc.plc, tc.index, got, tc.want)
		}
	}
}

func TestNxBankMembership(t *testing.T) {
	for axis := 1; axis <= 4; axis++ {
		if got := Nx(axis)[0]; got != '0' {
			t.Fatalf("axis %d expected bank digit 0, got %q", axis, Nx(axis))
		}
		if got := Nx(axis + 4)[0]; got != '1' {
			t.Fatalf("axis %d expected bank digit 1, got %q", axis+4, Nx(axis+4))
		}
	}
	for axis := 1; axis <= 4; axis++ {
		low, err := strconv.Atoi(Nx(axis))
		if err != nil {
			t.Fatalf("Nx(%d) not numeric: %v", axis, err)
		}
		high, err := strconv.Atoi(Nx(axis + 4))
		if err != nil {
			t.Fatalf("Nx(%d) not numeric: %v", axis+4, err)
		}
		if high != low+10 {
			t.Fatalf("axis %d vs %d: nx %02d and %02d must differ by 10", axis, axis+4, low, high)
		}
	}
}

func TestNxZeroPadded(t *testing.T) {
	if got := Nx(3); got != "03" {
		t.Fatalf("Nx(3) = %q, want 03", got)
	}
	if got := Nx(9); got != "21" {
		t.Fatalf("Nx(9) = %q, want 21", got)
	}
}
