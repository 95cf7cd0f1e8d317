package gfp2

import (
	"math/big"
	"testing"
)

var testP = big.NewInt(101) // 101 = 2 mod 3, usable as a toy field prime

func TestAddSubRoundTrip(t *testing.T) {
	e := New(testP, big.NewInt(40), big.NewInt(55))
	f := New(testP, big.NewInt(17), big.NewInt(63))
	sum := e.Add(f)
	back := sum.Sub(f)
	if !back.Equal(e) {
		t.Fatalf("Add/Sub round trip: got (%s,%s), want (%s,%s)", back.A, back.B, e.A, e.B)
	}
}

func TestSwapIsInvolution(t *testing.T) {
	e := New(testP, big.NewInt(12), big.NewInt(88))
	if !e.Swap().Swap().Equal(e) {
		t.Fatal("Swap applied twice should return the original element")
	}
	if e.Swap().A.Cmp(e.B) != 0 || e.Swap().B.Cmp(e.A) != 0 {
		t.Fatal("Swap should exchange coefficients")
	}
}

func TestFromScalarIsP1(t *testing.T) {
	e := FromScalar(testP, big.NewInt(7))
	if !e.IsP1() {
		t.Fatal("FromScalar should produce an element with equal coefficients")
	}
}

func TestRandomRejectsEqualCoefficients(t *testing.T) {
	for i := 0; i < 50; i++ {
		e, err := Random(testP)
		if err != nil {
			t.Fatalf("Random returned error: %v", err)
		}
		if e.A.Cmp(e.B) == 0 {
			t.Fatal("Random produced an element with a == b")
		}
	}
}

func TestBytesFixedWidth(t *testing.T) {
	e := New(testP, big.NewInt(3), big.NewInt(4))
	b := e.Bytes()
	wantLen := 2 * ((testP.BitLen() + 7) / 8)
	if len(b) != wantLen {
		t.Fatalf("Bytes length = %d, want %d", len(b), wantLen)
	}
}

func TestEqual(t *testing.T) {
	e := New(testP, big.NewInt(1), big.NewInt(2))
	f := New(testP, big.NewInt(1), big.NewInt(2))
	g := New(testP, big.NewInt(1), big.NewInt(3))
	if !e.Equal(f) {
		t.Fatal("identical elements should compare equal")
	}
	if e.Equal(g) {
		t.Fatal("differing elements should not compare equal")
	}
}
