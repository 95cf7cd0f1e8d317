package padding

import (
	"bytes"
	"testing"
)

func TestApplyRemoveRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		[]byte("a"),
		bytes.Repeat([]byte("x"), BlockSize),
		bytes.Repeat([]byte("y"), BlockSize-1),
		bytes.Repeat([]byte("z"), BlockSize+3),
	}
	for _, in := range cases {
		padded := Apply(in, BlockSize)
		if len(padded)%BlockSize != 0 {
			t.Fatalf("padded length %d not a multiple of %d", len(padded), BlockSize)
		}
		if len(padded) <= len(in) {
			t.Fatalf("Apply did not grow input of length %d", len(in))
		}
		out, err := Remove(padded)
		if err != nil {
			t.Fatalf("Remove returned error: %v", err)
		}
		if !bytes.Equal(out, in) {
			t.Fatalf("round trip mismatch: got %v, want %v", out, in)
		}
	}
}

func TestApplyAddsFullBlockWhenAligned(t *testing.T) {
	in := bytes.Repeat([]byte{0xAA}, BlockSize*2)
	padded := Apply(in, BlockSize)
	if len(padded) != len(in)+BlockSize {
		t.Fatalf("expected a full extra block, got %d extra bytes", len(padded)-len(in))
	}
}

func TestRemoveRejectsEmptyInput(t *testing.T) {
	if _, err := Remove(nil); err == nil {
		t.Fatal("expected error removing padding from empty input")
	}
}

func TestRemoveRejectsInvalidPadLength(t *testing.T) {
	if _, err := Remove([]byte{0x01, 0x02, 0x00}); err == nil {
		t.Fatal("expected error for zero pad length")
	}
	if _, err := Remove([]byte{0x01, 0xFF}); err == nil {
		t.Fatal("expected error for pad length exceeding input")
	}
}
