package deal

import (
	"bytes"
	"sync/atomic"
	"testing"
	"time"

	"github.com/barnettlynn/s6hcs/pkg/progress"
)

func samplePlaintext(n int) []Block {
	out := make([]Block, n)
	for i := range out {
		out[i] = Block{L: uint64(i) * 0x1111111111111111, R: uint64(i) ^ 0xDEADBEEF}
	}
	return out
}

func allModes() []Mode {
	return []Mode{ECB, CBC, CFB, OFB, CTR, RD, RDH}
}

func TestAllModesRoundTrip(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	plaintext := samplePlaintext(10)

	for _, mode := range allModes() {
		ct, err := Encrypt(c, mode, plaintext, nil)
		if err != nil {
			t.Fatalf("mode %d: Encrypt returned error: %v", mode, err)
		}
		pt, err := Decrypt(c, mode, ct, nil)
		if err != nil {
			t.Fatalf("mode %d: Decrypt returned error: %v", mode, err)
		}
		if len(pt) != len(plaintext) {
			t.Fatalf("mode %d: got %d blocks back, want %d", mode, len(pt), len(plaintext))
		}
		for i := range plaintext {
			if pt[i] != plaintext[i] {
				t.Fatalf("mode %d: block %d mismatch: got %+v, want %+v", mode, i, pt[i], plaintext[i])
			}
		}
	}
}

func TestParallelModesReportParallel(t *testing.T) {
	parallel := map[Mode]bool{ECB: true, CTR: true, RD: true, RDH: true, CBC: false, CFB: false, OFB: false}
	for mode, want := range parallel {
		if mode.Parallel() != want {
			t.Fatalf("mode %d: Parallel() = %v, want %v", mode, mode.Parallel(), want)
		}
	}
}

func TestRDHDetectsTamperedCiphertext(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	plaintext := samplePlaintext(4)
	ct, err := Encrypt(c, RDH, plaintext, nil)
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	// Flip a bit in the last ciphertext block, well past the IV/hash header.
	tampered := make([]Block, len(ct))
	copy(tampered, ct)
	tampered[len(tampered)-1].R ^= 1

	if _, err := Decrypt(c, RDH, tampered, nil); err != ErrIntegrityFailed {
		t.Fatalf("expected ErrIntegrityFailed, got %v", err)
	}
}

func TestBlocksBytesRoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte{0x42}, 48)
	blocks := BlocksFromBytes(raw)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	out := BytesFromBlocks(blocks)
	if !bytes.Equal(out, raw) {
		t.Fatal("BytesFromBlocks(BlocksFromBytes(raw)) != raw")
	}
}

func TestParallelModeBridgeTicksOncePerBlock(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	plaintext := samplePlaintext(6)

	var ticks int32
	bridge := progress.NewBridge(progress.Encrypting, len(plaintext), func(progress.Event) {
		atomic.AddInt32(&ticks, 1)
	})
	if _, err := Encrypt(c, ECB, plaintext, bridge); err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}
	bridge.Done()
	time.Sleep(10 * time.Millisecond) // let the reporter goroutine drain

	// With total == len(plaintext), every tick crosses a new percentage, so
	// one callback per block means one tick per block.
	if got := atomic.LoadInt32(&ticks); got != int32(len(plaintext)) {
		t.Fatalf("expected %d progress callbacks (one per block) during ECB encryption, got %d", len(plaintext), got)
	}
}
