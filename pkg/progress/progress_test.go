package progress

import (
	"sync"
	"testing"
	"time"
)

func TestBridgeReportsOnPercentCrossing(t *testing.T) {
	var mu sync.Mutex
	var events []Event

	b := NewBridge(Uploading, 4, func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	for i := 0; i < 4; i++ {
		b.Tick()
	}
	b.Done()
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 4 {
		t.Fatalf("expected 4 percent-crossing events for 4 ticks of 4 total, got %d", len(events))
	}
	if events[len(events)-1].Percent != 100 {
		t.Fatalf("expected final event at 100%%, got %d", events[len(events)-1].Percent)
	}
}

func TestBridgeWithZeroTotalNeverCallsBack(t *testing.T) {
	called := false
	b := NewBridge(Downloading, 0, func(Event) { called = true })
	b.Tick()
	b.Tick()
	b.Done()
	time.Sleep(10 * time.Millisecond)
	if called {
		t.Fatal("a bridge with total<=0 should never invoke the callback")
	}
}

func TestNilBridgeTickAndDoneAreNoOps(t *testing.T) {
	var b *Bridge
	b.Tick()
	b.Done()
}

func TestTickAfterCloseDoesNotPanic(t *testing.T) {
	b := NewBridge(Encrypting, 1, nil)
	b.Done()
	time.Sleep(5 * time.Millisecond)
	b.Tick() // send on a closed channel; must be silently recovered
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		Connecting:  "Connecting",
		Encrypting:  "Encrypting",
		Decrypting:  "Decrypting",
		Uploading:   "Uploading",
		Downloading: "Downloading",
	}
	for phase, want := range cases {
		if got := phase.String(); got != want {
			t.Fatalf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
