// Package progress implements the tick/reporter bridge described in §5: a
// producer (the cipher core or the transport layer) emits one tick per
// processed unit on a channel; a dedicated reporter goroutine consumes
// ticks and calls back into user code only when the integer percentage
// advances. The reporter exits on a sentinel "done" tick or when the
// channel is closed, and a send on a channel nobody is reading from is
// silently discarded rather than panicking.
package progress

// Phase names the operation a progress callback is reporting on, mirroring
// the UI-facing event names in spec §6.
type Phase int

const (
	Connecting Phase = iota
	Encrypting
	Decrypting
	Uploading
	Downloading
)

func (p Phase) String() string {
	switch p {
	case Connecting:
		return "Connecting"
	case Encrypting:
		return "Encrypting"
	case Decrypting:
		return "Decrypting"
	case Uploading:
		return "Uploading"
	case Downloading:
		return "Downloading"
	default:
		return "Unknown"
	}
}

// Event is one value delivered to a user callback: Connecting carries no
// percentage, the other phases carry 0-100.
type Event struct {
	Phase   Phase
	Percent int
}

// tick is an internal message on the producer -> reporter channel. done
// signals the sentinel that tells the reporter to exit.
type tick struct {
	done bool
}

// Bridge is a single producer/reporter pair for one phase of one session.
// The crypto/transport side owns the send half; the reporter goroutine
// owns invoking Callback.
type Bridge struct {
	ch       chan tick
	total    int
	phase    Phase
	callback func(Event)
}

// NewBridge starts the reporter goroutine. callback may be nil, in which
// case ticks are still drained but nothing is invoked.
func NewBridge(phase Phase, total int, callback func(Event)) *Bridge {
	b := &Bridge{
		ch:       make(chan tick, 64),
		total:    total,
		phase:    phase,
		callback: callback,
	}
	go b.run()
	return b
}

func (b *Bridge) run() {
	cnt := 0
	lastPct := -1
	for t := range b.ch {
		if t.done {
			return
		}
		cnt++
		if b.total <= 0 {
			continue
		}
		pct := cnt * 100 / b.total
		if pct > 100 {
			pct = 100
		}
		if pct != lastPct {
			lastPct = pct
			if b.callback != nil {
				b.callback(Event{Phase: b.phase, Percent: pct})
			}
		}
	}
}

// Tick records one processed unit. It never blocks the caller: a full or
// closed channel silently drops the tick, matching the "conceptually
// non-blocking" suspension point in §5.
func (b *Bridge) Tick() {
	if b == nil {
		return
	}
	defer func() { recover() }()
	select {
	case b.ch <- tick{}:
	default:
	}
}

// Done sends the sentinel and lets the reporter goroutine exit. Callers
// must not call Tick after Done.
func (b *Bridge) Done() {
	if b == nil {
		return
	}
	defer func() { recover() }()
	b.ch <- tick{done: true}
	close(b.ch)
}
