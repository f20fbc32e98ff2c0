package engine

import (
	"sync"

	"github.com/showbridge/midirelay/sdk/contracts"
)

// activityLog is the bounded FIFO record of relay activity. It is appended
// from multiple goroutines (RX consumer, TX senders, trigger dispatchers);
// a mutex keeps append order and eviction consistent. The sink is invoked
// outside the lock so a slow subscriber cannot hold up producers for long.
type activityLog struct {
	mu       sync.Mutex
	entries  []contracts.LogEntry
	capacity int
	sink     contracts.LogSink
}

func newActivityLog(capacity int, sink contracts.LogSink) *activityLog {
	return &activityLog{
		entries:  make([]contracts.LogEntry, 0, capacity),
		capacity: capacity,
		sink:     sink,
	}
}

func (l *activityLog) append(e contracts.LogEntry) {
	l.mu.Lock()
	if len(l.entries) >= l.capacity {
		// Evict the oldest in place so the backing array never grows.
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:l.capacity-1]
	}
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	if l.sink != nil {
		l.sink.Publish(e)
	}
}

func (l *activityLog) snapshot() []contracts.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]contracts.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
