package usecase

import (
	"sync"
	"time"

	"github.com/mut-digital/mutbot/pkg/domain/types"
)

const (
	// DefaultDedupTTL is how long a processed message ID is remembered.
	DefaultDedupTTL = time.Hour

	// DefaultDedupCapacity is the hard ceiling on tracked message IDs.
	DefaultDedupCapacity = 1000
)

// DedupFilter remembers recently processed inbound message IDs so that
// webhook redeliveries are dropped. The upstream provider delivers
// at-least-once; without this every retry would produce another answer.
type DedupFilter struct {
	ttl      time.Duration
	capacity int
	now      func() time.Time

	mu      sync.Mutex
	entries map[types.MessageID]time.Time
	order   []types.MessageID
}

// DedupOption configures a DedupFilter
type DedupOption func(*DedupFilter)

// WithDedupTTL overrides how long an ID is remembered.
func WithDedupTTL(ttl time.Duration) DedupOption {
	return func(x *DedupFilter) {
		x.ttl = ttl
	}
}

// WithDedupCapacity overrides the tracked-ID ceiling.
func WithDedupCapacity(n int) DedupOption {
	return func(x *DedupFilter) {
		x.capacity = n
	}
}

// WithDedupClock injects the time source, for tests.
func WithDedupClock(now func() time.Time) DedupOption {
	return func(x *DedupFilter) {
		x.now = now
	}
}

// NewDedupFilter creates a DedupFilter.
func NewDedupFilter(options ...DedupOption) *DedupFilter {
	filter := &DedupFilter{
		ttl:      DefaultDedupTTL,
		capacity: DefaultDedupCapacity,
		now:      time.Now,
		entries:  make(map[types.MessageID]time.Time),
	}
	for _, opt := range options {
		opt(filter)
	}
	return filter
}

// IsDuplicate reports whether messageID was processed within the TTL.
func (x *DedupFilter) IsDuplicate(messageID types.MessageID) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	seenAt, ok := x.entries[messageID]
	return ok && x.now().Sub(seenAt) < x.ttl
}

// MarkProcessed records messageID. Aged-out IDs are purged first; if the
// set is still full, the oldest-inserted ID is evicted. The capacity is a
// hard ceiling.
func (x *DedupFilter) MarkProcessed(messageID types.MessageID) {
	x.mu.Lock()
	defer x.mu.Unlock()

	now := x.now()

	kept := make([]types.MessageID, 0, len(x.order))
	for _, id := range x.order {
		seenAt, ok := x.entries[id]
		if !ok {
			continue
		}
		if now.Sub(seenAt) >= x.ttl {
			delete(x.entries, id)
			continue
		}
		kept = append(kept, id)
	}
	x.order = kept

	if _, tracked := x.entries[messageID]; !tracked {
		if len(x.entries) >= x.capacity && len(x.order) > 0 {
			oldest := x.order[0]
			x.order = x.order[1:]
			delete(x.entries, oldest)
		}
		x.order = append(x.order, messageID)
	}
	x.entries[messageID] = now
}

// Tracked reports how many IDs are currently remembered.
func (x *DedupFilter) Tracked() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.entries)
}
