package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mut-digital/mutbot/pkg/domain/types"
)

const (
	// DefaultQuietWindow is how long a sender must stay silent before their
	// buffered messages are combined and processed.
	DefaultQuietWindow = 3 * time.Second

	// finishCooldown blocks a just-finalized sender from being finalized
	// again by a stray late timer firing.
	finishCooldown = time.Second
)

// Pending is the deferred combined message of one accumulation episode.
// Exactly one finalization resolves it, whether by the quiet-window timer
// or an explicit flush.
type Pending struct {
	ch chan string
}

// Wait blocks until the episode is finalized and returns the combined text.
func (x *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case text := <-x.ch:
		return text, nil
	}
}

type accumulation struct {
	texts   []string
	timer   *time.Timer
	pending *Pending
}

// Accumulator coalesces bursts of consecutive messages from the same sender
// into one combined message. WhatsApp users often split a single thought
// across several rapid messages; answering each fragment separately reads
// badly and multiplies LLM calls.
type Accumulator struct {
	window   time.Duration
	cooldown time.Duration

	mu       sync.Mutex
	sessions map[types.UserID]*accumulation
	cooling  map[types.UserID]struct{}
}

// AccumulatorOption configures an Accumulator
type AccumulatorOption func(*Accumulator)

// WithQuietWindow overrides the quiet window, for tests.
func WithQuietWindow(d time.Duration) AccumulatorOption {
	return func(x *Accumulator) {
		x.window = d
	}
}

// WithCooldown overrides the post-finalization cooldown, for tests.
func WithCooldown(d time.Duration) AccumulatorOption {
	return func(x *Accumulator) {
		x.cooldown = d
	}
}

// NewAccumulator creates an Accumulator.
func NewAccumulator(options ...AccumulatorOption) *Accumulator {
	acc := &Accumulator{
		window:   DefaultQuietWindow,
		cooldown: finishCooldown,
		sessions: make(map[types.UserID]*accumulation),
		cooling:  make(map[types.UserID]struct{}),
	}
	for _, opt := range options {
		opt(acc)
	}
	return acc
}

// Accumulate buffers text for userID. When this call opens a new session it
// returns the session's Pending and true; the caller owning that Pending is
// the one that continues the conversation once it resolves. When a session
// is already open the text is appended, the quiet-window timer slides, and
// the second return is false.
func (x *Accumulator) Accumulate(userID types.UserID, text string) (*Pending, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if session, ok := x.sessions[userID]; ok {
		session.texts = append(session.texts, text)
		session.timer.Stop()
		session.timer = time.AfterFunc(x.window, func() { x.finish(userID) })
		return nil, false
	}

	session := &accumulation{
		texts:   []string{text},
		pending: &Pending{ch: make(chan string, 1)},
	}
	session.timer = time.AfterFunc(x.window, func() { x.finish(userID) })
	x.sessions[userID] = session

	return session.pending, true
}

// Flush finalizes userID's open session immediately, returning the combined
// text. The second return is false when no session was open.
func (x *Accumulator) Flush(userID types.UserID) (string, bool) {
	return x.finish(userID)
}

// finish resolves and evicts the sender's session. The cooldown set here
// makes a late duplicate firing a no-op instead of a double resolution.
func (x *Accumulator) finish(userID types.UserID) (string, bool) {
	x.mu.Lock()

	if _, cooling := x.cooling[userID]; cooling {
		x.mu.Unlock()
		return "", false
	}

	session, ok := x.sessions[userID]
	if !ok {
		x.mu.Unlock()
		return "", false
	}

	delete(x.sessions, userID)
	session.timer.Stop()

	x.cooling[userID] = struct{}{}
	time.AfterFunc(x.cooldown, func() {
		x.mu.Lock()
		delete(x.cooling, userID)
		x.mu.Unlock()
	})

	combined := strings.Join(session.texts, " ")
	x.mu.Unlock()

	// Buffered channel; the single delete above guarantees one resolution
	session.pending.ch <- combined

	return combined, true
}

// OpenSessions reports how many accumulation sessions are currently open.
func (x *Accumulator) OpenSessions() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.sessions)
}
