package events

import (
	"context"
	"sync"
	"time"

	"github.com/mut-digital/mutbot/pkg/domain/interfaces"
	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/utils/errutil"
	"github.com/mut-digital/mutbot/pkg/utils/logging"
)

const (
	// DefaultCacheTTL bounds how stale the served event list can be
	DefaultCacheTTL = 15 * time.Minute

	// maxPages caps feed pagination per refresh
	maxPages = 10
)

// Cache holds the filtered upcoming-event list behind a freshness TTL.
// An expired Get refetches from the feed transparently; the event list is
// advisory content, so a partially failing refresh degrades to whatever
// pages were collected instead of erroring.
type Cache struct {
	feed     interfaces.EventsFeed
	filter   *Filter
	ttl      time.Duration
	timezone string
	now      func() time.Time

	mu          sync.RWMutex
	records     []*model.EventRecord
	refreshedAt time.Time
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithCacheTTL overrides the freshness TTL.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(x *Cache) {
		x.ttl = ttl
	}
}

// WithTimezone overrides the timezone the validity filter evaluates in.
func WithTimezone(tz string) CacheOption {
	return func(x *Cache) {
		x.timezone = tz
	}
}

// WithCacheClock injects the time source, for tests.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(x *Cache) {
		x.now = now
	}
}

// NewCache creates an events Cache over feed.
func NewCache(feed interfaces.EventsFeed, filter *Filter, options ...CacheOption) *Cache {
	cache := &Cache{
		feed:     feed,
		filter:   filter,
		ttl:      DefaultCacheTTL,
		timezone: model.DefaultTimezone,
		now:      time.Now,
	}
	if cache.filter == nil {
		cache.filter = NewFilter(nil)
	}
	for _, opt := range options {
		opt(cache)
	}
	return cache
}

// Get returns the current event list, refreshing when the envelope is older
// than the TTL. Age is measured at call time against the injected clock.
func (x *Cache) Get(ctx context.Context) []*model.EventRecord {
	x.mu.RLock()
	records, refreshedAt := x.records, x.refreshedAt
	x.mu.RUnlock()

	if !refreshedAt.IsZero() && x.now().Sub(refreshedAt) < x.ttl {
		return records
	}
	return x.Refresh(ctx)
}

// Refresh refetches the feed, applies the validity filter against the
// mall's local clock, and replaces the stored list wholesale. Overlapping
// refreshes race to write the envelope; last write wins, which at worst
// costs a redundant fetch, never a corrupt list.
func (x *Cache) Refresh(ctx context.Context) []*model.EventRecord {
	startedAt := x.now()

	var collected []*model.EventRecord
	for page := 1; page <= maxPages; page++ {
		batch, err := x.feed.FetchPage(ctx, page)
		if err != nil {
			// Truncate at the failing page and serve what we have
			errutil.Handle(ctx, err, "events feed page failed, serving partial list")
			break
		}
		if len(batch) == 0 {
			break
		}
		collected = append(collected, batch...)
	}

	now, err := model.MallNowAt(x.now(), x.timezone)
	if err != nil {
		errutil.Handle(ctx, err, "failed to resolve local time for events filter")
		now, _ = model.MallNowAt(x.now(), "UTC")
	}
	current := x.filter.Current(collected, now)

	x.mu.Lock()
	x.records = current
	x.refreshedAt = startedAt
	x.mu.Unlock()

	logging.From(ctx).Info("events cache refreshed",
		"fetched", len(collected),
		"current", len(current),
		"duration", x.now().Sub(startedAt).String())

	return current
}

// Age reports how old the stored envelope is, and false when nothing has
// been cached yet.
func (x *Cache) Age() (time.Duration, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.refreshedAt.IsZero() {
		return 0, false
	}
	return x.now().Sub(x.refreshedAt), true
}
