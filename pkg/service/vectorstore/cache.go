package vectorstore

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/utils/logging"
)

// DefaultCacheTTL keeps the document cache near-permanent: the collection
// only changes when the dataset is re-published, which is signaled by an
// explicit Invalidate, not by expiry.
const DefaultCacheTTL = 365 * 24 * time.Hour

// Cache tier names reported by Warmth
const (
	TierMemory = "memory"
	TierDisk   = "disk"
	TierNone   = "none"
)

// diskStore abstracts the disk tier so tests can count accesses and inject
// failures. The returned time is the moment the payload was written.
type diskStore interface {
	Read() (*model.VectorCache, time.Time, error)
	Write(cache *model.VectorCache) error
	Remove() error
}

// TieredCache is a two-level read-through cache for the embedded-document
// collection: a process-memory envelope backed by a JSON file whose mtime
// stands in for the write timestamp. The disk tier is advisory; any disk
// failure degrades to a miss or a memory-only write, never an error.
type TieredCache struct {
	mu       sync.Mutex
	mem      *model.VectorCache
	storedAt time.Time

	disk diskStore
	ttl  time.Duration
	now  func() time.Time
}

// CacheOption configures a TieredCache
type CacheOption func(*TieredCache)

// WithTTL overrides the cache TTL
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *TieredCache) {
		c.ttl = ttl
	}
}

// WithClock overrides the time source, for TTL boundary tests
func WithClock(now func() time.Time) CacheOption {
	return func(c *TieredCache) {
		c.now = now
	}
}

// WithDiskStore replaces the file-backed disk tier
func WithDiskStore(store diskStore) CacheOption {
	return func(c *TieredCache) {
		c.disk = store
	}
}

// NewTieredCache creates a TieredCache persisting its disk tier at path.
func NewTieredCache(path string, opts ...CacheOption) *TieredCache {
	c := &TieredCache{
		disk: &fileStore{path: path},
		ttl:  DefaultCacheTTL,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached collection, checking memory first and then disk.
// A disk hit is promoted into the memory tier. Returns false on a miss;
// disk errors are logged and treated as misses.
func (x *TieredCache) Get(ctx context.Context) (*model.VectorCache, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	now := x.now()

	if x.mem != nil && now.Sub(x.storedAt) < x.ttl {
		return x.mem, true
	}

	cached, writtenAt, err := x.disk.Read()
	if err != nil {
		if !os.IsNotExist(err) {
			logging.From(ctx).Warn("disk cache read failed, treating as miss", "error", err.Error())
		}
		return nil, false
	}

	age := now.Sub(writtenAt)
	if age >= x.ttl {
		logging.From(ctx).Info("disk cache expired", "age", age.String(), "ttl", x.ttl.String())
		return nil, false
	}

	if cached.Metadata.SchemaVersion != model.VectorCacheSchemaVersion {
		logging.From(ctx).Warn("disk cache schema mismatch, treating as miss",
			"found", cached.Metadata.SchemaVersion,
			"want", model.VectorCacheSchemaVersion)
		return nil, false
	}

	// Promote so the next Get is served from memory. The promoted entry
	// inherits the disk write time, not the promotion time.
	x.mem = cached
	x.storedAt = writtenAt

	logging.From(ctx).Info("vector cache promoted from disk",
		"documents", len(cached.Documents),
		"age", age.String())

	return cached, true
}

// Set writes the collection through both tiers. The memory tier always
// succeeds; a disk write failure is logged and swallowed.
func (x *TieredCache) Set(ctx context.Context, cache *model.VectorCache) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.mem = cache
	x.storedAt = x.now()

	if err := x.disk.Write(cache); err != nil {
		logging.From(ctx).Warn("disk cache write failed, memory tier still authoritative",
			"error", err.Error())
	}
}

// Invalidate clears the memory tier and deletes the disk file. A missing
// file is not an error.
func (x *TieredCache) Invalidate(ctx context.Context) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.mem = nil
	x.storedAt = time.Time{}

	if err := x.disk.Remove(); err != nil && !os.IsNotExist(err) {
		logging.From(ctx).Warn("disk cache removal failed", "error", err.Error())
	}
}

// Warmth inspects both tiers without promoting anything.
func (x *TieredCache) Warmth() model.Warmth {
	x.mu.Lock()
	defer x.mu.Unlock()

	now := x.now()

	if x.mem != nil && now.Sub(x.storedAt) < x.ttl {
		return model.Warmth{
			Active:     true,
			Source:     TierMemory,
			AgeSeconds: int(now.Sub(x.storedAt).Seconds()),
			Documents:  len(x.mem.Documents),
		}
	}

	if cached, writtenAt, err := x.disk.Read(); err == nil && now.Sub(writtenAt) < x.ttl {
		return model.Warmth{
			Active:     true,
			Source:     TierDisk,
			AgeSeconds: int(now.Sub(writtenAt).Seconds()),
			Documents:  len(cached.Documents),
		}
	}

	return model.Warmth{Source: TierNone}
}

// fileStore is the JSON-file disk tier. The file's modification time is the
// cache timestamp, matching how warm process reuse works: the file survives
// a restart but not a cold host.
type fileStore struct {
	path string
}

func (x *fileStore) Read() (*model.VectorCache, time.Time, error) {
	stat, err := os.Stat(x.path)
	if err != nil {
		return nil, time.Time{}, err
	}

	// #nosec G304 - path comes from CLI configuration, not user input
	data, err := os.ReadFile(x.path)
	if err != nil {
		return nil, time.Time{}, err
	}

	var cache model.VectorCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, time.Time{}, goerr.Wrap(err, "failed to decode cache file", goerr.V("path", x.path))
	}

	return &cache, stat.ModTime(), nil
}

func (x *fileStore) Write(cache *model.VectorCache) error {
	data, err := json.Marshal(cache)
	if err != nil {
		return goerr.Wrap(err, "failed to encode cache")
	}

	if err := os.WriteFile(x.path, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write cache file", goerr.V("path", x.path))
	}
	return nil
}

func (x *fileStore) Remove() error {
	return os.Remove(x.path)
}
