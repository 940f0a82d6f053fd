package respcache

import (
	"maps"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a stored response counts as fresh.
const DefaultTTL = 10 * time.Minute

// credentialParams never contribute to a fingerprint.
var credentialParams = map[string]struct{}{
	"api_key": {},
}

// Entry is one stored response.
type Entry struct {
	Key       string
	Payload   []byte
	FetchedAt time.Time
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock replaces the wall clock used to stamp and judge entries.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// Cache is a concurrency-safe response store.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]Entry
}

// New builds an empty cache. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Now reports the cache clock.
func (c *Cache) Now() time.Time {
	return c.now()
}

// Get returns the entry stored under key whether fresh or stale.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	entry.Payload = slices.Clone(entry.Payload)
	return entry, true
}

// Put stores payload under key stamped with the current clock, replacing any prior entry.
func (c *Cache) Put(key string, payload []byte) {
	entry := Entry{
		Key:       key,
		Payload:   slices.Clone(payload),
		FetchedAt: c.now(),
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Lookup returns the entry under key only when it is fresh at now.
func (c *Cache) Lookup(key string, now time.Time) (Entry, bool) {
	entry, ok := c.Get(key)
	if !ok || !IsFresh(entry, now, c.ttl) {
		return Entry{}, false
	}
	return entry, true
}

// Len reports how many entries are stored, stale ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the stored fingerprints in sorted order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	keys := slices.Collect(maps.Keys(c.entries))
	c.mu.RUnlock()
	slices.Sort(keys)
	return keys
}

// IsFresh reports whether entry was fetched less than ttl before now.
// An entry exactly ttl old is stale.
func IsFresh(entry Entry, now time.Time, ttl time.Duration) bool {
	return now.Sub(entry.FetchedAt) < ttl
}

// Fingerprint derives a cache key from a request path and its query parameters.
// Parameters are ordered by name, then by value, so equivalent requests share a
// key regardless of how the caller built them. Credentials are left out.
func Fingerprint(path string, params url.Values) string {
	names := make([]string, 0, len(params))
	for name := range params {
		if _, secret := credentialParams[name]; secret {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString(path)
	sep := byte('?')
	for _, name := range names {
		values := slices.Clone(params[name])
		slices.Sort(values)
		for _, value := range values {
			b.WriteByte(sep)
			sep = '&'
			b.WriteString(url.QueryEscape(name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(value))
		}
	}
	return b.String()
}
