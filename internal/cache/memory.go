package cache

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

// MemoryConfig sizes the in-process store.
type MemoryConfig struct {
	// Capacity is the maximum number of entries. Must be greater than 0.
	Capacity int

	// NumShards splits the store for concurrent access. Must be greater than 0.
	NumShards int

	// MaxTTL bounds every entry, including those written with Set.
	MaxTTL time.Duration

	// EvictionPercentage is the share of entries dropped when the store is
	// full. Must be between 1 and 100.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are swept. Zero keeps
	// the sturdyc default.
	EvictionInterval time.Duration
}

func (c MemoryConfig) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.MaxTTL <= 0 {
		return &ConfigError{Field: "MaxTTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "cache: config error in field " + e.Field + ": " + e.Message
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry of its own
}

// MemoryStore keeps entries in a sturdyc client inside the process. SetEx
// stores the deadline with the value, so entries expire on their own TTL and
// not only on the client-wide MaxTTL.
type MemoryStore struct {
	client *sturdyc.Client[memoryEntry]
	now    func() time.Time
}

func NewMemoryStore(cfg MemoryConfig) (*MemoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}
	client := sturdyc.New[memoryEntry](cfg.Capacity, cfg.NumShards, cfg.MaxTTL, cfg.EvictionPercentage, opts...)

	return &MemoryStore{client: client, now: time.Now}, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		s.client.Delete(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.client.Set(key, memoryEntry{value: value})
	return nil
}

func (s *MemoryStore) SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) error {
	s.client.Set(key, memoryEntry{value: value, expiresAt: s.now().Add(ttl)})
	return nil
}

func (s *MemoryStore) Del(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Close is a no-op; the sturdyc client holds no external resources.
func (s *MemoryStore) Close() error {
	return nil
}
