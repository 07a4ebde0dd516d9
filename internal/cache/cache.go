package cache

import (
	"context"
	"time"
)

// Category selects the TTL class of a cached value.
type Category string

const (
	CategoryMarketData Category = "market-data"
	CategoryDetails    Category = "details"
	CategoryNews       Category = "news"
	CategoryTeam       Category = "team"
	CategoryDefault    Category = "default"
)

// TTLs maps a category to its time-to-live.
type TTLs map[Category]time.Duration

// DefaultTTLs returns the built-in TTL classes.
func DefaultTTLs() TTLs {
	return TTLs{
		CategoryMarketData: 5 * time.Minute,
		CategoryDetails:    2 * time.Hour,
		CategoryNews:       10 * time.Minute,
		CategoryTeam:       24 * time.Hour,
		CategoryDefault:    15 * time.Minute,
	}
}

// For returns the TTL of c, falling back to the default class.
func (t TTLs) For(c Category) time.Duration {
	if d, ok := t[c]; ok && d > 0 {
		return d
	}
	if d, ok := t[CategoryDefault]; ok && d > 0 {
		return d
	}
	return 15 * time.Minute
}

// Cache is a lookaside store of opaque payloads. Implementations must never
// return an entry past its expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, category Category) error
	Invalidate(ctx context.Context, key string) error
}
