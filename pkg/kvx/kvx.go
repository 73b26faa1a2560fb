// Package kvx holds the small key/value state the access layer needs outside
// the relational store: consumed one-time tokens and goal share passwords.
//
// Stores are dumb: they keep whatever expiry the caller hands them and may
// return entries that have already expired. Callers compare ExpiresAt
// against their own clock.
package kvx

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get when the key is not present.
	ErrNotFound = errors.New("kvx: not found")

	// ErrFull is returned when a bounded store has no room left after
	// dropping expired entries.
	ErrFull = errors.New("kvx: store full")
)

// Entry is a stored value with an optional absolute expiry.
type Entry struct {
	Value string

	// ExpiresAt is zero for entries that never expire.
	ExpiresAt time.Time
}

// Expired reports whether the entry has expired at now.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Store is the minimal key/value contract.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
}

// Claimer is implemented by stores with an atomic insert-if-absent. Shared
// stores (redis, sqlite) use it so at-most-once holds across processes.
type Claimer interface {
	// PutIfAbsent stores e unless key exists. It reports whether it stored.
	PutIfAbsent(ctx context.Context, key string, e Entry) (bool, error)
}

// Sweeper is implemented by stores that need help dropping expired entries.
type Sweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
