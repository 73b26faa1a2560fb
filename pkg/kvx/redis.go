package kvx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key written by a Redis store.
const KeyPrefix = "sataplan:"

// Redis stores entries in Redis and leaves expiry to Redis TTLs, so it does
// not implement Sweeper. Several processes may share one Redis; PutIfAbsent
// maps to SET NX.
type Redis struct {
	client    redis.UniversalClient
	namespace string
	now       func() time.Time
}

var (
	_ Store   = (*Redis)(nil)
	_ Claimer = (*Redis)(nil)
)

// redisEntry is the JSON value kept under each key. The expiry is kept
// alongside the Redis TTL so Get can report it.
type redisEntry struct {
	Value     string `json:"v"`
	ExpiresAt int64  `json:"e,omitempty"` // unix milliseconds
}

// NewRedis creates a store writing keys as "sataplan:<namespace>:<key>".
// now is used to turn absolute expiries into TTLs; nil means time.Now.
func NewRedis(client redis.UniversalClient, namespace string, now func() time.Time) *Redis {
	if now == nil {
		now = time.Now
	}
	return &Redis{client: client, namespace: namespace, now: now}
}

func (r *Redis) key(k string) string {
	return KeyPrefix + r.namespace + ":" + k
}

func (r *Redis) Get(ctx context.Context, key string) (Entry, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("kvx: redis get: %w", err)
	}

	var re redisEntry
	if err := json.Unmarshal(raw, &re); err != nil {
		return Entry{}, fmt.Errorf("kvx: redis decode %q: %w", key, err)
	}

	e := Entry{Value: re.Value}
	if re.ExpiresAt != 0 {
		e.ExpiresAt = time.UnixMilli(re.ExpiresAt)
	}
	return e, nil
}

func (r *Redis) Put(ctx context.Context, key string, e Entry) error {
	val, ttl, err := r.encode(e)
	if err != nil {
		return err
	}
	if ttl < 0 {
		return r.Delete(ctx, key)
	}

	if err := r.client.Set(ctx, r.key(key), val, ttl).Err(); err != nil {
		return fmt.Errorf("kvx: redis set: %w", err)
	}
	return nil
}

func (r *Redis) PutIfAbsent(ctx context.Context, key string, e Entry) (bool, error) {
	val, ttl, err := r.encode(e)
	if err != nil {
		return false, err
	}
	if ttl < 0 {
		// Already expired, nothing worth holding on to.
		return true, nil
	}

	err = r.client.SetArgs(ctx, r.key(key), val, redis.SetArgs{Mode: "NX", TTL: ttl}).Err()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("kvx: redis set nx: %w", err)
	}
	return true, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("kvx: redis del: %w", err)
	}
	return nil
}

// encode returns the JSON value and the TTL to set. A zero TTL means no
// expiry; a negative TTL means the entry has already expired.
func (r *Redis) encode(e Entry) ([]byte, time.Duration, error) {
	re := redisEntry{Value: e.Value}
	var ttl time.Duration
	if !e.ExpiresAt.IsZero() {
		re.ExpiresAt = e.ExpiresAt.UnixMilli()
		ttl = e.ExpiresAt.Sub(r.now())
		switch {
		case ttl <= 0:
			ttl = -1
		case ttl < time.Millisecond:
			ttl = time.Millisecond
		}
	}

	val, err := json.Marshal(re)
	if err != nil {
		return nil, 0, fmt.Errorf("kvx: redis encode: %w", err)
	}
	return val, ttl, nil
}
