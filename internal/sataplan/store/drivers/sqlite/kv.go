package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/sataplan/pkg/kvx"
)

// kvRepo is one namespace of the kv_entries table.
type kvRepo struct {
	q         *queries
	namespace string
}

func toNullMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func (r *kvRepo) Get(ctx context.Context, key string) (kvx.Entry, error) {
	row, err := r.q.GetKVEntry(ctx, r.namespace, key)
	if errors.Is(err, sql.ErrNoRows) {
		return kvx.Entry{}, kvx.ErrNotFound
	}
	if err != nil {
		return kvx.Entry{}, err
	}

	e := kvx.Entry{Value: row.Value}
	if row.ExpiresAt.Valid {
		e.ExpiresAt = time.UnixMilli(row.ExpiresAt.Int64)
	}
	return e, nil
}

func (r *kvRepo) Put(ctx context.Context, key string, e kvx.Entry) error {
	return r.q.UpsertKVEntry(ctx, kvRow{
		Namespace: r.namespace,
		Key:       key,
		Value:     e.Value,
		ExpiresAt: toNullMillis(e.ExpiresAt),
	})
}

func (r *kvRepo) PutIfAbsent(ctx context.Context, key string, e kvx.Entry) (bool, error) {
	return r.q.InsertKVEntryIfAbsent(ctx, kvRow{
		Namespace: r.namespace,
		Key:       key,
		Value:     e.Value,
		ExpiresAt: toNullMillis(e.ExpiresAt),
	})
}

func (r *kvRepo) Delete(ctx context.Context, key string) error {
	return r.q.DeleteKVEntry(ctx, r.namespace, key)
}

func (r *kvRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	n, err := r.q.DeleteExpiredKVEntries(ctx, r.namespace, now.UnixMilli())
	return int(n), err
}
