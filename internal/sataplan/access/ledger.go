package access

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/sataplan/pkg/kvx"
)

// Ledger records one-time tokens that have been used. Records live until the
// token they belong to would have expired anyway; an expired record is
// deleted the next time it is looked up.
type Ledger struct {
	mu    sync.Mutex
	store kvx.Store
	now   func() time.Time
}

// NewLedger creates a ledger over store, using now as the expiry clock. It
// must be the same clock the codec uses.
func NewLedger(store kvx.Store, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{store: store, now: now}
}

// CheckAndMark atomically reports whether consumptionID was already used and,
// if not, marks it used until expiresAt. For any id, at most one caller ever
// sees alreadyUsed == false before expiresAt.
//
// fingerprint is stored with the record for auditing only.
func (l *Ledger) CheckAndMark(ctx context.Context, consumptionID, fingerprint string, expiresAt time.Time) (alreadyUsed bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.store.Get(ctx, consumptionID)
	switch {
	case err == nil && e.Expired(l.now()):
		if err := l.store.Delete(ctx, consumptionID); err != nil {
			return false, fmt.Errorf("ledger evict: %w", err)
		}
	case err == nil:
		return true, nil
	case !errors.Is(err, kvx.ErrNotFound):
		return false, fmt.Errorf("ledger lookup: %w", err)
	}

	record := kvx.Entry{Value: fingerprint, ExpiresAt: expiresAt}

	// Shared stores may have another process racing us, so claim atomically
	if c, ok := l.store.(kvx.Claimer); ok {
		stored, err := c.PutIfAbsent(ctx, consumptionID, record)
		if err != nil {
			return false, fmt.Errorf("ledger mark: %w", err)
		}
		return !stored, nil
	}

	if err := l.store.Put(ctx, consumptionID, record); err != nil {
		return false, fmt.Errorf("ledger mark: %w", err)
	}
	return false, nil
}

// Sweep drops every expired record when the store supports it. It returns
// the number of records removed.
func (l *Ledger) Sweep(ctx context.Context) (int, error) {
	s, ok := l.store.(kvx.Sweeper)
	if !ok {
		return 0, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return s.DeleteExpired(ctx, l.now())
}
