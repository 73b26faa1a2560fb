package access

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aussiebroadwan/sataplan/pkg/cryptox"
	"github.com/aussiebroadwan/sataplan/pkg/kvx"
	"github.com/aussiebroadwan/sataplan/pkg/slogx"
)

// GoalPasswords holds the share password of each permanently shared goal.
// Only a fingerprint of each password is stored. Issuing a new password for
// a goal replaces the previous one.
type GoalPasswords struct {
	mu    sync.Mutex
	store kvx.Store
	now   func() time.Time
	ttl   time.Duration
}

// NewGoalPasswords creates a registry. A zero ttl keeps passwords until they
// are rotated.
func NewGoalPasswords(store kvx.Store, ttl time.Duration, now func() time.Time) *GoalPasswords {
	if now == nil {
		now = time.Now
	}
	return &GoalPasswords{store: store, ttl: ttl, now: now}
}

func goalKey(goalID int64) string { return strconv.FormatInt(goalID, 10) }

// Rotate generates and records a new password for goalID.
func (p *GoalPasswords) Rotate(ctx context.Context, goalID int64) (string, error) {
	password, err := cryptox.GenerateGoalPassword()
	if err != nil {
		return "", err
	}

	e := kvx.Entry{Value: cryptox.FingerprintToken(password)}
	if p.ttl > 0 {
		e.ExpiresAt = p.now().Add(p.ttl)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.Put(ctx, goalKey(goalID), e); err != nil {
		return "", fmt.Errorf("store goal password: %w", err)
	}
	return password, nil
}

// Verify checks password against the current password of goalID. Unknown,
// expired and wrong passwords all yield ErrInvalidGoalPassword.
func (p *GoalPasswords) Verify(ctx context.Context, goalID int64, password string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, err := p.store.Get(ctx, goalKey(goalID))
	switch {
	case errors.Is(err, kvx.ErrNotFound):
		return ErrInvalidGoalPassword
	case err != nil:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if e.Expired(p.now()) {
		if err := p.store.Delete(ctx, goalKey(goalID)); err != nil {
			slogx.FromContext(ctx).Warn("failed to evict expired goal password", "goal_id", goalID, "err", err)
		}
		return ErrInvalidGoalPassword
	}

	if !cryptox.EqualFingerprints(e.Value, cryptox.FingerprintToken(password)) {
		return ErrInvalidGoalPassword
	}
	return nil
}

// Revoke forgets the password of goalID, e.g. when the goal is deleted.
func (p *GoalPasswords) Revoke(ctx context.Context, goalID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.Delete(ctx, goalKey(goalID))
}

// Sweep drops expired passwords when the store supports it.
func (p *GoalPasswords) Sweep(ctx context.Context) (int, error) {
	s, ok := p.store.(kvx.Sweeper)
	if !ok {
		return 0, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return s.DeleteExpired(ctx, p.now())
}
