package access_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/access"
	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
	"github.com/aussiebroadwan/sataplan/pkg/kvx"
)

// testClock is a settable clock shared by the codec and ledger under test.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	clock     *testClock
	codec     *jwtx.Codec
	ledger    *access.Ledger
	gate      *access.Gate
	sessions  *access.SessionIssuer
	scoped    *access.ScopedIssuer
	passwords *access.GoalPasswords
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, nil)
}

// newFixtureWithSecret is newFixture signing with secret instead of the
// shared test secret.
func newFixtureWithSecret(t *testing.T, secret string) *fixture {
	t.Helper()
	return buildFixture(t, []byte(secret), nil)
}

// newFixtureWithStore wires everything around one clock. A nil store means
// an in-memory ledger.
func newFixtureWithStore(t *testing.T, store kvx.Store) *fixture {
	t.Helper()
	return buildFixture(t, []byte(testSecret), store)
}

const testSecret = "access-test-secret-0123456789abcdef"

func buildFixture(t *testing.T, secret []byte, store kvx.Store) *fixture {
	t.Helper()

	clock := newTestClock()
	codec, err := jwtx.NewCodec(secret, "HS256", clock.Now)
	require.NoError(t, err)

	if store == nil {
		store = kvx.NewMemory(kvx.MemoryConfig{Now: clock.Now})
	}
	ledger := access.NewLedger(store, clock.Now)
	gate := access.NewGate(codec, ledger)
	passwords := access.NewGoalPasswords(kvx.NewMemory(kvx.MemoryConfig{Now: clock.Now}), 0, clock.Now)

	return &fixture{
		clock:     clock,
		codec:     codec,
		ledger:    ledger,
		gate:      gate,
		sessions:  access.NewSessionIssuer(codec, gate, clock.Now),
		scoped:    access.NewScopedIssuer(codec, passwords, clock.Now),
		passwords: passwords,
	}
}

var errBrokenStore = errors.New("store is down")

// brokenStore fails every operation.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (kvx.Entry, error) {
	return kvx.Entry{}, errBrokenStore
}
func (brokenStore) Put(context.Context, string, kvx.Entry) error { return errBrokenStore }
func (brokenStore) Delete(context.Context, string) error         { return errBrokenStore }

// plainStore hides the Claimer side of a memory store so the ledger takes
// the get-then-put path.
type plainStore struct{ m *kvx.Memory }

func (p plainStore) Get(ctx context.Context, k string) (kvx.Entry, error) { return p.m.Get(ctx, k) }
func (p plainStore) Put(ctx context.Context, k string, e kvx.Entry) error { return p.m.Put(ctx, k, e) }
func (p plainStore) Delete(ctx context.Context, k string) error           { return p.m.Delete(ctx, k) }
