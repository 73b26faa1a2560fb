package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/domain"
	"github.com/aussiebroadwan/sataplan/pkg/kvx"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories so transactions can't be
// nested by accident.
type Store interface {
	Users() Users
	Goals() Goals

	// KV returns a key/value store scoped to namespace, backed by the same
	// database. Used for the consumption ledger and goal passwords when the
	// state backend is "sqlite".
	KV(namespace string) KV

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user and returns its id. A duplicate username
	// or email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is used during login when an email is given.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

type Goals interface {
	// CreateGoal inserts a goal (without motivations) and returns its id.
	CreateGoal(ctx context.Context, g domain.Goal) (int64, error)

	// GetGoalByID returns a goal with its motivations.
	GetGoalByID(ctx context.Context, id int64) (domain.Goal, error)

	// ListGoalsByUser returns the user's goals, oldest first, with
	// motivations.
	ListGoalsByUser(ctx context.Context, userID int64) ([]domain.Goal, error)

	// SearchGoalsByUser returns one page of the user's goals whose name or
	// description contains query (case-insensitive), oldest first, and the
	// number of matches across all pages.
	SearchGoalsByUser(ctx context.Context, userID int64, query string, limit, offset int) ([]domain.Goal, int, error)

	// UpdateGoal replaces the name and description of goal g.ID.
	UpdateGoal(ctx context.Context, g domain.Goal) error

	// DeleteGoal cascades to motivations.
	DeleteGoal(ctx context.Context, id int64) error

	AddMotivation(ctx context.Context, m domain.Motivation) (int64, error)

	GetMotivationByID(ctx context.Context, id int64) (domain.Motivation, error)

	ListMotivationsByGoal(ctx context.Context, goalID int64) ([]domain.Motivation, error)

	DeleteMotivation(ctx context.Context, id int64) error
}

// KV is a database-backed kvx store. It supports atomic claims and sweeping
// so several processes sharing the database keep at-most-once semantics.
type KV interface {
	kvx.Store
	kvx.Claimer
	kvx.Sweeper
}
