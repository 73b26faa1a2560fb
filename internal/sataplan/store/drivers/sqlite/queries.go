package sqlite

import (
	"context"
	"database/sql"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so every query can run
// inside or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

func newQueries(db dbtx) *queries { return &queries{db: db} }

/* Users */

type userRow struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    int64
}

const userColumns = `id, username, email, password_hash, is_active, created_at`

func scanUser(row interface{ Scan(...any) error }) (userRow, error) {
	var u userRow
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	return u, err
}

const createUser = `INSERT INTO users (username, email, password_hash, is_active, created_at)
VALUES (?, ?, ?, ?, ?)`

func (q *queries) CreateUser(ctx context.Context, u userRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, createUser, u.Username, u.Email, u.PasswordHash, u.IsActive, u.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *queries) GetUserByID(ctx context.Context, id int64) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (q *queries) GetUserByUsername(ctx context.Context, username string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (q *queries) GetUserByEmail(ctx context.Context, email string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

/* Goals */

type goalRow struct {
	ID          int64
	UserID      int64
	Name        string
	Description string
	CreatedAt   int64
}

const goalColumns = `id, user_id, name, description, created_at`

func scanGoal(row interface{ Scan(...any) error }) (goalRow, error) {
	var g goalRow
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Description, &g.CreatedAt)
	return g, err
}

const createGoal = `INSERT INTO goals (user_id, name, description, created_at) VALUES (?, ?, ?, ?)`

func (q *queries) CreateGoal(ctx context.Context, g goalRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, createGoal, g.UserID, g.Name, g.Description, g.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *queries) GetGoalByID(ctx context.Context, id int64) (goalRow, error) {
	return scanGoal(q.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
}

func (q *queries) ListGoalsByUser(ctx context.Context, userID int64) ([]goalRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []goalRow
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Matches name or description with LIKE, which sqlite compares
// case-insensitively for ASCII.
const goalSearchFilter = ` FROM goals WHERE user_id = ? AND (name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`

func (q *queries) SearchGoalsByUser(ctx context.Context, userID int64, pattern string, limit, offset int) ([]goalRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+goalColumns+goalSearchFilter+` ORDER BY id LIMIT ? OFFSET ?`,
		userID, pattern, pattern, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []goalRow
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (q *queries) CountGoalSearch(ctx context.Context, userID int64, pattern string) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*)`+goalSearchFilter, userID, pattern, pattern).Scan(&n)
	return n, err
}

func (q *queries) UpdateGoal(ctx context.Context, g goalRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE goals SET name = ?, description = ? WHERE id = ?`, g.Name, g.Description, g.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *queries) DeleteGoal(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

/* Motivations */

type motivationRow struct {
	ID     int64
	GoalID int64
	Quote  string
	Link   string
}

func (q *queries) CreateMotivation(ctx context.Context, m motivationRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO motivations (goal_id, quote, link) VALUES (?, ?, ?)`, m.GoalID, m.Quote, m.Link)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *queries) GetMotivationByID(ctx context.Context, id int64) (motivationRow, error) {
	var m motivationRow
	err := q.db.QueryRowContext(ctx, `SELECT id, goal_id, quote, link FROM motivations WHERE id = ?`, id).
		Scan(&m.ID, &m.GoalID, &m.Quote, &m.Link)
	return m, err
}

func (q *queries) DeleteMotivation(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM motivations WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *queries) ListMotivationsByGoal(ctx context.Context, goalID int64) ([]motivationRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, goal_id, quote, link FROM motivations WHERE goal_id = ? ORDER BY id`, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []motivationRow
	for rows.Next() {
		var m motivationRow
		if err := rows.Scan(&m.ID, &m.GoalID, &m.Quote, &m.Link); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

/* KV entries */

type kvRow struct {
	Namespace string
	Key       string
	Value     string
	ExpiresAt sql.NullInt64
}

func (q *queries) GetKVEntry(ctx context.Context, namespace, key string) (kvRow, error) {
	r := kvRow{Namespace: namespace, Key: key}
	err := q.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv_entries WHERE namespace = ? AND entry_key = ?`,
		namespace, key,
	).Scan(&r.Value, &r.ExpiresAt)
	return r, err
}

const upsertKVEntry = `INSERT INTO kv_entries (namespace, entry_key, value, expires_at) VALUES (?, ?, ?, ?)
ON CONFLICT (namespace, entry_key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`

func (q *queries) UpsertKVEntry(ctx context.Context, r kvRow) error {
	_, err := q.db.ExecContext(ctx, upsertKVEntry, r.Namespace, r.Key, r.Value, r.ExpiresAt)
	return err
}

const insertKVEntryIfAbsent = `INSERT INTO kv_entries (namespace, entry_key, value, expires_at) VALUES (?, ?, ?, ?)
ON CONFLICT (namespace, entry_key) DO NOTHING`

func (q *queries) InsertKVEntryIfAbsent(ctx context.Context, r kvRow) (bool, error) {
	res, err := q.db.ExecContext(ctx, insertKVEntryIfAbsent, r.Namespace, r.Key, r.Value, r.ExpiresAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (q *queries) DeleteKVEntry(ctx context.Context, namespace, key string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE namespace = ? AND entry_key = ?`, namespace, key)
	return err
}

func (q *queries) DeleteExpiredKVEntries(ctx context.Context, namespace string, nowMillis int64) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE namespace = ? AND expires_at IS NOT NULL AND expires_at <= ?`,
		namespace, nowMillis,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
