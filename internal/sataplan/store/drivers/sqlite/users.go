package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/domain"
)

type usersRepo struct {
	q   *queries
	now func() time.Time
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	created := u.CreatedAt
	if created.IsZero() {
		created = r.now()
	}

	id, err := r.q.CreateUser(ctx, userRow{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsActive:     u.Active,
		CreatedAt:    created.Unix(),
	})
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row, err := r.q.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := r.q.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}
