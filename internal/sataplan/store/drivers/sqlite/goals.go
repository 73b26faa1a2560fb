package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/domain"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/store"
)

type goalsRepo struct {
	q   *queries
	now func() time.Time
}

func (r *goalsRepo) CreateGoal(ctx context.Context, g domain.Goal) (int64, error) {
	created := g.CreatedAt
	if created.IsZero() {
		created = r.now()
	}

	id, err := r.q.CreateGoal(ctx, goalRow{
		UserID:      g.UserID,
		Name:        g.Name,
		Description: g.Description,
		CreatedAt:   created.Unix(),
	})
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *goalsRepo) GetGoalByID(ctx context.Context, id int64) (domain.Goal, error) {
	row, err := r.q.GetGoalByID(ctx, id)
	if err != nil {
		return domain.Goal{}, mapNotFound(err)
	}

	motivations, err := r.q.ListMotivationsByGoal(ctx, id)
	if err != nil {
		return domain.Goal{}, err
	}
	return mapGoal(row, motivations), nil
}

func (r *goalsRepo) ListGoalsByUser(ctx context.Context, userID int64) ([]domain.Goal, error) {
	rows, err := r.q.ListGoalsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return r.withMotivations(ctx, rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *goalsRepo) SearchGoalsByUser(ctx context.Context, userID int64, query string, limit, offset int) ([]domain.Goal, int, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"

	total, err := r.q.CountGoalSearch(ctx, userID, pattern)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.q.SearchGoalsByUser(ctx, userID, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	goals, err := r.withMotivations(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return goals, total, nil
}

func (r *goalsRepo) withMotivations(ctx context.Context, rows []goalRow) ([]domain.Goal, error) {
	goals := make([]domain.Goal, 0, len(rows))
	for _, row := range rows {
		motivations, err := r.q.ListMotivationsByGoal(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		goals = append(goals, mapGoal(row, motivations))
	}
	return goals, nil
}

func (r *goalsRepo) UpdateGoal(ctx context.Context, g domain.Goal) error {
	n, err := r.q.UpdateGoal(ctx, goalRow{ID: g.ID, Name: g.Name, Description: g.Description})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *goalsRepo) DeleteGoal(ctx context.Context, id int64) error {
	n, err := r.q.DeleteGoal(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *goalsRepo) AddMotivation(ctx context.Context, m domain.Motivation) (int64, error) {
	id, err := r.q.CreateMotivation(ctx, motivationRow{
		GoalID: m.GoalID,
		Quote:  m.Quote,
		Link:   m.Link,
	})
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *goalsRepo) GetMotivationByID(ctx context.Context, id int64) (domain.Motivation, error) {
	row, err := r.q.GetMotivationByID(ctx, id)
	if err != nil {
		return domain.Motivation{}, mapNotFound(err)
	}
	return mapMotivation(row), nil
}

func (r *goalsRepo) ListMotivationsByGoal(ctx context.Context, goalID int64) ([]domain.Motivation, error) {
	rows, err := r.q.ListMotivationsByGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Motivation, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapMotivation(row))
	}
	return out, nil
}

func (r *goalsRepo) DeleteMotivation(ctx context.Context, id int64) error {
	n, err := r.q.DeleteMotivation(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
