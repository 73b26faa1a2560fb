package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/access"
)

func TestGoals(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	g, err := env.goals.CreateGoal(ctx, alice.ID, "  Run a marathon ", "42km")
	require.NoError(t, err)
	require.Equal(t, "Run a marathon", g.Name)
	require.Equal(t, alice.ID, g.UserID)

	t.Run("name validation", func(t *testing.T) {
		var verr *ValidationError
		_, err := env.goals.CreateGoal(ctx, alice.ID, "   ", "")
		require.ErrorAs(t, err, &verr)

		_, err = env.goals.CreateGoal(ctx, alice.ID, strings.Repeat("x", 81), "")
		require.ErrorAs(t, err, &verr)
	})

	t.Run("owner reads, others are forbidden", func(t *testing.T) {
		got, err := env.goals.GetGoal(ctx, alice.ID, g.ID)
		require.NoError(t, err)
		require.Equal(t, g.ID, got.ID)

		_, err = env.goals.GetGoal(ctx, bob.ID, g.ID)
		require.ErrorIs(t, err, ErrForbidden)

		_, err = env.goals.GetGoal(ctx, alice.ID, g.ID+100)
		require.ErrorIs(t, err, ErrGoalNotFound)
	})

	t.Run("list only returns own goals", func(t *testing.T) {
		env.goal(t, bob, "Bob's goal")

		list, err := env.goals.ListGoals(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, g.ID, list[0].ID)
	})

	t.Run("motivations", func(t *testing.T) {
		m, err := env.goals.AddMotivation(ctx, alice.ID, g.ID, "Keep going", "https://example.com/why")
		require.NoError(t, err)
		require.Positive(t, m.ID)

		var verr *ValidationError
		_, err = env.goals.AddMotivation(ctx, alice.ID, g.ID, "", "")
		require.ErrorAs(t, err, &verr)
		_, err = env.goals.AddMotivation(ctx, alice.ID, g.ID, "", "javascript:alert(1)")
		require.ErrorAs(t, err, &verr)
		_, err = env.goals.AddMotivation(ctx, alice.ID, g.ID, strings.Repeat("q", 501), "")
		require.ErrorAs(t, err, &verr)

		_, err = env.goals.AddMotivation(ctx, bob.ID, g.ID, "mine now", "")
		require.ErrorIs(t, err, ErrForbidden)

		got, err := env.goals.GetGoal(ctx, alice.ID, g.ID)
		require.NoError(t, err)
		require.Len(t, got.Motivations, 1)
	})
}

func TestDeleteGoalRevokesSharePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	g := env.goal(t, alice, "Learn Go")

	share, _, err := env.shares.CreatePermanentQR(ctx, alice.ID, g.ID)
	require.NoError(t, err)

	require.ErrorIs(t, env.goals.DeleteGoal(ctx, bob.ID, g.ID), ErrForbidden)
	require.NoError(t, env.goals.DeleteGoal(ctx, alice.ID, g.ID))
	require.ErrorIs(t, env.goals.DeleteGoal(ctx, alice.ID, g.ID), ErrGoalNotFound)

	require.ErrorIs(t, env.pwds.Verify(ctx, g.ID, share.GoalPassword), access.ErrInvalidGoalPassword)
}

func TestUpdateGoal(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	g := env.goal(t, alice, "Learn Go")

	t.Run("owner renames", func(t *testing.T) {
		got, err := env.goals.UpdateGoal(ctx, alice.ID, g.ID, " Learn Go properly ", "generics too")
		require.NoError(t, err)
		require.Equal(t, "Learn Go properly", got.Name)
		require.Equal(t, "generics too", got.Description)

		stored, err := env.goals.GetGoal(ctx, alice.ID, g.ID)
		require.NoError(t, err)
		require.Equal(t, "Learn Go properly", stored.Name)
		require.Equal(t, "generics too", stored.Description)
	})

	t.Run("name and description are required", func(t *testing.T) {
		var verr *ValidationError
		_, err := env.goals.UpdateGoal(ctx, alice.ID, g.ID, "", "something")
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "name", verr.Field)

		_, err = env.goals.UpdateGoal(ctx, alice.ID, g.ID, "Learn Go", "  ")
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "description", verr.Field)
	})

	t.Run("only the owner", func(t *testing.T) {
		_, err := env.goals.UpdateGoal(ctx, bob.ID, g.ID, "Mine", "now")
		require.ErrorIs(t, err, ErrForbidden)

		_, err = env.goals.UpdateGoal(ctx, alice.ID, g.ID+100, "Gone", "goal")
		require.ErrorIs(t, err, ErrGoalNotFound)
	})
}

func TestMotivationListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	g := env.goal(t, alice, "Learn Go")

	first, err := env.goals.AddMotivation(ctx, alice.ID, g.ID, "Keep going", "")
	require.NoError(t, err)
	second, err := env.goals.AddMotivation(ctx, alice.ID, g.ID, "", "https://go.dev")
	require.NoError(t, err)

	t.Run("list", func(t *testing.T) {
		ms, err := env.goals.ListMotivations(ctx, alice.ID, g.ID)
		require.NoError(t, err)
		require.Len(t, ms, 2)
		require.Equal(t, first.ID, ms[0].ID)
		require.Equal(t, "https://go.dev", ms[1].Link)

		_, err = env.goals.ListMotivations(ctx, bob.ID, g.ID)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("delete is owner-checked through the goal", func(t *testing.T) {
		require.ErrorIs(t, env.goals.DeleteMotivation(ctx, bob.ID, first.ID), ErrForbidden)

		require.NoError(t, env.goals.DeleteMotivation(ctx, alice.ID, first.ID))
		require.ErrorIs(t, env.goals.DeleteMotivation(ctx, alice.ID, first.ID), ErrMotivationNotFound)

		ms, err := env.goals.ListMotivations(ctx, alice.ID, g.ID)
		require.NoError(t, err)
		require.Len(t, ms, 1)
		require.Equal(t, second.ID, ms[0].ID)
	})
}

func TestSearchGoals(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	for _, name := range []string{"Run a marathon", "Run faster", "Run daily", "Run uphill", "Read more"} {
		env.goal(t, alice, name)
	}
	env.goal(t, bob, "Run with bob")

	t.Run("default page size", func(t *testing.T) {
		page, err := env.goals.SearchGoals(ctx, alice.ID, "run", 1, 0)
		require.NoError(t, err)
		require.Equal(t, 4, page.Total)
		require.Equal(t, 1, page.Page)
		require.Equal(t, 3, page.PageSize)
		require.Len(t, page.Goals, 3)
		require.Equal(t, "Run a marathon", page.Goals[0].Name)
	})

	t.Run("second page", func(t *testing.T) {
		page, err := env.goals.SearchGoals(ctx, alice.ID, "run", 2, 3)
		require.NoError(t, err)
		require.Len(t, page.Goals, 1)
		require.Equal(t, "Run uphill", page.Goals[0].Name)
	})

	t.Run("paging validation", func(t *testing.T) {
		var verr *ValidationError
		_, err := env.goals.SearchGoals(ctx, alice.ID, "run", 0, 3)
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "page", verr.Field)

		_, err = env.goals.SearchGoals(ctx, alice.ID, "run", 1, 51)
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "page_size", verr.Field)
	})
}
