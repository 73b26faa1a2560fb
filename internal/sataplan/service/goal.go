package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/access"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/domain"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/store"
	"github.com/aussiebroadwan/sataplan/pkg/slogx"
)

// GoalService manages a user's own goals.
type GoalService struct {
	Store     store.Store
	Passwords *access.GoalPasswords
}

func validateGoalName(name string) error {
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return invalid("name", "is required")
	case n > domain.MaxGoalNameLength:
		return invalid("name", fmt.Sprintf("must be at most %d characters", domain.MaxGoalNameLength))
	}
	return nil
}

func (s *GoalService) CreateGoal(ctx context.Context, userID int64, name, description string) (domain.Goal, error) {
	name = strings.TrimSpace(name)
	if err := validateGoalName(name); err != nil {
		return domain.Goal{}, err
	}

	id, err := s.Store.Goals().CreateGoal(ctx, domain.Goal{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Goal{}, ErrUserNotFound
	}
	if err != nil {
		return domain.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return s.Store.Goals().GetGoalByID(ctx, id)
}

func (s *GoalService) ListGoals(ctx context.Context, userID int64) ([]domain.Goal, error) {
	return s.Store.Goals().ListGoalsByUser(ctx, userID)
}

// SearchGoals returns one page of userID's goals whose name or description
// contains query. Pages start at 1; a zero pageSize means
// domain.DefaultSearchPageSize.
func (s *GoalService) SearchGoals(ctx context.Context, userID int64, query string, page, pageSize int) (domain.GoalPage, error) {
	if pageSize == 0 {
		pageSize = domain.DefaultSearchPageSize
	}
	if page < 1 {
		return domain.GoalPage{}, invalid("page", "must be at least 1")
	}
	if pageSize < 1 || pageSize > domain.MaxSearchPageSize {
		return domain.GoalPage{}, invalid("page_size", fmt.Sprintf("must be between 1 and %d", domain.MaxSearchPageSize))
	}

	goals, total, err := s.Store.Goals().SearchGoalsByUser(ctx, userID, strings.TrimSpace(query), pageSize, (page-1)*pageSize)
	if err != nil {
		return domain.GoalPage{}, fmt.Errorf("search goals: %w", err)
	}
	return domain.GoalPage{Goals: goals, Page: page, PageSize: pageSize, Total: total}, nil
}

// GetGoal returns goalID if userID owns it.
func (s *GoalService) GetGoal(ctx context.Context, userID, goalID int64) (domain.Goal, error) {
	return ownedGoal(ctx, s.Store, userID, goalID)
}

// UpdateGoal replaces the name and description of a goal userID owns. Both
// are required.
func (s *GoalService) UpdateGoal(ctx context.Context, userID, goalID int64, name, description string) (domain.Goal, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if err := validateGoalName(name); err != nil {
		return domain.Goal{}, err
	}
	if description == "" {
		return domain.Goal{}, invalid("description", "is required")
	}

	g, err := ownedGoal(ctx, s.Store, userID, goalID)
	if err != nil {
		return domain.Goal{}, err
	}

	g.Name, g.Description = name, description
	if err := s.Store.Goals().UpdateGoal(ctx, g); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Goal{}, ErrGoalNotFound
		}
		return domain.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return g, nil
}

// DeleteGoal removes the goal and its motivations and forgets its share
// password.
func (s *GoalService) DeleteGoal(ctx context.Context, userID, goalID int64) error {
	if _, err := ownedGoal(ctx, s.Store, userID, goalID); err != nil {
		return err
	}

	if err := s.Store.Goals().DeleteGoal(ctx, goalID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrGoalNotFound
		}
		return fmt.Errorf("delete goal: %w", err)
	}

	if s.Passwords != nil {
		if err := s.Passwords.Revoke(ctx, goalID); err != nil {
			// The goal is gone, so a leftover password can't be redeemed anyway
			slogx.FromContext(ctx).Warn("failed to revoke goal password", "goal_id", goalID, "err", err)
		}
	}
	return nil
}

// AddMotivation attaches a quote and/or link. At least one is required and
// links must be absolute http(s) URLs.
func (s *GoalService) AddMotivation(ctx context.Context, userID, goalID int64, quote, link string) (domain.Motivation, error) {
	quote = strings.TrimSpace(quote)
	link = strings.TrimSpace(link)

	if quote == "" && link == "" {
		return domain.Motivation{}, invalid("quote", "a quote or a link is required")
	}
	if utf8.RuneCountInString(quote) > domain.MaxQuoteLength {
		return domain.Motivation{}, invalid("quote", fmt.Sprintf("must be at most %d characters", domain.MaxQuoteLength))
	}
	if link != "" {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return domain.Motivation{}, invalid("link", "must be an absolute http(s) URL")
		}
	}

	if _, err := ownedGoal(ctx, s.Store, userID, goalID); err != nil {
		return domain.Motivation{}, err
	}

	m := domain.Motivation{GoalID: goalID, Quote: quote, Link: link}
	id, err := s.Store.Goals().AddMotivation(ctx, m)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Motivation{}, ErrGoalNotFound
	}
	if err != nil {
		return domain.Motivation{}, fmt.Errorf("add motivation: %w", err)
	}
	m.ID = id
	return m, nil
}

// ListMotivations returns the motivations of a goal userID owns, oldest
// first.
func (s *GoalService) ListMotivations(ctx context.Context, userID, goalID int64) ([]domain.Motivation, error) {
	if _, err := ownedGoal(ctx, s.Store, userID, goalID); err != nil {
		return nil, err
	}

	ms, err := s.Store.Goals().ListMotivationsByGoal(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("list motivations: %w", err)
	}
	return ms, nil
}

// DeleteMotivation removes a motivation from a goal userID owns.
func (s *GoalService) DeleteMotivation(ctx context.Context, userID, motivationID int64) error {
	m, err := s.Store.Goals().GetMotivationByID(ctx, motivationID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrMotivationNotFound
	}
	if err != nil {
		return fmt.Errorf("get motivation: %w", err)
	}

	if _, err := ownedGoal(ctx, s.Store, userID, m.GoalID); err != nil {
		return err
	}

	if err := s.Store.Goals().DeleteMotivation(ctx, motivationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMotivationNotFound
		}
		return fmt.Errorf("delete motivation: %w", err)
	}
	return nil
}

// ownedGoal loads goalID and checks userID owns it.
func ownedGoal(ctx context.Context, st store.Store, userID, goalID int64) (domain.Goal, error) {
	g, err := st.Goals().GetGoalByID(ctx, goalID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Goal{}, ErrGoalNotFound
	}
	if err != nil {
		return domain.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	if !g.OwnedBy(userID) {
		return domain.Goal{}, ErrForbidden
	}
	return g, nil
}
