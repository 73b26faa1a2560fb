package domain

import "time"

// Field limits.
const (
	MaxGoalNameLength = 80
	MaxQuoteLength    = 500
	MaxUsernameLength = 32
	MinUsernameLength = 3
	MinPasswordLength = 8
)

// Goal search paging.
const (
	DefaultSearchPageSize = 3
	MaxSearchPageSize     = 50
)

type Goal struct {
	ID          int64
	UserID      int64 // owner
	Name        string
	Description string
	Motivations []Motivation
	CreatedAt   time.Time
}

// OwnedBy reports whether userID owns the goal.
func (g Goal) OwnedBy(userID int64) bool { return g.UserID == userID }

type Motivation struct {
	ID     int64
	GoalID int64
	Quote  string
	Link   string
}

// GoalPage is one page of goal search results. Total counts the matches
// across all pages.
type GoalPage struct {
	Goals    []Goal
	Page     int
	PageSize int
	Total    int
}

// SharedGoal is the read-only view returned to a QR holder.
type SharedGoal struct {
	Goal  Goal
	Owner string // owner username
	Kind  string // kind of token that granted the view
}
