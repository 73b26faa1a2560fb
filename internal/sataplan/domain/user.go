package domain

import "time"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string // bcrypt encoded
	Active       bool
	CreatedAt    time.Time
}
