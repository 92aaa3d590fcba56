package models

import "time"

// User is a registered account that owns a watchlist.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // bcrypt hash, never serialized
	CreatedAt    time.Time `json:"createdAt"`
}

// UserSummary is the public view of a user returned by the auth endpoints.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Summary strips everything but the identifying fields.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}
