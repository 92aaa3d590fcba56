package models

import "time"

// WatchStatus tracks how far a user got with a watchlist title.
type WatchStatus string

const (
	WatchStatusPending   WatchStatus = "pending"
	WatchStatusWatching  WatchStatus = "watching"
	WatchStatusCompleted WatchStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s WatchStatus) Valid() bool {
	switch s {
	case WatchStatusPending, WatchStatusWatching, WatchStatusCompleted:
		return true
	}
	return false
}

// WatchlistEntry is a title saved by a user. At most one entry exists per
// (UserID, ExternalID).
type WatchlistEntry struct {
	ID         string      `json:"id"`
	ExternalID string      `json:"externalId"`
	Title      string      `json:"title"`
	MediaType  MediaType   `json:"type"`
	UserID     string      `json:"userId"`
	Status     WatchStatus `json:"status"`
	PosterURL  *string     `json:"poster"`
	Year       string      `json:"year"`
	Rating     *string     `json:"rating"`
	Genres     []string    `json:"genres"`
	AddedAt    time.Time   `json:"addedAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// WatchlistAdd captures the data required to add a title. It accepts the full
// detail object returned by the movies endpoints; unknown fields are ignored.
type WatchlistAdd struct {
	ExternalID string    `json:"externalId"`
	Title      string    `json:"title"`
	MediaType  MediaType `json:"type"`
	PosterURL  *string   `json:"poster"`
	Year       string    `json:"year"`
	Rating     *string   `json:"rating"`
	Genres     []string  `json:"genres"`
}
