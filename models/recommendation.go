package models

import "time"

// Recommendation is one persisted row of a generated recommendation batch.
type Recommendation struct {
	UserID      string    `json:"userId"`
	Item        MediaItem `json:"item"`
	Position    int       `json:"position"`
	Score       float64   `json:"score"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generatedAt"`
}
