package models

import "time"

// User holds the per-user logical clock. Identity itself is owned elsewhere;
// rows are created lazily the first time an id is seen.
type User struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username,omitempty"`
	WordsShownCounter int64     `json:"words_shown_counter"`
	CreatedAt         time.Time `json:"created_at"`
}
