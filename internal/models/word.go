package models

// Word is one English/native pair from the catalog.
type Word struct {
	ID        int64  `json:"id" db:"id"`
	English   string `json:"english" db:"english"`
	Native    string `json:"native" db:"native"`
	AudioPath string `json:"audio_path,omitempty" db:"audio_path"`
}

// WordSet is a named grouping that scopes which words a user is offered.
type WordSet struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
}
