package models

import "time"

// WordProgress is the aggregate state for one (user, word) pair.
type WordProgress struct {
	UserID            int64     `json:"user_id" db:"user_id"`
	WordID            int64     `json:"word_id" db:"word_id"`
	ShownCount        int       `json:"shown_count" db:"shown_count"`
	CorrectCount      int       `json:"correct_count" db:"correct_count"`
	ErrorCount        int       `json:"error_count" db:"error_count"`
	LastShown         time.Time `json:"last_shown" db:"last_shown"`
	LastShownPosition int64     `json:"last_shown_position" db:"last_shown_position"`
	ExpErrorRate      float64   `json:"exp_error_rate" db:"exp_error_rate"`
}

// Answered returns correct_count + error_count.
func (p WordProgress) Answered() int {
	return p.CorrectCount + p.ErrorCount
}

// ShownCommit is everything written when a word is presented.
type ShownCommit struct {
	UserID    int64
	WordID    int64
	Options   []int64
	RequestID string
	At        time.Time
}

// ShownResult is what the store reports back after a shown commit.
// Replayed is set when RequestID had already been recorded; nothing was applied again.
type ShownResult struct {
	Progress WordProgress
	Position int64
	WordID   int64
	Options  []int64
	Replayed bool
}

// AnswerCommit is everything written when an answer arrives.
type AnswerCommit struct {
	UserID    int64
	WordID    int64
	IsCorrect bool
	At        time.Time
}

// NextWord is the response to a "next word" request.
type NextWord struct {
	Word      Word   `json:"word"`
	Options   []Word `json:"options"`
	CorrectID int64  `json:"correct_id"`
	Position  int64  `json:"position"`
	Replayed  bool   `json:"replayed,omitempty"`
}
