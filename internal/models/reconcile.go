package models

import "time"

// ShownMismatch is a progress row whose shown_count disagrees with the event log.
type ShownMismatch struct {
	UserID      int64 `json:"user_id" db:"user_id"`
	WordID      int64 `json:"word_id" db:"word_id"`
	StoredShown int   `json:"stored_shown" db:"stored_shown"`
	EventShown  int   `json:"event_shown" db:"event_shown"`
}

// Correction is the audit record of one reconciliation overwrite.
type Correction struct {
	UserID      int64     `json:"user_id" db:"user_id"`
	WordID      int64     `json:"word_id" db:"word_id"`
	Field       string    `json:"field" db:"field"`
	OldValue    int       `json:"old_value" db:"old_value"`
	NewValue    int       `json:"new_value" db:"new_value"`
	CorrectedAt time.Time `json:"corrected_at" db:"corrected_at"`
}

// SuspiciousRecord is a row where shown_count is implausibly high relative to answers.
type SuspiciousRecord struct {
	UserID       int64 `json:"user_id" db:"user_id"`
	WordID       int64 `json:"word_id" db:"word_id"`
	ShownCount   int   `json:"shown_count" db:"shown_count"`
	CorrectCount int   `json:"correct_count" db:"correct_count"`
	ErrorCount   int   `json:"error_count" db:"error_count"`
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Checked     int                `json:"checked"`
	Fixed       int                `json:"fixed_count"`
	Corrections []Correction       `json:"corrections"`
	Suspicious  []SuspiciousRecord `json:"suspicious_records"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
}
