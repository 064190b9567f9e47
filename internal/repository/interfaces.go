package repository

import (
	"context"
	"time"

	"github.com/vytor/wordflash/internal/models"
)

// WordRepository is the read side of the word catalog plus the operator writes used by import.
type WordRepository interface {
	// CandidateIDs returns the ids the user may be shown: words from the user's assigned
	// word-sets, or the whole catalog when no set is assigned.
	CandidateIDs(ctx context.Context, userID int64) ([]int64, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Word, error)
	Exists(ctx context.Context, id int64) (bool, error)
	UpsertWord(ctx context.Context, word models.Word) (int64, error)
	UpsertWordSet(ctx context.Context, set models.WordSet) (int64, error)
	FindWordSet(ctx context.Context, name string) (*models.WordSet, error)
	AddToWordSet(ctx context.Context, setID, wordID int64) error
	AssignWordSet(ctx context.Context, userID, setID int64) error
}

// UserRepository owns the per-user session counter row.
type UserRepository interface {
	Ensure(ctx context.Context, userID int64) (*models.User, error)
	Get(ctx context.Context, userID int64) (*models.User, error)
	SessionCounter(ctx context.Context, userID int64) (int64, error)
}

// ProgressRepository handles word progress, the event log and session counter writes.
type ProgressRepository interface {
	ListForUser(ctx context.Context, userID int64) (map[int64]models.WordProgress, error)
	Get(ctx context.Context, userID, wordID int64) (*models.WordProgress, error)
	// RecentlyShown returns up to n word ids, most recently shown first.
	RecentlyShown(ctx context.Context, userID int64, n int) ([]int64, error)
	FindShownByRequest(ctx context.Context, userID int64, requestID string) (*models.ShownResult, error)
	// CommitShown bumps the session counter, the progress row and appends the shown event
	// in one transaction.
	CommitShown(ctx context.Context, commit models.ShownCommit) (*models.ShownResult, error)
	// CommitAnswer applies an answer and appends the answered event in one transaction.
	CommitAnswer(ctx context.Context, commit models.AnswerCommit) (*models.WordProgress, error)
	EventsFor(ctx context.Context, userID, wordID int64) ([]models.UserWordEvent, error)
}

// ReconcileRepository backs the shown_count repair pass.
type ReconcileRepository interface {
	CountProgress(ctx context.Context) (int, error)
	ShownCountMismatches(ctx context.Context) ([]models.ShownMismatch, error)
	// ApplyCorrections overwrites shown_count with the live event count for each mismatch and
	// writes an audit row per change. Rows that changed since they were read are recounted.
	ApplyCorrections(ctx context.Context, mismatches []models.ShownMismatch, at time.Time) ([]models.Correction, error)
	SuspiciousRecords(ctx context.Context, ratio float64) ([]models.SuspiciousRecord, error)
}
