package scheduler

import (
	"time"

	"github.com/vytor/wordflash/internal/models"
)

// SuspiciousRatio flags rows where shown_count exceeds this multiple of answered count.
const SuspiciousRatio = 1.8

// Outcome maps an answer to the error signal: 0 for correct, 1 for incorrect.
func Outcome(isCorrect bool) float64 {
	if isCorrect {
		return 0
	}
	return 1
}

// SmoothErrorRate folds one answer into the moving average with a half-life of one observation.
func SmoothErrorRate(old float64, isCorrect bool) float64 {
	return (Outcome(isCorrect) + old) / 2
}

// ApplyShown records one exposure at the given counter position. A nil progress
// creates the row with shown_count=1 and the neutral error rate.
func ApplyShown(progress *models.WordProgress, userID, wordID, position int64, now time.Time) models.WordProgress {
	if progress == nil {
		return models.WordProgress{
			UserID:            userID,
			WordID:            wordID,
			ShownCount:        1,
			LastShown:         now,
			LastShownPosition: position,
			ExpErrorRate:      NeutralErrorRate,
		}
	}
	p := *progress
	p.ShownCount++
	p.LastShown = now
	p.LastShownPosition = position
	return p
}

// ApplyAnswer increments exactly one of correct/error and updates the error rate.
// shown_count is left alone: it was counted when the word was selected.
func ApplyAnswer(progress models.WordProgress, isCorrect bool) models.WordProgress {
	if isCorrect {
		progress.CorrectCount++
	} else {
		progress.ErrorCount++
	}
	progress.ExpErrorRate = SmoothErrorRate(progress.ExpErrorRate, isCorrect)
	return progress
}

// NewProgressFromAnswer builds the row for an answer that arrives without a prior exposure row.
// LastShown stays zero so that a real exposure at the same position ranks as more recent.
func NewProgressFromAnswer(userID, wordID int64, isCorrect bool, position int64) models.WordProgress {
	p := models.WordProgress{
		UserID:            userID,
		WordID:            wordID,
		ShownCount:        1,
		LastShownPosition: position,
		ExpErrorRate:      Outcome(isCorrect),
	}
	if isCorrect {
		p.CorrectCount = 1
	} else {
		p.ErrorCount = 1
	}
	return p
}

// IsSuspicious reports shown counts that look like a double-increment rather than drift.
func IsSuspicious(shown, answered int) bool {
	return float64(shown) > SuspiciousRatio*float64(answered)
}
