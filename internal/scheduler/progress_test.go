package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/scheduler"
)

func TestApplyShown_NewRow(t *testing.T) {
	now := time.Now()

	p := scheduler.ApplyShown(nil, 1, 2, 1, now)

	assert.Equal(t, int64(1), p.UserID)
	assert.Equal(t, int64(2), p.WordID)
	assert.Equal(t, 1, p.ShownCount)
	assert.Equal(t, 0, p.CorrectCount)
	assert.Equal(t, 0, p.ErrorCount)
	assert.Equal(t, int64(1), p.LastShownPosition)
	assert.Equal(t, 0.5, p.ExpErrorRate)
	assert.Equal(t, now, p.LastShown)
}

func TestApplyShown_ExistingRow(t *testing.T) {
	prev := models.WordProgress{UserID: 1, WordID: 2, ShownCount: 3, CorrectCount: 2, ExpErrorRate: 0.25, LastShownPosition: 4}

	p := scheduler.ApplyShown(&prev, 1, 2, 9, time.Now())

	assert.Equal(t, 4, p.ShownCount)
	assert.Equal(t, int64(9), p.LastShownPosition)
	assert.Equal(t, 2, p.CorrectCount, "answers are not touched on exposure")
	assert.Equal(t, 0.25, p.ExpErrorRate)
	assert.Equal(t, 3, prev.ShownCount, "input is not mutated")
}

func TestApplyAnswer_IncrementsExactlyOneCounter(t *testing.T) {
	base := models.WordProgress{ShownCount: 2, CorrectCount: 1, ErrorCount: 1, ExpErrorRate: 0.5}

	correct := scheduler.ApplyAnswer(base, true)
	assert.Equal(t, 2, correct.CorrectCount)
	assert.Equal(t, 1, correct.ErrorCount)
	assert.Equal(t, 2, correct.ShownCount)
	assert.Equal(t, 0.25, correct.ExpErrorRate)

	wrong := scheduler.ApplyAnswer(base, false)
	assert.Equal(t, 1, wrong.CorrectCount)
	assert.Equal(t, 2, wrong.ErrorCount)
	assert.Equal(t, 2, wrong.ShownCount)
	assert.Equal(t, 0.75, wrong.ExpErrorRate)
}

func TestApplyAnswer_ErrorRateStaysInBounds(t *testing.T) {
	answers := []bool{false, false, true, false, true, true, true, false, false, false, true}
	p := scheduler.ApplyShown(nil, 1, 1, 1, time.Now())

	for _, a := range answers {
		prev := p.ExpErrorRate
		p = scheduler.ApplyAnswer(p, a)

		assert.Equal(t, (scheduler.Outcome(a)+prev)/2, p.ExpErrorRate)
		assert.GreaterOrEqual(t, p.ExpErrorRate, 0.0)
		assert.LessOrEqual(t, p.ExpErrorRate, 1.0)
	}
	assert.Equal(t, 1, p.ShownCount)
	assert.Equal(t, len(answers), p.Answered())
}

func TestNewProgressFromAnswer(t *testing.T) {
	tests := []struct {
		name      string
		isCorrect bool
		rate      float64
		correct   int
		errors    int
	}{
		{name: "correct", isCorrect: true, rate: 0.0, correct: 1, errors: 0},
		{name: "incorrect", isCorrect: false, rate: 1.0, correct: 0, errors: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scheduler.NewProgressFromAnswer(3, 4, tt.isCorrect, 12)

			assert.Equal(t, 1, p.ShownCount)
			assert.Equal(t, tt.correct, p.CorrectCount)
			assert.Equal(t, tt.errors, p.ErrorCount)
			assert.Equal(t, tt.rate, p.ExpErrorRate)
			assert.Equal(t, int64(12), p.LastShownPosition)
			assert.True(t, p.LastShown.IsZero())
		})
	}
}

func TestIsSuspicious(t *testing.T) {
	tests := []struct {
		name   string
		shown  int
		answer int
		want   bool
	}{
		{name: "balanced", shown: 5, answer: 5, want: false},
		{name: "at threshold", shown: 9, answer: 5, want: false},
		{name: "double counted", shown: 10, answer: 5, want: true},
		{name: "shown never answered", shown: 1, answer: 0, want: true},
		{name: "empty", shown: 0, answer: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scheduler.IsSuspicious(tt.shown, tt.answer))
		})
	}
}
