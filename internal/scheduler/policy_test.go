package scheduler_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/scheduler"
)

func seeded(seed int64) scheduler.PolicyOption {
	return scheduler.WithRand(rand.New(rand.NewSource(seed)))
}

func seen(wordID, position int64, rate float64) scheduler.Candidate {
	return scheduler.Candidate{
		WordID: wordID,
		Progress: &models.WordProgress{
			WordID:            wordID,
			ShownCount:        1,
			LastShownPosition: position,
			ExpErrorRate:      rate,
		},
	}
}

func unseen(wordID int64) scheduler.Candidate {
	return scheduler.Candidate{WordID: wordID}
}

func TestAge(t *testing.T) {
	p := scheduler.NewPolicy(seeded(1))

	assert.Equal(t, 115.0, p.Age(15, nil), "unseen words are offset past the counter")
	assert.Equal(t, 101.0, p.Age(0, nil), "counter is clamped to at least 1")
	assert.Equal(t, 5.0, p.Age(15, &models.WordProgress{LastShownPosition: 10}))
	assert.Equal(t, 1.0, p.Age(10, &models.WordProgress{LastShownPosition: 10}), "age never drops below 1")
}

func TestErrorRate_UnseenIsNeutral(t *testing.T) {
	assert.Equal(t, 0.5, scheduler.ErrorRate(nil))
	assert.Equal(t, 0.9, scheduler.ErrorRate(&models.WordProgress{ExpErrorRate: 0.9}))
}

func TestWeight(t *testing.T) {
	p := scheduler.NewPolicy(seeded(1))

	assert.InDelta(t, math.Log(5)+1.8, p.Weight(5, 0.9, 0), 1e-9)
	assert.InDelta(t, math.Log(115)+1.0+0.005, p.Weight(115, 0.5, 0.005), 1e-9)
}

func TestSelectNext_FreshWordBeatsRecentHardWord(t *testing.T) {
	p := scheduler.NewPolicy(seeded(42))
	candidates := []scheduler.Candidate{
		seen(1, 10, 0.9),
		unseen(2),
	}

	sel, err := p.SelectNext(candidates, nil, 15)
	require.NoError(t, err)

	assert.Equal(t, int64(2), sel.WordID)
	assert.Equal(t, 115.0, sel.Age)
	assert.Equal(t, 0.5, sel.ErrorRate)
	assert.InDelta(t, 5.74, sel.Weight, 0.02)
	assert.Equal(t, 2, sel.Pool)
	assert.False(t, sel.Widened)
}

func TestSelectNext_SameSeedSameChoice(t *testing.T) {
	candidates := []scheduler.Candidate{unseen(1), unseen(2), unseen(3), unseen(4)}

	a := scheduler.NewPolicy(seeded(7))
	b := scheduler.NewPolicy(seeded(7))
	for i := 0; i < 20; i++ {
		selA, err := a.SelectNext(candidates, nil, int64(i))
		require.NoError(t, err)
		selB, err := b.SelectNext(candidates, nil, int64(i))
		require.NoError(t, err)
		assert.Equal(t, selA.WordID, selB.WordID)
	}
}

func TestSelectNext_JitterBreaksTies(t *testing.T) {
	p := scheduler.NewPolicy(seeded(3))
	candidates := []scheduler.Candidate{unseen(1), unseen(2)}

	picked := map[int64]int{}
	for i := 0; i < 200; i++ {
		sel, err := p.SelectNext(candidates, nil, 0)
		require.NoError(t, err)
		picked[sel.WordID]++
	}

	assert.Positive(t, picked[1])
	assert.Positive(t, picked[2])
}

func TestSelectNext_NeverPicksRecentWhenAlternativesExist(t *testing.T) {
	p := scheduler.NewPolicy(seeded(11))

	var candidates []scheduler.Candidate
	for id := int64(1); id <= 10; id++ {
		// recently shown words are also the hardest, so they would win without the exclusion
		if id <= 5 {
			candidates = append(candidates, seen(id, 100, 1.0))
		} else {
			candidates = append(candidates, seen(id, 1, 0.0))
		}
	}
	recent := []int64{1, 2, 3, 4, 5}

	for i := 0; i < 100; i++ {
		sel, err := p.SelectNext(candidates, recent, 101)
		require.NoError(t, err)
		assert.NotContains(t, recent, sel.WordID)
	}
}

func TestSelectNext_FallsBackWhenExclusionEmptiesPool(t *testing.T) {
	p := scheduler.NewPolicy(seeded(5))
	candidates := []scheduler.Candidate{seen(1, 3, 0.2), seen(2, 4, 0.9)}

	sel, err := p.SelectNext(candidates, []int64{1, 2}, 5)
	require.NoError(t, err)

	assert.Contains(t, []int64{1, 2}, sel.WordID)
	assert.True(t, sel.Widened)
	assert.Equal(t, 2, sel.Pool)
}

func TestSelectNext_SingleCandidate(t *testing.T) {
	p := scheduler.NewPolicy(seeded(5))

	sel, err := p.SelectNext([]scheduler.Candidate{unseen(9)}, []int64{9}, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(9), sel.WordID)
	assert.Equal(t, 1, sel.Pool)
}

func TestSelectNext_EmptyPool(t *testing.T) {
	p := scheduler.NewPolicy(seeded(5))

	_, err := p.SelectNext(nil, nil, 0)
	assert.ErrorIs(t, err, scheduler.ErrEmptyPool)
}

func TestSelectNext_AlphaShiftsTowardDifficulty(t *testing.T) {
	// same age, different error rates: the harder word wins once alpha is non-zero
	candidates := []scheduler.Candidate{seen(1, 0, 0.1), seen(2, 0, 0.8)}

	sel, err := scheduler.NewPolicy(seeded(1)).SelectNext(candidates, nil, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sel.WordID)

	flat := scheduler.NewPolicy(seeded(1), scheduler.WithAlpha(0), scheduler.WithJitterCeiling(0))
	sel, err = flat.SelectNext(candidates, nil, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sel.WordID, "without alpha or jitter the first of equal weights is kept")
}

func TestPolicy_WithAlphaCopies(t *testing.T) {
	p := scheduler.NewPolicy(seeded(1))
	q := p.WithAlpha(0.5)

	assert.Equal(t, scheduler.DefaultAlpha, p.Alpha)
	assert.Equal(t, 0.5, q.Alpha)
	assert.Same(t, p.Rand(), q.Rand())
}
