package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/wordflash/internal/scheduler"
)

func pool(n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	return ids
}

func countOf(ids []int64, id int64) int {
	n := 0
	for _, v := range ids {
		if v == id {
			n++
		}
	}
	return n
}

func assertUnique(t *testing.T, ids []int64) {
	t.Helper()
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		_, dup := set[id]
		assert.False(t, dup, "duplicate option %d", id)
		set[id] = struct{}{}
	}
}

func TestGenerate_LargePool(t *testing.T) {
	gen := scheduler.NewOptionGenerator(scheduler.NewRand(1), scheduler.DefaultOptionCount)

	for i := 0; i < 50; i++ {
		options := gen.Generate(5, pool(30))

		assert.Len(t, options, 8)
		assert.Equal(t, 1, countOf(options, 5), "correct answer appears exactly once")
		assertUnique(t, options)
	}
}

func TestGenerate_SmallPool(t *testing.T) {
	gen := scheduler.NewOptionGenerator(scheduler.NewRand(2), scheduler.DefaultOptionCount)

	options := gen.Generate(2, pool(3))

	assert.ElementsMatch(t, []int64{1, 2, 3}, options)
}

func TestGenerate_OnlyCorrectWord(t *testing.T) {
	gen := scheduler.NewOptionGenerator(scheduler.NewRand(3), scheduler.DefaultOptionCount)

	assert.Equal(t, []int64{4}, gen.Generate(4, []int64{4}))
	assert.Equal(t, []int64{4}, gen.Generate(4, nil))
}

func TestGenerate_IgnoresDuplicatesInPool(t *testing.T) {
	gen := scheduler.NewOptionGenerator(scheduler.NewRand(4), scheduler.DefaultOptionCount)

	options := gen.Generate(1, []int64{1, 1, 2, 2, 3, 3})

	assert.ElementsMatch(t, []int64{1, 2, 3}, options)
}

func TestGenerate_CountRespected(t *testing.T) {
	gen := scheduler.NewOptionGenerator(scheduler.NewRand(5), 3)

	options := gen.Generate(10, pool(20))

	assert.Len(t, options, 4)
	assert.Contains(t, options, int64(10))
	assertUnique(t, options)
}

func TestGenerate_NegativeCountMeansNoDistractors(t *testing.T) {
	gen := scheduler.NewOptionGenerator(scheduler.NewRand(6), -2)

	assert.Equal(t, []int64{7}, gen.Generate(7, pool(10)))
}

func TestGenerate_CorrectAnswerPositionVaries(t *testing.T) {
	gen := scheduler.NewOptionGenerator(scheduler.NewRand(7), scheduler.DefaultOptionCount)

	positions := map[int]bool{}
	for i := 0; i < 100; i++ {
		options := gen.Generate(1, pool(10))
		for idx, id := range options {
			if id == 1 {
				positions[idx] = true
			}
		}
	}

	assert.Greater(t, len(positions), 1, "correct answer should not always land in the same slot")
}
