package scheduler

// DefaultOptionCount is the number of wrong answers offered next to the correct one.
const DefaultOptionCount = 7

// OptionGenerator samples distractors for multiple choice questions.
type OptionGenerator struct {
	rng   Rand
	count int
}

// NewOptionGenerator creates a generator drawing count distractors per question.
func NewOptionGenerator(rng Rand, count int) *OptionGenerator {
	if count < 0 {
		count = 0
	}
	return &OptionGenerator{rng: rng, count: count}
}

// Generate returns min(count, |pool \ {correct}|) distinct wrong ids plus correct,
// in shuffled order.
func (g *OptionGenerator) Generate(correct int64, pool []int64) []int64 {
	seen := map[int64]struct{}{correct: {}}
	wrong := make([]int64, 0, len(pool))
	for _, id := range pool {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		wrong = append(wrong, id)
	}

	// Partial Fisher-Yates: the first n slots end up a uniform sample without replacement.
	n := min(g.count, len(wrong))
	for i := 0; i < n; i++ {
		j := i + g.rng.Intn(len(wrong)-i)
		wrong[i], wrong[j] = wrong[j], wrong[i]
	}

	options := make([]int64, 0, n+1)
	options = append(options, wrong[:n]...)
	options = append(options, correct)
	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}
