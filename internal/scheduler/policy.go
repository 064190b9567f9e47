package scheduler

import (
	"errors"
	"math"

	"github.com/vytor/wordflash/internal/models"
)

const (
	DefaultAlpha         = 2.0
	DefaultUnseenOffset  = 100.0
	DefaultJitterCeiling = 0.01

	// NeutralErrorRate is assumed for words the user has never been shown.
	NeutralErrorRate = 0.5
)

// ErrEmptyPool is returned when there is nothing to select from.
var ErrEmptyPool = errors.New("empty candidate pool")

// Candidate is a word eligible for selection together with the user's progress on it.
// Progress is nil when the word has never been shown to the user.
type Candidate struct {
	WordID   int64
	Progress *models.WordProgress
}

// Selection describes the chosen word and the terms that produced its weight.
type Selection struct {
	WordID    int64
	Age       float64
	ErrorRate float64
	Weight    float64
	Pool      int  // size of the pool after the exclusion window
	Widened   bool // exclusion emptied the pool and the unfiltered pool was used
}

// Policy picks the next word by weight = ln(age) + errorRate*Alpha + jitter.
type Policy struct {
	Alpha         float64
	UnseenOffset  float64
	JitterCeiling float64
	rng           Rand
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

func WithAlpha(alpha float64) PolicyOption {
	return func(p *Policy) { p.Alpha = alpha }
}

func WithUnseenOffset(offset float64) PolicyOption {
	return func(p *Policy) { p.UnseenOffset = offset }
}

func WithJitterCeiling(ceiling float64) PolicyOption {
	return func(p *Policy) { p.JitterCeiling = ceiling }
}

// WithRand injects the random source used for jitter.
func WithRand(r Rand) PolicyOption {
	return func(p *Policy) { p.rng = r }
}

// NewPolicy returns a Policy with the default constants unless overridden.
func NewPolicy(opts ...PolicyOption) *Policy {
	p := &Policy{
		Alpha:         DefaultAlpha,
		UnseenOffset:  DefaultUnseenOffset,
		JitterCeiling: DefaultJitterCeiling,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = NewTimeSeededRand()
	}
	return p
}

// WithAlpha returns a copy of the policy with a different difficulty emphasis.
// The copy shares the random source.
func (p *Policy) WithAlpha(alpha float64) *Policy {
	cp := *p
	cp.Alpha = alpha
	return &cp
}

// Rand exposes the policy's random source so the distractor generator can share it.
func (p *Policy) Rand() Rand {
	return p.rng
}

// Age is the number of words shown since the word last appeared. Unseen words get
// the current counter plus UnseenOffset so they surface early.
func (p *Policy) Age(counter int64, progress *models.WordProgress) float64 {
	if progress == nil {
		return float64(max(1, counter)) + p.UnseenOffset
	}
	return float64(max(1, counter-progress.LastShownPosition))
}

// ErrorRate returns the smoothed error rate, or the neutral midpoint for unseen words.
func ErrorRate(progress *models.WordProgress) float64 {
	if progress == nil {
		return NeutralErrorRate
	}
	return progress.ExpErrorRate
}

// Weight combines recency and difficulty. Both terms are additive so neither swamps the other.
func (p *Policy) Weight(age, errorRate, jitter float64) float64 {
	return math.Log(age) + errorRate*p.Alpha + jitter
}

func (p *Policy) jitter() float64 {
	if p.JitterCeiling <= 0 {
		return 0
	}
	return p.rng.Float64() * p.JitterCeiling
}

// SelectNext picks the highest weighted candidate whose id is not in recent.
// If the exclusion window removes every candidate the unfiltered pool is used instead.
func (p *Policy) SelectNext(candidates []Candidate, recent []int64, counter int64) (Selection, error) {
	if len(candidates) == 0 {
		return Selection{}, ErrEmptyPool
	}

	pool := excludeRecent(candidates, recent)
	widened := false
	if len(pool) == 0 {
		pool = candidates
		widened = true
	}

	if len(pool) == 1 {
		c := pool[0]
		return Selection{
			WordID:    c.WordID,
			Age:       p.Age(counter, c.Progress),
			ErrorRate: ErrorRate(c.Progress),
			Pool:      1,
			Widened:   widened,
		}, nil
	}

	best := Selection{Weight: math.Inf(-1)}
	for _, c := range pool {
		age := p.Age(counter, c.Progress)
		rate := ErrorRate(c.Progress)
		w := p.Weight(age, rate, p.jitter())
		if w > best.Weight {
			best = Selection{WordID: c.WordID, Age: age, ErrorRate: rate, Weight: w}
		}
	}
	best.Pool = len(pool)
	best.Widened = widened
	return best, nil
}

func excludeRecent(candidates []Candidate, recent []int64) []Candidate {
	if len(recent) == 0 {
		return candidates
	}
	skip := make(map[int64]struct{}, len(recent))
	for _, id := range recent {
		skip[id] = struct{}{}
	}
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := skip[c.WordID]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
