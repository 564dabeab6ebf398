package difficulty

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/benbeisheim/minechess-engine/internal/model"
	"github.com/samber/lo"
)

// Choice records which branch of the selection policy produced the move.
type Choice string

const (
	ChoiceNone     Choice = "none"
	ChoiceBest     Choice = "best"
	ChoiceMistake  Choice = "mistake"
	ChoiceWeighted Choice = "weighted"
)

// mistakeTolerance is how far from the mistake target a candidate may score.
const mistakeTolerance = 50

// NewRand returns the selection RNG. A zero seed draws from the clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// SelectMove picks the move to play from the root candidates of the deepest
// completed iteration.
func SelectMove(s Settings, ranked []model.ScoredMove, rng *rand.Rand) (model.ScoredMove, Choice) {
	if len(ranked) == 0 {
		return model.ScoredMove{Move: model.NullMove}, ChoiceNone
	}
	ranked = sortByScore(ranked)
	if len(ranked) == 1 {
		return ranked[0], ChoiceBest
	}

	if s.MistakeRate > 0 && rng.Float64() < s.MistakeRate {
		if pick, ok := pickMistake(s, ranked, rng); ok {
			return pick, ChoiceMistake
		}
		return ranked[0], ChoiceBest
	}
	return pickWeighted(s, ranked, rng)
}

func sortByScore(ranked []model.ScoredMove) []model.ScoredMove {
	sorted := append([]model.ScoredMove(nil), ranked...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// pickMistake looks for a move about MistakeGap below the best. Without one
// inside the tolerance it takes the alternative nearest the target, unless
// that would lose more than twice the gap. Scores further than
// Settings.RootMargin below the best are only upper bounds.
func pickMistake(s Settings, ranked []model.ScoredMove, rng *rand.Rand) (model.ScoredMove, bool) {
	best := ranked[0]
	target := best.Score - s.MistakeGap
	alternatives := ranked[1:]

	candidates := lo.Filter(alternatives, func(m model.ScoredMove, _ int) bool {
		return absInt(m.Score-target) <= mistakeTolerance
	})
	if len(candidates) > 0 {
		return candidates[rng.Intn(len(candidates))], true
	}

	nearest := lo.MinBy(alternatives, func(a, b model.ScoredMove) bool {
		return absInt(a.Score-target) < absInt(b.Score-target)
	})
	if best.Score-nearest.Score > 2*s.MistakeGap+mistakeTolerance {
		return model.ScoredMove{}, false
	}
	return nearest, true
}

// pickWeighted samples among moves within Window of the best, weighting
// each by exp((score-best)/Temperature).
func pickWeighted(s Settings, ranked []model.ScoredMove, rng *rand.Rand) (model.ScoredMove, Choice) {
	best := ranked[0]
	window := lo.Filter(ranked, func(m model.ScoredMove, _ int) bool {
		return m.Score >= best.Score-s.Window
	})
	if len(window) == 1 || s.Temperature <= 0 {
		return best, ChoiceBest
	}

	weights := lo.Map(window, func(m model.ScoredMove, _ int) float64 {
		return math.Exp(float64(m.Score-best.Score) / s.Temperature)
	})
	total := lo.Sum(weights)
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			if i == 0 {
				return best, ChoiceBest
			}
			return window[i], ChoiceWeighted
		}
	}
	return best, ChoiceBest
}
