package engine

import (
	"github.com/benbeisheim/minechess-engine/internal/difficulty"
	"github.com/benbeisheim/minechess-engine/internal/model"
	"github.com/samber/lo"
)

// Minimax scores b to depth by visiting every node: no pruning, no cache and
// no quiescence. Terminal and repetition rules match Search, so for the same
// position and weights it returns the score of Search's best root move.
func Minimax(b *model.BoardState, depth int, w difficulty.EvalWeights, history []string) int {
	board := *b
	reps := lo.CountValues(history)
	return minimax(&board, max(depth, 1), 0, w, reps)
}

func minimax(b *model.BoardState, depth, ply int, w difficulty.EvalWeights, reps map[string]int) int {
	key := b.Key()
	if ply > 0 {
		if reps[key] >= 2 {
			return 0
		}
		if depth <= 0 {
			return Evaluate(b, w)
		}
	}

	moves := b.LegalMoves()
	if len(moves) == 0 {
		if b.InCheck(b.ToMove) {
			return -MateScore + ply
		}
		return 0
	}

	reps[key]++
	best := -Infinity
	for _, move := range moves {
		undo := b.MakeMove(move)
		best = max(best, -minimax(b, depth-1, ply+1, w, reps))
		b.UnmakeMove(undo)
	}
	reps[key]--
	return best
}
