package engine

import (
	"github.com/benbeisheim/minechess-engine/internal/model"
	"github.com/samber/lo"
)

// quiesce extends the search past the horizon with captures and promotions
// until the position is quiet. Check-giving moves are tried on the first
// quiescence ply only, which keeps the extension from chasing perpetual checks.
func (s *searcher) quiesce(alpha, beta, ply, qdepth int) int {
	if qdepth > 0 {
		s.nodes++
		if s.stop() {
			return MaterialOnly(s.board)
		}
	}

	standPat := Evaluate(s.board, s.settings.Weights)
	if qdepth >= s.settings.QuiescenceDepth || ply >= MaxPly {
		return standPat
	}

	moves := s.board.LegalMoves()
	if len(moves) == 0 {
		if s.board.InCheck(s.board.ToMove) {
			return -MateScore + ply
		}
		return 0
	}
	if standPat >= beta {
		return standPat
	}
	alpha = max(alpha, standPat)

	noisy := lo.Filter(moves, func(m model.Move, _ int) bool {
		return s.board.IsCapture(m) || s.board.IsPromotion(m) || (qdepth == 0 && s.board.GivesCheck(m))
	})
	noisy = s.orderMoves(noisy, model.NullMove, ply)

	best := standPat
	for _, move := range noisy {
		if s.stop() {
			break
		}
		undo := s.board.MakeMove(move)
		score := -s.quiesce(-beta, -alpha, ply+1, qdepth+1)
		s.board.UnmakeMove(undo)
		if s.clock.Tripped() {
			break
		}
		best = max(best, score)
		alpha = max(alpha, score)
		if alpha >= beta {
			break
		}
	}
	return best
}
