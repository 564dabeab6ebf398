package engine

import (
	"sort"

	"github.com/benbeisheim/minechess-engine/internal/model"
)

const (
	ttMoveScore      = 1_000_000
	captureBase      = 500_000
	promotionScore   = 400_000
	killerScore      = 300_000
	killerSlotStep   = 10_000
	historyCap       = 200_000
	developmentBonus = 5
)

type orderedMove struct {
	move  model.Move
	score int
}

// orderMoves sorts moves in place, best candidates first. Ties keep
// generation order so identical inputs always order identically.
func (s *searcher) orderMoves(moves []model.Move, ttMove model.Move, ply int) []model.Move {
	ordered := make([]orderedMove, len(moves))
	for i, move := range moves {
		ordered[i] = orderedMove{move: move, score: s.moveScore(move, ttMove, ply)}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].score > ordered[j].score
	})
	for i := range ordered {
		moves[i] = ordered[i].move
	}
	return moves
}

func (s *searcher) moveScore(move, ttMove model.Move, ply int) int {
	if move == ttMove {
		return ttMoveScore
	}
	b := s.board
	mover := b.PieceAt(move.From)
	if victim := b.CapturedBy(move); !victim.IsEmpty() {
		return captureBase + mvvLva(victim.Type, mover.Type)
	}
	if b.IsPromotion(move) {
		return promotionScore
	}
	if slot := s.killers.index(move, ply); slot >= 0 {
		return killerScore - slot*killerSlotStep
	}

	score := min(s.history.get(move), historyCap)
	score += 6 - centreDistance(move.To.X) - centreDistance(move.To.Y)
	if (mover.Type == model.Knight || mover.Type == model.Bishop) && move.From.Y == backRank(mover.Color) {
		score += developmentBonus
	}
	return score
}

// mvvLva ranks captures by most valuable victim, then least valuable attacker.
func mvvLva(victim, attacker model.PieceType) int {
	return PieceValue(victim)*10 - PieceValue(attacker)
}

func backRank(color model.PlayerColor) int {
	if color == model.PlayerColorWhite {
		return 7
	}
	return 0
}
