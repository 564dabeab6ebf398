package engine

import "github.com/benbeisheim/minechess-engine/internal/model"

const killersPerPly = 2

// killerTable keeps, per ply, the last quiet moves that caused a cutoff.
type killerTable [MaxPly][killersPerPly]model.Move

func newKillerTable() *killerTable {
	kt := &killerTable{}
	for ply := range kt {
		for i := range kt[ply] {
			kt[ply][i] = model.NullMove
		}
	}
	return kt
}

func (kt *killerTable) add(move model.Move, ply int) {
	if ply >= MaxPly || kt[ply][0] == move {
		return
	}
	kt[ply][1] = kt[ply][0]
	kt[ply][0] = move
}

// index returns the killer slot holding move, or -1.
func (kt *killerTable) index(move model.Move, ply int) int {
	if ply >= MaxPly {
		return -1
	}
	for i, killer := range kt[ply] {
		if killer == move {
			return i
		}
	}
	return -1
}

// historyTable accumulates depth² per (from, to) for every cutoff move.
type historyTable [64][64]int

func (ht *historyTable) add(move model.Move, depth int) {
	ht[move.From.Index()][move.To.Index()] += depth * depth
}

func (ht *historyTable) get(move model.Move) int {
	return ht[move.From.Index()][move.To.Index()]
}
