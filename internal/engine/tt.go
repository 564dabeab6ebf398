package engine

import (
	"sync"

	"github.com/benbeisheim/minechess-engine/internal/difficulty"
	"github.com/benbeisheim/minechess-engine/internal/model"
	"github.com/rs/zerolog/log"
)

type Bound uint8

const (
	BoundExact Bound = iota
	BoundLower
	BoundUpper
)

type TTEntry struct {
	Score    int
	Depth    int
	Bound    Bound
	BestMove model.Move
	Profile  ScoreProfile
}

// ScoreProfile is the part of the settings that changes what a position
// scores. Entries written under another profile are treated as misses.
type ScoreProfile struct {
	Weights         difficulty.EvalWeights
	QuiescenceDepth int
}

func profileOf(s difficulty.Settings) ScoreProfile {
	p := ScoreProfile{Weights: s.Weights}
	if s.Quiescence {
		p.QuiescenceDepth = s.QuiescenceDepth
	}
	return p
}

// TranspositionTable caches search results by position key. It is shared
// by consecutive searches and cleared wholesale once it reaches maxEntries.
type TranspositionTable struct {
	mu         sync.Mutex
	entries    map[string]TTEntry
	maxEntries int
	clears     int
}

func NewTranspositionTable(maxEntries int) *TranspositionTable {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &TranspositionTable{
		entries:    make(map[string]TTEntry),
		maxEntries: maxEntries,
	}
}

func (tt *TranspositionTable) Probe(key string) (TTEntry, bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	entry, ok := tt.entries[key]
	return entry, ok
}

func (tt *TranspositionTable) Store(key string, entry TTEntry) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if _, exists := tt.entries[key]; !exists && len(tt.entries) >= tt.maxEntries {
		log.Debug().Int("entries", len(tt.entries)).Msg("transposition-table-reset")
		tt.entries = make(map[string]TTEntry)
		tt.clears++
	}
	tt.entries[key] = entry
}

func (tt *TranspositionTable) Len() int {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return len(tt.entries)
}

// Clears counts wholesale resets since creation.
func (tt *TranspositionTable) Clears() int {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return tt.clears
}

func (tt *TranspositionTable) Clear() {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.entries = make(map[string]TTEntry)
}

// Mate scores are stored relative to the node so they stay valid when the
// same position is reached at a different ply.
func scoreToTT(score, ply int) int {
	switch {
	case score >= MateThreshold:
		return score + ply
	case score <= -MateThreshold:
		return score - ply
	}
	return score
}

func scoreFromTT(score, ply int) int {
	switch {
	case score >= MateThreshold:
		return score - ply
	case score <= -MateThreshold:
		return score + ply
	}
	return score
}
