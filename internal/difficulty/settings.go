// Package difficulty maps a skill rating onto search and evaluation
// parameters and picks the final move from the searched candidates.
package difficulty

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	MinRating = 400
	MaxRating = 2400

	// QuiescenceRating is the lowest rating that searches captures past the horizon.
	QuiescenceRating = 1400

	MaxSearchDepth = 32
)

var ErrInvalidSettings = errors.New("invalid settings")

// EvalWeights scale each evaluation term. A zero weight disables the term.
type EvalWeights struct {
	Material      float64 `json:"material"`
	PieceSquare   float64 `json:"pieceSquare"`
	Mobility      float64 `json:"mobility"`
	PawnStructure float64 `json:"pawnStructure"`
	KingSafety    float64 `json:"kingSafety"`
}

// MaterialOnly weights count material and nothing else.
var MaterialOnly = EvalWeights{Material: 1}

// Settings is the immutable parameter bundle for one search.
type Settings struct {
	Rating                int         `json:"rating"`
	MaxDepth              int         `json:"maxDepth"`
	TimeBudgetMs          int64       `json:"timeBudgetMs"`
	NodeBudget            int64       `json:"nodeBudget"`
	Quiescence            bool        `json:"quiescence"`
	QuiescenceDepth       int         `json:"quiescenceDepth"`
	UseTranspositionTable bool        `json:"useTranspositionTable"`
	Weights               EvalWeights `json:"weights"`
	MistakeRate           float64     `json:"mistakeRate"`
	MistakeGap            int         `json:"mistakeGap"`
	Temperature           float64     `json:"temperature"`
	Window                int         `json:"window"`
	Seed                  int64       `json:"seed"`
}

// TimeBudget is the soft deadline measured from the start of the search.
// A non-positive budget means the deadline has already passed.
func (s Settings) TimeBudget() time.Duration {
	return time.Duration(s.TimeBudgetMs) * time.Millisecond
}

// RootMargin is how far below the best root score a move may fall and still
// be scored exactly. Moves outside it can never be selected.
func (s Settings) RootMargin() int {
	margin := s.Window
	if s.MistakeRate > 0 && 2*s.MistakeGap+mistakeTolerance > margin {
		margin = 2*s.MistakeGap + mistakeTolerance
	}
	return margin
}

func (s Settings) Validate() error {
	switch {
	case s.MaxDepth < 1 || s.MaxDepth > MaxSearchDepth:
		return fmt.Errorf("%w: maxDepth %d outside [1, %d]", ErrInvalidSettings, s.MaxDepth, MaxSearchDepth)
	case s.NodeBudget < 0:
		return fmt.Errorf("%w: negative node budget", ErrInvalidSettings)
	case s.Quiescence && s.QuiescenceDepth < 1:
		return fmt.Errorf("%w: quiescence enabled with depth %d", ErrInvalidSettings, s.QuiescenceDepth)
	case s.MistakeRate < 0 || s.MistakeRate > 1 || math.IsNaN(s.MistakeRate):
		return fmt.Errorf("%w: mistakeRate %v outside [0, 1]", ErrInvalidSettings, s.MistakeRate)
	case s.MistakeGap < 0 || s.Window < 0:
		return fmt.Errorf("%w: negative mistake gap or window", ErrInvalidSettings)
	case s.Temperature < 0 || math.IsNaN(s.Temperature):
		return fmt.Errorf("%w: negative temperature", ErrInvalidSettings)
	}
	w := s.Weights
	for _, v := range []float64{w.Material, w.PieceSquare, w.Mobility, w.PawnStructure, w.KingSafety} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: negative evaluation weight", ErrInvalidSettings)
		}
	}
	return nil
}
