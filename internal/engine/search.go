// Package engine scores positions and searches them with iterative deepening
// negamax under a cooperative deadline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/benbeisheim/minechess-engine/internal/difficulty"
	"github.com/benbeisheim/minechess-engine/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	MaxPly   = 64
	Infinity = 1_000_000
	// MateScore is the score of delivering mate at the root. A mate found n
	// plies deep scores MateScore-n so shorter mates are preferred.
	MateScore     = 100_000
	MateThreshold = MateScore - MaxPly
)

var (
	ErrInvalidRequest = errors.New("invalid search request")
	ErrNotEngineTurn  = errors.New("it is not the engine's turn")
)

type Request struct {
	Position *model.BoardState
	// EngineColor is optional. When set it must match the side to move.
	EngineColor model.PlayerColor
	// History holds the keys of positions played before this one, oldest first.
	History  []string
	Settings difficulty.Settings
}

func (r Request) Validate() error {
	if r.Position == nil {
		return fmt.Errorf("%w: position is missing", ErrInvalidRequest)
	}
	if err := r.Position.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if r.EngineColor.IsValid() && r.EngineColor != r.Position.ToMove {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrNotEngineTurn)
	}
	if err := r.Settings.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Progress is published once per completed iteration.
type Progress struct {
	Depth     int        `json:"depth"`
	Nodes     int64      `json:"nodes"`
	Score     int        `json:"score"`
	BestMove  model.Move `json:"bestMove"`
	ElapsedMs int64      `json:"elapsedMs"`
}

type Result struct {
	Move     model.Move
	Score    int
	Depth    int
	Nodes    int64
	Elapsed  time.Duration
	Choice   difficulty.Choice
	TimedOut bool
	// Ranked is the root move list of the deepest completed iteration, best first.
	Ranked []model.ScoredMove
}

// Engine runs searches. Only the transposition table outlives a search, so
// an Engine may be reused but must not run two searches at once.
type Engine struct {
	tt *TranspositionTable
}

func New(ttMaxEntries int) *Engine {
	return &Engine{tt: NewTranspositionTable(ttMaxEntries)}
}

func (e *Engine) TranspositionTable() *TranspositionTable {
	return e.tt
}

// Search picks a move for the side to move. Running out of time, nodes or
// context is not an error: the result of the deepest completed iteration is
// returned with TimedOut set.
func (e *Engine) Search(ctx context.Context, req Request, progress func(Progress)) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	board := *req.Position
	settings := req.Settings

	s := &searcher{
		board:    &board,
		settings: settings,
		killers:  newKillerTable(),
		history:  &historyTable{},
		reps:     lo.CountValues(req.History),
		profile:  profileOf(settings),
		clock:    NewClock(ctx, settings.TimeBudget(), settings.NodeBudget),
	}
	if settings.UseTranspositionTable {
		s.tt = e.tt
	}

	ranked, depth := s.iterate(progress)

	result := Result{
		Depth:    depth,
		Nodes:    s.nodes,
		TimedOut: s.clock.Tripped(),
		Ranked:   ranked,
	}
	if len(ranked) == 0 {
		result.Move, result.Score, result.Choice = model.NullMove, terminalScore(&board), difficulty.ChoiceNone
	} else {
		pick, choice := difficulty.SelectMove(settings, ranked, difficulty.NewRand(settings.Seed))
		result.Move, result.Score, result.Choice = pick.Move, pick.Score, choice
	}
	result.Elapsed = s.clock.Elapsed()

	log.Debug().
		Str("move", result.Move.String()).
		Int("score", result.Score).
		Int("depth", result.Depth).
		Int64("nodes", result.Nodes).
		Str("choice", string(result.Choice)).
		Bool("timed_out", result.TimedOut).
		Dur("elapsed", result.Elapsed).
		Msg("search-finished")
	return result, nil
}

// Fallback answers without searching, ranking the root moves by material
// alone. It only reads req.Position and may run alongside a search of it.
func Fallback(req Request) Result {
	board := *req.Position
	s := &searcher{board: &board, killers: newKillerTable(), history: &historyTable{}}
	result := Result{Move: model.NullMove, Choice: difficulty.ChoiceNone, TimedOut: true}

	moves := s.orderMoves(board.LegalMoves(), model.NullMove, 0)
	if len(moves) == 0 {
		result.Score = terminalScore(&board)
		return result
	}
	result.Ranked = s.materialRanking(moves)
	result.Move, result.Score = result.Ranked[0].Move, result.Ranked[0].Score
	result.Nodes = s.nodes
	result.Choice = difficulty.ChoiceBest
	return result
}

// terminalScore scores a position with no legal moves.
func terminalScore(b *model.BoardState) int {
	if b.InCheck(b.ToMove) {
		return -MateScore
	}
	return 0
}

// searcher is the state of one search session.
type searcher struct {
	board    *model.BoardState
	settings difficulty.Settings
	tt       *TranspositionTable
	killers  *killerTable
	history  *historyTable
	reps     map[string]int
	// repDraws counts repetition draws scored so far. A subtree that adds
	// to it depends on the path and is not cached.
	repDraws int
	profile  ScoreProfile
	clock    *Clock
	nodes    int64
}

func (s *searcher) stop() bool {
	return s.clock.Expired(s.nodes)
}

func (s *searcher) iterate(progress func(Progress)) ([]model.ScoredMove, int) {
	rootMoves := s.orderMoves(s.board.LegalMoves(), model.NullMove, 0)
	if len(rootMoves) == 0 {
		return nil, 0
	}
	ranked := s.materialRanking(rootMoves)
	completed := 0

	for depth := 1; depth <= s.settings.MaxDepth; depth++ {
		if s.stop() {
			break
		}
		scored, ok := s.searchRoot(depth, rootMoves)
		if !ok {
			break
		}
		ranked, completed = scored, depth
		rootMoves = lo.Map(scored, func(m model.ScoredMove, _ int) model.Move { return m.Move })

		log.Debug().
			Int("depth", depth).
			Int64("nodes", s.nodes).
			Int("score", scored[0].Score).
			Str("best", scored[0].Move.String()).
			Msg("search-depth-completed")
		if progress != nil {
			progress(Progress{
				Depth:     depth,
				Nodes:     s.nodes,
				Score:     scored[0].Score,
				BestMove:  scored[0].Move,
				ElapsedMs: s.clock.Elapsed().Milliseconds(),
			})
		}
		if abs(scored[0].Score) >= MateThreshold {
			break
		}
	}
	return ranked, completed
}

// materialRanking is the depth-0 answer used when not even one iteration
// completes.
func (s *searcher) materialRanking(moves []model.Move) []model.ScoredMove {
	ranked := make([]model.ScoredMove, 0, len(moves))
	for _, move := range moves {
		s.nodes++
		undo := s.board.MakeMove(move)
		ranked = append(ranked, model.ScoredMove{Move: move, Score: -MaterialOnly(s.board)})
		s.board.UnmakeMove(undo)
	}
	sortRanked(ranked)
	return ranked
}

// searchRoot scores every root move. Alpha trails the best score by the root
// margin, so any move the selector could choose gets an exact score while
// hopeless moves are still cut off cheaply.
func (s *searcher) searchRoot(depth int, moves []model.Move) ([]model.ScoredMove, bool) {
	margin := s.settings.RootMargin()
	key := s.board.Key()
	s.reps[key]++
	defer func() { s.reps[key]-- }()

	draws := s.repDraws
	alpha, best := -Infinity, -Infinity
	scored := make([]model.ScoredMove, 0, len(moves))
	for _, move := range moves {
		if s.stop() {
			return nil, false
		}
		undo := s.board.MakeMove(move)
		score := -s.negamax(depth-1, -Infinity, -alpha, 1)
		s.board.UnmakeMove(undo)
		if s.clock.Tripped() {
			return nil, false
		}
		scored = append(scored, model.ScoredMove{Move: move, Score: score})
		if score > best {
			best = score
			// Strictly below the margin, so a fail-low move can never tie
			// with one the selector may pick.
			alpha = max(alpha, best-margin-1)
		}
	}
	sortRanked(scored)
	if s.tt != nil && s.repDraws == draws {
		s.tt.Store(key, TTEntry{Score: scoreToTT(best, 0), Depth: depth, Bound: BoundExact, BestMove: scored[0].Move, Profile: s.profile})
	}
	return scored, true
}

func (s *searcher) negamax(depth, alpha, beta, ply int) int {
	s.nodes++
	if s.stop() {
		return MaterialOnly(s.board)
	}
	key := s.board.Key()
	if s.reps[key] >= 2 {
		s.repDraws++
		return 0
	}
	if depth <= 0 || ply >= MaxPly {
		if s.settings.Quiescence {
			return s.quiesce(alpha, beta, ply, 0)
		}
		return Evaluate(s.board, s.settings.Weights)
	}

	ttMove := model.NullMove
	if s.tt != nil {
		if entry, ok := s.tt.Probe(key); ok && entry.Profile == s.profile {
			ttMove = entry.BestMove
			// Only same-depth scores are reused, so a cached search scores
			// exactly what an uncached one would.
			if entry.Depth == depth {
				score := scoreFromTT(entry.Score, ply)
				switch {
				case entry.Bound == BoundExact,
					entry.Bound == BoundLower && score >= beta,
					entry.Bound == BoundUpper && score <= alpha:
					return score
				}
			}
		}
	}

	moves := s.board.LegalMoves()
	if len(moves) == 0 {
		if s.board.InCheck(s.board.ToMove) {
			return -MateScore + ply
		}
		return 0
	}
	moves = s.orderMoves(moves, ttMove, ply)

	s.reps[key]++
	draws := s.repDraws
	alphaOrig := alpha
	best, bestMove := -Infinity, model.NullMove
	for _, move := range moves {
		if s.stop() {
			break
		}
		capture := s.board.IsCapture(move)
		undo := s.board.MakeMove(move)
		score := -s.negamax(depth-1, -beta, -alpha, ply+1)
		s.board.UnmakeMove(undo)
		if s.clock.Tripped() {
			break
		}
		if score > best {
			best, bestMove = score, move
		}
		alpha = max(alpha, score)
		if alpha >= beta {
			if !capture {
				s.killers.add(move, ply)
			}
			s.history.add(move, depth)
			break
		}
	}
	s.reps[key]--

	if s.clock.Tripped() {
		if best == -Infinity {
			return MaterialOnly(s.board)
		}
		return best
	}
	if s.tt != nil && s.repDraws == draws {
		bound := BoundExact
		switch {
		case best <= alphaOrig:
			bound = BoundUpper
		case best >= beta:
			bound = BoundLower
		}
		s.tt.Store(key, TTEntry{Score: scoreToTT(best, ply), Depth: depth, Bound: bound, BestMove: bestMove, Profile: s.profile})
	}
	return best
}

// sortRanked orders by score, then by move text, so equal scores always
// come out in the same order whatever order they were searched in.
func sortRanked(ranked []model.ScoredMove) {
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Move.String() < ranked[j].Move.String()
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
