package service

import (
	"context"
	"fmt"

	"github.com/benbeisheim/minechess-engine/internal/difficulty"
	"github.com/benbeisheim/minechess-engine/internal/engine"
	"github.com/benbeisheim/minechess-engine/internal/model"
	"github.com/samber/lo"
)

type SearchService struct {
	searchManager *SearchManager
	defaultRating int
	maxPerftDepth int
}

func NewSearchService(searchManager *SearchManager, defaultRating, maxPerftDepth int) *SearchService {
	return &SearchService{
		searchManager: searchManager,
		defaultRating: defaultRating,
		maxPerftDepth: maxPerftDepth,
	}
}

func (ss *SearchService) StartSearch(clientID string, req SearchRequest) (*Job, error) {
	engineReq, err := req.toEngineRequest(ss.defaultRating)
	if err != nil {
		return nil, err
	}
	return ss.searchManager.Submit(clientID, engineReq)
}

// BestMove submits a search and waits for its result.
func (ss *SearchService) BestMove(ctx context.Context, clientID string, req SearchRequest) (SearchResult, error) {
	job, err := ss.StartSearch(clientID, req)
	if err != nil {
		return SearchResult{}, err
	}
	select {
	case <-job.Done():
	case <-ctx.Done():
		// The caller gave up. Stopping makes the worker free sooner.
		job.stop()
		return SearchResult{}, ctx.Err()
	}
	result, err := job.Outcome()
	if err != nil {
		return SearchResult{}, err
	}
	return NewSearchResult(result), nil
}

func (ss *SearchService) GetSearch(searchID string) (SearchStatus, error) {
	job, err := ss.searchManager.Get(searchID)
	if err != nil {
		return SearchStatus{}, err
	}
	return newSearchStatus(job.Snapshot()), nil
}

func (ss *SearchService) StopSearch(searchID, clientID string) error {
	return ss.searchManager.Stop(searchID, clientID)
}

// Evaluate scores a position statically. Without a rating the full
// evaluation weights are used.
func (ss *SearchService) Evaluate(req PositionRequest, rating *int) (Evaluation, error) {
	board, err := req.toBoard()
	if err != nil {
		return Evaluation{}, err
	}
	if err := board.Validate(); err != nil {
		return Evaluation{}, fmt.Errorf("%w: %w", engine.ErrInvalidRequest, err)
	}
	weights := difficulty.FromRating(difficulty.MaxRating).Weights
	if rating != nil {
		weights = difficulty.FromRating(*rating).Weights
	}
	return Evaluation{
		FEN:       board.FEN(),
		Weights:   weights,
		Breakdown: engine.Explain(board, weights),
		InCheck:   board.InCheck(board.ToMove),
		Legal:     lo.Map(board.LegalMoves(), func(m model.Move, _ int) string { return m.String() }),
	}, nil
}

// Perft counts leaf nodes to depth from fen.
func (ss *SearchService) Perft(fen string, depth int) (int64, error) {
	if depth < 1 || depth > ss.maxPerftDepth {
		return 0, fmt.Errorf("%w: perft depth %d outside [1, %d]", engine.ErrInvalidRequest, depth, ss.maxPerftDepth)
	}
	if fen == "" {
		fen = model.StartingFEN
	}
	board, err := model.ParseFEN(fen)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", engine.ErrInvalidRequest, err)
	}
	if err := board.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", engine.ErrInvalidRequest, err)
	}
	return board.Perft(depth), nil
}
