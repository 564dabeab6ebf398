package service

import (
	"fmt"
	"strings"

	"github.com/benbeisheim/minechess-engine/internal/difficulty"
	"github.com/benbeisheim/minechess-engine/internal/engine"
	"github.com/benbeisheim/minechess-engine/internal/model"
	"github.com/samber/lo"
)

// PositionRequest describes a position either as FEN or as a board grid
// with its side-to-move, castling and en passant state.
type PositionRequest struct {
	FEN             string               `json:"fen,omitempty"`
	Board           [][]*model.Piece     `json:"board,omitempty"`
	ToMove          model.PlayerColor    `json:"toMove"`
	Castling        model.CastlingRights `json:"castling"`
	EnPassantTarget string               `json:"enPassantTarget,omitempty"`
}

type SearchRequest struct {
	PositionRequest
	EngineColor model.PlayerColor `json:"engineColor"`
	// History lists prior positions as keys or full FEN strings, oldest first.
	History  []string             `json:"history,omitempty"`
	Rating   *int                 `json:"rating,omitempty"`
	Settings *difficulty.Settings `json:"settings,omitempty"`
}

func (r PositionRequest) toBoard() (*model.BoardState, error) {
	if r.FEN != "" {
		board, err := model.ParseFEN(r.FEN)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", engine.ErrInvalidRequest, err)
		}
		return board, nil
	}
	if r.Board == nil {
		return nil, fmt.Errorf("%w: fen or board is required", engine.ErrInvalidRequest)
	}

	var enPassant *model.Position
	if r.EnPassantTarget != "" && r.EnPassantTarget != "-" {
		square, err := model.ParseSquare(r.EnPassantTarget)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", engine.ErrInvalidRequest, err)
		}
		enPassant = &square
	}
	board, err := model.NewBoardStateFromGrid(r.Board, r.ToMove, r.Castling, enPassant)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrInvalidRequest, err)
	}
	return board, nil
}

// toEngineRequest resolves the position and settings. Explicit settings win
// over a rating; with neither the default rating applies.
func (r SearchRequest) toEngineRequest(defaultRating int) (engine.Request, error) {
	board, err := r.toBoard()
	if err != nil {
		return engine.Request{}, err
	}

	var settings difficulty.Settings
	switch {
	case r.Settings != nil:
		settings = *r.Settings
	case r.Rating != nil:
		settings = difficulty.FromRating(*r.Rating)
	default:
		settings = difficulty.FromRating(defaultRating)
	}

	return engine.Request{
		Position:    board,
		EngineColor: r.EngineColor,
		History:     lo.Map(r.History, func(entry string, _ int) string { return historyKey(entry) }),
		Settings:    settings,
	}, nil
}

// historyKey trims the move counters off a full FEN so it compares equal
// to a position key.
func historyKey(entry string) string {
	fields := strings.Fields(entry)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}

type MoveDTO struct {
	From string `json:"from"`
	To   string `json:"to"`
	UCI  string `json:"uci"`
}

func newMoveDTO(m model.Move) *MoveDTO {
	if m.IsNull() {
		return nil
	}
	return &MoveDTO{From: m.From.String(), To: m.To.String(), UCI: m.String()}
}

type RankedMove struct {
	Move  *MoveDTO `json:"move"`
	Score int      `json:"score"`
}

type SearchResult struct {
	// Move is null when the side to move has no legal move.
	Move      *MoveDTO          `json:"move"`
	Score     int               `json:"score"`
	Depth     int               `json:"depth"`
	Nodes     int64             `json:"nodes"`
	ElapsedMs int64             `json:"elapsedMs"`
	Choice    difficulty.Choice `json:"choice"`
	TimedOut  bool              `json:"timedOut"`
	Ranked    []RankedMove      `json:"ranked"`
}

func NewSearchResult(r engine.Result) SearchResult {
	return SearchResult{
		Move:      newMoveDTO(r.Move),
		Score:     r.Score,
		Depth:     r.Depth,
		Nodes:     r.Nodes,
		ElapsedMs: r.Elapsed.Milliseconds(),
		Choice:    r.Choice,
		TimedOut:  r.TimedOut,
		Ranked: lo.Map(r.Ranked, func(m model.ScoredMove, _ int) RankedMove {
			return RankedMove{Move: newMoveDTO(m.Move), Score: m.Score}
		}),
	}
}

type ProgressUpdate struct {
	SearchID  string   `json:"searchId"`
	Depth     int      `json:"depth"`
	Nodes     int64    `json:"nodes"`
	Score     int      `json:"score"`
	BestMove  *MoveDTO `json:"bestMove"`
	ElapsedMs int64    `json:"elapsedMs"`
}

func NewProgressUpdate(searchID string, p engine.Progress) ProgressUpdate {
	return ProgressUpdate{
		SearchID:  searchID,
		Depth:     p.Depth,
		Nodes:     p.Nodes,
		Score:     p.Score,
		BestMove:  newMoveDTO(p.BestMove),
		ElapsedMs: p.ElapsedMs,
	}
}

type SearchStatus struct {
	SearchID string          `json:"searchId"`
	Status   Status          `json:"status"`
	Progress *ProgressUpdate `json:"progress,omitempty"`
	Result   *SearchResult   `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func newSearchStatus(s Snapshot) SearchStatus {
	status := SearchStatus{SearchID: s.ID, Status: s.Status}
	if s.Progress != nil {
		update := NewProgressUpdate(s.ID, *s.Progress)
		status.Progress = &update
	}
	if s.Result != nil {
		result := NewSearchResult(*s.Result)
		status.Result = &result
	}
	if s.Err != nil {
		status.Error = s.Err.Error()
	}
	return status
}

type Evaluation struct {
	FEN       string                 `json:"fen"`
	Weights   difficulty.EvalWeights `json:"weights"`
	Breakdown engine.Breakdown       `json:"breakdown"`
	InCheck   bool                   `json:"inCheck"`
	Legal     []string               `json:"legalMoves"`
}
