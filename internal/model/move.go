package model

import "fmt"

// Move carries only its origin and destination. Castling, en passant and
// promotion are inferred from the board when the move is made.
type Move struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

var NullMove = Move{From: NoPosition, To: NoPosition}

func (m Move) IsNull() bool {
	return m == NullMove
}

// String renders the move in UCI long algebraic form ("e2e4").
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	return m.From.getSquareNotation() + m.To.getSquareNotation()
}

func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NullMove, fmt.Errorf("invalid move %q", s)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return NullMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NullMove, err
	}
	return Move{From: from, To: to}, nil
}

type CastleRookMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Ply is the undo record of one MakeMove. Passing it to UnmakeMove restores
// the exact prior state.
type Ply struct {
	Move
	Piece          Piece
	CapturedPiece  Piece
	CapturedAt     Position
	CastleRookMove CastleRookMove
	Castled        bool
	Promotion      bool
	Castling       CastlingRights
	EnPassant      Position
}

func (p Ply) IsCapture() bool {
	return !p.CapturedPiece.IsEmpty()
}

// ScoredMove is a root move with its search score in centipawns from the
// mover's perspective.
type ScoredMove struct {
	Move  Move `json:"move"`
	Score int  `json:"score"`
}
