package model

import (
	"errors"
	"fmt"
)

type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (p PieceType) getPieceNotation() byte {
	switch p {
	case King:
		return 'k'
	case Queen:
		return 'q'
	case Rook:
		return 'r'
	case Bishop:
		return 'b'
	case Knight:
		return 'n'
	case Pawn:
		return 'p'
	}
	return 0
}

func (p PieceType) String() string {
	switch p {
	case King:
		return "king"
	case Queen:
		return "queen"
	case Rook:
		return "rook"
	case Bishop:
		return "bishop"
	case Knight:
		return "knight"
	case Pawn:
		return "pawn"
	}
	return ""
}

func (p PieceType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PieceType) UnmarshalText(text []byte) error {
	for t := Pawn; t <= King; t++ {
		if t.String() == string(text) {
			*p = t
			return nil
		}
	}
	return fmt.Errorf("unknown piece type %q", string(text))
}

// Piece is an occupant of a board cell. The zero Piece is an empty cell.
type Piece struct {
	Type  PieceType   `json:"type"`
	Color PlayerColor `json:"color"`
}

func (p Piece) IsEmpty() bool {
	return p.Type == NoPieceType
}

// Position is a board cell. Y=0 is rank 8, X=0 is the a-file.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoPosition marks an absent cell, e.g. no en passant target.
var NoPosition = Position{X: -1, Y: -1}

func (p Position) getSquareNotation() string {
	return fmt.Sprintf("%c%d", p.X+97, 8-p.Y)
}

func (p Position) String() string {
	if !boundaryCheck(p) {
		return "-"
	}
	return p.getSquareNotation()
}

// Index maps the cell to 0..63.
func (p Position) Index() int {
	return p.Y*8 + p.X
}

func boundaryCheck(position Position) bool {
	return position.X >= 0 && position.X < 8 && position.Y >= 0 && position.Y < 8
}

// ParseSquare parses algebraic notation such as "e4".
func ParseSquare(s string) (Position, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoPosition, fmt.Errorf("invalid square %q", s)
	}
	return Position{X: int(s[0] - 'a'), Y: 8 - int(s[1]-'0')}, nil
}

type CastlingRights struct {
	WhiteKingSide  bool `json:"whiteKingSide"`
	WhiteQueenSide bool `json:"whiteQueenSide"`
	BlackKingSide  bool `json:"blackKingSide"`
	BlackQueenSide bool `json:"blackQueenSide"`
}

// BoardState is the full searchable position. It is a comparable value:
// two states are bit-exact equal iff == holds.
type BoardState struct {
	Board             [8][8]Piece    `json:"board"`
	ToMove            PlayerColor    `json:"toMove"`
	Castling          CastlingRights `json:"castling"`
	EnPassant         Position       `json:"enPassantTarget"`
	WhiteKingPosition Position       `json:"whiteKingPosition"`
	BlackKingPosition Position       `json:"blackKingPosition"`
}

var ErrInvalidGrid = errors.New("board must be an 8x8 grid")

func NewBoardState() *BoardState {
	board := &BoardState{
		ToMove:    PlayerColorWhite,
		EnPassant: NoPosition,
		Castling: CastlingRights{
			WhiteKingSide:  true,
			WhiteQueenSide: true,
			BlackKingSide:  true,
			BlackQueenSide: true,
		},
	}
	backRank := [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for i := 0; i < 8; i++ {
		board.Board[0][i] = Piece{Type: backRank[i], Color: PlayerColorBlack}
		board.Board[1][i] = Piece{Type: Pawn, Color: PlayerColorBlack}
		board.Board[6][i] = Piece{Type: Pawn, Color: PlayerColorWhite}
		board.Board[7][i] = Piece{Type: backRank[i], Color: PlayerColorWhite}
	}
	board.BlackKingPosition = Position{X: 4, Y: 0}
	board.WhiteKingPosition = Position{X: 4, Y: 7}
	return board
}

// NewBoardStateFromGrid builds a state from a client snapshot. Castling rights
// the pieces cannot support are dropped.
func NewBoardStateFromGrid(grid [][]*Piece, toMove PlayerColor, castling CastlingRights, enPassant *Position) (*BoardState, error) {
	if len(grid) != 8 {
		return nil, ErrInvalidGrid
	}
	board := &BoardState{
		ToMove:            toMove,
		Castling:          castling,
		EnPassant:         NoPosition,
		WhiteKingPosition: NoPosition,
		BlackKingPosition: NoPosition,
	}
	for y, row := range grid {
		if len(row) != 8 {
			return nil, ErrInvalidGrid
		}
		for x, piece := range row {
			if piece == nil {
				continue
			}
			board.Board[y][x] = *piece
		}
	}
	if enPassant != nil {
		board.EnPassant = *enPassant
	}
	board.locateKings()
	board.normalizeCastling()
	board.normalizeEnPassant()
	return board, nil
}

func (b *BoardState) Grid() [][]*Piece {
	grid := make([][]*Piece, 8)
	for y := 0; y < 8; y++ {
		grid[y] = make([]*Piece, 8)
		for x := 0; x < 8; x++ {
			if !b.Board[y][x].IsEmpty() {
				piece := b.Board[y][x]
				grid[y][x] = &piece
			}
		}
	}
	return grid
}

func (b *BoardState) PieceAt(p Position) Piece {
	return b.Board[p.Y][p.X]
}

func (b *BoardState) KingPosition(color PlayerColor) Position {
	if color == PlayerColorWhite {
		return b.WhiteKingPosition
	}
	return b.BlackKingPosition
}

func (b *BoardState) setKingPosition(color PlayerColor, p Position) {
	if color == PlayerColorWhite {
		b.WhiteKingPosition = p
	} else {
		b.BlackKingPosition = p
	}
}

func (b *BoardState) locateKings() {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			piece := b.Board[y][x]
			if piece.Type == King {
				b.setKingPosition(piece.Color, Position{X: x, Y: y})
			}
		}
	}
}

func (b *BoardState) hasPieceAt(x, y int, piece Piece) bool {
	return b.Board[y][x] == piece
}

func (b *BoardState) normalizeCastling() {
	white := Piece{Type: King, Color: PlayerColorWhite}
	black := Piece{Type: King, Color: PlayerColorBlack}
	whiteRook := Piece{Type: Rook, Color: PlayerColorWhite}
	blackRook := Piece{Type: Rook, Color: PlayerColorBlack}
	if !b.hasPieceAt(4, 7, white) {
		b.Castling.WhiteKingSide = false
		b.Castling.WhiteQueenSide = false
	}
	if !b.hasPieceAt(4, 0, black) {
		b.Castling.BlackKingSide = false
		b.Castling.BlackQueenSide = false
	}
	b.Castling.WhiteKingSide = b.Castling.WhiteKingSide && b.hasPieceAt(7, 7, whiteRook)
	b.Castling.WhiteQueenSide = b.Castling.WhiteQueenSide && b.hasPieceAt(0, 7, whiteRook)
	b.Castling.BlackKingSide = b.Castling.BlackKingSide && b.hasPieceAt(7, 0, blackRook)
	b.Castling.BlackQueenSide = b.Castling.BlackQueenSide && b.hasPieceAt(0, 0, blackRook)
}

// PieceCount counts every piece on the board, kings and pawns included.
func (b *BoardState) PieceCount() int {
	count := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if !b.Board[y][x].IsEmpty() {
				count++
			}
		}
	}
	return count
}
