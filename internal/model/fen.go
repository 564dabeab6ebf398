package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidFEN = errors.New("invalid FEN")

const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN reads a position. Move counters are optional and ignored.
func ParseFEN(fen string) (*BoardState, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: expected at least 4 fields, got %d", ErrInvalidFEN, len(fields))
	}
	board := &BoardState{
		EnPassant:         NoPosition,
		WhiteKingPosition: NoPosition,
		BlackKingPosition: NoPosition,
	}

	rows := strings.Split(fields[0], "/")
	if len(rows) != 8 {
		return nil, fmt.Errorf("%w: expected 8 ranks", ErrInvalidFEN)
	}
	for y, row := range rows {
		x := 0
		for _, c := range row {
			if c >= '1' && c <= '8' {
				x += int(c - '0')
				continue
			}
			if x >= 8 {
				return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, 8-y)
			}
			piece, ok := pieceFromNotation(byte(c))
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, c)
			}
			board.Board[y][x] = piece
			x++
		}
		if x != 8 {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, 8-y, x)
		}
	}

	switch fields[1] {
	case "w":
		board.ToMove = PlayerColorWhite
	case "b":
		board.ToMove = PlayerColorBlack
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}

	if fields[2] != "-" {
		for _, c := range fields[2] {
			switch c {
			case 'K':
				board.Castling.WhiteKingSide = true
			case 'Q':
				board.Castling.WhiteQueenSide = true
			case 'k':
				board.Castling.BlackKingSide = true
			case 'q':
				board.Castling.BlackQueenSide = true
			default:
				return nil, fmt.Errorf("%w: castling %q", ErrInvalidFEN, fields[2])
			}
		}
	}

	if fields[3] != "-" {
		target, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
		}
		board.EnPassant = target
	}

	board.locateKings()
	board.normalizeCastling()
	board.normalizeEnPassant()
	return board, nil
}

func pieceFromNotation(c byte) (Piece, bool) {
	color := PlayerColorWhite
	if c >= 'a' && c <= 'z' {
		color = PlayerColorBlack
	} else {
		c += 'a' - 'A'
	}
	for t := Pawn; t <= King; t++ {
		if t.getPieceNotation() == c {
			return Piece{Type: t, Color: color}, true
		}
	}
	return Piece{}, false
}

func (p Piece) notation() byte {
	c := p.Type.getPieceNotation()
	if p.Color == PlayerColorWhite {
		c -= 'a' - 'A'
	}
	return c
}

// Key is the canonical position encoding used for the transposition table
// and repetition counting: FEN placement, side, castling and en passant.
func (b *BoardState) Key() string {
	var sb strings.Builder
	sb.Grow(80)
	for y := 0; y < 8; y++ {
		empty := 0
		for x := 0; x < 8; x++ {
			piece := b.Board[y][x]
			if piece.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(piece.notation())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if y < 7 {
			sb.WriteByte('/')
		}
	}

	if b.ToMove == PlayerColorBlack {
		sb.WriteString(" b ")
	} else {
		sb.WriteString(" w ")
	}

	castling := false
	for _, right := range []struct {
		held bool
		c    byte
	}{
		{b.Castling.WhiteKingSide, 'K'},
		{b.Castling.WhiteQueenSide, 'Q'},
		{b.Castling.BlackKingSide, 'k'},
		{b.Castling.BlackQueenSide, 'q'},
	} {
		if right.held {
			sb.WriteByte(right.c)
			castling = true
		}
	}
	if !castling {
		sb.WriteByte('-')
	}

	sb.WriteByte(' ')
	sb.WriteString(b.EnPassant.String())
	return sb.String()
}

// FEN renders the position with placeholder move counters.
func (b *BoardState) FEN() string {
	return b.Key() + " 0 1"
}
