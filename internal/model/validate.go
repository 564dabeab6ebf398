package model

import (
	"errors"
	"fmt"
)

var ErrInvalidPosition = errors.New("invalid position")

// Validate rejects positions the search cannot reason about.
func (b *BoardState) Validate() error {
	if !b.ToMove.IsValid() {
		return fmt.Errorf("%w: side to move is missing", ErrInvalidPosition)
	}

	kings := map[PlayerColor]int{}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			piece := b.Board[y][x]
			if piece.IsEmpty() {
				continue
			}
			if !piece.Color.IsValid() || piece.Type > King {
				return fmt.Errorf("%w: malformed piece at %s", ErrInvalidPosition, Position{X: x, Y: y})
			}
			if piece.Type == Pawn && (y == 0 || y == 7) {
				return fmt.Errorf("%w: pawn on back rank at %s", ErrInvalidPosition, Position{X: x, Y: y})
			}
			if piece.Type == King {
				kings[piece.Color]++
			}
		}
	}
	for _, color := range []PlayerColor{PlayerColorWhite, PlayerColorBlack} {
		if kings[color] != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrInvalidPosition, color, kings[color])
		}
		king := b.KingPosition(color)
		if !boundaryCheck(king) || b.Board[king.Y][king.X] != (Piece{Type: King, Color: color}) {
			return fmt.Errorf("%w: %s king position is stale", ErrInvalidPosition, color)
		}
	}

	if b.EnPassant != NoPosition {
		if err := b.validateEnPassant(); err != nil {
			return err
		}
	}

	if b.InCheck(b.ToMove.Opponent()) {
		return fmt.Errorf("%w: %s is in check but not to move", ErrInvalidPosition, b.ToMove.Opponent())
	}
	return nil
}

func (b *BoardState) validateEnPassant() error {
	ep := b.EnPassant
	// white to move captures on row 2 (rank 6), black on row 5 (rank 3)
	wantRow := 2
	if b.ToMove == PlayerColorBlack {
		wantRow = 5
	}
	if !boundaryCheck(ep) || ep.Y != wantRow {
		return fmt.Errorf("%w: en passant target %s", ErrInvalidPosition, ep)
	}
	if !b.Board[ep.Y][ep.X].IsEmpty() {
		return fmt.Errorf("%w: en passant target %s is occupied", ErrInvalidPosition, ep)
	}
	pushed := Piece{Type: Pawn, Color: b.ToMove.Opponent()}
	pawnRow := ep.Y + b.ToMove.Opponent().forward()
	if b.Board[pawnRow][ep.X] != pushed {
		return fmt.Errorf("%w: no pawn behind en passant target %s", ErrInvalidPosition, ep)
	}
	return nil
}

// normalizeEnPassant drops a well-formed target no pawn can capture on, so
// equal positions share one key.
func (b *BoardState) normalizeEnPassant() {
	if b.EnPassant == NoPosition || b.validateEnPassant() != nil {
		return
	}
	landing := Position{X: b.EnPassant.X, Y: b.EnPassant.Y + b.ToMove.Opponent().forward()}
	if !b.enPassantCapturable(landing, b.ToMove) {
		b.EnPassant = NoPosition
	}
}
