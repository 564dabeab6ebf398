package model

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// MakeMove applies a legal or pseudo-legal move in place and returns the
// record needed to take it back. Calls must be undone in LIFO order.
func (b *BoardState) MakeMove(move Move) Ply {
	piece := b.Board[move.From.Y][move.From.X]
	ply := Ply{
		Move:          move,
		Piece:         piece,
		CapturedPiece: b.Board[move.To.Y][move.To.X],
		CapturedAt:    move.To,
		Castling:      b.Castling,
		EnPassant:     b.EnPassant,
	}

	b.Board[move.From.Y][move.From.X] = Piece{}
	switch piece.Type {
	case Pawn:
		ply = b.handleEnPassant(move, ply)
		if move.To.Y == 0 || move.To.Y == 7 {
			piece.Type = Queen
			ply.Promotion = true
		}
	case King:
		ply = b.handleCastle(move, ply)
		b.setKingPosition(piece.Color, move.To)
	}
	b.Board[move.To.Y][move.To.X] = piece

	b.EnPassant = NoPosition
	if piece.Type == Pawn && abs(move.To.Y-move.From.Y) == 2 {
		target := Position{X: move.From.X, Y: (move.From.Y + move.To.Y) / 2}
		if b.enPassantCapturable(move.To, piece.Color.Opponent()) {
			b.EnPassant = target
		}
	}
	b.updateCastlingRights(move)
	b.ToMove = b.ToMove.Opponent()
	return ply
}

// UnmakeMove reverts the move recorded in ply.
func (b *BoardState) UnmakeMove(ply Ply) {
	b.ToMove = b.ToMove.Opponent()
	b.Castling = ply.Castling
	b.EnPassant = ply.EnPassant

	b.Board[ply.To.Y][ply.To.X] = Piece{}
	b.Board[ply.CapturedAt.Y][ply.CapturedAt.X] = ply.CapturedPiece
	b.Board[ply.From.Y][ply.From.X] = ply.Piece

	if ply.Castled {
		rook := b.Board[ply.CastleRookMove.To.Y][ply.CastleRookMove.To.X]
		b.Board[ply.CastleRookMove.To.Y][ply.CastleRookMove.To.X] = Piece{}
		b.Board[ply.CastleRookMove.From.Y][ply.CastleRookMove.From.X] = rook
	}
	if ply.Piece.Type == King {
		b.setKingPosition(ply.Piece.Color, ply.From)
	}
}

// handleEnPassant removes the pawn taken en passant, if this is such a capture.
func (b *BoardState) handleEnPassant(move Move, ply Ply) Ply {
	if move.To == b.EnPassant && move.From.X != move.To.X && ply.CapturedPiece.IsEmpty() {
		ply.CapturedAt = Position{X: move.To.X, Y: move.From.Y}
		ply.CapturedPiece = b.Board[move.From.Y][move.To.X]
		b.Board[move.From.Y][move.To.X] = Piece{}
	}
	return ply
}

// handleCastle moves the rook when the king travels two files.
func (b *BoardState) handleCastle(move Move, ply Ply) Ply {
	if abs(move.From.X-move.To.X) != 2 {
		return ply
	}
	var rookMove CastleRookMove
	switch move.To.X {
	case 2:
		rookMove = CastleRookMove{From: Position{X: 0, Y: move.From.Y}, To: Position{X: 3, Y: move.From.Y}}
	case 6:
		rookMove = CastleRookMove{From: Position{X: 7, Y: move.From.Y}, To: Position{X: 5, Y: move.From.Y}}
	default:
		return ply
	}
	b.Board[rookMove.To.Y][rookMove.To.X] = b.Board[rookMove.From.Y][rookMove.From.X]
	b.Board[rookMove.From.Y][rookMove.From.X] = Piece{}
	ply.CastleRookMove = rookMove
	ply.Castled = true
	return ply
}

// enPassantCapturable reports whether a pawn of color by stands beside the
// pawn that just double-stepped to landing.
func (b *BoardState) enPassantCapturable(landing Position, by PlayerColor) bool {
	enemyPawn := Piece{Type: Pawn, Color: by}
	for _, dx := range [2]int{-1, 1} {
		x := landing.X + dx
		if x >= 0 && x < 8 && b.Board[landing.Y][x] == enemyPawn {
			return true
		}
	}
	return false
}

func (b *BoardState) updateCastlingRights(move Move) {
	for _, p := range [2]Position{move.From, move.To} {
		switch {
		case p.Y == 7 && p.X == 4:
			b.Castling.WhiteKingSide = false
			b.Castling.WhiteQueenSide = false
		case p.Y == 7 && p.X == 7:
			b.Castling.WhiteKingSide = false
		case p.Y == 7 && p.X == 0:
			b.Castling.WhiteQueenSide = false
		case p.Y == 0 && p.X == 4:
			b.Castling.BlackKingSide = false
			b.Castling.BlackQueenSide = false
		case p.Y == 0 && p.X == 7:
			b.Castling.BlackKingSide = false
		case p.Y == 0 && p.X == 0:
			b.Castling.BlackQueenSide = false
		}
	}
}
