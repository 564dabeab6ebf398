package model

var (
	rookDirs   = [4]Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	bishopDirs = [4]Position{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	knightDirs = [8]Position{{X: 2, Y: 1}, {X: 2, Y: -1}, {X: -2, Y: 1}, {X: -2, Y: -1}, {X: 1, Y: 2}, {X: 1, Y: -2}, {X: -1, Y: 2}, {X: -1, Y: -2}}
	kingDirs   = [8]Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}, {X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
)

// InCheck reports whether color's king is attacked.
func (b *BoardState) InCheck(color PlayerColor) bool {
	king := b.KingPosition(color)
	if !boundaryCheck(king) {
		return false
	}
	return b.IsSquareAttacked(color.Opponent(), king)
}

// IsSquareAttacked walks outward from position and reports whether any piece
// of attackingColor reaches it.
func (b *BoardState) IsSquareAttacked(attackingColor PlayerColor, position Position) bool {
	for _, dir := range rookDirs {
		if b.rayHits(position, dir, attackingColor, Rook) {
			return true
		}
	}
	for _, dir := range bishopDirs {
		if b.rayHits(position, dir, attackingColor, Bishop) {
			return true
		}
	}
	knight := Piece{Type: Knight, Color: attackingColor}
	for _, dir := range knightDirs {
		targetPos := Position{X: position.X + dir.X, Y: position.Y + dir.Y}
		if boundaryCheck(targetPos) && b.Board[targetPos.Y][targetPos.X] == knight {
			return true
		}
	}
	king := Piece{Type: King, Color: attackingColor}
	for _, dir := range kingDirs {
		targetPos := Position{X: position.X + dir.X, Y: position.Y + dir.Y}
		if boundaryCheck(targetPos) && b.Board[targetPos.Y][targetPos.X] == king {
			return true
		}
	}
	// an attacking pawn sits one row behind the target relative to its own advance
	pawn := Piece{Type: Pawn, Color: attackingColor}
	pawnY := position.Y - attackingColor.forward()
	for _, dx := range [2]int{-1, 1} {
		targetPos := Position{X: position.X + dx, Y: pawnY}
		if boundaryCheck(targetPos) && b.Board[targetPos.Y][targetPos.X] == pawn {
			return true
		}
	}
	return false
}

func (b *BoardState) rayHits(from, dir Position, attackingColor PlayerColor, slider PieceType) bool {
	targetPos := Position{X: from.X + dir.X, Y: from.Y + dir.Y}
	for boundaryCheck(targetPos) {
		piece := b.Board[targetPos.Y][targetPos.X]
		if !piece.IsEmpty() {
			return piece.Color == attackingColor && (piece.Type == slider || piece.Type == Queen)
		}
		targetPos = Position{X: targetPos.X + dir.X, Y: targetPos.Y + dir.Y}
	}
	return false
}

// LegalMoves returns every legal move for the side to move.
func (b *BoardState) LegalMoves() []Move {
	return b.LegalMovesFor(b.ToMove)
}

// LegalMovesFor returns every legal move for color. En passant is only
// available to the side to move.
func (b *BoardState) LegalMovesFor(color PlayerColor) []Move {
	return b.filterLegalMoves(b.pseudoMoves(color, make([]Move, 0, 48)), color)
}

// HasLegalMove is a cheaper form of len(LegalMoves()) > 0.
func (b *BoardState) HasLegalMove() bool {
	for _, move := range b.pseudoMoves(b.ToMove, make([]Move, 0, 48)) {
		if b.isLegal(move, b.ToMove) {
			return true
		}
	}
	return false
}

func (b *BoardState) pseudoMoves(color PlayerColor, moves []Move) []Move {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			piece := b.Board[y][x]
			if piece.IsEmpty() || piece.Color != color {
				continue
			}
			from := Position{X: x, Y: y}
			switch piece.Type {
			case Pawn:
				moves = b.getPseudoPawnMoves(from, color, moves)
			case Knight:
				moves = b.getPseudoStepMoves(from, color, knightDirs[:], moves)
			case Bishop:
				moves = b.getPseudoSlidingMoves(from, color, bishopDirs[:], moves)
			case Rook:
				moves = b.getPseudoSlidingMoves(from, color, rookDirs[:], moves)
			case Queen:
				moves = b.getPseudoSlidingMoves(from, color, bishopDirs[:], moves)
				moves = b.getPseudoSlidingMoves(from, color, rookDirs[:], moves)
			case King:
				moves = b.getPseudoStepMoves(from, color, kingDirs[:], moves)
				moves = b.getCastleMoves(from, color, moves)
			}
		}
	}
	return moves
}

func (b *BoardState) filterLegalMoves(pseudoMoves []Move, color PlayerColor) []Move {
	legalMoves := pseudoMoves[:0]
	for _, move := range pseudoMoves {
		if b.isLegal(move, color) {
			legalMoves = append(legalMoves, move)
		}
	}
	return legalMoves
}

func (b *BoardState) isLegal(move Move, color PlayerColor) bool {
	ply := b.MakeMove(move)
	legal := !b.InCheck(color)
	b.UnmakeMove(ply)
	return legal
}

func (b *BoardState) getPseudoPawnMoves(from Position, color PlayerColor, moves []Move) []Move {
	dir := color.forward()
	oneStep := Position{X: from.X, Y: from.Y + dir}
	if !boundaryCheck(oneStep) {
		return moves
	}
	if b.Board[oneStep.Y][oneStep.X].IsEmpty() {
		moves = append(moves, Move{From: from, To: oneStep})
		startRow := color.homeRow() + dir
		twoStep := Position{X: from.X, Y: from.Y + 2*dir}
		if from.Y == startRow && b.Board[twoStep.Y][twoStep.X].IsEmpty() {
			moves = append(moves, Move{From: from, To: twoStep})
		}
	}
	for _, dx := range [2]int{-1, 1} {
		target := Position{X: from.X + dx, Y: from.Y + dir}
		if !boundaryCheck(target) {
			continue
		}
		occupant := b.Board[target.Y][target.X]
		if !occupant.IsEmpty() && occupant.Color != color {
			moves = append(moves, Move{From: from, To: target})
		} else if color == b.ToMove && target == b.EnPassant && occupant.IsEmpty() {
			moves = append(moves, Move{From: from, To: target})
		}
	}
	return moves
}

func (b *BoardState) getPseudoStepMoves(from Position, color PlayerColor, dirs []Position, moves []Move) []Move {
	for _, dir := range dirs {
		targetPos := Position{X: from.X + dir.X, Y: from.Y + dir.Y}
		if !boundaryCheck(targetPos) {
			continue
		}
		occupant := b.Board[targetPos.Y][targetPos.X]
		if occupant.IsEmpty() || occupant.Color != color {
			moves = append(moves, Move{From: from, To: targetPos})
		}
	}
	return moves
}

func (b *BoardState) getPseudoSlidingMoves(from Position, color PlayerColor, dirs []Position, moves []Move) []Move {
	for _, dir := range dirs {
		targetPos := Position{X: from.X + dir.X, Y: from.Y + dir.Y}
		for boundaryCheck(targetPos) {
			occupant := b.Board[targetPos.Y][targetPos.X]
			if occupant.IsEmpty() {
				moves = append(moves, Move{From: from, To: targetPos})
			} else {
				if occupant.Color != color {
					moves = append(moves, Move{From: from, To: targetPos})
				}
				break
			}
			targetPos = Position{X: targetPos.X + dir.X, Y: targetPos.Y + dir.Y}
		}
	}
	return moves
}

// getCastleMoves adds castling when rights are held, the cells between king
// and rook are empty, and the king never passes through an attacked cell.
func (b *BoardState) getCastleMoves(from Position, color PlayerColor, moves []Move) []Move {
	row := color.homeRow()
	if from != (Position{X: 4, Y: row}) {
		return moves
	}
	kingSide, queenSide := b.Castling.WhiteKingSide, b.Castling.WhiteQueenSide
	if color == PlayerColorBlack {
		kingSide, queenSide = b.Castling.BlackKingSide, b.Castling.BlackQueenSide
	}
	if !kingSide && !queenSide {
		return moves
	}
	enemy := color.Opponent()
	if b.IsSquareAttacked(enemy, from) {
		return moves
	}
	rook := Piece{Type: Rook, Color: color}
	if kingSide && b.Board[row][7] == rook &&
		b.Board[row][5].IsEmpty() && b.Board[row][6].IsEmpty() &&
		!b.IsSquareAttacked(enemy, Position{X: 5, Y: row}) &&
		!b.IsSquareAttacked(enemy, Position{X: 6, Y: row}) {
		moves = append(moves, Move{From: from, To: Position{X: 6, Y: row}})
	}
	if queenSide && b.Board[row][0] == rook &&
		b.Board[row][1].IsEmpty() && b.Board[row][2].IsEmpty() && b.Board[row][3].IsEmpty() &&
		!b.IsSquareAttacked(enemy, Position{X: 3, Y: row}) &&
		!b.IsSquareAttacked(enemy, Position{X: 2, Y: row}) {
		moves = append(moves, Move{From: from, To: Position{X: 2, Y: row}})
	}
	return moves
}

// IsCapture reports whether move takes a piece, en passant included.
func (b *BoardState) IsCapture(move Move) bool {
	return !b.CapturedBy(move).IsEmpty()
}

// CapturedBy returns the piece move would take, or the empty Piece.
func (b *BoardState) CapturedBy(move Move) Piece {
	target := b.Board[move.To.Y][move.To.X]
	if !target.IsEmpty() {
		return target
	}
	mover := b.Board[move.From.Y][move.From.X]
	if mover.Type == Pawn && move.To == b.EnPassant && move.From.X != move.To.X {
		return b.Board[move.From.Y][move.To.X]
	}
	return Piece{}
}

// IsPromotion reports whether move advances a pawn to the last rank.
func (b *BoardState) IsPromotion(move Move) bool {
	return b.Board[move.From.Y][move.From.X].Type == Pawn && (move.To.Y == 0 || move.To.Y == 7)
}

// GivesCheck reports whether move leaves the opponent in check.
func (b *BoardState) GivesCheck(move Move) bool {
	mover := b.Board[move.From.Y][move.From.X].Color
	ply := b.MakeMove(move)
	check := b.InCheck(mover.Opponent())
	b.UnmakeMove(ply)
	return check
}

// Perft counts the leaf nodes of the legal move tree to depth.
func (b *BoardState) Perft(depth int) int64 {
	if depth <= 0 {
		return 1
	}
	moves := b.LegalMoves()
	if depth == 1 {
		return int64(len(moves))
	}
	var nodes int64
	for _, move := range moves {
		ply := b.MakeMove(move)
		nodes += b.Perft(depth - 1)
		b.UnmakeMove(ply)
	}
	return nodes
}
