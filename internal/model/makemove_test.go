package model

import "testing"

func assertRestores(t *testing.T, board *BoardState, depth int) {
	t.Helper()
	if depth == 0 {
		return
	}
	for _, move := range board.LegalMoves() {
		before := *board
		ply := board.MakeMove(move)
		assertRestores(t, board, depth-1)
		board.UnmakeMove(ply)
		if *board != before {
			t.Fatalf("%s: unmake of %s did not restore state\nbefore %s\nafter  %s", before.Key(), move, before.Key(), board.Key())
		}
	}
}

func TestMakeUnmakeRestoresState(t *testing.T) {
	fens := []string{
		StartingFEN,
		kiwipeteFEN,
		endgameFEN,
		promotionFEN,
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
	}
	for _, fen := range fens {
		board := mustParse(t, fen)
		assertRestores(t, board, 2)
	}
}

func TestEnPassantCapture(t *testing.T) {
	board := mustParse(t, "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")
	move, _ := ParseMove("e5f6")
	if !board.IsCapture(move) {
		t.Fatalf("e5f6 should be an en passant capture")
	}
	ply := board.MakeMove(move)
	if got := board.Board[3][5]; !got.IsEmpty() {
		t.Fatalf("captured pawn still on f5: %+v", got)
	}
	if got := board.Board[2][5]; got != (Piece{Type: Pawn, Color: PlayerColorWhite}) {
		t.Fatalf("capturing pawn not on f6: %+v", got)
	}
	if ply.CapturedAt != (Position{X: 5, Y: 3}) {
		t.Fatalf("captured at %s, want f5", ply.CapturedAt)
	}
}

func TestPromotionIsAlwaysQueen(t *testing.T) {
	board := mustParse(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1")
	move, _ := ParseMove("a7a8")
	if !board.IsPromotion(move) {
		t.Fatalf("a7a8 should promote")
	}
	board.MakeMove(move)
	if got := board.Board[0][0]; got != (Piece{Type: Queen, Color: PlayerColorWhite}) {
		t.Fatalf("expected white queen on a8, got %+v", got)
	}
}

func TestCastleMovesRookAndClearsRights(t *testing.T) {
	board := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	move, _ := ParseMove("e1g1")
	board.MakeMove(move)
	if got := board.Board[7][5]; got != (Piece{Type: Rook, Color: PlayerColorWhite}) {
		t.Fatalf("rook not on f1: %+v", got)
	}
	if !board.Board[7][7].IsEmpty() {
		t.Fatalf("h1 should be empty after castling")
	}
	if board.Castling.WhiteKingSide || board.Castling.WhiteQueenSide {
		t.Fatalf("white castling rights should be gone: %+v", board.Castling)
	}
	if !board.Castling.BlackKingSide || !board.Castling.BlackQueenSide {
		t.Fatalf("black castling rights should remain: %+v", board.Castling)
	}
	if board.WhiteKingPosition != (Position{X: 6, Y: 7}) {
		t.Fatalf("king position not updated: %s", board.WhiteKingPosition)
	}
}

func TestRookCaptureClearsCastlingRight(t *testing.T) {
	board := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	move, _ := ParseMove("a1a8")
	board.MakeMove(move)
	if board.Castling.BlackQueenSide || board.Castling.WhiteQueenSide {
		t.Fatalf("queen side rights should be gone: %+v", board.Castling)
	}
}

func TestDoublePushSetsEnPassantOnlyWhenCapturable(t *testing.T) {
	board := NewBoardState()
	move, _ := ParseMove("e2e4")
	board.MakeMove(move)
	if board.EnPassant != NoPosition {
		t.Fatalf("no black pawn can capture, target should be empty, got %s", board.EnPassant)
	}

	board = mustParse(t, "4k3/8/8/8/3p4/8/4P3/4K3 w - - 0 1")
	board.MakeMove(move)
	if board.EnPassant != (Position{X: 4, Y: 5}) {
		t.Fatalf("expected en passant target e3, got %s", board.EnPassant)
	}
}
