package engine

import (
	"math"

	"github.com/benbeisheim/minechess-engine/internal/difficulty"
	"github.com/benbeisheim/minechess-engine/internal/model"
)

const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	// KingValue is a sentinel. Kings are never traded.
	KingValue = 20000

	doubledPawnPenalty  = 15
	isolatedPawnPenalty = 12
	passedPawnStep      = 10

	shieldBonus         = 10
	shieldFarBonus      = 5
	defenderBonus       = 5
	centralizationStep  = 10
	halfOpenFilePenalty = 15
	openFilePenalty     = 25

	// endgamePieces is the piece count (kings and pawns included) at or
	// below which the king is expected to walk to the centre.
	endgamePieces = 12
)

var pieceValues = [...]int{
	model.NoPieceType: 0,
	model.Pawn:        PawnValue,
	model.Knight:      KnightValue,
	model.Bishop:      BishopValue,
	model.Rook:        RookValue,
	model.Queen:       QueenValue,
	model.King:        KingValue,
}

func PieceValue(t model.PieceType) int {
	return pieceValues[t]
}

// Breakdown is the unweighted value of every evaluation term, white minus
// black, plus the weighted total from the side to move's perspective.
type Breakdown struct {
	Material      int `json:"material"`
	PieceSquare   int `json:"pieceSquare"`
	Mobility      int `json:"mobility"`
	PawnStructure int `json:"pawnStructure"`
	KingSafety    int `json:"kingSafety"`
	Total         int `json:"total"`
}

func Evaluate(b *model.BoardState, w difficulty.EvalWeights) int {
	var score float64
	if w.Material != 0 {
		score += w.Material * float64(material(b))
	}
	if w.PieceSquare != 0 {
		score += w.PieceSquare * float64(pieceSquare(b))
	}
	if w.Mobility != 0 {
		score += w.Mobility * float64(mobility(b))
	}
	if w.PawnStructure != 0 {
		score += w.PawnStructure * float64(pawnStructure(b))
	}
	if w.KingSafety != 0 {
		score += w.KingSafety * float64(kingSafety(b))
	}
	return perspective(b, int(math.Round(score)))
}

// MaterialOnly is the cheap evaluator used once the search clock trips.
func MaterialOnly(b *model.BoardState) int {
	return perspective(b, material(b))
}

func Explain(b *model.BoardState, w difficulty.EvalWeights) Breakdown {
	return Breakdown{
		Material:      material(b),
		PieceSquare:   pieceSquare(b),
		Mobility:      mobility(b),
		PawnStructure: pawnStructure(b),
		KingSafety:    kingSafety(b),
		Total:         Evaluate(b, w),
	}
}

func perspective(b *model.BoardState, whiteScore int) int {
	if b.ToMove == model.PlayerColorBlack {
		return -whiteScore
	}
	return whiteScore
}

func sign(color model.PlayerColor) int {
	if color == model.PlayerColorWhite {
		return 1
	}
	return -1
}

func material(b *model.BoardState) int {
	score := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			piece := b.Board[y][x]
			if !piece.IsEmpty() {
				score += sign(piece.Color) * pieceValues[piece.Type]
			}
		}
	}
	return score
}

func pieceSquare(b *model.BoardState) int {
	score := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			piece := b.Board[y][x]
			if !piece.IsEmpty() {
				score += sign(piece.Color) * pieceSquareValue(piece, x, y)
			}
		}
	}
	return score
}

func mobility(b *model.BoardState) int {
	return len(b.LegalMovesFor(model.PlayerColorWhite)) - len(b.LegalMovesFor(model.PlayerColorBlack))
}

// pawnFiles counts white and black pawns per file.
func pawnFiles(b *model.BoardState) (white, black [8]int) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			switch b.Board[y][x] {
			case model.Piece{Type: model.Pawn, Color: model.PlayerColorWhite}:
				white[x]++
			case model.Piece{Type: model.Pawn, Color: model.PlayerColorBlack}:
				black[x]++
			}
		}
	}
	return white, black
}

func pawnStructure(b *model.BoardState) int {
	white, black := pawnFiles(b)
	score := 0
	for file := 0; file < 8; file++ {
		if white[file] > 1 {
			score -= (white[file] - 1) * doubledPawnPenalty
		}
		if black[file] > 1 {
			score += (black[file] - 1) * doubledPawnPenalty
		}
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			piece := b.Board[y][x]
			if piece.Type != model.Pawn {
				continue
			}
			own := white
			if piece.Color == model.PlayerColorBlack {
				own = black
			}
			s := sign(piece.Color)
			if fileCount(own, x-1) == 0 && fileCount(own, x+1) == 0 {
				score -= s * isolatedPawnPenalty
			}
			if isPassed(b, piece.Color, x, y) {
				score += s * passedPawnBonus(piece.Color, y)
			}
		}
	}
	return score
}

func fileCount(files [8]int, file int) int {
	if file < 0 || file > 7 {
		return 0
	}
	return files[file]
}

// isPassed reports whether no enemy pawn stands ahead of the pawn on its own
// or an adjacent file.
func isPassed(b *model.BoardState, color model.PlayerColor, x, y int) bool {
	enemy := model.Piece{Type: model.Pawn, Color: color.Opponent()}
	step := -1
	if color == model.PlayerColorBlack {
		step = 1
	}
	for ry := y + step; ry >= 0 && ry < 8; ry += step {
		for fx := x - 1; fx <= x+1; fx++ {
			if fx >= 0 && fx < 8 && b.Board[ry][fx] == enemy {
				return false
			}
		}
	}
	return true
}

// passedPawnBonus grows as the pawn nears its promotion rank.
func passedPawnBonus(color model.PlayerColor, y int) int {
	distance := y
	if color == model.PlayerColorBlack {
		distance = 7 - y
	}
	return (7 - distance) * passedPawnStep
}

func kingSafety(b *model.BoardState) int {
	endgame := b.PieceCount() <= endgamePieces
	white, black := pawnFiles(b)
	return kingSafetyFor(b, model.PlayerColorWhite, endgame, white, black) -
		kingSafetyFor(b, model.PlayerColorBlack, endgame, black, white)
}

func kingSafetyFor(b *model.BoardState, color model.PlayerColor, endgame bool, own, enemy [8]int) int {
	king := b.KingPosition(color)
	score := 0

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x, y := king.X+dx, king.Y+dy
			if (dx != 0 || dy != 0) && x >= 0 && x < 8 && y >= 0 && y < 8 {
				if piece := b.Board[y][x]; !piece.IsEmpty() && piece.Color == color {
					score += defenderBonus
				}
			}
		}
	}

	centre := max(centreDistance(king.X), centreDistance(king.Y))
	if endgame {
		return score + (3-centre)*centralizationStep
	}
	score -= (3 - centre) * centralizationStep

	forward := -1
	if color == model.PlayerColorBlack {
		forward = 1
	}
	pawn := model.Piece{Type: model.Pawn, Color: color}
	for x := king.X - 1; x <= king.X+1; x++ {
		if x < 0 || x > 7 {
			continue
		}
		if y := king.Y + forward; y >= 0 && y < 8 && b.Board[y][x] == pawn {
			score += shieldBonus
		} else if y := king.Y + 2*forward; y >= 0 && y < 8 && b.Board[y][x] == pawn {
			score += shieldFarBonus
		}
		if own[x] == 0 {
			if enemy[x] == 0 {
				score -= openFilePenalty
			} else {
				score -= halfOpenFilePenalty
			}
		}
	}
	return score
}

// centreDistance is 0 on the two central files/rows and 3 on the edges.
func centreDistance(c int) int {
	if c < 4 {
		return 3 - c
	}
	return c - 4
}
