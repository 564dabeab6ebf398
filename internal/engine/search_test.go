package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbeisheim/minechess-engine/internal/difficulty"
	"github.com/benbeisheim/minechess-engine/internal/model"
)

const (
	foolsMateFEN = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"
	backRankFEN  = "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"
	stalemateFEN = "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
)

// fixedSettings searches exactly to depth and always plays the best move.
func fixedSettings(depth int, w difficulty.EvalWeights) difficulty.Settings {
	return difficulty.Settings{
		MaxDepth:     depth,
		TimeBudgetMs: int64(time.Minute / time.Millisecond),
		Weights:      w,
		Seed:         1,
	}
}

func search(t *testing.T, fen string, settings difficulty.Settings, history ...string) Result {
	t.Helper()
	return searchWith(t, New(1<<16), fen, settings, history...)
}

func searchWith(t *testing.T, eng *Engine, fen string, settings difficulty.Settings, history ...string) Result {
	t.Helper()
	result, err := eng.Search(context.Background(), Request{
		Position: mustParse(t, fen),
		History:  history,
		Settings: settings,
	}, nil)
	if err != nil {
		t.Fatalf("search %q: %v", fen, err)
	}
	return result
}

func TestStartingPositionDepthOneIsLevel(t *testing.T) {
	result := search(t, model.StartingFEN, fixedSettings(1, difficulty.MaterialOnly))
	if len(result.Ranked) != 20 {
		t.Fatalf("ranked %d moves, want 20", len(result.Ranked))
	}
	for _, m := range result.Ranked {
		if m.Score != 0 {
			t.Fatalf("%s scored %d, want 0", m.Move, m.Score)
		}
	}
	if result.Depth != 1 || result.TimedOut {
		t.Fatalf("depth %d timedOut %v", result.Depth, result.TimedOut)
	}
}

func TestFreeQueenCaptureDominates(t *testing.T) {
	settings := fixedSettings(2, difficulty.EvalWeights{Material: 1, PieceSquare: 1})
	settings.Quiescence = true
	settings.QuiescenceDepth = 4
	settings.Window = 2000
	result := search(t, freeQueenFEN, settings)

	capture := mustMove(t, "d4c5")
	if result.Move != capture {
		t.Fatalf("played %s, want %s", result.Move, capture)
	}
	for _, m := range result.Ranked[1:] {
		if margin := result.Ranked[0].Score - m.Score; margin < QueenValue-PawnValue-50 {
			t.Fatalf("%s is only %d behind the capture", m.Move, margin)
		}
	}
}

func TestCheckmatedRootReturnsNullMove(t *testing.T) {
	result := search(t, foolsMateFEN, fixedSettings(3, difficulty.MaterialOnly))
	if !result.Move.IsNull() || result.Score != -MateScore || result.Depth != 0 {
		t.Fatalf("got move %s score %d depth %d", result.Move, result.Score, result.Depth)
	}
	if result.Choice != difficulty.ChoiceNone || len(result.Ranked) != 0 {
		t.Fatalf("choice %s ranked %v", result.Choice, result.Ranked)
	}
}

func TestStalematedRootScoresZero(t *testing.T) {
	result := search(t, stalemateFEN, fixedSettings(3, difficulty.MaterialOnly))
	if !result.Move.IsNull() || result.Score != 0 {
		t.Fatalf("got move %s score %d", result.Move, result.Score)
	}
}

func TestFindsMateInOne(t *testing.T) {
	result := search(t, backRankFEN, fixedSettings(4, difficulty.MaterialOnly))
	if result.Move != mustMove(t, "a1a8") {
		t.Fatalf("played %s, want a1a8", result.Move)
	}
	if result.Score != MateScore-1 {
		t.Fatalf("score %d, want %d", result.Score, MateScore-1)
	}
	// The search stops deepening once a forced mate is on the board.
	if result.Depth != 2 {
		t.Fatalf("depth %d, want 2", result.Depth)
	}
}

func TestElapsedDeadlineFallsBackToMaterial(t *testing.T) {
	settings := fixedSettings(6, difficulty.EvalWeights{Material: 1, PieceSquare: 1, Mobility: 3})
	settings.TimeBudgetMs = 0
	start := time.Now()
	result := search(t, freeQueenFEN, settings)

	if result.Depth != 0 || !result.TimedOut {
		t.Fatalf("depth %d timedOut %v, want depth 0 timed out", result.Depth, result.TimedOut)
	}
	if result.Move != mustMove(t, "d4c5") || result.Score != PawnValue {
		t.Fatalf("got %s %d, want d4c5 %d", result.Move, result.Score, PawnValue)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("expired search took %v", time.Since(start))
	}
}

func TestCancelledContextStillReturnsAMove(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := New(1024).Search(ctx, Request{
		Position: model.NewBoardState(),
		Settings: fixedSettings(5, difficulty.MaterialOnly),
	}, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Move.IsNull() || !result.TimedOut || result.Depth != 0 {
		t.Fatalf("got %+v", result)
	}
}

func TestNodeBudgetStopsSearch(t *testing.T) {
	settings := fixedSettings(8, difficulty.MaterialOnly)
	settings.NodeBudget = 500
	result := search(t, kiwipeteFEN, settings)
	if !result.TimedOut || result.Depth >= 8 {
		t.Fatalf("depth %d timedOut %v", result.Depth, result.TimedOut)
	}
	if result.Move.IsNull() {
		t.Fatalf("no move returned")
	}
}

func TestRepeatedPositionScoresExactlyZero(t *testing.T) {
	// White is a queen up, but retreating the king to f1 repeats a position
	// that has already occurred twice.
	fen := "4k3/8/8/8/8/8/8/3QK3 w - - 0 1"
	board := mustParse(t, fen)
	repeat := mustMove(t, "e1f1")
	board.MakeMove(repeat)
	key := board.Key()

	settings := fixedSettings(2, difficulty.MaterialOnly)
	settings.Window = 2000
	result := search(t, fen, settings, key, key)

	found := false
	for _, m := range result.Ranked {
		if m.Move == repeat {
			found = true
			if m.Score != 0 {
				t.Fatalf("repetition scored %d, want 0", m.Score)
			}
		}
	}
	if !found {
		t.Fatalf("%s missing from the ranked moves", repeat)
	}
	if result.Move == repeat || result.Score < QueenValue-PawnValue {
		t.Fatalf("played %s scoring %d while a queen up", result.Move, result.Score)
	}
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	cases := []struct {
		name  string
		fen   string
		depth int
	}{
		{"start", model.StartingFEN, 3},
		{"kiwipete", kiwipeteFEN, 2},
		{"free queen", freeQueenFEN, 3},
		{"endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3},
		{"back rank", backRankFEN, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			weights := difficulty.EvalWeights{Material: 1, PieceSquare: 1, PawnStructure: 1, KingSafety: 1}
			result := search(t, tc.fen, fixedSettings(tc.depth, weights))
			want := Minimax(mustParse(t, tc.fen), result.Depth, weights, nil)
			if result.Ranked[0].Score != want {
				t.Fatalf("alpha-beta %d at depth %d, minimax %d", result.Ranked[0].Score, result.Depth, want)
			}
		})
	}
}

func TestTranspositionTableDoesNotChangeBestScore(t *testing.T) {
	settings := fixedSettings(3, difficulty.EvalWeights{Material: 1, PieceSquare: 1})
	plain := search(t, kiwipeteFEN, settings)
	settings.UseTranspositionTable = true
	cached := search(t, kiwipeteFEN, settings)
	if plain.Ranked[0].Score != cached.Ranked[0].Score {
		t.Fatalf("without cache %d, with cache %d", plain.Ranked[0].Score, cached.Ranked[0].Score)
	}
}

func TestSharedTableKeepsSettingsApart(t *testing.T) {
	fens := []string{
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	}
	rich := fixedSettings(4, difficulty.EvalWeights{Material: 1, PieceSquare: 1, PawnStructure: 1, KingSafety: 1})
	rich.UseTranspositionTable = true
	plain := fixedSettings(3, difficulty.MaterialOnly)
	plain.UseTranspositionTable = true

	for _, fen := range fens {
		eng := New(1 << 16)
		searchWith(t, eng, fen, rich)
		warm := searchWith(t, eng, fen, plain)
		fresh := search(t, fen, plain)
		want := Minimax(mustParse(t, fen), 3, difficulty.MaterialOnly, nil)

		if warm.Ranked[0].Score != fresh.Ranked[0].Score || warm.Ranked[0].Score != want {
			t.Fatalf("%s: warm %d, fresh %d, minimax %d", fen, warm.Ranked[0].Score, fresh.Ranked[0].Score, want)
		}
		if warm.Move != fresh.Move {
			t.Fatalf("%s: warm played %s, fresh %s", fen, warm.Move, fresh.Move)
		}
	}
}

func TestRepetitionScoresAreNotCached(t *testing.T) {
	fen := "4k3/8/8/8/8/8/8/3QK3 w - - 0 1"
	board := mustParse(t, fen)
	undo := board.MakeMove(mustMove(t, "e1f1"))
	repeated := board.Key()
	board.UnmakeMove(undo)

	settings := fixedSettings(2, difficulty.MaterialOnly)
	settings.UseTranspositionTable = true
	eng := New(1 << 16)
	searchWith(t, eng, fen, settings, repeated, repeated)

	tt := eng.TranspositionTable()
	if tt.Len() == 0 {
		t.Fatalf("nothing was cached")
	}
	if entry, ok := tt.Probe(board.Key()); ok {
		t.Fatalf("root scored through a repetition was cached: %+v", entry)
	}
}

func TestRankedTiesFollowMoveText(t *testing.T) {
	ranked := []model.ScoredMove{
		{Move: mustMove(t, "g1f3"), Score: 44},
		{Move: mustMove(t, "b1c3"), Score: 44},
		{Move: mustMove(t, "e2e4"), Score: 50},
	}
	sortRanked(ranked)
	want := []string{"e2e4", "b1c3", "g1f3"}
	for i, m := range ranked {
		if m.Move.String() != want[i] {
			t.Fatalf("position %d holds %s, want %s", i, m.Move, want[i])
		}
	}
}

func TestSeededSearchRepeatsOnSharedEngine(t *testing.T) {
	settings := difficulty.FromRating(1800)
	settings.MaxDepth = 3
	settings.TimeBudgetMs = int64(time.Minute / time.Millisecond)
	settings.NodeBudget = 0
	settings.MistakeRate = 0
	settings.Seed = 42

	eng := New(1 << 16)
	first := searchWith(t, eng, model.StartingFEN, settings)
	for i := 0; i < 3; i++ {
		again := searchWith(t, eng, model.StartingFEN, settings)
		if again.Move != first.Move || again.Score != first.Score {
			t.Fatalf("run %d on a warm table: %s %d, first %s %d", i, again.Move, again.Score, first.Move, first.Score)
		}
	}
	if fresh := search(t, model.StartingFEN, settings); fresh.Move != first.Move || fresh.Score != first.Score {
		t.Fatalf("fresh engine: %s %d, shared %s %d", fresh.Move, fresh.Score, first.Move, first.Score)
	}
}

func TestSearchIsDeterministicWithSeed(t *testing.T) {
	settings := difficulty.FromRating(1800)
	settings.MaxDepth = 3
	settings.TimeBudgetMs = int64(time.Minute / time.Millisecond)
	settings.NodeBudget = 0
	settings.MistakeRate = 0
	settings.Seed = 42

	first := search(t, model.StartingFEN, settings)
	for i := 0; i < 3; i++ {
		again := search(t, model.StartingFEN, settings)
		if again.Move != first.Move || again.Score != first.Score || again.Nodes != first.Nodes {
			t.Fatalf("run %d: %s %d %d, first %s %d %d", i, again.Move, again.Score, again.Nodes, first.Move, first.Score, first.Nodes)
		}
	}
}

func TestProgressPerCompletedDepth(t *testing.T) {
	var updates []Progress
	result, err := New(1024).Search(context.Background(), Request{
		Position: model.NewBoardState(),
		Settings: fixedSettings(3, difficulty.MaterialOnly),
	}, func(p Progress) {
		updates = append(updates, p)
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(updates) != 3 {
		t.Fatalf("got %d progress updates, want 3", len(updates))
	}
	for i, p := range updates {
		if p.Depth != i+1 {
			t.Fatalf("update %d has depth %d", i, p.Depth)
		}
		if i > 0 && p.Nodes <= updates[i-1].Nodes {
			t.Fatalf("node count did not grow: %d then %d", updates[i-1].Nodes, p.Nodes)
		}
	}
	if last := updates[len(updates)-1]; last.Nodes != result.Nodes || last.BestMove != result.Ranked[0].Move {
		t.Fatalf("last update %+v disagrees with result", last)
	}
}

func TestSearchRejectsMalformedRequests(t *testing.T) {
	valid := fixedSettings(2, difficulty.MaterialOnly)
	noKing := mustParse(t, freeQueenFEN)
	noKing.Board[7][4] = model.Piece{}

	cases := []struct {
		name string
		req  Request
		want error
	}{
		{"missing position", Request{Settings: valid}, ErrInvalidRequest},
		{"invalid position", Request{Position: noKing, Settings: valid}, ErrInvalidRequest},
		{"wrong side", Request{Position: model.NewBoardState(), EngineColor: model.PlayerColorBlack, Settings: valid}, ErrNotEngineTurn},
		{"invalid settings", Request{Position: model.NewBoardState(), Settings: difficulty.Settings{}}, difficulty.ErrInvalidSettings},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(16).Search(context.Background(), tc.req, nil)
			if !errors.Is(err, ErrInvalidRequest) || !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSearchLeavesCallerBoardUntouched(t *testing.T) {
	board := mustParse(t, kiwipeteFEN)
	before := *board
	_, err := New(1024).Search(context.Background(), Request{Position: board, Settings: fixedSettings(2, difficulty.MaterialOnly)}, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if *board != before {
		t.Fatalf("search mutated the request board")
	}
}

func TestFallbackRanksByMaterial(t *testing.T) {
	result := Fallback(Request{Position: mustParse(t, freeQueenFEN)})
	if result.Move != mustMove(t, "d4c5") || result.Score != PawnValue || !result.TimedOut {
		t.Fatalf("got %+v", result)
	}
	mated := Fallback(Request{Position: mustParse(t, foolsMateFEN)})
	if !mated.Move.IsNull() || mated.Score != -MateScore {
		t.Fatalf("mated fallback %+v", mated)
	}
}
