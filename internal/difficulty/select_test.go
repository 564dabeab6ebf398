package difficulty

import (
	"testing"

	"github.com/benbeisheim/minechess-engine/internal/model"
)

func scored(scores ...int) []model.ScoredMove {
	ranked := make([]model.ScoredMove, len(scores))
	for i, s := range scores {
		ranked[i] = model.ScoredMove{
			Move:  model.Move{From: model.Position{X: i, Y: 6}, To: model.Position{X: i, Y: 5}},
			Score: s,
		}
	}
	return ranked
}

func TestSelectMoveEmpty(t *testing.T) {
	pick, choice := SelectMove(FromRating(1500), nil, NewRand(1))
	if !pick.Move.IsNull() || choice != ChoiceNone {
		t.Fatalf("expected null move, got %+v %s", pick, choice)
	}
}

func TestSelectMoveZeroTemperaturePlaysBest(t *testing.T) {
	s := Settings{Window: 100, Temperature: 0}
	ranked := scored(10, 40, 35, -20)
	for seed := int64(1); seed < 20; seed++ {
		pick, choice := SelectMove(s, ranked, NewRand(seed))
		if pick.Score != 40 || choice != ChoiceBest {
			t.Fatalf("seed %d: got %+v %s, want best", seed, pick, choice)
		}
	}
}

func TestSelectMoveIsDeterministicWithSeed(t *testing.T) {
	s := Settings{Window: 200, Temperature: 80}
	ranked := scored(50, 45, 30, 10, -100)
	first, _ := SelectMove(s, ranked, NewRand(42))
	for i := 0; i < 10; i++ {
		again, _ := SelectMove(s, ranked, NewRand(42))
		if again != first {
			t.Fatalf("same seed picked %+v then %+v", first, again)
		}
	}
}

func TestSelectMoveStaysInsideWindow(t *testing.T) {
	s := Settings{Window: 30, Temperature: 1000}
	ranked := scored(100, 90, 75, 20, -300)
	rng := NewRand(7)
	for i := 0; i < 200; i++ {
		pick, _ := SelectMove(s, ranked, rng)
		if pick.Score < 70 {
			t.Fatalf("picked %d outside window of best 100", pick.Score)
		}
	}
}

func TestSelectMoveMistakeHitsTarget(t *testing.T) {
	s := Settings{MistakeRate: 1, MistakeGap: 200}
	ranked := scored(300, 250, 120, 90, -400)
	rng := NewRand(3)
	for i := 0; i < 50; i++ {
		pick, choice := SelectMove(s, ranked, rng)
		if choice != ChoiceMistake {
			t.Fatalf("expected mistake, got %s", choice)
		}
		if pick.Score != 120 && pick.Score != 90 {
			t.Fatalf("mistake scored %d, want within 50 of 100", pick.Score)
		}
	}
}

func TestSelectMoveMistakeFallsBackToNearest(t *testing.T) {
	s := Settings{MistakeRate: 1, MistakeGap: 100}
	ranked := scored(200, 195, 20)
	pick, choice := SelectMove(s, ranked, NewRand(1))
	if choice != ChoiceMistake || pick.Score != 20 {
		t.Fatalf("expected alternative nearest the target, got %+v %s", pick, choice)
	}
}

func TestSelectMoveMistakeRefusesCollapse(t *testing.T) {
	s := Settings{MistakeRate: 1, MistakeGap: 100}
	ranked := scored(200, -900)
	pick, choice := SelectMove(s, ranked, NewRand(1))
	if choice != ChoiceBest || pick.Score != 200 {
		t.Fatalf("expected best move instead of a 1100cp blunder, got %+v %s", pick, choice)
	}
}
