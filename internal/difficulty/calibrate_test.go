package difficulty

import (
	"errors"
	"testing"
)

func TestFromRatingClampsToAnchors(t *testing.T) {
	low := FromRating(0)
	if low.Rating != MinRating {
		t.Fatalf("rating not clamped: %d", low.Rating)
	}
	if low.MaxDepth != 1 || low.TimeBudgetMs != 300 || low.MistakeGap != 300 || low.Window != 150 {
		t.Fatalf("low anchors not applied: %+v", low)
	}
	if low.MistakeRate != 0.30 {
		t.Fatalf("low mistake rate = %v, want 0.30", low.MistakeRate)
	}

	high := FromRating(5000)
	if high.Rating != MaxRating {
		t.Fatalf("rating not clamped: %d", high.Rating)
	}
	if high.MaxDepth != 6 || high.TimeBudgetMs != 3000 || high.MistakeRate != 0 || high.Window != 10 {
		t.Fatalf("high anchors not applied: %+v", high)
	}
}

func TestFromRatingInterpolatesLinearly(t *testing.T) {
	mid := FromRating((MinRating + MaxRating) / 2)
	if mid.TimeBudgetMs != 1650 {
		t.Fatalf("mid time budget = %d, want 1650", mid.TimeBudgetMs)
	}
	if mid.MaxDepth != 4 {
		t.Fatalf("mid depth = %d, want 4", mid.MaxDepth)
	}
	if mid.MistakeRate != 0.15 {
		t.Fatalf("mid mistake rate = %v, want 0.15", mid.MistakeRate)
	}
}

func TestFromRatingIsMonotonic(t *testing.T) {
	prev := FromRating(MinRating)
	for rating := MinRating + 100; rating <= MaxRating; rating += 100 {
		s := FromRating(rating)
		if s.MaxDepth < prev.MaxDepth || s.TimeBudgetMs < prev.TimeBudgetMs || s.NodeBudget < prev.NodeBudget {
			t.Fatalf("search budget shrank at %d: %+v -> %+v", rating, prev, s)
		}
		if s.MistakeRate > prev.MistakeRate || s.Temperature > prev.Temperature {
			t.Fatalf("play got noisier at %d", rating)
		}
		if err := s.Validate(); err != nil {
			t.Fatalf("FromRating(%d) invalid: %v", rating, err)
		}
		prev = s
	}
}

func TestQuiescenceThreshold(t *testing.T) {
	if s := FromRating(QuiescenceRating - 1); s.Quiescence || s.QuiescenceDepth != 0 {
		t.Fatalf("quiescence should be off below threshold: %+v", s)
	}
	if s := FromRating(QuiescenceRating); !s.Quiescence || s.QuiescenceDepth < 1 {
		t.Fatalf("quiescence should be on at threshold: %+v", s)
	}
}

func TestValidate(t *testing.T) {
	base := FromRating(1500)
	cases := map[string]func(*Settings){
		"zero depth":      func(s *Settings) { s.MaxDepth = 0 },
		"too deep":        func(s *Settings) { s.MaxDepth = MaxSearchDepth + 1 },
		"negative nodes":  func(s *Settings) { s.NodeBudget = -1 },
		"mistake rate":    func(s *Settings) { s.MistakeRate = 1.5 },
		"temperature":     func(s *Settings) { s.Temperature = -1 },
		"weight":          func(s *Settings) { s.Weights.Mobility = -2 },
		"quiescence zero": func(s *Settings) { s.Quiescence, s.QuiescenceDepth = true, 0 },
	}
	for name, mutate := range cases {
		s := base
		mutate(&s)
		if err := s.Validate(); !errors.Is(err, ErrInvalidSettings) {
			t.Fatalf("%s: expected ErrInvalidSettings, got %v", name, err)
		}
	}
}

func TestRootMarginCoversMistakeTarget(t *testing.T) {
	s := FromRating(MinRating)
	if got := s.RootMargin(); got < 2*s.MistakeGap+mistakeTolerance {
		t.Fatalf("root margin %d does not reach mistake target %d", got, s.MistakeGap)
	}
	s.MistakeRate = 0
	if got := s.RootMargin(); got != s.Window {
		t.Fatalf("root margin without mistakes = %d, want window %d", got, s.Window)
	}
}
