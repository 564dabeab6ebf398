package difficulty

import "math"

// Param names one interpolated setting.
type Param string

const (
	ParamMaxDepth          Param = "maxDepth"
	ParamTimeBudgetMs      Param = "timeBudgetMs"
	ParamNodeBudget        Param = "nodeBudget"
	ParamQuiescenceDepth   Param = "quiescenceDepth"
	ParamPieceSquareWeight Param = "pieceSquareWeight"
	ParamMobilityWeight    Param = "mobilityWeight"
	ParamPawnWeight        Param = "pawnStructureWeight"
	ParamKingSafetyWeight  Param = "kingSafetyWeight"
	ParamMistakeRate       Param = "mistakeRate"
	ParamMistakeGap        Param = "mistakeGap"
	ParamTemperature       Param = "temperature"
	ParamWindow            Param = "window"
)

// Anchor holds a parameter's value at MinRating and at MaxRating.
type Anchor struct {
	Low  float64
	High float64
}

// Anchors is the whole rating calibration. Every parameter moves linearly
// between its two anchors.
var Anchors = map[Param]Anchor{
	ParamMaxDepth:          {Low: 1, High: 6},
	ParamTimeBudgetMs:      {Low: 300, High: 3000},
	ParamNodeBudget:        {Low: 2_000, High: 2_000_000},
	ParamQuiescenceDepth:   {Low: 2, High: 8},
	ParamPieceSquareWeight: {Low: 0.2, High: 1.0},
	ParamMobilityWeight:    {Low: 0, High: 4},
	ParamPawnWeight:        {Low: 0, High: 1.0},
	ParamKingSafetyWeight:  {Low: 0, High: 1.0},
	ParamMistakeRate:       {Low: 0.30, High: 0},
	ParamMistakeGap:        {Low: 300, High: 30},
	ParamTemperature:       {Low: 120, High: 5},
	ParamWindow:            {Low: 150, High: 10},
}

// ClampRating limits rating to the supported range.
func ClampRating(rating int) int {
	if rating < MinRating {
		return MinRating
	}
	if rating > MaxRating {
		return MaxRating
	}
	return rating
}

// Interpolate returns param's value at rating.
func Interpolate(param Param, rating int) float64 {
	a := Anchors[param]
	t := float64(ClampRating(rating)-MinRating) / float64(MaxRating-MinRating)
	return a.Low + (a.High-a.Low)*t
}

func interpolateInt(param Param, rating int) int {
	return int(math.Round(Interpolate(param, rating)))
}

// FromRating derives the full settings bundle for a rating.
func FromRating(rating int) Settings {
	rating = ClampRating(rating)
	s := Settings{
		Rating:                rating,
		MaxDepth:              interpolateInt(ParamMaxDepth, rating),
		TimeBudgetMs:          int64(interpolateInt(ParamTimeBudgetMs, rating)),
		NodeBudget:            int64(interpolateInt(ParamNodeBudget, rating)),
		Quiescence:            rating >= QuiescenceRating,
		UseTranspositionTable: true,
		Weights: EvalWeights{
			Material:      1,
			PieceSquare:   Interpolate(ParamPieceSquareWeight, rating),
			Mobility:      Interpolate(ParamMobilityWeight, rating),
			PawnStructure: Interpolate(ParamPawnWeight, rating),
			KingSafety:    Interpolate(ParamKingSafetyWeight, rating),
		},
		MistakeRate: Interpolate(ParamMistakeRate, rating),
		MistakeGap:  interpolateInt(ParamMistakeGap, rating),
		Temperature: Interpolate(ParamTemperature, rating),
		Window:      interpolateInt(ParamWindow, rating),
	}
	if s.Quiescence {
		s.QuiescenceDepth = interpolateInt(ParamQuiescenceDepth, rating)
	}
	return s
}
