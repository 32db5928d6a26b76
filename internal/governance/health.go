package governance

import "github.com/gosuda/orderfacts/internal/facts"

const (
	maxScore      = 100
	penaltyHigh   = 30
	penaltyMedium = 10
	penaltyLow    = 3
)

type LevelCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// FactHealthSummary reduces a warning list to counts and a score in [0,100].
type FactHealthSummary struct {
	Score   int                       `json:"score"`
	Total   int                       `json:"total"`
	Summary LevelCounts               `json:"summary"`
	ByCode  map[facts.WarningCode]int `json:"by_code"`
}

// Score is a pure, order-independent reduction of warnings.
func Score(warnings []facts.FactWarning) FactHealthSummary {
	s := FactHealthSummary{
		Total:  len(warnings),
		ByCode: make(map[facts.WarningCode]int),
	}

	penalty := 0
	for _, w := range warnings {
		s.ByCode[w.Code]++
		switch w.Level {
		case facts.LevelHigh:
			s.Summary.High++
			penalty += penaltyHigh
		case facts.LevelMedium:
			s.Summary.Medium++
			penalty += penaltyMedium
		case facts.LevelLow:
			s.Summary.Low++
			penalty += penaltyLow
		}
	}

	s.Score = max(0, min(maxScore, maxScore-penalty))
	return s
}
