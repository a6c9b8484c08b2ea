package services

import (
	"math"

	"alfredoptarigan/careermatch/internal/models"
)

// ScoreWeights splits the 100 points between must-have and nice-to-have
// requirements.
type ScoreWeights struct {
	MustHave   float64
	NiceToHave float64
}

var DefaultScoreWeights = ScoreWeights{MustHave: 70, NiceToHave: 30}

// ComputeFitScore scores match lists with the default weights.
func ComputeFitScore(mustHave, niceToHave []models.MatchItem) int {
	return DefaultScoreWeights.Score(mustHave, niceToHave)
}

// Score gives every item of a list an equal share of that list's weight: a
// match earns the full share, a partial half of it. Halves round to even.
func (w ScoreWeights) Score(mustHave, niceToHave []models.MatchItem) int {
	total := sectionScore(mustHave, w.MustHave) + sectionScore(niceToHave, w.NiceToHave)
	score := int(math.RoundToEven(total))
	return max(0, min(100, score))
}

func sectionScore(items []models.MatchItem, weight float64) float64 {
	if len(items) == 0 {
		return 0
	}
	share := weight / float64(len(items))
	var sum float64
	for _, item := range items {
		switch item.Status {
		case models.MatchFull:
			sum += share
		case models.MatchPartial:
			sum += 0.5 * share
		}
	}
	return sum
}
