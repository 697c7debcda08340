package matchmaking

import (
	"fmt"
	"math"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rallyrank/internal/apperr"
	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/samber/lo"
)

type scoreWeights struct {
	location     float64
	skill        float64
	elo          float64
	availability float64
}

// skillEpsilon absorbs float noise in differences such as 3.7-2.7.
const skillEpsilon = 1e-9

var (
	singlesWeights = scoreWeights{location: 0.35, skill: 0.45, elo: 0.10, availability: 0.10}
	doublesWeights = scoreWeights{location: 0.30, skill: 0.50, elo: 0.10, availability: 0.10}
)

// Scorer is the basic candidate scorer for singles (1 opponent) and doubles (3 other players).
type Scorer struct {
	thresholds Thresholds
}

// NewScorer creates a Scorer using the given thresholds.
func NewScorer(t Thresholds) *Scorer {
	return &Scorer{thresholds: t}
}

// FindMatches scores the pool against the initiator and returns the best desiredCount candidates.
func (s *Scorer) FindMatches(pool []player.Player, initiator player.Player, desiredCount int, c Constraints) (MatchingResult, error) {
	if desiredCount != 1 && desiredCount != 3 {
		return MatchingResult{}, apperr.Validationf("desired count must be 1 (singles) or 3 (doubles), got %d", desiredCount)
	}
	doubles := desiredCount == 3

	gender := c.Gender
	if gender == "" {
		gender = initiator.Gender
	}
	city := c.City
	if city == "" {
		city = initiator.City
	}

	candidates := lo.Filter(pool, func(p player.Player, _ int) bool {
		if p.ID == initiator.ID || p.Gender != gender {
			return false
		}
		return doubles || p.City == city
	})
	if len(candidates) == 0 {
		filter := fmt.Sprintf("gender=%s", gender)
		if !doubles {
			filter += fmt.Sprintf(" city=%s", city)
		}
		return MatchingResult{}, &apperr.InsufficientCandidatesError{PoolSize: len(pool), Filter: filter}
	}

	w := singlesWeights
	if doubles {
		w = doublesWeights
	}
	scored := lo.Map(candidates, func(p player.Player, _ int) CandidateScore {
		return scoreCandidate(p, initiator, city, w)
	})
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].CompositeScore != scored[j].CompositeScore {
			return scored[i].CompositeScore > scored[j].CompositeScore
		}
		return scored[i].Player.ID < scored[j].Player.ID
	})

	selected := scored[:min(desiredCount, len(scored))]
	result := MatchingResult{
		Matches: selected,
		Score:   selected[0].CompositeScore,
	}
	result.Found = len(selected) == desiredCount &&
		result.Score > s.thresholds.ScorerFound &&
		s.passesSkillGate(selected, doubles)

	log.Debug("Scored match candidates", "initiator", initiator.ID, "candidates", len(scored), "selected", len(selected), "score", result.Score, "found", result.Found)
	return result, nil
}

// passesSkillGate keeps location and availability alone from producing a match.
// Singles only checks the top candidate; doubles checks everyone selected.
func (s *Scorer) passesSkillGate(selected []CandidateScore, doubles bool) bool {
	if !doubles {
		return selected[0].SkillDelta <= s.thresholds.SkillGate+skillEpsilon
	}
	return lo.EveryBy(selected, func(c CandidateScore) bool {
		return c.SkillDelta <= s.thresholds.SkillGate+skillEpsilon
	})
}

func scoreCandidate(candidate, initiator player.Player, city string, w scoreWeights) CandidateScore {
	d := math.Abs(candidate.SkillRating - initiator.SkillRating)

	locationScore := 0.0
	if candidate.City == city {
		locationScore = 100
	}
	availabilityScore := 0.0
	if candidate.Availability == player.AvailabilityBoth {
		availabilityScore = 20
	}
	eloScore := math.Max(0, 100-math.Abs(float64(candidate.EloRating-initiator.EloRating))/30)

	composite := locationScore*w.location +
		skillScore(d)*w.skill +
		eloScore*w.elo +
		availabilityScore*w.availability

	return CandidateScore{Player: candidate, CompositeScore: composite, SkillDelta: d}
}

// skillScore rewards tight matches steeply and drops sharply once the gap crosses a full level.
func skillScore(d float64) float64 {
	if d <= 1.0 {
		return math.Max(80, 100-20*d)
	}
	return math.Max(0, 60-20*(d-1.0))
}
