package matchmaking

import (
	"math"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rallyrank/internal/apperr"
	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/mauv0809/rallyrank/internal/rating"
	"github.com/samber/lo"
)

const (
	thinPoolSize    = 5
	crowdedPoolSize = 20
	maxTolerance    = 1.5
	minTolerance    = 0.3
	// primaryShareTenths caps the share of casual/training slots taken by top candidates, in tenths.
	// The cap rounds down but always leaves at least one slot.
	primaryShareTenths = 7
)

// Engine is the enhanced matcher: dynamic skill tolerance, quality metrics and
// match-type-aware selection.
type Engine struct {
	ratings    rating.System
	thresholds Thresholds
}

// NewEngine creates an Engine. The rating system supplies the default ELO for
// players whose rating is unknown.
func NewEngine(ratings rating.System, t Thresholds) *Engine {
	return &Engine{ratings: ratings, thresholds: t}
}

// FindEnhancedMatches ranks the local pool for the initiator and selects up to DesiredCount players.
// A missing initiator or an empty candidate list yields EmptyEnhancedResult.
func (e *Engine) FindEnhancedMatches(req EnhancedRequest) (EnhancedMatchingResult, error) {
	if req.DesiredCount < 1 {
		return EnhancedMatchingResult{}, apperr.Validationf("desired count must be at least 1, got %d", req.DesiredCount)
	}
	if !req.MatchType.Valid() {
		return EnhancedMatchingResult{}, apperr.Validationf("a match type is required")
	}

	initiator, ok := player.Find(req.Pool, req.InitiatorID)
	if !ok {
		log.Debug("Initiator not in pool", "initiator", req.InitiatorID, "pool", len(req.Pool))
		return EmptyEnhancedResult(), nil
	}
	skill := req.SkillLevel
	if skill == 0 {
		skill = initiator.SkillRating
	}
	city := lo.Ternary(req.City != "", req.City, initiator.City)
	gender := lo.Ternary(req.Gender != "", req.Gender, initiator.Gender)

	local := lo.Filter(req.Pool, func(p player.Player, _ int) bool {
		if p.ID == initiator.ID || p.Gender != gender || p.City != city {
			return false
		}
		return req.Sport == "" || p.Sport == req.Sport
	})

	tolerance := e.skillTolerance(req.MatchType, len(local), skill)
	within := lo.Filter(local, func(p player.Player, _ int) bool {
		return math.Abs(p.SkillRating-skill) <= tolerance+skillEpsilon
	})
	if len(within) == 0 {
		log.Debug("No candidates within skill tolerance", "initiator", initiator.ID, "local_pool", len(local), "tolerance", tolerance)
		return EmptyEnhancedResult(), nil
	}

	profile := profiles[req.MatchType]
	scored := lo.Map(within, func(p player.Player, _ int) EnhancedCandidate {
		return e.scoreCandidate(initiator, p, skill, req.MatchType, profile.weights, req.Trends)
	})
	sortEnhanced(scored)

	selected := e.selectCandidates(scored, req.MatchType, req.DesiredCount)
	if len(selected) == 0 {
		log.Debug("No candidates above selection thresholds", "initiator", initiator.ID, "scored", len(scored))
		return EmptyEnhancedResult(), nil
	}

	avg := lo.SumBy(selected, func(c EnhancedCandidate) float64 { return c.Score }) / float64(len(selected))
	metrics := averageMetrics(selected)
	result := EnhancedMatchingResult{
		MatchedPlayers:       selected,
		Found:                avg >= e.thresholds.FoundAverage,
		MatchScore:           avg,
		QualityMetrics:       metrics,
		ConfidenceLevel:      confidenceFor(avg),
		RecommendedMatchType: recommendMatchType(metrics),
		SkillTolerance:       tolerance,
	}
	log.Debug("Enhanced match computed", "initiator", initiator.ID, "type", req.MatchType, "tolerance", tolerance, "selected", len(selected), "score", avg, "confidence", result.ConfidenceLevel)
	return result, nil
}

// skillTolerance widens the acceptable skill gap in thin markets and narrows it in crowded ones.
func (e *Engine) skillTolerance(mt MatchType, localPool int, skill float64) float64 {
	tolerance := profiles[mt].baseTolerance
	switch {
	case localPool < thinPoolSize:
		tolerance = math.Min(tolerance*1.5, maxTolerance)
	case localPool > crowdedPoolSize:
		tolerance = math.Max(tolerance*0.8, minTolerance)
	}
	switch {
	case skill < 2.0:
		tolerance += 0.3
	case skill > 4.0:
		tolerance -= 0.2
	}
	return tolerance
}

func (e *Engine) scoreCandidate(initiator, candidate player.Player, skill float64, mt MatchType, w qualityWeights, trends map[string]float64) EnhancedCandidate {
	delta := math.Abs(candidate.SkillRating - skill)
	q := QualityMetrics{
		SkillBalance:             skillBalance(delta),
		ExperienceBalance:        experienceBalance(e.elo(initiator), e.elo(candidate)),
		PlayStyleCompatibility:   playStyleCompatibility(initiator.Availability, candidate.Availability),
		RecentPerformanceBalance: performanceBalance(trends[initiator.ID], trends[candidate.ID]),
	}
	q.OverallQuality = w.overall(q)
	score := math.Min(100, q.OverallQuality+mt.bonus(q))
	return EnhancedCandidate{Player: candidate, Score: score, SkillDelta: delta, QualityMetrics: q}
}

func (e *Engine) elo(p player.Player) int {
	if p.EloRating <= 0 {
		return e.ratings.DefaultElo
	}
	return p.EloRating
}

// selectCandidates expects scored to be sorted by descending score.
// Competitive play only takes candidates above the quality threshold. Casual and
// training reserve part of the slots for the next band down to add variety.
func (e *Engine) selectCandidates(scored []EnhancedCandidate, mt MatchType, desired int) []EnhancedCandidate {
	primary := lo.Filter(scored, func(c EnhancedCandidate, _ int) bool {
		return c.Score >= e.thresholds.Quality
	})
	if mt == Competitive {
		return primary[:min(desired, len(primary))]
	}
	secondary := lo.Filter(scored, func(c EnhancedCandidate, _ int) bool {
		return c.Score >= e.thresholds.Secondary && c.Score < e.thresholds.Quality
	})

	primarySlots := max(1, desired*primaryShareTenths/10)
	takePrimary := min(primarySlots, len(primary))
	selected := append([]EnhancedCandidate{}, primary[:takePrimary]...)

	takeSecondary := min(desired-len(selected), len(secondary))
	selected = append(selected, secondary[:takeSecondary]...)

	if missing := desired - len(selected); missing > 0 {
		rest := primary[takePrimary:]
		selected = append(selected, rest[:min(missing, len(rest))]...)
	}
	sortEnhanced(selected)
	return selected
}

func sortEnhanced(cs []EnhancedCandidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Score != cs[j].Score {
			return cs[i].Score > cs[j].Score
		}
		return cs[i].Player.ID < cs[j].Player.ID
	})
}
