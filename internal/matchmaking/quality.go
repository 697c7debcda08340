package matchmaking

import (
	"math"

	"github.com/mauv0809/rallyrank/internal/player"
)

func skillBalance(delta float64) float64 {
	return math.Max(0, 100-30*delta)
}

func experienceBalance(eloA, eloB int) float64 {
	return math.Max(0, 100-math.Abs(float64(eloA-eloB))/20)
}

func playStyleCompatibility(a, b player.Availability) float64 {
	switch {
	case a == b:
		return 90
	case a == player.AvailabilityBoth || b == player.AvailabilityBoth:
		return 80
	default:
		return 70
	}
}

func performanceBalance(trendA, trendB float64) float64 {
	return math.Max(0, 100-20*math.Abs(trendA-trendB))
}

func (w qualityWeights) overall(q QualityMetrics) float64 {
	return q.SkillBalance*w.skill +
		q.ExperienceBalance*w.experience +
		q.PlayStyleCompatibility*w.style +
		q.RecentPerformanceBalance*w.performance
}

func averageMetrics(candidates []EnhancedCandidate) QualityMetrics {
	if len(candidates) == 0 {
		return QualityMetrics{}
	}
	var sum QualityMetrics
	for _, c := range candidates {
		sum.SkillBalance += c.QualityMetrics.SkillBalance
		sum.ExperienceBalance += c.QualityMetrics.ExperienceBalance
		sum.PlayStyleCompatibility += c.QualityMetrics.PlayStyleCompatibility
		sum.RecentPerformanceBalance += c.QualityMetrics.RecentPerformanceBalance
		sum.OverallQuality += c.QualityMetrics.OverallQuality
	}
	n := float64(len(candidates))
	return QualityMetrics{
		SkillBalance:             sum.SkillBalance / n,
		ExperienceBalance:        sum.ExperienceBalance / n,
		PlayStyleCompatibility:   sum.PlayStyleCompatibility / n,
		RecentPerformanceBalance: sum.RecentPerformanceBalance / n,
		OverallQuality:           sum.OverallQuality / n,
	}
}

func confidenceFor(avg float64) ConfidenceLevel {
	switch {
	case avg >= 85:
		return ConfidenceHigh
	case avg >= 70:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// recommendMatchType suggests the match type the selected group is best suited for.
func recommendMatchType(q QualityMetrics) MatchType {
	switch {
	case q.SkillBalance >= 85 && q.ExperienceBalance >= 80:
		return Competitive
	case q.PlayStyleCompatibility >= 85:
		return Casual
	default:
		return Training
	}
}
