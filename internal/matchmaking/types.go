package matchmaking

import (
	"github.com/mauv0809/rallyrank/internal/player"
)

// Thresholds holds the score cut-offs used by both matching paths.
type Thresholds struct {
	// ScorerFound is the composite score the basic scorer's top candidate must exceed.
	ScorerFound float64
	// SkillGate is the maximum skill difference for a basic match to count as found.
	SkillGate float64
	// Quality is the score a candidate needs to be a first-choice enhanced match.
	Quality float64
	// Secondary is the lower bound of the casual/training fallback band.
	Secondary float64
	// FoundAverage is the average selected score an enhanced match needs to count as found.
	FoundAverage float64
}

// DefaultThresholds returns the stock cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ScorerFound:  70,
		SkillGate:    1.0,
		Quality:      75,
		Secondary:    60,
		FoundAverage: 60,
	}
}

// Constraints narrows the pool of the basic scorer. Empty fields fall back to the initiator's own values.
type Constraints struct {
	Gender player.Gender `json:"gender,omitempty"`
	City   string        `json:"city,omitempty"`
}

// CandidateScore is produced and discarded per matching request.
type CandidateScore struct {
	Player         player.Player `json:"player"`
	CompositeScore float64       `json:"compositeScore"`
	SkillDelta     float64       `json:"skillDelta"`
}

// MatchingResult is the basic scorer's answer.
type MatchingResult struct {
	Matches []CandidateScore `json:"matches"`
	Found   bool             `json:"found"`
	Score   float64          `json:"score"`
}

// QualityMetrics are 0–100 sub-scores of a candidate pairing.
type QualityMetrics struct {
	SkillBalance             float64 `json:"skillBalance"`
	ExperienceBalance        float64 `json:"experienceBalance"`
	PlayStyleCompatibility   float64 `json:"playStyleCompatibility"`
	RecentPerformanceBalance float64 `json:"recentPerformanceBalance"`
	OverallQuality           float64 `json:"overallQuality"`
}

// EnhancedCandidate is a candidate selected by the enhanced engine.
type EnhancedCandidate struct {
	Player         player.Player  `json:"player"`
	Score          float64        `json:"score"`
	SkillDelta     float64        `json:"skillDelta"`
	QualityMetrics QualityMetrics `json:"qualityMetrics"`
}

// ConfidenceLevel grades the average score of an enhanced match.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// EnhancedRequest is the input of the enhanced engine. Trends maps player id to a
// performance trend computed from history beforehand (see PerformanceTrend).
type EnhancedRequest struct {
	Pool         []player.Player
	Sport        string
	City         string
	SkillLevel   float64
	Gender       player.Gender
	InitiatorID  string
	DesiredCount int
	MatchType    MatchType
	Trends       map[string]float64
}

// EnhancedMatchingResult is the enhanced engine's answer.
type EnhancedMatchingResult struct {
	MatchedPlayers       []EnhancedCandidate `json:"matchedPlayers"`
	Found                bool                `json:"found"`
	MatchScore           float64             `json:"matchScore"`
	QualityMetrics       QualityMetrics      `json:"qualityMetrics"`
	ConfidenceLevel      ConfidenceLevel     `json:"confidenceLevel"`
	RecommendedMatchType MatchType           `json:"recommendedMatchType"`
	SkillTolerance       float64             `json:"skillTolerance"`
}

// EmptyEnhancedResult is the canonical "nothing to propose" answer.
func EmptyEnhancedResult() EnhancedMatchingResult {
	return EnhancedMatchingResult{
		MatchedPlayers:  []EnhancedCandidate{},
		ConfidenceLevel: ConfidenceLow,
	}
}
