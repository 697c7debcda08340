package matchmaking

import (
	"fmt"
	"strings"

	"github.com/mauv0809/rallyrank/internal/apperr"
)

// MatchType selects how the enhanced engine weighs and selects candidates.
type MatchType int

const (
	MatchTypeUnknown MatchType = iota
	Competitive
	Casual
	Training
)

type qualityWeights struct {
	skill       float64
	experience  float64
	style       float64
	performance float64
}

type matchProfile struct {
	name          string
	weights       qualityWeights
	baseTolerance float64
}

var profiles = map[MatchType]matchProfile{
	Competitive: {name: "competitive", weights: qualityWeights{0.4, 0.3, 0.1, 0.2}, baseTolerance: 0.5},
	Casual:      {name: "casual", weights: qualityWeights{0.3, 0.2, 0.3, 0.2}, baseTolerance: 1.0},
	Training:    {name: "training", weights: qualityWeights{0.2, 0.3, 0.2, 0.3}, baseTolerance: 1.2},
}

// ParseMatchType parses "competitive", "casual" or "training" (case-insensitive).
func ParseMatchType(s string) (MatchType, error) {
	for mt, p := range profiles {
		if strings.EqualFold(strings.TrimSpace(s), p.name) {
			return mt, nil
		}
	}
	return MatchTypeUnknown, apperr.Validationf("unknown match type %q", s)
}

func (m MatchType) String() string {
	if p, ok := profiles[m]; ok {
		return p.name
	}
	return ""
}

// Valid reports whether m is one of the known match types.
func (m MatchType) Valid() bool {
	_, ok := profiles[m]
	return ok
}

func (m MatchType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MatchType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*m = MatchTypeUnknown
		return nil
	}
	mt, err := ParseMatchType(string(text))
	if err != nil {
		return fmt.Errorf("decode match type: %w", err)
	}
	*m = mt
	return nil
}

// bonus returns the extra score a pairing earns for fitting this match type well.
func (m MatchType) bonus(q QualityMetrics) float64 {
	switch m {
	case Competitive:
		if q.SkillBalance > 85 {
			return 10
		}
	case Casual:
		if q.PlayStyleCompatibility > 85 {
			return 8
		}
	}
	return 0
}
