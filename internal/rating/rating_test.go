package rating

import (
	"testing"

	"github.com/mauv0809/rallyrank/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedOutcome_IsSymmetric(t *testing.T) {
	pairs := [][2]float64{{1500, 1500}, {1200, 1800}, {2400, 900}, {1501, 1499}, {0, 3000}}
	for _, p := range pairs {
		sum := ExpectedOutcome(p[0], p[1]) + ExpectedOutcome(p[1], p[0])
		assert.InDelta(t, 1.0, sum, 1e-9, "ratings %v", p)
	}
	assert.InDelta(t, 0.5, ExpectedOutcome(1500, 1500), 1e-12)
	assert.Greater(t, ExpectedOutcome(1800, 1500), 0.5)
}

func TestUpdateRatings(t *testing.T) {
	s := New(32, 1500)

	t.Run("equal ratings", func(t *testing.T) {
		w, l := s.UpdateRatings(1500, 1500)
		assert.Equal(t, 1516, w)
		assert.Equal(t, 1484, l)
	})

	t.Run("winner always gains and loser always drops", func(t *testing.T) {
		for _, tc := range [][2]int{{1200, 1800}, {1800, 1200}, {1000, 1001}, {2000, 1400}} {
			w, l := s.UpdateRatings(tc[0], tc[1])
			assert.Greater(t, w, tc[0], "winner %v", tc)
			assert.Less(t, l, tc[1], "loser %v", tc)
		}
	})

	t.Run("upset moves more than expected win", func(t *testing.T) {
		upsetW, _ := s.UpdateRatings(1200, 1800)
		expectedW, _ := s.UpdateRatings(1800, 1200)
		assert.Greater(t, upsetW-1200, expectedW-1800)
	})

	t.Run("k factor is configurable", func(t *testing.T) {
		w, l := New(16, 1500).UpdateRatings(1500, 1500)
		assert.Equal(t, 1508, w)
		assert.Equal(t, 1492, l)
	})
}

func TestNew_Defaults(t *testing.T) {
	s := New(0, -1)
	assert.Equal(t, DefaultKFactor, s.KFactor)
	assert.Equal(t, DefaultElo, s.DefaultElo)
}

func TestProcessTeamResult(t *testing.T) {
	s := New(32, 1500)

	t.Run("equal doubles teams share the same delta", func(t *testing.T) {
		ratings := map[string]int{"a": 1500, "b": 1500, "c": 1500, "d": 1500}
		got, err := s.ProcessTeamResult(ratings, []string{"a", "b"}, []string{"c", "d"})
		require.NoError(t, err)
		assert.Equal(t, got["a"], got["b"])
		assert.Equal(t, 1516, got["a"])
		assert.Equal(t, 1484, got["c"])
		assert.Equal(t, got["c"], got["d"])
	})

	t.Run("intra-team gaps are preserved", func(t *testing.T) {
		ratings := map[string]int{"a": 1700, "b": 1300, "c": 1500, "d": 1500}
		got, err := s.ProcessTeamResult(ratings, []string{"a", "b"}, []string{"c", "d"})
		require.NoError(t, err)
		assert.Equal(t, 400, got["a"]-got["b"])
		assert.Equal(t, got["a"]-1700, got["b"]-1300)
	})

	t.Run("missing ratings default to 1500", func(t *testing.T) {
		got, err := s.ProcessTeamResult(map[string]int{}, []string{"x"}, []string{"y"})
		require.NoError(t, err)
		assert.Equal(t, 1516, got["x"])
		assert.Equal(t, 1484, got["y"])
	})

	t.Run("bystanders are copied and input is not mutated", func(t *testing.T) {
		ratings := map[string]int{"a": 1500, "b": 1500, "z": 1900}
		got, err := s.ProcessTeamResult(ratings, []string{"a"}, []string{"b"})
		require.NoError(t, err)
		assert.Equal(t, 1900, got["z"])
		assert.Equal(t, 1500, ratings["a"])
	})

	t.Run("invalid teams", func(t *testing.T) {
		_, err := s.ProcessTeamResult(nil, nil, []string{"b"})
		assert.True(t, apperr.IsValidation(err))

		_, err = s.ProcessTeamResult(nil, []string{"a"}, []string{"a"})
		assert.True(t, apperr.IsValidation(err))
	})
}

func TestRankDescription(t *testing.T) {
	tests := []struct {
		rating int
		want   string
	}{
		{800, "Beginner"},
		{1199, "Beginner"},
		{1200, "Novice"},
		{1500, "Intermediate"},
		{1650, "Advanced"},
		{1999, "Expert"},
		{2100, "Master"},
		{2200, "Grandmaster"},
		{2800, "Grandmaster"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RankDescription(tt.rating), "rating %d", tt.rating)
	}
}
