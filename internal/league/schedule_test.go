package league

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mauv0809/rallyrank/internal/apperr"
	"github.com/mauv0809/rallyrank/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("p%d", i+1)
	}
	return out
}

func pairKey(p Pairing) string {
	if p.Home < p.Away {
		return p.Home + "|" + p.Away
	}
	return p.Away + "|" + p.Home
}

func TestRoundRobin_EveryPairExactlyOnce(t *testing.T) {
	tests := []struct {
		players    int
		rounds     int
		totalPairs int
	}{
		{3, 3, 3},
		{4, 3, 6},
		{5, 5, 10},
		{6, 5, 15},
		{9, 9, 36},
		{12, 11, 66},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d players", tt.players), func(t *testing.T) {
			rounds, err := RoundRobin(ids(tt.players))
			require.NoError(t, err)
			assert.Len(t, rounds, tt.rounds)

			seen := map[string]int{}
			for i, r := range rounds {
				assert.Equal(t, i+1, r.Number)
				busy := map[string]bool{}
				for _, p := range r.Pairings {
					assert.NotEqual(t, Bye, p.Home)
					assert.NotEqual(t, Bye, p.Away)
					assert.NotEqual(t, p.Home, p.Away)
					assert.False(t, busy[p.Home] || busy[p.Away], "a player plays twice in round %d", r.Number)
					busy[p.Home], busy[p.Away] = true, true
					seen[pairKey(p)]++
				}
				if tt.players%2 == 0 {
					assert.Len(t, r.Pairings, tt.players/2)
				}
			}
			assert.Len(t, seen, tt.totalPairs)
			for k, n := range seen {
				assert.Equal(t, 1, n, "pair %s", k)
			}
		})
	}
}

func TestRoundRobin_OddPoolSitsOneOutPerRound(t *testing.T) {
	rounds, err := RoundRobin(ids(5))
	require.NoError(t, err)
	resting := map[string]int{}
	for _, r := range rounds {
		require.Len(t, r.Pairings, 2)
		playing := map[string]bool{}
		for _, p := range r.Pairings {
			playing[p.Home], playing[p.Away] = true, true
		}
		for _, id := range ids(5) {
			if !playing[id] {
				resting[id]++
			}
		}
	}
	for _, id := range ids(5) {
		assert.Equal(t, 1, resting[id], id)
	}
}

func TestRoundRobin_Validation(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
	}{
		{"too few", []string{"a", "b"}},
		{"duplicate", []string{"a", "b", "a"}},
		{"empty id", []string{"a", "b", ""}},
		{"reserved id", []string{"a", "b", Bye}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RoundRobin(tt.ids)
			assert.True(t, apperr.IsValidation(err))
		})
	}
}

func TestBalancedSchedule_CyclesRounds(t *testing.T) {
	base, err := RoundRobin(ids(4))
	require.NoError(t, err)

	weeks, err := BalancedSchedule(ids(4), 7)
	require.NoError(t, err)
	require.Len(t, weeks, 7)
	for w, r := range weeks {
		assert.Equal(t, w+1, r.Number)
		assert.Equal(t, base[w%len(base)].Pairings, r.Pairings)
	}

	short, err := BalancedSchedule(ids(6), 2)
	require.NoError(t, err)
	assert.Len(t, short, 2)

	_, err = BalancedSchedule(ids(4), 0)
	assert.True(t, apperr.IsValidation(err))
}

func TestStore_CreateAndGet(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()
	s := NewStore(db)
	ctx := context.Background()

	l, err := New("l1", "Winter League", ids(6), 8, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, l))

	got, err := s.Get(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, l, got)

	_, err = s.Get(ctx, "l2")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
