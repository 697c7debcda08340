package bracket_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/mauv0809/rallyrank/internal/apperr"
	"github.com/mauv0809/rallyrank/internal/bracket"
	"github.com/mauv0809/rallyrank/internal/database"
	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/mauv0809/rallyrank/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (bracket.Store, *bracket.Bracket) {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)

	pool := make([]player.Player, 16)
	for i := range pool {
		pool[i] = player.Player{ID: fmt.Sprintf("p%02d", i+1), EloRating: 1800 - 5*i}
	}
	b, err := bracket.NewEngine(rating.New(0, 0), 11).Create("cup", "Autumn Cup", pool, bracket.Size)
	require.NoError(t, err)

	s := bracket.NewStore(db)
	require.NoError(t, s.Create(context.Background(), b))
	return s, b
}

func TestStore_CreateAndGet(t *testing.T) {
	s, b := setupStore(t)
	ctx := context.Background()

	got, err := s.Get(ctx, "cup")
	require.NoError(t, err)
	assert.Equal(t, b.Matches, got.Matches)
	assert.Equal(t, "Autumn Cup", got.Name)
	assert.Equal(t, 0, got.Version)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStore_UpdateRejectsStaleVersion(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	first, err := s.Get(ctx, "cup")
	require.NoError(t, err)
	second, err := s.Get(ctx, "cup")
	require.NoError(t, err)

	m1, _ := first.Match(1, 1)
	require.NoError(t, first.Advance(m1.ID, m1.Player1.ID, 0))
	require.NoError(t, s.Update(ctx, first, 0))

	m2, _ := second.Match(1, 2)
	require.NoError(t, second.Advance(m2.ID, m2.Player1.ID, 0))
	assert.ErrorIs(t, s.Update(ctx, second, 0), apperr.ErrStaleVersion)

	stored, err := s.Get(ctx, "cup")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)
	r1m2, _ := stored.Match(1, 2)
	assert.Empty(t, r1m2.WinnerID, "the stale write must not land")

	ghost := *first
	ghost.ID = "ghost"
	assert.ErrorIs(t, s.Update(ctx, &ghost, 1), apperr.ErrNotFound)
}

func TestAdvanceStored(t *testing.T) {
	s, b := setupStore(t)
	ctx := context.Background()
	r1m1, _ := b.Match(1, 1)

	updated, err := bracket.AdvanceStored(ctx, s, "cup", "R1M1", r1m1.Player2.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version)
	next, _ := updated.Match(2, 1)
	require.NotNil(t, next.Player1)
	assert.Equal(t, r1m1.Player2.ID, next.Player1.ID)

	stale := 0
	r1m2, _ := b.Match(1, 2)
	_, err = bracket.AdvanceStored(ctx, s, "cup", "R1M2", r1m2.Player1.ID, &stale)
	assert.ErrorIs(t, err, apperr.ErrStaleVersion)

	_, err = bracket.AdvanceStored(ctx, s, "cup", "R1M2", "stranger", nil)
	assert.ErrorAs(t, err, new(*apperr.InvalidWinnerError))

	_, err = bracket.AdvanceStored(ctx, s, "nope", "R1M1", r1m1.Player1.ID, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
