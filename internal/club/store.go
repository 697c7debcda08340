package club

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rallyrank/internal/apperr"
	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/mauv0809/rallyrank/internal/rating"
)

const playerColumns = "id, display_name, sport, city, gender, skill_rating, elo_rating, availability"

// New creates a new ClubStore. Players upserted without an ELO start at defaultElo;
// a non-positive value falls back to rating.DefaultElo.
func New(db *sql.DB, defaultElo int) ClubStore {
	if defaultElo <= 0 {
		defaultElo = rating.DefaultElo
	}
	return &store{
		db:         db,
		defaultElo: defaultElo,
		now:        time.Now,
	}
}

// UpsertPlayers inserts new players and refreshes the profile fields of known ones.
// Ratings of existing players are never overwritten here; they only move through results.
func (s *store) UpsertPlayers(ctx context.Context, players []player.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO players (id, display_name, sport, city, gender, skill_rating, elo_rating, availability, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			sport = excluded.sport,
			city = excluded.city,
			gender = excluded.gender,
			skill_rating = excluded.skill_rating,
			availability = excluded.availability,
			updated_at = excluded.updated_at;
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := s.now().Unix()
	for _, p := range players {
		elo := p.EloRating
		if elo <= 0 {
			elo = s.defaultElo
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.DisplayName, p.Sport, p.City, p.Gender, p.SkillRating, elo, p.Availability, now); err != nil {
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debug("Upserted players", "count", len(players))
	return nil
}

// GetPlayer returns a single player or apperr.ErrNotFound.
func (s *store) GetPlayer(ctx context.Context, id string) (player.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+playerColumns+" FROM players WHERE id = ?", id)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return player.Player{}, fmt.Errorf("player %s: %w", id, apperr.ErrNotFound)
	}
	return p, err
}

// GetPlayers returns the players among ids that exist, in no particular order.
func (s *store) GetPlayers(ctx context.Context, ids []string) ([]player.Player, error) {
	if len(ids) == 0 {
		return []player.Player{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + playerColumns + " FROM players WHERE id IN (" + placeholders(len(ids)) + ")"
	return s.queryPlayers(ctx, query, toArgs(ids)...)
}

func (s *store) GetAllPlayers(ctx context.Context) ([]player.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryPlayers(ctx, "SELECT "+playerColumns+" FROM players ORDER BY elo_rating DESC, id")
}

// GetPool returns the players matching filter. Empty filter fields are ignored.
func (s *store) GetPool(ctx context.Context, filter PoolFilter) ([]player.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		where []string
		args  []any
	)
	if filter.Sport != "" {
		where = append(where, "sport = ?")
		args = append(args, filter.Sport)
	}
	if filter.City != "" {
		where = append(where, "city = ? COLLATE NOCASE")
		args = append(args, filter.City)
	}
	if filter.Gender != "" {
		where = append(where, "gender = ?")
		args = append(args, filter.Gender)
	}
	query := "SELECT " + playerColumns + " FROM players"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return s.queryPlayers(ctx, query+" ORDER BY id", args...)
}

func (s *store) queryPlayers(ctx context.Context, query string, args ...any) ([]player.Player, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []player.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func scanPlayer(scanner interface{ Scan(...any) error }) (player.Player, error) {
	var p player.Player
	err := scanner.Scan(&p.ID, &p.DisplayName, &p.Sport, &p.City, &p.Gender, &p.SkillRating, &p.EloRating, &p.Availability)
	return p, err
}

// RecordMatchResult stores result and applies update to the participants' ratings in one transaction.
// Each player row carries a version; a row changed since it was read fails the write with
// apperr.ErrStaleVersion and nothing is committed. Recording the same result id twice is a no-op
// that returns the changes of the first recording.
func (s *store) RecordMatchResult(ctx context.Context, result MatchResult, update RatingFunc) (Recorded, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := result.PlayerIDs()
	fail := func(op string, err error) (Recorded, error) {
		return Recorded{}, &apperr.PersistenceError{Op: op, PlayerIDs: ids, Err: err}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail("begin transaction", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM match_results WHERE id = ?)", result.ID).Scan(&exists); err != nil {
		return fail("check result", err)
	}
	if exists {
		changes, err := ratingHistory(ctx, tx, "result_id = ?", result.ID, 0)
		if err != nil {
			return fail("load recorded changes", err)
		}
		log.Info("Match result already recorded", "resultID", result.ID)
		return Recorded{Changes: changes, Duplicate: true}, nil
	}

	now := s.now().UTC()
	playedAt := result.PlayedAt
	if playedAt.IsZero() {
		playedAt = now
	}
	winners, err := json.Marshal(result.WinnerIDs)
	if err != nil {
		return fail("encode result", err)
	}
	losers, err := json.Marshal(result.LoserIDs)
	if err != nil {
		return fail("encode result", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO match_results (id, winner_ids, loser_ids, recorded_at) VALUES (?, ?, ?, ?)",
		result.ID, string(winners), string(losers), playedAt.Unix()); err != nil {
		return fail("insert result", err)
	}

	changes, err := applyRatings(ctx, tx, ids, update, result.ID, now)
	if err != nil {
		return fail("apply ratings", err)
	}

	for _, id := range sortedKeys(result.Performances) {
		if _, err := tx.ExecContext(ctx, "INSERT INTO performances (player_id, result_id, rating, created_at) VALUES (?, ?, ?, ?)",
			id, result.ID, result.Performances[id], playedAt.Unix()); err != nil {
			return fail("insert performance", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fail("commit", err)
	}
	log.Info("Recorded match result", "resultID", result.ID, "players", len(ids))
	return Recorded{Changes: changes}, nil
}

type versionedRating struct {
	elo     int
	version int
}

func applyRatings(ctx context.Context, tx *sql.Tx, ids []string, update RatingFunc, resultID string, at time.Time) ([]RatingChange, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id, elo_rating, version FROM players WHERE id IN ("+placeholders(len(ids))+")", toArgs(ids)...)
	if err != nil {
		return nil, err
	}
	current := make(map[string]versionedRating, len(ids))
	for rows.Next() {
		var id string
		var r versionedRating
		if err := rows.Scan(&id, &r.elo, &r.version); err != nil {
			rows.Close()
			return nil, err
		}
		current[id] = r
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ratings := make(map[string]int, len(current))
	for _, id := range ids {
		r, ok := current[id]
		if !ok {
			return nil, fmt.Errorf("player %s: %w", id, apperr.ErrNotFound)
		}
		ratings[id] = r.elo
	}

	updated, err := update(ratings)
	if err != nil {
		return nil, err
	}

	changes := make([]RatingChange, 0, len(ids))
	for _, id := range ids {
		newElo, ok := updated[id]
		if !ok {
			return nil, fmt.Errorf("no new rating computed for player %s", id)
		}
		res, err := tx.ExecContext(ctx, "UPDATE players SET elo_rating = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?",
			newElo, at.Unix(), id, current[id].version)
		if err != nil {
			return nil, err
		}
		if n, err := res.RowsAffected(); err != nil {
			return nil, err
		} else if n == 0 {
			return nil, fmt.Errorf("player %s changed concurrently: %w", id, apperr.ErrStaleVersion)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO rating_history (player_id, result_id, old_rating, new_rating, created_at) VALUES (?, ?, ?, ?, ?)",
			id, resultID, current[id].elo, newElo, at.Unix()); err != nil {
			return nil, err
		}
		changes = append(changes, RatingChange{PlayerID: id, ResultID: resultID, OldRating: current[id].elo, NewRating: newElo, At: at})
	}
	return changes, nil
}

// GetRatingHistory returns a player's rating changes, most recent first. A limit of 0 means all.
func (s *store) GetRatingHistory(ctx context.Context, playerID string, limit int) ([]RatingChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ratingHistory(ctx, s.db, "player_id = ?", playerID, limit)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func ratingHistory(ctx context.Context, q querier, where string, arg any, limit int) ([]RatingChange, error) {
	query := "SELECT player_id, result_id, old_rating, new_rating, created_at FROM rating_history WHERE " + where + " ORDER BY created_at DESC, id DESC"
	args := []any{arg}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes := []RatingChange{}
	for rows.Next() {
		var c RatingChange
		var at int64
		if err := rows.Scan(&c.PlayerID, &c.ResultID, &c.OldRating, &c.NewRating, &at); err != nil {
			return nil, err
		}
		c.At = time.Unix(at, 0).UTC()
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// GetRecentPerformance returns up to limit performance ratings of a player, most recent first.
func (s *store) GetRecentPerformance(ctx context.Context, playerID string, limit int) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT rating FROM performances WHERE player_id = ? ORDER BY created_at DESC, id DESC LIMIT ?", playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := []float64{}
	for rows.Next() {
		var r float64
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
