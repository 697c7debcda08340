package league

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mauv0809/rallyrank/internal/apperr"
)

// League is a scheduled round-robin competition.
type League struct {
	ID        string    `json:"id" msgpack:"id"`
	Name      string    `json:"name" msgpack:"name"`
	PlayerIDs []string  `json:"playerIds" msgpack:"player_ids"`
	Weeks     int       `json:"weeks" msgpack:"weeks"`
	Rounds    []Round   `json:"rounds" msgpack:"rounds"`
	CreatedAt time.Time `json:"createdAt" msgpack:"created_at"`
}

// New schedules a league over weeks.
func New(id, name string, playerIDs []string, weeks int, now time.Time) (*League, error) {
	rounds, err := BalancedSchedule(playerIDs, weeks)
	if err != nil {
		return nil, err
	}
	return &League{
		ID:        id,
		Name:      name,
		PlayerIDs: append([]string(nil), playerIDs...),
		Weeks:     weeks,
		Rounds:    rounds,
		CreatedAt: now.UTC(),
	}, nil
}

// Store persists league schedules. Schedules are written once and never changed.
type Store interface {
	Create(ctx context.Context, l *League) error
	Get(ctx context.Context, id string) (*League, error)
}

type store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) Create(ctx context.Context, l *League) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to encode league %s: %w", l.ID, err)
	}
	_, err = s.db.ExecContext(ctx, "INSERT INTO leagues (id, name, weeks, data, created_at) VALUES (?, ?, ?, ?, ?)",
		l.ID, l.Name, l.Weeks, string(data), l.CreatedAt.Unix())
	if err != nil {
		return &apperr.PersistenceError{Op: "create league", Err: err}
	}
	return nil
}

func (s *store) Get(ctx context.Context, id string) (*League, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM leagues WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("league %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, &apperr.PersistenceError{Op: "load league", Err: err}
	}
	var l League
	if err := json.Unmarshal([]byte(data), &l); err != nil {
		return nil, fmt.Errorf("failed to decode league %s: %w", id, err)
	}
	return &l, nil
}
