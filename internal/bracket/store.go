package bracket

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rallyrank/internal/apperr"
)

// Store persists brackets as whole documents guarded by a version number.
type Store interface {
	Create(ctx context.Context, b *Bracket) error
	Get(ctx context.Context, id string) (*Bracket, error)
	// Update writes b only if the stored version is still expectedVersion.
	Update(ctx context.Context, b *Bracket, expectedVersion int) error
}

type store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// NewStore creates a SQLite-backed bracket Store.
func NewStore(db *sql.DB) Store {
	return &store{db: db, now: time.Now}
}

func (s *store) Create(ctx context.Context, b *Bracket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode bracket %s: %w", b.ID, err)
	}
	now := s.now().Unix()
	_, err = s.db.ExecContext(ctx, "INSERT INTO brackets (id, name, data, version, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		b.ID, b.Name, string(data), b.Version, b.Complete(), now, now)
	if err != nil {
		return &apperr.PersistenceError{Op: "create bracket", Err: err}
	}
	log.Debug("Stored bracket", "bracket", b.ID, "version", b.Version)
	return nil
}

func (s *store) Get(ctx context.Context, id string) (*Bracket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT data, version FROM brackets WHERE id = ?", id).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bracket %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, &apperr.PersistenceError{Op: "load bracket", Err: err}
	}
	var b Bracket
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		return nil, fmt.Errorf("failed to decode bracket %s: %w", id, err)
	}
	b.Version = version
	return &b, nil
}

func (s *store) Update(ctx context.Context, b *Bracket, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode bracket %s: %w", b.ID, err)
	}
	res, err := s.db.ExecContext(ctx, "UPDATE brackets SET data = ?, version = ?, completed = ?, updated_at = ? WHERE id = ? AND version = ?",
		string(data), b.Version, b.Complete(), s.now().Unix(), b.ID, expectedVersion)
	if err != nil {
		return &apperr.PersistenceError{Op: "update bracket", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &apperr.PersistenceError{Op: "update bracket", Err: err}
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM brackets WHERE id = ?)", b.ID).Scan(&exists); err != nil {
		return &apperr.PersistenceError{Op: "update bracket", Err: err}
	}
	if !exists {
		return fmt.Errorf("bracket %s: %w", b.ID, apperr.ErrNotFound)
	}
	return fmt.Errorf("bracket %s was changed by another writer: %w", b.ID, apperr.ErrStaleVersion)
}
