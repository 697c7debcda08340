package bracket

import (
	"context"
	"fmt"
)

// AdvanceStored loads a bracket, advances it and writes it back in one optimistic step.
// A nil expectedVersion advances whatever version is stored; a concurrent writer still
// makes the write fail with apperr.ErrStaleVersion rather than being overwritten.
func AdvanceStored(ctx context.Context, s Store, id, matchID, winnerID string, expectedVersion *int) (*Bracket, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	version := b.Version
	if expectedVersion != nil {
		version = *expectedVersion
	}
	if err := b.Advance(matchID, winnerID, version); err != nil {
		return nil, err
	}
	if err := s.Update(ctx, b, version); err != nil {
		return nil, fmt.Errorf("failed to save bracket %s: %w", id, err)
	}
	return b, nil
}
