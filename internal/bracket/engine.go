package bracket

import (
	"math/bits"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rallyrank/internal/apperr"
	"github.com/mauv0809/rallyrank/internal/player"
	"github.com/mauv0809/rallyrank/internal/rating"
	"github.com/samber/lo"
)

// Engine builds seeded brackets. The RNG only decides where unseeded entrants land.
type Engine struct {
	ratings rating.System
	now     func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates a bracket Engine. A zero seed draws a random one.
func NewEngine(ratings rating.System, seed uint64) *Engine {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Engine{
		ratings: ratings,
		now:     time.Now,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Create builds a 16-player bracket from the highest rated players of pool.
// The top four are seeded at fixed positions, the other twelve are shuffled into the rest.
func (e *Engine) Create(id, name string, pool []player.Player, size int) (*Bracket, error) {
	if size != Size {
		return nil, apperr.Validationf("only %d-player brackets are supported, got %d", Size, size)
	}
	if dup, ok := firstDuplicate(pool); ok {
		return nil, apperr.Validationf("player %s is listed more than once", dup)
	}
	if len(pool) < size {
		return nil, &apperr.InsufficientPlayersError{Need: size, Got: len(pool)}
	}

	ranked := lo.Map(pool, func(p player.Player, _ int) Entrant {
		elo := p.EloRating
		if elo <= 0 {
			elo = e.ratings.DefaultElo
		}
		return Entrant{ID: p.ID, DisplayName: p.DisplayName, EloRating: elo}
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].EloRating != ranked[j].EloRating {
			return ranked[i].EloRating > ranked[j].EloRating
		}
		return ranked[i].ID < ranked[j].ID
	})
	ranked = ranked[:size]

	positions := make([]Entrant, size)
	for s := 0; s < seededCount; s++ {
		ranked[s].Seed = s + 1
		positions[SeedingOrder[s]] = ranked[s]
	}
	unseeded := append([]Entrant(nil), ranked[seededCount:]...)
	e.shuffle(unseeded)
	for i, pos := range SeedingOrder[seededCount:] {
		positions[pos] = unseeded[i]
	}

	rounds := bits.TrailingZeros(uint(size))
	b := &Bracket{
		ID:         id,
		Name:       name,
		Size:       size,
		Rounds:     rounds,
		RoundNames: append([]string(nil), RoundNames...),
		Matches:    make([]Match, 0, size-1),
		CreatedAt:  e.now().UTC(),
	}
	for r := 1; r <= rounds; r++ {
		for n := 1; n <= matchesInRound(size, r); n++ {
			m := Match{ID: MatchID(r, n), Round: r, MatchNumber: n}
			if r < rounds {
				m.NextMatchID = MatchID(r+1, nextMatchNumber(n))
			}
			if r == 1 {
				p1, p2 := positions[2*(n-1)], positions[2*(n-1)+1]
				m.Player1, m.Player2 = &p1, &p2
			}
			b.Matches = append(b.Matches, m)
		}
	}

	log.Debug("Bracket created", "bracket", id, "entrants", size, "pool", len(pool), "top_seed", ranked[0].ID)
	return b, nil
}

func (e *Engine) shuffle(entrants []Entrant) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng.Shuffle(len(entrants), func(i, j int) {
		entrants[i], entrants[j] = entrants[j], entrants[i]
	})
}

func firstDuplicate(pool []player.Player) (string, bool) {
	seen := make(map[string]struct{}, len(pool))
	for _, p := range pool {
		if _, ok := seen[p.ID]; ok {
			return p.ID, true
		}
		seen[p.ID] = struct{}{}
	}
	return "", false
}
